package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

type fakeRepo struct {
	seen  map[string]bool
	fails int
}

func (f *fakeRepo) RecordBetPlaced(_ context.Context, e events.BetPlaced) (bool, error) {
	if f.fails > 0 {
		f.fails--
		return false, errors.New("db down")
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[e.BetID] {
		return false, nil
	}
	f.seen[e.BetID] = true
	return true, nil
}

type fakeDLQ struct{ msgs []kafka.Message }

func (d *fakeDLQ) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	d.msgs = append(d.msgs, msgs...)
	return nil
}

func msg(t *testing.T, e events.BetPlaced) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(e.BetID), Value: b}
}

func TestHandle_RecordsOnce(t *testing.T) {
	repo := &fakeRepo{}
	var recorded, dup int
	a := &Auditor{Log: zap.NewNop(), Repo: repo,
		OnRecorded: func() { recorded++ }, OnDuplicate: func() { dup++ }}

	m := msg(t, events.BetPlaced{BetID: "bet-1", Odds: 2.0})
	require.NoError(t, a.Handle(context.Background(), m))
	require.NoError(t, a.Handle(context.Background(), m))

	assert.Equal(t, 1, recorded)
	assert.Equal(t, 1, dup)
}

func TestHandle_InvalidGoesToDLQ(t *testing.T) {
	dlq := &fakeDLQ{}
	var stages []string
	a := &Auditor{Log: zap.NewNop(), Repo: &fakeRepo{}, DLQ: dlq,
		OnError: func(s string) { stages = append(stages, s) }}

	err := a.Handle(context.Background(), kafka.Message{Value: []byte("{nope")})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	err = a.Handle(context.Background(), msg(t, events.BetPlaced{}))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	require.Len(t, dlq.msgs, 2)
	assert.Equal(t, "missing bet_id", string(dlq.msgs[1].Headers[0].Value))
	assert.Equal(t, []string{"decode", "validate"}, stages)
}

func TestHandle_RetriesDatabase(t *testing.T) {
	repo := &fakeRepo{fails: 2}
	a := &Auditor{Log: zap.NewNop(), Repo: repo, Retries: 3}
	require.NoError(t, a.Handle(context.Background(), msg(t, events.BetPlaced{BetID: "bet-2"})))
	assert.True(t, repo.seen["bet-2"])

	repo = &fakeRepo{fails: 5}
	var stages []string
	a = &Auditor{Log: zap.NewNop(), Repo: repo, Retries: 2, OnError: func(s string) { stages = append(stages, s) }}
	assert.Error(t, a.Handle(context.Background(), msg(t, events.BetPlaced{BetID: "bet-3"})))
	assert.Equal(t, []string{"db_insert"}, stages)
}
