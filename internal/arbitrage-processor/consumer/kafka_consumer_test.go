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
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

type fakeRepo struct {
	saved []events.ArbitrageFound
	err   error
}

func (f *fakeRepo) UpsertArbitrage(_ context.Context, e events.ArbitrageFound) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, e)
	return "arb-1", nil
}

type fakeCache struct {
	ids []string
	err error
}

func (f *fakeCache) SetCurrent(_ context.Context, id string, _ events.ArbitrageFound) error {
	f.ids = append(f.ids, id)
	return f.err
}

type fakePub struct{ updates []events.ArbitrageUpdate }

func (f *fakePub) Publish(_ context.Context, u events.ArbitrageUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

type fakeWriter struct{ msgs []kafka.Message }

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func newProcessor() (*Processor, *fakeRepo, *fakeCache, *fakePub, *fakeWriter, map[string]int) {
	repo, c, pub, dlq := &fakeRepo{}, &fakeCache{}, &fakePub{}, &fakeWriter{}
	errs := map[string]int{}
	p := &Processor{
		Log:     zap.NewNop(),
		DLQ:     dlq,
		Repo:    repo,
		Cache:   c,
		Pub:     pub,
		Stake:   100,
		OnError: func(stage string) { errs[stage]++ },
	}
	return p, repo, c, pub, dlq, errs
}

func message(t *testing.T, ev events.ArbitrageFound) kafka.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(ev.MatchSignature), Value: b}
}

func overUnder() events.ArbitrageFound {
	return events.ArbitrageFound{
		MatchSignature: "A vs B - Total Goals",
		Profit:         9.99, // valor do scanner, deve ser recalculado
		CombinationDetails: []events.LegDetail{
			{Bookmaker: "Bet365", Odds: 2.1, Name: "Over 2.5", Market: "Total Goals"},
			{Bookmaker: "Pinnacle", Odds: 2.1, Name: "Under 2.5", Market: "Total Goals"},
		},
	}
}

func TestHandle_PersistsCachesAndBroadcasts(t *testing.T) {
	p, repo, c, pub, dlq, errs := newProcessor()

	id, err := p.Handle(context.Background(), message(t, overUnder()))
	require.NoError(t, err)
	assert.Equal(t, "arb-1", id)

	require.Len(t, repo.saved, 1)
	// 1/2.1 + 1/2.1 = 0.952381 -> 5%
	assert.Equal(t, 5.0, repo.saved[0].Profit)
	assert.False(t, repo.saved[0].FoundAt.IsZero())

	assert.Equal(t, []string{"arb-1"}, c.ids)
	require.Len(t, pub.updates, 1)
	assert.Equal(t, "arb-1", pub.updates[0].ArbitrageID)
	assert.Empty(t, dlq.msgs)
	assert.Empty(t, errs)
}

func TestHandle_InvalidCombinationGoesToDLQ(t *testing.T) {
	p, repo, _, _, dlq, errs := newProcessor()

	ev := overUnder()
	ev.CombinationDetails = ev.CombinationDetails[:1]

	_, err := p.Handle(context.Background(), message(t, ev))
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "validate", se.Stage)

	var insufficient *stakes.InsufficientLegsError
	assert.ErrorAs(t, err, &insufficient)

	assert.Empty(t, repo.saved)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "reason", dlq.msgs[0].Headers[0].Key)
	assert.Equal(t, 1, errs["validate"])
}

func TestHandle_DecodeError(t *testing.T) {
	p, _, _, _, dlq, errs := newProcessor()

	_, err := p.Handle(context.Background(), kafka.Message{Value: []byte("{not json")})
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "decode", se.Stage)
	assert.Len(t, dlq.msgs, 1)
	assert.Equal(t, 1, errs["decode"])
}

func TestHandle_CacheFailureDoesNotStopBroadcast(t *testing.T) {
	p, _, c, pub, _, errs := newProcessor()
	c.err = errors.New("redis down")

	_, err := p.Handle(context.Background(), message(t, overUnder()))
	require.NoError(t, err)
	assert.Len(t, pub.updates, 1)
	assert.Equal(t, 1, errs["cache"])
}

func TestHandle_RepoFailure(t *testing.T) {
	p, repo, c, pub, _, errs := newProcessor()
	repo.err = errors.New("db down")

	_, err := p.Handle(context.Background(), message(t, overUnder()))
	require.Error(t, err)
	assert.Empty(t, c.ids)
	assert.Empty(t, pub.updates)
	assert.Equal(t, 1, errs["db_upsert"])
}
