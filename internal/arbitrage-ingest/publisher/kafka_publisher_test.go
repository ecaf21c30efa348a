package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

type memWriter struct {
	msgs []kafka.Message
	err  error
}

func (m *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *memWriter) Close() error { return nil }

func TestPublish_KeyedBySignature(t *testing.T) {
	w := &memWriter{}
	p := NewWithWriter(w, zap.NewNop())
	fixed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), events.ArbitrageFound{MatchSignature: "A_vs_B_2024-03-16"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "A_vs_B_2024-03-16", string(w.msgs[0].Key))

	var got events.ArbitrageFound
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, fixed, got.FoundAt)
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewWithWriter(&memWriter{err: boom}, zap.NewNop())

	err := p.Publish(context.Background(), events.ArbitrageFound{MatchSignature: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "arbitrage_found", zap.NewNop())
	assert.Error(t, err)
}
