package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

var ErrInvalidEvent = errors.New("invalid bet_placed event")

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Repository interface {
	RecordBetPlaced(ctx context.Context, e events.BetPlaced) (bool, error)
}

// Auditor consome bet_placed e grava a trilha de auditoria.
// Mensagens ilegíveis vão para a DLQ; falhas de banco são repetidas
type Auditor struct {
	Log     *zap.Logger
	Reader  MessageReader
	DLQ     MessageWriter // opcional
	Repo    Repository
	Retries int // tentativas no banco antes de desistir da mensagem

	OnRecorded  func()
	OnDuplicate func()
	OnError     func(string)
}

func (a *Auditor) Run(ctx context.Context) error {
	for {
		m, err := a.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.Log.Warn("kafka read failed", zap.Error(err))
			a.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := a.Handle(ctx, m); err != nil {
			a.Log.Warn("bet audit failed", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

// Handle decodifica e grava uma mensagem
func (a *Auditor) Handle(ctx context.Context, m kafka.Message) error {
	var e events.BetPlaced
	if err := json.Unmarshal(m.Value, &e); err != nil {
		a.fail("decode")
		a.deadLetter(ctx, m, "decode")
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.BetID == "" {
		a.fail("validate")
		a.deadLetter(ctx, m, "missing bet_id")
		return fmt.Errorf("%w: missing bet_id", ErrInvalidEvent)
	}

	retries := a.Retries
	if retries <= 0 {
		retries = 3
	}
	var (
		inserted bool
		err      error
	)
	for i := 0; i < retries; i++ {
		if inserted, err = a.Repo.RecordBetPlaced(ctx, e); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(100*(i+1)) * time.Millisecond):
		}
	}
	if err != nil {
		a.fail("db_insert")
		return err
	}

	if !inserted {
		if a.OnDuplicate != nil {
			a.OnDuplicate()
		}
		a.Log.Debug("bet event already recorded", zap.String("bet_id", e.BetID))
		return nil
	}
	if a.OnRecorded != nil {
		a.OnRecorded()
	}
	a.Log.Info("bet event recorded",
		zap.String("bet_id", e.BetID),
		zap.String("arbitrage_id", e.ArbitrageID),
		zap.Int("leg_index", e.LegIndex))
	return nil
}

func (a *Auditor) fail(stage string) {
	if a.OnError != nil {
		a.OnError(stage)
	}
}

func (a *Auditor) deadLetter(ctx context.Context, m kafka.Message, reason string) {
	if a.DLQ == nil {
		return
	}
	dlq := kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: []kafka.Header{{Key: "reason", Value: []byte(reason)}},
		Time:    time.Now(),
	}
	if err := a.DLQ.WriteMessages(ctx, dlq); err != nil {
		a.Log.Warn("dlq write failed", zap.Error(err))
		a.fail("dlq")
	}
}
