package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Repository interface {
	UpsertArbitrage(ctx context.Context, e events.ArbitrageFound) (string, error)
}

type Cache interface {
	SetCurrent(ctx context.Context, arbitrageID string, e events.ArbitrageFound) error
}

type Broadcaster interface {
	Publish(ctx context.Context, u events.ArbitrageUpdate) error
}

// StageError indica em qual etapa o processamento falhou (label de métrica)
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Processor consome arbitragens do Kafka, valida com o alocador,
// persiste, atualiza o cache e avisa o WS
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	DLQ    MessageWriter // opcional: mensagens inválidas vão pra cá
	Repo   Repository
	Cache  Cache
	Pub    Broadcaster   // opcional
	Stake  float64       // total usado para validar a combinação

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if _, err := p.Handle(ctx, m); err != nil {
			var se *StageError
			if errors.As(err, &se) {
				p.Log.Warn("arbitrage processing failed",
					zap.String("stage", se.Stage),
					zap.ByteString("key", m.Key),
					zap.Error(se.Err))
			}
		}
	}
}

// Handle processa uma mensagem. Retorna o id da arbitragem persistida.
// Falhas de cache e broadcast são contadas mas não interrompem o fluxo
func (p *Processor) Handle(ctx context.Context, m kafka.Message) (string, error) {
	var ev events.ArbitrageFound
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.fail("decode")
		p.deadLetter(ctx, m, "decode")
		return "", &StageError{Stage: "decode", Err: err}
	}

	// valida a combinação e recalcula o lucro pelo alocador
	stake := p.Stake
	if stake <= 0 {
		stake = stakes.DefaultStake
	}
	b, err := stakes.Allocate(events.Combination(ev.CombinationDetails), stakes.FixedTotal{Total: stake})
	if err != nil {
		p.fail("validate")
		p.deadLetter(ctx, m, "validate")
		return "", &StageError{Stage: "validate", Err: err}
	}
	ev.Profit = math.Round(b.ProfitPercentage*100) / 100
	if ev.FoundAt.IsZero() {
		ev.FoundAt = time.Now().UTC()
	}

	id, err := p.Repo.UpsertArbitrage(ctx, ev)
	if err != nil {
		p.fail("db_upsert")
		return "", &StageError{Stage: "db_upsert", Err: err}
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}

	// Atualiza cache Redis com a arbitragem corrente
	if err := p.Cache.SetCurrent(ctx, id, ev); err != nil {
		p.Log.Warn("redis set failed", zap.String("arbitrage_id", id), zap.Error(err))
		p.fail("cache")
	} else if p.OnCached != nil {
		p.OnCached()
	}

	if p.Pub != nil {
		pctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if err := p.Pub.Publish(pctx, events.ArbitrageUpdate{ArbitrageID: id, Payload: ev}); err != nil {
			p.Log.Warn("ws broadcast publish failed", zap.Error(err))
			p.fail("broadcast")
		}
	}

	return id, nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, reason string) {
	if p.DLQ == nil {
		return
	}
	dlq := kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: []kafka.Header{{Key: "reason", Value: []byte(reason)}},
		Time:    time.Now(),
	}
	if err := p.DLQ.WriteMessages(ctx, dlq); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(fmt.Errorf("%s: %w", reason, err)))
		p.fail("dlq")
	}
}
