package service

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

const DefaultBackoff = 3 * time.Second

// Publisher envia arbitragens encontradas para o Kafka
type Publisher interface {
	Publish(ctx context.Context, e events.ArbitrageFound) error
}

// WSClient consome o scanner de arbitragens via WebSocket
// e publica cada oportunidade no tópico arbitrage_found.
type WSClient struct {
	URL       string        // endpoint WS do scanner
	Log       *zap.Logger   // Logger estruturado
	Publisher Publisher     // destino das arbitragens
	Backoff   time.Duration // espera entre reconexões (padrão 3s)
	Source    string        // preenche events.ArbitrageFound.Source quando vazio

	// hooks de métricas (opcionais)
	OnPublished func()
	OnInvalid   func()
	OnFailed    func()
}

// Start mantém a conexão viva: ao cair, espera o backoff e reconecta até o ctx acabar.
func (c *WSClient) Start(ctx context.Context) {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	for {
		err := c.connectAndListen(ctx)
		if ctx.Err() != nil {
			c.Log.Info("context canceled, stopping WS client")
			return
		}
		if err != nil {
			c.Log.Warn("connection closed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		case <-time.After(backoff):
		}
	}
}

// connectAndListen estabelece a conexão e processa mensagens até erro ou cancelamento.
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to scanner WS", zap.String("url", c.URL))

	// ReadMessage não observa o ctx: fecha a conexão no cancelamento
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.HandleMessage(ctx, message)
	}
}

// HandleMessage decodifica e publica; mensagens inválidas são descartadas com log
func (c *WSClient) HandleMessage(ctx context.Context, message []byte) {
	batch, skipped, err := DecodeBatch(message)
	if err != nil {
		c.Log.Warn("invalid message", zap.Error(err))
		hook(c.OnInvalid)
		return
	}
	for i := 0; i < skipped; i++ {
		hook(c.OnInvalid)
	}

	for _, arb := range batch {
		if arb.Source == "" {
			arb.Source = c.Source
		}
		if err := c.Publisher.Publish(ctx, arb); err != nil {
			c.Log.Error("failed to publish to Kafka", zap.String("match_signature", arb.MatchSignature), zap.Error(err))
			hook(c.OnFailed)
			continue
		}
		hook(c.OnPublished)
	}
}

func hook(f func()) {
	if f != nil {
		f()
	}
}
