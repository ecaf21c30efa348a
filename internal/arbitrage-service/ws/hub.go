package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// client agrupa a conexão e a sessão da calculadora; gorilla só permite um writer por vez
type client struct {
	conn    *websocket.Conn
	session *Session
	wmu     sync.Mutex
}

func (c *client) send(msg ServerMsg) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Hub gerencia conexões WebSocket e assinaturas de arbitragens
// subs: mapeia arbitrageID para o conjunto de clientes inscritos
type Hub struct {
	upgrader     websocket.Upgrader
	loader       Loader
	defaultStake float64
	log          *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(loader Loader, defaultStake float64, log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader:     websocket.Upgrader{CheckOrigin: allowOrigin},
		loader:       loader,
		defaultStake: defaultStake,
		log:          log,
		subs:         make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada mensagem do cliente é aplicada na sessão e o resultado volta na mesma conexão
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn, session: NewSession(h.loader, h.defaultStake)}
	defer h.drop(c)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		out := c.session.Handle(ctx, msg)
		cancel()

		if msg.ArbitrageID != "" {
			h.track(c, msg.ArbitrageID, c.session.Subscribed(msg.ArbitrageID))
		}
		if err := c.send(out); err != nil {
			break
		}
	}
}

func (h *Hub) track(c *client, id string, subscribed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subscribed {
		if _, ok := h.subs[id]; !ok {
			h.subs[id] = make(map[*client]struct{})
		}
		h.subs[id][c] = struct{}{}
		return
	}
	if set, ok := h.subs[id]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// drop remove a conexão de todas as assinaturas ao desconectar
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// Subscribers retorna quantos clientes acompanham a arbitragem
func (h *Hub) Subscribers(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[id])
}

// Broadcast recalcula e envia o breakdown para cada cliente inscrito na arbitragem
func (h *Hub) Broadcast(u events.ArbitrageUpdate) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[u.ArbitrageID]))
	for c := range h.subs[u.ArbitrageID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		msg, ok := c.session.Update(u)
		if !ok {
			continue
		}
		if err := c.send(msg); err != nil {
			h.log.Debug("ws send failed", zap.String("arbitrage_id", u.ArbitrageID), zap.Error(err))
		}
	}
}
