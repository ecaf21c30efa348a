package sim

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Hub gerencia os clientes WS conectados e faz broadcast das rodadas
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
	log     *zap.Logger

	upgrader    websocket.Upgrader
	connections prometheus.Gauge
	sent        prometheus.Counter
}

func NewHub(log *zap.Logger, connections prometheus.Gauge, sent prometheus.Counter) *Hub {
	return &Hub{
		clients:     make(map[string]*websocket.Conn),
		log:         log,
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		connections: connections,
		sent:        sent,
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(id string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = c
	if h.connections != nil {
		h.connections.Inc()
	}
	h.log.Info("ws client connected", zap.String("client_id", id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		if h.connections != nil {
			h.connections.Dec()
		}
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Broadcast envia v em JSON para todos os clientes; falha de escrita fecha o cliente
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	// escrita sob lock exclusivo: gorilla não aceita writers concorrentes
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.Close()
			continue
		}
		if h.sent != nil {
			h.sent.Inc()
		}
	}
}

// HandleWS aceita o cliente e descarta o que ele enviar até desconectar
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	h.add(id, conn)

	go func() {
		defer func() {
			h.remove(id)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
