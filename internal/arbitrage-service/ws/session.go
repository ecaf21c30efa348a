package ws

import (
	"context"
	"strconv"
	"sync"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// ClientMsg representa uma mensagem recebida do cliente WebSocket
//
//	{"type":"subscribe","arbitrageId":"..."}
//	{"type":"fix","arbitrageId":"...","target":"total"|"0"|"1"...}
//	{"type":"set","arbitrageId":"...","value":150}
//	{"type":"unsubscribe","arbitrageId":"..."}
//	{"type":"ping"}
type ClientMsg struct {
	Type        string   `json:"type"`
	ArbitrageID string   `json:"arbitrageId"`
	Target      string   `json:"target,omitempty"`
	Value       *float64 `json:"value,omitempty"`
}

// ServerMsg é o que o servidor envia: breakdown | error | pong | unsubscribed
type ServerMsg struct {
	Type        string              `json:"type"`
	ArbitrageID string              `json:"arbitrageId,omitempty"`
	Mode        *stakes.ModeSpec    `json:"mode,omitempty"`
	Breakdown   *stakes.Breakdown   `json:"breakdown,omitempty"`
	Allocations []stakes.Allocation `json:"allocations,omitempty"`
	Problem     *stakes.Problem     `json:"problem,omitempty"`
	Error       string              `json:"error,omitempty"`
}

type Loader interface {
	Load(ctx context.Context, id string) (events.ArbitrageFound, error)
}

type calculator struct {
	combo stakes.Combination
	state *stakes.State
}

// Session é o estado da calculadora de uma conexão: uma State por arbitragem assinada
type Session struct {
	loader       Loader
	defaultStake float64

	mu    sync.Mutex
	calcs map[string]*calculator
}

func NewSession(loader Loader, defaultStake float64) *Session {
	if defaultStake <= 0 {
		defaultStake = stakes.DefaultStake
	}
	return &Session{loader: loader, defaultStake: defaultStake, calcs: map[string]*calculator{}}
}

// Subscribed indica se a sessão acompanha a arbitragem
func (s *Session) Subscribed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.calcs[id]
	return ok
}

// Handle aplica uma mensagem do cliente e devolve a resposta
func (s *Session) Handle(ctx context.Context, msg ClientMsg) ServerMsg {
	switch msg.Type {
	case "ping":
		return ServerMsg{Type: "pong"}
	case "subscribe":
		return s.subscribe(ctx, msg.ArbitrageID)
	case "unsubscribe":
		s.mu.Lock()
		delete(s.calcs, msg.ArbitrageID)
		s.mu.Unlock()
		return ServerMsg{Type: "unsubscribed", ArbitrageID: msg.ArbitrageID}
	case "fix":
		return s.fix(msg)
	case "set":
		return s.set(msg)
	}
	return errorMsg(msg.ArbitrageID, "unknown message type")
}

// Update troca as pernas (odds novas) mantendo modo e valores digitados
func (s *Session) Update(u events.ArbitrageUpdate) (ServerMsg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calcs[u.ArbitrageID]
	if !ok {
		return ServerMsg{}, false
	}
	c.combo = events.Combination(u.Payload.CombinationDetails)
	return s.recalculate(u.ArbitrageID, c), true
}

func (s *Session) subscribe(ctx context.Context, id string) ServerMsg {
	if id == "" {
		return errorMsg(id, "arbitrageId is required")
	}
	ev, err := s.loader.Load(ctx, id)
	if err != nil {
		return errorMsg(id, "arbitrage not available")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calcs[id]
	if !ok {
		st := stakes.NewState()
		st.Set(s.defaultStake)
		c = &calculator{state: st}
		s.calcs[id] = c
	}
	c.combo = events.Combination(ev.CombinationDetails)
	return s.recalculate(id, c)
}

func (s *Session) fix(msg ClientMsg) ServerMsg {
	target := stakes.TargetTotal
	if msg.Target != "total" {
		idx, err := strconv.Atoi(msg.Target)
		if err != nil || idx < 0 {
			return errorMsg(msg.ArbitrageID, `target must be "total" or a leg index`)
		}
		target = idx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calcs[msg.ArbitrageID]
	if !ok {
		return errorMsg(msg.ArbitrageID, "not subscribed")
	}
	c.state.Fix(target)
	return s.recalculate(msg.ArbitrageID, c)
}

func (s *Session) set(msg ClientMsg) ServerMsg {
	if msg.Value == nil {
		return errorMsg(msg.ArbitrageID, "value is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calcs[msg.ArbitrageID]
	if !ok {
		return errorMsg(msg.ArbitrageID, "not subscribed")
	}
	c.state.Set(*msg.Value)
	return s.recalculate(msg.ArbitrageID, c)
}

// recalculate assume s.mu travado
func (s *Session) recalculate(id string, c *calculator) ServerMsg {
	spec := stakes.SpecOf(c.state.Mode)
	b, err := c.state.Recalculate(c.combo)
	if err != nil {
		out := ServerMsg{Type: "error", ArbitrageID: id, Mode: &spec, Error: err.Error()}
		if p, ok := stakes.Describe(err); ok {
			out.Problem = &p
		}
		return out
	}
	return ServerMsg{
		Type:        "breakdown",
		ArbitrageID: id,
		Mode:        &spec,
		Breakdown:   &b,
		Allocations: b.Allocations(),
	}
}

func errorMsg(id, text string) ServerMsg {
	return ServerMsg{Type: "error", ArbitrageID: id, Error: text}
}
