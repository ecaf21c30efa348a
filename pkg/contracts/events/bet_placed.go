package events

import "github.com/shopspring/decimal"

// Evento emitido pelo bet-service para cada aposta criada
type BetPlaced struct {
	BetID          string          `json:"bet_id"`
	ArbitrageID    string          `json:"arbitrage_id,omitempty"` // vazio quando a aposta é manual
	MatchSignature string          `json:"match_signature,omitempty"`
	LegIndex       int             `json:"leg_index"`
	EventName      string          `json:"event_name"`
	Selection      string          `json:"selection"`
	SportsbookID   string          `json:"sportsbook_id,omitempty"`
	AccountID      string          `json:"account_id,omitempty"`
	Odds           float64         `json:"odds"`
	Stake          decimal.Decimal `json:"stake"`
	TsUnixMs       int64           `json:"ts_unix_ms"`
}
