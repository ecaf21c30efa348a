package bets

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusVoid    Status = "void"
)

var ErrInvalidStatus = errors.New("status must be pending, won, lost or void")

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusWon, StatusLost, StatusVoid:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Settled indica se a aposta já foi liquidada
func (s Status) Settled() bool { return s == StatusWon || s == StatusLost || s == StatusVoid }

// Bet é o modelo persistido no Postgres.
// Sportsbook e Account são preenchidos na leitura (join com o ledger)
type Bet struct {
	ID              string          `json:"id"`
	Sport           string          `json:"sport"`
	EventName       string          `json:"event_name"`
	BetType         string          `json:"bet_type"`
	Selection       string          `json:"selection"`
	SportsbookID    *string         `json:"sportsbook_id"`
	Sportsbook      *string         `json:"sportsbook"`
	AccountID       *string         `json:"account_id"`
	Account         *string         `json:"account"`
	AccountName     *string         `json:"account_name"`
	ArbitrageID     *string         `json:"arbitrage_id,omitempty"`
	Odds            float64         `json:"odds"`
	Stake           decimal.Decimal `json:"stake"`
	Status          Status          `json:"status"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	ActualPayout    decimal.Decimal `json:"actual_payout"`
	ProfitLoss      decimal.Decimal `json:"profit_loss"`
	DatePlaced      time.Time       `json:"date_placed"`
	DateSettled     *time.Time      `json:"date_settled"`
	Kickoff         *time.Time      `json:"kickoff"`
	Notes           string          `json:"notes"`
}

// Payout é stake × odds em centavos
func Payout(stake decimal.Decimal, odds float64) decimal.Decimal {
	return stake.Mul(decimal.NewFromFloat(odds)).Round(2)
}

// RecalculatePotential atualiza potential_payout após mudança de odds ou stake
func (b *Bet) RecalculatePotential() {
	b.PotentialPayout = Payout(b.Stake, b.Odds)
}

// Settle aplica a liquidação:
//
//	won  -> actual = informado (ou potential), P/L = actual − stake
//	lost -> actual = 0, P/L = −stake
//	void -> actual = stake, P/L = 0
//
// pending só troca o status.
func (b *Bet) Settle(st Status, actualPayout *decimal.Decimal, now time.Time) {
	b.Status = st
	switch st {
	case StatusWon:
		b.ActualPayout = b.PotentialPayout
		if actualPayout != nil {
			b.ActualPayout = *actualPayout
		}
		b.ProfitLoss = b.ActualPayout.Sub(b.Stake)
	case StatusLost:
		b.ActualPayout = decimal.Zero
		b.ProfitLoss = b.Stake.Neg()
	case StatusVoid:
		b.ActualPayout = b.Stake
		b.ProfitLoss = decimal.Zero
	default:
		return
	}
	t := now
	b.DateSettled = &t
}

// ParseKickoff aceita RFC3339 (com ou sem Z) e "2006-01-02 15:04:05"
func ParseKickoff(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid kickoff datetime format")
}
