package bets

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CreateBetRequest é o corpo do POST /bets
type CreateBetRequest struct {
	Sport        string          `json:"sport"`
	EventName    string          `json:"event_name"`
	BetType      string          `json:"bet_type"`
	Selection    string          `json:"selection"`
	SportsbookID *string         `json:"sportsbook_id,omitempty"`
	AccountID    *string         `json:"account_id,omitempty"`
	Odds         float64         `json:"odds"`
	Stake        decimal.Decimal `json:"stake"`
	Kickoff      string          `json:"kickoff,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// New valida o pedido e monta uma aposta pendente
func (r CreateBetRequest) New(now time.Time) (*Bet, error) {
	switch {
	case strings.TrimSpace(r.Sport) == "":
		return nil, errors.New("sport is required")
	case strings.TrimSpace(r.EventName) == "":
		return nil, errors.New("event_name is required")
	case strings.TrimSpace(r.BetType) == "":
		return nil, errors.New("bet_type is required")
	case strings.TrimSpace(r.Selection) == "":
		return nil, errors.New("selection is required")
	case r.Odds <= 1:
		return nil, errors.New("odds must be greater than 1")
	case !r.Stake.IsPositive():
		return nil, errors.New("stake must be positive")
	}
	kickoff, err := ParseKickoff(r.Kickoff)
	if err != nil {
		return nil, err
	}

	b := &Bet{
		Sport:        r.Sport,
		EventName:    r.EventName,
		BetType:      r.BetType,
		Selection:    r.Selection,
		SportsbookID: r.SportsbookID,
		AccountID:    r.AccountID,
		Odds:         r.Odds,
		Stake:        r.Stake.Round(2),
		Status:       StatusPending,
		DatePlaced:   now,
		Kickoff:      kickoff,
		Notes:        r.Notes,
	}
	b.RecalculatePotential()
	return b, nil
}

// UpdateBetRequest é o corpo do PUT /bets/{id}; só os campos presentes mudam.
// Kickoff vazio ("") limpa a data.
type UpdateBetRequest struct {
	Sport        *string          `json:"sport,omitempty"`
	EventName    *string          `json:"event_name,omitempty"`
	BetType      *string          `json:"bet_type,omitempty"`
	Selection    *string          `json:"selection,omitempty"`
	SportsbookID *string          `json:"sportsbook_id,omitempty"`
	AccountID    *string          `json:"account_id,omitempty"`
	Odds         *float64         `json:"odds,omitempty"`
	Stake        *decimal.Decimal `json:"stake,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Kickoff      *string          `json:"kickoff,omitempty"`
	Status       *string          `json:"status,omitempty"`
	ActualPayout *decimal.Decimal `json:"actual_payout,omitempty"`
}

// Apply altera a aposta. Odds/stake recalculam o potencial antes da liquidação,
// assim um "won" no mesmo pedido usa o potencial novo.
func (u UpdateBetRequest) Apply(b *Bet, now time.Time) error {
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{u.Sport, &b.Sport}, {u.EventName, &b.EventName}, {u.BetType, &b.BetType},
		{u.Selection, &b.Selection}, {u.Notes, &b.Notes},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if u.SportsbookID != nil {
		b.SportsbookID = u.SportsbookID
	}
	if u.AccountID != nil {
		b.AccountID = u.AccountID
	}

	if u.Kickoff != nil {
		k, err := ParseKickoff(*u.Kickoff)
		if err != nil {
			return err
		}
		b.Kickoff = k
	}

	if u.Odds != nil || u.Stake != nil {
		if u.Odds != nil {
			if *u.Odds <= 1 {
				return errors.New("odds must be greater than 1")
			}
			b.Odds = *u.Odds
		}
		if u.Stake != nil {
			if !u.Stake.IsPositive() {
				return errors.New("stake must be positive")
			}
			b.Stake = u.Stake.Round(2)
		}
		b.RecalculatePotential()
	}

	if u.Status != nil {
		st, err := ParseStatus(*u.Status)
		if err != nil {
			return err
		}
		b.Settle(st, u.ActualPayout, now)
	}
	return nil
}
