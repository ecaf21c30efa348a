package stakes

import "github.com/shopspring/decimal"

// RoundCents arredonda um valor monetário para 2 casas
func RoundCents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Allocation é o stake final de uma perna, enviado na confirmação das apostas
type Allocation struct {
	LegIndex  int             `json:"leg_index"`
	Bookmaker string          `json:"bookmaker"`
	Selection string          `json:"name,omitempty"`
	Odds      float64         `json:"odds"`
	Stake     decimal.Decimal `json:"stake"`
}

// Allocations converte o breakdown no payload de confirmação (uma aposta por perna)
func (b Breakdown) Allocations() []Allocation {
	out := make([]Allocation, 0, len(b.Legs))
	for _, l := range b.Legs {
		out = append(out, Allocation{
			LegIndex:  l.Index,
			Bookmaker: l.Bookmaker,
			Selection: l.Selection,
			Odds:      l.Odds,
			Stake:     RoundCents(l.Stake),
		})
	}
	return out
}
