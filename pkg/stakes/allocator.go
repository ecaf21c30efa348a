package stakes

import (
	"math"
	"strings"
)

// MinLegs é o mínimo de pernas para uma combinação fazer sentido
const MinLegs = 2

// LegStake é o resultado de uma perna
type LegStake struct {
	Index           int     `json:"index"`
	Bookmaker       string  `json:"bookmaker"`
	Selection       string  `json:"name,omitempty"`
	Odds            float64 `json:"odds"`
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potential_return"`
	Profit          float64 `json:"profit"`
}

// Breakdown é a divisão de stakes calculada para uma combinação.
// O retorno de todas as pernas é o mesmo (a menos de arredondamento).
type Breakdown struct {
	Legs               []LegStake `json:"stakes"`
	ImpliedProbability float64    `json:"implied_probability"`
	TotalStake         float64    `json:"total_stake"`
	TotalProfit        float64    `json:"total_profit"`
	ProfitPercentage   float64    `json:"profit_percentage"`
}

// IsArbitrage indica se a combinação garante lucro (soma das probabilidades < 1)
func (b Breakdown) IsArbitrage() bool { return b.ImpliedProbability < 1 }

// ImpliedProbability valida as pernas e retorna P = Σ 1/odds
func (c Combination) ImpliedProbability() (float64, error) {
	if len(c) < MinLegs {
		return 0, &InsufficientLegsError{Count: len(c)}
	}
	var p float64
	for i, l := range c {
		if err := validateLeg(i, l); err != nil {
			return 0, err
		}
		p += 1 / float64(l.Odds)
	}
	return p, nil
}

// ProfitPercentage é 100·(1/P − 1), independente do total apostado
func (c Combination) ProfitPercentage() (float64, error) {
	p, err := c.ImpliedProbability()
	if err != nil {
		return 0, err
	}
	return 100 * (1/p - 1), nil
}

// Allocate calcula o stake de cada perna para que o retorno seja o mesmo
// qualquer que seja o resultado. Não altera c nem aplica valores padrão.
func Allocate(c Combination, m Mode) (Breakdown, error) {
	p, err := c.ImpliedProbability()
	if err != nil {
		return Breakdown{}, err
	}

	switch m := m.(type) {
	case FixedTotal:
		if !positive(m.Total) {
			return Breakdown{}, &InvalidStakeError{Field: "total", Value: m.Total}
		}
		return finite(build(c, p, m.Total, -1, 0), "total", m.Total)

	case FixedLeg:
		if m.Index < 0 || m.Index >= len(c) {
			return Breakdown{}, &InvalidLegError{Index: m.Index, Reason: "fixed leg index out of range"}
		}
		if !positive(m.Stake) {
			return Breakdown{}, &InvalidStakeError{Field: "stake", Value: m.Stake}
		}
		total := m.Stake * float64(c[m.Index].Odds) * p
		return finite(build(c, p, total, m.Index, m.Stake), "stake", m.Stake)
	}

	return Breakdown{}, ErrUnknownMode
}

// build monta o breakdown a partir do total; a perna fixa (se houver)
// usa o stake informado em vez de recalcular
func build(c Combination, p, total float64, fixed int, fixedStake float64) Breakdown {
	legs := make([]LegStake, len(c))
	for i, l := range c {
		odds := float64(l.Odds)
		stake := total / (odds * p)
		if i == fixed {
			stake = fixedStake
		}
		ret := stake * odds
		legs[i] = LegStake{
			Index:           i,
			Bookmaker:       l.Bookmaker,
			Selection:       l.Selection,
			Odds:            odds,
			Stake:           stake,
			PotentialReturn: ret,
			Profit:          ret - total,
		}
	}

	profit := total/p - total
	return Breakdown{
		Legs:               legs,
		ImpliedProbability: p,
		TotalStake:         total,
		TotalProfit:        profit,
		ProfitPercentage:   100 * profit / total,
	}
}

// finite rejeita valores que estouram float64 (ex.: total perto de MaxFloat64);
// o breakdown precisa continuar serializável em JSON
func finite(b Breakdown, field string, value float64) (Breakdown, error) {
	vals := []float64{b.TotalStake, b.TotalProfit, b.ProfitPercentage}
	for _, l := range b.Legs {
		vals = append(vals, l.Stake, l.PotentialReturn, l.Profit)
	}
	for _, v := range vals {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Breakdown{}, &InvalidStakeError{Field: field, Value: value}
		}
	}
	return b, nil
}

func validateLeg(i int, l Leg) error {
	odds := float64(l.Odds)
	switch {
	case strings.TrimSpace(l.Bookmaker) == "":
		return &InvalidLegError{Index: i, Reason: "bookmaker is required"}
	case math.IsNaN(odds) || math.IsInf(odds, 0):
		return &InvalidLegError{Index: i, Bookmaker: l.Bookmaker, Reason: "odds are not numeric"}
	case odds == 0:
		return &InvalidLegError{Index: i, Bookmaker: l.Bookmaker, Reason: "odds are missing"}
	case odds <= 1:
		return &InvalidLegError{Index: i, Bookmaker: l.Bookmaker, Reason: "decimal odds must be greater than 1"}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
