package odds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

// Tolerance é a diferença máxima aceita entre a odd enviada e a corrente
const Tolerance = 1e-6

// DriftError indica que a odd de uma perna mudou desde o cálculo
type DriftError struct {
	LegIndex  int
	Submitted float64
	Current   float64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("odds changed on leg %d: submitted %v, current %v", e.LegIndex, e.Submitted, e.Current)
}

type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// Current lê "arb:current:{id}" gravado pelo arbitrage-processor.
// ok=false quando a chave expirou ou nunca existiu
func (v *Validator) Current(ctx context.Context, arbitrageID string) (events.ArbitrageFound, bool, error) {
	var ev events.ArbitrageFound
	b, err := v.Rdb.Get(ctx, "arb:current:"+arbitrageID).Bytes()
	if errors.Is(err, redis.Nil) {
		return ev, false, nil
	}
	if err != nil {
		return ev, false, err
	}
	return ev, true, json.Unmarshal(b, &ev)
}

// CheckDrift compara as odds enviadas com as correntes, perna a perna
func CheckDrift(submitted, current []events.LegDetail) error {
	if len(submitted) != len(current) {
		return fmt.Errorf("combination changed: %d legs submitted, %d current", len(submitted), len(current))
	}
	for i := range submitted {
		s, c := float64(submitted[i].Odds), float64(current[i].Odds)
		if math.Abs(s-c) > Tolerance {
			return &DriftError{LegIndex: i, Submitted: s, Current: c}
		}
	}
	return nil
}
