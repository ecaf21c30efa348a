package stakes

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func threeWay() Combination {
	return Combination{
		{Bookmaker: "bet365", Odds: 2.5, Selection: "Home"},
		{Bookmaker: "pinnacle", Odds: 3.2, Selection: "Draw"},
		{Bookmaker: "unibet", Odds: 2.8, Selection: "Away"},
	}
}

func sureBet() Combination {
	return Combination{
		{Bookmaker: "betfair", Odds: 2.2, Selection: "Over 2.5"},
		{Bookmaker: "coral", Odds: 2.1, Selection: "Under 2.5"},
	}
}

func assertEqualReturns(t *testing.T, b Breakdown) {
	t.Helper()
	want := b.Legs[0].PotentialReturn
	for _, l := range b.Legs {
		assert.InEpsilon(t, want, l.PotentialReturn, eps, "leg %d", l.Index)
		assert.InDelta(t, b.Legs[0].Profit, l.Profit, 1e-6, "leg %d", l.Index)
	}
}

func TestAllocate_FixedTotalEqualReturns(t *testing.T) {
	for _, c := range []Combination{threeWay(), sureBet()} {
		for _, total := range []float64{1, 100, 250.75, 5000} {
			b, err := Allocate(c, FixedTotal{Total: total})
			require.NoError(t, err)
			require.Len(t, b.Legs, len(c))
			assertEqualReturns(t, b)

			var sum float64
			for _, l := range b.Legs {
				sum += l.Stake
			}
			assert.InEpsilon(t, total, sum, eps)
			assert.Equal(t, total, b.TotalStake)
		}
	}
}

func TestAllocate_ProfitPercentageIndependentOfTotal(t *testing.T) {
	c := sureBet()
	small, err := Allocate(c, FixedTotal{Total: 100})
	require.NoError(t, err)
	large, err := Allocate(c, FixedTotal{Total: 5000})
	require.NoError(t, err)

	assert.InDelta(t, small.ProfitPercentage, large.ProfitPercentage, eps)

	p := 1/2.2 + 1/2.1
	assert.InDelta(t, 100*(1/p-1), small.ProfitPercentage, eps)
	assert.True(t, small.IsArbitrage())
	assert.Greater(t, small.TotalProfit, 0.0)
}

func TestAllocate_ModeSwitchRoundTrip(t *testing.T) {
	c := threeWay()
	const total = 321.0
	byTotal, err := Allocate(c, FixedTotal{Total: total})
	require.NoError(t, err)

	for k := range c {
		byLeg, err := Allocate(c, FixedLeg{Index: k, Stake: byTotal.Legs[k].Stake})
		require.NoError(t, err)
		assert.InEpsilon(t, total, byLeg.TotalStake, eps, "leg %d", k)
		assert.Equal(t, byTotal.Legs[k].Stake, byLeg.Legs[k].Stake, "fixed stake must be used verbatim")
		for i := range c {
			assert.InEpsilon(t, byTotal.Legs[i].Stake, byLeg.Legs[i].Stake, eps)
		}
		assertEqualReturns(t, byLeg)
	}
}

func TestAllocate_FixedLegKeepsSuppliedStake(t *testing.T) {
	c := sureBet()
	b, err := Allocate(c, FixedLeg{Index: 1, Stake: 33.33})
	require.NoError(t, err)

	assert.Equal(t, 33.33, b.Legs[1].Stake)
	p := 1/2.2 + 1/2.1
	assert.InEpsilon(t, 33.33*2.1*p, b.TotalStake, eps)
	assertEqualReturns(t, b)
}

func TestAllocate_BreakEvenMarket(t *testing.T) {
	c := Combination{
		{Bookmaker: "a", Odds: 2},
		{Bookmaker: "b", Odds: 4},
		{Bookmaker: "c", Odds: 4},
	}
	for _, total := range []float64{10, 100, 9999} {
		b, err := Allocate(c, FixedTotal{Total: total})
		require.NoError(t, err)
		assert.InDelta(t, 0, b.ProfitPercentage, eps)
		assert.InDelta(t, 0, b.TotalProfit, eps)
	}
}

func TestAllocate_NoArbitrageStillReturnsBreakdown(t *testing.T) {
	b, err := Allocate(threeWay(), FixedTotal{Total: 100})
	require.NoError(t, err)

	p := 0.4 + 0.3125 + 1/2.8
	assert.InDelta(t, p, b.ImpliedProbability, eps)
	assert.InDelta(t, 100*(1/p-1), b.ProfitPercentage, eps)
	assert.InDelta(t, -6.5109, b.ProfitPercentage, 1e-3)
	assert.Less(t, b.ProfitPercentage, 0.0)
	assert.False(t, b.IsArbitrage())
	assertEqualReturns(t, b)
}

func TestAllocate_OverUnderScenario(t *testing.T) {
	c := Combination{
		{Bookmaker: "bet365", Odds: 1.9, Selection: "Under"},
		{Bookmaker: "williamhill", Odds: 2.1, Selection: "Over"},
	}
	b, err := Allocate(c, FixedTotal{Total: 100})
	require.NoError(t, err)

	assert.InDelta(t, 52.5, b.Legs[0].Stake, 0.01)
	assert.InDelta(t, 47.5, b.Legs[1].Stake, 0.01)
	assert.InDelta(t, -0.25, b.ProfitPercentage, 0.01)
	assert.Equal(t, "52.50", b.Allocations()[0].Stake.StringFixed(2))
	assert.Equal(t, "47.50", b.Allocations()[1].Stake.StringFixed(2))
}

func TestAllocate_Errors(t *testing.T) {
	valid := sureBet()
	tests := []struct {
		name  string
		combo Combination
		mode  Mode
		check func(t *testing.T, err error)
	}{
		{
			name:  "single leg total",
			combo: Combination{{Bookmaker: "a", Odds: 2}},
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InsufficientLegsError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 1, e.Count)
			},
		},
		{
			name:  "single leg fixed leg",
			combo: Combination{{Bookmaker: "a", Odds: 2}},
			mode:  FixedLeg{Index: 0, Stake: 10},
			check: func(t *testing.T, err error) {
				var e *InsufficientLegsError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:  "empty",
			combo: nil,
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InsufficientLegsError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 0, e.Count)
			},
		},
		{
			name:  "total overflows",
			combo: Combination{{Bookmaker: "a", Odds: 2.2}, {Bookmaker: "b", Odds: 2.1}},
			mode:  FixedTotal{Total: 1.7e308},
			check: func(t *testing.T, err error) {
				var e *InvalidStakeError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "total", e.Field)
			},
		},
		{
			name:  "fixed leg stake overflows",
			combo: Combination{{Bookmaker: "a", Odds: 2.2}, {Bookmaker: "b", Odds: 2.1}},
			mode:  FixedLeg{Index: 0, Stake: 1e308},
			check: func(t *testing.T, err error) {
				var e *InvalidStakeError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "stake", e.Field)
			},
		},
		{
			name:  "negative odds",
			combo: Combination{{Bookmaker: "a", Odds: 2}, {Bookmaker: "b", Odds: -3}},
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InvalidLegError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 1, e.Index)
				assert.Equal(t, "b", e.Bookmaker)
			},
		},
		{
			name:  "missing odds",
			combo: Combination{{Bookmaker: "a"}, {Bookmaker: "b", Odds: 3}},
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InvalidLegError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 0, e.Index)
				assert.Contains(t, e.Error(), "missing")
			},
		},
		{
			name:  "nan odds",
			combo: Combination{{Bookmaker: "a", Odds: 2}, {Bookmaker: "b", Odds: Number(math.NaN())}},
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InvalidLegError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 1, e.Index)
			},
		},
		{
			name:  "empty bookmaker",
			combo: Combination{{Bookmaker: " ", Odds: 2}, {Bookmaker: "b", Odds: 3}},
			mode:  FixedTotal{Total: 100},
			check: func(t *testing.T, err error) {
				var e *InvalidLegError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 0, e.Index)
			},
		},
		{
			name:  "zero total",
			combo: valid,
			mode:  FixedTotal{Total: 0},
			check: func(t *testing.T, err error) {
				var e *InvalidStakeError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "total", e.Field)
			},
		},
		{
			name:  "nan total",
			combo: valid,
			mode:  FixedTotal{Total: math.NaN()},
			check: func(t *testing.T, err error) {
				var e *InvalidStakeError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:  "negative fixed stake",
			combo: valid,
			mode:  FixedLeg{Index: 0, Stake: -5},
			check: func(t *testing.T, err error) {
				var e *InvalidStakeError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "stake", e.Field)
			},
		},
		{
			name:  "fixed index out of range",
			combo: valid,
			mode:  FixedLeg{Index: 2, Stake: 10},
			check: func(t *testing.T, err error) {
				var e *InvalidLegError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 2, e.Index)
			},
		},
		{
			name:  "nil mode",
			combo: valid,
			mode:  nil,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrUnknownMode))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.combo, tt.mode)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAllocate_DoesNotMutateInput(t *testing.T) {
	c := threeWay()
	orig := append(Combination(nil), c...)
	_, err := Allocate(c, FixedLeg{Index: 2, Stake: 40})
	require.NoError(t, err)
	assert.Equal(t, orig, c)
}

func TestLegUnmarshal_OddsFormats(t *testing.T) {
	var c Combination
	err := json.Unmarshal([]byte(`[
		{"bookmaker":"bet365","odds":2.5,"name":"Home"},
		{"bookmaker":"pinnacle","odds":" 3.20 "},
		{"bookmaker":"unibet","odds":"n/a"},
		{"bookmaker":"coral"}
	]`), &c)
	require.NoError(t, err)
	require.Len(t, c, 4)

	assert.Equal(t, Number(2.5), c[0].Odds)
	assert.Equal(t, "Home", c[0].Selection)
	assert.Equal(t, Number(3.2), c[1].Odds)
	assert.True(t, math.IsNaN(float64(c[2].Odds)))
	assert.Equal(t, Number(0), c[3].Odds)

	_, err = Allocate(c, FixedTotal{Total: 100})
	var e *InvalidLegError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Index)
}
