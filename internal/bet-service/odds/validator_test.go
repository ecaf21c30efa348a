package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

func TestCheckDrift(t *testing.T) {
	cur := []events.LegDetail{{Bookmaker: "a", Odds: 2.1}, {Bookmaker: "b", Odds: 2.05}}

	assert.NoError(t, CheckDrift([]events.LegDetail{{Odds: 2.1}, {Odds: 2.05}}, cur))

	err := CheckDrift([]events.LegDetail{{Odds: 2.1}, {Odds: 2.2}}, cur)
	var drift *DriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, 1, drift.LegIndex)
	assert.Equal(t, 2.05, drift.Current)

	assert.Error(t, CheckDrift(cur[:1], cur))
}
