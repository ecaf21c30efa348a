package stakes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_DefaultsToFixedTotal(t *testing.T) {
	s := NewState()
	assert.Equal(t, TargetTotal, s.Target())

	b, err := s.Recalculate(sureBet())
	require.NoError(t, err)
	assert.Equal(t, DefaultStake, b.TotalStake)
	require.NotNil(t, s.Last)
}

func TestState_FixLegReseedsFromLastBreakdown(t *testing.T) {
	c := threeWay()
	s := NewState()
	s.Set(250)
	first, err := s.Recalculate(c)
	require.NoError(t, err)

	s.Fix(1)
	assert.Equal(t, 1, s.Target())
	assert.Equal(t, FixedLeg{Index: 1, Stake: first.Legs[1].Stake}, s.Mode)

	second, err := s.Recalculate(c)
	require.NoError(t, err)
	assert.InEpsilon(t, 250, second.TotalStake, eps)
	for i := range c {
		assert.InEpsilon(t, first.Legs[i].Stake, second.Legs[i].Stake, eps)
	}
}

func TestState_BackToTotalUsesDerivedTotal(t *testing.T) {
	c := sureBet()
	s := NewState()
	_, err := s.Recalculate(c)
	require.NoError(t, err)

	s.Fix(0)
	s.Set(80)
	byLeg, err := s.Recalculate(c)
	require.NoError(t, err)
	assert.Equal(t, 80.0, s.Overrides[0])

	s.Fix(TargetTotal)
	assert.Equal(t, FixedTotal{Total: byLeg.TotalStake}, s.Mode)

	byTotal, err := s.Recalculate(c)
	require.NoError(t, err)
	assert.InEpsilon(t, 80, byTotal.Legs[0].Stake, eps)
}

func TestState_SwitchBetweenLegs(t *testing.T) {
	c := threeWay()
	s := NewState()
	_, err := s.Recalculate(c)
	require.NoError(t, err)

	s.Fix(0)
	s.Set(60)
	b, err := s.Recalculate(c)
	require.NoError(t, err)

	s.Fix(2)
	assert.Equal(t, FixedLeg{Index: 2, Stake: b.Legs[2].Stake}, s.Mode)
	b2, err := s.Recalculate(c)
	require.NoError(t, err)
	assert.InEpsilon(t, 60, b2.Legs[0].Stake, eps)
}

func TestState_ErrorKeepsLastBreakdown(t *testing.T) {
	c := sureBet()
	s := NewState()
	good, err := s.Recalculate(c)
	require.NoError(t, err)

	s.Set(0)
	_, err = s.Recalculate(c)
	var e *InvalidStakeError
	require.ErrorAs(t, err, &e)
	require.NotNil(t, s.Last)
	assert.Equal(t, good.TotalStake, s.Last.TotalStake)
}

func TestState_FixWithoutHistoryUsesDefault(t *testing.T) {
	s := NewState()
	s.Fix(1)
	assert.Equal(t, FixedLeg{Index: 1, Stake: DefaultStake}, s.Mode)
}
