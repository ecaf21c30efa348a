package bets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pendingBet() *Bet {
	b := &Bet{Sport: "Football", Odds: 2.5, Stake: dec("40"), Status: StatusPending, DatePlaced: now}
	b.RecalculatePotential()
	return b
}

func TestSettle(t *testing.T) {
	b := pendingBet()
	require.Equal(t, "100", b.PotentialPayout.String())

	b.Settle(StatusWon, nil, now)
	assert.Equal(t, "100", b.ActualPayout.String())
	assert.Equal(t, "60", b.ProfitLoss.String())
	require.NotNil(t, b.DateSettled)

	b = pendingBet()
	custom := dec("95.5")
	b.Settle(StatusWon, &custom, now)
	assert.Equal(t, "55.5", b.ProfitLoss.String())

	b = pendingBet()
	b.Settle(StatusLost, nil, now)
	assert.True(t, b.ActualPayout.IsZero())
	assert.Equal(t, "-40", b.ProfitLoss.String())

	b = pendingBet()
	b.Settle(StatusVoid, nil, now)
	assert.Equal(t, "40", b.ActualPayout.String())
	assert.True(t, b.ProfitLoss.IsZero())

	b = pendingBet()
	b.Settle(StatusPending, nil, now)
	assert.Nil(t, b.DateSettled)
}

func TestUpdate_RecalculatesBeforeSettling(t *testing.T) {
	b := pendingBet()
	odds, status := 3.0, "won"
	require.NoError(t, UpdateBetRequest{Odds: &odds, Status: &status}.Apply(b, now))

	assert.Equal(t, "120", b.PotentialPayout.String())
	assert.Equal(t, "120", b.ActualPayout.String())
	assert.Equal(t, "80", b.ProfitLoss.String())
}

func TestUpdate_Validation(t *testing.T) {
	bad := "maybe"
	assert.ErrorIs(t, UpdateBetRequest{Status: &bad}.Apply(pendingBet(), now), ErrInvalidStatus)

	odds := 1.0
	assert.Error(t, UpdateBetRequest{Odds: &odds}.Apply(pendingBet(), now))

	kick := "15/03/2024"
	assert.Error(t, UpdateBetRequest{Kickoff: &kick}.Apply(pendingBet(), now))

	b := pendingBet()
	k := time.Now()
	b.Kickoff = &k
	empty := ""
	notes := "hedged"
	require.NoError(t, UpdateBetRequest{Kickoff: &empty, Notes: &notes}.Apply(b, now))
	assert.Nil(t, b.Kickoff)
	assert.Equal(t, "hedged", b.Notes)
}

func TestCreateBetRequest(t *testing.T) {
	b, err := CreateBetRequest{
		Sport: "Football", EventName: "A vs B", BetType: "1X2", Selection: "A",
		Odds: 1.85, Stake: dec("10.004"), Kickoff: "2024-03-15T20:00:00Z",
	}.New(now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "10", b.Stake.String())
	assert.Equal(t, "18.5", b.PotentialPayout.String())
	require.NotNil(t, b.Kickoff)

	_, err = CreateBetRequest{Sport: "Football"}.New(now)
	assert.EqualError(t, err, "event_name is required")
}

func TestParseKickoff(t *testing.T) {
	for _, s := range []string{"2024-03-15T20:00:00Z", "2024-03-15T20:00:00+01:00", "2024-03-15 20:00:00", "2024-03-15T20:00:00"} {
		k, err := ParseKickoff(s)
		require.NoError(t, err, s)
		require.NotNil(t, k)
	}
	k, err := ParseKickoff("")
	assert.NoError(t, err)
	assert.Nil(t, k)
}

func TestComputeStats(t *testing.T) {
	won := pendingBet()
	won.Settle(StatusWon, nil, now)
	lost := pendingBet()
	lost.Settle(StatusLost, nil, now)
	open := pendingBet()
	open.Sport = "Tennis"

	s := ComputeStats([]Bet{*won, *lost, *open})
	assert.Equal(t, 3, s.TotalBets)
	assert.Equal(t, 2, s.TotalSettled)
	assert.Equal(t, 1, s.TotalWon)
	assert.Equal(t, 1, s.TotalLost)
	assert.Equal(t, "120", s.TotalStaked.String())
	assert.Equal(t, "20", s.TotalProfitLoss.String())
	assert.Equal(t, "100", s.TotalPotentialWinnings.String())
	assert.Equal(t, "50", s.WinRate.String())
	assert.Equal(t, "16.67", s.ROI.String())
	require.Contains(t, s.SportsStats, "Tennis")
	assert.Equal(t, 2, s.SportsStats["Football"].TotalBets)

	empty := ComputeStats(nil)
	assert.True(t, empty.WinRate.IsZero())
	assert.True(t, empty.ROI.IsZero())
}
