package bets

import "github.com/shopspring/decimal"

type SportStats struct {
	TotalBets   int             `json:"total_bets"`
	TotalStaked decimal.Decimal `json:"total_staked"`
	ProfitLoss  decimal.Decimal `json:"profit_loss"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
}

type Stats struct {
	TotalBets              int                    `json:"total_bets"`
	TotalSettled           int                    `json:"total_settled"`
	TotalWon               int                    `json:"total_won"`
	TotalLost              int                    `json:"total_lost"`
	TotalStaked            decimal.Decimal        `json:"total_staked"`
	TotalProfitLoss        decimal.Decimal        `json:"total_profit_loss"`
	TotalPotentialWinnings decimal.Decimal        `json:"total_potential_winnings"`
	WinRate                decimal.Decimal        `json:"win_rate"`
	ROI                    decimal.Decimal        `json:"roi"`
	SportsStats            map[string]*SportStats `json:"sports_stats"`
}

var hundred = decimal.NewFromInt(100)

// ComputeStats agrega as apostas. win_rate = ganhas/liquidadas, roi = P/L/total apostado (em %)
func ComputeStats(list []Bet) Stats {
	s := Stats{SportsStats: map[string]*SportStats{}}
	for _, b := range list {
		s.TotalBets++
		s.TotalStaked = s.TotalStaked.Add(b.Stake)

		if b.Status.Settled() {
			s.TotalSettled++
			s.TotalProfitLoss = s.TotalProfitLoss.Add(b.ProfitLoss)
		}
		switch b.Status {
		case StatusWon:
			s.TotalWon++
		case StatusLost:
			s.TotalLost++
		case StatusPending:
			s.TotalPotentialWinnings = s.TotalPotentialWinnings.Add(b.PotentialPayout)
		}

		sp, ok := s.SportsStats[b.Sport]
		if !ok {
			sp = &SportStats{}
			s.SportsStats[b.Sport] = sp
		}
		sp.TotalBets++
		sp.TotalStaked = sp.TotalStaked.Add(b.Stake)
		sp.ProfitLoss = sp.ProfitLoss.Add(b.ProfitLoss)
		switch b.Status {
		case StatusWon:
			sp.Won++
		case StatusLost:
			sp.Lost++
		}
	}

	if s.TotalSettled > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.TotalWon)).Mul(hundred).
			Div(decimal.NewFromInt(int64(s.TotalSettled))).Round(2)
	}
	if s.TotalStaked.IsPositive() {
		s.ROI = s.TotalProfitLoss.Mul(hundred).Div(s.TotalStaked).Round(2)
	}
	s.TotalStaked = s.TotalStaked.Round(2)
	s.TotalProfitLoss = s.TotalProfitLoss.Round(2)
	s.TotalPotentialWinnings = s.TotalPotentialWinnings.Round(2)
	return s
}
