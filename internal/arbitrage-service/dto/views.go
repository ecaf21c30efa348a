package dto

// Group resume as arbitragens de uma partida com a melhor delas
type Group struct {
	MatchSignature  string    `json:"match_signature"`
	BestArbitrage   Arbitrage `json:"best_arbitrage"`
	TotalArbitrages int       `json:"total_arbitrages"`
	MaxProfit       float64   `json:"max_profit"`
	MinProfit       float64   `json:"min_profit"`
	MarketsCount    int       `json:"markets_count"`
	Markets         []string  `json:"markets"`
}

type Pagination struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	TotalGroups int  `json:"total_groups"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

type GroupedPage struct {
	Groups     []Group    `json:"groups"`
	Pagination Pagination `json:"pagination"`
}

type MatchInfo struct {
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	League          string `json:"league"`
	Country         string `json:"country"`
	KickoffDatetime string `json:"kickoff_datetime"`
}

// MatchView lista todas as arbitragens de uma partida, agrupadas por mercado
type MatchView struct {
	MatchSignature string                 `json:"match_signature"`
	Arbitrages     []Arbitrage            `json:"arbitrages"`
	MarketsData    map[string][]Arbitrage `json:"markets_data"`
	TotalCount     int                    `json:"total_count"`
	MaxProfit      float64                `json:"max_profit"`
	MinProfit      float64                `json:"min_profit"`
	Markets        []string               `json:"markets"`
	MatchInfo      MatchInfo              `json:"match_info"`
}

type Stats struct {
	TotalOpportunities int            `json:"total_opportunities"`
	DistinctMatches    int            `json:"distinct_matches"`
	AverageProfit      float64        `json:"average_profit"`
	MaxProfit          float64        `json:"max_profit"`
	MinProfit          float64        `json:"min_profit"`
	MostCommonMarket   *string        `json:"most_common_market"`
	LeagueDistribution map[string]int `json:"league_distribution"`
}
