package events

import (
	"time"

	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// LegDetail é uma perna de arbitragem como chega do scanner,
// com os dados da partida e do mercado
type LegDetail struct {
	Bookmaker string        `json:"bookmaker"`
	Odds      stakes.Number `json:"odds"`
	Name      string        `json:"name,omitempty"`
	Market    string        `json:"market,omitempty"`
	HomeTeam  string        `json:"home_team,omitempty"`
	AwayTeam  string        `json:"away_team,omitempty"`
	League    string        `json:"league,omitempty"`
	Country   string        `json:"country,omitempty"`
}

// Leg converte para a perna usada pelo alocador
func (d LegDetail) Leg() stakes.Leg {
	return stakes.Leg{Bookmaker: d.Bookmaker, Odds: d.Odds, Selection: d.Name}
}

// Combination extrai a combinação de pernas na mesma ordem
func Combination(details []LegDetail) stakes.Combination {
	c := make(stakes.Combination, 0, len(details))
	for _, d := range details {
		c = append(c, d.Leg())
	}
	return c
}

// Evento publicado no tópico "arbitrage_found"
type ArbitrageFound struct {
	MatchSignature     string      `json:"match_signature"`
	Profit             float64     `json:"profit"` // % informado pelo scanner (só exibição)
	KickoffDatetime    string      `json:"kickoff_datetime"`
	CombinationDetails []LegDetail `json:"combination_details"`
	Source             string      `json:"source,omitempty"`
	FoundAt            time.Time   `json:"found_at"`
}
