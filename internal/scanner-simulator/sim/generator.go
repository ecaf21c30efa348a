package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// Match é uma partida do catálogo simulado
type Match struct {
	Home, Away      string
	League, Country string
	KickoffIn       time.Duration // relativo ao início da simulação
}

var DefaultCatalog = []Match{
	{Home: "Flamengo", Away: "Palmeiras", League: "Serie A", Country: "Brazil", KickoffIn: 26 * time.Hour},
	{Home: "Grêmio", Away: "Internacional", League: "Serie A", Country: "Brazil", KickoffIn: 50 * time.Hour},
	{Home: "Arsenal", Away: "Chelsea", League: "Premier League", Country: "England", KickoffIn: 30 * time.Hour},
	{Home: "Sevilla", Away: "Real Betis", League: "La Liga", Country: "Spain", KickoffIn: 74 * time.Hour},
}

var DefaultBookmakers = []string{"bet365", "betano", "pinnacle", "sportingbet", "betfair"}

// Generator produz odds 1X2 por casa e emite as combinações de melhores odds
// que fecham arbitragem (Σ1/odds < 1)
type Generator struct {
	Matches    []Match
	Bookmakers []string
	Rand       *rand.Rand
	Start      time.Time
	Source     string
}

func NewGenerator(seed int64, start time.Time) *Generator {
	return &Generator{
		Matches:    DefaultCatalog,
		Bookmakers: DefaultBookmakers,
		Rand:       rand.New(rand.NewSource(seed)),
		Start:      start,
		Source:     "scanner-simulator",
	}
}

var outcomes = []string{"Home", "Draw", "Away"}

// Next gera uma rodada e devolve só as oportunidades com lucro positivo
func (g *Generator) Next(now time.Time) []events.ArbitrageFound {
	var out []events.ArbitrageFound
	for _, m := range g.Matches {
		if arb, ok := g.round(m, now); ok {
			out = append(out, arb)
		}
	}
	return out
}

func (g *Generator) round(m Match, now time.Time) (events.ArbitrageFound, bool) {
	// probabilidades "justas" da partida
	home := 0.25 + g.Rand.Float64()*0.3
	draw := 0.2 + g.Rand.Float64()*0.1
	fair := []float64{home, draw, 1 - home - draw}

	legs := make([]events.LegDetail, len(outcomes))
	kickoff := g.Start.Add(m.KickoffIn)
	for i, p := range fair {
		best := 0.0
		for _, book := range g.Bookmakers {
			// margem da casa entre -4% e +6%; negativas abrem espaço para arbitragem
			margin := -0.04 + g.Rand.Float64()*0.10
			odds := math.Round(100/(p*(1+margin))) / 100
			if odds > best {
				best = odds
				legs[i] = events.LegDetail{
					Bookmaker: book,
					Odds:      stakes.Number(odds),
					Name:      selection(i, m),
					Market:    "1X2",
					HomeTeam:  m.Home,
					AwayTeam:  m.Away,
					League:    m.League,
					Country:   m.Country,
				}
			}
		}
	}

	profit, err := events.Combination(legs).ProfitPercentage()
	if err != nil || profit <= 0 {
		return events.ArbitrageFound{}, false
	}
	return events.ArbitrageFound{
		MatchSignature:     Signature(m, kickoff),
		Profit:             math.Round(profit*100) / 100,
		KickoffDatetime:    kickoff.UTC().Format("2006-01-02 15:04:05"),
		CombinationDetails: legs,
		Source:             g.Source,
		FoundAt:            now.UTC(),
	}, true
}

func selection(i int, m Match) string {
	switch outcomes[i] {
	case "Home":
		return m.Home
	case "Away":
		return m.Away
	}
	return "Draw"
}

// Signature identifica a partida: "Casa_vs_Fora_AAAA-MM-DD"
func Signature(m Match, kickoff time.Time) string {
	return fmt.Sprintf("%s_vs_%s_%s", m.Home, m.Away, kickoff.UTC().Format("2006-01-02"))
}
