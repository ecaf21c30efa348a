// Package view monta as respostas agregadas (agrupamento por partida,
// visão de uma partida e estatísticas) a partir das arbitragens do banco.
package view

import (
	"math"
	"sort"

	"github.com/radieske/arb-bet-tracker/internal/arbitrage-service/dto"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Grouped agrupa por match_signature mantendo a melhor arbitragem de cada grupo,
// ordena os grupos e aplica a paginação
func Grouped(arbs []dto.Arbitrage, sortBy, sortOrder string, page, perPage int) dto.GroupedPage {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	order := []string{}
	bySig := map[string][]dto.Arbitrage{}
	for _, a := range arbs {
		if _, ok := bySig[a.MatchSignature]; !ok {
			order = append(order, a.MatchSignature)
		}
		bySig[a.MatchSignature] = append(bySig[a.MatchSignature], a)
	}

	groups := make([]dto.Group, 0, len(order))
	for _, sig := range order {
		list := bySig[sig]
		best := list[0]
		minP, maxP := list[0].Profit, list[0].Profit
		for _, a := range list[1:] {
			if a.Profit > best.Profit {
				best = a
			}
			minP = math.Min(minP, a.Profit)
			maxP = math.Max(maxP, a.Profit)
		}
		markets := distinctMarkets(best)
		groups = append(groups, dto.Group{
			MatchSignature:  sig,
			BestArbitrage:   best,
			TotalArbitrages: len(list),
			MaxProfit:       maxP,
			MinProfit:       minP,
			MarketsCount:    len(markets),
			Markets:         markets,
		})
	}

	desc := sortOrder != "asc"
	less := func(i, j int) bool {
		a, b := groups[i].BestArbitrage, groups[j].BestArbitrage
		switch sortBy {
		case "kickoff_datetime":
			if desc {
				return a.KickoffDatetime > b.KickoffDatetime
			}
			return a.KickoffDatetime < b.KickoffDatetime
		case "created_at":
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			if desc {
				return a.Profit > b.Profit
			}
			return a.Profit < b.Profit
		}
	}
	sort.SliceStable(groups, less)

	total := len(groups)
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return dto.GroupedPage{
		Groups: groups[start:end],
		Pagination: dto.Pagination{
			Page:        page,
			PerPage:     perPage,
			TotalGroups: total,
			TotalPages:  (total + perPage - 1) / perPage,
			HasNext:     (page-1)*perPage+perPage < total,
			HasPrev:     page > 1,
		},
	}
}

// Match monta a visão de uma partida. ok=false quando não há arbitragens.
func Match(signature string, arbs []dto.Arbitrage) (dto.MatchView, bool) {
	if len(arbs) == 0 {
		return dto.MatchView{}, false
	}

	v := dto.MatchView{
		MatchSignature: signature,
		Arbitrages:     arbs,
		MarketsData:    map[string][]dto.Arbitrage{},
		TotalCount:     len(arbs),
		MaxProfit:      arbs[0].Profit,
		MinProfit:      arbs[0].Profit,
		Markets:        []string{},
		MatchInfo: dto.MatchInfo{
			HomeTeam:        "Unknown",
			AwayTeam:        "Unknown",
			League:          "Unknown",
			Country:         "Unknown",
			KickoffDatetime: arbs[0].KickoffDatetime,
		},
	}

	if details := arbs[0].CombinationDetails; len(details) > 0 {
		first := details[0]
		v.MatchInfo.HomeTeam = orUnknown(first.HomeTeam)
		v.MatchInfo.AwayTeam = orUnknown(first.AwayTeam)
		v.MatchInfo.League = orUnknown(first.League)
		v.MatchInfo.Country = orUnknown(first.Country)
	}

	for _, a := range arbs {
		m := a.Market()
		if _, ok := v.MarketsData[m]; !ok {
			v.Markets = append(v.Markets, m)
		}
		v.MarketsData[m] = append(v.MarketsData[m], a)
		v.MaxProfit = math.Max(v.MaxProfit, a.Profit)
		v.MinProfit = math.Min(v.MinProfit, a.Profit)
	}
	return v, true
}

// Stats calcula as estatísticas gerais das arbitragens
func Stats(arbs []dto.Arbitrage) dto.Stats {
	s := dto.Stats{LeagueDistribution: map[string]int{}}
	if len(arbs) == 0 {
		return s
	}

	matches := map[string]struct{}{}
	markets := map[string]int{}
	var sum float64
	s.MaxProfit, s.MinProfit = arbs[0].Profit, arbs[0].Profit
	for _, a := range arbs {
		matches[a.MatchSignature] = struct{}{}
		sum += a.Profit
		s.MaxProfit = math.Max(s.MaxProfit, a.Profit)
		s.MinProfit = math.Min(s.MinProfit, a.Profit)

		markets[a.Market()]++
		if len(a.CombinationDetails) > 0 && a.CombinationDetails[0].League != "" {
			s.LeagueDistribution[a.CombinationDetails[0].League]++
		}
	}

	s.TotalOpportunities = len(arbs)
	s.DistinctMatches = len(matches)
	s.AverageProfit = round2(sum / float64(len(arbs)))
	s.MaxProfit = round2(s.MaxProfit)
	s.MinProfit = round2(s.MinProfit)

	var best string
	for m, n := range markets {
		// desempate alfabético pra resposta estável
		if n > markets[best] || (n == markets[best] && m < best) {
			best = m
		}
	}
	s.MostCommonMarket = &best
	return s
}

func distinctMarkets(a dto.Arbitrage) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, d := range a.CombinationDetails {
		m := orUnknown(d.Market)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		out = append(out, "Unknown")
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
