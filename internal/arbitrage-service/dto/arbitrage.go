package dto

import (
	"time"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
	"github.com/radieske/arb-bet-tracker/pkg/stakes"
)

// Arbitrage é uma oportunidade persistida
type Arbitrage struct {
	ID                 string             `json:"id"`
	MatchSignature     string             `json:"match_signature"`
	Profit             float64            `json:"profit"`
	KickoffDatetime    string             `json:"kickoff_datetime"`
	CombinationDetails []events.LegDetail `json:"combination_details"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Event converte para o formato do scanner (cache e broadcast)
func (a Arbitrage) Event() events.ArbitrageFound {
	return events.ArbitrageFound{
		MatchSignature:     a.MatchSignature,
		Profit:             a.Profit,
		KickoffDatetime:    a.KickoffDatetime,
		CombinationDetails: a.CombinationDetails,
	}
}

// Market da primeira perna
func (a Arbitrage) Market() string { return a.Event().Market() }

// CreateArbitrageRequest é o corpo do POST /v1/arbitrages
type CreateArbitrageRequest struct {
	MatchSignature     string             `json:"match_signature"`
	Profit             *float64           `json:"profit,omitempty"` // recalculado quando ausente
	KickoffDatetime    string             `json:"kickoff_datetime"`
	CombinationDetails []events.LegDetail `json:"combination_details"`
}

// UpdateArbitrageRequest é o corpo do PUT /v1/arbitrages/{id}; só os campos presentes mudam
type UpdateArbitrageRequest struct {
	MatchSignature     *string             `json:"match_signature,omitempty"`
	Profit             *float64            `json:"profit,omitempty"`
	KickoffDatetime    *string             `json:"kickoff_datetime,omitempty"`
	CombinationDetails *[]events.LegDetail `json:"combination_details,omitempty"`
}

// StakeRequest é o corpo do POST /v1/stakes e /v1/arbitrages/{id}/stakes.
// Combination é ignorada quando a rota já identifica a arbitragem.
type StakeRequest struct {
	Combination stakes.Combination `json:"combination,omitempty"`
	Mode        stakes.ModeSpec    `json:"mode"`
}

// StakeResponse devolve o breakdown e o payload pronto para confirmar as apostas
type StakeResponse struct {
	ArbitrageID string              `json:"arbitrage_id,omitempty"`
	Mode        stakes.ModeSpec     `json:"mode"`
	Breakdown   stakes.Breakdown    `json:"breakdown"`
	Allocations []stakes.Allocation `json:"allocations"`
}
