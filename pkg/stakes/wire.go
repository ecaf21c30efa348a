package stakes

import (
	"encoding/json"
	"errors"
)

// Tipos de modo aceitos no JSON
const (
	ModeFixedTotal = "fixed_total"
	ModeFixedLeg   = "fixed_leg"
)

// ModeSpec é o modo de alocação como chega nas APIs:
//
//	{"type":"fixed_total","total":100}
//	{"type":"fixed_leg","leg_index":1,"stake":40}
//
// Total/stake ausentes ficam zerados e são rejeitados pelo Allocate.
// leg_index é obrigatório em fixed_leg: zero é uma perna válida.
type ModeSpec struct {
	Type     string  `json:"type"`
	Total    float64 `json:"total,omitempty"`
	LegIndex int     `json:"leg_index"`
	Stake    float64 `json:"stake,omitempty"`
}

// ErrMissingLegIndex indica um fixed_leg sem leg_index no JSON
var ErrMissingLegIndex = errors.New("stakes: fixed_leg mode requires leg_index")

func (s *ModeSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string  `json:"type"`
		Total    float64 `json:"total"`
		LegIndex *int    `json:"leg_index"`
		Stake    float64 `json:"stake"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == ModeFixedLeg && raw.LegIndex == nil {
		return ErrMissingLegIndex
	}
	*s = ModeSpec{Type: raw.Type, Total: raw.Total, Stake: raw.Stake}
	if raw.LegIndex != nil {
		s.LegIndex = *raw.LegIndex
	}
	return nil
}

// Mode converte para o modo do alocador
func (s ModeSpec) Mode() (Mode, error) {
	switch s.Type {
	case ModeFixedTotal:
		return FixedTotal{Total: s.Total}, nil
	case ModeFixedLeg:
		return FixedLeg{Index: s.LegIndex, Stake: s.Stake}, nil
	default:
		return nil, ErrUnknownMode
	}
}

// SpecOf é o inverso de ModeSpec.Mode
func SpecOf(m Mode) ModeSpec {
	switch m := m.(type) {
	case FixedTotal:
		return ModeSpec{Type: ModeFixedTotal, Total: m.Total}
	case FixedLeg:
		return ModeSpec{Type: ModeFixedLeg, LegIndex: m.Index, Stake: m.Stake}
	}
	return ModeSpec{}
}

// Problem é a forma serializável de um erro do alocador
type Problem struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	LegIndex *int   `json:"leg_index,omitempty"`
}

// Describe classifica erros do alocador. ok=false para erros de outra origem.
func Describe(err error) (p Problem, ok bool) {
	var (
		leg   *InvalidLegError
		legs  *InsufficientLegsError
		stake *InvalidStakeError
	)
	switch {
	case errors.As(err, &leg):
		idx := leg.Index
		return Problem{Error: err.Error(), Kind: "invalid_leg", LegIndex: &idx}, true
	case errors.As(err, &legs):
		return Problem{Error: err.Error(), Kind: "insufficient_legs"}, true
	case errors.As(err, &stake):
		return Problem{Error: err.Error(), Kind: "invalid_stake"}, true
	case errors.Is(err, ErrUnknownMode):
		return Problem{Error: err.Error(), Kind: "unknown_mode"}, true
	}
	return Problem{}, false
}
