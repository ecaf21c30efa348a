package stakes

// DefaultStake é o valor inicial usado pela tela quando nada foi digitado
const DefaultStake = 100.0

// TargetTotal seleciona o modo FixedTotal em State.Fix
const TargetTotal = -1

// State guarda o modo corrente de uma sessão de calculadora, os valores
// digitados por perna e o último breakdown calculado
type State struct {
	Mode      Mode
	Overrides map[int]float64
	Last      *Breakdown
}

// NewState começa com total fixo em DefaultStake
func NewState() *State {
	return &State{
		Mode:      FixedTotal{Total: DefaultStake},
		Overrides: make(map[int]float64),
	}
}

// Target retorna TargetTotal ou o índice da perna fixa
func (s *State) Target() int {
	if m, ok := s.Mode.(FixedLeg); ok {
		return m.Index
	}
	return TargetTotal
}

// Fix troca o alvo fixo. O novo valor fixo vem do último breakdown
// calculado, para os números não saltarem ao alternar o modo.
func (s *State) Fix(target int) {
	if target == TargetTotal {
		total := DefaultStake
		if cur, ok := s.Mode.(FixedTotal); ok {
			total = cur.Total
		}
		if s.Last != nil {
			total = s.Last.TotalStake
		}
		s.Mode = FixedTotal{Total: total}
		return
	}

	stake, ok := s.Overrides[target]
	if !ok {
		stake = DefaultStake
	}
	if s.Last != nil && target >= 0 && target < len(s.Last.Legs) {
		stake = s.Last.Legs[target].Stake
	}
	s.Overrides[target] = stake
	s.Mode = FixedLeg{Index: target, Stake: stake}
}

// Set altera o valor do alvo fixo corrente (total ou stake da perna)
func (s *State) Set(value float64) {
	switch m := s.Mode.(type) {
	case FixedLeg:
		s.Overrides[m.Index] = value
		s.Mode = FixedLeg{Index: m.Index, Stake: value}
	default:
		s.Mode = FixedTotal{Total: value}
	}
}

// Recalculate roda Allocate com o modo corrente e guarda o resultado
// como base para a próxima troca de modo. Em erro, Last é mantido.
func (s *State) Recalculate(c Combination) (Breakdown, error) {
	b, err := Allocate(c, s.Mode)
	if err != nil {
		return Breakdown{}, err
	}
	s.Last = &b
	return b, nil
}
