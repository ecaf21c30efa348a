package stakes

// Mode é o modo de alocação: FixedTotal ou FixedLeg
type Mode interface {
	isMode()
}

// FixedTotal fixa o total apostado em todas as pernas
type FixedTotal struct {
	Total float64
}

// FixedLeg fixa o stake de uma perna; total e demais pernas são derivados
type FixedLeg struct {
	Index int
	Stake float64
}

func (FixedTotal) isMode() {}
func (FixedLeg) isMode()   {}
