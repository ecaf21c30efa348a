package stakes

import (
	"errors"
	"fmt"
)

// ErrUnknownMode é retornado quando o modo de alocação é nil ou desconhecido
var ErrUnknownMode = errors.New("stakes: unknown allocation mode")

// InvalidLegError indica uma perna com odds ou casa inválidas.
// Index referencia a posição da perna na combinação.
type InvalidLegError struct {
	Index     int
	Bookmaker string
	Reason    string
}

func (e *InvalidLegError) Error() string {
	if e.Bookmaker == "" {
		return fmt.Sprintf("stakes: invalid leg %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("stakes: invalid leg %d (%s): %s", e.Index, e.Bookmaker, e.Reason)
}

// InsufficientLegsError indica combinação com menos de duas pernas
type InsufficientLegsError struct {
	Count int
}

func (e *InsufficientLegsError) Error() string {
	return fmt.Sprintf("stakes: combination needs at least %d legs, got %d", MinLegs, e.Count)
}

// InvalidStakeError indica total ou stake fixo não positivo ou não numérico
type InvalidStakeError struct {
	Field string // "total" | "stake"
	Value float64
}

func (e *InvalidStakeError) Error() string {
	return fmt.Sprintf("stakes: invalid %s %v: must be a positive number", e.Field, e.Value)
}
