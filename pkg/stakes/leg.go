package stakes

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number é um float vindo do front/scanner, que manda odds e valores
// ora como número, ora como string ("2.5"). Ausente vira 0; qualquer
// outra coisa vira NaN e é rejeitada por Allocate.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(parseNumber(b))
	return nil
}

func parseNumber(raw []byte) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

// Leg é um resultado de uma combinação (uma aposta em uma casa)
type Leg struct {
	Bookmaker string `json:"bookmaker"`
	Odds      Number `json:"odds"`
	Selection string `json:"name,omitempty"` // só exibição
}

// Combination é a lista ordenada de pernas que cobre todos os resultados
// mutuamente exclusivos de um mercado. A exaustividade não é verificada.
type Combination []Leg
