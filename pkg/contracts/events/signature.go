package events

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CombinationKey identifica a combinação (casas + seleções + mercado)
// independente das odds; odds novas atualizam o mesmo registro
func (e ArbitrageFound) CombinationKey() string {
	h := sha256.New()
	for _, d := range e.CombinationDetails {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(d.Bookmaker))))
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(strings.TrimSpace(d.Name))))
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(strings.TrimSpace(d.Market))))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// EventName monta "Casa vs Fora" a partir da primeira perna
func (e ArbitrageFound) EventName() string {
	if len(e.CombinationDetails) == 0 {
		return e.MatchSignature
	}
	first := e.CombinationDetails[0]
	if first.HomeTeam == "" && first.AwayTeam == "" {
		return e.MatchSignature
	}
	return first.HomeTeam + " vs " + first.AwayTeam
}

// Market retorna o mercado da primeira perna ("Unknown" se vazio)
func (e ArbitrageFound) Market() string {
	if len(e.CombinationDetails) == 0 || e.CombinationDetails[0].Market == "" {
		return "Unknown"
	}
	return e.CombinationDetails[0].Market
}
