package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

var ErrMissingSignature = errors.New("arbitrage without match_signature")

// DecodeBatch aceita um objeto ou uma lista de arbitragens.
// Itens sem match_signature são descartados e contados em skipped.
func DecodeBatch(raw []byte) (out []events.ArbitrageFound, skipped int, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, 0, errors.New("empty message")
	}

	var items []events.ArbitrageFound
	if raw[0] == '[' {
		err = json.Unmarshal(raw, &items)
	} else {
		var one events.ArbitrageFound
		err = json.Unmarshal(raw, &one)
		items = []events.ArbitrageFound{one}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("decode arbitrage: %w", err)
	}

	for _, it := range items {
		if it.MatchSignature == "" {
			skipped++
			continue
		}
		out = append(out, it)
	}
	return out, skipped, nil
}
