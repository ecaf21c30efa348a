package sim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

func TestGenerator_EmitsOnlyArbitrages(t *testing.T) {
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	g := NewGenerator(42, start)

	total := 0
	for i := 0; i < 200; i++ {
		for _, arb := range g.Next(start) {
			total++
			require.Len(t, arb.CombinationDetails, 3)
			profit, err := events.Combination(arb.CombinationDetails).ProfitPercentage()
			require.NoError(t, err)
			assert.Greater(t, profit, 0.0)
			assert.Contains(t, arb.MatchSignature, "_vs_")
			assert.Equal(t, "1X2", arb.Market())
		}
	}
	assert.Positive(t, total, "200 rounds should produce at least one arbitrage")
}

func TestSignature(t *testing.T) {
	m := Match{Home: "Arsenal", Away: "Chelsea"}
	assert.Equal(t, "Arsenal_vs_Chelsea_2024-03-16", Signature(m, time.Date(2024, 3, 16, 20, 0, 0, 0, time.UTC)))
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]events.ArbitrageFound{{MatchSignature: "A_vs_B"}})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got []events.ArbitrageFound
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "A_vs_B", got[0].MatchSignature)

	conn.Close()
	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
}
