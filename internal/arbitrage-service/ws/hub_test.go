package ws

import (
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

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(fakeLoader{"a1": evenMoney()}, 100, zap.NewNop(), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", ArbitrageID: "a1"}))
	var got ServerMsg
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "breakdown", got.Type)
	assert.Equal(t, 1, hub.Subscribers("a1"))

	ev := evenMoney()
	ev.CombinationDetails[0].Odds = 2.4
	hub.Broadcast(events.ArbitrageUpdate{ArbitrageID: "a1", Payload: ev})

	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "breakdown", got.Type)
	assert.Equal(t, 2.4, got.Breakdown.Legs[0].Odds)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", ArbitrageID: "a1"}))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "unsubscribed", got.Type)
	assert.Equal(t, 0, hub.Subscribers("a1"))
}
