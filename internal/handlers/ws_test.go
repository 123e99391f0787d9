package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbrain/core/internal/hub"
)

func TestWebSocketHandler(t *testing.T) {
	h := hub.New(nil)
	server := httptest.NewServer(WebSocketHandler(h, "*"))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var greeting hub.Message
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, hub.TypeLog, greeting.Type)
	assert.Equal(t, Greeting, greeting.Message)

	h.Broadcast(hub.CommandMessage(hub.ActionScan))

	var cmd hub.Message
	require.NoError(t, conn.ReadJSON(&cmd))
	assert.Equal(t, hub.CommandMessage(hub.ActionScan), cmd)

	conn.Close()
	assert.Eventually(t, func() bool {
		return h.Subscribers() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketOrigin(t *testing.T) {
	h := hub.New(nil)
	server := httptest.NewServer(WebSocketHandler(h, "http://localhost:5173"))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	t.Run("foreign origin is rejected", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		if conn != nil {
			conn.Close()
		}

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, 0, h.Subscribers())
	})

	t.Run("configured origin is accepted", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:5173"}})
		require.NoError(t, err)
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var greeting hub.Message
		require.NoError(t, conn.ReadJSON(&greeting))
		assert.Equal(t, Greeting, greeting.Message)
	})

	t.Run("clients without an origin header are accepted", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		conn.Close()
	})
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://other.example")

	assert.True(t, originChecker("")(req))
	assert.True(t, originChecker("*")(req))
	assert.False(t, originChecker("http://localhost:5173")(req))
	assert.True(t, originChecker("http://other.example")(req))
}
