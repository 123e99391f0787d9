package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/archbrain/core/internal/hub"
)

const (
	// Greeting is the first message every push client receives.
	Greeting = "Neural Link Synchronized with Hub."

	wsWriteWait    = 10 * time.Second
	wsClientBuffer = 64
)

// originChecker admits requests without an Origin header and those whose
// Origin equals allowed. An empty or "*" allowed admits everything.
func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" || allowed == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// WebSocketHandler upgrades the connection and streams hub broadcasts to the
// client as JSON until either side goes away. Inbound frames are discarded.
func WebSocketHandler(h *hub.Hub, allowedOrigin string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigin),
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 64 * 1024,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		clientID := uuid.New().String()

		messages, cancel := h.Subscribe(wsClientBuffer)
		defer cancel()
		slog.Info("Websocket client connected", "client", clientID, "clients", h.Subscribers())

		if err := writeMessage(ws, hub.LogMessage(Greeting)); err != nil {
			return
		}

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					slog.Info("Websocket client disconnected", "client", clientID, "error", err.Error())
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if err := writeMessage(ws, msg); err != nil {
					return
				}
			}
		}
	}
}

func writeMessage(ws *websocket.Conn, msg hub.Message) error {
	ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := ws.WriteJSON(msg); err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
		return err
	}
	return nil
}
