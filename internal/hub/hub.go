// Package hub holds the process-wide state shared by the HTTP API, the
// WebSocket push channel, the MCP tools and the file watcher: service
// toggles, the rolling log shown in the UI, and message fan-out to
// subscribers.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MaxLogLines bounds the rolling log.
const MaxLogLines = 100

type MessageType string

const (
	TypeLog     MessageType = "LOG"
	TypeCommand MessageType = "COMMAND"
)

// Actions understood by UI clients. Clients may receive others verbatim.
const (
	ActionScan = "SCAN"
)

// Message is what subscribers receive.
type Message struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message,omitempty"`
	Action  string      `json:"action,omitempty"`
}

func LogMessage(text string) Message {
	return Message{Type: TypeLog, Message: text}
}

func CommandMessage(action string) Message {
	return Message{Type: TypeCommand, Action: action}
}

// Status is the service summary reported to tools and the UI.
type Status struct {
	Uptime  float64 `json:"uptime"`
	Watcher string  `json:"watcher"`
	MCP     string  `json:"mcp"`
}

const (
	WatcherActive   = "ACTIVE"
	WatcherSleeping = "SLEEPING"
	MCPOnline       = "ONLINE"
	MCPOffline      = "OFFLINE"
)

// Controller is the hub surface used by agent tools. It is implemented by Hub
// in-process and by Client when the hub lives in another process.
type Controller interface {
	Status(ctx context.Context) (Status, error)
	Logs(ctx context.Context) ([]string, error)
	Log(ctx context.Context, message string) error
	Command(ctx context.Context, action string) error
	ToggleWatcher(ctx context.Context) (string, error)
	ToggleMCP(ctx context.Context) (string, error)
}

// Hub is safe for concurrent use.
type Hub struct {
	logger  *slog.Logger
	now     func() time.Time
	started time.Time

	mu          sync.RWMutex
	watchActive bool
	logs        []string
	subs        map[int]chan Message
	nextSub     int

	// mcpActive is reported in Status only; no tool call is gated on it.
	mcpActive bool
}

var _ Controller = (*Hub)(nil)

func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger:      logger,
		now:         time.Now,
		watchActive: true,
		mcpActive:   true,
		subs:        make(map[int]chan Message),
	}
	h.started = h.now()
	h.appendLog("Neural Systems Initiated...")
	return h
}

// Broadcast fans msg out to every subscriber. LOG messages are also kept in
// the rolling log. Subscribers that are not keeping up miss the message.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.Type == TypeLog && msg.Message != "" {
		h.logger.Info("Broadcast", slog.String("message", msg.Message))
		h.appendLogLocked(msg.Message)
	}

	if len(h.subs) == 0 {
		if msg.Type == TypeLog {
			h.logger.Debug("No UI clients connected, message buffered")
		}
		return
	}

	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("Subscriber is lagging, dropping message", slog.Int("subscriber", id))
		}
	}
}

// Subscribe registers a subscriber with the given channel buffer. The returned
// cancel func unregisters it and closes the channel; it is safe to call more
// than once.
func (h *Hub) Subscribe(buffer int) (<-chan Message, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Message, buffer)

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) WatcherActive() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.watchActive
}

func (h *Hub) Status(context.Context) (Status, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Status{
		Uptime:  h.now().Sub(h.started).Seconds(),
		Watcher: watcherState(h.watchActive),
		MCP:     mcpState(h.mcpActive),
	}, nil
}

func (h *Hub) Logs(context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.logs))
	copy(out, h.logs)
	return out, nil
}

func (h *Hub) Log(_ context.Context, message string) error {
	h.Broadcast(LogMessage(message))
	return nil
}

func (h *Hub) Command(_ context.Context, action string) error {
	h.Broadcast(CommandMessage(action))
	return nil
}

func (h *Hub) ToggleWatcher(context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchActive = !h.watchActive
	return watcherState(h.watchActive), nil
}

func (h *Hub) ToggleMCP(context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mcpActive = !h.mcpActive
	return mcpState(h.mcpActive), nil
}

func (h *Hub) appendLog(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appendLogLocked(text)
}

func (h *Hub) appendLogLocked(text string) {
	line := fmt.Sprintf("> [%s] %s", h.now().Format("15:04:05"), text)
	h.logs = append(h.logs, line)
	if over := len(h.logs) - MaxLogLines; over > 0 {
		h.logs = append(h.logs[:0:0], h.logs[over:]...)
	}
}

func watcherState(active bool) string {
	if active {
		return WatcherActive
	}
	return WatcherSleeping
}

func mcpState(active bool) string {
	if active {
		return MCPOnline
	}
	return MCPOffline
}
