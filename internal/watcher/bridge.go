package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archbrain/core/internal/hub"
)

const (
	bridgeDebounce = 100 * time.Millisecond
	bridgePrefix   = "AI COMMANDER (via Bridge): "
)

// BridgeMessage is the document external agents write to the bridge file.
type BridgeMessage struct {
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
}

// Broadcaster is satisfied by *hub.Hub.
type Broadcaster interface {
	Broadcast(msg hub.Message)
}

// Bridge relays the contents of a JSON file to the hub each time the file is
// written.
type Bridge struct {
	path   string
	out    Broadcaster
	logger *slog.Logger
}

func NewBridge(path string, out Broadcaster, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{path: path, out: out, logger: logger}
}

// Ensure creates the bridge file with an initial message if it is missing.
func (b *Bridge) Ensure() error {
	_, err := os.Stat(b.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat bridge file: %w", err)
	}

	data, _ := json.Marshal(BridgeMessage{Message: "Neural Link Initialized"})
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("create bridge file: %w", err)
	}
	return nil
}

// Run creates the file if needed and relays changes until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Ensure(); err != nil {
		return err
	}

	abs, err := filepath.Abs(b.path)
	if err != nil {
		return fmt.Errorf("resolve bridge path: %w", err)
	}

	w := New(filepath.Dir(abs), b.handle, Options{
		Debounce: bridgeDebounce,
		Filter: func(path string) bool {
			return filepath.Clean(path) == abs
		},
		Logger: b.logger,
	})
	b.logger.Info("Watching bridge file", slog.String("path", abs))
	return w.Run(ctx)
}

func (b *Bridge) handle(changes []Change) {
	for _, c := range changes {
		if c.Op == OpCreate || c.Op == OpWrite {
			b.Relay()
			return
		}
	}
}

// Relay reads the bridge file once and broadcasts what it holds.
func (b *Bridge) Relay() {
	b.logger.Debug("Bridge file change detected", slog.String("path", b.path))

	data, err := os.ReadFile(b.path)
	if err != nil {
		b.logger.Warn("Bridge error", slog.String("error", err.Error()))
		return
	}

	var msg BridgeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		b.logger.Warn("Bridge error", slog.String("error", err.Error()))
		return
	}

	if text := strings.TrimSpace(msg.Message); text != "" {
		b.logger.Info("Broadcasting bridge message", slog.String("message", text))
		b.out.Broadcast(hub.LogMessage(bridgePrefix + text))
	}
	if action := strings.TrimSpace(msg.Action); action != "" {
		b.out.Broadcast(hub.CommandMessage(action))
	}
}
