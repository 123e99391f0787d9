package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/archbrain/core/internal/hub"
)

// ScanTrigger returns a Handler that asks UI clients to rescan whenever the
// hub's watcher toggle is active.
func ScanTrigger(h *hub.Hub, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(changes []Change) {
		if len(changes) == 0 || !h.WatcherActive() {
			return
		}
		last := changes[len(changes)-1]
		logger.Info(fmt.Sprintf("Neural shift detected (%s: %s)", last.Op, filepath.Base(last.Path)),
			slog.Int("changes", len(changes)))
		h.Broadcast(hub.CommandMessage(hub.ActionScan))
	}
}
