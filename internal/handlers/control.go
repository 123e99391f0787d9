package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/archbrain/core/internal/hub"
	"github.com/archbrain/core/internal/models"
	"github.com/archbrain/core/internal/scanner"
)

// MaxControlBodySize caps JSON bodies on the control endpoints.
const MaxControlBodySize = 64 * 1024

// StatusResponse is the hub status plus the last completed scan, when one has
// run.
type StatusResponse struct {
	hub.Status
	LastScan *models.ScanSummary `json:"lastScan,omitempty"`
}

type LogsResponse struct {
	Logs []string `json:"logs"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
}

type logRequest struct {
	Message string `json:"message"`
}

type commandRequest struct {
	Action string `json:"action"`
}

// StatusHandler reports hub state. history may be nil.
func StatusHandler(c hub.Controller, history scanner.ScanHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status, err := c.Status(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		response := StatusResponse{Status: status}
		if history != nil {
			if summary, ok := history.LastSummary(); ok {
				response.LastScan = &summary
			}
		}
		writeJSON(w, response)
	}
}

func LogsHandler(c hub.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		logs, err := c.Logs(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if logs == nil {
			logs = []string{}
		}
		writeJSON(w, LogsResponse{Logs: logs})
	}
}

// LogHandler appends a message to the shared log and pushes it to clients.
func LogHandler(c hub.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req logRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}

		if err := c.Log(r.Context(), req.Message); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, SuccessResponse{Success: true})
	}
}

// CommandHandler pushes a UI action to connected clients.
func CommandHandler(c hub.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req commandRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Action) == "" {
			http.Error(w, "action is required", http.StatusBadRequest)
			return
		}

		if err := c.Command(r.Context(), req.Action); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, SuccessResponse{Success: true})
	}
}

func ToggleWatcherHandler(c hub.Controller) http.HandlerFunc {
	return toggleHandler(c.ToggleWatcher, "Watcher")
}

func ToggleMCPHandler(c hub.Controller) http.HandlerFunc {
	return toggleHandler(c.ToggleMCP, "MCP")
}

func toggleHandler(toggle func(ctx context.Context) (string, error), name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		state, err := toggle(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		slog.Info("Service toggled", slog.String("service", name), slog.String("status", state))
		writeJSON(w, SuccessResponse{Success: true, Status: state})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxControlBodySize)).Decode(v); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", slog.String("error", err.Error()))
	}
}
