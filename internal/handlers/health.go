// Package handlers serves the ArchBrain HTTP API: health, scans, the HTML
// report, hub control endpoints and the websocket push channel.
package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

var startTime = time.Now()

// HealthHandler reports liveness along with the project the server scans.
func HealthHandler(projectRoot, sourceDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   "archbrain-api",
			Uptime:    time.Since(startTime).String(),
			Details: map[string]string{
				"project_root": projectRoot,
				"source_dir":   sourceDir,
				"go_version":   runtime.Version(),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}
