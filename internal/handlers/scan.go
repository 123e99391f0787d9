package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/archbrain/core/internal/report"
	"github.com/archbrain/core/internal/scanner"
)

// ScanHandler serves GET /api/scan.
func ScanHandler(s scanner.Snapshotter) http.HandlerFunc {
	return scanHandler(s, http.MethodGet)
}

// InternalScanHandler serves POST /api/scan-internal, used by agent tools.
func InternalScanHandler(s scanner.Snapshotter) http.HandlerFunc {
	return scanHandler(s, http.MethodPost)
}

func scanHandler(s scanner.Snapshotter, method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot, err := s.Scan(r.Context())
		if err != nil {
			scanFailed(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		encoder := json.NewEncoder(w)
		if r.URL.Query().Get("pretty") == "true" {
			encoder.SetIndent("", "  ")
		}

		if err := encoder.Encode(snapshot); err != nil {
			slog.Error("Error encoding response", slog.String("error", err.Error()))
		}
	}
}

// ReportHandler serves GET /api/report as a standalone HTML page.
func ReportHandler(s scanner.Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot, err := s.Scan(r.Context())
		if err != nil {
			scanFailed(w, err)
			return
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, snapshot.Report()); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

// scanFailed logs the cause and answers with a body that carries no paths.
func scanFailed(w http.ResponseWriter, err error) {
	slog.Error("Scan failed", slog.String("error", err.Error()))
	http.Error(w, "Scan failed", http.StatusInternalServerError)
}
