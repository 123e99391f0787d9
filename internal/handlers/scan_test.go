package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbrain/core/internal/models"
)

type stubSnapshotter struct {
	snapshot *models.Snapshot
	err      error
	calls    int
}

func (s *stubSnapshotter) Scan(context.Context) (*models.Snapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Nodes: []models.Node{
			{ID: "src/domain/User.ts", Label: "User.ts", Category: models.CategoryDomain, Size: 40, InDegree: 1, Criticality: 1},
			{ID: "src/ui/View.tsx", Label: "View.tsx", Category: models.CategoryPresentation, Size: 60, OutDegree: 1, Criticality: 1},
		},
		Edges: []models.Edge{{Source: "src/ui/View.tsx", Target: "src/domain/User.ts"}},
		Metadata: models.Metadata{
			ScanID:     "scan-1",
			TotalNodes: 2,
			TotalEdges: 1,
		},
	}
}

func TestScanHandler(t *testing.T) {
	t.Run("returns snapshot JSON", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
		w := httptest.NewRecorder()

		ScanHandler(stub)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var got models.Snapshot
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got.Nodes, 2)
		assert.Len(t, got.Edges, 1)
		assert.Equal(t, "scan-1", got.Metadata.ScanID)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("pretty prints on request", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodGet, "/api/scan?pretty=true", nil)
		w := httptest.NewRecorder()

		ScanHandler(stub)(w, req)

		assert.Contains(t, w.Body.String(), "\n  \"nodes\"")
	})

	t.Run("compact by default", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
		w := httptest.NewRecorder()

		ScanHandler(stub)(w, req)

		assert.True(t, strings.HasPrefix(w.Body.String(), `{"nodes":[`))
	})

	t.Run("scan failure returns 500 without the cause", func(t *testing.T) {
		stub := &stubSnapshotter{err: errors.New("open /home/alice/secret/src: permission denied")}
		req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
		w := httptest.NewRecorder()

		ScanHandler(stub)(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Scan failed")
		assert.NotContains(t, w.Body.String(), "/home/alice")
		assert.NotContains(t, w.Body.String(), "permission denied")
	})

	t.Run("rejects POST", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
		w := httptest.NewRecorder()

		ScanHandler(stub)(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Zero(t, stub.calls)
	})
}

func TestInternalScanHandler(t *testing.T) {
	t.Run("accepts POST", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodPost, "/api/scan-internal", nil)
		w := httptest.NewRecorder()

		InternalScanHandler(stub)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "src/domain/User.ts")
	})

	t.Run("rejects GET", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodGet, "/api/scan-internal", nil)
		w := httptest.NewRecorder()

		InternalScanHandler(stub)(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestReportHandler(t *testing.T) {
	t.Run("renders HTML", func(t *testing.T) {
		stub := &stubSnapshotter{snapshot: sampleSnapshot()}
		req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
		w := httptest.NewRecorder()

		ReportHandler(stub)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
		assert.Contains(t, w.Body.String(), `"target":"src/domain/User.ts"`)
	})

	t.Run("scan failure returns 500", func(t *testing.T) {
		stub := &stubSnapshotter{err: errors.New("read /srv/app/src/a.ts: boom")}
		req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
		w := httptest.NewRecorder()

		ReportHandler(stub)(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "/srv/app")
	})
}
