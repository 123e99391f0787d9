package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHealth = HealthHandler("/work/shop", "src")

func getHealth(t *testing.T) HealthResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	testHealth(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestHealthHandler(t *testing.T) {
	t.Run("reports service identity", func(t *testing.T) {
		response := getHealth(t)

		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "archbrain-api", response.Service)
		assert.NotEmpty(t, response.Uptime)
	})

	t.Run("timestamp is recent RFC3339", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)

		response := getHealth(t)

		ts, err := time.Parse(time.RFC3339, response.Timestamp)
		require.NoError(t, err)
		assert.True(t, ts.After(before))
		assert.True(t, ts.Before(time.Now().UTC().Add(time.Second)))
	})

	t.Run("details name the scanned project", func(t *testing.T) {
		response := getHealth(t)

		assert.Equal(t, "/work/shop", response.Details["project_root"])
		assert.Equal(t, "src", response.Details["source_dir"])
		assert.Equal(t, runtime.Version(), response.Details["go_version"])
	})

	t.Run("rejects other methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
			req := httptest.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			testHealth(w, req)

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		}
	})

	t.Run("handles concurrent requests", func(t *testing.T) {
		results := make(chan int, 10)
		for range 10 {
			go func() {
				w := httptest.NewRecorder()
				testHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
				results <- w.Code
			}()
		}
		for range 10 {
			assert.Equal(t, http.StatusOK, <-results)
		}
	})
}

func TestStartTime(t *testing.T) {
	assert.False(t, startTime.IsZero())
	assert.True(t, startTime.Before(time.Now()))
}
