package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbrain/core/internal/models"
)

func TestRender(t *testing.T) {
	t.Run("embeds graph and colours", func(t *testing.T) {
		g := models.ReportGraph{
			Nodes: []models.ReportNode{
				{ID: "src/domain/User.ts", Label: "User.ts", Category: models.CategoryDomain, Size: 120},
				{ID: "src/ui/View.tsx", Label: "View.tsx", Category: models.CategoryPresentation, Size: 80},
			},
			Links: []models.ReportLink{{Source: "src/ui/View.tsx", Target: "src/domain/User.ts"}},
		}
		var buf bytes.Buffer

		err := Render(&buf, g)

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "2 modules, 1 dependencies")
		assert.Contains(t, out, `"id":"src/domain/User.ts"`)
		assert.Contains(t, out, `"source":"src/ui/View.tsx"`)
		assert.Contains(t, out, `"Domain":"#ef4444"`)
		assert.Contains(t, out, `"Other":"#64748b"`)
	})

	t.Run("empty graph renders empty arrays", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, Render(&buf, models.ReportGraph{}))

		assert.Contains(t, buf.String(), `{"nodes":[],"links":[]}`)
		assert.Contains(t, buf.String(), "0 modules, 0 dependencies")
	})

	t.Run("script content is escaped", func(t *testing.T) {
		g := models.ReportGraph{
			Nodes: []models.ReportNode{{ID: "x", Label: "</script><b>", Category: models.CategoryOther}},
		}
		var buf bytes.Buffer

		require.NoError(t, Render(&buf, g))

		assert.NotContains(t, buf.String(), "</script><b>")
	})

	t.Run("writer errors are wrapped", func(t *testing.T) {
		err := Render(failingWriter{}, models.ReportGraph{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "render report")
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
