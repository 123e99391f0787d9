package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	t.Run("scans the bound root", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"src/a.ts": "export {}"})
		svc := NewService(New(Options{}), root)

		snapshot, err := svc.Scan(context.Background())

		require.NoError(t, err)
		assert.Len(t, snapshot.Nodes, 1)
	})

	t.Run("last snapshot is published after success", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"src/a.ts": "export {}"})
		svc := NewService(New(Options{}), root)

		last, at := svc.Last()
		assert.Nil(t, last)
		assert.True(t, at.IsZero())

		snapshot, err := svc.Scan(context.Background())
		require.NoError(t, err)

		last, at = svc.Last()
		assert.Same(t, snapshot, last)
		assert.False(t, at.IsZero())
	})

	t.Run("failed scans keep the previous snapshot", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "not-a-dir")
		writeTree(t, root, map[string]string{"not-a-dir": "x"})
		svc := NewService(New(Options{}), file)

		before := testutil.ToFloat64(scansTotal.WithLabelValues("error"))

		_, err := svc.Scan(context.Background())

		assert.ErrorIs(t, err, ErrRootNotDirectory)
		last, _ := svc.Last()
		assert.Nil(t, last)
		assert.Equal(t, before+1, testutil.ToFloat64(scansTotal.WithLabelValues("error")))
	})

	t.Run("records metrics", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"src/domain/Foo.ts":      "import { Bar } from '../application/Bar'\nexport type Foo = Bar",
			"src/application/Bar.ts": "export class Bar {}",
		})
		svc := NewService(New(Options{}), root)
		before := testutil.ToFloat64(scansTotal.WithLabelValues("success"))

		_, err := svc.Scan(context.Background())
		require.NoError(t, err)

		assert.Equal(t, before+1, testutil.ToFloat64(scansTotal.WithLabelValues("success")))
		assert.Equal(t, float64(2), testutil.ToFloat64(snapshotNodes))
		assert.Equal(t, float64(1), testutil.ToFloat64(snapshotViolations))
	})

	t.Run("concurrent scans all get a consistent snapshot", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"src/a.ts": "import { b } from './b';",
			"src/b.ts": "export const b = 1;",
		})
		svc := NewService(New(Options{}), root)

		var wg sync.WaitGroup
		results := make(chan int, 10)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				snapshot, err := svc.Scan(context.Background())
				if err != nil {
					results <- -1
					return
				}
				results <- len(snapshot.Edges)
			}()
		}
		wg.Wait()
		close(results)

		for edges := range results {
			assert.Equal(t, 1, edges)
		}
	})
}

func TestServiceCancelledCallerDoesNotFailOthers(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string, 4000)
	for i := range 4000 {
		files[fmt.Sprintf("src/mod%d/file%d.ts", i%40, i)] = fmt.Sprintf("import { x } from './file%d'\nexport const v%d = 1", i+1, i)
	}
	writeTree(t, root, files)
	svc := NewService(New(Options{}), root)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() {
		_, err := svc.Scan(ctxA)
		errA <- err
	}()

	time.Sleep(2 * time.Millisecond)

	type result struct {
		nodes int
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		snapshot, err := svc.Scan(context.Background())
		if err != nil {
			resB <- result{err: err}
			return
		}
		resB <- result{nodes: len(snapshot.Nodes)}
	}()

	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)

	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 4000, b.nodes)

	last, _ := svc.Last()
	require.NotNil(t, last)
	assert.Len(t, last.Nodes, 4000)
}

func TestServiceLastSummary(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/domain/Foo.ts":      "import { Bar } from '../application/Bar'\nexport type Foo = Bar",
		"src/application/Bar.ts": "export class Bar {}",
		"src/util/lonely.ts":     "export const lonely = 1",
	})
	svc := NewService(New(Options{}), root)

	_, ok := svc.LastSummary()
	assert.False(t, ok)

	snapshot, err := svc.Scan(context.Background())
	require.NoError(t, err)

	summary, ok := svc.LastSummary()
	require.True(t, ok)
	assert.Equal(t, snapshot.Metadata.ScanID, summary.ScanID)
	assert.Equal(t, 3, summary.Nodes)
	assert.Equal(t, 1, summary.Edges)
	assert.Equal(t, 1, summary.Violations)
	assert.Equal(t, []string{"src/util/lonely.ts"}, summary.Orphans)

	completed, err := time.Parse(time.RFC3339, summary.CompletedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), completed, time.Minute)
}
