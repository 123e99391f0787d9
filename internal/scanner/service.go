package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/archbrain/core/internal/models"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archbrain_scans_total",
		Help: "Total scans by result",
	}, []string{"result"})

	scansShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archbrain_scans_shared_total",
		Help: "Scan requests answered by an in-flight scan",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "archbrain_scan_duration_seconds",
		Help:    "Wall time of a full project scan",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	snapshotNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archbrain_snapshot_nodes",
		Help: "Nodes in the most recent snapshot",
	})

	snapshotViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archbrain_snapshot_violations",
		Help: "Layer violations in the most recent snapshot",
	})
)

// Snapshotter is what transports need from the scan layer.
type Snapshotter interface {
	Scan(ctx context.Context) (*models.Snapshot, error)
}

// ScanHistory exposes the outcome of the most recent successful scan.
type ScanHistory interface {
	LastSummary() (models.ScanSummary, bool)
}

var (
	_ Snapshotter = (*Service)(nil)
	_ ScanHistory = (*Service)(nil)
)

// Service binds a Scanner to one project root for hosting layers. Concurrent
// Scan calls share a single in-flight scan; the last published snapshot is
// kept for status queries.
type Service struct {
	scanner *Scanner
	root    string
	flight  singleflight.Group

	mu       sync.RWMutex
	last     *models.Snapshot
	lastTime time.Time
}

func NewService(s *Scanner, root string) *Service {
	return &Service{scanner: s, root: root}
}

// Scan runs a scan of the service root, joining one already in flight. The
// shared scan is detached from any single caller's cancellation; a caller
// whose ctx ends stops waiting and gets ctx.Err() while the others carry on.
func (s *Service) Scan(ctx context.Context) (*models.Snapshot, error) {
	scanCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(s.root, func() (any, error) {
		start := time.Now()
		snapshot, err := s.scanner.Scan(scanCtx, s.root)
		scanDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			scansTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		scansTotal.WithLabelValues("success").Inc()

		snapshotNodes.Set(float64(snapshot.Metadata.TotalNodes))
		snapshotViolations.Set(float64(snapshot.Metadata.TotalViolations))

		s.mu.Lock()
		s.last = snapshot
		s.lastTime = time.Now()
		s.mu.Unlock()

		return snapshot, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			scansShared.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Snapshot), nil
	}
}

// Last returns the most recently published snapshot, or nil before the first
// successful scan.
func (s *Service) Last() (*models.Snapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastTime
}

// LastSummary reports the most recent successful scan, if any.
func (s *Service) LastSummary() (models.ScanSummary, bool) {
	last, at := s.Last()
	if last == nil {
		return models.ScanSummary{}, false
	}
	summary := last.Summary()
	summary.CompletedAt = at.UTC().Format(time.RFC3339)
	return summary, true
}
