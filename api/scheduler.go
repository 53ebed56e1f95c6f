/*
scheduler.go - Automated outlook snapshot scheduler

PURPOSE:
  Periodically recomputes the outlook for every active component and
  persists the results as snapshots. Keeps the snapshot table fresh so
  dashboards and reports can read precomputed rows instead of running
  a full projection on every request.

DESIGN:
  - Runs a background goroutine with a configurable sweep interval
  - Sweeps immediately on start, then on every tick
  - Each sweep calls the same code path as POST /api/outlook/refresh
  - Graceful shutdown via context cancellation + WaitGroup

CONFIGURATION:
  Interval: How often to sweep (default: 1 hour)

USAGE:
  scheduler := api.NewSnapshotScheduler(handler.Outlook, logger)
  scheduler.Start(ctx)
  defer scheduler.Stop()

SEE ALSO:
  - inventory/outlook.go: Snapshot computation
  - cmd/server/main.go: Scheduler startup
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forge/mrp-engine/inventory"
	"github.com/forge/mrp-engine/planning"
)

// SnapshotScheduler periodically refreshes outlook snapshots in the background.
type SnapshotScheduler struct {
	Outlook  inventory.Outlook
	Log      *logrus.Entry
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshotScheduler creates a scheduler with the default 1-hour interval.
func NewSnapshotScheduler(outlook inventory.Outlook, logger *logrus.Logger) *SnapshotScheduler {
	return &SnapshotScheduler{
		Outlook:  outlook,
		Log:      logger.WithField("component", "api.scheduler"),
		Interval: time.Hour,
	}
}

// Start begins the background sweep loop. Safe to call once; subsequent
// calls before Stop are no-ops.
func (s *SnapshotScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)

	s.Log.WithField("interval", s.Interval.String()).Info("Snapshot scheduler started")
}

// Stop halts the sweep loop and waits for any in-flight sweep to finish.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	s.cancel = nil
	s.wg.Wait()

	s.Log.Info("Snapshot scheduler stopped")
}

func (s *SnapshotScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SnapshotScheduler) sweep(ctx context.Context) {
	snaps, err := s.Outlook.Snapshot(ctx, planning.Today())
	if err != nil {
		s.Log.WithError(err).Error("Snapshot sweep failed")
		return
	}

	needsOrdering := 0
	for _, snap := range snaps {
		if snap.NeedsOrdering {
			needsOrdering++
		}
	}

	s.Log.WithFields(logrus.Fields{
		"components":     len(snaps),
		"needs_ordering": needsOrdering,
	}).Info("Snapshot sweep completed")
}

// RunNow triggers a sweep outside the normal schedule.
func (s *SnapshotScheduler) RunNow(ctx context.Context) {
	s.sweep(ctx)
}
