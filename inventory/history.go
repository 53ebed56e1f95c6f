package inventory

import (
	"context"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// HISTORY SERVICE - Balance reconciliation and the activity feed
// =============================================================================

// recentWindowDays bounds how far back the global activity feed looks.
const recentWindowDays = 90

// defaultHistoryDays is the reconciliation window when the caller does
// not ask for one.
const defaultHistoryDays = 30

type History struct {
	Store   planning.TxStores
	Profile planning.PlanningProfile
}

// ComponentHistory pairs a component with its reconciled window.
type ComponentHistory struct {
	Component planning.Component
	Report    planning.HistoryReport
}

// WindowSummary aggregates every component's reconciliation for one window.
type WindowSummary struct {
	Window       planning.Period
	Components   []ComponentHistory
	CountsByType map[planning.EventType]int
	EventCount   int
}

// Component reconciles one component's balance over the trailing window
// ending today.
func (s *History) Component(ctx context.Context, id planning.ComponentID, windowDays int, today planning.TimePoint) (*planning.HistoryReport, error) {
	c, err := s.Store.Components().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = defaultHistoryDays
	}
	window := planning.TrailingDays(today, windowDays)

	ledger := planning.NewStockLedger(s.Store.Events())
	current, err := ledger.CurrentBalance(ctx, c.ID, c.Unit)
	if err != nil {
		return nil, err
	}
	events, err := s.Store.Events().LoadRange(ctx, c.ID, window)
	if err != nil {
		return nil, err
	}

	report := planning.ReconcileHistory(planning.HistoryInput{
		Current: current,
		Events:  events,
		Window:  window,
	})
	return &report, nil
}

// Recent returns the newest events across all components.
func (s *History) Recent(ctx context.Context, limit int, today planning.TimePoint) ([]planning.StockEvent, error) {
	if limit <= 0 {
		limit = s.Profile.Normalized().RecentLimit
	}
	window := planning.TrailingDays(today, recentWindowDays)
	events, err := s.Store.Events().LoadAll(ctx, window)
	if err != nil {
		return nil, err
	}
	return planning.RecentActivity(events, limit), nil
}

// Summary reconciles every active component over the same window and
// totals the event counts by type.
func (s *History) Summary(ctx context.Context, windowDays int, today planning.TimePoint) (*WindowSummary, error) {
	if windowDays <= 0 {
		windowDays = defaultHistoryDays
	}
	window := planning.TrailingDays(today, windowDays)

	components, err := s.Store.Components().List(ctx, true)
	if err != nil {
		return nil, err
	}

	summary := &WindowSummary{
		Window:       window,
		CountsByType: map[planning.EventType]int{},
	}
	for _, c := range components {
		report, err := s.Component(ctx, c.ID, windowDays, today)
		if err != nil {
			return nil, err
		}
		summary.Components = append(summary.Components, ComponentHistory{Component: c, Report: *report})
		for t, n := range report.CountsByType {
			summary.CountsByType[t] += n
		}
		summary.EventCount += report.EventCount
	}
	return summary, nil
}
