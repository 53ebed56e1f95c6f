/*
outlook.go - Assembles the planning board from live data

PURPOSE:
  Pulls together everything the pure calculators need and runs them for
  every active component: weekly goals become daily demand, the BOM
  pushes that demand down to parts, pending purchase orders become dated
  incoming supply, and the runway projection turns all of it into a
  run-out forecast with an urgency tier and an order suggestion.

PIPELINE (per refresh):
  goals -> WeeklyGoalDemand -> ExplodeDemand ----\
  pending POs -> MatchIncoming ------------------+--> ProjectRunway
  event log -> CurrentBalance -------------------/        |
                                                          v
                                        ClassifyUrgency + reorder math
                                                          |
                                                          v
                                                  SortBoard -> Board

DETERMINISM:
  The same stored data and the same planning date always produce the
  same board, row for row. Nothing here reads the clock; the caller
  passes the planning date in.

SEE ALSO:
  - planning/runway.go, planning/urgency.go, planning/reorder.go
  - api/scheduler.go: Periodic snapshot sweep built on Snapshot
*/
package inventory

import (
	"context"
	"time"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// OUTLOOK SERVICE - Board construction and snapshots
// =============================================================================

type Outlook struct {
	Store   planning.TxStores
	Profile planning.PlanningProfile
}

// Board is the full planning board for one refresh.
type Board struct {
	AsOf        planning.TimePoint
	HorizonDays int
	Rows        []planning.ComponentOutlook
	Tiers       map[planning.Tier]int
}

// Build assembles the board for every active component as of the given
// planning date.
func (s *Outlook) Build(ctx context.Context, today planning.TimePoint) (*Board, error) {
	profile := s.Profile.Normalized()

	components, err := s.Store.Components().List(ctx, true)
	if err != nil {
		return nil, err
	}

	horizon := planning.BuildHorizon(today, profile.HorizonDays)
	demand, err := s.demandSet(ctx, components, today, profile)
	if err != nil {
		return nil, err
	}
	pendingByComponent, err := s.pendingOrders(ctx)
	if err != nil {
		return nil, err
	}

	ledger := planning.NewStockLedger(s.Store.Events())
	rows := make([]planning.ComponentOutlook, 0, len(components))
	for _, c := range components {
		row, err := s.buildRow(ctx, ledger, c, today, horizon, demand[c.ID], pendingByComponent[c.ID], profile)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}

	planning.SortBoard(rows)
	return &Board{
		AsOf:        today,
		HorizonDays: profile.HorizonDays,
		Rows:        rows,
		Tiers:       planning.TierCounts(rows),
	}, nil
}

// Component builds the board row for a single component, including the
// full daily projection series.
func (s *Outlook) Component(ctx context.Context, id planning.ComponentID, today planning.TimePoint) (*planning.ComponentOutlook, error) {
	profile := s.Profile.Normalized()

	c, err := s.Store.Components().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Demand explosion needs every component: this part's consumption may
	// come from goals on its parents.
	components, err := s.Store.Components().List(ctx, false)
	if err != nil {
		return nil, err
	}
	demand, err := s.demandSet(ctx, components, today, profile)
	if err != nil {
		return nil, err
	}

	pendingStatus := planning.OrderPending
	pending, err := s.Store.Orders().List(ctx, planning.OrderFilter{Status: &pendingStatus, Component: &c.ID})
	if err != nil {
		return nil, err
	}

	horizon := planning.BuildHorizon(today, profile.HorizonDays)
	ledger := planning.NewStockLedger(s.Store.Events())
	return s.buildRow(ctx, ledger, *c, today, horizon, demand[c.ID], pending, profile)
}

// Snapshot builds the board and persists one snapshot row per component.
func (s *Outlook) Snapshot(ctx context.Context, today planning.TimePoint) ([]planning.OutlookSnapshot, error) {
	board, err := s.Build(ctx, today)
	if err != nil {
		return nil, err
	}

	at := time.Now().UTC()
	snaps := make([]planning.OutlookSnapshot, 0, len(board.Rows))
	for _, row := range board.Rows {
		snaps = append(snaps, planning.SnapshotOutlook(row, at))
	}

	if err := s.Store.Snapshots().PutBatch(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// =============================================================================
// ASSEMBLY STEPS
// =============================================================================

// demandSet turns the current week's goals into dated consumption for
// every component the BOM reaches. The weekly goal recurs across the
// whole horizon: a 500/week goal keeps consuming 100 per workday into
// future weeks until the goal changes.
func (s *Outlook) demandSet(ctx context.Context, components []planning.Component, today planning.TimePoint, profile planning.PlanningProfile) (planning.DemandSet, error) {
	week := planning.WeekOf(today)
	goals, err := s.Store.Goals().ListWeek(ctx, week.Start)
	if err != nil {
		return nil, err
	}

	end := today.AddDays(profile.HorizonDays - 1)
	build := planning.DemandSet{}
	for _, goal := range goals {
		if !goal.Goal.IsPositive() {
			continue
		}
		build[goal.Component] = planning.WeeklyGoalDemand{Goal: goal.Goal}.GenerateDemand(today, end)
	}

	lines, err := s.Store.BOM().List(ctx)
	if err != nil {
		return nil, err
	}

	units := make(map[planning.ComponentID]planning.Unit, len(components))
	for _, c := range components {
		units[c.ID] = c.Unit
	}
	unitOf := func(id planning.ComponentID) planning.Unit {
		if u, ok := units[id]; ok {
			return u
		}
		return planning.UnitEach
	}

	return planning.ExplodeDemand(lines, build, unitOf), nil
}

func (s *Outlook) pendingOrders(ctx context.Context) (map[planning.ComponentID][]planning.PurchaseOrder, error) {
	pendingStatus := planning.OrderPending
	orders, err := s.Store.Orders().List(ctx, planning.OrderFilter{Status: &pendingStatus})
	if err != nil {
		return nil, err
	}

	byComponent := map[planning.ComponentID][]planning.PurchaseOrder{}
	for _, po := range orders {
		byComponent[po.Component] = append(byComponent[po.Component], po)
	}
	return byComponent, nil
}

func (s *Outlook) buildRow(ctx context.Context, ledger *planning.StockLedger, c planning.Component, today planning.TimePoint, horizon []planning.CalendarDay, consumption planning.QuantityByDay, pending []planning.PurchaseOrder, profile planning.PlanningProfile) (*planning.ComponentOutlook, error) {
	balance, err := ledger.CurrentBalance(ctx, c.ID, c.Unit)
	if err != nil {
		return nil, err
	}

	if consumption == nil {
		consumption = planning.QuantityByDay{}
	}
	projection := planning.ProjectRunway(planning.RunwayInput{
		Start:       balance,
		Horizon:     horizon,
		Consumption: consumption,
		Incoming:    planning.MatchIncoming(pending),
	})

	tier := planning.ClassifyUrgency(planning.UrgencyInput{
		DaysOfInventory: projection.DaysOfInventory,
		BeyondHorizon:   projection.BeyondHorizon(),
		NoConsumption:   projection.TotalConsumed.IsZero(),
		Thresholds:      thresholdsFor(c, profile),
		StagnantAfter:   profile.StagnantAfter,
	})

	// Average usage per workday sizes the reorder point: lead time cover
	// plus safety stock.
	dailyUsage := projection.TotalConsumed.DivInt(planning.CountWorkdays(horizon))
	reorderPoint := planning.ReorderPoint(c.LeadTimeDays, dailyUsage, c.SafetyStock)

	needsOrdering := projection.RunOut != nil || projection.EndBalance().LessThan(reorderPoint)
	suggested := balance.Zero()
	if needsOrdering {
		shortfall := reorderPoint.Sub(projection.EndBalance())
		suggested = planning.SuggestedOrder(shortfall, c.ReorderQty, c.MinimumOrder, c.OrderMultiple)
	}

	schedule := planning.PartitionPending(pending, today)
	return &planning.ComponentOutlook{
		Component:     c,
		AsOf:          today,
		Projection:    projection,
		Tier:          tier,
		HasPending:    len(pending) > 0,
		Overdue:       schedule.Overdue,
		DueToday:      schedule.DueToday,
		ReorderPoint:  reorderPoint,
		NeedsOrdering: needsOrdering,
		SuggestedQty:  suggested,
	}, nil
}

// thresholdsFor merges the component's own thresholds over the profile
// defaults. Zero fields keep falling through inside the classifier.
func thresholdsFor(c planning.Component, profile planning.PlanningProfile) planning.UrgencyThresholds {
	t := c.Thresholds
	if t.CriticalDays == 0 {
		t.CriticalDays = profile.DefaultThresholds.CriticalDays
	}
	if t.WarningDays == 0 {
		t.WarningDays = profile.DefaultThresholds.WarningDays
	}
	if t.CautionDays == 0 {
		t.CautionDays = profile.DefaultThresholds.CautionDays
	}
	return t
}
