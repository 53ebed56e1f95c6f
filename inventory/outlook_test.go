package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge/mrp-engine/inventory"
	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// BOARD FIXTURE
//
// All board tests plan from a fixed Monday so the weekly goal, the
// horizon, and the run-out dates are stable regardless of when the
// suite runs.
// =============================================================================

var boardMonday = planning.NewTimePoint(2026, time.March, 9)

func testProfile() planning.PlanningProfile {
	return planning.PlanningProfile{HorizonDays: 14}.Normalized()
}

func putComponent(t *testing.T, store planning.TxStores, c planning.Component) {
	t.Helper()
	require.NoError(t, store.Components().Put(context.Background(), c))
}

func countStock(t *testing.T, store planning.TxStores, id string, qty float64, day planning.TimePoint) {
	t.Helper()
	err := store.Events().Append(context.Background(), planning.StockEvent{
		ID:        planning.EventID("count-" + id + "-" + day.String()),
		Component: planning.ComponentID(id),
		Type:      planning.EventPhysicalCount,
		Quantity:  each(qty),
		Day:       day,
	})
	require.NoError(t, err)
}

// seedAssemblyBoard wires the standard fixture: a finished drive with a
// 500/week goal, a bearing consumed two per drive, one upcoming delivery
// and one overdue order for the bearing.
func seedAssemblyBoard(t *testing.T, store planning.TxStores) {
	t.Helper()
	ctx := context.Background()

	putComponent(t, store, planning.Component{
		ID: "drive-100", Name: "Drive unit", Kind: planning.KindFinishedGood,
		Unit: planning.UnitEach, Active: true,
	})
	putComponent(t, store, planning.Component{
		ID: "brg-6204", Name: "Bearing", Kind: planning.KindComponent,
		Unit: planning.UnitEach, Active: true,
		LeadTimeDays:  5,
		SafetyStock:   each(100),
		ReorderQty:    each(500),
		OrderMultiple: each(250),
	})

	countStock(t, store, "drive-100", 50, boardMonday.AddDays(-7))
	countStock(t, store, "brg-6204", 900, boardMonday.AddDays(-7))

	require.NoError(t, store.BOM().Put(ctx, planning.BOMLine{
		Parent: "drive-100", Component: "brg-6204", QuantityPer: decimal.NewFromInt(2),
	}))
	require.NoError(t, store.Goals().Upsert(ctx, planning.WeeklyGoal{
		Component: "drive-100", WeekStart: boardMonday, Goal: each(500),
	}))

	require.NoError(t, store.Orders().Create(ctx, planning.PurchaseOrder{
		ID: "po-upcoming", Number: "PO-500", Component: "brg-6204",
		Quantity: each(600), Ordered: boardMonday.AddDays(-10),
		Expected: boardMonday.AddDays(2), Status: planning.OrderPending,
	}))
	require.NoError(t, store.Orders().Create(ctx, planning.PurchaseOrder{
		ID: "po-overdue", Number: "PO-499", Component: "brg-6204",
		Quantity: each(600), Ordered: boardMonday.AddDays(-20),
		Expected: boardMonday.AddDays(-3), Status: planning.OrderPending,
	}))
}

func findRow(t *testing.T, rows []planning.ComponentOutlook, id planning.ComponentID) planning.ComponentOutlook {
	t.Helper()
	for _, row := range rows {
		if row.Component.ID == id {
			return row
		}
	}
	t.Fatalf("no board row for %s", id)
	return planning.ComponentOutlook{}
}

// =============================================================================
// BOARD ASSEMBLY
// =============================================================================

func TestOutlook_GoalDemandFlowsThroughTheBOM(t *testing.T) {
	// GIVEN: A 500/week drive goal and a bearing consumed two per drive
	// WHEN: Building the board from Monday over two weeks
	// THEN: The bearing burns 200 per workday and runs out mid week two

	store := newTestStores(t)
	seedAssemblyBoard(t, store)

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	require.Len(t, board.Rows, 2)
	assert.True(t, board.AsOf.Equal(boardMonday))
	assert.Equal(t, 14, board.HorizonDays)

	bearing := findRow(t, board.Rows, "brg-6204")
	require.NotNil(t, bearing.Projection.RunOut)
	assert.True(t, bearing.Projection.RunOut.Equal(boardMonday.AddDays(9)),
		"expected run-out on the second Wednesday, got %v", bearing.Projection.RunOut)
	assert.Equal(t, 9, bearing.Projection.DaysOfInventory)
	assert.Equal(t, planning.TierWarning, bearing.Tier)
	assert.True(t, bearing.Projection.TotalConsumed.Equals(each(2000)), "10 workdays at 200 each")
	assert.True(t, bearing.Projection.TotalReceived.Equals(each(600)), "only the in-horizon delivery counts")
	assert.True(t, bearing.Projection.EndBalance().Equals(each(-500)))
}

func TestOutlook_FinishedGoodConsumesItsOwnBuilds(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	drive := findRow(t, board.Rows, "drive-100")
	require.NotNil(t, drive.Projection.RunOut)
	assert.True(t, drive.Projection.RunOut.Equal(boardMonday),
		"50 on hand against 100 builds runs out on day one")
	assert.Equal(t, 0, drive.Projection.DaysOfInventory)
	assert.Equal(t, planning.TierCritical, drive.Tier)
}

func TestOutlook_BoardSortsShortestRunwayFirst(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	assert.Equal(t, planning.ComponentID("drive-100"), board.Rows[0].Component.ID)
	assert.Equal(t, planning.ComponentID("brg-6204"), board.Rows[1].Component.ID)
	assert.Equal(t, 1, board.Tiers[planning.TierCritical])
	assert.Equal(t, 1, board.Tiers[planning.TierWarning])
}

func TestOutlook_OverdueOrdersAreListedButNotProjected(t *testing.T) {
	// An overdue delivery must not prop up the forecast: until someone
	// receives it, the stock does not exist.

	store := newTestStores(t)
	seedAssemblyBoard(t, store)

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	bearing := findRow(t, board.Rows, "brg-6204")
	assert.True(t, bearing.HasPending)
	require.Len(t, bearing.Overdue, 1)
	assert.Equal(t, "PO-499", bearing.Overdue[0].Number)
	assert.Empty(t, bearing.DueToday)
	assert.True(t, bearing.Projection.TotalReceived.Equals(each(600)),
		"the overdue 600 must not appear as incoming supply")
}

func TestOutlook_ReorderMathSizesTheSuggestion(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	bearing := findRow(t, board.Rows, "brg-6204")
	// 200/workday usage, 5 day lead time, 100 safety stock.
	assert.True(t, bearing.ReorderPoint.Equals(each(1100)), "expected 1100, got %v", bearing.ReorderPoint.Value)
	assert.True(t, bearing.NeedsOrdering)
	// Shortfall 1600 rounds up to the next 250 lot.
	assert.True(t, bearing.SuggestedQty.Equals(each(1750)), "expected 1750, got %v", bearing.SuggestedQty.Value)
}

func TestOutlook_ComponentThresholdsOverrideTheProfile(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()

	putComponent(t, store, planning.Component{
		ID: "part-fast", Name: "Fast burner", Unit: planning.UnitEach, Active: true,
		Thresholds: planning.UrgencyThresholds{CriticalDays: 12},
	})
	countStock(t, store, "part-fast", 900, boardMonday.AddDays(-7))
	require.NoError(t, store.Goals().Upsert(ctx, planning.WeeklyGoal{
		Component: "part-fast", WeekStart: boardMonday, Goal: each(500),
	}))

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	row, err := outlook.Component(ctx, "part-fast", boardMonday)
	require.NoError(t, err)

	// 11 days of cover is a warning by default; this part treats anything
	// under 12 as critical.
	assert.Equal(t, 11, row.Projection.DaysOfInventory)
	assert.Equal(t, planning.TierCritical, row.Tier)
}

func TestOutlook_IdlePartIsStagnantNotComfortable(t *testing.T) {
	store := newTestStores(t)
	putComponent(t, store, planning.Component{
		ID: "part-idle", Name: "Legacy spare", Unit: planning.UnitEach, Active: true,
	})
	countStock(t, store, "part-idle", 500, boardMonday.AddDays(-30))

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	idle := findRow(t, board.Rows, "part-idle")
	assert.Equal(t, planning.TierStagnant, idle.Tier)
	assert.Nil(t, idle.Projection.RunOut)
	assert.False(t, idle.NeedsOrdering)
	assert.True(t, idle.SuggestedQty.IsZero())
}

func TestOutlook_InactiveComponentsStayOffTheBoard(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)
	putComponent(t, store, planning.Component{
		ID: "part-retired", Name: "Old revision", Unit: planning.UnitEach, Active: false,
	})

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(context.Background(), boardMonday)
	require.NoError(t, err)

	for _, row := range board.Rows {
		assert.NotEqual(t, planning.ComponentID("part-retired"), row.Component.ID)
	}
}

func TestOutlook_ComponentMatchesTheBoardRow(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)
	ctx := context.Background()

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	board, err := outlook.Build(ctx, boardMonday)
	require.NoError(t, err)
	fromBoard := findRow(t, board.Rows, "brg-6204")

	single, err := outlook.Component(ctx, "brg-6204", boardMonday)
	require.NoError(t, err)

	assert.Equal(t, fromBoard.Tier, single.Tier)
	assert.Equal(t, fromBoard.Projection.DaysOfInventory, single.Projection.DaysOfInventory)
	assert.True(t, fromBoard.SuggestedQty.Equals(single.SuggestedQty))
	assert.Len(t, single.Projection.Days, 14, "the single view carries the full daily series")
}

// =============================================================================
// SNAPSHOT SWEEP
// =============================================================================

func TestOutlook_SnapshotPersistsOneRowPerComponent(t *testing.T) {
	store := newTestStores(t)
	seedAssemblyBoard(t, store)
	ctx := context.Background()

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	snaps, err := outlook.Snapshot(ctx, boardMonday)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	latest, err := store.Snapshots().Latest(ctx, "brg-6204")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "brg-6204-2026-03-09", latest.ID)
	assert.Equal(t, 9, latest.DaysOfInventory)
	assert.Equal(t, planning.TierWarning, latest.Tier)
	assert.True(t, latest.NeedsOrdering)
	assert.True(t, latest.SuggestedQty.Equals(each(1750)))

	listed, err := store.Snapshots().List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestOutlook_SnapshotReplacedOnRerun(t *testing.T) {
	// Two sweeps for the same planning date produce one snapshot per
	// component, not an ever-growing pile.
	store := newTestStores(t)
	seedAssemblyBoard(t, store)
	ctx := context.Background()

	outlook := &inventory.Outlook{Store: store, Profile: testProfile()}
	_, err := outlook.Snapshot(ctx, boardMonday)
	require.NoError(t, err)
	_, err = outlook.Snapshot(ctx, boardMonday)
	require.NoError(t, err)

	listed, err := store.Snapshots().List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
