package shipping_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/shipping"
	"github.com/forge/mrp-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	shipMonday    = planning.NewTimePoint(2026, time.March, 9)
	shipWednesday = planning.NewTimePoint(2026, time.March, 11)
	shipFriday    = planning.NewTimePoint(2026, time.March, 13)
)

func newTestStores(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func each(n float64) planning.Quantity {
	return planning.NewQuantity(n, planning.UnitEach)
}

func putComponent(t *testing.T, store planning.TxStores, id string) {
	t.Helper()
	err := store.Components().Put(context.Background(), planning.Component{
		ID:     planning.ComponentID(id),
		Name:   "Part " + id,
		Unit:   planning.UnitEach,
		Kind:   planning.KindComponent,
		Active: true,
	})
	require.NoError(t, err)
}

func countStock(t *testing.T, store planning.TxStores, id string, qty float64, day planning.TimePoint) {
	t.Helper()
	err := store.Events().Append(context.Background(), planning.StockEvent{
		ID:        planning.EventID("count-" + id),
		Component: planning.ComponentID(id),
		Type:      planning.EventPhysicalCount,
		Quantity:  each(qty),
		Day:       day,
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, store planning.TxStores, id string) planning.Quantity {
	t.Helper()
	ledger := planning.NewStockLedger(store.Events())
	balance, err := ledger.CurrentBalance(context.Background(), planning.ComponentID(id), planning.UnitEach)
	require.NoError(t, err)
	return balance
}

// =============================================================================
// WEEKLY GOALS
// =============================================================================

func TestGoals_UpsertAnchorsOnMonday(t *testing.T) {
	// Any day of the week sets the same weekly goal.
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")

	goals := &shipping.Goals{Store: store}
	record, err := goals.Upsert(ctx, "drive-100", shipWednesday, each(150), "ramp week")
	require.NoError(t, err)
	assert.True(t, record.WeekStart.Equal(shipMonday), "expected the Monday key, got %v", record.WeekStart)

	found, err := goals.Get(ctx, "drive-100", shipFriday)
	require.NoError(t, err)
	require.NotNil(t, found, "any day of the same week finds the goal")
	assert.True(t, found.Goal.Equals(each(150)))
	assert.Equal(t, "ramp week", found.Notes)
}

func TestGoals_UpsertReplacesTheWeek(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")

	goals := &shipping.Goals{Store: store}
	_, err := goals.Upsert(ctx, "drive-100", shipMonday, each(150), "")
	require.NoError(t, err)
	_, err = goals.Upsert(ctx, "drive-100", shipMonday, each(200), "revised upward")
	require.NoError(t, err)

	week, err := goals.Week(ctx, shipMonday)
	require.NoError(t, err)
	require.Len(t, week, 1, "one goal per component and week")
	assert.True(t, week[0].Goal.Equals(each(200)))
}

func TestGoals_UnitDefaultsFromComponent(t *testing.T) {
	store := newTestStores(t)
	putComponent(t, store, "drive-100")

	goals := &shipping.Goals{Store: store}
	record, err := goals.Upsert(context.Background(), "drive-100", shipMonday, planning.NewQuantity(150, ""), "")
	require.NoError(t, err)
	assert.Equal(t, planning.UnitEach, record.Goal.Unit)
}

func TestGoals_Validation(t *testing.T) {
	store := newTestStores(t)
	putComponent(t, store, "drive-100")
	goals := &shipping.Goals{Store: store}
	ctx := context.Background()

	_, err := goals.Upsert(ctx, "drive-100", shipMonday, each(-5), "")
	var ve *planning.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "goal", ve.Field)

	_, err = goals.Upsert(ctx, "drive-100", planning.TimePoint{}, each(5), "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "week_start", ve.Field)

	_, err = goals.Upsert(ctx, "ghost-part", shipMonday, each(5), "")
	assert.True(t, errors.Is(err, planning.ErrComponentNotFound))
}

// =============================================================================
// DAILY SHIPMENTS
// =============================================================================

func TestShipments_FirstRecordMovesStockThroughTheBOM(t *testing.T) {
	// GIVEN: A drive built from two bearings each
	// WHEN: 100 drives ship on Monday
	// THEN: Drive stock rises 100, bearing stock falls 200

	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")
	putComponent(t, store, "brg-6204")
	countStock(t, store, "brg-6204", 900, shipMonday.AddDays(-7))
	require.NoError(t, store.BOM().Put(ctx, planning.BOMLine{
		Parent: "drive-100", Component: "brg-6204", QuantityPer: decimal.NewFromInt(2),
	}))

	shipments := &shipping.Shipments{Store: store}
	record, err := shipments.Record(ctx, "drive-100", shipMonday, each(100), "first shift")
	require.NoError(t, err)
	assert.True(t, record.Quantity.Equals(each(100)))

	assert.True(t, balanceOf(t, store, "drive-100").Equals(each(100)))
	assert.True(t, balanceOf(t, store, "brg-6204").Equals(each(700)))

	driveEvents, err := store.Events().Load(ctx, "drive-100")
	require.NoError(t, err)
	require.Len(t, driveEvents, 1)
	assert.Equal(t, planning.EventProductionOutput, driveEvents[0].Type)
	assert.Equal(t, "Production Output: drive-100", driveEvents[0].Reason)

	bearingEvents, err := store.Events().Load(ctx, "brg-6204")
	require.NoError(t, err)
	require.Len(t, bearingEvents, 2)
	consumption := bearingEvents[1]
	if consumption.Type != planning.EventProductionConsumption {
		consumption = bearingEvents[0]
	}
	assert.Equal(t, planning.EventProductionConsumption, consumption.Type)
	assert.True(t, consumption.Quantity.Equals(each(-200)))
	assert.Equal(t, "Production Consumption: drive-100", consumption.Reason)
}

func TestShipments_RerecordingReplacesAndMovesTheDelta(t *testing.T) {
	// The day's figure is a fact, not an increment: 100 then 120 then 80
	// leaves the figure at 80 and the ledger at the same net.

	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")
	putComponent(t, store, "brg-6204")
	countStock(t, store, "brg-6204", 900, shipMonday.AddDays(-7))
	require.NoError(t, store.BOM().Put(ctx, planning.BOMLine{
		Parent: "drive-100", Component: "brg-6204", QuantityPer: decimal.NewFromInt(2),
	}))

	shipments := &shipping.Shipments{Store: store}
	for _, figure := range []float64{100, 120, 80} {
		_, err := shipments.Record(ctx, "drive-100", shipMonday, each(figure), "")
		require.NoError(t, err)
	}

	onDay, err := shipments.OnDay(ctx, "drive-100", shipMonday)
	require.NoError(t, err)
	require.NotNil(t, onDay)
	assert.True(t, onDay.Quantity.Equals(each(80)), "the last figure wins")

	// Net stock matches the final figure exactly: +100 +20 -40 output,
	// -200 -40 +80 consumption.
	assert.True(t, balanceOf(t, store, "drive-100").Equals(each(80)))
	assert.True(t, balanceOf(t, store, "brg-6204").Equals(each(740)))

	driveEvents, err := store.Events().Load(ctx, "drive-100")
	require.NoError(t, err)
	assert.Len(t, driveEvents, 3, "one output event per correction")
}

func TestShipments_SameFigureTwiceIsANoOp(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")

	shipments := &shipping.Shipments{Store: store}
	_, err := shipments.Record(ctx, "drive-100", shipMonday, each(100), "")
	require.NoError(t, err)
	_, err = shipments.Record(ctx, "drive-100", shipMonday, each(100), "")
	require.NoError(t, err)

	events, err := store.Events().Load(ctx, "drive-100")
	require.NoError(t, err)
	assert.Len(t, events, 1, "a repeat of the same figure moves nothing")
}

func TestShipments_ZeroFigureClearsTheDay(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")

	shipments := &shipping.Shipments{Store: store}
	_, err := shipments.Record(ctx, "drive-100", shipMonday, each(60), "")
	require.NoError(t, err)
	_, err = shipments.Record(ctx, "drive-100", shipMonday, each(0), "fat fingered, nothing shipped")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, "drive-100").IsZero())
}

func TestShipments_Validation(t *testing.T) {
	store := newTestStores(t)
	putComponent(t, store, "drive-100")
	shipments := &shipping.Shipments{Store: store}
	ctx := context.Background()

	_, err := shipments.Record(ctx, "drive-100", shipMonday, each(-10), "")
	var ve *planning.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	_, err = shipments.Record(ctx, "drive-100", planning.TimePoint{}, each(10), "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	_, err = shipments.Record(ctx, "ghost-part", shipMonday, each(10), "")
	assert.True(t, errors.Is(err, planning.ErrComponentNotFound))
}

// =============================================================================
// PACE REPORTS
// =============================================================================

func TestPace_WeekSortsWorstProgressFirst(t *testing.T) {
	// GIVEN: Two goaled components, one at 20 percent and one at 50
	// WHEN: Asking for Wednesday's floor report
	// THEN: The one most at risk leads the list

	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")
	putComponent(t, store, "pump-30")

	goals := &shipping.Goals{Store: store}
	_, err := goals.Upsert(ctx, "drive-100", shipMonday, each(500), "")
	require.NoError(t, err)
	_, err = goals.Upsert(ctx, "pump-30", shipMonday, each(200), "")
	require.NoError(t, err)

	shipments := &shipping.Shipments{Store: store}
	_, err = shipments.Record(ctx, "drive-100", shipMonday, each(100), "")
	require.NoError(t, err)
	_, err = shipments.Record(ctx, "pump-30", shipMonday, each(100), "")
	require.NoError(t, err)

	pace := &shipping.Pace{Store: store, Profile: planning.DefaultProfile()}
	week, err := pace.Week(ctx, shipWednesday)
	require.NoError(t, err)

	require.Len(t, week.Reports, 2)
	assert.Equal(t, planning.ComponentID("drive-100"), week.Reports[0].Component.ID,
		"20 percent sorts before 50 percent")
	assert.True(t, week.Reports[0].Report.Progress.Equal(decimal.NewFromInt(20)))
	assert.True(t, week.Reports[1].Report.Progress.Equal(decimal.NewFromInt(50)))
	assert.True(t, week.Week.Start.Equal(shipMonday))
}

func TestPace_TodayFigureDrivesTheDailyStatus(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "pump-30")

	goals := &shipping.Goals{Store: store}
	_, err := goals.Upsert(ctx, "pump-30", shipMonday, each(200), "")
	require.NoError(t, err)

	shipments := &shipping.Shipments{Store: store}
	_, err = shipments.Record(ctx, "pump-30", shipMonday, each(100), "")
	require.NoError(t, err)
	_, err = shipments.Record(ctx, "pump-30", shipWednesday, each(80), "")
	require.NoError(t, err)

	pace := &shipping.Pace{Store: store, Profile: planning.DefaultProfile()}
	report, err := pace.Component(ctx, "pump-30", shipWednesday)
	require.NoError(t, err)

	// 100 before today left 100 over three workdays; 80 today clears the
	// 33.33 ask outright.
	assert.True(t, report.Report.TodayShipped.Equals(each(80)))
	assert.Equal(t, planning.DayComplete, report.Report.DailyStatus)
	assert.Equal(t, planning.WeekOnPace, report.Report.Status)
	assert.True(t, report.Report.Progress.Equal(decimal.NewFromInt(90)))
}

func TestPace_ComponentWithoutGoalIsTriviallyComplete(t *testing.T) {
	store := newTestStores(t)
	putComponent(t, store, "spare-99")

	pace := &shipping.Pace{Store: store, Profile: planning.DefaultProfile()}
	report, err := pace.Component(context.Background(), "spare-99", shipWednesday)
	require.NoError(t, err)

	assert.True(t, report.Report.Goal.IsZero())
	assert.Equal(t, planning.WeekComplete, report.Report.Status)
	assert.True(t, report.Report.Progress.IsZero())
}

func TestPace_ShipmentsOutsideTheWeekDoNotCount(t *testing.T) {
	store := newTestStores(t)
	ctx := context.Background()
	putComponent(t, store, "drive-100")

	goals := &shipping.Goals{Store: store}
	_, err := goals.Upsert(ctx, "drive-100", shipMonday, each(500), "")
	require.NoError(t, err)

	shipments := &shipping.Shipments{Store: store}
	_, err = shipments.Record(ctx, "drive-100", shipMonday.AddDays(-3), each(400), "last week")
	require.NoError(t, err)
	_, err = shipments.Record(ctx, "drive-100", shipMonday, each(60), "")
	require.NoError(t, err)

	pace := &shipping.Pace{Store: store, Profile: planning.DefaultProfile()}
	report, err := pace.Component(ctx, "drive-100", shipWednesday)
	require.NoError(t, err)

	assert.True(t, report.Report.Shipped.Equals(each(60)), "only this week's figures count")
}
