package planning_test

import (
	"testing"
	"time"

	"github.com/forge/mrp-engine/planning"
)

func pendingOrder(number string, component string, expected planning.TimePoint, qty float64) planning.PurchaseOrder {
	return planning.PurchaseOrder{
		ID:        planning.OrderID("id-" + number),
		Number:    number,
		Component: planning.ComponentID(component),
		Quantity:  units(qty),
		Ordered:   monday,
		Expected:  expected,
		Status:    planning.OrderPending,
	}
}

// =============================================================================
// INCOMING SUPPLY MATCHING
// =============================================================================

func TestMatchIncoming_SumsPendingByExpectedDate(t *testing.T) {
	received := pendingOrder("PO-090", "brg-6204", wednesday, 500)
	received.Status = planning.OrderReceived

	incoming := planning.MatchIncoming([]planning.PurchaseOrder{
		pendingOrder("PO-100", "brg-6204", wednesday, 200),
		pendingOrder("PO-101", "brg-6204", wednesday, 50),
		pendingOrder("PO-102", "brg-6204", friday, 300),
		received,
	})

	if !incoming.On(wednesday).Equals(units(250)) {
		t.Errorf("expected 250 on Wednesday, got %v", incoming.On(wednesday).Value)
	}
	if !incoming.On(friday).Equals(units(300)) {
		t.Errorf("expected 300 on Friday, got %v", incoming.On(friday).Value)
	}
}

// =============================================================================
// SCHEDULE PARTITIONING
// =============================================================================

func TestPartitionPending_BucketsAroundToday(t *testing.T) {
	orders := []planning.PurchaseOrder{
		pendingOrder("PO-100", "brg-6204", monday, 10),
		pendingOrder("PO-101", "ctl-04", wednesday, 10),
		pendingOrder("PO-102", "mtr-750", friday, 10),
	}

	sched := planning.PartitionPending(orders, wednesday)

	if len(sched.Overdue) != 1 || sched.Overdue[0].Number != "PO-100" {
		t.Errorf("expected PO-100 overdue, got %+v", sched.Overdue)
	}
	if len(sched.DueToday) != 1 || sched.DueToday[0].Number != "PO-101" {
		t.Errorf("expected PO-101 due today, got %+v", sched.DueToday)
	}
	if len(sched.Upcoming) != 1 || sched.Upcoming[0].Number != "PO-102" {
		t.Errorf("expected PO-102 upcoming, got %+v", sched.Upcoming)
	}
}

func TestPartitionPending_SortsByExpectedThenNumber(t *testing.T) {
	orders := []planning.PurchaseOrder{
		pendingOrder("PO-202", "a", tuesday, 10),
		pendingOrder("PO-200", "b", monday, 10),
		pendingOrder("PO-201", "c", monday, 10),
	}

	sched := planning.PartitionPending(orders, friday)

	want := []string{"PO-200", "PO-201", "PO-202"}
	if len(sched.Overdue) != 3 {
		t.Fatalf("expected 3 overdue orders, got %d", len(sched.Overdue))
	}
	for i, number := range want {
		if sched.Overdue[i].Number != number {
			t.Errorf("position %d: expected %s, got %s", i, number, sched.Overdue[i].Number)
		}
	}
}

func TestPartitionPending_SkipsNonPending(t *testing.T) {
	cancelled := pendingOrder("PO-300", "brg-6204", monday, 10)
	cancelled.Status = planning.OrderCancelled

	sched := planning.PartitionPending([]planning.PurchaseOrder{cancelled}, friday)

	if len(sched.Overdue)+len(sched.DueToday)+len(sched.Upcoming) != 0 {
		t.Error("cancelled orders must not appear on the schedule")
	}
}

func TestCountOrders_TalliesByStatus(t *testing.T) {
	received := pendingOrder("PO-101", "b", friday, 10)
	received.Status = planning.OrderReceived
	cancelled := pendingOrder("PO-102", "c", friday, 10)
	cancelled.Status = planning.OrderCancelled

	counts := planning.CountOrders([]planning.PurchaseOrder{
		pendingOrder("PO-100", "a", friday, 10),
		received,
		cancelled,
	})

	if counts.Pending != 1 || counts.Received != 1 || counts.All != 3 {
		t.Errorf("expected 1/1/3, got %+v", counts)
	}

	if !planning.HasPending([]planning.PurchaseOrder{received, pendingOrder("PO-103", "d", friday, 10)}) {
		t.Error("expected a pending order to be found")
	}
	if planning.HasPending([]planning.PurchaseOrder{received}) {
		t.Error("expected no pending orders")
	}
}

// =============================================================================
// BOARD ORDERING
// =============================================================================

func boardRow(id string, daysOfInventory int, runsOut bool) planning.ComponentOutlook {
	projection := planning.Projection{DaysOfInventory: daysOfInventory}
	if runsOut {
		day := monday.AddDays(daysOfInventory)
		projection.RunOut = &day
	}
	return planning.ComponentOutlook{
		Component:  planning.Component{ID: planning.ComponentID(id)},
		AsOf:       monday,
		Projection: projection,
	}
}

func TestSortBoard_ShortestRunwayFirst(t *testing.T) {
	rows := []planning.ComponentOutlook{
		boardRow("part-comfortable", 0, false),
		boardRow("part-critical", 2, true),
		boardRow("part-caution", 20, true),
		boardRow("part-warning", 9, true),
	}

	planning.SortBoard(rows)

	want := []planning.ComponentID{"part-critical", "part-warning", "part-caution", "part-comfortable"}
	for i, id := range want {
		if rows[i].Component.ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, rows[i].Component.ID)
		}
	}
}

func TestSortBoard_TiesBreakByPartCode(t *testing.T) {
	rows := []planning.ComponentOutlook{
		boardRow("zz-part", 5, true),
		boardRow("aa-part", 5, true),
	}

	planning.SortBoard(rows)

	if rows[0].Component.ID != "aa-part" {
		t.Errorf("expected aa-part first on a tie, got %s", rows[0].Component.ID)
	}
}

func TestTierCounts(t *testing.T) {
	rows := []planning.ComponentOutlook{
		{Tier: planning.TierCritical},
		{Tier: planning.TierCritical},
		{Tier: planning.TierOK},
	}

	counts := planning.TierCounts(rows)

	if counts[planning.TierCritical] != 2 || counts[planning.TierOK] != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

// =============================================================================
// SNAPSHOT FLATTENING
// =============================================================================

func TestSnapshotOutlook_FlattensBoardRow(t *testing.T) {
	row := boardRow("brg-6204", 3, true)
	row.Tier = planning.TierCritical
	row.NeedsOrdering = true
	row.SuggestedQty = units(400)

	at := time.Date(2026, time.March, 9, 6, 0, 0, 0, time.UTC)
	snap := planning.SnapshotOutlook(row, at)

	if snap.ID != "brg-6204-2026-03-09" {
		t.Errorf("expected a component-date id, got %s", snap.ID)
	}
	if snap.DaysOfInventory != 3 || snap.Tier != planning.TierCritical {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.RunOut == nil {
		t.Error("expected the run-out date carried over")
	}
	if !snap.NeedsOrdering || !snap.SuggestedQty.Equals(units(400)) {
		t.Errorf("expected ordering fields carried over, got %+v", snap)
	}
	if !snap.CalculatedAt.Equal(at) {
		t.Errorf("expected the sweep time recorded, got %v", snap.CalculatedAt)
	}
}
