/*
orders.go - Purchase orders and incoming supply matching

PURPOSE:
  Defines the purchase order record and the matching rules that feed the
  runway projector. Matching is deliberately dumb: a pending order counts
  on its expected date and ONLY on its expected date. No arrival windows,
  no lead time fuzzing. If the date slips, the planner updates the order;
  the projection never guesses.

LIFECYCLE:
  pending ──▶ received   (receipt recorded, stock adjusted)
  pending ──▶ cancelled  (order withdrawn, never affects stock)

  Received and cancelled orders are invisible to matching. Receiving is a
  one-way, exactly-once transition handled by the inventory service; the
  helpers here only answer pure questions about a set of orders.

SEE ALSO:
  - runway.go: Consumes the matched incoming quantities
  - ledger.go: Enforces the single receipt per order
*/
package planning

import "sort"

// =============================================================================
// PURCHASE ORDER
// =============================================================================

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

type PurchaseOrder struct {
	ID        OrderID
	Number    string
	Component ComponentID
	Quantity  Quantity
	Ordered   TimePoint
	Expected  TimePoint
	Status    OrderStatus

	// Set when the order is received; nil while pending.
	ReceivedOn  *TimePoint
	ReceivedQty *Quantity

	Supplier string
	Notes    string
}

func (po PurchaseOrder) IsPending() bool  { return po.Status == OrderPending }
func (po PurchaseOrder) IsReceived() bool { return po.Status == OrderReceived }

// =============================================================================
// MATCHING - Pending orders onto projection dates
// =============================================================================

// MatchIncoming sums pending order quantities by expected date. Received
// and cancelled orders never contribute.
func MatchIncoming(orders []PurchaseOrder) QuantityByDay {
	incoming := QuantityByDay{}
	for _, po := range orders {
		if !po.IsPending() {
			continue
		}
		incoming.AddOn(po.Expected, po.Quantity)
	}
	return incoming
}

// OrderSchedule partitions pending orders relative to a reference date.
type OrderSchedule struct {
	Overdue  []PurchaseOrder // expected strictly before today
	DueToday []PurchaseOrder // expected exactly today
	Upcoming []PurchaseOrder // expected after today
}

// PartitionPending buckets pending orders by how their expected date
// relates to today. Each bucket comes back ordered by expected date, ties
// by order number.
func PartitionPending(orders []PurchaseOrder, today TimePoint) OrderSchedule {
	var sched OrderSchedule
	for _, po := range orders {
		if !po.IsPending() {
			continue
		}
		switch {
		case po.Expected.Before(today):
			sched.Overdue = append(sched.Overdue, po)
		case po.Expected.Equal(today):
			sched.DueToday = append(sched.DueToday, po)
		default:
			sched.Upcoming = append(sched.Upcoming, po)
		}
	}
	sortByExpected(sched.Overdue)
	sortByExpected(sched.DueToday)
	sortByExpected(sched.Upcoming)
	return sched
}

func sortByExpected(orders []PurchaseOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Expected.Equal(orders[j].Expected) {
			return orders[i].Number < orders[j].Number
		}
		return orders[i].Expected.Before(orders[j].Expected)
	})
}

// HasPending reports whether any pending order exists for the set,
// regardless of when it arrives.
func HasPending(orders []PurchaseOrder) bool {
	for _, po := range orders {
		if po.IsPending() {
			return true
		}
	}
	return false
}

// OrderCounts summarizes an order book by status.
type OrderCounts struct {
	Pending  int
	Received int
	All      int
}

func CountOrders(orders []PurchaseOrder) OrderCounts {
	counts := OrderCounts{All: len(orders)}
	for _, po := range orders {
		switch po.Status {
		case OrderPending:
			counts.Pending++
		case OrderReceived:
			counts.Received++
		}
	}
	return counts
}
