/*
outlook.go - The planning board

PURPOSE:
  A board row bundles everything a planner needs to decide whether to act
  on a part today: its projection, its urgency tier, the purchase orders
  that should have arrived already, and a sized order suggestion when the
  runway is short.

BOARD ORDER:
  Fewest days of inventory first. Parts that never run out inside the
  horizon sort to the bottom, ties break by part code so the board is
  stable between refreshes.
*/
package planning

import "sort"

// sentinelSortKey pushes never-runs-out rows below every dated run-out.
const sentinelSortKey = 999999

// ComponentOutlook is one planning board row.
type ComponentOutlook struct {
	Component  Component
	AsOf       TimePoint
	Projection Projection
	Tier       Tier

	// Pending purchase order context.
	HasPending bool
	Overdue    []PurchaseOrder
	DueToday   []PurchaseOrder

	// Replenishment math.
	ReorderPoint  Quantity
	NeedsOrdering bool
	SuggestedQty  Quantity
}

func (o ComponentOutlook) boardKey() int {
	if o.Projection.BeyondHorizon() {
		return sentinelSortKey
	}
	return o.Projection.DaysOfInventory
}

// SortBoard orders rows by urgency in place.
func SortBoard(rows []ComponentOutlook) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].boardKey(), rows[j].boardKey()
		if di == dj {
			return rows[i].Component.ID < rows[j].Component.ID
		}
		return di < dj
	})
}

// TierCounts tallies a board by tier for the dashboard header.
func TierCounts(rows []ComponentOutlook) map[Tier]int {
	counts := map[Tier]int{}
	for _, row := range rows {
		counts[row.Tier]++
	}
	return counts
}
