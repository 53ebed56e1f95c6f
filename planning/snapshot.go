package planning

import "time"

// =============================================================================
// OUTLOOK SNAPSHOT - Persisted planning results
// =============================================================================

// OutlookSnapshot is a flattened board row saved by the periodic sweep.
// Used for:
//   - Fast dashboard reads (avoid reprojecting every component per request)
//   - Trend queries (how did cover develop over the last month?)
//   - Audit trail for ordering decisions
type OutlookSnapshot struct {
	ID        string
	Component ComponentID

	// AsOf is the planning date the sweep projected from.
	AsOf TimePoint

	ProjectedEnd    Quantity
	RunOut          *TimePoint
	DaysOfInventory int
	Tier            Tier
	NeedsOrdering   bool
	SuggestedQty    Quantity

	CalculatedAt time.Time
}

// SnapshotOutlook flattens a board row for storage.
func SnapshotOutlook(row ComponentOutlook, at time.Time) OutlookSnapshot {
	return OutlookSnapshot{
		ID:              string(row.Component.ID) + "-" + row.AsOf.String(),
		Component:       row.Component.ID,
		AsOf:            row.AsOf,
		ProjectedEnd:    row.Projection.EndBalance(),
		RunOut:          row.Projection.RunOut,
		DaysOfInventory: row.Projection.DaysOfInventory,
		Tier:            row.Tier,
		NeedsOrdering:   row.NeedsOrdering,
		SuggestedQty:    row.SuggestedQty,
		CalculatedAt:    at,
	}
}
