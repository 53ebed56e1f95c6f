package planning

// =============================================================================
// DEMAND SCHEDULE - Interface for how consumption lands on dates
// =============================================================================

// DemandSchedule generates dated consumption for a time range.
// Implementations define where the demand comes from (weekly build goals,
// firm orders, a flat usage rate).
type DemandSchedule interface {
	// GenerateDemand returns consumption per date in [from, to].
	GenerateDemand(from, to TimePoint) QuantityByDay
}

// =============================================================================
// IMPLEMENTATIONS
// =============================================================================

// WeeklyGoalDemand spreads a weekly build goal evenly across workdays.
// One fifth of the goal lands on each of Monday through Friday; weekends
// consume nothing. This is the standard demand shape for a finished good
// tracked by weekly shipping goals.
type WeeklyGoalDemand struct {
	Goal Quantity
}

func (d WeeklyGoalDemand) GenerateDemand(from, to TimePoint) QuantityByDay {
	out := QuantityByDay{}
	if !d.Goal.IsPositive() {
		return out
	}
	perDay := d.Goal.DivInt(workdaysPerWeek)
	for cur := from; cur.BeforeOrEqual(to); cur = cur.AddDays(1) {
		if cur.IsWorkday() {
			out.AddOn(cur, perDay)
		}
	}
	return out
}

// FlatDemand consumes a fixed amount every workday. Used for parts with a
// steady usage rate that is not tied to a weekly goal.
type FlatDemand struct {
	PerWorkday Quantity
}

func (d FlatDemand) GenerateDemand(from, to TimePoint) QuantityByDay {
	out := QuantityByDay{}
	if !d.PerWorkday.IsPositive() {
		return out
	}
	for cur := from; cur.BeforeOrEqual(to); cur = cur.AddDays(1) {
		if cur.IsWorkday() {
			out.AddOn(cur, d.PerWorkday)
		}
	}
	return out
}

// MergeDemand sums two daily consumption maps. Used when one component is
// consumed by several parents.
func MergeDemand(a, b QuantityByDay) QuantityByDay {
	out := QuantityByDay{}
	for key, q := range a {
		out[key] = q
	}
	for key, q := range b {
		cur, ok := out[key]
		if !ok {
			out[key] = q
			continue
		}
		out[key] = cur.Add(q)
	}
	return out
}
