package planning

// =============================================================================
// PERIOD - Inclusive date window for reports and reconciliation
// =============================================================================

// Period is an inclusive [Start, End] window. Pace reports run over a
// shipping week, history reconciliation over an arbitrary window.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the date falls within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns every date in the period in ascending order.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// DayCount returns the number of dates in the period, inclusive.
func (p Period) DayCount() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Overlaps returns true if the two periods share at least one date.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Next returns the contiguous period of the same length following this one.
func (p Period) Next() Period {
	newStart := p.End.AddDays(1)
	duration := DaysBetween(p.Start, p.End)
	return Period{Start: newStart, End: newStart.AddDays(duration)}
}

// Previous returns the contiguous period of the same length before this one.
func (p Period) Previous() Period {
	duration := DaysBetween(p.Start, p.End)
	newEnd := p.Start.AddDays(-1)
	return Period{Start: newEnd.AddDays(-duration), End: newEnd}
}

// =============================================================================
// WINDOW CALCULATORS - The windows this domain reports over
// =============================================================================

// WeekOf returns the Monday-anchored shipping week containing the date:
// Monday through Sunday. Shipping goals and pace tracking always use this
// week shape regardless of which day the report is asked for.
func WeekOf(t TimePoint) Period {
	start := t.AddDays(-t.WorkweekIndex())
	return Period{Start: start, End: start.AddDays(6)}
}

// MonthOf returns the calendar month containing the date.
func MonthOf(t TimePoint) Period {
	return Period{
		Start: StartOfMonth(t.Year(), t.Month()),
		End:   EndOfMonth(t.Year(), t.Month()),
	}
}

// TrailingDays returns the window of n days ending on the given date,
// inclusive. TrailingDays(today, 30) is the usual history window.
func TrailingDays(end TimePoint, n int) Period {
	if n < 1 {
		n = 1
	}
	return Period{Start: end.AddDays(-(n - 1)), End: end}
}
