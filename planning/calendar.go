/*
calendar.go - Workday-aware planning horizon

PURPOSE:
  Builds the day-by-day window the runway projector walks. Production only
  happens on workdays (Monday through Friday), so every date in the horizon
  is tagged. Weekend days interior to the window stay in place so receipts
  that land on a Saturday are still applied on the right date; only the
  TAIL of a truncated window drops weekend days, so reports always end on
  a workday.

KEY RULES:
  - A horizon is consecutive calendar days, no gaps, no padding.
  - Truncation keeps days up through the requested workday count.
  - Trailing weekend days after the last workday are dropped.
  - Empty input produces empty output.
*/
package planning

// CalendarDay is one date in a planning horizon with its workday tag.
type CalendarDay struct {
	Date    TimePoint
	Workday bool
}

// BuildHorizon returns `days` consecutive calendar days starting at start,
// each tagged workday or weekend.
func BuildHorizon(start TimePoint, days int) []CalendarDay {
	if days <= 0 {
		return nil
	}
	out := make([]CalendarDay, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		out = append(out, CalendarDay{Date: d, Workday: d.IsWorkday()})
	}
	return out
}

// TruncateToWorkdays cuts the horizon after its n-th workday, then drops any
// trailing weekend days so the result ends on a workday. A horizon holding
// fewer than n workdays is kept whole (minus its weekend tail); nothing is
// ever padded or substituted.
func TruncateToWorkdays(horizon []CalendarDay, workdays int) []CalendarDay {
	if len(horizon) == 0 || workdays <= 0 {
		return nil
	}

	count := 0
	cut := len(horizon)
	for i, d := range horizon {
		if d.Workday {
			count++
			if count == workdays {
				cut = i + 1
				break
			}
		}
	}

	out := horizon[:cut]
	for len(out) > 0 && !out[len(out)-1].Workday {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// WorkdayHorizon builds a horizon holding exactly n workdays starting at
// start, interior weekends included. Equivalent to building a large enough
// calendar horizon and truncating it.
func WorkdayHorizon(start TimePoint, workdays int) []CalendarDay {
	if workdays <= 0 {
		return nil
	}
	var out []CalendarDay
	count := 0
	d := start
	for count < workdays {
		cd := CalendarDay{Date: d, Workday: d.IsWorkday()}
		out = append(out, cd)
		if cd.Workday {
			count++
		}
		d = d.AddDays(1)
	}
	return out
}

// CountWorkdays returns how many workdays the horizon holds.
func CountWorkdays(horizon []CalendarDay) int {
	n := 0
	for _, d := range horizon {
		if d.Workday {
			n++
		}
	}
	return n
}
