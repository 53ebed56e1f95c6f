/*
runway.go - Day-by-day inventory projection

PURPOSE:
  Walks a component's stock forward through a planning horizon and reports
  when it runs out. Each day applies that day's planned consumption and
  incoming purchase order receipts:

      projected[i] = projected[i-1] - consumption[i] + incoming[i]

  Day zero starts from current on-hand stock. Balances are allowed to go
  negative and stay negative; a negative stretch is exactly the signal the
  urgency classifier needs.

KEY RULES:
  - Run-out is the FIRST date the balance drops below zero. The walk keeps
    going afterwards so the full daily series is available to the UI.
  - Days of inventory counts calendar days from the horizon start to the
    run-out date. When the balance never goes negative inside the horizon,
    the horizon length itself is reported as the beyond-horizon sentinel.
  - All arithmetic is decimal. Identical inputs produce identical output,
    bit for bit.

SEE ALSO:
  - calendar.go: Horizon construction
  - demand.go: Where daily consumption comes from
  - orders.go: Where incoming receipts come from
*/
package planning

// =============================================================================
// DAILY FLOWS - Quantities keyed by calendar date
// =============================================================================

// QuantityByDay maps "2006-01-02" date strings to quantities. Keyed by
// string so two equal dates always collide regardless of how their
// TimePoints were built.
type QuantityByDay map[string]Quantity

// On returns the quantity for a date, zero-valued when absent.
func (m QuantityByDay) On(t TimePoint) Quantity {
	return m[t.String()]
}

// AddOn accumulates a quantity onto a date.
func (m QuantityByDay) AddOn(t TimePoint, q Quantity) {
	key := t.String()
	m[key] = m[key].Add(q)
}

// =============================================================================
// RUNWAY PROJECTION
// =============================================================================

type RunwayInput struct {
	// Start is the on-hand balance before the first horizon day.
	Start Quantity

	// Horizon is the consecutive day window to project over.
	Horizon []CalendarDay

	// Consumption holds planned usage per date. Missing dates consume zero.
	Consumption QuantityByDay

	// Incoming holds expected receipts per date. Missing dates receive zero.
	Incoming QuantityByDay
}

// ProjectedDay is one row of the daily projection series.
type ProjectedDay struct {
	Date      TimePoint
	Workday   bool
	Consumed  Quantity
	Received  Quantity
	Projected Quantity
}

// Projection is the full runway result for one component.
type Projection struct {
	Start Quantity
	Days  []ProjectedDay

	// RunOut is the first date the projected balance goes below zero,
	// nil when the balance survives the whole horizon.
	RunOut *TimePoint

	// DaysOfInventory counts calendar days from the horizon start to the
	// run-out. When RunOut is nil it holds the horizon length in days.
	DaysOfInventory int

	TotalConsumed Quantity
	TotalReceived Quantity
}

// BeyondHorizon reports whether the balance never ran out inside the horizon.
func (p Projection) BeyondHorizon() bool { return p.RunOut == nil }

// EndBalance returns the projected balance on the last horizon day, or the
// starting balance for an empty horizon.
func (p Projection) EndBalance() Quantity {
	if len(p.Days) == 0 {
		return p.Start
	}
	return p.Days[len(p.Days)-1].Projected
}

// ProjectRunway walks the horizon and builds the daily series.
func ProjectRunway(in RunwayInput) Projection {
	result := Projection{
		Start:         in.Start,
		TotalConsumed: in.Start.Zero(),
		TotalReceived: in.Start.Zero(),
	}
	if len(in.Horizon) == 0 {
		return result
	}

	result.Days = make([]ProjectedDay, 0, len(in.Horizon))
	balance := in.Start

	for _, day := range in.Horizon {
		consumed := in.Consumption.On(day.Date)
		received := in.Incoming.On(day.Date)
		balance = balance.Sub(consumed).Add(received)

		result.Days = append(result.Days, ProjectedDay{
			Date:      day.Date,
			Workday:   day.Workday,
			Consumed:  consumed,
			Received:  received,
			Projected: balance,
		})
		result.TotalConsumed = result.TotalConsumed.Add(consumed)
		result.TotalReceived = result.TotalReceived.Add(received)

		if result.RunOut == nil && balance.IsNegative() {
			d := day.Date
			result.RunOut = &d
		}
	}

	if result.RunOut != nil {
		result.DaysOfInventory = DaysBetween(in.Horizon[0].Date, *result.RunOut)
	} else {
		result.DaysOfInventory = len(in.Horizon)
	}
	return result
}
