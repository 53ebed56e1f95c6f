package planning_test

import (
	"testing"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// RUNWAY PROJECTION TESTS
// =============================================================================

func TestProjectRunway_DailyWalk(t *testing.T) {
	// GIVEN: 100 on hand, 30 consumed per day over a 5-day horizon
	// WHEN: Projecting
	// THEN: Balance crosses zero on day 4 and stays negative

	horizon := planning.BuildHorizon(monday, 5)
	consumption := planning.QuantityByDay{}
	for _, d := range horizon {
		consumption.AddOn(d.Date, units(30))
	}

	result := planning.ProjectRunway(planning.RunwayInput{
		Start:       units(100),
		Horizon:     horizon,
		Consumption: consumption,
	})

	wantBalances := []float64{70, 40, 10, -20, -50}
	if len(result.Days) != len(wantBalances) {
		t.Fatalf("expected %d projected days, got %d", len(wantBalances), len(result.Days))
	}
	for i, want := range wantBalances {
		if !result.Days[i].Projected.Equals(units(want)) {
			t.Errorf("day %d: expected balance %v, got %v", i, want, result.Days[i].Projected.Value)
		}
	}

	if result.RunOut == nil {
		t.Fatal("expected a run-out date")
	}
	if !result.RunOut.Equal(thursday) {
		t.Errorf("expected run-out %v, got %v", thursday, result.RunOut)
	}
	if result.DaysOfInventory != 3 {
		t.Errorf("expected 3 days of inventory, got %d", result.DaysOfInventory)
	}
	if !result.TotalConsumed.Equals(units(150)) {
		t.Errorf("expected total consumed 150, got %v", result.TotalConsumed.Value)
	}
	if !result.EndBalance().Equals(units(-50)) {
		t.Errorf("expected end balance -50, got %v", result.EndBalance().Value)
	}
}

func TestProjectRunway_ReceiptLandsOnItsDate(t *testing.T) {
	// An incoming order on Wednesday lifts the balance that day and keeps
	// the part from running out inside the horizon.

	horizon := planning.BuildHorizon(monday, 5)
	consumption := planning.QuantityByDay{}
	for _, d := range horizon {
		consumption.AddOn(d.Date, units(30))
	}
	incoming := planning.QuantityByDay{}
	incoming.AddOn(wednesday, units(50))

	result := planning.ProjectRunway(planning.RunwayInput{
		Start:       units(100),
		Horizon:     horizon,
		Consumption: consumption,
		Incoming:    incoming,
	})

	if result.RunOut != nil {
		t.Errorf("expected no run-out, got %v", result.RunOut)
	}
	if !result.BeyondHorizon() {
		t.Error("expected beyond-horizon projection")
	}
	if result.DaysOfInventory != 5 {
		t.Errorf("expected horizon length 5 as days of inventory, got %d", result.DaysOfInventory)
	}
	if !result.TotalReceived.Equals(units(50)) {
		t.Errorf("expected total received 50, got %v", result.TotalReceived.Value)
	}
	// Ends at exactly zero: depleted but never negative.
	if !result.EndBalance().IsZero() {
		t.Errorf("expected end balance 0, got %v", result.EndBalance().Value)
	}
}

func TestProjectRunway_RunOutIsFirstNegative(t *testing.T) {
	// GIVEN: A shortage on day one and a large receipt on day three
	// THEN: The run-out date stays on day one even though the balance recovers

	horizon := planning.BuildHorizon(monday, 3)
	consumption := planning.QuantityByDay{}
	consumption.AddOn(monday, units(20))
	incoming := planning.QuantityByDay{}
	incoming.AddOn(wednesday, units(100))

	result := planning.ProjectRunway(planning.RunwayInput{
		Start:       units(10),
		Horizon:     horizon,
		Consumption: consumption,
		Incoming:    incoming,
	})

	if result.RunOut == nil {
		t.Fatal("expected a run-out date")
	}
	if !result.RunOut.Equal(monday) {
		t.Errorf("expected run-out on %v, got %v", monday, result.RunOut)
	}
	if result.DaysOfInventory != 0 {
		t.Errorf("expected 0 days of inventory, got %d", result.DaysOfInventory)
	}
	if !result.EndBalance().Equals(units(90)) {
		t.Errorf("expected recovered end balance 90, got %v", result.EndBalance().Value)
	}
}

func TestProjectRunway_NegativeStartRunsOutImmediately(t *testing.T) {
	result := planning.ProjectRunway(planning.RunwayInput{
		Start:   units(-5),
		Horizon: planning.BuildHorizon(monday, 3),
	})

	if result.RunOut == nil || !result.RunOut.Equal(monday) {
		t.Errorf("expected run-out on the first day, got %v", result.RunOut)
	}
}

func TestProjectRunway_EmptyHorizon(t *testing.T) {
	result := planning.ProjectRunway(planning.RunwayInput{Start: units(50)})

	if len(result.Days) != 0 {
		t.Errorf("expected no projected days, got %d", len(result.Days))
	}
	if !result.EndBalance().Equals(units(50)) {
		t.Errorf("expected end balance to fall back to start, got %v", result.EndBalance().Value)
	}
	if result.RunOut != nil {
		t.Errorf("expected no run-out, got %v", result.RunOut)
	}
}

func TestProjectRunway_Deterministic(t *testing.T) {
	// The same inputs must produce the same series, value for value.
	build := func() planning.Projection {
		horizon := planning.BuildHorizon(monday, 14)
		consumption := planning.QuantityByDay{}
		for _, d := range horizon {
			if d.Workday {
				consumption.AddOn(d.Date, planning.NewQuantity(33.33, "units"))
			}
		}
		return planning.ProjectRunway(planning.RunwayInput{
			Start:       units(250),
			Horizon:     horizon,
			Consumption: consumption,
		})
	}

	a, b := build(), build()
	if len(a.Days) != len(b.Days) {
		t.Fatalf("series lengths differ: %d vs %d", len(a.Days), len(b.Days))
	}
	for i := range a.Days {
		if !a.Days[i].Projected.Equals(b.Days[i].Projected) {
			t.Errorf("day %d differs between runs: %v vs %v",
				i, a.Days[i].Projected.Value, b.Days[i].Projected.Value)
		}
	}
}

// =============================================================================
// DEMAND GENERATORS
// =============================================================================

func TestWeeklyGoalDemand_SpreadsOverWorkdays(t *testing.T) {
	// GIVEN: A 500/week goal over Monday through Sunday
	// THEN: 100 lands on each workday, nothing on the weekend

	demand := planning.WeeklyGoalDemand{Goal: units(500)}.GenerateDemand(monday, sunday)

	for _, day := range []planning.TimePoint{monday, wednesday, friday} {
		if !demand.On(day).Equals(units(100)) {
			t.Errorf("%v: expected 100, got %v", day, demand.On(day).Value)
		}
	}
	if !demand.On(saturday).IsZero() {
		t.Errorf("Saturday should consume nothing, got %v", demand.On(saturday).Value)
	}
	if !demand.On(sunday).IsZero() {
		t.Errorf("Sunday should consume nothing, got %v", demand.On(sunday).Value)
	}
}

func TestWeeklyGoalDemand_ZeroGoalGeneratesNothing(t *testing.T) {
	demand := planning.WeeklyGoalDemand{Goal: units(0)}.GenerateDemand(monday, sunday)
	if len(demand) != 0 {
		t.Errorf("expected empty demand, got %d entries", len(demand))
	}
}

func TestFlatDemand_EveryWorkday(t *testing.T) {
	demand := planning.FlatDemand{PerWorkday: units(25)}.GenerateDemand(monday, sunday)

	if !demand.On(thursday).Equals(units(25)) {
		t.Errorf("expected 25 on Thursday, got %v", demand.On(thursday).Value)
	}
	if !demand.On(saturday).IsZero() {
		t.Errorf("expected nothing on Saturday, got %v", demand.On(saturday).Value)
	}
}

func TestMergeDemand_SumsSharedDates(t *testing.T) {
	a := planning.QuantityByDay{}
	a.AddOn(monday, units(10))
	a.AddOn(wednesday, units(5))
	b := planning.QuantityByDay{}
	b.AddOn(monday, units(7))

	merged := planning.MergeDemand(a, b)
	if !merged.On(monday).Equals(units(17)) {
		t.Errorf("expected 17 on Monday, got %v", merged.On(monday).Value)
	}
	if !merged.On(wednesday).Equals(units(5)) {
		t.Errorf("expected 5 on Wednesday, got %v", merged.On(wednesday).Value)
	}
}

// =============================================================================
// CALENDAR HORIZON TESTS
// =============================================================================

func TestBuildHorizon_TagsWeekends(t *testing.T) {
	horizon := planning.BuildHorizon(monday, 7)

	if len(horizon) != 7 {
		t.Fatalf("expected 7 days, got %d", len(horizon))
	}
	for i := 0; i < 5; i++ {
		if !horizon[i].Workday {
			t.Errorf("day %d should be a workday", i)
		}
	}
	if horizon[5].Workday || horizon[6].Workday {
		t.Error("Saturday and Sunday should not be workdays")
	}
}

func TestWorkdayHorizon_KeepsInteriorWeekend(t *testing.T) {
	// Two workdays starting Friday: Friday, the weekend, Monday.
	horizon := planning.WorkdayHorizon(friday, 2)

	if len(horizon) != 4 {
		t.Fatalf("expected Fri+Sat+Sun+Mon, got %d days", len(horizon))
	}
	if planning.CountWorkdays(horizon) != 2 {
		t.Errorf("expected 2 workdays, got %d", planning.CountWorkdays(horizon))
	}
	last := horizon[len(horizon)-1]
	if !last.Workday {
		t.Error("horizon should end on a workday")
	}
}

func TestTruncateToWorkdays_CutsAfterNthWorkday(t *testing.T) {
	horizon := planning.BuildHorizon(monday, 7)
	cut := planning.TruncateToWorkdays(horizon, 3)

	if len(cut) != 3 {
		t.Fatalf("expected 3 days, got %d", len(cut))
	}
	if !cut[len(cut)-1].Date.Equal(wednesday) {
		t.Errorf("expected to end on Wednesday, got %v", cut[len(cut)-1].Date)
	}
}

func TestTruncateToWorkdays_DropsWeekendTail(t *testing.T) {
	// Asking for more workdays than present keeps the whole horizon but
	// still trims the trailing weekend.
	horizon := planning.BuildHorizon(monday, 7)
	cut := planning.TruncateToWorkdays(horizon, 10)

	if len(cut) != 5 {
		t.Fatalf("expected 5 days after trimming the weekend, got %d", len(cut))
	}
	if !cut[len(cut)-1].Date.Equal(friday) {
		t.Errorf("expected to end on Friday, got %v", cut[len(cut)-1].Date)
	}
}

func TestTruncateToWorkdays_WeekendOnlyHorizonEmpties(t *testing.T) {
	horizon := planning.BuildHorizon(saturday, 2)
	cut := planning.TruncateToWorkdays(horizon, 1)

	if len(cut) != 0 {
		t.Errorf("expected empty horizon, got %d days", len(cut))
	}
}
