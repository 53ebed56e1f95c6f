/*
pace.go - Weekly shipping pace tracking

PURPOSE:
  Answers the floor manager's two morning questions: how much do we need
  to build TODAY to hit this week's goal, and are we on pace for the week?

WEEK SHAPE:
  Weeks run Monday through Sunday but goals are earned Monday through
  Friday. Monday has 5 workdays remaining, Friday has 1. Saturday and
  Sunday report a zero daily goal and a "weekend" daily status; the week
  status on a weekend is simply complete or behind, nothing else, because
  there are no workdays left to catch up in.

DAILY GOAL:
  The daily goal redistributes the remaining work over the remaining
  workdays. Ship ahead on Monday and Tuesday's goal shrinks; fall behind
  and it grows. remaining = max(0, goal - shipped before today), then
  daily goal = remaining / workdays remaining.

STATUS RULES:
  Total >= goal makes both statuses "complete" and nothing else matters.
  Otherwise the daily status compares today's output against today's
  goal: met is "complete", within the close tolerance is "close" (the
  default tolerance is 0.8, i.e. at least 80% of today's goal), under
  that is "behind". The week status is "on_pace" while today's goal is
  met, or while the remaining work after today still fits into the
  remaining days at the original goal/5 run rate. A Friday that ends
  short is "behind"; there is no day left to fix it.

SEE ALSO:
  - period.go: WeekOf anchors the Monday week
  - profile.go: Where the close tolerance is configured
*/
package planning

import "github.com/shopspring/decimal"

// DefaultCloseTolerance is the fraction of today's goal that still counts
// as "close". 0.8 means at least 80 percent shipped.
var DefaultCloseTolerance = decimal.NewFromFloat(0.8)

const workdaysPerWeek = 5

// =============================================================================
// STATUSES
// =============================================================================

type WeekStatus string

const (
	WeekComplete WeekStatus = "complete"
	WeekOnPace   WeekStatus = "on_pace"
	WeekBehind   WeekStatus = "behind"
)

type DayStatus string

const (
	DayComplete DayStatus = "complete"
	DayClose    DayStatus = "close"
	DayBehind   DayStatus = "behind"
	DayWeekend  DayStatus = "weekend"
)

// =============================================================================
// PACE TRACKING
// =============================================================================

type PaceInput struct {
	Goal         Quantity
	ShippedTotal Quantity // week to date, today included
	ShippedToday Quantity
	Today        TimePoint

	// CloseTolerance overrides the "close" fraction. Zero means the default.
	CloseTolerance decimal.Decimal
}

type PaceReport struct {
	Week     Period
	Goal     Quantity
	Shipped  Quantity
	Progress decimal.Decimal // percent of goal, one decimal place
	Variance Quantity        // shipped minus goal
	Status   WeekStatus

	DailyGoalToday    Quantity
	TodayShipped      Quantity
	ShippedBefore     Quantity
	DailyStatus       DayStatus
	WorkdaysRemaining int
}

// TrackPace computes the pace report for one component's week.
func TrackPace(in PaceInput) PaceReport {
	tol := in.CloseTolerance
	if tol.IsZero() {
		tol = DefaultCloseTolerance
	}

	report := PaceReport{
		Week:          WeekOf(in.Today),
		Goal:          in.Goal,
		Shipped:       in.ShippedTotal,
		Progress:      progressPercent(in.ShippedTotal, in.Goal),
		Variance:      in.ShippedTotal.Sub(in.Goal),
		TodayShipped:  in.ShippedToday,
		ShippedBefore: in.ShippedTotal.Sub(in.ShippedToday),
	}

	goalMet := in.ShippedTotal.GreaterThanOrEqual(in.Goal)

	if in.Today.IsWeekend() {
		report.WorkdaysRemaining = workdaysPerWeek
		report.DailyGoalToday = in.Goal.Zero()
		report.DailyStatus = DayWeekend
		if goalMet {
			report.Status = WeekComplete
		} else {
			report.Status = WeekBehind
		}
		return report
	}

	report.WorkdaysRemaining = workdaysPerWeek - in.Today.WorkweekIndex()
	remaining := in.Goal.Sub(report.ShippedBefore).Max(in.Goal.Zero())
	report.DailyGoalToday = remaining.DivInt(report.WorkdaysRemaining)

	if goalMet {
		report.Status = WeekComplete
		report.DailyStatus = DayComplete
		return report
	}

	// Daily status against today's goal.
	closeFloor := report.DailyGoalToday.Mul(tol)
	switch {
	case in.ShippedToday.GreaterThanOrEqual(report.DailyGoalToday):
		report.DailyStatus = DayComplete
	case in.ShippedToday.GreaterThanOrEqual(closeFloor):
		report.DailyStatus = DayClose
	default:
		report.DailyStatus = DayBehind
	}

	// Week status: meeting today's goal keeps the week on pace. Short of
	// that, the remaining work must still fit the original run rate.
	if report.DailyStatus == DayComplete {
		report.Status = WeekOnPace
		return report
	}

	daysAfterToday := report.WorkdaysRemaining - 1
	if daysAfterToday <= 0 {
		report.Status = WeekBehind
		return report
	}

	remainingAfterToday := in.Goal.Sub(in.ShippedTotal).Max(in.Goal.Zero())
	neededPerDay := remainingAfterToday.DivInt(daysAfterToday)
	originalTarget := in.Goal.DivInt(workdaysPerWeek)
	if neededPerDay.LessThanOrEqual(originalTarget) {
		report.Status = WeekOnPace
	} else {
		report.Status = WeekBehind
	}
	return report
}

// progressPercent is shipped over goal as a percentage rounded to one
// decimal place. A zero or negative goal reports zero progress rather
// than dividing by it.
func progressPercent(shipped, goal Quantity) decimal.Decimal {
	if !goal.IsPositive() {
		return decimal.Zero
	}
	return shipped.Value.Div(goal.Value).Mul(decimal.NewFromInt(100)).Round(1)
}
