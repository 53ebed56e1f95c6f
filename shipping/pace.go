package shipping

import (
	"context"
	"sort"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// PACE SERVICE - Weekly progress across all goaled components
// =============================================================================

type Pace struct {
	Store   planning.TxStores
	Profile planning.PlanningProfile
}

// ComponentPace pairs a component with its pace report.
type ComponentPace struct {
	Component planning.Component
	Report    planning.PaceReport
}

// WeekPace is the floor report for one day: every goaled component's
// pace, worst progress first.
type WeekPace struct {
	Week    planning.Period
	Today   planning.TimePoint
	Reports []ComponentPace
}

// Week builds the pace report for every component with a goal this week.
func (s *Pace) Week(ctx context.Context, today planning.TimePoint) (*WeekPace, error) {
	week := planning.WeekOf(today)
	goals, err := s.Store.Goals().ListWeek(ctx, week.Start)
	if err != nil {
		return nil, err
	}

	reports := make([]ComponentPace, 0, len(goals))
	for _, goal := range goals {
		c, err := s.Store.Components().Get(ctx, goal.Component)
		if err != nil {
			return nil, err
		}
		report, err := s.track(ctx, *c, goal.Goal, week, today)
		if err != nil {
			return nil, err
		}
		reports = append(reports, ComponentPace{Component: *c, Report: report})
	}

	// Worst progress first so the morning meeting starts with the
	// component most at risk.
	sort.SliceStable(reports, func(i, j int) bool {
		pi, pj := reports[i].Report.Progress, reports[j].Report.Progress
		if pi.Equal(pj) {
			return reports[i].Component.ID < reports[j].Component.ID
		}
		return pi.LessThan(pj)
	})

	return &WeekPace{Week: week, Today: today, Reports: reports}, nil
}

// Component builds the pace report for one component. A component with
// no goal this week reports against a zero goal.
func (s *Pace) Component(ctx context.Context, id planning.ComponentID, today planning.TimePoint) (*ComponentPace, error) {
	c, err := s.Store.Components().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	week := planning.WeekOf(today)
	goal, err := s.Store.Goals().Get(ctx, c.ID, week.Start)
	if err != nil {
		return nil, err
	}
	target := planning.Quantity{Unit: c.Unit}
	if goal != nil {
		target = goal.Goal
	}

	report, err := s.track(ctx, *c, target, week, today)
	if err != nil {
		return nil, err
	}
	return &ComponentPace{Component: *c, Report: report}, nil
}

// track sums the week's daily shipment figures and runs the pace math.
func (s *Pace) track(ctx context.Context, c planning.Component, goal planning.Quantity, week planning.Period, today planning.TimePoint) (planning.PaceReport, error) {
	weekToDate := planning.Period{Start: week.Start, End: today}
	total, err := s.Store.Shipments().TotalInWindow(ctx, c.ID, weekToDate)
	if err != nil {
		return planning.PaceReport{}, err
	}
	if total.Unit == "" {
		total.Unit = c.Unit
	}

	todayShipped := total.Zero()
	if rec, err := s.Store.Shipments().OnDay(ctx, c.ID, today); err != nil {
		return planning.PaceReport{}, err
	} else if rec != nil {
		todayShipped = rec.Quantity
	}

	return planning.TrackPace(planning.PaceInput{
		Goal:           goal,
		ShippedTotal:   total,
		ShippedToday:   todayShipped,
		Today:          today,
		CloseTolerance: s.Profile.Normalized().CloseTolerance,
	}), nil
}
