/*
Package shipping tracks weekly build goals and the daily shipments
recorded against them.

Goals are set per component and week (weeks anchor on Monday); shipments
are recorded one figure per component and day. The pace service combines
both into the floor manager's morning report: today's required output
and whether the week is still on track.
*/
package shipping

import (
	"context"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// GOAL SERVICE - Weekly build targets
// =============================================================================

type Goals struct {
	Store planning.TxStores
}

// Upsert records or replaces a component's goal for the week containing
// weekStart. Any day of the week works; the store key is the Monday.
func (s *Goals) Upsert(ctx context.Context, component planning.ComponentID, weekStart planning.TimePoint, goal planning.Quantity, notes string) (*planning.WeeklyGoal, error) {
	if goal.IsNegative() {
		return nil, &planning.ValidationError{
			Field:   "goal",
			Message: "weekly goal cannot be negative",
			Cause:   planning.ErrInvalidQuantity,
		}
	}
	if weekStart.IsZero() {
		return nil, &planning.ValidationError{
			Field:   "week_start",
			Message: "week start date is required",
			Cause:   planning.ErrInvalidDate,
		}
	}

	c, err := s.Store.Components().Get(ctx, component)
	if err != nil {
		return nil, err
	}

	qty := goal
	if qty.Unit == "" {
		qty.Unit = c.Unit
	}

	week := planning.WeekOf(weekStart)
	record := planning.WeeklyGoal{
		Component: c.ID,
		WeekStart: week.Start,
		Goal:      qty,
		Notes:     notes,
	}
	if err := s.Store.Goals().Upsert(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Week returns every goal recorded for the week containing the date.
func (s *Goals) Week(ctx context.Context, weekStart planning.TimePoint) ([]planning.WeeklyGoal, error) {
	week := planning.WeekOf(weekStart)
	return s.Store.Goals().ListWeek(ctx, week.Start)
}

// Get returns a component's goal for the week containing the date, nil
// when none is recorded.
func (s *Goals) Get(ctx context.Context, component planning.ComponentID, weekStart planning.TimePoint) (*planning.WeeklyGoal, error) {
	week := planning.WeekOf(weekStart)
	return s.Store.Goals().Get(ctx, component, week.Start)
}
