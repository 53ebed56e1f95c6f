package planning

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PLANNING PROFILE - Site-wide knobs
// =============================================================================

// PlanningProfile carries the site-wide planning settings. Components can
// override the urgency thresholds individually; everything else applies
// across the board.
type PlanningProfile struct {
	Name string

	// HorizonDays is the projection window length in calendar days.
	HorizonDays int

	// DefaultThresholds apply to components without their own.
	DefaultThresholds UrgencyThresholds

	// CloseTolerance is the fraction of a daily goal that still counts as
	// "close" on the pace report.
	CloseTolerance decimal.Decimal

	// RecentLimit caps the global activity feed.
	RecentLimit int

	// StagnantAfter is the dead-stock cutoff in days.
	StagnantAfter int
}

const (
	DefaultHorizonDays = 28
	DefaultRecentLimit = 20
)

// DefaultProfile returns the settings a site starts with.
func DefaultProfile() PlanningProfile {
	return PlanningProfile{
		Name:              "default",
		HorizonDays:       DefaultHorizonDays,
		DefaultThresholds: UrgencyThresholds{}.OrDefaults(),
		CloseTolerance:    DefaultCloseTolerance,
		RecentLimit:       DefaultRecentLimit,
		StagnantAfter:     DefaultStagnantAfter,
	}
}

// Normalized fills zero fields with defaults so a partial profile still
// plans sensibly.
func (p PlanningProfile) Normalized() PlanningProfile {
	out := p
	if out.Name == "" {
		out.Name = "default"
	}
	if out.HorizonDays == 0 {
		out.HorizonDays = DefaultHorizonDays
	}
	out.DefaultThresholds = out.DefaultThresholds.OrDefaults()
	if out.CloseTolerance.IsZero() {
		out.CloseTolerance = DefaultCloseTolerance
	}
	if out.RecentLimit == 0 {
		out.RecentLimit = DefaultRecentLimit
	}
	if out.StagnantAfter == 0 {
		out.StagnantAfter = DefaultStagnantAfter
	}
	return out
}

// Validate rejects settings that cannot plan at all.
func (p PlanningProfile) Validate() error {
	if p.HorizonDays < 0 {
		return &ValidationError{Field: "horizon_days", Message: "horizon cannot be negative", Cause: ErrInvalidQuantity}
	}
	if p.CloseTolerance.IsNegative() || p.CloseTolerance.GreaterThan(decimal.NewFromInt(1)) {
		return &ValidationError{Field: "close_tolerance", Message: "tolerance must be between 0 and 1", Cause: ErrInvalidQuantity}
	}
	if p.RecentLimit < 0 {
		return &ValidationError{Field: "recent_limit", Message: "limit cannot be negative", Cause: ErrInvalidQuantity}
	}
	if p.StagnantAfter < 0 {
		return &ValidationError{Field: "stagnant_after", Message: "cutoff cannot be negative", Cause: ErrInvalidQuantity}
	}
	return nil
}
