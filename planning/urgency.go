/*
urgency.go - Days-of-inventory classification

PURPOSE:
  Turns a projection result into an attention tier for the planning board.
  The tier answers one question for a buyer scanning two hundred parts:
  which ones do I deal with today?

TIERS, IN CLASSIFICATION ORDER:
  stagnant: Nothing consumes this part and it is not close to running out.
            Dead stock, not a buying problem. Checked FIRST so a part with
            zero demand never shows up as comfortable cover.
  ok:       Run-out is beyond the horizon, or further out than the stagnant
            cutoff. Nothing to do.
  critical: Run-out inside the critical window. Order now.
  warning:  Run-out inside the warning window. Order this week.
  caution:  Run-out inside the caution window. Keep an eye on it.

BOUNDARIES:
  Comparisons are strict less-than. With default thresholds 7/14/30:
  6 days is critical, 7 is warning, 13 is warning, 14 is caution,
  29 is caution, 30 is ok.
*/
package planning

// =============================================================================
// THRESHOLDS
// =============================================================================

const (
	DefaultCriticalDays = 7
	DefaultWarningDays  = 14
	DefaultCautionDays  = 30

	// DefaultStagnantAfter is the cover beyond which an unconsumed part
	// counts as dead stock rather than comfortable supply.
	DefaultStagnantAfter = 90
)

// UrgencyThresholds hold the per-component day windows. Zero values fall
// back to the defaults, so a partially configured component still
// classifies sensibly.
type UrgencyThresholds struct {
	CriticalDays int
	WarningDays  int
	CautionDays  int
}

// OrDefaults returns the thresholds with zero fields replaced by defaults.
func (t UrgencyThresholds) OrDefaults() UrgencyThresholds {
	out := t
	if out.CriticalDays == 0 {
		out.CriticalDays = DefaultCriticalDays
	}
	if out.WarningDays == 0 {
		out.WarningDays = DefaultWarningDays
	}
	if out.CautionDays == 0 {
		out.CautionDays = DefaultCautionDays
	}
	return out
}

// =============================================================================
// CLASSIFIER
// =============================================================================

type Tier string

const (
	TierStagnant Tier = "stagnant"
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
	TierCaution  Tier = "caution"
	TierOK       Tier = "ok"
)

type UrgencyInput struct {
	// DaysOfInventory as reported by the runway projection.
	DaysOfInventory int

	// BeyondHorizon is true when the projection never ran out.
	BeyondHorizon bool

	// NoConsumption is true when the horizon consumed nothing at all.
	NoConsumption bool

	Thresholds UrgencyThresholds

	// StagnantAfter overrides the dead-stock cutoff. Zero means 90 days.
	StagnantAfter int
}

// ClassifyUrgency assigns the attention tier. The order of checks is part
// of the contract: stagnant wins over every cover-based tier, and a
// beyond-horizon part is ok before any threshold applies.
func ClassifyUrgency(in UrgencyInput) Tier {
	th := in.Thresholds.OrDefaults()
	stagnantAfter := in.StagnantAfter
	if stagnantAfter == 0 {
		stagnantAfter = DefaultStagnantAfter
	}

	switch {
	case in.NoConsumption && (in.BeyondHorizon || in.DaysOfInventory >= stagnantAfter):
		return TierStagnant
	case in.BeyondHorizon || in.DaysOfInventory > stagnantAfter:
		return TierOK
	case in.DaysOfInventory < th.CriticalDays:
		return TierCritical
	case in.DaysOfInventory < th.WarningDays:
		return TierWarning
	case in.DaysOfInventory < th.CautionDays:
		return TierCaution
	default:
		return TierOK
	}
}
