/*
Package factory provides JSON to Go planning profile conversion.

PURPOSE:
  Converts JSON profile definitions into planning.PlanningProfile values.
  This enables site configuration without code changes - planners can tune
  thresholds, horizons, and tolerances in JSON, and the factory produces
  the proper Go struct.

WHY JSON?
  - Non-developers can adjust planning knobs
  - Easy integration with admin tooling
  - Version control for site configurations
  - One file per plant or production line

JSON SCHEMA:
  {
    "name": "plant-south",
    "horizon_days": 28,
    "close_tolerance": 0.8,
    "recent_limit": 20,
    "stagnant_after_days": 90,
    "thresholds": {
      "critical_days": 7,
      "warning_days": 14,
      "caution_days": 30
    }
  }

KEY FEATURES:
  - Validates JSON structure
  - Fills omitted fields with package defaults
  - Rejects settings the planner cannot run with
  - Round-trips profiles back to JSON

USAGE:
  // From a config file (empty path selects built-in defaults)
  profile, err := factory.LoadProfile("profiles/plant-south.json")

  // From raw JSON
  profile, err := factory.ParseProfile(data)

  // Use in services
  outlook := inventory.Outlook{Store: store, Profile: profile}

SEE ALSO:
  - planning/profile.go: PlanningProfile definition and defaults
  - cmd/server: -profile flag wiring
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a planning profile.
type ProfileJSON struct {
	Name              string          `json:"name"`
	HorizonDays       int             `json:"horizon_days,omitempty"`
	CloseTolerance    float64         `json:"close_tolerance,omitempty"`
	RecentLimit       int             `json:"recent_limit,omitempty"`
	StagnantAfterDays int             `json:"stagnant_after_days,omitempty"`
	Thresholds        *ThresholdsJSON `json:"thresholds,omitempty"`
}

// ThresholdsJSON represents the urgency day windows. Omitted fields fall
// through to the package defaults (7/14/30).
type ThresholdsJSON struct {
	CriticalDays int `json:"critical_days,omitempty"`
	WarningDays  int `json:"warning_days,omitempty"`
	CautionDays  int `json:"caution_days,omitempty"`
}

// =============================================================================
// PROFILE LOADING
// =============================================================================

// LoadProfile reads a profile definition from disk. An empty path selects
// the built-in defaults so the server can start without any configuration.
func LoadProfile(path string) (planning.PlanningProfile, error) {
	if path == "" {
		return planning.DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return planning.PlanningProfile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return planning.PlanningProfile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile parses a JSON document into a PlanningProfile.
func ParseProfile(data []byte) (planning.PlanningProfile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return planning.PlanningProfile{}, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return FromJSON(pj)
}

// FromJSON converts ProfileJSON to a normalized, validated PlanningProfile.
func FromJSON(pj ProfileJSON) (planning.PlanningProfile, error) {
	profile := planning.PlanningProfile{
		Name:          pj.Name,
		HorizonDays:   pj.HorizonDays,
		RecentLimit:   pj.RecentLimit,
		StagnantAfter: pj.StagnantAfterDays,
	}

	if pj.CloseTolerance != 0 {
		profile.CloseTolerance = decimal.NewFromFloat(pj.CloseTolerance)
	}

	if pj.Thresholds != nil {
		profile.DefaultThresholds = planning.UrgencyThresholds{
			CriticalDays: pj.Thresholds.CriticalDays,
			WarningDays:  pj.Thresholds.WarningDays,
			CautionDays:  pj.Thresholds.CautionDays,
		}
	}

	profile = profile.Normalized()
	if err := profile.Validate(); err != nil {
		return planning.PlanningProfile{}, err
	}
	return profile, nil
}

// ToJSON converts a PlanningProfile back to its JSON representation.
func ToJSON(p planning.PlanningProfile) ProfileJSON {
	tolerance, _ := p.CloseTolerance.Float64()
	return ProfileJSON{
		Name:              p.Name,
		HorizonDays:       p.HorizonDays,
		CloseTolerance:    tolerance,
		RecentLimit:       p.RecentLimit,
		StagnantAfterDays: p.StagnantAfter,
		Thresholds: &ThresholdsJSON{
			CriticalDays: p.DefaultThresholds.CriticalDays,
			WarningDays:  p.DefaultThresholds.WarningDays,
			CautionDays:  p.DefaultThresholds.CautionDays,
		},
	}
}
