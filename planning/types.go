/*
Package planning provides the core material planning engine.

PURPOSE:
  This package contains the domain types and algorithms for projecting
  inventory forward through time. Whether the part is a finished good, a
  sub-assembly, or a raw material, the same engine handles stock events,
  runway projection, urgency classification, and history reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: A stock amount with a unit (e.g., 250 EA, 12.5 kg)
  - StockEvent: An immutable ledger entry recording an on-hand change
  - Component: The master record for a planned part
  - Component/Order/Event IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Stock events are never modified, only reversed
  2. Precision: Uses decimal.Decimal so projections are bit-identical
  3. Type Safety: Strong typing for IDs prevents mixing component/order IDs
  4. Auditability: Every event carries a reason and an order reference

USAGE:
  qty := planning.NewQuantity(250, planning.UnitEach)
  ev := planning.StockEvent{
      Component: "RM-400",
      Type:      planning.EventPOReceipt,
      Quantity:  qty,
      Day:       planning.NewTimePoint(2026, time.March, 9),
  }

SEE ALSO:
  - runway.go: Day-by-day inventory projection
  - urgency.go: Days-of-inventory classification
  - ledger.go: Stock event persistence rules
*/
package planning

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY - Stock amount with unit
// =============================================================================

type Quantity struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitEach     Unit = "EA"
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "L"
	UnitMeter    Unit = "m"
)

func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewQuantityFromInt(value int, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewQuantityFromDecimal(value decimal.Decimal, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (q Quantity) with(v decimal.Decimal) Quantity { return Quantity{Value: v, Unit: q.Unit} }

func (q Quantity) Zero() Quantity                 { return q.with(decimal.Zero) }
func (q Quantity) Add(b Quantity) Quantity        { return q.with(q.Value.Add(b.Value)) }
func (q Quantity) Sub(b Quantity) Quantity        { return q.with(q.Value.Sub(b.Value)) }
func (q Quantity) Mul(s decimal.Decimal) Quantity { return q.with(q.Value.Mul(s)) }
func (q Quantity) MulInt(n int) Quantity          { return q.Mul(decimal.NewFromInt(int64(n))) }
func (q Quantity) Neg() Quantity                  { return q.with(q.Value.Neg()) }
func (q Quantity) Abs() Quantity                  { return q.with(q.Value.Abs()) }
func (q Quantity) Round(places int32) Quantity    { return q.with(q.Value.Round(places)) }

func (q Quantity) IsNegative() bool { return q.Value.IsNegative() }
func (q Quantity) IsZero() bool     { return q.Value.IsZero() }
func (q Quantity) IsPositive() bool { return q.Value.IsPositive() }

func (q Quantity) GreaterThan(b Quantity) bool        { return q.Value.GreaterThan(b.Value) }
func (q Quantity) LessThan(b Quantity) bool           { return q.Value.LessThan(b.Value) }
func (q Quantity) GreaterThanOrEqual(b Quantity) bool { return q.Value.GreaterThanOrEqual(b.Value) }
func (q Quantity) LessThanOrEqual(b Quantity) bool    { return q.Value.LessThanOrEqual(b.Value) }
func (q Quantity) Equals(b Quantity) bool             { return q.Value.Equal(b.Value) }

func (q Quantity) Min(b Quantity) Quantity {
	if q.LessThan(b) {
		return q
	}
	return b
}

func (q Quantity) Max(b Quantity) Quantity {
	if q.GreaterThan(b) {
		return q
	}
	return b
}

func (q Quantity) Float64() float64 { f, _ := q.Value.Float64(); return f }

// DivInt divides by a whole number of days, rounding to two decimal places
// so that daily targets are identical across runs. Division by zero returns
// a zero quantity; callers treat "no days left" as "nothing due per day".
func (q Quantity) DivInt(n int) Quantity {
	if n == 0 {
		return q.Zero()
	}
	return Quantity{Value: q.Value.DivRound(decimal.NewFromInt(int64(n)), 2), Unit: q.Unit}
}

func (q Quantity) String() string { return q.Value.String() + " " + string(q.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ComponentID is the part code, e.g. "FG-100" or "RM-400". Codes are the
// primary key of the component master and appear in every report row.
type ComponentID string

type OrderID string
type EventID string

// =============================================================================
// COMPONENT - Master record for a planned part
// =============================================================================

type ComponentKind string

const (
	KindFinishedGood ComponentKind = "finished_good"
	KindSubAssembly  ComponentKind = "sub_assembly"
	KindComponent    ComponentKind = "component"
	KindRawMaterial  ComponentKind = "raw_material"
)

type Component struct {
	ID       ComponentID
	Name     string
	Kind     ComponentKind
	Unit     Unit
	Category string
	Supplier string

	// Replenishment parameters
	LeadTimeDays  int
	SafetyStock   Quantity
	ReorderQty    Quantity
	MinimumOrder  Quantity
	OrderMultiple Quantity

	// Per-component urgency thresholds. Zero values fall back to the
	// profile defaults (see urgency.go).
	Thresholds UrgencyThresholds

	Active bool
}

// =============================================================================
// STOCK EVENT - Atomic change to on-hand inventory
// =============================================================================

type EventType string

const (
	EventPOReceipt             EventType = "po_receipt"
	EventPOReceiptUndo         EventType = "po_receipt_undo"
	EventProductionOutput      EventType = "production_output"
	EventProductionConsumption EventType = "production_consumption"
	EventAdjustment            EventType = "adjustment"
	EventPhysicalCount         EventType = "physical_count"
	EventScrap                 EventType = "scrap"
)

// KnownEventType reports whether t is one of the closed event type set.
func KnownEventType(t EventType) bool {
	switch t {
	case EventPOReceipt, EventPOReceiptUndo, EventProductionOutput,
		EventProductionConsumption, EventAdjustment, EventPhysicalCount, EventScrap:
		return true
	}
	return false
}

// ParseEventType derives an event type from a free-text adjustment reason.
// Order matters: "PO Receipt Undo" contains "PO Receipt", so the undo check
// runs first. Unrecognized reasons classify as a plain adjustment.
func ParseEventType(reason string) EventType {
	switch {
	case strings.Contains(reason, "PO Receipt Undo"):
		return EventPOReceiptUndo
	case strings.Contains(reason, "PO Receipt"):
		return EventPOReceipt
	case strings.Contains(reason, "Production Output"):
		return EventProductionOutput
	case strings.Contains(reason, "Production Consumption"):
		return EventProductionConsumption
	case strings.Contains(reason, "Physical count"):
		return EventPhysicalCount
	case strings.Contains(reason, "Scrap"):
		return EventScrap
	default:
		return EventAdjustment
	}
}

// StockEvent records one signed change to a component's on-hand balance.
// Receipts and production output are positive; consumption and scrap are
// negative. Events referencing a purchase order carry its ID so receipt
// uniqueness can be enforced.
type StockEvent struct {
	ID        EventID
	Component ComponentID
	Type      EventType
	Quantity  Quantity
	Day       TimePoint
	Reference OrderID
	Reason    string
	Notes     string

	RecordedAt time.Time
	RecordedBy string
}
