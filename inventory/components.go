package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// COMPONENT MASTER SERVICE - Part records and their starting stock
// =============================================================================

type Components struct {
	Store planning.TxStores
}

// CreateComponentInput carries a new or updated component record.
// InitialStock seeds the event log with a physical count; the on-hand
// balance is always the sum of events, never a column on the component.
type CreateComponentInput struct {
	ID            planning.ComponentID
	Name          string
	Kind          planning.ComponentKind
	Unit          planning.Unit
	Category      string
	Supplier      string
	LeadTimeDays  int
	SafetyStock   planning.Quantity
	ReorderQty    planning.Quantity
	MinimumOrder  planning.Quantity
	OrderMultiple planning.Quantity
	Thresholds    planning.UrgencyThresholds
	InitialStock  planning.Quantity
}

// Create inserts or replaces a component. A positive InitialStock writes
// one physical_count event in the same transaction.
func (s *Components) Create(ctx context.Context, in CreateComponentInput) (*planning.Component, error) {
	if strings.TrimSpace(string(in.ID)) == "" {
		return nil, &planning.ValidationError{Field: "id", Message: "component code is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, &planning.ValidationError{Field: "name", Message: "component name is required"}
	}
	if in.InitialStock.IsNegative() {
		return nil, &planning.ValidationError{
			Field:   "initial_stock",
			Message: "initial stock cannot be negative",
			Cause:   planning.ErrInvalidQuantity,
		}
	}

	kind := in.Kind
	if kind == "" {
		kind = planning.KindComponent
	}
	unit := in.Unit
	if unit == "" {
		unit = planning.UnitEach
	}

	component := planning.Component{
		ID:            planning.ComponentID(strings.TrimSpace(string(in.ID))),
		Name:          strings.TrimSpace(in.Name),
		Kind:          kind,
		Unit:          unit,
		Category:      in.Category,
		Supplier:      in.Supplier,
		LeadTimeDays:  in.LeadTimeDays,
		SafetyStock:   stampUnit(in.SafetyStock, unit),
		ReorderQty:    stampUnit(in.ReorderQty, unit),
		MinimumOrder:  stampUnit(in.MinimumOrder, unit),
		OrderMultiple: stampUnit(in.OrderMultiple, unit),
		Thresholds:    in.Thresholds,
		Active:        true,
	}

	err := s.Store.WithTx(ctx, func(stores planning.Stores) error {
		if err := stores.Components().Put(ctx, component); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}

		ledger := planning.NewStockLedger(stores.Events())
		return ledger.Append(ctx, planning.StockEvent{
			ID:        planning.EventID(uuid.NewString()),
			Component: component.ID,
			Type:      planning.EventPhysicalCount,
			Quantity:  stampUnit(in.InitialStock, unit),
			Day:       planning.Today(),
			Reason:    "Physical count: initial stock",
		})
	})
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// Get returns a component or ErrComponentNotFound.
func (s *Components) Get(ctx context.Context, id planning.ComponentID) (*planning.Component, error) {
	return s.Store.Components().Get(ctx, id)
}

// List returns components ordered by code.
func (s *Components) List(ctx context.Context, activeOnly bool) ([]planning.Component, error) {
	return s.Store.Components().List(ctx, activeOnly)
}

func stampUnit(q planning.Quantity, unit planning.Unit) planning.Quantity {
	if q.Unit == "" {
		q.Unit = unit
	}
	return q
}
