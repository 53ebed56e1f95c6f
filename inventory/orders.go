package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// ORDER BOOK SERVICE - Purchase order lifecycle outside of receiving
// =============================================================================

type Orders struct {
	Store planning.TxStores
}

// CreateOrderInput carries a new purchase order. Ordered defaults to
// today; Supplier defaults to the component's usual supplier.
type CreateOrderInput struct {
	Number    string
	Component planning.ComponentID
	Quantity  planning.Quantity
	Ordered   planning.TimePoint
	Expected  planning.TimePoint
	Supplier  string
	Notes     string
}

// OrderBook is a listing plus book-wide counts. Counts always cover the
// whole book, even when the listing is filtered.
type OrderBook struct {
	Orders []planning.PurchaseOrder
	Counts planning.OrderCounts
}

// Create validates and inserts a new pending order.
func (s *Orders) Create(ctx context.Context, in CreateOrderInput) (*planning.PurchaseOrder, error) {
	if strings.TrimSpace(in.Number) == "" {
		return nil, &planning.ValidationError{Field: "po_number", Message: "purchase order number is required"}
	}
	if !in.Quantity.IsPositive() {
		return nil, &planning.ValidationError{
			Field:   "quantity",
			Message: "ordered quantity must be positive",
			Cause:   planning.ErrInvalidQuantity,
		}
	}
	if in.Expected.IsZero() {
		return nil, &planning.ValidationError{
			Field:   "expected_date",
			Message: "expected date is required",
			Cause:   planning.ErrInvalidDate,
		}
	}

	component, err := s.Store.Components().Get(ctx, in.Component)
	if err != nil {
		return nil, err
	}

	qty := in.Quantity
	if qty.Unit == "" {
		qty.Unit = component.Unit
	}
	ordered := in.Ordered
	if ordered.IsZero() {
		ordered = planning.Today()
	}
	supplier := in.Supplier
	if supplier == "" {
		supplier = component.Supplier
	}

	po := planning.PurchaseOrder{
		ID:        planning.OrderID(uuid.NewString()),
		Number:    strings.TrimSpace(in.Number),
		Component: component.ID,
		Quantity:  qty,
		Ordered:   ordered,
		Expected:  in.Expected,
		Status:    planning.OrderPending,
		Supplier:  supplier,
		Notes:     in.Notes,
	}

	if err := s.Store.Orders().Create(ctx, po); err != nil {
		if errors.Is(err, planning.ErrDuplicateOrderNumber) {
			return nil, &planning.ConflictError{
				Order:   po.ID,
				Message: fmt.Sprintf("purchase order number %s already exists", po.Number),
				Cause:   planning.ErrDuplicateOrderNumber,
			}
		}
		return nil, err
	}
	return &po, nil
}

// Get returns one order or ErrOrderNotFound.
func (s *Orders) Get(ctx context.Context, id planning.OrderID) (*planning.PurchaseOrder, error) {
	return s.Store.Orders().Get(ctx, id)
}

// List returns matching orders with book-wide counts.
func (s *Orders) List(ctx context.Context, filter planning.OrderFilter) (*OrderBook, error) {
	orders, err := s.Store.Orders().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	all := orders
	if filter.Status != nil || filter.Component != nil {
		all, err = s.Store.Orders().List(ctx, planning.OrderFilter{})
		if err != nil {
			return nil, err
		}
	}

	return &OrderBook{Orders: orders, Counts: planning.CountOrders(all)}, nil
}

// Delete removes a pending order. Received orders keep their audit trail;
// undo the receipt first if the order really must go.
func (s *Orders) Delete(ctx context.Context, id planning.OrderID) error {
	po, err := s.Store.Orders().Get(ctx, id)
	if err != nil {
		return err
	}
	if po.IsReceived() {
		return &planning.ConflictError{
			Order:   po.ID,
			Status:  po.Status,
			Message: "cannot delete a received purchase order; undo the receipt first",
			Cause:   planning.ErrOrderNotPending,
		}
	}
	return s.Store.Orders().Delete(ctx, id)
}
