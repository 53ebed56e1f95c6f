package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// ADJUSTMENT SERVICE - Manual signed stock corrections
// =============================================================================

type Adjustments struct {
	Store planning.TxStores
}

// Adjustment is the outcome of a manual correction.
type Adjustment struct {
	Event      planning.StockEvent
	NewBalance planning.Quantity
}

// Apply records a signed stock change. The event type derives from the
// reason text, so "Physical count after audit" lands as a physical_count
// event while free-form reasons stay plain adjustments.
func (s *Adjustments) Apply(ctx context.Context, component planning.ComponentID, delta planning.Quantity, reason, notes string) (*Adjustment, error) {
	if delta.IsZero() {
		return nil, &planning.ValidationError{
			Field:   "quantity_change",
			Message: "adjustment cannot be zero",
			Cause:   planning.ErrInvalidQuantity,
		}
	}

	var result *Adjustment
	err := s.Store.WithTx(ctx, func(stores planning.Stores) error {
		c, err := stores.Components().Get(ctx, component)
		if err != nil {
			return err
		}

		qty := delta
		if qty.Unit == "" {
			qty.Unit = c.Unit
		}

		ledger := planning.NewStockLedger(stores.Events())
		previous, err := ledger.CurrentBalance(ctx, c.ID, qty.Unit)
		if err != nil {
			return err
		}
		newBalance := previous.Add(qty)

		eventNotes := fmt.Sprintf("Previous: %s, New: %s", previous.Value.String(), newBalance.Value.String())
		if notes != "" {
			eventNotes += ". " + notes
		}

		event := planning.StockEvent{
			ID:        planning.EventID(uuid.NewString()),
			Component: c.ID,
			Type:      planning.ParseEventType(reason),
			Quantity:  qty,
			Day:       planning.Today(),
			Reason:    reason,
			Notes:     eventNotes,
		}
		if err := ledger.Append(ctx, event); err != nil {
			return err
		}

		result = &Adjustment{Event: event, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
