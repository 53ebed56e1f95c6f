/*
shipments.go - Daily shipment figures and the stock movements behind them

RECORDING MODEL:
  One figure per component and day; recording again REPLACES the day's
  figure, it never adds to it. The stock ledger stays consistent because
  each recording appends events for the DELTA against the previous
  figure: first record of 100 writes +100 output, correcting it to 120
  writes +20 more, correcting down to 80 writes -40.

STOCK EFFECTS (per delta d):
  production_output      +d          on the built component
  production_consumption -d*per      on each direct BOM child

  All effects land in one transaction with the shipment row itself.
*/
package shipping

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// SHIPMENT SERVICE - Daily figures with BOM-driven consumption
// =============================================================================

type Shipments struct {
	Store planning.TxStores
}

// Record sets the day's shipped figure for a component and appends the
// matching production events.
func (s *Shipments) Record(ctx context.Context, component planning.ComponentID, day planning.TimePoint, qty planning.Quantity, notes string) (*planning.ShipmentRecord, error) {
	if qty.IsNegative() {
		return nil, &planning.ValidationError{
			Field:   "quantity",
			Message: "shipped quantity cannot be negative",
			Cause:   planning.ErrInvalidQuantity,
		}
	}
	if day.IsZero() {
		return nil, &planning.ValidationError{
			Field:   "date",
			Message: "shipment date is required",
			Cause:   planning.ErrInvalidDate,
		}
	}

	var record *planning.ShipmentRecord
	err := s.Store.WithTx(ctx, func(stores planning.Stores) error {
		c, err := stores.Components().Get(ctx, component)
		if err != nil {
			return err
		}

		figure := qty
		if figure.Unit == "" {
			figure.Unit = c.Unit
		}

		previous, err := stores.Shipments().OnDay(ctx, c.ID, day)
		if err != nil {
			return err
		}
		prevQty := figure.Zero()
		if previous != nil {
			prevQty = previous.Quantity
		}
		delta := figure.Sub(prevQty)

		rec := planning.ShipmentRecord{
			Component: c.ID,
			Day:       day,
			Quantity:  figure,
			Notes:     notes,
		}
		if err := stores.Shipments().Record(ctx, rec); err != nil {
			return err
		}
		record = &rec

		// Same figure recorded twice: nothing moved.
		if delta.IsZero() {
			return nil
		}

		ledger := planning.NewStockLedger(stores.Events())
		if err := ledger.Append(ctx, planning.StockEvent{
			ID:        planning.EventID(uuid.NewString()),
			Component: c.ID,
			Type:      planning.EventProductionOutput,
			Quantity:  delta,
			Day:       day,
			Reason:    fmt.Sprintf("Production Output: %s", c.ID),
		}); err != nil {
			return err
		}

		lines, err := stores.BOM().ListByParent(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			child, err := stores.Components().Get(ctx, line.Component)
			if err != nil {
				return err
			}
			consumed := planning.Quantity{
				Value: delta.Value.Mul(line.QuantityPer),
				Unit:  child.Unit,
			}
			if err := ledger.Append(ctx, planning.StockEvent{
				ID:        planning.EventID(uuid.NewString()),
				Component: child.ID,
				Type:      planning.EventProductionConsumption,
				Quantity:  consumed.Neg(),
				Day:       day,
				Reason:    fmt.Sprintf("Production Consumption: %s", c.ID),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// OnDay returns the day's figure, nil when nothing was shipped.
func (s *Shipments) OnDay(ctx context.Context, component planning.ComponentID, day planning.TimePoint) (*planning.ShipmentRecord, error) {
	return s.Store.Shipments().OnDay(ctx, component, day)
}
