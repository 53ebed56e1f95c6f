/*
receiving.go - Purchase order receiving with exactly-once guarantees

PURPOSE:
  Receiving a purchase order is the one operation in the system where a
  lifecycle change and a stock movement must land together. The critical
  invariant: a purchase order adjusts on-hand inventory EXACTLY ONCE no
  matter how many times the receive button is pressed.

INVARIANT:
  One live po_receipt event per purchase order.

  "Live" means not reversed: an undone receipt may be received again,
  which is why the check counts receipts minus undos instead of
  forbidding a second receipt forever.

THREE EFFECTS, ONE TRANSACTION:
  1. Order status flips pending -> received (with date and quantity)
  2. One po_receipt event lands on the stock ledger
  3. The on-hand balance rises by exactly the received quantity

  If ANY step fails, ALL changes are rolled back.

CONCURRENCY:
  WithTx holds the store's write lock, so duplicate submissions are
  serialized. The first one in flips the status; every later attempt
  sees a received order and gets a ConflictError. The ledger's
  net-receipt check backstops the status guard.

UNDO:
  Receipts are reversed by appending a compensating po_receipt_undo
  event, never by deleting. Undo refuses to run when the stock has
  already been consumed, because reversal would drive the balance
  negative.

SEE ALSO:
  - planning/ledger.go: The net-receipt check
  - planning/store.go: WithTx semantics
*/
package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// RECEIVING SERVICE - Handles the receipt lifecycle with transactional guarantees
// =============================================================================

type Receiving struct {
	Store planning.TxStores
}

// ReceiveRequest carries the receipt details. Quantity must be positive;
// Day is the date the goods physically arrived.
type ReceiveRequest struct {
	Quantity planning.Quantity
	Day      planning.TimePoint
	Notes    string
}

// Receipt is the outcome of a receive or undo: the updated order and the
// component's balance after the movement.
type Receipt struct {
	Order      planning.PurchaseOrder
	NewBalance planning.Quantity
}

// =============================================================================
// RECEIVE - The critical transactional operation
// =============================================================================

// Receive marks a pending purchase order as received and adjusts stock.
// Validation runs before the transaction opens; nothing is written unless
// the request itself is sound.
func (rs *Receiving) Receive(ctx context.Context, orderID planning.OrderID, req ReceiveRequest) (*Receipt, error) {
	if !req.Quantity.IsPositive() {
		return nil, &planning.ValidationError{
			Field:   "quantity",
			Message: "received quantity must be positive",
			Cause:   planning.ErrInvalidQuantity,
		}
	}
	if req.Day.IsZero() {
		return nil, &planning.ValidationError{
			Field:   "received_date",
			Message: "receipt date is required",
			Cause:   planning.ErrInvalidDate,
		}
	}

	var receipt *Receipt
	err := rs.Store.WithTx(ctx, func(stores planning.Stores) error {
		po, err := stores.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}

		// Status guard: only a pending order can be received. Duplicate
		// submissions land here after the first one wins.
		if !po.IsPending() {
			msg := "purchase order is not pending"
			if po.IsReceived() {
				msg = "purchase order already received"
			}
			return &planning.ConflictError{
				Order:   po.ID,
				Status:  po.Status,
				Message: msg,
				Cause:   planning.ErrOrderNotPending,
			}
		}

		qty := req.Quantity
		if qty.Unit == "" {
			qty.Unit = po.Quantity.Unit
		}

		ledger := planning.NewStockLedger(stores.Events())
		previous, err := ledger.CurrentBalance(ctx, po.Component, qty.Unit)
		if err != nil {
			return err
		}
		newBalance := previous.Add(qty)

		// Exactly one stock movement. The ledger refuses a second live
		// receipt for the same order.
		event := planning.StockEvent{
			ID:        planning.EventID(uuid.NewString()),
			Component: po.Component,
			Type:      planning.EventPOReceipt,
			Quantity:  qty,
			Day:       req.Day,
			Reference: po.ID,
			Reason:    fmt.Sprintf("PO Receipt: %s", po.Number),
			Notes:     fmt.Sprintf("Previous: %s, New: %s", previous.Value.String(), newBalance.Value.String()),
		}
		if err := ledger.Append(ctx, event); err != nil {
			return err
		}

		day := req.Day
		po.Status = planning.OrderReceived
		po.ReceivedOn = &day
		po.ReceivedQty = &qty
		if req.Notes != "" {
			po.Notes = appendNote(po.Notes, "Received: "+req.Notes)
		}
		if err := stores.Orders().Update(ctx, *po); err != nil {
			return err
		}

		receipt = &Receipt{Order: *po, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// =============================================================================
// UNDO RECEIPT - Compensating reversal, never a delete
// =============================================================================

// Undo reverses a received order: appends a negative po_receipt_undo
// event, restores the order to pending, and clears the received fields.
// The order can then be received again.
func (rs *Receiving) Undo(ctx context.Context, orderID planning.OrderID) (*Receipt, error) {
	var receipt *Receipt
	err := rs.Store.WithTx(ctx, func(stores planning.Stores) error {
		po, err := stores.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !po.IsReceived() || po.ReceivedQty == nil || !po.ReceivedQty.IsPositive() {
			return &planning.ConflictError{
				Order:   po.ID,
				Status:  po.Status,
				Message: "purchase order has not been received",
			}
		}

		ledger := planning.NewStockLedger(stores.Events())
		previous, err := ledger.CurrentBalance(ctx, po.Component, po.ReceivedQty.Unit)
		if err != nil {
			return err
		}

		// The received stock may already be consumed. Reversal must not
		// drive the balance negative.
		if previous.Sub(*po.ReceivedQty).IsNegative() {
			return &planning.InsufficientStockError{
				Component: po.Component,
				Available: previous,
				Requested: *po.ReceivedQty,
			}
		}
		newBalance := previous.Sub(*po.ReceivedQty)

		event := planning.StockEvent{
			ID:        planning.EventID(uuid.NewString()),
			Component: po.Component,
			Type:      planning.EventPOReceiptUndo,
			Quantity:  po.ReceivedQty.Neg(),
			Day:       planning.Today(),
			Reference: po.ID,
			Reason:    fmt.Sprintf("PO Receipt Undo: %s", po.Number),
			Notes:     fmt.Sprintf("Previous: %s, New: %s", previous.Value.String(), newBalance.Value.String()),
		}
		if err := ledger.Append(ctx, event); err != nil {
			return err
		}

		receivedOn := "unknown date"
		if po.ReceivedOn != nil {
			receivedOn = po.ReceivedOn.String()
		}
		po.Notes = appendNote(po.Notes, fmt.Sprintf("[UNDONE] Receipt from %s of %s units was reversed",
			receivedOn, po.ReceivedQty.Value.String()))
		po.Status = planning.OrderPending
		po.ReceivedOn = nil
		po.ReceivedQty = nil
		if err := stores.Orders().Update(ctx, *po); err != nil {
			return err
		}

		receipt = &Receipt{Order: *po, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
