/*
ledger.go - Validated stock event log

PURPOSE:
  StockLedger is the write path for stock events. The raw EventStore will
  persist anything; the ledger enforces the domain rules first:

  1. Events carry a known type, a non-zero quantity, and a day.
  2. A purchase order has AT MOST ONE live receipt. Appending a second
     po_receipt for the same order fails with DuplicateReceiptError.
     An undo event releases the slot so the order can be received again.

WHY APPEND-ONLY:
  On-hand stock is the running sum of events, nothing else. There is no
  separate balance column to drift out of sync, and every stock level can
  be explained by replaying history. Mistakes are corrected by appending
  a compensating event, never by editing.

EXAMPLE FLOW:
  1. Cycle count seeds stock:        physical_count +500
  2. PO-2026-001 arrives:            po_receipt     +250
  3. Receipt was against wrong PO:   po_receipt_undo -250
  4. Receive against the right PO:   po_receipt     +250

  Balance: 750. Every step still visible.

SEE ALSO:
  - store.go: EventStore persistence contract
  - inventory: The receiving service driving this ledger
*/
package planning

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK LEDGER
// =============================================================================

type StockLedger struct {
	Events EventStore
}

func NewStockLedger(events EventStore) *StockLedger {
	return &StockLedger{Events: events}
}

// Append validates and persists one event.
func (l *StockLedger) Append(ctx context.Context, ev StockEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if ev.ID != "" {
		exists, err := l.Events.Exists(ctx, ev.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEvent
		}
	}
	if ev.Type == EventPOReceipt && ev.Reference != "" {
		if err := l.checkReceiptSlot(ctx, ev.Reference); err != nil {
			return err
		}
	}
	return l.Events.Append(ctx, ev)
}

// AppendBatch validates and persists events atomically.
func (l *StockLedger) AppendBatch(ctx context.Context, evs []StockEvent) error {
	seenReceipts := map[OrderID]bool{}
	for _, ev := range evs {
		if err := validateEvent(ev); err != nil {
			return err
		}
		if ev.ID != "" {
			exists, err := l.Events.Exists(ctx, ev.ID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateEvent
			}
		}
		if ev.Type == EventPOReceipt && ev.Reference != "" {
			if seenReceipts[ev.Reference] {
				return &DuplicateReceiptError{Order: ev.Reference}
			}
			seenReceipts[ev.Reference] = true
			if err := l.checkReceiptSlot(ctx, ev.Reference); err != nil {
				return err
			}
		}
	}
	return l.Events.AppendBatch(ctx, evs)
}

// checkReceiptSlot fails when the order already has a receipt that no
// undo has released.
func (l *StockLedger) checkReceiptSlot(ctx context.Context, order OrderID) error {
	prior, err := l.Events.ByReference(ctx, order)
	if err != nil {
		return err
	}
	live := 0
	var lastReceipt EventID
	for _, p := range prior {
		switch p.Type {
		case EventPOReceipt:
			live++
			lastReceipt = p.ID
		case EventPOReceiptUndo:
			live--
		}
	}
	if live > 0 {
		return &DuplicateReceiptError{Order: order, ExistingEvent: lastReceipt}
	}
	return nil
}

func validateEvent(ev StockEvent) error {
	if ev.Component == "" {
		return &ValidationError{Field: "component", Message: "component is required"}
	}
	if !KnownEventType(ev.Type) {
		return &ValidationError{Field: "type", Message: string(ev.Type), Cause: ErrUnknownEventType}
	}
	if ev.Quantity.IsZero() {
		return &ValidationError{Field: "quantity", Message: "event quantity cannot be zero", Cause: ErrInvalidQuantity}
	}
	if ev.Day.IsZero() {
		return &ValidationError{Field: "day", Message: "event day is required", Cause: ErrInvalidDate}
	}
	return nil
}

// =============================================================================
// BALANCES - Derived from events, never stored
// =============================================================================

// CurrentBalance sums every event for the component.
func (l *StockLedger) CurrentBalance(ctx context.Context, component ComponentID, unit Unit) (Quantity, error) {
	evs, err := l.Events.Load(ctx, component)
	if err != nil {
		return Quantity{}, err
	}
	balance := Quantity{Value: decimal.Zero, Unit: unit}
	for _, ev := range evs {
		balance = balance.Add(ev.Quantity)
	}
	return balance, nil
}

// BalanceOn sums events through the given day, inclusive.
func (l *StockLedger) BalanceOn(ctx context.Context, component ComponentID, day TimePoint, unit Unit) (Quantity, error) {
	evs, err := l.Events.Load(ctx, component)
	if err != nil {
		return Quantity{}, err
	}
	balance := Quantity{Value: decimal.Zero, Unit: unit}
	for _, ev := range evs {
		if ev.Day.After(day) {
			break
		}
		balance = balance.Add(ev.Quantity)
	}
	return balance, nil
}
