package planning

// =============================================================================
// REORDER MATH - When to order and how much
// =============================================================================

// ReorderPoint is the on-hand level that should trigger a new order:
// enough stock to cover usage through the supplier lead time, plus the
// safety stock buffer.
func ReorderPoint(leadTimeDays int, dailyUsage, safetyStock Quantity) Quantity {
	if leadTimeDays < 0 {
		leadTimeDays = 0
	}
	return dailyUsage.MulInt(leadTimeDays).Add(safetyStock)
}

// RoundToLot raises a raw need to an orderable quantity. The minimum
// order quantity is met first, then the result rounds UP to the next
// order multiple. Zero minimum or multiple skips that step.
func RoundToLot(qty, minimum, multiple Quantity) Quantity {
	out := qty
	if minimum.IsPositive() && out.LessThan(minimum) {
		out = minimum
	}
	if multiple.IsPositive() {
		lots := out.Value.Div(multiple.Value).Ceil()
		out = Quantity{Value: lots.Mul(multiple.Value), Unit: qty.Unit}
	}
	return out
}

// SuggestedOrder sizes a replenishment for a projected shortfall. The
// component's standard reorder quantity acts as a floor so a tiny
// shortfall still orders an economic batch. No shortfall, no order.
func SuggestedOrder(shortfall, reorderQty, minimum, multiple Quantity) Quantity {
	if !shortfall.IsPositive() {
		return shortfall.Zero()
	}
	return RoundToLot(shortfall.Max(reorderQty), minimum, multiple)
}
