/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Components:
    ComponentDTO, CreateComponentRequest

  Orders:
    OrderDTO, OrderBookDTO, CreateOrderRequest, ReceiveOrderRequest,
    ReceiptDTO

  Outlook:
    OutlookBoardDTO, OutlookRowDTO, ProjectedDayDTO, SnapshotDTO

  Pace:
    WeekPaceDTO, PaceDTO, GoalRequest, GoalDTO, ShipmentRequest,
    ShipmentDTO

  History:
    HistoryDTO, DailyBalanceDTO, HistorySummaryDTO, EventDTO,
    AdjustmentRequest, AdjustmentDTO

CONVENTIONS:
  Dates are "2006-01-02" strings. Quantities are JSON numbers converted
  from decimals at this boundary; internal math stays decimal.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/profile.go: ThresholdsJSON type
*/
package api

import (
	"time"

	"github.com/forge/mrp-engine/factory"
	"github.com/forge/mrp-engine/inventory"
	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/shipping"
)

// =============================================================================
// COMPONENT TYPES
// =============================================================================

// ComponentDTO represents a component in API responses.
type ComponentDTO struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Kind          string                  `json:"kind"`
	Unit          string                  `json:"unit"`
	Category      string                  `json:"category,omitempty"`
	Supplier      string                  `json:"supplier,omitempty"`
	LeadTimeDays  int                     `json:"lead_time_days"`
	SafetyStock   float64                 `json:"safety_stock"`
	ReorderQty    float64                 `json:"reorder_qty"`
	MinimumOrder  float64                 `json:"minimum_order,omitempty"`
	OrderMultiple float64                 `json:"order_multiple,omitempty"`
	Thresholds    *factory.ThresholdsJSON `json:"thresholds,omitempty"`
	Active        bool                    `json:"active"`
}

// CreateComponentRequest is the request to create a component.
type CreateComponentRequest struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Kind          string                  `json:"kind,omitempty"`
	Unit          string                  `json:"unit,omitempty"`
	Category      string                  `json:"category,omitempty"`
	Supplier      string                  `json:"supplier,omitempty"`
	LeadTimeDays  int                     `json:"lead_time_days,omitempty"`
	SafetyStock   float64                 `json:"safety_stock,omitempty"`
	ReorderQty    float64                 `json:"reorder_qty,omitempty"`
	MinimumOrder  float64                 `json:"minimum_order,omitempty"`
	OrderMultiple float64                 `json:"order_multiple,omitempty"`
	Thresholds    *factory.ThresholdsJSON `json:"thresholds,omitempty"`
	InitialStock  float64                 `json:"initial_stock,omitempty"`
}

// =============================================================================
// ORDER TYPES
// =============================================================================

// OrderDTO represents a purchase order in API responses.
type OrderDTO struct {
	ID          string   `json:"id"`
	Number      string   `json:"po_number"`
	ComponentID string   `json:"component_id"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Status      string   `json:"status"`
	OrderedOn   string   `json:"ordered_on"`
	ExpectedOn  string   `json:"expected_on"`
	ReceivedOn  *string  `json:"received_on,omitempty"`
	ReceivedQty *float64 `json:"received_qty,omitempty"`
	Supplier    string   `json:"supplier,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// OrderBookDTO wraps a listing with counts over the whole book.
type OrderBookDTO struct {
	Orders []OrderDTO     `json:"orders"`
	Counts OrderCountsDTO `json:"counts"`
}

// OrderCountsDTO tallies the order book by status.
type OrderCountsDTO struct {
	Pending  int `json:"pending"`
	Received int `json:"received"`
	All      int `json:"all"`
}

// CreateOrderRequest is the request to create a purchase order.
type CreateOrderRequest struct {
	Number      string  `json:"po_number"`
	ComponentID string  `json:"component_id"`
	Quantity    float64 `json:"quantity"`
	OrderedOn   string  `json:"ordered_on,omitempty"`
	ExpectedOn  string  `json:"expected_on"`
	Supplier    string  `json:"supplier,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// ReceiveOrderRequest is the request to receive a purchase order.
type ReceiveOrderRequest struct {
	Quantity     float64 `json:"quantity"`
	ReceivedDate string  `json:"received_date"`
	Notes        string  `json:"notes,omitempty"`
}

// ReceiptDTO is the outcome of a receive or undo.
type ReceiptDTO struct {
	Order      OrderDTO `json:"order"`
	NewBalance float64  `json:"new_balance"`
}

// =============================================================================
// OUTLOOK TYPES
// =============================================================================

// OutlookBoardDTO is the full planning board.
type OutlookBoardDTO struct {
	AsOf        string          `json:"as_of"`
	HorizonDays int             `json:"horizon_days"`
	Tiers       map[string]int  `json:"tiers"`
	Rows        []OutlookRowDTO `json:"rows"`
}

// OutlookRowDTO is one component's outlook. Days is populated only on the
// single-component endpoint; the board omits the series to stay small.
type OutlookRowDTO struct {
	ComponentID     string            `json:"component_id"`
	ComponentName   string            `json:"component_name"`
	Unit            string            `json:"unit"`
	OnHand          float64           `json:"on_hand"`
	Tier            string            `json:"tier"`
	DaysOfInventory int               `json:"days_of_inventory"`
	RunOut          *string           `json:"run_out,omitempty"`
	ProjectedEnd    float64           `json:"projected_end"`
	TotalConsumed   float64           `json:"total_consumed"`
	TotalReceived   float64           `json:"total_received"`
	ReorderPoint    float64           `json:"reorder_point"`
	NeedsOrdering   bool              `json:"needs_ordering"`
	SuggestedQty    float64           `json:"suggested_qty"`
	HasPending      bool              `json:"has_pending"`
	Overdue         []OrderDTO        `json:"overdue,omitempty"`
	DueToday        []OrderDTO        `json:"due_today,omitempty"`
	Days            []ProjectedDayDTO `json:"days,omitempty"`
}

// ProjectedDayDTO is one row of the daily projection series.
type ProjectedDayDTO struct {
	Date      string  `json:"date"`
	Workday   bool    `json:"workday"`
	Consumed  float64 `json:"consumed"`
	Received  float64 `json:"received"`
	Projected float64 `json:"projected"`
}

// SnapshotDTO represents a persisted outlook snapshot.
type SnapshotDTO struct {
	ComponentID     string  `json:"component_id"`
	AsOf            string  `json:"as_of"`
	ProjectedEnd    float64 `json:"projected_end"`
	RunOut          *string `json:"run_out,omitempty"`
	DaysOfInventory int     `json:"days_of_inventory"`
	Tier            string  `json:"tier"`
	NeedsOrdering   bool    `json:"needs_ordering"`
	SuggestedQty    float64 `json:"suggested_qty"`
	CalculatedAt    string  `json:"calculated_at"`
}

// =============================================================================
// PACE TYPES
// =============================================================================

// WeekPaceDTO is the weekly pace report across products.
type WeekPaceDTO struct {
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	Today     string    `json:"today"`
	Reports   []PaceDTO `json:"reports"`
}

// PaceDTO is one product's weekly pace.
type PaceDTO struct {
	ComponentID   string  `json:"component_id"`
	ComponentName string  `json:"component_name"`
	Unit          string  `json:"unit"`
	WeekStart     string  `json:"week_start"`
	WeekEnd       string  `json:"week_end"`
	Goal          float64 `json:"goal"`
	Shipped       float64 `json:"shipped"`
	Progress      float64 `json:"progress"`
	Variance      float64 `json:"variance"`
	Status        string  `json:"status"`

	DailyGoalToday    float64 `json:"daily_goal_today"`
	TodayShipped      float64 `json:"today_shipped"`
	ShippedBefore     float64 `json:"shipped_before"`
	DailyStatus       string  `json:"daily_status"`
	WorkdaysRemaining int     `json:"workdays_remaining"`
}

// GoalRequest is the request to set a weekly goal.
type GoalRequest struct {
	WeekStart string  `json:"week_start,omitempty"`
	Goal      float64 `json:"goal"`
	Notes     string  `json:"notes,omitempty"`
}

// GoalDTO represents a weekly goal.
type GoalDTO struct {
	ComponentID string  `json:"component_id"`
	WeekStart   string  `json:"week_start"`
	Goal        float64 `json:"goal"`
	Notes       string  `json:"notes,omitempty"`
}

// ShipmentRequest is the request to record a day's shipped count.
type ShipmentRequest struct {
	Date     string  `json:"date,omitempty"`
	Quantity float64 `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// ShipmentDTO represents one day's shipment figure.
type ShipmentDTO struct {
	ComponentID string  `json:"component_id"`
	Date        string  `json:"date"`
	Quantity    float64 `json:"quantity"`
	Notes       string  `json:"notes,omitempty"`
}

// =============================================================================
// HISTORY TYPES
// =============================================================================

// HistoryDTO is one component's reconciled window.
type HistoryDTO struct {
	ComponentID     string            `json:"component_id"`
	WindowStart     string            `json:"window_start"`
	WindowEnd       string            `json:"window_end"`
	StartingBalance float64           `json:"starting_balance"`
	CurrentBalance  float64           `json:"current_balance"`
	NetChange       float64           `json:"net_change"`
	PercentChange   float64           `json:"percent_change"`
	Daily           []DailyBalanceDTO `json:"daily"`
	CountsByType    map[string]int    `json:"counts_by_type"`
	EventCount      int               `json:"event_count"`
}

// DailyBalanceDTO is one day of reconstructed history.
type DailyBalanceDTO struct {
	Date    string  `json:"date"`
	Change  float64 `json:"change"`
	Balance float64 `json:"balance"`
}

// HistorySummaryDTO aggregates every component's window.
type HistorySummaryDTO struct {
	WindowStart  string                `json:"window_start"`
	WindowEnd    string                `json:"window_end"`
	Components   []ComponentHistoryDTO `json:"components"`
	CountsByType map[string]int        `json:"counts_by_type"`
	EventCount   int                   `json:"event_count"`
}

// ComponentHistoryDTO is one component's line in the summary.
type ComponentHistoryDTO struct {
	ComponentID     string  `json:"component_id"`
	ComponentName   string  `json:"component_name"`
	StartingBalance float64 `json:"starting_balance"`
	CurrentBalance  float64 `json:"current_balance"`
	NetChange       float64 `json:"net_change"`
	PercentChange   float64 `json:"percent_change"`
	EventCount      int     `json:"event_count"`
}

// EventDTO represents a stock event.
type EventDTO struct {
	ID          string  `json:"id"`
	ComponentID string  `json:"component_id"`
	Type        string  `json:"type"`
	Quantity    float64 `json:"quantity"`
	Date        string  `json:"date"`
	ReferenceID string  `json:"reference_id,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	RecordedAt  string  `json:"recorded_at,omitempty"`
}

// AdjustmentRequest is the request to apply a manual stock correction.
type AdjustmentRequest struct {
	QuantityChange float64 `json:"quantity_change"`
	Reason         string  `json:"reason"`
	Notes          string  `json:"notes,omitempty"`
}

// AdjustmentDTO is the outcome of a manual correction.
type AdjustmentDTO struct {
	Event      EventDTO `json:"event"`
	NewBalance float64  `json:"new_balance"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toComponentDTO(c planning.Component) ComponentDTO {
	dto := ComponentDTO{
		ID:            string(c.ID),
		Name:          c.Name,
		Kind:          string(c.Kind),
		Unit:          string(c.Unit),
		Category:      c.Category,
		Supplier:      c.Supplier,
		LeadTimeDays:  c.LeadTimeDays,
		SafetyStock:   c.SafetyStock.Float64(),
		ReorderQty:    c.ReorderQty.Float64(),
		MinimumOrder:  c.MinimumOrder.Float64(),
		OrderMultiple: c.OrderMultiple.Float64(),
		Active:        c.Active,
	}
	if c.Thresholds != (planning.UrgencyThresholds{}) {
		dto.Thresholds = &factory.ThresholdsJSON{
			CriticalDays: c.Thresholds.CriticalDays,
			WarningDays:  c.Thresholds.WarningDays,
			CautionDays:  c.Thresholds.CautionDays,
		}
	}
	return dto
}

func toOrderDTO(po planning.PurchaseOrder) OrderDTO {
	dto := OrderDTO{
		ID:          string(po.ID),
		Number:      po.Number,
		ComponentID: string(po.Component),
		Quantity:    po.Quantity.Float64(),
		Unit:        string(po.Quantity.Unit),
		Status:      string(po.Status),
		OrderedOn:   po.Ordered.String(),
		ExpectedOn:  po.Expected.String(),
		Supplier:    po.Supplier,
		Notes:       po.Notes,
	}
	if po.ReceivedOn != nil {
		s := po.ReceivedOn.String()
		dto.ReceivedOn = &s
	}
	if po.ReceivedQty != nil {
		v := po.ReceivedQty.Float64()
		dto.ReceivedQty = &v
	}
	return dto
}

func toOrderDTOs(orders []planning.PurchaseOrder) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, po := range orders {
		dtos[i] = toOrderDTO(po)
	}
	return dtos
}

func toReceiptDTO(receipt inventory.Receipt) ReceiptDTO {
	return ReceiptDTO{
		Order:      toOrderDTO(receipt.Order),
		NewBalance: receipt.NewBalance.Float64(),
	}
}

func toOutlookRowDTO(row planning.ComponentOutlook, includeDays bool) OutlookRowDTO {
	dto := OutlookRowDTO{
		ComponentID:     string(row.Component.ID),
		ComponentName:   row.Component.Name,
		Unit:            string(row.Component.Unit),
		OnHand:          row.Projection.Start.Float64(),
		Tier:            string(row.Tier),
		DaysOfInventory: row.Projection.DaysOfInventory,
		ProjectedEnd:    row.Projection.EndBalance().Float64(),
		TotalConsumed:   row.Projection.TotalConsumed.Float64(),
		TotalReceived:   row.Projection.TotalReceived.Float64(),
		ReorderPoint:    row.ReorderPoint.Float64(),
		NeedsOrdering:   row.NeedsOrdering,
		SuggestedQty:    row.SuggestedQty.Float64(),
		HasPending:      row.HasPending,
	}
	if row.Projection.RunOut != nil {
		s := row.Projection.RunOut.String()
		dto.RunOut = &s
	}
	if len(row.Overdue) > 0 {
		dto.Overdue = toOrderDTOs(row.Overdue)
	}
	if len(row.DueToday) > 0 {
		dto.DueToday = toOrderDTOs(row.DueToday)
	}
	if includeDays {
		dto.Days = make([]ProjectedDayDTO, len(row.Projection.Days))
		for i, d := range row.Projection.Days {
			dto.Days[i] = ProjectedDayDTO{
				Date:      d.Date.String(),
				Workday:   d.Workday,
				Consumed:  d.Consumed.Float64(),
				Received:  d.Received.Float64(),
				Projected: d.Projected.Float64(),
			}
		}
	}
	return dto
}

func toBoardDTO(board inventory.Board) OutlookBoardDTO {
	dto := OutlookBoardDTO{
		AsOf:        board.AsOf.String(),
		HorizonDays: board.HorizonDays,
		Tiers:       map[string]int{},
		Rows:        make([]OutlookRowDTO, len(board.Rows)),
	}
	for tier, n := range board.Tiers {
		dto.Tiers[string(tier)] = n
	}
	for i, row := range board.Rows {
		dto.Rows[i] = toOutlookRowDTO(row, false)
	}
	return dto
}

func toSnapshotDTO(snap planning.OutlookSnapshot) SnapshotDTO {
	dto := SnapshotDTO{
		ComponentID:     string(snap.Component),
		AsOf:            snap.AsOf.String(),
		ProjectedEnd:    snap.ProjectedEnd.Float64(),
		DaysOfInventory: snap.DaysOfInventory,
		Tier:            string(snap.Tier),
		NeedsOrdering:   snap.NeedsOrdering,
		SuggestedQty:    snap.SuggestedQty.Float64(),
		CalculatedAt:    snap.CalculatedAt.Format(time.RFC3339),
	}
	if snap.RunOut != nil {
		s := snap.RunOut.String()
		dto.RunOut = &s
	}
	return dto
}

func toPaceDTO(c planning.Component, report planning.PaceReport) PaceDTO {
	return PaceDTO{
		ComponentID:   string(c.ID),
		ComponentName: c.Name,
		Unit:          string(c.Unit),
		WeekStart:     report.Week.Start.String(),
		WeekEnd:       report.Week.End.String(),
		Goal:          report.Goal.Float64(),
		Shipped:       report.Shipped.Float64(),
		Progress:      report.Progress.InexactFloat64(),
		Variance:      report.Variance.Float64(),
		Status:        string(report.Status),

		DailyGoalToday:    report.DailyGoalToday.Float64(),
		TodayShipped:      report.TodayShipped.Float64(),
		ShippedBefore:     report.ShippedBefore.Float64(),
		DailyStatus:       string(report.DailyStatus),
		WorkdaysRemaining: report.WorkdaysRemaining,
	}
}

func toWeekPaceDTO(week shipping.WeekPace) WeekPaceDTO {
	dto := WeekPaceDTO{
		WeekStart: week.Week.Start.String(),
		WeekEnd:   week.Week.End.String(),
		Today:     week.Today.String(),
		Reports:   make([]PaceDTO, len(week.Reports)),
	}
	for i, r := range week.Reports {
		dto.Reports[i] = toPaceDTO(r.Component, r.Report)
	}
	return dto
}

func toGoalDTO(goal planning.WeeklyGoal) GoalDTO {
	return GoalDTO{
		ComponentID: string(goal.Component),
		WeekStart:   goal.WeekStart.String(),
		Goal:        goal.Goal.Float64(),
		Notes:       goal.Notes,
	}
}

func toShipmentDTO(rec planning.ShipmentRecord) ShipmentDTO {
	return ShipmentDTO{
		ComponentID: string(rec.Component),
		Date:        rec.Day.String(),
		Quantity:    rec.Quantity.Float64(),
		Notes:       rec.Notes,
	}
}

func toHistoryDTO(id planning.ComponentID, report planning.HistoryReport) HistoryDTO {
	dto := HistoryDTO{
		ComponentID:     string(id),
		WindowStart:     report.Window.Start.String(),
		WindowEnd:       report.Window.End.String(),
		StartingBalance: report.Start.Float64(),
		CurrentBalance:  report.Current.Float64(),
		NetChange:       report.NetChange.Float64(),
		PercentChange:   report.PercentChange.InexactFloat64(),
		Daily:           make([]DailyBalanceDTO, len(report.Daily)),
		CountsByType:    toEventCounts(report.CountsByType),
		EventCount:      report.EventCount,
	}
	for i, d := range report.Daily {
		dto.Daily[i] = DailyBalanceDTO{
			Date:    d.Date.String(),
			Change:  d.Change.Float64(),
			Balance: d.Balance.Float64(),
		}
	}
	return dto
}

func toEventDTO(ev planning.StockEvent) EventDTO {
	dto := EventDTO{
		ID:          string(ev.ID),
		ComponentID: string(ev.Component),
		Type:        string(ev.Type),
		Quantity:    ev.Quantity.Float64(),
		Date:        ev.Day.String(),
		ReferenceID: string(ev.Reference),
		Reason:      ev.Reason,
		Notes:       ev.Notes,
	}
	if !ev.RecordedAt.IsZero() {
		dto.RecordedAt = ev.RecordedAt.Format(time.RFC3339)
	}
	return dto
}

func toEventDTOs(events []planning.StockEvent) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	return dtos
}

func toEventCounts(counts map[planning.EventType]int) map[string]int {
	out := make(map[string]int, len(counts))
	for t, n := range counts {
		out[string(t)] = n
	}
	return out
}
