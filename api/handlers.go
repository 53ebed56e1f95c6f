/*
handlers.go - HTTP API handlers for the planning engine

PURPOSE:
  Exposes the planning engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Components:
    GET    /api/components             List components (?all=true for inactive)
    POST   /api/components             Create component
    GET    /api/components/{id}        Get component details

  Outlook:
    GET    /api/outlook                Full planning board
    GET    /api/outlook/{id}           One component with daily series
    POST   /api/outlook/refresh        Recompute and persist snapshots

  Orders:
    GET    /api/orders                 Order book (?status=, ?component=)
    POST   /api/orders                 Create purchase order
    GET    /api/orders/{id}            Get order
    DELETE /api/orders/{id}            Delete pending order
    POST   /api/orders/{id}/receive    Receive order (transactional)
    POST   /api/orders/{id}/undo-receipt  Reverse a receipt

  Pace:
    GET    /api/pace                   Weekly pace for all goaled products
    GET    /api/pace/{id}              One product's weekly pace
    PUT    /api/goals/{id}             Set weekly build goal
    POST   /api/shipments/{id}         Record the day's shipped count

  History:
    GET    /api/history                Reconciliation summary, all components
    GET    /api/history/{id}           One component's window (?days=)
    GET    /api/activity               Newest stock events (?limit=)
    POST   /api/adjustments/{id}       Manual stock correction

ARCHITECTURE:
  Handler struct holds the store bundle, the planning profile, and one
  service value per domain area. Handlers parse, delegate, serialize.

DATE OVERRIDE:
  Read endpoints accept an optional ?date=YYYY-MM-DD to anchor the
  planning date, defaulting to today. Projections stay deterministic
  for a given anchor.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Component or order not found
  - 409: Conflict (already received, duplicate number)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario seeding
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/forge/mrp-engine/factory"
	"github.com/forge/mrp-engine/inventory"
	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/shipping"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   planning.TxStores
	Profile planning.PlanningProfile

	Components  inventory.Components
	Orders      inventory.Orders
	Receiving   inventory.Receiving
	Adjustments inventory.Adjustments
	Outlook     inventory.Outlook
	History     inventory.History
	Goals       shipping.Goals
	Shipments   shipping.Shipments
	Pace        shipping.Pace
}

// NewHandler creates a new handler over the given store bundle.
func NewHandler(store planning.TxStores, profile planning.PlanningProfile) *Handler {
	profile = profile.Normalized()
	return &Handler{
		Store:   store,
		Profile: profile,

		Components:  inventory.Components{Store: store},
		Orders:      inventory.Orders{Store: store},
		Receiving:   inventory.Receiving{Store: store},
		Adjustments: inventory.Adjustments{Store: store},
		Outlook:     inventory.Outlook{Store: store, Profile: profile},
		History:     inventory.History{Store: store, Profile: profile},
		Goals:       shipping.Goals{Store: store},
		Shipments:   shipping.Shipments{Store: store},
		Pace:        shipping.Pace{Store: store, Profile: profile},
	}
}

// Health reports service liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// COMPONENT HANDLERS
// =============================================================================

// ListComponents returns components, active only unless ?all=true.
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"

	components, err := h.Components.List(r.Context(), !all)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list components", err)
		return
	}

	dtos := make([]ComponentDTO, len(components))
	for i, c := range components {
		dtos[i] = toComponentDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetComponent returns a single component.
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))

	c, err := h.Components.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toComponentDTO(*c))
}

// CreateComponent creates a new component, optionally seeding initial stock.
func (h *Handler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var req CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	unit := planning.Unit(req.Unit)
	in := inventory.CreateComponentInput{
		ID:            planning.ComponentID(req.ID),
		Name:          req.Name,
		Kind:          planning.ComponentKind(req.Kind),
		Unit:          unit,
		Category:      req.Category,
		Supplier:      req.Supplier,
		LeadTimeDays:  req.LeadTimeDays,
		SafetyStock:   planning.NewQuantity(req.SafetyStock, unit),
		ReorderQty:    planning.NewQuantity(req.ReorderQty, unit),
		MinimumOrder:  planning.NewQuantity(req.MinimumOrder, unit),
		OrderMultiple: planning.NewQuantity(req.OrderMultiple, unit),
		InitialStock:  planning.NewQuantity(req.InitialStock, unit),
		Thresholds:    thresholdsFromJSON(req.Thresholds),
	}

	c, err := h.Components.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toComponentDTO(*c))
}

// =============================================================================
// OUTLOOK HANDLERS
// =============================================================================

// GetOutlook returns the full planning board.
func (h *Handler) GetOutlook(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDay(w, r)
	if !ok {
		return
	}

	board, err := h.Outlook.Build(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build outlook", err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardDTO(*board))
}

// GetComponentOutlook returns one component's outlook with its daily series.
func (h *Handler) GetComponentOutlook(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))
	today, ok := queryDay(w, r)
	if !ok {
		return
	}

	row, err := h.Outlook.Component(r.Context(), id, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutlookRowDTO(*row, true))
}

// RefreshOutlook recomputes the board and persists snapshots.
func (h *Handler) RefreshOutlook(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDay(w, r)
	if !ok {
		return
	}

	snaps, err := h.Outlook.Snapshot(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh outlook", err)
		return
	}

	dtos := make([]SnapshotDTO, len(snaps))
	for i, snap := range snaps {
		dtos[i] = toSnapshotDTO(snap)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// ListOrders returns the order book, optionally filtered by status or component.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter planning.OrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := planning.OrderStatus(s)
		filter.Status = &status
	}
	if c := r.URL.Query().Get("component"); c != "" {
		id := planning.ComponentID(c)
		filter.Component = &id
	}

	book, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}

	writeJSON(w, http.StatusOK, OrderBookDTO{
		Orders: toOrderDTOs(book.Orders),
		Counts: OrderCountsDTO{
			Pending:  book.Counts.Pending,
			Received: book.Counts.Received,
			All:      book.Counts.All,
		},
	})
}

// GetOrder returns a single purchase order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := planning.OrderID(chi.URLParam(r, "id"))

	po, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*po))
}

// CreateOrder creates a new purchase order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := inventory.CreateOrderInput{
		Number:    req.Number,
		Component: planning.ComponentID(req.ComponentID),
		Quantity:  planning.NewQuantity(req.Quantity, ""),
		Supplier:  req.Supplier,
		Notes:     req.Notes,
	}
	if req.OrderedOn != "" {
		day, err := planning.ParseTimePoint(req.OrderedOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ordered_on format (use YYYY-MM-DD)", err)
			return
		}
		in.Ordered = day
	}
	if req.ExpectedOn != "" {
		day, err := planning.ParseTimePoint(req.ExpectedOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expected_on format (use YYYY-MM-DD)", err)
			return
		}
		in.Expected = day
	}

	po, err := h.Orders.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(*po))
}

// DeleteOrder deletes a pending purchase order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := planning.OrderID(chi.URLParam(r, "id"))

	if err := h.Orders.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": string(id)})
}

// ReceiveOrder marks a pending order as received and adjusts stock.
// The three effects (status flip, receipt event, balance change) are
// applied in one transaction; duplicate attempts get a 409.
func (h *Handler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	id := planning.OrderID(chi.URLParam(r, "id"))

	var req ReceiveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	recv := inventory.ReceiveRequest{
		Quantity: planning.NewQuantity(req.Quantity, ""),
		Notes:    req.Notes,
	}
	if req.ReceivedDate != "" {
		day, err := planning.ParseTimePoint(req.ReceivedDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid received_date format (use YYYY-MM-DD)", err)
			return
		}
		recv.Day = day
	}

	receipt, err := h.Receiving.Receive(r.Context(), id, recv)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(*receipt))
}

// UndoReceipt reverses a receipt, returning the order to pending.
func (h *Handler) UndoReceipt(w http.ResponseWriter, r *http.Request) {
	id := planning.OrderID(chi.URLParam(r, "id"))

	receipt, err := h.Receiving.Undo(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTO(*receipt))
}

// =============================================================================
// PACE HANDLERS
// =============================================================================

// GetPace returns the weekly pace report for every product with a goal.
func (h *Handler) GetPace(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDay(w, r)
	if !ok {
		return
	}

	week, err := h.Pace.Week(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build pace report", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekPaceDTO(*week))
}

// GetComponentPace returns one product's weekly pace.
func (h *Handler) GetComponentPace(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))
	today, ok := queryDay(w, r)
	if !ok {
		return
	}

	pace, err := h.Pace.Component(r.Context(), id, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaceDTO(pace.Component, pace.Report))
}

// PutGoal sets the weekly build goal for a product. The week defaults to
// the current one; week_start lands on its Monday either way.
func (h *Handler) PutGoal(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	weekStart := planning.WeekOf(planning.Today()).Start
	if req.WeekStart != "" {
		day, err := planning.ParseTimePoint(req.WeekStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week_start format (use YYYY-MM-DD)", err)
			return
		}
		weekStart = day
	}

	goal, err := h.Goals.Upsert(r.Context(), id, weekStart, planning.NewQuantity(req.Goal, ""), req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(*goal))
}

// RecordShipment records the day's shipped count for a product. Posting
// again for the same day replaces the figure.
func (h *Handler) RecordShipment(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))

	var req ShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day := planning.Today()
	if req.Date != "" {
		parsed, err := planning.ParseTimePoint(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		day = parsed
	}

	rec, err := h.Shipments.Record(r.Context(), id, day, planning.NewQuantity(req.Quantity, ""), req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentDTO(*rec))
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// GetComponentHistory reconciles one component's trailing window.
func (h *Handler) GetComponentHistory(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))
	today, ok := queryDay(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", 0)

	report, err := h.History.Component(r.Context(), id, days, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryDTO(id, *report))
}

// GetHistorySummary reconciles every active component over one window.
func (h *Handler) GetHistorySummary(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDay(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", 0)

	summary, err := h.History.Summary(r.Context(), days, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build history summary", err)
		return
	}

	dto := HistorySummaryDTO{
		WindowStart:  summary.Window.Start.String(),
		WindowEnd:    summary.Window.End.String(),
		Components:   make([]ComponentHistoryDTO, len(summary.Components)),
		CountsByType: toEventCounts(summary.CountsByType),
		EventCount:   summary.EventCount,
	}
	for i, ch := range summary.Components {
		dto.Components[i] = ComponentHistoryDTO{
			ComponentID:     string(ch.Component.ID),
			ComponentName:   ch.Component.Name,
			StartingBalance: ch.Report.Start.Float64(),
			CurrentBalance:  ch.Report.Current.Float64(),
			NetChange:       ch.Report.NetChange.Float64(),
			PercentChange:   ch.Report.PercentChange.InexactFloat64(),
			EventCount:      ch.Report.EventCount,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetActivity returns the newest stock events across all components.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	today, ok := queryDay(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 0)

	events, err := h.History.Recent(r.Context(), limit, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load activity", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// ApplyAdjustment records a manual stock correction for a component.
func (h *Handler) ApplyAdjustment(w http.ResponseWriter, r *http.Request) {
	id := planning.ComponentID(chi.URLParam(r, "id"))

	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "Reason is required", nil)
		return
	}

	adj, err := h.Adjustments.Apply(r.Context(), id, planning.NewQuantity(req.QuantityChange, ""), req.Reason, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdjustmentDTO{
		Event:      toEventDTO(adj.Event),
		NewBalance: adj.NewBalance.Float64(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps service errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case planning.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case planning.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case planning.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// queryDay reads the optional ?date= anchor, defaulting to today. Writes
// a 400 and returns false when the value does not parse.
func queryDay(w http.ResponseWriter, r *http.Request) (planning.TimePoint, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return planning.Today(), true
	}
	day, err := planning.ParseTimePoint(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid date %q (use YYYY-MM-DD)", raw), err)
		return planning.TimePoint{}, false
	}
	return day, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// thresholdsFromJSON converts the config schema form used by the API.
func thresholdsFromJSON(tj *factory.ThresholdsJSON) planning.UrgencyThresholds {
	if tj == nil {
		return planning.UrgencyThresholds{}
	}
	return planning.UrgencyThresholds{
		CriticalDays: tj.CriticalDays,
		WarningDays:  tj.WarningDays,
		CautionDays:  tj.CautionDays,
	}
}
