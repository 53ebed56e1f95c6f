/*
handlers_test.go - HTTP handler tests over an in-memory store

Tests for:
- Component creation, listing, and error mapping
- Order lifecycle: create, receive, double-receive conflict, undo
- Goal, shipment, and pace flow anchored on a fixed date
- Outlook board, refresh, history, activity, and adjustments
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestRouter(t *testing.T) *chi.Mux {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewRouter(NewHandler(store, planning.DefaultProfile()))
}

func do(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func createComponent(t *testing.T, router *chi.Mux, id string, initialStock float64) ComponentDTO {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/components", CreateComponentRequest{
		ID:           id,
		Name:         "Part " + id,
		Supplier:     "Acme Industrial",
		LeadTimeDays: 5,
		SafetyStock:  100,
		InitialStock: initialStock,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create component: %d %s", rec.Code, rec.Body.String())
	}
	var dto ComponentDTO
	decode(t, rec, &dto)
	return dto
}

func createOrder(t *testing.T, router *chi.Mux, number, component string, qty float64, expected string) OrderDTO {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/orders", CreateOrderRequest{
		Number:      number,
		ComponentID: component,
		Quantity:    qty,
		ExpectedOn:  expected,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create order: %d %s", rec.Code, rec.Body.String())
	}
	var dto OrderDTO
	decode(t, rec, &dto)
	return dto
}

// =============================================================================
// HEALTH AND COMPONENTS
// =============================================================================

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %q", body["status"])
	}
}

func TestCreateComponent_Success(t *testing.T) {
	// GIVEN: A fresh server
	// WHEN: Creating a component with initial stock
	// THEN: Defaults are applied and the component is retrievable

	router := newTestRouter(t)

	dto := createComponent(t, router, "brg-6204", 250)
	if dto.Kind != string(planning.KindComponent) {
		t.Errorf("expected component kind, got %q", dto.Kind)
	}
	if dto.Unit != string(planning.UnitEach) {
		t.Errorf("expected default unit, got %q", dto.Unit)
	}
	if !dto.Active {
		t.Error("new components should be active")
	}
	if dto.SafetyStock != 100 {
		t.Errorf("expected safety stock 100, got %v", dto.SafetyStock)
	}

	rec := do(t, router, http.MethodGet, "/api/components/brg-6204", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched ComponentDTO
	decode(t, rec, &fetched)
	if fetched.ID != "brg-6204" || fetched.Name != "Part brg-6204" {
		t.Errorf("unexpected component: %+v", fetched)
	}

	rec = do(t, router, http.MethodGet, "/api/components", nil)
	var list []ComponentDTO
	decode(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 component, got %d", len(list))
	}
}

func TestCreateComponent_MissingIDIs400(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/components", CreateComponentRequest{Name: "No ID"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	decode(t, rec, &resp)
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestGetComponent_UnknownIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/components/ghost-part", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// ORDER LIFECYCLE
// =============================================================================

func TestOrderLifecycle_CreateReceiveUndo(t *testing.T) {
	// GIVEN: A component with 250 on hand and a 500 unit order
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)
	po := createOrder(t, router, "PO-2026-001", "brg-6204", 500, "2026-03-11")

	if po.Status != string(planning.OrderPending) {
		t.Fatalf("expected pending order, got %q", po.Status)
	}
	if po.Supplier != "Acme Industrial" {
		t.Errorf("expected supplier default from component, got %q", po.Supplier)
	}

	// WHEN: Receiving the order
	rec := do(t, router, http.MethodPost, "/api/orders/"+po.ID+"/receive", ReceiveOrderRequest{
		Quantity:     500,
		ReceivedDate: "2026-03-11",
		Notes:        "dock B",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: The order is received and the balance moved
	var receipt ReceiptDTO
	decode(t, rec, &receipt)
	if receipt.Order.Status != string(planning.OrderReceived) {
		t.Errorf("expected received status, got %q", receipt.Order.Status)
	}
	if receipt.Order.ReceivedOn == nil || *receipt.Order.ReceivedOn != "2026-03-11" {
		t.Errorf("expected received_on 2026-03-11, got %v", receipt.Order.ReceivedOn)
	}
	if receipt.Order.ReceivedQty == nil || *receipt.Order.ReceivedQty != 500 {
		t.Errorf("expected received_qty 500, got %v", receipt.Order.ReceivedQty)
	}
	if receipt.NewBalance != 750 {
		t.Errorf("expected balance 750, got %v", receipt.NewBalance)
	}

	// AND: A second receive is refused
	rec = do(t, router, http.MethodPost, "/api/orders/"+po.ID+"/receive", ReceiveOrderRequest{
		Quantity:     500,
		ReceivedDate: "2026-03-11",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on double receive, got %d", rec.Code)
	}
	var conflict ErrorResponse
	decode(t, rec, &conflict)
	if !strings.Contains(conflict.Error, "already received") {
		t.Errorf("expected already received error, got %q", conflict.Error)
	}

	// AND: Undo restores pending and the old balance
	rec = do(t, router, http.MethodPost, "/api/orders/"+po.ID+"/undo-receipt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on undo, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &receipt)
	if receipt.Order.Status != string(planning.OrderPending) {
		t.Errorf("expected pending after undo, got %q", receipt.Order.Status)
	}
	if receipt.NewBalance != 250 {
		t.Errorf("expected balance 250 after undo, got %v", receipt.NewBalance)
	}

	// AND: The pending order can be deleted
	rec = do(t, router, http.MethodDelete, "/api/orders/"+po.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", rec.Code)
	}
}

func TestReceiveOrder_UnknownIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/orders/no-such-order/receive", ReceiveOrderRequest{
		Quantity:     10,
		ReceivedDate: "2026-03-11",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUndoReceipt_PendingOrderIs409(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 0)
	po := createOrder(t, router, "PO-2026-002", "brg-6204", 100, "2026-03-11")

	rec := do(t, router, http.MethodPost, "/api/orders/"+po.ID+"/undo-receipt", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestCreateOrder_DuplicateNumberIs409(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 0)
	createOrder(t, router, "PO-2026-003", "brg-6204", 100, "2026-03-11")

	rec := do(t, router, http.MethodPost, "/api/orders", CreateOrderRequest{
		Number:      "PO-2026-003",
		ComponentID: "brg-6204",
		Quantity:    50,
		ExpectedOn:  "2026-03-18",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestListOrders_CountsCoverTheBook(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 0)
	createOrder(t, router, "PO-2026-004", "brg-6204", 100, "2026-03-11")
	po := createOrder(t, router, "PO-2026-005", "brg-6204", 200, "2026-03-12")

	rec := do(t, router, http.MethodPost, "/api/orders/"+po.ID+"/receive", ReceiveOrderRequest{
		Quantity:     200,
		ReceivedDate: "2026-03-12",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("receive failed: %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/orders?status=pending", nil)
	var book OrderBookDTO
	decode(t, rec, &book)
	if len(book.Orders) != 1 {
		t.Errorf("expected 1 pending order listed, got %d", len(book.Orders))
	}
	if book.Counts.Pending != 1 || book.Counts.Received != 1 || book.Counts.All != 2 {
		t.Errorf("expected counts 1/1/2, got %+v", book.Counts)
	}
}

// =============================================================================
// GOALS, SHIPMENTS, AND PACE
// =============================================================================

func TestPaceFlow_GoalShipmentReport(t *testing.T) {
	// GIVEN: A 500 unit weekly goal and 100 shipped on Monday
	router := newTestRouter(t)
	createComponent(t, router, "drive-100", 0)

	rec := do(t, router, http.MethodPut, "/api/goals/drive-100", GoalRequest{
		WeekStart: "2026-03-11",
		Goal:      500,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 setting goal, got %d: %s", rec.Code, rec.Body.String())
	}
	var goal GoalDTO
	decode(t, rec, &goal)
	if goal.WeekStart != "2026-03-09" {
		t.Errorf("expected the Monday key 2026-03-09, got %q", goal.WeekStart)
	}

	rec = do(t, router, http.MethodPost, "/api/shipments/drive-100", ShipmentRequest{
		Date:     "2026-03-09",
		Quantity: 100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 recording shipment, got %d: %s", rec.Code, rec.Body.String())
	}

	// WHEN: Asking for Wednesday's pace
	rec = do(t, router, http.MethodGet, "/api/pace?date=2026-03-11", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// THEN: The week is behind at 20 percent
	var week WeekPaceDTO
	decode(t, rec, &week)
	if week.WeekStart != "2026-03-09" || week.Today != "2026-03-11" {
		t.Errorf("unexpected week anchor: %+v", week)
	}
	if len(week.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(week.Reports))
	}
	report := week.Reports[0]
	if report.Progress != 20 {
		t.Errorf("expected 20 percent progress, got %v", report.Progress)
	}
	if report.Status != string(planning.WeekBehind) {
		t.Errorf("expected behind, got %q", report.Status)
	}
	if report.Variance != -400 {
		t.Errorf("expected variance -400, got %v", report.Variance)
	}
	if report.WorkdaysRemaining != 3 {
		t.Errorf("expected 3 workdays remaining, got %d", report.WorkdaysRemaining)
	}

	// AND: The single-product endpoint agrees
	rec = do(t, router, http.MethodGet, "/api/pace/drive-100?date=2026-03-11", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var single PaceDTO
	decode(t, rec, &single)
	if single.Shipped != 100 || single.Goal != 500 {
		t.Errorf("expected 100 of 500 shipped, got %+v", single)
	}
}

func TestPutGoal_NegativeIs400(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "drive-100", 0)

	rec := do(t, router, http.MethodPut, "/api/goals/drive-100", GoalRequest{
		WeekStart: "2026-03-09",
		Goal:      -10,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetPace_UnknownComponentIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/pace/ghost-part?date=2026-03-11", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// OUTLOOK
// =============================================================================

func TestOutlookBoard_AnchoredDate(t *testing.T) {
	// GIVEN: One stocked component with no demand
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	// WHEN: Building the board for a fixed Monday
	rec := do(t, router, http.MethodGet, "/api/outlook?date=2026-03-09", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// THEN: The row carries the stock level and an idle tier
	var board OutlookBoardDTO
	decode(t, rec, &board)
	if board.AsOf != "2026-03-09" {
		t.Errorf("expected as_of 2026-03-09, got %q", board.AsOf)
	}
	if board.HorizonDays != planning.DefaultHorizonDays {
		t.Errorf("expected default horizon, got %d", board.HorizonDays)
	}
	if len(board.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(board.Rows))
	}
	row := board.Rows[0]
	if row.OnHand != 250 || row.ProjectedEnd != 250 {
		t.Errorf("expected flat 250 balance, got %+v", row)
	}
	if row.Tier != string(planning.TierStagnant) {
		t.Errorf("expected stagnant tier for idle stock, got %q", row.Tier)
	}
	if row.NeedsOrdering {
		t.Error("idle stock above safety should not need ordering")
	}
	if len(row.Days) != 0 {
		t.Error("the board should omit the daily series")
	}
}

func TestComponentOutlook_IncludesDailySeries(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	rec := do(t, router, http.MethodGet, "/api/outlook/brg-6204?date=2026-03-09", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var row OutlookRowDTO
	decode(t, rec, &row)
	if len(row.Days) != planning.DefaultHorizonDays {
		t.Errorf("expected %d projected days, got %d", planning.DefaultHorizonDays, len(row.Days))
	}
	if row.Days[0].Date != "2026-03-09" {
		t.Errorf("expected series to start on the anchor, got %q", row.Days[0].Date)
	}
}

func TestRefreshOutlook_PersistsSnapshots(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	rec := do(t, router, http.MethodPost, "/api/outlook/refresh?date=2026-03-09", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snaps []SnapshotDTO
	decode(t, rec, &snaps)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].ComponentID != "brg-6204" || snaps[0].AsOf != "2026-03-09" {
		t.Errorf("unexpected snapshot: %+v", snaps[0])
	}
	if snaps[0].CalculatedAt == "" {
		t.Error("expected a calculation timestamp")
	}
}

func TestInvalidDateQueryIs400(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/outlook?date=bananas",
		"/api/pace?date=03-09-2026",
		"/api/activity?date=20260309",
	} {
		rec := do(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

// =============================================================================
// HISTORY, ACTIVITY, AND ADJUSTMENTS
// =============================================================================

func TestComponentHistory_TrailingWindow(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	rec := do(t, router, http.MethodGet, "/api/history/brg-6204?days=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var history HistoryDTO
	decode(t, rec, &history)
	if history.CurrentBalance != 250 {
		t.Errorf("expected current balance 250, got %v", history.CurrentBalance)
	}
	if history.StartingBalance != 0 {
		t.Errorf("expected zero start, got %v", history.StartingBalance)
	}
	if history.NetChange != 250 {
		t.Errorf("expected net change 250, got %v", history.NetChange)
	}
	if history.EventCount != 1 {
		t.Errorf("expected 1 event, got %d", history.EventCount)
	}
	if len(history.Daily) != 30 {
		t.Errorf("expected 30 daily rows, got %d", len(history.Daily))
	}
}

func TestActivityFeed(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	rec := do(t, router, http.MethodGet, "/api/activity?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var events []EventDTO
	decode(t, rec, &events)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != string(planning.EventPhysicalCount) {
		t.Errorf("expected the initial count event, got %q", events[0].Type)
	}
}

func TestApplyAdjustment_Success(t *testing.T) {
	// GIVEN: 250 on hand
	// WHEN: Scrapping 12
	// THEN: The event is typed from the reason and the balance drops

	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)

	rec := do(t, router, http.MethodPost, "/api/adjustments/brg-6204", AdjustmentRequest{
		QuantityChange: -12,
		Reason:         "Scrap: dropped tray",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var adj AdjustmentDTO
	decode(t, rec, &adj)
	if adj.NewBalance != 238 {
		t.Errorf("expected balance 238, got %v", adj.NewBalance)
	}
	if adj.Event.Type != string(planning.EventScrap) {
		t.Errorf("expected scrap event, got %q", adj.Event.Type)
	}
	if adj.Event.Quantity != -12 {
		t.Errorf("expected -12 quantity, got %v", adj.Event.Quantity)
	}
}

func TestApplyAdjustment_Validation(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 0)

	cases := []struct {
		name string
		path string
		req  AdjustmentRequest
		want int
	}{
		{"missing reason", "/api/adjustments/brg-6204", AdjustmentRequest{QuantityChange: 5}, http.StatusBadRequest},
		{"zero change", "/api/adjustments/brg-6204", AdjustmentRequest{Reason: "Damage"}, http.StatusBadRequest},
		{"unknown component", "/api/adjustments/ghost-part", AdjustmentRequest{QuantityChange: 5, Reason: "Damage"}, http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := do(t, router, http.MethodPost, tc.path, tc.req)
		if rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestHistorySummary_CoversActiveComponents(t *testing.T) {
	router := newTestRouter(t)
	createComponent(t, router, "brg-6204", 250)
	createComponent(t, router, "mtr-750", 40)

	rec := do(t, router, http.MethodGet, "/api/history?days=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary HistorySummaryDTO
	decode(t, rec, &summary)
	if len(summary.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(summary.Components))
	}
	if summary.EventCount != 2 {
		t.Errorf("expected 2 events total, got %d", summary.EventCount)
	}
	if summary.CountsByType[string(planning.EventPhysicalCount)] != 2 {
		t.Errorf("expected 2 count events, got %+v", summary.CountsByType)
	}
}

// Sanity check that unknown routes still 404 through the middleware stack.
func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
