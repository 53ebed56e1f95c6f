/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates components, BOM
	lines, orders, goals, and stock events that demonstrate specific
	features.

AVAILABLE SCENARIOS:

	assembly-line   A drive unit with its full bill of materials, a weekly
	                goal in progress, and an order book with pending and
	                received purchase orders.
	low-stock       Components spread across every urgency tier, including
	                one with no recorded movement.
	receiving-day   An order book heavy on overdue and due-today purchase
	                orders, ready for receiving workflows.

DATES:

	All scenario data is relative to the current date, so projections,
	pace reports, and overdue flags look right no matter when the
	scenario is loaded.

USAGE:

	Loaded at startup via the -demo flag:

	  mrp-server -db :memory: -demo assembly-line

SEE ALSO:
  - cmd/server/main.go: Flag wiring
  - inventory/: Services used for seeding
*/
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/forge/mrp-engine/inventory"
	"github.com/forge/mrp-engine/planning"
	"github.com/forge/mrp-engine/shipping"
)

// Scenario describes one loadable demo data set.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Scenarios lists the available demo scenarios.
func Scenarios() []Scenario {
	return []Scenario{
		{
			ID:          "assembly-line",
			Name:        "Assembly Line",
			Description: "Drive unit with full bill of materials, weekly goal in progress, and a mixed order book",
		},
		{
			ID:          "low-stock",
			Name:        "Low Stock",
			Description: "Components across every urgency tier, including one with no movement",
		},
		{
			ID:          "receiving-day",
			Name:        "Receiving Day",
			Description: "Order book heavy on overdue and due-today purchase orders",
		},
	}
}

type resetter interface {
	Reset(ctx context.Context) error
}

// LoadScenario wipes the store and seeds it with the named scenario.
func LoadScenario(ctx context.Context, stores planning.TxStores, name string) error {
	if r, ok := stores.(resetter); ok {
		if err := r.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset store: %w", err)
		}
	}

	switch name {
	case "assembly-line":
		return loadAssemblyLine(ctx, stores)
	case "low-stock":
		return loadLowStock(ctx, stores)
	case "receiving-day":
		return loadReceivingDay(ctx, stores)
	default:
		return fmt.Errorf("unknown scenario: %s", name)
	}
}

// loadAssemblyLine seeds a drive unit product, its bill of materials,
// a weekly goal with shipments in progress, and an order book that
// exercises pending, overdue, due-today, and received states.
func loadAssemblyLine(ctx context.Context, stores planning.TxStores) error {
	components := inventory.Components{Store: stores}
	orders := inventory.Orders{Store: stores}
	receiving := inventory.Receiving{Store: stores}
	adjustments := inventory.Adjustments{Store: stores}
	goals := shipping.Goals{Store: stores}
	shipments := shipping.Shipments{Store: stores}

	today := planning.Today()
	week := planning.WeekOf(today)

	// Finished good
	if _, err := components.Create(ctx, inventory.CreateComponentInput{
		ID:   "drive-100",
		Name: "Drive Unit",
		Kind: planning.KindFinishedGood,
		Unit: "units",
	}); err != nil {
		return err
	}

	// Bill of materials
	parts := []inventory.CreateComponentInput{
		{
			ID:           "mtr-750",
			Name:         "Motor 750W",
			Kind:         planning.KindComponent,
			Unit:         "units",
			Category:     "Drivetrain",
			Supplier:     "Hangzhou Motor Co",
			LeadTimeDays: 21,
			SafetyStock:  planning.NewQuantity(100, "units"),
			ReorderQty:   planning.NewQuantity(500, "units"),
			InitialStock: planning.NewQuantity(320, "units"),
		},
		{
			ID:           "ctl-04",
			Name:         "Controller Board v4",
			Kind:         planning.KindComponent,
			Unit:         "units",
			Category:     "Electronics",
			Supplier:     "Shenzhen PCB Works",
			LeadTimeDays: 28,
			SafetyStock:  planning.NewQuantity(80, "units"),
			ReorderQty:   planning.NewQuantity(400, "units"),
			MinimumOrder: planning.NewQuantity(200, "units"),
			InitialStock: planning.NewQuantity(150, "units"),
		},
		{
			ID:            "brg-6204",
			Name:          "Bearing Kit 6204",
			Kind:          planning.KindComponent,
			Unit:          "units",
			Category:      "Drivetrain",
			Supplier:      "SKF Distribution",
			LeadTimeDays:  14,
			SafetyStock:   planning.NewQuantity(200, "units"),
			ReorderQty:    planning.NewQuantity(1000, "units"),
			OrderMultiple: planning.NewQuantity(100, "units"),
			InitialStock:  planning.NewQuantity(900, "units"),
		},
		{
			ID:           "hsg-al",
			Name:         "Aluminum Housing",
			Kind:         planning.KindComponent,
			Unit:         "units",
			Category:     "Enclosure",
			Supplier:     "CastPro Foundry",
			LeadTimeDays: 35,
			SafetyStock:  planning.NewQuantity(60, "units"),
			ReorderQty:   planning.NewQuantity(300, "units"),
			InitialStock: planning.NewQuantity(410, "units"),
		},
		{
			ID:           "fst-m6",
			Name:         "M6 Fastener Pack",
			Kind:         planning.KindRawMaterial,
			Unit:         "packs",
			Category:     "Hardware",
			Supplier:     "BoltBarn",
			LeadTimeDays: 7,
			SafetyStock:  planning.NewQuantity(400, "packs"),
			ReorderQty:   planning.NewQuantity(2000, "packs"),
			InitialStock: planning.NewQuantity(2600, "packs"),
		},
	}
	for _, part := range parts {
		if _, err := components.Create(ctx, part); err != nil {
			return err
		}
	}

	lines := []planning.BOMLine{
		{Parent: "drive-100", Component: "mtr-750", QuantityPer: decimal.NewFromInt(1)},
		{Parent: "drive-100", Component: "ctl-04", QuantityPer: decimal.NewFromInt(1)},
		{Parent: "drive-100", Component: "brg-6204", QuantityPer: decimal.NewFromInt(2)},
		{Parent: "drive-100", Component: "hsg-al", QuantityPer: decimal.NewFromInt(1)},
		{Parent: "drive-100", Component: "fst-m6", QuantityPer: decimal.NewFromInt(4)},
	}
	for _, line := range lines {
		if err := stores.BOM().Put(ctx, line); err != nil {
			return err
		}
	}

	// Weekly goal with a few days of shipments behind it
	if _, err := goals.Upsert(ctx, "drive-100", week.Start, planning.NewQuantity(150, "units"), "Q3 ramp target"); err != nil {
		return err
	}
	if _, err := shipments.Record(ctx, "drive-100", week.Start, planning.NewQuantity(40, "units"), ""); err != nil {
		return err
	}
	if !today.Equal(week.Start) {
		if _, err := shipments.Record(ctx, "drive-100", today, planning.NewQuantity(25, "units"), ""); err != nil {
			return err
		}
	}

	// Order book: one inbound, one overdue, one due today, one already received
	if _, err := orders.Create(ctx, inventory.CreateOrderInput{
		Number:    "PO-241",
		Component: "mtr-750",
		Quantity:  planning.NewQuantity(500, "units"),
		Ordered:   today.AddDays(-16),
		Expected:  today.AddDays(5),
		Supplier:  "Hangzhou Motor Co",
	}); err != nil {
		return err
	}
	if _, err := orders.Create(ctx, inventory.CreateOrderInput{
		Number:    "PO-238",
		Component: "ctl-04",
		Quantity:  planning.NewQuantity(400, "units"),
		Ordered:   today.AddDays(-30),
		Expected:  today.AddDays(-2),
		Supplier:  "Shenzhen PCB Works",
		Notes:     "Vendor reported port congestion",
	}); err != nil {
		return err
	}
	if _, err := orders.Create(ctx, inventory.CreateOrderInput{
		Number:    "PO-239",
		Component: "hsg-al",
		Quantity:  planning.NewQuantity(300, "units"),
		Ordered:   today.AddDays(-35),
		Expected:  today,
		Supplier:  "CastPro Foundry",
	}); err != nil {
		return err
	}
	received, err := orders.Create(ctx, inventory.CreateOrderInput{
		Number:    "PO-235",
		Component: "brg-6204",
		Quantity:  planning.NewQuantity(1000, "units"),
		Ordered:   today.AddDays(-20),
		Expected:  today.AddDays(-6),
		Supplier:  "SKF Distribution",
	})
	if err != nil {
		return err
	}
	if _, err := receiving.Receive(ctx, received.ID, inventory.ReceiveRequest{
		Quantity: planning.NewQuantity(1000, "units"),
		Day:      today.AddDays(-6),
	}); err != nil {
		return err
	}

	// One correction so the activity feed shows a manual adjustment
	if _, err := adjustments.Apply(ctx, "fst-m6", planning.NewQuantity(-12, "packs"), "Damaged in handling", "Forklift incident, bay 3"); err != nil {
		return err
	}

	return nil
}

// loadLowStock seeds components whose projected runway lands in each
// urgency tier, driven by consumption against a parent goal, plus one
// component with no movement at all.
func loadLowStock(ctx context.Context, stores planning.TxStores) error {
	components := inventory.Components{Store: stores}
	goals := shipping.Goals{Store: stores}

	today := planning.Today()
	week := planning.WeekOf(today)

	if _, err := components.Create(ctx, inventory.CreateComponentInput{
		ID:   "widget-a",
		Name: "Widget A",
		Kind: planning.KindFinishedGood,
		Unit: "units",
	}); err != nil {
		return err
	}

	// Weekly goal of 100 units means 20 consumed per workday from each
	// 1:1 part. Stock levels are sized to land each part in a different
	// tier whatever weekday the scenario loads on.
	parts := []struct {
		id    string
		name  string
		stock float64
	}{
		{"part-critical", "Critical Part", 80},   // runs out inside a week
		{"part-warning", "Warning Part", 140},    // ~9-11 days
		{"part-caution", "Caution Part", 320},    // ~3 weeks
		{"part-ok", "Comfortable Part", 2000},    // outlasts the horizon
	}
	for _, p := range parts {
		if _, err := components.Create(ctx, inventory.CreateComponentInput{
			ID:           planning.ComponentID(p.id),
			Name:         p.name,
			Kind:         planning.KindComponent,
			Unit:         "units",
			LeadTimeDays: 14,
			SafetyStock:  planning.NewQuantity(50, "units"),
			ReorderQty:   planning.NewQuantity(500, "units"),
			InitialStock: planning.NewQuantity(p.stock, "units"),
		}); err != nil {
			return err
		}
		if err := stores.BOM().Put(ctx, planning.BOMLine{
			Parent:      "widget-a",
			Component:   planning.ComponentID(p.id),
			QuantityPer: decimal.NewFromInt(1),
		}); err != nil {
			return err
		}
	}

	// No parent, no usage, no events beyond the initial count: stagnant.
	if _, err := components.Create(ctx, inventory.CreateComponentInput{
		ID:           "part-idle",
		Name:         "Idle Part",
		Kind:         planning.KindComponent,
		Unit:         "units",
		InitialStock: planning.NewQuantity(75, "units"),
	}); err != nil {
		return err
	}

	if _, err := goals.Upsert(ctx, "widget-a", week.Start, planning.NewQuantity(100, "units"), ""); err != nil {
		return err
	}

	return nil
}

// loadReceivingDay seeds an order book with overdue, due-today, and
// upcoming purchase orders against a small component set.
func loadReceivingDay(ctx context.Context, stores planning.TxStores) error {
	components := inventory.Components{Store: stores}
	orders := inventory.Orders{Store: stores}

	today := planning.Today()

	parts := []inventory.CreateComponentInput{
		{
			ID:           "cell-18650",
			Name:         "Battery Cell 18650",
			Kind:         planning.KindComponent,
			Unit:         "units",
			Supplier:     "CellSource",
			LeadTimeDays: 45,
			SafetyStock:  planning.NewQuantity(1000, "units"),
			ReorderQty:   planning.NewQuantity(5000, "units"),
			InitialStock: planning.NewQuantity(3200, "units"),
		},
		{
			ID:           "conn-xt60",
			Name:         "XT60 Connector",
			Kind:         planning.KindComponent,
			Unit:         "units",
			Supplier:     "AmpHold",
			LeadTimeDays: 10,
			SafetyStock:  planning.NewQuantity(300, "units"),
			ReorderQty:   planning.NewQuantity(1500, "units"),
			InitialStock: planning.NewQuantity(600, "units"),
		},
		{
			ID:           "wire-14awg",
			Name:         "Silicone Wire 14AWG",
			Kind:         planning.KindRawMaterial,
			Unit:         "meters",
			Supplier:     "AmpHold",
			LeadTimeDays: 10,
			SafetyStock:  planning.NewQuantity(500, "meters"),
			ReorderQty:   planning.NewQuantity(2000, "meters"),
			InitialStock: planning.NewQuantity(1400, "meters"),
		},
	}
	for _, c := range parts {
		if _, err := components.Create(ctx, c); err != nil {
			return err
		}
	}

	book := []inventory.CreateOrderInput{
		{
			Number:    "PO-3101",
			Component: "cell-18650",
			Quantity:  planning.NewQuantity(5000, "units"),
			Ordered:   today.AddDays(-50),
			Expected:  today.AddDays(-4),
			Supplier:  "CellSource",
			Notes:     "Customs cleared, truck dispatched",
		},
		{
			Number:    "PO-3102",
			Component: "conn-xt60",
			Quantity:  planning.NewQuantity(1500, "units"),
			Ordered:   today.AddDays(-12),
			Expected:  today.AddDays(-1),
			Supplier:  "AmpHold",
		},
		{
			Number:    "PO-3103",
			Component: "wire-14awg",
			Quantity:  planning.NewQuantity(2000, "meters"),
			Ordered:   today.AddDays(-10),
			Expected:  today,
			Supplier:  "AmpHold",
		},
		{
			Number:    "PO-3104",
			Component: "cell-18650",
			Quantity:  planning.NewQuantity(5000, "units"),
			Ordered:   today.AddDays(-5),
			Expected:  today.AddDays(7),
			Supplier:  "CellSource",
		},
	}
	for _, o := range book {
		if _, err := orders.Create(ctx, o); err != nil {
			return err
		}
	}

	return nil
}
