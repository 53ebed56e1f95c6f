/*
store.go - Persistence interfaces for planning data

PURPOSE:
  Defines the boundary between the planning domain and the database. The
  event store keeps append-only semantics; master data and purchase
  orders get ordinary CRUD; goals and shipments are keyed upserts.

APPEND-ONLY CONTRACT:
  Stock events are never updated or deleted. Corrections happen by
  appending a compensating event (see the receipt undo flow). The
  EventStore interface therefore has no Update or Delete.

TRANSACTIONS:
  Receiving a purchase order touches the order row AND the event log in
  one atomic step. TxStores runs a function against a bundle of stores
  backed by a single database transaction; if the function returns an
  error everything rolls back.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite storage
  - planning/store: In-memory storage for tests and demos

SEE ALSO:
  - ledger.go: Domain rules layered on top of the EventStore
*/
package planning

import "context"

// =============================================================================
// EVENT STORE - Append-only stock event log
// =============================================================================

type EventStore interface {
	// Append persists one event. Returns ErrDuplicateEvent if the ID exists.
	Append(ctx context.Context, ev StockEvent) error

	// AppendBatch persists events atomically. Either all land or none do.
	AppendBatch(ctx context.Context, evs []StockEvent) error

	// Load returns a component's events ordered by day, oldest first.
	Load(ctx context.Context, component ComponentID) ([]StockEvent, error)

	// LoadRange returns a component's events inside the window.
	LoadRange(ctx context.Context, component ComponentID, window Period) ([]StockEvent, error)

	// LoadAll returns every component's events inside the window.
	LoadAll(ctx context.Context, window Period) ([]StockEvent, error)

	// Exists checks whether an event ID is already present.
	Exists(ctx context.Context, id EventID) (bool, error)

	// ByReference returns the events recorded against a purchase order.
	ByReference(ctx context.Context, order OrderID) ([]StockEvent, error)
}

// =============================================================================
// MASTER DATA AND ORDER BOOK
// =============================================================================

type ComponentStore interface {
	// Put inserts or replaces a component record.
	Put(ctx context.Context, c Component) error

	// Get returns a component or ErrComponentNotFound.
	Get(ctx context.Context, id ComponentID) (*Component, error)

	// List returns components ordered by code.
	List(ctx context.Context, activeOnly bool) ([]Component, error)

	Delete(ctx context.Context, id ComponentID) error
}

// OrderFilter narrows an order book listing. Nil fields match everything.
type OrderFilter struct {
	Status    *OrderStatus
	Component *ComponentID
}

type OrderStore interface {
	// Create inserts a new order. Returns ErrDuplicateOrderNumber when the
	// order number is taken.
	Create(ctx context.Context, po PurchaseOrder) error

	// Get returns an order or ErrOrderNotFound.
	Get(ctx context.Context, id OrderID) (*PurchaseOrder, error)

	// GetByNumber returns an order by its human-facing number.
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// List returns matching orders ordered by expected date.
	List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)

	// Update replaces an existing order row.
	Update(ctx context.Context, po PurchaseOrder) error

	Delete(ctx context.Context, id OrderID) error
}

// =============================================================================
// GOALS AND SHIPMENTS
// =============================================================================

// WeeklyGoal is the build target for one component and week. WeekStart is
// always a Monday.
type WeeklyGoal struct {
	Component ComponentID
	WeekStart TimePoint
	Goal      Quantity
	Notes     string
}

type GoalStore interface {
	// Upsert records or replaces the goal for component+week.
	Upsert(ctx context.Context, goal WeeklyGoal) error

	// Get returns the goal for component+week, nil when none is recorded.
	Get(ctx context.Context, component ComponentID, weekStart TimePoint) (*WeeklyGoal, error)

	// ListWeek returns every goal recorded for the week, ordered by code.
	ListWeek(ctx context.Context, weekStart TimePoint) ([]WeeklyGoal, error)
}

// ShipmentRecord is one day's shipped count for a component. One record
// per component and day; recording again replaces the day's figure.
type ShipmentRecord struct {
	Component ComponentID
	Day       TimePoint
	Quantity  Quantity
	Notes     string
}

type ShipmentStore interface {
	// Record inserts or replaces the day's shipment figure.
	Record(ctx context.Context, rec ShipmentRecord) error

	// OnDay returns the day's record, nil when nothing was shipped.
	OnDay(ctx context.Context, component ComponentID, day TimePoint) (*ShipmentRecord, error)

	// TotalInWindow sums a component's shipments inside the window.
	TotalInWindow(ctx context.Context, component ComponentID, window Period) (Quantity, error)

	// ListWindow returns all records inside the window ordered by day.
	ListWindow(ctx context.Context, window Period) ([]ShipmentRecord, error)
}

// =============================================================================
// BOM AND SNAPSHOTS
// =============================================================================

type BOMStore interface {
	// Put inserts or replaces the line for its parent/component pair.
	Put(ctx context.Context, line BOMLine) error

	// List returns every line, ordered by parent then component.
	List(ctx context.Context) ([]BOMLine, error)

	// ListByParent returns the lines under one parent.
	ListByParent(ctx context.Context, parent ComponentID) ([]BOMLine, error)

	Delete(ctx context.Context, parent, component ComponentID) error
}

type SnapshotStore interface {
	// PutBatch replaces the snapshots for the components they cover.
	PutBatch(ctx context.Context, snaps []OutlookSnapshot) error

	// Latest returns a component's most recent snapshot, nil when none.
	Latest(ctx context.Context, component ComponentID) (*OutlookSnapshot, error)

	// List returns the most recent snapshot per component.
	List(ctx context.Context) ([]OutlookSnapshot, error)
}

// =============================================================================
// STORE BUNDLE - All stores over one database
// =============================================================================

// Stores bundles every store the services touch. Implementations back
// the bundle with one database so WithTx can span all of them.
type Stores interface {
	Events() EventStore
	Components() ComponentStore
	Orders() OrderStore
	Goals() GoalStore
	Shipments() ShipmentStore
	BOM() BOMStore
	Snapshots() SnapshotStore
}

// TxStores adds transactional execution across the bundle.
type TxStores interface {
	Stores

	// WithTx executes fn against stores bound to one transaction.
	// An error from fn rolls everything back; nil commits.
	WithTx(ctx context.Context, fn func(Stores) error) error
}
