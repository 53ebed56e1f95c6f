/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the planning.TxStores bundle using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  planning.EventStore:     Append-only stock event log
  planning.ComponentStore: Component master records
  planning.OrderStore:     Purchase order book
  planning.GoalStore:      Weekly build goals
  planning.ShipmentStore:  Daily shipment figures
  planning.BOMStore:       Bill-of-material lines
  planning.SnapshotStore:  Cached outlook rows
  planning.TxStores:       All of the above inside one transaction

APPEND-ONLY ENFORCEMENT:
  The event store enforces append-only semantics:
  - No UPDATE statements on the stock_events table
  - No DELETE statements on the stock_events table
  - Corrections via compensating events only (see the receipt undo flow)

KEY TABLES:
  stock_events:      Immutable log of every on-hand change
  components:        Component master (codes, lead times, reorder rules)
  purchase_orders:   Open and received orders
  weekly_goals:      Build targets keyed by component and week
  shipments:         One row per component and day
  bom_lines:         Parent-to-component requirements
  outlook_snapshots: Cached projection results from the snapshot sweep

INDEXES:
  - idx_stock_events_component: Balance and runway queries (hot path)
  - idx_stock_events_reference: Receipt lookups by purchase order
  - idx_purchase_orders_number: Order numbers stay unique
  - idx_purchase_orders_status: Pending-order scans for incoming supply

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single pooled connection:
  SQLite allows one writer at a time, and separate pooled connections
  would each see a distinct ":memory:" database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/mrp.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  // Use with the stock ledger
  ledger := planning.NewStockLedger(store.Events())

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - planning/store.go: Interface definitions
  - planning/ledger.go: Domain rules layered on the event store
  - planning/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/forge/mrp-engine/planning"
)

// Store implements planning.TxStores using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite permits a single writer, and each pooled
	// connection to ":memory:" would get its own empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Component master
	CREATE TABLE IF NOT EXISTS components (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		unit TEXT NOT NULL,
		category TEXT,
		supplier TEXT,
		lead_time_days INTEGER NOT NULL DEFAULT 0,
		safety_stock TEXT NOT NULL DEFAULT '0',
		reorder_qty TEXT NOT NULL DEFAULT '0',
		minimum_order TEXT NOT NULL DEFAULT '0',
		order_multiple TEXT NOT NULL DEFAULT '0',
		critical_days INTEGER NOT NULL DEFAULT 0,
		warning_days INTEGER NOT NULL DEFAULT 0,
		caution_days INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_components_kind ON components(kind);

	-- Stock events (append-only ledger)
	CREATE TABLE IF NOT EXISTS stock_events (
		id TEXT PRIMARY KEY,
		component_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		quantity_value TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		day TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		notes TEXT,
		recorded_at TEXT NOT NULL,
		recorded_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_stock_events_component
		ON stock_events(component_id, day);
	CREATE INDEX IF NOT EXISTS idx_stock_events_reference
		ON stock_events(reference_id) WHERE reference_id IS NOT NULL;

	-- Purchase orders
	CREATE TABLE IF NOT EXISTS purchase_orders (
		id TEXT PRIMARY KEY,
		po_number TEXT NOT NULL,
		component_id TEXT NOT NULL,
		quantity_value TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		ordered_on TEXT NOT NULL,
		expected_on TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		received_on TEXT,
		received_value TEXT,
		supplier TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_orders_number
		ON purchase_orders(po_number);
	CREATE INDEX IF NOT EXISTS idx_purchase_orders_status
		ON purchase_orders(status);
	CREATE INDEX IF NOT EXISTS idx_purchase_orders_component
		ON purchase_orders(component_id);

	-- Weekly build goals
	CREATE TABLE IF NOT EXISTS weekly_goals (
		component_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		goal_value TEXT NOT NULL,
		goal_unit TEXT NOT NULL,
		notes TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (component_id, week_start)
	);

	-- Daily shipment figures
	CREATE TABLE IF NOT EXISTS shipments (
		component_id TEXT NOT NULL,
		day TEXT NOT NULL,
		quantity_value TEXT NOT NULL,
		quantity_unit TEXT NOT NULL,
		notes TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (component_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_shipments_day ON shipments(day);

	-- Bill of material
	CREATE TABLE IF NOT EXISTS bom_lines (
		parent_id TEXT NOT NULL,
		component_id TEXT NOT NULL,
		quantity_per TEXT NOT NULL,
		PRIMARY KEY (parent_id, component_id)
	);

	-- Cached outlook rows
	CREATE TABLE IF NOT EXISTS outlook_snapshots (
		id TEXT PRIMARY KEY,
		component_id TEXT NOT NULL,
		as_of TEXT NOT NULL,
		projected_end_value TEXT NOT NULL,
		projected_end_unit TEXT NOT NULL,
		run_out TEXT,
		days_of_inventory INTEGER NOT NULL DEFAULT 0,
		tier TEXT NOT NULL,
		needs_ordering INTEGER NOT NULL DEFAULT 0,
		suggested_value TEXT NOT NULL DEFAULT '0',
		suggested_unit TEXT NOT NULL,
		calculated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_outlook_snapshots_unique
		ON outlook_snapshots(component_id, as_of);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// STORE BUNDLE (planning.Stores interface)
// =============================================================================

func (s *Store) Events() planning.EventStore         { return sqlEvents{s: s, db: s.db} }
func (s *Store) Components() planning.ComponentStore { return sqlComponents{s: s, db: s.db} }
func (s *Store) Orders() planning.OrderStore         { return sqlOrders{s: s, db: s.db} }
func (s *Store) Goals() planning.GoalStore           { return sqlGoals{s: s, db: s.db} }
func (s *Store) Shipments() planning.ShipmentStore   { return sqlShipments{s: s, db: s.db} }
func (s *Store) BOM() planning.BOMStore              { return sqlBOM{s: s, db: s.db} }
func (s *Store) Snapshots() planning.SnapshotStore   { return sqlSnapshots{s: s, db: s.db} }

// =============================================================================
// EVENT STORE (planning.EventStore interface)
// =============================================================================

// Each view carries a locked flag: true while running inside WithTx, where
// the bundle mutex is already held and re-locking would deadlock. Views in
// a transaction also hold the *sql.Tx so their reads see in-flight writes.

type sqlEvents struct {
	s      *Store
	db     dbtx
	locked bool
}

// Append adds an event to the log.
func (es sqlEvents) Append(ctx context.Context, ev planning.StockEvent) error {
	if !es.locked {
		es.s.mu.Lock()
		defer es.s.mu.Unlock()
	}
	return insertEvent(ctx, es.db, ev)
}

// AppendBatch adds multiple events atomically.
func (es sqlEvents) AppendBatch(ctx context.Context, evs []planning.StockEvent) error {
	if es.locked {
		// Already inside a transaction; the caller's WithTx provides
		// the all-or-nothing guarantee.
		for _, ev := range evs {
			if err := insertEvent(ctx, es.db, ev); err != nil {
				return err
			}
		}
		return nil
	}

	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	sqlTx, err := es.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, ev := range evs {
		if err := insertEvent(ctx, sqlTx, ev); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func insertEvent(ctx context.Context, db dbtx, ev planning.StockEvent) error {
	query := `
		INSERT INTO stock_events
		(id, component_id, event_type, quantity_value, quantity_unit, day,
		 reference_id, reason, notes, recorded_at, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	recordedAt := ev.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, query,
		ev.ID,
		ev.Component,
		ev.Type,
		ev.Quantity.Value.String(),
		ev.Quantity.Unit,
		ev.Day.String(),
		nullString(string(ev.Reference)),
		nullString(ev.Reason),
		nullString(ev.Notes),
		recordedAt.Format(time.RFC3339),
		nullString(ev.RecordedBy),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return planning.ErrDuplicateEvent
		}
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// Load returns all events for a component, oldest first.
func (es sqlEvents) Load(ctx context.Context, component planning.ComponentID) ([]planning.StockEvent, error) {
	if !es.locked {
		es.s.mu.RLock()
		defer es.s.mu.RUnlock()
	}

	query := `
		SELECT id, component_id, event_type, quantity_value, quantity_unit, day,
		       reference_id, reason, notes, recorded_at, recorded_by
		FROM stock_events
		WHERE component_id = ?
		ORDER BY day ASC, recorded_at ASC
	`

	return queryEvents(ctx, es.db, query, component)
}

// LoadRange returns a component's events inside the window.
func (es sqlEvents) LoadRange(ctx context.Context, component planning.ComponentID, window planning.Period) ([]planning.StockEvent, error) {
	if !es.locked {
		es.s.mu.RLock()
		defer es.s.mu.RUnlock()
	}

	query := `
		SELECT id, component_id, event_type, quantity_value, quantity_unit, day,
		       reference_id, reason, notes, recorded_at, recorded_by
		FROM stock_events
		WHERE component_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC, recorded_at ASC
	`

	return queryEvents(ctx, es.db, query, component, window.Start.String(), window.End.String())
}

// LoadAll returns every component's events inside the window.
func (es sqlEvents) LoadAll(ctx context.Context, window planning.Period) ([]planning.StockEvent, error) {
	if !es.locked {
		es.s.mu.RLock()
		defer es.s.mu.RUnlock()
	}

	query := `
		SELECT id, component_id, event_type, quantity_value, quantity_unit, day,
		       reference_id, reason, notes, recorded_at, recorded_by
		FROM stock_events
		WHERE day >= ? AND day <= ?
		ORDER BY component_id ASC, day ASC, recorded_at ASC
	`

	return queryEvents(ctx, es.db, query, window.Start.String(), window.End.String())
}

// Exists checks if an event ID exists.
func (es sqlEvents) Exists(ctx context.Context, id planning.EventID) (bool, error) {
	if !es.locked {
		es.s.mu.RLock()
		defer es.s.mu.RUnlock()
	}

	var count int
	err := es.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stock_events WHERE id = ?",
		id,
	).Scan(&count)

	return count > 0, err
}

// ByReference returns the events recorded against a purchase order.
func (es sqlEvents) ByReference(ctx context.Context, order planning.OrderID) ([]planning.StockEvent, error) {
	if !es.locked {
		es.s.mu.RLock()
		defer es.s.mu.RUnlock()
	}

	query := `
		SELECT id, component_id, event_type, quantity_value, quantity_unit, day,
		       reference_id, reason, notes, recorded_at, recorded_by
		FROM stock_events
		WHERE reference_id = ?
		ORDER BY recorded_at ASC
	`

	return queryEvents(ctx, es.db, query, order)
}

func queryEvents(ctx context.Context, db dbtx, query string, args ...any) ([]planning.StockEvent, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []planning.StockEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (planning.StockEvent, error) {
	var (
		ev            planning.StockEvent
		quantityValue string
		quantityUnit  string
		day           string
		referenceID   sql.NullString
		reason        sql.NullString
		notes         sql.NullString
		recordedAt    string
		recordedBy    sql.NullString
	)

	err := rows.Scan(
		&ev.ID, &ev.Component, &ev.Type,
		&quantityValue, &quantityUnit, &day,
		&referenceID, &reason, &notes, &recordedAt, &recordedBy,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan event: %w", err)
	}

	ev.Quantity = parseQuantity(quantityValue, quantityUnit)
	ev.Day, _ = planning.ParseTimePoint(day)
	ev.Reference = planning.OrderID(referenceID.String)
	ev.Reason = reason.String
	ev.Notes = notes.String
	ev.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
	ev.RecordedBy = recordedBy.String

	return ev, nil
}

// =============================================================================
// COMPONENT STORE (planning.ComponentStore interface)
// =============================================================================

type sqlComponents struct {
	s      *Store
	db     dbtx
	locked bool
}

// Put inserts or replaces a component record.
func (cs sqlComponents) Put(ctx context.Context, c planning.Component) error {
	if !cs.locked {
		cs.s.mu.Lock()
		defer cs.s.mu.Unlock()
	}

	query := `
		INSERT INTO components
		(id, name, kind, unit, category, supplier, lead_time_days,
		 safety_stock, reorder_qty, minimum_order, order_multiple,
		 critical_days, warning_days, caution_days, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			unit = excluded.unit,
			category = excluded.category,
			supplier = excluded.supplier,
			lead_time_days = excluded.lead_time_days,
			safety_stock = excluded.safety_stock,
			reorder_qty = excluded.reorder_qty,
			minimum_order = excluded.minimum_order,
			order_multiple = excluded.order_multiple,
			critical_days = excluded.critical_days,
			warning_days = excluded.warning_days,
			caution_days = excluded.caution_days,
			active = excluded.active
	`

	_, err := cs.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Kind, c.Unit, c.Category, c.Supplier,
		c.LeadTimeDays,
		c.SafetyStock.Value.String(),
		c.ReorderQty.Value.String(),
		c.MinimumOrder.Value.String(),
		c.OrderMultiple.Value.String(),
		c.Thresholds.CriticalDays,
		c.Thresholds.WarningDays,
		c.Thresholds.CautionDays,
		c.Active,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get retrieves a component by ID.
func (cs sqlComponents) Get(ctx context.Context, id planning.ComponentID) (*planning.Component, error) {
	if !cs.locked {
		cs.s.mu.RLock()
		defer cs.s.mu.RUnlock()
	}

	row := cs.db.QueryRowContext(ctx, componentSelect+" WHERE id = ?", id)

	c, err := scanComponent(row)
	if err == sql.ErrNoRows {
		return nil, planning.ErrComponentNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns components ordered by code.
func (cs sqlComponents) List(ctx context.Context, activeOnly bool) ([]planning.Component, error) {
	if !cs.locked {
		cs.s.mu.RLock()
		defer cs.s.mu.RUnlock()
	}

	query := componentSelect
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY id ASC"

	rows, err := cs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []planning.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, *c)
	}
	return components, rows.Err()
}

// Delete removes a component.
func (cs sqlComponents) Delete(ctx context.Context, id planning.ComponentID) error {
	if !cs.locked {
		cs.s.mu.Lock()
		defer cs.s.mu.Unlock()
	}

	_, err := cs.db.ExecContext(ctx, "DELETE FROM components WHERE id = ?", id)
	return err
}

const componentSelect = `
	SELECT id, name, kind, unit, category, supplier, lead_time_days,
	       safety_stock, reorder_qty, minimum_order, order_multiple,
	       critical_days, warning_days, caution_days, active
	FROM components`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(row scanner) (*planning.Component, error) {
	var (
		c             planning.Component
		category      sql.NullString
		supplier      sql.NullString
		safetyStock   string
		reorderQty    string
		minimumOrder  string
		orderMultiple string
	)

	err := row.Scan(
		&c.ID, &c.Name, &c.Kind, &c.Unit, &category, &supplier,
		&c.LeadTimeDays, &safetyStock, &reorderQty, &minimumOrder, &orderMultiple,
		&c.Thresholds.CriticalDays, &c.Thresholds.WarningDays, &c.Thresholds.CautionDays,
		&c.Active,
	)
	if err != nil {
		return nil, err
	}

	c.Category = category.String
	c.Supplier = supplier.String
	c.SafetyStock = parseQuantity(safetyStock, string(c.Unit))
	c.ReorderQty = parseQuantity(reorderQty, string(c.Unit))
	c.MinimumOrder = parseQuantity(minimumOrder, string(c.Unit))
	c.OrderMultiple = parseQuantity(orderMultiple, string(c.Unit))

	return &c, nil
}

// =============================================================================
// ORDER STORE (planning.OrderStore interface)
// =============================================================================

type sqlOrders struct {
	s      *Store
	db     dbtx
	locked bool
}

// Create inserts a new purchase order.
func (os sqlOrders) Create(ctx context.Context, po planning.PurchaseOrder) error {
	if !os.locked {
		os.s.mu.Lock()
		defer os.s.mu.Unlock()
	}

	query := `
		INSERT INTO purchase_orders
		(id, po_number, component_id, quantity_value, quantity_unit,
		 ordered_on, expected_on, status, received_on, received_value,
		 supplier, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := os.db.ExecContext(ctx, query,
		po.ID, po.Number, po.Component,
		po.Quantity.Value.String(), po.Quantity.Unit,
		po.Ordered.String(), po.Expected.String(), po.Status,
		nullTimePoint(po.ReceivedOn), nullQuantity(po.ReceivedQty),
		nullString(po.Supplier), nullString(po.Notes),
		time.Now().UTC().Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return planning.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// Get retrieves an order by ID.
func (os sqlOrders) Get(ctx context.Context, id planning.OrderID) (*planning.PurchaseOrder, error) {
	if !os.locked {
		os.s.mu.RLock()
		defer os.s.mu.RUnlock()
	}
	return getOrder(ctx, os.db, orderSelect+" WHERE id = ?", id)
}

// GetByNumber retrieves an order by its human-facing number.
func (os sqlOrders) GetByNumber(ctx context.Context, number string) (*planning.PurchaseOrder, error) {
	if !os.locked {
		os.s.mu.RLock()
		defer os.s.mu.RUnlock()
	}
	return getOrder(ctx, os.db, orderSelect+" WHERE po_number = ?", number)
}

// List returns matching orders ordered by expected date.
func (os sqlOrders) List(ctx context.Context, filter planning.OrderFilter) ([]planning.PurchaseOrder, error) {
	if !os.locked {
		os.s.mu.RLock()
		defer os.s.mu.RUnlock()
	}

	query := orderSelect
	var conds []string
	var args []any
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Component != nil {
		conds = append(conds, "component_id = ?")
		args = append(args, *filter.Component)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY expected_on ASC, po_number ASC"

	rows, err := os.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []planning.PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *po)
	}
	return orders, rows.Err()
}

// Update replaces an existing order row.
func (os sqlOrders) Update(ctx context.Context, po planning.PurchaseOrder) error {
	if !os.locked {
		os.s.mu.Lock()
		defer os.s.mu.Unlock()
	}

	query := `
		UPDATE purchase_orders SET
			po_number = ?,
			component_id = ?,
			quantity_value = ?,
			quantity_unit = ?,
			ordered_on = ?,
			expected_on = ?,
			status = ?,
			received_on = ?,
			received_value = ?,
			supplier = ?,
			notes = ?
		WHERE id = ?
	`

	res, err := os.db.ExecContext(ctx, query,
		po.Number, po.Component,
		po.Quantity.Value.String(), po.Quantity.Unit,
		po.Ordered.String(), po.Expected.String(), po.Status,
		nullTimePoint(po.ReceivedOn), nullQuantity(po.ReceivedQty),
		nullString(po.Supplier), nullString(po.Notes),
		po.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return planning.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("failed to update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return planning.ErrOrderNotFound
	}
	return nil
}

// Delete removes an order.
func (os sqlOrders) Delete(ctx context.Context, id planning.OrderID) error {
	if !os.locked {
		os.s.mu.Lock()
		defer os.s.mu.Unlock()
	}

	_, err := os.db.ExecContext(ctx, "DELETE FROM purchase_orders WHERE id = ?", id)
	return err
}

const orderSelect = `
	SELECT id, po_number, component_id, quantity_value, quantity_unit,
	       ordered_on, expected_on, status, received_on, received_value,
	       supplier, notes
	FROM purchase_orders`

func getOrder(ctx context.Context, db dbtx, query string, args ...any) (*planning.PurchaseOrder, error) {
	row := db.QueryRowContext(ctx, query, args...)

	po, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, planning.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return po, nil
}

func scanOrder(row scanner) (*planning.PurchaseOrder, error) {
	var (
		po            planning.PurchaseOrder
		quantityValue string
		quantityUnit  string
		orderedOn     string
		expectedOn    string
		receivedOn    sql.NullString
		receivedValue sql.NullString
		supplier      sql.NullString
		notes         sql.NullString
	)

	err := row.Scan(
		&po.ID, &po.Number, &po.Component,
		&quantityValue, &quantityUnit,
		&orderedOn, &expectedOn, &po.Status,
		&receivedOn, &receivedValue, &supplier, &notes,
	)
	if err != nil {
		return nil, err
	}

	po.Quantity = parseQuantity(quantityValue, quantityUnit)
	po.Ordered, _ = planning.ParseTimePoint(orderedOn)
	po.Expected, _ = planning.ParseTimePoint(expectedOn)
	po.Supplier = supplier.String
	po.Notes = notes.String

	if receivedOn.Valid {
		t, _ := planning.ParseTimePoint(receivedOn.String)
		po.ReceivedOn = &t
	}
	if receivedValue.Valid {
		q := parseQuantity(receivedValue.String, quantityUnit)
		po.ReceivedQty = &q
	}

	return &po, nil
}

// =============================================================================
// GOAL STORE (planning.GoalStore interface)
// =============================================================================

type sqlGoals struct {
	s      *Store
	db     dbtx
	locked bool
}

// Upsert records or replaces the goal for component+week.
func (gs sqlGoals) Upsert(ctx context.Context, goal planning.WeeklyGoal) error {
	if !gs.locked {
		gs.s.mu.Lock()
		defer gs.s.mu.Unlock()
	}

	query := `
		INSERT INTO weekly_goals (component_id, week_start, goal_value, goal_unit, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(component_id, week_start) DO UPDATE SET
			goal_value = excluded.goal_value,
			goal_unit = excluded.goal_unit,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := gs.db.ExecContext(ctx, query,
		goal.Component, goal.WeekStart.String(),
		goal.Goal.Value.String(), goal.Goal.Unit,
		nullString(goal.Notes),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get returns the goal for component+week, nil when none is recorded.
func (gs sqlGoals) Get(ctx context.Context, component planning.ComponentID, weekStart planning.TimePoint) (*planning.WeeklyGoal, error) {
	if !gs.locked {
		gs.s.mu.RLock()
		defer gs.s.mu.RUnlock()
	}

	var (
		goal      planning.WeeklyGoal
		start     string
		goalValue string
		goalUnit  string
		notes     sql.NullString
	)

	err := gs.db.QueryRowContext(ctx,
		`SELECT component_id, week_start, goal_value, goal_unit, notes
		 FROM weekly_goals WHERE component_id = ? AND week_start = ?`,
		component, weekStart.String(),
	).Scan(&goal.Component, &start, &goalValue, &goalUnit, &notes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	goal.WeekStart, _ = planning.ParseTimePoint(start)
	goal.Goal = parseQuantity(goalValue, goalUnit)
	goal.Notes = notes.String
	return &goal, nil
}

// ListWeek returns every goal recorded for the week, ordered by code.
func (gs sqlGoals) ListWeek(ctx context.Context, weekStart planning.TimePoint) ([]planning.WeeklyGoal, error) {
	if !gs.locked {
		gs.s.mu.RLock()
		defer gs.s.mu.RUnlock()
	}

	rows, err := gs.db.QueryContext(ctx,
		`SELECT component_id, week_start, goal_value, goal_unit, notes
		 FROM weekly_goals WHERE week_start = ? ORDER BY component_id ASC`,
		weekStart.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []planning.WeeklyGoal
	for rows.Next() {
		var (
			goal      planning.WeeklyGoal
			start     string
			goalValue string
			goalUnit  string
			notes     sql.NullString
		)
		if err := rows.Scan(&goal.Component, &start, &goalValue, &goalUnit, &notes); err != nil {
			return nil, err
		}
		goal.WeekStart, _ = planning.ParseTimePoint(start)
		goal.Goal = parseQuantity(goalValue, goalUnit)
		goal.Notes = notes.String
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// =============================================================================
// SHIPMENT STORE (planning.ShipmentStore interface)
// =============================================================================

type sqlShipments struct {
	s      *Store
	db     dbtx
	locked bool
}

// Record inserts or replaces the day's shipment figure.
func (ss sqlShipments) Record(ctx context.Context, rec planning.ShipmentRecord) error {
	if !ss.locked {
		ss.s.mu.Lock()
		defer ss.s.mu.Unlock()
	}

	query := `
		INSERT INTO shipments (component_id, day, quantity_value, quantity_unit, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(component_id, day) DO UPDATE SET
			quantity_value = excluded.quantity_value,
			quantity_unit = excluded.quantity_unit,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := ss.db.ExecContext(ctx, query,
		rec.Component, rec.Day.String(),
		rec.Quantity.Value.String(), rec.Quantity.Unit,
		nullString(rec.Notes),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// OnDay returns the day's record, nil when nothing was shipped.
func (ss sqlShipments) OnDay(ctx context.Context, component planning.ComponentID, day planning.TimePoint) (*planning.ShipmentRecord, error) {
	if !ss.locked {
		ss.s.mu.RLock()
		defer ss.s.mu.RUnlock()
	}

	var (
		rec           planning.ShipmentRecord
		dayStr        string
		quantityValue string
		quantityUnit  string
		notes         sql.NullString
	)

	err := ss.db.QueryRowContext(ctx,
		`SELECT component_id, day, quantity_value, quantity_unit, notes
		 FROM shipments WHERE component_id = ? AND day = ?`,
		component, day.String(),
	).Scan(&rec.Component, &dayStr, &quantityValue, &quantityUnit, &notes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Day, _ = planning.ParseTimePoint(dayStr)
	rec.Quantity = parseQuantity(quantityValue, quantityUnit)
	rec.Notes = notes.String
	return &rec, nil
}

// TotalInWindow sums a component's shipments inside the window.
// Decimal strings are summed in Go rather than with SQL SUM, which would
// fall back to float arithmetic.
func (ss sqlShipments) TotalInWindow(ctx context.Context, component planning.ComponentID, window planning.Period) (planning.Quantity, error) {
	if !ss.locked {
		ss.s.mu.RLock()
		defer ss.s.mu.RUnlock()
	}

	rows, err := ss.db.QueryContext(ctx,
		`SELECT quantity_value, quantity_unit FROM shipments
		 WHERE component_id = ? AND day >= ? AND day <= ?`,
		component, window.Start.String(), window.End.String(),
	)
	if err != nil {
		return planning.Quantity{}, err
	}
	defer rows.Close()

	var total planning.Quantity
	for rows.Next() {
		var quantityValue, quantityUnit string
		if err := rows.Scan(&quantityValue, &quantityUnit); err != nil {
			return planning.Quantity{}, err
		}
		q := parseQuantity(quantityValue, quantityUnit)
		if total.Unit == "" {
			total.Unit = q.Unit
		}
		total = total.Add(q)
	}
	return total, rows.Err()
}

// ListWindow returns all records inside the window ordered by day.
func (ss sqlShipments) ListWindow(ctx context.Context, window planning.Period) ([]planning.ShipmentRecord, error) {
	if !ss.locked {
		ss.s.mu.RLock()
		defer ss.s.mu.RUnlock()
	}

	rows, err := ss.db.QueryContext(ctx,
		`SELECT component_id, day, quantity_value, quantity_unit, notes
		 FROM shipments WHERE day >= ? AND day <= ?
		 ORDER BY day ASC, component_id ASC`,
		window.Start.String(), window.End.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []planning.ShipmentRecord
	for rows.Next() {
		var (
			rec           planning.ShipmentRecord
			dayStr        string
			quantityValue string
			quantityUnit  string
			notes         sql.NullString
		)
		if err := rows.Scan(&rec.Component, &dayStr, &quantityValue, &quantityUnit, &notes); err != nil {
			return nil, err
		}
		rec.Day, _ = planning.ParseTimePoint(dayStr)
		rec.Quantity = parseQuantity(quantityValue, quantityUnit)
		rec.Notes = notes.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// BOM STORE (planning.BOMStore interface)
// =============================================================================

type sqlBOM struct {
	s      *Store
	db     dbtx
	locked bool
}

// Put inserts or replaces the line for its parent/component pair.
func (bs sqlBOM) Put(ctx context.Context, line planning.BOMLine) error {
	if !bs.locked {
		bs.s.mu.Lock()
		defer bs.s.mu.Unlock()
	}

	query := `
		INSERT INTO bom_lines (parent_id, component_id, quantity_per)
		VALUES (?, ?, ?)
		ON CONFLICT(parent_id, component_id) DO UPDATE SET
			quantity_per = excluded.quantity_per
	`

	_, err := bs.db.ExecContext(ctx, query,
		line.Parent, line.Component, line.QuantityPer.String(),
	)
	return err
}

// List returns every line, ordered by parent then component.
func (bs sqlBOM) List(ctx context.Context) ([]planning.BOMLine, error) {
	if !bs.locked {
		bs.s.mu.RLock()
		defer bs.s.mu.RUnlock()
	}
	return queryBOMLines(ctx, bs.db,
		"SELECT parent_id, component_id, quantity_per FROM bom_lines ORDER BY parent_id ASC, component_id ASC")
}

// ListByParent returns the lines under one parent.
func (bs sqlBOM) ListByParent(ctx context.Context, parent planning.ComponentID) ([]planning.BOMLine, error) {
	if !bs.locked {
		bs.s.mu.RLock()
		defer bs.s.mu.RUnlock()
	}
	return queryBOMLines(ctx, bs.db,
		"SELECT parent_id, component_id, quantity_per FROM bom_lines WHERE parent_id = ? ORDER BY component_id ASC",
		parent)
}

// Delete removes a line.
func (bs sqlBOM) Delete(ctx context.Context, parent, component planning.ComponentID) error {
	if !bs.locked {
		bs.s.mu.Lock()
		defer bs.s.mu.Unlock()
	}

	_, err := bs.db.ExecContext(ctx,
		"DELETE FROM bom_lines WHERE parent_id = ? AND component_id = ?",
		parent, component)
	return err
}

func queryBOMLines(ctx context.Context, db dbtx, query string, args ...any) ([]planning.BOMLine, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []planning.BOMLine
	for rows.Next() {
		var line planning.BOMLine
		var quantityPer string
		if err := rows.Scan(&line.Parent, &line.Component, &quantityPer); err != nil {
			return nil, err
		}
		line.QuantityPer = planning.MustParseDecimal(quantityPer)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// =============================================================================
// SNAPSHOT STORE (planning.SnapshotStore interface)
// =============================================================================

type sqlSnapshots struct {
	s      *Store
	db     dbtx
	locked bool
}

// PutBatch replaces the snapshots for the components they cover.
func (ns sqlSnapshots) PutBatch(ctx context.Context, snaps []planning.OutlookSnapshot) error {
	if !ns.locked {
		ns.s.mu.Lock()
		defer ns.s.mu.Unlock()
	}

	query := `
		INSERT INTO outlook_snapshots
		(id, component_id, as_of, projected_end_value, projected_end_unit,
		 run_out, days_of_inventory, tier, needs_ordering,
		 suggested_value, suggested_unit, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(component_id, as_of) DO UPDATE SET
			id = excluded.id,
			projected_end_value = excluded.projected_end_value,
			projected_end_unit = excluded.projected_end_unit,
			run_out = excluded.run_out,
			days_of_inventory = excluded.days_of_inventory,
			tier = excluded.tier,
			needs_ordering = excluded.needs_ordering,
			suggested_value = excluded.suggested_value,
			suggested_unit = excluded.suggested_unit,
			calculated_at = excluded.calculated_at
	`

	for _, snap := range snaps {
		_, err := ns.db.ExecContext(ctx, query,
			snap.ID, snap.Component, snap.AsOf.String(),
			snap.ProjectedEnd.Value.String(), snap.ProjectedEnd.Unit,
			nullTimePoint(snap.RunOut),
			snap.DaysOfInventory, snap.Tier, snap.NeedsOrdering,
			snap.SuggestedQty.Value.String(), snap.SuggestedQty.Unit,
			snap.CalculatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	return nil
}

// Latest returns a component's most recent snapshot, nil when none.
func (ns sqlSnapshots) Latest(ctx context.Context, component planning.ComponentID) (*planning.OutlookSnapshot, error) {
	if !ns.locked {
		ns.s.mu.RLock()
		defer ns.s.mu.RUnlock()
	}

	row := ns.db.QueryRowContext(ctx,
		snapshotSelect+" WHERE component_id = ? ORDER BY as_of DESC LIMIT 1",
		component)

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns the most recent snapshot per component.
func (ns sqlSnapshots) List(ctx context.Context) ([]planning.OutlookSnapshot, error) {
	if !ns.locked {
		ns.s.mu.RLock()
		defer ns.s.mu.RUnlock()
	}

	query := snapshotSelect + `
		WHERE as_of = (
			SELECT MAX(as_of) FROM outlook_snapshots inner_snaps
			WHERE inner_snaps.component_id = outlook_snapshots.component_id
		)
		ORDER BY component_id ASC`

	rows, err := ns.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []planning.OutlookSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

const snapshotSelect = `
	SELECT id, component_id, as_of, projected_end_value, projected_end_unit,
	       run_out, days_of_inventory, tier, needs_ordering,
	       suggested_value, suggested_unit, calculated_at
	FROM outlook_snapshots`

func scanSnapshot(row scanner) (*planning.OutlookSnapshot, error) {
	var (
		snap           planning.OutlookSnapshot
		asOf           string
		projectedValue string
		projectedUnit  string
		runOut         sql.NullString
		suggestedValue string
		suggestedUnit  string
		calculatedAt   string
	)

	err := row.Scan(
		&snap.ID, &snap.Component, &asOf,
		&projectedValue, &projectedUnit,
		&runOut, &snap.DaysOfInventory, &snap.Tier, &snap.NeedsOrdering,
		&suggestedValue, &suggestedUnit, &calculatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.AsOf, _ = planning.ParseTimePoint(asOf)
	snap.ProjectedEnd = parseQuantity(projectedValue, projectedUnit)
	snap.SuggestedQty = parseQuantity(suggestedValue, suggestedUnit)
	snap.CalculatedAt, _ = time.Parse(time.RFC3339, calculatedAt)

	if runOut.Valid {
		t, _ := planning.ParseTimePoint(runOut.String)
		snap.RunOut = &t
	}

	return &snap, nil
}

// =============================================================================
// TRANSACTIONS (planning.TxStores interface)
// =============================================================================

// WithTx executes a function within a database transaction. The stores
// handed to fn are bound to the transaction, so reads inside fn observe
// writes made earlier in the same fn.
func (s *Store) WithTx(ctx context.Context, fn func(planning.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(txStores{s: s, tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStores struct {
	s  *Store
	tx *sql.Tx
}

func (ts txStores) Events() planning.EventStore {
	return sqlEvents{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) Components() planning.ComponentStore {
	return sqlComponents{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) Orders() planning.OrderStore {
	return sqlOrders{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) Goals() planning.GoalStore {
	return sqlGoals{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) Shipments() planning.ShipmentStore {
	return sqlShipments{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) BOM() planning.BOMStore {
	return sqlBOM{s: ts.s, db: ts.tx, locked: true}
}
func (ts txStores) Snapshots() planning.SnapshotStore {
	return sqlSnapshots{s: ts.s, db: ts.tx, locked: true}
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"stock_events", "outlook_snapshots", "shipments",
		"weekly_goals", "bom_lines", "purchase_orders", "components",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTimePoint(t *planning.TimePoint) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func nullQuantity(q *planning.Quantity) sql.NullString {
	if q == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: q.Value.String(), Valid: true}
}

func parseQuantity(value, unit string) planning.Quantity {
	return planning.Quantity{
		Value: planning.MustParseDecimal(value),
		Unit:  planning.Unit(unit),
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
