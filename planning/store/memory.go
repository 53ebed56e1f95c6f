// Package store provides the in-memory Stores implementation (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/forge/mrp-engine/planning"
)

// =============================================================================
// MEMORY STATE - All tables behind one mutex
// =============================================================================

type goalKey struct {
	Component planning.ComponentID
	Week      string
}

type shipKey struct {
	Component planning.ComponentID
	Day       string
}

type bomKey struct {
	Parent    planning.ComponentID
	Component planning.ComponentID
}

type memoryState struct {
	events      map[planning.ComponentID][]planning.StockEvent
	eventIDs    map[planning.EventID]bool
	byReference map[planning.OrderID][]planning.StockEvent

	components map[planning.ComponentID]planning.Component
	orders     map[planning.OrderID]planning.PurchaseOrder
	orderNums  map[string]planning.OrderID
	goals      map[goalKey]planning.WeeklyGoal
	shipments  map[shipKey]planning.ShipmentRecord
	bom        map[bomKey]planning.BOMLine
	snapshots  map[planning.ComponentID]planning.OutlookSnapshot
}

func newMemoryState() *memoryState {
	return &memoryState{
		events:      make(map[planning.ComponentID][]planning.StockEvent),
		eventIDs:    make(map[planning.EventID]bool),
		byReference: make(map[planning.OrderID][]planning.StockEvent),
		components:  make(map[planning.ComponentID]planning.Component),
		orders:      make(map[planning.OrderID]planning.PurchaseOrder),
		orderNums:   make(map[string]planning.OrderID),
		goals:       make(map[goalKey]planning.WeeklyGoal),
		shipments:   make(map[shipKey]planning.ShipmentRecord),
		bom:         make(map[bomKey]planning.BOMLine),
		snapshots:   make(map[planning.ComponentID]planning.OutlookSnapshot),
	}
}

func (s *memoryState) clone() *memoryState {
	out := newMemoryState()
	for k, v := range s.events {
		out.events[k] = append([]planning.StockEvent{}, v...)
	}
	for k, v := range s.eventIDs {
		out.eventIDs[k] = v
	}
	for k, v := range s.byReference {
		out.byReference[k] = append([]planning.StockEvent{}, v...)
	}
	for k, v := range s.components {
		out.components[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	for k, v := range s.orderNums {
		out.orderNums[k] = v
	}
	for k, v := range s.goals {
		out.goals[k] = v
	}
	for k, v := range s.shipments {
		out.shipments[k] = v
	}
	for k, v := range s.bom {
		out.bom[k] = v
	}
	for k, v := range s.snapshots {
		out.snapshots[k] = v
	}
	return out
}

func (s *memoryState) appendEvent(ev planning.StockEvent) error {
	if ev.ID != "" && s.eventIDs[ev.ID] {
		return planning.ErrDuplicateEvent
	}
	evs := s.events[ev.Component]

	// Binary search for the insertion point keeps each component's events
	// sorted by day without a full re-sort per write.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].Day.After(ev.Day)
	})
	evs = append(evs, planning.StockEvent{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	s.events[ev.Component] = evs

	if ev.ID != "" {
		s.eventIDs[ev.ID] = true
	}
	if ev.Reference != "" {
		s.byReference[ev.Reference] = append(s.byReference[ev.Reference], ev)
	}
	return nil
}

// =============================================================================
// MEMORY - planning.Stores over the in-memory state
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state *memoryState
}

func NewMemory() *Memory {
	return &Memory{state: newMemoryState()}
}

func (m *Memory) Events() planning.EventStore         { return memEvents{m: m} }
func (m *Memory) Components() planning.ComponentStore { return memComponents{m: m} }
func (m *Memory) Orders() planning.OrderStore         { return memOrders{m: m} }
func (m *Memory) Goals() planning.GoalStore           { return memGoals{m: m} }
func (m *Memory) Shipments() planning.ShipmentStore   { return memShipments{m: m} }
func (m *Memory) BOM() planning.BOMStore              { return memBOM{m: m} }
func (m *Memory) Snapshots() planning.SnapshotStore   { return memSnapshots{m: m} }

// Each view carries a locked flag: true while running inside WithTx, where
// the bundle mutex is already held and re-locking would deadlock.

type memEvents struct {
	m      *Memory
	locked bool
}

func (s memEvents) Append(_ context.Context, ev planning.StockEvent) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	return s.m.state.appendEvent(ev)
}

func (s memEvents) AppendBatch(_ context.Context, evs []planning.StockEvent) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	// Check all IDs first so the batch is all-or-nothing.
	for _, ev := range evs {
		if ev.ID != "" && s.m.state.eventIDs[ev.ID] {
			return planning.ErrDuplicateEvent
		}
	}
	for _, ev := range evs {
		if err := s.m.state.appendEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (s memEvents) Load(_ context.Context, component planning.ComponentID) ([]planning.StockEvent, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	result := make([]planning.StockEvent, len(s.m.state.events[component]))
	copy(result, s.m.state.events[component])
	return result, nil
}

func (s memEvents) LoadRange(_ context.Context, component planning.ComponentID, window planning.Period) ([]planning.StockEvent, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.StockEvent
	for _, ev := range s.m.state.events[component] {
		if window.Contains(ev.Day) {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (s memEvents) LoadAll(_ context.Context, window planning.Period) ([]planning.StockEvent, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var ids []planning.ComponentID
	for id := range s.m.state.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []planning.StockEvent
	for _, id := range ids {
		for _, ev := range s.m.state.events[id] {
			if window.Contains(ev.Day) {
				result = append(result, ev)
			}
		}
	}
	return result, nil
}

func (s memEvents) Exists(_ context.Context, id planning.EventID) (bool, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	return s.m.state.eventIDs[id], nil
}

func (s memEvents) ByReference(_ context.Context, order planning.OrderID) ([]planning.StockEvent, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	result := make([]planning.StockEvent, len(s.m.state.byReference[order]))
	copy(result, s.m.state.byReference[order])
	return result, nil
}

type memComponents struct {
	m      *Memory
	locked bool
}

func (s memComponents) Put(_ context.Context, c planning.Component) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	s.m.state.components[c.ID] = c
	return nil
}

func (s memComponents) Get(_ context.Context, id planning.ComponentID) (*planning.Component, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	c, ok := s.m.state.components[id]
	if !ok {
		return nil, planning.ErrComponentNotFound
	}
	return &c, nil
}

func (s memComponents) List(_ context.Context, activeOnly bool) ([]planning.Component, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.Component
	for _, c := range s.m.state.components {
		if activeOnly && !c.Active {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s memComponents) Delete(_ context.Context, id planning.ComponentID) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	delete(s.m.state.components, id)
	return nil
}

type memOrders struct {
	m      *Memory
	locked bool
}

func (s memOrders) Create(_ context.Context, po planning.PurchaseOrder) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	if _, taken := s.m.state.orderNums[po.Number]; taken {
		return planning.ErrDuplicateOrderNumber
	}
	s.m.state.orders[po.ID] = po
	s.m.state.orderNums[po.Number] = po.ID
	return nil
}

func (s memOrders) Get(_ context.Context, id planning.OrderID) (*planning.PurchaseOrder, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	po, ok := s.m.state.orders[id]
	if !ok {
		return nil, planning.ErrOrderNotFound
	}
	return &po, nil
}

func (s memOrders) GetByNumber(_ context.Context, number string) (*planning.PurchaseOrder, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	id, ok := s.m.state.orderNums[number]
	if !ok {
		return nil, planning.ErrOrderNotFound
	}
	po := s.m.state.orders[id]
	return &po, nil
}

func (s memOrders) List(_ context.Context, filter planning.OrderFilter) ([]planning.PurchaseOrder, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.PurchaseOrder
	for _, po := range s.m.state.orders {
		if filter.Status != nil && po.Status != *filter.Status {
			continue
		}
		if filter.Component != nil && po.Component != *filter.Component {
			continue
		}
		result = append(result, po)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Expected.Equal(result[j].Expected) {
			return result[i].Number < result[j].Number
		}
		return result[i].Expected.Before(result[j].Expected)
	})
	return result, nil
}

func (s memOrders) Update(_ context.Context, po planning.PurchaseOrder) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	existing, ok := s.m.state.orders[po.ID]
	if !ok {
		return planning.ErrOrderNotFound
	}
	if existing.Number != po.Number {
		delete(s.m.state.orderNums, existing.Number)
		s.m.state.orderNums[po.Number] = po.ID
	}
	s.m.state.orders[po.ID] = po
	return nil
}

func (s memOrders) Delete(_ context.Context, id planning.OrderID) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	po, ok := s.m.state.orders[id]
	if !ok {
		return nil
	}
	delete(s.m.state.orders, id)
	delete(s.m.state.orderNums, po.Number)
	return nil
}

type memGoals struct {
	m      *Memory
	locked bool
}

func (s memGoals) Upsert(_ context.Context, goal planning.WeeklyGoal) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	k := goalKey{Component: goal.Component, Week: goal.WeekStart.String()}
	s.m.state.goals[k] = goal
	return nil
}

func (s memGoals) Get(_ context.Context, component planning.ComponentID, weekStart planning.TimePoint) (*planning.WeeklyGoal, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	k := goalKey{Component: component, Week: weekStart.String()}
	goal, ok := s.m.state.goals[k]
	if !ok {
		return nil, nil
	}
	return &goal, nil
}

func (s memGoals) ListWeek(_ context.Context, weekStart planning.TimePoint) ([]planning.WeeklyGoal, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	week := weekStart.String()
	var result []planning.WeeklyGoal
	for k, goal := range s.m.state.goals {
		if k.Week == week {
			result = append(result, goal)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Component < result[j].Component })
	return result, nil
}

type memShipments struct {
	m      *Memory
	locked bool
}

func (s memShipments) Record(_ context.Context, rec planning.ShipmentRecord) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	k := shipKey{Component: rec.Component, Day: rec.Day.String()}
	s.m.state.shipments[k] = rec
	return nil
}

func (s memShipments) OnDay(_ context.Context, component planning.ComponentID, day planning.TimePoint) (*planning.ShipmentRecord, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	k := shipKey{Component: component, Day: day.String()}
	rec, ok := s.m.state.shipments[k]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s memShipments) TotalInWindow(_ context.Context, component planning.ComponentID, window planning.Period) (planning.Quantity, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var total planning.Quantity
	for _, rec := range s.m.state.shipments {
		if rec.Component != component || !window.Contains(rec.Day) {
			continue
		}
		if total.Unit == "" {
			total.Unit = rec.Quantity.Unit
		}
		total = total.Add(rec.Quantity)
	}
	return total, nil
}

func (s memShipments) ListWindow(_ context.Context, window planning.Period) ([]planning.ShipmentRecord, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.ShipmentRecord
	for _, rec := range s.m.state.shipments {
		if window.Contains(rec.Day) {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Day.Equal(result[j].Day) {
			return result[i].Component < result[j].Component
		}
		return result[i].Day.Before(result[j].Day)
	})
	return result, nil
}

type memBOM struct {
	m      *Memory
	locked bool
}

func (s memBOM) Put(_ context.Context, line planning.BOMLine) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	s.m.state.bom[bomKey{Parent: line.Parent, Component: line.Component}] = line
	return nil
}

func (s memBOM) List(_ context.Context) ([]planning.BOMLine, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.BOMLine
	for _, line := range s.m.state.bom {
		result = append(result, line)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Parent == result[j].Parent {
			return result[i].Component < result[j].Component
		}
		return result[i].Parent < result[j].Parent
	})
	return result, nil
}

func (s memBOM) ListByParent(_ context.Context, parent planning.ComponentID) ([]planning.BOMLine, error) {
	all, err := s.List(context.Background())
	if err != nil {
		return nil, err
	}
	var result []planning.BOMLine
	for _, line := range all {
		if line.Parent == parent {
			result = append(result, line)
		}
	}
	return result, nil
}

func (s memBOM) Delete(_ context.Context, parent, component planning.ComponentID) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	delete(s.m.state.bom, bomKey{Parent: parent, Component: component})
	return nil
}

type memSnapshots struct {
	m      *Memory
	locked bool
}

func (s memSnapshots) PutBatch(_ context.Context, snaps []planning.OutlookSnapshot) error {
	if !s.locked {
		s.m.mu.Lock()
		defer s.m.mu.Unlock()
	}
	for _, snap := range snaps {
		s.m.state.snapshots[snap.Component] = snap
	}
	return nil
}

func (s memSnapshots) Latest(_ context.Context, component planning.ComponentID) (*planning.OutlookSnapshot, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	snap, ok := s.m.state.snapshots[component]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s memSnapshots) List(_ context.Context) ([]planning.OutlookSnapshot, error) {
	if !s.locked {
		s.m.mu.RLock()
		defer s.m.mu.RUnlock()
	}
	var result []planning.OutlookSnapshot
	for _, snap := range s.m.state.snapshots {
		result = append(result, snap)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Component < result[j].Component })
	return result, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a snapshot of the whole state and a rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(planning.Stores) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.state.clone()

	if err := fn(txStores{m: tm.Memory}); err != nil {
		tm.state = snapshot
		return err
	}
	return nil
}

// txStores hands out views that skip locking; WithTx already holds the
// bundle mutex for the duration of the transaction.
type txStores struct {
	m *Memory
}

func (t txStores) Events() planning.EventStore         { return memEvents{m: t.m, locked: true} }
func (t txStores) Components() planning.ComponentStore { return memComponents{m: t.m, locked: true} }
func (t txStores) Orders() planning.OrderStore         { return memOrders{m: t.m, locked: true} }
func (t txStores) Goals() planning.GoalStore           { return memGoals{m: t.m, locked: true} }
func (t txStores) Shipments() planning.ShipmentStore   { return memShipments{m: t.m, locked: true} }
func (t txStores) BOM() planning.BOMStore              { return memBOM{m: t.m, locked: true} }
func (t txStores) Snapshots() planning.SnapshotStore   { return memSnapshots{m: t.m, locked: true} }
