package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// memStore is an in-memory Store used by the service tests.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	tables   map[uint64]*model.Table
	orders   map[uint64]*model.Order
	items    map[uint64][]model.OrderItem
	sales    []model.Sale
	products map[uint64]string

	failTableUpdate bool
	failSale        bool
	tableUpdates    int
}

func newMemStore() *memStore {
	return &memStore{
		tables:   map[uint64]*model.Table{},
		orders:   map[uint64]*model.Order{},
		items:    map[uint64][]model.OrderItem{},
		products: map[uint64]string{},
	}
}

func (m *memStore) id() uint64 { m.nextID++; return m.nextID }

func (m *memStore) addTable(number int, status model.TableStatus) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.tables[id] = &model.Table{ID: id, Number: number, Capacity: 4, Status: status}
	return id
}

func (m *memStore) tableStatus(id uint64) model.TableStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id].Status
}

func (m *memStore) CreateOrderWithItems(_ context.Context, o *model.Order, items []model.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.id()
	cp := *o
	m.orders[o.ID] = &cp
	for i := range items {
		items[i].ID = m.id()
		items[i].OrderID = o.ID
		items[i].ProductName = m.products[items[i].ProductID]
	}
	m.items[o.ID] = append([]model.OrderItem(nil), items...)
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id uint64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetOrderWithItems(ctx context.Context, id uint64) (*model.OrderWithItems, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.OrderWithItems{Order: *o, Items: append([]model.OrderItem(nil), m.items[id]...)}, nil
}

func (m *memStore) list(keep func(*model.Order) bool) []model.OrderWithItems {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.OrderWithItems
	for id, o := range m.orders {
		if keep(o) {
			out = append(out, model.OrderWithItems{Order: *o, Items: m.items[id]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListOrders(context.Context) ([]model.OrderWithItems, error) {
	return m.list(func(o *model.Order) bool { return o.DeletedAt == nil }), nil
}

func (m *memStore) ListActiveOrders(context.Context) ([]model.OrderWithItems, error) {
	return m.list(func(o *model.Order) bool { return o.DeletedAt == nil && o.Status.Active() }), nil
}

func (m *memStore) ListDeletedOrders(context.Context) ([]model.OrderWithItems, error) {
	return m.list(func(o *model.Order) bool { return o.DeletedAt != nil }), nil
}

func (m *memStore) ListOrdersByTable(_ context.Context, tableID uint64) ([]model.OrderWithItems, error) {
	return m.list(func(o *model.Order) bool { return o.DeletedAt == nil && o.TableID == tableID }), nil
}

func (m *memStore) ActiveOrdersForTable(_ context.Context, tableID uint64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.list(func(o *model.Order) bool {
		return o.DeletedAt == nil && o.Status.Active() && o.TableID == tableID
	}) {
		out = append(out, o.Order)
	}
	return out, nil
}

func (m *memStore) UpdateOrder(_ context.Context, id uint64, p model.OrderPatch) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	if p.Status != nil && o.Status.Terminal() && o.Status != *p.Status {
		return nil, repository.ErrOrderClosed
	}
	if p.PaymentStatus != nil && *p.PaymentStatus != model.PaymentPaid && o.Status == model.OrderCompleted {
		return nil, repository.ErrOrderClosed
	}
	p.Apply(o)
	cp := *o
	return &cp, nil
}

func (m *memStore) SoftDeleteOrder(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	o.DeletedAt = &now
	return true, nil
}

func (m *memStore) GetTable(_ context.Context, id uint64) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) GetTableByNumber(_ context.Context, number int) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.Number == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListTables(context.Context) ([]model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Table
	for _, t := range m.tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memStore) UpdateTableStatus(_ context.Context, id uint64, s model.TableStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tableUpdates++
	if m.failTableUpdate {
		return errors.New("table store down")
	}
	t, ok := m.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = s
	return nil
}

func (m *memStore) FindSaleByOrder(_ context.Context, orderID uint64) (*model.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.OrderID != nil && *s.OrderID == orderID {
			cp := s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) CreateSale(_ context.Context, s *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSale {
		return errors.New("sales store down")
	}
	for _, existing := range m.sales {
		if existing.OrderID != nil && s.OrderID != nil && *existing.OrderID == *s.OrderID {
			return repository.ErrDuplicate
		}
	}
	s.ID = m.id()
	m.sales = append(m.sales, *s)
	return nil
}

func (m *memStore) salesFor(orderID uint64) []model.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Sale
	for _, s := range m.sales {
		if s.OrderID != nil && *s.OrderID == orderID {
			out = append(out, s)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
	err    error
}

func (r *recordingPublisher) PublishOrderEvent(_ context.Context, ev queue.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}
