package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/order"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

type fakeOrders struct {
	created   *order.CreateInput
	createErr error
	orders    map[uint64]*model.OrderWithItems
	patched   *model.OrderPatch
	updateErr error
	deleted   []uint64
	receipt   *order.Receipt
	recErr    error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uint64]*model.OrderWithItems{
		1: {Order: model.Order{ID: 1, TableID: 7, Status: model.OrderPending, Total: decimal.RequireFromString("25.50")}},
		2: {Order: model.Order{ID: 2, TableID: 3, Status: model.OrderCompleted}},
	}}
}

func (f *fakeOrders) Create(_ context.Context, in order.CreateInput) (*model.OrderWithItems, error) {
	f.created = &in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.OrderWithItems{Order: model.Order{ID: 9, TableID: in.TableID, Status: model.OrderPending}}, nil
}

func (f *fakeOrders) Get(_ context.Context, id uint64) (*model.OrderWithItems, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context) ([]model.OrderWithItems, error) {
	var out []model.OrderWithItems
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) Active(context.Context) ([]model.OrderWithItems, error) {
	var out []model.OrderWithItems
	for _, o := range f.orders {
		if o.Status.Active() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Deleted(context.Context) ([]model.OrderWithItems, error) { return nil, nil }

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint64, patch model.OrderPatch) (*model.Order, error) {
	f.patched = &patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := o.Order
	patch.Apply(&out)
	return &out, nil
}

func (f *fakeOrders) Delete(_ context.Context, id uint64) error {
	if _, ok := f.orders[id]; !ok {
		return repository.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOrders) Receipt(context.Context, uint64) (*order.Receipt, error) {
	return f.receipt, f.recErr
}

func (f *fakeOrders) Snapshot(_ context.Context, n int) (*model.MenuSnapshot, error) {
	if n != 7 {
		return nil, repository.ErrNotFound
	}
	return &model.MenuSnapshot{Table: model.Table{ID: 7, Number: 7}}, nil
}

func (f *fakeOrders) ReconcileTables(context.Context) (int, error) { return 2, nil }

type fakeUsers struct{ users map[string]*model.User }

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeTokens struct {
	live      map[string]uint64
	revokedBy []uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.live[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	if id, ok := f.live[hash]; ok {
		return id, nil
	}
	return 0, repository.ErrNotFound
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.live, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.revokedBy = append(f.revokedBy, userID)
	for h, id := range f.live {
		if id == userID {
			delete(f.live, h)
		}
	}
	return nil
}

type fakeTables struct{ tables []model.Table }

func (f *fakeTables) ListTables(context.Context) ([]model.Table, error) { return f.tables, nil }

func (f *fakeTables) GetTable(_ context.Context, id uint64) (*model.Table, error) {
	for _, t := range f.tables {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTables) CreateTable(_ context.Context, t *model.Table) error {
	for _, x := range f.tables {
		if x.Number == t.Number {
			return repository.ErrDuplicate
		}
	}
	t.ID = uint64(len(f.tables) + 1)
	f.tables = append(f.tables, *t)
	return nil
}

func (f *fakeTables) DeleteTable(_ context.Context, id uint64) error {
	for i, t := range f.tables {
		if t.ID != id {
			continue
		}
		if t.Status != model.TableAvailable {
			return repository.ErrConflict
		}
		f.tables = append(f.tables[:i], f.tables[i+1:]...)
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakeTables) RegenerateQRCodes(_ context.Context, baseURL string) (int, error) {
	for i := range f.tables {
		f.tables[i].QRCode = model.TableQRCode(baseURL, f.tables[i].Number)
	}
	return len(f.tables), nil
}

func errNotFound() error { return repository.ErrNotFound }
