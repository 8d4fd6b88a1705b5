// Package order owns the order lifecycle: creating orders from a cart,
// moving them through kitchen states, keeping table occupancy in line
// with active orders and recording exactly one sale per completed order.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

var (
	// ErrEmptyCart is returned when an order is submitted without items.
	ErrEmptyCart = errors.New("order has no items")
	// ErrValidation wraps malformed input such as a zero quantity.
	ErrValidation = errors.New("invalid order")
	// ErrInvalidTransition is returned when a completed or cancelled
	// order is asked to move to a different status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotPaid is returned when a receipt is requested for an unpaid order.
	ErrNotPaid = errors.New("order not paid")
)

// DefaultPaymentMethod is recorded when the customer did not pick one.
const DefaultPaymentMethod = "cash"

// CartLine is one line of a customer's cart.  Price is the unit price the
// customer saw when ordering.
type CartLine struct {
	ProductID uint64          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notes     *string         `json:"notes,omitempty"`
}

// CreateInput describes a new order.
type CreateInput struct {
	TableID       uint64     `json:"tableId"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	PaymentMethod string     `json:"paymentMethod"`
	Notes         *string    `json:"notes,omitempty"`
	Items         []CartLine `json:"orderItems"`
}

// Service implements the order lifecycle on top of a Store.
type Service struct {
	store  Store
	menu   MenuReader
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewService wires a Service.  menu and events may be nil.
func NewService(store Store, menu MenuReader, events EventPublisher, log *slog.Logger) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, menu: menu, events: events, log: log, now: time.Now}
}

// Create validates the cart, persists the order with its items in one
// transaction and marks the table occupied.  The total is computed here
// from the cart lines, never taken from the client.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.OrderWithItems, error) {
	if in.TableID == 0 {
		return nil, fmt.Errorf("%w: tableId is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]model.OrderItem, 0, len(in.Items))
	for i, l := range in.Items {
		switch {
		case l.ProductID == 0:
			return nil, fmt.Errorf("%w: item %d has no productId", ErrValidation, i)
		case l.Quantity <= 0:
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i)
		case l.Price.IsNegative():
			return nil, fmt.Errorf("%w: item %d price must not be negative", ErrValidation, i)
		}
		items = append(items, model.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Notes:     l.Notes,
		})
	}

	if _, err := s.store.GetTable(ctx, in.TableID); err != nil {
		return nil, fmt.Errorf("table %d: %w", in.TableID, err)
	}

	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}
	o := &model.Order{
		TableID:       in.TableID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: in.CustomerPhone,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: method,
		Total:         model.SumItems(items),
		Notes:         in.Notes,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateOrderWithItems(ctx, o, items); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.store.UpdateTableStatus(ctx, o.TableID, model.TableOccupied); err != nil {
		s.log.Error("mark table occupied failed", "err", err, "order_id", o.ID, "table_id", o.TableID)
	}

	out, err := s.store.GetOrderWithItems(ctx, o.ID)
	if err != nil {
		s.log.Error("reload created order failed", "err", err, "order_id", o.ID)
		out = &model.OrderWithItems{Order: *o, Items: items}
	}
	s.publish(ctx, queue.EventOrderCreated, out.Order)
	return out, nil
}

// UpdateStatus applies a staff patch to an order.  Moving to completed
// forces the payment status to paid and stamps completedAt.  Whenever the
// patch carries a status the table is recomputed, and a completed paid
// order gets its sale recorded.  Side-effect failures are logged and do
// not fail the update.  A completed order cannot be set back to an unpaid
// payment status.
func (s *Service) UpdateStatus(ctx context.Context, id uint64, patch model.OrderPatch) (*model.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.PaymentStatus != nil && !patch.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, *patch.PaymentStatus)
	}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
		}
		if !current.Status.CanTransition(next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}
		if next == model.OrderCompleted {
			paid := model.PaymentPaid
			patch.PaymentStatus = &paid
			if current.CompletedAt == nil {
				now := s.now()
				patch.CompletedAt = &now
			}
		}
	} else if current.Status == model.OrderCompleted && patch.PaymentStatus != nil && *patch.PaymentStatus != model.PaymentPaid {
		return nil, fmt.Errorf("%w: completed orders stay paid", ErrInvalidTransition)
	}

	updated, err := s.store.UpdateOrder(ctx, id, patch)
	if errors.Is(err, repository.ErrOrderClosed) {
		return nil, fmt.Errorf("%w: order %d is closed", ErrInvalidTransition, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	if patch.Status == nil {
		return updated, nil
	}

	if updated.Status.Terminal() {
		if _, err := s.RecomputeTableStatus(ctx, updated.TableID, updated.ID); err != nil {
			s.log.Error("recompute table status failed", "err", err, "order_id", updated.ID, "table_id", updated.TableID)
		}
	} else if err := s.store.UpdateTableStatus(ctx, updated.TableID, model.TableOccupied); err != nil {
		s.log.Error("mark table occupied failed", "err", err, "order_id", updated.ID, "table_id", updated.TableID)
	}

	if *patch.Status == model.OrderCompleted && updated.PaymentStatus == model.PaymentPaid {
		s.ensureSale(ctx, updated)
	}

	s.publish(ctx, queue.EventOrderStatusChanged, *updated)
	return updated, nil
}

// RecomputeTableStatus sets a table to occupied if it still has an active
// order other than excludeOrderID, available otherwise.  Pass 0 to
// consider every order.
func (s *Service) RecomputeTableStatus(ctx context.Context, tableID, excludeOrderID uint64) (model.TableStatus, error) {
	active, err := s.store.ActiveOrdersForTable(ctx, tableID)
	if err != nil {
		return "", fmt.Errorf("active orders for table %d: %w", tableID, err)
	}
	status := model.TableAvailable
	for _, o := range active {
		if o.ID != excludeOrderID && o.Status.Active() && o.DeletedAt == nil {
			status = model.TableOccupied
			break
		}
	}
	if err := s.store.UpdateTableStatus(ctx, tableID, status); err != nil {
		return "", fmt.Errorf("update table %d: %w", tableID, err)
	}
	return status, nil
}

// ReconcileTables recomputes every table from its active orders and
// returns how many tables changed status.  Reserved tables without active
// orders are left alone since reservation is set by staff.
func (s *Service) ReconcileTables(ctx context.Context) (int, error) {
	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tables: %w", err)
	}
	changed := 0
	var errs []error
	for _, t := range tables {
		active, err := s.store.ActiveOrdersForTable(ctx, t.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %d: %w", t.ID, err))
			continue
		}
		want := model.TableAvailable
		if len(active) > 0 {
			want = model.TableOccupied
		} else if t.Status == model.TableReserved {
			continue
		}
		if want == t.Status {
			continue
		}
		if err := s.store.UpdateTableStatus(ctx, t.ID, want); err != nil {
			errs = append(errs, fmt.Errorf("table %d: %w", t.ID, err))
			continue
		}
		s.log.Info("table status reconciled", "table_id", t.ID, "from", t.Status, "to", want)
		changed++
	}
	return changed, errors.Join(errs...)
}

// ensureSale records the sale of a completed paid order unless one
// already exists.  The store's unique constraint on order_id is the real
// guard; the lookup only avoids a pointless insert.
func (s *Service) ensureSale(ctx context.Context, o *model.Order) {
	existing, err := s.store.FindSaleByOrder(ctx, o.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("sale lookup failed", "err", err, "order_id", o.ID)
		return
	}
	if existing != nil {
		s.log.Info("sale already recorded", "order_id", o.ID, "sale_id", existing.ID)
		return
	}

	var items []model.OrderItem
	if full, err := s.store.GetOrderWithItems(ctx, o.ID); err == nil {
		items = full.Items
	} else {
		s.log.Warn("load order items for sale failed", "err", err, "order_id", o.ID)
	}

	method := o.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}
	id := o.ID
	sale := &model.Sale{
		OrderID:       &id,
		Amount:        o.Total,
		PaymentMethod: method,
		Description:   SaleDescription(o.ID, items),
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateSale(ctx, sale); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Info("sale already recorded", "order_id", o.ID)
			return
		}
		s.log.Error("create sale failed", "err", err, "order_id", o.ID)
		return
	}
	s.log.Info("sale recorded", "order_id", o.ID, "sale_id", sale.ID, "amount", sale.Amount.StringFixed(2))
}

// SaleDescription renders "Order #<id> - <product names>".
func SaleDescription(orderID uint64, items []model.OrderItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		name := it.ProductName
		if name == "" {
			name = fmt.Sprintf("product #%d", it.ProductID)
		}
		names = append(names, name)
	}
	desc := fmt.Sprintf("Order #%d", orderID)
	if len(names) > 0 {
		desc += " - " + strings.Join(names, ", ")
	}
	return desc
}

// Delete soft-deletes an order and releases its table if nothing else is
// active there.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.store.SoftDeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	if o.Status.Active() {
		if _, err := s.RecomputeTableStatus(ctx, o.TableID, o.ID); err != nil {
			s.log.Error("recompute table status failed", "err", err, "order_id", o.ID, "table_id", o.TableID)
		}
	}
	return nil
}

// Get returns one order with its items.
func (s *Service) Get(ctx context.Context, id uint64) (*model.OrderWithItems, error) {
	return s.store.GetOrderWithItems(ctx, id)
}

// List returns every non-deleted order, newest first.
func (s *Service) List(ctx context.Context) ([]model.OrderWithItems, error) {
	return s.store.ListOrders(ctx)
}

// Active returns the orders the kitchen still has to handle.
func (s *Service) Active(ctx context.Context) ([]model.OrderWithItems, error) {
	return s.store.ListActiveOrders(ctx)
}

// Deleted returns soft-deleted orders for the archive view.
func (s *Service) Deleted(ctx context.Context) ([]model.OrderWithItems, error) {
	return s.store.ListDeletedOrders(ctx)
}

// Snapshot returns what a customer at the given table sees: the table,
// the menu and the table's orders.
func (s *Service) Snapshot(ctx context.Context, tableNumber int) (*model.MenuSnapshot, error) {
	t, err := s.store.GetTableByNumber(ctx, tableNumber)
	if err != nil {
		return nil, err
	}
	snap := &model.MenuSnapshot{Table: *t}
	if s.menu != nil {
		if snap.Categories, err = s.menu.ListCategories(ctx); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		if snap.Products, err = s.menu.ListAvailableProducts(ctx); err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
	}
	if snap.Orders, err = s.store.ListOrdersByTable(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("list table orders: %w", err)
	}
	return snap, nil
}

func (s *Service) publish(ctx context.Context, typ string, o model.Order) {
	if err := s.events.PublishOrderEvent(ctx, queue.NewOrderEvent(typ, o, s.now())); err != nil {
		s.log.Warn("publish order event failed", "err", err, "order_id", o.ID, "type", typ)
	}
}
