package order

import (
	"context"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
)

// OrderStore persists orders and their items.  Lookups return
// repository.ErrNotFound for unknown or soft-deleted orders.
type OrderStore interface {
	// CreateOrderWithItems writes the order row and every item row in a
	// single transaction and fills in the generated IDs.
	CreateOrderWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error
	GetOrder(ctx context.Context, id uint64) (*model.Order, error)
	GetOrderWithItems(ctx context.Context, id uint64) (*model.OrderWithItems, error)
	ListOrders(ctx context.Context) ([]model.OrderWithItems, error)
	ListActiveOrders(ctx context.Context) ([]model.OrderWithItems, error)
	ListDeletedOrders(ctx context.Context) ([]model.OrderWithItems, error)
	ListOrdersByTable(ctx context.Context, tableID uint64) ([]model.OrderWithItems, error)
	// ActiveOrdersForTable returns the non-deleted orders of a table whose
	// status is neither completed nor cancelled.
	ActiveOrdersForTable(ctx context.Context, tableID uint64) ([]model.Order, error)
	UpdateOrder(ctx context.Context, id uint64, patch model.OrderPatch) (*model.Order, error)
	SoftDeleteOrder(ctx context.Context, id uint64) (bool, error)
}

// TableStore reads tables and writes their derived status.
type TableStore interface {
	GetTable(ctx context.Context, id uint64) (*model.Table, error)
	GetTableByNumber(ctx context.Context, number int) (*model.Table, error)
	ListTables(ctx context.Context) ([]model.Table, error)
	UpdateTableStatus(ctx context.Context, id uint64, status model.TableStatus) error
}

// SaleStore records sales.  CreateSale returns repository.ErrDuplicate
// when a sale already exists for the order.
type SaleStore interface {
	FindSaleByOrder(ctx context.Context, orderID uint64) (*model.Sale, error)
	CreateSale(ctx context.Context, s *model.Sale) error
}

// Store is everything the lifecycle manager needs from persistence.
type Store interface {
	OrderStore
	TableStore
	SaleStore
}

// MenuReader provides the public menu shown next to a table's orders.
type MenuReader interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListAvailableProducts(ctx context.Context) ([]model.Product, error)
}

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(context.Context, queue.OrderEvent) error { return nil }
