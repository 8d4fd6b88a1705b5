package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderRepo reads and writes orders and their items.  Soft-deleted orders
// (deleted_at set) are invisible to every method except ListDeletedOrders.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `o.id, o.table_id, o.customer_name, o.customer_phone, o.status,
	o.payment_status, o.payment_method, o.total, o.notes, o.created_at,
	o.completed_at, o.deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o                      model.Order
		phone, notes           sql.NullString
		completedAt, deletedAt sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.TableID, &o.CustomerName, &phone, &o.Status,
		&o.PaymentStatus, &o.PaymentMethod, &o.Total, &notes, &o.CreatedAt,
		&completedAt, &deletedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		o.CustomerPhone = &phone.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		o.DeletedAt = &deletedAt.Time
	}
	return &o, nil
}

// CreateOrderWithItems inserts the order and all of its items in a single
// transaction.  Either every row is written or none is.  Generated IDs are
// filled in on o and items.
func (r *OrderRepo) CreateOrderWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.CreateTx(ctx, tx, o); err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if err := r.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateTx inserts the order row within an existing transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (table_id, customer_name, customer_phone, status,
		payment_status, payment_method, total, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, o.TableID, o.CustomerName, o.CustomerPhone,
		o.Status, o.PaymentStatus, o.PaymentMethod, o.Total, o.Notes, o.CreatedAt.UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateItemsBulkTx inserts multiple order_items rows in one statement.
// MySQL returns consecutive auto-increment ids for a multi-row insert, so
// the ids are derived from the first one.  Passing an empty slice has no
// effect.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO order_items (order_id, product_id, quantity, price, notes) VALUES `)
	args := make([]any, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, it.OrderID, it.ProductID, it.Quantity, it.Price, it.Notes)
	}
	res, err := tx.ExecContext(ctx, b.String(), args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	first, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uint64(first) + uint64(i)
	}
	return nil
}

// GetOrder returns a non-deleted order by id.
func (r *OrderRepo) GetOrder(ctx context.Context, id uint64) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderCols+` FROM orders o WHERE o.id = ? AND o.deleted_at IS NULL`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// GetOrderWithItems returns a non-deleted order together with its items.
func (r *OrderRepo) GetOrderWithItems(ctx context.Context, id uint64) (*model.OrderWithItems, error) {
	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := r.attachItems(ctx, []model.Order{*o})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListOrders returns every non-deleted order, newest first.
func (r *OrderRepo) ListOrders(ctx context.Context) ([]model.OrderWithItems, error) {
	return r.listWithItems(ctx, `WHERE o.deleted_at IS NULL ORDER BY o.created_at DESC, o.id DESC`)
}

// ListActiveOrders returns orders that are neither completed nor
// cancelled, oldest first so the kitchen works in arrival order.
func (r *OrderRepo) ListActiveOrders(ctx context.Context) ([]model.OrderWithItems, error) {
	return r.listWithItems(ctx, `WHERE o.deleted_at IS NULL
		AND o.status NOT IN ('completed','cancelled')
		ORDER BY o.created_at ASC, o.id ASC`)
}

// ListDeletedOrders returns soft-deleted orders, most recently deleted first.
func (r *OrderRepo) ListDeletedOrders(ctx context.Context) ([]model.OrderWithItems, error) {
	return r.listWithItems(ctx, `WHERE o.deleted_at IS NOT NULL ORDER BY o.deleted_at DESC`)
}

// ListOrdersByTable returns the non-deleted orders of one table, newest first.
func (r *OrderRepo) ListOrdersByTable(ctx context.Context, tableID uint64) ([]model.OrderWithItems, error) {
	return r.listWithItems(ctx, `WHERE o.table_id = ? AND o.deleted_at IS NULL
		ORDER BY o.created_at DESC, o.id DESC`, tableID)
}

// ActiveOrdersForTable returns the active orders of one table without
// their items.
func (r *OrderRepo) ActiveOrdersForTable(ctx context.Context, tableID uint64) ([]model.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderCols+` FROM orders o
		WHERE o.table_id = ? AND o.deleted_at IS NULL
		AND o.status NOT IN ('completed','cancelled')`, tableID)
}

// UpdateOrder applies the non-nil fields of patch and returns the
// resulting row.  The terminal-state rule is part of the WHERE clause, so
// of two concurrent transitions out of an active state only one lands;
// the other gets ErrOrderClosed.
func (r *OrderRepo) UpdateOrder(ctx context.Context, id uint64, patch model.OrderPatch) (*model.Order, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		add("payment_status", *patch.PaymentStatus)
	}
	if patch.PaymentMethod != nil {
		add("payment_method", *patch.PaymentMethod)
	}
	if patch.CustomerName != nil {
		add("customer_name", *patch.CustomerName)
	}
	if patch.CustomerPhone != nil {
		add("customer_phone", *patch.CustomerPhone)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.CompletedAt != nil {
		add("completed_at", patch.CompletedAt.UTC())
	}
	if len(sets) == 0 {
		return r.GetOrder(ctx, id)
	}

	where := ` WHERE id = ? AND deleted_at IS NULL`
	args = append(args, id)
	if patch.Status != nil {
		where += ` AND (status NOT IN ('completed','cancelled') OR status = ?)`
		args = append(args, *patch.Status)
	}
	if patch.PaymentStatus != nil && *patch.PaymentStatus != model.PaymentPaid {
		where += ` AND status <> 'completed'`
	}
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET `+strings.Join(sets, ", ")+where, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	// Zero rows also means "nothing changed"; tell it apart from a
	// rejected transition by looking at the stored row.
	if n == 0 && closedFor(o.Status, patch) {
		return nil, ErrOrderClosed
	}
	return o, nil
}

// closedFor reports whether patch may not be applied to an order in
// status current.
func closedFor(current model.OrderStatus, patch model.OrderPatch) bool {
	if patch.Status != nil && current.Terminal() && current != *patch.Status {
		return true
	}
	return patch.PaymentStatus != nil && *patch.PaymentStatus != model.PaymentPaid && current == model.OrderCompleted
}

// SoftDeleteOrder stamps deleted_at.  It reports false when the order
// does not exist or was already deleted.
func (r *OrderRepo) SoftDeleteOrder(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrderRepo) queryOrders(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) listWithItems(ctx context.Context, where string, args ...any) ([]model.OrderWithItems, error) {
	orders, err := r.queryOrders(ctx, `SELECT `+orderCols+` FROM orders o `+where, args...)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, orders)
}

// attachItems loads the items of every order in one query, joined to the
// product name.
func (r *OrderRepo) attachItems(ctx context.Context, orders []model.Order) ([]model.OrderWithItems, error) {
	out := make([]model.OrderWithItems, len(orders))
	if len(orders) == 0 {
		return out, nil
	}
	idx := make(map[uint64]int, len(orders))
	placeholders := make([]string, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		out[i] = model.OrderWithItems{Order: o, Items: []model.OrderItem{}}
		idx[o.ID] = i
		placeholders[i] = "?"
		args[i] = o.ID
	}
	q := `SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.notes
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    model.OrderItem
			notes sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.Price, &notes); err != nil {
			return nil, err
		}
		if notes.Valid {
			it.Notes = &notes.String
		}
		i := idx[it.OrderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, rows.Err()
}
