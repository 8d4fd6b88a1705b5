package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// SaleRepo persists the sales ledger.  The unique index on sales.order_id
// guarantees at most one sale per order even under concurrent completion.
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo returns a new SaleRepo bound to the given database.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

const saleCols = `id, order_id, amount, payment_method, description, created_at, deleted_at`

func scanSale(row rowScanner) (*model.Sale, error) {
	var (
		s         model.Sale
		orderID   sql.NullInt64
		deletedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &orderID, &s.Amount, &s.PaymentMethod, &s.Description,
		&s.CreatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if orderID.Valid {
		id := uint64(orderID.Int64)
		s.OrderID = &id
	}
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Time
	}
	return &s, nil
}

// FindSaleByOrder returns the sale recorded for an order, deleted or not.
// ErrNotFound means none exists.
func (r *SaleRepo) FindSaleByOrder(ctx context.Context, orderID uint64) (*model.Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx,
		`SELECT `+saleCols+` FROM sales WHERE order_id = ? LIMIT 1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// CreateSale inserts a sale.  A second sale for the same order yields
// ErrDuplicate.
func (r *SaleRepo) CreateSale(ctx context.Context, s *model.Sale) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (order_id, amount, payment_method, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.OrderID, s.Amount, s.PaymentMethod, s.Description, s.CreatedAt.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ListSales returns non-deleted sales, newest first.
func (r *SaleRepo) ListSales(ctx context.Context) ([]model.Sale, error) {
	return r.query(ctx, `SELECT `+saleCols+` FROM sales WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`)
}

// ListDeletedSales returns soft-deleted sales for the archive view.
func (r *SaleRepo) ListDeletedSales(ctx context.Context) ([]model.Sale, error) {
	return r.query(ctx, `SELECT `+saleCols+` FROM sales WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`)
}

// SoftDeleteSale stamps deleted_at on a sale.
func (r *SaleRepo) SoftDeleteSale(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sales SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SaleRepo) query(ctx context.Context, q string, args ...any) ([]model.Sale, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
