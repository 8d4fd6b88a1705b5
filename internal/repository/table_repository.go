package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableRepo provides CRUD operations for dining tables.  The status column
// is written by the order lifecycle; staff only create tables and
// regenerate their QR codes.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableCols = `id, number, capacity, qr_code, status`

func scanTable(row rowScanner) (*model.Table, error) {
	var t model.Table
	if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.QRCode, &t.Status); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTable returns a table by id.
func (r *TableRepo) GetTable(ctx context.Context, id uint64) (*model.Table, error) {
	t, err := scanTable(r.db.QueryRowContext(ctx,
		`SELECT `+tableCols+` FROM restaurant_tables WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// GetTableByNumber returns the table with the printed number.
func (r *TableRepo) GetTableByNumber(ctx context.Context, number int) (*model.Table, error) {
	t, err := scanTable(r.db.QueryRowContext(ctx,
		`SELECT `+tableCols+` FROM restaurant_tables WHERE number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListTables returns every table ordered by number.
func (r *TableRepo) ListTables(ctx context.Context) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tableCols+` FROM restaurant_tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateTableStatus overwrites the status of a table.
func (r *TableRepo) UpdateTableStatus(ctx context.Context, id uint64, status model.TableStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE restaurant_tables SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for an unknown id and an unchanged status.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetTable(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable inserts a table; t.ID is filled in.  A duplicate number
// yields ErrDuplicate.
func (r *TableRepo) CreateTable(ctx context.Context, t *model.Table) error {
	if t.Status == "" {
		t.Status = model.TableAvailable
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurant_tables (number, capacity, qr_code, status) VALUES (?, ?, ?, ?)`,
		t.Number, t.Capacity, t.QRCode, t.Status)
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
	t.ID = uint64(id)
	return nil
}

// DeleteTable removes a table.  Tables still referenced by orders yield
// ErrConflict.
func (r *TableRepo) DeleteTable(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM restaurant_tables WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RegenerateQRCodes rewrites every table's QR code from baseURL inside
// one transaction and returns the number of tables updated.
func (r *TableRepo) RegenerateQRCodes(ctx context.Context, baseURL string) (int, error) {
	tables, err := r.ListTables(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, `UPDATE restaurant_tables SET qr_code = ? WHERE id = ?`,
			model.TableQRCode(baseURL, t.Number), t.ID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(tables), nil
}
