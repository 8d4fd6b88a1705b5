package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// MenuRepo reads categories and products for the public menu.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// ListCategories returns every category ordered by name.
func (r *MenuRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = &desc.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAvailableProducts returns products that are available and not
// archived, grouped by category.
func (r *MenuRepo) ListAvailableProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category_id, name, description, price, image_url, available, archived
		FROM products WHERE available = 1 AND archived = 0 ORDER BY category_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		var (
			p           model.Product
			desc, image sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &desc, &p.Price, &image,
			&p.Available, &p.Archived); err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = &desc.String
		}
		if image.Valid {
			p.ImageURL = &image.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
