package repository

import "database/sql"

// Store bundles the repositories the order lifecycle writes to.  It
// satisfies order.Store.
type Store struct {
	*OrderRepo
	*TableRepo
	*SaleRepo
}

// NewStore returns a Store whose repositories share db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		OrderRepo: NewOrderRepo(db),
		TableRepo: NewTableRepo(db),
		SaleRepo:  NewSaleRepo(db),
	}
}
