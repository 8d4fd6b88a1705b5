package model

import "github.com/shopspring/decimal"

// Category groups products on the menu.
type Category struct {
	ID          uint64  `json:"id"`          // categories.id
	Name        string  `json:"name"`        // categories.name
	Description *string `json:"description"` // categories.description
}

// Product is a menu entry.  Archived products stay referenced by past
// order items but are hidden from the menu.
type Product struct {
	ID          uint64          `json:"id"`
	CategoryID  uint64          `json:"categoryId"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Available   bool            `json:"available"`
	Archived    bool            `json:"-"`
}

// MenuSnapshot is what the public table page polls: the table, the menu
// and every order of that table so the client can filter its own.
type MenuSnapshot struct {
	Table      Table            `json:"table"`
	Categories []Category       `json:"categories"`
	Products   []Product        `json:"products"`
	Orders     []OrderWithItems `json:"orders"`
}
