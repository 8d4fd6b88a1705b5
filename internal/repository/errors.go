// Package repository defines the MySQL data access layer and the error
// values shared by every repository.  These sentinel values allow higher
// layers such as services and handlers to distinguish between different
// failure scenarios.  ErrNotFound means the row does not exist (or is
// soft-deleted), ErrDuplicate signals that a unique constraint rejected
// an insert, and ErrConflict that the operation clashes with dependent
// records.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, for
// example a second sale for the same order.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a table that still has
// orders.  Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrOrderClosed is returned when an update would move a completed or
// cancelled order to another status, or leave a completed order unpaid.
var ErrOrderClosed = errors.New("order closed")

// isDuplicateKey reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isForeignKeyViolation reports whether err is MySQL error 1451 or 1452.
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1451 || me.Number == 1452)
}
