package model

import (
	"fmt"
	"strings"
)

// TableStatus is the occupancy flag of a dining table.  It is derived from
// the active orders placed at the table and recomputed whenever one of
// those orders changes status.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Valid reports whether s is one of the known table states.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// Table describes a physical table in the dining room.  Customers reach
// the menu of a table by scanning its QR code, which encodes QRCode.
//
// Fields:
//
//	ID       – primary key identifier.
//	Number   – number printed on the table; unique.
//	Capacity – number of seats.
//	QRCode   – public URL of the table's menu page.
//	Status   – derived occupancy (available, occupied, reserved).
type Table struct {
	ID       uint64      `json:"id"`       // tables.id
	Number   int         `json:"number"`   // tables.number
	Capacity int         `json:"capacity"` // tables.capacity
	QRCode   string      `json:"qrCode"`   // tables.qr_code
	Status   TableStatus `json:"status"`   // tables.status
}

// TableQRCode builds the menu URL encoded in a table's QR code.
func TableQRCode(baseURL string, number int) string {
	return fmt.Sprintf("%s/table/%d", strings.TrimRight(baseURL, "/"), number)
}
