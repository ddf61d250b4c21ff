// Package tables resolves the dining table an order belongs to.
// Physical tables are provisioned ahead of time; walk-in and online tables
// are created on demand.
package tables

import (
	"strings"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
)

// TableType classifies a table.
type TableType string

const (
	TypePhysical TableType = "PHYSICAL"
	TypeWalkIn   TableType = "WALK_IN"
	TypeOnline   TableType = "ONLINE"
)

// CustomerType is how the guest placed the order.
type CustomerType string

const (
	CustomerDineIn CustomerType = "DINE_IN"
	CustomerWalkIn CustomerType = "WALK_IN"
	CustomerOnline CustomerType = "ONLINE"
)

// OnlineTableCode is the shared table used for online orders without a code.
const OnlineTableCode = "ONLINE"

// ParseCustomerType normalizes s. An empty value means DINE_IN.
func ParseCustomerType(s string) (CustomerType, error) {
	switch ct := CustomerType(strings.ToUpper(strings.TrimSpace(s))); ct {
	case "":
		return CustomerDineIn, nil
	case CustomerDineIn, CustomerWalkIn, CustomerOnline:
		return ct, nil
	default:
		return "", apperror.NewInvalidInput("customerType", "customerType must be DINE_IN, WALK_IN or ONLINE").
			WithDetail("value", s)
	}
}

// TableTypeFor maps a customer type to the type of table it creates.
func TableTypeFor(ct CustomerType) TableType {
	switch ct {
	case CustomerWalkIn:
		return TypeWalkIn
	case CustomerOnline:
		return TypeOnline
	default:
		return TypePhysical
	}
}

// Table is a physical or virtual seating location.
type Table struct {
	ID        id.ID     `db:"id" json:"id"`
	TableCode string    `db:"table_code" json:"tableCode"`
	TableType TableType `db:"table_type" json:"tableType"`
	QRToken   string    `db:"qr_token" json:"qrToken"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewTable builds an unsaved table with a fresh id and QR token.
func NewTable(code string, tt TableType, now time.Time) *Table {
	return &Table{
		ID:        id.New(),
		TableCode: code,
		TableType: tt,
		QRToken:   id.Token(),
		CreatedAt: now,
	}
}
