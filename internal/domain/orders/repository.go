package orders

import (
	"context"
	"time"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/tables"
)

// Repository persists orders and their lines. Mutating methods must run
// inside a transaction started by tx.Manager.
type Repository interface {
	// LockTable serializes order mutations for a table until the transaction ends.
	LockTable(ctx context.Context, tableID id.ID) error

	// FindOpenByTable returns nil, nil when the table has no open order.
	FindOpenByTable(ctx context.Context, tableID id.ID) (*Order, error)

	// Create inserts a new order. A second open order for the same table is a Conflict.
	Create(ctx context.Context, o *Order) error

	// UpdateCustomer sets only the non-nil fields.
	UpdateCustomer(ctx context.Context, orderID id.ID, customerID *id.ID, name, phone *string) error

	// GetByID returns a NotFound AppError when the order does not exist.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	ListOpen(ctx context.Context) ([]*Order, error)

	// ListClosed returns paid and cancelled orders last updated within
	// [from, to], newest first.
	ListClosed(ctx context.Context, from, to time.Time) ([]*Order, error)

	UpdateStatus(ctx context.Context, orderID id.ID, status Status) error

	// CountItems returns the number of lines currently on the order.
	CountItems(ctx context.Context, orderID id.ID) (int, error)

	// UpsertItem adds quantity to the (order, menu item) line in place, or
	// inserts it with price as the snapshot.
	UpsertItem(ctx context.Context, orderID, menuItemID id.ID, quantity int, price types.Money) error

	// DecrementItem lowers the line by one and deletes it at zero.
	// It reports false when the line does not exist.
	DecrementItem(ctx context.Context, orderID, menuItemID id.ID) (bool, error)

	// DeleteItem reports false when the line does not exist.
	DeleteItem(ctx context.Context, orderID, menuItemID id.ID) (bool, error)

	// RecomputeTotal rewrites total_amount from all lines and returns it.
	RecomputeTotal(ctx context.Context, orderID id.ID) (types.Money, error)

	// ListItems returns lines for the given orders keyed by order id.
	ListItems(ctx context.Context, orderIDs ...id.ID) (map[id.ID][]OrderItem, error)
}

// TableResolver finds or creates the table a submission belongs to.
type TableResolver interface {
	Resolve(ctx context.Context, code string, ct tables.CustomerType) (*tables.Table, error)
}

// MenuCatalog reads current menu prices.
type MenuCatalog interface {
	// GetMenuItem returns nil, nil for an unknown id.
	GetMenuItem(ctx context.Context, menuItemID id.ID) (*MenuItem, error)
}

// CustomerDirectory looks up registered customers.
type CustomerDirectory interface {
	// FindByPhone returns nil, nil when no customer has the number.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
}

// InventoryDeductor consumes stock for newly ordered lines.
type InventoryDeductor interface {
	DeductStockForOrder(ctx context.Context, orderID id.ID, items []LineInput) error
}
