package reports

import (
	"context"
	"time"

	"restopos/internal/core/types"
)

// Repository reads the data behind reports. Range bounds are inclusive.
type Repository interface {
	// ListPaidOrders returns paid orders created in range, with their items.
	ListPaidOrders(ctx context.Context, from, to time.Time) ([]PaidOrder, error)

	// SumDebtSettlements totals settlements created in range.
	SumDebtSettlements(ctx context.Context, from, to time.Time) (types.Money, error)

	// SumPurchaseCosts totals purchase records dated in range.
	SumPurchaseCosts(ctx context.Context, from, to time.Time) (types.Money, error)

	// ListCustomersWithDebt returns customers with total_due > 0, largest first.
	ListCustomersWithDebt(ctx context.Context) ([]CreditCustomer, error)
}
