// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/reports"
	"restopos/internal/infrastructure/storage/postgres"
)

const paidOrdersQuery = `
	SELECT
		o.id,
		o.total_amount,
		o.discount_amount,
		COALESCE(o.payment_method, '') AS payment_method,
		o.cash_amount,
		o.online_amount,
		o.credit_amount,
		o.created_at
	FROM orders o
	WHERE o.status = 'paid'
	  AND o.created_at BETWEEN $1 AND $2
	ORDER BY o.created_at, o.id
`

const debtSettledQuery = `
	SELECT COALESCE(SUM(amount), 0)
	FROM debt_settlements
	WHERE created_at BETWEEN $1 AND $2
`

const purchaseCostsQuery = `
	SELECT COALESCE(SUM(total_cost), 0)
	FROM purchase_records
	WHERE purchase_date BETWEEN $1 AND $2
`

const customersWithDebtQuery = `
	SELECT id, full_name, phone_number, total_due, created_at
	FROM customers
	WHERE total_due > 0
	ORDER BY total_due DESC, full_name
`

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListPaidOrders returns paid orders created in [from, to] with their lines.
func (r *ReportRepo) ListPaidOrders(ctx context.Context, from, to time.Time) ([]reports.PaidOrder, error) {
	querier := r.txManager.GetQuerier(ctx)

	var list []reports.PaidOrder
	if err := pgxscan.Select(ctx, querier, &list, paidOrdersQuery, from, to); err != nil {
		return nil, fmt.Errorf("select paid orders: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]id.ID, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}
	sql, args, err := r.paidItemsQuery(ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []reports.PaidItem
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select paid order items: %w", err)
	}

	byOrder := make(map[id.ID][]reports.PaidItem, len(list))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range list {
		list[i].Items = byOrder[list[i].ID]
	}
	return list, nil
}

func (r *ReportRepo) paidItemsQuery(orderIDs []id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"oi.order_id", "oi.menu_item_id",
			"COALESCE(m.name, '') AS name", "COALESCE(m.department, '') AS department",
			"oi.quantity", "oi.price_snapshot",
		).
		From("order_items oi").
		LeftJoin("menu_items m ON m.id = oi.menu_item_id").
		Where(squirrel.Eq{"oi.order_id": orderIDs})
}

// SumDebtSettlements totals settlements created in [from, to].
func (r *ReportRepo) SumDebtSettlements(ctx context.Context, from, to time.Time) (types.Money, error) {
	return r.sum(ctx, debtSettledQuery, from, to)
}

// SumPurchaseCosts totals purchases dated in [from, to].
func (r *ReportRepo) SumPurchaseCosts(ctx context.Context, from, to time.Time) (types.Money, error) {
	return r.sum(ctx, purchaseCostsQuery, from, to)
}

func (r *ReportRepo) sum(ctx context.Context, query string, from, to time.Time) (types.Money, error) {
	var total types.Money
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum: %w", err)
	}
	return total, nil
}

// ListCustomersWithDebt returns customers owing money, largest balance first.
func (r *ReportRepo) ListCustomersWithDebt(ctx context.Context) ([]reports.CreditCustomer, error) {
	var list []reports.CreditCustomer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, customersWithDebtQuery); err != nil {
		return nil, fmt.Errorf("select customers with debt: %w", err)
	}
	return list, nil
}
