package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/orders"
	"restopos/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"

	// openOrderIndex is the partial unique index allowing one open order per table.
	openOrderIndex = "orders_one_open_per_table"
)

var orderColumns = []string{
	"o.id", "o.table_id", "t.table_code", "o.status", "o.total_amount",
	"o.customer_id", "o.customer_name", "o.customer_phone",
	"o.payment_method", "o.cash_amount", "o.online_amount", "o.credit_amount", "o.discount_amount",
	"o.created_at", "o.updated_at",
}

var orderItemColumns = []string{
	"oi.id", "oi.order_id", "oi.menu_item_id",
	"COALESCE(m.name, '') AS name", "COALESCE(m.department, '') AS department",
	"oi.quantity", "oi.price_snapshot", "oi.created_at",
}

func statusStrings(list []orders.Status) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}

func openStatuses() []string { return statusStrings(orders.OpenStatuses) }

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	BaseDocumentRepo
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{BaseDocumentRepo{txManager: txManager}}
}

// LockTable takes a transaction-scoped advisory lock keyed by the table id.
func (r *OrderRepo) LockTable(ctx context.Context, tableID id.ID) error {
	return r.txManager.AdvisoryXactLock(ctx, tableLockKey(tableID))
}

func tableLockKey(tableID id.ID) string {
	return "order-table:" + tableID.String()
}

func (r *OrderRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(orderColumns...).
		From(ordersTable + " o").
		Join("tables t ON t.id = o.table_id")
}

func (r *OrderRepo) findOpenQuery(tableID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"o.table_id": tableID}).
		Where(squirrel.Eq{"o.status": openStatuses()}).
		OrderBy("o.created_at").
		Limit(1)
}

// FindOpenByTable returns nil, nil when the table has no open order.
func (r *OrderRepo) FindOpenByTable(ctx context.Context, tableID id.ID) (*orders.Order, error) {
	sql, args, err := r.findOpenQuery(tableID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	o := new(orders.Order)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open order: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) createQuery(o *orders.Order) squirrel.InsertBuilder {
	return r.Builder().
		Insert(ordersTable).
		SetMap(postgres.StructToMap(o, "table_code"))
}

// Create inserts o. A second open order for the same table is a Conflict.
func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	if _, err := r.exec(ctx, r.createQuery(o)); err != nil {
		return createError(err, o.TableID)
	}
	return nil
}

func createError(err error, tableID id.ID) error {
	if postgres.IsUniqueViolation(err, openOrderIndex) {
		return apperror.NewConflict("table already has an open order").
			WithDetail("tableId", tableID).
			WithCause(err)
	}
	return fmt.Errorf("insert order: %w", err)
}

func (r *OrderRepo) updateCustomerQuery(orderID id.ID, customerID *id.ID, name, phone *string) squirrel.UpdateBuilder {
	q := r.Builder().
		Update(ordersTable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID})
	if customerID != nil {
		q = q.Set("customer_id", *customerID)
	}
	if name != nil {
		q = q.Set("customer_name", *name)
	}
	if phone != nil {
		q = q.Set("customer_phone", *phone)
	}
	return q
}

// UpdateCustomer sets only the supplied fields.
func (r *OrderRepo) UpdateCustomer(ctx context.Context, orderID id.ID, customerID *id.ID, name, phone *string) error {
	if customerID == nil && name == nil && phone == nil {
		return nil
	}
	if _, err := r.exec(ctx, r.updateCustomerQuery(orderID, customerID, name, phone)); err != nil {
		return fmt.Errorf("update order customer: %w", err)
	}
	return nil
}

// GetByID returns a NotFound AppError for unknown ids.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"o.id": orderID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	o := new(orders.Order)
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOpen returns every open order, oldest first.
func (r *OrderRepo) ListOpen(ctx context.Context) ([]*orders.Order, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"o.status": openStatuses()}).
		OrderBy("o.created_at", "o.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var list []*orders.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	return list, nil
}

func (r *OrderRepo) listClosedQuery(from, to time.Time) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"o.status": statusStrings(orders.ClosedStatuses)}).
		Where(squirrel.GtOrEq{"o.updated_at": from}).
		Where(squirrel.LtOrEq{"o.updated_at": to}).
		OrderBy("o.updated_at DESC", "o.id DESC")
}

// ListClosed returns paid and cancelled orders closed within [from, to].
func (r *OrderRepo) ListClosed(ctx context.Context, from, to time.Time) ([]*orders.Order, error) {
	sql, args, err := r.listClosedQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var list []*orders.Order
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("list closed orders: %w", err)
	}
	return list, nil
}

// UpdateStatus sets the order status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.Status) error {
	q := r.Builder().
		Update(ordersTable).
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID})
	n, err := r.exec(ctx, q)
	if err != nil {
		if postgres.IsUniqueViolation(err, openOrderIndex) {
			return apperror.NewConflict("table already has an open order").WithCause(err)
		}
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

// CountItems returns the number of lines on the order.
func (r *OrderRepo) CountItems(ctx context.Context, orderID id.ID) (int, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count order items: %w", err)
	}
	return n, nil
}

func (r *OrderRepo) upsertItemQuery(orderID, menuItemID id.ID, quantity int, price types.Money, now time.Time) squirrel.InsertBuilder {
	return r.Builder().
		Insert(orderItemsTable).
		Columns("id", "order_id", "menu_item_id", "quantity", "price_snapshot", "created_at").
		Values(id.New(), orderID, menuItemID, quantity, price, now).
		Suffix("ON CONFLICT (order_id, menu_item_id) DO UPDATE SET quantity = " + orderItemsTable + ".quantity + EXCLUDED.quantity")
}

// UpsertItem increments the line in place. The price snapshot is written only
// when the line is first inserted.
func (r *OrderRepo) UpsertItem(ctx context.Context, orderID, menuItemID id.ID, quantity int, price types.Money) error {
	if _, err := r.exec(ctx, r.upsertItemQuery(orderID, menuItemID, quantity, price, time.Now())); err != nil {
		return upsertItemError(err, menuItemID)
	}
	return nil
}

// upsertItemError turns an overflowing merged quantity into a client error.
func upsertItemError(err error, menuItemID id.ID) error {
	if postgres.IsNumericOutOfRange(err) {
		return apperror.NewInvalidInput("quantity", "merged quantity is too large").
			WithDetail("menuItemId", menuItemID).
			WithCause(err)
	}
	return fmt.Errorf("upsert order item: %w", err)
}

func (r *OrderRepo) itemWhere(orderID, menuItemID id.ID) squirrel.Eq {
	return squirrel.Eq{"order_id": orderID, "menu_item_id": menuItemID}
}

// DecrementItem lowers the line by one, deleting it when it would reach zero.
func (r *OrderRepo) DecrementItem(ctx context.Context, orderID, menuItemID id.ID) (bool, error) {
	dec := r.Builder().
		Update(orderItemsTable).
		Set("quantity", squirrel.Expr("quantity - 1")).
		Where(r.itemWhere(orderID, menuItemID)).
		Where(squirrel.Gt{"quantity": 1})
	n, err := r.exec(ctx, dec)
	if err != nil {
		return false, fmt.Errorf("decrement order item: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	return r.DeleteItem(ctx, orderID, menuItemID)
}

// DeleteItem removes the line.
func (r *OrderRepo) DeleteItem(ctx context.Context, orderID, menuItemID id.ID) (bool, error) {
	n, err := r.exec(ctx, r.Builder().Delete(orderItemsTable).Where(r.itemWhere(orderID, menuItemID)))
	if err != nil {
		return false, fmt.Errorf("delete order item: %w", err)
	}
	return n > 0, nil
}

func (r *OrderRepo) recomputeQuery(orderID id.ID) squirrel.UpdateBuilder {
	return r.Builder().
		Update(ordersTable).
		Set("total_amount", squirrel.Expr(
			"(SELECT COALESCE(SUM(oi.price_snapshot * oi.quantity), 0) FROM "+orderItemsTable+" oi WHERE oi.order_id = ?)", orderID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID}).
		Suffix("RETURNING total_amount")
}

// RecomputeTotal rewrites total_amount from every line of the order.
func (r *OrderRepo) RecomputeTotal(ctx context.Context, orderID id.ID) (types.Money, error) {
	sql, args, err := r.recomputeQuery(orderID).ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}
	var total types.Money
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		if postgres.IsNoRows(err) {
			return types.Zero(), apperror.NewNotFound("order", orderID)
		}
		return types.Zero(), fmt.Errorf("recompute order total: %w", err)
	}
	return total, nil
}

func (r *OrderRepo) listItemsQuery(orderIDs []id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(orderItemColumns...).
		From(orderItemsTable + " oi").
		LeftJoin("menu_items m ON m.id = oi.menu_item_id").
		Where(squirrel.Eq{"oi.order_id": orderIDs}).
		OrderBy("oi.created_at", "oi.id")
}

// ListItems returns lines for the given orders keyed by order id.
func (r *OrderRepo) ListItems(ctx context.Context, orderIDs ...id.ID) (map[id.ID][]orders.OrderItem, error) {
	out := make(map[id.ID][]orders.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	sql, args, err := r.listItemsQuery(orderIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []orders.OrderItem
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}
