package document_repo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/orders"
	"restopos/internal/domain/tables"
)

const selectOrder = "SELECT o.id, o.table_id, t.table_code, o.status, o.total_amount, " +
	"o.customer_id, o.customer_name, o.customer_phone, " +
	"o.payment_method, o.cash_amount, o.online_amount, o.credit_amount, o.discount_amount, " +
	"o.created_at, o.updated_at FROM orders o JOIN tables t ON t.id = o.table_id"

func TestOrderRepo_FindOpenQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	tableID := id.New()

	sql, args, err := repo.findOpenQuery(tableID).ToSql()
	require.NoError(t, err)
	assert.Equal(t, selectOrder+" WHERE o.table_id = $1 AND o.status IN ($2,$3,$4) ORDER BY o.created_at LIMIT 1", sql)
	assert.Equal(t, []any{tableID.String(), "pending", "preparing", "served"}, args)
}

func TestOrderRepo_UpsertItemQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	orderID, menuID := id.New(), id.New()
	now := time.Now()

	sql, args, err := repo.upsertItemQuery(orderID, menuID, 3, types.MustMoney("50"), now).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO order_items (id,order_id,menu_item_id,quantity,price_snapshot,created_at) VALUES ($1,$2,$3,$4,$5,$6) "+
			"ON CONFLICT (order_id, menu_item_id) DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity",
		sql)
	require.Len(t, args, 6)
	assert.Equal(t, orderID, args[1])
	assert.Equal(t, menuID, args[2])
	assert.Equal(t, 3, args[3])
	assert.Equal(t, now, args[5])
}

func TestOrderRepo_RecomputeQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	orderID := id.New()

	sql, args, err := repo.recomputeQuery(orderID).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE orders SET total_amount = (SELECT COALESCE(SUM(oi.price_snapshot * oi.quantity), 0) FROM order_items oi WHERE oi.order_id = $1), "+
			"updated_at = NOW() WHERE id = $2 RETURNING total_amount",
		sql)
	assert.Equal(t, []any{orderID, orderID.String()}, args)
}

func TestOrderRepo_CreateQueryOmitsJoinedColumns(t *testing.T) {
	repo := NewOrderRepo(nil)
	tbl := &tables.Table{ID: id.New(), TableCode: "T1"}
	o := &orders.Order{
		ID:          id.New(),
		TableID:     tbl.ID,
		TableCode:   tbl.TableCode,
		Status:      orders.StatusPending,
		TotalAmount: types.Zero(),
	}

	sql, _, err := repo.createQuery(o).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "table_code")
	assert.NotContains(t, sql, "items")
	assert.Contains(t, sql, "INSERT INTO orders (cash_amount,created_at,credit_amount,customer_id,customer_name,customer_phone,discount_amount,id,online_amount,payment_method,status,table_id,total_amount,updated_at)")
}

func TestOrderRepo_UpdateCustomerQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	orderID := id.New()
	name := "Sita"

	sql, args, err := repo.updateCustomerQuery(orderID, nil, &name, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE orders SET updated_at = NOW(), customer_name = $1 WHERE id = $2", sql)
	assert.Equal(t, []any{"Sita", orderID.String()}, args)
}

func TestOrderRepo_ListItemsQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	a, b := id.New(), id.New()

	sql, args, err := repo.listItemsQuery([]id.ID{a, b}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT oi.id, oi.order_id, oi.menu_item_id, COALESCE(m.name, '') AS name, COALESCE(m.department, '') AS department, "+
			"oi.quantity, oi.price_snapshot, oi.created_at FROM order_items oi LEFT JOIN menu_items m ON m.id = oi.menu_item_id "+
			"WHERE oi.order_id IN ($1,$2) ORDER BY oi.created_at, oi.id",
		sql)
	assert.Equal(t, []any{a, b}, args)
}

func TestTableLockKey(t *testing.T) {
	tableID := id.MustParse("0190d6a4-7a1e-7c4e-9b3a-1f2e3d4c5b6a")
	assert.Equal(t, "order-table:0190d6a4-7a1e-7c4e-9b3a-1f2e3d4c5b6a", tableLockKey(tableID))
}

func TestOrderRepo_ListClosedQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 999_000_000, time.UTC)

	sql, args, err := repo.listClosedQuery(from, to).ToSql()
	require.NoError(t, err)
	assert.Equal(t, selectOrder+" WHERE o.status IN ($1,$2) AND o.updated_at >= $3 AND o.updated_at <= $4 "+
		"ORDER BY o.updated_at DESC, o.id DESC", sql)
	assert.Equal(t, []any{"paid", "cancelled", from, to}, args)
}

func TestCreateError_OpenOrderIndexIsConflict(t *testing.T) {
	tableID := id.New()
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_one_open_per_table"}

	err := createError(fmt.Errorf("exec: %w", pgErr), tableID)
	require.True(t, apperror.IsConflict(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, tableID, appErr.Details["tableId"])
	assert.ErrorIs(t, err, pgErr)
}

func TestCreateError_OtherFailuresStayInternal(t *testing.T) {
	tableID := id.New()

	otherIndex := &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"}
	err := createError(otherIndex, tableID)
	assert.False(t, apperror.IsAppError(err))
	assert.ErrorIs(t, err, otherIndex)

	down := errors.New("connection reset")
	err = createError(down, tableID)
	assert.False(t, apperror.IsAppError(err))
	assert.ErrorIs(t, err, down)
}

func TestUpsertItemError_OverflowIsInvalidInput(t *testing.T) {
	menuID := id.New()

	err := upsertItemError(&pgconn.PgError{Code: "22003"}, menuID)
	assert.True(t, apperror.IsValidation(err))

	err = upsertItemError(errors.New("boom"), menuID)
	assert.False(t, apperror.IsAppError(err))
}
