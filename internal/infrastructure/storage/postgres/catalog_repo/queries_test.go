package catalog_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/id"
	"restopos/internal/domain/tables"
)

func TestTableRepo_Queries(t *testing.T) {
	repo := NewTableRepo(nil)

	sql, args, err := repo.getByCodeQuery("T5").Limit(1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, table_code, table_type, qr_token, created_at FROM tables WHERE table_code = $1 LIMIT 1", sql)
	assert.Equal(t, []any{"T5"}, args)

	tbl := tables.NewTable("WALK-IN-1", tables.TypeWalkIn, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	sql, args, err = repo.insertIfAbsentQuery(tbl).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO tables (created_at,id,qr_token,table_code,table_type) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (table_code) DO NOTHING",
		sql)
	require.Len(t, args, 5)
	assert.Equal(t, tbl.ID, args[1])
	assert.Equal(t, "WALK-IN-1", args[3])
	assert.Equal(t, tables.TypeWalkIn, args[4])
}

func TestMenuRepo_Query(t *testing.T) {
	menuID := id.New()
	sql, args, err := NewMenuRepo(nil).getQuery(menuID).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, price, department FROM menu_items WHERE id = $1", sql)
	// squirrel.Eq resolves driver.Valuer arguments.
	assert.Equal(t, []any{menuID.String()}, args)
}

func TestCustomerRepo_Query(t *testing.T) {
	sql, args, err := NewCustomerRepo(nil).findByPhoneQuery("9800000001").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, full_name, phone_number FROM customers WHERE phone_number = $1", sql)
	assert.Equal(t, []any{"9800000001"}, args)
}
