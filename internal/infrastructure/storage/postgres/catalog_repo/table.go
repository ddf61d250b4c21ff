package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"restopos/internal/domain/tables"
	"restopos/internal/infrastructure/storage/postgres"
)

const tablesTable = "tables"

// TableRepo implements tables.Repository.
type TableRepo struct {
	*BaseCatalogRepo[tables.Table]
}

var _ tables.Repository = (*TableRepo)(nil)

// NewTableRepo creates a table repository.
func NewTableRepo(txManager *postgres.TxManager) *TableRepo {
	return &TableRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[tables.Table](txManager, tablesTable, postgres.ExtractDBColumns[tables.Table]()),
	}
}

func (r *TableRepo) getByCodeQuery(code string) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"table_code": code})
}

// GetByCode returns nil, nil when no table has the code.
func (r *TableRepo) GetByCode(ctx context.Context, code string) (*tables.Table, error) {
	return r.findOne(ctx, r.getByCodeQuery(code))
}

func (r *TableRepo) insertIfAbsentQuery(t *tables.Table) squirrel.InsertBuilder {
	return r.Builder().
		Insert(tablesTable).
		SetMap(postgres.StructToMap(t)).
		Suffix("ON CONFLICT (table_code) DO NOTHING")
}

// CreateIfAbsent inserts t unless its code exists, then re-reads the row so
// concurrent creators of the same code share one table.
func (r *TableRepo) CreateIfAbsent(ctx context.Context, t *tables.Table) (*tables.Table, error) {
	sql, args, err := r.insertIfAbsentQuery(t).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("insert table: %w", err)
	}

	stored, err := r.GetByCode(ctx, t.TableCode)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("table %q missing after insert", t.TableCode)
	}
	return stored, nil
}
