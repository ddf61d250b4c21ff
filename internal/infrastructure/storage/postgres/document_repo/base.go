// Package document_repo provides PostgreSQL implementations for order documents.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"restopos/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo carries the transaction manager and query builder shared
// by document repositories.
type BaseDocumentRepo struct {
	txManager *postgres.TxManager
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// exec runs a built statement and returns the number of affected rows.
func (r *BaseDocumentRepo) exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
