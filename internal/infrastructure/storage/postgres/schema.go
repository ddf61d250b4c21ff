package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"restopos/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by ApplySchema.
func Schema() string {
	return schemaSQL
}

// ApplySchema creates missing tables and indexes.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
