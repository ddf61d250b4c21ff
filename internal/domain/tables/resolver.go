package tables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/pkg/logger"
)

// Repository persists tables.
type Repository interface {
	// GetByCode returns nil, nil when no table has the code.
	GetByCode(ctx context.Context, code string) (*Table, error)

	// CreateIfAbsent inserts t unless its code is taken, then returns the
	// stored row. Concurrent callers with the same code get the same table.
	CreateIfAbsent(ctx context.Context, t *Table) (*Table, error)
}

// Resolver maps a cart submission's table code and customer type to a table.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Resolve returns the table an order should attach to.
//
// DINE_IN requires an existing table. WALK_IN and ONLINE get a virtual table,
// created on first use; a walk-in without a code always gets a new one.
func (r *Resolver) Resolve(ctx context.Context, code string, ct CustomerType) (*Table, error) {
	code = strings.TrimSpace(code)

	switch ct {
	case CustomerWalkIn, CustomerOnline:
		if code == "" {
			code = r.virtualCode(ct)
		}
		t, err := r.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("get table %q: %w", code, err)
		}
		if t != nil {
			return t, nil
		}
		t, err = r.repo.CreateIfAbsent(ctx, NewTable(code, TableTypeFor(ct), r.now()))
		if err != nil {
			return nil, fmt.Errorf("create table %q: %w", code, err)
		}
		logger.Info(ctx, "virtual table created", "table_code", t.TableCode, "table_type", t.TableType)
		return t, nil

	default:
		if code == "" {
			return nil, apperror.NewInvalidInput("tableCode", "tableCode is required for dine-in orders")
		}
		t, err := r.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("get table %q: %w", code, err)
		}
		if t == nil {
			return nil, apperror.NewNotFound("table", code)
		}
		return t, nil
	}
}

func (r *Resolver) virtualCode(ct CustomerType) string {
	if ct == CustomerOnline {
		return OnlineTableCode
	}
	return fmt.Sprintf("WALK-IN-%s-%s", r.now().UTC().Format("20060102150405"), strings.ToUpper(id.ShortRandom(8)))
}
