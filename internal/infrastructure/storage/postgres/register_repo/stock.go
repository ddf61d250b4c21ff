// Package register_repo provides PostgreSQL implementations for stock registers.
package register_repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/orders"
	"restopos/internal/infrastructure/storage/postgres"
	"restopos/pkg/logger"
)

const (
	inventoryItemsTable     = "inventory_items"
	inventoryRecipesTable   = "inventory_recipes"
	inventoryMovementsTable = "inventory_movements"
)

var movementColumns = []string{"id", "order_id", "inventory_item_id", "quantity", "created_at"}

// recipe says how much of an inventory item one unit of a menu item consumes.
type recipe struct {
	MenuItemID      id.ID          `db:"menu_item_id"`
	InventoryItemID id.ID          `db:"inventory_item_id"`
	Quantity        types.Quantity `db:"quantity"`
}

// StockRepo deducts inventory for ordered menu items. It implements
// orders.InventoryDeductor.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	now       func() time.Time
}

var _ orders.InventoryDeductor = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:       time.Now,
	}
}

// DeductStockForOrder records one movement per consumed inventory item and
// lowers its balance. Menu items without a recipe are skipped.
func (r *StockRepo) DeductStockForOrder(ctx context.Context, orderID id.ID, items []orders.LineInput) error {
	if len(items) == 0 {
		return nil
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		recipes, err := r.recipesFor(ctx, items)
		if err != nil {
			return err
		}

		usage := consumption(items, recipes)
		if len(usage) == 0 {
			logger.Debug(ctx, "no recipe mapping for ordered items", "order_id", orderID)
			return nil
		}

		if err := r.createMovements(ctx, orderID, usage); err != nil {
			return err
		}
		return r.updateBalances(ctx, usage)
	})
}

func (r *StockRepo) recipesQuery(items []orders.LineInput) squirrel.SelectBuilder {
	menuIDs := make([]id.ID, 0, len(items))
	for _, it := range items {
		menuIDs = append(menuIDs, it.MenuItemID)
	}
	return r.builder.
		Select("menu_item_id", "inventory_item_id", "quantity").
		From(inventoryRecipesTable).
		Where(squirrel.Eq{"menu_item_id": menuIDs})
}

func (r *StockRepo) recipesFor(ctx context.Context, items []orders.LineInput) ([]recipe, error) {
	sql, args, err := r.recipesQuery(items).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var recipes []recipe
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &recipes, sql, args...); err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	return recipes, nil
}

// itemUsage is the total quantity of one inventory item consumed by an order.
type itemUsage struct {
	InventoryItemID id.ID
	Quantity        types.Quantity
}

// consumption multiplies recipes by ordered units and sums per inventory item.
// The result is sorted by inventory item id so concurrent deductions lock rows
// in the same order.
func consumption(items []orders.LineInput, recipes []recipe) []itemUsage {
	units := make(map[id.ID]int, len(items))
	for _, it := range items {
		units[it.MenuItemID] += it.Quantity
	}

	totals := make(map[id.ID]types.Quantity)
	for _, rc := range recipes {
		n := units[rc.MenuItemID]
		if n <= 0 || !rc.Quantity.IsPositive() {
			continue
		}
		totals[rc.InventoryItemID] += rc.Quantity.MulUnits(n)
	}

	out := make([]itemUsage, 0, len(totals))
	for itemID, q := range totals {
		out = append(out, itemUsage{InventoryItemID: itemID, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InventoryItemID.String() < out[j].InventoryItemID.String()
	})
	return out
}

func (r *StockRepo) createMovements(ctx context.Context, orderID id.ID, usage []itemUsage) error {
	now := r.now()
	rows := make([][]any, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, []any{id.New(), orderID, u.InventoryItemID, -u.Quantity.Int64Scaled(), now})
	}
	inserter := postgres.NewBatchInserter(r.txManager)
	if _, err := inserter.CopyFromSlice(ctx, inventoryMovementsTable, movementColumns, rows); err != nil {
		return fmt.Errorf("copy inventory movements: %w", err)
	}
	return nil
}

func (r *StockRepo) updateBalances(ctx context.Context, usage []itemUsage) error {
	queries := make([]postgres.BatchQuery, 0, len(usage))
	for _, u := range usage {
		sql, args, err := r.builder.
			Update(inventoryItemsTable).
			Set("quantity", squirrel.Expr("quantity - ?", u.Quantity.Int64Scaled())).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": u.InventoryItemID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	affected, err := postgres.NewBatchExecutor(r.txManager).ExecuteBatch(ctx, queries)
	if err != nil {
		return fmt.Errorf("update inventory balances: %w", err)
	}
	for i, n := range affected {
		if n == 0 {
			logger.Warn(ctx, "inventory item missing", "inventory_item_id", usage[i].InventoryItemID)
		}
	}
	return nil
}
