package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"restopos/internal/core/id"
	"restopos/internal/domain/orders"
	"restopos/internal/infrastructure/storage/postgres"
)

const menuItemsTable = "menu_items"

// MenuRepo implements orders.MenuCatalog over menu_items.
type MenuRepo struct {
	*BaseCatalogRepo[orders.MenuItem]
}

var _ orders.MenuCatalog = (*MenuRepo)(nil)

// NewMenuRepo creates a menu repository.
func NewMenuRepo(txManager *postgres.TxManager) *MenuRepo {
	return &MenuRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[orders.MenuItem](txManager, menuItemsTable,
			[]string{"id", "name", "price", "department"}),
	}
}

func (r *MenuRepo) getQuery(menuItemID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"id": menuItemID})
}

// GetMenuItem returns nil, nil for unknown ids.
func (r *MenuRepo) GetMenuItem(ctx context.Context, menuItemID id.ID) (*orders.MenuItem, error) {
	return r.findOne(ctx, r.getQuery(menuItemID))
}
