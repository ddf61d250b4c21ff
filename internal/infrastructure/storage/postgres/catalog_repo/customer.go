package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"restopos/internal/domain/orders"
	"restopos/internal/infrastructure/storage/postgres"
)

const customersTable = "customers"

// CustomerRepo implements orders.CustomerDirectory.
type CustomerRepo struct {
	*BaseCatalogRepo[orders.Customer]
}

var _ orders.CustomerDirectory = (*CustomerRepo)(nil)

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[orders.Customer](txManager, customersTable,
			postgres.ExtractDBColumns[orders.Customer]()),
	}
}

func (r *CustomerRepo) findByPhoneQuery(phone string) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"phone_number": phone})
}

// FindByPhone returns nil, nil when nobody has the number.
func (r *CustomerRepo) FindByPhone(ctx context.Context, phone string) (*orders.Customer, error) {
	return r.findOne(ctx, r.findByPhoneQuery(phone))
}
