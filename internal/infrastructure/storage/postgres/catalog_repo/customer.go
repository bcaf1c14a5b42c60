package catalog_repo

import (
	"moneta/internal/domain/catalogs/customer"
	"moneta/internal/infrastructure/storage/postgres"
)

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo is the PostgreSQL customer repository.
type CustomerRepo struct {
	*BaseRepo[*customer.Customer]
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseRepo: NewBaseRepo(txm, "customers", func() *customer.Customer {
			return &customer.Customer{}
		}),
	}
}
