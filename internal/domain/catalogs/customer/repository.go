package customer

import (
	"context"

	"moneta/internal/core/id"
	"moneta/internal/domain"
)

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, ownerID, customerID id.ID) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, ownerID, customerID id.ID) error
	List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Customer], error)
}
