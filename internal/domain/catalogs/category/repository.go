package category

import (
	"context"

	"moneta/internal/core/id"
	"moneta/internal/domain"
)

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, cat *Category) error
	GetByID(ctx context.Context, ownerID, catID id.ID) (*Category, error)
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, ownerID, catID id.ID) error
	List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Category], error)

	// HasTransactions reports whether any transaction references the
	// category. Guards kind changes and deletion.
	HasTransactions(ctx context.Context, catID id.ID) (bool, error)
}
