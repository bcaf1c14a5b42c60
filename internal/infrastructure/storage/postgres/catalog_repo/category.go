package catalog_repo

import (
	"context"
	"fmt"

	"moneta/internal/core/id"
	"moneta/internal/domain/catalogs/category"
	"moneta/internal/infrastructure/storage/postgres"
)

var _ category.Repository = (*CategoryRepo)(nil)

// CategoryRepo is the PostgreSQL category repository.
type CategoryRepo struct {
	*BaseRepo[*category.Category]
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseRepo: NewBaseRepo(txm, "categories", func() *category.Category {
			return &category.Category{}
		}),
	}
}

// HasTransactions reports whether any transaction references the
// category. The kind-immutability and delete guards rely on it.
func (r *CategoryRepo) HasTransactions(ctx context.Context, catID id.ID) (bool, error) {
	var exists bool
	err := r.Querier(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)
	`, catID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category transactions: %w", err)
	}
	return exists, nil
}
