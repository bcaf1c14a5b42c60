package ledger

import (
	"context"
	"time"

	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/category"
)

// Repository defines persistence operations for transactions and the
// aggregation primitives built on them.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, ownerID, txID id.ID) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, ownerID, txID id.ID) error
	List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*Transaction], error)

	// TotalByType sums amounts over transactions whose category
	// currently has the given kind, restricted to the half-open range
	// [from, to) when the bounds are non-nil. The category kind is
	// resolved by join at query time, so reassigning a transaction's
	// category moves its amount with it.
	TotalByType(ctx context.Context, ownerID id.ID, kind category.Kind, from, to *time.Time) (types.Money, error)

	// CategoryBreakdown returns one entry per category of the given
	// kind having at least one transaction, ordered by total descending
	// then category name ascending.
	CategoryBreakdown(ctx context.Context, ownerID id.ID, kind category.Kind) ([]BreakdownEntry, error)
}

// ListFilter filters transaction listings.
type ListFilter struct {
	domain.ListFilter

	CategoryID *id.ID
	From       *time.Time
	To         *time.Time
}
