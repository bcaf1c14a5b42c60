package invoice

import (
	"context"
	"time"

	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/documents"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	// Create inserts the invoice header. The unique index on the
	// document number is the backstop behind the numerator: a duplicate
	// surfaces as an apperror duplicate for the service's retry loop.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, ownerID, invID id.ID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, ownerID, invID id.ID) error
	List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*Invoice], error)

	// Line operations. ReplaceLines swaps the full line set; callers
	// run it in the same transaction as the totals update.
	GetLines(ctx context.Context, invID id.ID) ([]documents.Line, error)
	ReplaceLines(ctx context.Context, invID id.ID, lines []documents.Line) error
}

// ListFilter filters invoice listings.
type ListFilter struct {
	domain.ListFilter

	Status     *Status
	CustomerID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}
