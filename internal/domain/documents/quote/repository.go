package quote

import (
	"context"
	"time"

	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/documents"
)

// Repository defines persistence operations for quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, ownerID, quoteID id.ID) (*Quote, error)
	Update(ctx context.Context, q *Quote) error
	Delete(ctx context.Context, ownerID, quoteID id.ID) error
	List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*Quote], error)

	GetLines(ctx context.Context, quoteID id.ID) ([]documents.Line, error)
	ReplaceLines(ctx context.Context, quoteID id.ID, lines []documents.Line) error
}

// ListFilter filters quote listings.
type ListFilter struct {
	domain.ListFilter

	Status     *Status
	CustomerID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}
