package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/internal/domain/documents"
	"moneta/internal/domain/documents/quote"
	"moneta/internal/infrastructure/storage/postgres"
)

const docTypeQuote = "quote"

var _ quote.Repository = (*QuoteRepo)(nil)

// QuoteRepo is the PostgreSQL quote repository.
type QuoteRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewQuoteRepo creates a quote repository.
func NewQuoteRepo(txm *postgres.TxManager) *QuoteRepo {
	return &QuoteRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[quote.Quote](),
	}
}

// Create inserts the quote header.
func (r *QuoteRepo) Create(ctx context.Context, q *quote.Quote) error {
	data := postgres.StructToMap(q)
	data["doc_type"] = docTypeQuote

	sql, args, err := builder().
		Insert("documents").
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError("insert", "quote", err)
	}
	return nil
}

// GetByID retrieves a quote header within the owner's partition.
func (r *QuoteRepo) GetByID(ctx context.Context, ownerID, quoteID id.ID) (*quote.Quote, error) {
	sql, args, err := builder().
		Select(r.selectCols...).
		From("documents").
		Where(squirrel.Eq{"id": quoteID, "owner_id": ownerID, "doc_type": docTypeQuote}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := &quote.Quote{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), q, sql, args...); err != nil {
		if postgres.NotFound(err) {
			return nil, apperror.NewNotFound("quote", quoteID.String())
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// Update modifies a quote header with optimistic locking.
func (r *QuoteRepo) Update(ctx context.Context, q *quote.Quote) error {
	data := postgres.StructToMap(q)
	version := data["version"].(int)
	for _, col := range []string{"id", "version", "owner_id", "created_at", "number"} {
		delete(data, col)
	}

	sql, args, err := builder().
		Update("documents").
		SetMap(data).
		Set("version", version).
		Where(squirrel.Eq{"id": q.ID, "version": version - 1, "doc_type": docTypeQuote}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError("update", "quote", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("concurrent modification").
			WithDetail("entity", "quote").
			WithDetail("id", q.ID.String())
	}
	return nil
}

// Delete removes a quote; lines cascade.
func (r *QuoteRepo) Delete(ctx context.Context, ownerID, quoteID id.ID) error {
	sql, args, err := builder().
		Delete("documents").
		Where(squirrel.Eq{"id": quoteID, "owner_id": ownerID, "doc_type": docTypeQuote}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError("delete", "quote", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("quote", quoteID.String())
	}
	return nil
}

// List retrieves the owner's quotes with filtering and pagination.
func (r *QuoteRepo) List(ctx context.Context, ownerID id.ID, filter quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	result := domain.ListResult[*quote.Quote]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := builder().
		Select(r.selectCols...).
		From("documents").
		Where(squirrel.Eq{"owner_id": ownerID, "doc_type": docTypeQuote})

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"issue_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"issue_date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("issue_date DESC", "number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list quotes: %w", err)
	}
	return result, nil
}

// GetLines loads the quote's lines.
func (r *QuoteRepo) GetLines(ctx context.Context, quoteID id.ID) ([]documents.Line, error) {
	return getLines(ctx, r.txm.GetQuerier(ctx), quoteID)
}

// ReplaceLines swaps the quote's full line set.
func (r *QuoteRepo) ReplaceLines(ctx context.Context, quoteID id.ID, lines []documents.Line) error {
	return replaceLines(ctx, r.txm.GetQuerier(ctx), quoteID, lines)
}
