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
	"moneta/internal/domain/documents/invoice"
	"moneta/internal/infrastructure/storage/postgres"
)

const docTypeInvoice = "invoice"

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo is the PostgreSQL invoice repository.
type InvoiceRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewInvoiceRepo creates an invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[invoice.Invoice](),
	}
}

// Create inserts the invoice header.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)
	data["doc_type"] = docTypeInvoice

	sql, args, err := builder().
		Insert("documents").
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError("insert", "invoice", err)
	}
	return nil
}

// GetByID retrieves an invoice header within the owner's partition.
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID, invID id.ID) (*invoice.Invoice, error) {
	sql, args, err := builder().
		Select(r.selectCols...).
		From("documents").
		Where(squirrel.Eq{"id": invID, "owner_id": ownerID, "doc_type": docTypeInvoice}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv := &invoice.Invoice{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), inv, sql, args...); err != nil {
		if postgres.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// Update modifies an invoice header with optimistic locking.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)
	version := data["version"].(int)
	for _, col := range []string{"id", "version", "owner_id", "created_at", "number"} {
		delete(data, col)
	}

	sql, args, err := builder().
		Update("documents").
		SetMap(data).
		Set("version", version).
		Where(squirrel.Eq{"id": inv.ID, "version": version - 1, "doc_type": docTypeInvoice}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError("update", "invoice", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("concurrent modification").
			WithDetail("entity", "invoice").
			WithDetail("id", inv.ID.String())
	}
	return nil
}

// Delete removes an invoice; lines cascade.
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID, invID id.ID) error {
	sql, args, err := builder().
		Delete("documents").
		Where(squirrel.Eq{"id": invID, "owner_id": ownerID, "doc_type": docTypeInvoice}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError("delete", "invoice", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invID.String())
	}
	return nil
}

// List retrieves the owner's invoices with filtering and pagination.
func (r *InvoiceRepo) List(ctx context.Context, ownerID id.ID, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := builder().
		Select(r.selectCols...).
		From("documents").
		Where(squirrel.Eq{"owner_id": ownerID, "doc_type": docTypeInvoice})

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
		return result, fmt.Errorf("list invoices: %w", err)
	}
	return result, nil
}

// GetLines loads the invoice's lines.
func (r *InvoiceRepo) GetLines(ctx context.Context, invID id.ID) ([]documents.Line, error) {
	return getLines(ctx, r.txm.GetQuerier(ctx), invID)
}

// ReplaceLines swaps the invoice's full line set.
func (r *InvoiceRepo) ReplaceLines(ctx context.Context, invID id.ID, lines []documents.Line) error {
	return replaceLines(ctx, r.txm.GetQuerier(ctx), invID, lines)
}
