// Package ledger_repo provides the PostgreSQL transaction repository
// and the aggregation queries built on it. The income/expense
// classification is always resolved by joining the category at query
// time; no sign or kind is ever cached on a transaction row.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/category"
	"moneta/internal/domain/ledger"
	"moneta/internal/infrastructure/storage/postgres"

	"time"
)

var _ ledger.Repository = (*TransactionRepo)(nil)

// TransactionRepo is the PostgreSQL transaction repository.
type TransactionRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewTransactionRepo creates a transaction repository.
func NewTransactionRepo(txm *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[ledger.Transaction](),
	}
}

func (r *TransactionRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx *ledger.Transaction) error {
	sql, args, err := r.builder().
		Insert("transactions").
		SetMap(postgres.StructToMap(tx)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError("insert", "transactions", err)
	}
	return nil
}

// GetByID retrieves a transaction within the owner's partition.
func (r *TransactionRepo) GetByID(ctx context.Context, ownerID, txID id.ID) (*ledger.Transaction, error) {
	sql, args, err := r.builder().
		Select(r.selectCols...).
		From("transactions").
		Where(squirrel.Eq{"id": txID, "owner_id": ownerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	tx := &ledger.Transaction{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), tx, sql, args...); err != nil {
		if postgres.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// Update modifies a transaction with optimistic locking.
func (r *TransactionRepo) Update(ctx context.Context, tx *ledger.Transaction) error {
	data := postgres.StructToMap(tx)
	version := data["version"].(int)
	for _, col := range []string{"id", "version", "owner_id", "created_at"} {
		delete(data, col)
	}

	sql, args, err := r.builder().
		Update("transactions").
		SetMap(data).
		Set("version", version).
		Where(squirrel.Eq{"id": tx.ID, "version": version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError("update", "transactions", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("concurrent modification").
			WithDetail("entity", "transactions").
			WithDetail("id", tx.ID.String())
	}
	return nil
}

// Delete removes a transaction within the owner's partition.
func (r *TransactionRepo) Delete(ctx context.Context, ownerID, txID id.ID) error {
	sql, args, err := r.builder().
		Delete("transactions").
		Where(squirrel.Eq{"id": txID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("transaction", txID.String())
	}
	return nil
}

// List retrieves the owner's transactions with optional category and
// date range filters.
func (r *TransactionRepo) List(ctx context.Context, ownerID id.ID, filter ledger.ListFilter) (domain.ListResult[*ledger.Transaction], error) {
	result := domain.ListResult[*ledger.Transaction]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.selectCols...).
		From("transactions").
		Where(squirrel.Eq{"owner_id": ownerID})

	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"date": *filter.To})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "created_at DESC")
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
		return result, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// TotalByType sums amounts over transactions whose category currently
// has the given kind, over the half-open range [from, to). Transactions
// without a category never contribute to a typed total.
func (r *TransactionRepo) TotalByType(ctx context.Context, ownerID id.ID, kind category.Kind, from, to *time.Time) (types.Money, error) {
	q := r.builder().
		Select("COALESCE(SUM(t.amount), 0)").
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(squirrel.Eq{"t.owner_id": ownerID, "c.kind": string(kind)})

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"t.date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"t.date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build total query: %w", err)
	}

	var total types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("total by type: %w", err)
	}
	return total, nil
}

// CategoryBreakdown returns per-category totals for the given kind,
// ordered by total descending then name ascending for determinism.
func (r *TransactionRepo) CategoryBreakdown(ctx context.Context, ownerID id.ID, kind category.Kind) ([]ledger.BreakdownEntry, error) {
	sql, args, err := r.builder().
		Select("c.name AS category_name", "SUM(t.amount) AS total").
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(squirrel.Eq{"t.owner_id": ownerID, "c.kind": string(kind)}).
		GroupBy("c.name").
		OrderBy("total DESC", "category_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build breakdown query: %w", err)
	}

	var entries []ledger.BreakdownEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return entries, nil
}
