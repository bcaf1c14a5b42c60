package ledger

import (
	"context"
	"fmt"
	"time"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/category"
	"moneta/pkg/logger"
)

// Clock returns the current time. Injectable so the trailing-month
// window is deterministic in tests.
type Clock func() time.Time

// Service provides ledger operations: recording transactions and
// aggregating them into totals, breakdowns and monthly summaries.
type Service struct {
	repo    Repository
	catRepo category.Repository
	now     Clock
}

// NewService creates a new ledger service.
func NewService(repo Repository, catRepo category.Repository, now Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, catRepo: catRepo, now: now}
}

// Record validates and stores a transaction for the authenticated
// owner. When a category is given it must belong to the same owner.
func (s *Service) Record(ctx context.Context, tx *Transaction) (*Transaction, error) {
	ownerID := appctx.GetOwnerID(ctx)

	rec := New(ownerID, tx.Amount, tx.Date)
	rec.Description = tx.Description
	rec.TaxRate = tx.TaxRate
	rec.CategoryID = tx.CategoryID

	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	if rec.CategoryID != nil {
		if _, err := s.catRepo.GetByID(ctx, ownerID, *rec.CategoryID); err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewValidation("category does not exist").
					WithDetail("field", "categoryId")
			}
			return nil, err
		}
	}

	rec.ApplyTaxRate()

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	logger.Info(ctx, "transaction recorded", "id", rec.ID, "amount", rec.Amount)
	return rec, nil
}

// GetByID retrieves an owner's transaction.
func (s *Service) GetByID(ctx context.Context, txID id.ID) (*Transaction, error) {
	return s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), txID)
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, txID id.ID) error {
	return s.repo.Delete(ctx, appctx.GetOwnerID(ctx), txID)
}

// List retrieves the owner's transactions.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error) {
	filter.Clamp(500)
	return s.repo.List(ctx, appctx.GetOwnerID(ctx), filter)
}

// TotalByType sums the owner's transactions of the given kind over the
// half-open range [from, to). An owner with no transactions gets zero,
// never an error.
func (s *Service) TotalByType(ctx context.Context, kind category.Kind, from, to *time.Time) (types.Money, error) {
	if !kind.Valid() {
		return types.Zero(), apperror.NewValidation("kind must be income or expense").
			WithDetail("field", "kind")
	}
	return s.repo.TotalByType(ctx, appctx.GetOwnerID(ctx), kind, from, to)
}

// CategoryBreakdown returns per-category totals for the given kind,
// largest first. Empty for an owner with no data.
func (s *Service) CategoryBreakdown(ctx context.Context, kind category.Kind) ([]BreakdownEntry, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("kind must be income or expense").
			WithDetail("field", "kind")
	}
	return s.repo.CategoryBreakdown(ctx, appctx.GetOwnerID(ctx), kind)
}

// MonthlySummary computes income and expense totals for each of the
// trailing monthCount calendar months. The current month is the last
// element and is bounded by now rather than month end.
func (s *Service) MonthlySummary(ctx context.Context, monthCount int) (*MonthlySummary, error) {
	if monthCount <= 0 {
		monthCount = 12
	}
	if monthCount > 60 {
		monthCount = 60
	}

	ownerID := appctx.GetOwnerID(ctx)
	now := s.now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	summary := &MonthlySummary{
		Labels:  make([]string, 0, monthCount),
		Income:  make([]types.Money, 0, monthCount),
		Expense: make([]types.Money, 0, monthCount),
	}

	for i := monthCount - 1; i >= 0; i-- {
		start := currentMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		if i == 0 {
			// the current, partial month ends at "now"
			end = now
		}

		income, err := s.repo.TotalByType(ctx, ownerID, category.KindIncome, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("monthly income %s: %w", start.Format("2006-01"), err)
		}
		expense, err := s.repo.TotalByType(ctx, ownerID, category.KindExpense, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("monthly expense %s: %w", start.Format("2006-01"), err)
		}

		summary.Labels = append(summary.Labels, start.Format("Jan 2006"))
		summary.Income = append(summary.Income, income)
		summary.Expense = append(summary.Expense, expense)
	}

	return summary, nil
}
