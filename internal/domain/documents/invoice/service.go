package invoice

import (
	"context"
	"fmt"
	"time"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/core/tx"
	"moneta/internal/domain"
	"moneta/internal/domain/catalogs/customer"
	"moneta/internal/domain/documents"
	"moneta/pkg/logger"
	"moneta/pkg/numerator"
)

// maxNumberRetries bounds how often creation retries after losing a
// number race to a concurrent creation. Past this the allocation fails
// outright rather than looping.
const maxNumberRetries = 3

// Numerator is the slice of the numbering authority the service needs.
type Numerator interface {
	Next(ctx context.Context, prefix string, period time.Time) (string, error)
}

// Service provides business operations for invoices.
type Service struct {
	repo         Repository
	customerRepo customer.Repository
	numerator    Numerator
	txm          tx.Manager
	now          func() time.Time
}

// NewService creates a new invoice service.
func NewService(repo Repository, customerRepo customer.Repository, num Numerator, txm tx.Manager, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		numerator:    num,
		txm:          txm,
		now:          now,
	}
}

// CreateInput carries the caller-supplied fields of a new invoice.
// Totals are never part of the input; they are always derived.
type CreateInput struct {
	CustomerID id.ID
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
	Lines      []documents.Line
}

// Create builds a draft invoice with computed totals and a freshly
// allocated number. Number allocation, header insert and line insert
// run in one transaction: a failure leaves no orphan lines and no
// number observable as used.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Invoice, error) {
	ownerID := appctx.GetOwnerID(ctx)

	if _, err := s.customerRepo.GetByID(ctx, ownerID, in.CustomerID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("customer does not exist").
				WithDetail("field", "customerId")
		}
		return nil, err
	}

	inv := New(ownerID, in.CustomerID)
	if !in.IssueDate.IsZero() {
		inv.IssueDate = in.IssueDate
	}
	inv.DueDate = in.DueDate
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.AddDate(0, 0, DefaultDueDays)
	}
	inv.Notes = in.Notes

	lines, totals, err := documents.Prepare(inv.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	inv.Totals = totals

	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.persistNew(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created", "id", inv.ID, "number", inv.Number)
	return inv, nil
}

// persistNew allocates a number and inserts header plus lines, retrying
// a bounded number of times when the number unique index reports a
// collision. Each attempt is its own transaction, so a lost race never
// leaves a half-committed document.
func (s *Service) persistNew(ctx context.Context, inv *Invoice) error {
	var lastErr error

	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numerator.Next(ctx, numerator.PrefixInvoice, inv.IssueDate)
			if err != nil {
				return fmt.Errorf("allocate number: %w", err)
			}
			inv.Number = number

			if err := s.repo.Create(ctx, inv); err != nil {
				return err
			}
			return s.repo.ReplaceLines(ctx, inv.ID, inv.Lines)
		})
		if err == nil {
			return nil
		}
		if !apperror.IsDuplicate(err) {
			return err
		}

		lastErr = err
		logger.Warn(ctx, "invoice number collision, retrying",
			"number", inv.Number, "attempt", attempt+1)
	}

	return apperror.NewNumberAllocation(
		numerator.Scope(numerator.PrefixInvoice, inv.IssueDate), lastErr)
}

// GetByID retrieves an invoice with lines. The returned status reflects
// the automatic overdue rule.
func (s *Service) GetByID(ctx context.Context, invID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), invID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines
	inv.Status = inv.EffectiveStatus(s.now())

	return inv, nil
}

// UpdateLines replaces the full line set and recomputes totals from
// scratch in the same transaction. Permitted only for draft and sent
// invoices.
func (s *Service) UpdateLines(ctx context.Context, invID id.ID, rawLines []documents.Line, notes *string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), invID)
	if err != nil {
		return nil, err
	}

	if !inv.Editable(s.now()) {
		return nil, apperror.NewNotEditable(string(inv.EffectiveStatus(s.now())))
	}

	lines, totals, err := documents.Prepare(inv.ID, rawLines)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	inv.Totals = totals
	if notes != nil {
		inv.Notes = *notes
	}
	inv.Touch()

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}
		return s.repo.ReplaceLines(ctx, inv.ID, inv.Lines)
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// SetStatus applies a state machine transition. The source state is the
// effective status, so a past-due sent invoice transitions as overdue.
func (s *Service) SetStatus(ctx context.Context, invID id.ID, to Status) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), invID)
	if err != nil {
		return nil, err
	}

	from := inv.EffectiveStatus(s.now())
	if !to.Valid() || !from.CanTransitionTo(to) {
		return nil, apperror.NewInvalidTransition(string(from), string(to))
	}

	inv.Status = to
	inv.Touch()
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	logger.Info(ctx, "invoice status changed",
		"id", inv.ID, "from", from, "to", to)
	return inv, nil
}

// Delete removes a draft invoice. Issued documents are cancelled, not
// deleted, so their numbers stay accounted for.
func (s *Service) Delete(ctx context.Context, invID id.ID) error {
	inv, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), invID)
	if err != nil {
		return err
	}

	if inv.Status != StatusDraft {
		return apperror.NewNotEditable(string(inv.EffectiveStatus(s.now())))
	}

	return s.repo.Delete(ctx, inv.OwnerID, inv.ID)
}

// List retrieves the owner's invoices with effective statuses.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.Clamp(200)
	result, err := s.repo.List(ctx, appctx.GetOwnerID(ctx), filter)
	if err != nil {
		return result, err
	}

	now := s.now()
	for _, inv := range result.Items {
		inv.Status = inv.EffectiveStatus(now)
	}
	return result, nil
}
