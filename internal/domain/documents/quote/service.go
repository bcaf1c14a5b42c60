package quote

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
	"moneta/internal/domain/documents/invoice"
	"moneta/pkg/logger"
	"moneta/pkg/numerator"
)

// DefaultExpiryDays is added to the issue date when no expiry is given.
const DefaultExpiryDays = 30

const maxNumberRetries = 3

// Numerator is the slice of the numbering authority the service needs.
type Numerator interface {
	Next(ctx context.Context, prefix string, period time.Time) (string, error)
}

// Service provides business operations for quotes, including the
// one-shot conversion into an invoice.
type Service struct {
	repo         Repository
	invoiceRepo  invoice.Repository
	customerRepo customer.Repository
	numerator    Numerator
	txm          tx.Manager
	now          func() time.Time
}

// NewService creates a new quote service.
func NewService(repo Repository, invoiceRepo invoice.Repository, customerRepo customer.Repository, num Numerator, txm tx.Manager, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:         repo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		numerator:    num,
		txm:          txm,
		now:          now,
	}
}

// CreateInput carries the caller-supplied fields of a new quote.
type CreateInput struct {
	CustomerID id.ID
	IssueDate  time.Time
	ExpiryDate time.Time
	Notes      string
	Lines      []documents.Line
}

// Create builds a draft quote with computed totals and a freshly
// allocated DEVIS number, all in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Quote, error) {
	ownerID := appctx.GetOwnerID(ctx)

	if _, err := s.customerRepo.GetByID(ctx, ownerID, in.CustomerID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("customer does not exist").
				WithDetail("field", "customerId")
		}
		return nil, err
	}

	q := New(ownerID, in.CustomerID)
	if !in.IssueDate.IsZero() {
		q.IssueDate = in.IssueDate
	}
	q.ExpiryDate = in.ExpiryDate
	if q.ExpiryDate.IsZero() {
		q.ExpiryDate = q.IssueDate.AddDate(0, 0, DefaultExpiryDays)
	}
	q.Notes = in.Notes

	lines, totals, err := documents.Prepare(q.ID, in.Lines)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	q.Totals = totals

	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numerator.Next(ctx, numerator.PrefixQuote, q.IssueDate)
			if err != nil {
				return fmt.Errorf("allocate number: %w", err)
			}
			q.Number = number

			if err := s.repo.Create(ctx, q); err != nil {
				return err
			}
			return s.repo.ReplaceLines(ctx, q.ID, q.Lines)
		})
		if err == nil {
			logger.Info(ctx, "quote created", "id", q.ID, "number", q.Number)
			return q, nil
		}
		if !apperror.IsDuplicate(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, apperror.NewNumberAllocation(
		numerator.Scope(numerator.PrefixQuote, q.IssueDate), lastErr)
}

// GetByID retrieves a quote with lines and effective status.
func (s *Service) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), quoteID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	q.Lines = lines
	q.Status = q.EffectiveStatus(s.now())

	return q, nil
}

// UpdateLines replaces the full line set and recomputes totals from
// scratch in one transaction. A converted quote is never editable.
func (s *Service) UpdateLines(ctx context.Context, quoteID id.ID, rawLines []documents.Line, notes *string) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), quoteID)
	if err != nil {
		return nil, err
	}

	if !q.Editable(s.now()) {
		return nil, apperror.NewNotEditable(string(q.EffectiveStatus(s.now())))
	}

	lines, totals, err := documents.Prepare(q.ID, rawLines)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	q.Totals = totals
	if notes != nil {
		q.Notes = *notes
	}
	q.Touch()

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, q); err != nil {
			return err
		}
		return s.repo.ReplaceLines(ctx, q.ID, q.Lines)
	})
	if err != nil {
		return nil, err
	}

	return q, nil
}

// SetStatus applies a state machine transition against the quote's
// effective status.
func (s *Service) SetStatus(ctx context.Context, quoteID id.ID, to Status) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), quoteID)
	if err != nil {
		return nil, err
	}

	from := q.EffectiveStatus(s.now())
	if !to.Valid() || !from.CanTransitionTo(to) {
		return nil, apperror.NewInvalidTransition(string(from), string(to))
	}

	q.Status = to
	q.Touch()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	logger.Info(ctx, "quote status changed", "id", q.ID, "from", from, "to", to)
	return q, nil
}

// ConvertOptions carries optional overrides for conversion.
type ConvertOptions struct {
	// DueDate overrides the default issue date + 30 days.
	DueDate *time.Time
}

// ConvertToInvoice produces an invoice from an accepted quote, exactly
// once. The new invoice gets a fresh INV number, issue date now, a
// deep copy of every line, and the quote records the back-link — all in
// one transaction. A second attempt fails with NotConvertible instead
// of silently creating a duplicate invoice.
func (s *Service) ConvertToInvoice(ctx context.Context, quoteID id.ID, opts ConvertOptions) (*invoice.Invoice, error) {
	ownerID := appctx.GetOwnerID(ctx)

	q, err := s.repo.GetByID(ctx, ownerID, quoteID)
	if err != nil {
		return nil, err
	}

	if q.Converted() {
		return nil, apperror.NewNotConvertible("quote has already been converted").
			WithDetail("invoiceId", q.InvoiceID.String())
	}
	if q.Status != StatusAccepted {
		return nil, apperror.NewNotConvertible("only accepted quotes can be converted").
			WithDetail("status", string(q.EffectiveStatus(s.now())))
	}

	lines, err := s.repo.GetLines(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	now := s.now().UTC()
	inv := invoice.New(ownerID, q.CustomerID)
	inv.IssueDate = now
	inv.DueDate = now.AddDate(0, 0, invoice.DefaultDueDays)
	if opts.DueDate != nil {
		inv.DueDate = *opts.DueDate
	}
	inv.Notes = q.Notes
	inv.Lines = documents.Clone(inv.ID, lines)
	inv.Totals = q.Totals

	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numerator.Next(ctx, numerator.PrefixInvoice, inv.IssueDate)
			if err != nil {
				return fmt.Errorf("allocate number: %w", err)
			}
			inv.Number = number

			if err := s.invoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			if err := s.invoiceRepo.ReplaceLines(ctx, inv.ID, inv.Lines); err != nil {
				return err
			}

			q.InvoiceID = &inv.ID
			q.Touch()
			return s.repo.Update(ctx, q)
		})
		if err == nil {
			logger.Info(ctx, "quote converted",
				"quote_id", q.ID, "invoice_id", inv.ID, "number", inv.Number)
			return inv, nil
		}
		if !apperror.IsDuplicate(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, apperror.NewNumberAllocation(
		numerator.Scope(numerator.PrefixInvoice, inv.IssueDate), lastErr)
}

// Delete removes a draft quote.
func (s *Service) Delete(ctx context.Context, quoteID id.ID) error {
	q, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), quoteID)
	if err != nil {
		return err
	}

	if q.Status != StatusDraft {
		return apperror.NewNotEditable(string(q.EffectiveStatus(s.now())))
	}

	return s.repo.Delete(ctx, q.OwnerID, q.ID)
}

// List retrieves the owner's quotes with effective statuses.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	filter.Clamp(200)
	result, err := s.repo.List(ctx, appctx.GetOwnerID(ctx), filter)
	if err != nil {
		return result, err
	}

	now := s.now()
	for _, q := range result.Items {
		q.Status = q.EffectiveStatus(now)
	}
	return result, nil
}
