// Package invoice provides the Invoice commercial document.
package invoice

import (
	"context"
	"time"

	"moneta/internal/core/apperror"
	"moneta/internal/core/entity"
	"moneta/internal/core/id"
	"moneta/internal/domain/documents"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// transitions declares the permitted state machine edges. Overdue is
// never a transition target: it is derived from the due date by
// EffectiveStatus, not requested by callers.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusCancelled},
	StatusSent:      {StatusPaid, StatusCancelled},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// Valid reports whether s is a declared status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> to is in the graph.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no edges leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// DefaultDueDays is added to the issue date when no due date is given.
const DefaultDueDays = 30

// Invoice is a commercial document requesting payment. Its stored
// totals are derived from the line items and recomputed inside the same
// unit of work as any structural change.
type Invoice struct {
	entity.Document

	DueDate time.Time `db:"due_date" json:"dueDate"`
	Status  Status    `db:"status" json:"status"`

	documents.Totals

	Lines []documents.Line `db:"-" json:"lines"`
}

// New creates a draft invoice. The number stays empty until the
// numerator allocates it inside the creation transaction.
func New(ownerID, customerID id.ID) *Invoice {
	return &Invoice{
		Document: entity.NewDocument(ownerID, customerID),
		Status:   StatusDraft,
	}
}

// EffectiveStatus resolves the automatic overdue state: a sent invoice
// whose due date has passed reads as overdue without a stored change.
func (i *Invoice) EffectiveStatus(now time.Time) Status {
	if i.Status == StatusSent && !i.DueDate.IsZero() && now.After(i.DueDate) {
		return StatusOverdue
	}
	return i.Status
}

// Editable reports whether line items may be replaced. Only draft and
// sent invoices are editable; overdue, paid and cancelled are not.
func (i *Invoice) Editable(now time.Time) bool {
	s := i.EffectiveStatus(now)
	return s == StatusDraft || s == StatusSent
}

// Validate implements entity.Validatable.
func (i *Invoice) Validate(ctx context.Context) error {
	if err := i.Document.Validate(ctx); err != nil {
		return err
	}

	if !i.Status.Valid() {
		return apperror.NewValidation("unknown invoice status").
			WithDetail("field", "status").
			WithDetail("status", string(i.Status))
	}

	if i.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	return nil
}
