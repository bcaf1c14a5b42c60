// Package quote provides the Quote commercial document and its
// conversion into an invoice.
package quote

import (
	"context"
	"time"

	"moneta/internal/core/apperror"
	"moneta/internal/core/entity"
	"moneta/internal/core/id"
	"moneta/internal/domain/documents"
)

// Status is the quote lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// transitions declares the permitted state machine edges. Expired is
// derived from the expiry date, never requested by callers.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusAccepted, StatusRejected},
	StatusAccepted: {},
	StatusRejected: {},
	StatusExpired:  {},
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

// Quote is a commercial document proposing prices. An accepted quote
// converts into an invoice exactly once; after conversion the quote is
// immutable except for status display.
type Quote struct {
	entity.Document

	ExpiryDate time.Time `db:"expiry_date" json:"expiryDate"`
	Status     Status    `db:"status" json:"status"`

	// InvoiceID links to the invoice this quote was converted into.
	// At most one conversion is ever recorded.
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	documents.Totals

	Lines []documents.Line `db:"-" json:"lines"`
}

// New creates a draft quote.
func New(ownerID, customerID id.ID) *Quote {
	return &Quote{
		Document: entity.NewDocument(ownerID, customerID),
		Status:   StatusDraft,
	}
}

// Converted reports whether this quote already produced an invoice.
func (q *Quote) Converted() bool {
	return q.InvoiceID != nil
}

// EffectiveStatus resolves the automatic expired state: a sent quote
// whose expiry date has passed reads as expired without a stored
// change. Accepted and rejected quotes never expire.
func (q *Quote) EffectiveStatus(now time.Time) Status {
	if q.Status == StatusSent && !q.ExpiryDate.IsZero() && now.After(q.ExpiryDate) {
		return StatusExpired
	}
	return q.Status
}

// Editable reports whether line items may be replaced. Draft and sent
// quotes are editable until expiry; a converted quote never is.
func (q *Quote) Editable(now time.Time) bool {
	if q.Converted() {
		return false
	}
	s := q.EffectiveStatus(now)
	return s == StatusDraft || s == StatusSent
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if !q.Status.Valid() {
		return apperror.NewValidation("unknown quote status").
			WithDetail("field", "status").
			WithDetail("status", string(q.Status))
	}

	if q.ExpiryDate.IsZero() {
		return apperror.NewValidation("expiry date is required").
			WithDetail("field", "expiryDate")
	}

	return nil
}
