package entity

import (
	"context"
	"time"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
)

// Document is the base type for commercial documents (Invoice, Quote).
// Status vocabularies live in the concrete document packages; the base
// carries only the shape both variants share.
type Document struct {
	Base

	// Number is the document number, unique and immutable once issued.
	// Format: PREFIX-YYYYMM-SEQ, allocated by the numerator.
	Number string `db:"number" json:"number"`

	// CustomerID references the customer the document is addressed to
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// IssueDate is the business date of the document
	IssueDate time.Time `db:"issue_date" json:"issueDate"`

	// Notes is an optional user comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document with generated ID.
// The number stays empty until the numerator allocates it at creation.
func NewDocument(ownerID, customerID id.ID) Document {
	return Document{
		Base:       NewBase(ownerID),
		CustomerID: customerID,
		IssueDate:  time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.OwnerID) {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "ownerId")
	}

	if id.IsNil(d.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if d.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").
			WithDetail("field", "issueDate")
	}

	return nil
}
