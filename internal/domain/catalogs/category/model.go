// Package category provides the transaction category catalog.
package category

import (
	"context"

	"moneta/internal/core/apperror"
	"moneta/internal/core/entity"
	"moneta/internal/core/id"
)

// Kind classifies a category as income or expense. A transaction's
// income/expense classification is always looked up through its
// category's kind, never cached on the transaction itself.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether the kind is one of the declared values.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Category groups transactions for aggregation and reporting.
type Category struct {
	entity.Base

	// Name is unique per owner
	Name string `db:"name" json:"name"`

	// Kind is immutable once transactions reference the category
	Kind Kind `db:"kind" json:"kind"`

	// Description is optional free text
	Description string `db:"description" json:"description,omitempty"`
}

// New creates a new category for the given owner.
func New(ownerID id.ID, name string, kind Kind) *Category {
	return &Category{
		Base: entity.NewBase(ownerID),
		Name: name,
		Kind: kind,
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if !c.Kind.Valid() {
		return apperror.NewValidation("kind must be income or expense").
			WithDetail("field", "kind")
	}

	return nil
}
