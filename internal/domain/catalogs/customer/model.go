// Package customer provides the customer catalog. Commercial documents
// reference exactly one customer.
package customer

import (
	"context"

	"moneta/internal/core/apperror"
	"moneta/internal/core/entity"
	"moneta/internal/core/id"
)

// Customer is a party an invoice or quote is addressed to.
type Customer struct {
	entity.Base

	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
}

// New creates a new customer for the given owner.
func New(ownerID id.ID, name string) *Customer {
	return &Customer{
		Base: entity.NewBase(ownerID),
		Name: name,
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
