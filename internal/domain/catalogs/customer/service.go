package customer

import (
	"context"
	"fmt"

	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/domain"
)

// Service provides business operations for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a customer for the authenticated owner.
func (s *Service) Create(ctx context.Context, c *Customer) (*Customer, error) {
	if c == nil {
		c = &Customer{}
	}
	created := New(appctx.GetOwnerID(ctx), c.Name)
	created.Email = c.Email
	created.Phone = c.Phone
	created.Address = c.Address

	if err := created.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// GetByID retrieves an owner's customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), customerID)
}

// Update modifies a customer.
func (s *Service) Update(ctx context.Context, customerID id.ID, upd *Customer) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), customerID)
	if err != nil {
		return nil, err
	}

	c.Name = upd.Name
	c.Email = upd.Email
	c.Phone = upd.Phone
	c.Address = upd.Address
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	c.Touch()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	return s.repo.Delete(ctx, appctx.GetOwnerID(ctx), customerID)
}

// List retrieves the owner's customers.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	filter.Clamp(500)
	return s.repo.List(ctx, appctx.GetOwnerID(ctx), filter)
}
