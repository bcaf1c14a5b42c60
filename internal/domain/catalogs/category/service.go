package category

import (
	"context"
	"fmt"

	"moneta/internal/core/apperror"
	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/domain"
	"moneta/pkg/logger"
)

// Service provides business operations for the category catalog.
type Service struct {
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a category for the authenticated owner.
func (s *Service) Create(ctx context.Context, name string, kind Kind, description string) (*Category, error) {
	cat := New(appctx.GetOwnerID(ctx), name, kind)
	cat.Description = description

	if err := cat.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	logger.Info(ctx, "category created", "id", cat.ID, "kind", cat.Kind)
	return cat, nil
}

// GetByID retrieves an owner's category.
func (s *Service) GetByID(ctx context.Context, catID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), catID)
}

// Update renames or re-describes a category. The kind may only change
// while no transaction references the category: aggregation resolves a
// transaction's sign through the category's current kind, so retyping a
// referenced category would silently flip history.
func (s *Service) Update(ctx context.Context, catID id.ID, name string, kind Kind, description string) (*Category, error) {
	cat, err := s.repo.GetByID(ctx, appctx.GetOwnerID(ctx), catID)
	if err != nil {
		return nil, err
	}

	if kind != cat.Kind {
		inUse, err := s.repo.HasTransactions(ctx, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("check category usage: %w", err)
		}
		if inUse {
			return nil, apperror.NewCategoryInUse(cat.ID).
				WithDetail("field", "kind")
		}
		cat.Kind = kind
	}

	cat.Name = name
	cat.Description = description
	if err := cat.Validate(ctx); err != nil {
		return nil, err
	}

	cat.Touch()
	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return cat, nil
}

// Delete removes a category. Deletion is blocked while transactions
// reference it.
func (s *Service) Delete(ctx context.Context, catID id.ID) error {
	ownerID := appctx.GetOwnerID(ctx)

	cat, err := s.repo.GetByID(ctx, ownerID, catID)
	if err != nil {
		return err
	}

	inUse, err := s.repo.HasTransactions(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if inUse {
		return apperror.NewCategoryInUse(cat.ID)
	}

	return s.repo.Delete(ctx, ownerID, catID)
}

// List retrieves the owner's categories.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Category], error) {
	filter.Clamp(500)
	return s.repo.List(ctx, appctx.GetOwnerID(ctx), filter)
}
