package service

import (
	"context"
	"fmt"
	"strings"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// UpdateTenantInput is the DTO for updating the caller's tenant.
type UpdateTenantInput struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// TenantService manages the caller's own tenant.
type TenantService interface {
	Get(ctx context.Context, actor Actor) (*domain.Tenant, error)
	Update(ctx context.Context, actor Actor, input UpdateTenantInput) (*domain.Tenant, error)
}

type tenantService struct {
	repo port.TenantRepository
}

// NewTenantService creates a new TenantService implementation.
func NewTenantService(repo port.TenantRepository) TenantService {
	return &tenantService{repo: repo}
}

func (s *tenantService) Get(ctx context.Context, actor Actor) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, actor.TenantID)
}

func (s *tenantService) Update(ctx context.Context, actor Actor, input UpdateTenantInput) (*domain.Tenant, error) {
	if actor.Role != domain.RoleOwner {
		return nil, domain.ErrForbidden
	}

	tenant, err := s.repo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		tenant.Name = name
	}
	if input.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*input.Slug))
		if !ValidSlug(slug) {
			return nil, fmt.Errorf("%w: invalid slug", domain.ErrInvalidInput)
		}
		tenant.Slug = slug
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}
