package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// RegisterInput is the DTO for creating a new organisation with its owner.
type RegisterInput struct {
	TenantName string `json:"tenant_name" binding:"required"`
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FullName   string `json:"full_name" binding:"required"`
}

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	Tenant *domain.Tenant `json:"tenant"`
	User   *domain.User   `json:"user"`
	Tokens *TokenPair     `json:"tokens"`
}

// RegistrationService creates a tenant together with its owner account.
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
}

type registrationService struct {
	tenantRepo port.TenantRepository
	userRepo   port.UserRepository
	authSvc    AuthService
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	tenantRepo port.TenantRepository,
	userRepo port.UserRepository,
	authSvc AuthService,
) RegistrationService {
	return &registrationService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		authSvc:    authSvc,
	}
}

// ValidSlug reports whether slug is usable as a tenant slug.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

func (s *registrationService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	slug := strings.ToLower(strings.TrimSpace(input.TenantSlug))
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: slug must be 3-64 lowercase letters, digits or dashes", domain.ErrInvalidInput)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	tenant := &domain.Tenant{
		Name:     strings.TrimSpace(input.TenantName),
		Slug:     slug,
		IsActive: true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	user := &domain.User{
		TenantID:     tenant.ID,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         domain.RoleOwner,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating owner: %w", err)
	}

	tokens, err := s.authSvc.IssueTokens(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	log.Printf("registrationService.Register: tenant %s (%s) created with owner %s", tenant.Slug, tenant.ID, user.ID)
	return &RegisterOutput{Tenant: tenant, User: user, Tokens: tokens}, nil
}
