package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// CreateUserInput is the DTO for creating a user.
type CreateUserInput struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	FullName string          `json:"full_name" binding:"required"`
	Role     domain.UserRole `json:"role" binding:"required"`
}

// UpdateUserInput is the DTO for updating a user.
type UpdateUserInput struct {
	Email    *string          `json:"email"`
	FullName *string          `json:"full_name"`
	Password *string          `json:"password"`
	Role     *domain.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}

// UserService defines the user management contract.
type UserService interface {
	Create(ctx context.Context, actor Actor, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error)
	List(ctx context.Context, actor Actor, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, actor Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor Actor, userID uuid.UUID) error
}

type userService struct {
	repo port.UserRepository
}

// NewUserService creates a new UserService implementation.
func NewUserService(repo port.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if !canManageRole(actor.Role, input.Role) {
		return nil, domain.ErrForbidden
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		TenantID:     actor.TenantID,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID lets employees read only their own profile.
func (s *userService) GetByID(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error) {
	if !actor.IsManager() && actor.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetByID(ctx, actor.TenantID, userID)
}

func (s *userService) List(ctx context.Context, actor Actor, offset, limit int) ([]domain.User, int, error) {
	if !actor.IsManager() {
		return nil, 0, domain.ErrForbidden
	}
	offset, limit = pageBounds(offset, limit)
	return s.repo.ListByTenant(ctx, actor.TenantID, offset, limit)
}

func (s *userService) Update(ctx context.Context, actor Actor, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, err
	}

	self := actor.UserID == userID
	if self {
		if input.Role != nil || input.IsActive != nil {
			return nil, domain.ErrSelfModification
		}
	} else if !canManageRole(actor.Role, user.Role) {
		return nil, domain.ErrForbidden
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		if !canManageRole(actor.Role, *input.Role) {
			return nil, domain.ErrForbidden
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if actor.UserID == userID {
		return domain.ErrSelfModification
	}
	user, err := s.repo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return err
	}
	if !canManageRole(actor.Role, user.Role) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, actor.TenantID, userID)
}
