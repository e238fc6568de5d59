package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"knowbase/internal/domain"
	"knowbase/internal/service"
	"knowbase/mocks"
)

func validRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		TenantName: " Acme Logistics ",
		TenantSlug: " Acme-Logistics ",
		Email:      " owner@acme.test ",
		Password:   "password123",
		FullName:   " Olga Owner ",
	}
}

func TestRegistrationService_Register_Success(t *testing.T) {
	tenantRepo := new(mocks.MockTenantRepo)
	userRepo := new(mocks.MockUserRepo)
	authSvc := new(mocks.MockAuthService)
	svc := service.NewRegistrationService(tenantRepo, userRepo, authSvc)

	tenantID := uuid.New()
	tenantRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Tenant")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Tenant).ID = tenantID
		}).Return(nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	authSvc.On("IssueTokens", mock.AnythingOfType("*domain.User")).
		Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil)

	out, err := svc.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	assert.Equal(t, "acme-logistics", out.Tenant.Slug)
	assert.Equal(t, "Acme Logistics", out.Tenant.Name)
	assert.True(t, out.Tenant.IsActive)
	assert.Equal(t, tenantID, out.User.TenantID)
	assert.Equal(t, domain.RoleOwner, out.User.Role)
	assert.Equal(t, "owner@acme.test", out.User.Email)
	assert.Equal(t, "Olga Owner", out.User.FullName)
	assert.NotEqual(t, "password123", out.User.PasswordHash)
	assert.Equal(t, "access", out.Tokens.AccessToken)
	tenantRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestRegistrationService_Register_InvalidSlug(t *testing.T) {
	tenantRepo := new(mocks.MockTenantRepo)
	svc := service.NewRegistrationService(tenantRepo, new(mocks.MockUserRepo), new(mocks.MockAuthService))

	for _, slug := range []string{"a", "bad slug", "-leading", "trailing-", "under_score"} {
		input := validRegisterInput()
		input.TenantSlug = slug

		_, err := svc.Register(context.Background(), input)

		assert.ErrorIs(t, err, domain.ErrInvalidInput, slug)
	}
	tenantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_SlugTaken(t *testing.T) {
	tenantRepo := new(mocks.MockTenantRepo)
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewRegistrationService(tenantRepo, userRepo, new(mocks.MockAuthService))

	tenantRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateTenantSlug)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, domain.ErrDuplicateTenantSlug)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_OwnerCreateFails(t *testing.T) {
	tenantRepo := new(mocks.MockTenantRepo)
	userRepo := new(mocks.MockUserRepo)
	authSvc := new(mocks.MockAuthService)
	svc := service.NewRegistrationService(tenantRepo, userRepo, authSvc)

	tenantRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	authSvc.AssertNotCalled(t, "IssueTokens", mock.Anything)
}

func TestValidSlugRegistration(t *testing.T) {
	assert.True(t, service.ValidSlug("acme"))
	assert.True(t, service.ValidSlug("acme-2"))
	assert.False(t, service.ValidSlug("ac"))
	assert.False(t, service.ValidSlug("Acme"))
}
