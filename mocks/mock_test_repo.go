package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// MockTestRepo is a mock implementation of port.TestRepository.
type MockTestRepo struct {
	mock.Mock
}

func (m *MockTestRepo) Create(ctx context.Context, test *domain.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepo) GetByID(ctx context.Context, tenantID, testID uuid.UUID) (*domain.Test, error) {
	args := m.Called(ctx, tenantID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.TestFilter, offset, limit int) ([]domain.Test, int, error) {
	args := m.Called(ctx, tenantID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Test), args.Int(1), args.Error(2)
}

func (m *MockTestRepo) Update(ctx context.Context, test *domain.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Test, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Test), args.Error(1)
}

func (m *MockTestRepo) Delete(ctx context.Context, tenantID, testID uuid.UUID) error {
	args := m.Called(ctx, tenantID, testID)
	return args.Error(0)
}
