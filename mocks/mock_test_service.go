package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// MockTestService is a mock implementation of service.TestService.
type MockTestService struct {
	mock.Mock
}

func (m *MockTestService) Generate(ctx context.Context, actor service.Actor, input service.GenerateTestInput) (*domain.Test, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestService) Create(ctx context.Context, actor service.Actor, input service.CreateTestInput) (*domain.Test, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestService) Get(ctx context.Context, actor service.Actor, testID uuid.UUID) (*domain.Test, error) {
	args := m.Called(ctx, actor, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestService) List(ctx context.Context, actor service.Actor, filter service.TestFilterInput, offset, limit int) ([]domain.Test, int, error) {
	args := m.Called(ctx, actor, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Test), args.Int(1), args.Error(2)
}

func (m *MockTestService) UpdateQuestions(ctx context.Context, actor service.Actor, testID uuid.UUID, input service.UpdateQuestionsInput) (*domain.Test, error) {
	args := m.Called(ctx, actor, testID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Test), args.Error(1)
}

func (m *MockTestService) Delete(ctx context.Context, actor service.Actor, testID uuid.UUID) error {
	args := m.Called(ctx, actor, testID)
	return args.Error(0)
}

func (m *MockTestService) ProcessGeneration(ctx context.Context, test *domain.Test) {
	m.Called(ctx, test)
}
