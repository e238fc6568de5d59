package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// MockAssignmentService is a mock implementation of service.AssignmentService.
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) Assign(ctx context.Context, actor service.Actor, input service.AssignInput) ([]domain.Assignment, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) List(ctx context.Context, actor service.Actor, filter service.AssignmentFilterInput, offset, limit int) ([]domain.Assignment, int, error) {
	args := m.Called(ctx, actor, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Assignment), args.Int(1), args.Error(2)
}

func (m *MockAssignmentService) ListMine(ctx context.Context, actor service.Actor, status domain.AssignmentStatus, offset, limit int) ([]domain.Assignment, int, error) {
	args := m.Called(ctx, actor, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Assignment), args.Int(1), args.Error(2)
}

func (m *MockAssignmentService) Get(ctx context.Context, actor service.Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, actor, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) GetSubmission(ctx context.Context, actor service.Actor, assignmentID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, actor, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockAssignmentService) Start(ctx context.Context, actor service.Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, actor, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) CompleteDocument(ctx context.Context, actor service.Actor, assignmentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, actor, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) Submit(ctx context.Context, actor service.Actor, assignmentID uuid.UUID, input service.SubmitInput) (*service.SubmitResult, error) {
	args := m.Called(ctx, actor, assignmentID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}
