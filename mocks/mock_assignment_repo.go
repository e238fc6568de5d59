package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// MockAssignmentRepo is a mock implementation of port.AssignmentRepository.
type MockAssignmentRepo struct {
	mock.Mock
}

func (m *MockAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepo) GetByID(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Assignment, error) {
	args := m.Called(ctx, tenantID, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *MockAssignmentRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.AssignmentFilter, offset, limit int) ([]domain.Assignment, int, error) {
	args := m.Called(ctx, tenantID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Assignment), args.Int(1), args.Error(2)
}

func (m *MockAssignmentRepo) HasDocumentAssignment(ctx context.Context, tenantID, userID, documentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, userID, documentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepo) HasTestAssignment(ctx context.Context, tenantID, userID, testID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, userID, testID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepo) UpdateStatus(ctx context.Context, a *domain.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockSubmissionRepo is a mock implementation of port.SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) CreateAndComplete(ctx context.Context, sub *domain.Submission, a *domain.Assignment) error {
	args := m.Called(ctx, sub, a)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, tenantID, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}
