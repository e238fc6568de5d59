package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"knowbase/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAssignmentEmail(ctx context.Context, msg port.AssignmentEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
