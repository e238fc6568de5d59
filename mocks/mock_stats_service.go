package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context, actor service.Actor) (*domain.Stats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// MockReportService is a mock implementation of service.ReportService.
// ExportProgress writes the third Return value, when it is a string, to w.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Progress(ctx context.Context, actor service.Actor) ([]domain.EmployeeProgressRow, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmployeeProgressRow), args.Error(1)
}

func (m *MockReportService) ExportProgress(ctx context.Context, actor service.Actor, format service.ReportFormat, w io.Writer) (string, error) {
	args := m.Called(ctx, actor, format, w)
	if len(args) > 2 {
		if body, ok := args.Get(2).(string); ok {
			_, _ = io.WriteString(w, body)
		}
	}
	return args.String(0), args.Error(1)
}
