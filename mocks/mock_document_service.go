package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"knowbase/internal/docparse"
	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Preview(ctx context.Context, actor service.Actor, fileName, contentType string, body io.Reader) (*docparse.ParsedContent, error) {
	args := m.Called(ctx, actor, fileName, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docparse.ParsedContent), args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, actor service.Actor, input service.UploadDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor service.Actor, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, actor, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetContent(ctx context.Context, actor service.Actor, docID uuid.UUID) (*docparse.ParsedContent, error) {
	args := m.Called(ctx, actor, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docparse.ParsedContent), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, actor service.Actor, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) GetDownloadURL(ctx context.Context, actor service.Actor, docID uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, docID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor service.Actor, docID uuid.UUID) error {
	args := m.Called(ctx, actor, docID)
	return args.Error(0)
}

func (m *MockDocumentService) Reparse(ctx context.Context, actor service.Actor, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, actor, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
