package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"knowbase/internal/docparse"
	"knowbase/internal/port"
)

// MockTestGenerator is a mock implementation of port.TestGenerator.
type MockTestGenerator struct {
	mock.Mock
}

func (m *MockTestGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GenerateOutput), args.Error(1)
}

// MockContentParser is a mock implementation of port.ContentParser.
type MockContentParser struct {
	mock.Mock
}

func (m *MockContentParser) Parse(ctx context.Context, doc docparse.RawDocument) (*docparse.ParsedContent, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docparse.ParsedContent), args.Error(1)
}
