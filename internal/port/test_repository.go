package port

import (
	"context"

	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// TestFilter narrows a test listing. Zero values match everything.
type TestFilter struct {
	DocumentID *uuid.UUID
	Status     domain.TestStatus
}

// TestRepository defines the contract for test persistence.
type TestRepository interface {
	Create(ctx context.Context, test *domain.Test) error
	GetByID(ctx context.Context, tenantID, testID uuid.UUID) (*domain.Test, error)
	List(ctx context.Context, tenantID uuid.UUID, filter TestFilter, offset, limit int) ([]domain.Test, int, error)
	// Update writes title, description, questions, passing score, status,
	// source, model and generation error.
	Update(ctx context.Context, test *domain.Test) error
	// ClaimQueued atomically moves up to limit queued tests to generating
	// and returns them. Safe to call from several processes.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Test, error)
	Delete(ctx context.Context, tenantID, testID uuid.UUID) error
}
