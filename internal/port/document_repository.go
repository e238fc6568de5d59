package port

import (
	"context"

	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	// ListAssignedTo returns documents the user has a document assignment for.
	ListAssignedTo(ctx context.Context, tenantID, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	// UpdateParseResult writes status, content and parse counters.
	UpdateParseResult(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, tenantID, docID uuid.UUID) error
}
