package port

import (
	"context"

	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// AssignmentFilter narrows an assignment listing. Zero values match everything.
type AssignmentFilter struct {
	AssigneeID *uuid.UUID
	Status     domain.AssignmentStatus
	Kind       domain.AssignmentKind
}

// AssignmentRepository defines the contract for assignment persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.Assignment) error
	GetByID(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Assignment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter AssignmentFilter, offset, limit int) ([]domain.Assignment, int, error)
	// HasDocumentAssignment reports whether the user was assigned the document.
	HasDocumentAssignment(ctx context.Context, tenantID, userID, documentID uuid.UUID) (bool, error)
	// HasTestAssignment reports whether the user was assigned the test.
	HasTestAssignment(ctx context.Context, tenantID, userID, testID uuid.UUID) (bool, error)
	// UpdateStatus writes status, score, started_at and completed_at.
	UpdateStatus(ctx context.Context, a *domain.Assignment) error
}

// SubmissionRepository defines the contract for graded test attempts.
type SubmissionRepository interface {
	// CreateAndComplete stores the submission and completes its assignment in
	// one transaction.
	CreateAndComplete(ctx context.Context, sub *domain.Submission, a *domain.Assignment) error
	GetByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Submission, error)
}
