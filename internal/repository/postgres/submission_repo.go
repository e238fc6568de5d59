package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) CreateAndComplete(ctx context.Context, sub *domain.Submission, a *domain.Assignment) error {
	sub.ID = uuid.New()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("submissionRepo.CreateAndComplete begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("submissionRepo.CreateAndComplete: rollback failed: %v", rbErr)
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, tenant_id, assignment_id, test_id, user_id, answers, correct, total,
		 score, passed, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.TenantID, sub.AssignmentID, sub.TestID, sub.UserID, sub.Answers, sub.Correct,
		sub.Total, sub.Score, sub.Passed, sub.SubmittedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrAssignmentState
		}
		return fmt.Errorf("submissionRepo.CreateAndComplete insert: %w", err)
	}

	if err := updateAssignmentStatus(ctx, tx, a); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("submissionRepo.CreateAndComplete commit: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub,
		"SELECT * FROM submissions WHERE assignment_id = $1 AND tenant_id = $2", assignmentID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetByAssignment: %w", err)
	}
	return &sub, nil
}
