package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

type assignmentRepo struct {
	db *sqlx.DB
}

// NewAssignmentRepo creates a new PostgreSQL-backed AssignmentRepository.
func NewAssignmentRepo(db *sqlx.DB) port.AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = domain.AssignmentStatusAssigned
	}

	query := `INSERT INTO assignments (id, tenant_id, assignee_id, assigned_by, kind, test_id, document_id,
		due_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.TenantID, a.AssigneeID, a.AssignedBy, a.Kind, a.TestID, a.DocumentID,
		a.DueAt, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assignmentRepo.Create: %w", err)
	}
	return nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, tenantID, assignmentID uuid.UUID) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.db.GetContext(ctx, &a,
		"SELECT * FROM assignments WHERE id = $1 AND tenant_id = $2", assignmentID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("assignmentRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *assignmentRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.AssignmentFilter, offset, limit int) ([]domain.Assignment, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		conds = append(conds, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM assignments"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("assignmentRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM assignments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	var items []domain.Assignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("assignmentRepo.List: %w", err)
	}
	return items, total, nil
}

func (r *assignmentRepo) HasDocumentAssignment(ctx context.Context, tenantID, userID, documentID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM assignments
		 WHERE tenant_id = $1 AND assignee_id = $2 AND document_id = $3 AND kind = 'document')`,
		tenantID, userID, documentID)
	if err != nil {
		return false, fmt.Errorf("assignmentRepo.HasDocumentAssignment: %w", err)
	}
	return ok, nil
}

func (r *assignmentRepo) HasTestAssignment(ctx context.Context, tenantID, userID, testID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM assignments
		 WHERE tenant_id = $1 AND assignee_id = $2 AND test_id = $3 AND kind = 'test')`,
		tenantID, userID, testID)
	if err != nil {
		return false, fmt.Errorf("assignmentRepo.HasTestAssignment: %w", err)
	}
	return ok, nil
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, a *domain.Assignment) error {
	return updateAssignmentStatus(ctx, r.db, a)
}

func updateAssignmentStatus(ctx context.Context, ex sqlx.ExecerContext, a *domain.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := ex.ExecContext(ctx,
		`UPDATE assignments SET status = $1, score = $2, started_at = $3, completed_at = $4, updated_at = $5
		 WHERE id = $6 AND tenant_id = $7`,
		a.Status, a.Score, a.StartedAt, a.CompletedAt, a.UpdatedAt, a.ID, a.TenantID)
	if err != nil {
		return fmt.Errorf("assignmentRepo.UpdateStatus: %w", err)
	}
	return expectRow(result)
}
