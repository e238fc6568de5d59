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

type testRepo struct {
	db *sqlx.DB
}

// NewTestRepo creates a new PostgreSQL-backed TestRepository.
func NewTestRepo(db *sqlx.DB) port.TestRepository {
	return &testRepo{db: db}
}

func (r *testRepo) Create(ctx context.Context, t *domain.Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.QuestionCount = len(t.Questions)

	query := `INSERT INTO tests (id, tenant_id, document_id, title, description, questions, question_count,
		source, model, passing_score, status, generation_error, generation_attempts, generation_params,
		created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.TenantID, t.DocumentID, t.Title, t.Description, t.Questions, t.QuestionCount,
		t.Source, t.Model, t.PassingScore, t.Status, t.GenerationError, t.Attempts, t.Params, t.CreatedBy,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("testRepo.Create: %w", err)
	}
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, tenantID, testID uuid.UUID) (*domain.Test, error) {
	var t domain.Test
	err := r.db.GetContext(ctx, &t,
		"SELECT * FROM tests WHERE id = $1 AND tenant_id = $2", testID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("testRepo.GetByID: %w", err)
	}
	return &t, nil
}

func (r *testRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.TestFilter, offset, limit int) ([]domain.Test, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	if filter.DocumentID != nil {
		args = append(args, *filter.DocumentID)
		conds = append(conds, fmt.Sprintf("document_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tests"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("testRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM tests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	var tests []domain.Test
	if err := r.db.SelectContext(ctx, &tests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("testRepo.List: %w", err)
	}
	return tests, total, nil
}

func (r *testRepo) Update(ctx context.Context, t *domain.Test) error {
	t.UpdatedAt = time.Now().UTC()
	t.QuestionCount = len(t.Questions)
	query := `UPDATE tests SET title = $1, description = $2, questions = $3, question_count = $4,
		passing_score = $5, status = $6, source = $7, model = $8, generation_error = $9, retry_after = $10,
		updated_at = $11
		WHERE id = $12 AND tenant_id = $13`
	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.Questions, t.QuestionCount, t.PassingScore, t.Status, t.Source,
		t.Model, t.GenerationError, t.RetryAfter, t.UpdatedAt, t.ID, t.TenantID)
	if err != nil {
		return fmt.Errorf("testRepo.Update: %w", err)
	}
	return expectRow(result)
}

func (r *testRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Test, error) {
	var tests []domain.Test
	err := r.db.SelectContext(ctx, &tests,
		`UPDATE tests
		 SET status = 'generating', generation_attempts = generation_attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM tests
			WHERE status = 'queued'
			  AND (retry_after IS NULL OR retry_after <= NOW())
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`, limit)
	if err != nil {
		return nil, fmt.Errorf("testRepo.ClaimQueued: %w", err)
	}
	return tests, nil
}

func (r *testRepo) Delete(ctx context.Context, tenantID, testID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tests WHERE id = $1 AND tenant_id = $2", testID, tenantID)
	if err != nil {
		return fmt.Errorf("testRepo.Delete: %w", err)
	}
	return expectRow(result)
}
