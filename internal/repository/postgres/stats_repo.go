package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const tenantCountsQuery = `SELECT
	(SELECT COUNT(*) FROM users WHERE tenant_id = $1) AS total_users,
	(SELECT COUNT(*) FROM documents WHERE tenant_id = $1) AS total_documents,
	(SELECT COUNT(*) FROM documents WHERE tenant_id = $1 AND status = 'parsed') AS parsed_documents,
	(SELECT COUNT(*) FROM documents WHERE tenant_id = $1 AND status = 'failed') AS failed_documents,
	(SELECT COUNT(*) FROM tests WHERE tenant_id = $1) AS total_tests,
	(SELECT COUNT(*) FROM tests WHERE tenant_id = $1 AND status = 'ready') AS ready_tests,
	(SELECT COUNT(*) FROM tests WHERE tenant_id = $1 AND status IN ('queued', 'generating')) AS generating_tests`

const assignmentCountsQuery = `SELECT
	COUNT(*) AS assignments_total,
	COUNT(CASE WHEN status = 'assigned' THEN 1 END) AS assignments_assigned,
	COUNT(CASE WHEN status = 'in_progress' THEN 1 END) AS assignments_in_progress,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS assignments_completed,
	COUNT(CASE WHEN status <> 'completed' AND due_at IS NOT NULL AND due_at < NOW() THEN 1 END) AS assignments_overdue,
	COALESCE(AVG(score), 0)::float8 AS average_score
FROM assignments WHERE tenant_id = $1`

const employeeProgressQuery = `SELECT
	u.id AS user_id,
	u.full_name,
	u.email,
	u.role,
	COUNT(a.id) AS assigned,
	COUNT(CASE WHEN a.status = 'in_progress' THEN 1 END) AS in_progress,
	COUNT(CASE WHEN a.status = 'completed' THEN 1 END) AS completed,
	COUNT(CASE WHEN a.status <> 'completed' AND a.due_at IS NOT NULL AND a.due_at < NOW() THEN 1 END) AS overdue,
	(SELECT COUNT(*) FROM submissions s WHERE s.user_id = u.id AND s.passed) AS tests_passed,
	COALESCE(AVG(a.score), 0)::float8 AS average_score,
	MAX(GREATEST(a.started_at, a.completed_at)) AS last_activity
FROM users u
LEFT JOIN assignments a ON a.assignee_id = u.id AND a.tenant_id = u.tenant_id
WHERE u.tenant_id = $1 AND u.is_active
GROUP BY u.id, u.full_name, u.email, u.role
ORDER BY u.full_name, u.email`

func (r *statsRepo) GetTenantStats(ctx context.Context, tenantID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, tenantCountsQuery, tenantID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetTenantStats counts: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats, assignmentCountsQuery, tenantID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetTenantStats assignments: %w", err)
	}
	return &stats, nil
}

func (r *statsRepo) GetUserStats(ctx context.Context, tenantID, userID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	err := r.db.GetContext(ctx, &stats,
		assignmentCountsQuery+" AND assignee_id = $2", tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats: %w", err)
	}
	stats.TotalUsers = 1
	return &stats, nil
}

func (r *statsRepo) EmployeeProgress(ctx context.Context, tenantID uuid.UUID) ([]domain.EmployeeProgressRow, error) {
	var rows []domain.EmployeeProgressRow
	if err := r.db.SelectContext(ctx, &rows, employeeProgressQuery, tenantID); err != nil {
		return nil, fmt.Errorf("statsRepo.EmployeeProgress: %w", err)
	}
	return rows, nil
}
