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

type tenantRepo struct {
	db *sqlx.DB
}

// NewTenantRepo creates a new PostgreSQL-backed TenantRepository.
func NewTenantRepo(db *sqlx.DB) port.TenantRepository {
	return &tenantRepo{db: db}
}

func isDuplicateSlug(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, "slug")
}

func (r *tenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	tenant.ID = uuid.New()
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, slug, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tenant.ID, tenant.Name, tenant.Slug, tenant.IsActive, tenant.CreatedAt, tenant.UpdatedAt)
	if err != nil {
		if isDuplicateSlug(err) {
			return domain.ErrDuplicateTenantSlug
		}
		return fmt.Errorf("tenantRepo.Create: %w", err)
	}
	return nil
}

func (r *tenantRepo) get(ctx context.Context, op, where string, arg interface{}) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.db.GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE "+where, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("tenantRepo.%s: %w", op, err)
	}
	return &tenant, nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return r.get(ctx, "GetByID", "id = $1", id)
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return r.get(ctx, "GetBySlug", "slug = $1", slug)
}

func (r *tenantRepo) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET name = $1, slug = $2, is_active = $3, updated_at = $4 WHERE id = $5`,
		tenant.Name, tenant.Slug, tenant.IsActive, tenant.UpdatedAt, tenant.ID)
	if err != nil {
		if isDuplicateSlug(err) {
			return domain.ErrDuplicateTenantSlug
		}
		return fmt.Errorf("tenantRepo.Update: %w", err)
	}
	return expectRow(result)
}

// expectRow maps a zero-row write to ErrNotFound.
func expectRow(result sql.Result) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
