package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// documentListColumns leaves out the parsed content, which can be large.
const documentListColumns = `d.id, d.tenant_id, d.uploaded_by, d.title, d.original_name, d.file_type,
	d.file_size, d.s3_bucket, d.s3_key, d.content_type, d.status, d.parse_error, d.extractor,
	d.degraded, d.word_count, d.section_count, d.table_count, d.parsed_at, d.created_at, d.updated_at`

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (id, tenant_id, uploaded_by, title, original_name, file_type, file_size,
		s3_bucket, s3_key, content_type, status, content, parse_error, extractor, degraded,
		word_count, section_count, table_count, parsed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.TenantID, doc.UploadedBy, doc.Title, doc.OriginalName, doc.FileType, doc.FileSize,
		doc.S3Bucket, doc.S3Key, doc.ContentType, doc.Status, nullableJSON(doc.Content), doc.ParseError,
		doc.Extractor, doc.Degraded, doc.WordCount, doc.SectionCount, doc.TableCount, doc.ParsedAt,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND tenant_id = $2", docID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE tenant_id = $1", tenantID); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByTenant count: %w", err)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`SELECT `+documentListColumns+` FROM documents d
		 WHERE d.tenant_id = $1 ORDER BY d.created_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByTenant: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) ListAssignedTo(ctx context.Context, tenantID, userID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	const where = `FROM documents d
		WHERE d.tenant_id = $1 AND EXISTS (
			SELECT 1 FROM assignments a
			WHERE a.document_id = d.id AND a.assignee_id = $2 AND a.kind = 'document')`

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+where, tenantID, userID); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListAssignedTo count: %w", err)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		"SELECT "+documentListColumns+" "+where+" ORDER BY d.created_at DESC LIMIT $3 OFFSET $4",
		tenantID, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListAssignedTo: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateParseResult(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	query := `UPDATE documents SET status = $1, content = $2, parse_error = $3, extractor = $4,
		degraded = $5, word_count = $6, section_count = $7, table_count = $8, parsed_at = $9, updated_at = $10
		WHERE id = $11 AND tenant_id = $12`
	result, err := r.db.ExecContext(ctx, query,
		doc.Status, nullableJSON(doc.Content), doc.ParseError, doc.Extractor, doc.Degraded,
		doc.WordCount, doc.SectionCount, doc.TableCount, doc.ParsedAt, doc.UpdatedAt,
		doc.ID, doc.TenantID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateParseResult: %w", err)
	}
	return expectRow(result)
}

func (r *documentRepo) Delete(ctx context.Context, tenantID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1 AND tenant_id = $2", docID, tenantID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	return expectRow(result)
}

// nullableJSON stores an empty payload as SQL NULL.
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
