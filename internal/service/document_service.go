package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"knowbase/internal/docparse"
	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// DocumentConfig holds the settings the document service needs.
type DocumentConfig struct {
	Bucket        string
	MaxBytes      int64
	AllowDegraded bool
	PresignExpiry int64
}

// UploadDocumentInput is the DTO for uploading a training document.
type UploadDocumentInput struct {
	Title       string
	FileName    string
	ContentType string
	Body        io.Reader
}

// DocumentService defines the document management contract.
type DocumentService interface {
	// Preview parses a file without storing anything.
	Preview(ctx context.Context, actor Actor, fileName, contentType string, body io.Reader) (*docparse.ParsedContent, error)
	Upload(ctx context.Context, actor Actor, input UploadDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, actor Actor, docID uuid.UUID) (*domain.Document, error)
	GetContent(ctx context.Context, actor Actor, docID uuid.UUID) (*docparse.ParsedContent, error)
	List(ctx context.Context, actor Actor, offset, limit int) ([]domain.Document, int, error)
	GetDownloadURL(ctx context.Context, actor Actor, docID uuid.UUID) (string, error)
	Delete(ctx context.Context, actor Actor, docID uuid.UUID) error
	// Reparse downloads the stored file and runs the pipeline again. A failed
	// parse marks the document failed and returns the parse error.
	Reparse(ctx context.Context, actor Actor, docID uuid.UUID) (*domain.Document, error)
}

type documentService struct {
	docRepo        port.DocumentRepository
	assignmentRepo port.AssignmentRepository
	parser         port.ContentParser
	storage        port.ObjectStorage
	cfg            DocumentConfig
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	assignmentRepo port.AssignmentRepository,
	parser port.ContentParser,
	storage port.ObjectStorage,
	cfg DocumentConfig,
) DocumentService {
	return &documentService{
		docRepo:        docRepo,
		assignmentRepo: assignmentRepo,
		parser:         parser,
		storage:        storage,
		cfg:            cfg,
	}
}

func documentKey(tenantID, docID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return fmt.Sprintf("tenants/%s/documents/%s/%s", tenantID, docID, name)
}

func (s *documentService) Preview(ctx context.Context, actor Actor, fileName, contentType string, body io.Reader) (*docparse.ParsedContent, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if _, err := docparse.Detect(fileName); err != nil {
		return nil, err
	}
	data, err := s.readLimited(fileName, body)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(ctx, docparse.RawDocument{Name: fileName, ContentType: contentType, Data: data})
}

// readLimited reads body up to the configured size limit.
func (s *documentService) readLimited(fileName string, body io.Reader) ([]byte, error) {
	r := body
	if s.cfg.MaxBytes > 0 {
		r = io.LimitReader(body, s.cfg.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &docparse.FileReadError{Name: fileName, Err: err}
	}
	if s.cfg.MaxBytes > 0 && int64(len(data)) > s.cfg.MaxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, &docparse.FileReadError{Name: fileName, Err: errors.New("file is empty")}
	}
	return data, nil
}

func (s *documentService) Upload(ctx context.Context, actor Actor, input UploadDocumentInput) (*domain.Document, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	format, err := docparse.Detect(input.FileName)
	if err != nil {
		return nil, err
	}
	data, err := s.readLimited(input.FileName, input.Body)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(ctx, docparse.RawDocument{
		Name:        input.FileName,
		ContentType: input.ContentType,
		Data:        data,
	})
	if err != nil {
		log.Printf("documentService.Upload: parse failed for %s: %v", input.FileName, err)
		return nil, err
	}
	if parsed.Metadata.Degraded && !s.cfg.AllowDegraded {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentDegraded, input.FileName)
	}

	fileType := domain.FileType(format)
	title := strings.TrimSpace(input.Title)
	if title == "" && len(parsed.Sections) > 0 {
		title = parsed.Sections[0].Title
	}
	if title == "" {
		title = input.FileName
	}

	doc := &domain.Document{
		ID:           uuid.New(),
		TenantID:     actor.TenantID,
		UploadedBy:   actor.UserID,
		Title:        title,
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.cfg.Bucket,
		ContentType:  domain.AllowedFileTypes[fileType],
	}
	doc.S3Key = documentKey(doc.TenantID, doc.ID, input.FileName)
	if err := applyParsed(doc, parsed); err != nil {
		return nil, err
	}

	log.Printf("documentService.Upload: storing %s (%s, %d bytes, %d sections) for tenant %s",
		input.FileName, fileType, doc.FileSize, doc.SectionCount, doc.TenantID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      doc.S3Bucket,
		Key:         doc.S3Key,
		Body:        bytes.NewReader(data),
		ContentType: doc.ContentType,
		Size:        doc.FileSize,
	}); err != nil {
		log.Printf("documentService.Upload: S3 upload failed for %s: %v", doc.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); delErr != nil {
			log.Printf("documentService.Upload: cleanup of %s failed: %v", doc.S3Key, delErr)
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

// applyParsed copies a successful parse onto the document.
func applyParsed(doc *domain.Document, parsed *docparse.ParsedContent) error {
	content, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("encoding parsed content: %w", err)
	}
	parsedAt := parsed.Metadata.ParsedAt.UTC()

	doc.Status = domain.DocumentStatusParsed
	doc.Content = content
	doc.ParseError = ""
	doc.Extractor = parsed.Metadata.Extractor
	doc.Degraded = parsed.Metadata.Degraded
	doc.WordCount = parsed.Metadata.WordCount
	doc.SectionCount = parsed.Metadata.TotalSections
	doc.TableCount = parsed.Metadata.TotalTables
	doc.ParsedAt = &parsedAt
	return nil
}

// load fetches a document and checks read access. Employees only see
// documents assigned to them.
func (s *documentService) load(ctx context.Context, actor Actor, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}
	if actor.IsManager() {
		return doc, nil
	}
	ok, err := s.assignmentRepo.HasDocumentAssignment(ctx, actor.TenantID, actor.UserID, docID)
	if err != nil {
		return nil, fmt.Errorf("checking document access: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, actor Actor, docID uuid.UUID) (*domain.Document, error) {
	return s.load(ctx, actor, docID)
}

func (s *documentService) GetContent(ctx context.Context, actor Actor, docID uuid.UUID) (*docparse.ParsedContent, error) {
	doc, err := s.load(ctx, actor, docID)
	if err != nil {
		return nil, err
	}
	return decodeContent(doc)
}

func decodeContent(doc *domain.Document) (*docparse.ParsedContent, error) {
	if doc.Status != domain.DocumentStatusParsed || len(doc.Content) == 0 {
		return nil, domain.ErrDocumentNotParsed
	}
	var parsed docparse.ParsedContent
	if err := json.Unmarshal(doc.Content, &parsed); err != nil {
		return nil, fmt.Errorf("decoding parsed content of %s: %w", doc.ID, err)
	}
	return &parsed, nil
}

func (s *documentService) List(ctx context.Context, actor Actor, offset, limit int) ([]domain.Document, int, error) {
	offset, limit = pageBounds(offset, limit)
	if actor.IsManager() {
		return s.docRepo.ListByTenant(ctx, actor.TenantID, offset, limit)
	}
	return s.docRepo.ListAssignedTo(ctx, actor.TenantID, actor.UserID, offset, limit)
}

func (s *documentService) GetDownloadURL(ctx context.Context, actor Actor, docID uuid.UUID) (string, error) {
	doc, err := s.load(ctx, actor, docID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.cfg.PresignExpiry)
}

func (s *documentService) Delete(ctx context.Context, actor Actor, docID uuid.UUID) error {
	if !actor.IsManager() {
		return domain.ErrForbidden
	}
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, actor.TenantID, docID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		log.Printf("documentService.Delete: removing %s from storage failed: %v", doc.S3Key, err)
	}
	return nil
}

func (s *documentService) Reparse(ctx context.Context, actor Actor, docID uuid.UUID) (*domain.Document, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	doc, err := s.docRepo.GetByID(ctx, actor.TenantID, docID)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", doc.S3Key, err)
	}

	parsed, parseErr := s.parser.Parse(ctx, docparse.RawDocument{
		Name:        doc.OriginalName,
		ContentType: doc.ContentType,
		Data:        data,
	})
	if parseErr == nil && parsed.Metadata.Degraded && !s.cfg.AllowDegraded {
		parseErr = fmt.Errorf("%w: %s", domain.ErrDocumentDegraded, doc.OriginalName)
	}

	if parseErr != nil {
		log.Printf("documentService.Reparse: document %s failed: %v", doc.ID, parseErr)
		doc.Status = domain.DocumentStatusFailed
		doc.Content = nil
		doc.ParseError = parseErr.Error()
		doc.WordCount, doc.SectionCount, doc.TableCount = 0, 0, 0
		if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
			return nil, err
		}
		return nil, parseErr
	}

	if err := applyParsed(doc, parsed); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateParseResult(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
