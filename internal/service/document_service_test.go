package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"knowbase/internal/docparse"
	"knowbase/internal/domain"
	"knowbase/internal/port"
	"knowbase/internal/service"
	"knowbase/mocks"
)

type documentFixture struct {
	svc         service.DocumentService
	docRepo     *mocks.MockDocumentRepo
	assignments *mocks.MockAssignmentRepo
	parser      *mocks.MockContentParser
	storage     *mocks.MockObjectStorage
}

func newDocumentFixture(cfg service.DocumentConfig) *documentFixture {
	f := &documentFixture{
		docRepo:     new(mocks.MockDocumentRepo),
		assignments: new(mocks.MockAssignmentRepo),
		parser:      new(mocks.MockContentParser),
		storage:     new(mocks.MockObjectStorage),
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "kb-docs"
	}
	f.svc = service.NewDocumentService(f.docRepo, f.assignments, f.parser, f.storage, cfg)
	return f
}

func parsedFixture(degraded bool) *docparse.ParsedContent {
	return &docparse.ParsedContent{
		Sections: []docparse.Section{{Title: "Fire Safety", Level: 1, Content: "Exits are marked.", Order: 0}},
		Metadata: docparse.Metadata{
			TotalSections: 1,
			WordCount:     3,
			Extractor:     "docx-runs",
			ParsedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			Degraded:      degraded,
		},
	}
}

func TestDocumentService_Upload(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{MaxBytes: 1024})
	actor := actorWith(domain.RoleManager)

	f.parser.On("Parse", mock.Anything, mock.MatchedBy(func(d docparse.RawDocument) bool {
		return d.Name == "safety.docx" && string(d.Data) == "PK-data"
	})).Return(parsedFixture(false), nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "kb-docs" &&
			strings.HasPrefix(in.Key, "tenants/"+actor.TenantID.String()+"/documents/") &&
			strings.HasSuffix(in.Key, "/safety.docx") &&
			in.Size == 7
	})).Return(&port.UploadOutput{Location: "s3://kb-docs/x"}, nil)
	f.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := f.svc.Upload(context.Background(), actor, service.UploadDocumentInput{
		FileName: "safety.docx",
		Body:     strings.NewReader("PK-data"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Fire Safety", doc.Title)
	assert.Equal(t, domain.FileTypeDOCX, doc.FileType)
	assert.Equal(t, domain.DocumentStatusParsed, doc.Status)
	assert.Equal(t, 1, doc.SectionCount)
	assert.Equal(t, "docx-runs", doc.Extractor)
	assert.NotEmpty(t, doc.Content)
	assert.Equal(t, actor.UserID, doc.UploadedBy)
	f.storage.AssertExpectations(t)
	f.docRepo.AssertExpectations(t)
}

func TestDocumentService_Upload_Rejections(t *testing.T) {
	t.Run("employee", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleEmployee), service.UploadDocumentInput{
			FileName: "a.docx", Body: strings.NewReader("x"),
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleOwner), service.UploadDocumentInput{
			FileName: "notes.pdf", Body: strings.NewReader("x"),
		})
		assert.ErrorIs(t, err, docparse.ErrUnsupportedFileType)
	})

	t.Run("too large", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{MaxBytes: 4})
		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleOwner), service.UploadDocumentInput{
			FileName: "a.xlsx", Body: strings.NewReader("12345"),
		})
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("empty file", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleOwner), service.UploadDocumentInput{
			FileName: "a.xlsx", Body: strings.NewReader(""),
		})
		assert.ErrorIs(t, err, docparse.ErrFileRead)
	})

	t.Run("degraded", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		f.parser.On("Parse", mock.Anything, mock.Anything).Return(parsedFixture(true), nil)

		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleOwner), service.UploadDocumentInput{
			FileName: "blank.docx", Body: strings.NewReader("PK"),
		})

		assert.ErrorIs(t, err, domain.ErrDocumentDegraded)
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("parse error", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		f.parser.On("Parse", mock.Anything, mock.Anything).
			Return(nil, &docparse.ParseError{Format: docparse.FormatXlsx, Message: "corrupt"})

		_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleOwner), service.UploadDocumentInput{
			FileName: "bad.xlsx", Body: strings.NewReader("junk"),
		})

		assert.ErrorIs(t, err, docparse.ErrParse)
	})
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(parsedFixture(false), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))

	_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleManager), service.UploadDocumentInput{
		FileName: "a.docx", Body: strings.NewReader("PK"),
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RepoFailureCleansStorage(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	f.parser.On("Parse", mock.Anything, mock.Anything).Return(parsedFixture(false), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.docRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.storage.On("Delete", mock.Anything, "kb-docs", mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Upload(context.Background(), actorWith(domain.RoleManager), service.UploadDocumentInput{
		FileName: "a.docx", Body: strings.NewReader("PK"),
	})

	assert.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "kb-docs", mock.AnythingOfType("string"))
}

func TestDocumentService_Get_EmployeeAccess(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	actor := actorWith(domain.RoleEmployee)
	assigned, other := uuid.New(), uuid.New()

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, assigned).Return(&domain.Document{ID: assigned}, nil)
	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, other).Return(&domain.Document{ID: other}, nil)
	f.assignments.On("HasDocumentAssignment", mock.Anything, actor.TenantID, actor.UserID, assigned).Return(true, nil)
	f.assignments.On("HasDocumentAssignment", mock.Anything, actor.TenantID, actor.UserID, other).Return(false, nil)

	doc, err := f.svc.Get(context.Background(), actor, assigned)
	require.NoError(t, err)
	assert.Equal(t, assigned, doc.ID)

	_, err = f.svc.Get(context.Background(), actor, other)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_GetContent(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	actor := actorWith(domain.RoleManager)
	parsedID, pendingID := uuid.New(), uuid.New()

	content, err := json.Marshal(parsedFixture(false))
	require.NoError(t, err)
	doc := &domain.Document{ID: parsedID, Status: domain.DocumentStatusParsed, Content: content}
	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, parsedID).Return(doc, nil)
	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, pendingID).
		Return(&domain.Document{ID: pendingID, Status: domain.DocumentStatusFailed}, nil)

	parsed, err := f.svc.GetContent(context.Background(), actor, parsedID)
	require.NoError(t, err)
	require.Len(t, parsed.Sections, 1)
	assert.Equal(t, "Fire Safety", parsed.Sections[0].Title)

	_, err = f.svc.GetContent(context.Background(), actor, pendingID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotParsed)
}

func TestDocumentService_List(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	manager := actorWith(domain.RoleManager)
	employee := actorWith(domain.RoleEmployee)

	f.docRepo.On("ListByTenant", mock.Anything, manager.TenantID, 0, 20).Return([]domain.Document{{}, {}}, 2, nil)
	f.docRepo.On("ListAssignedTo", mock.Anything, employee.TenantID, employee.UserID, 0, 20).Return([]domain.Document{{}}, 1, nil)

	docs, total, err := f.svc.List(context.Background(), manager, 0, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, 2, total)

	docs, total, err = f.svc.List(context.Background(), employee, 0, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 1, total)
}

func TestDocumentService_GetDownloadURL(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{PresignExpiry: 900})
	actor := actorWith(domain.RoleOwner)
	id := uuid.New()

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, id).
		Return(&domain.Document{ID: id, S3Bucket: "kb-docs", S3Key: "k"}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "kb-docs", "k", int64(900)).Return("https://signed", nil)

	url, err := f.svc.GetDownloadURL(context.Background(), actor, id)

	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newDocumentFixture(service.DocumentConfig{})
	actor := actorWith(domain.RoleManager)
	id := uuid.New()

	f.docRepo.On("GetByID", mock.Anything, actor.TenantID, id).
		Return(&domain.Document{ID: id, S3Bucket: "kb-docs", S3Key: "k"}, nil)
	f.docRepo.On("Delete", mock.Anything, actor.TenantID, id).Return(nil)
	f.storage.On("Delete", mock.Anything, "kb-docs", "k").Return(errors.New("gone already"))

	err := f.svc.Delete(context.Background(), actor, id)

	assert.NoError(t, err)
	f.docRepo.AssertExpectations(t)
	f.storage.AssertExpectations(t)

	err = f.svc.Delete(context.Background(), actorWith(domain.RoleEmployee), id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDocumentService_Reparse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		actor := actorWith(domain.RoleManager)
		id := uuid.New()
		f.docRepo.On("GetByID", mock.Anything, actor.TenantID, id).Return(&domain.Document{
			ID: id, OriginalName: "a.docx", S3Bucket: "kb-docs", S3Key: "k", Status: domain.DocumentStatusFailed, ParseError: "old",
		}, nil)
		f.storage.On("Download", mock.Anything, "kb-docs", "k").Return([]byte("PK"), nil)
		f.parser.On("Parse", mock.Anything, mock.Anything).Return(parsedFixture(false), nil)
		f.docRepo.On("UpdateParseResult", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

		doc, err := f.svc.Reparse(context.Background(), actor, id)

		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusParsed, doc.Status)
		assert.Empty(t, doc.ParseError)
	})

	t.Run("failure is persisted", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})
		actor := actorWith(domain.RoleManager)
		id := uuid.New()
		f.docRepo.On("GetByID", mock.Anything, actor.TenantID, id).Return(&domain.Document{
			ID: id, OriginalName: "a.xlsx", S3Bucket: "kb-docs", S3Key: "k", Status: domain.DocumentStatusParsed, SectionCount: 4,
		}, nil)
		f.storage.On("Download", mock.Anything, "kb-docs", "k").Return([]byte("junk"), nil)
		f.parser.On("Parse", mock.Anything, mock.Anything).
			Return(nil, &docparse.ParseError{Format: docparse.FormatXlsx, Message: "corrupt"})
		f.docRepo.On("UpdateParseResult", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
			return d.Status == domain.DocumentStatusFailed && d.SectionCount == 0 && d.ParseError != ""
		})).Return(nil)

		doc, err := f.svc.Reparse(context.Background(), actor, id)

		assert.Nil(t, doc)
		assert.ErrorIs(t, err, docparse.ErrParse)
		f.docRepo.AssertExpectations(t)
	})
}

func TestDocumentService_Preview(t *testing.T) {
	t.Run("parses without storing", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{MaxBytes: 1024})
		f.parser.On("Parse", mock.Anything, mock.MatchedBy(func(d docparse.RawDocument) bool {
			return d.Name == "rota.xlsx" && string(d.Data) == "PK-data"
		})).Return(parsedFixture(false), nil)

		out, err := f.svc.Preview(context.Background(), actorWith(domain.RoleManager), "rota.xlsx", "", strings.NewReader("PK-data"))

		require.NoError(t, err)
		assert.NotNil(t, out)
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("too large matches upload", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{MaxBytes: 4})

		_, err := f.svc.Preview(context.Background(), actorWith(domain.RoleManager), "a.docx", "", strings.NewReader("12345"))

		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
		f.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})

		_, err := f.svc.Preview(context.Background(), actorWith(domain.RoleManager), "a.pdf", "", strings.NewReader("x"))

		assert.ErrorIs(t, err, docparse.ErrUnsupportedFileType)
	})

	t.Run("employee forbidden", func(t *testing.T) {
		f := newDocumentFixture(service.DocumentConfig{})

		_, err := f.svc.Preview(context.Background(), actorWith(domain.RoleEmployee), "a.docx", "", strings.NewReader("PK"))

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
