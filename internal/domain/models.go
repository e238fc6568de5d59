package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated organizational tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a tenant.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document is an uploaded training document and its parsed structure.
// Content holds the JSON-encoded docparse.ParsedContent once parsing succeeds.
type Document struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	TenantID     uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	UploadedBy   uuid.UUID       `db:"uploaded_by" json:"uploaded_by"`
	Title        string          `db:"title" json:"title"`
	OriginalName string          `db:"original_name" json:"original_name"`
	FileType     FileType        `db:"file_type" json:"file_type"`
	FileSize     int64           `db:"file_size" json:"file_size"`
	S3Bucket     string          `db:"s3_bucket" json:"-"`
	S3Key        string          `db:"s3_key" json:"-"`
	ContentType  string          `db:"content_type" json:"content_type"`
	Status       DocumentStatus  `db:"status" json:"status"`
	Content      json.RawMessage `db:"content" json:"-"`
	ParseError   string          `db:"parse_error" json:"parse_error,omitempty"`
	Extractor    string          `db:"extractor" json:"extractor"`
	Degraded     bool            `db:"degraded" json:"degraded"`
	WordCount    int             `db:"word_count" json:"word_count"`
	SectionCount int             `db:"section_count" json:"section_count"`
	TableCount   int             `db:"table_count" json:"table_count"`
	ParsedAt     *time.Time      `db:"parsed_at" json:"parsed_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Question is a single test item. CorrectAnswer for multiple_choice lists the
// correct choices separated by commas.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Choices       []string     `json:"choices,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Questions is stored as a JSONB array.
type Questions []Question

// Value implements driver.Valuer.
func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *Questions) Scan(src interface{}) error {
	return scanJSON(src, q)
}

// Redacted returns a copy with answers and explanations removed.
func (q Questions) Redacted() Questions {
	out := make(Questions, len(q))
	for i, item := range q {
		item.CorrectAnswer = ""
		item.Explanation = ""
		item.Choices = append([]string(nil), item.Choices...)
		out[i] = item
	}
	return out
}

// Test is a knowledge check, generated from a document or written by hand.
type Test struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	TenantID        uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	DocumentID      *uuid.UUID       `db:"document_id" json:"document_id"`
	Title           string           `db:"title" json:"title"`
	Description     string           `db:"description" json:"description"`
	Questions       Questions        `db:"questions" json:"questions"`
	QuestionCount   int              `db:"question_count" json:"question_count"`
	Source          TestSource       `db:"source" json:"source"`
	Model           string           `db:"model" json:"model,omitempty"`
	PassingScore    int              `db:"passing_score" json:"passing_score"`
	Status          TestStatus       `db:"status" json:"status"`
	GenerationError string           `db:"generation_error" json:"generation_error,omitempty"`
	Attempts        int              `db:"generation_attempts" json:"-"`
	Params          GenerationParams `db:"generation_params" json:"generation_params"`
	RetryAfter      *time.Time       `db:"retry_after" json:"retry_after,omitempty"`
	CreatedBy       uuid.UUID        `db:"created_by" json:"created_by"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// GenerationParams records what was asked of the generator for a queued test.
type GenerationParams struct {
	QuestionCount int            `json:"question_count,omitempty"`
	QuestionTypes []QuestionType `json:"question_types,omitempty"`
	Language      string         `json:"language,omitempty"`
}

// Value implements driver.Valuer.
func (g GenerationParams) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner.
func (g *GenerationParams) Scan(src interface{}) error {
	return scanJSON(src, g)
}

// Assignment gives a user a test to take or a document to read.
type Assignment struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	TenantID    uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	AssigneeID  uuid.UUID        `db:"assignee_id" json:"assignee_id"`
	AssignedBy  uuid.UUID        `db:"assigned_by" json:"assigned_by"`
	Kind        AssignmentKind   `db:"kind" json:"kind"`
	TestID      *uuid.UUID       `db:"test_id" json:"test_id,omitempty"`
	DocumentID  *uuid.UUID       `db:"document_id" json:"document_id,omitempty"`
	DueAt       *time.Time       `db:"due_at" json:"due_at,omitempty"`
	Status      AssignmentStatus `db:"status" json:"status"`
	Score       *int             `db:"score" json:"score,omitempty"`
	StartedAt   *time.Time       `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// Answers maps question ID to the submitted answer.
type Answers map[string]string

// Value implements driver.Valuer.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Answers) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// Submission is a graded attempt at a test assignment.
type Submission struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	AssignmentID uuid.UUID `db:"assignment_id" json:"assignment_id"`
	TestID       uuid.UUID `db:"test_id" json:"test_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Answers      Answers   `db:"answers" json:"answers"`
	Correct      int       `db:"correct" json:"correct"`
	Total        int       `db:"total" json:"total"`
	Score        int       `db:"score" json:"score"`
	Passed       bool      `db:"passed" json:"passed"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
