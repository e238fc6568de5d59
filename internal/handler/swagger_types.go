package handler

import (
	"time"

	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// Request and response shapes referenced from swag annotations.

// LoginRequest represents the login request body.
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required" example:"acme"`
	Email      string `json:"email" binding:"required" example:"owner@acme.test"`
	Password   string `json:"password" binding:"required" example:"correct-horse-battery"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RegisterRequest represents the self-service signup body.
type RegisterRequest struct {
	TenantName string `json:"tenant_name" binding:"required" example:"Acme Logistics"`
	TenantSlug string `json:"tenant_slug" binding:"required" example:"acme"`
	Email      string `json:"email" binding:"required" example:"owner@acme.test"`
	Password   string `json:"password" binding:"required" example:"correct-horse-battery"`
	FullName   string `json:"full_name" binding:"required" example:"Dana Owner"`
}

// UpdateTenantRequest represents the tenant update body.
type UpdateTenantRequest struct {
	Name *string `json:"name" example:"Acme Logistics EU"`
	Slug *string `json:"slug" example:"acme-eu"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required" example:"alice@acme.test"`
	Password string          `json:"password" binding:"required" example:"welcome-aboard-1"`
	FullName string          `json:"full_name" binding:"required" example:"Alice Doe"`
	Role     domain.UserRole `json:"role" binding:"required" example:"employee"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email    *string          `json:"email" example:"alice.doe@acme.test"`
	FullName *string          `json:"full_name" example:"Alice Doe"`
	Password *string          `json:"password" example:"new-password-2"`
	Role     *domain.UserRole `json:"role" example:"manager"`
	IsActive *bool            `json:"is_active" example:"true"`
}

// GenerateTestRequest represents the test generation body.
type GenerateTestRequest struct {
	DocumentID    uuid.UUID             `json:"document_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title         string                `json:"title" example:"Fire Safety quiz"`
	Description   string                `json:"description" example:"Checks the evacuation procedure"`
	QuestionCount int                   `json:"question_count" example:"5"`
	QuestionTypes []domain.QuestionType `json:"question_types" example:"single_choice,true_false"`
	Language      string                `json:"language" example:"en"`
	PassingScore  *int                  `json:"passing_score" example:"70"`
	Sync          bool                  `json:"sync" example:"false"`
}

// QuestionBody is one question in a create or update request.
type QuestionBody struct {
	ID            string              `json:"id" example:"q1"`
	Type          domain.QuestionType `json:"type" example:"single_choice"`
	Prompt        string              `json:"prompt" example:"Where is the assembly point?"`
	Choices       []string            `json:"choices" example:"Car park,Reception,Roof"`
	CorrectAnswer string              `json:"correct_answer" example:"Car park"`
	Explanation   string              `json:"explanation" example:"Section 2 names the car park."`
}

// CreateTestRequest represents a hand-written test.
type CreateTestRequest struct {
	Title        string         `json:"title" binding:"required" example:"Onboarding check"`
	Description  string         `json:"description" example:"Week one basics"`
	DocumentID   *uuid.UUID     `json:"document_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PassingScore *int           `json:"passing_score" example:"80"`
	Questions    []QuestionBody `json:"questions" binding:"required"`
}

// UpdateTestRequest replaces questions and optionally metadata.
type UpdateTestRequest struct {
	Title        *string        `json:"title" example:"Fire Safety quiz (revised)"`
	Description  *string        `json:"description"`
	PassingScore *int           `json:"passing_score" example:"60"`
	Questions    []QuestionBody `json:"questions" binding:"required"`
}

// AssignRequest represents the assignment body.
type AssignRequest struct {
	Kind        domain.AssignmentKind `json:"kind" binding:"required" example:"test"`
	TestID      *uuid.UUID            `json:"test_id" example:"660e8400-e29b-41d4-a716-446655440001"`
	DocumentID  *uuid.UUID            `json:"document_id"`
	AssigneeIDs []uuid.UUID           `json:"assignee_ids" binding:"required"`
	DueAt       *time.Time            `json:"due_at" example:"2026-11-30T17:00:00Z"`
}

// SubmitRequest carries answers keyed by question ID.
type SubmitRequest struct {
	Answers map[string]string `json:"answers" binding:"required" example:"q1:Car park,q2:true"`
}

// TokenResponse is the issued token pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2026-10-19T12:15:00Z"`
}

// DownloadURLResponse carries a presigned link to the original file.
type DownloadURLResponse struct {
	DownloadURL string `json:"download_url" example:"https://kb-docs.s3.amazonaws.com/tenants/..."`
}

// MessageResponse is returned by operations with nothing else to report.
type MessageResponse struct {
	Message string `json:"message" example:"document deleted"`
}

// HealthResponse is returned by the probes.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"1.0.0"`
	Error   string `json:"error,omitempty"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
