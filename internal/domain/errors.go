package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTenantInactive      = errors.New("tenant is inactive")
	ErrUserInactive        = errors.New("user is inactive")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDuplicateEmail      = errors.New("email already exists for this tenant")
	ErrDuplicateTenantSlug = errors.New("tenant slug already exists")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidRole         = errors.New("invalid role")
	ErrDocumentNotParsed   = errors.New("document has no parsed content")
	ErrDocumentDegraded    = errors.New("no text could be extracted from the document")
	ErrTestNotReady        = errors.New("test is not ready")
	ErrInvalidQuestions    = errors.New("invalid questions")
	ErrAssignmentState     = errors.New("assignment is not in a valid state for this action")
	ErrAssignmentKind      = errors.New("operation does not apply to this assignment kind")
	ErrGenerationFailed    = errors.New("test generation failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSelfModification    = errors.New("users cannot change their own role or status")
)
