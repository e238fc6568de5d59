package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"knowbase/internal/docparse"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/middleware"
	"knowbase/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain, parser and generator errors to HTTP
// status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rateLimited *generator.RateLimitError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrSelfModification):
		return http.StatusForbidden, "SELF_MODIFICATION", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrTenantInactive):
		return http.StatusForbidden, "TENANT_INACTIVE", "tenant is inactive"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, docparse.ErrUnsupportedFileType), errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: docx, xlsx"
	case errors.Is(err, docparse.ErrFileRead):
		return http.StatusBadRequest, "FILE_READ_ERROR", err.Error()
	case errors.Is(err, docparse.ErrParse):
		return http.StatusUnprocessableEntity, "PARSE_ERROR", err.Error()
	case errors.Is(err, domain.ErrDocumentDegraded):
		return http.StatusUnprocessableEntity, "DOCUMENT_DEGRADED", err.Error()
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists for this tenant"
	case errors.Is(err, domain.ErrDuplicateTenantSlug):
		return http.StatusConflict, "DUPLICATE_SLUG", "tenant slug already exists"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "INVALID_ROLE", "invalid role; allowed: owner, manager, employee"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrInvalidQuestions):
		return http.StatusBadRequest, "INVALID_QUESTIONS", err.Error()
	case errors.Is(err, domain.ErrDocumentNotParsed):
		return http.StatusConflict, "DOCUMENT_NOT_PARSED", "document has no parsed content"
	case errors.Is(err, domain.ErrTestNotReady):
		return http.StatusConflict, "TEST_NOT_READY", "test is not ready"
	case errors.Is(err, domain.ErrAssignmentState):
		return http.StatusConflict, "ASSIGNMENT_STATE", "assignment is not in a valid state for this action"
	case errors.Is(err, domain.ErrAssignmentKind):
		return http.StatusBadRequest, "ASSIGNMENT_KIND", "operation does not apply to this assignment kind"
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "question generator is rate limited; retry later"
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, "GENERATION_FAILED", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps an error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", c.GetString(middleware.ContextKeyRequestID), err)
	}
	var rateLimited *generator.RateLimitError
	if errors.As(err, &rateLimited) {
		c.Header("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}

// actorOrAbort reads the authenticated caller. It writes a 401 and returns
// false when the auth context is missing.
func actorOrAbort(c *gin.Context) (service.Actor, bool) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return service.Actor{}, false
	}
	return actor, true
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional UUID query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name)
		return nil, false
	}
	return &id, true
}

// pagination reads offset and limit, falling back to the defaults for
// values out of range. The result is echoed back in PagMeta.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
