package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// TestHandler handles knowledge test endpoints.
type TestHandler struct {
	testService service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Generate handles POST /api/v1/tests/generate
// @Summary Generate a test from a document
// @Description Queues generation by default (202). With "sync": true the test is generated inline (201).
// @Tags tests
// @Accept json
// @Produce json
// @Param request body GenerateTestRequest true "Generation parameters"
// @Success 201 {object} Response{data=domain.Test} "Test generated"
// @Success 202 {object} Response{data=domain.Test} "Generation queued"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Document not parsed"
// @Failure 429 {object} ErrorResponseBody "Provider rate limited"
// @Failure 502 {object} ErrorResponseBody "Generation failed"
// @Security BearerAuth
// @Router /tests/generate [post]
func (h *TestHandler) Generate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var input service.GenerateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	test, err := h.testService.Generate(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if test.Status == domain.TestStatusQueued {
		RespondAccepted(c, test)
		return
	}
	RespondCreated(c, test)
}

// Create handles POST /api/v1/tests
// @Summary Create a test by hand
// @Tags tests
// @Accept json
// @Produce json
// @Param request body CreateTestRequest true "Test definition"
// @Success 201 {object} Response{data=domain.Test} "Test created"
// @Failure 400 {object} ErrorResponseBody "Invalid questions"
// @Security BearerAuth
// @Router /tests [post]
func (h *TestHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var input service.CreateTestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	test, err := h.testService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, test)
}

// List handles GET /api/v1/tests
// @Summary List tests
// @Tags tests
// @Produce json
// @Param document_id query string false "Filter by source document (UUID)"
// @Param status query string false "Filter by status" Enums(draft, queued, generating, ready, failed)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Test,meta=PagMeta} "Tests"
// @Failure 403 {object} ErrorResponseBody "Managers only"
// @Security BearerAuth
// @Router /tests [get]
func (h *TestHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	documentID, ok := optionalUUIDQuery(c, "document_id")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	filter := service.TestFilterInput{
		DocumentID: documentID,
		Status:     domain.TestStatus(c.Query("status")),
	}
	tests, total, err := h.testService.List(c.Request.Context(), actor, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, tests, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/tests/:id
// @Summary Get a test
// @Description Employees receive the questions without answers or explanations
// @Tags tests
// @Produce json
// @Param id path string true "Test ID (UUID)"
// @Success 200 {object} Response{data=domain.Test} "Test"
// @Failure 404 {object} ErrorResponseBody "Test not found"
// @Security BearerAuth
// @Router /tests/{id} [get]
func (h *TestHandler) GetByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	testID, ok := pathID(c, "test")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), actor, testID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, test)
}

// UpdateQuestions handles PUT /api/v1/tests/:id/questions
// @Summary Replace a test's questions
// @Description Editing a failed test marks it ready
// @Tags tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID (UUID)"
// @Param request body UpdateTestRequest true "New questions and metadata"
// @Success 200 {object} Response{data=domain.Test} "Test updated"
// @Failure 400 {object} ErrorResponseBody "Invalid questions"
// @Failure 404 {object} ErrorResponseBody "Test not found"
// @Failure 409 {object} ErrorResponseBody "Generation still in progress"
// @Security BearerAuth
// @Router /tests/{id}/questions [put]
func (h *TestHandler) UpdateQuestions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	testID, ok := pathID(c, "test")
	if !ok {
		return
	}

	var input service.UpdateQuestionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	test, err := h.testService.UpdateQuestions(c.Request.Context(), actor, testID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, test)
}

// Delete handles DELETE /api/v1/tests/:id
// @Summary Delete a test
// @Tags tests
// @Produce json
// @Param id path string true "Test ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Test deleted"
// @Failure 404 {object} ErrorResponseBody "Test not found"
// @Security BearerAuth
// @Router /tests/{id} [delete]
func (h *TestHandler) Delete(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	testID, ok := pathID(c, "test")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), actor, testID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "test deleted"})
}
