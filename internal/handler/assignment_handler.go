package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"knowbase/internal/domain"
	"knowbase/internal/service"
)

// AssignmentHandler handles assignment and submission endpoints.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// Assign handles POST /api/v1/assignments
// @Summary Assign a test or document
// @Description Creates one assignment per distinct assignee and emails each of them
// @Tags assignments
// @Accept json
// @Produce json
// @Param request body AssignRequest true "Assignment details"
// @Success 201 {object} Response{data=[]domain.Assignment} "Assignments created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Test not ready or document not parsed"
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var input service.AssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	assignments, err := h.assignmentService.Assign(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, assignments)
}

// List handles GET /api/v1/assignments
// @Summary List assignments in the tenant
// @Tags assignments
// @Produce json
// @Param assignee_id query string false "Filter by assignee (UUID)"
// @Param status query string false "Filter by status" Enums(assigned, in_progress, completed)
// @Param kind query string false "Filter by kind" Enums(test, document)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Assignment,meta=PagMeta} "Assignments"
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assigneeID, ok := optionalUUIDQuery(c, "assignee_id")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	filter := service.AssignmentFilterInput{
		AssigneeID: assigneeID,
		Status:     domain.AssignmentStatus(c.Query("status")),
		Kind:       domain.AssignmentKind(c.Query("kind")),
	}
	assignments, total, err := h.assignmentService.List(c.Request.Context(), actor, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, assignments, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Mine handles GET /api/v1/assignments/mine
// @Summary List my assignments
// @Tags assignments
// @Produce json
// @Param status query string false "Filter by status" Enums(assigned, in_progress, completed)
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Assignment,meta=PagMeta} "Assignments"
// @Security BearerAuth
// @Router /assignments/mine [get]
func (h *AssignmentHandler) Mine(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	status := domain.AssignmentStatus(c.Query("status"))
	assignments, total, err := h.assignmentService.ListMine(c.Request.Context(), actor, status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, assignments, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/assignments/:id
// @Summary Get an assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID (UUID)"
// @Success 200 {object} Response{data=domain.Assignment} "Assignment"
// @Failure 404 {object} ErrorResponseBody "Assignment not found"
// @Security BearerAuth
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignment")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Get(c.Request.Context(), actor, assignmentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, assignment)
}

// GetSubmission handles GET /api/v1/assignments/:id/submission
// @Summary Get the graded submission for an assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID (UUID)"
// @Success 200 {object} Response{data=domain.Submission} "Submission"
// @Failure 404 {object} ErrorResponseBody "No submission"
// @Security BearerAuth
// @Router /assignments/{id}/submission [get]
func (h *AssignmentHandler) GetSubmission(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignment")
	if !ok {
		return
	}

	submission, err := h.assignmentService.GetSubmission(c.Request.Context(), actor, assignmentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, submission)
}

// Start handles POST /api/v1/assignments/:id/start
// @Summary Start an assignment
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID (UUID)"
// @Success 200 {object} Response{data=domain.Assignment} "Assignment started"
// @Failure 403 {object} ErrorResponseBody "Not the assignee"
// @Failure 409 {object} ErrorResponseBody "Already completed"
// @Security BearerAuth
// @Router /assignments/{id}/start [post]
func (h *AssignmentHandler) Start(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignment")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Start(c.Request.Context(), actor, assignmentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, assignment)
}

// Complete handles POST /api/v1/assignments/:id/complete
// @Summary Mark a document assignment as read
// @Tags assignments
// @Produce json
// @Param id path string true "Assignment ID (UUID)"
// @Success 200 {object} Response{data=domain.Assignment} "Assignment completed"
// @Failure 400 {object} ErrorResponseBody "Not a document assignment"
// @Failure 409 {object} ErrorResponseBody "Already completed"
// @Security BearerAuth
// @Router /assignments/{id}/complete [post]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignment")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.CompleteDocument(c.Request.Context(), actor, assignmentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, assignment)
}

// Submit handles POST /api/v1/assignments/:id/submit
// @Summary Submit answers for a test assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID (UUID)"
// @Param request body SubmitRequest true "Answers keyed by question ID"
// @Success 200 {object} Response{data=service.SubmitResult} "Graded result"
// @Failure 400 {object} ErrorResponseBody "Not a test assignment"
// @Failure 409 {object} ErrorResponseBody "Already submitted"
// @Security BearerAuth
// @Router /assignments/{id}/submit [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignment")
	if !ok {
		return
	}

	var input service.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.assignmentService.Submit(c.Request.Context(), actor, assignmentID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
