package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"knowbase/internal/service"
)

// TenantHandler serves the caller's own tenant.
type TenantHandler struct {
	tenantService service.TenantService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Get handles GET /api/v1/tenant
// @Summary Get current tenant
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=domain.Tenant} "Tenant"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /tenant [get]
func (h *TenantHandler) Get(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}

// Update handles PUT /api/v1/tenant
// @Summary Update current tenant
// @Description Rename the tenant or change its slug (owner only)
// @Tags tenant
// @Accept json
// @Produce json
// @Param request body UpdateTenantRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.Tenant} "Tenant updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - owner only"
// @Failure 409 {object} ErrorResponseBody "Slug taken"
// @Security BearerAuth
// @Router /tenant [put]
func (h *TenantHandler) Update(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var input service.UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}
