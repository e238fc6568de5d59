package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"knowbase/internal/service"
)

// ReportHandler handles dashboard statistics and the progress report.
type ReportHandler struct {
	statsService  service.StatsService
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(statsService service.StatsService, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{statsService: statsService, reportService: reportService}
}

// Stats handles GET /api/v1/stats
// @Summary Dashboard statistics
// @Description Managers get tenant-wide counts; employees get counts for their own assignments
// @Tags reports
// @Produce json
// @Success 200 {object} Response{data=domain.Stats} "Statistics"
// @Security BearerAuth
// @Router /stats [get]
func (h *ReportHandler) Stats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}

// Progress handles GET /api/v1/reports/progress
// @Summary Per-employee progress
// @Description Returns JSON rows; with a format query it behaves like the export endpoint
// @Tags reports
// @Produce json
// @Param format query string false "Download instead of JSON" Enums(csv, xlsx)
// @Success 200 {object} Response{data=[]domain.EmployeeProgressRow} "Progress rows"
// @Failure 403 {object} ErrorResponseBody "Managers only"
// @Security BearerAuth
// @Router /reports/progress [get]
func (h *ReportHandler) Progress(c *gin.Context) {
	if c.Query("format") != "" {
		h.Export(c)
		return
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	rows, err := h.reportService.Progress(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rows)
}

// Export handles GET /api/v1/reports/progress/export
// @Summary Download the progress report
// @Tags reports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Output format" Enums(csv, xlsx) default(csv)
// @Success 200 {file} file "Report file"
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Failure 403 {object} ErrorResponseBody "Managers only"
// @Security BearerAuth
// @Router /reports/progress/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ReportFormatCSV))))

	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	filename, err := h.reportService.ExportProgress(c.Request.Context(), actor, format, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
