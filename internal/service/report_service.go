package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"knowbase/internal/csvexport"
	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f ReportFormat) ContentType() string {
	if f == ReportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

var progressColumns = []string{
	"Name",
	"Email",
	"Role",
	"Assigned",
	"In Progress",
	"Completed",
	"Overdue",
	"Tests Passed",
	"Average Score",
	"Last Activity",
}

const progressSheet = "Progress"

// ReportService builds the employee progress report.
type ReportService interface {
	Progress(ctx context.Context, actor Actor) ([]domain.EmployeeProgressRow, error)
	// ExportProgress writes the report to w and returns the download file name.
	ExportProgress(ctx context.Context, actor Actor, format ReportFormat, w io.Writer) (string, error)
}

type reportService struct {
	statsRepo  port.StatsRepository
	tenantRepo port.TenantRepository
	now        func() time.Time
}

// NewReportService creates a new ReportService implementation.
func NewReportService(statsRepo port.StatsRepository, tenantRepo port.TenantRepository) ReportService {
	return &reportService{statsRepo: statsRepo, tenantRepo: tenantRepo, now: time.Now}
}

func (s *reportService) Progress(ctx context.Context, actor Actor) ([]domain.EmployeeProgressRow, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	return s.statsRepo.EmployeeProgress(ctx, actor.TenantID)
}

func (s *reportService) ExportProgress(ctx context.Context, actor Actor, format ReportFormat, w io.Writer) (string, error) {
	if format != ReportFormatCSV && format != ReportFormatXLSX {
		return "", fmt.Errorf("%w: format must be csv or xlsx", domain.ErrInvalidInput)
	}
	rows, err := s.Progress(ctx, actor)
	if err != nil {
		return "", err
	}

	name := "progress"
	if tenant, err := s.tenantRepo.GetByID(ctx, actor.TenantID); err == nil {
		name = tenant.Slug + "_progress"
	}
	filename := csvexport.BuildFilename(name, string(format), s.now())

	if format == ReportFormatXLSX {
		err = writeProgressXLSX(w, rows)
	} else {
		err = writeProgressCSV(w, rows)
	}
	if err != nil {
		return "", err
	}
	return filename, nil
}

func progressRecord(r *domain.EmployeeProgressRow) []string {
	last := ""
	if r.LastActivity != nil {
		last = r.LastActivity.UTC().Format(time.RFC3339)
	}
	return []string{
		r.FullName,
		r.Email,
		string(r.Role),
		strconv.Itoa(r.Assigned),
		strconv.Itoa(r.InProgress),
		strconv.Itoa(r.Completed),
		strconv.Itoa(r.Overdue),
		strconv.Itoa(r.TestsPassed),
		strconv.FormatFloat(r.AverageScore, 'f', 1, 64),
		last,
	}
}

func writeProgressCSV(w io.Writer, rows []domain.EmployeeProgressRow) error {
	cw := csvexport.NewWriter(w, progressColumns)
	if err := cw.WriteBOM(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for i := range rows {
		if err := cw.WriteRow(progressRecord(&rows[i])); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeProgressXLSX(w io.Writer, rows []domain.EmployeeProgressRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}

	header := make([]interface{}, len(progressColumns))
	for i, c := range progressColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(progressSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		last := ""
		if r.LastActivity != nil {
			last = r.LastActivity.UTC().Format(time.RFC3339)
		}
		values := []interface{}{
			r.FullName, r.Email, string(r.Role),
			r.Assigned, r.InProgress, r.Completed, r.Overdue, r.TestsPassed,
			r.AverageScore, last,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}
	}

	if err := f.SetPanes(progressSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}
