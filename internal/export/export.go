// Package export renders period reports as xlsx workbooks.
package export

import (
	"context"
	"fmt"
	"io"

	"eval-flow/internal/models"

	"github.com/xuri/excelize/v2"
)

// OverviewSource lists the approval overview of a period
type OverviewSource interface {
	ListPeriodOverview(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error)
}

// StepApprovalExporter builds the step approval workbook of a period
type StepApprovalExporter struct {
	source OverviewSource
}

// NewStepApprovalExporter creates an exporter reading from source
func NewStepApprovalExporter(source OverviewSource) *StepApprovalExporter {
	return &StepApprovalExporter{source: source}
}

const (
	approvalSheet = "Step approvals"
	summarySheet  = "Summary"
)

var headers = []string{
	"Employee", "Email", "Criteria", "Self", "Primary", "Secondary", "Open revision requests", "Last updated",
}

// WriteTo writes the workbook of periodID to w
func (e *StepApprovalExporter) WriteTo(ctx context.Context, periodID string, w io.Writer) error {
	rows, err := e.source.ListPeriodOverview(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to load period overview: %w", err)
	}

	f, err := Build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build renders rows into a workbook with a detail and a summary sheet
func Build(rows []models.StepApprovalExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", approvalSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(approvalSheet, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(approvalSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	counts := map[models.StepApprovalStatus]int{}
	fullyApproved := 0
	for i, r := range rows {
		lastUpdated := ""
		if r.LastUpdatedAt != nil {
			lastUpdated = r.LastUpdatedAt.UTC().Format("2006-01-02 15:04")
		}
		values := []interface{}{
			r.EmployeeName,
			r.Email,
			string(r.Criteria),
			string(r.Self),
			string(r.Primary),
			fmt.Sprintf("%d/%d", r.SecondaryApproved, r.SecondaryTotal),
			r.OpenRevisions,
			lastUpdated,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(approvalSheet, cell, &values); err != nil {
			return nil, err
		}

		counts[r.Primary]++
		if r.Criteria == models.StatusApproved && r.Self == models.StatusApproved &&
			r.Primary == models.StatusApproved && r.SecondaryApproved == r.SecondaryTotal {
			fullyApproved++
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Employees", len(rows)},
		{"Fully approved", fullyApproved},
		{"Primary approved", counts[models.StatusApproved]},
		{"Primary revision requested", counts[models.StatusRevisionRequested]},
		{"Primary pending", counts[models.StatusPending]},
	}
	for i, row := range summary {
		for j, val := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(summarySheet, cell, val); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(approvalSheet, "A", "B", 30)
	_ = f.SetColWidth(approvalSheet, "C", "F", 18)
	_ = f.SetColWidth(approvalSheet, "G", "H", 22)
	_ = f.SetColWidth(summarySheet, "A", "A", 30)

	return f, nil
}
