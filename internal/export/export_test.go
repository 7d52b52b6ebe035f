package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"eval-flow/internal/models"

	"github.com/xuri/excelize/v2"
)

type overviewFunc func(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error)

func (f overviewFunc) ListPeriodOverview(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error) {
	return f(ctx, periodID)
}

func TestBuildWorkbook(t *testing.T) {
	updated := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	rows := []models.StepApprovalExportRow{
		{
			EmployeeName:      "Ann Example",
			Email:             "ann@example.com",
			Criteria:          models.StatusApproved,
			Self:              models.StatusApproved,
			Primary:           models.StatusApproved,
			SecondaryApproved: 2,
			SecondaryTotal:    2,
			LastUpdatedAt:     &updated,
		},
		{
			EmployeeName:   "Bob Example",
			Email:          "bob@example.com",
			Criteria:       models.StatusApproved,
			Self:           models.StatusRevisionRequested,
			Primary:        models.StatusPending,
			SecondaryTotal: 1,
			OpenRevisions:  1,
		},
	}

	f, err := Build(rows)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(approvalSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected header and two rows, got %d rows", len(got))
	}
	if got[0][0] != "Employee" || got[1][0] != "Ann Example" {
		t.Errorf("Unexpected first column: %v", got)
	}
	if got[1][5] != "2/2" || got[1][7] != "2026-03-04 10:30" {
		t.Errorf("Unexpected row: %v", got[1])
	}
	if got[2][3] != "revision_requested" || got[2][6] != "1" {
		t.Errorf("Unexpected row: %v", got[2])
	}

	fully, err := f.GetCellValue(summarySheet, "B3")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if fully != "1" {
		t.Errorf("Expected one fully approved employee, got %s", fully)
	}
}

func TestWriteTo(t *testing.T) {
	exporter := NewStepApprovalExporter(overviewFunc(func(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error) {
		return []models.StepApprovalExportRow{{EmployeeName: "Ann", Criteria: models.StatusPending, Self: models.StatusPending, Primary: models.StatusPending}}, nil
	}))

	var buf bytes.Buffer
	if err := exporter.WriteTo(context.Background(), "p-1", &buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to read workbook back: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != approvalSheet {
		t.Errorf("Unexpected sheets %v", sheets)
	}
}

func TestWriteToSourceError(t *testing.T) {
	exporter := NewStepApprovalExporter(overviewFunc(func(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error) {
		return nil, errors.New("db down")
	}))
	if err := exporter.WriteTo(context.Background(), "p-1", &bytes.Buffer{}); err == nil {
		t.Error("Expected an error")
	}
}
