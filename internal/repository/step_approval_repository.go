package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eval-flow/internal/database"
	"eval-flow/internal/models"

	"github.com/google/uuid"
)

// StepApprovalRepository handles criteria/self/primary step approval rows
type StepApprovalRepository struct {
	db database.DBTX
}

// NewStepApprovalRepository creates a new step approval repository
func NewStepApprovalRepository(db database.DBTX) *StepApprovalRepository {
	return &StepApprovalRepository{db: db}
}

const stepApprovalColumns = `id, period_id, employee_id, step, status, revision_comment, updated_by, created_at, updated_at`

// Get returns the approval row or nil if the step was never written
func (r *StepApprovalRepository) Get(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.StepApproval, error) {
	query := `SELECT ` + stepApprovalColumns + `
		FROM step_approvals
		WHERE period_id = $1 AND employee_id = $2 AND step = $3`

	a, err := scanStepApproval(r.db.QueryRowContext(ctx, query, periodID, employeeID, step))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step approval: %w", err)
	}
	return a, nil
}

// ListByEmployee returns all written steps of an employee in a period
func (r *StepApprovalRepository) ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.StepApproval, error) {
	query := `SELECT ` + stepApprovalColumns + `
		FROM step_approvals
		WHERE period_id = $1 AND employee_id = $2
		ORDER BY step`

	rows, err := r.db.QueryContext(ctx, query, periodID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list step approvals: %w", err)
	}
	defer rows.Close()

	var approvals []models.StepApproval
	for rows.Next() {
		a, err := scanStepApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step approval: %w", err)
		}
		approvals = append(approvals, *a)
	}
	return approvals, rows.Err()
}

// Upsert writes the status of a step, overwriting any previous status
func (r *StepApprovalRepository) Upsert(ctx context.Context, a *models.StepApproval) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO step_approvals (id, period_id, employee_id, step, status, revision_comment, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (period_id, employee_id, step)
		DO UPDATE SET status = EXCLUDED.status,
			revision_comment = EXCLUDED.revision_comment,
			updated_by = EXCLUDED.updated_by,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.PeriodID, a.EmployeeID, a.Step, a.Status, a.RevisionComment, a.UpdatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert step approval: %w", err)
	}
	return nil
}

// ListPeriodOverview aggregates the approval state of every employee with an evaluation line in the period
func (r *StepApprovalRepository) ListPeriodOverview(ctx context.Context, periodID string) ([]models.StepApprovalExportRow, error) {
	query := `
		WITH period_employees AS (
			SELECT DISTINCT employee_id FROM evaluation_line_mappings WHERE period_id = $1
		)
		SELECT pe.employee_id,
			COALESCE(emp.name, ''),
			COALESCE(emp.email, ''),
			COALESCE(c.status, 'pending'),
			COALESCE(s.status, 'pending'),
			COALESCE(p.status, 'pending'),
			(SELECT COUNT(*) FROM secondary_step_approvals ssa
				WHERE ssa.period_id = $1 AND ssa.employee_id = pe.employee_id AND ssa.status = 'approved'),
			(SELECT COUNT(DISTINCT m.evaluator_id) FROM evaluation_line_mappings m
				WHERE m.period_id = $1 AND m.employee_id = pe.employee_id AND m.evaluator_type = 'secondary'),
			(SELECT COUNT(*) FROM revision_requests rr
				WHERE rr.period_id = $1 AND rr.employee_id = pe.employee_id AND rr.is_completed = FALSE),
			GREATEST(c.updated_at, s.updated_at, p.updated_at)
		FROM period_employees pe
		LEFT JOIN employees emp ON emp.id = pe.employee_id
		LEFT JOIN step_approvals c ON c.period_id = $1 AND c.employee_id = pe.employee_id AND c.step = 'criteria'
		LEFT JOIN step_approvals s ON s.period_id = $1 AND s.employee_id = pe.employee_id AND s.step = 'self'
		LEFT JOIN step_approvals p ON p.period_id = $1 AND p.employee_id = pe.employee_id AND p.step = 'primary'
		ORDER BY emp.name NULLS LAST, pe.employee_id
	`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to load period overview: %w", err)
	}
	defer rows.Close()

	var result []models.StepApprovalExportRow
	for rows.Next() {
		var row models.StepApprovalExportRow
		var lastUpdated sql.NullTime
		if err := rows.Scan(
			&row.EmployeeID,
			&row.EmployeeName,
			&row.Email,
			&row.Criteria,
			&row.Self,
			&row.Primary,
			&row.SecondaryApproved,
			&row.SecondaryTotal,
			&row.OpenRevisions,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan period overview: %w", err)
		}
		if lastUpdated.Valid {
			row.LastUpdatedAt = &lastUpdated.Time
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStepApproval(row rowScanner) (*models.StepApproval, error) {
	var a models.StepApproval
	err := row.Scan(
		&a.ID,
		&a.PeriodID,
		&a.EmployeeID,
		&a.Step,
		&a.Status,
		&a.RevisionComment,
		&a.UpdatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
