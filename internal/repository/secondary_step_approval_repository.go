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

// SecondaryStepApprovalRepository handles per-evaluator secondary step approval rows
type SecondaryStepApprovalRepository struct {
	db database.DBTX
}

// NewSecondaryStepApprovalRepository creates a new secondary step approval repository
func NewSecondaryStepApprovalRepository(db database.DBTX) *SecondaryStepApprovalRepository {
	return &SecondaryStepApprovalRepository{db: db}
}

const secondaryApprovalColumns = `id, period_id, employee_id, evaluator_id, status, revision_comment, updated_by, created_at, updated_at`

// Get returns the approval row of one evaluator or nil
func (r *SecondaryStepApprovalRepository) Get(ctx context.Context, periodID, employeeID, evaluatorID string) (*models.SecondaryStepApproval, error) {
	query := `SELECT ` + secondaryApprovalColumns + `
		FROM secondary_step_approvals
		WHERE period_id = $1 AND employee_id = $2 AND evaluator_id = $3`

	a, err := scanSecondaryApproval(r.db.QueryRowContext(ctx, query, periodID, employeeID, evaluatorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secondary step approval: %w", err)
	}
	return a, nil
}

// ListByEmployee returns the secondary approvals of all evaluators of an employee
func (r *SecondaryStepApprovalRepository) ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.SecondaryStepApproval, error) {
	query := `SELECT ` + secondaryApprovalColumns + `
		FROM secondary_step_approvals
		WHERE period_id = $1 AND employee_id = $2
		ORDER BY created_at, evaluator_id`

	rows, err := r.db.QueryContext(ctx, query, periodID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secondary step approvals: %w", err)
	}
	defer rows.Close()

	var approvals []models.SecondaryStepApproval
	for rows.Next() {
		a, err := scanSecondaryApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan secondary step approval: %w", err)
		}
		approvals = append(approvals, *a)
	}
	return approvals, rows.Err()
}

// Upsert writes the status of one evaluator's secondary step
func (r *SecondaryStepApprovalRepository) Upsert(ctx context.Context, a *models.SecondaryStepApproval) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO secondary_step_approvals (id, period_id, employee_id, evaluator_id, status, revision_comment, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (period_id, employee_id, evaluator_id)
		DO UPDATE SET status = EXCLUDED.status,
			revision_comment = EXCLUDED.revision_comment,
			updated_by = EXCLUDED.updated_by,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.PeriodID, a.EmployeeID, a.EvaluatorID, a.Status, a.RevisionComment, a.UpdatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert secondary step approval: %w", err)
	}
	return nil
}

func scanSecondaryApproval(row rowScanner) (*models.SecondaryStepApproval, error) {
	var a models.SecondaryStepApproval
	err := row.Scan(
		&a.ID,
		&a.PeriodID,
		&a.EmployeeID,
		&a.EvaluatorID,
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
