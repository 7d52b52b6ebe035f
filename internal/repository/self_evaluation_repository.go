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

// SelfEvaluationRepository handles self-evaluation rows and their submission gates
type SelfEvaluationRepository struct {
	db database.DBTX
}

// NewSelfEvaluationRepository creates a new self-evaluation repository
func NewSelfEvaluationRepository(db database.DBTX) *SelfEvaluationRepository {
	return &SelfEvaluationRepository{db: db}
}

const selfEvaluationColumns = `id, period_id, employee_id, wbs_item_id, content, score,
	submitted_to_evaluator, submitted_to_evaluator_at, submitted_to_manager, submitted_to_manager_at,
	version, updated_by, created_at, updated_at`

// Create stores an authored self-evaluation
func (r *SelfEvaluationRepository) Create(ctx context.Context, e *models.SelfEvaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO self_evaluations (id, period_id, employee_id, wbs_item_id, content, score, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.PeriodID, e.EmployeeID, e.WBSItemID, e.Content, e.Score, e.UpdatedBy,
	).Scan(&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create self-evaluation: %w", err)
	}
	return nil
}

// GetByID returns a self-evaluation or nil
func (r *SelfEvaluationRepository) GetByID(ctx context.Context, id string) (*models.SelfEvaluation, error) {
	query := `SELECT ` + selfEvaluationColumns + ` FROM self_evaluations WHERE id = $1`

	e, err := scanSelfEvaluation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get self-evaluation: %w", err)
	}
	return e, nil
}

// ListByEmployee returns all self-evaluations of an employee in a period
func (r *SelfEvaluationRepository) ListByEmployee(ctx context.Context, employeeID, periodID string) ([]models.SelfEvaluation, error) {
	query := `SELECT ` + selfEvaluationColumns + `
		FROM self_evaluations
		WHERE employee_id = $1 AND period_id = $2
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, employeeID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list self-evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []models.SelfEvaluation
	for rows.Next() {
		e, err := scanSelfEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan self-evaluation: %w", err)
		}
		evaluations = append(evaluations, *e)
	}
	return evaluations, rows.Err()
}

// SetSubmitted flips one gate if the row still has expectedVersion
func (r *SelfEvaluationRepository) SetSubmitted(ctx context.Context, id string, target models.SelfSubmissionTarget, submitted bool, expectedVersion int, updatedBy string) (*models.SelfEvaluation, error) {
	column := "submitted_to_evaluator"
	if target == models.TargetManager {
		column = "submitted_to_manager"
	}

	query := `
		UPDATE self_evaluations
		SET ` + column + ` = $2,
			` + column + `_at = CASE WHEN $2 THEN CURRENT_TIMESTAMP ELSE NULL END,
			version = version + 1,
			updated_by = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND version = $3
		RETURNING ` + selfEvaluationColumns

	e, err := scanSelfEvaluation(r.db.QueryRowContext(ctx, query, id, submitted, expectedVersion, updatedBy))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.versionConflict(ctx, id, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update self-evaluation: %w", err)
	}
	return e, nil
}

func (r *SelfEvaluationRepository) versionConflict(ctx context.Context, id string, expected int) error {
	var actual int
	err := r.db.QueryRowContext(ctx, `SELECT version FROM self_evaluations WHERE id = $1`, id).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("self-evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read self-evaluation version: %w", err)
	}
	return &ConflictError{Entity: "self-evaluation", ID: id, ExpectedVersion: expected, ActualVersion: actual}
}

func scanSelfEvaluation(row rowScanner) (*models.SelfEvaluation, error) {
	var e models.SelfEvaluation
	err := row.Scan(
		&e.ID,
		&e.PeriodID,
		&e.EmployeeID,
		&e.WBSItemID,
		&e.Content,
		&e.Score,
		&e.SubmittedToEvaluator,
		&e.SubmittedToEvaluatorAt,
		&e.SubmittedToManager,
		&e.SubmittedToManagerAt,
		&e.Version,
		&e.UpdatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
