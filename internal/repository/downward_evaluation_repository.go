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

// DownwardEvaluationRepository handles evaluator-authored evaluations
type DownwardEvaluationRepository struct {
	db database.DBTX
}

// NewDownwardEvaluationRepository creates a new downward evaluation repository
func NewDownwardEvaluationRepository(db database.DBTX) *DownwardEvaluationRepository {
	return &DownwardEvaluationRepository{db: db}
}

const downwardEvaluationColumns = `id, period_id, employee_id, evaluator_id, wbs_item_id, evaluation_type,
	content, score, is_completed, completed_at, version, updated_by, created_at, updated_at`

// Create stores an authored downward evaluation
func (r *DownwardEvaluationRepository) Create(ctx context.Context, e *models.DownwardEvaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO downward_evaluations (id, period_id, employee_id, evaluator_id, wbs_item_id, evaluation_type, content, score, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING version, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.PeriodID, e.EmployeeID, e.EvaluatorID, e.WBSItemID, e.EvaluationType, e.Content, e.Score, e.UpdatedBy,
	).Scan(&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create downward evaluation: %w", err)
	}
	return nil
}

// GetByID returns a downward evaluation or nil
func (r *DownwardEvaluationRepository) GetByID(ctx context.Context, id string) (*models.DownwardEvaluation, error) {
	query := `SELECT ` + downwardEvaluationColumns + ` FROM downward_evaluations WHERE id = $1`

	e, err := scanDownwardEvaluation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get downward evaluation: %w", err)
	}
	return e, nil
}

// List returns the evaluations an evaluator owns for one evaluatee and tier
func (r *DownwardEvaluationRepository) List(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType) ([]models.DownwardEvaluation, error) {
	query := `SELECT ` + downwardEvaluationColumns + `
		FROM downward_evaluations
		WHERE evaluator_id = $1 AND employee_id = $2 AND period_id = $3 AND evaluation_type = $4
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, evaluatorID, evaluateeID, periodID, evaluationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list downward evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []models.DownwardEvaluation
	for rows.Next() {
		e, err := scanDownwardEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan downward evaluation: %w", err)
		}
		evaluations = append(evaluations, *e)
	}
	return evaluations, rows.Err()
}

// SetCompleted flips the completion flag if the row still has expectedVersion
func (r *DownwardEvaluationRepository) SetCompleted(ctx context.Context, id string, completed bool, expectedVersion int, updatedBy string) (*models.DownwardEvaluation, error) {
	query := `
		UPDATE downward_evaluations
		SET is_completed = $2,
			completed_at = CASE WHEN $2 THEN CURRENT_TIMESTAMP ELSE NULL END,
			version = version + 1,
			updated_by = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND version = $3
		RETURNING ` + downwardEvaluationColumns

	e, err := scanDownwardEvaluation(r.db.QueryRowContext(ctx, query, id, completed, expectedVersion, updatedBy))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.versionConflict(ctx, id, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update downward evaluation: %w", err)
	}
	return e, nil
}

func (r *DownwardEvaluationRepository) versionConflict(ctx context.Context, id string, expected int) error {
	var actual int
	err := r.db.QueryRowContext(ctx, `SELECT version FROM downward_evaluations WHERE id = $1`, id).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("downward evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read downward evaluation version: %w", err)
	}
	return &ConflictError{Entity: "downward evaluation", ID: id, ExpectedVersion: expected, ActualVersion: actual}
}

func scanDownwardEvaluation(row rowScanner) (*models.DownwardEvaluation, error) {
	var e models.DownwardEvaluation
	err := row.Scan(
		&e.ID,
		&e.PeriodID,
		&e.EmployeeID,
		&e.EvaluatorID,
		&e.WBSItemID,
		&e.EvaluationType,
		&e.Content,
		&e.Score,
		&e.IsCompleted,
		&e.CompletedAt,
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
