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

// EvaluationLineRepository reads the evaluator assignments of a period
type EvaluationLineRepository struct {
	db database.DBTX
}

// NewEvaluationLineRepository creates a new evaluation line repository
func NewEvaluationLineRepository(db database.DBTX) *EvaluationLineRepository {
	return &EvaluationLineRepository{db: db}
}

// Create stores a mapping
func (r *EvaluationLineRepository) Create(ctx context.Context, m *models.EvaluationLineMapping) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	query := `
		INSERT INTO evaluation_line_mappings (id, period_id, employee_id, evaluator_id, wbs_item_id, evaluator_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.PeriodID, m.EmployeeID, m.EvaluatorID, m.WBSItemID, m.EvaluatorType,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create evaluation line mapping: %w", err)
	}
	return nil
}

// FindPrimaryEvaluator returns the primary evaluator or "" when none is mapped
func (r *EvaluationLineRepository) FindPrimaryEvaluator(ctx context.Context, periodID, employeeID string) (string, error) {
	query := `
		SELECT evaluator_id FROM evaluation_line_mappings
		WHERE period_id = $1 AND employee_id = $2 AND evaluator_type = 'primary'
		LIMIT 1
	`
	var evaluatorID string
	err := r.db.QueryRowContext(ctx, query, periodID, employeeID).Scan(&evaluatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find primary evaluator: %w", err)
	}
	return evaluatorID, nil
}

// FindSecondaryEvaluators returns the distinct secondary evaluators in mapping order.
// Mappings exist per WBS item, so one evaluator may appear on several rows.
func (r *EvaluationLineRepository) FindSecondaryEvaluators(ctx context.Context, periodID, employeeID string) ([]string, error) {
	query := `
		SELECT evaluator_id FROM evaluation_line_mappings
		WHERE period_id = $1 AND employee_id = $2 AND evaluator_type = 'secondary'
		GROUP BY evaluator_id
		ORDER BY MIN(created_at), evaluator_id
	`
	rows, err := r.db.QueryContext(ctx, query, periodID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find secondary evaluators: %w", err)
	}
	defer rows.Close()

	var evaluators []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan secondary evaluator: %w", err)
		}
		evaluators = append(evaluators, id)
	}
	return evaluators, rows.Err()
}
