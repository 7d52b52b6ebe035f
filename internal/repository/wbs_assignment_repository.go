package repository

import (
	"context"
	"fmt"

	"eval-flow/internal/database"
	"eval-flow/internal/models"

	"github.com/google/uuid"
)

// WBSAssignmentRepository handles project WBS assignments
type WBSAssignmentRepository struct {
	db database.DBTX
}

// NewWBSAssignmentRepository creates a new WBS assignment repository
func NewWBSAssignmentRepository(db database.DBTX) *WBSAssignmentRepository {
	return &WBSAssignmentRepository{db: db}
}

// Create stores an assignment
func (r *WBSAssignmentRepository) Create(ctx context.Context, a *models.WBSAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `
		INSERT INTO wbs_assignments (id, period_id, employee_id, project_id, wbs_item_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.PeriodID, a.EmployeeID, a.ProjectID, a.WBSItemID,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create WBS assignment: %w", err)
	}
	return nil
}

// ListWBSItemIDs returns the WBS items assigned to an employee within one project
func (r *WBSAssignmentRepository) ListWBSItemIDs(ctx context.Context, periodID, employeeID, projectID string) ([]string, error) {
	query := `
		SELECT wbs_item_id FROM wbs_assignments
		WHERE period_id = $1 AND employee_id = $2 AND project_id = $3
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, periodID, employeeID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list WBS assignments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan WBS assignment: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
