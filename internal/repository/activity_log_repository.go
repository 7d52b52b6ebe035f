package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"eval-flow/internal/database"
	"eval-flow/internal/models"

	"github.com/google/uuid"
)

// ActivityLogRepository handles the per-employee activity timeline
type ActivityLogRepository struct {
	db database.DBTX
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db database.DBTX) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Record creates a new activity log entry
func (r *ActivityLogRepository) Record(ctx context.Context, log models.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	metadata := []byte("{}")
	if len(log.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(log.Metadata); err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (id, period_id, employee_id, activity_type, action, title, description,
			related_entity_type, related_entity_id, performed_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.PeriodID,
		log.EmployeeID,
		log.ActivityType,
		log.Action,
		log.Title,
		log.Description,
		log.RelatedEntityType,
		log.RelatedEntityID,
		log.PerformedBy,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// ListByEmployee retrieves the timeline of an employee in a period, newest first
func (r *ActivityLogRepository) ListByEmployee(ctx context.Context, periodID, employeeID string, limit, offset int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, period_id, employee_id, activity_type, action, title, description,
			related_entity_type, related_entity_id, performed_by, metadata, created_at
		FROM activity_logs
		WHERE period_id = $1 AND employee_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, periodID, employeeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var log models.ActivityLog
		var metadata []byte
		if err := rows.Scan(
			&log.ID,
			&log.PeriodID,
			&log.EmployeeID,
			&log.ActivityType,
			&log.Action,
			&log.Title,
			&log.Description,
			&log.RelatedEntityType,
			&log.RelatedEntityID,
			&log.PerformedBy,
			&metadata,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
			}
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
