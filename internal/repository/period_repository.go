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

// PeriodRepository handles evaluation periods
type PeriodRepository struct {
	db database.DBTX
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db database.DBTX) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// Create stores a period
func (r *PeriodRepository) Create(ctx context.Context, p *models.EvaluationPeriod) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PeriodWaiting
	}

	query := `
		INSERT INTO evaluation_periods (id, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.StartDate, p.EndDate, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create evaluation period: %w", err)
	}
	return nil
}

// GetByID returns a period or nil
func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*models.EvaluationPeriod, error) {
	query := `SELECT id, name, start_date, end_date, status, created_at, updated_at FROM evaluation_periods WHERE id = $1`

	var p models.EvaluationPeriod
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation period: %w", err)
	}
	return &p, nil
}
