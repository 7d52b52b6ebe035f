package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eval-flow/internal/database"
	"eval-flow/internal/models"
)

// EmployeeRepository handles the locally synced SSO identities
type EmployeeRepository struct {
	db database.DBTX
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db database.DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Upsert creates or refreshes an employee from token claims
func (r *EmployeeRepository) Upsert(ctx context.Context, e *models.Employee) error {
	query := `
		INSERT INTO employees (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, e.ID, e.Name, e.Email).Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

// GetByID returns an employee or nil
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := `SELECT id, name, email, created_at, updated_at FROM employees WHERE id = $1`

	var e models.Employee
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Email, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}
