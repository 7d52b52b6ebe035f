package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eval-flow/internal/database"
	"eval-flow/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RevisionRequestRepository handles revision requests and their recipients
type RevisionRequestRepository struct {
	db database.DBTX
}

// NewRevisionRequestRepository creates a new revision request repository
func NewRevisionRequestRepository(db database.DBTX) *RevisionRequestRepository {
	return &RevisionRequestRepository{db: db}
}

const revisionRequestColumns = `id, period_id, employee_id, step, comment, requested_by, is_completed, completed_at, created_at, updated_at`

const recipientColumns = `id, revision_request_id, recipient_id, recipient_type, is_read, read_at, is_completed, response_comment, completed_at, created_at`

// Create inserts a request together with its recipients
func (r *RevisionRequestRepository) Create(ctx context.Context, req *models.RevisionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	query := `
		INSERT INTO revision_requests (id, period_id, employee_id, step, comment, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		req.ID, req.PeriodID, req.EmployeeID, req.Step, req.Comment, req.RequestedBy,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create revision request: %w", err)
	}

	for i := range req.Recipients {
		req.Recipients[i].RevisionRequestID = req.ID
		if err := r.UpsertRecipient(ctx, &req.Recipients[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the request with its recipients, or nil
func (r *RevisionRequestRepository) GetByID(ctx context.Context, id string) (*models.RevisionRequest, error) {
	query := `SELECT ` + revisionRequestColumns + ` FROM revision_requests WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate is GetByID with the request row locked until the surrounding transaction ends
func (r *RevisionRequestRepository) GetForUpdate(ctx context.Context, id string) (*models.RevisionRequest, error) {
	query := `SELECT ` + revisionRequestColumns + ` FROM revision_requests WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// FindOpen returns the open request of an employee's step, or nil. The row is
// locked until the surrounding transaction ends.
func (r *RevisionRequestRepository) FindOpen(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.RevisionRequest, error) {
	query := `SELECT ` + revisionRequestColumns + `
		FROM revision_requests
		WHERE period_id = $1 AND employee_id = $2 AND step = $3 AND is_completed = FALSE
		FOR UPDATE`
	return r.getOne(ctx, query, periodID, employeeID, step)
}

func (r *RevisionRequestRepository) getOne(ctx context.Context, query string, args ...any) (*models.RevisionRequest, error) {
	req, err := scanRevisionRequest(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revision request: %w", err)
	}

	recipients, err := r.listRecipients(ctx, []string{req.ID})
	if err != nil {
		return nil, err
	}
	req.Recipients = recipients[req.ID]
	return req, nil
}

// UpdateRequest replaces comment and requester of an open request being reused
func (r *RevisionRequestRepository) UpdateRequest(ctx context.Context, id, comment, requestedBy string) error {
	query := `
		UPDATE revision_requests
		SET comment = $2, requested_by = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, comment, requestedBy)
	if err != nil {
		return fmt.Errorf("failed to update revision request: %w", err)
	}
	return expectRow(result, "revision request", id)
}

// UpsertRecipient inserts a recipient or overwrites the state of an existing one
func (r *RevisionRequestRepository) UpsertRecipient(ctx context.Context, rec *models.RevisionRequestRecipient) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO revision_request_recipients
			(id, revision_request_id, recipient_id, recipient_type, is_read, read_at, is_completed, response_comment, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (revision_request_id, recipient_id)
		DO UPDATE SET recipient_type = EXCLUDED.recipient_type,
			is_read = EXCLUDED.is_read,
			read_at = EXCLUDED.read_at,
			is_completed = EXCLUDED.is_completed,
			response_comment = EXCLUDED.response_comment,
			completed_at = EXCLUDED.completed_at
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.RevisionRequestID,
		rec.RecipientID,
		rec.RecipientType,
		rec.IsRead,
		rec.ReadAt,
		rec.IsCompleted,
		rec.ResponseComment,
		rec.CompletedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert revision request recipient: %w", err)
	}
	return nil
}

// CompleteRecipient records a recipient's response
func (r *RevisionRequestRepository) CompleteRecipient(ctx context.Context, requestID, recipientID string, comment *string, at time.Time) error {
	query := `
		UPDATE revision_request_recipients
		SET is_completed = TRUE, response_comment = $3, completed_at = $4
		WHERE revision_request_id = $1 AND recipient_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, requestID, recipientID, comment, at)
	if err != nil {
		return fmt.Errorf("failed to complete revision request recipient: %w", err)
	}
	return expectRow(result, "revision request recipient", recipientID)
}

// MarkRecipientRead sets the read flag of a recipient, keeping the first read time
func (r *RevisionRequestRepository) MarkRecipientRead(ctx context.Context, requestID, recipientID string, at time.Time) error {
	query := `
		UPDATE revision_request_recipients
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE revision_request_id = $1 AND recipient_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, requestID, recipientID, at)
	if err != nil {
		return fmt.Errorf("failed to mark revision request as read: %w", err)
	}
	return expectRow(result, "revision request recipient", recipientID)
}

// MarkCompleted closes a request
func (r *RevisionRequestRepository) MarkCompleted(ctx context.Context, requestID string, at time.Time) error {
	query := `
		UPDATE revision_requests
		SET is_completed = TRUE, completed_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND is_completed = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, requestID, at); err != nil {
		return fmt.Errorf("failed to complete revision request: %w", err)
	}
	return nil
}

// ListOpenForRecipient returns open requests that still wait for recipientID's response
func (r *RevisionRequestRepository) ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error) {
	query := `
		SELECT rr.id, rr.period_id, rr.employee_id, rr.step, rr.comment, rr.requested_by,
			rr.is_completed, rr.completed_at, rr.created_at, rr.updated_at
		FROM revision_requests rr
		JOIN revision_request_recipients rec ON rec.revision_request_id = rr.id
		WHERE rec.recipient_id = $1 AND rec.is_completed = FALSE AND rr.is_completed = FALSE
		ORDER BY rr.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open revision requests: %w", err)
	}
	defer rows.Close()

	var requests []models.RevisionRequest
	var ids []string
	for rows.Next() {
		req, err := scanRevisionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision request: %w", err)
		}
		requests = append(requests, *req)
		ids = append(ids, req.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return requests, nil
	}

	recipients, err := r.listRecipients(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Recipients = recipients[requests[i].ID]
	}
	return requests, nil
}

// ListOpenReminders returns open recipient rows of requests created before olderThan
func (r *RevisionRequestRepository) ListOpenReminders(ctx context.Context, olderThan time.Time) ([]models.OpenRevisionReminder, error) {
	query := `
		SELECT rr.id, rr.period_id, rr.employee_id, rr.step, rec.recipient_id,
			COALESCE(emp.name, ''), COALESCE(emp.email, ''), rr.created_at
		FROM revision_requests rr
		JOIN revision_request_recipients rec ON rec.revision_request_id = rr.id
		LEFT JOIN employees emp ON emp.id = rec.recipient_id
		WHERE rr.is_completed = FALSE AND rec.is_completed = FALSE AND rr.created_at < $1
		ORDER BY rr.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list revision reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.OpenRevisionReminder
	for rows.Next() {
		var rem models.OpenRevisionReminder
		if err := rows.Scan(
			&rem.RequestID,
			&rem.PeriodID,
			&rem.EmployeeID,
			&rem.Step,
			&rem.RecipientID,
			&rem.RecipientName,
			&rem.Email,
			&rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan revision reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *RevisionRequestRepository) listRecipients(ctx context.Context, requestIDs []string) (map[string][]models.RevisionRequestRecipient, error) {
	query := `SELECT ` + recipientColumns + `
		FROM revision_request_recipients
		WHERE revision_request_id = ANY($1)
		ORDER BY created_at, recipient_id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(requestIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list revision request recipients: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.RevisionRequestRecipient, len(requestIDs))
	for rows.Next() {
		var rec models.RevisionRequestRecipient
		if err := rows.Scan(
			&rec.ID,
			&rec.RevisionRequestID,
			&rec.RecipientID,
			&rec.RecipientType,
			&rec.IsRead,
			&rec.ReadAt,
			&rec.IsCompleted,
			&rec.ResponseComment,
			&rec.CompletedAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan revision request recipient: %w", err)
		}
		result[rec.RevisionRequestID] = append(result[rec.RevisionRequestID], rec)
	}
	return result, rows.Err()
}

func scanRevisionRequest(row rowScanner) (*models.RevisionRequest, error) {
	var req models.RevisionRequest
	err := row.Scan(
		&req.ID,
		&req.PeriodID,
		&req.EmployeeID,
		&req.Step,
		&req.Comment,
		&req.RequestedBy,
		&req.IsCompleted,
		&req.CompletedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func expectRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
