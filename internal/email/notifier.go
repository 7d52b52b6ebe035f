package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eval-flow/internal/models"
)

// EmployeeLookup resolves contact data of a recipient
type EmployeeLookup interface {
	GetByID(ctx context.Context, id string) (*models.Employee, error)
}

// RevisionNotifier emails every recipient of a revision request
type RevisionNotifier struct {
	email     *Service
	employees EmployeeLookup
}

// NewRevisionNotifier creates a notifier resolving addresses through employees
func NewRevisionNotifier(email *Service, employees EmployeeLookup) *RevisionNotifier {
	return &RevisionNotifier{email: email, employees: employees}
}

// NotifyRevisionRequested mails the open recipients of req. Recipients
// without an email address are skipped.
func (n *RevisionNotifier) NotifyRevisionRequested(ctx context.Context, req *models.RevisionRequest) error {
	var errs []error
	for _, rec := range req.Recipients {
		if rec.IsCompleted {
			continue
		}
		employee, err := n.employees.GetByID(ctx, rec.RecipientID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load recipient %s: %w", rec.RecipientID, err))
			continue
		}
		if employee == nil || employee.Email == "" {
			slog.DebugContext(ctx, "Recipient has no email address", "recipient_id", rec.RecipientID)
			continue
		}
		if err := n.email.SendRevisionRequestedEmail(ctx, employee.Email, employee.Name, string(req.Step), req.Comment, req.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
