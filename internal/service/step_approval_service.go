package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"eval-flow/internal/logger"
	"eval-flow/internal/models"
)

// StepStatusUpdate sets the status of a criteria, self or primary step
type StepStatusUpdate struct {
	PeriodID        string
	EmployeeID      string
	Step            models.EvaluationStep
	Status          models.StepApprovalStatus
	RevisionComment *string
	UpdatedBy       string
}

// SecondaryStepStatusUpdate sets one secondary evaluator's status
type SecondaryStepStatusUpdate struct {
	PeriodID        string
	EmployeeID      string
	EvaluatorID     string
	Status          models.StepApprovalStatus
	RevisionComment *string
	UpdatedBy       string
}

// StepApprovalService records step approvals and opens revision requests on rejection
type StepApprovalService struct {
	stores    Stores
	tx        TxRunner
	lines     EvaluatorLineStore
	revisions *RevisionRequestService
	activity  ActivityRecorder
}

// NewStepApprovalService creates a new step approval service
func NewStepApprovalService(
	stores Stores,
	tx TxRunner,
	lines EvaluatorLineStore,
	revisions *RevisionRequestService,
	activity ActivityRecorder,
) *StepApprovalService {
	return &StepApprovalService{
		stores:    stores,
		tx:        tx,
		lines:     lines,
		revisions: revisions,
		activity:  activity,
	}
}

// SetStepStatus writes the status of a non-secondary step. A revision_requested
// status opens or reuses a revision request in the same transaction.
func (s *StepApprovalService) SetStepStatus(ctx context.Context, u StepStatusUpdate) (*models.StepApproval, error) {
	if err := requireFields("period_id", u.PeriodID, "employee_id", u.EmployeeID, "updated_by", u.UpdatedBy); err != nil {
		return nil, err
	}
	switch u.Step {
	case models.StepCriteria, models.StepSelf, models.StepPrimary:
	case models.StepSecondary:
		return nil, invalid("step", "secondary approvals are set per evaluator")
	default:
		return nil, invalid("step", "unknown step")
	}
	comment, err := validateStatus(u.Status, u.RevisionComment)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   u.PeriodID,
		EmployeeID: u.EmployeeID,
		Step:       string(u.Step),
		ActorID:    u.UpdatedBy,
		Component:  "service.step_approval",
	})
	ctx, span := tracer.Start(ctx, "StepApprovalService.SetStepStatus")
	defer span.End()

	var recipients []models.RevisionRecipient
	if u.Status == models.StatusRevisionRequested {
		if recipients, err = s.recipientsForStep(ctx, u.PeriodID, u.EmployeeID, u.Step); err != nil {
			return nil, err
		}
	}

	approval := &models.StepApproval{
		PeriodID:        u.PeriodID,
		EmployeeID:      u.EmployeeID,
		Step:            u.Step,
		Status:          u.Status,
		RevisionComment: comment,
		UpdatedBy:       u.UpdatedBy,
	}

	var req *models.RevisionRequest
	err = s.tx.WithTx(ctx, func(st Stores) error {
		if err := st.StepApprovals().Upsert(ctx, approval); err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}
		var err error
		req, err = s.revisions.openOrReuse(ctx, st.RevisionRequests(), CreateRevisionRequestInput{
			PeriodID:    u.PeriodID,
			EmployeeID:  u.EmployeeID,
			Step:        u.Step,
			Comment:     *comment,
			RequestedBy: u.UpdatedBy,
			Recipients:  recipients,
		}, recipientIDs(recipients))
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Step status updated", "status", u.Status)
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:          u.PeriodID,
		EmployeeID:        u.EmployeeID,
		ActivityType:      models.ActivityStepApproval,
		Action:            string(u.Status),
		Title:             fmt.Sprintf("%s step set to %s", u.Step, u.Status),
		RelatedEntityType: "step_approval",
		RelatedEntityID:   approval.ID,
		PerformedBy:       u.UpdatedBy,
		Metadata:          map[string]string{"step": string(u.Step)},
	}))
	if req != nil {
		s.revisions.afterRequested(ctx, req)
	}
	return approval, nil
}

// SetSecondaryStepStatus writes one secondary evaluator's status. A rejection
// addresses all current secondary evaluators through a single request.
func (s *StepApprovalService) SetSecondaryStepStatus(ctx context.Context, u SecondaryStepStatusUpdate) (*models.SecondaryStepApproval, error) {
	if err := requireFields("period_id", u.PeriodID, "employee_id", u.EmployeeID, "evaluator_id", u.EvaluatorID, "updated_by", u.UpdatedBy); err != nil {
		return nil, err
	}
	comment, err := validateStatus(u.Status, u.RevisionComment)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:    u.PeriodID,
		EmployeeID:  u.EmployeeID,
		Step:        string(models.StepSecondary),
		EvaluatorID: u.EvaluatorID,
		ActorID:     u.UpdatedBy,
		Component:   "service.step_approval",
	})
	ctx, span := tracer.Start(ctx, "StepApprovalService.SetSecondaryStepStatus")
	defer span.End()

	var recipients []models.RevisionRecipient
	if u.Status == models.StatusRevisionRequested {
		evaluators, err := s.FindSecondaryEvaluators(ctx, u.PeriodID, u.EmployeeID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(evaluators, u.EvaluatorID) {
			evaluators = append(evaluators, u.EvaluatorID)
		}
		for _, id := range evaluators {
			recipients = append(recipients, models.RevisionRecipient{
				RecipientID:   id,
				RecipientType: models.RecipientSecondaryEvaluator,
			})
		}
	}

	approval := &models.SecondaryStepApproval{
		PeriodID:        u.PeriodID,
		EmployeeID:      u.EmployeeID,
		EvaluatorID:     u.EvaluatorID,
		Status:          u.Status,
		RevisionComment: comment,
		UpdatedBy:       u.UpdatedBy,
	}

	var req *models.RevisionRequest
	err = s.tx.WithTx(ctx, func(st Stores) error {
		if err := st.SecondaryApprovals().Upsert(ctx, approval); err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}
		var err error
		req, err = s.revisions.openOrReuse(ctx, st.RevisionRequests(), CreateRevisionRequestInput{
			PeriodID:    u.PeriodID,
			EmployeeID:  u.EmployeeID,
			Step:        models.StepSecondary,
			Comment:     *comment,
			RequestedBy: u.UpdatedBy,
			Recipients:  recipients,
		}, []string{u.EvaluatorID})
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Secondary step status updated", "status", u.Status)
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:          u.PeriodID,
		EmployeeID:        u.EmployeeID,
		ActivityType:      models.ActivityStepApproval,
		Action:            string(u.Status),
		Title:             fmt.Sprintf("secondary step set to %s", u.Status),
		RelatedEntityType: "secondary_step_approval",
		RelatedEntityID:   approval.ID,
		PerformedBy:       u.UpdatedBy,
		Metadata: map[string]string{
			"step":         string(models.StepSecondary),
			"evaluator_id": u.EvaluatorID,
		},
	}))
	if req != nil {
		s.revisions.afterRequested(ctx, req)
	}
	return approval, nil
}

// GetStepStatus returns every step of an employee, unwritten steps as pending
func (s *StepApprovalService) GetStepStatus(ctx context.Context, periodID, employeeID string) (*models.EmployeeStepStatus, error) {
	if err := requireFields("period_id", periodID, "employee_id", employeeID); err != nil {
		return nil, err
	}

	approvals, err := s.stores.StepApprovals().ListByEmployee(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	status := &models.EmployeeStepStatus{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Criteria:   models.StatusPending,
		Self:       models.StatusPending,
		Primary:    models.StatusPending,
		Secondary:  []models.SecondaryStepStatus{},
	}
	for _, a := range approvals {
		switch a.Step {
		case models.StepCriteria:
			status.Criteria = a.Status
		case models.StepSelf:
			status.Self = a.Status
		case models.StepPrimary:
			status.Primary = a.Status
		}
	}

	primary, err := s.FindPrimaryEvaluator(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	if primary != "" {
		status.PrimaryEvaluatorID = &primary
	}

	evaluators, err := s.FindSecondaryEvaluators(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.stores.SecondaryApprovals().ListByEmployee(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	byEvaluator := make(map[string]models.SecondaryStepApproval, len(secondary))
	for _, a := range secondary {
		byEvaluator[a.EvaluatorID] = a
	}
	for _, id := range evaluators {
		entry := models.SecondaryStepStatus{EvaluatorID: id, Status: models.StatusPending}
		if a, ok := byEvaluator[id]; ok {
			entry.Status = a.Status
			entry.RevisionComment = a.RevisionComment
			entry.UpdatedAt = &a.UpdatedAt
			delete(byEvaluator, id)
		}
		status.Secondary = append(status.Secondary, entry)
	}
	// Approvals of evaluators no longer mapped stay visible
	for _, a := range secondary {
		if _, ok := byEvaluator[a.EvaluatorID]; ok {
			status.Secondary = append(status.Secondary, models.SecondaryStepStatus{
				EvaluatorID:     a.EvaluatorID,
				Status:          a.Status,
				RevisionComment: a.RevisionComment,
				UpdatedAt:       &a.UpdatedAt,
			})
		}
	}
	return status, nil
}

// FindPrimaryEvaluator returns the mapped primary evaluator or ""
func (s *StepApprovalService) FindPrimaryEvaluator(ctx context.Context, periodID, employeeID string) (string, error) {
	id, err := s.lines.FindPrimaryEvaluator(ctx, periodID, employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve primary evaluator: %w", err)
	}
	return id, nil
}

// FindSecondaryEvaluators returns the distinct mapped secondary evaluators
func (s *StepApprovalService) FindSecondaryEvaluators(ctx context.Context, periodID, employeeID string) ([]string, error) {
	ids, err := s.lines.FindSecondaryEvaluators(ctx, periodID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secondary evaluators: %w", err)
	}
	return ids, nil
}

func (s *StepApprovalService) recipientsForStep(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) ([]models.RevisionRecipient, error) {
	if step != models.StepPrimary {
		return []models.RevisionRecipient{{RecipientID: employeeID, RecipientType: models.RecipientEvaluatee}}, nil
	}

	primary, err := s.FindPrimaryEvaluator(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	if primary == "" {
		return nil, invalid("step", "no primary evaluator is mapped for the employee")
	}
	return []models.RevisionRecipient{{RecipientID: primary, RecipientType: models.RecipientPrimaryEvaluator}}, nil
}

// validateStatus returns the trimmed comment, required for revision_requested
func validateStatus(status models.StepApprovalStatus, comment *string) (*string, error) {
	if !status.IsValid() {
		return nil, invalid("status", "unknown status")
	}
	var trimmed *string
	if comment != nil {
		if c := strings.TrimSpace(*comment); c != "" {
			trimmed = &c
		}
	}
	if status == models.StatusRevisionRequested && trimmed == nil {
		return nil, invalid("revision_comment", "is required when requesting a revision")
	}
	return trimmed, nil
}

func recipientIDs(recipients []models.RevisionRecipient) []string {
	ids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.RecipientID)
	}
	return ids
}
