package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"eval-flow/internal/logger"
	"eval-flow/internal/models"
)

// CascadeService approves a step and then approves and submits every step below it.
// Each branch commits on its own; a failing branch is reported, not propagated.
type CascadeService struct {
	approvals   *StepApprovalService
	submissions *SubmissionService
	revisions   *RevisionRequestService
	activity    ActivityRecorder
}

// NewCascadeService creates a new cascade service
func NewCascadeService(
	approvals *StepApprovalService,
	submissions *SubmissionService,
	revisions *RevisionRequestService,
	activity ActivityRecorder,
) *CascadeService {
	return &CascadeService{
		approvals:   approvals,
		submissions: submissions,
		revisions:   revisions,
		activity:    activity,
	}
}

// ApproveSelfAndCascade approves the self and primary steps, submits the
// primary evaluator's evaluations and fans out to the secondary evaluators
func (s *CascadeService) ApproveSelfAndCascade(ctx context.Context, periodID, employeeID, by string) (*models.CascadeResult, error) {
	ctx = cascadeContext(ctx, periodID, employeeID, by)
	ctx, span := tracer.Start(ctx, "CascadeService.ApproveSelfAndCascade")
	defer span.End()

	if _, err := s.approve(ctx, periodID, employeeID, models.StepSelf, by); err != nil {
		return nil, err
	}
	if _, err := s.approve(ctx, periodID, employeeID, models.StepPrimary, by); err != nil {
		return nil, err
	}

	result := newCascadeResult(periodID, employeeID)
	result.SelfApproved = true
	result.PrimaryApproved = true

	s.cascadePrimary(ctx, result, by)
	s.cascadeSecondary(ctx, result, by)

	s.record(ctx, result, models.StepSelf, by)
	return result, nil
}

// ApprovePrimaryAndCascade approves the primary step and fans out to the secondary evaluators
func (s *CascadeService) ApprovePrimaryAndCascade(ctx context.Context, periodID, employeeID, by string) (*models.CascadeResult, error) {
	ctx = cascadeContext(ctx, periodID, employeeID, by)
	ctx, span := tracer.Start(ctx, "CascadeService.ApprovePrimaryAndCascade")
	defer span.End()

	if _, err := s.approve(ctx, periodID, employeeID, models.StepPrimary, by); err != nil {
		return nil, err
	}

	result := newCascadeResult(periodID, employeeID)
	result.PrimaryApproved = true

	s.cascadeSecondary(ctx, result, by)

	s.record(ctx, result, models.StepPrimary, by)
	return result, nil
}

func (s *CascadeService) approve(ctx context.Context, periodID, employeeID string, step models.EvaluationStep, by string) (*models.StepApproval, error) {
	return s.approvals.SetStepStatus(ctx, StepStatusUpdate{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Step:       step,
		Status:     models.StatusApproved,
		UpdatedBy:  by,
	})
}

func (s *CascadeService) cascadePrimary(ctx context.Context, result *models.CascadeResult, by string) {
	primary, err := s.approvals.FindPrimaryEvaluator(ctx, result.PeriodID, result.EmployeeID)
	if err != nil {
		slog.WarnContext(ctx, "Cascade could not resolve primary evaluator", "error", err)
		result.PrimaryError = err.Error()
		return
	}
	if primary == "" {
		slog.InfoContext(ctx, "No primary evaluator mapped, skipping primary submission")
		return
	}
	result.PrimaryEvaluatorID = &primary
	ctx = logger.WithLogFields(ctx, logger.LogFields{EvaluatorID: primary})

	submission, err := s.submissions.SubmitAllDownward(ctx, primary, result.EmployeeID, result.PeriodID, models.EvaluatorPrimary, by, true)
	if err != nil {
		slog.WarnContext(ctx, "Cascade primary submission failed", "error", err)
		result.PrimaryError = err.Error()
	} else {
		result.PrimarySubmission = submission
	}

	// SubmitAllDownward only auto-completes when it changed something
	if s.revisions != nil {
		_, err := s.revisions.AutoCompleteForRecipient(ctx, AutoCompleteInput{
			PeriodID:      result.PeriodID,
			EmployeeID:    result.EmployeeID,
			Step:          models.StepPrimary,
			RecipientID:   primary,
			RecipientType: models.RecipientPrimaryEvaluator,
			Reason:        "Approved by cascade",
		})
		discard(ctx, sideEffect("revision_auto_complete", err))
	}
}

func (s *CascadeService) cascadeSecondary(ctx context.Context, result *models.CascadeResult, by string) {
	evaluators, err := s.approvals.FindSecondaryEvaluators(ctx, result.PeriodID, result.EmployeeID)
	if err != nil {
		slog.WarnContext(ctx, "Cascade could not resolve secondary evaluators", "error", err)
		result.SecondaryError = err.Error()
		return
	}

	for _, evaluatorID := range evaluators {
		result.Secondary = append(result.Secondary, s.cascadeSecondaryEvaluator(ctx, result, evaluatorID, by))
	}
}

func (s *CascadeService) cascadeSecondaryEvaluator(ctx context.Context, result *models.CascadeResult, evaluatorID, by string) models.SecondaryCascadeResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EvaluatorID: evaluatorID})
	branch := models.SecondaryCascadeResult{EvaluatorID: evaluatorID}

	_, err := s.approvals.SetSecondaryStepStatus(ctx, SecondaryStepStatusUpdate{
		PeriodID:    result.PeriodID,
		EmployeeID:  result.EmployeeID,
		EvaluatorID: evaluatorID,
		Status:      models.StatusApproved,
		UpdatedBy:   by,
	})
	if err != nil {
		slog.WarnContext(ctx, "Cascade secondary approval failed", "error", err)
		branch.Error = err.Error()
		return branch
	}
	branch.Approved = true

	submission, err := s.submissions.SubmitAllDownward(ctx, evaluatorID, result.EmployeeID, result.PeriodID, models.EvaluatorSecondary, by, true)
	if err != nil {
		slog.WarnContext(ctx, "Cascade secondary submission failed", "error", err)
		branch.Error = err.Error()
		return branch
	}
	branch.Submission = submission
	return branch
}

func (s *CascadeService) record(ctx context.Context, result *models.CascadeResult, trigger models.EvaluationStep, by string) {
	failed := 0
	if result.PrimaryError != "" {
		failed++
	}
	for _, b := range result.Secondary {
		if b.Error != "" {
			failed++
		}
	}
	slog.InfoContext(ctx, "Cascade approval finished",
		"trigger", trigger,
		"secondary_evaluators", len(result.Secondary),
		"failed_branches", failed,
	)

	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:     result.PeriodID,
		EmployeeID:   result.EmployeeID,
		ActivityType: models.ActivityCascadeApproval,
		Action:       "approved",
		Title:        fmt.Sprintf("Cascade approval from %s step", trigger),
		PerformedBy:  by,
		Metadata: map[string]string{
			"trigger":              string(trigger),
			"secondary_evaluators": strconv.Itoa(len(result.Secondary)),
			"failed_branches":      strconv.Itoa(failed),
		},
	}))
}

func newCascadeResult(periodID, employeeID string) *models.CascadeResult {
	return &models.CascadeResult{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Secondary:  []models.SecondaryCascadeResult{},
	}
}

func cascadeContext(ctx context.Context, periodID, employeeID, by string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		ActorID:    by,
		Component:  "service.cascade",
	})
}
