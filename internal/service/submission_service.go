package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"eval-flow/internal/logger"
	"eval-flow/internal/models"
	"eval-flow/internal/repository"
)

const (
	reasonNoContent      = "no content"
	autoCompleteSelf     = "Self-evaluation resubmitted"
	autoCompleteDownward = "Downward evaluation resubmitted"
)

// SubmissionService flips the submission gates of evaluation content, one item
// at a time or in bulk
type SubmissionService struct {
	selfEvals   SelfEvaluationStore
	downward    DownwardEvaluationStore
	assignments AssignmentStore
	lines       EvaluatorLineStore
	revisions   *RevisionRequestService
	activity    ActivityRecorder
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	selfEvals SelfEvaluationStore,
	downward DownwardEvaluationStore,
	assignments AssignmentStore,
	lines EvaluatorLineStore,
	revisions *RevisionRequestService,
	activity ActivityRecorder,
) *SubmissionService {
	return &SubmissionService{
		selfEvals:   selfEvals,
		downward:    downward,
		assignments: assignments,
		lines:       lines,
		revisions:   revisions,
		activity:    activity,
	}
}

// AuthorizeSelf checks that actorID may flip the target gate of a self-evaluation.
// The evaluatee owns both gates. The manager gate is also open to the primary evaluator.
func (s *SubmissionService) AuthorizeSelf(ctx context.Context, evaluationID, actorID string, target models.SelfSubmissionTarget) error {
	eval, err := s.selfEvals.GetByID(ctx, evaluationID)
	if err != nil {
		return err
	}
	if eval == nil {
		return fmt.Errorf("self-evaluation %s: %w", evaluationID, repository.ErrNotFound)
	}
	if eval.EmployeeID == actorID {
		return nil
	}
	if target == models.TargetManager {
		primary, err := s.lines.FindPrimaryEvaluator(ctx, eval.PeriodID, eval.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to find primary evaluator: %w", err)
		}
		if primary != "" && primary == actorID {
			return nil
		}
	}
	return fmt.Errorf("self-evaluation %s: %w", evaluationID, ErrForbidden)
}

// AuthorizeDownward checks that actorID is the evaluator of a downward evaluation
func (s *SubmissionService) AuthorizeDownward(ctx context.Context, evaluationID, actorID string) error {
	eval, err := s.downward.GetByID(ctx, evaluationID)
	if err != nil {
		return err
	}
	if eval == nil {
		return fmt.Errorf("downward evaluation %s: %w", evaluationID, repository.ErrNotFound)
	}
	if eval.EvaluatorID != actorID {
		return fmt.Errorf("downward evaluation %s: %w", evaluationID, ErrForbidden)
	}
	return nil
}

// SubmitSelfToEvaluator submits one self-evaluation to the primary evaluator
func (s *SubmissionService) SubmitSelfToEvaluator(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error) {
	return s.setSelfGate(ctx, evaluationID, models.TargetEvaluator, true, by)
}

// SubmitSelfToManager forwards one self-evaluation to the manager
func (s *SubmissionService) SubmitSelfToManager(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error) {
	return s.setSelfGate(ctx, evaluationID, models.TargetManager, true, by)
}

// ResetSelf clears one gate of a self-evaluation
func (s *SubmissionService) ResetSelf(ctx context.Context, evaluationID string, target models.SelfSubmissionTarget, by string) (*models.SubmissionResult, error) {
	return s.setSelfGate(ctx, evaluationID, target, false, by)
}

func (s *SubmissionService) setSelfGate(ctx context.Context, evaluationID string, target models.SelfSubmissionTarget, submit bool, by string) (*models.SubmissionResult, error) {
	if err := requireFields("evaluation_id", evaluationID, "updated_by", by); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, invalid("target", "unknown submission target")
	}

	ctx, span := tracer.Start(ctx, "SubmissionService.SetSelfGate")
	defer span.End()

	eval, err := s.selfEvals.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("self-evaluation %s: %w", evaluationID, repository.ErrNotFound)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   eval.PeriodID,
		EmployeeID: eval.EmployeeID,
		Step:       string(models.StepSelf),
		ActorID:    by,
		Component:  "service.submission",
	})

	result := &models.SubmissionResult{EvaluationID: eval.ID, Version: eval.Version, State: eval.Submitted(target)}
	if eval.Submitted(target) == submit {
		return result, nil
	}
	if submit && !eval.HasContent() {
		return nil, invalid("evaluation_id", reasonNoContent)
	}

	updated, err := s.selfEvals.SetSubmitted(ctx, eval.ID, target, submit, eval.Version, by)
	if err != nil {
		return nil, err
	}
	result.Changed = true
	result.Version = updated.Version
	result.State = updated.Submitted(target)

	slog.InfoContext(ctx, "Self-evaluation gate changed", "target", target, "submitted", submit, "evaluation_id", eval.ID)
	if submit {
		s.autoCompleteSelf(ctx, eval.PeriodID, eval.EmployeeID, target, by)
	}
	s.recordSelf(ctx, eval.PeriodID, eval.EmployeeID, target, submit, by, 1)
	return result, nil
}

// SubmitAllSelfForEmployee submits every self-evaluation of the employee to the evaluator
func (s *SubmissionService) SubmitAllSelfForEmployee(ctx context.Context, employeeID, periodID, by string) (*models.SelfBulkResult, error) {
	return s.bulkSelf(ctx, employeeID, periodID, "", models.TargetEvaluator, true, by)
}

// SubmitAllSelfToManagerForEmployee forwards every self-evaluation of the employee to the manager
func (s *SubmissionService) SubmitAllSelfToManagerForEmployee(ctx context.Context, employeeID, periodID, by string) (*models.SelfBulkResult, error) {
	return s.bulkSelf(ctx, employeeID, periodID, "", models.TargetManager, true, by)
}

// SubmitAllSelfForProject submits the self-evaluations of one project's WBS items
func (s *SubmissionService) SubmitAllSelfForProject(ctx context.Context, employeeID, periodID, projectID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	if err := requireFields("project_id", projectID); err != nil {
		return nil, err
	}
	return s.bulkSelf(ctx, employeeID, periodID, projectID, target, true, by)
}

// ResetAllSelfForEmployee clears one gate on every self-evaluation of the employee
func (s *SubmissionService) ResetAllSelfForEmployee(ctx context.Context, employeeID, periodID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	return s.bulkSelf(ctx, employeeID, periodID, "", target, false, by)
}

// ResetAllSelfForProject clears one gate on the self-evaluations of one project's WBS items
func (s *SubmissionService) ResetAllSelfForProject(ctx context.Context, employeeID, periodID, projectID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	if err := requireFields("project_id", projectID); err != nil {
		return nil, err
	}
	return s.bulkSelf(ctx, employeeID, periodID, projectID, target, false, by)
}

func (s *SubmissionService) bulkSelf(ctx context.Context, employeeID, periodID, projectID string, target models.SelfSubmissionTarget, submit bool, by string) (*models.SelfBulkResult, error) {
	if err := requireFields("employee_id", employeeID, "period_id", periodID, "updated_by", by); err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, invalid("target", "unknown submission target")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   periodID,
		EmployeeID: employeeID,
		Step:       string(models.StepSelf),
		ActorID:    by,
		Component:  "service.submission",
	})
	ctx, span := tracer.Start(ctx, "SubmissionService.BulkSelf")
	defer span.End()

	evals, err := s.selfEvals.ListByEmployee(ctx, employeeID, periodID)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		wbs, err := s.projectWBS(ctx, periodID, employeeID, projectID)
		if err != nil {
			return nil, err
		}
		filtered := evals[:0]
		for _, e := range evals {
			if wbs[e.WBSItemID] {
				filtered = append(filtered, e)
			}
		}
		evals = filtered
	}

	result := &models.SelfBulkResult{
		EmployeeID:           employeeID,
		PeriodID:             periodID,
		Target:               target,
		TotalCount:           len(evals),
		CompletedEvaluations: []models.SelfEvaluationOutcome{},
		SkippedEvaluations:   []models.SelfEvaluationOutcome{},
		FailedEvaluations:    []models.FailedEvaluation{},
	}

	for i := range evals {
		e := &evals[i]
		if e.Submitted(target) == submit {
			result.SkippedCount++
			result.SkippedEvaluations = append(result.SkippedEvaluations, selfOutcome(e))
			continue
		}
		if submit && !e.HasContent() {
			result.FailedCount++
			result.FailedEvaluations = append(result.FailedEvaluations, models.FailedEvaluation{
				EvaluationID: e.ID,
				WBSItemID:    e.WBSItemID,
				Reason:       reasonNoContent,
			})
			continue
		}

		updated, err := s.selfEvals.SetSubmitted(ctx, e.ID, target, submit, e.Version, by)
		if err != nil {
			slog.WarnContext(ctx, "Self-evaluation gate change failed", "evaluation_id", e.ID, "error", err)
			result.FailedCount++
			result.FailedEvaluations = append(result.FailedEvaluations, models.FailedEvaluation{
				EvaluationID: e.ID,
				WBSItemID:    e.WBSItemID,
				Reason:       err.Error(),
			})
			continue
		}
		result.SubmittedCount++
		result.CompletedEvaluations = append(result.CompletedEvaluations, selfOutcome(updated))
	}

	slog.InfoContext(ctx, "Bulk self-evaluation gate change finished",
		"target", target,
		"submitted", submit,
		"changed", result.SubmittedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	if submit && result.SubmittedCount > 0 {
		s.autoCompleteSelf(ctx, periodID, employeeID, target, by)
	}
	if result.SubmittedCount > 0 {
		s.recordSelf(ctx, periodID, employeeID, target, submit, by, result.SubmittedCount)
	}
	return result, nil
}

// SubmitDownward completes one downward evaluation
func (s *SubmissionService) SubmitDownward(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error) {
	return s.setDownwardGate(ctx, evaluationID, true, by)
}

// ResetDownward reopens one downward evaluation
func (s *SubmissionService) ResetDownward(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error) {
	return s.setDownwardGate(ctx, evaluationID, false, by)
}

func (s *SubmissionService) setDownwardGate(ctx context.Context, evaluationID string, submit bool, by string) (*models.SubmissionResult, error) {
	if err := requireFields("evaluation_id", evaluationID, "updated_by", by); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "SubmissionService.SetDownwardGate")
	defer span.End()

	eval, err := s.downward.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("downward evaluation %s: %w", evaluationID, repository.ErrNotFound)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:    eval.PeriodID,
		EmployeeID:  eval.EmployeeID,
		Step:        string(eval.EvaluationType),
		EvaluatorID: eval.EvaluatorID,
		ActorID:     by,
		Component:   "service.submission",
	})

	result := &models.SubmissionResult{EvaluationID: eval.ID, Version: eval.Version, State: eval.IsCompleted}
	if eval.IsCompleted == submit {
		return result, nil
	}
	if submit && !eval.HasContent() {
		return nil, invalid("evaluation_id", reasonNoContent)
	}

	updated, err := s.downward.SetCompleted(ctx, eval.ID, submit, eval.Version, by)
	if err != nil {
		return nil, err
	}
	result.Changed = true
	result.Version = updated.Version
	result.State = updated.IsCompleted

	slog.InfoContext(ctx, "Downward evaluation gate changed", "submitted", submit, "evaluation_id", eval.ID)
	if submit {
		s.autoCompleteDownward(ctx, eval.PeriodID, eval.EmployeeID, eval.EvaluatorID, eval.EvaluationType)
	}
	s.recordDownward(ctx, eval.PeriodID, eval.EmployeeID, eval.EvaluatorID, eval.EvaluationType, submit, by, 1)
	return result, nil
}

// SubmitAllDownward completes every downward evaluation the evaluator owns for
// the evaluatee. approveAll skips the content check.
func (s *SubmissionService) SubmitAllDownward(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error) {
	return s.bulkDownward(ctx, evaluatorID, evaluateeID, periodID, "", evaluationType, true, by, approveAll)
}

// SubmitAllDownwardForProject is SubmitAllDownward limited to one project's WBS items
func (s *SubmissionService) SubmitAllDownwardForProject(ctx context.Context, evaluatorID, evaluateeID, periodID, projectID string, evaluationType models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error) {
	if err := requireFields("project_id", projectID); err != nil {
		return nil, err
	}
	return s.bulkDownward(ctx, evaluatorID, evaluateeID, periodID, projectID, evaluationType, true, by, approveAll)
}

// ResetAllDownward reopens every downward evaluation the evaluator owns for the evaluatee
func (s *SubmissionService) ResetAllDownward(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType, by string) (*models.DownwardBulkResult, error) {
	return s.bulkDownward(ctx, evaluatorID, evaluateeID, periodID, "", evaluationType, false, by, false)
}

// ResetAllDownwardForProject is ResetAllDownward limited to one project's WBS items
func (s *SubmissionService) ResetAllDownwardForProject(ctx context.Context, evaluatorID, evaluateeID, periodID, projectID string, evaluationType models.EvaluatorType, by string) (*models.DownwardBulkResult, error) {
	if err := requireFields("project_id", projectID); err != nil {
		return nil, err
	}
	return s.bulkDownward(ctx, evaluatorID, evaluateeID, periodID, projectID, evaluationType, false, by, false)
}

func (s *SubmissionService) bulkDownward(ctx context.Context, evaluatorID, evaluateeID, periodID, projectID string, evaluationType models.EvaluatorType, submit bool, by string, approveAll bool) (*models.DownwardBulkResult, error) {
	if err := requireFields("evaluator_id", evaluatorID, "employee_id", evaluateeID, "period_id", periodID, "updated_by", by); err != nil {
		return nil, err
	}
	if !evaluationType.IsValid() {
		return nil, invalid("evaluation_type", "unknown evaluation type")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:    periodID,
		EmployeeID:  evaluateeID,
		Step:        string(evaluationType),
		EvaluatorID: evaluatorID,
		ActorID:     by,
		Component:   "service.submission",
	})
	ctx, span := tracer.Start(ctx, "SubmissionService.BulkDownward")
	defer span.End()

	evals, err := s.downward.List(ctx, evaluatorID, evaluateeID, periodID, evaluationType)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		wbs, err := s.projectWBS(ctx, periodID, evaluateeID, projectID)
		if err != nil {
			return nil, err
		}
		filtered := evals[:0]
		for _, e := range evals {
			if wbs[e.WBSItemID] {
				filtered = append(filtered, e)
			}
		}
		evals = filtered
	}

	result := &models.DownwardBulkResult{
		EvaluatorID:    evaluatorID,
		EvaluateeID:    evaluateeID,
		PeriodID:       periodID,
		EvaluationType: evaluationType,
		TotalCount:     len(evals),
		SubmittedIDs:   []string{},
		SkippedIDs:     []string{},
		FailedItems:    []models.FailedItem{},
	}

	for i := range evals {
		e := &evals[i]
		if e.IsCompleted == submit {
			result.SkippedCount++
			result.SkippedIDs = append(result.SkippedIDs, e.ID)
			continue
		}
		if submit && !approveAll && !e.HasContent() {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, models.FailedItem{EvaluationID: e.ID, Reason: reasonNoContent})
			continue
		}

		if _, err := s.downward.SetCompleted(ctx, e.ID, submit, e.Version, by); err != nil {
			slog.WarnContext(ctx, "Downward evaluation gate change failed", "evaluation_id", e.ID, "error", err)
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, models.FailedItem{EvaluationID: e.ID, Reason: err.Error()})
			continue
		}
		result.SubmittedCount++
		result.SubmittedIDs = append(result.SubmittedIDs, e.ID)
	}

	slog.InfoContext(ctx, "Bulk downward evaluation gate change finished",
		"submitted", submit,
		"approve_all", approveAll,
		"changed", result.SubmittedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	if submit && result.SubmittedCount > 0 {
		s.autoCompleteDownward(ctx, periodID, evaluateeID, evaluatorID, evaluationType)
	}
	if result.SubmittedCount > 0 {
		s.recordDownward(ctx, periodID, evaluateeID, evaluatorID, evaluationType, submit, by, result.SubmittedCount)
	}
	return result, nil
}

// projectWBS returns the employee's WBS items in the project as a set
func (s *SubmissionService) projectWBS(ctx context.Context, periodID, employeeID, projectID string) (map[string]bool, error) {
	ids, err := s.assignments.ListWBSItemIDs(ctx, periodID, employeeID, projectID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("project %s for employee %s: %w", projectID, employeeID, ErrNoAssignmentFound)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// autoCompleteSelf resolves an open self-step request addressed to whoever just submitted
func (s *SubmissionService) autoCompleteSelf(ctx context.Context, periodID, employeeID string, target models.SelfSubmissionTarget, by string) {
	in := AutoCompleteInput{
		PeriodID:      periodID,
		EmployeeID:    employeeID,
		Step:          models.StepSelf,
		RecipientID:   employeeID,
		RecipientType: models.RecipientEvaluatee,
		Reason:        autoCompleteSelf,
	}
	if target == models.TargetManager {
		in.RecipientID = by
		in.RecipientType = models.RecipientPrimaryEvaluator
	}
	s.autoComplete(ctx, in)
}

func (s *SubmissionService) autoCompleteDownward(ctx context.Context, periodID, evaluateeID, evaluatorID string, evaluationType models.EvaluatorType) {
	in := AutoCompleteInput{
		PeriodID:      periodID,
		EmployeeID:    evaluateeID,
		Step:          models.StepPrimary,
		RecipientID:   evaluatorID,
		RecipientType: models.RecipientPrimaryEvaluator,
		Reason:        autoCompleteDownward,
	}
	if evaluationType == models.EvaluatorSecondary {
		in.Step = models.StepSecondary
		in.RecipientType = models.RecipientSecondaryEvaluator
	}
	s.autoComplete(ctx, in)
}

func (s *SubmissionService) autoComplete(ctx context.Context, in AutoCompleteInput) {
	if s.revisions == nil {
		return
	}
	_, err := s.revisions.AutoCompleteForRecipient(ctx, in)
	discard(ctx, sideEffect("revision_auto_complete", err))
}

func (s *SubmissionService) recordSelf(ctx context.Context, periodID, employeeID string, target models.SelfSubmissionTarget, submit bool, by string, count int) {
	action := "submitted"
	if !submit {
		action = "reset"
	}
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:     periodID,
		EmployeeID:   employeeID,
		ActivityType: models.ActivitySelfSubmission,
		Action:       action,
		Title:        fmt.Sprintf("Self-evaluations %s to %s", action, target),
		PerformedBy:  by,
		Metadata: map[string]string{
			"target": string(target),
			"count":  strconv.Itoa(count),
		},
	}))
}

func (s *SubmissionService) recordDownward(ctx context.Context, periodID, evaluateeID, evaluatorID string, evaluationType models.EvaluatorType, submit bool, by string, count int) {
	action := "submitted"
	if !submit {
		action = "reset"
	}
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:     periodID,
		EmployeeID:   evaluateeID,
		ActivityType: models.ActivityDownwardSubmit,
		Action:       action,
		Title:        fmt.Sprintf("%s downward evaluations %s", evaluationType, action),
		PerformedBy:  by,
		Metadata: map[string]string{
			"evaluation_type": string(evaluationType),
			"evaluator_id":    evaluatorID,
			"count":           strconv.Itoa(count),
		},
	}))
}

func selfOutcome(e *models.SelfEvaluation) models.SelfEvaluationOutcome {
	return models.SelfEvaluationOutcome{
		EvaluationID:         e.ID,
		WBSItemID:            e.WBSItemID,
		SubmittedToEvaluator: e.SubmittedToEvaluator,
		SubmittedToManager:   e.SubmittedToManager,
	}
}
