package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eval-flow/internal/models"
	"eval-flow/internal/repository"
	"eval-flow/internal/testutil"
)

func TestStepApprovalUpsertOverwrites(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	repo := repository.NewStepApprovalRepository(containers.DB)
	first := &models.StepApproval{
		PeriodID:        fixtures.Period.ID,
		EmployeeID:      fixtures.Evaluatee.ID,
		Step:            models.StepSelf,
		Status:          models.StatusRevisionRequested,
		RevisionComment: testutil.Ptr("add detail"),
		UpdatedBy:       fixtures.PrimaryEvaluator.ID,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	second := &models.StepApproval{
		PeriodID:   fixtures.Period.ID,
		EmployeeID: fixtures.Evaluatee.ID,
		Step:       models.StepSelf,
		Status:     models.StatusApproved,
		UpdatedBy:  fixtures.PrimaryEvaluator.ID,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected upsert to keep row %s, got %s", first.ID, second.ID)
	}

	got, err := repo.Get(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID, models.StepSelf)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if got.Status != models.StatusApproved || got.RevisionComment != nil {
		t.Errorf("Expected approved without comment, got %s %v", got.Status, got.RevisionComment)
	}

	missing, err := repo.Get(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID, models.StepCriteria)
	if err != nil || missing != nil {
		t.Errorf("Expected nil for unwritten step, got %v %v", missing, err)
	}
}

func TestFindSecondaryEvaluatorsIsDistinct(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	lines := repository.NewEvaluationLineRepository(containers.DB)
	evaluators, err := lines.FindSecondaryEvaluators(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID)
	if err != nil {
		t.Fatalf("Failed to find secondary evaluators: %v", err)
	}
	if len(evaluators) != 2 {
		t.Fatalf("Expected 2 distinct evaluators, got %v", evaluators)
	}

	primary, err := lines.FindPrimaryEvaluator(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID)
	if err != nil {
		t.Fatalf("Failed to find primary evaluator: %v", err)
	}
	if primary != fixtures.PrimaryEvaluator.ID {
		t.Errorf("Expected primary %s, got %s", fixtures.PrimaryEvaluator.ID, primary)
	}

	none, err := lines.FindPrimaryEvaluator(ctx, fixtures.Period.ID, fixtures.PrimaryEvaluator.ID)
	if err != nil || none != "" {
		t.Errorf("Expected no primary evaluator, got %q %v", none, err)
	}
}

func TestRevisionRequestLifecycle(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	repo := repository.NewRevisionRequestRepository(containers.DB)
	req := &models.RevisionRequest{
		PeriodID:    fixtures.Period.ID,
		EmployeeID:  fixtures.Evaluatee.ID,
		Step:        models.StepSecondary,
		Comment:     "needs work",
		RequestedBy: fixtures.SecondaryA.ID,
		Recipients: []models.RevisionRequestRecipient{
			{RecipientID: fixtures.SecondaryA.ID, RecipientType: models.RecipientSecondaryEvaluator},
			{RecipientID: fixtures.SecondaryB.ID, RecipientType: models.RecipientSecondaryEvaluator},
		},
	}
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	duplicate := &models.RevisionRequest{
		PeriodID:    fixtures.Period.ID,
		EmployeeID:  fixtures.Evaluatee.ID,
		Step:        models.StepSecondary,
		Comment:     "again",
		RequestedBy: fixtures.SecondaryB.ID,
	}
	if err := repo.Create(ctx, duplicate); err == nil {
		t.Error("Expected the second open request for the same step to be rejected")
	}

	open, err := repo.FindOpen(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID, models.StepSecondary)
	if err != nil {
		t.Fatalf("Failed to find open request: %v", err)
	}
	if open == nil || open.ID != req.ID || len(open.Recipients) != 2 {
		t.Fatalf("Expected open request %s with 2 recipients, got %+v", req.ID, open)
	}

	pending, err := repo.ListOpenForRecipient(ctx, fixtures.SecondaryB.ID)
	if err != nil {
		t.Fatalf("Failed to list open requests: %v", err)
	}
	if len(pending) != 1 || len(pending[0].Recipients) != 2 {
		t.Errorf("Expected one open request with recipients, got %+v", pending)
	}

	now := time.Now().UTC()
	if err := repo.MarkRecipientRead(ctx, req.ID, fixtures.SecondaryB.ID, now); err != nil {
		t.Fatalf("Failed to mark read: %v", err)
	}
	if err := repo.CompleteRecipient(ctx, req.ID, fixtures.SecondaryB.ID, testutil.Ptr("done"), now); err != nil {
		t.Fatalf("Failed to complete recipient: %v", err)
	}
	err = repo.CompleteRecipient(ctx, req.ID, fixtures.Evaluatee.ID, nil, now)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown recipient, got %v", err)
	}

	reminders, err := repo.ListOpenReminders(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Failed to list reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].RecipientID != fixtures.SecondaryA.ID || reminders[0].Email != fixtures.SecondaryA.Email {
		t.Errorf("Expected a single reminder for secondary A, got %+v", reminders)
	}

	if err := repo.MarkCompleted(ctx, req.ID, now); err != nil {
		t.Fatalf("Failed to complete request: %v", err)
	}
	open, err = repo.FindOpen(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID, models.StepSecondary)
	if err != nil || open != nil {
		t.Errorf("Expected no open request after completion, got %+v %v", open, err)
	}
	if err := repo.Create(ctx, duplicate); err != nil {
		t.Errorf("Expected a new request once the previous one is completed, got %v", err)
	}
}

func TestSetSubmittedDetectsVersionConflict(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	eval := fixtures.CreateSelfEvaluation(t, fixtures.WBSItems[0], testutil.Ptr("delivered the migration"))
	repo := repository.NewSelfEvaluationRepository(containers.DB)

	updated, err := repo.SetSubmitted(ctx, eval.ID, models.TargetEvaluator, true, eval.Version, fixtures.Evaluatee.ID)
	if err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	if !updated.SubmittedToEvaluator || updated.SubmittedToEvaluatorAt == nil || updated.SubmittedToManager {
		t.Errorf("Expected only the evaluator gate to be set, got %+v", updated)
	}
	if updated.Version != eval.Version+1 {
		t.Errorf("Expected version %d, got %d", eval.Version+1, updated.Version)
	}

	_, err = repo.SetSubmitted(ctx, eval.ID, models.TargetEvaluator, false, eval.Version, fixtures.Evaluatee.ID)
	var conflict *repository.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if conflict.ActualVersion != updated.Version {
		t.Errorf("Expected actual version %d, got %d", updated.Version, conflict.ActualVersion)
	}

	downward := fixtures.CreateDownwardEvaluation(t, fixtures.PrimaryEvaluator.ID, models.EvaluatorPrimary, fixtures.WBSItems[0], nil)
	_, err = repository.NewDownwardEvaluationRepository(containers.DB).SetCompleted(ctx, downward.ID, true, downward.Version+5, fixtures.PrimaryEvaluator.ID)
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError for downward evaluation, got %v", err)
	}
}

func TestListPeriodOverview(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	approvals := repository.NewStepApprovalRepository(containers.DB)
	if err := approvals.Upsert(ctx, &models.StepApproval{
		PeriodID:   fixtures.Period.ID,
		EmployeeID: fixtures.Evaluatee.ID,
		Step:       models.StepCriteria,
		Status:     models.StatusApproved,
		UpdatedBy:  fixtures.PrimaryEvaluator.ID,
	}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repository.NewSecondaryStepApprovalRepository(containers.DB).Upsert(ctx, &models.SecondaryStepApproval{
		PeriodID:    fixtures.Period.ID,
		EmployeeID:  fixtures.Evaluatee.ID,
		EvaluatorID: fixtures.SecondaryA.ID,
		Status:      models.StatusApproved,
		UpdatedBy:   fixtures.SecondaryA.ID,
	}); err != nil {
		t.Fatalf("Failed to upsert secondary: %v", err)
	}

	rows, err := approvals.ListPeriodOverview(ctx, fixtures.Period.ID)
	if err != nil {
		t.Fatalf("Failed to load overview: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected one employee row, got %d", len(rows))
	}
	row := rows[0]
	if row.EmployeeName != fixtures.Evaluatee.Name || row.Criteria != models.StatusApproved || row.Self != models.StatusPending {
		t.Errorf("Unexpected overview row %+v", row)
	}
	if row.SecondaryApproved != 1 || row.SecondaryTotal != 2 {
		t.Errorf("Expected 1 of 2 secondary approvals, got %d of %d", row.SecondaryApproved, row.SecondaryTotal)
	}
	if row.LastUpdatedAt == nil {
		t.Error("Expected last updated time")
	}
}

func TestActivityLogRecordAndList(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	ctx := context.Background()

	repo := repository.NewActivityLogRepository(containers.DB)
	err := repo.Record(ctx, models.ActivityLog{
		PeriodID:     fixtures.Period.ID,
		EmployeeID:   fixtures.Evaluatee.ID,
		ActivityType: models.ActivityStepApproval,
		Action:       string(models.StatusApproved),
		Title:        "Self step approved",
		PerformedBy:  fixtures.PrimaryEvaluator.ID,
		Metadata:     map[string]string{"step": "self"},
	})
	if err != nil {
		t.Fatalf("Failed to record: %v", err)
	}

	logs, err := repo.ListByEmployee(ctx, fixtures.Period.ID, fixtures.Evaluatee.ID, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(logs) != 1 || logs[0].Metadata["step"] != "self" {
		t.Errorf("Unexpected activity logs %+v", logs)
	}
}
