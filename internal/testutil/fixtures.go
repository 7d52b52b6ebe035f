package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eval-flow/internal/models"
	"eval-flow/internal/repository"

	"github.com/google/uuid"
)

// Fixtures holds test data for one evaluatee in one period
type Fixtures struct {
	DB               *sql.DB
	Period           *models.EvaluationPeriod
	Evaluatee        *models.Employee
	PrimaryEvaluator *models.Employee
	SecondaryA       *models.Employee
	SecondaryB       *models.Employee
	ProjectID        string
	OtherProjectID   string
	// WBSItems holds two items of ProjectID followed by one of OtherProjectID
	WBSItems []string
}

// SetupFixtures creates a period with a full evaluation line
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()
	ctx := context.Background()

	f := &Fixtures{
		DB:             db,
		ProjectID:      uuid.NewString(),
		OtherProjectID: uuid.NewString(),
		WBSItems:       []string{uuid.NewString(), uuid.NewString(), uuid.NewString()},
	}

	f.Period = &models.EvaluationPeriod{
		Name:      "2026 H1",
		StartDate: time.Now().Add(-30 * 24 * time.Hour),
		Status:    models.PeriodInProgress,
	}
	if err := repository.NewPeriodRepository(db).Create(ctx, f.Period); err != nil {
		t.Fatalf("Failed to create period: %v", err)
	}

	f.Evaluatee = createEmployee(t, db, "Evaluatee", "evaluatee@test.com")
	f.PrimaryEvaluator = createEmployee(t, db, "Primary Evaluator", "primary@test.com")
	f.SecondaryA = createEmployee(t, db, "Secondary A", "secondary.a@test.com")
	f.SecondaryB = createEmployee(t, db, "Secondary B", "secondary.b@test.com")

	lines := repository.NewEvaluationLineRepository(db)
	f.mapEvaluator(t, lines, f.PrimaryEvaluator.ID, nil, models.EvaluatorPrimary)
	// Secondary mappings are per WBS item, so each evaluator appears more than once
	for i := range f.WBSItems {
		f.mapEvaluator(t, lines, f.SecondaryA.ID, &f.WBSItems[i], models.EvaluatorSecondary)
		f.mapEvaluator(t, lines, f.SecondaryB.ID, &f.WBSItems[i], models.EvaluatorSecondary)
	}

	assignments := repository.NewWBSAssignmentRepository(db)
	for i, wbs := range f.WBSItems {
		projectID := f.ProjectID
		if i == 2 {
			projectID = f.OtherProjectID
		}
		a := &models.WBSAssignment{PeriodID: f.Period.ID, EmployeeID: f.Evaluatee.ID, ProjectID: projectID, WBSItemID: wbs}
		if err := assignments.Create(ctx, a); err != nil {
			t.Fatalf("Failed to create WBS assignment: %v", err)
		}
	}

	return f
}

func (f *Fixtures) mapEvaluator(t *testing.T, lines *repository.EvaluationLineRepository, evaluatorID string, wbs *string, evaluatorType models.EvaluatorType) {
	t.Helper()
	m := &models.EvaluationLineMapping{
		PeriodID:      f.Period.ID,
		EmployeeID:    f.Evaluatee.ID,
		EvaluatorID:   evaluatorID,
		WBSItemID:     wbs,
		EvaluatorType: evaluatorType,
	}
	if err := lines.Create(context.Background(), m); err != nil {
		t.Fatalf("Failed to map %s evaluator: %v", evaluatorType, err)
	}
}

func createEmployee(t *testing.T, db *sql.DB, name, email string) *models.Employee {
	t.Helper()
	e := &models.Employee{ID: uuid.NewString(), Name: name, Email: email}
	if err := repository.NewEmployeeRepository(db).Upsert(context.Background(), e); err != nil {
		t.Fatalf("Failed to create employee %s: %v", email, err)
	}
	return e
}

// CreateSelfEvaluation stores a self-evaluation of the evaluatee for wbsItemID
func (f *Fixtures) CreateSelfEvaluation(t *testing.T, wbsItemID string, content *string) *models.SelfEvaluation {
	t.Helper()
	e := &models.SelfEvaluation{
		PeriodID:   f.Period.ID,
		EmployeeID: f.Evaluatee.ID,
		WBSItemID:  wbsItemID,
		Content:    content,
	}
	if err := repository.NewSelfEvaluationRepository(f.DB).Create(context.Background(), e); err != nil {
		t.Fatalf("Failed to create self-evaluation: %v", err)
	}
	return e
}

// CreateDownwardEvaluation stores an evaluation of the evaluatee by evaluatorID
func (f *Fixtures) CreateDownwardEvaluation(t *testing.T, evaluatorID string, evaluationType models.EvaluatorType, wbsItemID string, content *string) *models.DownwardEvaluation {
	t.Helper()
	e := &models.DownwardEvaluation{
		PeriodID:       f.Period.ID,
		EmployeeID:     f.Evaluatee.ID,
		EvaluatorID:    evaluatorID,
		WBSItemID:      wbsItemID,
		EvaluationType: evaluationType,
		Content:        content,
	}
	if err := repository.NewDownwardEvaluationRepository(f.DB).Create(context.Background(), e); err != nil {
		t.Fatalf("Failed to create downward evaluation: %v", err)
	}
	return e
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
