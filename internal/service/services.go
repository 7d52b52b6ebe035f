package service

import (
	"database/sql"

	"eval-flow/internal/repository"
)

// Dependencies are the optional collaborators of the domain services
type Dependencies struct {
	Activity ActivityRecorder
	Cipher   CommentCipher
	Notifier RevisionNotifier
}

// Services bundles the domain services wired against PostgreSQL
type Services struct {
	Revisions   *RevisionRequestService
	Approvals   *StepApprovalService
	Submissions *SubmissionService
	Cascade     *CascadeService
}

// NewServices wires the domain services on db
func NewServices(db *sql.DB, deps Dependencies) *Services {
	stores := NewSQLStores(db)
	tx := NewSQLTxRunner(db)
	lines := repository.NewEvaluationLineRepository(db)

	revisions := NewRevisionRequestService(stores, tx, lines, deps.Activity, deps.Cipher, deps.Notifier)
	approvals := NewStepApprovalService(stores, tx, lines, revisions, deps.Activity)
	submissions := NewSubmissionService(
		repository.NewSelfEvaluationRepository(db),
		repository.NewDownwardEvaluationRepository(db),
		repository.NewWBSAssignmentRepository(db),
		lines,
		revisions,
		deps.Activity,
	)

	return &Services{
		Revisions:   revisions,
		Approvals:   approvals,
		Submissions: submissions,
		Cascade:     NewCascadeService(approvals, submissions, revisions, deps.Activity),
	}
}
