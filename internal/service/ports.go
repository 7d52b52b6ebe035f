package service

import (
	"context"
	"time"

	"eval-flow/internal/models"
)

// StepApprovalStore persists criteria/self/primary approvals
type StepApprovalStore interface {
	Get(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.StepApproval, error)
	ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.StepApproval, error)
	Upsert(ctx context.Context, a *models.StepApproval) error
}

// SecondaryApprovalStore persists per-evaluator secondary approvals
type SecondaryApprovalStore interface {
	Get(ctx context.Context, periodID, employeeID, evaluatorID string) (*models.SecondaryStepApproval, error)
	ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.SecondaryStepApproval, error)
	Upsert(ctx context.Context, a *models.SecondaryStepApproval) error
}

// RevisionRequestStore persists revision requests and recipients
type RevisionRequestStore interface {
	Create(ctx context.Context, req *models.RevisionRequest) error
	GetByID(ctx context.Context, id string) (*models.RevisionRequest, error)
	GetForUpdate(ctx context.Context, id string) (*models.RevisionRequest, error)
	FindOpen(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.RevisionRequest, error)
	UpdateRequest(ctx context.Context, id, comment, requestedBy string) error
	UpsertRecipient(ctx context.Context, rec *models.RevisionRequestRecipient) error
	CompleteRecipient(ctx context.Context, requestID, recipientID string, comment *string, at time.Time) error
	MarkRecipientRead(ctx context.Context, requestID, recipientID string, at time.Time) error
	MarkCompleted(ctx context.Context, requestID string, at time.Time) error
	ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error)
}

// Stores groups the stores that take part in one unit of work
type Stores interface {
	StepApprovals() StepApprovalStore
	SecondaryApprovals() SecondaryApprovalStore
	RevisionRequests() RevisionRequestStore
}

// TxRunner runs fn with stores bound to a single transaction.
// The transaction commits when fn returns nil.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Stores) error) error
}

// EvaluatorLineStore answers who evaluates whom
type EvaluatorLineStore interface {
	FindPrimaryEvaluator(ctx context.Context, periodID, employeeID string) (string, error)
	FindSecondaryEvaluators(ctx context.Context, periodID, employeeID string) ([]string, error)
}

// AssignmentStore resolves project-scoped WBS items
type AssignmentStore interface {
	ListWBSItemIDs(ctx context.Context, periodID, employeeID, projectID string) ([]string, error)
}

// SelfEvaluationStore reads self-evaluations and flips their submission gates
type SelfEvaluationStore interface {
	GetByID(ctx context.Context, id string) (*models.SelfEvaluation, error)
	ListByEmployee(ctx context.Context, employeeID, periodID string) ([]models.SelfEvaluation, error)
	SetSubmitted(ctx context.Context, id string, target models.SelfSubmissionTarget, submitted bool, expectedVersion int, updatedBy string) (*models.SelfEvaluation, error)
}

// DownwardEvaluationStore reads downward evaluations and flips their completion
type DownwardEvaluationStore interface {
	GetByID(ctx context.Context, id string) (*models.DownwardEvaluation, error)
	List(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType) ([]models.DownwardEvaluation, error)
	SetCompleted(ctx context.Context, id string, completed bool, expectedVersion int, updatedBy string) (*models.DownwardEvaluation, error)
}

// ActivityRecorder appends entries to the activity timeline
type ActivityRecorder interface {
	Record(ctx context.Context, log models.ActivityLog) error
}

// CommentCipher protects revision comments at rest. aad binds a ciphertext to its request.
type CommentCipher interface {
	Encrypt(ctx context.Context, plaintext string, aad map[string]string) (string, error)
	Decrypt(ctx context.Context, ciphertext string, aad map[string]string) (string, error)
}

// RevisionNotifier tells recipients about a new or reused revision request
type RevisionNotifier interface {
	NotifyRevisionRequested(ctx context.Context, req *models.RevisionRequest) error
}
