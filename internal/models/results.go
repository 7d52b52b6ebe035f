package models

// FailedEvaluation is one failed item of a bulk self-evaluation call
type FailedEvaluation struct {
	EvaluationID string `json:"evaluation_id"`
	WBSItemID    string `json:"wbs_item_id"`
	Reason       string `json:"reason"`
}

// SelfEvaluationOutcome describes a processed self-evaluation in a bulk result
type SelfEvaluationOutcome struct {
	EvaluationID         string `json:"evaluation_id"`
	WBSItemID            string `json:"wbs_item_id"`
	SubmittedToEvaluator bool   `json:"submitted_to_evaluator"`
	SubmittedToManager   bool   `json:"submitted_to_manager"`
}

// SelfBulkResult is returned by bulk self-evaluation submit and reset calls
type SelfBulkResult struct {
	EmployeeID           string                  `json:"employee_id"`
	PeriodID             string                  `json:"period_id"`
	Target               SelfSubmissionTarget    `json:"target"`
	SubmittedCount       int                     `json:"submitted_count"`
	SkippedCount         int                     `json:"skipped_count"`
	FailedCount          int                     `json:"failed_count"`
	TotalCount           int                     `json:"total_count"`
	CompletedEvaluations []SelfEvaluationOutcome `json:"completed_evaluations"`
	SkippedEvaluations   []SelfEvaluationOutcome `json:"skipped_evaluations"`
	FailedEvaluations    []FailedEvaluation      `json:"failed_evaluations"`
}

// FailedItem is one failed item of a bulk downward-evaluation call
type FailedItem struct {
	EvaluationID string `json:"evaluation_id"`
	Reason       string `json:"reason"`
}

// DownwardBulkResult is returned by bulk downward-evaluation submit and reset calls.
// SubmittedCount and SubmittedIDs count the items moved to the target state for
// either direction.
type DownwardBulkResult struct {
	EvaluatorID    string        `json:"evaluator_id"`
	EvaluateeID    string        `json:"evaluatee_id"`
	PeriodID       string        `json:"period_id"`
	EvaluationType EvaluatorType `json:"evaluation_type"`
	SubmittedCount int           `json:"submitted_count"`
	SkippedCount   int           `json:"skipped_count"`
	FailedCount    int           `json:"failed_count"`
	TotalCount     int           `json:"total_count"`
	SubmittedIDs   []string      `json:"submitted_ids"`
	SkippedIDs     []string      `json:"skipped_ids"`
	FailedItems    []FailedItem  `json:"failed_items"`
}

// SubmissionResult is returned by single-item submit and reset calls
type SubmissionResult struct {
	EvaluationID string `json:"evaluation_id"`
	Changed      bool   `json:"changed"`
	Version      int    `json:"version"`
	State        bool   `json:"state"`
}

// SecondaryCascadeResult is the outcome of one secondary evaluator's cascade branch
type SecondaryCascadeResult struct {
	EvaluatorID string              `json:"evaluator_id"`
	Approved    bool                `json:"approved"`
	Submission  *DownwardBulkResult `json:"submission,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// CascadeResult is returned by the cascade approval operations
type CascadeResult struct {
	PeriodID           string                   `json:"period_id"`
	EmployeeID         string                   `json:"employee_id"`
	SelfApproved       bool                     `json:"self_approved"`
	PrimaryApproved    bool                     `json:"primary_approved"`
	PrimaryEvaluatorID *string                  `json:"primary_evaluator_id,omitempty"`
	PrimarySubmission  *DownwardBulkResult      `json:"primary_submission,omitempty"`
	PrimaryError       string                   `json:"primary_error,omitempty"`
	Secondary          []SecondaryCascadeResult `json:"secondary"`
	SecondaryError     string                   `json:"secondary_error,omitempty"`
}

// AutoCompleteResult reports what an auto-complete call changed
type AutoCompleteResult struct {
	RequestID        string `json:"request_id,omitempty"`
	Completed        bool   `json:"completed"`
	RequestCompleted bool   `json:"request_completed"`
}
