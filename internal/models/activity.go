package models

import (
	"time"
)

// Activity types recorded for step transitions
const (
	ActivityStepApproval    = "step_approval"
	ActivityRevisionRequest = "revision_request"
	ActivitySelfSubmission  = "self_evaluation_submission"
	ActivityDownwardSubmit  = "downward_evaluation_submission"
	ActivityCascadeApproval = "cascade_approval"
)

// ActivityLog is an entry of the per-employee activity timeline
type ActivityLog struct {
	ID                string            `json:"id" db:"id"`
	PeriodID          string            `json:"period_id" db:"period_id"`
	EmployeeID        string            `json:"employee_id" db:"employee_id"`
	ActivityType      string            `json:"activity_type" db:"activity_type"`
	Action            string            `json:"action" db:"action"`
	Title             string            `json:"title" db:"title"`
	Description       string            `json:"description,omitempty" db:"description"`
	RelatedEntityType string            `json:"related_entity_type,omitempty" db:"related_entity_type"`
	RelatedEntityID   string            `json:"related_entity_id,omitempty" db:"related_entity_id"`
	PerformedBy       string            `json:"performed_by" db:"performed_by"`
	Metadata          map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// StepApprovalExportRow is one employee row of the period approval export
type StepApprovalExportRow struct {
	EmployeeID        string             `json:"employee_id"`
	EmployeeName      string             `json:"employee_name"`
	Email             string             `json:"email"`
	Criteria          StepApprovalStatus `json:"criteria"`
	Self              StepApprovalStatus `json:"self"`
	Primary           StepApprovalStatus `json:"primary"`
	SecondaryApproved int                `json:"secondary_approved"`
	SecondaryTotal    int                `json:"secondary_total"`
	OpenRevisions     int                `json:"open_revisions"`
	LastUpdatedAt     *time.Time         `json:"last_updated_at,omitempty"`
}
