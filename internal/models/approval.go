package models

import (
	"time"
)

// EvaluationStep is one gate of the review process
type EvaluationStep string

const (
	StepCriteria  EvaluationStep = "criteria"
	StepSelf      EvaluationStep = "self"
	StepPrimary   EvaluationStep = "primary"
	StepSecondary EvaluationStep = "secondary"
)

// IsValid reports whether s is a known step, secondary included
func (s EvaluationStep) IsValid() bool {
	switch s {
	case StepCriteria, StepSelf, StepPrimary, StepSecondary:
		return true
	}
	return false
}

// StepApprovalStatus is the approval state of a step
type StepApprovalStatus string

const (
	StatusPending           StepApprovalStatus = "pending"
	StatusApproved          StepApprovalStatus = "approved"
	StatusRevisionRequested StepApprovalStatus = "revision_requested"
)

// IsValid reports whether s is a known approval status
func (s StepApprovalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRevisionRequested:
		return true
	}
	return false
}

// RecipientType identifies the role of a revision request recipient
type RecipientType string

const (
	RecipientEvaluatee          RecipientType = "evaluatee"
	RecipientPrimaryEvaluator   RecipientType = "primary_evaluator"
	RecipientSecondaryEvaluator RecipientType = "secondary_evaluator"
)

// StepApproval holds the approval status of a non-secondary step
type StepApproval struct {
	ID              string             `json:"id" db:"id"`
	PeriodID        string             `json:"period_id" db:"period_id"`
	EmployeeID      string             `json:"employee_id" db:"employee_id"`
	Step            EvaluationStep     `json:"step" db:"step"`
	Status          StepApprovalStatus `json:"status" db:"status"`
	RevisionComment *string            `json:"revision_comment,omitempty" db:"revision_comment"`
	UpdatedBy       string             `json:"updated_by" db:"updated_by"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
}

// SecondaryStepApproval holds the approval status of one secondary evaluator's step
type SecondaryStepApproval struct {
	ID              string             `json:"id" db:"id"`
	PeriodID        string             `json:"period_id" db:"period_id"`
	EmployeeID      string             `json:"employee_id" db:"employee_id"`
	EvaluatorID     string             `json:"evaluator_id" db:"evaluator_id"`
	Status          StepApprovalStatus `json:"status" db:"status"`
	RevisionComment *string            `json:"revision_comment,omitempty" db:"revision_comment"`
	UpdatedBy       string             `json:"updated_by" db:"updated_by"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
}

// SecondaryStepStatus is the per-evaluator entry of EmployeeStepStatus
type SecondaryStepStatus struct {
	EvaluatorID     string             `json:"evaluator_id"`
	Status          StepApprovalStatus `json:"status"`
	RevisionComment *string            `json:"revision_comment,omitempty"`
	UpdatedAt       *time.Time         `json:"updated_at,omitempty"`
}

// EmployeeStepStatus is the read model of all step approvals for one employee in one period
type EmployeeStepStatus struct {
	PeriodID           string                `json:"period_id"`
	EmployeeID         string                `json:"employee_id"`
	Criteria           StepApprovalStatus    `json:"criteria"`
	Self               StepApprovalStatus    `json:"self"`
	Primary            StepApprovalStatus    `json:"primary"`
	PrimaryEvaluatorID *string               `json:"primary_evaluator_id,omitempty"`
	Secondary          []SecondaryStepStatus `json:"secondary"`
}

// RevisionRequest instructs one or more recipients to revise a step
type RevisionRequest struct {
	ID          string                     `json:"id" db:"id"`
	PeriodID    string                     `json:"period_id" db:"period_id"`
	EmployeeID  string                     `json:"employee_id" db:"employee_id"`
	Step        EvaluationStep             `json:"step" db:"step"`
	Comment     string                     `json:"comment" db:"comment"`
	RequestedBy string                     `json:"requested_by" db:"requested_by"`
	IsCompleted bool                       `json:"is_completed" db:"is_completed"`
	CompletedAt *time.Time                 `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time                  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at" db:"updated_at"`
	Recipients  []RevisionRequestRecipient `json:"recipients"`
}

// Recipient returns the recipient row for recipientID, or nil
func (r *RevisionRequest) Recipient(recipientID string) *RevisionRequestRecipient {
	for i := range r.Recipients {
		if r.Recipients[i].RecipientID == recipientID {
			return &r.Recipients[i]
		}
	}
	return nil
}

// RevisionRequestRecipient is one addressee of a revision request
type RevisionRequestRecipient struct {
	ID                string        `json:"id" db:"id"`
	RevisionRequestID string        `json:"revision_request_id" db:"revision_request_id"`
	RecipientID       string        `json:"recipient_id" db:"recipient_id"`
	RecipientType     RecipientType `json:"recipient_type" db:"recipient_type"`
	IsRead            bool          `json:"is_read" db:"is_read"`
	ReadAt            *time.Time    `json:"read_at,omitempty" db:"read_at"`
	IsCompleted       bool          `json:"is_completed" db:"is_completed"`
	ResponseComment   *string       `json:"response_comment,omitempty" db:"response_comment"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}

// RevisionRecipient names a recipient when creating a request
type RevisionRecipient struct {
	RecipientID   string        `json:"recipient_id" validate:"required,uuid"`
	RecipientType RecipientType `json:"recipient_type" validate:"required,oneof=evaluatee primary_evaluator secondary_evaluator"`
}

// OpenRevisionReminder is an open recipient row joined with contact data, used for reminders
type OpenRevisionReminder struct {
	RequestID     string         `json:"request_id"`
	PeriodID      string         `json:"period_id"`
	EmployeeID    string         `json:"employee_id"`
	Step          EvaluationStep `json:"step"`
	RecipientID   string         `json:"recipient_id"`
	RecipientName string         `json:"recipient_name"`
	Email         string         `json:"email"`
	CreatedAt     time.Time      `json:"created_at"`
}
