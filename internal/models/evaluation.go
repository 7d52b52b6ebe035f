package models

import (
	"strings"
	"time"
)

// PeriodStatus is the lifecycle state of an evaluation period
type PeriodStatus string

const (
	PeriodWaiting    PeriodStatus = "waiting"
	PeriodInProgress PeriodStatus = "in_progress"
	PeriodCompleted  PeriodStatus = "completed"
)

// EvaluatorType distinguishes the two downward evaluation tiers
type EvaluatorType string

const (
	EvaluatorPrimary   EvaluatorType = "primary"
	EvaluatorSecondary EvaluatorType = "secondary"
)

// IsValid reports whether t is a known evaluator type
func (t EvaluatorType) IsValid() bool {
	return t == EvaluatorPrimary || t == EvaluatorSecondary
}

// SelfSubmissionTarget selects which self-evaluation gate a call flips
type SelfSubmissionTarget string

const (
	TargetEvaluator SelfSubmissionTarget = "evaluator"
	TargetManager   SelfSubmissionTarget = "manager"
)

// IsValid reports whether t is a known submission target
func (t SelfSubmissionTarget) IsValid() bool {
	return t == TargetEvaluator || t == TargetManager
}

// EvaluationPeriod is an evaluation cycle
type EvaluationPeriod struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	StartDate time.Time    `json:"start_date" db:"start_date"`
	EndDate   *time.Time   `json:"end_date,omitempty" db:"end_date"`
	Status    PeriodStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// Employee is the locally synced identity of an SSO user
type Employee struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EvaluationLineMapping defines who evaluates whom
type EvaluationLineMapping struct {
	ID            string        `json:"id" db:"id"`
	PeriodID      string        `json:"period_id" db:"period_id"`
	EmployeeID    string        `json:"employee_id" db:"employee_id"`
	EvaluatorID   string        `json:"evaluator_id" db:"evaluator_id"`
	WBSItemID     *string       `json:"wbs_item_id,omitempty" db:"wbs_item_id"`
	EvaluatorType EvaluatorType `json:"evaluator_type" db:"evaluator_type"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// WBSAssignment assigns a WBS item of a project to an employee for a period
type WBSAssignment struct {
	ID         string    `json:"id" db:"id"`
	PeriodID   string    `json:"period_id" db:"period_id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	ProjectID  string    `json:"project_id" db:"project_id"`
	WBSItemID  string    `json:"wbs_item_id" db:"wbs_item_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SelfEvaluation is the employee's own evaluation of one WBS item
type SelfEvaluation struct {
	ID                     string     `json:"id" db:"id"`
	PeriodID               string     `json:"period_id" db:"period_id"`
	EmployeeID             string     `json:"employee_id" db:"employee_id"`
	WBSItemID              string     `json:"wbs_item_id" db:"wbs_item_id"`
	Content                *string    `json:"content,omitempty" db:"content"`
	Score                  *int       `json:"score,omitempty" db:"score"`
	SubmittedToEvaluator   bool       `json:"submitted_to_evaluator" db:"submitted_to_evaluator"`
	SubmittedToEvaluatorAt *time.Time `json:"submitted_to_evaluator_at,omitempty" db:"submitted_to_evaluator_at"`
	SubmittedToManager     bool       `json:"submitted_to_manager" db:"submitted_to_manager"`
	SubmittedToManagerAt   *time.Time `json:"submitted_to_manager_at,omitempty" db:"submitted_to_manager_at"`
	Version                int        `json:"version" db:"version"`
	UpdatedBy              *string    `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// HasContent reports whether anything was authored
func (e *SelfEvaluation) HasContent() bool {
	return hasContent(e.Content, e.Score)
}

// Submitted returns the gate selected by target
func (e *SelfEvaluation) Submitted(target SelfSubmissionTarget) bool {
	if target == TargetManager {
		return e.SubmittedToManager
	}
	return e.SubmittedToEvaluator
}

// DownwardEvaluation is an evaluator's evaluation of an evaluatee's WBS item
type DownwardEvaluation struct {
	ID             string        `json:"id" db:"id"`
	PeriodID       string        `json:"period_id" db:"period_id"`
	EmployeeID     string        `json:"employee_id" db:"employee_id"`
	EvaluatorID    string        `json:"evaluator_id" db:"evaluator_id"`
	WBSItemID      string        `json:"wbs_item_id" db:"wbs_item_id"`
	EvaluationType EvaluatorType `json:"evaluation_type" db:"evaluation_type"`
	Content        *string       `json:"content,omitempty" db:"content"`
	Score          *int          `json:"score,omitempty" db:"score"`
	IsCompleted    bool          `json:"is_completed" db:"is_completed"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	Version        int           `json:"version" db:"version"`
	UpdatedBy      *string       `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// HasContent reports whether anything was authored
func (e *DownwardEvaluation) HasContent() bool {
	return hasContent(e.Content, e.Score)
}

func hasContent(content *string, score *int) bool {
	if score != nil {
		return true
	}
	return content != nil && strings.TrimSpace(*content) != ""
}
