package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"eval-flow/internal/auth"
	"eval-flow/internal/middleware"
	"eval-flow/internal/models"
	"eval-flow/internal/service"
)

// StepApprovals reads and writes step approval statuses
type StepApprovals interface {
	GetStepStatus(ctx context.Context, periodID, employeeID string) (*models.EmployeeStepStatus, error)
	SetStepStatus(ctx context.Context, u service.StepStatusUpdate) (*models.StepApproval, error)
	SetSecondaryStepStatus(ctx context.Context, u service.SecondaryStepStatusUpdate) (*models.SecondaryStepApproval, error)
}

// Cascades runs cascade approvals
type Cascades interface {
	ApproveSelfAndCascade(ctx context.Context, periodID, employeeID, by string) (*models.CascadeResult, error)
	ApprovePrimaryAndCascade(ctx context.Context, periodID, employeeID, by string) (*models.CascadeResult, error)
}

// ApprovalExporter writes the step approval workbook of a period
type ApprovalExporter interface {
	WriteTo(ctx context.Context, periodID string, w io.Writer) error
}

// StepStatusRequest is the body of the step status endpoints
type StepStatusRequest struct {
	Status          models.StepApprovalStatus `json:"status" validate:"required,oneof=pending approved revision_requested"`
	RevisionComment *string                   `json:"revision_comment,omitempty" validate:"min=1"`
}

// StepApprovalHandler handles step approval HTTP requests
type StepApprovalHandler struct {
	approvals StepApprovals
	cascades  Cascades
	exporter  ApprovalExporter
}

// NewStepApprovalHandler creates a new step approval handler
func NewStepApprovalHandler(approvals StepApprovals, cascades Cascades, exporter ApprovalExporter) *StepApprovalHandler {
	return &StepApprovalHandler{
		approvals: approvals,
		cascades:  cascades,
		exporter:  exporter,
	}
}

// GetStepStatus returns the step approval read model of an employee
// @Summary Get step status
// @Description Approval status of every step for an employee in a period. Steps without a row report pending.
// @Tags Step Approvals
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} models.EmployeeStepStatus
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/steps [get]
func (h *StepApprovalHandler) GetStepStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r)
	if !ok || id.UserID == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	ids, err := pathUUIDs(r, "periodId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	status, err := h.approvals.GetStepStatus(r.Context(), ids[0], ids[1])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !canViewSteps(id, status) {
		respondError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		return
	}

	JSONResponse(w, http.StatusOK, status)
}

// canViewSteps allows admins, the employee and the employee's evaluators
func canViewSteps(id auth.Identity, status *models.EmployeeStepStatus) bool {
	if middleware.HasAnyRole(id, auth.RoleAdmin) || id.UserID == status.EmployeeID {
		return true
	}
	if status.PrimaryEvaluatorID != nil && *status.PrimaryEvaluatorID == id.UserID {
		return true
	}
	for _, sec := range status.Secondary {
		if sec.EvaluatorID == id.UserID {
			return true
		}
	}
	return false
}

// SetStepStatus sets the status of the criteria, self or primary step
// @Summary Set step status
// @Description Approve, reset or request revision of a step. revision_requested opens or reuses a revision request.
// @Tags Step Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Param step path string true "Step" Enums(criteria, self, primary)
// @Param request body StepStatusRequest true "New status"
// @Success 200 {object} models.StepApproval
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/steps/{step} [put]
func (h *StepApprovalHandler) SetStepStatus(w http.ResponseWriter, r *http.Request) {
	by, ok := callerID(w, r)
	if !ok {
		return
	}
	ids, err := pathUUIDs(r, "periodId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req StepStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	approval, err := h.approvals.SetStepStatus(r.Context(), service.StepStatusUpdate{
		PeriodID:        ids[0],
		EmployeeID:      ids[1],
		Step:            models.EvaluationStep(r.PathValue("step")),
		Status:          req.Status,
		RevisionComment: req.RevisionComment,
		UpdatedBy:       by,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, approval)
}

// SetSecondaryStepStatus sets one secondary evaluator's step status
// @Summary Set secondary step status
// @Description Approve, reset or request revision of one secondary evaluator's step
// @Tags Step Approvals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Param evaluatorId path string true "Secondary evaluator ID"
// @Param request body StepStatusRequest true "New status"
// @Success 200 {object} models.SecondaryStepApproval
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/secondary/{evaluatorId} [put]
func (h *StepApprovalHandler) SetSecondaryStepStatus(w http.ResponseWriter, r *http.Request) {
	by, ok := callerID(w, r)
	if !ok {
		return
	}
	ids, err := pathUUIDs(r, "periodId", "employeeId", "evaluatorId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req StepStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	approval, err := h.approvals.SetSecondaryStepStatus(r.Context(), service.SecondaryStepStatusUpdate{
		PeriodID:        ids[0],
		EmployeeID:      ids[1],
		EvaluatorID:     ids[2],
		Status:          req.Status,
		RevisionComment: req.RevisionComment,
		UpdatedBy:       by,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, approval)
}

// ApproveSelfAndCascade approves the self step and cascades down
// @Summary Approve self step and cascade
// @Description Approves self and primary, submits the primary evaluator's evaluations and approves every secondary evaluator. Branch failures are reported in the result.
// @Tags Step Approvals
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} models.CascadeResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/cascade/self [post]
func (h *StepApprovalHandler) ApproveSelfAndCascade(w http.ResponseWriter, r *http.Request) {
	h.cascade(w, r, h.cascades.ApproveSelfAndCascade)
}

// ApprovePrimaryAndCascade approves the primary step and cascades down
// @Summary Approve primary step and cascade
// @Tags Step Approvals
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} models.CascadeResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/cascade/primary [post]
func (h *StepApprovalHandler) ApprovePrimaryAndCascade(w http.ResponseWriter, r *http.Request) {
	h.cascade(w, r, h.cascades.ApprovePrimaryAndCascade)
}

func (h *StepApprovalHandler) cascade(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, periodID, employeeID, by string) (*models.CascadeResult, error)) {
	by, ok := callerID(w, r)
	if !ok {
		return
	}
	ids, err := pathUUIDs(r, "periodId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	result, err := run(r.Context(), ids[0], ids[1], by)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// ExportStepApprovals streams the step approval workbook of a period
// @Summary Export step approvals
// @Description xlsx workbook with one row per employee and a summary sheet
// @Tags Step Approvals
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param periodId path string true "Period ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/step-approvals/export [get]
func (h *StepApprovalHandler) ExportStepApprovals(w http.ResponseWriter, r *http.Request) {
	periodID, err := pathUUID(r, "periodId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	// the workbook is built in memory before the first byte is written
	var buf bytes.Buffer
	if err := h.exporter.WriteTo(r.Context(), periodID, &buf); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="step-approvals-%s.xlsx"`, periodID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.WarnContext(r.Context(), "Failed to write export", "period_id", periodID, "error", err)
	}
}
