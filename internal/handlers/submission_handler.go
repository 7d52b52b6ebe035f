package handlers

import (
	"context"
	"net/http"
	"strconv"

	"eval-flow/internal/auth"
	"eval-flow/internal/middleware"
	"eval-flow/internal/models"
	"eval-flow/pkg/validator"
)

// Submissions flips the submission gates of self and downward evaluations
type Submissions interface {
	AuthorizeSelf(ctx context.Context, evaluationID, actorID string, target models.SelfSubmissionTarget) error
	AuthorizeDownward(ctx context.Context, evaluationID, actorID string) error

	SubmitSelfToEvaluator(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error)
	SubmitSelfToManager(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error)
	ResetSelf(ctx context.Context, evaluationID string, target models.SelfSubmissionTarget, by string) (*models.SubmissionResult, error)
	SubmitAllSelfForEmployee(ctx context.Context, employeeID, periodID, by string) (*models.SelfBulkResult, error)
	SubmitAllSelfToManagerForEmployee(ctx context.Context, employeeID, periodID, by string) (*models.SelfBulkResult, error)
	SubmitAllSelfForProject(ctx context.Context, employeeID, periodID, projectID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error)
	ResetAllSelfForEmployee(ctx context.Context, employeeID, periodID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error)
	ResetAllSelfForProject(ctx context.Context, employeeID, periodID, projectID string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error)

	SubmitDownward(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error)
	ResetDownward(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error)
	SubmitAllDownward(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error)
	SubmitAllDownwardForProject(ctx context.Context, evaluatorID, evaluateeID, periodID, projectID string, evaluationType models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error)
	ResetAllDownward(ctx context.Context, evaluatorID, evaluateeID, periodID string, evaluationType models.EvaluatorType, by string) (*models.DownwardBulkResult, error)
	ResetAllDownwardForProject(ctx context.Context, evaluatorID, evaluateeID, periodID, projectID string, evaluationType models.EvaluatorType, by string) (*models.DownwardBulkResult, error)
}

// SubmissionHandler handles self and downward evaluation submissions
type SubmissionHandler struct {
	submissions Submissions
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions Submissions) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// SelfAction submits or resets one gate of a self-evaluation
// @Summary Submit or reset a self-evaluation
// @Description Submitting an item without content fails with 400. Repeating a call is a no-op reported with changed=false.
// @Tags Self-Evaluations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Self-evaluation ID"
// @Param action path string true "Action" Enums(submit-to-evaluator, submit-to-manager, reset-to-evaluator, reset-to-manager)
// @Success 200 {object} models.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /self-evaluations/{id}/{action} [post]
func (h *SubmissionHandler) SelfAction(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r)
	if !ok || id.UserID == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	evaluationID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var target models.SelfSubmissionTarget
	submit := false
	switch r.PathValue("action") {
	case ActionSubmitToEvaluator:
		target, submit = models.TargetEvaluator, true
	case ActionSubmitToManager:
		target, submit = models.TargetManager, true
	case ActionResetToEvaluator:
		target = models.TargetEvaluator
	case ActionResetToManager:
		target = models.TargetManager
	default:
		respondError(w, http.StatusNotFound, "unknown action")
		return
	}

	ctx := r.Context()
	if !middleware.HasAnyRole(id, auth.RoleAdmin) {
		if err := h.submissions.AuthorizeSelf(ctx, evaluationID, id.UserID, target); err != nil {
			respondServiceError(w, r, err)
			return
		}
	}

	var result *models.SubmissionResult
	switch {
	case submit && target == models.TargetManager:
		result, err = h.submissions.SubmitSelfToManager(ctx, evaluationID, id.UserID)
	case submit:
		result, err = h.submissions.SubmitSelfToEvaluator(ctx, evaluationID, id.UserID)
	default:
		result, err = h.submissions.ResetSelf(ctx, evaluationID, target, id.UserID)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// SubmitAllSelf submits every self-evaluation of an employee, or of one project
// @Summary Submit all self-evaluations
// @Description Items without content are reported as failed and do not abort the batch
// @Tags Self-Evaluations
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Param target query string false "Gate" Enums(evaluator, manager) default(evaluator)
// @Param projectId query string false "Restrict to the WBS items of this project"
// @Success 200 {object} models.SelfBulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/self-evaluations/submit-all [post]
func (h *SubmissionHandler) SubmitAllSelf(w http.ResponseWriter, r *http.Request) {
	h.bulkSelf(w, r, true)
}

// ResetAllSelf resets every self-evaluation of an employee, or of one project
// @Summary Reset all self-evaluations
// @Tags Self-Evaluations
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Param target query string false "Gate" Enums(evaluator, manager) default(evaluator)
// @Param projectId query string false "Restrict to the WBS items of this project"
// @Success 200 {object} models.SelfBulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/self-evaluations/reset-all [post]
func (h *SubmissionHandler) ResetAllSelf(w http.ResponseWriter, r *http.Request) {
	h.bulkSelf(w, r, false)
}

func (h *SubmissionHandler) bulkSelf(w http.ResponseWriter, r *http.Request, submit bool) {
	ids, err := pathUUIDs(r, "periodId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	periodID, employeeID := ids[0], ids[1]

	by, ok := callerActingFor(w, r, employeeID)
	if !ok {
		return
	}

	target := models.SelfSubmissionTarget(r.URL.Query().Get("target"))
	if target == "" {
		target = models.TargetEvaluator
	}
	if !target.IsValid() {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidQuery+": target")
		return
	}
	projectID, err := optionalQueryUUID(r, "projectId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	ctx := r.Context()
	var result *models.SelfBulkResult
	switch {
	case projectID != "" && submit:
		result, err = h.submissions.SubmitAllSelfForProject(ctx, employeeID, periodID, projectID, target, by)
	case projectID != "":
		result, err = h.submissions.ResetAllSelfForProject(ctx, employeeID, periodID, projectID, target, by)
	case !submit:
		result, err = h.submissions.ResetAllSelfForEmployee(ctx, employeeID, periodID, target, by)
	case target == models.TargetManager:
		result, err = h.submissions.SubmitAllSelfToManagerForEmployee(ctx, employeeID, periodID, by)
	default:
		result, err = h.submissions.SubmitAllSelfForEmployee(ctx, employeeID, periodID, by)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// SubmitDownward marks one downward evaluation as completed
// @Summary Submit a downward evaluation
// @Tags Downward Evaluations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Downward evaluation ID"
// @Success 200 {object} models.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /downward-evaluations/{id}/submit [post]
func (h *SubmissionHandler) SubmitDownward(w http.ResponseWriter, r *http.Request) {
	h.singleDownward(w, r, h.submissions.SubmitDownward)
}

// ResetDownward reopens one downward evaluation
// @Summary Reset a downward evaluation
// @Tags Downward Evaluations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Downward evaluation ID"
// @Success 200 {object} models.SubmissionResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /downward-evaluations/{id}/reset [post]
func (h *SubmissionHandler) ResetDownward(w http.ResponseWriter, r *http.Request) {
	h.singleDownward(w, r, h.submissions.ResetDownward)
}

func (h *SubmissionHandler) singleDownward(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, evaluationID, by string) (*models.SubmissionResult, error)) {
	id, ok := middleware.GetIdentity(r)
	if !ok || id.UserID == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	evaluationID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	// only the evaluator, or an admin, may change a downward evaluation
	if !middleware.HasAnyRole(id, auth.RoleAdmin) {
		if err := h.submissions.AuthorizeDownward(r.Context(), evaluationID, id.UserID); err != nil {
			respondServiceError(w, r, err)
			return
		}
	}

	result, err := run(r.Context(), evaluationID, id.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// SubmitAllDownward submits an evaluator's evaluations of one evaluatee
// @Summary Submit all downward evaluations
// @Description approveAll also submits items without content
// @Tags Downward Evaluations
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param evaluatorId path string true "Evaluator ID"
// @Param employeeId path string true "Evaluatee ID"
// @Param type path string true "Evaluation type" Enums(primary, secondary)
// @Param projectId query string false "Restrict to the WBS items of this project"
// @Param approveAll query bool false "Submit items without content too"
// @Success 200 {object} models.DownwardBulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/submit-all [post]
func (h *SubmissionHandler) SubmitAllDownward(w http.ResponseWriter, r *http.Request) {
	h.bulkDownward(w, r, true)
}

// ResetAllDownward reopens an evaluator's evaluations of one evaluatee
// @Summary Reset all downward evaluations
// @Tags Downward Evaluations
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param evaluatorId path string true "Evaluator ID"
// @Param employeeId path string true "Evaluatee ID"
// @Param type path string true "Evaluation type" Enums(primary, secondary)
// @Param projectId query string false "Restrict to the WBS items of this project"
// @Success 200 {object} models.DownwardBulkResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/reset-all [post]
func (h *SubmissionHandler) ResetAllDownward(w http.ResponseWriter, r *http.Request) {
	h.bulkDownward(w, r, false)
}

func (h *SubmissionHandler) bulkDownward(w http.ResponseWriter, r *http.Request, submit bool) {
	ids, err := pathUUIDs(r, "periodId", "evaluatorId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	periodID, evaluatorID, evaluateeID := ids[0], ids[1], ids[2]

	by, ok := callerActingFor(w, r, evaluatorID)
	if !ok {
		return
	}

	evaluationType := models.EvaluatorType(r.PathValue("type"))
	if !evaluationType.IsValid() {
		respondError(w, http.StatusBadRequest, "type must be primary or secondary")
		return
	}
	projectID, err := optionalQueryUUID(r, "projectId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	approveAll := false
	if v := r.URL.Query().Get("approveAll"); v != "" {
		if approveAll, err = strconv.ParseBool(v); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidQuery+": approveAll")
			return
		}
	}

	ctx := r.Context()
	var result *models.DownwardBulkResult
	switch {
	case submit && projectID != "":
		result, err = h.submissions.SubmitAllDownwardForProject(ctx, evaluatorID, evaluateeID, periodID, projectID, evaluationType, by, approveAll)
	case submit:
		result, err = h.submissions.SubmitAllDownward(ctx, evaluatorID, evaluateeID, periodID, evaluationType, by, approveAll)
	case projectID != "":
		result, err = h.submissions.ResetAllDownwardForProject(ctx, evaluatorID, evaluateeID, periodID, projectID, evaluationType, by)
	default:
		result, err = h.submissions.ResetAllDownward(ctx, evaluatorID, evaluateeID, periodID, evaluationType, by)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// callerActingFor returns the caller when they are ownerID or an admin, otherwise writes 403
func callerActingFor(w http.ResponseWriter, r *http.Request, ownerID string) (string, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok || id.UserID == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return "", false
	}
	if id.UserID != ownerID && !middleware.HasAnyRole(id, auth.RoleAdmin) {
		respondError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		return "", false
	}
	return id.UserID, true
}

func optionalQueryUUID(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", nil
	}
	if err := validator.ValidateUUID(name, value); err != nil {
		return "", err
	}
	return value, nil
}
