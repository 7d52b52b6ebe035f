package handlers

import (
	"context"
	"net/http"
	"strconv"

	"eval-flow/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityLogs lists an employee's activity timeline
type ActivityLogs interface {
	ListByEmployee(ctx context.Context, periodID, employeeID string, limit, offset int) ([]models.ActivityLog, error)
}

// ActivityLogResponse is a page of the activity timeline
type ActivityLogResponse struct {
	Logs   []models.ActivityLog `json:"logs"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ActivityHandler handles activity log HTTP requests
type ActivityHandler struct {
	logs ActivityLogs
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(logs ActivityLogs) *ActivityHandler {
	return &ActivityHandler{logs: logs}
}

// ListActivityLogs returns the activity timeline of an employee, newest first
// @Summary List activity logs
// @Tags Activity
// @Security BearerAuth
// @Produce json
// @Param periodId path string true "Period ID"
// @Param employeeId path string true "Employee ID"
// @Param limit query int false "Page size" default(50) maximum(200)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} ActivityLogResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /periods/{periodId}/employees/{employeeId}/activity-logs [get]
func (h *ActivityHandler) ListActivityLogs(w http.ResponseWriter, r *http.Request) {
	ids, err := pathUUIDs(r, "periodId", "employeeId")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	limit, ok := queryInt(w, r, "limit", defaultActivityLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	logs, err := h.logs.ListByEmployee(r.Context(), ids[0], ids[1], limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, ActivityLogResponse{Logs: logs, Limit: limit, Offset: offset})
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidQuery+": "+name)
		return 0, false
	}
	return v, true
}
