package handlers

import (
	"context"
	"net/http"

	"eval-flow/internal/auth"
	"eval-flow/internal/middleware"
	"eval-flow/internal/models"
	"eval-flow/internal/service"
)

// RevisionRequests manages revision requests
type RevisionRequests interface {
	CreateRequest(ctx context.Context, in service.CreateRevisionRequestInput) (*models.RevisionRequest, error)
	GetRequest(ctx context.Context, id string) (*models.RevisionRequest, error)
	ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error)
	MarkRead(ctx context.Context, requestID, recipientID string) error
	SubmitResponse(ctx context.Context, requestID, recipientID, comment string) (*models.RevisionRequest, error)
}

// CreateRevisionRequest is the body of POST /revision-requests
type CreateRevisionRequest struct {
	PeriodID   string                     `json:"period_id" validate:"required,uuid"`
	EmployeeID string                     `json:"employee_id" validate:"required,uuid"`
	Step       models.EvaluationStep      `json:"step" validate:"required,oneof=criteria self primary secondary"`
	Comment    string                     `json:"comment" validate:"required"`
	Recipients []models.RevisionRecipient `json:"recipients" validate:"required,min=1,dive"`
}

// RespondRevisionRequest is the body of POST /revision-requests/{id}/respond
type RespondRevisionRequest struct {
	Comment string `json:"comment"`
}

// RevisionRequestHandler handles revision request HTTP requests
type RevisionRequestHandler struct {
	revisions RevisionRequests
}

// NewRevisionRequestHandler creates a new revision request handler
func NewRevisionRequestHandler(revisions RevisionRequests) *RevisionRequestHandler {
	return &RevisionRequestHandler{revisions: revisions}
}

// CreateRequest opens a revision request or reuses the open one for the step
// @Summary Create revision request
// @Tags Revision Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateRevisionRequest true "Revision request"
// @Success 201 {object} models.RevisionRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /revision-requests [post]
func (h *RevisionRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	by, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateRevisionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	created, err := h.revisions.CreateRequest(r.Context(), service.CreateRevisionRequestInput{
		PeriodID:    req.PeriodID,
		EmployeeID:  req.EmployeeID,
		Step:        req.Step,
		Comment:     req.Comment,
		RequestedBy: by,
		Recipients:  req.Recipients,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusCreated, created)
}

// ListMine lists the open revision requests addressed to the caller
// @Summary List my open revision requests
// @Tags Revision Requests
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.RevisionRequest
// @Failure 401 {object} ErrorResponse
// @Router /revision-requests/me [get]
func (h *RevisionRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	requests, err := h.revisions.ListOpenForRecipient(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, requests)
}

// GetRequest returns a revision request to an admin, its requester or one of its recipients
// @Summary Get revision request
// @Tags Revision Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Revision request ID"
// @Success 200 {object} models.RevisionRequest
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /revision-requests/{id} [get]
func (h *RevisionRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}
	requestID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	req, err := h.revisions.GetRequest(r.Context(), requestID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if !middleware.HasAnyRole(id, auth.RoleAdmin) && req.RequestedBy != id.UserID && req.Recipient(id.UserID) == nil {
		respondError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		return
	}

	JSONResponse(w, http.StatusOK, req)
}

// MarkRead flags the request as read by the caller
// @Summary Mark revision request as read
// @Tags Revision Requests
// @Security BearerAuth
// @Param id path string true "Revision request ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /revision-requests/{id}/read [post]
func (h *RevisionRequestHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.revisions.MarkRead(r.Context(), requestID, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Respond records the caller's response to a revision request
// @Summary Respond to revision request
// @Description Completes the caller's part. The request completes once every recipient responded.
// @Tags Revision Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Revision request ID"
// @Param request body RespondRevisionRequest true "Response"
// @Success 200 {object} models.RevisionRequest
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /revision-requests/{id}/respond [post]
func (h *RevisionRequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req RespondRevisionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	updated, err := h.revisions.SubmitResponse(r.Context(), requestID, userID, req.Comment)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, updated)
}
