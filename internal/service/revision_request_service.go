package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"eval-flow/internal/logger"
	"eval-flow/internal/models"
	"eval-flow/internal/repository"
	"eval-flow/internal/telemetry"
)

var tracer = telemetry.Tracer("eval-flow/internal/service")

// CreateRevisionRequestInput describes a revision request to open or reuse
type CreateRevisionRequestInput struct {
	PeriodID    string
	EmployeeID  string
	Step        models.EvaluationStep
	Comment     string
	RequestedBy string
	Recipients  []models.RevisionRecipient
}

// AutoCompleteInput identifies the recipient whose resubmission resolves a request
type AutoCompleteInput struct {
	PeriodID      string
	EmployeeID    string
	Step          models.EvaluationStep
	RecipientID   string
	RecipientType models.RecipientType
	Reason        string
}

// RevisionRequestService manages revision requests, their recipients and completion
type RevisionRequestService struct {
	stores   Stores
	tx       TxRunner
	lines    EvaluatorLineStore
	activity ActivityRecorder
	cipher   CommentCipher
	notifier RevisionNotifier
	now      func() time.Time

	// notifications tracks mails still being sent
	notifications sync.WaitGroup
}

// NewRevisionRequestService creates a new revision request service.
// cipher and notifier may be nil.
func NewRevisionRequestService(
	stores Stores,
	tx TxRunner,
	lines EvaluatorLineStore,
	activity ActivityRecorder,
	cipher CommentCipher,
	notifier RevisionNotifier,
) *RevisionRequestService {
	return &RevisionRequestService{
		stores:   stores,
		tx:       tx,
		lines:    lines,
		activity: activity,
		cipher:   cipher,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest opens a revision request, or reuses the open one for the same step
func (s *RevisionRequestService) CreateRequest(ctx context.Context, in CreateRevisionRequestInput) (*models.RevisionRequest, error) {
	in, err := normalizeRevisionInput(in)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   in.PeriodID,
		EmployeeID: in.EmployeeID,
		Step:       string(in.Step),
		ActorID:    in.RequestedBy,
		Component:  "service.revision_request",
	})
	ctx, span := tracer.Start(ctx, "RevisionRequestService.CreateRequest")
	defer span.End()

	var req *models.RevisionRequest
	err = s.tx.WithTx(ctx, func(st Stores) error {
		var err error
		req, err = s.openOrReuse(ctx, st.RevisionRequests(), in, recipientIDs(in.Recipients))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterRequested(ctx, req)
	return req, nil
}

// openOrReuse must run inside a transaction. Recipients missing from an open
// request are added; existing ones are reopened only when listed in reopen.
func (s *RevisionRequestService) openOrReuse(ctx context.Context, store RevisionRequestStore, in CreateRevisionRequestInput, reopen []string) (*models.RevisionRequest, error) {
	comment, err := s.encrypt(ctx, in.Comment, requestAAD(in.PeriodID, in.EmployeeID, in.Step, ""))
	if err != nil {
		return nil, err
	}

	open, err := store.FindOpen(ctx, in.PeriodID, in.EmployeeID, in.Step)
	if err != nil {
		return nil, err
	}

	if open == nil {
		req := &models.RevisionRequest{
			PeriodID:    in.PeriodID,
			EmployeeID:  in.EmployeeID,
			Step:        in.Step,
			Comment:     comment,
			RequestedBy: in.RequestedBy,
			Recipients:  make([]models.RevisionRequestRecipient, 0, len(in.Recipients)),
		}
		for _, r := range in.Recipients {
			req.Recipients = append(req.Recipients, models.RevisionRequestRecipient{
				RecipientID:   r.RecipientID,
				RecipientType: r.RecipientType,
			})
		}
		if err := store.Create(ctx, req); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Revision request created", "revision_request_id", req.ID, "recipients", len(req.Recipients))
		req.Comment = in.Comment
		return req, nil
	}

	if err := store.UpdateRequest(ctx, open.ID, comment, in.RequestedBy); err != nil {
		return nil, err
	}
	for _, r := range in.Recipients {
		existing := open.Recipient(r.RecipientID)
		if existing != nil && !slices.Contains(reopen, r.RecipientID) {
			continue
		}
		rec := models.RevisionRequestRecipient{
			RevisionRequestID: open.ID,
			RecipientID:       r.RecipientID,
			RecipientType:     r.RecipientType,
		}
		if existing != nil {
			rec.ID = existing.ID
		}
		if err := store.UpsertRecipient(ctx, &rec); err != nil {
			return nil, err
		}
	}

	reloaded, err := store.GetByID(ctx, open.ID)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Open revision request reused", "revision_request_id", open.ID)
	return s.decrypted(ctx, reloaded)
}

func (s *RevisionRequestService) afterRequested(ctx context.Context, req *models.RevisionRequest) {
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:          req.PeriodID,
		EmployeeID:        req.EmployeeID,
		ActivityType:      models.ActivityRevisionRequest,
		Action:            "requested",
		Title:             fmt.Sprintf("Revision requested for %s step", req.Step),
		RelatedEntityType: "revision_request",
		RelatedEntityID:   req.ID,
		PerformedBy:       req.RequestedBy,
		Metadata: map[string]string{
			"step":       string(req.Step),
			"recipients": strconv.Itoa(len(req.Recipients)),
		},
	}))

	if s.notifier == nil {
		return
	}
	// Send email asynchronously, the request has already committed
	notice := *req
	notice.Recipients = slices.Clone(req.Recipients)
	mailCtx := context.WithoutCancel(ctx)
	s.notifications.Go(func() {
		discard(mailCtx, sideEffect("revision_notification", s.notifier.NotifyRevisionRequested(mailCtx, &notice)))
	})
}

// WaitNotifications blocks until every pending revision mail has been sent
func (s *RevisionRequestService) WaitNotifications() {
	s.notifications.Wait()
}

// SubmitResponse records a recipient's response and completes the request once
// every required recipient has responded
func (s *RevisionRequestService) SubmitResponse(ctx context.Context, requestID, recipientID, comment string) (*models.RevisionRequest, error) {
	if err := requireFields("request_id", requestID, "recipient_id", recipientID); err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestID: requestID,
		ActorID:   recipientID,
		Component: "service.revision_request",
	})
	ctx, span := tracer.Start(ctx, "RevisionRequestService.SubmitResponse")
	defer span.End()

	var result *models.RevisionRequest
	var requestCompleted bool
	err := s.tx.WithTx(ctx, func(st Stores) error {
		store := st.RevisionRequests()

		req, err := store.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("revision request %s: %w", requestID, repository.ErrNotFound)
		}
		if req.IsCompleted {
			return invalid("request_id", "revision request is already completed")
		}
		rec := req.Recipient(recipientID)
		if rec == nil {
			// a secondary evaluator mapped after the request opened may still respond
			mapped, err := s.isMappedSecondary(ctx, AutoCompleteInput{
				PeriodID:      req.PeriodID,
				EmployeeID:    req.EmployeeID,
				Step:          req.Step,
				RecipientID:   recipientID,
				RecipientType: models.RecipientSecondaryEvaluator,
			})
			if err != nil {
				return err
			}
			if !mapped {
				return fmt.Errorf("recipient %s of revision request %s: %w", recipientID, requestID, repository.ErrNotFound)
			}
		}

		stored, err := s.encryptOptional(ctx, comment, requestAAD(req.PeriodID, req.EmployeeID, req.Step, recipientID))
		if err != nil {
			return err
		}
		now := s.now()
		if rec == nil {
			added := models.RevisionRequestRecipient{
				RevisionRequestID: req.ID,
				RecipientID:       recipientID,
				RecipientType:     models.RecipientSecondaryEvaluator,
				IsCompleted:       true,
				ResponseComment:   stored,
				CompletedAt:       &now,
			}
			if err := store.UpsertRecipient(ctx, &added); err != nil {
				return err
			}
			req.Recipients = append(req.Recipients, added)
		} else {
			if err := store.CompleteRecipient(ctx, requestID, recipientID, stored, now); err != nil {
				return err
			}
			rec.IsCompleted = true
			rec.CompletedAt = &now
		}

		if requestCompleted, err = s.completeIfDone(ctx, store, req, now); err != nil {
			return err
		}

		reloaded, err := store.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		result, err = s.decrypted(ctx, reloaded)
		return err
	})
	if err != nil {
		return nil, err
	}

	action := "responded"
	if requestCompleted {
		action = "completed"
	}
	discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
		PeriodID:          result.PeriodID,
		EmployeeID:        result.EmployeeID,
		ActivityType:      models.ActivityRevisionRequest,
		Action:            action,
		Title:             fmt.Sprintf("Revision response for %s step", result.Step),
		RelatedEntityType: "revision_request",
		RelatedEntityID:   result.ID,
		PerformedBy:       recipientID,
		Metadata:          map[string]string{"step": string(result.Step)},
	}))
	return result, nil
}

// AutoCompleteForRecipient marks the recipient's part of an open request as done
// after they resubmitted. It is a no-op when nothing is open for them.
func (s *RevisionRequestService) AutoCompleteForRecipient(ctx context.Context, in AutoCompleteInput) (*models.AutoCompleteResult, error) {
	if err := requireFields("period_id", in.PeriodID, "employee_id", in.EmployeeID, "recipient_id", in.RecipientID); err != nil {
		return nil, err
	}
	if !in.Step.IsValid() {
		return nil, invalid("step", "unknown step")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PeriodID:   in.PeriodID,
		EmployeeID: in.EmployeeID,
		Step:       string(in.Step),
		ActorID:    in.RecipientID,
		Component:  "service.revision_request",
	})
	ctx, span := tracer.Start(ctx, "RevisionRequestService.AutoCompleteForRecipient")
	defer span.End()

	result := &models.AutoCompleteResult{}
	err := s.tx.WithTx(ctx, func(st Stores) error {
		store := st.RevisionRequests()

		req, err := store.FindOpen(ctx, in.PeriodID, in.EmployeeID, in.Step)
		if err != nil || req == nil {
			return err
		}
		result.RequestID = req.ID

		reason, err := s.encryptOptional(ctx, in.Reason, requestAAD(req.PeriodID, req.EmployeeID, req.Step, in.RecipientID))
		if err != nil {
			return err
		}
		now := s.now()

		rec := req.Recipient(in.RecipientID)
		switch {
		case rec == nil:
			mapped, err := s.isMappedSecondary(ctx, in)
			if err != nil || !mapped {
				return err
			}
			added := models.RevisionRequestRecipient{
				RevisionRequestID: req.ID,
				RecipientID:       in.RecipientID,
				RecipientType:     models.RecipientSecondaryEvaluator,
				IsCompleted:       true,
				ResponseComment:   reason,
				CompletedAt:       &now,
			}
			if err := store.UpsertRecipient(ctx, &added); err != nil {
				return err
			}
			req.Recipients = append(req.Recipients, added)
		case rec.IsCompleted || rec.RecipientType != in.RecipientType:
			return nil
		default:
			if err := store.CompleteRecipient(ctx, req.ID, in.RecipientID, reason, now); err != nil {
				return err
			}
			rec.IsCompleted = true
			rec.CompletedAt = &now
		}

		result.Completed = true
		result.RequestCompleted, err = s.completeIfDone(ctx, store, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Completed {
		slog.InfoContext(ctx, "Revision request recipient auto-completed",
			"revision_request_id", result.RequestID, "request_completed", result.RequestCompleted)
		discard(ctx, recordActivity(ctx, s.activity, models.ActivityLog{
			PeriodID:          in.PeriodID,
			EmployeeID:        in.EmployeeID,
			ActivityType:      models.ActivityRevisionRequest,
			Action:            "auto_completed",
			Title:             fmt.Sprintf("Revision for %s step resolved by resubmission", in.Step),
			RelatedEntityType: "revision_request",
			RelatedEntityID:   result.RequestID,
			PerformedBy:       in.RecipientID,
			Metadata: map[string]string{
				"step":              string(in.Step),
				"request_completed": strconv.FormatBool(result.RequestCompleted),
			},
		}))
	}
	return result, nil
}

func (s *RevisionRequestService) isMappedSecondary(ctx context.Context, in AutoCompleteInput) (bool, error) {
	if in.Step != models.StepSecondary || in.RecipientType != models.RecipientSecondaryEvaluator {
		return false, nil
	}
	evaluators, err := s.lines.FindSecondaryEvaluators(ctx, in.PeriodID, in.EmployeeID)
	if err != nil {
		return false, err
	}
	return slices.Contains(evaluators, in.RecipientID), nil
}

// completeIfDone closes req when its required recipients have all responded.
// A secondary request needs every currently mapped secondary evaluator.
func (s *RevisionRequestService) completeIfDone(ctx context.Context, store RevisionRequestStore, req *models.RevisionRequest, now time.Time) (bool, error) {
	done, err := s.recipientsDone(ctx, req)
	if err != nil || !done {
		return false, err
	}
	if err := store.MarkCompleted(ctx, req.ID, now); err != nil {
		return false, err
	}
	req.IsCompleted = true
	req.CompletedAt = &now
	return true, nil
}

func (s *RevisionRequestService) recipientsDone(ctx context.Context, req *models.RevisionRequest) (bool, error) {
	if req.Step == models.StepSecondary {
		evaluators, err := s.lines.FindSecondaryEvaluators(ctx, req.PeriodID, req.EmployeeID)
		if err != nil {
			return false, err
		}
		if len(evaluators) > 0 {
			for _, id := range evaluators {
				if rec := req.Recipient(id); rec == nil || !rec.IsCompleted {
					return false, nil
				}
			}
			return true, nil
		}
	}

	for _, rec := range req.Recipients {
		if !rec.IsCompleted {
			return false, nil
		}
	}
	return len(req.Recipients) > 0, nil
}

// GetRequest returns a request with decrypted comments
func (s *RevisionRequestService) GetRequest(ctx context.Context, id string) (*models.RevisionRequest, error) {
	req, err := s.stores.RevisionRequests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("revision request %s: %w", id, repository.ErrNotFound)
	}
	return s.decrypted(ctx, req)
}

// ListOpenForRecipient returns the requests still waiting for recipientID
func (s *RevisionRequestService) ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error) {
	requests, err := s.stores.RevisionRequests().ListOpenForRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if _, err := s.decrypted(ctx, &requests[i]); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// MarkRead flags a request as read by recipientID
func (s *RevisionRequestService) MarkRead(ctx context.Context, requestID, recipientID string) error {
	if err := requireFields("request_id", requestID, "recipient_id", recipientID); err != nil {
		return err
	}
	return s.stores.RevisionRequests().MarkRecipientRead(ctx, requestID, recipientID, s.now())
}

func normalizeRevisionInput(in CreateRevisionRequestInput) (CreateRevisionRequestInput, error) {
	if err := requireFields("period_id", in.PeriodID, "employee_id", in.EmployeeID, "requested_by", in.RequestedBy); err != nil {
		return in, err
	}
	if !in.Step.IsValid() {
		return in, invalid("step", "unknown step")
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if in.Comment == "" {
		return in, invalid("comment", "is required")
	}
	if len(in.Recipients) == 0 {
		return in, invalid("recipients", "at least one recipient is required")
	}

	seen := make(map[string]bool, len(in.Recipients))
	recipients := make([]models.RevisionRecipient, 0, len(in.Recipients))
	for _, r := range in.Recipients {
		if strings.TrimSpace(r.RecipientID) == "" {
			return in, invalid("recipient_id", "is required")
		}
		switch r.RecipientType {
		case models.RecipientEvaluatee, models.RecipientPrimaryEvaluator, models.RecipientSecondaryEvaluator:
		default:
			return in, invalid("recipient_type", "unknown recipient type")
		}
		if seen[r.RecipientID] {
			continue
		}
		seen[r.RecipientID] = true
		recipients = append(recipients, r)
	}
	in.Recipients = recipients
	return in, nil
}

func requestAAD(periodID, employeeID string, step models.EvaluationStep, recipientID string) map[string]string {
	aad := map[string]string{
		"period_id":   periodID,
		"employee_id": employeeID,
		"step":        string(step),
	}
	if recipientID != "" {
		aad["recipient_id"] = recipientID
	}
	return aad
}

func (s *RevisionRequestService) encrypt(ctx context.Context, plaintext string, aad map[string]string) (string, error) {
	if s.cipher == nil {
		return plaintext, nil
	}
	ciphertext, err := s.cipher.Encrypt(ctx, plaintext, aad)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt revision comment: %w", err)
	}
	return ciphertext, nil
}

func (s *RevisionRequestService) encryptOptional(ctx context.Context, plaintext string, aad map[string]string) (*string, error) {
	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return nil, nil
	}
	ciphertext, err := s.encrypt(ctx, plaintext, aad)
	if err != nil {
		return nil, err
	}
	return &ciphertext, nil
}

// decrypted replaces the stored comments of req with their plaintext in place
func (s *RevisionRequestService) decrypted(ctx context.Context, req *models.RevisionRequest) (*models.RevisionRequest, error) {
	if s.cipher == nil || req == nil {
		return req, nil
	}

	comment, err := s.cipher.Decrypt(ctx, req.Comment, requestAAD(req.PeriodID, req.EmployeeID, req.Step, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt revision comment: %w", err)
	}
	req.Comment = comment

	for i := range req.Recipients {
		rec := &req.Recipients[i]
		if rec.ResponseComment == nil {
			continue
		}
		plain, err := s.cipher.Decrypt(ctx, *rec.ResponseComment, requestAAD(req.PeriodID, req.EmployeeID, req.Step, rec.RecipientID))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt revision response: %w", err)
		}
		rec.ResponseComment = &plain
	}
	return req, nil
}
