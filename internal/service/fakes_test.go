package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"eval-flow/internal/models"
	"eval-flow/internal/repository"
)

const (
	testPeriod    = "8a0e5f4e-1c2b-4d5e-9f60-7a8b9c0d1e2f"
	testEmployee  = "b7c6d5e4-f3a2-4b1c-8d9e-0f1a2b3c4d5e"
	testPrimary   = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
	testSecondary = "d4e5f6a7-b8c9-4dae-8fb0-c1d2e3f4a5b6"
	testThird     = "e7f8a9b0-c1d2-4e3f-9a4b-5c6d7e8f9a0b"
	testAdmin     = "f0a1b2c3-d4e5-4f6a-8b7c-8d9e0f1a2b3c"
)

// memStore is an in-memory Stores and TxRunner; WithTx restores a snapshot on error
type memStore struct {
	approvals map[string]models.StepApproval
	secondary map[string]models.SecondaryStepApproval
	requests  map[string]models.RevisionRequest
	order     []string
	seq       int

	failCreateRequest error
}

func newMemStore() *memStore {
	return &memStore{
		approvals: map[string]models.StepApproval{},
		secondary: map[string]models.SecondaryStepApproval{},
		requests:  map[string]models.RevisionRequest{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) StepApprovals() StepApprovalStore { return memApprovals{m} }
func (m *memStore) SecondaryApprovals() SecondaryApprovalStore { return memSecondary{m} }
func (m *memStore) RevisionRequests() RevisionRequestStore { return memRequests{m} }

func (m *memStore) WithTx(ctx context.Context, fn func(Stores) error) error {
	approvals := cloneMap(m.approvals)
	secondary := cloneMap(m.secondary)
	requests := make(map[string]models.RevisionRequest, len(m.requests))
	for id, r := range m.requests {
		requests[id] = cloneRequest(r)
	}
	order := slices.Clone(m.order)

	if err := fn(m); err != nil {
		m.approvals, m.secondary, m.requests, m.order = approvals, secondary, requests, order
		return err
	}
	return nil
}

// openRequests returns the open requests of the test employee for step
func (m *memStore) openRequests(step models.EvaluationStep) []models.RevisionRequest {
	var open []models.RevisionRequest
	for _, id := range m.order {
		r := m.requests[id]
		if r.Step == step && !r.IsCompleted {
			open = append(open, cloneRequest(r))
		}
	}
	return open
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneRequest(r models.RevisionRequest) models.RevisionRequest {
	r.Recipients = slices.Clone(r.Recipients)
	return r
}

type memApprovals struct{ m *memStore }

func approvalKey(periodID, employeeID, step string) string {
	return periodID + "|" + employeeID + "|" + step
}

func (s memApprovals) Get(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.StepApproval, error) {
	a, ok := s.m.approvals[approvalKey(periodID, employeeID, string(step))]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s memApprovals) ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.StepApproval, error) {
	var out []models.StepApproval
	for _, a := range s.m.approvals {
		if a.PeriodID == periodID && a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s memApprovals) Upsert(ctx context.Context, a *models.StepApproval) error {
	key := approvalKey(a.PeriodID, a.EmployeeID, string(a.Step))
	if existing, ok := s.m.approvals[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = s.m.nextID("approval")
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	s.m.approvals[key] = *a
	return nil
}

type memSecondary struct{ m *memStore }

func (s memSecondary) Get(ctx context.Context, periodID, employeeID, evaluatorID string) (*models.SecondaryStepApproval, error) {
	a, ok := s.m.secondary[approvalKey(periodID, employeeID, evaluatorID)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s memSecondary) ListByEmployee(ctx context.Context, periodID, employeeID string) ([]models.SecondaryStepApproval, error) {
	var out []models.SecondaryStepApproval
	for _, a := range s.m.secondary {
		if a.PeriodID == periodID && a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(x, y models.SecondaryStepApproval) int { return strings.Compare(x.EvaluatorID, y.EvaluatorID) })
	return out, nil
}

func (s memSecondary) Upsert(ctx context.Context, a *models.SecondaryStepApproval) error {
	key := approvalKey(a.PeriodID, a.EmployeeID, a.EvaluatorID)
	if existing, ok := s.m.secondary[key]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = s.m.nextID("secondary")
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	s.m.secondary[key] = *a
	return nil
}

type memRequests struct{ m *memStore }

func (s memRequests) Create(ctx context.Context, req *models.RevisionRequest) error {
	if s.m.failCreateRequest != nil {
		return s.m.failCreateRequest
	}
	if open, _ := s.FindOpen(ctx, req.PeriodID, req.EmployeeID, req.Step); open != nil {
		return errors.New("duplicate key value violates unique constraint \"idx_revision_requests_one_open\"")
	}
	req.ID = s.m.nextID("request")
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	for i := range req.Recipients {
		req.Recipients[i].ID = s.m.nextID("recipient")
		req.Recipients[i].RevisionRequestID = req.ID
	}
	s.m.requests[req.ID] = cloneRequest(*req)
	s.m.order = append(s.m.order, req.ID)
	return nil
}

func (s memRequests) GetByID(ctx context.Context, id string) (*models.RevisionRequest, error) {
	r, ok := s.m.requests[id]
	if !ok {
		return nil, nil
	}
	r = cloneRequest(r)
	return &r, nil
}

func (s memRequests) GetForUpdate(ctx context.Context, id string) (*models.RevisionRequest, error) {
	return s.GetByID(ctx, id)
}

func (s memRequests) FindOpen(ctx context.Context, periodID, employeeID string, step models.EvaluationStep) (*models.RevisionRequest, error) {
	for _, id := range s.m.order {
		r := s.m.requests[id]
		if r.PeriodID == periodID && r.EmployeeID == employeeID && r.Step == step && !r.IsCompleted {
			r = cloneRequest(r)
			return &r, nil
		}
	}
	return nil, nil
}

func (s memRequests) UpdateRequest(ctx context.Context, id, comment, requestedBy string) error {
	r, ok := s.m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Comment = comment
	r.RequestedBy = requestedBy
	s.m.requests[id] = r
	return nil
}

func (s memRequests) UpsertRecipient(ctx context.Context, rec *models.RevisionRequestRecipient) error {
	r, ok := s.m.requests[rec.RevisionRequestID]
	if !ok {
		return repository.ErrNotFound
	}
	if existing := r.Recipient(rec.RecipientID); existing != nil {
		rec.ID = existing.ID
		*existing = *rec
	} else {
		rec.ID = s.m.nextID("recipient")
		r.Recipients = append(r.Recipients, *rec)
	}
	s.m.requests[r.ID] = r
	return nil
}

func (s memRequests) CompleteRecipient(ctx context.Context, requestID, recipientID string, comment *string, at time.Time) error {
	r, ok := s.m.requests[requestID]
	if !ok {
		return repository.ErrNotFound
	}
	rec := r.Recipient(recipientID)
	if rec == nil {
		return repository.ErrNotFound
	}
	rec.IsCompleted = true
	rec.ResponseComment = comment
	rec.CompletedAt = &at
	s.m.requests[requestID] = r
	return nil
}

func (s memRequests) MarkRecipientRead(ctx context.Context, requestID, recipientID string, at time.Time) error {
	r, ok := s.m.requests[requestID]
	if !ok {
		return repository.ErrNotFound
	}
	rec := r.Recipient(recipientID)
	if rec == nil {
		return repository.ErrNotFound
	}
	rec.IsRead = true
	rec.ReadAt = &at
	s.m.requests[requestID] = r
	return nil
}

func (s memRequests) MarkCompleted(ctx context.Context, requestID string, at time.Time) error {
	r, ok := s.m.requests[requestID]
	if !ok {
		return repository.ErrNotFound
	}
	r.IsCompleted = true
	r.CompletedAt = &at
	s.m.requests[requestID] = r
	return nil
}

func (s memRequests) ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error) {
	var out []models.RevisionRequest
	for _, id := range s.m.order {
		r := s.m.requests[id]
		if rec := r.Recipient(recipientID); rec != nil && !rec.IsCompleted && !r.IsCompleted {
			out = append(out, cloneRequest(r))
		}
	}
	return out, nil
}

type fakeLines struct {
	primary   string
	secondary []string
	err       error
}

func (f *fakeLines) FindPrimaryEvaluator(ctx context.Context, periodID, employeeID string) (string, error) {
	return f.primary, f.err
}

func (f *fakeLines) FindSecondaryEvaluators(ctx context.Context, periodID, employeeID string) ([]string, error) {
	return slices.Clone(f.secondary), f.err
}

type fakeAssignments map[string][]string

func (f fakeAssignments) ListWBSItemIDs(ctx context.Context, periodID, employeeID, projectID string) ([]string, error) {
	return f[projectID], nil
}

type fakeSelfStore struct {
	evals   []*models.SelfEvaluation
	failIDs map[string]error
}

func (f *fakeSelfStore) add(id, wbs string, content *string) *models.SelfEvaluation {
	e := &models.SelfEvaluation{ID: id, PeriodID: testPeriod, EmployeeID: testEmployee, WBSItemID: wbs, Content: content, Version: 1}
	f.evals = append(f.evals, e)
	return e
}

func (f *fakeSelfStore) GetByID(ctx context.Context, id string) (*models.SelfEvaluation, error) {
	for _, e := range f.evals {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeSelfStore) ListByEmployee(ctx context.Context, employeeID, periodID string) ([]models.SelfEvaluation, error) {
	var out []models.SelfEvaluation
	for _, e := range f.evals {
		if e.EmployeeID == employeeID && e.PeriodID == periodID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeSelfStore) SetSubmitted(ctx context.Context, id string, target models.SelfSubmissionTarget, submitted bool, expectedVersion int, updatedBy string) (*models.SelfEvaluation, error) {
	if err := f.failIDs[id]; err != nil {
		return nil, err
	}
	for _, e := range f.evals {
		if e.ID != id {
			continue
		}
		if e.Version != expectedVersion {
			return nil, &repository.ConflictError{Entity: "self-evaluation", ID: id, ExpectedVersion: expectedVersion, ActualVersion: e.Version}
		}
		if target == models.TargetManager {
			e.SubmittedToManager = submitted
		} else {
			e.SubmittedToEvaluator = submitted
		}
		e.Version++
		e.UpdatedBy = &updatedBy
		c := *e
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

type fakeDownwardStore struct {
	evals    []*models.DownwardEvaluation
	failIDs  map[string]error
	listErrs map[string]error
}

func (f *fakeDownwardStore) add(id, evaluatorID string, t models.EvaluatorType, wbs string, content *string) *models.DownwardEvaluation {
	e := &models.DownwardEvaluation{
		ID:             id,
		PeriodID:       testPeriod,
		EmployeeID:     testEmployee,
		EvaluatorID:    evaluatorID,
		WBSItemID:      wbs,
		EvaluationType: t,
		Content:        content,
		Version:        1,
	}
	f.evals = append(f.evals, e)
	return e
}

func (f *fakeDownwardStore) GetByID(ctx context.Context, id string) (*models.DownwardEvaluation, error) {
	for _, e := range f.evals {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeDownwardStore) List(ctx context.Context, evaluatorID, evaluateeID, periodID string, t models.EvaluatorType) ([]models.DownwardEvaluation, error) {
	if err := f.listErrs[evaluatorID]; err != nil {
		return nil, err
	}
	var out []models.DownwardEvaluation
	for _, e := range f.evals {
		if e.EvaluatorID == evaluatorID && e.EmployeeID == evaluateeID && e.PeriodID == periodID && e.EvaluationType == t {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeDownwardStore) SetCompleted(ctx context.Context, id string, completed bool, expectedVersion int, updatedBy string) (*models.DownwardEvaluation, error) {
	if err := f.failIDs[id]; err != nil {
		return nil, err
	}
	for _, e := range f.evals {
		if e.ID != id {
			continue
		}
		if e.Version != expectedVersion {
			return nil, &repository.ConflictError{Entity: "downward evaluation", ID: id, ExpectedVersion: expectedVersion, ActualVersion: e.Version}
		}
		e.IsCompleted = completed
		e.Version++
		e.UpdatedBy = &updatedBy
		c := *e
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

type fakeRecorder struct {
	logs []models.ActivityLog
	err  error
}

func (f *fakeRecorder) Record(ctx context.Context, log models.ActivityLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRecorder) count(activityType, action string) int {
	n := 0
	for _, l := range f.logs {
		if l.ActivityType == activityType && l.Action == action {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []models.RevisionRequest
}

func (f *fakeNotifier) NotifyRevisionRequested(ctx context.Context, req *models.RevisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, *req)
	return nil
}

// prefixCipher marks ciphertext so tests can tell it apart from plaintext
type prefixCipher struct{}

func (prefixCipher) Encrypt(ctx context.Context, plaintext string, aad map[string]string) (string, error) {
	return "enc:" + aad["step"] + ":" + plaintext, nil
}

func (prefixCipher) Decrypt(ctx context.Context, ciphertext string, aad map[string]string) (string, error) {
	prefix := "enc:" + aad["step"] + ":"
	if !strings.HasPrefix(ciphertext, prefix) {
		return "", errors.New("ciphertext bound to a different context")
	}
	return strings.TrimPrefix(ciphertext, prefix), nil
}

type harness struct {
	store       *memStore
	lines       *fakeLines
	self        *fakeSelfStore
	downward    *fakeDownwardStore
	assignments fakeAssignments
	activity    *fakeRecorder
	notifier    *fakeNotifier

	revisions   *RevisionRequestService
	approvals   *StepApprovalService
	submissions *SubmissionService
	cascade     *CascadeService
}

func newHarness() *harness {
	h := &harness{
		store:       newMemStore(),
		lines:       &fakeLines{primary: testPrimary, secondary: []string{testSecondary, testThird}},
		self:        &fakeSelfStore{failIDs: map[string]error{}},
		downward:    &fakeDownwardStore{failIDs: map[string]error{}, listErrs: map[string]error{}},
		assignments: fakeAssignments{},
		activity:    &fakeRecorder{},
		notifier:    &fakeNotifier{},
	}
	h.revisions = NewRevisionRequestService(h.store, h.store, h.lines, h.activity, prefixCipher{}, h.notifier)
	h.approvals = NewStepApprovalService(h.store, h.store, h.lines, h.revisions, h.activity)
	h.submissions = NewSubmissionService(h.self, h.downward, h.assignments, h.lines, h.revisions, h.activity)
	h.cascade = NewCascadeService(h.approvals, h.submissions, h.revisions, h.activity)
	return h
}

// notifications waits for pending mails and returns what was sent
func (h *harness) notifications() []models.RevisionRequest {
	h.revisions.WaitNotifications()
	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	return slices.Clone(h.notifier.notified)
}

func ptr[T any](v T) *T {
	return &v
}
