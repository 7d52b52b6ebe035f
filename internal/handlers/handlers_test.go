package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eval-flow/internal/auth"
	"eval-flow/internal/middleware"
	"eval-flow/internal/models"
	"eval-flow/internal/repository"
	"eval-flow/internal/service"
	"eval-flow/internal/testutil"
)

const (
	periodID    = "7c0e9f43-0a64-4d1b-8f7e-5b0d3f9a2c10"
	employeeID  = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	evaluatorID = "9f8e7d6c-5b4a-4c3d-9e1f-0a1b2c3d4e5f"
	requestID   = "4b3c2d1e-0f9a-4b8c-8d7e-6f5a4b3c2d1e"
	evalID      = "2c4e6a8b-1d3f-4e5a-9b7c-0d2e4f6a8b1c"
	projectID   = "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b"
)

// fakeServices records the calls the handlers make
type fakeServices struct {
	calls []string
	err   error

	request *models.RevisionRequest
	logs    []models.ActivityLog
}

func (f *fakeServices) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeServices) lastCall() string {
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeServices) GetStepStatus(ctx context.Context, p, e string) (*models.EmployeeStepStatus, error) {
	f.record("GetStepStatus %s %s", p, e)
	if f.err != nil {
		return nil, f.err
	}
	primary := evaluatorID
	return &models.EmployeeStepStatus{PeriodID: p, EmployeeID: e, PrimaryEvaluatorID: &primary, Criteria: models.StatusPending, Self: models.StatusApproved, Primary: models.StatusPending}, nil
}

func (f *fakeServices) SetStepStatus(ctx context.Context, u service.StepStatusUpdate) (*models.StepApproval, error) {
	f.record("SetStepStatus %s %s by %s", u.Step, u.Status, u.UpdatedBy)
	if f.err != nil {
		return nil, f.err
	}
	return &models.StepApproval{PeriodID: u.PeriodID, EmployeeID: u.EmployeeID, Step: u.Step, Status: u.Status, RevisionComment: u.RevisionComment, UpdatedBy: u.UpdatedBy}, nil
}

func (f *fakeServices) SetSecondaryStepStatus(ctx context.Context, u service.SecondaryStepStatusUpdate) (*models.SecondaryStepApproval, error) {
	f.record("SetSecondaryStepStatus %s %s", u.EvaluatorID, u.Status)
	if f.err != nil {
		return nil, f.err
	}
	return &models.SecondaryStepApproval{EvaluatorID: u.EvaluatorID, Status: u.Status}, nil
}

func (f *fakeServices) ApproveSelfAndCascade(ctx context.Context, p, e, by string) (*models.CascadeResult, error) {
	f.record("ApproveSelfAndCascade by %s", by)
	return &models.CascadeResult{PeriodID: p, EmployeeID: e, SelfApproved: true, PrimaryApproved: true}, f.err
}

func (f *fakeServices) ApprovePrimaryAndCascade(ctx context.Context, p, e, by string) (*models.CascadeResult, error) {
	f.record("ApprovePrimaryAndCascade by %s", by)
	return &models.CascadeResult{PeriodID: p, EmployeeID: e, PrimaryApproved: true}, f.err
}

func (f *fakeServices) WriteTo(ctx context.Context, p string, w io.Writer) error {
	f.record("Export %s", p)
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("xlsx"))
	return err
}

func (f *fakeServices) CreateRequest(ctx context.Context, in service.CreateRevisionRequestInput) (*models.RevisionRequest, error) {
	f.record("CreateRequest %s %d by %s", in.Step, len(in.Recipients), in.RequestedBy)
	if f.err != nil {
		return nil, f.err
	}
	return &models.RevisionRequest{ID: requestID, Step: in.Step, Comment: in.Comment, RequestedBy: in.RequestedBy}, nil
}

func (f *fakeServices) GetRequest(ctx context.Context, id string) (*models.RevisionRequest, error) {
	f.record("GetRequest %s", id)
	if f.err != nil {
		return nil, f.err
	}
	return f.request, nil
}

func (f *fakeServices) ListOpenForRecipient(ctx context.Context, recipientID string) ([]models.RevisionRequest, error) {
	f.record("ListOpenForRecipient %s", recipientID)
	return nil, f.err
}

func (f *fakeServices) MarkRead(ctx context.Context, id, recipientID string) error {
	f.record("MarkRead %s %s", id, recipientID)
	return f.err
}

func (f *fakeServices) SubmitResponse(ctx context.Context, id, recipientID, comment string) (*models.RevisionRequest, error) {
	f.record("SubmitResponse %s %s %q", id, recipientID, comment)
	if f.err != nil {
		return nil, f.err
	}
	return &models.RevisionRequest{ID: id}, nil
}

// AuthorizeSelf lets the employee through; the real rule is covered in the service tests
func (f *fakeServices) AuthorizeSelf(ctx context.Context, id, actor string, target models.SelfSubmissionTarget) error {
	f.record("AuthorizeSelf %s %s", id, actor)
	if actor != employeeID {
		return fmt.Errorf("self-evaluation %s: %w", id, service.ErrForbidden)
	}
	return nil
}

func (f *fakeServices) AuthorizeDownward(ctx context.Context, id, actor string) error {
	f.record("AuthorizeDownward %s %s", id, actor)
	if actor != evaluatorID {
		return fmt.Errorf("downward evaluation %s: %w", id, service.ErrForbidden)
	}
	return nil
}

func (f *fakeServices) selfResult(id string) (*models.SubmissionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SubmissionResult{EvaluationID: id, Changed: true, State: true}, nil
}

func (f *fakeServices) selfBulk() (*models.SelfBulkResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SelfBulkResult{EmployeeID: employeeID, PeriodID: periodID}, nil
}

func (f *fakeServices) downwardBulk() (*models.DownwardBulkResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.DownwardBulkResult{EvaluatorID: evaluatorID, EvaluateeID: employeeID}, nil
}

func (f *fakeServices) SubmitSelfToEvaluator(ctx context.Context, id, by string) (*models.SubmissionResult, error) {
	f.record("SubmitSelfToEvaluator %s", id)
	return f.selfResult(id)
}

func (f *fakeServices) SubmitSelfToManager(ctx context.Context, id, by string) (*models.SubmissionResult, error) {
	f.record("SubmitSelfToManager %s", id)
	return f.selfResult(id)
}

func (f *fakeServices) ResetSelf(ctx context.Context, id string, target models.SelfSubmissionTarget, by string) (*models.SubmissionResult, error) {
	f.record("ResetSelf %s %s", id, target)
	return f.selfResult(id)
}

func (f *fakeServices) SubmitAllSelfForEmployee(ctx context.Context, e, p, by string) (*models.SelfBulkResult, error) {
	f.record("SubmitAllSelfForEmployee")
	return f.selfBulk()
}

func (f *fakeServices) SubmitAllSelfToManagerForEmployee(ctx context.Context, e, p, by string) (*models.SelfBulkResult, error) {
	f.record("SubmitAllSelfToManagerForEmployee")
	return f.selfBulk()
}

func (f *fakeServices) SubmitAllSelfForProject(ctx context.Context, e, p, project string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	f.record("SubmitAllSelfForProject %s %s", project, target)
	return f.selfBulk()
}

func (f *fakeServices) ResetAllSelfForEmployee(ctx context.Context, e, p string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	f.record("ResetAllSelfForEmployee %s", target)
	return f.selfBulk()
}

func (f *fakeServices) ResetAllSelfForProject(ctx context.Context, e, p, project string, target models.SelfSubmissionTarget, by string) (*models.SelfBulkResult, error) {
	f.record("ResetAllSelfForProject %s %s", project, target)
	return f.selfBulk()
}

func (f *fakeServices) SubmitDownward(ctx context.Context, id, by string) (*models.SubmissionResult, error) {
	f.record("SubmitDownward %s", id)
	return f.selfResult(id)
}

func (f *fakeServices) ResetDownward(ctx context.Context, id, by string) (*models.SubmissionResult, error) {
	f.record("ResetDownward %s", id)
	return f.selfResult(id)
}

func (f *fakeServices) SubmitAllDownward(ctx context.Context, ev, ee, p string, typ models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error) {
	f.record("SubmitAllDownward %s approveAll=%t", typ, approveAll)
	return f.downwardBulk()
}

func (f *fakeServices) SubmitAllDownwardForProject(ctx context.Context, ev, ee, p, project string, typ models.EvaluatorType, by string, approveAll bool) (*models.DownwardBulkResult, error) {
	f.record("SubmitAllDownwardForProject %s %s approveAll=%t", project, typ, approveAll)
	return f.downwardBulk()
}

func (f *fakeServices) ResetAllDownward(ctx context.Context, ev, ee, p string, typ models.EvaluatorType, by string) (*models.DownwardBulkResult, error) {
	f.record("ResetAllDownward %s", typ)
	return f.downwardBulk()
}

func (f *fakeServices) ResetAllDownwardForProject(ctx context.Context, ev, ee, p, project string, typ models.EvaluatorType, by string) (*models.DownwardBulkResult, error) {
	f.record("ResetAllDownwardForProject %s %s", project, typ)
	return f.downwardBulk()
}

func (f *fakeServices) ListByEmployee(ctx context.Context, p, e string, limit, offset int) ([]models.ActivityLog, error) {
	f.record("ListByEmployee %d %d", limit, offset)
	return f.logs, f.err
}

type testServer struct {
	fake    *fakeServices
	handler http.Handler
	auth    *testutil.AuthHelper
	health  error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{fake: &fakeServices{}, auth: testutil.NewAuthHelper()}
	routes := Routes{
		Steps:       NewStepApprovalHandler(ts.fake, ts.fake, ts.fake),
		Revisions:   NewRevisionRequestHandler(ts.fake),
		Submissions: NewSubmissionHandler(ts.fake),
		Activity:    NewActivityHandler(ts.fake),
		Health: NewHealthHandler("test", map[string]HealthChecker{
			"database": func(ctx context.Context) error { return ts.health },
		}),
	}

	mux := http.NewServeMux()
	routes.Register(mux, middleware.NewAuthMiddleware(ts.auth.Service).Authenticate)
	ts.handler = mux
	return ts
}

var (
	admin    = &models.Employee{ID: "0d9c8b7a-6f5e-4d3c-8b2a-1f0e9d8c7b6a", Email: "admin@test.com", Name: "Admin"}
	employee = &models.Employee{ID: employeeID, Email: "employee@test.com", Name: "Employee"}
	other    = &models.Employee{ID: "6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c2d", Email: "other@test.com", Name: "Other"}
)

// do sends a request as caller; a nil caller sends no token
func (ts *testServer) do(t *testing.T, method, target string, caller *models.Employee, roles []string, body string) *testutil.TestResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if caller != nil {
		ts.auth.AddAuthHeader(t, req, caller, roles)
	}
	resp := testutil.NewTestResponse()
	ts.handler.ServeHTTP(resp, req)
	return resp
}

func adminRoles() []string { return []string{auth.RoleAdmin} }

func decode[T any](t *testing.T, resp *testutil.TestResponse) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", resp.Body.String(), err)
	}
	return v
}

func TestStepRoutes(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/periods/" + periodID + "/employees/" + employeeID

	resp := ts.do(t, http.MethodGet, base+"/steps", employee, nil, "")
	resp.AssertStatusOK(t)
	status := decode[models.EmployeeStepStatus](t, resp)
	if status.Self != models.StatusApproved {
		t.Errorf("Expected self approved, got %s", status.Self)
	}
	if !strings.Contains(resp.Body.String(), `"secondary":[]`) {
		t.Errorf("Nil slices must encode as [], got %s", resp.Body.String())
	}

	resp = ts.do(t, http.MethodPut, base+"/steps/primary", admin, adminRoles(), `{"status":"revision_requested","revision_comment":"add detail"}`)
	resp.AssertStatusOK(t)
	if want := "SetStepStatus primary revision_requested by " + admin.ID; ts.fake.lastCall() != want {
		t.Errorf("Expected %q, got %q", want, ts.fake.lastCall())
	}

	resp = ts.do(t, http.MethodPut, base+"/secondary/"+evaluatorID, admin, adminRoles(), `{"status":"approved"}`)
	resp.AssertStatusOK(t)

	resp = ts.do(t, http.MethodPost, base+"/cascade/self", admin, adminRoles(), "")
	resp.AssertStatusOK(t)
	if result := decode[models.CascadeResult](t, resp); !result.SelfApproved || !result.PrimaryApproved {
		t.Errorf("Unexpected cascade result %+v", result)
	}

	resp = ts.do(t, http.MethodPost, base+"/cascade/primary", admin, adminRoles(), "")
	resp.AssertStatusOK(t)
}

func TestGetStepStatusAccess(t *testing.T) {
	evaluator := &models.Employee{ID: evaluatorID, Email: "evaluator@test.com"}
	target := "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/steps"

	tests := []struct {
		name   string
		caller *models.Employee
		roles  []string
		status int
	}{
		{"employee", employee, nil, http.StatusOK},
		{"primary evaluator", evaluator, []string{auth.RoleEvaluator}, http.StatusOK},
		{"admin", admin, adminRoles(), http.StatusOK},
		{"unrelated evaluator", other, []string{auth.RoleEvaluator}, http.StatusForbidden},
		{"anonymous", nil, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.do(t, http.MethodGet, target, tt.caller, tt.roles, "").AssertStatus(t, tt.status)
		})
	}
}

func TestStepRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/periods/" + periodID + "/employees/" + employeeID

	resp := ts.do(t, http.MethodPut, base+"/steps/self", employee, []string{auth.RoleEvaluator}, `{"status":"approved"}`)
	resp.AssertStatusForbidden(t)

	resp = ts.do(t, http.MethodPut, base+"/steps/self", nil, nil, `{"status":"approved"}`)
	resp.AssertStatusUnauthorized(t)

	if len(ts.fake.calls) != 0 {
		t.Errorf("Rejected requests must not reach the service, got %v", ts.fake.calls)
	}
}

func TestSetStepStatusValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"bad period id", "/api/v1/periods/42/employees/" + employeeID + "/steps/self", `{"status":"approved"}`},
		{"unknown status", "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/steps/self", `{"status":"done"}`},
		{"unknown field", "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/steps/self", `{"status":"approved","extra":1}`},
		{"malformed json", "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/steps/self", `{"status":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPut, tt.target, admin, adminRoles(), tt.body)
			resp.AssertStatusBadRequest(t)
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "step", Message: "unknown step"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("step approval: %w", repository.ErrNotFound), http.StatusNotFound},
		{"no assignment", service.ErrNoAssignmentFound, http.StatusNotFound},
		{"conflict", &repository.ConflictError{Entity: "self_evaluation", ID: evalID}, http.StatusConflict},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.fake.err = tt.err

			resp := ts.do(t, http.MethodGet, "/api/v1/periods/"+periodID+"/employees/"+employeeID+"/steps", employee, nil, "")
			resp.AssertStatus(t, tt.want)
			if tt.want == http.StatusInternalServerError && strings.Contains(resp.Body.String(), "connection reset") {
				t.Error("Internal errors must not leak to the client")
			}
		})
	}
}

func TestExportStepApprovals(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/v1/periods/"+periodID+"/step-approvals/export", admin, adminRoles(), "")
	resp.AssertStatusOK(t)
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, periodID) {
		t.Errorf("Expected period in filename, got %q", cd)
	}
	if resp.Body.String() != "xlsx" {
		t.Errorf("Unexpected body %q", resp.Body.String())
	}
}

func TestRevisionRequestRoutes(t *testing.T) {
	ts := newTestServer(t)

	body := fmt.Sprintf(`{"period_id":%q,"employee_id":%q,"step":"self","comment":"needs work","recipients":[{"recipient_id":%q,"recipient_type":"evaluatee"}]}`, periodID, employeeID, employeeID)
	resp := ts.do(t, http.MethodPost, "/api/v1/revision-requests", admin, adminRoles(), body)
	resp.AssertStatus(t, http.StatusCreated)
	if want := "CreateRequest self 1 by " + admin.ID; ts.fake.lastCall() != want {
		t.Errorf("Expected %q, got %q", want, ts.fake.lastCall())
	}

	resp = ts.do(t, http.MethodGet, "/api/v1/revision-requests/me", employee, nil, "")
	resp.AssertStatusOK(t)
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %s", resp.Body.String())
	}
	if ts.fake.lastCall() != "ListOpenForRecipient "+employee.ID {
		t.Errorf("Expected the caller's requests, got %q", ts.fake.lastCall())
	}

	resp = ts.do(t, http.MethodPost, "/api/v1/revision-requests/"+requestID+"/read", employee, nil, "")
	resp.AssertStatus(t, http.StatusNoContent)

	resp = ts.do(t, http.MethodPost, "/api/v1/revision-requests/"+requestID+"/respond", employee, nil, `{"comment":"done"}`)
	resp.AssertStatusOK(t)
	if want := fmt.Sprintf("SubmitResponse %s %s %q", requestID, employee.ID, "done"); ts.fake.lastCall() != want {
		t.Errorf("Expected %q, got %q", want, ts.fake.lastCall())
	}
}

func TestCreateRevisionRequestValidation(t *testing.T) {
	ts := newTestServer(t)

	body := fmt.Sprintf(`{"period_id":%q,"employee_id":%q,"step":"self","comment":"x","recipients":[{"recipient_id":%q,"recipient_type":"manager"}]}`, periodID, employeeID, employeeID)
	resp := ts.do(t, http.MethodPost, "/api/v1/revision-requests", admin, adminRoles(), body)
	resp.AssertStatusBadRequest(t)
	if got := decode[ErrorResponse](t, resp); got.Field != "recipients[0].recipient_type" {
		t.Errorf("Expected recipient type field error, got %+v", got)
	}
}

func TestGetRevisionRequestAccess(t *testing.T) {
	ts := newTestServer(t)
	ts.fake.request = &models.RevisionRequest{
		ID:          requestID,
		RequestedBy: admin.ID,
		Recipients:  []models.RevisionRequestRecipient{{RecipientID: employee.ID, RecipientType: models.RecipientEvaluatee}},
	}
	target := "/api/v1/revision-requests/" + requestID

	ts.do(t, http.MethodGet, target, employee, nil, "").AssertStatusOK(t)
	ts.do(t, http.MethodGet, target, admin, adminRoles(), "").AssertStatusOK(t)
	ts.do(t, http.MethodGet, target, other, []string{auth.RoleEvaluator}, "").AssertStatusForbidden(t)
}

func TestSelfActions(t *testing.T) {
	tests := []struct {
		action string
		want   string
		status int
	}{
		{ActionSubmitToEvaluator, "SubmitSelfToEvaluator " + evalID, http.StatusOK},
		{ActionSubmitToManager, "SubmitSelfToManager " + evalID, http.StatusOK},
		{ActionResetToEvaluator, "ResetSelf " + evalID + " evaluator", http.StatusOK},
		{ActionResetToManager, "ResetSelf " + evalID + " manager", http.StatusOK},
		{"publish", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(t, http.MethodPost, "/api/v1/self-evaluations/"+evalID+"/"+tt.action, employee, nil, "")
			resp.AssertStatus(t, tt.status)
			if ts.fake.lastCall() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, ts.fake.lastCall())
			}
		})
	}
}

func TestSingleItemRoutesRequireOwner(t *testing.T) {
	evaluator := &models.Employee{ID: evaluatorID, Email: "evaluator@test.com"}

	tests := []struct {
		name   string
		target string
		caller *models.Employee
		roles  []string
		status int
		want   string
	}{
		{"self reset by stranger", "/api/v1/self-evaluations/" + evalID + "/reset-to-evaluator", other, []string{auth.RoleEvaluator}, http.StatusForbidden, "AuthorizeSelf " + evalID + " " + other.ID},
		{"self submit by stranger", "/api/v1/self-evaluations/" + evalID + "/submit-to-evaluator", other, nil, http.StatusForbidden, "AuthorizeSelf " + evalID + " " + other.ID},
		{"self reset by admin", "/api/v1/self-evaluations/" + evalID + "/reset-to-evaluator", admin, adminRoles(), http.StatusOK, "ResetSelf " + evalID + " evaluator"},
		{"downward reset by stranger", "/api/v1/downward-evaluations/" + evalID + "/reset", other, []string{auth.RoleEvaluator}, http.StatusForbidden, "AuthorizeDownward " + evalID + " " + other.ID},
		{"downward submit by evaluatee", "/api/v1/downward-evaluations/" + evalID + "/submit", employee, nil, http.StatusForbidden, "AuthorizeDownward " + evalID + " " + employee.ID},
		{"downward reset by evaluator", "/api/v1/downward-evaluations/" + evalID + "/reset", evaluator, nil, http.StatusOK, "ResetDownward " + evalID},
		{"downward reset by admin", "/api/v1/downward-evaluations/" + evalID + "/reset", admin, adminRoles(), http.StatusOK, "ResetDownward " + evalID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(t, http.MethodPost, tt.target, tt.caller, tt.roles, "")
			resp.AssertStatus(t, tt.status)
			if ts.fake.lastCall() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, ts.fake.lastCall())
			}
		})
	}
}

func TestBulkSelfRouting(t *testing.T) {
	base := "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/self-evaluations/"

	tests := []struct {
		name string
		path string
		want string
	}{
		{"submit default", "submit-all", "SubmitAllSelfForEmployee"},
		{"submit to manager", "submit-all?target=manager", "SubmitAllSelfToManagerForEmployee"},
		{"submit project", "submit-all?projectId=" + projectID, "SubmitAllSelfForProject " + projectID + " evaluator"},
		{"reset", "reset-all?target=manager", "ResetAllSelfForEmployee manager"},
		{"reset project", "reset-all?projectId=" + projectID, "ResetAllSelfForProject " + projectID + " evaluator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(t, http.MethodPost, base+tt.path, employee, nil, "")
			resp.AssertStatusOK(t)
			if ts.fake.lastCall() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, ts.fake.lastCall())
			}
		})
	}
}

func TestBulkSelfRejects(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/self-evaluations/submit-all"

	ts.do(t, http.MethodPost, base, other, nil, "").AssertStatusForbidden(t)
	ts.do(t, http.MethodPost, base+"?target=boss", employee, nil, "").AssertStatusBadRequest(t)
	ts.do(t, http.MethodPost, base+"?projectId=p1", employee, nil, "").AssertStatusBadRequest(t)
	ts.do(t, http.MethodPost, base, admin, adminRoles(), "").AssertStatusOK(t)
}

func TestDownwardRoutes(t *testing.T) {
	evaluator := &models.Employee{ID: evaluatorID, Email: "evaluator@test.com"}
	base := "/api/v1/periods/" + periodID + "/evaluators/" + evaluatorID + "/evaluatees/" + employeeID + "/downward/"

	tests := []struct {
		name   string
		path   string
		want   string
		status int
	}{
		{"submit", "primary/submit-all", "SubmitAllDownward primary approveAll=false", http.StatusOK},
		{"submit approve all", "secondary/submit-all?approveAll=true", "SubmitAllDownward secondary approveAll=true", http.StatusOK},
		{"submit project", "primary/submit-all?projectId=" + projectID, "SubmitAllDownwardForProject " + projectID + " primary approveAll=false", http.StatusOK},
		{"reset", "secondary/reset-all", "ResetAllDownward secondary", http.StatusOK},
		{"reset project", "primary/reset-all?projectId=" + projectID, "ResetAllDownwardForProject " + projectID + " primary", http.StatusOK},
		{"unknown type", "tertiary/submit-all", "", http.StatusBadRequest},
		{"bad approveAll", "primary/submit-all?approveAll=maybe", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(t, http.MethodPost, base+tt.path, evaluator, []string{auth.RoleEvaluator}, "")
			resp.AssertStatus(t, tt.status)
			if ts.fake.lastCall() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, ts.fake.lastCall())
			}
		})
	}

	ts := newTestServer(t)
	ts.do(t, http.MethodPost, base+"primary/submit-all", employee, nil, "").AssertStatusForbidden(t)

	ts.do(t, http.MethodPost, "/api/v1/downward-evaluations/"+evalID+"/submit", evaluator, nil, "").AssertStatusOK(t)
	if ts.fake.lastCall() != "SubmitDownward "+evalID {
		t.Errorf("Unexpected call %q", ts.fake.lastCall())
	}
	ts.do(t, http.MethodPost, "/api/v1/downward-evaluations/"+evalID+"/reset", evaluator, nil, "").AssertStatusOK(t)
	if ts.fake.lastCall() != "ResetDownward "+evalID {
		t.Errorf("Unexpected call %q", ts.fake.lastCall())
	}
}

func TestListActivityLogs(t *testing.T) {
	ts := newTestServer(t)
	ts.fake.logs = []models.ActivityLog{{ActivityType: models.ActivityStepApproval, Action: "approved"}}
	base := "/api/v1/periods/" + periodID + "/employees/" + employeeID + "/activity-logs"

	resp := ts.do(t, http.MethodGet, base+"?limit=1000&offset=5", admin, adminRoles(), "")
	resp.AssertStatusOK(t)
	if ts.fake.lastCall() != "ListByEmployee 50 5" {
		t.Errorf("Expected clamped limit, got %q", ts.fake.lastCall())
	}
	page := decode[ActivityLogResponse](t, resp)
	if len(page.Logs) != 1 || page.Offset != 5 {
		t.Errorf("Unexpected page %+v", page)
	}

	ts.do(t, http.MethodGet, base+"?offset=-1", admin, adminRoles(), "").AssertStatusBadRequest(t)
	ts.do(t, http.MethodGet, base, employee, nil, "").AssertStatusForbidden(t)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health", nil, nil, "")
	resp.AssertStatusOK(t)
	if got := decode[HealthResponse](t, resp); got.Checks["database"] != "ok" {
		t.Errorf("Unexpected health %+v", got)
	}

	ts.health = errors.New("down")
	resp = ts.do(t, http.MethodGet, "/health", nil, nil, "")
	resp.AssertStatus(t, http.StatusServiceUnavailable)
}
