package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eval-flow/internal/auth"
	"eval-flow/internal/export"
	"eval-flow/internal/handlers"
	"eval-flow/internal/middleware"
	"eval-flow/internal/models"
	"eval-flow/internal/repository"
	"eval-flow/internal/service"
	"eval-flow/internal/testutil"
)

func newRouter(t *testing.T, containers *testutil.TestContainers, authHelper *testutil.AuthHelper) http.Handler {
	t.Helper()

	db := containers.DB
	activityRepo := repository.NewActivityLogRepository(db)
	services := service.NewServices(db, service.Dependencies{Activity: activityRepo})

	routes := handlers.Routes{
		Steps: handlers.NewStepApprovalHandler(
			services.Approvals,
			services.Cascade,
			export.NewStepApprovalExporter(repository.NewStepApprovalRepository(db)),
		),
		Revisions:   handlers.NewRevisionRequestHandler(services.Revisions),
		Submissions: handlers.NewSubmissionHandler(services.Submissions),
		Activity:    handlers.NewActivityHandler(activityRepo),
		Health:      handlers.NewHealthHandler("test", map[string]handlers.HealthChecker{"database": db.PingContext}),
	}

	mux := http.NewServeMux()
	routes.Register(mux, middleware.NewAuthMiddleware(authHelper.Service).Authenticate)
	return mux
}

func serve(t *testing.T, h http.Handler, req *http.Request) *testutil.TestResponse {
	t.Helper()
	resp := testutil.NewTestResponse()
	h.ServeHTTP(resp, req)
	return resp
}

// TestPrimaryRevisionRoundTrip rejects the primary step, lets the primary evaluator
// resubmit and checks that the request closes on its own
func TestPrimaryRevisionRoundTrip(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	authHelper := testutil.NewAuthHelper()
	router := newRouter(t, containers, authHelper)

	admin := &models.Employee{ID: fixtures.SecondaryB.ID, Email: fixtures.SecondaryB.Email}
	primary := fixtures.PrimaryEvaluator
	adminRoles := []string{auth.RoleAdmin}
	evaluatorRoles := []string{auth.RoleEvaluator}

	base := fmt.Sprintf("/api/v1/periods/%s/employees/%s", fixtures.Period.ID, fixtures.Evaluatee.ID)

	req := httptest.NewRequest(http.MethodPut, base+"/steps/primary", strings.NewReader(`{"status":"revision_requested","revision_comment":"Score the second item"}`))
	authHelper.AddAuthHeader(t, req, admin, adminRoles)
	serve(t, router, req).AssertStatusOK(t)

	resp := serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/revision-requests/me", primary, evaluatorRoles))
	resp.AssertStatusOK(t)
	var open []models.RevisionRequest
	if err := json.Unmarshal(resp.Body.Bytes(), &open); err != nil {
		t.Fatalf("Failed to decode requests: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected 1 open request for the primary evaluator, got %d", len(open))
	}
	if open[0].Step != models.StepPrimary || open[0].Comment != "Score the second item" {
		t.Errorf("Unexpected request %+v", open[0])
	}
	rec := open[0].Recipient(primary.ID)
	if rec == nil || rec.RecipientType != models.RecipientPrimaryEvaluator {
		t.Fatalf("Primary evaluator should be a primary_evaluator recipient, got %+v", open[0].Recipients)
	}

	// A secondary evaluator is neither requester nor recipient
	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/revision-requests/"+open[0].ID, fixtures.SecondaryA, evaluatorRoles))
	resp.AssertStatusForbidden(t)

	fixtures.CreateDownwardEvaluation(t, primary.ID, models.EvaluatorPrimary, fixtures.WBSItems[0], testutil.Ptr("Solid delivery"))

	submitAll := fmt.Sprintf("/api/v1/periods/%s/evaluators/%s/evaluatees/%s/downward/primary/submit-all",
		fixtures.Period.ID, primary.ID, fixtures.Evaluatee.ID)
	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodPost, submitAll, primary, evaluatorRoles))
	resp.AssertStatusOK(t)
	var bulk models.DownwardBulkResult
	if err := json.Unmarshal(resp.Body.Bytes(), &bulk); err != nil {
		t.Fatalf("Failed to decode bulk result: %v", err)
	}
	if bulk.SubmittedCount != 1 || bulk.FailedCount != 0 {
		t.Errorf("Expected 1 submitted item, got %+v", bulk)
	}

	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/revision-requests/me", primary, evaluatorRoles))
	resp.AssertStatusOK(t)
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Errorf("Resubmission should have completed the request, got %s", resp.Body.String())
	}

	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/revision-requests/"+open[0].ID, primary, evaluatorRoles))
	resp.AssertStatusOK(t)
	var closed models.RevisionRequest
	if err := json.Unmarshal(resp.Body.Bytes(), &closed); err != nil {
		t.Fatalf("Failed to decode request: %v", err)
	}
	if !closed.IsCompleted {
		t.Error("Request should be completed")
	}

	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, base+"/activity-logs", admin, adminRoles))
	resp.AssertStatusOK(t)
	var page handlers.ActivityLogResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to decode activity logs: %v", err)
	}
	if len(page.Logs) < 2 {
		t.Errorf("Expected the rejection and the resubmission in the timeline, got %d entries", len(page.Logs))
	}
}

// TestEvaluateeCannotSubmitForOthers verifies the ownership check of the bulk routes
func TestEvaluateeCannotSubmitForOthers(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	authHelper := testutil.NewAuthHelper()
	router := newRouter(t, containers, authHelper)

	fixtures.CreateSelfEvaluation(t, fixtures.WBSItems[0], testutil.Ptr("My work"))

	target := fmt.Sprintf("/api/v1/periods/%s/employees/%s/self-evaluations/submit-all", fixtures.Period.ID, fixtures.Evaluatee.ID)

	resp := serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodPost, target, fixtures.SecondaryA, []string{auth.RoleEmployee}))
	resp.AssertStatusForbidden(t)

	resp = serve(t, router, authHelper.CreateAuthenticatedRequest(t, http.MethodPost, target, fixtures.Evaluatee, []string{auth.RoleEmployee}))
	resp.AssertStatusOK(t)
	var result models.SelfBulkResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.SubmittedCount != 1 || result.TotalCount != 1 {
		t.Errorf("Expected the one self-evaluation submitted, got %+v", result)
	}
}
