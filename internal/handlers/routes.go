package handlers

import (
	"net/http"

	"eval-flow/internal/middleware"
)

// Routes bundles the handlers served under APIBasePath
type Routes struct {
	Steps       *StepApprovalHandler
	Revisions   *RevisionRequestHandler
	Submissions *SubmissionHandler
	Activity    *ActivityHandler
	Health      *HealthHandler
}

// Register mounts every route on mux. authenticate guards all API routes.
func (rt Routes) Register(mux *http.ServeMux, authenticate func(http.Handler) http.Handler) {
	user := func(h http.HandlerFunc) http.Handler {
		return authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticate(middleware.RequireAdmin(h))
	}
	route := func(method, path string) string {
		return method + " " + APIBasePath + path
	}

	// Step approvals
	mux.Handle(route("GET", "/periods/{periodId}/employees/{employeeId}/steps"), user(rt.Steps.GetStepStatus))
	mux.Handle(route("PUT", "/periods/{periodId}/employees/{employeeId}/steps/{step}"), admin(rt.Steps.SetStepStatus))
	mux.Handle(route("PUT", "/periods/{periodId}/employees/{employeeId}/secondary/{evaluatorId}"), admin(rt.Steps.SetSecondaryStepStatus))
	mux.Handle(route("POST", "/periods/{periodId}/employees/{employeeId}/cascade/self"), admin(rt.Steps.ApproveSelfAndCascade))
	mux.Handle(route("POST", "/periods/{periodId}/employees/{employeeId}/cascade/primary"), admin(rt.Steps.ApprovePrimaryAndCascade))
	mux.Handle(route("GET", "/periods/{periodId}/step-approvals/export"), admin(rt.Steps.ExportStepApprovals))

	// Revision requests
	mux.Handle(route("POST", "/revision-requests"), admin(rt.Revisions.CreateRequest))
	mux.Handle(route("GET", "/revision-requests/me"), user(rt.Revisions.ListMine))
	mux.Handle(route("GET", "/revision-requests/{id}"), user(rt.Revisions.GetRequest))
	mux.Handle(route("POST", "/revision-requests/{id}/read"), user(rt.Revisions.MarkRead))
	mux.Handle(route("POST", "/revision-requests/{id}/respond"), user(rt.Revisions.Respond))

	// Self-evaluation submissions
	mux.Handle(route("POST", "/self-evaluations/{id}/{action}"), user(rt.Submissions.SelfAction))
	mux.Handle(route("POST", "/periods/{periodId}/employees/{employeeId}/self-evaluations/submit-all"), user(rt.Submissions.SubmitAllSelf))
	mux.Handle(route("POST", "/periods/{periodId}/employees/{employeeId}/self-evaluations/reset-all"), user(rt.Submissions.ResetAllSelf))

	// Downward-evaluation submissions
	mux.Handle(route("POST", "/downward-evaluations/{id}/submit"), user(rt.Submissions.SubmitDownward))
	mux.Handle(route("POST", "/downward-evaluations/{id}/reset"), user(rt.Submissions.ResetDownward))
	mux.Handle(route("POST", "/periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/submit-all"), user(rt.Submissions.SubmitAllDownward))
	mux.Handle(route("POST", "/periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/reset-all"), user(rt.Submissions.ResetAllDownward))

	// Activity
	mux.Handle(route("GET", "/periods/{periodId}/employees/{employeeId}/activity-logs"), admin(rt.Activity.ListActivityLogs))

	mux.HandleFunc("GET /health", rt.Health.Health)
}
