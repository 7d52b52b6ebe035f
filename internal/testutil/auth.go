package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eval-flow/internal/auth"
	"eval-flow/internal/config"
	"eval-flow/internal/models"
)

// AuthHelper provides JWT token generation for tests
type AuthHelper struct {
	Service *auth.Service
}

// NewAuthHelper creates a new auth helper with an ephemeral signing key
func NewAuthHelper() *AuthHelper {
	return &AuthHelper{
		Service: auth.NewService(&config.JWTConfig{
			Secret:     "test-secret-key-for-testing-only",
			Expiration: time.Hour,
		}),
	}
}

// GenerateToken generates a JWT token for an employee with specified roles
func (h *AuthHelper) GenerateToken(employee *models.Employee, roles []string) (string, error) {
	return h.Service.GenerateToken(auth.Identity{
		UserID: employee.ID,
		Email:  employee.Email,
		Name:   employee.Name,
		Roles:  roles,
	})
}

// AddAuthHeader adds an authorization header to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, employee *models.Employee, roles []string) {
	t.Helper()

	token, err := h.GenerateToken(employee, roles)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// CreateAuthenticatedRequest creates a request with auth header
func (h *AuthHelper) CreateAuthenticatedRequest(t *testing.T, method, url string, employee *models.Employee, roles []string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, url, nil)
	h.AddAuthHeader(t, req, employee, roles)
	return req
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// NewTestResponse creates a new test response recorder
func NewTestResponse() *TestResponse {
	return &TestResponse{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}

// AssertStatusOK asserts 200 OK
func (r *TestResponse) AssertStatusOK(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusOK)
}

// AssertStatusUnauthorized asserts 401 Unauthorized
func (r *TestResponse) AssertStatusUnauthorized(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusUnauthorized)
}

// AssertStatusForbidden asserts 403 Forbidden
func (r *TestResponse) AssertStatusForbidden(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusForbidden)
}

// AssertStatusBadRequest asserts 400 Bad Request
func (r *TestResponse) AssertStatusBadRequest(t *testing.T) {
	t.Helper()
	r.AssertStatus(t, http.StatusBadRequest)
}
