package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"eval-flow/internal/auth"
	"eval-flow/internal/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenValidator validates SSO access tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.JWTClaims, error)
}

// AuthMiddleware validates JWT tokens
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and adds the caller's identity to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				respondWithError(w, http.StatusUnauthorized, "Token has expired")
				return
			}
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		id := auth.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
			Roles:  claims.Roles,
		}
		ctx := WithIdentity(r.Context(), id)
		ctx = logger.WithLogFields(ctx, logger.LogFields{ActorID: id.UserID})
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", id.UserID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity retrieves the authenticated caller from the request context
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(auth.Identity)
	return id, ok
}

// GetUserID retrieves the caller's employee ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	id, ok := GetIdentity(r)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
