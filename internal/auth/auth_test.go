package auth

import (
	"errors"
	"testing"
	"time"

	"eval-flow/internal/config"
)

func newTestService(expiration time.Duration) *Service {
	return NewService(&config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "https://sso.test",
		Expiration: expiration,
	})
}

func TestGenerateToken(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.GenerateToken(Identity{UserID: "3f1c9a52-7d43-4c8e-9f0a-2b6d1e5c8a71", Email: "test@example.com"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(time.Hour)

	id := Identity{
		UserID: "3f1c9a52-7d43-4c8e-9f0a-2b6d1e5c8a71",
		Email:  "test@example.com",
		Name:   "Test User",
		Roles:  []string{RoleEvaluator},
	}
	token, err := svc.GenerateToken(id)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != id.UserID {
		t.Errorf("Expected user ID %s, got %s", id.UserID, claims.UserID)
	}
	if claims.Email != id.Email {
		t.Errorf("Expected email %s, got %s", id.Email, claims.Email)
	}
	if !claims.HasRole(RoleEvaluator) || claims.HasRole(RoleAdmin) {
		t.Errorf("Unexpected roles %v", claims.Roles)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-1 * time.Hour)

	token, err := svc.GenerateToken(Identity{UserID: "3f1c9a52-7d43-4c8e-9f0a-2b6d1e5c8a71"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = svc.ValidateToken(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenFromOtherIssuer(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewService(&config.JWTConfig{Secret: "other", Issuer: "https://elsewhere.test", Expiration: time.Hour})

	token, err := other.GenerateToken(Identity{UserID: "3f1c9a52-7d43-4c8e-9f0a-2b6d1e5c8a71"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Should reject token signed by a different key and issuer")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	token1, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}
	if token1 == "" {
		t.Error("Token should not be empty")
	}

	token2, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate second random token: %v", err)
	}
	if token1 == token2 {
		t.Error("Random tokens should be different")
	}
}
