package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoAssignmentFound is returned by project-scoped bulk calls when the
// employee has no WBS item in the project
var ErrNoAssignmentFound = errors.New("no WBS assignment found")

// ErrForbidden is returned when the actor may not change an evaluation
var ErrForbidden = errors.New("permission denied")

// ValidationError reports invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// requireFields takes name/value pairs and reports the first blank value
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return invalid(pairs[i], "is required")
		}
	}
	return nil
}

// SideEffectError wraps a failed best-effort effect that ran after commit
type SideEffectError struct {
	Effect string
	Err    error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Effect, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

func sideEffect(effect string, err error) *SideEffectError {
	if err == nil {
		return nil
	}
	return &SideEffectError{Effect: effect, Err: err}
}

// discard logs a failed best-effort effect; the committed result stands
func discard(ctx context.Context, err *SideEffectError) {
	if err == nil {
		return
	}
	slog.WarnContext(ctx, "Best-effort side effect failed", "effect", err.Effect, "error", err.Err)
}
