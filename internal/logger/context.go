package logger

import "context"

type contextKey struct{}

var logFieldsKey = contextKey{}

// LogFields contains structured fields added to all logs within a context.
// Orchestration calls tag their context with the period, employee and step they act on.
type LogFields struct {
	PeriodID    string
	EmployeeID  string
	Step        string
	EvaluatorID string
	RequestID   string // revision request id
	ActorID     string
	Component   string // e.g. "service.cascade"
}

// WithLogFields enriches ctx with fields. Non-empty values of newer calls take precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing
	if next.PeriodID != "" {
		result.PeriodID = next.PeriodID
	}
	if next.EmployeeID != "" {
		result.EmployeeID = next.EmployeeID
	}
	if next.Step != "" {
		result.Step = next.Step
	}
	if next.EvaluatorID != "" {
		result.EvaluatorID = next.EvaluatorID
	}
	if next.RequestID != "" {
		result.RequestID = next.RequestID
	}
	if next.ActorID != "" {
		result.ActorID = next.ActorID
	}
	if next.Component != "" {
		result.Component = next.Component
	}
	return result
}
