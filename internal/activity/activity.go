// Package activity fans activity timeline entries out to their sinks.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eval-flow/internal/models"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// Recorder appends an entry to an activity sink
type Recorder interface {
	Record(ctx context.Context, log models.ActivityLog) error
}

// MultiRecorder records to every sink and joins their errors
type MultiRecorder []Recorder

// NewMultiRecorder drops nil recorders
func NewMultiRecorder(recorders ...Recorder) MultiRecorder {
	var m MultiRecorder
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m MultiRecorder) Record(ctx context.Context, log models.ActivityLog) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, log); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StreamRecorder publishes activity entries to a Redis stream
type StreamRecorder struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewStreamRecorder creates a recorder writing to stream
func NewStreamRecorder(client *redis.Client, stream string, logger *slog.Logger) *StreamRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamRecorder{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (r *StreamRecorder) Record(ctx context.Context, log models.ActivityLog) error {
	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	fields := map[string]any{
		"period_id":     log.PeriodID,
		"employee_id":   log.EmployeeID,
		"activity_type": log.ActivityType,
		"action":        log.Action,
		"title":         log.Title,
		"performed_by":  log.PerformedBy,
		"created_at":    createdAt.Format(time.RFC3339Nano),
	}
	if log.RelatedEntityID != "" {
		fields["related_entity_type"] = log.RelatedEntityType
		fields["related_entity_id"] = log.RelatedEntityID
	}
	if len(log.Metadata) > 0 {
		metadata, err := json.Marshal(log.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
		fields["metadata"] = string(metadata)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
	}

	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	r.logger.DebugContext(ctx, "Published activity", "stream", r.stream, "activity_type", log.ActivityType, "action", log.Action)
	return nil
}

// Close closes the underlying client
func (r *StreamRecorder) Close() error {
	return r.client.Close()
}
