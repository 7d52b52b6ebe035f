package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandlerAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, Config{Level: "debug"}))

	ctx := WithLogFields(context.Background(), LogFields{PeriodID: "p1", EmployeeID: "e1"})
	ctx = WithLogFields(ctx, LogFields{Step: "self", Component: "service.test"})
	log.InfoContext(ctx, "Step updated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}

	for key, want := range map[string]string{
		"period_id":   "p1",
		"employee_id": "e1",
		"step":        "self",
		"component":   "service.test",
	} {
		if entry[key] != want {
			t.Errorf("Expected %s=%q, got %v", key, want, entry[key])
		}
	}
	if _, ok := entry["evaluator_id"]; ok {
		t.Error("Empty fields should not be logged")
	}
}

func TestWithLogFieldsMerge(t *testing.T) {
	ctx := WithLogFields(context.Background(), LogFields{PeriodID: "p1", Step: "self"})
	ctx = WithLogFields(ctx, LogFields{Step: "primary"})

	got := GetLogFields(ctx)
	if got.PeriodID != "p1" || got.Step != "primary" {
		t.Errorf("Unexpected merge result: %+v", got)
	}
}
