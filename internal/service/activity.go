package service

import (
	"context"

	"eval-flow/internal/models"
)

func recordActivity(ctx context.Context, recorder ActivityRecorder, log models.ActivityLog) *SideEffectError {
	if recorder == nil {
		return nil
	}
	return sideEffect("activity_log", recorder.Record(ctx, log))
}
