package handlers

// Common error message constants shared across handlers
const (
	ErrMsgUnauthorized     = "Unauthorized"
	ErrMsgPermissionDenied = "permission denied"
	ErrMsgInternal         = "Internal server error"
	ErrMsgInvalidQuery     = "Invalid query parameter"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)

// Self-evaluation actions accepted by POST /self-evaluations/{id}/{action}
const (
	ActionSubmitToEvaluator = "submit-to-evaluator"
	ActionSubmitToManager   = "submit-to-manager"
	ActionResetToEvaluator  = "reset-to-evaluator"
	ActionResetToManager    = "reset-to-manager"
)
