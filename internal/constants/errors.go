package constants

// Compliance engine error codes
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeFrozen             = "NOTIFICATION_FROZEN"
	ErrCodeStoreFailure       = "STORE_FAILURE"
	ErrCodeCounterUnavailable = "COUNTER_UNAVAILABLE"
	ErrCodeCounterBelowActual = "COUNTER_BELOW_CURRENT"
	ErrCodeCompletionNotAllow = "COMPLETION_NOT_ALLOWED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeSuccessorFailed    = "SUCCESSOR_NOT_CREATED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeBadRequest         = "BAD_REQUEST"
)

var ComplianceErrorMessages = map[string]string{
	ErrCodeValidation:         "The request is invalid",
	ErrCodeNotFound:           "The requested record does not exist",
	ErrCodeFrozen:             "The notification was edited by a user and cannot be changed automatically",
	ErrCodeStoreFailure:       "The record could not be saved",
	ErrCodeCounterUnavailable: "Current aircraft counters could not be read",
	ErrCodeCounterBelowActual: "Target counter value is below the current aircraft counter",
	ErrCodeCompletionNotAllow: "This directive cannot be marked completed manually",
	ErrCodeUnauthorized:       "Unauthorized: missing user",
	ErrCodeSuccessorFailed:    "The notification was completed but its next occurrence could not be created",
	ErrCodeRateLimited:        "Too many requests",
	ErrCodeBadRequest:         "The request body could not be read",
}

// GetErrorMessage returns the human-readable message for an error code.
func GetErrorMessage(code string) string {
	if msg, ok := ComplianceErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred"
}

// Secondary-effect operation names used in logs and metrics
const (
	OpSpawnSuccessor      = "spawn_successor"
	OpHistoryAppend       = "history_append"
	OpSummaryRecompute    = "summary_recompute"
	OpNotificationCascade = "notification_cascade"
	OpDirectiveCompletion = "directive_completion"
	OpCounterUpdate       = "counter_update"
	OpComplianceLink      = "compliance_link"
	OpMaintenanceSync     = "maintenance_sync"
)
