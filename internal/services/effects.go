package services

import (
	"fmt"

	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
)

// effects collects secondary-effect failures for one primary operation.
// A failure is logged and counted, then surfaced as a warning; it never
// fails the primary write.
type effects struct {
	metrics  *metrics.MetricsRegistry
	userID   string
	warnings []string
}

func newEffects(m *metrics.MetricsRegistry, userID string) *effects {
	return &effects{metrics: m, userID: userID}
}

func (e *effects) fail(operation string, err error, fields ...interface{}) {
	kv := append([]interface{}{"operation", operation, "user_id", e.userID, "error", err}, fields...)
	logging.Warn("Secondary effect failed", kv...)
	e.metrics.SecondaryFailure(operation)
	e.warnings = append(e.warnings, fmt.Sprintf("%s: %v", operation, err))
}

func (e *effects) Warnings() []string {
	return e.warnings
}
