package compliance

import (
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"time"
)

// Evaluator classifies notifications into alert states. It has no side
// effects; the zero value uses the package defaults.
type Evaluator struct {
	AlertDays  int
	AlertHours float64
}

// NewEvaluator builds an evaluator with the fallback thresholds used when a
// notification does not carry its own.
func NewEvaluator(alertDays int, alertHours float64) Evaluator {
	return Evaluator{AlertDays: alertDays, AlertHours: alertHours}
}

// EvaluateAlert classifies n with the default thresholds.
func EvaluateAlert(n *gormModels.Notification, counters *Counters, today time.Time) constants.AlertState {
	return Evaluator{}.Evaluate(n, counters, today)
}

// Evaluate returns the alert state of n given the aircraft's counters and
// today's date. counters may be nil for date-basis notifications.
func (e Evaluator) Evaluate(n *gormModels.Notification, counters *Counters, today time.Time) constants.AlertState {
	if n == nil || n.IsCompleted {
		return constants.AlertNormal
	}

	switch n.DueBasis {
	case constants.DueBasisCounter:
		return e.evaluateCounter(n, counters)
	case constants.DueBasisDate:
		return e.evaluateDate(n, today)
	}
	return constants.AlertNormal
}

func (e Evaluator) evaluateCounter(n *gormModels.Notification, counters *Counters) constants.AlertState {
	if counters == nil || n.InitialCounterValue == nil {
		return constants.AlertNormal
	}
	current, ok := counters.Value(n.CounterType)
	if !ok {
		return constants.AlertNormal
	}

	remaining := *n.InitialCounterValue - current
	if remaining <= 0 {
		return constants.AlertDue
	}
	if remaining <= e.alertHours(n) {
		return constants.AlertReminder
	}
	return constants.AlertNormal
}

func (e Evaluator) evaluateDate(n *gormModels.Notification, today time.Time) constants.AlertState {
	if n.InitialDate == nil {
		return constants.AlertNormal
	}

	days := DaysUntil(*n.InitialDate, today)
	if days <= 0 {
		return constants.AlertDue
	}
	if days <= e.alertDays(n) {
		return constants.AlertReminder
	}
	return constants.AlertNormal
}

func (e Evaluator) alertDays(n *gormModels.Notification) int {
	if n.AlertDays != nil {
		return *n.AlertDays
	}
	if e.AlertDays > 0 {
		return e.AlertDays
	}
	return constants.DefaultAlertDays
}

func (e Evaluator) alertHours(n *gormModels.Notification) float64 {
	if n.AlertHours != nil {
		return *n.AlertHours
	}
	if e.AlertHours > 0 {
		return e.AlertHours
	}
	return constants.DefaultAlertHours
}

// AnyActive reports whether any open notification is in reminder or due.
// Counters are looked up per aircraft.
func (e Evaluator) AnyActive(notifications []gormModels.Notification, counters map[string]*Counters, today time.Time) bool {
	for i := range notifications {
		n := &notifications[i]
		if n.IsCompleted {
			continue
		}
		if e.Evaluate(n, counters[n.AircraftID], today).Active() {
			return true
		}
	}
	return false
}
