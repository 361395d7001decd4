package compliance

import (
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"time"
)

// DueValue is the due condition of an obligation. Exactly one field is
// meaningful, chosen by the obligation's due basis.
type DueValue struct {
	Date    *time.Time
	Counter *float64
}

// DateDue wraps a date as a DueValue.
func DateDue(t time.Time) DueValue {
	d := CivilDate(t)
	return DueValue{Date: &d}
}

// CounterDue wraps a counter reading as a DueValue.
func CounterDue(v float64) DueValue {
	return DueValue{Counter: &v}
}

// RecurrenceSpec is the repeat rule carried by a notification.
type RecurrenceSpec struct {
	Recurrence  constants.Recurrence
	CounterStep *float64
}

// AddRecurrence advances a date by a named recurrence. ok is false for None.
// Month steps use time.AddDate normalisation, so Jan 31 + 1 month lands in
// early March.
func AddRecurrence(date time.Time, r constants.Recurrence) (next time.Time, ok bool) {
	switch r {
	case constants.RecurrenceWeekly:
		return date.AddDate(0, 0, 7), true
	case constants.RecurrenceBiMonthly:
		return date.AddDate(0, 2, 0), true
	case constants.RecurrenceMonthly:
		return date.AddDate(0, 1, 0), true
	case constants.RecurrenceQuarterly:
		return date.AddDate(0, 3, 0), true
	case constants.RecurrenceSemiAnnual:
		return date.AddDate(0, 6, 0), true
	case constants.RecurrenceYearly:
		return date.AddDate(0, 12, 0), true
	}
	return time.Time{}, false
}

// AddCounterStep advances a counter target. A missing or non-positive step
// means the obligation is one-shot.
func AddCounterStep(current float64, step *float64) (next float64, ok bool) {
	if step == nil || *step <= 0 {
		return 0, false
	}
	return current + *step, true
}

// NextDue computes the next due value from the current one. ok is false when
// the obligation does not recur.
func NextDue(basis constants.DueBasis, current DueValue, spec RecurrenceSpec) (DueValue, bool) {
	switch basis {
	case constants.DueBasisDate:
		if current.Date == nil {
			return DueValue{}, false
		}
		next, ok := AddRecurrence(*current.Date, spec.Recurrence)
		if !ok {
			return DueValue{}, false
		}
		return DueValue{Date: &next}, true
	case constants.DueBasisCounter:
		if current.Counter == nil {
			return DueValue{}, false
		}
		next, ok := AddCounterStep(*current.Counter, spec.CounterStep)
		if !ok {
			return DueValue{}, false
		}
		return DueValue{Counter: &next}, true
	}
	return DueValue{}, false
}

// NextAnchoredDue computes a directive's next due value from the compliance
// that actually happened rather than from the previous due value, so late
// compliance moves the whole schedule.
func NextAnchoredDue(basis constants.DueBasis, complied DueValue, repeatMonths *int, repeatHours *float64) (DueValue, bool) {
	switch basis {
	case constants.DueBasisDate:
		if complied.Date == nil || repeatMonths == nil || *repeatMonths <= 0 {
			return DueValue{}, false
		}
		next := complied.Date.AddDate(0, *repeatMonths, 0)
		return DueValue{Date: &next}, true
	case constants.DueBasisCounter:
		if complied.Counter == nil {
			return DueValue{}, false
		}
		next, ok := AddCounterStep(*complied.Counter, repeatHours)
		if !ok {
			return DueValue{}, false
		}
		return DueValue{Counter: &next}, true
	}
	return DueValue{}, false
}

// EffectiveRecurrence resolves the recurrence to apply to n. A
// subscription-linked notification whose own recurrence is None uses its
// subscription's recurrence instead.
func EffectiveRecurrence(n *gormModels.Notification, sub *gormModels.Subscription) constants.Recurrence {
	if n.SubscriptionID != nil && !n.Recurrence.Active() && sub != nil {
		return sub.Recurrence
	}
	if n.Recurrence == "" {
		return constants.RecurrenceNone
	}
	return n.Recurrence
}

// CurrentDue extracts the due value of n for its basis.
func CurrentDue(n *gormModels.Notification) DueValue {
	if n.DueBasis == constants.DueBasisCounter {
		return DueValue{Counter: n.InitialCounterValue}
	}
	return DueValue{Date: n.InitialDate}
}
