package services

import (
	"fmt"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// alertDefaults are the thresholds stamped on notifications that do not
// carry their own.
type alertDefaults struct {
	days  int
	hours float64
}

func defaultAlerts() alertDefaults {
	return alertDefaults{days: constants.DefaultAlertDays, hours: constants.DefaultAlertHours}
}

func (a alertDefaults) with(days int, hours float64) alertDefaults {
	if days > 0 {
		a.days = days
	}
	if hours > 0 {
		a.hours = hours
	}
	return a
}

func (a alertDefaults) stamp(n *gormModels.Notification) {
	if n.Recurrence == "" {
		n.Recurrence = constants.RecurrenceNone
	}
	if n.DueBasis == constants.DueBasisDate && n.AlertDays == nil {
		days := a.days
		n.AlertDays = &days
	}
	if n.DueBasis == constants.DueBasisCounter && n.AlertHours == nil {
		hours := a.hours
		n.AlertHours = &hours
	}
}

// applyDue moves n onto basis with the given due value, clearing the fields
// of the other basis.
func applyDue(n *gormModels.Notification, basis constants.DueBasis, due compliance.DueValue, counterType constants.CounterType) {
	n.DueBasis = basis
	switch basis {
	case constants.DueBasisDate:
		n.InitialDate = due.Date
		n.CounterType = ""
		n.InitialCounterValue = nil
		n.CounterStep = nil
		n.AlertHours = nil
	case constants.DueBasisCounter:
		n.CounterType = counterType
		n.InitialCounterValue = due.Counter
		n.AlertDays = nil
	}
}

func sameDue(n *gormModels.Notification, due compliance.DueValue, counterType constants.CounterType) bool {
	current := compliance.CurrentDue(n)
	switch n.DueBasis {
	case constants.DueBasisDate:
		return current.Date != nil && due.Date != nil && compliance.SameDay(*current.Date, *due.Date)
	case constants.DueBasisCounter:
		return current.Counter != nil && due.Counter != nil &&
			*current.Counter == *due.Counter && n.CounterType == counterType
	}
	return false
}

func ofBasis(ns []gormModels.Notification, basis constants.DueBasis) []gormModels.Notification {
	var out []gormModels.Notification
	for _, n := range ns {
		if n.DueBasis == basis {
			out = append(out, n)
		}
	}
	return out
}

func directiveDescription(d *gormModels.Directive) string {
	if d.Number == "" {
		return d.Title
	}
	if d.Title == "" {
		return d.Number
	}
	return fmt.Sprintf("%s: %s", d.Number, d.Title)
}

func maintenanceDescription(m *gormModels.MaintenanceLog) string {
	return "Recurring: " + m.Description
}
