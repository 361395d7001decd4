package constants

import (
	"database/sql/driver"
	"fmt"
)

// DueBasis selects which due fields of a notification are active.
type DueBasis string

const (
	DueBasisDate    DueBasis = "Date"
	DueBasisCounter DueBasis = "Counter"
)

func (b DueBasis) String() string { return string(b) }

func (b DueBasis) Valid() bool {
	switch b {
	case DueBasisDate, DueBasisCounter:
		return true
	}
	return false
}

// Recurrence is the named calendar repeat of a date-basis notification.
type Recurrence string

const (
	RecurrenceNone       Recurrence = "None"
	RecurrenceWeekly     Recurrence = "Weekly"
	RecurrenceBiMonthly  Recurrence = "Bi-Monthly"
	RecurrenceMonthly    Recurrence = "Monthly"
	RecurrenceQuarterly  Recurrence = "Quarterly"
	RecurrenceSemiAnnual Recurrence = "Semi-Annual"
	RecurrenceYearly     Recurrence = "Yearly"
)

func (r Recurrence) String() string { return string(r) }

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiMonthly, RecurrenceMonthly,
		RecurrenceQuarterly, RecurrenceSemiAnnual, RecurrenceYearly:
		return true
	}
	return false
}

// Active reports whether the recurrence produces a next occurrence.
// An empty value is treated as None.
func (r Recurrence) Active() bool {
	return r != "" && r != RecurrenceNone
}

// RecurrenceForMonths maps a month interval onto the named recurrence that
// represents it, or None when no named recurrence matches.
func RecurrenceForMonths(months int) Recurrence {
	switch months {
	case 1:
		return RecurrenceMonthly
	case 2:
		return RecurrenceBiMonthly
	case 3:
		return RecurrenceQuarterly
	case 6:
		return RecurrenceSemiAnnual
	case 12:
		return RecurrenceYearly
	}
	return RecurrenceNone
}

// CounterType mirrors the five usage counters tracked per aircraft.
type CounterType string

const (
	CounterHobbs      CounterType = "Hobbs"
	CounterTach       CounterType = "Tach"
	CounterAirframeTT CounterType = "Airframe TT"
	CounterEngineTT   CounterType = "Engine TT"
	CounterPropTT     CounterType = "Prop TT"
)

// AllCounterTypes lists counters in display order.
var AllCounterTypes = []CounterType{CounterHobbs, CounterTach, CounterAirframeTT, CounterEngineTT, CounterPropTT}

func (c CounterType) String() string { return string(c) }

func (c CounterType) Valid() bool {
	switch c {
	case CounterHobbs, CounterTach, CounterAirframeTT, CounterEngineTT, CounterPropTT:
		return true
	}
	return false
}

// Scan implements the sql.Scanner interface
func (c *CounterType) Scan(src interface{}) error {
	if src == nil {
		*c = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*c = CounterType(v)
	case []byte:
		*c = CounterType(v)
	default:
		return fmt.Errorf("CounterType: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (c CounterType) Value() (driver.Value, error) {
	if c == "" {
		return nil, nil
	}
	return string(c), nil
}

// NotificationType classifies where a notification came from.
type NotificationType string

const (
	NotificationTypeGeneral      NotificationType = "General"
	NotificationTypeDirective    NotificationType = "Directive"
	NotificationTypeMaintenance  NotificationType = "Maintenance"
	NotificationTypeSubscription NotificationType = "Subscription"
	NotificationTypeEquipment    NotificationType = "Equipment"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeGeneral, NotificationTypeDirective, NotificationTypeMaintenance,
		NotificationTypeSubscription, NotificationTypeEquipment:
		return true
	}
	return false
}

// AlertState is the derived alert classification of an obligation.
type AlertState string

const (
	AlertNormal   AlertState = "normal"
	AlertReminder AlertState = "reminder"
	AlertDue      AlertState = "due"
)

func (a AlertState) String() string { return string(a) }

// Active reports whether the state should raise an alert badge.
func (a AlertState) Active() bool { return a == AlertReminder || a == AlertDue }

const (
	DefaultAlertDays  = 7
	DefaultAlertHours = 10.0
)
