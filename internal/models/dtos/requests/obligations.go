package requests

import (
	"time"

	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// NotificationRequest is the body of POST/PUT /notifications.
type NotificationRequest struct {
	AircraftID  string  `json:"aircraft_id" validate:"omitempty,uuid"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	DueBasis    string  `json:"due_basis" validate:"required"`
	InitialDate *string `json:"initial_date" validate:"omitempty,datetime=2006-01-02"`
	Recurrence  string  `json:"recurrence"`
	AlertDays   *int    `json:"alert_days" validate:"omitempty,gte=0"`

	CounterType         string   `json:"counter_type"`
	InitialCounterValue *float64 `json:"initial_counter_value" validate:"omitempty,gte=0"`
	CounterStep         *float64 `json:"counter_step" validate:"omitempty,gte=0"`
	AlertHours          *float64 `json:"alert_hours" validate:"omitempty,gte=0"`

	SubscriptionID *string `json:"subscription_id" validate:"omitempty,uuid"`
}

func (r *NotificationRequest) ToModel() (*gormModels.Notification, error) {
	initialDate, err := parseDate(r.InitialDate)
	if err != nil {
		return nil, err
	}
	return &gormModels.Notification{
		AircraftID:          r.AircraftID,
		Description:         r.Description,
		Type:                constants.NotificationType(r.Type),
		DueBasis:            constants.DueBasis(r.DueBasis),
		InitialDate:         initialDate,
		Recurrence:          constants.Recurrence(r.Recurrence),
		AlertDays:           r.AlertDays,
		CounterType:         constants.CounterType(r.CounterType),
		InitialCounterValue: r.InitialCounterValue,
		CounterStep:         r.CounterStep,
		AlertHours:          r.AlertHours,
		SubscriptionID:      r.SubscriptionID,
	}, nil
}

// DirectiveRequest is the body of POST/PUT /directives. The due_* fields
// are read according to initial_due_type.
type DirectiveRequest struct {
	AircraftID      string `json:"aircraft_id" validate:"required,uuid"`
	Number          string `json:"directive_number"`
	Title           string `json:"title"`
	InitialDueType  string `json:"initial_due_type" validate:"required"`
	CounterType     string `json:"counter_type"`
	ComplianceScope string `json:"compliance_scope" validate:"required"`
	DirectiveStatus string `json:"directive_status"`

	DueDate      *string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	DueMonths    *int     `json:"due_months" validate:"omitempty,gt=0"`
	DueHours     *float64 `json:"due_hours" validate:"omitempty,gte=0"`
	DueHoursMode string   `json:"due_hours_mode" validate:"omitempty,oneof=absolute incremental"`

	RepeatHours  *float64 `json:"repeat_hours" validate:"omitempty,gte=0"`
	RepeatMonths *int     `json:"repeat_months" validate:"omitempty,gte=0"`
}

func (r *DirectiveRequest) ToModel() *gormModels.Directive {
	return &gormModels.Directive{
		AircraftID:      r.AircraftID,
		Number:          r.Number,
		Title:           r.Title,
		InitialDueType:  constants.DueType(r.InitialDueType),
		CounterType:     constants.CounterType(r.CounterType),
		ComplianceScope: constants.ComplianceScope(r.ComplianceScope),
		DirectiveStatus: constants.DirectiveStatus(r.DirectiveStatus),
		RepeatHours:     r.RepeatHours,
		RepeatMonths:    r.RepeatMonths,
	}
}

// ParsedDueDate returns the due_date field as a date.
func (r *DirectiveRequest) ParsedDueDate() (*time.Time, error) {
	return parseDate(r.DueDate)
}

type ComplianceLinkRequest struct {
	Description string `json:"description"`
	URL         string `json:"url" validate:"required,url"`
}

// ComplianceEventRequest records compliance with a directive, either on its
// own or embedded in a maintenance log. A set id edits that event.
type ComplianceEventRequest struct {
	ID                     string                  `json:"id" validate:"omitempty,uuid"`
	DirectiveID            string                  `json:"directive_id" validate:"omitempty,uuid"`
	ComplianceDate         *string                 `json:"compliance_date" validate:"omitempty,datetime=2006-01-02"`
	ComplianceStatus       string                  `json:"compliance_status"`
	CounterType            string                  `json:"counter_type"`
	CounterValue           *float64                `json:"counter_value" validate:"omitempty,gte=0"`
	OwnerNotes             string                  `json:"owner_notes"`
	Links                  []ComplianceLinkRequest `json:"compliance_links" validate:"omitempty,dive"`
	MarkDirectiveCompleted bool                    `json:"mark_directive_completed"`
}

func (r *ComplianceEventRequest) ToModel() (*gormModels.ComplianceEvent, error) {
	e := &gormModels.ComplianceEvent{
		ID:               r.ID,
		DirectiveID:      r.DirectiveID,
		ComplianceStatus: constants.ComplianceStatus(r.ComplianceStatus),
		CounterType:      constants.CounterType(r.CounterType),
		CounterValue:     r.CounterValue,
		OwnerNotes:       r.OwnerNotes,
	}
	date, err := parseDate(r.ComplianceDate)
	if err != nil {
		return nil, err
	}
	if date != nil {
		e.ComplianceDate = *date
	}
	if len(r.Links) > 0 {
		links := make([]gormModels.ComplianceLink, 0, len(r.Links))
		for _, l := range r.Links {
			links = append(links, gormModels.ComplianceLink{Description: l.Description, URL: l.URL})
		}
		e.ComplianceLinks = links
	}
	return e, nil
}

// MaintenanceLogRequest is the body of POST/PUT /maintenance-logs. On update
// the compliance list replaces the log's events.
type MaintenanceLogRequest struct {
	AircraftID        string   `json:"aircraft_id" validate:"required,uuid"`
	Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
	Description       string   `json:"description"`
	Hobbs             *float64 `json:"hobbs" validate:"omitempty,gte=0"`
	Tach              *float64 `json:"tach" validate:"omitempty,gte=0"`
	AirframeTotalTime *float64 `json:"airframe_total_time" validate:"omitempty,gte=0"`
	EngineTotalTime   *float64 `json:"engine_total_time" validate:"omitempty,gte=0"`
	PropTotalTime     *float64 `json:"prop_total_time" validate:"omitempty,gte=0"`

	IsRecurringTask     bool     `json:"is_recurring_task"`
	IntervalType        string   `json:"interval_type"`
	IntervalMonths      *int     `json:"interval_months" validate:"omitempty,gte=0"`
	IntervalHours       *float64 `json:"interval_hours" validate:"omitempty,gte=0"`
	IntervalCounterType string   `json:"interval_counter_type"`

	Compliance []ComplianceEventRequest `json:"compliance" validate:"omitempty,dive"`
}

func (r *MaintenanceLogRequest) ToModel() (*gormModels.MaintenanceLog, error) {
	date, err := parseDate(&r.Date)
	if err != nil {
		return nil, err
	}
	m := &gormModels.MaintenanceLog{
		AircraftID:          r.AircraftID,
		Description:         r.Description,
		Hobbs:               r.Hobbs,
		Tach:                r.Tach,
		AirframeTotalTime:   r.AirframeTotalTime,
		EngineTotalTime:     r.EngineTotalTime,
		PropTotalTime:       r.PropTotalTime,
		IsRecurringTask:     r.IsRecurringTask,
		IntervalType:        constants.IntervalType(r.IntervalType),
		IntervalMonths:      r.IntervalMonths,
		IntervalHours:       r.IntervalHours,
		IntervalCounterType: constants.CounterType(r.IntervalCounterType),
	}
	if date != nil {
		m.Date = *date
	}
	return m, nil
}
