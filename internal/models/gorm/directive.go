package gorm

import (
	"infinite-experiment/hangar/internal/constants"
	"time"

	"gorm.io/datatypes"
	gormlib "gorm.io/gorm"
)

// Directive is an airworthiness directive or service bulletin tracked for an
// aircraft.
type Directive struct {
	ID              string                    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID          string                    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	AircraftID      string                    `gorm:"column:aircraft_id;type:uuid;index" json:"aircraft_id"`
	Number          string                    `gorm:"column:directive_number;type:varchar(64)" json:"directive_number"`
	Title           string                    `gorm:"column:title;type:text" json:"title"`
	InitialDueType  constants.DueType         `gorm:"column:initial_due_type;type:varchar(32);not null" json:"initial_due_type"`
	InitialDueDate  *time.Time                `gorm:"column:initial_due_date;type:date" json:"initial_due_date"`
	InitialDueHours *float64                  `gorm:"column:initial_due_hours" json:"initial_due_hours"`
	CounterType     constants.CounterType     `gorm:"column:counter_type;type:varchar(20)" json:"counter_type"`
	ComplianceScope constants.ComplianceScope `gorm:"column:compliance_scope;type:varchar(32);not null" json:"compliance_scope"`
	RepeatHours     *float64                  `gorm:"column:repeat_hours" json:"repeat_hours"`
	RepeatMonths    *int                      `gorm:"column:repeat_months" json:"repeat_months"`
	DirectiveStatus constants.DirectiveStatus `gorm:"column:directive_status;type:varchar(20);not null" json:"directive_status"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Directive) TableName() string {
	return "directives"
}

func (d *Directive) BeforeCreate(*gormlib.DB) error {
	assignID(&d.ID)
	return nil
}

// IsRecurring reports whether compliance should schedule a next occurrence.
func (d *Directive) IsRecurring() bool {
	return d.ComplianceScope == constants.ScopeRecurring
}

// ComplianceLink is a reference document attached to a compliance event.
type ComplianceLink struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ComplianceEvent is one record of a directive being complied with.
type ComplianceEvent struct {
	ID               string                              `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID           string                              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	DirectiveID      string                              `gorm:"column:directive_id;type:uuid;not null;index" json:"directive_id"`
	MaintenanceLogID *string                             `gorm:"column:maintenance_log_id;type:uuid;index" json:"maintenance_log_id"`
	ComplianceDate   time.Time                           `gorm:"column:compliance_date;type:date;not null" json:"compliance_date"`
	ComplianceStatus constants.ComplianceStatus          `gorm:"column:compliance_status;type:varchar(20);not null" json:"compliance_status"`
	CounterType      constants.CounterType               `gorm:"column:counter_type;type:varchar(20)" json:"counter_type"`
	CounterValue     *float64                            `gorm:"column:counter_value" json:"counter_value"`
	OwnerNotes       string                              `gorm:"column:owner_notes;type:text" json:"owner_notes"`
	ComplianceLinks  datatypes.JSONSlice[ComplianceLink] `gorm:"column:compliance_links" json:"compliance_links"`
	CreatedAt        time.Time                           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ComplianceEvent) TableName() string {
	return "maintenance_directive_compliance"
}

func (e *ComplianceEvent) BeforeCreate(*gormlib.DB) error {
	assignID(&e.ID)
	return nil
}

// AircraftDirectiveStatus is the per (user, directive) roll-up of all
// compliance events. It is always rebuilt from the events, never patched.
type AircraftDirectiveStatus struct {
	ID                  string                        `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID              string                        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_directive_status_user_directive" json:"user_id"`
	DirectiveID         string                        `gorm:"column:directive_id;type:uuid;not null;uniqueIndex:idx_directive_status_user_directive" json:"directive_id"`
	AircraftID          string                        `gorm:"column:aircraft_id;type:uuid;index" json:"aircraft_id"`
	ApplicabilityStatus constants.ApplicabilityStatus `gorm:"column:applicability_status;type:varchar(20)" json:"applicability_status"`
	ComplianceStatus    constants.SummaryStatus       `gorm:"column:compliance_status;type:varchar(32);not null" json:"compliance_status"`
	FirstComplianceDate *time.Time                    `gorm:"column:first_compliance_date;type:date" json:"first_compliance_date"`
	LastComplianceDate  *time.Time                    `gorm:"column:last_compliance_date;type:date" json:"last_compliance_date"`
	FirstCounterValue   *float64                      `gorm:"column:first_counter_value" json:"first_counter_value"`
	LastCounterValue    *float64                      `gorm:"column:last_counter_value" json:"last_counter_value"`
	CounterType         constants.CounterType         `gorm:"column:counter_type;type:varchar(20)" json:"counter_type"`
	UpdatedAt           time.Time                     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AircraftDirectiveStatus) TableName() string {
	return "aircraft_directive_status"
}

func (s *AircraftDirectiveStatus) BeforeCreate(*gormlib.DB) error {
	assignID(&s.ID)
	return nil
}

// DirectiveHistory is an append-only audit entry.
type DirectiveHistory struct {
	ID          string                  `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID      string                  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	DirectiveID string                  `gorm:"column:directive_id;type:uuid;not null;index" json:"directive_id"`
	Action      constants.HistoryAction `gorm:"column:action;type:varchar(20);not null" json:"action"`
	ActionDate  time.Time               `gorm:"column:action_date;type:date" json:"action_date"`
	Details     string                  `gorm:"column:details;type:text" json:"details"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (DirectiveHistory) TableName() string {
	return "directive_history"
}

func (h *DirectiveHistory) BeforeCreate(*gormlib.DB) error {
	assignID(&h.ID)
	return nil
}
