package gorm

import (
	"infinite-experiment/hangar/internal/constants"
	"time"

	gormlib "gorm.io/gorm"
)

// Notification is a reminder with either a calendar or a counter due
// condition. Rows carrying a back reference are system generated and stay in
// lockstep with their parent until a user edits them (UserModified).
type Notification struct {
	ID          string                     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID      string                     `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	AircraftID  string                     `gorm:"column:aircraft_id;type:uuid;index" json:"aircraft_id"`
	Description string                     `gorm:"column:description;type:text" json:"description"`
	Type        constants.NotificationType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	DueBasis    constants.DueBasis         `gorm:"column:due_basis;type:varchar(20);not null" json:"due_basis"`

	// Date basis
	InitialDate *time.Time           `gorm:"column:initial_date;type:date" json:"initial_date"`
	Recurrence  constants.Recurrence `gorm:"column:recurrence;type:varchar(20)" json:"recurrence"`
	AlertDays   *int                 `gorm:"column:alert_days" json:"alert_days"`

	// Counter basis
	CounterType         constants.CounterType `gorm:"column:counter_type;type:varchar(20)" json:"counter_type"`
	InitialCounterValue *float64              `gorm:"column:initial_counter_value" json:"initial_counter_value"`
	CounterStep         *float64              `gorm:"column:counter_step" json:"counter_step"`
	AlertHours          *float64              `gorm:"column:alert_hours" json:"alert_hours"`

	IsCompleted bool       `gorm:"column:is_completed;default:false;index" json:"is_completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`

	SubscriptionID   *string `gorm:"column:subscription_id;type:uuid;index" json:"subscription_id"`
	DirectiveID      *string `gorm:"column:directive_id;type:uuid;index" json:"directive_id"`
	MaintenanceLogID *string `gorm:"column:maintenance_log_id;type:uuid;index" json:"maintenance_log_id"`
	EquipmentID      *string `gorm:"column:equipment_id;type:uuid;index" json:"equipment_id"`
	UserModified     bool    `gorm:"column:user_modified;default:false" json:"user_modified"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(*gormlib.DB) error {
	assignID(&n.ID)
	return nil
}

// IsSystemGenerated reports whether the row was derived from a parent record.
func (n *Notification) IsSystemGenerated() bool {
	return n.SubscriptionID != nil || n.DirectiveID != nil || n.MaintenanceLogID != nil || n.EquipmentID != nil
}

// Successor returns a fresh, uncompleted copy of n with a new identity. Every
// other field, back references and UserModified included, is carried over.
func (n *Notification) Successor() *Notification {
	next := *n
	next.ID = ""
	next.IsCompleted = false
	next.CompletedAt = nil
	next.CreatedAt = time.Time{}
	next.UpdatedAt = time.Time{}
	next.InitialDate = copyTime(n.InitialDate)
	next.AlertDays = copyInt(n.AlertDays)
	next.InitialCounterValue = copyFloat(n.InitialCounterValue)
	next.CounterStep = copyFloat(n.CounterStep)
	next.AlertHours = copyFloat(n.AlertHours)
	next.SubscriptionID = copyString(n.SubscriptionID)
	next.DirectiveID = copyString(n.DirectiveID)
	next.MaintenanceLogID = copyString(n.MaintenanceLogID)
	next.EquipmentID = copyString(n.EquipmentID)
	return &next
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
