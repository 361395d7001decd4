package gorm

import (
	"infinite-experiment/hangar/internal/constants"
	"time"

	gormlib "gorm.io/gorm"
)

// MaintenanceLog is a performed-work record with a counter snapshot. When
// IsRecurringTask is set it keeps linked notifications for the next due time.
type MaintenanceLog struct {
	ID                string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID            string    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	AircraftID        string    `gorm:"column:aircraft_id;type:uuid;index" json:"aircraft_id"`
	Date              time.Time `gorm:"column:date;type:date;not null" json:"date"`
	Description       string    `gorm:"column:description;type:text" json:"description"`
	Hobbs             *float64  `gorm:"column:hobbs" json:"hobbs"`
	Tach              *float64  `gorm:"column:tach" json:"tach"`
	AirframeTotalTime *float64  `gorm:"column:airframe_total_time" json:"airframe_total_time"`
	EngineTotalTime   *float64  `gorm:"column:engine_total_time" json:"engine_total_time"`
	PropTotalTime     *float64  `gorm:"column:prop_total_time" json:"prop_total_time"`

	IsRecurringTask     bool                   `gorm:"column:is_recurring_task;default:false" json:"is_recurring_task"`
	IntervalType        constants.IntervalType `gorm:"column:interval_type;type:varchar(20)" json:"interval_type"`
	IntervalMonths      *int                   `gorm:"column:interval_months" json:"interval_months"`
	IntervalHours       *float64               `gorm:"column:interval_hours" json:"interval_hours"`
	IntervalCounterType constants.CounterType  `gorm:"column:interval_counter_type;type:varchar(20)" json:"interval_counter_type"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}

func (m *MaintenanceLog) BeforeCreate(*gormlib.DB) error {
	assignID(&m.ID)
	return nil
}

// CounterValue returns the snapshot value recorded for a counter.
func (m *MaintenanceLog) CounterValue(c constants.CounterType) *float64 {
	switch c {
	case constants.CounterHobbs:
		return m.Hobbs
	case constants.CounterTach:
		return m.Tach
	case constants.CounterAirframeTT:
		return m.AirframeTotalTime
	case constants.CounterEngineTT:
		return m.EngineTotalTime
	case constants.CounterPropTT:
		return m.PropTotalTime
	}
	return nil
}

// NeededBases returns the due bases the log's recurring task requires.
func (m *MaintenanceLog) NeededBases() []constants.DueBasis {
	if !m.IsRecurringTask {
		return nil
	}
	return m.IntervalType.Bases()
}
