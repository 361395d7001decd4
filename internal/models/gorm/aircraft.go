package gorm

import (
	"infinite-experiment/hangar/internal/constants"
	"time"

	gormlib "gorm.io/gorm"
)

// Aircraft holds the live usage counters for one airframe.
type Aircraft struct {
	ID                string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID            string    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	TailNumber        string    `gorm:"column:tail_number;type:varchar(20)" json:"tail_number"`
	Hobbs             float64   `gorm:"column:hobbs;default:0" json:"hobbs"`
	Tach              float64   `gorm:"column:tach;default:0" json:"tach"`
	AirframeTotalTime float64   `gorm:"column:airframe_total_time;default:0" json:"airframe_total_time"`
	EngineTotalTime   float64   `gorm:"column:engine_total_time;default:0" json:"engine_total_time"`
	PropTotalTime     float64   `gorm:"column:prop_total_time;default:0" json:"prop_total_time"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Aircraft) TableName() string {
	return "aircraft"
}

func (a *Aircraft) BeforeCreate(*gormlib.DB) error {
	assignID(&a.ID)
	return nil
}

// Subscription is a recurring reminder template; linked notifications defer
// to its recurrence when their own is None.
type Subscription struct {
	ID         string               `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID     string               `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	AircraftID string               `gorm:"column:aircraft_id;type:uuid;index" json:"aircraft_id"`
	Name       string               `gorm:"column:name;type:text" json:"name"`
	Recurrence constants.Recurrence `gorm:"column:recurrence;type:varchar(20);not null" json:"recurrence"`
	IsActive   bool                 `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(*gormlib.DB) error {
	assignID(&s.ID)
	return nil
}
