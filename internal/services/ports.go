package services

import (
	"context"
	"time"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// NotificationStore is the notification side of the obligation store.
type NotificationStore interface {
	GetByID(ctx context.Context, userID, id string) (*gormModels.Notification, error)
	Create(ctx context.Context, n *gormModels.Notification) error
	Save(ctx context.Context, n *gormModels.Notification) error
	MarkCompleted(ctx context.Context, userID, id string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
	ListByParent(ctx context.Context, userID string, parent repositories.ParentColumn, parentID string, includeCompleted bool) ([]gormModels.Notification, error)
	ListOpen(ctx context.Context, userID, aircraftID string) ([]gormModels.Notification, error)
	DeleteByParent(ctx context.Context, userID string, parent repositories.ParentColumn, parentID string) (int64, error)
	Detach(ctx context.Context, userID, id string, parent repositories.ParentColumn) error
}

type SubscriptionStore interface {
	GetByID(ctx context.Context, userID, id string) (*gormModels.Subscription, error)
}

type DirectiveStore interface {
	GetByID(ctx context.Context, userID, id string) (*gormModels.Directive, error)
	Create(ctx context.Context, d *gormModels.Directive) error
	Save(ctx context.Context, d *gormModels.Directive) error
	UpdateStatus(ctx context.Context, userID, id string, status constants.DirectiveStatus) error
	Delete(ctx context.Context, userID, id string) error
}

type HistoryStore interface {
	Append(ctx context.Context, entry *gormModels.DirectiveHistory) error
	ListByDirective(ctx context.Context, userID, directiveID string) ([]gormModels.DirectiveHistory, error)
}

// CompliancePersistencePort owns compliance events and their derived
// summary. Every event write goes through WithConsistencyRecompute so the
// summary is re-derived from the surviving events.
type CompliancePersistencePort interface {
	GetEvent(ctx context.Context, userID, id string) (*gormModels.ComplianceEvent, error)
	ListEvents(ctx context.Context, userID, directiveID string) ([]gormModels.ComplianceEvent, error)
	ListEventsByMaintenanceLog(ctx context.Context, userID, logID string) ([]gormModels.ComplianceEvent, error)
	GetStatus(ctx context.Context, userID, directiveID string) (*gormModels.AircraftDirectiveStatus, error)
	RecomputeStatus(ctx context.Context, userID, directiveID string) (*gormModels.AircraftDirectiveStatus, error)
	DeleteDirectiveRecords(ctx context.Context, userID, directiveID string) error
	WithConsistencyRecompute(ctx context.Context, userID, directiveID string, mutate func(w repositories.EventWriter) error) (repositories.RecomputeOutcome, error)
}

type MaintenanceLogStore interface {
	GetByID(ctx context.Context, userID, id string) (*gormModels.MaintenanceLog, error)
	Create(ctx context.Context, m *gormModels.MaintenanceLog) error
	Save(ctx context.Context, m *gormModels.MaintenanceLog) error
	Delete(ctx context.Context, userID, id string) error
}

type AircraftStore interface {
	ListIDs(ctx context.Context, userID string) ([]string, error)
	RaiseCounters(ctx context.Context, userID, aircraftID string, log *gormModels.MaintenanceLog) error
}

// CounterReader is the Counter Snapshot Provider as seen by the services.
type CounterReader interface {
	GetCounters(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error)
}

// CounterInvalidator is implemented by caching counter providers.
type CounterInvalidator interface {
	Invalidate(userID, aircraftID string)
}

var (
	_ NotificationStore         = (*repositories.NotificationRepository)(nil)
	_ SubscriptionStore         = (*repositories.SubscriptionRepository)(nil)
	_ DirectiveStore            = (*repositories.DirectiveRepository)(nil)
	_ HistoryStore              = (*repositories.DirectiveHistoryRepository)(nil)
	_ CompliancePersistencePort = (*repositories.ComplianceRepository)(nil)
	_ MaintenanceLogStore       = (*repositories.MaintenanceLogRepository)(nil)
	_ AircraftStore             = (*repositories.AircraftRepository)(nil)
)
