package repositories

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// EventWriter is the write surface handed to a consistency-recompute
// mutation. It is bound to the mutation's transaction.
type EventWriter interface {
	CreateEvent(ctx context.Context, e *gormModels.ComplianceEvent) error
	UpdateEvent(ctx context.Context, e *gormModels.ComplianceEvent) error
	DeleteEvent(ctx context.Context, userID, id string) error
}

// RecomputeOutcome reports the summary rebuilt after a mutation. Err is the
// recompute failure, kept apart from the mutation's own error.
type RecomputeOutcome struct {
	Status   *gormModels.AircraftDirectiveStatus
	Err      error
	Duration time.Duration
}

// ComplianceRepository owns maintenance_directive_compliance and the derived
// aircraft_directive_status rows.
type ComplianceRepository struct {
	db    *gorm.DB
	locks *common.KeyedMutex
}

var _ EventWriter = (*ComplianceRepository)(nil)

// NewComplianceRepository creates the compliance repository. locks guards
// the read-recompute-write of each (user, directive) summary.
func NewComplianceRepository(db *gorm.DB, locks *common.KeyedMutex) *ComplianceRepository {
	if locks == nil {
		locks = common.NewKeyedMutex()
	}
	return &ComplianceRepository{db: db, locks: locks}
}

func (r *ComplianceRepository) withDB(tx *gorm.DB) *ComplianceRepository {
	return &ComplianceRepository{db: tx, locks: r.locks}
}

// GetEvent fetches a compliance event owned by the user
func (r *ComplianceRepository) GetEvent(ctx context.Context, userID, id string) (*gormModels.ComplianceEvent, error) {
	var e gormModels.ComplianceEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&e).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch compliance event %s: %w", id, notFoundOr(err))
	}
	return &e, nil
}

// ListEvents returns every compliance event of a directive by date
func (r *ComplianceRepository) ListEvents(ctx context.Context, userID, directiveID string) ([]gormModels.ComplianceEvent, error) {
	var events []gormModels.ComplianceEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND directive_id = ?", userID, directiveID).
		Order("compliance_date ASC").
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance events: %w", err)
	}
	return events, nil
}

// ListEventsByMaintenanceLog returns the compliance events linked to a log
func (r *ComplianceRepository) ListEventsByMaintenanceLog(ctx context.Context, userID, logID string) ([]gormModels.ComplianceEvent, error) {
	var events []gormModels.ComplianceEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND maintenance_log_id = ?", userID, logID).
		Order("compliance_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance events for log %s: %w", logID, err)
	}
	return events, nil
}

func (r *ComplianceRepository) CreateEvent(ctx context.Context, e *gormModels.ComplianceEvent) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to insert compliance event: %w", err)
	}
	return nil
}

func (r *ComplianceRepository) UpdateEvent(ctx context.Context, e *gormModels.ComplianceEvent) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", e.UserID).
		Select("*").
		Omit("created_at").
		Updates(e)
	if res.Error != nil {
		return fmt.Errorf("failed to update compliance event %s: %w", e.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update compliance event %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (r *ComplianceRepository) DeleteEvent(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&gormModels.ComplianceEvent{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete compliance event %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete compliance event %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDirectiveRecords removes every compliance event and the summary row
// of a directive that is being deleted.
func (r *ComplianceRepository) DeleteDirectiveRecords(ctx context.Context, userID, directiveID string) error {
	unlock := r.locks.Lock(statusKey(userID, directiveID))
	defer unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND directive_id = ?", userID, directiveID).
			Delete(&gormModels.ComplianceEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete compliance events: %w", err)
		}
		if err := tx.Where("user_id = ? AND directive_id = ?", userID, directiveID).
			Delete(&gormModels.AircraftDirectiveStatus{}).Error; err != nil {
			return fmt.Errorf("failed to delete directive status: %w", err)
		}
		return nil
	})
}

// GetStatus returns the summary row, or nil when none exists yet
func (r *ComplianceRepository) GetStatus(ctx context.Context, userID, directiveID string) (*gormModels.AircraftDirectiveStatus, error) {
	var s gormModels.AircraftDirectiveStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND directive_id = ?", userID, directiveID).
		First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch directive status: %w", err)
	}
	return &s, nil
}

// RecomputeStatus rebuilds the (user, directive) summary from every
// remaining compliance event and upserts it.
func (r *ComplianceRepository) RecomputeStatus(ctx context.Context, userID, directiveID string) (*gormModels.AircraftDirectiveStatus, error) {
	unlock := r.locks.Lock(statusKey(userID, directiveID))
	defer unlock()

	var result *gormModels.AircraftDirectiveStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var directive gormModels.Directive
		if err := tx.Where("user_id = ? AND id = ?", userID, directiveID).First(&directive).Error; err != nil {
			return fmt.Errorf("failed to load directive %s: %w", directiveID, notFoundOr(err))
		}

		var events []gormModels.ComplianceEvent
		if err := tx.Where("user_id = ? AND directive_id = ?", userID, directiveID).Find(&events).Error; err != nil {
			return fmt.Errorf("failed to load compliance events: %w", err)
		}

		summary := compliance.Summarize(&directive, events)

		var row gormModels.AircraftDirectiveStatus
		err := tx.Where("user_id = ? AND directive_id = ?", userID, directiveID).First(&row).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			row = gormModels.AircraftDirectiveStatus{
				UserID:              userID,
				DirectiveID:         directiveID,
				AircraftID:          directive.AircraftID,
				ApplicabilityStatus: constants.ApplicabilityApplicable,
			}
			summary.Apply(&row)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert directive status: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to fetch directive status: %w", err)
		default:
			summary.Apply(&row)
			row.UpdatedAt = time.Now()
			if err := tx.Select("*").Omit("id").Where("id = ?", row.ID).Updates(&row).Error; err != nil {
				return fmt.Errorf("failed to update directive status: %w", err)
			}
		}

		result = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WithConsistencyRecompute runs mutate inside a transaction and, once it has
// committed, re-derives the directive's summary from the surviving events.
// A mutate error aborts and is returned; a recompute error is reported in
// the outcome so the committed write stands.
func (r *ComplianceRepository) WithConsistencyRecompute(ctx context.Context, userID, directiveID string, mutate func(w EventWriter) error) (RecomputeOutcome, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return mutate(r.withDB(tx))
	})
	if err != nil {
		return RecomputeOutcome{}, err
	}

	start := time.Now()
	status, err := r.RecomputeStatus(ctx, userID, directiveID)
	return RecomputeOutcome{Status: status, Err: err, Duration: time.Since(start)}, nil
}

func statusKey(userID, directiveID string) string {
	return userID + ":" + directiveID
}
