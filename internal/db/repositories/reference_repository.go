package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetByID fetches a subscription owned by the user
func (r *SubscriptionRepository) GetByID(ctx context.Context, userID, id string) (*gormModels.Subscription, error) {
	var s gormModels.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", id, notFoundOr(err))
	}
	return &s, nil
}

type AircraftRepository struct {
	db *gorm.DB
}

func NewAircraftRepository(db *gorm.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

// GetByID fetches an aircraft owned by the user
func (r *AircraftRepository) GetByID(ctx context.Context, userID, id string) (*gormModels.Aircraft, error) {
	var a gormModels.Aircraft
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&a).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft %s: %w", id, notFoundOr(err))
	}
	return &a, nil
}

// ListIDs returns the ids of every aircraft the user owns
func (r *AircraftRepository) ListIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&gormModels.Aircraft{}).
		Where("user_id = ?", userID).
		Order("tail_number ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list aircraft: %w", err)
	}
	return ids, nil
}

// RaiseCounters moves the aircraft's counters up to the snapshot recorded in
// a maintenance log. Counters never move backwards.
func (r *AircraftRepository) RaiseCounters(ctx context.Context, userID, aircraftID string, log *gormModels.MaintenanceLog) error {
	columns := map[string]*float64{
		"hobbs":               log.Hobbs,
		"tach":                log.Tach,
		"airframe_total_time": log.AirframeTotalTime,
		"engine_total_time":   log.EngineTotalTime,
		"prop_total_time":     log.PropTotalTime,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for column, value := range columns {
			if value == nil {
				continue
			}
			err := tx.Model(&gormModels.Aircraft{}).
				Where("user_id = ? AND id = ?", userID, aircraftID).
				Where(fmt.Sprintf("(%s IS NULL OR %s < ?)", column, column), *value).
				Updates(map[string]interface{}{column: *value, "updated_at": time.Now()}).Error
			if err != nil {
				return fmt.Errorf("failed to raise %s: %w", column, err)
			}
		}
		return nil
	})
}
