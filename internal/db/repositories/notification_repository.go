package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// ParentColumn names the back reference a system-generated notification
// carries to its originating record.
type ParentColumn string

const (
	ParentSubscription   ParentColumn = "subscription_id"
	ParentDirective      ParentColumn = "directive_id"
	ParentMaintenanceLog ParentColumn = "maintenance_log_id"
	ParentEquipment      ParentColumn = "equipment_id"
)

type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new GORM-based notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// GetByID fetches a notification owned by the user
func (r *NotificationRepository) GetByID(ctx context.Context, userID, id string) (*gormModels.Notification, error) {
	var n gormModels.Notification

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&n).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, notFoundOr(err))
	}

	return &n, nil
}

// Create inserts a notification and fills in its generated fields
func (r *NotificationRepository) Create(ctx context.Context, n *gormModels.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// Save writes every column of an existing notification
func (r *NotificationRepository) Save(ctx context.Context, n *gormModels.Notification) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", n.UserID).
		Select("*").
		Omit("created_at").
		Updates(n)
	if res.Error != nil {
		return fmt.Errorf("failed to update notification %s: %w", n.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update notification %s: %w", n.ID, ErrNotFound)
	}
	return nil
}

// MarkCompleted closes an open notification. When the row is already
// completed it is left untouched and ErrAlreadyCompleted is returned, so
// only one caller ever wins a completion.
func (r *NotificationRepository) MarkCompleted(ctx context.Context, userID, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Notification{}).
		Where("user_id = ? AND id = ? AND is_completed = ?", userID, id, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to complete notification %s: %w", id, ErrAlreadyCompleted)
	}
	return nil
}

// Delete removes a single notification
func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&gormModels.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListByParent returns notifications linked to a parent record, oldest first
func (r *NotificationRepository) ListByParent(ctx context.Context, userID string, parent ParentColumn, parentID string, includeCompleted bool) ([]gormModels.Notification, error) {
	var ns []gormModels.Notification

	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(fmt.Sprintf("%s = ?", parent), parentID)
	if !includeCompleted {
		q = q.Where("is_completed = ?", false)
	}

	if err := q.Order("created_at ASC").Order("id ASC").Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications by %s: %w", parent, err)
	}
	return ns, nil
}

// ListOpen returns uncompleted notifications, optionally for one aircraft
func (r *NotificationRepository) ListOpen(ctx context.Context, userID, aircraftID string) ([]gormModels.Notification, error) {
	var ns []gormModels.Notification

	q := r.db.WithContext(ctx).Where("user_id = ? AND is_completed = ?", userID, false)
	if aircraftID != "" {
		q = q.Where("aircraft_id = ?", aircraftID)
	}

	if err := q.Order("created_at ASC").Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("failed to list open notifications: %w", err)
	}
	return ns, nil
}

// DeleteByParent removes every notification linked to a parent, frozen
// rows included. Only explicit full-stop overrides call this.
func (r *NotificationRepository) DeleteByParent(ctx context.Context, userID string, parent ParentColumn, parentID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(fmt.Sprintf("%s = ?", parent), parentID).
		Delete(&gormModels.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications by %s: %w", parent, res.Error)
	}
	return res.RowsAffected, nil
}

// Detach clears the back reference of a notification so it survives its
// parent as a standalone reminder
func (r *NotificationRepository) Detach(ctx context.Context, userID, id string, parent ParentColumn) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Notification{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update(string(parent), nil).Error
	if err != nil {
		return fmt.Errorf("failed to detach notification %s: %w", id, err)
	}
	return nil
}
