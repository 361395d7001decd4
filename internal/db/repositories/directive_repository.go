package repositories

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

type DirectiveRepository struct {
	db *gorm.DB
}

// NewDirectiveRepository creates a new GORM-based directive repository
func NewDirectiveRepository(db *gorm.DB) *DirectiveRepository {
	return &DirectiveRepository{db: db}
}

// GetByID fetches a directive owned by the user
func (r *DirectiveRepository) GetByID(ctx context.Context, userID, id string) (*gormModels.Directive, error) {
	var d gormModels.Directive
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&d).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directive %s: %w", id, notFoundOr(err))
	}
	return &d, nil
}

func (r *DirectiveRepository) Create(ctx context.Context, d *gormModels.Directive) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to insert directive: %w", err)
	}
	return nil
}

// Save writes every column of an existing directive
func (r *DirectiveRepository) Save(ctx context.Context, d *gormModels.Directive) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", d.UserID).
		Select("*").
		Omit("created_at").
		Updates(d)
	if res.Error != nil {
		return fmt.Errorf("failed to update directive %s: %w", d.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update directive %s: %w", d.ID, ErrNotFound)
	}
	return nil
}

// UpdateStatus changes only the lifecycle status of a directive
func (r *DirectiveRepository) UpdateStatus(ctx context.Context, userID, id string, status constants.DirectiveStatus) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Directive{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"directive_status": status,
			"updated_at":       time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update status of directive %s: %w", id, err)
	}
	return nil
}

func (r *DirectiveRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&gormModels.Directive{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete directive %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete directive %s: %w", id, ErrNotFound)
	}
	return nil
}

type DirectiveHistoryRepository struct {
	db *gorm.DB
}

// NewDirectiveHistoryRepository creates the append-only history repository
func NewDirectiveHistoryRepository(db *gorm.DB) *DirectiveHistoryRepository {
	return &DirectiveHistoryRepository{db: db}
}

// Append writes a new history entry. There is no update or delete path.
func (r *DirectiveHistoryRepository) Append(ctx context.Context, entry *gormModels.DirectiveHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append directive history: %w", err)
	}
	return nil
}

// ListByDirective returns a directive's history in the order it was written
func (r *DirectiveHistoryRepository) ListByDirective(ctx context.Context, userID, directiveID string) ([]gormModels.DirectiveHistory, error) {
	var entries []gormModels.DirectiveHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND directive_id = ?", userID, directiveID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list directive history: %w", err)
	}
	return entries, nil
}

type MaintenanceLogRepository struct {
	db *gorm.DB
}

func NewMaintenanceLogRepository(db *gorm.DB) *MaintenanceLogRepository {
	return &MaintenanceLogRepository{db: db}
}

func (r *MaintenanceLogRepository) GetByID(ctx context.Context, userID, id string) (*gormModels.MaintenanceLog, error) {
	var m gormModels.MaintenanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&m).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch maintenance log %s: %w", id, notFoundOr(err))
	}
	return &m, nil
}

func (r *MaintenanceLogRepository) Create(ctx context.Context, m *gormModels.MaintenanceLog) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert maintenance log: %w", err)
	}
	return nil
}

func (r *MaintenanceLogRepository) Save(ctx context.Context, m *gormModels.MaintenanceLog) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", m.UserID).
		Select("*").
		Omit("created_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("failed to update maintenance log %s: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update maintenance log %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

func (r *MaintenanceLogRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&gormModels.MaintenanceLog{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete maintenance log %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete maintenance log %s: %w", id, ErrNotFound)
	}
	return nil
}
