package db

import (
	"fmt"

	"infinite-experiment/hangar/internal/logging"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&gormModels.Aircraft{},
		&gormModels.Subscription{},
		&gormModels.Directive{},
		&gormModels.MaintenanceLog{},
		&gormModels.Notification{},
		&gormModels.ComplianceEvent{},
		&gormModels.AircraftDirectiveStatus{},
		&gormModels.DirectiveHistory{},
	}
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202401150001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				models := Models()
				for i := len(models) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropTable(models[i]); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			// Completion sweeps filter on (user_id, directive_id, is_completed)
			ID: "202403020001_notification_directive_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_directive_open ON notifications (user_id, directive_id, is_completed)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_notifications_directive_open").Error
			},
		},
	}
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())

	m.InitSchema(func(tx *gorm.DB) error {
		logging.Info("clean database detected, running full schema initialization")
		if err := tx.AutoMigrate(Models()...); err != nil {
			return err
		}
		return tx.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_directive_open ON notifications (user_id, directive_id, is_completed)").Error
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logging.Info("Schema migrations applied")
	return nil
}
