package main

import (
	"log"

	"infinite-experiment/hangar/internal/config"
	"infinite-experiment/hangar/internal/db"
	"infinite-experiment/hangar/internal/logging"

	"gorm.io/gorm"
)

// Applies schema migrations and exits.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	var gormDB *gorm.DB
	switch cfg.DBDriver {
	case "sqlite", "sqlite3":
		gormDB, err = db.InitSQLiteORM(cfg.SQLitePath)
	default:
		gormDB, err = db.InitPostgresORM(cfg.Postgres.DSN())
	}
	if err != nil {
		logging.Fatal("Failed to open database", "error", err.Error())
	}

	if err := db.Migrate(gormDB); err != nil {
		logging.Fatal("Migration failed", "error", err.Error())
	}
	logging.Info("Database is up to date", "driver", cfg.DBDriver)
}
