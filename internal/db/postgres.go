package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sqlx.DB

// InitSQLX opens the sqlx handle used for read paths and health checks,
// retrying while the database comes up.
func InitSQLX(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		driver = "sqlite3"
	}

	var err error
	for i := 0; i < 10; i++ {
		DB, err = sqlx.Connect(driver, dsn)
		if err == nil {
			return DB, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect with sqlx (%s): %w", driver, err)
}
