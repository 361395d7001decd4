package gorm

import (
	"github.com/google/uuid"
)

// assignID gives a row a UUID primary key when the caller did not set one.
// Keys are generated client side so the same models work on Postgres and
// SQLite.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
