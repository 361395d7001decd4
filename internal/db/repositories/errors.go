package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a (user_id, id) lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyCompleted is returned when a completion finds the row already
// closed.
var ErrAlreadyCompleted = errors.New("already completed")

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
