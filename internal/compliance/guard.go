package compliance

import (
	"errors"
	"fmt"
	"infinite-experiment/hangar/internal/constants"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"sort"
)

// ManagementState tags a notification as owned by automation or by the user.
type ManagementState int

const (
	Managed ManagementState = iota
	Frozen
)

func (s ManagementState) String() string {
	if s == Frozen {
		return "frozen"
	}
	return "managed"
}

// ErrFrozen is returned when automation tries to touch a user-modified row.
var ErrFrozen = errors.New("notification was modified by the user")

// StateOf returns the management state of n.
func StateOf(n *gormModels.Notification) ManagementState {
	if n.UserModified {
		return Frozen
	}
	return Managed
}

// RequireManaged is the guard every automated write path calls before it
// mutates or deletes n.
func RequireManaged(n *gormModels.Notification) error {
	if StateOf(n) == Frozen {
		return fmt.Errorf("notification %s: %w", n.ID, ErrFrozen)
	}
	return nil
}

// SplitByState partitions notifications into managed and frozen rows.
func SplitByState(ns []gormModels.Notification) (managed, frozen []gormModels.Notification) {
	for _, n := range ns {
		if StateOf(&n) == Frozen {
			frozen = append(frozen, n)
		} else {
			managed = append(managed, n)
		}
	}
	return managed, frozen
}

// SortByDue orders notifications by earliest due value. Date-basis rows sort
// before counter-basis rows; ties fall back to creation time then id.
func SortByDue(ns []gormModels.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		a, b := &ns[i], &ns[j]
		if a.DueBasis != b.DueBasis {
			return a.DueBasis == constants.DueBasisDate
		}
		if cmp := compareDue(a, b); cmp != 0 {
			return cmp < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func compareDue(a, b *gormModels.Notification) int {
	da, db := CurrentDue(a), CurrentDue(b)
	switch {
	case da.Date != nil && db.Date != nil:
		if da.Date.Before(*db.Date) {
			return -1
		}
		if db.Date.Before(*da.Date) {
			return 1
		}
	case da.Counter != nil && db.Counter != nil:
		if *da.Counter < *db.Counter {
			return -1
		}
		if *db.Counter < *da.Counter {
			return 1
		}
	case da.Date != nil || da.Counter != nil:
		return -1
	case db.Date != nil || db.Counter != nil:
		return 1
	}
	return 0
}
