package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// NotificationService handles user-facing notification CRUD and the
// notification completion state machine.
type NotificationService struct {
	notifications NotificationStore
	subscriptions SubscriptionStore
	clock         compliance.Clock
	metrics       *metrics.MetricsRegistry
	defaults      alertDefaults
}

func NewNotificationService(
	notifications NotificationStore,
	subscriptions SubscriptionStore,
	clock compliance.Clock,
	m *metrics.MetricsRegistry,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		subscriptions: subscriptions,
		clock:         clock,
		metrics:       m,
		defaults:      defaultAlerts(),
	}
}

// WithAlertDefaults overrides the thresholds stamped on new notifications.
func (s *NotificationService) WithAlertDefaults(days int, hours float64) *NotificationService {
	s.defaults = s.defaults.with(days, hours)
	return s
}

// CompletionResult is the state a caller needs to refresh after completion.
type CompletionResult struct {
	Completed *gormModels.Notification `json:"completed"`
	Successor *gormModels.Notification `json:"successor,omitempty"`
}

// CompleteNotification closes a notification and, when it recurs, inserts
// its next occurrence. The completion is never rolled back: if the
// successor cannot be created the result is still returned together with a
// SUCCESSOR_NOT_CREATED error.
func (s *NotificationService) CompleteNotification(ctx context.Context, userID, id string) (*CompletionResult, error) {
	n, err := s.notifications.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}
	if n.IsCompleted {
		return nil, validationError("notification %s is already completed", id)
	}

	// Step 1: close the current row
	now := s.clock.Now()
	if err := s.notifications.MarkCompleted(ctx, userID, id, now); err != nil {
		return nil, storeError(err)
	}
	n.IsCompleted = true
	n.CompletedAt = &now
	s.metrics.NotificationCompleted()

	result := &CompletionResult{Completed: n}

	// Steps 2-5: spawn the next occurrence, if any
	successor, err := s.spawnSuccessor(ctx, userID, n, compliance.CivilDate(now))
	if err != nil {
		logging.Error("Failed to create next notification",
			"user_id", userID,
			"notification_id", id,
			"operation", constants.OpSpawnSuccessor,
			"error", err,
		)
		s.metrics.SecondaryFailure(constants.OpSpawnSuccessor)
		return result, newError(constants.ErrCodeSuccessorFailed, err)
	}
	result.Successor = successor

	return result, nil
}

// spawnSuccessor inserts the next occurrence of a completed notification.
// It returns nil when the notification is terminal.
func (s *NotificationService) spawnSuccessor(ctx context.Context, userID string, n *gormModels.Notification, today time.Time) (*gormModels.Notification, error) {
	var sub *gormModels.Subscription
	if n.SubscriptionID != nil && !n.Recurrence.Active() {
		found, err := s.subscriptions.GetByID(ctx, userID, *n.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve subscription recurrence: %w", err)
		}
		sub = found
	}
	recurrence := compliance.EffectiveRecurrence(n, sub)

	next := n.Successor()
	switch n.DueBasis {
	case constants.DueBasisDate:
		if n.InitialDate == nil {
			return nil, nil
		}
		due, ok := compliance.AddRecurrence(*n.InitialDate, recurrence)
		if !ok {
			return nil, nil
		}
		next.InitialDate = &due

	case constants.DueBasisCounter:
		if n.InitialCounterValue == nil {
			return nil, nil
		}
		due, ok := compliance.AddCounterStep(*n.InitialCounterValue, n.CounterStep)
		if !ok {
			return nil, nil
		}
		next.InitialCounterValue = &due
		if !recurrence.Active() {
			next.InitialDate = &today
		}

	default:
		return nil, nil
	}

	if err := s.notifications.Create(ctx, next); err != nil {
		return nil, err
	}
	s.metrics.NotificationSpawned(string(next.DueBasis))

	logging.Info("Next notification created",
		"user_id", userID,
		"completed_id", n.ID,
		"notification_id", next.ID,
		"due_basis", next.DueBasis,
	)
	return next, nil
}

// GetNotification fetches one notification
func (s *NotificationService) GetNotification(ctx context.Context, userID, id string) (*gormModels.Notification, error) {
	n, err := s.notifications.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}
	return n, nil
}

// CreateNotification stores a user-authored notification
func (s *NotificationService) CreateNotification(ctx context.Context, userID string, n *gormModels.Notification) (*gormModels.Notification, error) {
	n.ID = ""
	n.UserID = userID
	n.IsCompleted = false
	n.CompletedAt = nil
	n.UserModified = false
	// Only subscription reminders may be authored with a back reference;
	// every other parent link comes from automation.
	n.DirectiveID = nil
	n.MaintenanceLogID = nil
	n.EquipmentID = nil
	if n.Type == "" {
		n.Type = constants.NotificationTypeGeneral
	}
	s.defaults.stamp(n)

	if err := validateNotification(n); err != nil {
		return nil, err
	}
	if n.SubscriptionID != nil {
		if _, err := s.subscriptions.GetByID(ctx, userID, *n.SubscriptionID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, validationError("subscription %s does not exist", *n.SubscriptionID)
			}
			return nil, storeError(err)
		}
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, storeError(err)
	}
	return n, nil
}

// UpdateNotification applies a user edit. Editing a system-generated row
// freezes it so automation no longer overwrites or deletes it.
func (s *NotificationService) UpdateNotification(ctx context.Context, userID, id string, edit *gormModels.Notification) (*gormModels.Notification, error) {
	n, err := s.notifications.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}

	n.Description = edit.Description
	if edit.Type != "" {
		n.Type = edit.Type
	}
	n.DueBasis = edit.DueBasis
	n.InitialDate = edit.InitialDate
	n.Recurrence = edit.Recurrence
	n.AlertDays = edit.AlertDays
	n.CounterType = edit.CounterType
	n.InitialCounterValue = edit.InitialCounterValue
	n.CounterStep = edit.CounterStep
	n.AlertHours = edit.AlertHours
	s.defaults.stamp(n)

	if n.IsSystemGenerated() {
		n.UserModified = true
	}

	if err := validateNotification(n); err != nil {
		return nil, err
	}
	if err := s.notifications.Save(ctx, n); err != nil {
		return nil, storeError(err)
	}
	return n, nil
}

// DeleteNotification removes a notification on explicit user request,
// frozen or not.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id string) error {
	if err := s.notifications.Delete(ctx, userID, id); err != nil {
		return storeError(err)
	}
	return nil
}

func validateNotification(n *gormModels.Notification) error {
	if !n.Type.Valid() {
		return validationError("unknown notification type %q", n.Type)
	}
	if n.AlertDays != nil && *n.AlertDays < 0 {
		return validationError("alert_days must not be negative")
	}
	if n.AlertHours != nil && *n.AlertHours < 0 {
		return validationError("alert_hours must not be negative")
	}

	switch n.DueBasis {
	case constants.DueBasisDate:
		if n.InitialDate == nil {
			return validationError("initial_date is required for date-based notifications")
		}
		if !n.Recurrence.Valid() {
			return validationError("unknown recurrence %q", n.Recurrence)
		}
		due := compliance.CivilDate(*n.InitialDate)
		n.InitialDate = &due
	case constants.DueBasisCounter:
		if !n.CounterType.Valid() {
			return validationError("counter_type is required for counter-based notifications")
		}
		if n.InitialCounterValue == nil {
			return validationError("initial_counter_value is required for counter-based notifications")
		}
		if n.CounterStep != nil && *n.CounterStep < 0 {
			return validationError("counter_step must not be negative")
		}
	default:
		return validationError("unknown due basis %q", n.DueBasis)
	}
	return nil
}
