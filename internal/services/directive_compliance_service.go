package services

import (
	"context"
	"fmt"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// DirectiveComplianceService records directive compliance and keeps the
// summary, history and linked notifications consistent with it.
type DirectiveComplianceService struct {
	directives    DirectiveStore
	history       HistoryStore
	compliance    CompliancePersistencePort
	notifications NotificationStore
	clock         compliance.Clock
	metrics       *metrics.MetricsRegistry
	defaults      alertDefaults
}

func NewDirectiveComplianceService(
	directives DirectiveStore,
	history HistoryStore,
	port CompliancePersistencePort,
	notifications NotificationStore,
	clock compliance.Clock,
	m *metrics.MetricsRegistry,
) *DirectiveComplianceService {
	return &DirectiveComplianceService{
		directives:    directives,
		history:       history,
		compliance:    port,
		notifications: notifications,
		clock:         clock,
		metrics:       m,
		defaults:      defaultAlerts(),
	}
}

// WithAlertDefaults overrides the thresholds stamped on spawned notifications.
func (s *DirectiveComplianceService) WithAlertDefaults(days int, hours float64) *DirectiveComplianceService {
	s.defaults = s.defaults.with(days, hours)
	return s
}

// SaveComplianceInput is one compliance save. An Event with an ID edits
// that event; otherwise a new event is created.
type SaveComplianceInput struct {
	DirectiveID            string
	Event                  *gormModels.ComplianceEvent
	MarkDirectiveCompleted bool
}

type SaveComplianceResult struct {
	Event                 *gormModels.ComplianceEvent         `json:"event"`
	Status                *gormModels.AircraftDirectiveStatus `json:"status,omitempty"`
	CompletedNotification *gormModels.Notification            `json:"completed_notification,omitempty"`
	NextNotification      *gormModels.Notification            `json:"next_notification,omitempty"`
	DirectiveCompleted    bool                                `json:"directive_completed"`
	RemovedNotifications  int64                               `json:"removed_notifications"`
	Warnings              []string                            `json:"warnings,omitempty"`
}

// SaveDirectiveCompliance upserts a compliance event. The event write is the
// primary effect; history, summary and notification bookkeeping are best
// effort and reported as warnings.
func (s *DirectiveComplianceService) SaveDirectiveCompliance(ctx context.Context, userID string, in SaveComplianceInput) (*SaveComplianceResult, error) {
	if in.Event == nil {
		return nil, validationError("compliance event is required")
	}

	directive, err := s.directives.GetByID(ctx, userID, in.DirectiveID)
	if err != nil {
		return nil, storeError(err)
	}

	event := in.Event
	event.UserID = userID
	event.DirectiveID = directive.ID
	if err := validateComplianceEvent(event); err != nil {
		return nil, err
	}

	completeDirective, err := wantsDirectiveCompletion(directive, event, in.MarkDirectiveCompleted)
	if err != nil {
		return nil, err
	}

	var prior *gormModels.ComplianceEvent
	if event.ID != "" {
		prior, err = s.compliance.GetEvent(ctx, userID, event.ID)
		if err != nil {
			return nil, storeError(err)
		}
		if prior.DirectiveID != directive.ID {
			return nil, validationError("compliance event %s belongs to another directive", event.ID)
		}
		event.CreatedAt = prior.CreatedAt
		if event.MaintenanceLogID == nil {
			event.MaintenanceLogID = prior.MaintenanceLogID
		}
	}

	// Steps 1 and 3: write the event, then rebuild the summary from every
	// surviving event
	outcome, err := s.compliance.WithConsistencyRecompute(ctx, userID, directive.ID, func(w repositories.EventWriter) error {
		if prior == nil {
			return w.CreateEvent(ctx, event)
		}
		return w.UpdateEvent(ctx, event)
	})
	if err != nil {
		return nil, storeError(err)
	}
	s.metrics.ComplianceSaved(string(event.ComplianceStatus))
	s.metrics.ObserveRecompute(outcome.Duration.Seconds())

	fx := newEffects(s.metrics, userID)
	result := &SaveComplianceResult{Event: event, Status: outcome.Status}
	if outcome.Err != nil {
		fx.fail(constants.OpSummaryRecompute, outcome.Err, "directive_id", directive.ID)
	}

	becameComplied := event.ComplianceStatus == constants.ComplianceComplied &&
		(prior == nil || prior.ComplianceStatus != constants.ComplianceComplied)
	redated := prior != nil &&
		prior.ComplianceStatus == constants.ComplianceComplied &&
		event.ComplianceStatus == constants.ComplianceComplied &&
		!compliance.SameDay(prior.ComplianceDate, event.ComplianceDate)

	// Step 2: audit trail
	if becameComplied || redated {
		if err := s.appendComplianceHistory(ctx, userID, event); err != nil {
			fx.fail(constants.OpHistoryAppend, err, "directive_id", directive.ID)
		}
	}

	// Step 4: advance the directive's notifications
	if becameComplied {
		result.CompletedNotification, result.NextNotification = s.advanceNotifications(ctx, fx, userID, directive, event)
	}

	// Step 5: full stop for the directive
	if completeDirective {
		s.completeDirective(ctx, fx, userID, directive, result)
	}

	result.Warnings = fx.Warnings()

	logging.Info("Directive compliance saved",
		"user_id", userID,
		"directive_id", directive.ID,
		"event_id", event.ID,
		"status", event.ComplianceStatus,
		"directive_completed", result.DirectiveCompleted,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// wantsDirectiveCompletion decides step 5. One-Time directives complete
// automatically; Recurring and Conditional ones only on explicit request.
func wantsDirectiveCompletion(d *gormModels.Directive, e *gormModels.ComplianceEvent, requested bool) (bool, error) {
	if e.ComplianceStatus != constants.ComplianceComplied {
		if requested {
			return false, validationError("a directive can only be completed by a Complied event")
		}
		return false, nil
	}
	if d.ComplianceScope == constants.ScopeOneTime {
		return true, nil
	}
	if !requested {
		return false, nil
	}
	if !d.ComplianceScope.AllowsManualCompletion() {
		return false, newError(constants.ErrCodeCompletionNotAllow, nil)
	}
	return true, nil
}

func (s *DirectiveComplianceService) appendComplianceHistory(ctx context.Context, userID string, e *gormModels.ComplianceEvent) error {
	details := fmt.Sprintf("Complied on %s", e.ComplianceDate.Format("2006-01-02"))
	if e.CounterValue != nil && e.CounterType != "" {
		details = fmt.Sprintf("%s at %s %.1f", details, e.CounterType, *e.CounterValue)
	}
	return s.history.Append(ctx, &gormModels.DirectiveHistory{
		UserID:      userID,
		DirectiveID: e.DirectiveID,
		Action:      constants.HistoryCompliance,
		ActionDate:  compliance.CivilDate(e.ComplianceDate),
		Details:     details,
	})
}

// advanceNotifications completes the earliest-due managed notification of
// the directive and, for recurring directives, schedules the next one from
// the compliance actually recorded.
func (s *DirectiveComplianceService) advanceNotifications(
	ctx context.Context,
	fx *effects,
	userID string,
	d *gormModels.Directive,
	e *gormModels.ComplianceEvent,
) (completed, next *gormModels.Notification) {
	linked, err := s.notifications.ListByParent(ctx, userID, repositories.ParentDirective, d.ID, false)
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID)
		return nil, nil
	}

	managed, frozen := compliance.SplitByState(linked)
	compliance.SortByDue(managed)

	if len(managed) > 0 {
		target := managed[0]
		if err := compliance.RequireManaged(&target); err != nil {
			fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID)
			return nil, nil
		}
		now := s.clock.Now()
		if err := s.notifications.MarkCompleted(ctx, userID, target.ID, now); err != nil {
			fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID, "notification_id", target.ID)
			return nil, nil
		}
		target.IsCompleted = true
		target.CompletedAt = &now
		completed = &target
		s.metrics.NotificationCompleted()
	}

	if !d.IsRecurring() {
		return completed, nil
	}

	next, err = s.spawnAnchored(ctx, userID, d, e, completed, frozen)
	if err != nil {
		fx.fail(constants.OpSpawnSuccessor, err, "directive_id", d.ID)
		return completed, nil
	}
	return completed, next
}

// spawnAnchored inserts the next directive notification due repeat_months
// after the compliance date or repeat_hours after the complied counter
// value. The completed notification's basis is preferred. A frozen row on
// that basis stands in for the next occurrence, so nothing is inserted.
func (s *DirectiveComplianceService) spawnAnchored(
	ctx context.Context,
	userID string,
	d *gormModels.Directive,
	e *gormModels.ComplianceEvent,
	completed *gormModels.Notification,
	frozen []gormModels.Notification,
) (*gormModels.Notification, error) {
	for _, basis := range anchorOrder(d, completed) {
		if len(ofBasis(frozen, basis)) > 0 {
			return nil, nil
		}
		counterType := d.CounterType
		if completed != nil && completed.DueBasis == basis && completed.CounterType != "" {
			counterType = completed.CounterType
		}
		if counterType == "" {
			counterType = e.CounterType
		}

		var complied compliance.DueValue
		switch basis {
		case constants.DueBasisDate:
			complied = compliance.DateDue(e.ComplianceDate)
		case constants.DueBasisCounter:
			if e.CounterValue == nil || (e.CounterType != "" && e.CounterType != counterType) {
				continue
			}
			complied = compliance.CounterDue(*e.CounterValue)
		}

		due, ok := compliance.NextAnchoredDue(basis, complied, d.RepeatMonths, d.RepeatHours)
		if !ok {
			continue
		}

		var n *gormModels.Notification
		if completed != nil && completed.DueBasis == basis {
			n = completed.Successor()
		} else {
			n = &gormModels.Notification{
				UserID:      userID,
				AircraftID:  d.AircraftID,
				Description: directiveDescription(d),
				Type:        constants.NotificationTypeDirective,
				DirectiveID: &d.ID,
			}
		}
		applyDue(n, basis, due, counterType)
		s.defaults.stamp(n)

		if err := s.notifications.Create(ctx, n); err != nil {
			return nil, err
		}
		s.metrics.NotificationSpawned(string(basis))
		return n, nil
	}
	return nil, nil
}

func anchorOrder(d *gormModels.Directive, completed *gormModels.Notification) []constants.DueBasis {
	first, ok := d.InitialDueType.Basis()
	if completed != nil {
		first, ok = completed.DueBasis, true
	}
	if !ok {
		if d.RepeatMonths != nil && *d.RepeatMonths > 0 {
			first = constants.DueBasisDate
		} else {
			first = constants.DueBasisCounter
		}
	}
	if first == constants.DueBasisCounter {
		return []constants.DueBasis{constants.DueBasisCounter, constants.DueBasisDate}
	}
	return []constants.DueBasis{constants.DueBasisDate, constants.DueBasisCounter}
}

// completeDirective marks the directive Completed and removes every linked
// notification, user-modified ones included.
func (s *DirectiveComplianceService) completeDirective(ctx context.Context, fx *effects, userID string, d *gormModels.Directive, result *SaveComplianceResult) {
	if err := s.directives.UpdateStatus(ctx, userID, d.ID, constants.DirectiveCompleted); err != nil {
		fx.fail(constants.OpDirectiveCompletion, err, "directive_id", d.ID)
		return
	}
	d.DirectiveStatus = constants.DirectiveCompleted
	result.DirectiveCompleted = true

	removed, err := s.notifications.DeleteByParent(ctx, userID, repositories.ParentDirective, d.ID)
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID)
		return
	}
	result.RemovedNotifications = removed
	result.NextNotification = nil
}

type DeleteComplianceResult struct {
	Status   *gormModels.AircraftDirectiveStatus `json:"status,omitempty"`
	Warnings []string                            `json:"warnings,omitempty"`
}

// DeleteComplianceEvent removes one event and rebuilds the summary from the
// events that remain.
func (s *DirectiveComplianceService) DeleteComplianceEvent(ctx context.Context, userID, eventID string) (*DeleteComplianceResult, error) {
	event, err := s.compliance.GetEvent(ctx, userID, eventID)
	if err != nil {
		return nil, storeError(err)
	}

	outcome, err := s.compliance.WithConsistencyRecompute(ctx, userID, event.DirectiveID, func(w repositories.EventWriter) error {
		return w.DeleteEvent(ctx, userID, eventID)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.metrics.ObserveRecompute(outcome.Duration.Seconds())

	fx := newEffects(s.metrics, userID)
	if outcome.Err != nil {
		fx.fail(constants.OpSummaryRecompute, outcome.Err, "directive_id", event.DirectiveID)
	}

	logging.Info("Compliance event deleted",
		"user_id", userID,
		"directive_id", event.DirectiveID,
		"event_id", eventID,
	)
	return &DeleteComplianceResult{Status: outcome.Status, Warnings: fx.Warnings()}, nil
}

// DirectiveCompliance is the compliance record of a directive
type DirectiveCompliance struct {
	Events  []gormModels.ComplianceEvent        `json:"events"`
	Status  *gormModels.AircraftDirectiveStatus `json:"status,omitempty"`
	History []gormModels.DirectiveHistory       `json:"history"`
}

// GetDirectiveCompliance returns the events, summary and history of a directive
func (s *DirectiveComplianceService) GetDirectiveCompliance(ctx context.Context, userID, directiveID string) (*DirectiveCompliance, error) {
	if _, err := s.directives.GetByID(ctx, userID, directiveID); err != nil {
		return nil, storeError(err)
	}

	events, err := s.compliance.ListEvents(ctx, userID, directiveID)
	if err != nil {
		return nil, storeError(err)
	}
	status, err := s.compliance.GetStatus(ctx, userID, directiveID)
	if err != nil {
		return nil, storeError(err)
	}
	history, err := s.history.ListByDirective(ctx, userID, directiveID)
	if err != nil {
		return nil, storeError(err)
	}

	return &DirectiveCompliance{Events: events, Status: status, History: history}, nil
}

func validateComplianceEvent(e *gormModels.ComplianceEvent) error {
	if e.ComplianceStatus == "" {
		e.ComplianceStatus = constants.ComplianceComplied
	}
	if !e.ComplianceStatus.Valid() {
		return validationError("unknown compliance status %q", e.ComplianceStatus)
	}
	if e.ComplianceDate.IsZero() {
		return validationError("compliance_date is required")
	}
	e.ComplianceDate = compliance.CivilDate(e.ComplianceDate)
	if e.CounterType != "" && !e.CounterType.Valid() {
		return validationError("unknown counter type %q", e.CounterType)
	}
	if e.CounterValue != nil && *e.CounterValue < 0 {
		return validationError("counter_value must not be negative")
	}
	for _, link := range e.ComplianceLinks {
		if link.URL == "" {
			return validationError("compliance links need a url")
		}
	}
	return nil
}
