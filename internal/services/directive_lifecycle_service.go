package services

import (
	"context"
	"time"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
)

// DirectiveService owns directive CRUD and keeps each directive's generated
// notification in lockstep with its due type.
type DirectiveService struct {
	directives    DirectiveStore
	history       HistoryStore
	compliance    CompliancePersistencePort
	notifications NotificationStore
	counters      CounterReader
	clock         compliance.Clock
	metrics       *metrics.MetricsRegistry
	defaults      alertDefaults
}

func NewDirectiveService(
	directives DirectiveStore,
	history HistoryStore,
	port CompliancePersistencePort,
	notifications NotificationStore,
	counters CounterReader,
	clock compliance.Clock,
	m *metrics.MetricsRegistry,
) *DirectiveService {
	return &DirectiveService{
		directives:    directives,
		history:       history,
		compliance:    port,
		notifications: notifications,
		counters:      counters,
		clock:         clock,
		metrics:       m,
		defaults:      defaultAlerts(),
	}
}

// WithAlertDefaults overrides the thresholds stamped on generated notifications.
func (s *DirectiveService) WithAlertDefaults(days int, hours float64) *DirectiveService {
	s.defaults = s.defaults.with(days, hours)
	return s
}

// DueInput is the due condition as entered by the user. Which fields are
// read depends on the directive's initial due type.
type DueInput struct {
	Date   *time.Time
	Months *int
	Hours  *float64
	Mode   constants.DueHoursMode
}

func (d DueInput) empty() bool {
	return d.Date == nil && d.Months == nil && d.Hours == nil
}

// ReconcileResult lists what a reconciliation changed.
type ReconcileResult struct {
	Created []gormModels.Notification `json:"created,omitempty"`
	Updated []gormModels.Notification `json:"updated,omitempty"`
	Deleted []string                  `json:"deleted,omitempty"`
	Frozen  []string                  `json:"frozen,omitempty"`
}

type DirectiveResult struct {
	Directive     *gormModels.Directive `json:"directive"`
	Notifications *ReconcileResult      `json:"notifications,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// GetDirective fetches one directive
func (s *DirectiveService) GetDirective(ctx context.Context, userID, id string) (*gormModels.Directive, error) {
	d, err := s.directives.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}
	return d, nil
}

// CreateDirective validates the due input, stores the directive and
// generates its notification.
func (s *DirectiveService) CreateDirective(ctx context.Context, userID string, d *gormModels.Directive, due DueInput) (*DirectiveResult, error) {
	d.ID = ""
	d.UserID = userID
	if d.DirectiveStatus == "" {
		d.DirectiveStatus = constants.DirectiveActive
	}
	if err := validateDirective(d); err != nil {
		return nil, err
	}
	if err := s.resolveDue(ctx, userID, d, nil, due); err != nil {
		return nil, err
	}

	if err := s.directives.Create(ctx, d); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &DirectiveResult{Directive: d}

	err := s.history.Append(ctx, &gormModels.DirectiveHistory{
		UserID:      userID,
		DirectiveID: d.ID,
		Action:      constants.HistoryCreate,
		ActionDate:  compliance.Today(s.clock),
		Details:     "Directive created: " + directiveDescription(d),
	})
	if err != nil {
		fx.fail(constants.OpHistoryAppend, err, "directive_id", d.ID)
	}

	rec, err := s.reconcile(ctx, userID, d, false)
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID)
	}
	result.Notifications = rec

	if _, err := s.compliance.RecomputeStatus(ctx, userID, d.ID); err != nil {
		fx.fail(constants.OpSummaryRecompute, err, "directive_id", d.ID)
	}

	result.Warnings = fx.Warnings()
	logging.Info("Directive created",
		"user_id", userID,
		"directive_id", d.ID,
		"due_type", d.InitialDueType,
	)
	return result, nil
}

// UpdateDirective applies an edit and reconciles the generated
// notification with the new due type.
func (s *DirectiveService) UpdateDirective(ctx context.Context, userID, id string, edit *gormModels.Directive, due DueInput) (*DirectiveResult, error) {
	prev, err := s.directives.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}

	d := *prev
	d.Number = edit.Number
	d.Title = edit.Title
	d.AircraftID = prev.AircraftID
	if edit.AircraftID != "" {
		d.AircraftID = edit.AircraftID
	}
	d.InitialDueType = edit.InitialDueType
	d.CounterType = edit.CounterType
	d.ComplianceScope = edit.ComplianceScope
	d.RepeatHours = edit.RepeatHours
	d.RepeatMonths = edit.RepeatMonths
	if edit.DirectiveStatus != "" {
		d.DirectiveStatus = edit.DirectiveStatus
	}

	if err := validateDirective(&d); err != nil {
		return nil, err
	}
	if err := s.resolveDue(ctx, userID, &d, prev, due); err != nil {
		return nil, err
	}

	if err := s.directives.Save(ctx, &d); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &DirectiveResult{Directive: &d}

	rec, err := s.reconcile(ctx, userID, &d, dueChanged(prev, &d))
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "directive_id", d.ID)
	}
	result.Notifications = rec

	if prev.ComplianceScope != d.ComplianceScope {
		if _, err := s.compliance.RecomputeStatus(ctx, userID, d.ID); err != nil {
			fx.fail(constants.OpSummaryRecompute, err, "directive_id", d.ID)
		}
	}

	result.Warnings = fx.Warnings()
	return result, nil
}

// ReconcileDirectiveNotifications brings a directive's live notifications
// back in line with its due type without moving an existing due value.
func (s *DirectiveService) ReconcileDirectiveNotifications(ctx context.Context, userID, directiveID string) (*ReconcileResult, error) {
	d, err := s.directives.GetByID(ctx, userID, directiveID)
	if err != nil {
		return nil, storeError(err)
	}
	rec, err := s.reconcile(ctx, userID, d, false)
	if err != nil {
		return rec, storeError(err)
	}
	return rec, nil
}

// reconcile keeps at most one live managed notification per directive, on
// the basis the due type asks for. Frozen rows are never touched; a frozen
// row on the desired basis takes the place of the managed one. The due
// value of an existing managed row only moves when moveDue is set. Once the
// directive has been complied with, a missing row is only recreated when
// the due condition itself changed.
func (s *DirectiveService) reconcile(ctx context.Context, userID string, d *gormModels.Directive, moveDue bool) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	linked, err := s.notifications.ListByParent(ctx, userID, repositories.ParentDirective, d.ID, false)
	if err != nil {
		return result, err
	}
	managed, frozen := compliance.SplitByState(linked)
	for _, n := range frozen {
		result.Frozen = append(result.Frozen, n.ID)
	}

	basis, due, wanted := desiredDirectiveDue(d)

	// After compliance the schedule is anchored to it: keep the anchored
	// row's basis and never bring back the original due.
	anchored := false
	if !d.DirectiveStatus.Closed() && !moveDue {
		anchored, err = s.hasCompliance(ctx, userID, d.ID)
		if err != nil {
			return result, err
		}
		if anchored && len(managed) > 0 && (!wanted || len(ofBasis(managed, basis)) == 0) {
			earliest := append([]gormModels.Notification(nil), managed...)
			compliance.SortByDue(earliest)
			basis = earliest[0].DueBasis
			wanted = true
		}
	}

	var keep []gormModels.Notification
	for _, n := range managed {
		if wanted && n.DueBasis == basis {
			keep = append(keep, n)
			continue
		}
		if err := s.deleteManaged(ctx, userID, &n); err != nil {
			return result, err
		}
		result.Deleted = append(result.Deleted, n.ID)
	}

	if !wanted {
		return result, nil
	}

	if len(ofBasis(frozen, basis)) > 0 {
		for _, n := range keep {
			if err := s.deleteManaged(ctx, userID, &n); err != nil {
				return result, err
			}
			result.Deleted = append(result.Deleted, n.ID)
		}
		return result, nil
	}

	if len(keep) == 0 {
		if anchored {
			return result, nil
		}
		n := &gormModels.Notification{
			UserID:      userID,
			AircraftID:  d.AircraftID,
			Description: directiveDescription(d),
			Type:        constants.NotificationTypeDirective,
			DirectiveID: &d.ID,
		}
		applyDue(n, basis, due, d.CounterType)
		s.defaults.stamp(n)
		if err := s.notifications.Create(ctx, n); err != nil {
			return result, err
		}
		result.Created = append(result.Created, *n)
		return result, nil
	}

	compliance.SortByDue(keep)
	primary := keep[0]
	for _, n := range keep[1:] {
		if err := s.deleteManaged(ctx, userID, &n); err != nil {
			return result, err
		}
		result.Deleted = append(result.Deleted, n.ID)
	}

	if err := compliance.RequireManaged(&primary); err != nil {
		return result, err
	}
	changed := primary.Description != directiveDescription(d) || primary.AircraftID != d.AircraftID
	primary.Description = directiveDescription(d)
	primary.AircraftID = d.AircraftID
	if moveDue && !sameDue(&primary, due, d.CounterType) {
		applyDue(&primary, basis, due, d.CounterType)
		s.defaults.stamp(&primary)
		changed = true
	}
	if changed {
		if err := s.notifications.Save(ctx, &primary); err != nil {
			return result, err
		}
		result.Updated = append(result.Updated, primary)
	}
	return result, nil
}

// hasCompliance reports whether any Complied event counts toward the
// directive's summary.
func (s *DirectiveService) hasCompliance(ctx context.Context, userID, directiveID string) (bool, error) {
	status, err := s.compliance.GetStatus(ctx, userID, directiveID)
	if err != nil {
		return false, err
	}
	return status != nil && status.LastComplianceDate != nil, nil
}

func (s *DirectiveService) deleteManaged(ctx context.Context, userID string, n *gormModels.Notification) error {
	if err := compliance.RequireManaged(n); err != nil {
		return err
	}
	return s.notifications.Delete(ctx, userID, n.ID)
}

// desiredDirectiveDue returns the notification a directive should have.
// Closed directives and the Other due type want none.
func desiredDirectiveDue(d *gormModels.Directive) (constants.DueBasis, compliance.DueValue, bool) {
	if d.DirectiveStatus.Closed() {
		return "", compliance.DueValue{}, false
	}

	basis, ok := d.InitialDueType.Basis()
	if !ok {
		return "", compliance.DueValue{}, false
	}
	switch basis {
	case constants.DueBasisDate:
		if d.InitialDueDate == nil {
			return "", compliance.DueValue{}, false
		}
		return basis, compliance.DateDue(*d.InitialDueDate), true
	case constants.DueBasisCounter:
		if d.InitialDueHours == nil || !d.CounterType.Valid() {
			return "", compliance.DueValue{}, false
		}
		return basis, compliance.CounterDue(*d.InitialDueHours), true
	}
	return "", compliance.DueValue{}, false
}

func dueChanged(prev, next *gormModels.Directive) bool {
	if prev.InitialDueType != next.InitialDueType || prev.CounterType != next.CounterType {
		return true
	}
	if (prev.InitialDueDate == nil) != (next.InitialDueDate == nil) {
		return true
	}
	if prev.InitialDueDate != nil && !compliance.SameDay(*prev.InitialDueDate, *next.InitialDueDate) {
		return true
	}
	if (prev.InitialDueHours == nil) != (next.InitialDueHours == nil) {
		return true
	}
	return prev.InitialDueHours != nil && *prev.InitialDueHours != *next.InitialDueHours
}

// resolveDue turns the entered due condition into the absolute due date or
// counter target stored on the directive. By Total Time targets are checked
// against the live counters here and never recomputed later.
func (s *DirectiveService) resolveDue(ctx context.Context, userID string, d, prev *gormModels.Directive, due DueInput) error {
	if prev != nil && prev.InitialDueType == d.InitialDueType && due.empty() {
		d.InitialDueDate = prev.InitialDueDate
		d.InitialDueHours = prev.InitialDueHours
		return nil
	}

	today := compliance.Today(s.clock)
	switch d.InitialDueType {
	case constants.DueTypeBeforeNextFlight, constants.DueTypeAtNextInspection:
		d.InitialDueDate = &today
		d.InitialDueHours = nil

	case constants.DueTypeByDate:
		if due.Date == nil {
			return validationError("a due date is required for %s", d.InitialDueType)
		}
		date := compliance.CivilDate(*due.Date)
		d.InitialDueDate = &date
		d.InitialDueHours = nil

	case constants.DueTypeByCalendar:
		switch {
		case due.Months != nil && *due.Months > 0:
			date := today.AddDate(0, *due.Months, 0)
			d.InitialDueDate = &date
		case due.Date != nil:
			date := compliance.CivilDate(*due.Date)
			d.InitialDueDate = &date
		default:
			return validationError("a number of months is required for %s", d.InitialDueType)
		}
		d.InitialDueHours = nil

	case constants.DueTypeByTotalTime:
		target, err := s.resolveHours(ctx, userID, d, due)
		if err != nil {
			return err
		}
		d.InitialDueHours = &target
		d.InitialDueDate = nil

	default:
		d.InitialDueDate = nil
		d.InitialDueHours = nil
	}
	return nil
}

func (s *DirectiveService) resolveHours(ctx context.Context, userID string, d *gormModels.Directive, due DueInput) (float64, error) {
	if !d.CounterType.Valid() {
		return 0, validationError("a counter type is required for %s", d.InitialDueType)
	}
	if due.Hours == nil {
		return 0, validationError("a due counter value is required for %s", d.InitialDueType)
	}

	counters, err := s.counters.GetCounters(ctx, userID, d.AircraftID)
	if err != nil {
		return 0, newError(constants.ErrCodeCounterUnavailable, err)
	}
	current, _ := counters.Value(d.CounterType)

	switch due.Mode {
	case constants.DueHoursIncremental:
		if *due.Hours <= 0 {
			return 0, validationError("an incremental due value must be positive")
		}
		return current + *due.Hours, nil
	case constants.DueHoursAbsolute, "":
		if *due.Hours < current {
			return 0, &ComplianceError{
				Code:    constants.ErrCodeCounterBelowActual,
				Message: constants.GetErrorMessage(constants.ErrCodeCounterBelowActual),
			}
		}
		return *due.Hours, nil
	}
	return 0, validationError("unknown due hours mode %q", due.Mode)
}

type DeleteDirectiveResult struct {
	DeletedNotifications  []string `json:"deleted_notifications,omitempty"`
	DetachedNotifications []string `json:"detached_notifications,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
}

// DeleteDirective removes a directive with its compliance records. Managed
// notifications go with it; frozen ones are detached and kept.
func (s *DirectiveService) DeleteDirective(ctx context.Context, userID, id string) (*DeleteDirectiveResult, error) {
	d, err := s.directives.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}
	if err := s.directives.Delete(ctx, userID, id); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &DeleteDirectiveResult{}

	linked, err := s.notifications.ListByParent(ctx, userID, repositories.ParentDirective, id, true)
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "directive_id", id)
	} else {
		for _, n := range linked {
			if compliance.StateOf(&n) == compliance.Frozen {
				if err := s.notifications.Detach(ctx, userID, n.ID, repositories.ParentDirective); err != nil {
					fx.fail(constants.OpNotificationCascade, err, "notification_id", n.ID)
					continue
				}
				result.DetachedNotifications = append(result.DetachedNotifications, n.ID)
				continue
			}
			if err := s.deleteManaged(ctx, userID, &n); err != nil {
				fx.fail(constants.OpNotificationCascade, err, "notification_id", n.ID)
				continue
			}
			result.DeletedNotifications = append(result.DeletedNotifications, n.ID)
		}
	}

	if err := s.compliance.DeleteDirectiveRecords(ctx, userID, id); err != nil {
		fx.fail(constants.OpSummaryRecompute, err, "directive_id", id)
	}

	err = s.history.Append(ctx, &gormModels.DirectiveHistory{
		UserID:      userID,
		DirectiveID: id,
		Action:      constants.HistoryDelete,
		ActionDate:  compliance.Today(s.clock),
		Details:     "Directive deleted: " + directiveDescription(d),
	})
	if err != nil {
		fx.fail(constants.OpHistoryAppend, err, "directive_id", id)
	}

	result.Warnings = fx.Warnings()
	logging.Info("Directive deleted",
		"user_id", userID,
		"directive_id", id,
		"deleted_notifications", len(result.DeletedNotifications),
		"detached_notifications", len(result.DetachedNotifications),
	)
	return result, nil
}

func validateDirective(d *gormModels.Directive) error {
	if d.Title == "" && d.Number == "" {
		return validationError("a directive needs a number or a title")
	}
	if !d.InitialDueType.Valid() {
		return validationError("unknown due type %q", d.InitialDueType)
	}
	if !d.ComplianceScope.Valid() {
		return validationError("unknown compliance scope %q", d.ComplianceScope)
	}
	if !d.DirectiveStatus.Valid() {
		return validationError("unknown directive status %q", d.DirectiveStatus)
	}
	if d.CounterType != "" && !d.CounterType.Valid() {
		return validationError("unknown counter type %q", d.CounterType)
	}
	if d.RepeatMonths != nil && *d.RepeatMonths < 0 {
		return validationError("repeat_months must not be negative")
	}
	if d.RepeatHours != nil && *d.RepeatHours < 0 {
		return validationError("repeat_hours must not be negative")
	}
	if d.ComplianceScope == constants.ScopeRecurring && positiveInt(d.RepeatMonths) == 0 && positiveFloat(d.RepeatHours) == 0 {
		return validationError("a recurring directive needs repeat_months or repeat_hours")
	}
	return nil
}

func positiveInt(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func positiveFloat(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
