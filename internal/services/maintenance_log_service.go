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

// MaintenanceLogService stores performed-work records, keeps their
// recurring-task notifications in sync and records the directive
// compliance embedded in them.
type MaintenanceLogService struct {
	logs          MaintenanceLogStore
	notifications NotificationStore
	aircraft      AircraftStore
	counters      CounterReader
	port          CompliancePersistencePort
	compliance    *DirectiveComplianceService
	metrics       *metrics.MetricsRegistry
	defaults      alertDefaults
}

func NewMaintenanceLogService(
	logs MaintenanceLogStore,
	notifications NotificationStore,
	aircraft AircraftStore,
	counters CounterReader,
	port CompliancePersistencePort,
	complianceService *DirectiveComplianceService,
	m *metrics.MetricsRegistry,
) *MaintenanceLogService {
	return &MaintenanceLogService{
		logs:          logs,
		notifications: notifications,
		aircraft:      aircraft,
		counters:      counters,
		port:          port,
		compliance:    complianceService,
		metrics:       m,
		defaults:      defaultAlerts(),
	}
}

// WithAlertDefaults overrides the thresholds stamped on generated notifications.
func (s *MaintenanceLogService) WithAlertDefaults(days int, hours float64) *MaintenanceLogService {
	s.defaults = s.defaults.with(days, hours)
	return s
}

// LinkedCompliance is a directive compliance event recorded with a log.
// An Event with an ID edits an existing event.
type LinkedCompliance struct {
	Event                  *gormModels.ComplianceEvent
	MarkDirectiveCompleted bool
}

type MaintenanceLogInput struct {
	Log        *gormModels.MaintenanceLog
	Compliance []LinkedCompliance
}

type MaintenanceLogResult struct {
	Log               *gormModels.MaintenanceLog `json:"log"`
	Notifications     *SyncResult                `json:"notifications,omitempty"`
	Compliance        []*SaveComplianceResult    `json:"compliance,omitempty"`
	RemovedCompliance []string                   `json:"removed_compliance,omitempty"`
	Warnings          []string                   `json:"warnings,omitempty"`
}

// SyncResult lists what a recurring-task sync changed.
type SyncResult struct {
	Inserted []gormModels.Notification `json:"inserted,omitempty"`
	Updated  []gormModels.Notification `json:"updated,omitempty"`
	Deleted  []string                  `json:"deleted,omitempty"`
	Frozen   []string                  `json:"frozen,omitempty"`
}

// GetMaintenanceLog fetches a log together with its compliance events
func (s *MaintenanceLogService) GetMaintenanceLog(ctx context.Context, userID, id string) (*gormModels.MaintenanceLog, []gormModels.ComplianceEvent, error) {
	m, err := s.logs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, storeError(err)
	}
	events, err := s.port.ListEventsByMaintenanceLog(ctx, userID, id)
	if err != nil {
		return nil, nil, storeError(err)
	}
	return m, events, nil
}

// CreateMaintenanceLog stores a log, then raises the aircraft counters,
// creates its recurring notifications and records its compliance events.
func (s *MaintenanceLogService) CreateMaintenanceLog(ctx context.Context, userID string, in MaintenanceLogInput) (*MaintenanceLogResult, error) {
	if in.Log == nil {
		return nil, validationError("maintenance log is required")
	}
	m := in.Log
	m.ID = ""
	m.UserID = userID
	if err := validateMaintenanceLog(m); err != nil {
		return nil, err
	}
	if err := validateLinks(in.Compliance); err != nil {
		return nil, err
	}

	if err := s.logs.Create(ctx, m); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &MaintenanceLogResult{Log: m}

	s.raiseCounters(ctx, fx, userID, m)

	sync, err := s.SyncMaintenanceLogNotifications(ctx, userID, m)
	if err != nil {
		fx.fail(constants.OpMaintenanceSync, err, "maintenance_log_id", m.ID)
	}
	result.Notifications = sync

	result.Compliance = s.saveLinks(ctx, fx, userID, m, in.Compliance)

	result.Warnings = fx.Warnings()
	logging.Info("Maintenance log created",
		"user_id", userID,
		"maintenance_log_id", m.ID,
		"recurring", m.IsRecurringTask,
		"compliance_links", len(in.Compliance),
	)
	return result, nil
}

// UpdateMaintenanceLog applies an edit. The compliance list replaces the
// log's events: events left out are deleted and their directive summaries
// rebuilt from the events that remain.
func (s *MaintenanceLogService) UpdateMaintenanceLog(ctx context.Context, userID, id string, in MaintenanceLogInput) (*MaintenanceLogResult, error) {
	if in.Log == nil {
		return nil, validationError("maintenance log is required")
	}
	prev, err := s.logs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err)
	}

	m := in.Log
	m.ID = prev.ID
	m.UserID = userID
	m.CreatedAt = prev.CreatedAt
	if m.AircraftID == "" {
		m.AircraftID = prev.AircraftID
	}
	if err := validateMaintenanceLog(m); err != nil {
		return nil, err
	}
	if err := validateLinks(in.Compliance); err != nil {
		return nil, err
	}

	if err := s.logs.Save(ctx, m); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &MaintenanceLogResult{Log: m}

	s.raiseCounters(ctx, fx, userID, m)

	sync, err := s.SyncMaintenanceLogNotifications(ctx, userID, m)
	if err != nil {
		fx.fail(constants.OpMaintenanceSync, err, "maintenance_log_id", m.ID)
	}
	result.Notifications = sync

	keep := make(map[string]bool, len(in.Compliance))
	for _, link := range in.Compliance {
		if link.Event.ID != "" {
			keep[link.Event.ID] = true
		}
	}
	existing, err := s.port.ListEventsByMaintenanceLog(ctx, userID, m.ID)
	if err != nil {
		fx.fail(constants.OpComplianceLink, err, "maintenance_log_id", m.ID)
	} else {
		for _, e := range existing {
			if keep[e.ID] {
				continue
			}
			removed, err := s.compliance.DeleteComplianceEvent(ctx, userID, e.ID)
			if err != nil {
				fx.fail(constants.OpComplianceLink, err, "maintenance_log_id", m.ID, "event_id", e.ID)
				continue
			}
			fx.warnings = append(fx.warnings, removed.Warnings...)
			result.RemovedCompliance = append(result.RemovedCompliance, e.ID)
		}
	}

	result.Compliance = s.saveLinks(ctx, fx, userID, m, in.Compliance)

	result.Warnings = fx.Warnings()
	return result, nil
}

type DeleteMaintenanceLogResult struct {
	DeletedNotifications  []string `json:"deleted_notifications,omitempty"`
	DetachedNotifications []string `json:"detached_notifications,omitempty"`
	RemovedCompliance     []string `json:"removed_compliance,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
}

// DeleteMaintenanceLog removes a log. Its managed notifications go with it,
// frozen ones are detached, and its compliance events are deleted with the
// directive summaries rebuilt.
func (s *MaintenanceLogService) DeleteMaintenanceLog(ctx context.Context, userID, id string) (*DeleteMaintenanceLogResult, error) {
	if err := s.logs.Delete(ctx, userID, id); err != nil {
		return nil, storeError(err)
	}

	fx := newEffects(s.metrics, userID)
	result := &DeleteMaintenanceLogResult{}

	linked, err := s.notifications.ListByParent(ctx, userID, repositories.ParentMaintenanceLog, id, true)
	if err != nil {
		fx.fail(constants.OpNotificationCascade, err, "maintenance_log_id", id)
	}
	for _, n := range linked {
		if compliance.StateOf(&n) == compliance.Frozen {
			if err := s.notifications.Detach(ctx, userID, n.ID, repositories.ParentMaintenanceLog); err != nil {
				fx.fail(constants.OpNotificationCascade, err, "notification_id", n.ID)
				continue
			}
			result.DetachedNotifications = append(result.DetachedNotifications, n.ID)
			continue
		}
		if err := s.notifications.Delete(ctx, userID, n.ID); err != nil {
			fx.fail(constants.OpNotificationCascade, err, "notification_id", n.ID)
			continue
		}
		result.DeletedNotifications = append(result.DeletedNotifications, n.ID)
	}

	events, err := s.port.ListEventsByMaintenanceLog(ctx, userID, id)
	if err != nil {
		fx.fail(constants.OpComplianceLink, err, "maintenance_log_id", id)
	}
	for _, e := range events {
		removed, err := s.compliance.DeleteComplianceEvent(ctx, userID, e.ID)
		if err != nil {
			fx.fail(constants.OpComplianceLink, err, "event_id", e.ID)
			continue
		}
		fx.warnings = append(fx.warnings, removed.Warnings...)
		result.RemovedCompliance = append(result.RemovedCompliance, e.ID)
	}

	result.Warnings = fx.Warnings()
	logging.Info("Maintenance log deleted",
		"user_id", userID,
		"maintenance_log_id", id,
		"deleted_notifications", len(result.DeletedNotifications),
		"removed_compliance", len(result.RemovedCompliance),
	)
	return result, nil
}

// SyncMaintenanceLogNotifications compares the notifications a log's
// recurring task needs, one per due basis, with the live ones linked to it.
// Missing ones are inserted, existing ones updated in place and unneeded
// ones deleted. Frozen rows are never touched, and a frozen row on a needed
// basis stands in for the managed one.
func (s *MaintenanceLogService) SyncMaintenanceLogNotifications(ctx context.Context, userID string, m *gormModels.MaintenanceLog) (*SyncResult, error) {
	result := &SyncResult{}

	linked, err := s.notifications.ListByParent(ctx, userID, repositories.ParentMaintenanceLog, m.ID, false)
	if err != nil {
		return result, err
	}
	managed, frozen := compliance.SplitByState(linked)
	for _, n := range frozen {
		result.Frozen = append(result.Frozen, n.ID)
	}

	needed := make(map[constants.DueBasis]bool)
	for _, b := range m.NeededBases() {
		needed[b] = true
	}

	for _, basis := range []constants.DueBasis{constants.DueBasisDate, constants.DueBasisCounter} {
		mine := ofBasis(managed, basis)

		if !needed[basis] {
			for _, n := range mine {
				if err := s.deleteManaged(ctx, userID, &n); err != nil {
					return result, err
				}
				result.Deleted = append(result.Deleted, n.ID)
			}
			continue
		}

		if len(mine) == 0 {
			if len(ofBasis(frozen, basis)) > 0 {
				continue
			}
			n := &gormModels.Notification{
				UserID:           userID,
				AircraftID:       m.AircraftID,
				Type:             constants.NotificationTypeMaintenance,
				MaintenanceLogID: &m.ID,
			}
			if err := s.applyLogDue(ctx, userID, n, m, basis); err != nil {
				return result, err
			}
			if err := s.notifications.Create(ctx, n); err != nil {
				return result, err
			}
			result.Inserted = append(result.Inserted, *n)
			continue
		}

		compliance.SortByDue(mine)
		primary := mine[0]
		for _, n := range mine[1:] {
			if err := s.deleteManaged(ctx, userID, &n); err != nil {
				return result, err
			}
			result.Deleted = append(result.Deleted, n.ID)
		}

		if err := compliance.RequireManaged(&primary); err != nil {
			return result, err
		}
		primary.AircraftID = m.AircraftID
		if err := s.applyLogDue(ctx, userID, &primary, m, basis); err != nil {
			return result, err
		}
		if err := s.notifications.Save(ctx, &primary); err != nil {
			return result, err
		}
		result.Updated = append(result.Updated, primary)
	}

	return result, nil
}

// applyLogDue sets the due value a log's recurring task implies on basis:
// interval_months after the log date, or interval_hours after the logged
// counter reading.
func (s *MaintenanceLogService) applyLogDue(ctx context.Context, userID string, n *gormModels.Notification, m *gormModels.MaintenanceLog, basis constants.DueBasis) error {
	n.Description = maintenanceDescription(m)

	switch basis {
	case constants.DueBasisDate:
		months := positiveInt(m.IntervalMonths)
		applyDue(n, basis, compliance.DateDue(m.Date.AddDate(0, months, 0)), "")
		n.Recurrence = constants.RecurrenceForMonths(months)

	case constants.DueBasisCounter:
		hours := positiveFloat(m.IntervalHours)
		base := m.CounterValue(m.IntervalCounterType)
		if base == nil {
			counters, err := s.counters.GetCounters(ctx, userID, m.AircraftID)
			if err != nil {
				return fmt.Errorf("failed to read counters for maintenance log %s: %w", m.ID, err)
			}
			current, _ := counters.Value(m.IntervalCounterType)
			base = &current
		}
		applyDue(n, basis, compliance.CounterDue(*base+hours), m.IntervalCounterType)
		n.CounterStep = &hours
		n.Recurrence = constants.RecurrenceNone
		n.InitialDate = nil
	}

	s.defaults.stamp(n)
	return nil
}

func (s *MaintenanceLogService) deleteManaged(ctx context.Context, userID string, n *gormModels.Notification) error {
	if err := compliance.RequireManaged(n); err != nil {
		return err
	}
	return s.notifications.Delete(ctx, userID, n.ID)
}

// raiseCounters moves the aircraft counters up to the log snapshot and
// drops the cached snapshot.
func (s *MaintenanceLogService) raiseCounters(ctx context.Context, fx *effects, userID string, m *gormModels.MaintenanceLog) {
	if m.AircraftID == "" {
		return
	}
	if err := s.aircraft.RaiseCounters(ctx, userID, m.AircraftID, m); err != nil {
		fx.fail(constants.OpCounterUpdate, err, "aircraft_id", m.AircraftID)
		return
	}
	if inv, ok := s.counters.(CounterInvalidator); ok {
		inv.Invalidate(userID, m.AircraftID)
	}
}

// saveLinks records each embedded compliance event against its directive.
func (s *MaintenanceLogService) saveLinks(ctx context.Context, fx *effects, userID string, m *gormModels.MaintenanceLog, links []LinkedCompliance) []*SaveComplianceResult {
	var saved []*SaveComplianceResult
	for _, link := range links {
		e := link.Event
		e.MaintenanceLogID = &m.ID
		if e.ComplianceDate.IsZero() {
			e.ComplianceDate = m.Date
		}
		if e.CounterType != "" && e.CounterValue == nil {
			e.CounterValue = m.CounterValue(e.CounterType)
		}

		res, err := s.compliance.SaveDirectiveCompliance(ctx, userID, SaveComplianceInput{
			DirectiveID:            e.DirectiveID,
			Event:                  e,
			MarkDirectiveCompleted: link.MarkDirectiveCompleted,
		})
		if err != nil {
			fx.fail(constants.OpComplianceLink, err, "maintenance_log_id", m.ID, "directive_id", e.DirectiveID)
			continue
		}
		fx.warnings = append(fx.warnings, res.Warnings...)
		saved = append(saved, res)
	}
	return saved
}

func validateMaintenanceLog(m *gormModels.MaintenanceLog) error {
	if m.Date.IsZero() {
		return validationError("a maintenance log needs a date")
	}
	m.Date = compliance.CivilDate(m.Date)
	for _, ct := range constants.AllCounterTypes {
		if v := m.CounterValue(ct); v != nil && *v < 0 {
			return validationError("%s must not be negative", ct)
		}
	}
	if !m.IsRecurringTask {
		return nil
	}

	if !m.IntervalType.Valid() {
		return validationError("unknown interval type %q", m.IntervalType)
	}
	for _, basis := range m.IntervalType.Bases() {
		switch basis {
		case constants.DueBasisDate:
			if positiveInt(m.IntervalMonths) == 0 {
				return validationError("interval_months is required for a %s interval", m.IntervalType)
			}
		case constants.DueBasisCounter:
			if positiveFloat(m.IntervalHours) == 0 {
				return validationError("interval_hours is required for a %s interval", m.IntervalType)
			}
			if !m.IntervalCounterType.Valid() {
				return validationError("interval_counter_type is required for a %s interval", m.IntervalType)
			}
		}
	}
	return nil
}

func validateLinks(links []LinkedCompliance) error {
	for _, link := range links {
		if link.Event == nil || link.Event.DirectiveID == "" {
			return validationError("each compliance link needs a directive")
		}
	}
	return nil
}
