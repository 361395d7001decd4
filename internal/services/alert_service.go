package services

import (
	"context"
	"sort"
	"time"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"golang.org/x/sync/errgroup"
)

const alertSummaryConcurrency = 4

// AlertService evaluates the alert state of open notifications against the
// current date and aircraft counters.
type AlertService struct {
	notifications NotificationStore
	aircraft      AircraftStore
	counters      CounterReader
	evaluator     compliance.Evaluator
	clock         compliance.Clock
	metrics       *metrics.MetricsRegistry
}

func NewAlertService(
	notifications NotificationStore,
	aircraft AircraftStore,
	counters CounterReader,
	evaluator compliance.Evaluator,
	clock compliance.Clock,
	m *metrics.MetricsRegistry,
) *AlertService {
	return &AlertService{
		notifications: notifications,
		aircraft:      aircraft,
		counters:      counters,
		evaluator:     evaluator,
		clock:         clock,
		metrics:       m,
	}
}

type NotificationAlert struct {
	Notification gormModels.Notification `json:"notification"`
	AlertState   constants.AlertState    `json:"alert_state"`
}

type AircraftAlerts struct {
	AircraftID    string              `json:"aircraft_id"`
	AnyActive     bool                `json:"any_active"`
	Due           int                 `json:"due"`
	Reminder      int                 `json:"reminder"`
	Notifications []NotificationAlert `json:"notifications,omitempty"`
}

// EvaluateAlert returns the alert state of one notification
func (s *AlertService) EvaluateAlert(ctx context.Context, userID, notificationID string) (constants.AlertState, error) {
	n, err := s.notifications.GetByID(ctx, userID, notificationID)
	if err != nil {
		return "", storeError(err)
	}

	var counters *compliance.Counters
	if n.DueBasis == constants.DueBasisCounter && !n.IsCompleted {
		counters = s.readCounters(ctx, userID, n.AircraftID)
	}

	state := s.evaluator.Evaluate(n, counters, compliance.Today(s.clock))
	s.metrics.AlertEvaluated(string(state))
	return state, nil
}

// ListAlerts evaluates every open notification of an aircraft. An empty
// aircraftID covers all of the user's notifications.
func (s *AlertService) ListAlerts(ctx context.Context, userID, aircraftID string) (*AircraftAlerts, error) {
	ns, err := s.notifications.ListOpen(ctx, userID, aircraftID)
	if err != nil {
		return nil, storeError(err)
	}
	return s.evaluate(ctx, userID, aircraftID, ns, compliance.Today(s.clock)), nil
}

// Summary evaluates each of the user's aircraft concurrently and reports
// whether any of them has an active alert.
func (s *AlertService) Summary(ctx context.Context, userID string) ([]AircraftAlerts, error) {
	ids, err := s.aircraft.ListIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	start := time.Now()
	today := compliance.Today(s.clock)
	summaries := make([]AircraftAlerts, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(alertSummaryConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			ns, err := s.notifications.ListOpen(gCtx, userID, id)
			if err != nil {
				return err
			}
			alerts := s.evaluate(gCtx, userID, id, ns, today)
			alerts.Notifications = nil
			summaries[i] = *alerts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, storeError(err)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AircraftID < summaries[j].AircraftID
	})

	logging.Debug("Alert summary evaluated",
		"user_id", userID,
		"aircraft", len(ids),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summaries, nil
}

func (s *AlertService) evaluate(ctx context.Context, userID, aircraftID string, ns []gormModels.Notification, today time.Time) *AircraftAlerts {
	result := &AircraftAlerts{AircraftID: aircraftID}
	counters := make(map[string]*compliance.Counters)

	for _, n := range ns {
		var c *compliance.Counters
		if n.DueBasis == constants.DueBasisCounter {
			cached, ok := counters[n.AircraftID]
			if !ok {
				cached = s.readCounters(ctx, userID, n.AircraftID)
				counters[n.AircraftID] = cached
			}
			c = cached
		}

		state := s.evaluator.Evaluate(&n, c, today)
		s.metrics.AlertEvaluated(string(state))

		switch state {
		case constants.AlertDue:
			result.Due++
		case constants.AlertReminder:
			result.Reminder++
		}
		result.Notifications = append(result.Notifications, NotificationAlert{Notification: n, AlertState: state})
	}

	result.AnyActive = result.Due > 0 || result.Reminder > 0
	return result
}

// readCounters returns nil when the counters cannot be read, which the
// evaluator treats as normal.
func (s *AlertService) readCounters(ctx context.Context, userID, aircraftID string) *compliance.Counters {
	if aircraftID == "" {
		return nil
	}
	c, err := s.counters.GetCounters(ctx, userID, aircraftID)
	if err != nil {
		logging.Warn("Counters unavailable for alert evaluation",
			"user_id", userID,
			"aircraft_id", aircraftID,
			"error", err,
		)
		return nil
	}
	return c
}
