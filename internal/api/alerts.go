package api

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/services"

	"github.com/go-chi/chi/v5"
)

type AlertAPI interface {
	EvaluateAlert(ctx context.Context, userID, notificationID string) (constants.AlertState, error)
	ListAlerts(ctx context.Context, userID, aircraftID string) (*services.AircraftAlerts, error)
	Summary(ctx context.Context, userID string) ([]services.AircraftAlerts, error)
}

// NotificationAlertHandler handles GET /api/v1/notifications/{id}/alert
func NotificationAlertHandler(svc AlertAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")
		state, err := svc.EvaluateAlert(r.Context(), userID, id)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Alert evaluated", map[string]any{
			"notification_id": id,
			"alert_state":     state,
		})
	}
}

// AircraftAlertsHandler handles GET /api/v1/aircraft/{aircraftID}/alerts
func AircraftAlertsHandler(svc AlertAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		alerts, err := svc.ListAlerts(r.Context(), userID, chi.URLParam(r, "aircraftID"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Alerts fetched", alerts)
	}
}

// AlertSummaryHandler handles GET /api/v1/alerts/summary
func AlertSummaryHandler(svc AlertAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		summary, err := svc.Summary(r.Context(), userID)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Alert summary fetched", summary)
	}
}
