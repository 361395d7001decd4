package routes

import (
	"infinite-experiment/hangar/internal/api"
	"infinite-experiment/hangar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers. Every route
// requires a bearer token; rows are scoped to the token's user.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, tokens middleware.TokenParser, limiter *middleware.RateLimiter) {
	svcs := deps.Services

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.AuthMiddleware(tokens))
		v1.Use(limiter.Middleware)

		v1.Route("/notifications", func(n chi.Router) {
			n.Post("/", api.CreateNotificationHandler(svcs.Notifications))
			n.Get("/{id}", api.GetNotificationHandler(svcs.Notifications))
			n.Put("/{id}", api.UpdateNotificationHandler(svcs.Notifications))
			n.Delete("/{id}", api.DeleteNotificationHandler(svcs.Notifications))
			n.Post("/{id}/complete", api.CompleteNotificationHandler(svcs.Notifications))
			n.Get("/{id}/alert", api.NotificationAlertHandler(svcs.Alerts))
		})

		v1.Route("/directives", func(d chi.Router) {
			d.Post("/", api.CreateDirectiveHandler(svcs.Directives))
			d.Get("/{id}", api.GetDirectiveHandler(svcs.Directives))
			d.Put("/{id}", api.UpdateDirectiveHandler(svcs.Directives))
			d.Delete("/{id}", api.DeleteDirectiveHandler(svcs.Directives))
			d.Post("/{id}/reconcile", api.ReconcileDirectiveHandler(svcs.Directives))
			d.Get("/{id}/compliance", api.GetDirectiveComplianceHandler(svcs.Compliance))
			d.Post("/{id}/compliance", api.SaveDirectiveComplianceHandler(svcs.Compliance))
		})

		v1.Delete("/compliance-events/{id}", api.DeleteComplianceEventHandler(svcs.Compliance))

		v1.Route("/maintenance-logs", func(m chi.Router) {
			m.Post("/", api.CreateMaintenanceLogHandler(svcs.MaintenanceLog))
			m.Get("/{id}", api.GetMaintenanceLogHandler(svcs.MaintenanceLog))
			m.Put("/{id}", api.UpdateMaintenanceLogHandler(svcs.MaintenanceLog))
			m.Delete("/{id}", api.DeleteMaintenanceLogHandler(svcs.MaintenanceLog))
		})

		v1.Get("/aircraft/{aircraftID}/alerts", api.AircraftAlertsHandler(svcs.Alerts))
		v1.Get("/alerts/summary", api.AlertSummaryHandler(svcs.Alerts))
	})
}
