package api

import (
	"context"
	"net/http"
	"time"
)

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}

// HealthProbe checks one backing service.
type HealthProbe func(ctx context.Context) error

// HealthCheckHandler handles GET /healthCheck. Each probe is reported by
// name; any failure marks the whole service down.
func HealthCheckHandler(probes map[string]HealthProbe, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		statuses := make(map[string]ServiceStatus, len(probes))
		overallStatus := "ok"
		for name, probe := range probes {
			status := ServiceStatus{Status: "ok", Details: "connected"}
			if err := probe(ctx); err != nil {
				status = ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			statuses[name] = status
		}

		resp := HealthCheckResponse{
			Status:   overallStatus,
			Services: statuses,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
