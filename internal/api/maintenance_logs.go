package api

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/models/dtos/requests"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"infinite-experiment/hangar/internal/services"

	"github.com/go-chi/chi/v5"
)

type MaintenanceLogAPI interface {
	GetMaintenanceLog(ctx context.Context, userID, id string) (*gormModels.MaintenanceLog, []gormModels.ComplianceEvent, error)
	CreateMaintenanceLog(ctx context.Context, userID string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error)
	UpdateMaintenanceLog(ctx context.Context, userID, id string, in services.MaintenanceLogInput) (*services.MaintenanceLogResult, error)
	DeleteMaintenanceLog(ctx context.Context, userID, id string) (*services.DeleteMaintenanceLogResult, error)
}

type maintenanceLogView struct {
	Log        *gormModels.MaintenanceLog   `json:"log"`
	Compliance []gormModels.ComplianceEvent `json:"compliance"`
}

func decodeMaintenanceLog(w http.ResponseWriter, r *http.Request, initTime time.Time) (services.MaintenanceLogInput, bool) {
	var req requests.MaintenanceLogRequest
	if !decodeRequest(w, r, initTime, &req) {
		return services.MaintenanceLogInput{}, false
	}
	log, err := req.ToModel()
	if err != nil {
		respondInvalid(w, initTime, err)
		return services.MaintenanceLogInput{}, false
	}

	in := services.MaintenanceLogInput{Log: log}
	for i := range req.Compliance {
		event, err := req.Compliance[i].ToModel()
		if err != nil {
			respondInvalid(w, initTime, err)
			return services.MaintenanceLogInput{}, false
		}
		in.Compliance = append(in.Compliance, services.LinkedCompliance{
			Event:                  event,
			MarkDirectiveCompleted: req.Compliance[i].MarkDirectiveCompleted,
		})
	}
	return in, true
}

// GetMaintenanceLogHandler handles GET /api/v1/maintenance-logs/{id}
func GetMaintenanceLogHandler(svc MaintenanceLogAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		log, events, err := svc.GetMaintenanceLog(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Maintenance log fetched", maintenanceLogView{Log: log, Compliance: events})
	}
}

// CreateMaintenanceLogHandler handles POST /api/v1/maintenance-logs
func CreateMaintenanceLogHandler(svc MaintenanceLogAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		in, ok := decodeMaintenanceLog(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.CreateMaintenanceLog(r.Context(), userID, in)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Maintenance log created", result, http.StatusCreated)
	}
}

// UpdateMaintenanceLogHandler handles PUT /api/v1/maintenance-logs/{id}
func UpdateMaintenanceLogHandler(svc MaintenanceLogAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		in, ok := decodeMaintenanceLog(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.UpdateMaintenanceLog(r.Context(), userID, chi.URLParam(r, "id"), in)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Maintenance log updated", result)
	}
}

// DeleteMaintenanceLogHandler handles DELETE /api/v1/maintenance-logs/{id}
func DeleteMaintenanceLogHandler(svc MaintenanceLogAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.DeleteMaintenanceLog(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Maintenance log deleted", result)
	}
}
