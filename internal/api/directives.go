package api

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/models/dtos/requests"
	gormModels "infinite-experiment/hangar/internal/models/gorm"
	"infinite-experiment/hangar/internal/services"

	"github.com/go-chi/chi/v5"
)

type DirectiveAPI interface {
	GetDirective(ctx context.Context, userID, id string) (*gormModels.Directive, error)
	CreateDirective(ctx context.Context, userID string, d *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error)
	UpdateDirective(ctx context.Context, userID, id string, edit *gormModels.Directive, due services.DueInput) (*services.DirectiveResult, error)
	ReconcileDirectiveNotifications(ctx context.Context, userID, directiveID string) (*services.ReconcileResult, error)
	DeleteDirective(ctx context.Context, userID, id string) (*services.DeleteDirectiveResult, error)
}

type ComplianceAPI interface {
	GetDirectiveCompliance(ctx context.Context, userID, directiveID string) (*services.DirectiveCompliance, error)
	SaveDirectiveCompliance(ctx context.Context, userID string, in services.SaveComplianceInput) (*services.SaveComplianceResult, error)
	DeleteComplianceEvent(ctx context.Context, userID, eventID string) (*services.DeleteComplianceResult, error)
}

// decodeDirective reads a directive body together with its due condition.
func decodeDirective(w http.ResponseWriter, r *http.Request, initTime time.Time) (*gormModels.Directive, services.DueInput, bool) {
	var req requests.DirectiveRequest
	if !decodeRequest(w, r, initTime, &req) {
		return nil, services.DueInput{}, false
	}
	dueDate, err := req.ParsedDueDate()
	if err != nil {
		respondInvalid(w, initTime, err)
		return nil, services.DueInput{}, false
	}
	due := services.DueInput{
		Date:   dueDate,
		Months: req.DueMonths,
		Hours:  req.DueHours,
		Mode:   constants.DueHoursMode(req.DueHoursMode),
	}
	return req.ToModel(), due, true
}

// GetDirectiveHandler handles GET /api/v1/directives/{id}
func GetDirectiveHandler(svc DirectiveAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		d, err := svc.GetDirective(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive fetched", d)
	}
}

// CreateDirectiveHandler handles POST /api/v1/directives
func CreateDirectiveHandler(svc DirectiveAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		d, due, ok := decodeDirective(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.CreateDirective(r.Context(), userID, d, due)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive created", result, http.StatusCreated)
	}
}

// UpdateDirectiveHandler handles PUT /api/v1/directives/{id}
func UpdateDirectiveHandler(svc DirectiveAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		edit, due, ok := decodeDirective(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.UpdateDirective(r.Context(), userID, chi.URLParam(r, "id"), edit, due)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive updated", result)
	}
}

// ReconcileDirectiveHandler handles POST /api/v1/directives/{id}/reconcile
func ReconcileDirectiveHandler(svc DirectiveAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.ReconcileDirectiveNotifications(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive notifications reconciled", result)
	}
}

// DeleteDirectiveHandler handles DELETE /api/v1/directives/{id}
func DeleteDirectiveHandler(svc DirectiveAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.DeleteDirective(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive deleted", result)
	}
}

// GetDirectiveComplianceHandler handles GET /api/v1/directives/{id}/compliance
func GetDirectiveComplianceHandler(svc ComplianceAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		record, err := svc.GetDirectiveCompliance(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Directive compliance fetched", record)
	}
}

// SaveDirectiveComplianceHandler handles POST /api/v1/directives/{id}/compliance.
// A body with an id edits that event.
func SaveDirectiveComplianceHandler(svc ComplianceAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		var req requests.ComplianceEventRequest
		if !decodeRequest(w, r, initTime, &req) {
			return
		}
		event, err := req.ToModel()
		if err != nil {
			respondInvalid(w, initTime, err)
			return
		}

		directiveID := chi.URLParam(r, "id")
		event.DirectiveID = directiveID
		result, err := svc.SaveDirectiveCompliance(r.Context(), userID, services.SaveComplianceInput{
			DirectiveID:            directiveID,
			Event:                  event,
			MarkDirectiveCompleted: req.MarkDirectiveCompleted,
		})
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Compliance saved", result)
	}
}

// DeleteComplianceEventHandler handles DELETE /api/v1/compliance-events/{id}
func DeleteComplianceEventHandler(svc ComplianceAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.DeleteComplianceEvent(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Compliance event deleted", result)
	}
}
