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

// NotificationAPI is the part of the notification service the handlers use.
type NotificationAPI interface {
	GetNotification(ctx context.Context, userID, id string) (*gormModels.Notification, error)
	CreateNotification(ctx context.Context, userID string, n *gormModels.Notification) (*gormModels.Notification, error)
	UpdateNotification(ctx context.Context, userID, id string, edit *gormModels.Notification) (*gormModels.Notification, error)
	DeleteNotification(ctx context.Context, userID, id string) error
	CompleteNotification(ctx context.Context, userID, id string) (*services.CompletionResult, error)
}

// GetNotificationHandler handles GET /api/v1/notifications/{id}
func GetNotificationHandler(svc NotificationAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		n, err := svc.GetNotification(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Notification fetched", n)
	}
}

// CreateNotificationHandler handles POST /api/v1/notifications
func CreateNotificationHandler(svc NotificationAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		var req requests.NotificationRequest
		if !decodeRequest(w, r, initTime, &req) {
			return
		}
		n, err := req.ToModel()
		if err != nil {
			respondInvalid(w, initTime, err)
			return
		}

		created, err := svc.CreateNotification(r.Context(), userID, n)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Notification created", created, http.StatusCreated)
	}
}

// UpdateNotificationHandler handles PUT /api/v1/notifications/{id}. A user
// edit freezes the notification against automatic updates.
func UpdateNotificationHandler(svc NotificationAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		var req requests.NotificationRequest
		if !decodeRequest(w, r, initTime, &req) {
			return
		}
		edit, err := req.ToModel()
		if err != nil {
			respondInvalid(w, initTime, err)
			return
		}

		updated, err := svc.UpdateNotification(r.Context(), userID, chi.URLParam(r, "id"), edit)
		if err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Notification updated", updated)
	}
}

// DeleteNotificationHandler handles DELETE /api/v1/notifications/{id}
func DeleteNotificationHandler(svc NotificationAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		if err := svc.DeleteNotification(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Notification deleted", nil)
	}
}

// CompleteNotificationHandler handles POST /api/v1/notifications/{id}/complete.
// If the next occurrence could not be created the completion still stands
// and is returned with the SUCCESSOR_NOT_CREATED code.
func CompleteNotificationHandler(svc NotificationAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := requireUser(w, r, initTime)
		if !ok {
			return
		}

		result, err := svc.CompleteNotification(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			if result != nil && services.ErrorCode(err) == constants.ErrCodeSuccessorFailed {
				common.RespondPartial(w, initTime, constants.ErrCodeSuccessorFailed,
					constants.GetErrorMessage(constants.ErrCodeSuccessorFailed), result)
				return
			}
			handleServiceError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Notification completed", result)
	}
}
