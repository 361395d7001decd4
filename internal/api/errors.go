package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"infinite-experiment/hangar/internal/auth"
	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/models/dtos/requests"
	"infinite-experiment/hangar/internal/services"
)

// handleServiceError converts a service error into an error envelope.
func handleServiceError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	var ce *services.ComplianceError
	if errors.As(err, &ce) {
		statusCode := mapErrorCodeToHTTPStatus(ce.Code)
		if statusCode >= http.StatusInternalServerError {
			logging.Error("Request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"code", ce.Code,
				"error", err,
			)
		}
		common.RespondError(w, initTime, ce.Code, ce.Message, statusCode)
		return
	}

	logging.Error("Unexpected error", "method", r.Method, "path", r.URL.Path, "error", err)
	common.RespondError(w, initTime, constants.ErrCodeStoreFailure, "An unexpected error occurred", http.StatusInternalServerError)
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(errorCode string) int {
	switch errorCode {
	// 400 Bad Request - the request itself is wrong
	case constants.ErrCodeBadRequest:
		return http.StatusBadRequest

	// 422 Unprocessable Entity - well formed but violates a rule
	case constants.ErrCodeValidation,
		constants.ErrCodeCounterBelowActual,
		constants.ErrCodeCompletionNotAllow:
		return http.StatusUnprocessableEntity

	// 401 Unauthorized
	case constants.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	// 404 Not Found
	case constants.ErrCodeNotFound:
		return http.StatusNotFound

	// 409 Conflict - user edits win over automatic updates
	case constants.ErrCodeFrozen:
		return http.StatusConflict

	// 503 Service Unavailable - counters could not be read
	case constants.ErrCodeCounterUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// requireUser returns the caller's user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request, initTime time.Time) (string, bool) {
	userID := auth.UserIDFrom(r.Context())
	if userID == "" {
		common.RespondError(w, initTime, constants.ErrCodeUnauthorized,
			constants.GetErrorMessage(constants.ErrCodeUnauthorized), http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// decodeRequest reads a JSON body into req and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, initTime time.Time, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		common.RespondError(w, initTime, constants.ErrCodeBadRequest,
			constants.GetErrorMessage(constants.ErrCodeBadRequest), http.StatusBadRequest)
		return false
	}
	if err := requests.Validate(req); err != nil {
		common.RespondError(w, initTime, constants.ErrCodeValidation, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// respondInvalid writes a 422 for a request that decoded but could not be
// converted.
func respondInvalid(w http.ResponseWriter, initTime time.Time, err error) {
	common.RespondError(w, initTime, constants.ErrCodeValidation, err.Error(), http.StatusUnprocessableEntity)
}
