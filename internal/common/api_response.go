package common

import (
	"encoding/json"
	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/logging"
	"net/http"
	"time"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, errCode string, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		Code:         errCode,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondPartial sends a success envelope that also carries the code of a
// failed follow-up step. Used when the primary write stands.
func RespondPartial(w http.ResponseWriter, initTime time.Time, errCode string, message string, data any) {
	response := APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		Code:         errCode,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
