package api

import (
	"encoding/json"
	"net/http"

	"infinite-experiment/hangar/internal/logging"
)

// writeJSON writes a bare JSON body for endpoints outside the envelope.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
