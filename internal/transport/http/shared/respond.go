// Package shared holds response helpers used by every handler so error
// envelopes stay consistent across modules.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "memberd/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into an HTTP response. Non-domain
// errors collapse to a bare 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr dErrors.Error
	if !errors.As(err, &domainErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)})
		return
	}

	status := dErrors.ToHTTPStatus(domainErr.Code)
	body := ErrorResponse{Error: string(domainErr.Code), Message: domainErr.Message}
	if status == http.StatusInternalServerError {
		// Internal messages stay in the logs.
		body.Message = ""
	}
	writeJSON(w, status, body)
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
