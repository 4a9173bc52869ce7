// Package httpx provides JSON response utilities for the admin API.
//
// Every endpoint answers with an envelope carrying an "ok" flag; failures
// additionally carry a short human-readable "error" message and a machine
// readable "kind". Raw error chains never cross the API boundary.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope is the common response wrapper.
type Envelope map[string]any

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success envelope, merging the provided fields with ok:true.
func OK(w http.ResponseWriter, status int, fields Envelope) {
	body := Envelope{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	JSON(w, status, body)
}

// Fail sends a failure envelope with the given status, kind and message.
func Fail(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, Envelope{"ok": false, "error": message, "kind": kind})
}

// DecodeJSON decodes the request body into the target struct. Malformed
// bodies map to ErrValidation so handlers can delegate to RespondError.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON body", ErrValidation)
	}
	return nil
}
