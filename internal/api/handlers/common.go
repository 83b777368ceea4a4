// Package handlers provides HTTP request handlers for the scand API.
// This file contains common utilities shared across all handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cyberscan/scand/internal/errors"
)

const maxRequestBody = 1 << 20 // 1 MB

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message, code string) {
	writeJSON(w, logger, status, ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// parseJSON decodes the request body into dst, rejecting unknown fields
// and oversized bodies.
func parseJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// codeOf returns the machine-readable error code string.
func codeOf(err error) string {
	return string(errors.GetCode(err))
}

// statusForError maps orchestrator error codes to HTTP status codes.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeValidation, errors.CodeTargetInvalid, errors.CodeProfileUnknown:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeDuplicateScan:
		return http.StatusConflict
	case errors.CodeCapacity:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
