package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"dome/internal/apperr"
	"dome/internal/contextutil"
	"dome/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 4 << 20

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeJSON writes v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps an error to its HTTP status code and kind name.
func statusFor(err error) (int, string) {
	if errors.Is(err, service.ErrSweepRunning) {
		return http.StatusConflict, "sweep_running"
	}
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest, "validation"
	case apperr.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.ErrDuplicate:
		return http.StatusConflict, "duplicate"
	case apperr.ErrDimensionMismatch:
		return http.StatusConflict, "dimension_mismatch"
	case apperr.ErrProviderUnavailable:
		return http.StatusBadGateway, "provider_unavailable"
	case apperr.ErrIndexCorruption:
		return http.StatusServiceUnavailable, "index_corruption"
	}
	return http.StatusInternalServerError, ""
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err)
		msg = defaultMsg
	} else {
		logger.WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Kind: kind})
}
