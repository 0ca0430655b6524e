package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/usedgoods/marketplace/internal/ctxkeys"
	"github.com/usedgoods/marketplace/internal/service"
)

const jsonMaxBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Error("failed to write json response", "status", status, "error", err)
	}
}

// writeError maps service error kinds to status codes. Internal details of
// 5xx errors are logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	fields := []any{
		"status", status,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", ctxkeys.RequestID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", fields...)
		message = "internal error"
		if errors.Is(err, service.ErrStorage) {
			message = "file storage failed"
		}
	} else {
		slog.Debug("request rejected", fields...)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a size-limited JSON body into dst. Decode failures are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, jsonMaxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("%w: request body too large", service.ErrValidation)
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: request body is empty", service.ErrValidation)
	default:
		return fmt.Errorf("%w: invalid JSON payload: %v", service.ErrValidation, err)
	}
}
