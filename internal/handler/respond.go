package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clipship/backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Forbidden deliberately covers not-owned and (for mutations) not-found, so
// a denied caller learns nothing about whether the id exists.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have access to this video")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "video not found")
	case errors.Is(err, service.ErrUploadQuotaExceeded):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: "Sorry, you have reached the maximum video upload limit on our free tier. Please upgrade to upload more.",
			Code:  "quota_exceeded",
		})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable, please retry")
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
