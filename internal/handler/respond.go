package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmnstore/mmnstore/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondError maps service errors onto HTTP statuses. The underlying
// message is included so the UI can show something actionable, accepting
// that backend error text reaches end users.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	case service.IsNotFound(err):
		status = http.StatusNotFound
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}
