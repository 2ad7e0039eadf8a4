package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/runnerkit/hello-service/internal/domain"
)

// respondJSON writes v without a trailing newline.
func respondJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondHealth writes a probe result with the status code it carries.
func respondHealth(w http.ResponseWriter, h domain.HealthStatus) {
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, h.HTTPCode, h)
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidKey):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDependencyUnavailable):
		respondError(w, http.StatusServiceUnavailable, "dependency unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
