package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/pkg/logger"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// StatusFor maps a service error to its HTTP status
// ⭐ SSOT: 에러 → HTTP 상태 매핑은 여기서만
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrModelUnavailable), errors.Is(err, contracts.ErrNoProducts):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrTrainingInProgress):
		return http.StatusConflict
	case errors.Is(err, contracts.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs server-side failures and writes the mapped status
func respondServiceError(w http.ResponseWriter, log *logger.Logger, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	respondError(w, status, err.Error())
}

// queryInt parses an optional integer query parameter (missing → nil)
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, contracts.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

// queryTopK parses top_k (missing → 0, meaning the policy default)
func queryTopK(r *http.Request) (int, error) {
	v, err := queryInt(r, "top_k")
	if err != nil || v == nil {
		return 0, err
	}
	if *v < 1 {
		return 0, contracts.NewValidationError("top_k", "must be at least 1")
	}
	return *v, nil
}

// queryDate parses a required YYYY-MM-DD query parameter
func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, contracts.NewValidationError(name, "is required (YYYY-MM-DD)")
	}
	d, err := contracts.ParseDate(raw)
	if err != nil {
		return time.Time{}, contracts.NewValidationError(name, err.Error())
	}
	return d, nil
}

// queryMode parses mode with a per-endpoint default
func queryMode(r *http.Request, fallback contracts.ModelMode) (contracts.ModelMode, error) {
	return contracts.ParseMode(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode"))), fallback)
}
