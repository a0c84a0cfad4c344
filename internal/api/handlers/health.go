package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/model"
)

// Pinger 연결 상태 확인 (database.DB, redis.Client)
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus dependency and model status
type HealthHandler struct {
	db       Pinger
	cache    Pinger
	registry *model.Registry
}

// NewHealthHandler creates a new health handler; any dependency may be nil
func NewHealthHandler(db, cache Pinger, registry *model.Registry) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, registry: registry}
}

// Health returns 200 when the database answers, 503 otherwise
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "ok",
		"service": "salescast",
		"time":    time.Now().Format(time.RFC3339),
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			body["redis"] = err.Error()
		} else {
			body["redis"] = "ok"
		}
	}
	if h.registry != nil {
		body["models"] = map[string]bool{
			string(contracts.ModeSeed): h.registry.Loaded(contracts.ModeSeed) != nil,
			string(contracts.ModeLive): h.registry.Loaded(contracts.ModeLive) != nil,
		}
	}

	respondJSON(w, status, body)
}
