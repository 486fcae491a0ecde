package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/redis"
)

// HealthHandler reports service and dependency health
type HealthHandler struct {
	db    *database.DB  // optional
	redis *redis.Client // optional
}

// NewHealthHandler creates a health handler; both dependencies may be nil
func NewHealthHandler(db *database.DB, rc *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rc}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "ok",
		"service": "radar-api",
	}

	if h.db != nil {
		dbStatus := h.db.HealthCheck(ctx)
		body["database"] = dbStatus
		if !dbStatus.Healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}

	if h.redis != nil && h.redis.Enabled() {
		if err := h.redis.Ping(ctx); err != nil {
			body["redis"] = map[string]interface{}{"healthy": false, "error": err.Error()}
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		} else {
			body["redis"] = map[string]interface{}{"healthy": true}
		}
	}

	respondJSON(w, status, body)
}
