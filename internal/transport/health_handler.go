package transport

import (
	"context"
	"net/http"

	"ecostore/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HealthChecker reports the state of a backing service.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// HealthHandler serves liveness and database readiness checks
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Live)
	r.Get("/api/health/db", h.Database)
}

// Live answers as long as the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}

// Database pings the store; 503 when it is unreachable.
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats := h.db.Health(r.Context())

	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	middleware.RespondWithJSON(w, status, stats)
}
