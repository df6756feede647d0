package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/pkg/postgres"
)

// HealthHandler handles HTTP health check endpoints. Readiness pings the
// database; liveness never touches dependencies.
type HealthHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pool: pool, logger: logger}
}

// RegisterRoutes registers health check routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

func (h *HealthHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "gl-service",
	})
}

func (h *HealthHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := postgres.HealthCheck(r.Context(), h.pool); err != nil {
			h.logger.Warn("readiness check failed", "error", err)
			h.write(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "not ready",
				"service": "gl-service",
			})
			return
		}
	}
	h.write(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": "gl-service",
	})
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}
