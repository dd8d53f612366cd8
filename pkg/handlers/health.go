package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/config"
	"github.com/doctrace/review-engine/pkg/database"
)

// HealthResponse reports service and database reachability.
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	cfg    *config.Config
	db     *database.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *config.Config, db *database.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Check)
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		OK:       status == http.StatusOK,
		Database: dbStatus,
		Version:  h.cfg.Version,
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
