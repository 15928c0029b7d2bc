package handler

import (
	"net/http"
	"time"

	"FieldMonitorAPI/internal/database"
	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"

	"github.com/gorilla/mux"
)

type HealthHandler struct {
	db  *database.Database
	log *logger.Logger
}

func NewHealthHandler(db *database.Database, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}
	resp.Services.Database = true

	if err := h.db.Health(r.Context()); err != nil {
		h.log.Error("Health check failed: %v", err)
		resp.Status = "unhealthy"
		resp.Services.Database = false
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
