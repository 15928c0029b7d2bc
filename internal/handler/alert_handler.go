package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService service.IAlertService
	log          *logger.Logger
}

func NewAlertHandler(alertService service.IAlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		log:          log,
	}
}

func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerts", h.List).Methods("GET")
	r.HandleFunc("/alerts/metric/{metric}", h.ListByMetric).Methods("GET")
	r.HandleFunc("/alerts/create_alert", h.Create).Methods("POST")
	r.HandleFunc("/alerts/{id}", h.Delete).Methods("DELETE")
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	alerts, err := h.alertService.GetAlerts(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("Failed to get alerts: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) ListByMetric(w http.ResponseWriter, r *http.Request) {
	metric := mux.Vars(r)["metric"]

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	alerts, err := h.alertService.GetAlertsByMetric(r.Context(), metric, limit)
	if err != nil {
		if strings.Contains(err.Error(), "unrecognized metric") {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("Failed to get alerts for %s: %v", metric, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alert, err := h.alertService.CreateAlert(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create alert: %v", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, alert)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	if err := h.alertService.DeleteAlert(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to delete alert %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
