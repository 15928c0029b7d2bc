package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/models"
	"FieldMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type ThresholdHandler struct {
	thresholdService service.IThresholdService
	checker          *service.ThresholdChecker
	cycleTimeout     time.Duration
	log              *logger.Logger
}

func NewThresholdHandler(thresholdService service.IThresholdService, checker *service.ThresholdChecker, cycleTimeout time.Duration, log *logger.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		thresholdService: thresholdService,
		checker:          checker,
		cycleTimeout:     cycleTimeout,
		log:              log,
	}
}

func (h *ThresholdHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/thresholds", h.List).Methods("GET")
	r.HandleFunc("/thresholds/latest", h.ListLatest).Methods("GET")
	r.HandleFunc("/thresholds/create_threshold", h.Create).Methods("POST")
	r.HandleFunc("/thresholds/update_threshold/{id}", h.UpdateViaLink).Methods("GET")
	r.HandleFunc("/thresholds/get_last_alert_time/{id}", h.GetLastAlertTime).Methods("GET")
	r.HandleFunc("/thresholds/update_last_alert_time/{id}", h.UpdateLastAlertTime).Methods("PUT")
	r.HandleFunc("/thresholds/run-check", h.RunCheck).Methods("GET")
}

func (h *ThresholdHandler) List(w http.ResponseWriter, r *http.Request) {
	thresholds, err := h.thresholdService.ListThresholds(r.Context())
	if err != nil {
		h.log.Error("Failed to list thresholds: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, thresholds)
}

func (h *ThresholdHandler) ListLatest(w http.ResponseWriter, r *http.Request) {
	thresholds, err := h.thresholdService.ListLatestThresholds(r.Context())
	if err != nil {
		h.log.Error("Failed to list latest thresholds: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, thresholds)
}

func (h *ThresholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	threshold, err := h.thresholdService.CreateThreshold(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create threshold: %v", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, threshold)
}

// UpdateViaLink serves the disable deep link embedded in alert messages.
// A GET is used so the link works straight from an SMS or email client.
func (h *ThresholdHandler) UpdateViaLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid threshold ID")
		return
	}

	threshKill := false
	if v := r.URL.Query().Get("thresh_kill"); v != "" {
		threshKill, err = strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "thresh_kill must be a boolean")
			return
		}
	}
	timeframe := r.URL.Query().Get("timeframe")

	threshold, err := h.thresholdService.DisableThreshold(r.Context(), id, threshKill, timeframe)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to update threshold %d via link: %v", id, err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, threshold)
}

func (h *ThresholdHandler) GetLastAlertTime(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid threshold ID")
		return
	}

	ts, err := h.thresholdService.GetLastAlertTime(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to get last alert time for threshold %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"time_of_last_alert": ts})
}

func (h *ThresholdHandler) UpdateLastAlertTime(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid threshold ID")
		return
	}

	var body struct {
		TimeOfLastAlert time.Time `json:"time_of_last_alert"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.thresholdService.UpdateLastAlertTime(r.Context(), id, body.TimeOfLastAlert); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to update last alert time for threshold %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "last alert time updated"})
}

// RunCheck triggers one check cycle on demand. A cycle already in flight
// answers 409.
func (h *ThresholdHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cycleTimeout)
	defer cancel()

	if err := h.checker.RunCycle(ctx); err != nil {
		if errors.Is(err, service.ErrCycleRunning) {
			respondError(w, http.StatusConflict, "A threshold check cycle is already running")
			return
		}
		h.log.Error("Manual threshold check failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "threshold check complete"})
}
