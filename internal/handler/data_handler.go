package handler

import (
	"net/http"
	"strconv"

	"FieldMonitorAPI/internal/logger"
	"FieldMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type DataHandler struct {
	dataService service.IDataService
	log         *logger.Logger
}

func NewDataHandler(dataService service.IDataService, log *logger.Logger) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		log:         log,
	}
}

func (h *DataHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/data/weather", h.Weather).Methods("GET")
	r.HandleFunc("/data/watchdog", h.Watchdog).Methods("GET")
	r.HandleFunc("/data/rivercity", h.Rivercity).Methods("GET")
	r.HandleFunc("/data/imprimed", h.ImpriMed).Methods("GET")
	r.HandleFunc("/charts", h.Charts).Methods("GET")
	r.HandleFunc("/recaps", h.Recaps).Methods("GET")
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			return parsed
		}
	}
	return 0
}

func (h *DataHandler) Weather(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dataService.RecentWeather(r.Context(), queryLimit(r))
	if err != nil {
		h.log.Error("Failed to get weather data: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) Watchdog(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dataService.RecentWatchdog(r.Context(), queryLimit(r))
	if err != nil {
		h.log.Error("Failed to get watchdog data: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) Rivercity(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dataService.RecentRivercity(r.Context(), queryLimit(r))
	if err != nil {
		h.log.Error("Failed to get rivercity data: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) ImpriMed(w http.ResponseWriter, r *http.Request) {
	devEUI := r.URL.Query().Get("deveui")
	if devEUI == "" {
		respondError(w, http.StatusBadRequest, "deveui query parameter is required")
		return
	}

	rows, err := h.dataService.RecentImpriMed(r.Context(), devEUI, queryLimit(r))
	if err != nil {
		h.log.Error("Failed to get ImpriMed data for %s: %v", devEUI, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

func (h *DataHandler) Charts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.dataService.ListCharts(r.Context())
	if err != nil {
		h.log.Error("Failed to get charts: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, charts)
}

func (h *DataHandler) Recaps(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("user_email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "user_email query parameter is required")
		return
	}

	recaps, err := h.dataService.RecapsForUser(r.Context(), email, queryLimit(r))
	if err != nil {
		h.log.Error("Failed to get weekly recaps for %s: %v", email, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, recaps)
}
