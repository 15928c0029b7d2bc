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

type AdminHandler struct {
	adminService service.IAdminService
	log          *logger.Logger
}

func NewAdminHandler(adminService service.IAdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		log:          log,
	}
}

func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admins", h.List).Methods("GET")
	r.HandleFunc("/admins/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc("/admins/update_admin/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/admins/disable_alerts/{id}", h.DisableAlerts).Methods("GET")
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminService.ListAdmins(r.Context())
	if err != nil {
		h.log.Error("Failed to list admins: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	admin, err := h.adminService.GetAdmin(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to get admin %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	var req models.UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.adminService.UpdateAdmin(r.Context(), id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to update admin %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, admin)
}

// DisableAlerts is the admin-level deep link target. A GET is used so the
// link works straight from an SMS or email client.
func (h *AdminHandler) DisableAlerts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	if err := h.adminService.DisableAlerts(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to disable alerts for admin %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "all alerts disabled"})
}
