package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// AccountService defines the admin account-management operations.
type AccountService interface {
	ListUsers() []models.User
	DeactivateUser(id, reason, by string) (models.User, error)
	ReactivateUser(id string) (models.User, error)
	ListPartners() []models.Partner
	DeactivatePartner(id, reason, by string) (models.Partner, error)
	ReactivatePartner(id string) (models.Partner, error)
	Revenue(from, to time.Time) models.RevenueReport
}

// AccountHandler handles admin user/partner management and reports.
type AccountHandler struct {
	Accounts AccountService
}

// ListUsers handles GET /api/admin/users.
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Accounts.ListUsers())
}

// DeactivateUser handles POST /api/admin/users/{id}/deactivate.
func (h *AccountHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		http.Error(w, "a reason is required", http.StatusBadRequest)
		return
	}
	u, err := h.Accounts.DeactivateUser(chi.URLParam(r, "id"), req.Reason, identity.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ReactivateUser handles POST /api/admin/users/{id}/reactivate.
func (h *AccountHandler) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.ReactivateUser(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ListPartners handles GET /api/admin/partners.
func (h *AccountHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Accounts.ListPartners())
}

// DeactivatePartner handles POST /api/admin/partners/{id}/deactivate.
func (h *AccountHandler) DeactivatePartner(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		http.Error(w, "a reason is required", http.StatusBadRequest)
		return
	}
	p, err := h.Accounts.DeactivatePartner(chi.URLParam(r, "id"), req.Reason, identity.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ReactivatePartner handles POST /api/admin/partners/{id}/reactivate.
func (h *AccountHandler) ReactivatePartner(w http.ResponseWriter, r *http.Request) {
	p, err := h.Accounts.ReactivatePartner(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Revenue handles GET /api/admin/reports/revenue?from=&to=.
func (h *AccountHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Accounts.Revenue(from, to))
}
