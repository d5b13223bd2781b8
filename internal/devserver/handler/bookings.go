package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viettravel/tourhub/internal/lifecycle/booking"
	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// BookingService defines the operations the booking handlers need.
type BookingService interface {
	CreateBooking(customerID string, tourID int64, amount float64) (models.Booking, error)
	CancelBooking(customerID string, id int64, reason string) (models.Booking, error)
	ResolveRefund(adminID string, id int64, action booking.RefundAction, reason string) (models.Booking, error)
	ListBookings(customerID string) []models.Booking
	ListAllBookings() []models.Booking
}

// BookingHandler handles customer bookings and the admin refund workflow.
type BookingHandler struct {
	Bookings BookingService
}

type bookRequest struct {
	TourID int64   `json:"tourId"`
	Amount float64 `json:"amount"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	b, err := h.Bookings.CreateBooking(identity.UserID, req.TourID, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListMine handles GET /api/bookings.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.Bookings.ListBookings(identity.UserID))
}

// ListAll handles GET /api/admin/bookings.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Bookings.ListAllBookings())
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /api/bookings/{id}/cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	b, err := h.Bookings.CancelBooking(identity.UserID, id, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Refund handles POST /api/admin/bookings/{id}/refund/{action}, where
// action is confirm, reject or complete. The three outcomes are mutually
// exclusive; a second resolution conflicts.
func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	action := booking.RefundAction(chi.URLParam(r, "action"))

	var req reasonRequest
	if action == booking.RefundReject {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	b, err := h.Bookings.ResolveRefund(identity.UserID, id, action, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
