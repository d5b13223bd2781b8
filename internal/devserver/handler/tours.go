package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/viettravel/tourhub/internal/lifecycle/tour"
	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// TourService defines the operations the tour handlers need.
type TourService interface {
	CreateTour(partnerID string, t models.Tour) (models.Tour, error)
	UpdateTour(partnerID string, t models.Tour) (models.Tour, error)
	ProposeUpdate(partnerID string, originalID int64, changes models.Tour) (models.Tour, error)
	SubmitTour(partnerID string, id int64) (models.Tour, error)
	ResubmitTour(partnerID string, id int64) (models.Tour, error)
	RetireTour(partnerID string, id int64, choice tour.RetireChoice) (models.Tour, error)
	AddTourImage(partnerID string, id int64, url string) (models.Tour, error)
	ApproveTour(id int64) (models.Tour, error)
	RejectTour(id int64, reason string) (models.Tour, error)
	ApproveUpdate(originalID int64) (models.Tour, error)
	RejectUpdate(originalID int64, reason string) (models.Tour, error)
	GetTour(id int64) (models.Tour, error)
	ListApprovedTours() []models.Tour
	ListPartnerTours(partnerID string) []models.Tour
	ListPendingTours() []models.Tour
}

// TourHandler handles the catalogue, the partner listing workflow and the
// admin approval workflow.
type TourHandler struct {
	Tours TourService
}

// ListApproved handles GET /api/tours.
func (h *TourHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tours.ListApprovedTours())
}

// Get handles GET /api/tours/{id}.
func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	t, err := h.Tours.GetTour(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListMine handles GET /api/partner/tours.
func (h *TourHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.Tours.ListPartnerTours(id.UserID))
}

// Create handles POST /api/partner/tours.
func (h *TourHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	var t models.Tour
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	created, err := h.Tours.CreateTour(id.UserID, t)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/partner/tours/{id}.
func (h *TourHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	var t models.Tour
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	t.ID = id
	updated, err := h.Tours.UpdateTour(identity.UserID, t)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ProposeUpdate handles POST /api/partner/tours/{id}/propose-update.
func (h *TourHandler) ProposeUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	var changes models.Tour
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	proposal, err := h.Tours.ProposeUpdate(identity.UserID, id, changes)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// Submit handles POST /api/partner/tours/{id}/submit.
func (h *TourHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.partnerTransition(w, r, h.Tours.SubmitTour)
}

// Resubmit handles POST /api/partner/tours/resubmit-rejected/{id}.
func (h *TourHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	h.partnerTransition(w, r, h.Tours.ResubmitTour)
}

func (h *TourHandler) partnerTransition(w http.ResponseWriter, r *http.Request, fn func(string, int64) (models.Tour, error)) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	t, err := fn(identity.UserID, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type retireRequest struct {
	Action tour.RetireChoice `json:"action"`
}

// Retire handles POST /api/partner/tours/{id}/retire.
func (h *TourHandler) Retire(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	var req retireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	t, err := h.Tours.RetireTour(identity.UserID, id, req.Action)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UploadImage handles POST /api/partner/tours/{id}/images (multipart).
func (h *TourHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()
	// The dev server records a synthetic URL instead of storing bytes.
	url := fmt.Sprintf("/static/tours/%d/%s", id, header.Filename)
	t, err := h.Tours.AddTourImage(identity.UserID, id, url)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListPending handles GET /api/admin/tours/pending.
func (h *TourHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tours.ListPendingTours())
}

// Approve handles POST /api/admin/tours/{id}/approve.
func (h *TourHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, func(id int64, _ string) (models.Tour, error) {
		return h.Tours.ApproveTour(id)
	}, false)
}

// Reject handles POST /api/admin/tours/{id}/reject. The body is the
// rejection reason as a raw JSON string.
func (h *TourHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.Tours.RejectTour, true)
}

// ApproveUpdate handles POST /api/admin/tours/{id}/approve-update, keyed by
// the original tour's id.
func (h *TourHandler) ApproveUpdate(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, func(id int64, _ string) (models.Tour, error) {
		return h.Tours.ApproveUpdate(id)
	}, false)
}

// RejectUpdate handles POST /api/admin/tours/{id}/reject-update, keyed by
// the original tour's id.
func (h *TourHandler) RejectUpdate(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.Tours.RejectUpdate, true)
}

func (h *TourHandler) adminTransition(w http.ResponseWriter, r *http.Request, fn func(int64, string) (models.Tour, error), wantReason bool) {
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	var reason string
	if wantReason {
		if err := json.NewDecoder(r.Body).Decode(&reason); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	t, err := fn(id, reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
