package handler

import (
	"encoding/json"
	"net/http"

	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// PlanService defines the itinerary and review operations the customer
// handlers need.
type PlanService interface {
	GeneratePlan(customerID, destination string, days int) (models.Plan, error)
	ListPlans(customerID string) []models.Plan
	GetPlan(customerID string, id int64) (models.Plan, error)
	AddReview(customerID string, tourID int64, rating int, comment string) (models.Review, error)
	ListReviews(tourID int64) []models.Review
}

// PlanHandler handles itinerary generation and reviews.
type PlanHandler struct {
	Plans PlanService
}

type generateRequest struct {
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	Preferences []string `json:"preferences,omitempty"`
}

// Generate handles POST /api/plans/generate.
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	plan, err := h.Plans.GeneratePlan(identity.UserID, req.Destination, req.Days)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ListMine handles GET /api/plans.
func (h *PlanHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.Plans.ListPlans(identity.UserID))
}

// Get handles GET /api/plans/{id}.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid plan id", http.StatusBadRequest)
		return
	}
	plan, err := h.Plans.GetPlan(identity.UserID, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/tours/{id}/reviews.
func (h *PlanHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	review, err := h.Plans.AddReview(identity.UserID, id, req.Rating, req.Comment)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// ListReviews handles GET /api/tours/{id}/reviews.
func (h *PlanHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		http.Error(w, "invalid tour id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Plans.ListReviews(id))
}
