// Package store keeps the dev server's domain state in memory: users,
// partners, tours, bookings, plans and reviews. It is the transition
// authority for the lifecycle tables and enforces ownership the way the
// real backend does. Refresh tokens also live here unless a database is
// configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/lifecycle/booking"
	"github.com/viettravel/tourhub/internal/lifecycle/tour"
	"github.com/viettravel/tourhub/internal/models"
)

// ErrNotFound is returned when the addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor does not own the entity.
var ErrForbidden = errors.New("forbidden")

// ErrBadCredentials is returned on a failed login.
var ErrBadCredentials = errors.New("invalid email or password")

type account struct {
	user         models.User
	passwordHash []byte
}

// Store is the in-memory backend state. All methods are safe for
// concurrent use.
type Store struct {
	mu sync.Mutex

	accounts map[string]*account // keyed by email
	partners map[string]*models.Partner
	tours    map[int64]*models.Tour
	bookings map[int64]*models.Booking
	plans    map[int64]*models.Plan
	reviews  map[int64][]models.Review // keyed by tour id
	refresh  map[string]*tokens.StoredRefreshToken

	nextTourID    int64
	nextBookingID int64
	nextPlanID    int64
	nextReviewID  int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts: map[string]*account{},
		partners: map[string]*models.Partner{},
		tours:    map[int64]*models.Tour{},
		bookings: map[int64]*models.Booking{},
		plans:    map[int64]*models.Plan{},
		reviews:  map[int64][]models.Review{},
		refresh:  map[string]*tokens.StoredRefreshToken{},
	}
}

// SeedUser registers an account with the given role. Used at startup and in
// tests.
func (s *Store) SeedUser(email, password, fullName string, role models.Role) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: fullName,
		Role:     role,
		IsActive: true,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{user: u, passwordHash: hash}
	if role == models.RolePartner {
		s.partners[u.ID] = &models.Partner{
			ID:          u.ID,
			CompanyName: fullName,
			ContactName: fullName,
			Email:       email,
			IsActive:    true,
		}
	}
	return u, nil
}

// Authenticate checks the email/password pair and returns the account.
// Deactivated accounts cannot log in.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return models.User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}
	if !acc.user.IsActive {
		return models.User{}, fmt.Errorf("account deactivated: %s", acc.user.DeactivatedReason)
	}
	return acc.user, nil
}

// Get implements tokens.RefreshRepo.
func (s *Store) Get(_ context.Context, token string) (*tokens.StoredRefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refresh[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// Upsert implements tokens.RefreshRepo, keeping one live token per user and
// device.
func (s *Store) Upsert(_ context.Context, t *tokens.StoredRefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, existing := range s.refresh {
		if existing.UserID == t.UserID && existing.DeviceID == t.DeviceID {
			delete(s.refresh, k)
		}
	}
	cp := *t
	s.refresh[t.Token] = &cp
	return nil
}

// Delete implements tokens.RefreshRepo.
func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, token)
	return nil
}

// CreateTour saves a new draft for the partner.
func (s *Store) CreateTour(partnerID string, t models.Tour) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTourID++
	t.ID = s.nextTourID
	t.PartnerID = partnerID
	t.Status = models.TourDraft
	t.OriginalTourID = nil
	t.Deleted = false
	t.UpdatedAt = time.Now()
	s.tours[t.ID] = &t
	return t, nil
}

// UpdateTour saves edits to a draft or rejected tour owned by the partner.
func (s *Store) UpdateTour(partnerID string, t models.Tour) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.ownedTour(partnerID, t.ID)
	if err != nil {
		return models.Tour{}, err
	}
	if cur.Status != models.TourDraft && cur.Status != models.TourRejected {
		return models.Tour{}, &tour.TransitionError{From: cur.Status, Action: "edit", Actor: tour.ActorPartner}
	}
	cur.Title, cur.Description, cur.Destination = t.Title, t.Description, t.Destination
	cur.Price, cur.DurationDays = t.Price, t.DurationDays
	cur.UpdatedAt = time.Now()
	return *cur, nil
}

// ProposeUpdate spawns a draft update proposal against an approved tour.
// The original keeps its Approved status.
func (s *Store) ProposeUpdate(partnerID string, originalID int64, changes models.Tour) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orig, err := s.ownedTour(partnerID, originalID)
	if err != nil {
		return models.Tour{}, err
	}
	if orig.Status != models.TourApproved {
		return models.Tour{}, &tour.TransitionError{From: orig.Status, Action: "propose-update", Actor: tour.ActorPartner}
	}
	s.nextTourID++
	proposal := models.Tour{
		ID:             s.nextTourID,
		PartnerID:      partnerID,
		Status:         models.TourDraft,
		OriginalTourID: &originalID,
		Title:          changes.Title,
		Description:    changes.Description,
		Destination:    changes.Destination,
		Price:          changes.Price,
		DurationDays:   changes.DurationDays,
		UpdatedAt:      time.Now(),
	}
	s.tours[proposal.ID] = &proposal
	return proposal, nil
}

// SubmitTour moves a draft into review.
func (s *Store) SubmitTour(partnerID string, id int64) (models.Tour, error) {
	return s.transition(partnerID, id, tour.ActionSubmit, tour.ActorPartner)
}

// ResubmitTour moves a rejected tour back into review.
func (s *Store) ResubmitTour(partnerID string, id int64) (models.Tour, error) {
	return s.transition(partnerID, id, tour.ActionResubmit, tour.ActorPartner)
}

func (s *Store) transition(partnerID string, id int64, action tour.Action, actor tour.Actor) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ownedTour(partnerID, id)
	if err != nil {
		return models.Tour{}, err
	}
	next, err := tour.Next(t.Status, action, actor)
	if err != nil {
		return models.Tour{}, err
	}
	t.Status = next
	t.RejectReason = ""
	t.UpdatedAt = time.Now()
	return *t, nil
}

// RetireTour soft-deletes a tour or pulls it back to draft, per the owner's
// explicit choice.
func (s *Store) RetireTour(partnerID string, id int64, choice tour.RetireChoice) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ownedTour(partnerID, id)
	if err != nil {
		return models.Tour{}, err
	}
	if err := tour.ValidateRetire(*t, choice); err != nil {
		return models.Tour{}, err
	}
	switch choice {
	case tour.RetireDelete:
		t.Deleted = true
	case tour.RetireToDraft:
		t.Status = models.TourDraft
	}
	t.UpdatedAt = time.Now()
	return *t, nil
}

// ApproveTour clears a pending (non-proposal) tour.
func (s *Store) ApproveTour(id int64) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok || t.Deleted {
		return models.Tour{}, ErrNotFound
	}
	next, err := tour.Next(t.Status, tour.ActionApprove, tour.ActorAdmin)
	if err != nil {
		return models.Tour{}, err
	}
	t.Status = next
	t.UpdatedAt = time.Now()
	return *t, nil
}

// RejectTour turns a pending (non-proposal) tour down with a reason.
func (s *Store) RejectTour(id int64, reason string) (models.Tour, error) {
	if err := tour.ValidateRejectReason(reason); err != nil {
		return models.Tour{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok || t.Deleted {
		return models.Tour{}, ErrNotFound
	}
	next, err := tour.Next(t.Status, tour.ActionReject, tour.ActorAdmin)
	if err != nil {
		return models.Tour{}, err
	}
	t.Status = next
	t.RejectReason = strings.TrimSpace(reason)
	t.UpdatedAt = time.Now()
	return *t, nil
}

// ApproveUpdate approves the pending update proposal addressed by the
// original tour's id. The proposal's content supersedes the original, which
// stays Approved; the superseded proposal record is retired.
func (s *Store) ApproveUpdate(originalID int64) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orig, ok := s.tours[originalID]
	if !ok || orig.Deleted {
		return models.Tour{}, ErrNotFound
	}
	proposal := s.pendingProposal(originalID)
	if proposal == nil {
		return models.Tour{}, ErrNotFound
	}
	orig.Title, orig.Description, orig.Destination = proposal.Title, proposal.Description, proposal.Destination
	orig.Price, orig.DurationDays = proposal.Price, proposal.DurationDays
	orig.Status = models.TourApproved
	orig.UpdatedAt = time.Now()
	proposal.Status = models.TourApproved
	proposal.Deleted = true
	return *orig, nil
}

// RejectUpdate rejects the pending update proposal addressed by the
// original tour's id. The original is untouched.
func (s *Store) RejectUpdate(originalID int64, reason string) (models.Tour, error) {
	if err := tour.ValidateRejectReason(reason); err != nil {
		return models.Tour{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal := s.pendingProposal(originalID)
	if proposal == nil {
		return models.Tour{}, ErrNotFound
	}
	proposal.Status = models.TourRejected
	proposal.RejectReason = strings.TrimSpace(reason)
	proposal.UpdatedAt = time.Now()
	return *proposal, nil
}

// pendingProposal finds the in-review update proposal for the given
// original tour id. Caller must hold s.mu.
func (s *Store) pendingProposal(originalID int64) *models.Tour {
	for _, t := range s.tours {
		if t.OriginalTourID != nil && *t.OriginalTourID == originalID &&
			t.Status == models.TourPendingApproval && !t.Deleted {
			return t
		}
	}
	return nil
}

// GetTour returns one tour by id.
func (s *Store) GetTour(id int64) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok || t.Deleted {
		return models.Tour{}, ErrNotFound
	}
	return *t, nil
}

// ListApprovedTours returns the customer-visible catalogue.
func (s *Store) ListApprovedTours() []models.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tour
	for _, t := range s.tours {
		if t.Status == models.TourApproved && !t.Deleted && t.OriginalTourID == nil {
			out = append(out, *t)
		}
	}
	return out
}

// ListPartnerTours returns a partner's tours, all statuses included.
func (s *Store) ListPartnerTours(partnerID string) []models.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tour
	for _, t := range s.tours {
		if t.PartnerID == partnerID && !t.Deleted {
			out = append(out, *t)
		}
	}
	return out
}

// ListPendingTours returns tours awaiting review, update proposals included.
func (s *Store) ListPendingTours() []models.Tour {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tour
	for _, t := range s.tours {
		if t.Status == models.TourPendingApproval && !t.Deleted {
			out = append(out, *t)
		}
	}
	return out
}

// AddTourImage records an uploaded image URL on the tour.
func (s *Store) AddTourImage(partnerID string, id int64, url string) (models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ownedTour(partnerID, id)
	if err != nil {
		return models.Tour{}, err
	}
	t.ImageURLs = append(t.ImageURLs, url)
	t.UpdatedAt = time.Now()
	return *t, nil
}

// ownedTour fetches a live tour and checks ownership. Caller must hold s.mu.
func (s *Store) ownedTour(partnerID string, id int64) (*models.Tour, error) {
	t, ok := s.tours[id]
	if !ok || t.Deleted {
		return nil, ErrNotFound
	}
	if t.PartnerID != partnerID {
		return nil, ErrForbidden
	}
	return t, nil
}

// CreateBooking books a tour for the customer. The dev server settles the
// payment immediately so the booking lands in Success.
func (s *Store) CreateBooking(customerID string, tourID int64, amount float64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[tourID]
	if !ok || t.Deleted || t.Status != models.TourApproved {
		return models.Booking{}, ErrNotFound
	}
	s.nextBookingID++
	b := models.Booking{
		ID:            s.nextBookingID,
		TourID:        tourID,
		CustomerID:    customerID,
		BookingStatus: models.BookingPending,
		PaymentStatus: "Pending",
		Amount:        amount,
		CreatedAt:     time.Now(),
	}
	settled, err := booking.SettlePayment(b, true)
	if err != nil {
		return models.Booking{}, err
	}
	s.bookings[settled.ID] = &settled
	return settled, nil
}

// CancelBooking moves the customer's settled booking to CancelPending.
func (s *Store) CancelBooking(customerID string, id int64, reason string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	if b.CustomerID != customerID {
		return models.Booking{}, ErrForbidden
	}
	if err := booking.RequestCancel(*b, reason); err != nil {
		return models.Booking{}, err
	}
	b.BookingStatus = models.BookingCancelPending
	b.CancelReason = strings.TrimSpace(reason)
	return *b, nil
}

// ResolveRefund applies one of the three mutually exclusive admin refund
// outcomes. A second resolution of the same booking fails.
func (s *Store) ResolveRefund(adminID string, id int64, action booking.RefundAction, reason string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	resolved, err := booking.Resolve(*b, action, reason, adminID, time.Now())
	if err != nil {
		return models.Booking{}, err
	}
	*b = resolved
	return resolved, nil
}

// ListBookings returns the customer's bookings.
func (s *Store) ListBookings(customerID string) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out
}

// ListAllBookings returns every booking for admin screens.
func (s *Store) ListAllBookings() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out
}

// ListUsers returns all accounts.
func (s *Store) ListUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.user)
	}
	return out
}

// DeactivateUser soft-deletes an account with a reason and actor.
func (s *Store) DeactivateUser(id, reason, by string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			now := time.Now()
			acc.user.IsActive = false
			acc.user.DeactivatedReason = reason
			acc.user.DeactivatedBy = by
			acc.user.DeactivatedAt = &now
			return acc.user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// ReactivateUser restores a deactivated account.
func (s *Store) ReactivateUser(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			acc.user.IsActive = true
			acc.user.DeactivatedReason = ""
			acc.user.DeactivatedBy = ""
			acc.user.DeactivatedAt = nil
			return acc.user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// ListPartners returns all partners.
func (s *Store) ListPartners() []models.Partner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, *p)
	}
	return out
}

// DeactivatePartner soft-deletes a partner with a reason and actor.
func (s *Store) DeactivatePartner(id, reason, by string) (models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return models.Partner{}, ErrNotFound
	}
	now := time.Now()
	p.IsActive = false
	p.DeactivatedReason = reason
	p.DeactivatedBy = by
	p.DeactivatedAt = &now
	return *p, nil
}

// ReactivatePartner restores a deactivated partner.
func (s *Store) ReactivatePartner(id string) (models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return models.Partner{}, ErrNotFound
	}
	p.IsActive = true
	p.DeactivatedReason = ""
	p.DeactivatedBy = ""
	p.DeactivatedAt = nil
	return *p, nil
}

// GeneratePlan produces a canned itinerary. The real backend delegates to
// an AI service; the dev server only needs a plausible shape.
func (s *Store) GeneratePlan(customerID, destination string, days int) (models.Plan, error) {
	if strings.TrimSpace(destination) == "" || days < 1 {
		return models.Plan{}, fmt.Errorf("destination and a positive day count are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlanID++
	plan := models.Plan{
		ID:          s.nextPlanID,
		CustomerID:  customerID,
		Destination: destination,
		CreatedAt:   time.Now(),
	}
	for d := 1; d <= days; d++ {
		plan.Days = append(plan.Days, models.PlanDay{
			Day:        d,
			Summary:    fmt.Sprintf("Day %d in %s", d, destination),
			Activities: []string{"morning sightseeing", "local lunch", "evening walk"},
		})
	}
	s.plans[plan.ID] = &plan
	return plan, nil
}

// ListPlans returns the customer's plans.
func (s *Store) ListPlans(customerID string) []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Plan
	for _, p := range s.plans {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out
}

// GetPlan returns one plan, owner-only.
func (s *Store) GetPlan(customerID string, id int64) (models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return models.Plan{}, ErrNotFound
	}
	if p.CustomerID != customerID {
		return models.Plan{}, ErrForbidden
	}
	return *p, nil
}

// AddReview posts a customer review for a tour.
func (s *Store) AddReview(customerID string, tourID int64, rating int, comment string) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, fmt.Errorf("rating must be between 1 and 5")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tours[tourID]; !ok || t.Deleted {
		return models.Review{}, ErrNotFound
	}
	s.nextReviewID++
	r := models.Review{
		ID:         s.nextReviewID,
		TourID:     tourID,
		CustomerID: customerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
	s.reviews[tourID] = append(s.reviews[tourID], r)
	return r, nil
}

// ListReviews returns the reviews for a tour.
func (s *Store) ListReviews(tourID int64) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Review(nil), s.reviews[tourID]...)
}

// Revenue aggregates booking and refund totals for a period.
func (s *Store) Revenue(from, to time.Time) models.RevenueReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := models.RevenueReport{From: from, To: to}
	for _, b := range s.bookings {
		if b.CreatedAt.Before(from) || b.CreatedAt.After(to) {
			continue
		}
		switch b.BookingStatus {
		case models.BookingSuccess, models.BookingPaid, models.BookingCancelPending:
			report.BookingCount++
			report.GrossRevenue += b.Amount
		case models.BookingCancelled:
			report.BookingCount++
			if b.Refund != nil && b.Refund.Status != models.RefundRejected {
				report.RefundCount++
				report.RefundedTotal += b.Amount
			}
		}
	}
	return report
}
