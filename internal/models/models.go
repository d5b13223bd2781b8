// Package models defines the core data structures shared by the client SDK
// and the reference backend: tours, bookings, users, partners and plans.
package models

import "time"

// TourStatus is the closed set of states a tour listing can occupy.
type TourStatus string

const (
	// TourDraft is a tour the partner is still editing; not visible to customers.
	TourDraft TourStatus = "Draft"
	// TourPendingApproval is a tour submitted for admin review.
	TourPendingApproval TourStatus = "PendingApproval"
	// TourApproved is a tour cleared for customer visibility.
	TourApproved TourStatus = "Approved"
	// TourRejected is a tour turned down by an admin; the partner may resubmit.
	TourRejected TourStatus = "Rejected"
)

// String returns the status as the backend wire value.
func (s TourStatus) String() string { return string(s) }

// IsValid reports whether s is one of the known tour statuses.
func (s TourStatus) IsValid() bool {
	switch s {
	case TourDraft, TourPendingApproval, TourApproved, TourRejected:
		return true
	default:
		return false
	}
}

// Tour represents a partner-authored travel package. A Tour with a non-nil
// OriginalTourID is an update proposal against an already-approved tour:
// approving or rejecting it targets the original tour's approval record.
type Tour struct {
	// ID is the unique identifier of this record.
	ID int64 `json:"tourId"`
	// PartnerID identifies the owning partner. Only the owner may mutate the tour.
	PartnerID string `json:"partnerId"`
	// Status is the current lifecycle state as reported by the backend.
	Status TourStatus `json:"status"`
	// OriginalTourID is set when this record proposes an update to an
	// approved tour.
	OriginalTourID *int64 `json:"originalTourId,omitempty"`

	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Destination  string   `json:"destination"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"durationDays"`
	ImageURLs    []string `json:"imageUrls,omitempty"`

	// RejectReason holds the admin's reason after a rejection.
	RejectReason string `json:"rejectReason,omitempty"`
	// Deleted marks a soft-retired tour. Tours are never hard-deleted.
	Deleted   bool      `json:"deleted,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsUpdateProposal reports whether the tour is an update proposal against an
// already-approved tour.
func (t Tour) IsUpdateProposal() bool { return t.OriginalTourID != nil && *t.OriginalTourID > 0 }

// ApprovalTargetID returns the tour id that approve/reject actions must
// address: the original tour's id for an update proposal, the tour's own id
// otherwise.
func (t Tour) ApprovalTargetID() int64 {
	if t.IsUpdateProposal() {
		return *t.OriginalTourID
	}
	return t.ID
}

// BookingStatus is the closed set of states a booking can occupy.
type BookingStatus string

const (
	// BookingPending is a booking whose payment has not resolved yet.
	BookingPending BookingStatus = "Pending"
	// BookingSuccess is a booking whose payment succeeded.
	BookingSuccess BookingStatus = "Success"
	// BookingFail is a booking whose payment failed.
	BookingFail BookingStatus = "Fail"
	// BookingPaid is a booking settled with the partner.
	BookingPaid BookingStatus = "Paid"
	// BookingCancelPending is a booking the customer asked to cancel,
	// awaiting an admin refund decision.
	BookingCancelPending BookingStatus = "CancelPending"
	// BookingCancelled is a terminally cancelled booking.
	BookingCancelled BookingStatus = "Cancelled"
)

func (s BookingStatus) String() string { return string(s) }

// IsValid reports whether s is one of the known booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingSuccess, BookingFail, BookingPaid,
		BookingCancelPending, BookingCancelled:
		return true
	default:
		return false
	}
}

// RefundStatus is the state of the refund sub-record attached to a booking.
type RefundStatus string

const (
	// RefundApproved means an admin confirmed the refund request.
	RefundApproved RefundStatus = "Approved"
	// RefundRejected means an admin turned the refund request down.
	RefundRejected RefundStatus = "Rejected"
	// RefundCompleted means the refund was paid out.
	RefundCompleted RefundStatus = "Refunded"
)

// Refund is the admin-mediated resolution of a cancellation request.
type Refund struct {
	Status     RefundStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	ResolvedBy string       `json:"resolvedBy"`
	ResolvedAt time.Time    `json:"resolvedAt"`
}

// Booking represents a customer's reservation against a tour. Status fields
// are owned by the backend; the client requests transitions and re-reads.
type Booking struct {
	ID            int64         `json:"bookingId"`
	TourID        int64         `json:"tourId"`
	CustomerID    string        `json:"customerId"`
	BookingStatus BookingStatus `json:"bookingStatus"`
	PaymentStatus string        `json:"paymentStatus"`
	Amount        float64       `json:"amount"`
	// CancelReason is the customer's reason for requesting cancellation.
	CancelReason string    `json:"cancelReason,omitempty"`
	Refund       *Refund   `json:"refund,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Role identifies the kind of account behind a set of credentials.
type Role string

const (
	RoleCustomer Role = "Customer"
	RolePartner  Role = "Partner"
	RoleAdmin    Role = "Admin"
)

// User represents an account. Users are soft-deactivated, never hard-deleted.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`

	IsActive          bool       `json:"isActive"`
	DeactivatedReason string     `json:"deactivatedReason,omitempty"`
	DeactivatedBy     string     `json:"deactivatedBy,omitempty"`
	DeactivatedAt     *time.Time `json:"deactivatedAt,omitempty"`
}

// Partner represents a tour operator registered on the marketplace.
type Partner struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`

	IsActive          bool       `json:"isActive"`
	DeactivatedReason string     `json:"deactivatedReason,omitempty"`
	DeactivatedBy     string     `json:"deactivatedBy,omitempty"`
	DeactivatedAt     *time.Time `json:"deactivatedAt,omitempty"`
}

// PlanDay is a single day within a generated itinerary.
type PlanDay struct {
	Day        int      `json:"day"`
	Summary    string   `json:"summary"`
	Activities []string `json:"activities"`
}

// Plan is an AI-generated itinerary for a customer. Generation happens on
// the backend and can take minutes.
type Plan struct {
	ID          int64     `json:"planId"`
	CustomerID  string    `json:"customerId"`
	Destination string    `json:"destination"`
	Days        []PlanDay `json:"days"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Review is a customer review of a tour.
type Review struct {
	ID         int64     `json:"reviewId"`
	TourID     int64     `json:"tourId"`
	CustomerID string    `json:"customerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RevenueReport aggregates booking and refund totals for a period.
// All figures are server-computed; the client never derives them locally.
type RevenueReport struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	BookingCount  int       `json:"bookingCount"`
	RefundCount   int       `json:"refundCount"`
	GrossRevenue  float64   `json:"grossRevenue"`
	RefundedTotal float64   `json:"refundedTotal"`
}
