// Package booking defines the payment and cancellation/refund workflow for
// bookings. Refund totals and counts are server-computed; the client guards
// transitions locally but always re-reads authoritative state afterwards.
package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/viettravel/tourhub/internal/models"
)

// RefundAction is one of the three mutually exclusive admin resolutions of a
// cancellation request.
type RefundAction string

const (
	// RefundConfirm accepts the refund request.
	RefundConfirm RefundAction = "confirm"
	// RefundReject declines the refund request with a reason.
	RefundReject RefundAction = "reject"
	// RefundComplete marks the refund as paid out.
	RefundComplete RefundAction = "complete"
)

// StateError reports a booking transition attempted from a state that does
// not allow it. It is an ordinary, displayable failure.
type StateError struct {
	BookingID int64
	Status    models.BookingStatus
	Action    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("booking %d: %s not allowed while status is %q", e.BookingID, e.Action, e.Status)
}

// CanRequestCancel reports whether the customer may ask to cancel the
// booking. Only a settled booking can enter the refund workflow.
func CanRequestCancel(s models.BookingStatus) bool {
	return s == models.BookingSuccess || s == models.BookingPaid
}

// RequestCancel validates a customer cancellation request. A reason is
// required so the admin has something to act on.
func RequestCancel(b models.Booking, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("booking %d: cancellation requires a reason", b.ID)
	}
	if !CanRequestCancel(b.BookingStatus) {
		return &StateError{BookingID: b.ID, Status: b.BookingStatus, Action: "cancel"}
	}
	return nil
}

// CanRefund reports whether an admin refund action may be offered for the
// booking. All three refund actions require CancelPending.
func CanRefund(b models.Booking) bool {
	return b.BookingStatus == models.BookingCancelPending && b.Refund == nil
}

// Guard validates a refund action against the booking's current state. A
// reject must carry a reason; any action on a non-CancelPending booking, or
// on one whose refund is already resolved, fails.
func Guard(b models.Booking, action RefundAction, reason string) error {
	switch action {
	case RefundConfirm, RefundReject, RefundComplete:
	default:
		return fmt.Errorf("unknown refund action %q", action)
	}
	if b.BookingStatus != models.BookingCancelPending {
		return &StateError{BookingID: b.ID, Status: b.BookingStatus, Action: string(action)}
	}
	if b.Refund != nil {
		return fmt.Errorf("booking %d: refund already resolved as %q", b.ID, b.Refund.Status)
	}
	if action == RefundReject && strings.TrimSpace(reason) == "" {
		return fmt.Errorf("booking %d: refund rejection requires a reason", b.ID)
	}
	return nil
}

// Resolve applies a refund action and returns the updated booking. It is
// used by the reference backend as its transition authority; the client SDK
// never mutates booking state locally.
//
// A confirmed or completed refund cancels the booking; a rejected refund
// returns it to Success.
func Resolve(b models.Booking, action RefundAction, reason, by string, at time.Time) (models.Booking, error) {
	if err := Guard(b, action, reason); err != nil {
		return b, err
	}
	refund := &models.Refund{Reason: strings.TrimSpace(reason), ResolvedBy: by, ResolvedAt: at}
	switch action {
	case RefundConfirm:
		refund.Status = models.RefundApproved
		b.BookingStatus = models.BookingCancelled
	case RefundComplete:
		refund.Status = models.RefundCompleted
		b.BookingStatus = models.BookingCancelled
		b.PaymentStatus = "Refunded"
	case RefundReject:
		refund.Status = models.RefundRejected
		b.BookingStatus = models.BookingSuccess
	}
	b.Refund = refund
	return b, nil
}

// SettlePayment resolves a pending booking's payment outcome. Used by the
// reference backend when a payment callback lands.
func SettlePayment(b models.Booking, succeeded bool) (models.Booking, error) {
	if b.BookingStatus != models.BookingPending {
		return b, &StateError{BookingID: b.ID, Status: b.BookingStatus, Action: "settle-payment"}
	}
	if succeeded {
		b.BookingStatus = models.BookingSuccess
		b.PaymentStatus = "Paid"
	} else {
		b.BookingStatus = models.BookingFail
		b.PaymentStatus = "Failed"
	}
	return b, nil
}
