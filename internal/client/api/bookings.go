package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/lifecycle/booking"
	"github.com/viettravel/tourhub/internal/models"
)

// BookingsClient covers customer bookings and the admin refund workflow.
// Refund guards run client-side before dispatch, but the backend stays
// authoritative: callers re-fetch the list after every transition attempt
// because refund totals are server-computed aggregates.
type BookingsClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

type bookRequest struct {
	TourID int64   `json:"tourId"`
	Amount float64 `json:"amount"`
}

// Book creates a booking against a tour. The booking starts Pending until
// the payment resolves.
func (c *BookingsClient) Book(ctx context.Context, tourID int64, amount float64) (models.Booking, error) {
	const path = "/api/bookings"
	var b models.Booking
	if err := c.p.JSON(ctx, http.MethodPost, path, bookRequest{TourID: tourID, Amount: amount}, &b); err != nil {
		return models.Booking{}, logFail(c.log, "bookings.book", path, err)
	}
	return b, nil
}

// ListMine returns the calling customer's bookings.
func (c *BookingsClient) ListMine(ctx context.Context) ([]models.Booking, error) {
	const path = "/api/bookings"
	var bookings []models.Booking
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, logFail(c.log, "bookings.listMine", path, err)
	}
	return bookings, nil
}

// ListAll returns every booking, for admin screens.
func (c *BookingsClient) ListAll(ctx context.Context) ([]models.Booking, error) {
	const path = "/api/admin/bookings"
	var bookings []models.Booking
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, logFail(c.log, "bookings.listAll", path, err)
	}
	return bookings, nil
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Cancel requests cancellation of a settled booking, moving it to
// CancelPending for an admin to resolve.
func (c *BookingsClient) Cancel(ctx context.Context, b models.Booking, reason string) (models.Booking, error) {
	if err := booking.RequestCancel(b, reason); err != nil {
		return models.Booking{}, logFail(c.log, "bookings.cancel", "", err)
	}
	path := fmt.Sprintf("/api/bookings/%d/cancel", b.ID)
	var updated models.Booking
	if err := c.p.JSON(ctx, http.MethodPost, path, reasonRequest{Reason: reason}, &updated); err != nil {
		return models.Booking{}, logFail(c.log, "bookings.cancel", path, err)
	}
	return updated, nil
}

// ConfirmRefund accepts a cancellation request. Valid only while the
// booking is CancelPending and unresolved.
func (c *BookingsClient) ConfirmRefund(ctx context.Context, b models.Booking) (models.Booking, error) {
	return c.refund(ctx, b, booking.RefundConfirm, "")
}

// RejectRefund declines a cancellation request with a reason.
func (c *BookingsClient) RejectRefund(ctx context.Context, b models.Booking, reason string) (models.Booking, error) {
	return c.refund(ctx, b, booking.RefundReject, reason)
}

// CompleteRefund marks the refund as paid out.
func (c *BookingsClient) CompleteRefund(ctx context.Context, b models.Booking) (models.Booking, error) {
	return c.refund(ctx, b, booking.RefundComplete, "")
}

func (c *BookingsClient) refund(ctx context.Context, b models.Booking, action booking.RefundAction, reason string) (models.Booking, error) {
	if err := booking.Guard(b, action, reason); err != nil {
		return models.Booking{}, logFail(c.log, "bookings.refund."+string(action), "", err)
	}
	path := fmt.Sprintf("/api/admin/bookings/%d/refund/%s", b.ID, action)
	var body any
	if action == booking.RefundReject {
		body = reasonRequest{Reason: reason}
	}
	var updated models.Booking
	if err := c.p.JSON(ctx, http.MethodPost, path, body, &updated); err != nil {
		return models.Booking{}, logFail(c.log, "bookings.refund."+string(action), path, err)
	}
	return updated, nil
}
