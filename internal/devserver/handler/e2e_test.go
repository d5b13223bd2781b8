package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/api"
	"github.com/viettravel/tourhub/internal/client/session"
	"github.com/viettravel/tourhub/internal/client/token"
	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/devserver/handler"
	"github.com/viettravel/tourhub/internal/devserver/store"
	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/models"
)

// newBackend wires the real store, issuer and router into a test server.
func newBackend(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New()
	issuer := tokens.NewIssuer("e2e-secret", 15*time.Minute, time.Hour, st)
	router := handler.NewRouter(
		&handler.AuthHandler{Auth: st, Issuer: issuer},
		&handler.TourHandler{Tours: st},
		&handler.BookingHandler{Bookings: st},
		&handler.AccountHandler{Accounts: st},
		&handler.PlanHandler{Plans: st},
		issuer,
		zap.NewNop(),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

// newSDK builds a client SDK with its own credential store, logged in as the
// given account.
func newSDK(t *testing.T, baseURL, email, password string) (*api.Client, *token.Store) {
	t.Helper()
	creds, err := token.Open(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, err)
	p := transport.New(baseURL, creds, zap.NewNop())
	c := api.New(p, creds, session.New(), zap.NewNop())
	require.NoError(t, c.Auth.Login(context.Background(), email, password))
	return c, creds
}

func seedAll(t *testing.T, st *store.Store) {
	t.Helper()
	_, err := st.SeedUser("partner@tourhub.local", "pw", "Saigon Tours", models.RolePartner)
	require.NoError(t, err)
	_, err = st.SeedUser("admin@tourhub.local", "pw", "Admin", models.RoleAdmin)
	require.NoError(t, err)
	_, err = st.SeedUser("customer@tourhub.local", "pw", "Linh Tran", models.RoleCustomer)
	require.NoError(t, err)
}

func TestEndToEnd_TourApprovalAndBookingRefund(t *testing.T) {
	srv, st := newBackend(t)
	seedAll(t, st)
	ctx := context.Background()

	partner, _ := newSDK(t, srv.URL, "partner@tourhub.local", "pw")
	admin, _ := newSDK(t, srv.URL, "admin@tourhub.local", "pw")
	customer, _ := newSDK(t, srv.URL, "customer@tourhub.local", "pw")

	// Partner drafts and submits a tour.
	draft, err := partner.Tours.Create(ctx, models.Tour{Title: "Mekong Delta", Price: 120, DurationDays: 2})
	require.NoError(t, err)
	submitted, err := partner.Tours.Submit(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, models.TourPendingApproval, submitted.Status)

	// The partner cannot reach the admin review queue.
	_, err = partner.Tours.ListPending(ctx)
	assert.True(t, transport.IsStatus(err, http.StatusForbidden))

	// Admin approves; the tour enters the customer catalogue.
	pending, err := admin.Tours.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	approved, err := admin.Tours.Approve(ctx, pending[0])
	require.NoError(t, err)
	assert.Equal(t, models.TourApproved, approved.Status)

	catalogue, err := customer.Tours.List(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, catalogue, 1)

	// Customer books and the dev server settles the payment.
	booked, err := customer.Bookings.Book(ctx, catalogue[0].ID, 240)
	require.NoError(t, err)
	assert.Equal(t, models.BookingSuccess, booked.BookingStatus)

	// Cancellation enters the refund workflow; admin confirms it.
	cancelled, err := customer.Bookings.Cancel(ctx, booked, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelPending, cancelled.BookingStatus)

	all, err := admin.Bookings.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	resolved, err := admin.Bookings.ConfirmRefund(ctx, all[0])
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, resolved.BookingStatus)

	// The resolution is final: a replayed confirm conflicts server-side.
	_, err = admin.Bookings.CompleteRefund(ctx, all[0])
	require.Error(t, err)
	_, err = admin.Bookings.ConfirmRefund(ctx, cancelled)
	assert.True(t, transport.IsStatus(err, http.StatusConflict))
}

func TestEndToEnd_UpdateProposalRejectedByOriginalID(t *testing.T) {
	srv, st := newBackend(t)
	seedAll(t, st)
	ctx := context.Background()

	partner, _ := newSDK(t, srv.URL, "partner@tourhub.local", "pw")
	admin, _ := newSDK(t, srv.URL, "admin@tourhub.local", "pw")

	draft, err := partner.Tours.Create(ctx, models.Tour{Title: "Hoi An Old Town", Price: 90})
	require.NoError(t, err)
	_, err = partner.Tours.Submit(ctx, draft)
	require.NoError(t, err)
	orig, err := admin.Tours.Approve(ctx, draft)
	require.NoError(t, err)

	proposal, err := partner.Tours.ProposeUpdate(ctx, orig.ID, models.Tour{Title: "Hoi An by Night", Price: 110})
	require.NoError(t, err)
	_, err = partner.Tours.Submit(ctx, proposal)
	require.NoError(t, err)

	// The review queue carries the proposal; rejecting it is addressed by
	// the original tour's id and leaves the original untouched.
	pending, err := admin.Tours.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].OriginalTourID)

	rejected, err := admin.Tours.Reject(ctx, pending[0], "Thiếu ảnh")
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, rejected.ID)
	assert.Equal(t, models.TourRejected, rejected.Status)
	assert.Equal(t, "Thiếu ảnh", rejected.RejectReason)

	current, err := partner.Tours.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hoi An Old Town", current.Title)
	assert.Equal(t, models.TourApproved, current.Status)
}

func TestEndToEnd_ExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	srv, st := newBackend(t)
	seedAll(t, st)
	ctx := context.Background()

	customer, creds := newSDK(t, srv.URL, "customer@tourhub.local", "pw")

	// Sabotage the access token while keeping the refresh material. The
	// next call runs into a 401 and must recover without surfacing it.
	before := creds.Get()
	require.NoError(t, creds.Set(token.Credentials{
		AccessToken:  "not-a-valid-token",
		RefreshToken: before.RefreshToken,
		DeviceID:     before.DeviceID,
	}))

	bookings, err := customer.Bookings.ListMine(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	// The exchange rotated the pair.
	after := creds.Get()
	assert.NotEqual(t, "not-a-valid-token", after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
	assert.Equal(t, before.DeviceID, after.DeviceID)
}

func TestEndToEnd_LogoutRevokesRefreshToken(t *testing.T) {
	srv, st := newBackend(t)
	seedAll(t, st)
	ctx := context.Background()

	customer, creds := newSDK(t, srv.URL, "customer@tourhub.local", "pw")
	stolen := creds.Get().RefreshToken
	device := creds.Get().DeviceID
	require.NoError(t, customer.Auth.Logout(ctx))
	assert.True(t, creds.Get().Empty())

	// The revoked token can no longer be exchanged, even from its device.
	issuer := tokens.NewIssuer("e2e-secret", 15*time.Minute, time.Hour, st)
	_, err := issuer.Exchange(ctx, stolen, device)
	assert.ErrorIs(t, err, tokens.ErrRefreshDenied)
}
