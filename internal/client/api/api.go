// Package api provides the typed domain clients over the request pipeline,
// one per backend resource area. Clients never swallow errors: they log the
// endpoint and context, then return the error for the caller to present.
package api

import (
	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/session"
	"github.com/viettravel/tourhub/internal/client/token"
	"github.com/viettravel/tourhub/internal/client/transport"
)

// Client bundles all domain clients over one pipeline.
type Client struct {
	Auth     *AuthClient
	Tours    *ToursClient
	Bookings *BookingsClient
	Users    *UsersClient
	Partners *PartnersClient
	Plans    *PlansClient
	Reviews  *ReviewsClient
	Reports  *ReportsClient
}

// New wires the domain clients. The session is updated by Auth on login and
// logout; pipeline-driven invalidation reaches it through the shell's
// invalidate hook.
func New(p *transport.Pipeline, tokens *token.Store, sess *session.Session, log *zap.Logger) *Client {
	return &Client{
		Auth:     &AuthClient{p: p, tokens: tokens, sess: sess, log: log},
		Tours:    &ToursClient{p: p, log: log},
		Bookings: &BookingsClient{p: p, log: log},
		Users:    &UsersClient{p: p, log: log},
		Partners: &PartnersClient{p: p, log: log},
		Plans:    &PlansClient{p: p, log: log},
		Reviews:  &ReviewsClient{p: p, log: log},
		Reports:  &ReportsClient{p: p, log: log},
	}
}

// logFail records a failed call with enough context to diagnose it, then
// hands the error back unchanged.
func logFail(log *zap.Logger, op, path string, err error) error {
	log.Error("api call failed",
		zap.String("op", op),
		zap.String("path", path),
		zap.Error(err),
	)
	return err
}
