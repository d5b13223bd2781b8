package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// NewRouter constructs the dev server's HTTP handler. It mounts the
// authentication endpoints publicly, the catalogue behind bearer auth, and
// the partner/admin areas behind role checks, with request logging applied
// throughout.
//
// Routes:
//
//	POST /api/Authentication/login
//	POST /api/Authentication/refresh
//	POST /api/Authentication/logout
//	GET  /api/tours, /api/tours/{id}, /api/tours/{id}/reviews
//	POST /api/tours/{id}/reviews
//	GET/POST /api/bookings, POST /api/bookings/{id}/cancel
//	POST /api/plans/generate, GET /api/plans, /api/plans/{id}
//	partner: /api/partner/tours...
//	admin:   /api/admin/tours..., /api/admin/bookings...,
//	         /api/admin/users..., /api/admin/partners...,
//	         /api/admin/reports/revenue
func NewRouter(
	authHandler *AuthHandler,
	tourHandler *TourHandler,
	bookingHandler *BookingHandler,
	accountHandler *AccountHandler,
	planHandler *PlanHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/Authentication/login", authHandler.Login)
		r.Post("/Authentication/refresh", authHandler.Refresh)
		r.Post("/Authentication/logout", authHandler.Logout)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Get("/tours", tourHandler.ListApproved)
			r.Get("/tours/{id}", tourHandler.Get)
			r.Get("/tours/{id}/reviews", planHandler.ListReviews)
			r.Post("/tours/{id}/reviews", planHandler.CreateReview)

			r.Post("/bookings", bookingHandler.Create)
			r.Get("/bookings", bookingHandler.ListMine)
			r.Post("/bookings/{id}/cancel", bookingHandler.Cancel)

			r.Post("/plans/generate", planHandler.Generate)
			r.Get("/plans", planHandler.ListMine)
			r.Get("/plans/{id}", planHandler.Get)

			r.Route("/partner", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RolePartner))
				r.Get("/tours", tourHandler.ListMine)
				r.Post("/tours", tourHandler.Create)
				r.Put("/tours/{id}", tourHandler.Update)
				r.Post("/tours/{id}/propose-update", tourHandler.ProposeUpdate)
				r.Post("/tours/{id}/submit", tourHandler.Submit)
				r.Post("/tours/resubmit-rejected/{id}", tourHandler.Resubmit)
				r.Post("/tours/{id}/retire", tourHandler.Retire)
				r.Post("/tours/{id}/images", tourHandler.UploadImage)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/tours/pending", tourHandler.ListPending)
				r.Post("/tours/{id}/approve", tourHandler.Approve)
				r.Post("/tours/{id}/reject", tourHandler.Reject)
				r.Post("/tours/{id}/approve-update", tourHandler.ApproveUpdate)
				r.Post("/tours/{id}/reject-update", tourHandler.RejectUpdate)

				r.Get("/bookings", bookingHandler.ListAll)
				r.Post("/bookings/{id}/refund/{action}", bookingHandler.Refund)

				r.Get("/users", accountHandler.ListUsers)
				r.Post("/users/{id}/deactivate", accountHandler.DeactivateUser)
				r.Post("/users/{id}/reactivate", accountHandler.ReactivateUser)

				r.Get("/partners", accountHandler.ListPartners)
				r.Post("/partners/{id}/deactivate", accountHandler.DeactivatePartner)
				r.Post("/partners/{id}/reactivate", accountHandler.ReactivatePartner)

				r.Get("/reports/revenue", accountHandler.Revenue)
			})
		})
	})

	return r
}
