// Package handler provides the dev server's HTTP handlers. They reproduce
// the backend contract the client SDK is written against: route shapes,
// status codes and response casing.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viettravel/tourhub/internal/devserver/store"
	"github.com/viettravel/tourhub/internal/lifecycle/booking"
	"github.com/viettravel/tourhub/internal/lifecycle/tour"
)

// writeJSON encodes v with the right content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors onto the status codes the client expects:
// illegal transitions conflict, ownership failures forbid, unknown ids 404,
// and everything else is a plain bad request.
func writeErr(w http.ResponseWriter, err error) {
	var transitionErr *tour.TransitionError
	var stateErr *booking.StateError
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrBadCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.As(err, &transitionErr), errors.As(err, &stateErr):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// idParam parses the numeric {id} route parameter.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
