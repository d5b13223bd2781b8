// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/viettravel/tourhub/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID string
	Role   models.Role
}

// TokenVerifier validates an access token and returns the identity it
// carries.
type TokenVerifier interface {
	Verify(accessToken string) (Identity, error)
}

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// It expects an `Authorization: Bearer <token>` header, verifies the token
// and stores the resulting identity in the request context, so it can be
// used downstream as the authenticated principal. Requests without a valid
// token get a 401, which is what drives the client pipeline's refresh path.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole wraps a handler group so only the given role passes.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || id.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the request
// context. The second return value is false if no identity is present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
