package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/models"
)

// Authenticator checks login credentials.
type Authenticator interface {
	// Authenticate returns the account matching the email/password pair.
	Authenticate(email, password string) (models.User, error)
}

// TokenIssuer issues, rotates and revokes token pairs.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string, role models.Role, deviceID string) (tokens.Pair, error)
	Exchange(ctx context.Context, refreshToken, deviceID string) (tokens.Pair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// AuthHandler handles login, the refresh exchange and logout.
type AuthHandler struct {
	Auth   Authenticator
	Issuer TokenIssuer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// pairResponse uses the backend's historical field casing; the client reads
// it verbatim.
type pairResponse struct {
	AccessToken  string `json:"AccessToken"`
	RefreshToken string `json:"RefreshToken"`
}

// Login handles POST /api/Authentication/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.DeviceID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.Auth.Authenticate(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	pair, err := h.Issuer.Issue(r.Context(), user.ID, user.Role, req.DeviceID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
}

// Refresh handles POST /api/Authentication/refresh. Any rejection is a 401;
// the client tears its session down on that.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" || req.DeviceID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	pair, err := h.Issuer.Exchange(r.Context(), req.RefreshToken, req.DeviceID)
	if err != nil {
		http.Error(w, "refresh token rejected", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, pairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Logout handles POST /api/Authentication/logout, revoking the refresh
// token so it cannot be exchanged again.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Issuer.Revoke(r.Context(), req.RefreshToken); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
