package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viettravel/tourhub/internal/devserver/store"
	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/models"
)

type fakeAuth struct {
	user models.User
	err  error
}

func (f *fakeAuth) Authenticate(email, password string) (models.User, error) {
	return f.user, f.err
}

type fakeIssuer struct {
	pair        tokens.Pair
	exchangeErr error
	revoked     []string
}

func (f *fakeIssuer) Issue(context.Context, string, models.Role, string) (tokens.Pair, error) {
	return f.pair, nil
}

func (f *fakeIssuer) Exchange(context.Context, string, string) (tokens.Pair, error) {
	if f.exchangeErr != nil {
		return tokens.Pair{}, f.exchangeErr
	}
	return f.pair, nil
}

func (f *fakeIssuer) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		auth       *fakeAuth
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       `{"email":"a@b.c","password":"pw","deviceId":"dev-1"}`,
			auth:       &fakeAuth{user: models.User{ID: "u-1", Role: models.RoleCustomer}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad credentials",
			body:       `{"email":"a@b.c","password":"wrong","deviceId":"dev-1"}`,
			auth:       &fakeAuth{err: store.ErrBadCredentials},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing device id",
			body:       `{"email":"a@b.c","password":"pw"}`,
			auth:       &fakeAuth{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			auth:       &fakeAuth{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandler{Auth: tt.auth, Issuer: &fakeIssuer{pair: tokens.Pair{AccessToken: "A", RefreshToken: "R"}}}
			req := httptest.NewRequest(http.MethodPost, "/api/Authentication/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				// The response casing is part of the contract.
				body := w.Body.String()
				assert.Contains(t, body, `"AccessToken":"A"`)
				assert.Contains(t, body, `"RefreshToken":"R"`)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		issuer     *fakeIssuer
		wantStatus int
	}{
		{
			name:       "valid exchange",
			body:       `{"refreshToken":"R1","deviceId":"dev-1"}`,
			issuer:     &fakeIssuer{pair: tokens.Pair{AccessToken: "A2", RefreshToken: "R2"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected exchange",
			body:       `{"refreshToken":"stale","deviceId":"dev-1"}`,
			issuer:     &fakeIssuer{exchangeErr: tokens.ErrRefreshDenied},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing refresh token",
			body:       `{"deviceId":"dev-1"}`,
			issuer:     &fakeIssuer{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandler{Auth: &fakeAuth{}, Issuer: tt.issuer}
			req := httptest.NewRequest(http.MethodPost, "/api/Authentication/refresh", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Refresh(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"AccessToken":"A2"`)
			}
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	issuer := &fakeIssuer{}
	h := &AuthHandler{Auth: &fakeAuth{}, Issuer: issuer}
	req := httptest.NewRequest(http.MethodPost, "/api/Authentication/logout",
		strings.NewReader(`{"refreshToken":"R1","deviceId":"dev-1"}`))
	w := httptest.NewRecorder()

	h.Logout(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"R1"}, issuer.revoked)
}
