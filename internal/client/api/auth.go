package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/session"
	"github.com/viettravel/tourhub/internal/client/token"
	"github.com/viettravel/tourhub/internal/client/transport"
)

// AuthClient handles login and logout. The refresh exchange itself lives in
// the pipeline; this client only establishes and ends sessions.
type AuthClient struct {
	p      *transport.Pipeline
	tokens *token.Store
	sess   *session.Session
	log    *zap.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// tokenPair mirrors the backend's response casing exactly.
type tokenPair struct {
	AccessToken  string `json:"AccessToken"`
	RefreshToken string `json:"RefreshToken"`
}

// Login authenticates with the backend, stores the returned credential pair
// together with this client's device id, and signs the session in.
func (c *AuthClient) Login(ctx context.Context, email, password string) error {
	deviceID, err := c.tokens.EnsureDeviceID()
	if err != nil {
		return logFail(c.log, "login", "", err)
	}

	const path = "/api/Authentication/login"
	var pair tokenPair
	req := loginRequest{Email: email, Password: password, DeviceID: deviceID}
	if err := c.p.JSON(ctx, http.MethodPost, path, req, &pair); err != nil {
		return logFail(c.log, "login", path, err)
	}

	if err := c.tokens.Set(token.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		DeviceID:     deviceID,
	}); err != nil {
		return logFail(c.log, "login", path, err)
	}
	c.sess.SignIn()
	return nil
}

// Logout revokes the refresh token server-side on a best-effort basis, then
// clears credentials and signs the session out. Local teardown happens even
// when the revoke call fails.
func (c *AuthClient) Logout(ctx context.Context) error {
	creds := c.tokens.Get()
	if creds.RefreshToken != "" {
		const path = "/api/Authentication/logout"
		body := map[string]string{"refreshToken": creds.RefreshToken, "deviceId": creds.DeviceID}
		if err := c.p.JSON(ctx, http.MethodPost, path, body, nil); err != nil {
			c.log.Warn("logout revoke failed, clearing local session anyway",
				zap.String("path", path), zap.Error(err))
		}
	}
	if err := c.tokens.Clear(); err != nil {
		return logFail(c.log, "logout", "", err)
	}
	c.sess.SignOut()
	return nil
}
