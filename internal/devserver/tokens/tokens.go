// Package tokens issues and verifies the dev server's credentials: HS256
// access tokens and rotating refresh tokens bound to a device id.
package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/viettravel/tourhub/internal/middleware"
	"github.com/viettravel/tourhub/internal/models"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrRefreshDenied covers every way a refresh exchange can fail: unknown
// token, wrong device, expired token. The client treats them all the same.
var ErrRefreshDenied = errors.New("refresh token rejected")

// StoredRefreshToken is a refresh token at rest, bound to the device that
// obtained it.
type StoredRefreshToken struct {
	Token    string
	UserID   string
	Role     models.Role
	DeviceID string
	IssuedAt time.Time
}

// RefreshRepo persists refresh tokens. One live token per user and device;
// Upsert replaces any previous token for the same pair.
type RefreshRepo interface {
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	Upsert(ctx context.Context, t *StoredRefreshToken) error
	Delete(ctx context.Context, token string) error
}

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer creates, verifies and rotates tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	repo       RefreshRepo
}

// NewIssuer builds an Issuer signing with secret. Access tokens live for
// accessTTL; refresh tokens for refreshTTL.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, repo RefreshRepo) *Issuer {
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, repo: repo}
}

type claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a new access/refresh pair for the user on the given device,
// replacing any refresh token that device already held.
func (i *Issuer) Issue(ctx context.Context, userID string, role models.Role, deviceID string) (Pair, error) {
	now := NowTimeFunc()
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	})
	accessStr, err := access.SignedString(i.secret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return Pair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshStr := hex.EncodeToString(refreshBytes)

	if err := i.repo.Upsert(ctx, &StoredRefreshToken{
		Token:    refreshStr,
		UserID:   userID,
		Role:     role,
		DeviceID: deviceID,
		IssuedAt: now,
	}); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return Pair{AccessToken: accessStr, RefreshToken: refreshStr}, nil
}

// Verify validates an access token and returns the identity it carries.
func (i *Issuer) Verify(accessToken string) (middleware.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(accessToken, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		return middleware.Identity{}, err
	}
	return middleware.Identity{UserID: c.Subject, Role: c.Role}, nil
}

// Exchange rotates a refresh token: the presented token must exist, belong
// to the presenting device and be unexpired. The old token is deleted
// before the new pair is issued, so a token can be exchanged only once.
func (i *Issuer) Exchange(ctx context.Context, refreshToken, deviceID string) (Pair, error) {
	stored, err := i.repo.Get(ctx, refreshToken)
	if err != nil || stored == nil {
		return Pair{}, ErrRefreshDenied
	}
	if stored.DeviceID != deviceID {
		return Pair{}, ErrRefreshDenied
	}
	if NowTimeFunc().Sub(stored.IssuedAt) > i.refreshTTL {
		_ = i.repo.Delete(ctx, refreshToken)
		return Pair{}, ErrRefreshDenied
	}
	if err := i.repo.Delete(ctx, refreshToken); err != nil {
		return Pair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return i.Issue(ctx, stored.UserID, stored.Role, deviceID)
}

// Revoke deletes a refresh token, for logout.
func (i *Issuer) Revoke(ctx context.Context, refreshToken string) error {
	return i.repo.Delete(ctx, refreshToken)
}
