// Package repository provides PostgreSQL persistence for the dev server's
// refresh tokens, used when a database DSN is configured instead of the
// in-memory store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viettravel/tourhub/internal/devserver/tokens"
)

// PostgresTokenRepository implements tokens.RefreshRepo against PostgreSQL.
type PostgresTokenRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTokenRepository creates a new PostgresTokenRepository with the
// given database connection.
func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{DB: db}
}

// Get fetches a stored refresh token. A missing token returns (nil, nil);
// the issuer treats that as a rejection.
func (r *PostgresTokenRepository) Get(ctx context.Context, token string) (*tokens.StoredRefreshToken, error) {
	var t tokens.StoredRefreshToken
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, user_id, role, device_id, issued_at
		  FROM refresh_tokens WHERE token = $1
	`, token).Scan(&t.Token, &t.UserID, &t.Role, &t.DeviceID, &t.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// Upsert stores a refresh token, replacing any previous token for the same
// user and device so each device holds one live token.
func (r *PostgresTokenRepository) Upsert(ctx context.Context, t *tokens.StoredRefreshToken) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, role, device_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, device_id) DO UPDATE
		   SET token = EXCLUDED.token, issued_at = EXCLUDED.issued_at
	`, t.Token, t.UserID, t.Role, t.DeviceID, t.IssuedAt)
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

// Delete removes a refresh token. Deleting an absent token is not an error.
func (r *PostgresTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
