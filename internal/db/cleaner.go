package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartRefreshTokenCleaner deletes expired refresh tokens with interval
func StartRefreshTokenCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	ttl time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-ttl)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM refresh_tokens
                     WHERE issued_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean expired refresh tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired refresh tokens", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
