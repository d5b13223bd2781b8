// Package main initializes and starts the tourhub dev server: an in-memory
// reference backend exposing the HTTP contract the client SDK is written
// against, with optional PostgreSQL persistence for refresh tokens.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/config"
	"github.com/viettravel/tourhub/internal/db"
	"github.com/viettravel/tourhub/internal/devserver/handler"
	"github.com/viettravel/tourhub/internal/devserver/repository"
	"github.com/viettravel/tourhub/internal/devserver/store"
	"github.com/viettravel/tourhub/internal/devserver/tokens"
	"github.com/viettravel/tourhub/internal/logger"
	"github.com/viettravel/tourhub/internal/models"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Domain state lives in memory; it doubles as the refresh-token repo
	// unless a database is configured.
	st := store.New()
	var refreshRepo tokens.RefreshRepo = st

	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		db.StartRefreshTokenCleaner(context.Background(), postgresDB,
			time.Hour,
			refreshTokenTTL,
			zapLogger,
		)
		refreshRepo = repository.NewPostgresTokenRepository(postgresDB)
	}

	issuer := tokens.NewIssuer(options.JWTSecret, accessTokenTTL, refreshTokenTTL, refreshRepo)

	// Seed one account per role so every workflow is reachable out of the box.
	seed := []struct {
		email, password, name string
		role                  models.Role
	}{
		{"admin@tourhub.local", "admin123", "Site Admin", models.RoleAdmin},
		{"partner@tourhub.local", "partner123", "Saigon Tours Co", models.RolePartner},
		{"customer@tourhub.local", "customer123", "Linh Nguyen", models.RoleCustomer},
	}
	for _, s := range seed {
		if _, err := st.SeedUser(s.email, s.password, s.name, s.role); err != nil {
			zapLogger.Fatal("failed to seed user", zap.String("email", s.email), zap.Error(err))
		}
	}

	// Build the router with middleware and routes.
	router := handler.NewRouter(
		&handler.AuthHandler{Auth: st, Issuer: issuer},
		&handler.TourHandler{Tours: st},
		&handler.BookingHandler{Bookings: st},
		&handler.AccountHandler{Accounts: st},
		&handler.PlanHandler{Plans: st},
		issuer,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting dev server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start dev server", zap.Error(err))
	}
}
