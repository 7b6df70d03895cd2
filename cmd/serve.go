package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/auth"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
)

// Serve runs the playlist analysis web service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	spotify := config.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	broker := auth.NewBroker(
		services.NewOAuthConfig(spotify.ClientID, spotify.ClientSecret, spotify.RedirectURI),
		r.catalog,
		repositories.NewUserRepository(db),
		repositories.NewTokenRepository(db),
		repositories.NewSessionRepository(db),
		time.Duration(config.Server.SessionTTLHours)*time.Hour,
	)
	engine := tasks.NewPlaylistEngine(r.catalog, broker)

	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.RequestLogger(r.logger),
		server.RateLimit(config.Server.RateLimitMax, time.Duration(config.Server.RateLimitWindow)*time.Second),
	)

	// middleware applies at registration time, so session auth added here
	// only guards the handlers registered after it
	router.Handler(server.NewHealthHandler(db))
	router.Handler(server.NewAuthHandler(broker))

	router.Use(server.RequireSession(broker))
	router.Handler(server.NewMeHandler(r.catalog, broker))
	router.Handler(server.NewPlaylistHandler(engine))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	srv := server.New(addr, router, r.logger)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(runCtx)
}
