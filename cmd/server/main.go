package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"cs-ladder/internal/config"
	"cs-ladder/internal/constants"
	fxmodules "cs-ladder/internal/fx"
	"cs-ladder/internal/middleware"
	"cs-ladder/internal/server"
	"cs-ladder/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(seedRoster),
		fx.Invoke(runPresenceLoop),
		fx.Invoke(runServer),
	).Run()
}

func seedRoster(rosterSvc *service.RosterService, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := rosterSvc.SeedIfEmpty(ctx); err != nil {
		logger.Error().Err(err).Msg("roster seeding failed")
		return err
	}
	return nil
}

// runPresenceLoop refreshes the online flags on the configured interval for
// as long as the application runs.
func runPresenceLoop(
	lc fx.Lifecycle,
	presenceSvc *service.PresenceService,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	loopCtx, cancel := context.WithCancel(context.Background())
	var g errgroup.Group

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			g.Go(func() error {
				presenceSvc.Refresh(loopCtx)

				ticker := time.NewTicker(cfg.OnlineRefreshInterval)
				defer ticker.Stop()
				for {
					select {
					case <-loopCtx.Done():
						return nil
					case <-ticker.C:
						presenceSvc.Refresh(loopCtx)
					}
				}
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return g.Wait()
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	ladderServer *server.LadderServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	ladderServer.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	requestIDMiddleware := middleware.RequestID(logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: requestIDMiddleware(c.Handler(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
