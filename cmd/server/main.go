package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixapp/fixapp-api/internal/api"
	"github.com/fixapp/fixapp-api/internal/core/service"
	"github.com/fixapp/fixapp-api/internal/infrastructure/config"
	"github.com/fixapp/fixapp-api/internal/infrastructure/db/sqlite"
	"github.com/fixapp/fixapp-api/internal/infrastructure/janitor"
	"github.com/fixapp/fixapp-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The storage mode is fixed for the process lifetime: serverless
	// platforms have no persistent disk across invocations.
	mode := sqlite.ModeDurable
	if config.Serverless() {
		mode = sqlite.ModeEphemeral
	}

	backend := sqlite.NewBackend(sqlite.Config{
		Mode:     mode,
		Path:     cfg.Database.Path,
		SeedDemo: cfg.Database.SeedDemo && cfg.IsDevelopment(),
		Logger:   log,
	})
	if err := backend.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("storage bootstrap failed")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn().Err(err).Msg("closing storage backend")
		}
	}()

	identityRepo := sqlite.NewIdentityRepository(backend)
	sessionRepo := sqlite.NewSessionRepository(backend)
	identity := service.NewIdentityService(identityRepo, log)
	sessions := service.NewSessionService(sessionRepo, cfg.Session.TTL, log)

	sweeper := janitor.NewSweeper(sessions, cfg.Session.SweepInterval, log)
	sweeper.Start(ctx)

	e := api.NewRouter(cfg, backend, identity, sessions, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Stringer("storage_mode", mode).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
