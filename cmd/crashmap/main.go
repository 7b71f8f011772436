// Command crashmap serves the intersection collision API.
//
// Startup order: configuration, logging, optional schema bootstrap,
// server container (PostgreSQL, Redis, job queue), repositories, services,
// handlers, router. SIGINT and SIGTERM trigger a graceful shutdown bounded
// by server.shutdown_timeout.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/crashmap/internal/config"
	"github.com/deppfellow/crashmap/internal/database"
	"github.com/deppfellow/crashmap/internal/handler"
	"github.com/deppfellow/crashmap/internal/logger"
	"github.com/deppfellow/crashmap/internal/repository"
	"github.com/deppfellow/crashmap/internal/router"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/deppfellow/crashmap/internal/service"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		l := bootstrapLogger(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(&cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(&cfg.Observability, loggerService)

	if err := run(cfg, &log, loggerService); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		loggerService.Shutdown()
		os.Exit(1)
	}
}

// bootstrapLogger reports failures that happen before the configured
// logger exists.
func bootstrapLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", "crashmap").Logger()
}

func run(cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, log, cfg); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		return err
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
