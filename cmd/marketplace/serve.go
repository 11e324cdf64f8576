package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/database"
	"github.com/deppfellow/go-marketplace/internal/handler"
	"github.com/deppfellow/go-marketplace/internal/lib/email"
	"github.com/deppfellow/go-marketplace/internal/lib/job"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/logger"
	"github.com/deppfellow/go-marketplace/internal/repository"
	"github.com/deppfellow/go-marketplace/internal/router"
	"github.com/deppfellow/go-marketplace/internal/server"
	"github.com/deppfellow/go-marketplace/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	// Local databases are migrated by hand with the migrate command.
	if cfg.Primary.Env != "local" {
		if err := database.Migrate(ctx, &log, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	srv.Job.InitHandlers(job.Dependencies{
		Notifications: repos.Notifications,
		Mailer:        email.NewClient(cfg, &log),
		Ledger:        repos.Ledger(),
		Policy:        settlement.NewPolicy(cfg.Settlement),
	})
	if err := srv.Job.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start background jobs")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case runErr = <-serveErr:
		if runErr != nil {
			log.Error().Err(runErr).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return runErr
}
