package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/database"
	"github.com/deppfellow/go-marketplace/internal/logger"
)

const migrateTimeout = 2 * time.Minute

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			loggerService := logger.NewLoggerService(cfg.Observability)
			defer loggerService.Shutdown()
			log := logger.NewLoggerWithService(cfg.Observability, loggerService)

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			return database.Migrate(ctx, &log, cfg)
		},
	}
}
