// Package cli defines the cobra command tree for the distress engine.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mwhitfield/distress-engine/internal/config"
	"github.com/mwhitfield/distress-engine/internal/database"
	"github.com/mwhitfield/distress-engine/internal/logger"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "distress-engine",
		Short:         "Resolve, dedupe, and score property distress signals",
		Long:          "Ingests county distress records (code violations, liens, tax delinquencies, court filings), resolves them to properties, and scores each property's distress level for lead generation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newScoreCmd(),
	)

	return root
}

// bootstrap loads .env (when present), configuration, and the logger.
// Every subcommand starts here.
func bootstrap() (*config.Config, *logger.Logger, error) {
	// A missing .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Server.Env)
	return cfg, log, nil
}

// openDatabase connects the pgx pool and logs the target.
func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.Database, error) {
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})
	return db, nil
}
