package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Score every property with distress signals",
		Long:  "Computes the distress score for every property that has at least one code violation and persists one snapshot per property per day.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore()
		},
	}
}

func runScore() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	propertyRepo := repository.NewPropertyRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	engine := scoring.NewEngine(cfg.Scoring.QualifiedThreshold, log)
	store := scoring.NewStore(scoreRepo, log)
	service := scoring.NewService(propertyRepo, signalRepo, engine, store, log)

	result, err := service.ScoreAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("scored %d properties: %d saved, %d unchanged, %d failed\n",
		result.Scored, result.Saved, result.Unchanged, result.Failed)
	return nil
}
