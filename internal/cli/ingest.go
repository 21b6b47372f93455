package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/distress-engine/internal/dedup"
	"github.com/mwhitfield/distress-engine/internal/ingest"
	"github.com/mwhitfield/distress-engine/internal/normalize"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/resolve"
)

func newIngestCmd() *cobra.Command {
	var (
		filePath       string
		recordType     string
		skipDuplicates bool
		archive        bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a county CSV export into the engine",
		Long:  "Reads a CSV export, resolves each record to a property, and persists the new signals. The record type selects the column contract; \"master\" loads the assessor's property roll itself.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(filePath, recordType, skipDuplicates, archive)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to the CSV export (required)")
	cmd.Flags().StringVar(&recordType, "type", "", "record type: master, violations, liens, judgments, deeds, evictions, probate, bankruptcy, tax, permits, foreclosures (required)")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", true, "skip records whose identity is already persisted")
	cmd.Flags().BoolVar(&archive, "archive", false, "also filter against and rotate the flat-file archive")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runIngest(filePath, recordType string, skipDuplicates, archive bool) error {
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

	header, rows, err := ingest.ReadCSV(filePath)
	if err != nil {
		return err
	}

	propertyRepo := repository.NewPropertyRepository(db)
	norm := normalize.New(cfg.Matching.AddressBlocklist, cfg.Matching.KnownCities)

	if recordType == "master" {
		loader := ingest.NewMasterLoader(propertyRepo, norm, log)
		result, err := loader.LoadProperties(ctx, rows)
		if err != nil {
			return err
		}
		fmt.Printf("master roll: loaded %d, failed %d\n", result.Loaded, result.Failed)
		return nil
	}

	spec, err := ingest.SpecFor(recordType)
	if err != nil {
		return err
	}

	var rotator *dedup.Rotator
	if archive {
		rotator = dedup.NewRotator(cfg.Ingest.ArchiveDir)
		rows, err = rotator.FilterAgainstPrevious(recordType, spec.IdentityColumn, rows)
		if err != nil {
			return err
		}
		if err := rotator.StageNew(recordType, header, rows); err != nil {
			return err
		}
	}

	signalRepo := repository.NewSignalRepository(db)
	resolver := resolve.New(propertyRepo, cfg.Matching)
	gate := dedup.NewGate(signalRepo, log)
	loader := ingest.NewLoader(norm, resolver, gate, signalRepo, cfg.Ingest.BatchSize, log)

	result, err := loader.LoadRecords(ctx, recordType, rows, skipDuplicates)
	if err != nil {
		return err
	}

	// Rotation only after the batch is confirmed committed. A failed run
	// leaves the old generation in place so the next run re-filters against
	// what is actually persisted.
	if archive {
		if err := rotator.Rotate(recordType); err != nil {
			return err
		}
	}

	fmt.Printf("%s: matched %d, unmatched %d, skipped %d (match rate %.1f%%)\n",
		recordType, result.Matched, result.Unmatched, result.Skipped, result.MatchRate())
	return nil
}
