package ingest

import (
	"context"
	"fmt"

	"github.com/mwhitfield/distress-engine/internal/dedup"
	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/normalize"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/resolve"
)

// Result reports one ingestion run. Matched rows were resolved to a property
// and persisted; unmatched rows found no property (or failed row-level
// parsing) and were dropped from this pass; skipped rows were duplicates.
type Result struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Skipped   int `json:"skipped"`
}

// MatchRate returns the percentage of resolvable rows that matched.
// Duplicates are excluded from the denominator.
func (r Result) MatchRate() float64 {
	total := r.Matched + r.Unmatched
	if total == 0 {
		return 0
	}
	return float64(r.Matched) / float64(total) * 100
}

// Loader runs the shared ingestion pipeline for every signal record type:
// dedup gate, key normalization, tiered resolution, batched persistence.
type Loader struct {
	registry  map[string]RecordSpec
	norm      *normalize.Normalizer
	resolver  *resolve.Resolver
	gate      *dedup.Gate
	signals   repository.SignalRepository
	batchSize int
	log       *logger.Logger
}

// NewLoader wires an ingestion Loader.
func NewLoader(norm *normalize.Normalizer, resolver *resolve.Resolver, gate *dedup.Gate, signals repository.SignalRepository, batchSize int, log *logger.Logger) *Loader {
	return &Loader{
		registry:  Registry(),
		norm:      norm,
		resolver:  resolver,
		gate:      gate,
		signals:   signals,
		batchSize: batchSize,
		log:       log,
	}
}

// LoadRecords ingests one batch of rows for a record type. Row-level
// failures (bad dates, no property match) are logged, counted, and do not
// stop the run; a persistence failure aborts and propagates. Already-known
// identities are skipped when skipDuplicates is set.
func (l *Loader) LoadRecords(ctx context.Context, recordType string, rows []models.Row, skipDuplicates bool) (Result, error) {
	spec, ok := l.registry[recordType]
	if !ok {
		return Result{}, fmt.Errorf("unknown record type %q", recordType)
	}

	log := l.log.WithPipeline(spec.Name)
	log.Info("ingestion started", map[string]interface{}{
		"rows":            len(rows),
		"skip_duplicates": skipDuplicates,
	})

	var result Result

	if skipDuplicates {
		kept, skipped, err := l.gate.FilterNew(ctx, rows, spec.Table, spec.IdentityDB, spec.IdentityColumn)
		if err != nil {
			return Result{}, err
		}
		rows = kept
		result.Skipped = skipped
	}

	stmts := make([]repository.InsertStatement, 0, len(rows))
	for _, row := range rows {
		match, err := l.resolver.Resolve(ctx, spec.Query(l.norm, row))
		if err != nil {
			return result, fmt.Errorf("resolver failed: %w", err)
		}
		if match == nil {
			result.Unmatched++
			log.Debug("no property match", map[string]interface{}{
				"identity": row.Get(spec.IdentityColumn),
			})
			continue
		}

		stmt, err := spec.Build(row, match.Property.ID)
		if err != nil {
			result.Unmatched++
			log.Warn("row rejected", map[string]interface{}{
				"identity": row.Get(spec.IdentityColumn),
				"reason":   err.Error(),
			})
			continue
		}
		stmts = append(stmts, stmt)
	}

	if err := l.signals.InsertSignals(ctx, stmts, l.batchSize); err != nil {
		return result, fmt.Errorf("failed to persist %s batch: %w", spec.Name, err)
	}
	result.Matched = len(stmts)

	log.Info("ingestion complete", map[string]interface{}{
		"matched":    result.Matched,
		"unmatched":  result.Unmatched,
		"skipped":    result.Skipped,
		"match_rate": fmt.Sprintf("%.1f%%", result.MatchRate()),
	})
	return result, nil
}
