// Package dedup keeps already-seen records out of the signal tables. The
// Gate checks incoming batches against the live store; the Rotator is a
// file-only fallback for pipelines that compare against previous flat-file
// exports instead.
package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// ErrIdentityColumnMissing means the incoming batch does not carry the
// record type's identity column at all. This is a configuration error and
// must abort the run; silently admitting every row as new would re-insert
// the whole extract.
var ErrIdentityColumnMissing = errors.New("identity column missing from batch")

// Gate filters incoming batches by set-membership against the identity
// values already persisted for a record type. It is read-only; the actual
// write happens afterward in the ingestion loader.
type Gate struct {
	repo repository.SignalRepository
	log  *logger.Logger
}

// NewGate creates a Gate backed by the given signal repository.
func NewGate(repo repository.SignalRepository, log *logger.Logger) *Gate {
	return &Gate{
		repo: repo,
		log:  log,
	}
}

// FilterNew returns the rows whose identity value is not yet present in the
// given table column, plus the number of rows skipped as duplicates. The
// store is queried once per call; running the same batch through twice
// (with the first pass persisted in between) yields an empty result.
//
// identityColumn is the source CSV header; dbColumn and table identify the
// persisted identity values. extraFilters narrow the persisted identity set,
// e.g. to a single tax year. Rows with a blank identity value pass through
// the gate, since there is nothing to compare.
func (g *Gate) FilterNew(ctx context.Context, rows []models.Row, table, dbColumn, identityColumn string, extraFilters ...repository.KeyFilter) ([]models.Row, int, error) {
	if len(rows) == 0 {
		return []models.Row{}, 0, nil
	}

	if !batchHasColumn(rows, identityColumn) {
		return nil, 0, fmt.Errorf("%w: %q not found in batch headers for table %s",
			ErrIdentityColumnMissing, identityColumn, table)
	}

	existing, err := g.repo.ExistingKeys(ctx, table, dbColumn, extraFilters...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load existing identity values: %w", err)
	}

	kept := []models.Row{}
	skipped := 0
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := row.Get(identityColumn)
		if key == "" {
			kept = append(kept, row)
			continue
		}
		if _, dup := existing[key]; dup {
			skipped++
			continue
		}
		// Batches can repeat an identity value internally too.
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	g.log.Debug("dedup gate filtered batch", map[string]interface{}{
		"table":    table,
		"incoming": len(rows),
		"new":      len(kept),
		"skipped":  skipped,
	})

	return kept, skipped, nil
}

// batchHasColumn reports whether any row carries the column key, even with
// a blank value. Rows parsed from one CSV share a header set, so checking
// for the key's presence distinguishes "column absent" from "value blank".
func batchHasColumn(rows []models.Row, column string) bool {
	for _, row := range rows {
		if _, ok := row[column]; ok {
			return true
		}
	}
	return false
}
