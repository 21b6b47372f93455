package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// SaveOutcome describes what Store.Save did with a computed score.
type SaveOutcome int

const (
	// OutcomeSaved means a row was inserted or today's row was overwritten.
	OutcomeSaved SaveOutcome = iota
	// OutcomeUnchanged means the latest historical score equals the new one,
	// so no row was written. This keeps the timeline compact: a row appears
	// only on the day a score first exists or actually changes.
	OutcomeUnchanged
)

// Store decides whether a computed score becomes a new row, overwrites
// today's row, or is dropped as unchanged. The write itself is an atomic
// upsert keyed on (property, calendar day), so concurrent scoring runs for
// the same property cannot produce duplicate same-day rows.
type Store struct {
	repo repository.ScoreRepository
	log  *logger.Logger
}

// NewStore creates a Store backed by the given score repository.
func NewStore(repo repository.ScoreRepository, log *logger.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log,
	}
}

// Save persists a score following the compaction rules:
//  1. A row already dated today is overwritten in place (via the upsert).
//  2. Otherwise, if the most recent historical row carries the exact same
//     total, nothing is written.
//  3. Otherwise a new row dated now is inserted.
func (s *Store) Save(ctx context.Context, score *models.DistressScore) (SaveOutcome, error) {
	latest, err := s.repo.LatestScore(ctx, score.PropertyID)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to load latest score: %w", err)
	}

	if latest != nil && !sameDay(latest.ScoreDate, score.ScoreDate) && latest.TotalScore == score.TotalScore {
		s.log.Debug("score unchanged, skipping", map[string]interface{}{
			"property_id": score.PropertyID,
			"total_score": score.TotalScore,
		})
		return OutcomeUnchanged, nil
	}

	if err := s.repo.UpsertScore(ctx, score); err != nil {
		return OutcomeUnchanged, err
	}
	return OutcomeSaved, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
