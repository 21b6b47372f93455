package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// ErrPropertyNotFound is returned when a score is requested for a property
// that does not exist.
var ErrPropertyNotFound = errors.New("property not found")

// RunResult summarizes one scoring pass over the corpus.
type RunResult struct {
	Scored    int `json:"scored"`
	Saved     int `json:"saved"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Service orchestrates a scoring run: it walks every property with at least
// one violation, computes a score, and lets the Store decide whether to
// persist it.
type Service struct {
	props   repository.PropertyRepository
	signals repository.SignalRepository
	engine  *Engine
	store   *Store
	log     *logger.Logger
}

// NewService wires a scoring Service.
func NewService(props repository.PropertyRepository, signals repository.SignalRepository, engine *Engine, store *Store, log *logger.Logger) *Service {
	return &Service{
		props:   props,
		signals: signals,
		engine:  engine,
		store:   store,
		log:     log,
	}
}

// ScoreProperty computes the current score breakdown for one property
// without persisting it.
func (s *Service) ScoreProperty(ctx context.Context, propertyID int64) (*models.DistressScore, error) {
	p, err := s.props.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return s.scoreLoaded(ctx, p)
}

// ScoreByParcelID computes the current score breakdown for the property
// with the given parcel ID without persisting it.
func (s *Service) ScoreByParcelID(ctx context.Context, parcelID string) (*models.DistressScore, error) {
	p, err := s.props.FindByParcelID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return s.scoreLoaded(ctx, p)
}

// ScoreAll scores every property that has at least one code violation and
// persists the results. A failure on one property is logged and counted;
// the run continues with the next property.
func (s *Service) ScoreAll(ctx context.Context) (RunResult, error) {
	ids, err := s.signals.PropertyIDsWithViolations(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to list scorable properties: %w", err)
	}

	s.log.Info("scoring run started", map[string]interface{}{
		"properties": len(ids),
	})

	var result RunResult
	for _, id := range ids {
		score, err := s.ScoreProperty(ctx, id)
		if err != nil {
			result.Failed++
			s.log.Error("failed to score property", err, map[string]interface{}{
				"property_id": id,
			})
			continue
		}
		result.Scored++

		outcome, err := s.store.Save(ctx, score)
		if err != nil {
			result.Failed++
			s.log.Error("failed to save score", err, map[string]interface{}{
				"property_id": id,
			})
			continue
		}
		if outcome == OutcomeSaved {
			result.Saved++
		} else {
			result.Unchanged++
		}
	}

	s.log.Info("scoring run complete", map[string]interface{}{
		"scored":    result.Scored,
		"saved":     result.Saved,
		"unchanged": result.Unchanged,
		"failed":    result.Failed,
	})
	return result, nil
}

func (s *Service) scoreLoaded(ctx context.Context, p *models.Property) (*models.DistressScore, error) {
	owner, err := s.props.GetOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	financial, err := s.props.GetFinancial(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	violations, err := s.signals.ViolationsByProperty(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return s.engine.Score(p, owner, financial, violations), nil
}
