// Package resolve attaches incoming records to existing properties using a
// tiered, first-match-wins strategy: cheapest and most precise lookups run
// first, fuzzy scans run last and over bounded candidate windows.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwhitfield/distress-engine/internal/config"
	"github.com/mwhitfield/distress-engine/internal/matching"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// Match tier labels, in evaluation order.
const (
	TierParcelID     = "parcel_id"
	TierExactAddress = "exact_address"
	TierFuzzyAddress = "fuzzy_address"
	TierExactOwner   = "exact_owner"
	TierPartialOwner = "partial_owner"
	TierOwnerScan    = "owner_scan"
)

// Query carries the already-normalized keys for one incoming record.
// Empty fields skip their tiers.
type Query struct {
	ParcelID  string
	Address   string
	OwnerName string
}

// Match is a successful resolution: the property, the confidence score
// (100 for exact tiers, the similarity score for fuzzy tiers), and the
// tier that produced it.
type Match struct {
	Property   *models.Property
	Confidence int
	Tier       string
}

// Resolver finds the best-matching property for a query.
type Resolver struct {
	repo repository.PropertyRepository
	cfg  config.MatchingConfig
}

// New creates a Resolver backed by the given repository.
func New(repo repository.PropertyRepository, cfg config.MatchingConfig) *Resolver {
	return &Resolver{
		repo: repo,
		cfg:  cfg,
	}
}

// Resolve evaluates the tiers in fixed order and returns the first match.
// Returns nil, nil when no tier produces a match (not an error).
//
// Fuzzy tiers scan candidates in ascending property-ID order and accept a
// new best only on a strictly greater score, so ties deterministically go
// to the lowest ID.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Match, error) {
	if q.ParcelID != "" {
		p, err := r.repo.FindByParcelID(ctx, q.ParcelID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return &Match{Property: p, Confidence: 100, Tier: TierParcelID}, nil
		}
	}

	if q.Address != "" {
		m, err := r.resolveByAddress(ctx, q.Address)
		if err != nil || m != nil {
			return m, err
		}
	}

	if q.OwnerName != "" {
		m, err := r.resolveByOwner(ctx, q.OwnerName)
		if err != nil || m != nil {
			return m, err
		}
	}

	return nil, nil
}

func (r *Resolver) resolveByAddress(ctx context.Context, key string) (*Match, error) {
	p, err := r.repo.FindByNormalizedAddress(ctx, key)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return &Match{Property: p, Confidence: 100, Tier: TierExactAddress}, nil
	}

	candidates, err := r.repo.AddressCandidates(ctx, r.cfg.AddressCandidates)
	if err != nil {
		return nil, err
	}

	bestID, bestScore := int64(0), -1
	for _, c := range candidates {
		if score := matching.Ratio(key, c.NormalizedAddress); score > bestScore {
			bestID, bestScore = c.PropertyID, score
		}
	}
	if bestScore < r.cfg.AddressThreshold {
		return nil, nil
	}

	return r.matchByID(ctx, bestID, bestScore, TierFuzzyAddress)
}

func (r *Resolver) resolveByOwner(ctx context.Context, name string) (*Match, error) {
	p, err := r.repo.FindByOwnerName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return &Match{Property: p, Confidence: 100, Tier: TierExactOwner}, nil
	}

	// Partial match: anchor on the first and last tokens so middle names
	// and initials recorded inconsistently across feeds still hit.
	if tokens := strings.Fields(name); len(tokens) >= 2 {
		pattern := tokens[0] + "%" + tokens[len(tokens)-1]
		candidates, err := r.repo.OwnerCandidatesByPattern(ctx, pattern, r.cfg.OwnerPatternLimit)
		if err != nil {
			return nil, err
		}
		if m, err := r.bestOwnerMatch(ctx, name, candidates, TierPartialOwner); err != nil || m != nil {
			return m, err
		}
	}

	candidates, err := r.repo.OwnerCandidates(ctx, r.cfg.OwnerFallbackLimit)
	if err != nil {
		return nil, err
	}
	return r.bestOwnerMatch(ctx, name, candidates, TierOwnerScan)
}

func (r *Resolver) bestOwnerMatch(ctx context.Context, name string, candidates []repository.OwnerCandidate, tier string) (*Match, error) {
	bestID, bestScore := int64(0), -1
	for _, c := range candidates {
		if score := matching.TokenSortRatio(name, c.NormalizedName); score > bestScore {
			bestID, bestScore = c.PropertyID, score
		}
	}
	if bestScore < r.cfg.OwnerThreshold {
		return nil, nil
	}
	return r.matchByID(ctx, bestID, bestScore, tier)
}

func (r *Resolver) matchByID(ctx context.Context, id int64, confidence int, tier string) (*Match, error) {
	p, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("matched property %d disappeared during resolution", id)
	}
	return &Match{Property: p, Confidence: confidence, Tier: tier}, nil
}
