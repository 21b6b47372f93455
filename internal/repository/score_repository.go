package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhitfield/distress-engine/internal/database"
	"github.com/mwhitfield/distress-engine/internal/models"
)

// LeadFilter narrows the leads listing. Zero values mean "no filter";
// Limit is always applied.
type LeadFilter struct {
	Tier     string
	MinScore float64
	Limit    int
}

// ScoreRepository defines data access for distress score snapshots.
type ScoreRepository interface {
	// UpsertScore inserts a score row, or overwrites the existing row in
	// place when one already exists for the same property and calendar day.
	// The conflict target is the unique index on (property_id, score day),
	// so concurrent scoring runs cannot produce duplicate rows.
	UpsertScore(ctx context.Context, s *models.DistressScore) error

	// LatestScore returns the most recent score row for a property.
	// Returns nil, nil if the property has never been scored.
	LatestScore(ctx context.Context, propertyID int64) (*models.DistressScore, error)

	// ListLeads returns each property's latest score joined with its
	// address and owner, filtered and ordered by total score descending.
	ListLeads(ctx context.Context, f LeadFilter) ([]models.Lead, error)
}

// scoreRepository is the concrete implementation of ScoreRepository.
type scoreRepository struct {
	db *database.Database
}

// NewScoreRepository creates a new instance of ScoreRepository.
func NewScoreRepository(db *database.Database) ScoreRepository {
	return &scoreRepository{
		db: db,
	}
}

func (r *scoreRepository) UpsertScore(ctx context.Context, s *models.DistressScore) error {
	query := `
		INSERT INTO distress_scores (
			property_id, total_score, severity_score, days_open_score,
			persistence_score, absentee_score, prior_violations_score,
			equity_score, tier, urgency, qualified, score_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (property_id, (score_date::date)) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			severity_score = EXCLUDED.severity_score,
			days_open_score = EXCLUDED.days_open_score,
			persistence_score = EXCLUDED.persistence_score,
			absentee_score = EXCLUDED.absentee_score,
			prior_violations_score = EXCLUDED.prior_violations_score,
			equity_score = EXCLUDED.equity_score,
			tier = EXCLUDED.tier,
			urgency = EXCLUDED.urgency,
			qualified = EXCLUDED.qualified,
			score_date = EXCLUDED.score_date`

	_, err := r.db.Pool.Exec(ctx, query,
		s.PropertyID,
		s.TotalScore,
		s.Factors.Severity,
		s.Factors.DaysOpen,
		s.Factors.Persistence,
		s.Factors.Absentee,
		s.Factors.PriorViolations,
		s.Factors.Equity,
		s.Tier,
		s.Urgency,
		s.Qualified,
		s.ScoreDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert score for property %d: %w", s.PropertyID, err)
	}
	return nil
}

func (r *scoreRepository) LatestScore(ctx context.Context, propertyID int64) (*models.DistressScore, error) {
	query := `
		SELECT id, property_id, total_score, severity_score, days_open_score,
			persistence_score, absentee_score, prior_violations_score,
			equity_score, tier, urgency, qualified, score_date
		FROM distress_scores
		WHERE property_id = $1
		ORDER BY score_date DESC, id DESC
		LIMIT 1`

	var s models.DistressScore
	err := r.db.Pool.QueryRow(ctx, query, propertyID).Scan(
		&s.ID,
		&s.PropertyID,
		&s.TotalScore,
		&s.Factors.Severity,
		&s.Factors.DaysOpen,
		&s.Factors.Persistence,
		&s.Factors.Absentee,
		&s.Factors.PriorViolations,
		&s.Factors.Equity,
		&s.Tier,
		&s.Urgency,
		&s.Qualified,
		&s.ScoreDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest score for property %d: %w", propertyID, err)
	}
	return &s, nil
}

func (r *scoreRepository) ListLeads(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	query := `
		SELECT latest.property_id, p.parcel_id, p.address, o.owner_name,
			latest.total_score, latest.tier, latest.urgency, latest.score_date
		FROM (
			SELECT DISTINCT ON (property_id)
				property_id, total_score, tier, urgency, score_date
			FROM distress_scores
			ORDER BY property_id, score_date DESC, id DESC
		) latest
		JOIN properties p ON p.id = latest.property_id
		LEFT JOIN owners o ON o.property_id = latest.property_id
		WHERE latest.total_score >= $1
			AND ($2 = '' OR latest.tier = $2)
		ORDER BY latest.total_score DESC, latest.property_id ASC
		LIMIT $3`

	rows, err := r.db.Pool.Query(ctx, query, f.MinScore, f.Tier, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var l models.Lead
		err := rows.Scan(
			&l.PropertyID,
			&l.ParcelID,
			&l.Address,
			&l.OwnerName,
			&l.TotalScore,
			&l.Tier,
			&l.Urgency,
			&l.ScoreDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lead rows: %w", err)
	}

	return leads, nil
}
