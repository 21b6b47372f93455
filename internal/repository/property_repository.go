package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhitfield/distress-engine/internal/database"
	"github.com/mwhitfield/distress-engine/internal/models"
)

// AddressCandidate is the minimal projection the fuzzy address tier scans.
type AddressCandidate struct {
	PropertyID        int64
	NormalizedAddress string
}

// OwnerCandidate is the minimal projection the owner-name tiers scan.
type OwnerCandidate struct {
	PropertyID     int64
	NormalizedName string
}

// PropertyRepository defines the interface for property, owner, and
// financial data access.
type PropertyRepository interface {
	// FindByParcelID looks up a property by its stable external parcel ID.
	// Returns nil, nil if no property is found (not an error).
	FindByParcelID(ctx context.Context, parcelID string) (*models.Property, error)

	// FindByID looks up a property by its internal ID.
	// Returns nil, nil if no property is found (not an error).
	FindByID(ctx context.Context, id int64) (*models.Property, error)

	// FindByNormalizedAddress performs an indexed equality lookup on the
	// precomputed normalized address column. When multiple properties share
	// a normalized address the lowest internal ID wins.
	// Returns nil, nil if no property is found (not an error).
	FindByNormalizedAddress(ctx context.Context, key string) (*models.Property, error)

	// AddressCandidates returns up to limit (property ID, normalized address)
	// pairs with a non-null address, ordered by internal ID. The cap bounds
	// the fuzzy tier's latency against a large corpus.
	AddressCandidates(ctx context.Context, limit int) ([]AddressCandidate, error)

	// FindByOwnerName performs an indexed equality lookup on the normalized
	// owner name and returns the owning property. Lowest property ID wins
	// when a name owns several properties.
	// Returns nil, nil if no property is found (not an error).
	FindByOwnerName(ctx context.Context, normalizedName string) (*models.Property, error)

	// OwnerCandidatesByPattern returns up to limit owner candidates whose
	// normalized name matches the given SQL LIKE pattern, ordered by owner ID.
	OwnerCandidatesByPattern(ctx context.Context, pattern string, limit int) ([]OwnerCandidate, error)

	// OwnerCandidates returns up to limit owner candidates with a non-null
	// normalized name, ordered by owner ID. Last-resort scan window.
	OwnerCandidates(ctx context.Context, limit int) ([]OwnerCandidate, error)

	// GetOwner returns the owner row for a property.
	// Returns nil, nil if the property has no owner row.
	GetOwner(ctx context.Context, propertyID int64) (*models.Owner, error)

	// GetFinancial returns the financial row for a property.
	// Returns nil, nil if the property has no financial row.
	GetFinancial(ctx context.Context, propertyID int64) (*models.Financial, error)

	// UpsertProperty inserts a property or updates it in place when the
	// parcel ID already exists. Returns the internal property ID.
	UpsertProperty(ctx context.Context, p *models.Property) (int64, error)

	// UpsertOwner inserts or replaces the single owner row for a property.
	UpsertOwner(ctx context.Context, o *models.Owner) error

	// UpsertFinancial inserts or replaces the financial row for a property.
	UpsertFinancial(ctx context.Context, f *models.Financial) error
}

// propertyRepository is the concrete implementation of PropertyRepository.
type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{
		db: db,
	}
}

const propertyColumns = `
	id,
	parcel_id,
	address,
	normalized_address,
	city,
	state,
	zip,
	county,
	property_type,
	year_built,
	square_footage,
	beds,
	baths,
	lot_size,
	legal_description,
	created_at,
	updated_at
`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.ParcelID,
		&p.Address,
		&p.NormalizedAddress,
		&p.City,
		&p.State,
		&p.Zip,
		&p.County,
		&p.PropertyType,
		&p.YearBuilt,
		&p.SquareFootage,
		&p.Beds,
		&p.Baths,
		&p.LotSize,
		&p.LegalDescription,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) FindByParcelID(ctx context.Context, parcelID string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE parcel_id = $1 LIMIT 1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, parcelID))
	if err != nil {
		return nil, fmt.Errorf("failed to query property by parcel id %q: %w", parcelID, err)
	}
	return p, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) FindByNormalizedAddress(ctx context.Context, key string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE normalized_address = $1
		ORDER BY id
		LIMIT 1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("failed to query property by address key: %w", err)
	}
	return p, nil
}

func (r *propertyRepository) AddressCandidates(ctx context.Context, limit int) ([]AddressCandidate, error) {
	query := `
		SELECT id, normalized_address
		FROM properties
		WHERE normalized_address IS NOT NULL AND normalized_address <> ''
		ORDER BY id
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query address candidates: %w", err)
	}
	defer rows.Close()

	candidates := []AddressCandidate{}
	for rows.Next() {
		var c AddressCandidate
		if err := rows.Scan(&c.PropertyID, &c.NormalizedAddress); err != nil {
			return nil, fmt.Errorf("failed to scan address candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating address candidates: %w", err)
	}

	return candidates, nil
}

func (r *propertyRepository) FindByOwnerName(ctx context.Context, normalizedName string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE id IN (SELECT property_id FROM owners WHERE normalized_name = $1)
		ORDER BY id
		LIMIT 1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, normalizedName))
	if err != nil {
		return nil, fmt.Errorf("failed to query property by owner name: %w", err)
	}
	return p, nil
}

func (r *propertyRepository) OwnerCandidatesByPattern(ctx context.Context, pattern string, limit int) ([]OwnerCandidate, error) {
	query := `
		SELECT property_id, normalized_name
		FROM owners
		WHERE normalized_name LIKE $1
		ORDER BY id
		LIMIT $2`

	return r.queryOwnerCandidates(ctx, query, pattern, limit)
}

func (r *propertyRepository) OwnerCandidates(ctx context.Context, limit int) ([]OwnerCandidate, error) {
	query := `
		SELECT property_id, normalized_name
		FROM owners
		WHERE normalized_name IS NOT NULL AND normalized_name <> ''
		ORDER BY id
		LIMIT $1`

	return r.queryOwnerCandidates(ctx, query, limit)
}

func (r *propertyRepository) queryOwnerCandidates(ctx context.Context, query string, args ...interface{}) ([]OwnerCandidate, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner candidates: %w", err)
	}
	defer rows.Close()

	candidates := []OwnerCandidate{}
	for rows.Next() {
		var c OwnerCandidate
		if err := rows.Scan(&c.PropertyID, &c.NormalizedName); err != nil {
			return nil, fmt.Errorf("failed to scan owner candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner candidates: %w", err)
	}

	return candidates, nil
}

func (r *propertyRepository) GetOwner(ctx context.Context, propertyID int64) (*models.Owner, error) {
	query := `
		SELECT id, property_id, owner_name, normalized_name, mailing_address,
			mailing_city, mailing_state, mailing_zip, owner_type, absentee_status
		FROM owners
		WHERE property_id = $1
		LIMIT 1`

	var o models.Owner
	err := r.db.Pool.QueryRow(ctx, query, propertyID).Scan(
		&o.ID,
		&o.PropertyID,
		&o.OwnerName,
		&o.NormalizedName,
		&o.MailingAddress,
		&o.MailingCity,
		&o.MailingState,
		&o.MailingZip,
		&o.OwnerType,
		&o.AbsenteeStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query owner for property %d: %w", propertyID, err)
	}
	return &o, nil
}

func (r *propertyRepository) GetFinancial(ctx context.Context, propertyID int64) (*models.Financial, error) {
	query := `
		SELECT id, property_id, assessed_value_mkt, assessed_value_tax, land_value,
			building_value, last_sale_price, last_sale_date, annual_tax_amount,
			homestead_exempt
		FROM financials
		WHERE property_id = $1
		LIMIT 1`

	var f models.Financial
	err := r.db.Pool.QueryRow(ctx, query, propertyID).Scan(
		&f.ID,
		&f.PropertyID,
		&f.AssessedValueMkt,
		&f.AssessedValueTax,
		&f.LandValue,
		&f.BuildingValue,
		&f.LastSalePrice,
		&f.LastSaleDate,
		&f.AnnualTaxAmount,
		&f.HomesteadExempt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query financial for property %d: %w", propertyID, err)
	}
	return &f, nil
}

func (r *propertyRepository) UpsertProperty(ctx context.Context, p *models.Property) (int64, error) {
	query := `
		INSERT INTO properties (
			parcel_id, address, normalized_address, city, state, zip, county,
			property_type, year_built, square_footage, beds, baths, lot_size,
			legal_description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (parcel_id) DO UPDATE SET
			address = EXCLUDED.address,
			normalized_address = EXCLUDED.normalized_address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			county = EXCLUDED.county,
			property_type = EXCLUDED.property_type,
			year_built = EXCLUDED.year_built,
			square_footage = EXCLUDED.square_footage,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			lot_size = EXCLUDED.lot_size,
			legal_description = EXCLUDED.legal_description,
			updated_at = NOW()
		RETURNING id`

	var id int64
	err := r.db.Pool.QueryRow(ctx, query,
		p.ParcelID,
		p.Address,
		p.NormalizedAddress,
		p.City,
		p.State,
		p.Zip,
		p.County,
		p.PropertyType,
		p.YearBuilt,
		p.SquareFootage,
		p.Beds,
		p.Baths,
		p.LotSize,
		p.LegalDescription,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert property %q: %w", p.ParcelID, err)
	}
	return id, nil
}

func (r *propertyRepository) UpsertOwner(ctx context.Context, o *models.Owner) error {
	query := `
		INSERT INTO owners (
			property_id, owner_name, normalized_name, mailing_address,
			mailing_city, mailing_state, mailing_zip, owner_type, absentee_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (property_id) DO UPDATE SET
			owner_name = EXCLUDED.owner_name,
			normalized_name = EXCLUDED.normalized_name,
			mailing_address = EXCLUDED.mailing_address,
			mailing_city = EXCLUDED.mailing_city,
			mailing_state = EXCLUDED.mailing_state,
			mailing_zip = EXCLUDED.mailing_zip,
			owner_type = EXCLUDED.owner_type,
			absentee_status = EXCLUDED.absentee_status`

	_, err := r.db.Pool.Exec(ctx, query,
		o.PropertyID,
		o.OwnerName,
		o.NormalizedName,
		o.MailingAddress,
		o.MailingCity,
		o.MailingState,
		o.MailingZip,
		o.OwnerType,
		o.AbsenteeStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert owner for property %d: %w", o.PropertyID, err)
	}
	return nil
}

func (r *propertyRepository) UpsertFinancial(ctx context.Context, f *models.Financial) error {
	query := `
		INSERT INTO financials (
			property_id, assessed_value_mkt, assessed_value_tax, land_value,
			building_value, last_sale_price, last_sale_date, annual_tax_amount,
			homestead_exempt
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (property_id) DO UPDATE SET
			assessed_value_mkt = EXCLUDED.assessed_value_mkt,
			assessed_value_tax = EXCLUDED.assessed_value_tax,
			land_value = EXCLUDED.land_value,
			building_value = EXCLUDED.building_value,
			last_sale_price = EXCLUDED.last_sale_price,
			last_sale_date = EXCLUDED.last_sale_date,
			annual_tax_amount = EXCLUDED.annual_tax_amount,
			homestead_exempt = EXCLUDED.homestead_exempt`

	_, err := r.db.Pool.Exec(ctx, query,
		f.PropertyID,
		f.AssessedValueMkt,
		f.AssessedValueTax,
		f.LandValue,
		f.BuildingValue,
		f.LastSalePrice,
		f.LastSaleDate,
		f.AnnualTaxAmount,
		f.HomesteadExempt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert financial for property %d: %w", f.PropertyID, err)
	}
	return nil
}
