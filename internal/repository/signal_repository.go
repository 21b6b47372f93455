package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhitfield/distress-engine/internal/database"
	"github.com/mwhitfield/distress-engine/internal/models"
)

// InsertStatement is one queued signal-row insert. The query text comes from
// the ingestion record registry, never from user input.
type InsertStatement struct {
	Query string
	Args  []interface{}
}

// KeyFilter narrows an ExistingKeys scan to rows matching an equality
// condition, e.g. restricting tax account numbers to one tax year. The
// column name comes from the record registry; the value is parameterized.
type KeyFilter struct {
	Column string
	Value  interface{}
}

// SignalRepository defines data access for the per-property distress signal
// tables (violations, liens, tax delinquencies, and the rest).
type SignalRepository interface {
	// ExistingKeys returns the full set of external identity values already
	// present in the given table column, optionally narrowed by filters.
	// Table and column names come from the record registry, never from
	// user input.
	ExistingKeys(ctx context.Context, table, column string, filters ...KeyFilter) (map[string]struct{}, error)

	// InsertSignals executes the statements inside a single transaction,
	// queued to the server in fixed-size batches. Any statement failure or
	// commit failure rolls back the entire set and is returned to the caller.
	InsertSignals(ctx context.Context, stmts []InsertStatement, batchSize int) error

	// ViolationsByProperty returns all code violations attached to a
	// property, ordered by opened date (oldest first, nulls last).
	ViolationsByProperty(ctx context.Context, propertyID int64) ([]models.CodeViolation, error)

	// PropertyIDsWithViolations returns the IDs of every property that has
	// at least one code violation, ordered by ID. This is the scoring
	// engine's work queue.
	PropertyIDsWithViolations(ctx context.Context) ([]int64, error)

	// LegalAndLiensByProperty returns all recorded instruments (liens,
	// judgments, deeds) attached to a property, oldest filing first.
	LegalAndLiensByProperty(ctx context.Context, propertyID int64) ([]models.LegalAndLien, error)

	// ProceedingsByProperty returns all court proceedings (probate,
	// eviction, bankruptcy) attached to a property, oldest filing first.
	ProceedingsByProperty(ctx context.Context, propertyID int64) ([]models.LegalProceeding, error)

	// TaxDelinquenciesByProperty returns all delinquent-tax records attached
	// to a property, oldest tax year first.
	TaxDelinquenciesByProperty(ctx context.Context, propertyID int64) ([]models.TaxDelinquency, error)

	// PermitsByProperty returns all building permits attached to a property,
	// oldest issue date first.
	PermitsByProperty(ctx context.Context, propertyID int64) ([]models.BuildingPermit, error)

	// ForeclosuresByProperty returns all foreclosure cases attached to a
	// property, oldest filing first.
	ForeclosuresByProperty(ctx context.Context, propertyID int64) ([]models.Foreclosure, error)
}

// signalRepository is the concrete implementation of SignalRepository.
type signalRepository struct {
	db *database.Database
}

// NewSignalRepository creates a new instance of SignalRepository.
func NewSignalRepository(db *database.Database) SignalRepository {
	return &signalRepository{
		db: db,
	}
}

func (r *signalRepository) ExistingKeys(ctx context.Context, table, column string, filters ...KeyFilter) (map[string]struct{}, error) {
	// Identifier interpolation is safe here: all names come from the
	// compiled-in record registry. Filter values are parameterized.
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NOT NULL`, column, table, column)
	args := []interface{}{}
	for _, f := range filters {
		args = append(args, f.Value)
		query += fmt.Sprintf(" AND %s = $%d", f.Column, len(args))
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing keys from %s: %w", table, err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan existing key from %s: %w", table, err)
		}
		keys[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing keys from %s: %w", table, err)
	}

	return keys, nil
}

func (r *signalRepository) InsertSignals(ctx context.Context, stmts []InsertStatement, batchSize int) error {
	if len(stmts) == 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = len(stmts)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin signal insert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for start := 0; start < len(stmts); start += batchSize {
		end := start + batchSize
		if end > len(stmts) {
			end = len(stmts)
		}

		batch := &pgx.Batch{}
		for _, stmt := range stmts[start:end] {
			batch.Queue(stmt.Query, stmt.Args...)
		}

		results := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert signal row %d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close signal batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit signal inserts: %w", err)
	}
	return nil
}

func (r *signalRepository) ViolationsByProperty(ctx context.Context, propertyID int64) ([]models.CodeViolation, error) {
	query := `
		SELECT id, property_id, record_number, violation_type, description,
			opened_date, status, fine_amount, is_lien
		FROM code_violations
		WHERE property_id = $1
		ORDER BY opened_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	violations := []models.CodeViolation{}
	for rows.Next() {
		var v models.CodeViolation
		err := rows.Scan(
			&v.ID,
			&v.PropertyID,
			&v.RecordNumber,
			&v.ViolationType,
			&v.Description,
			&v.OpenedDate,
			&v.Status,
			&v.FineAmount,
			&v.IsLien,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan violation row: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating violation rows: %w", err)
	}

	return violations, nil
}

func (r *signalRepository) LegalAndLiensByProperty(ctx context.Context, propertyID int64) ([]models.LegalAndLien, error) {
	query := `
		SELECT id, property_id, record_type, instrument_number, creditor, debtor,
			amount, filing_date, book_type, book_number, page_number,
			document_type, legal_description
		FROM legal_and_liens
		WHERE property_id = $1
		ORDER BY filing_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal records for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	records := []models.LegalAndLien{}
	for rows.Next() {
		var rec models.LegalAndLien
		err := rows.Scan(
			&rec.ID,
			&rec.PropertyID,
			&rec.RecordType,
			&rec.InstrumentNumber,
			&rec.Creditor,
			&rec.Debtor,
			&rec.Amount,
			&rec.FilingDate,
			&rec.BookType,
			&rec.BookNumber,
			&rec.PageNumber,
			&rec.DocumentType,
			&rec.LegalDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal record rows: %w", err)
	}

	return records, nil
}

func (r *signalRepository) ProceedingsByProperty(ctx context.Context, propertyID int64) ([]models.LegalProceeding, error) {
	query := `
		SELECT id, property_id, record_type, case_number, filing_date, case_status,
			case_type, associated_party, secondary_party, party_address,
			division, court_id
		FROM legal_proceedings
		WHERE property_id = $1
		ORDER BY filing_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proceedings for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	proceedings := []models.LegalProceeding{}
	for rows.Next() {
		var p models.LegalProceeding
		err := rows.Scan(
			&p.ID,
			&p.PropertyID,
			&p.RecordType,
			&p.CaseNumber,
			&p.FilingDate,
			&p.CaseStatus,
			&p.CaseType,
			&p.AssociatedParty,
			&p.SecondaryParty,
			&p.PartyAddress,
			&p.Division,
			&p.CourtID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proceeding row: %w", err)
		}
		proceedings = append(proceedings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proceeding rows: %w", err)
	}

	return proceedings, nil
}

func (r *signalRepository) TaxDelinquenciesByProperty(ctx context.Context, propertyID int64) ([]models.TaxDelinquency, error) {
	query := `
		SELECT id, property_id, account_number, tax_year, years_delinquent,
			delinquent_amount, account_status, cert_status, deed_status
		FROM tax_delinquencies
		WHERE property_id = $1
		ORDER BY tax_year ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax delinquencies for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	delinquencies := []models.TaxDelinquency{}
	for rows.Next() {
		var d models.TaxDelinquency
		err := rows.Scan(
			&d.ID,
			&d.PropertyID,
			&d.AccountNumber,
			&d.TaxYear,
			&d.YearsDelinquent,
			&d.DelinquentAmount,
			&d.AccountStatus,
			&d.CertStatus,
			&d.DeedStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax delinquency row: %w", err)
		}
		delinquencies = append(delinquencies, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax delinquency rows: %w", err)
	}

	return delinquencies, nil
}

func (r *signalRepository) PermitsByProperty(ctx context.Context, propertyID int64) ([]models.BuildingPermit, error) {
	query := `
		SELECT id, property_id, permit_number, permit_type, issue_date,
			expire_date, status
		FROM building_permits
		WHERE property_id = $1
		ORDER BY issue_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query permits for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	permits := []models.BuildingPermit{}
	for rows.Next() {
		var p models.BuildingPermit
		err := rows.Scan(
			&p.ID,
			&p.PropertyID,
			&p.PermitNumber,
			&p.PermitType,
			&p.IssueDate,
			&p.ExpireDate,
			&p.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit row: %w", err)
		}
		permits = append(permits, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permit rows: %w", err)
	}

	return permits, nil
}

func (r *signalRepository) ForeclosuresByProperty(ctx context.Context, propertyID int64) ([]models.Foreclosure, error) {
	query := `
		SELECT id, property_id, case_number, plaintiff, filing_date,
			lis_pendens_date, judgment_amount, auction_date
		FROM foreclosures
		WHERE property_id = $1
		ORDER BY filing_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreclosures for property %d: %w", propertyID, err)
	}
	defer rows.Close()

	foreclosures := []models.Foreclosure{}
	for rows.Next() {
		var f models.Foreclosure
		err := rows.Scan(
			&f.ID,
			&f.PropertyID,
			&f.CaseNumber,
			&f.Plaintiff,
			&f.FilingDate,
			&f.LisPendensDate,
			&f.JudgmentAmount,
			&f.AuctionDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan foreclosure row: %w", err)
		}
		foreclosures = append(foreclosures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreclosure rows: %w", err)
	}

	return foreclosures, nil
}

func (r *signalRepository) PropertyIDsWithViolations(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT property_id
		FROM code_violations
		ORDER BY property_id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scorable property ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property ids: %w", err)
	}

	return ids, nil
}
