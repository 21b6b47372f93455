package ingest

import (
	"fmt"
	"strings"

	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/normalize"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/resolve"
)

// RecordSpec is one record type's ingestion contract: where its identity
// lives, how a row keys into the resolver, and how a matched row becomes an
// insert statement.
type RecordSpec struct {
	// Name is the pipeline name, e.g. "violations".
	Name string
	// Table is the destination signal table.
	Table string
	// IdentityColumn is the source CSV header carrying the external identity.
	IdentityColumn string
	// IdentityDB is the table column holding persisted identity values.
	IdentityDB string
	// Query builds the resolver keys for a row.
	Query func(n *normalize.Normalizer, row models.Row) resolve.Query
	// Build turns a matched row into an insert statement. A returned error
	// is a row-level failure: logged, counted, and skipped.
	Build func(row models.Row, propertyID int64) (repository.InsertStatement, error)
}

// Registry returns the compiled-in record specs keyed by pipeline name.
func Registry() map[string]RecordSpec {
	specs := []RecordSpec{
		violationSpec(),
		lienSpec(),
		judgmentSpec(),
		deedSpec(),
		evictionSpec(),
		probateSpec(),
		bankruptcySpec(),
		taxSpec(),
		permitSpec(),
		foreclosureSpec(),
	}

	registry := make(map[string]RecordSpec, len(specs))
	for _, s := range specs {
		registry[s.Name] = s
	}
	return registry
}

func violationSpec() RecordSpec {
	return RecordSpec{
		Name:           "violations",
		Table:          "code_violations",
		IdentityColumn: "Record Number",
		IdentityDB:     "record_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{Address: n.Address(row.Get("Address"))}
		},
		Build: func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
			opened, err := parseDate(row.GetAny("Opened Date", "Date"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			fine, err := parseAmount(row.Get("Fine Amount"))
			if err != nil {
				return repository.InsertStatement{}, err
			}

			status := row.Get("Status")
			isLien := strings.Contains(strings.ToLower(status), "lien")

			return repository.InsertStatement{
				Query: `INSERT INTO code_violations
					(property_id, record_number, violation_type, description, opened_date, status, fine_amount, is_lien)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				Args: []interface{}{
					propertyID,
					row.Get("Record Number"),
					optStr(row.Get("Violation Type")),
					optStr(row.Get("Description")),
					opened,
					optStr(status),
					fine,
					isLien,
				},
			}, nil
		},
	}
}

// buildLegalAndLien is shared by the lien, judgment, and deed pipelines,
// which all land in the recorded-instruments table.
func buildLegalAndLien(recordType, amountColumn string) func(models.Row, int64) (repository.InsertStatement, error) {
	return func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
		amount, err := parseAmount(row.Get(amountColumn))
		if err != nil {
			return repository.InsertStatement{}, err
		}
		filed, err := parseDate(row.Get("RecordDate"))
		if err != nil {
			return repository.InsertStatement{}, err
		}

		return repository.InsertStatement{
			Query: `INSERT INTO legal_and_liens
				(property_id, record_type, instrument_number, creditor, debtor, amount, filing_date,
				 book_type, book_number, page_number, document_type, legal_description)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			Args: []interface{}{
				propertyID,
				recordType,
				row.Get("Instrument"),
				optStr(row.Get("Grantee")),
				optStr(row.Get("Grantor")),
				amount,
				filed,
				optStr(row.Get("BookType")),
				optStr(row.Get("Book")),
				optStr(row.Get("Page")),
				optStr(row.GetAny("document_type", "Doc Type", "Deed Type")),
				optStr(row.Get("Legal")),
			},
		}, nil
	}
}

func lienSpec() RecordSpec {
	return RecordSpec{
		Name:           "liens",
		Table:          "legal_and_liens",
		IdentityColumn: "Instrument",
		IdentityDB:     "instrument_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			// Liens attach to the debtor, recorded as grantor.
			return resolve.Query{OwnerName: n.OwnerName(row.Get("Grantor"))}
		},
		Build: buildLegalAndLien(models.LegalRecordLien, "Filing Amt"),
	}
}

func judgmentSpec() RecordSpec {
	return RecordSpec{
		Name:           "judgments",
		Table:          "legal_and_liens",
		IdentityColumn: "Instrument",
		IdentityDB:     "instrument_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{OwnerName: n.OwnerName(row.Get("Grantor"))}
		},
		Build: buildLegalAndLien(models.LegalRecordJudgment, "Filing Amt"),
	}
}

func deedSpec() RecordSpec {
	return RecordSpec{
		Name:           "deeds",
		Table:          "legal_and_liens",
		IdentityColumn: "Instrument",
		IdentityDB:     "instrument_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			// Either side of the transfer may be the owner on file.
			return resolve.Query{OwnerName: n.OwnerName(row.GetAny("Grantor", "Grantee"))}
		},
		Build: buildLegalAndLien(models.LegalRecordDeed, "Consideration"),
	}
}

// buildProceeding is shared by the eviction, probate, and bankruptcy
// pipelines, which all land in the court-proceedings table.
func buildProceeding(recordType string, caseColumn, dateColumn string) func(models.Row, int64) (repository.InsertStatement, error) {
	return func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
		filed, err := parseDate(row.Get(dateColumn))
		if err != nil {
			return repository.InsertStatement{}, err
		}

		return repository.InsertStatement{
			Query: `INSERT INTO legal_proceedings
				(property_id, record_type, case_number, filing_date, case_status, case_type,
				 associated_party, secondary_party, party_address, division, court_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			Args: []interface{}{
				propertyID,
				recordType,
				row.Get(caseColumn),
				filed,
				optStr(row.GetAny("Title", "Case Status")),
				optStr(row.GetAny("CaseTypeDescription", "Case Type")),
				optStr(partyName(row)),
				optStr(row.Get("Secondary Party")),
				optStr(row.Get("PartyAddress")),
				optStr(row.Get("Division")),
				optStr(row.Get("Court ID")),
			},
		}, nil
	}
}

// partyName assembles a display name from the split name columns used by
// the court feeds, falling back to the single-column form.
func partyName(row models.Row) string {
	if lead := row.Get("Lead Name"); lead != "" {
		return lead
	}
	parts := []string{}
	for _, col := range []string{"FirstName", "MiddleName", "LastName/CompanyName"} {
		if v := row.Get(col); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func evictionSpec() RecordSpec {
	return RecordSpec{
		Name:           "evictions",
		Table:          "legal_proceedings",
		IdentityColumn: "CaseNumber",
		IdentityDB:     "case_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{Address: n.Address(row.Get("PartyAddress"))}
		},
		Build: buildProceeding(models.ProceedingEviction, "CaseNumber", "FilingDate"),
	}
}

func probateSpec() RecordSpec {
	return RecordSpec{
		Name:           "probate",
		Table:          "legal_proceedings",
		IdentityColumn: "CaseNumber",
		IdentityDB:     "case_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			// Probate cases resolve through the decedent's address first,
			// then through the decedent as owner of record.
			return resolve.Query{
				Address:   n.Address(row.Get("PartyAddress")),
				OwnerName: n.OwnerName(partyName(row)),
			}
		},
		Build: buildProceeding(models.ProceedingProbate, "CaseNumber", "FilingDate"),
	}
}

func bankruptcySpec() RecordSpec {
	return RecordSpec{
		Name:           "bankruptcy",
		Table:          "legal_proceedings",
		IdentityColumn: "Docket Number",
		IdentityDB:     "case_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{OwnerName: n.OwnerName(row.Get("Lead Name"))}
		},
		Build: buildProceeding(models.ProceedingBankruptcy, "Docket Number", "Date Filed"),
	}
}

func taxSpec() RecordSpec {
	return RecordSpec{
		Name:           "tax",
		Table:          "tax_delinquencies",
		IdentityColumn: "Account Number",
		IdentityDB:     "account_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{
				ParcelID: row.GetAny("Parcel ID", "Folio"),
				Address:  n.Address(row.Get("Property Address")),
			}
		},
		Build: func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
			taxYear, err := parseInt(row.Get("Tax Yr"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			yearsDelinquent, err := parseInt(row.Get("years_delinquent_scraped"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			amount, err := parseAmount(row.Get("total_amount_due"))
			if err != nil {
				return repository.InsertStatement{}, err
			}

			return repository.InsertStatement{
				Query: `INSERT INTO tax_delinquencies
					(property_id, account_number, tax_year, years_delinquent, delinquent_amount,
					 account_status, cert_status, deed_status)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				Args: []interface{}{
					propertyID,
					row.Get("Account Number"),
					taxYear,
					yearsDelinquent,
					amount,
					optStr(row.Get("Account Status")),
					optStr(row.Get("Cert Status")),
					optStr(row.Get("Deed Status")),
				},
			}, nil
		},
	}
}

func permitSpec() RecordSpec {
	return RecordSpec{
		Name:           "permits",
		Table:          "building_permits",
		IdentityColumn: "Record Number",
		IdentityDB:     "permit_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{Address: n.Address(row.Get("Address"))}
		},
		Build: func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
			issued, err := parseDate(row.Get("Date"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			expires, err := parseDate(row.Get("Expiration Date"))
			if err != nil {
				return repository.InsertStatement{}, err
			}

			return repository.InsertStatement{
				Query: `INSERT INTO building_permits
					(property_id, permit_number, permit_type, issue_date, expire_date, status)
					VALUES ($1, $2, $3, $4, $5, $6)`,
				Args: []interface{}{
					propertyID,
					row.Get("Record Number"),
					optStr(row.Get("Record Type")),
					issued,
					expires,
					optStr(row.Get("Status")),
				},
			}, nil
		},
	}
}

func foreclosureSpec() RecordSpec {
	return RecordSpec{
		Name:           "foreclosures",
		Table:          "foreclosures",
		IdentityColumn: "Case Number",
		IdentityDB:     "case_number",
		Query: func(n *normalize.Normalizer, row models.Row) resolve.Query {
			return resolve.Query{
				ParcelID: row.Get("Parcel ID"),
				Address:  n.Address(row.Get("Property Address")),
			}
		},
		Build: func(row models.Row, propertyID int64) (repository.InsertStatement, error) {
			filed, err := parseDate(row.Get("Filing Date"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			lisPendens, err := parseDate(row.Get("Lis Pendens Date"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			auction, err := parseDate(row.Get("Auction Start Date/Time"))
			if err != nil {
				return repository.InsertStatement{}, err
			}
			judgment, err := parseAmount(row.Get("Judgment Amount"))
			if err != nil {
				return repository.InsertStatement{}, err
			}

			return repository.InsertStatement{
				Query: `INSERT INTO foreclosures
					(property_id, case_number, plaintiff, filing_date, lis_pendens_date, judgment_amount, auction_date)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				Args: []interface{}{
					propertyID,
					row.Get("Case Number"),
					optStr(row.Get("Plaintiff")),
					filed,
					lisPendens,
					judgment,
					auction,
				},
			}, nil
		},
	}
}

// SpecFor looks up a record spec by pipeline name.
func SpecFor(name string) (RecordSpec, error) {
	spec, ok := Registry()[name]
	if !ok {
		return RecordSpec{}, fmt.Errorf("unknown record type %q", name)
	}
	return spec, nil
}
