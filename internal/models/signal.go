package models

import (
	"time"
)

// Legal record type discriminators for LegalAndLien rows.
const (
	LegalRecordLien     = "Lien"
	LegalRecordJudgment = "Judgment"
	LegalRecordDeed     = "Deed"
)

// Proceeding type discriminators for LegalProceeding rows.
const (
	ProceedingProbate    = "Probate"
	ProceedingEviction   = "Eviction"
	ProceedingBankruptcy = "Bankruptcy"
)

// CodeViolation is a code-enforcement violation attached to a property.
// RecordNumber is the external unique identity; rows are append-only.
type CodeViolation struct {
	ID            int64      `json:"id"`
	PropertyID    int64      `json:"propertyId"`
	RecordNumber  string     `json:"recordNumber"`
	ViolationType *string    `json:"violationType,omitempty"`
	Description   *string    `json:"description,omitempty"`
	OpenedDate    *time.Time `json:"openedDate,omitempty"`
	Status        *string    `json:"status,omitempty"`
	FineAmount    *float64   `json:"fineAmount,omitempty"`
	IsLien        bool       `json:"isLien"`
}

// LegalAndLien is a recorded instrument (lien, judgment, or deed) attached
// to a property. InstrumentNumber is the external unique identity. The
// record-type-specific fields are a closed set of typed columns keyed by
// RecordType rather than a free-form metadata bucket.
type LegalAndLien struct {
	ID               int64      `json:"id"`
	PropertyID       int64      `json:"propertyId"`
	RecordType       string     `json:"recordType"`
	InstrumentNumber string     `json:"instrumentNumber"`
	Creditor         *string    `json:"creditor,omitempty"`
	Debtor           *string    `json:"debtor,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	FilingDate       *time.Time `json:"filingDate,omitempty"`
	BookType         *string    `json:"bookType,omitempty"`
	BookNumber       *string    `json:"bookNumber,omitempty"`
	PageNumber       *string    `json:"pageNumber,omitempty"`
	DocumentType     *string    `json:"documentType,omitempty"`
	LegalDescription *string    `json:"legalDescription,omitempty"`
}

// TaxDelinquency is a delinquent-tax record attached to a property.
// AccountNumber is the external unique identity (per tax year).
type TaxDelinquency struct {
	ID               int64    `json:"id"`
	PropertyID       int64    `json:"propertyId"`
	AccountNumber    string   `json:"accountNumber"`
	TaxYear          *int     `json:"taxYear,omitempty"`
	YearsDelinquent  *int     `json:"yearsDelinquent,omitempty"`
	DelinquentAmount *float64 `json:"delinquentAmount,omitempty"`
	AccountStatus    *string  `json:"accountStatus,omitempty"`
	CertStatus       *string  `json:"certStatus,omitempty"`
	DeedStatus       *string  `json:"deedStatus,omitempty"`
}

// Foreclosure is a foreclosure case attached to a property.
// CaseNumber is the external unique identity.
type Foreclosure struct {
	ID             int64      `json:"id"`
	PropertyID     int64      `json:"propertyId"`
	CaseNumber     string     `json:"caseNumber"`
	Plaintiff      *string    `json:"plaintiff,omitempty"`
	FilingDate     *time.Time `json:"filingDate,omitempty"`
	LisPendensDate *time.Time `json:"lisPendensDate,omitempty"`
	JudgmentAmount *float64   `json:"judgmentAmount,omitempty"`
	AuctionDate    *time.Time `json:"auctionDate,omitempty"`
}

// BuildingPermit is a building permit attached to a property.
// PermitNumber is the external unique identity.
type BuildingPermit struct {
	ID           int64      `json:"id"`
	PropertyID   int64      `json:"propertyId"`
	PermitNumber string     `json:"permitNumber"`
	PermitType   *string    `json:"permitType,omitempty"`
	IssueDate    *time.Time `json:"issueDate,omitempty"`
	ExpireDate   *time.Time `json:"expireDate,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

// LegalProceeding is a court proceeding (probate, eviction, bankruptcy)
// attached to a property. CaseNumber is the external unique identity across
// all proceeding types. The per-type extras (case type, party address,
// bankruptcy division and court) are typed nullable columns; which ones are
// populated is fixed by RecordType.
type LegalProceeding struct {
	ID              int64      `json:"id"`
	PropertyID      int64      `json:"propertyId"`
	RecordType      string     `json:"recordType"`
	CaseNumber      string     `json:"caseNumber"`
	FilingDate      *time.Time `json:"filingDate,omitempty"`
	CaseStatus      *string    `json:"caseStatus,omitempty"`
	CaseType        *string    `json:"caseType,omitempty"`
	AssociatedParty *string    `json:"associatedParty,omitempty"`
	SecondaryParty  *string    `json:"secondaryParty,omitempty"`
	PartyAddress    *string    `json:"partyAddress,omitempty"`
	Division        *string    `json:"division,omitempty"`
	CourtID         *string    `json:"courtId,omitempty"`
}

// Incident is a police or fire incident attached to a property.
type Incident struct {
	ID             int64      `json:"id"`
	PropertyID     int64      `json:"propertyId"`
	IncidentType   *string    `json:"incidentType,omitempty"`
	IncidentDate   *time.Time `json:"incidentDate,omitempty"`
	ArrestCount12M *int       `json:"arrestCount12m,omitempty"`
	ProblemFlag    bool       `json:"problemFlag"`
}
