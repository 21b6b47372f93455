package models

import (
	"time"
)

// Absentee status values derived from comparing the owner's mailing address
// to the property's site address.
const (
	AbsenteeInCounty    = "In-County"
	AbsenteeOutOfCounty = "Out-of-County"
	AbsenteeOutOfState  = "Out-of-State"
)

// Property is the central hub record that all distress signals attach to.
// ParcelID is the stable external identifier and the only required field;
// every other identifying field may be null or stale.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Property struct {
	ID                int64      `json:"id"`
	ParcelID          string     `json:"parcelId"`
	Address           *string    `json:"address,omitempty"`
	NormalizedAddress *string    `json:"-"`
	City              *string    `json:"city,omitempty"`
	State             *string    `json:"state,omitempty"`
	Zip               *string    `json:"zip,omitempty"`
	County            *string    `json:"county,omitempty"`
	PropertyType      *string    `json:"propertyType,omitempty"`
	YearBuilt         *int       `json:"yearBuilt,omitempty"`
	SquareFootage     *float64   `json:"squareFootage,omitempty"`
	Beds              *float64   `json:"beds,omitempty"`
	Baths             *float64   `json:"baths,omitempty"`
	LotSize           *float64   `json:"lotSize,omitempty"`
	LegalDescription  *string    `json:"legalDescription,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Owner holds ownership information for a property. At most one live Owner
// exists per Property; its lifecycle is tied to the Property row.
type Owner struct {
	ID             int64   `json:"id"`
	PropertyID     int64   `json:"propertyId"`
	OwnerName      *string `json:"ownerName,omitempty"`
	NormalizedName *string `json:"-"`
	MailingAddress *string `json:"mailingAddress,omitempty"`
	MailingCity    *string `json:"mailingCity,omitempty"`
	MailingState   *string `json:"mailingState,omitempty"`
	MailingZip     *string `json:"mailingZip,omitempty"`
	OwnerType      *string `json:"ownerType,omitempty"`
	AbsenteeStatus *string `json:"absenteeStatus,omitempty"`
}

// Financial holds county valuation data for a property. AssessedValueMkt is
// the equity proxy used by the scoring engine.
type Financial struct {
	ID               int64      `json:"id"`
	PropertyID       int64      `json:"propertyId"`
	AssessedValueMkt *float64   `json:"assessedValueMkt,omitempty"`
	AssessedValueTax *float64   `json:"assessedValueTax,omitempty"`
	LandValue        *float64   `json:"landValue,omitempty"`
	BuildingValue    *float64   `json:"buildingValue,omitempty"`
	LastSalePrice    *float64   `json:"lastSalePrice,omitempty"`
	LastSaleDate     *time.Time `json:"lastSaleDate,omitempty"`
	AnnualTaxAmount  *float64   `json:"annualTaxAmount,omitempty"`
	HomesteadExempt  *bool      `json:"homesteadExempt,omitempty"`
}
