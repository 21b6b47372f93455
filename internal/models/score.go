package models

import (
	"time"
)

// Lead tier labels, from a property's total distress score.
const (
	TierUltraPlatinum = "Ultra Platinum"
	TierPlatinum      = "Platinum"
	TierGold          = "Gold"
	TierSilver        = "Silver"
	TierBronze        = "Bronze"
)

// Urgency labels, from a property's total distress score.
const (
	UrgencyImmediate = "Immediate"
	UrgencyHigh      = "High"
	UrgencyMedium    = "Medium"
	UrgencyLow       = "Low"
)

// FactorScores is the fixed six-component breakdown of a distress score.
// Each component is already capped at its maximum before it lands here.
type FactorScores struct {
	Severity        float64 `json:"severity"`
	DaysOpen        float64 `json:"daysOpen"`
	Persistence     float64 `json:"persistence"`
	Absentee        float64 `json:"absentee"`
	PriorViolations float64 `json:"priorViolations"`
	Equity          float64 `json:"equity"`
}

// Total sums the six components.
func (f FactorScores) Total() float64 {
	return f.Severity + f.DaysOpen + f.Persistence + f.Absentee + f.PriorViolations + f.Equity
}

// DistressScore is one scored snapshot of a property. At most one row exists
// per property per calendar day; re-scoring within a day overwrites in place.
type DistressScore struct {
	ID         int64        `json:"id"`
	PropertyID int64        `json:"propertyId"`
	TotalScore float64      `json:"totalScore"`
	Factors    FactorScores `json:"factors"`
	Tier       string       `json:"tier"`
	Urgency    string       `json:"urgency"`
	Qualified  bool         `json:"qualified"`
	ScoreDate  time.Time    `json:"scoreDate"`
}

// Lead is a scored property row returned by the leads listing.
type Lead struct {
	PropertyID int64     `json:"propertyId"`
	ParcelID   string    `json:"parcelId"`
	Address    *string   `json:"address,omitempty"`
	OwnerName  *string   `json:"ownerName,omitempty"`
	TotalScore float64   `json:"totalScore"`
	Tier       string    `json:"tier"`
	Urgency    string    `json:"urgency"`
	ScoreDate  time.Time `json:"scoreDate"`
}
