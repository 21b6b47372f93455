// Package scoring computes Compliance Distress Scores: six independently
// capped factors summing to at most 100 points per property.
package scoring

import (
	"regexp"
	"strings"
	"time"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
)

// Factor caps.
const (
	maxSeverity        = 25
	maxDaysOpen        = 20
	maxPersistence     = 20
	maxAbsentee        = 15
	maxPriorViolations = 10
	maxEquity          = 10
)

// Severity tiers by violation-type keyword. Order matters: a type matching
// several tiers takes the first tier listed here, and the minor tier is
// checked before the moderate tier on purpose.
var severityTiers = []struct {
	points   int
	keywords []string
}{
	{25, []string{"structural condemnation", "unsafe", "condemned"}},
	{20, []string{"fire marshal", "enforcement complaint", "generalized housing"}},
	{8, []string{"water enforcement", "fertilizer", "right of way"}},
	{15, []string{"citizen board support code", "proactive", "community outreach"}},
	{3, []string{"consumer protection", "locksmith", "vehicle for hire", "trespass tow", "false alarm", "ada gas pumping"}},
}

var zipPattern = regexp.MustCompile(`\b\d{5}\b`)

// Engine turns a property's signal set into a score breakdown. It is pure:
// all data is passed in, nothing is read from the store.
type Engine struct {
	threshold float64
	log       *logger.Logger
	now       func() time.Time
}

// NewEngine creates an Engine with the given qualification threshold.
func NewEngine(threshold float64, log *logger.Logger) *Engine {
	return &Engine{
		threshold: threshold,
		log:       log,
		now:       time.Now,
	}
}

// Score computes the full breakdown for one property. Owner and financial
// may be nil; violations may be empty. The returned score is dated now.
func (e *Engine) Score(p *models.Property, owner *models.Owner, financial *models.Financial, violations []models.CodeViolation) *models.DistressScore {
	var factors models.FactorScores

	for _, v := range violations {
		factors.Severity = max(factors.Severity, float64(e.severityScore(v)))
		factors.DaysOpen = max(factors.DaysOpen, float64(e.daysOpenScore(v)))
		factors.Persistence = max(factors.Persistence, float64(e.persistenceScore(v, len(violations))))
	}
	factors.PriorViolations = float64(priorViolationsScore(len(violations)))

	if owner != nil {
		factors.Absentee = float64(e.absenteeScore(owner, p))
	}
	factors.Equity = float64(equityScore(financial))

	total := factors.Total()

	return &models.DistressScore{
		PropertyID: p.ID,
		TotalScore: total,
		Factors:    factors,
		Tier:       TierFor(total),
		Urgency:    UrgencyFor(total),
		Qualified:  total >= e.threshold,
		ScoreDate:  e.now(),
	}
}

// TierFor maps a total score to a lead tier.
func TierFor(total float64) string {
	switch {
	case total >= 85:
		return models.TierUltraPlatinum
	case total >= 75:
		return models.TierPlatinum
	case total >= 65:
		return models.TierGold
	case total >= 55:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// UrgencyFor maps a total score to an urgency level. The breakpoints are
// independent of the tier breakpoints; the 60/55 split is intentional.
func UrgencyFor(total float64) string {
	switch {
	case total >= 85:
		return models.UrgencyImmediate
	case total >= 75:
		return models.UrgencyHigh
	case total >= 60:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func (e *Engine) severityScore(v models.CodeViolation) int {
	if v.ViolationType == nil || *v.ViolationType == "" {
		return 0
	}
	vtype := strings.ToLower(*v.ViolationType)

	for _, tier := range severityTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(vtype, kw) {
				return tier.points
			}
		}
	}

	e.log.Warn("unmapped violation type", map[string]interface{}{
		"violation_type": *v.ViolationType,
		"record_number":  v.RecordNumber,
	})
	return 0
}

func (e *Engine) daysOpenScore(v models.CodeViolation) int {
	// Escalation status takes priority over elapsed time. The lien branch
	// only triggers when a status string is present, matching the factor's
	// historical behavior.
	if v.Status != nil && *v.Status != "" {
		status := strings.ToLower(*v.Status)
		switch {
		case containsAny(status, "judgment", "court", "legal"):
			return 20
		case strings.Contains(status, "hearing"):
			return 18
		case strings.Contains(status, "lien") || v.IsLien:
			return 16
		}
	}

	if v.OpenedDate == nil {
		return 0
	}

	days := e.daysSince(*v.OpenedDate)
	switch {
	case days > 365:
		return 14
	case days >= 181:
		return 10
	case days >= 91:
		return 7
	case days >= 31:
		return 4
	default:
		return 2
	}
}

// persistenceScore measures owner inaction: how long the violation has sat
// open, how far enforcement has escalated, and whether the property is a
// repeat offender. The three components add up and cap at 20.
func (e *Engine) persistenceScore(v models.CodeViolation, violationCount int) int {
	score := 0

	if v.OpenedDate != nil {
		days := e.daysSince(*v.OpenedDate)
		switch {
		case days >= 365:
			score += 8
		case days >= 180:
			score += 6
		case days >= 90:
			score += 4
		case days >= 30:
			score += 2
		default:
			score += 1
		}
	}

	if v.Status != nil && *v.Status != "" {
		status := strings.ToLower(*v.Status)
		switch {
		case containsAny(status, "judgment", "court", "legal action"):
			score += 8
		case containsAny(status, "hearing", "scheduled"):
			score += 6
		case strings.Contains(status, "lien") || v.IsLien:
			score += 5
		case containsAny(status, "notice", "warning"):
			score += 2
		}
	}

	switch {
	case violationCount >= 5:
		score += 4
	case violationCount >= 3:
		score += 3
	case violationCount >= 2:
		score += 2
	}

	if score > maxPersistence {
		return maxPersistence
	}
	return score
}

func (e *Engine) absenteeScore(owner *models.Owner, p *models.Property) int {
	if owner.AbsenteeStatus != nil {
		switch *owner.AbsenteeStatus {
		case models.AbsenteeOutOfState:
			return 15
		case models.AbsenteeOutOfCounty:
			return 8
		case models.AbsenteeInCounty:
			return 0
		}
	}

	// Fallback when no precomputed status exists.
	if owner.MailingAddress != nil && p.Address != nil {
		if strings.EqualFold(*owner.MailingAddress, *p.Address) {
			return 0
		}
		if p.Zip != nil {
			if ownerZip := zipPattern.FindString(*owner.MailingAddress); ownerZip != "" {
				propZip := *p.Zip
				if len(propZip) > 5 {
					propZip = propZip[:5]
				}
				if ownerZip != propZip {
					return 8
				}
			}
		}
	}

	// Undeterminable is an explicit default, not absence of signal.
	return 5
}

func priorViolationsScore(count int) int {
	switch {
	case count >= 5:
		return 10
	case count >= 3:
		return 7
	case count >= 2:
		return 4
	default:
		return 0
	}
}

func equityScore(f *models.Financial) int {
	if f == nil || f.AssessedValueMkt == nil {
		return 3
	}
	switch v := *f.AssessedValueMkt; {
	case v >= 300000:
		return 10
	case v >= 150000:
		return 7
	case v >= 75000:
		return 5
	default:
		return 3
	}
}

func (e *Engine) daysSince(t time.Time) int {
	return int(e.now().Sub(t).Hours() / 24)
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
