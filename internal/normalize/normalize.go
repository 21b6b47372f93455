// Package normalize canonicalizes free-text addresses and owner names into
// comparable keys. Both functions are pure projections: feeding an output
// back in returns it unchanged.
package normalize

import (
	"sort"
	"strings"
	"unicode"
)

// streetAbbreviations rewrites whole tokens only, so "Broadway" survives
// while "way" collapses.
var streetAbbreviations = map[string]string{
	"street":    "st",
	"drive":     "dr",
	"road":      "rd",
	"avenue":    "ave",
	"lane":      "ln",
	"circle":    "cir",
	"boulevard": "blvd",
	"court":     "ct",
	"place":     "pl",
	"way":       "wy",
	"florida":   "fl",
}

// unitMarkers and their following token are stripped from address keys.
var unitMarkers = map[string]bool{
	"apt":       true,
	"apartment": true,
	"unit":      true,
	"ste":       true,
	"suite":     true,
	"lot":       true,
	"bldg":      true,
}

// legalSuffixTokens are dropped from owner-name keys wherever they appear.
var legalSuffixTokens = map[string]bool{
	"LLC":         true,
	"INC":         true,
	"CORP":        true,
	"CO":          true,
	"LTD":         true,
	"LP":          true,
	"LLP":         true,
	"PLLC":        true,
	"TRUSTEE":     true,
	"TRUST":       true,
	"ESTATE":      true,
	"REVOCABLE":   true,
	"IRREVOCABLE": true,
	"THE":         true,
	"AND":         true,
}

// Normalizer canonicalizes addresses and owner names. The address block-list
// and known-city list come from configuration; everything else is fixed.
type Normalizer struct {
	blocklist []string
	cities    []string
}

// New creates a Normalizer. Cities are matched as trailing whole phrases,
// longest first, so "plant city" wins over any shorter overlap.
func New(blocklist, knownCities []string) *Normalizer {
	cities := make([]string, 0, len(knownCities))
	for _, c := range knownCities {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			cities = append(cities, c)
		}
	}
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) })

	lowered := make([]string, 0, len(blocklist))
	for _, b := range blocklist {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			lowered = append(lowered, b)
		}
	}

	return &Normalizer{blocklist: lowered, cities: cities}
}

// Address canonicalizes a site address into a matchable key.
// An empty result means the record cannot be resolved by address.
func (n *Normalizer) Address(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Placeholder strings and intersections are unmatchable.
	for _, bad := range n.blocklist {
		if strings.Contains(s, bad) {
			return ""
		}
	}
	if strings.Contains(s, " & ") || strings.Contains(s, " and ") {
		return ""
	}

	// Trailing annotations after a semicolon are not part of the address.
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}

	s = strings.ReplaceAll(s, ".", "")

	// Keep the street portion only. Truncating before tokenizing keeps a
	// trailing comma from sticking to the street-type token.
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if abbr, ok := streetAbbreviations[tok]; ok {
			tokens[i] = abbr
		}
	}
	s = strings.Join(tokens, " ")

	// A postal address starts with a house number.
	if len(tokens) == 0 || !containsDigit(tokens[0]) {
		return ""
	}

	// City, state, and ZIP tails can stack ("... tampa fl 33601"), so strip
	// until nothing changes.
	for {
		before := s
		for _, city := range n.cities {
			if strings.HasSuffix(s, " "+city) {
				s = strings.TrimSpace(s[:len(s)-len(city)-1])
				break
			}
		}
		if i := strings.Index(s, " fl "); i >= 0 {
			s = strings.TrimSpace(s[:i])
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, " fl"))
		if last := strings.LastIndexByte(s, ' '); last >= 0 && isZip(s[last+1:]) {
			s = s[:last]
		}
		s = strings.Join(stripUnitMarkers(strings.Fields(s)), " ")
		if s == before {
			break
		}
	}

	tokens = strings.Fields(s)
	if len(tokens) == 0 || !containsDigit(tokens[0]) {
		return ""
	}
	return s
}

// OwnerName canonicalizes an owner or party name into a matchable key.
func (n *Normalizer) OwnerName(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Punctuation becomes a token boundary, so "LLC." still drops cleanly.
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if !legalSuffixTokens[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

func stripUnitMarkers(tokens []string) []string {
	out := tokens[:0]
	skip := false
	for _, tok := range tokens {
		if skip {
			skip = false
			continue
		}
		if unitMarkers[tok] {
			skip = true
			continue
		}
		if strings.HasPrefix(tok, "#") {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func isZip(tok string) bool {
	if len(tok) != 5 {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
