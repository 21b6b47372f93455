package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts seen across county extracts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"01/02/2006 3:04 PM",
}

// parseDate parses a source date string. Blank input returns nil without
// error; an unparsable value is a row-level error.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparsable date %q", raw)
}

// parseAmount parses a currency or numeric string, tolerating dollar signs,
// commas, and surrounding whitespace. Blank input returns nil without error.
func parseAmount(raw string) (*float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil
	}
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("unparsable amount %q", raw)
	}
	return &v, nil
}

// parseInt parses an integer field, tolerating a trailing decimal part the
// way spreadsheet exports often render whole numbers ("2023.0").
func parseInt(raw string) (*int, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil
	}
	if dot := strings.IndexByte(cleaned, '.'); dot >= 0 {
		if rest := cleaned[dot+1:]; strings.Trim(rest, "0") == "" {
			cleaned = cleaned[:dot]
		}
	}

	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil, fmt.Errorf("unparsable integer %q", raw)
	}
	return &v, nil
}

// optStr returns nil for blank values so they persist as NULL.
func optStr(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
