package models

import (
	"strings"
)

// Row is one flat record as read from a source CSV, keyed by header name.
// Values are raw strings; parsing to typed fields happens in the loaders.
type Row map[string]string

// Get returns the trimmed value for a column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Has reports whether the column is present with a non-blank value.
func (r Row) Has(column string) bool {
	return r.Get(column) != ""
}

// GetAny returns the first non-blank value among the given columns.
// Source feeds are inconsistent about header naming across counties.
func (r Row) GetAny(columns ...string) string {
	for _, c := range columns {
		if v := r.Get(c); v != "" {
			return v
		}
	}
	return ""
}
