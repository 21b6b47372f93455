package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVFrom(t *testing.T) {
	input := "Record Number,Address,Status\nREC-001,123 Main St,Open\nREC-002,456 Oak Ave,Closed\n"

	header, rows, err := ReadCSVFrom(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"Record Number", "Address", "Status"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "REC-001", rows[0].Get("Record Number"))
	assert.Equal(t, "456 Oak Ave", rows[1].Get("Address"))
}

func TestReadCSVFrom_ShortRowsPadded(t *testing.T) {
	input := "A,B,C\n1,2\n"

	_, rows, err := ReadCSVFrom(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].Get("B"))
	assert.Equal(t, "", rows[0].Get("C"))
	assert.True(t, rows[0].Has("B"))
	assert.False(t, rows[0].Has("C"))
}

func TestReadCSVFrom_Empty(t *testing.T) {
	header, rows, err := ReadCSVFrom(strings.NewReader(""))

	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Empty(t, rows)
}

func TestRegistry_IdentityColumns(t *testing.T) {
	registry := Registry()

	// One identity column per record type; these are the external keys the
	// dedup gate filters on.
	expected := map[string]string{
		"violations":   "Record Number",
		"liens":        "Instrument",
		"judgments":    "Instrument",
		"deeds":        "Instrument",
		"evictions":    "CaseNumber",
		"probate":      "CaseNumber",
		"bankruptcy":   "Docket Number",
		"tax":          "Account Number",
		"permits":      "Record Number",
		"foreclosures": "Case Number",
	}

	require.Len(t, registry, len(expected))
	for name, identity := range expected {
		spec, ok := registry[name]
		require.True(t, ok, "missing record type %s", name)
		assert.Equal(t, identity, spec.IdentityColumn, name)
		assert.NotEmpty(t, spec.Table, name)
		assert.NotEmpty(t, spec.IdentityDB, name)
		assert.NotNil(t, spec.Query, name)
		assert.NotNil(t, spec.Build, name)
	}
}
