package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"03/15/2024 9:30:00 AM", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseDate(tt.in)
		require.NoError(t, err, tt.in)
		require.NotNil(t, got)
		assert.True(t, got.Equal(tt.want), "parseDate(%q) = %v", tt.in, got)
	}
}

func TestParseDate_BlankAndInvalid(t *testing.T) {
	got, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("   ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDate("not a date")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1234.56", 1234.56},
		{"$1,234.56", 1234.56},
		{" $320,000 ", 320000},
		{"0", 0},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		require.NoError(t, err, tt.in)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got)
	}

	got, err := parseAmount("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseAmount("twelve")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	got, err := parseInt("2023")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2023, *got)

	// Spreadsheet exports render whole numbers with a decimal tail.
	got, err = parseInt("2023.0")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2023, *got)

	got, err = parseInt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseInt("2023.5")
	assert.Error(t, err)
}

func TestOptStr(t *testing.T) {
	assert.Nil(t, optStr(""))
	assert.Nil(t, optStr("   "))
	got := optStr(" hello ")
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}
