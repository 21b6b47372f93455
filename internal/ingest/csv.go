// Package ingest turns raw source extracts into resolved, deduplicated
// signal rows. Each record type declares its contract in the registry; the
// Loader runs the shared pipeline of normalize, resolve, dedup, persist.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/mwhitfield/distress-engine/internal/models"
)

// ReadCSV reads a source extract into flat rows keyed by header name.
// Short rows are padded with blanks; the header is returned alongside so
// callers can re-stage the file for archive rotation.
func ReadCSV(path string) ([]string, []models.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	defer f.Close()

	header, rows, err := ReadCSVFrom(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read extract %s: %w", path, err)
	}
	return header, rows, nil
}

// ReadCSVFrom reads rows from an already-open CSV stream.
func ReadCSVFrom(r io.Reader) ([]string, []models.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, []models.Row{}, nil
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	rows := []models.Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(models.Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}
