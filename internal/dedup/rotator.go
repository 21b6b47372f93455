package dedup

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwhitfield/distress-engine/internal/models"
)

// Rotator maintains two generations of flat-file exports per record type:
// old/ holds the last confirmed-persisted export, new/ holds the candidate
// output of the current run. Rotation only happens after the corresponding
// batch is confirmed committed to the store. A crash between filter and
// store-write must not advance the old/ generation, or later runs would
// treat un-persisted records as already seen.
type Rotator struct {
	baseDir string
}

// NewRotator creates a Rotator rooted at the given archive directory.
func NewRotator(baseDir string) *Rotator {
	return &Rotator{baseDir: baseDir}
}

func (r *Rotator) oldPath(recordType string) string {
	return filepath.Join(r.baseDir, "old", recordType+".csv")
}

func (r *Rotator) newPath(recordType string) string {
	return filepath.Join(r.baseDir, "new", recordType+".csv")
}

// PreviousKeys reads the identity-column values from the old-generation file
// for a record type. A missing file means no previous generation and returns
// an empty set.
func (r *Rotator) PreviousKeys(recordType, identityColumn string) (map[string]struct{}, error) {
	f, err := os.Open(r.oldPath(recordType))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to open previous export for %s: %w", recordType, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read previous export for %s: %w", recordType, err)
	}
	if len(records) == 0 {
		return map[string]struct{}{}, nil
	}

	idIdx := -1
	for i, h := range records[0] {
		if h == identityColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %q not found in previous export for %s",
			ErrIdentityColumnMissing, identityColumn, recordType)
	}

	keys := make(map[string]struct{}, len(records)-1)
	for _, rec := range records[1:] {
		if idIdx < len(rec) && rec[idIdx] != "" {
			keys[rec[idIdx]] = struct{}{}
		}
	}
	return keys, nil
}

// FilterAgainstPrevious keeps only the rows whose identity value is absent
// from the old generation.
func (r *Rotator) FilterAgainstPrevious(recordType, identityColumn string, rows []models.Row) ([]models.Row, error) {
	prev, err := r.PreviousKeys(recordType, identityColumn)
	if err != nil {
		return nil, err
	}

	kept := []models.Row{}
	for _, row := range rows {
		key := row.Get(identityColumn)
		if key != "" {
			if _, dup := prev[key]; dup {
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept, nil
}

// StageNew writes the filtered rows into the new-generation file for a
// record type, overwriting any previous candidate.
func (r *Rotator) StageNew(recordType string, header []string, rows []models.Row) error {
	path := r.newPath(recordType)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create staged export for %s: %w", recordType, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write staged header for %s: %w", recordType, err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, h := range header {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write staged row for %s: %w", recordType, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush staged export for %s: %w", recordType, err)
	}
	return nil
}

// Rotate promotes the new generation to old for a record type. Call this
// only after the batch has been confirmed committed to the store.
func (r *Rotator) Rotate(recordType string) error {
	newPath := r.newPath(recordType)
	if _, err := os.Stat(newPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat staged export for %s: %w", recordType, err)
	}

	oldPath := r.oldPath(recordType)
	if err := os.MkdirAll(filepath.Dir(oldPath), 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	if err := os.Rename(newPath, oldPath); err != nil {
		return fmt.Errorf("failed to rotate export for %s: %w", recordType, err)
	}
	return nil
}
