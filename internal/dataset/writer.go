package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
)

// Marshal renders the table as CSV bytes. Output is a pure function of the
// table contents, so writing the same table twice produces identical bytes.
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("dataset: writing header: %w", err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("dataset: writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("dataset: flushing: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile persists the table as a CSV file.
func (t *Table) WriteFile(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: write %q: %w", path, err)
	}
	return nil
}
