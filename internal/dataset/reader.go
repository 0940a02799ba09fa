package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Read parses delimited data into a Table. The first record is the header.
// Ragged rows are tolerated: short rows are padded with empty cells so every
// row is at least header-width.
func Read(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset: empty input, no header row")
		}
		return nil, fmt.Errorf("dataset: reading header: %w", err)
	}
	for i, h := range headers {
		headers[i] = CleanCell(h)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading row: %w", err)
		}
		if len(rec) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// ReadFile loads a delimited file into a Table.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	return Read(data)
}
