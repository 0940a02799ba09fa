// Package dataset holds the flat table model the cleaning pipeline works on:
// an ordered header row plus rows of raw string cells, exactly as they appear
// in a delimited file.
package dataset

import "strings"

// Table is an in-memory delimited table. Rows hold raw cell values; typing is
// the cleaner's job, not the table's.
type Table struct {
	Headers []string
	Rows    [][]string
}

// HeaderIndex maps a normalized header name to its column position.
type HeaderIndex map[string]int

// Index builds a HeaderIndex for the table. Build it once per table and reuse
// it for every row.
func (t *Table) Index() HeaderIndex {
	idx := make(HeaderIndex, len(t.Headers))
	for i, h := range t.Headers {
		idx[NormalizeHeader(h)] = i
	}
	return idx
}

// Cell returns the raw value of the named column in row, or "" when the
// column is absent or the row is short.
func (idx HeaderIndex) Cell(row []string, name string) string {
	pos, ok := idx[NormalizeHeader(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// Has reports whether the named column exists in the header.
func (idx HeaderIndex) Has(name string) bool {
	_, ok := idx[NormalizeHeader(name)]
	return ok
}

// NormalizeHeader folds a header name for lookup: trimmed, lower-cased, with
// interior whitespace, underscores and hyphens collapsed away.
func NormalizeHeader(h string) string {
	h = CleanCell(h)
	h = strings.ToLower(h)
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		switch r {
		case ' ', '\t', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanCell strips spreadsheet export artifacts from a raw cell: surrounding
// whitespace, a UTF-8 BOM, and the Excel formula wrapper `="value"`.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
