// Package lookup provides the state reference table the cleaner joins
// against. The table can come from a CSV file or fall back to the built-in
// US set.
package lookup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
)

// State is one lookup row. Lat/Lon are optional and zero when the source
// table does not carry coordinates.
type State struct {
	Name string
	Code string
	Lat  float64
	Lon  float64
}

// Table maps a normalized state name to its lookup row. The join is exact:
// a misspelled state name misses.
type Table struct {
	byName map[string]State
}

// Key normalizes a state name for matching: trimmed and case-folded.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Match returns the lookup row for a state name. ok is false when the name
// is empty or not in the table.
func (t *Table) Match(name string) (State, bool) {
	k := Key(name)
	if k == "" {
		return State{}, false
	}
	s, ok := t.byName[k]
	return s, ok
}

// Len returns the number of states in the table.
func (t *Table) Len() int { return len(t.byName) }

// Load reads a lookup table from a CSV file with State and Code columns
// (Lat/Lon optional, any column order).
func Load(path string) (*Table, error) {
	tbl, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	return FromDataset(tbl)
}

// FromDataset builds a lookup table from an already-parsed dataset table.
func FromDataset(tbl *dataset.Table) (*Table, error) {
	idx := tbl.Index()
	if !idx.Has("State") || !idx.Has("Code") {
		return nil, fmt.Errorf("lookup: table must have State and Code columns, got %v", tbl.Headers)
	}

	out := &Table{byName: make(map[string]State, len(tbl.Rows))}
	for _, row := range tbl.Rows {
		name := dataset.CleanCell(idx.Cell(row, "State"))
		code := dataset.CleanCell(idx.Cell(row, "Code"))
		if name == "" || code == "" {
			continue
		}
		s := State{Name: name, Code: strings.ToUpper(code)}
		s.Lat = parseCoord(idx.Cell(row, "Lat"))
		s.Lon = parseCoord(idx.Cell(row, "Lon"))
		out.byName[Key(name)] = s
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("lookup: table has no usable rows")
	}
	return out, nil
}

func parseCoord(s string) float64 {
	s = dataset.CleanCell(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// BuiltinUS returns the built-in lookup covering the 50 US states plus the
// District of Columbia.
func BuiltinUS() *Table {
	t := &Table{byName: make(map[string]State, len(usStates))}
	for name, code := range usStates {
		t.byName[Key(name)] = State{Name: name, Code: code}
	}
	return t
}

var usStates = map[string]string{
	"Alabama":              "AL",
	"Alaska":               "AK",
	"Arizona":              "AZ",
	"Arkansas":             "AR",
	"California":           "CA",
	"Colorado":             "CO",
	"Connecticut":          "CT",
	"Delaware":             "DE",
	"District of Columbia": "DC",
	"Florida":              "FL",
	"Georgia":              "GA",
	"Hawaii":               "HI",
	"Idaho":                "ID",
	"Illinois":             "IL",
	"Indiana":              "IN",
	"Iowa":                 "IA",
	"Kansas":               "KS",
	"Kentucky":             "KY",
	"Louisiana":            "LA",
	"Maine":                "ME",
	"Maryland":             "MD",
	"Massachusetts":        "MA",
	"Michigan":             "MI",
	"Minnesota":            "MN",
	"Mississippi":          "MS",
	"Missouri":             "MO",
	"Montana":              "MT",
	"Nebraska":             "NE",
	"Nevada":               "NV",
	"New Hampshire":        "NH",
	"New Jersey":           "NJ",
	"New Mexico":           "NM",
	"New York":             "NY",
	"North Carolina":       "NC",
	"North Dakota":         "ND",
	"Ohio":                 "OH",
	"Oklahoma":             "OK",
	"Oregon":               "OR",
	"Pennsylvania":         "PA",
	"Rhode Island":         "RI",
	"South Carolina":       "SC",
	"South Dakota":         "SD",
	"Tennessee":            "TN",
	"Texas":                "TX",
	"Utah":                 "UT",
	"Vermont":              "VT",
	"Virginia":             "VA",
	"Washington":           "WA",
	"West Virginia":        "WV",
	"Wisconsin":            "WI",
	"Wyoming":              "WY",
}
