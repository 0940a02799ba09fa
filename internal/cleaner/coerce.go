package cleaner

import (
	"strconv"
	"strings"
	"time"

	"github.com/itsvishal1012/US-BASED-E-COMMERCE-COMPANY/internal/dataset"
)

// Date layouts the cleaner accepts, tried in order. Four-digit-year forms
// first so "01/02/2023" never half-matches a two-digit layout. Go maps
// two-digit years 69-99 to 19xx and 00-68 to 20xx, which is the pivot this
// dataset needs.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"January 2, 2006",
	"01/02/06",
	"1/2/06",
}

// ParseDate parses a raw date cell. ok is false for empty cells and for
// values no layout accepts, including impossible dates like 2023-02-30.
func ParseDate(s string) (time.Time, bool) {
	s = dataset.CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a raw numeric cell, accepting accounting notation:
// currency symbols, thousands separators, and parentheses for negatives.
// ok is false for empty cells and values that are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = dataset.CleanCell(s)
	if s == "" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// FormatNumber renders a number in minimal decimal form: no exponent, no
// trailing zeros, integers without a decimal point.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatDate renders a date for the output file.
func FormatDate(t time.Time) string {
	return t.Format(OutputDateLayout)
}
