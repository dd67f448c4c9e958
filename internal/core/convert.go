package core

// convert.go turns raw CSV text and driver values into grid cell values.
//
// Cells handed to the grid engine are plain Go values:
//   - text and enum columns: string
//   - numeric columns: float64
//   - date columns: "YYYY-MM-DD" string, so the string comparator orders them
//   - bool columns: bool
//   - missing or unparseable values: nil
//
// The parsers handle the messy reality of exported CSV data:
//   - Multiple date formats (US, EU, ISO, etc.)
//   - Currency symbols and thousand separators in numbers
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// ParseDate parses a date in any supported layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseNumeric parses a number, accepting currency symbols, thousands
// separators and accounting negatives "(123.45)".
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return 0, false
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return 0, false
	}
	return numericFloat(n)
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

func numericFloat(n pgtype.Numeric) (float64, bool) {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// CellFromText converts a raw CSV cell to a grid cell value.
// Empty cells are nil. An unparseable cell is nil with an error.
func CellFromText(raw string, spec FieldSpec) (any, error) {
	s := CleanCell(raw)
	if s != "" && spec.Normalizer != nil {
		s = spec.Normalizer(s)
	}
	if s == "" {
		return nil, nil
	}

	switch spec.Type {
	case FieldNumeric:
		if f, ok := ParseNumeric(s); ok {
			return f, nil
		}
		return nil, fmt.Errorf("invalid number format")
	case FieldDate:
		if t, ok := ParseDate(s); ok {
			return t.Format(time.DateOnly), nil
		}
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
	case FieldBool:
		if b, ok := ParseBool(s); ok {
			return b, nil
		}
		return nil, fmt.Errorf("must be yes/no, true/false, or 1/0")
	case FieldEnum:
		for _, ev := range spec.EnumValues {
			if strings.EqualFold(ev, s) {
				return ev, nil
			}
		}
		if len(spec.EnumValues) > 0 {
			return nil, fmt.Errorf("value must be one of: %s", strings.Join(spec.EnumValues, ", "))
		}
	}
	return s, nil
}

// CellFromDB converts a value returned by pgx Rows.Values to a grid cell
// value.
func CellFromDB(v any, spec FieldSpec) any {
	switch x := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		if f, ok := numericFloat(x); ok {
			return f
		}
		return nil
	case time.Time:
		if spec.Type == FieldDate {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(x).String()
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case string:
		if spec.Normalizer != nil && x != "" {
			return spec.Normalizer(x)
		}
		return x
	default:
		return v
	}
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
// - Removes "netsuite:" prefix
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "netsuite:")

	return s
}
