package core

// streaming.go prepares seed CSV files for parsing.
//
// Exports from spreadsheet tools often start with a byte order mark and may
// contain stray bytes from legacy encodings. Both are handled while
// streaming, so arbitrarily large files never need to be held in memory.

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r so that a leading byte order mark is skipped and
// invalid UTF-8 is replaced with U+FFFD. A UTF-16 byte order mark switches
// decoding to UTF-16.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// NewCSVReader returns a lenient CSV reader over sanitized text.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(NewTextReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}
