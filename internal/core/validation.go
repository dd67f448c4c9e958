package core

// validation.go checks seed CSV data against a table's field specs.
//
// Validation happens at two levels:
//  1. Header validation: Ensures required columns are present
//  2. Row parsing: Converts each cell with CellFromText and records the
//     cells that could not be converted
//
// An invalid cell does not reject its row; the cell becomes null and the
// problem is reported so it can be logged.

import (
	"fmt"
	"strings"
)

// ValidationError represents a single problem with a seed cell.
type ValidationError struct {
	Line    int    // 1-based line in the source file (0 if unknown)
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Message)
	return b.String()
}

// RowParser converts CSV records into TableRows for one table.
type RowParser struct {
	specs     []FieldSpec
	headerIdx HeaderIndex
}

// NewRowParser creates a parser for the given field specs and header index.
func NewRowParser(specs []FieldSpec, headerIdx HeaderIndex) *RowParser {
	return &RowParser{
		specs:     specs,
		headerIdx: headerIdx,
	}
}

// ParseRow converts one record. Every field appears in the result; missing
// and invalid cells are nil.
func (p *RowParser) ParseRow(record []string) (TableRow, []ValidationError) {
	row := make(TableRow, len(p.specs))
	var errs []ValidationError

	for _, spec := range p.specs {
		row[spec.Name] = nil

		pos, ok := p.headerIdx[strings.ToLower(spec.Name)]
		if !ok || pos >= len(record) {
			continue
		}

		v, err := CellFromText(record[pos], spec)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   spec.Name,
				Value:   record[pos],
				Message: fmt.Sprintf("invalid %s: %v", fieldTypeName(spec.Type), err),
			})
			continue
		}
		row[spec.Name] = v
	}

	return row, errs
}

// ValidateHeaders validates that all required columns exist in the CSV headers.
// Returns a mapping from column name to index, or an error listing missing columns.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if spec.Required {
			key := strings.ToLower(spec.Name)
			if _, ok := idx[key]; !ok {
				missing = append(missing, spec.Name)
			}
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	default:
		return "value"
	}
}
