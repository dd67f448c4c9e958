package core

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates SQL conditions with positional ($n) arguments.
// Conditions are joined with AND.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first argument is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// AddIn appends a set-membership condition. When includeNull is set the
// column also matches NULL. Nothing is added for an empty set without
// includeNull.
func (wb *WhereBuilder) AddIn(column string, values []any, includeNull bool) {
	var arms []string

	if len(values) > 0 {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = fmt.Sprintf("$%d", wb.argIndex)
			wb.args = append(wb.args, v)
			wb.argIndex++
		}
		arms = append(arms, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	if includeNull {
		arms = append(arms, column+" IS NULL")
	}

	switch len(arms) {
	case 0:
		return
	case 1:
		wb.conditions = append(wb.conditions, arms[0])
	default:
		wb.conditions = append(wb.conditions, "("+strings.Join(arms, " OR ")+")")
	}
}

// Build returns the WHERE clause (with a leading space) and its arguments.
// Both are empty when no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the placeholder number for the next argument, for
// queries that append LIMIT/OFFSET after the WHERE clause.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes each column name in the slice.
func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}

// toDBColumnName converts a display column name to a database column name.
// "Transaction ID" -> "transaction_id"
// "account_name" -> "account_name" (no change if already snake_case)
func toDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// resolveDBColumn returns the database column name for a given field name.
// It checks the FieldSpecs for a DBColumn mapping, falling back to snake_case conversion.
func resolveDBColumn(col string, specs []FieldSpec) string {
	for _, spec := range specs {
		if strings.EqualFold(spec.Name, col) && spec.DBColumn != "" {
			return spec.DBColumn
		}
	}
	return toDBColumnName(col)
}

// resolveDBColumns returns database column names for multiple field names.
func resolveDBColumns(cols []string, specs []FieldSpec) []string {
	result := make([]string, len(cols))
	for i, col := range cols {
		result[i] = resolveDBColumn(col, specs)
	}
	return result
}
