package core

import (
	"strings"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// rowKeySep joins composite row key values. It cannot appear in cleaned cells.
const rowKeySep = "\x1f"

// GridColumns builds the engine column set for a table, in field order.
func GridColumns(def TableDefinition) []grid.Column[TableRow] {
	cols := make([]grid.Column[TableRow], len(def.FieldSpecs))
	for i, spec := range def.FieldSpecs {
		name := spec.Name
		align := spec.Align
		if align == "" {
			align = spec.Type.Align()
		}
		cols[i] = grid.Column[TableRow]{
			ID:       name,
			Header:   headerText(spec),
			Accessor: func(row TableRow) any { return row[name] },

			DisableSort:   spec.DisableSort,
			DisableFilter: spec.DisableFilter,
			Meta: grid.ColumnMeta{
				MinWidth:   spec.MinWidth,
				MaxWidth:   spec.MaxWidth,
				FixedWidth: spec.FixedWidth,
				Align:      align,
			},
		}
	}
	return cols
}

// headerText returns the display header, derived from the field name
// when none is declared.
func headerText(spec FieldSpec) string {
	if spec.Header != "" {
		return spec.Header
	}
	words := strings.FieldsFunc(spec.Name, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RowKeyFunc returns the identity function for a table's rows, or nil
// when the table declares no row key.
func RowKeyFunc(def TableDefinition) func(TableRow) string {
	if len(def.RowKey) == 0 {
		return nil
	}
	keys := def.RowKey
	return func(row TableRow) string {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = grid.FilterKey(row[k])
		}
		return strings.Join(parts, rowKeySep)
	}
}
