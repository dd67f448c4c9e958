package grid

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Passes reports whether a cell value is accepted by a column filter's
// selected values.
//
// An empty selection means "no filter active" and accepts every value, so
// a filter with zero selections behaves exactly like no filter at all.
// Equality is by [FilterKey].
func Passes(rowValue any, selected []any) bool {
	if len(selected) == 0 {
		return true
	}
	key := FilterKey(rowValue)
	for _, v := range selected {
		if FilterKey(v) == key {
			return true
		}
	}
	return false
}

// keySet builds the set of filter keys for a selection.
func keySet(values []any) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[FilterKey(v)] = struct{}{}
	}
	return set
}

// dedupeValues drops values that share a filter key, keeping first
// occurrences in order.
func dedupeValues(values []any) []any {
	seen := make(map[string]struct{}, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		k := FilterKey(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// FilterOption is one entry of a column's filter option list.
type FilterOption struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    any    `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// DistinctValues enumerates the filter options for a list of cell values.
//
// Options are deduplicated with the same key the predicate uses, so two
// options are never shown for values the predicate treats as equal. Order
// is first appearance, with the empty option last. A non-empty query keeps
// only options whose label contains it, case-insensitively. selected marks
// the options currently chosen.
func DistinctValues(values []any, selected []any, query string) []FilterOption {
	chosen := keySet(selected)

	var (
		options []FilterOption
		index   = make(map[string]int)
		empty   *FilterOption
	)
	for _, v := range values {
		k := FilterKey(v)
		if k == emptyFilterKey {
			if empty == nil {
				empty = &FilterOption{Key: k, Label: DisplayValue(nil)}
			}
			empty.Count++
			continue
		}
		if i, ok := index[k]; ok {
			options[i].Count++
			continue
		}
		index[k] = len(options)
		options = append(options, FilterOption{Key: k, Label: DisplayValue(v), Value: v, Count: 1})
	}
	if empty != nil {
		options = append(options, *empty)
	}

	query = strings.TrimSpace(query)
	if query != "" {
		fold := cases.Fold()
		q := fold.String(query)
		options = slices.DeleteFunc(options, func(o FilterOption) bool {
			return !strings.Contains(fold.String(o.Label), q)
		})
	}

	for i := range options {
		_, options[i].Selected = chosen[options[i].Key]
	}
	return options
}

// setFilter returns fs with columnID's selection replaced by values.
// The entry is kept even when values is empty: an empty entry records
// that the column was explicitly cleared.
func setFilter(fs FilterState, columnID string, values []any) FilterState {
	values = dedupeValues(values)
	out := fs.Clone()
	for i := range out {
		if out[i].ColumnID == columnID {
			out[i].Values = values
			return out
		}
	}
	return append(out, ColumnFilter{ColumnID: columnID, Values: values})
}

// Active returns the filters with at least one selected value. Empty
// entries are auto-removed.
func (fs FilterState) Active() FilterState {
	out := make(FilterState, 0, len(fs))
	for _, f := range fs {
		if len(f.Values) > 0 {
			out = append(out, ColumnFilter{ColumnID: f.ColumnID, Values: slices.Clone(f.Values)})
		}
	}
	return out
}

// filterKeys is the comparable form of a filter state: column id to sorted
// key list, active entries only.
func filterKeys(fs FilterState) map[string][]string {
	out := make(map[string][]string)
	for _, f := range fs {
		if len(f.Values) == 0 {
			continue
		}
		keys := make([]string, 0, len(f.Values))
		for k := range keySet(f.Values) {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out[f.ColumnID] = keys
	}
	return out
}

// rowFilter is a compiled filter for one column.
type rowFilter struct {
	column int
	keys   map[string]struct{}
}

// compileFilters resolves active filters against the registry. Filters
// on unknown or unfilterable columns are ignored.
func compileFilters[T any](fs FilterState, reg *Registry[T]) []rowFilter {
	var out []rowFilter
	for _, f := range fs {
		if len(f.Values) == 0 {
			continue
		}
		idx, ok := reg.index(f.ColumnID)
		if !ok || !reg.filterable(idx) {
			continue
		}
		out = append(out, rowFilter{column: idx, keys: keySet(f.Values)})
	}
	return out
}

// filterRows returns the indices of rows passing every compiled filter.
func filterRows[T any](data []T, reg *Registry[T], filters []rowFilter) []int {
	out := make([]int, 0, len(data))
rows:
	for i, row := range data {
		for _, f := range filters {
			if _, ok := f.keys[FilterKey(reg.columns[f.column].value(row))]; !ok {
				continue rows
			}
		}
		out = append(out, i)
	}
	return out
}
