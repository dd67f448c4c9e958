package grid

// reconcile.go merges caller-controlled props with engine-owned state.
//
// Each tracked state follows the same rules:
//
//   - merge: internal entries win; caller entries only fill keys the
//     internal state has never seen
//   - override: when the caller's value changes by deep equality since the
//     previous cycle, its entries replace internal ones
//   - invariants: reserved columns are enforced after every merge
//
// The previous caller value is kept as a deep-copied snapshot so in-place
// mutation of a caller map cannot hide a change, and so a new reference
// holding an identical value is not treated as one.

import (
	"maps"
	"reflect"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// deepEqual compares plain state values. Nil and empty maps and slices are
// equal.
func deepEqual(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// mergeGaps returns internal plus every entry of external whose key
// internal has never seen.
func mergeGaps[K comparable, V any](internal, external map[K]V) map[K]V {
	out := maps.Clone(internal)
	if out == nil {
		out = make(map[K]V, len(external))
	}
	for k, v := range external {
		if _, seen := out[k]; !seen {
			out[k] = v
		}
	}
	return out
}

// override returns internal with every key defined by next taken from
// next. When dropped is non-nil, keys present in prev but missing from
// next are set to dropped's value.
func override[K comparable, V any](internal, prev, next map[K]V, dropped *V) map[K]V {
	out := maps.Clone(internal)
	if out == nil {
		out = make(map[K]V, len(next))
	}
	for k, v := range next {
		out[k] = v
	}
	if dropped != nil {
		for k := range prev {
			if _, ok := next[k]; !ok {
				out[k] = *dropped
			}
		}
	}
	return out
}

// snapshot is a deep copy of the caller-controlled props from one cycle.
type snapshot struct {
	columnIDs     []string
	visibility    VisibilityMap
	showSelection bool
	filters       map[string][]string
	rawFilters    FilterState
	selection     SelectionState
	sort          SortState
	pagination    *Pagination
}

func takeSnapshot[T any](p Props[T], reg *Registry[T]) snapshot {
	s := snapshot{
		columnIDs:     reg.IDs(),
		visibility:    p.Visibility.Clone(),
		showSelection: p.ShowSelection,
		filters:       filterKeys(p.Filters),
		rawFilters:    p.Filters.Clone(),
		selection:     onlySelected(p.Selection),
		sort:          p.Sort,
	}
	if p.Pagination != nil {
		pg := *p.Pagination
		s.pagination = &pg
	}
	return s
}

// onlySelected drops false entries from a caller selection.
func onlySelected(sel SelectionState) SelectionState {
	out := make(SelectionState, len(sel))
	for k, on := range sel {
		if on {
			out[k] = true
		}
	}
	return out
}

// visibilityTriggers reports which of the three visibility triggers fired.
type visibilityTriggers struct {
	columns       bool
	visibility    bool
	showSelection bool
}

func (t visibilityTriggers) any() bool {
	return t.columns || t.visibility || t.showSelection
}

func diffVisibility[T any](prev snapshot, p Props[T], reg *Registry[T]) visibilityTriggers {
	return visibilityTriggers{
		columns:       !slices.Equal(prev.columnIDs, reg.ids),
		visibility:    !deepEqual(prev.visibility, p.Visibility),
		showSelection: prev.showSelection != p.ShowSelection,
	}
}

// reconcileVisibility computes the next internal visibility map.
// Keys dropped from the caller map are left alone: the caller only
// overrides the columns it names.
func reconcileVisibility[T any](internal VisibilityMap, prev snapshot, p Props[T], reg *Registry[T], trig visibilityTriggers) VisibilityMap {
	if !trig.any() {
		return internal
	}
	vis := VisibilityMap(maps.Clone(internal))
	if trig.visibility {
		vis = override(vis, prev.visibility, p.Visibility, nil)
	}
	vis = mergeGaps(vis, p.Visibility)
	for _, id := range reg.ids {
		if _, ok := vis[id]; !ok {
			vis[id] = true
		}
	}
	return enforceVisibility(vis, reg, p.ShowSelection)
}

// enforceVisibility applies the reserved-column invariants regardless of
// which side produced vis.
func enforceVisibility[T any](vis VisibilityMap, reg *Registry[T], showSelection bool) VisibilityMap {
	out := vis.Clone()
	for _, id := range reg.reserved.AlwaysVisible {
		if reg.Has(id) {
			out[id] = true
		}
	}
	if sel := reg.reserved.SelectionColumn; sel != "" {
		out[sel] = showSelection
	}
	return out
}

// exportVisibility is the caller-facing visibility: registered columns only.
func exportVisibility[T any](vis VisibilityMap, reg *Registry[T]) VisibilityMap {
	out := make(VisibilityMap, len(reg.ids))
	for _, id := range reg.ids {
		v, ok := vis[id]
		out[id] = !ok || v
	}
	return out
}

// reconcileFilters computes the next internal filter state. A column
// dropped from the caller's filters counts as cleared.
func reconcileFilters(internal FilterState, prev snapshot, next FilterState) FilterState {
	out := internal.Clone()
	nextKeys := filterKeys(next)
	if !deepEqual(prev.filters, nextKeys) {
		for _, f := range next {
			out = setFilter(out, f.ColumnID, f.Values)
		}
		for _, f := range prev.rawFilters {
			if _, ok := next.Get(f.ColumnID); !ok {
				out = setFilter(out, f.ColumnID, nil)
			}
		}
	}
	for _, f := range next {
		if _, seen := out.Get(f.ColumnID); !seen {
			out = append(out, ColumnFilter{ColumnID: f.ColumnID, Values: dedupeValues(f.Values)})
		}
	}
	return out
}

// reconcileSelection computes the next internal selection. A row dropped
// from the caller's selection counts as deselected.
func reconcileSelection(internal SelectionState, prev snapshot, next SelectionState) SelectionState {
	nextOn := onlySelected(next)
	out := internal.Clone()
	if !deepEqual(prev.selection, nextOn) {
		deselected := false
		out = override(out, prev.selection, nextOn, &deselected)
	}
	return mergeGaps(out, nextOn)
}

// reconcileSort adopts a changed caller sort when it names a sortable
// column. Unknown columns are ignored.
func reconcileSort[T any](internal SortState, prev snapshot, next SortState, reg *Registry[T]) SortState {
	if prev.sort == next {
		return internal
	}
	if next.IsSorted() && !reg.Sortable(next.ColumnID) {
		return internal
	}
	return next
}

// reconcilePagination adopts a changed caller pagination.
func reconcilePagination(internal Pagination, prev snapshot, next *Pagination) Pagination {
	if next == nil {
		return internal
	}
	if prev.pagination != nil && *prev.pagination == *next {
		return internal
	}
	return *next
}

// rowEqual compares opaque rows. Unexported fields are read and a NaN
// cell equals itself, so re-sending the same data is not a replacement.
var rowEqual = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// datasetChanged reports whether next replaces prev. The same backing
// array is taken as unchanged; otherwise contents are compared.
func datasetChanged[T any](prev, next []T) bool {
	if len(prev) != len(next) {
		return true
	}
	if len(prev) == 0 || &prev[0] == &next[0] {
		return false
	}
	return !cmp.Equal(prev, next, rowEqual...)
}
