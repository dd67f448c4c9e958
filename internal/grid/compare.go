package grid

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// sortForm is the comparable string form of a non-null value:
// trimmed and case-folded. Casers carry state, so each caller owns one.
func sortForm(fold cases.Caser, v any) string {
	return fold.String(strings.TrimSpace(stringForm(v)))
}

// Compare is a total order over heterogeneous cell values. It returns
// -1, 0 or 1.
//
// Nulls sort after every non-null value. Arrays compare by their first
// element's string form, objects by canonical JSON, and every other value
// as a trimmed, case-insensitive string.
func Compare(a, b any) int {
	an, bn := IsNull(a), IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	fold := cases.Fold()
	return strings.Compare(sortForm(fold, a), sortForm(fold, b))
}

// sortIndices stably orders row indices by the values returned by key.
// The input slice is sorted in place. Ties keep their incoming order, so
// clearing a sort restores dataset order.
func sortIndices(indices []int, key func(int) any, descending bool) {
	// Precompute sort forms once per row rather than per comparison.
	type keyed struct {
		idx  int
		null bool
		form string
	}
	fold := cases.Fold()
	ks := make([]keyed, len(indices))
	for i, idx := range indices {
		v := key(idx)
		if IsNull(v) {
			ks[i] = keyed{idx: idx, null: true}
			continue
		}
		ks[i] = keyed{idx: idx, form: sortForm(fold, v)}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.null && b.null:
			return 0
		case a.null:
			return 1
		case b.null:
			return -1
		}
		c := strings.Compare(a.form, b.form)
		if descending {
			return -c
		}
		return c
	})

	for i, k := range ks {
		indices[i] = k.idx
	}
}
