package grid

import (
	"slices"
	"strconv"
)

// Selection is positional: keys are dataset row indices. The internal map
// also records explicit deselection as false so that a caller-supplied
// selection cannot silently re-fill a row the user unchecked.

// rowKey is the selection key for a dataset index.
func rowKey(i int) string {
	return strconv.Itoa(i)
}

// selectedIndices returns the selected indices below n in ascending order.
// Stale indices at or beyond n are dropped.
func selectedIndices(sel SelectionState, n int) []int {
	out := make([]int, 0, len(sel))
	for k, on := range sel {
		if !on {
			continue
		}
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			continue
		}
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// exportSelection is the caller-facing form: true entries below n only.
func exportSelection(sel SelectionState, n int) SelectionState {
	out := make(SelectionState)
	for _, i := range selectedIndices(sel, n) {
		out[rowKey(i)] = true
	}
	return out
}

// toggleRow flips the selection of dataset index i.
func toggleRow(sel SelectionState, i, n int) SelectionState {
	if i < 0 || i >= n {
		return sel
	}
	out := sel.Clone()
	k := rowKey(i)
	out[k] = !out[k]
	return out
}

// setRow selects or deselects dataset index i.
func setRow(sel SelectionState, i, n int, on bool) SelectionState {
	if i < 0 || i >= n {
		return sel
	}
	out := sel.Clone()
	out[rowKey(i)] = on
	return out
}

// selectOnly makes exactly the given indices selected. Every other
// previously known key is recorded as deselected.
func selectOnly(sel SelectionState, indices []int) SelectionState {
	out := make(SelectionState, len(sel)+len(indices))
	for k := range sel {
		out[k] = false
	}
	for _, i := range indices {
		out[rowKey(i)] = true
	}
	return out
}

// deselect marks every known key as deselected.
func deselect(sel SelectionState, extra SelectionState) SelectionState {
	out := make(SelectionState, len(sel)+len(extra))
	for k := range sel {
		out[k] = false
	}
	for k := range extra {
		out[k] = false
	}
	return out
}

// remapSelection carries selection across a dataset replacement using a
// stable row key. Rows that no longer exist are dropped.
func remapSelection[T any](sel SelectionState, prev, next []T, key func(T) string) SelectionState {
	chosen := make(map[string]struct{})
	for _, i := range selectedIndices(sel, len(prev)) {
		chosen[key(prev[i])] = struct{}{}
	}
	out := deselect(sel, nil)
	for i, row := range next {
		if _, ok := chosen[key(row)]; ok {
			out[rowKey(i)] = true
		}
	}
	return out
}

// allSelected reports whether every index in rows is selected. An empty
// set is never "all selected".
func allSelected(sel SelectionState, rows []int) bool {
	if len(rows) == 0 {
		return false
	}
	for _, i := range rows {
		if !sel[rowKey(i)] {
			return false
		}
	}
	return true
}

// someSelected reports whether at least one index in rows is selected.
func someSelected(sel SelectionState, rows []int) bool {
	for _, i := range rows {
		if sel[rowKey(i)] {
			return true
		}
	}
	return false
}
