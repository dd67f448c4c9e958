package grid

import (
	"maps"
	"slices"
)

// State is the engine-owned copy of every tracked state.
type State struct {
	Visibility VisibilityMap  `json:"visibility"`
	Filters    FilterState    `json:"filters"`
	Sort       SortState      `json:"sort"`
	Selection  SelectionState `json:"selection"`
	Pagination Pagination     `json:"pagination"`
	// Widths holds user-resized column widths.
	Widths map[string]int `json:"widths,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Visibility: s.Visibility.Clone(),
		Filters:    s.Filters.Clone(),
		Sort:       s.Sort,
		Selection:  s.Selection.Clone(),
		Pagination: s.Pagination,
		Widths:     maps.Clone(s.Widths),
	}
}

// Input is the read-only context Reduce needs besides the state itself.
type Input[T any] struct {
	Registry *Registry[T]
	Data     []T
	// Rows are the dataset indices passing the active filters, in display
	// order. Select-all and client-side page bounds are computed over Rows.
	Rows []int

	ServerSide    bool
	PageCount     int
	ShowSelection bool
	ViewOnly      bool
}

// pager picks server mode when the caller supplies a page count. ServerSide
// keeps server mode for an empty result reported with zero pages.
func (in Input[T]) pager() pager {
	return pager{serverSide: in.ServerSide || in.PageCount > 0, pageCount: in.PageCount, rows: len(in.Rows)}
}

// Reduce computes the state that follows s after ev. It never mutates s.
// Events naming unknown columns, out-of-range rows or disallowed actions
// return s unchanged.
func Reduce[T any](s State, ev Event, in Input[T]) State {
	if ev.selectionEvent() && (in.ViewOnly || !in.ShowSelection) {
		return s
	}

	next := s.Clone()
	pg := in.pager()
	reg := in.Registry

	switch ev.Type {
	case EventFirstPage:
		next.Pagination = pg.first(s.Pagination)
	case EventPreviousPage:
		next.Pagination = pg.previous(s.Pagination)
	case EventNextPage:
		next.Pagination = pg.next(s.Pagination)
	case EventLastPage:
		next.Pagination = pg.last(s.Pagination)
	case EventGoToPage:
		next.Pagination = pg.goTo(s.Pagination, ev.Page)
	case EventSetPageSize:
		next.Pagination = pg.withPageSize(s.Pagination, ev.PageSize)

	case EventToggleColumn:
		if !reg.Toggles(ev.ColumnID) {
			return s
		}
		next.Visibility[ev.ColumnID] = !isVisible(s.Visibility, ev.ColumnID)
	case EventSetColumnVisible:
		if !reg.Toggles(ev.ColumnID) {
			return s
		}
		next.Visibility[ev.ColumnID] = ev.Visible
	case EventSetVisibleColumns:
		for _, id := range reg.toggleable {
			next.Visibility[id] = slices.Contains(ev.ColumnIDs, id)
		}

	case EventToggleSort:
		if !reg.Sortable(ev.ColumnID) {
			return s
		}
		next.Sort = cycleSort(s.Sort, ev.ColumnID)
	case EventSetSort:
		if !reg.Sortable(ev.ColumnID) {
			return s
		}
		next.Sort = SortState{ColumnID: ev.ColumnID, Descending: ev.Descending}
	case EventClearSort:
		next.Sort = SortState{}

	case EventSetFilter:
		if !reg.Filterable(ev.ColumnID) {
			return s
		}
		next.Filters = setFilter(s.Filters, ev.ColumnID, ev.Values)
	case EventSelectAllOptions:
		i, ok := reg.index(ev.ColumnID)
		if !ok || !reg.filterable(i) {
			return s
		}
		values := make([]any, len(in.Data))
		for r, row := range in.Data {
			values[r] = reg.columns[i].value(row)
		}
		next.Filters = setFilter(s.Filters, ev.ColumnID, values)
	case EventClearFilter:
		if _, ok := s.Filters.Get(ev.ColumnID); !ok {
			return s
		}
		next.Filters = setFilter(s.Filters, ev.ColumnID, nil)
	case EventClearFilters:
		next.Filters = make(FilterState, len(s.Filters))
		for i, f := range s.Filters {
			next.Filters[i] = ColumnFilter{ColumnID: f.ColumnID}
		}

	case EventToggleRow:
		next.Selection = toggleRow(s.Selection, ev.Row, len(in.Data))
	case EventSetRowSelected:
		next.Selection = setRow(s.Selection, ev.Row, len(in.Data), ev.Selected)
	case EventSelectAll:
		next.Selection = selectOnly(s.Selection, in.Rows)
	case EventToggleAll:
		if allSelected(s.Selection, in.Rows) {
			next.Selection = deselect(s.Selection, nil)
		} else {
			next.Selection = selectOnly(s.Selection, in.Rows)
		}
	case EventDeselectAll:
		next.Selection = deselect(s.Selection, nil)

	case EventResizeColumn:
		w, ok := resizeWidth(reg, ev.ColumnID, ev.Width)
		if !ok {
			return s
		}
		if next.Widths == nil {
			next.Widths = make(map[string]int)
		}
		next.Widths[ev.ColumnID] = w

	default:
		return s
	}
	return next
}

// isVisible reads a visibility map with the visible-by-default rule.
func isVisible(vis VisibilityMap, id string) bool {
	v, ok := vis[id]
	return !ok || v
}

// cycleSort advances a column through none, ascending, descending, none.
// Sorting a different column starts it ascending.
func cycleSort(s SortState, columnID string) SortState {
	switch s.Direction(columnID) {
	case SortNone:
		return SortState{ColumnID: columnID}
	case SortAscending:
		return SortState{ColumnID: columnID, Descending: true}
	default:
		return SortState{}
	}
}

// resizeWidth clamps a requested width to the column's bounds. Fixed and
// unknown columns cannot be resized.
func resizeWidth[T any](reg *Registry[T], id string, width int) (int, bool) {
	if !reg.Has(id) || reg.Fixed(id) || id == reg.reserved.SelectionColumn {
		return 0, false
	}
	w := max(width, reg.MinWidth(id))
	if mx := reg.MaxWidth(id); mx > 0 {
		w = min(w, mx)
	}
	return w, true
}
