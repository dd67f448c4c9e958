package grid

import (
	"fmt"
	"maps"
	"slices"
)

// Align is the horizontal alignment of a column's cells.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ColumnMeta holds optional display metadata for a column.
// Zero values mean "not declared".
type ColumnMeta struct {
	MinWidth   int
	MaxWidth   int
	FixedWidth int
	Align      Align
}

// Column describes one column of the grid.
//
// Two columns with the same ID are the same column across renders.
// A column with an empty ID or a nil Accessor is kept for layout but is
// neither sortable nor filterable.
type Column[T any] struct {
	ID       string
	Header   string
	Accessor func(row T) any

	// DisableSort and DisableFilter opt a column out of sorting and
	// filtering. Columns are sortable and filterable by default unless a
	// reserved id says otherwise.
	DisableSort   bool
	DisableFilter bool

	Meta ColumnMeta
}

// functional reports whether the column can produce values.
func (c Column[T]) functional() bool {
	return c.ID != "" && c.Accessor != nil
}

// value extracts the cell value for row. Non-functional columns yield nil.
func (c Column[T]) value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "none"
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", sd)
	}
}

// MarshalText encodes the direction as "none", "asc" or "desc".
func (sd SortDirection) MarshalText() ([]byte, error) {
	return []byte(sd.String()), nil
}

// UnmarshalText decodes a direction produced by MarshalText.
func (sd *SortDirection) UnmarshalText(b []byte) error {
	*sd = ParseSortDirection(string(b))
	return nil
}

// ParseSortDirection converts "asc"/"desc" to a SortDirection.
// Anything else is SortNone.
func ParseSortDirection(s string) SortDirection {
	switch s {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	default:
		return SortNone
	}
}

// SortState is the single active sort. An empty ColumnID means unsorted.
type SortState struct {
	ColumnID   string `json:"columnId,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.ColumnID != ""
}

// Direction returns the direction of the sort for the given column.
func (s SortState) Direction(columnID string) SortDirection {
	if !s.IsSorted() || s.ColumnID != columnID {
		return SortNone
	}
	if s.Descending {
		return SortDescending
	}
	return SortAscending
}

// Pagination is the page window over the (filtered, sorted) rows.
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// VisibilityMap maps column id to visibility. Absent columns are visible
// unless reserved ids say otherwise.
type VisibilityMap map[string]bool

// Clone returns a copy of m.
func (m VisibilityMap) Clone() VisibilityMap {
	if m == nil {
		return VisibilityMap{}
	}
	return maps.Clone(m)
}

// ColumnFilter is the set of selected values for one column.
// Values is treated as a set under the normalized filter key.
type ColumnFilter struct {
	ColumnID string `json:"columnId"`
	Values   []any  `json:"values"`
}

// FilterState is the ordered list of active column filters. A column
// without an entry is unfiltered.
type FilterState []ColumnFilter

// Clone returns a deep copy of fs.
func (fs FilterState) Clone() FilterState {
	out := make(FilterState, len(fs))
	for i, f := range fs {
		out[i] = ColumnFilter{ColumnID: f.ColumnID, Values: slices.Clone(f.Values)}
	}
	return out
}

// Get returns the filter for columnID.
func (fs FilterState) Get(columnID string) (ColumnFilter, bool) {
	for _, f := range fs {
		if f.ColumnID == columnID {
			return f, true
		}
	}
	return ColumnFilter{}, false
}

// SelectionState maps a row index, as a decimal string, to true.
// Absence means unselected.
type SelectionState map[string]bool

// Clone returns a copy of s.
func (s SelectionState) Clone() SelectionState {
	if s == nil {
		return SelectionState{}
	}
	return maps.Clone(s)
}
