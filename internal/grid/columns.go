package grid

import (
	"fmt"
	"slices"
	"strings"
)

// Reserved names column ids with fixed behavior. Passing these as
// configuration keeps magic strings out of the engine.
type Reserved struct {
	// AlwaysVisible columns can never be hidden by the caller or the user.
	AlwaysVisible []string
	// NeverToggleable columns are excluded from the visibility toggle list.
	// Their visibility comes from the caller only.
	NeverToggleable []string
	// NonSortable columns never offer a sort control.
	NonSortable []string
	// NonSortableSuffixes exempts every id ending in one of these suffixes.
	NonSortableSuffixes []string
	// SelectionColumn is the id of the synthetic checkbox column. Its
	// visibility follows Props.ShowSelection. Empty disables it.
	SelectionColumn string
}

// DefaultReserved returns the reserved ids used by the stock grid.
func DefaultReserved() Reserved {
	return Reserved{
		AlwaysVisible:       []string{"_id", "name"},
		NeverToggleable:     []string{"select", "view"},
		NonSortable:         []string{"select", "type", "view", "_id", "id"},
		NonSortableSuffixes: []string{"_id"},
		SelectionColumn:     "select",
	}
}

func (r Reserved) alwaysVisible(id string) bool {
	return slices.Contains(r.AlwaysVisible, id)
}

func (r Reserved) neverToggleable(id string) bool {
	return id == r.SelectionColumn || slices.Contains(r.NeverToggleable, id)
}

func (r Reserved) nonSortable(id string) bool {
	if id == r.SelectionColumn || slices.Contains(r.NonSortable, id) {
		return true
	}
	for _, suffix := range r.NonSortableSuffixes {
		if suffix != "" && strings.HasSuffix(id, suffix) {
			return true
		}
	}
	return false
}

// Widths holds the width defaults in pixels.
type Widths struct {
	// Default is the initial width of a column with no declared width.
	Default int
	// Min is the minimum width of a column with no declared minimum.
	Min int
	// Selection is the fixed width of the selection column.
	Selection int
}

// DefaultWidths returns the stock width defaults.
func DefaultWidths() Widths {
	return Widths{Default: 150, Min: 100, Selection: 40}
}

// Registry derives ids, toggle eligibility, widths and alignment from a
// column configuration list.
type Registry[T any] struct {
	columns    []Column[T]
	ids        []string
	byID       map[string]int
	toggleable []string
	reserved   Reserved
	widths     Widths
}

// NewRegistry builds a registry from cols.
//
// Columns with an empty id get a placeholder id and lose their accessor.
// Later duplicates of an id are dropped. When reserved.SelectionColumn is
// set and not configured by the caller, a synthetic selection column is
// prepended.
func NewRegistry[T any](cols []Column[T], reserved Reserved, widths Widths) *Registry[T] {
	r := &Registry[T]{
		byID:     make(map[string]int, len(cols)+1),
		reserved: reserved,
		widths:   widths,
	}

	if sel := reserved.SelectionColumn; sel != "" && !slices.ContainsFunc(cols, func(c Column[T]) bool { return c.ID == sel }) {
		r.add(Column[T]{
			ID:   sel,
			Meta: ColumnMeta{FixedWidth: widths.Selection, Align: AlignCenter},
		})
	}

	for i, col := range cols {
		if col.ID == "" {
			col.ID = fmt.Sprintf("_column_%d", i)
			col.Accessor = nil
		}
		if _, dup := r.byID[col.ID]; dup {
			continue
		}
		r.add(col)
	}

	for _, id := range r.ids {
		if !reserved.alwaysVisible(id) && !reserved.neverToggleable(id) {
			r.toggleable = append(r.toggleable, id)
		}
	}
	return r
}

func (r *Registry[T]) add(col Column[T]) {
	r.byID[col.ID] = len(r.columns)
	r.columns = append(r.columns, col)
	r.ids = append(r.ids, col.ID)
}

// IDs returns every column id in display order.
func (r *Registry[T]) IDs() []string {
	return slices.Clone(r.ids)
}

// Toggleable returns the ids offered in the visibility toggle list.
func (r *Registry[T]) Toggleable() []string {
	return slices.Clone(r.toggleable)
}

// Column returns the column definition for id.
func (r *Registry[T]) Column(id string) (Column[T], bool) {
	i, ok := r.byID[id]
	if !ok {
		return Column[T]{}, false
	}
	return r.columns[i], true
}

// Has reports whether id is a registered column.
func (r *Registry[T]) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry[T]) index(id string) (int, bool) {
	i, ok := r.byID[id]
	return i, ok
}

// Sortable reports whether the column offers a sort control.
func (r *Registry[T]) Sortable(id string) bool {
	i, ok := r.byID[id]
	return ok && r.sortable(i)
}

// Filterable reports whether the column offers a filter control.
func (r *Registry[T]) Filterable(id string) bool {
	i, ok := r.byID[id]
	return ok && r.filterable(i)
}

func (r *Registry[T]) sortable(i int) bool {
	c := r.columns[i]
	return c.functional() && !c.DisableSort && !r.reserved.nonSortable(c.ID)
}

func (r *Registry[T]) filterable(i int) bool {
	c := r.columns[i]
	return c.functional() && !c.DisableFilter && c.ID != r.reserved.SelectionColumn
}

// Toggles reports whether the user may change the column's visibility.
func (r *Registry[T]) Toggles(id string) bool {
	return slices.Contains(r.toggleable, id)
}

// InitialWidth is the starting width: fixed width if declared, else the
// declared minimum, else the default.
func (r *Registry[T]) InitialWidth(id string) int {
	i, ok := r.byID[id]
	if !ok {
		return r.widths.Default
	}
	m := r.columns[i].Meta
	switch {
	case m.FixedWidth > 0:
		return m.FixedWidth
	case m.MinWidth > 0:
		return m.MinWidth
	default:
		return r.widths.Default
	}
}

// MinWidth is the narrowest the column may be rendered.
func (r *Registry[T]) MinWidth(id string) int {
	i, ok := r.byID[id]
	if !ok {
		return r.widths.Min
	}
	m := r.columns[i].Meta
	switch {
	case m.FixedWidth > 0:
		return m.FixedWidth
	case m.MinWidth > 0:
		return m.MinWidth
	default:
		return r.widths.Min
	}
}

// MaxWidth is the widest the column may be resized to. Zero means no limit.
func (r *Registry[T]) MaxWidth(id string) int {
	if i, ok := r.byID[id]; ok {
		if fw := r.columns[i].Meta.FixedWidth; fw > 0 {
			return fw
		}
		return r.columns[i].Meta.MaxWidth
	}
	return 0
}

// Fixed reports whether the column has a fixed width.
func (r *Registry[T]) Fixed(id string) bool {
	i, ok := r.byID[id]
	return ok && r.columns[i].Meta.FixedWidth > 0
}

// Align returns the column alignment, left by default.
func (r *Registry[T]) Align(id string) Align {
	if i, ok := r.byID[id]; ok && r.columns[i].Meta.Align != "" {
		return r.columns[i].Meta.Align
	}
	return AlignLeft
}

// update swaps in cols. Ids and toggle eligibility are rebuilt only when
// the id list changes; otherwise only the definitions are refreshed. It
// reports whether the id list changed.
func (r *Registry[T]) update(cols []Column[T]) bool {
	next := NewRegistry(cols, r.reserved, r.widths)
	if slices.Equal(r.ids, next.ids) {
		r.columns = next.columns
		return false
	}
	*r = *next
	return true
}
