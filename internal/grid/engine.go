package grid

import (
	"log/slog"
	"slices"
)

// Props is everything the caller supplies on one render.
//
// Visibility, Filters, Selection, Sort and Pagination are optional
// controlled values. A zero value leaves the state to the engine.
type Props[T any] struct {
	Columns []Column[T]
	Data    []T

	Visibility VisibilityMap
	Filters    FilterState
	Selection  SelectionState
	Sort       SortState
	Pagination *Pagination

	// A positive PageCount switches pagination to server mode: it is
	// authoritative and Data already is the requested page. ServerSide
	// forces server mode when the page count is zero.
	ServerSide bool
	PageCount  int
	// ManualSorting and ManualFiltering skip the engine's own sort and
	// filter passes for data that arrives pre-processed.
	ManualSorting   bool
	ManualFiltering bool

	ShowSelection bool
	ViewOnly      bool
	Actions       []Action[T]

	// RowKey, when set, re-maps selection by key across dataset
	// replacement. Without it selection is cleared whenever Data changes.
	RowKey func(row T) string

	Callbacks Callbacks[T]
}

// Callbacks are invoked at most once per logical state change.
type Callbacks[T any] struct {
	OnVisibilityChange func(VisibilityMap)
	OnFiltersChange    func(FilterState)
	OnSelectionChange  func(sel SelectionState, rows []T)
	// OnSortChange receives SortNone and the previously sorted column when
	// the sort is cleared.
	OnSortChange       func(columnID string, dir SortDirection)
	OnPaginationChange func(pageIndex, pageSize int)
	OnCellEdit         func(row int, columnID string, value any)
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	reserved Reserved
	widths   Widths
	pageSize int
	sizes    []int
	logger   *slog.Logger
	format   func(any) string
}

// WithReserved replaces the reserved column ids.
func WithReserved(r Reserved) Option {
	return func(o *options) { o.reserved = r }
}

// WithWidths replaces the width defaults.
func WithWidths(w Widths) Option {
	return func(o *options) { o.widths = w }
}

// WithPageSize sets the initial page size for uncontrolled pagination.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithPageSizes replaces the page sizes offered by the view. Non-positive
// entries are ignored; an empty list keeps PageSizes.
func WithPageSizes(sizes []int) Option {
	return func(o *options) {
		var out []int
		for _, n := range sizes {
			if n > 0 && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
		if len(out) > 0 {
			slices.Sort(out)
			o.sizes = out
		}
	}
}

// WithLogger sets the logger for reconciliation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFormatter sets how cell values become cell text.
func WithFormatter(f func(any) string) Option {
	return func(o *options) {
		if f != nil {
			o.format = f
		}
	}
}

// emitted holds the caller-facing values last reported through callbacks.
type emitted struct {
	visibility VisibilityMap
	filters    map[string][]string
	selection  SelectionState
	sort       SortState
	pagination Pagination
}

// Engine is one grid instance.
type Engine[T any] struct {
	opts  options
	log   *slog.Logger
	reg   *Registry[T]
	props Props[T]
	prev  snapshot
	state State
	sent  emitted

	containerWidth int

	rows      []int
	rowsValid bool
}

// New mounts an engine, seeding internal state from props. No callbacks
// fire during mount.
func New[T any](props Props[T], opts ...Option) *Engine[T] {
	o := options{
		reserved: DefaultReserved(),
		widths:   DefaultWidths(),
		pageSize: DefaultPageSize,
		sizes:    PageSizes,
		logger:   slog.Default(),
		format:   CellText,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[T]{
		opts:  o,
		log:   o.logger,
		reg:   NewRegistry(props.Columns, o.reserved, o.widths),
		props: props,
	}

	var none snapshot
	trig := diffVisibility(none, props, e.reg)
	trig.columns = true
	e.state = State{
		Visibility: reconcileVisibility(nil, none, props, e.reg, trig),
		Filters:    reconcileFilters(nil, none, props.Filters),
		Selection:  reconcileSelection(nil, none, props.Selection),
		Sort:       reconcileSort(SortState{}, none, props.Sort, e.reg),
		Pagination: reconcilePagination(Pagination{PageSize: o.pageSize}, none, props.Pagination),
	}
	e.prev = takeSnapshot(props, e.reg)
	e.settle()
	e.sent = e.export()
	return e
}

// SetProps runs one reconciliation cycle against new caller props.
func (e *Engine[T]) SetProps(p Props[T]) {
	prevData := e.props.Data
	if e.reg.update(p.Columns) {
		e.log.Debug("grid: column ids changed", "columns", len(e.reg.ids))
	}

	s := e.state.Clone()
	if datasetChanged(prevData, p.Data) {
		if p.RowKey != nil {
			s.Selection = remapSelection(s.Selection, prevData, p.Data, p.RowKey)
		} else {
			s.Selection = deselect(s.Selection, e.prev.selection)
		}
		e.log.Debug("grid: dataset replaced", "rows", len(p.Data), "remapped", p.RowKey != nil)
	}

	trig := diffVisibility(e.prev, p, e.reg)
	if trig.visibility {
		e.log.Debug("grid: caller override", "state", "visibility")
	}
	s.Visibility = reconcileVisibility(s.Visibility, e.prev, p, e.reg, trig)
	s.Filters = reconcileFilters(s.Filters, e.prev, p.Filters)
	s.Selection = reconcileSelection(s.Selection, e.prev, p.Selection)
	s.Sort = reconcileSort(s.Sort, e.prev, p.Sort, e.reg)
	s.Pagination = reconcilePagination(s.Pagination, e.prev, p.Pagination)

	e.props = p
	e.prev = takeSnapshot(p, e.reg)
	e.state = s
	e.settle()
	e.emit()
}

// Dispatch applies one user interaction.
func (e *Engine[T]) Dispatch(ev Event) {
	e.state = Reduce(e.state, ev, e.input())
	e.settle()
	e.emit()
}

// SetContainerWidth records the observed container width in pixels.
// Zero means unknown.
func (e *Engine[T]) SetContainerWidth(width int) {
	e.containerWidth = max(width, 0)
}

// State returns a copy of the internal state.
func (e *Engine[T]) State() State {
	return e.state.Clone()
}

// Registry returns the column registry for the current columns.
func (e *Engine[T]) Registry() *Registry[T] {
	return e.reg
}

// Selection returns the selected dataset indices as a selection map.
// Stale indices are dropped.
func (e *Engine[T]) Selection() SelectionState {
	return exportSelection(e.state.Selection, len(e.props.Data))
}

// SelectedRows returns the selected rows in dataset order.
func (e *Engine[T]) SelectedRows() []T {
	idx := selectedIndices(e.state.Selection, len(e.props.Data))
	out := make([]T, len(idx))
	for i, r := range idx {
		out[i] = e.props.Data[r]
	}
	return out
}

// FilterOptions lists the distinct values of a column across the whole
// dataset, narrowed by query. Unfilterable columns have no options.
func (e *Engine[T]) FilterOptions(columnID, query string) []FilterOption {
	i, ok := e.reg.index(columnID)
	if !ok || !e.reg.filterable(i) {
		return nil
	}
	col := e.reg.columns[i]
	values := make([]any, len(e.props.Data))
	for r, row := range e.props.Data {
		values[r] = col.value(row)
	}
	var selected []any
	if f, ok := e.state.Filters.Get(columnID); ok {
		selected = f.Values
	}
	return DistinctValues(values, selected, query)
}

// UpdateCell forwards a cell edit to OnCellEdit. The dataset is never
// mutated; the caller applies the edit and supplies new props.
func (e *Engine[T]) UpdateCell(row int, columnID string, value any) bool {
	if e.props.ViewOnly || row < 0 || row >= len(e.props.Data) || !e.reg.Has(columnID) {
		return false
	}
	if cb := e.props.Callbacks.OnCellEdit; cb != nil {
		cb(row, columnID, value)
	}
	return true
}

func (e *Engine[T]) FirstPage()    { e.Dispatch(Event{Type: EventFirstPage}) }
func (e *Engine[T]) PreviousPage() { e.Dispatch(Event{Type: EventPreviousPage}) }
func (e *Engine[T]) NextPage()     { e.Dispatch(Event{Type: EventNextPage}) }
func (e *Engine[T]) LastPage()     { e.Dispatch(Event{Type: EventLastPage}) }

func (e *Engine[T]) GoToPage(index int) {
	e.Dispatch(Event{Type: EventGoToPage, Page: index})
}

func (e *Engine[T]) SetPageSize(size int) {
	e.Dispatch(Event{Type: EventSetPageSize, PageSize: size})
}

func (e *Engine[T]) ToggleColumn(id string) {
	e.Dispatch(Event{Type: EventToggleColumn, ColumnID: id})
}

func (e *Engine[T]) SetColumnVisible(id string, visible bool) {
	e.Dispatch(Event{Type: EventSetColumnVisible, ColumnID: id, Visible: visible})
}

func (e *Engine[T]) ToggleSort(id string) {
	e.Dispatch(Event{Type: EventToggleSort, ColumnID: id})
}

func (e *Engine[T]) ClearSort() { e.Dispatch(Event{Type: EventClearSort}) }

func (e *Engine[T]) SetFilter(id string, values ...any) {
	e.Dispatch(Event{Type: EventSetFilter, ColumnID: id, Values: values})
}

func (e *Engine[T]) ClearFilters() { e.Dispatch(Event{Type: EventClearFilters}) }

func (e *Engine[T]) ToggleRow(row int) {
	e.Dispatch(Event{Type: EventToggleRow, Row: row})
}

func (e *Engine[T]) SelectAll()   { e.Dispatch(Event{Type: EventSelectAll}) }
func (e *Engine[T]) DeselectAll() { e.Dispatch(Event{Type: EventDeselectAll}) }

func (e *Engine[T]) ResizeColumn(id string, width int) {
	e.Dispatch(Event{Type: EventResizeColumn, ColumnID: id, Width: width})
}

func (e *Engine[T]) input() Input[T] {
	return Input[T]{
		Registry:      e.reg,
		Data:          e.props.Data,
		Rows:          e.processedRows(),
		ServerSide:    e.props.ServerSide,
		PageCount:     e.props.PageCount,
		ShowSelection: e.props.ShowSelection,
		ViewOnly:      e.props.ViewOnly,
	}
}

func (e *Engine[T]) pager() pager {
	return e.input().pager()
}

// settle re-derives rows and repairs state that depends on them.
func (e *Engine[T]) settle() {
	e.rowsValid = false
	e.state.Visibility = enforceVisibility(e.state.Visibility, e.reg, e.props.ShowSelection)
	e.state.Pagination = e.pager().clamp(e.state.Pagination)
}

// processedRows returns the filtered, sorted dataset indices.
func (e *Engine[T]) processedRows() []int {
	if e.rowsValid {
		return e.rows
	}
	data := e.props.Data

	var rows []int
	if e.props.ManualFiltering {
		rows = make([]int, len(data))
		for i := range rows {
			rows[i] = i
		}
	} else {
		rows = filterRows(data, e.reg, compileFilters(e.state.Filters, e.reg))
	}

	if s := e.state.Sort; !e.props.ManualSorting && s.IsSorted() {
		if i, ok := e.reg.index(s.ColumnID); ok && e.reg.sortable(i) {
			col := e.reg.columns[i]
			sortIndices(rows, func(r int) any { return col.value(data[r]) }, s.Descending)
		}
	}

	e.rows, e.rowsValid = rows, true
	return rows
}

func (e *Engine[T]) export() emitted {
	return emitted{
		visibility: exportVisibility(e.state.Visibility, e.reg),
		filters:    filterKeys(e.state.Filters),
		selection:  e.Selection(),
		sort:       e.state.Sort,
		pagination: e.state.Pagination,
	}
}

// emit reports every state whose caller-facing value differs from the
// value last reported.
func (e *Engine[T]) emit() {
	cur := e.export()
	cb := e.props.Callbacks

	if !deepEqual(cur.visibility, e.sent.visibility) {
		e.sent.visibility = cur.visibility
		e.log.Debug("grid: notify", "state", "visibility")
		if cb.OnVisibilityChange != nil {
			cb.OnVisibilityChange(cur.visibility.Clone())
		}
	}
	if !deepEqual(cur.filters, e.sent.filters) {
		e.sent.filters = cur.filters
		e.log.Debug("grid: notify", "state", "filters", "active", len(cur.filters))
		if cb.OnFiltersChange != nil {
			cb.OnFiltersChange(e.state.Filters.Active())
		}
	}
	if !deepEqual(cur.selection, e.sent.selection) {
		e.sent.selection = cur.selection
		e.log.Debug("grid: notify", "state", "selection", "selected", len(cur.selection))
		if cb.OnSelectionChange != nil {
			cb.OnSelectionChange(cur.selection.Clone(), e.SelectedRows())
		}
	}
	if cur.sort != e.sent.sort {
		prevCol := e.sent.sort.ColumnID
		e.sent.sort = cur.sort
		e.log.Debug("grid: notify", "state", "sort", "column", cur.sort.ColumnID)
		if cb.OnSortChange != nil {
			if cur.sort.IsSorted() {
				cb.OnSortChange(cur.sort.ColumnID, cur.sort.Direction(cur.sort.ColumnID))
			} else {
				cb.OnSortChange(prevCol, SortNone)
			}
		}
	}
	if cur.pagination != e.sent.pagination {
		e.sent.pagination = cur.pagination
		e.log.Debug("grid: notify", "state", "pagination",
			"page_index", cur.pagination.PageIndex, "page_size", cur.pagination.PageSize)
		if cb.OnPaginationChange != nil {
			cb.OnPaginationChange(cur.pagination.PageIndex, cur.pagination.PageSize)
		}
	}
}
