package grid

import "slices"

// HeaderCell is one column header.
type HeaderCell struct {
	ColumnID string `json:"columnId"`
	Header   string `json:"header"`
	Width    int    `json:"width"`
	// Flex marks the column that absorbs remaining container space.
	Flex  bool  `json:"flex,omitempty"`
	Align Align `json:"align"`

	Sortable     bool          `json:"sortable"`
	Sort         SortDirection `json:"sort"`
	Filterable   bool          `json:"filterable"`
	FilterActive bool          `json:"filterActive,omitempty"`
	Resizable    bool          `json:"resizable"`
	Selection    bool          `json:"selection,omitempty"`
}

// HeaderGroup is one header row.
type HeaderGroup struct {
	ID      string       `json:"id"`
	Headers []HeaderCell `json:"headers"`
}

// Cell is one rendered cell.
type Cell struct {
	ColumnID string `json:"columnId"`
	Value    any    `json:"value"`
	Text     string `json:"text"`
	Width    int    `json:"width"`
	Flex     bool   `json:"flex,omitempty"`
	Align    Align  `json:"align"`
}

// BodyRow is one rendered row.
type BodyRow[T any] struct {
	// Index is the row's position in the dataset.
	Index    int    `json:"index"`
	Row      T      `json:"-"`
	Selected bool   `json:"selected"`
	Cells    []Cell `json:"cells"`
}

// ColumnToggle is one entry of the column visibility menu.
type ColumnToggle struct {
	ColumnID string `json:"columnId"`
	Header   string `json:"header"`
	Visible  bool   `json:"visible"`
}

// View is everything a rendering layer needs for one frame.
type View[T any] struct {
	HeaderGroups []HeaderGroup `json:"headerGroups"`
	Rows         []BodyRow[T]  `json:"rows"`

	TotalMinWidth  int  `json:"totalMinWidth"`
	ContainerWidth int  `json:"containerWidth"`
	ScrollX        bool `json:"scrollX"`

	Pagination  Pagination `json:"pagination"`
	PageCount   int        `json:"pageCount"`
	PageSizes   []int      `json:"pageSizes"`
	CanPrevious bool       `json:"canPrevious"`
	CanNext     bool       `json:"canNext"`
	// RowCount is the number of rows after filtering; TotalRows is the
	// dataset length.
	RowCount  int `json:"rowCount"`
	TotalRows int `json:"totalRows"`

	ShowSelection bool `json:"showSelection"`
	ViewOnly      bool `json:"viewOnly"`
	AllSelected   bool `json:"allSelected"`
	SomeSelected  bool `json:"someSelected"`
	SelectedCount int  `json:"selectedCount"`

	Sort    SortState      `json:"sort"`
	Filters FilterState    `json:"filters"`
	Toggles []ColumnToggle `json:"toggles"`
	Actions []ActionState  `json:"actions"`
}

// layout is the resolved width of one visible column.
type layout struct {
	id    string
	fixed bool
	width int
	min   int
	flex  bool
}

// resolveWidths applies the width policy to the visible columns.
//
// Fixed columns always use their declared width. When the total minimum
// width exceeds a known container width, every other column uses its
// minimum and the container scrolls. Otherwise the last visible non-fixed
// column flexes to fill what remains, after the other columns shrink
// toward their minimums far enough for the table to fit.
func resolveWidths(cols []layout, container int) (totalMin int, scroll bool) {
	for _, c := range cols {
		if c.fixed {
			totalMin += c.width
		} else {
			totalMin += c.min
		}
	}
	scroll = container > 0 && totalMin > container

	last := -1
	for i, c := range cols {
		if !c.fixed {
			last = i
		}
	}

	for i := range cols {
		c := &cols[i]
		switch {
		case c.fixed:
		case scroll:
			c.width = c.min
		default:
			c.width = max(c.width, c.min)
		}
	}
	if scroll || last < 0 {
		return totalMin, scroll
	}

	cols[last].flex = true
	if container > 0 {
		used := 0
		for i, c := range cols {
			if i != last {
				used += c.width
			}
		}
		if excess := used + cols[last].min - container; excess > 0 {
			used -= shrink(cols, last, excess)
		}
		cols[last].width = max(container-used, cols[last].min)
	}
	return totalMin, scroll
}

// shrink narrows the non-fixed columns other than skip by up to excess
// pixels, in proportion to their room above the minimum. It returns the
// pixels removed.
func shrink(cols []layout, skip, excess int) int {
	room := 0
	for i, c := range cols {
		if i != skip && !c.fixed {
			room += c.width - c.min
		}
	}
	if room <= 0 {
		return 0
	}
	excess = min(excess, room)

	removed := 0
	for i := range cols {
		c := &cols[i]
		if i == skip || c.fixed {
			continue
		}
		cut := excess * (c.width - c.min) / room
		c.width -= cut
		removed += cut
	}
	// Rounding leftovers come off the rightmost columns first.
	for i := len(cols) - 1; i >= 0 && removed < excess; i-- {
		c := &cols[i]
		if i == skip || c.fixed {
			continue
		}
		cut := min(c.width-c.min, excess-removed)
		c.width -= cut
		removed += cut
	}
	return removed
}

// View derives the view model: filter, sort, paginate, then lay out.
func (e *Engine[T]) View() View[T] {
	reg := e.reg
	s := e.state
	pg := e.pager()
	rows := e.processedRows()

	var cols []layout
	for _, id := range reg.ids {
		if !isVisible(s.Visibility, id) {
			continue
		}
		w := reg.InitialWidth(id)
		if rw, ok := s.Widths[id]; ok && !reg.Fixed(id) {
			w = rw
		}
		cols = append(cols, layout{id: id, fixed: reg.Fixed(id), width: w, min: reg.MinWidth(id)})
	}
	totalMin, scroll := resolveWidths(cols, e.containerWidth)

	headers := make([]HeaderCell, len(cols))
	for i, c := range cols {
		col, _ := reg.Column(c.id)
		f, _ := s.Filters.Get(c.id)
		headers[i] = HeaderCell{
			ColumnID:     c.id,
			Header:       col.Header,
			Width:        c.width,
			Flex:         c.flex,
			Align:        reg.Align(c.id),
			Sortable:     reg.Sortable(c.id),
			Sort:         s.Sort.Direction(c.id),
			Filterable:   reg.Filterable(c.id),
			FilterActive: len(f.Values) > 0,
			Resizable:    !c.fixed && c.id != reg.reserved.SelectionColumn,
			Selection:    c.id == reg.reserved.SelectionColumn,
		}
	}

	page := pg.slice(rows, s.Pagination)
	body := make([]BodyRow[T], len(page))
	for i, r := range page {
		row := e.props.Data[r]
		cells := make([]Cell, len(cols))
		for j, c := range cols {
			cell := Cell{ColumnID: c.id, Width: c.width, Flex: c.flex, Align: headers[j].Align}
			if c.id != reg.reserved.SelectionColumn {
				col, _ := reg.Column(c.id)
				cell.Value = col.value(row)
				cell.Text = e.opts.format(cell.Value)
			}
			cells[j] = cell
		}
		body[i] = BodyRow[T]{
			Index:    r,
			Row:      row,
			Selected: s.Selection[rowKey(r)],
			Cells:    cells,
		}
	}

	toggles := make([]ColumnToggle, 0, len(reg.toggleable))
	for _, id := range reg.toggleable {
		col, _ := reg.Column(id)
		toggles = append(toggles, ColumnToggle{ColumnID: id, Header: col.Header, Visible: isVisible(s.Visibility, id)})
	}

	rowCount := len(rows)
	return View[T]{
		HeaderGroups:   []HeaderGroup{{ID: "header", Headers: headers}},
		Rows:           body,
		TotalMinWidth:  totalMin,
		ContainerWidth: e.containerWidth,
		ScrollX:        scroll,
		Pagination:     s.Pagination,
		PageCount:      pg.count(s.Pagination.PageSize),
		PageSizes:      slices.Clone(e.opts.sizes),
		CanPrevious:    pg.canPrevious(s.Pagination),
		CanNext:        pg.canNext(s.Pagination),
		RowCount:       rowCount,
		TotalRows:      len(e.props.Data),
		ShowSelection:  e.props.ShowSelection,
		ViewOnly:       e.props.ViewOnly,
		AllSelected:    allSelected(s.Selection, rows),
		SomeSelected:   someSelected(s.Selection, rows),
		SelectedCount:  len(selectedIndices(s.Selection, len(e.props.Data))),
		Sort:           s.Sort,
		Filters:        s.Filters.Active(),
		Toggles:        toggles,
		Actions:        e.Actions(),
	}
}
