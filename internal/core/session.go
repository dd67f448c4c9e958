package core

import (
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// ExportAction is the label of the built-in action that returns the
// selected rows.
const ExportAction = "Export"

// maxRefreshPasses bounds how often one operation re-fetches a page.
// A second pass covers a page index clamped by a shrunken page count.
const maxRefreshPasses = 2

// gridSession is one grid engine bound to a table.
type gridSession struct {
	id      string
	def     TableDefinition
	owner   string
	created time.Time

	mu     sync.Mutex
	engine *grid.Engine[TableRow]
	props  grid.Props[TableRow]

	// Server-mode bookkeeping. loaded is the request behind props.Data.
	server bool
	stale  bool
	loaded *PageRequest
	total  int64

	changes    []Change
	actionRows []TableRow
}

func newGridSession(id string, def TableDefinition, owner string, opts GridOptions) *gridSession {
	s := &gridSession{
		id:      id,
		def:     def,
		owner:   owner,
		created: time.Now(),
		server:  def.Info.ServerSide,
	}
	s.props = grid.Props[TableRow]{
		Columns:       GridColumns(def),
		Visibility:    opts.Visibility,
		Filters:       opts.Filters,
		Selection:     opts.Selection,
		Sort:          opts.Sort,
		ShowSelection: opts.ShowSelection,
		ViewOnly:      opts.ViewOnly,
		RowKey:        RowKeyFunc(def),
		Actions: []grid.Action[TableRow]{
			{Label: ExportAction, Icon: "download", Run: s.collect},
		},
		Callbacks: s.callbacks(),
	}
	return s
}

// collect stores the rows an action ran against.
func (s *gridSession) collect(rows []TableRow) {
	s.actionRows = rows
}

// callbacks records every engine notification. They run with mu held.
func (s *gridSession) callbacks() grid.Callbacks[TableRow] {
	return grid.Callbacks[TableRow]{
		OnVisibilityChange: func(v grid.VisibilityMap) {
			s.record(Change{Kind: ChangeVisibility, Visibility: v})
		},
		OnFiltersChange: func(fs grid.FilterState) {
			s.record(Change{Kind: ChangeFilters, Filters: fs})
			s.markStale()
		},
		OnSelectionChange: func(sel grid.SelectionState, _ []TableRow) {
			s.record(Change{Kind: ChangeSelection, Selection: sel})
		},
		OnSortChange: func(columnID string, dir grid.SortDirection) {
			s.record(Change{Kind: ChangeSort, Sort: &SortChange{ColumnID: columnID, Direction: dir}})
			s.markStale()
		},
		OnPaginationChange: func(pageIndex, pageSize int) {
			s.record(Change{Kind: ChangePagination, Pagination: &grid.Pagination{PageIndex: pageIndex, PageSize: pageSize}})
			s.markStale()
		},
		OnCellEdit: func(row int, columnID string, value any) {
			s.record(Change{Kind: ChangeCellEdit, Edit: &CellEdit{Row: row, ColumnID: columnID, Value: value}})
		},
	}
}

func (s *gridSession) record(c Change) {
	s.changes = append(s.changes, c)
}

func (s *gridSession) markStale() {
	if s.server {
		s.stale = true
	}
}

// useServerMode switches the session to page-by-page loading.
func (s *gridSession) useServerMode() {
	s.server = true
	s.stale = true
	s.loaded = nil
	s.props.ServerSide = true
	s.props.ManualSorting = true
	s.props.ManualFiltering = true
}

// pageRequest derives the page the engine currently shows.
func (s *gridSession) pageRequest() PageRequest {
	st := s.engine.State()
	return PageRequest{
		PageIndex: st.Pagination.PageIndex,
		PageSize:  st.Pagination.PageSize,
		Sort:      st.Sort,
		Filters:   st.Filters.Active(),
	}
}

// needsFetch reports whether req differs from the loaded page.
func (s *gridSession) needsFetch(req PageRequest) bool {
	return s.loaded == nil || !cmp.Equal(*s.loaded, req, cmpopts.EquateEmpty())
}

// applyPage installs a fetched page as the engine's dataset.
func (s *gridSession) applyPage(req PageRequest, res PageResult) {
	req.PageIndex = res.PageIndex
	s.loaded = &req
	s.total = res.TotalRows
	s.props.Data = res.Rows
	s.props.PageCount = res.PageCount
	s.engine.SetProps(s.props)
}

// result renders the session and drains its pending notifications.
func (s *gridSession) result() GridResult {
	total := int64(len(s.props.Data))
	if s.server {
		total = s.total
	}
	changes := s.changes
	s.changes = nil
	return GridResult{
		ID:         s.id,
		Table:      s.def.Info.Key,
		View:       s.engine.View(),
		Changes:    changes,
		ServerSide: s.server,
		TotalRows:  total,
	}
}
