package core

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// ErrRowLimitExceeded is returned by RowSource.LoadAll when a table has
// more rows than the caller allows in memory.
var ErrRowLimitExceeded = errors.New("row limit exceeded")

// RowSource supplies table rows to grid sessions.
type RowSource interface {
	// LoadAll returns every row of the table in storage order. When limit
	// is positive and the table is larger, it returns ErrRowLimitExceeded.
	LoadAll(ctx context.Context, def TableDefinition, limit int) ([]TableRow, error)

	// LoadPage filters, sorts and paginates the table. Filters match a set
	// of values per column, with nil matching missing values. Nulls sort
	// last in both directions. The requested page is clamped to the last
	// valid page.
	LoadPage(ctx context.Context, def TableDefinition, req PageRequest) (PageResult, error)

	// Distinct returns up to limit distinct values of one column.
	Distinct(ctx context.Context, def TableDefinition, column string, limit int) ([]any, error)
}

// pageWindow returns the page count, the clamped page index and the row
// offset of that page.
func pageWindow(total int64, pageSize, pageIndex int) (pageCount, index, offset int) {
	if pageSize <= 0 {
		pageSize = grid.DefaultPageSize
	}
	pageCount = int((total + int64(pageSize) - 1) / int64(pageSize))
	index = min(max(pageIndex, 0), max(pageCount-1, 0))
	return pageCount, index, index * pageSize
}

// sortColumn returns the field a sort applies to, if the table allows it.
func sortColumn(def TableDefinition, s grid.SortState) (FieldSpec, bool) {
	if !s.IsSorted() {
		return FieldSpec{}, false
	}
	spec, ok := def.Spec(s.ColumnID)
	if !ok || spec.DisableSort {
		return FieldSpec{}, false
	}
	return spec, true
}

// activeFilters returns the filters that apply to filterable fields.
func activeFilters(def TableDefinition, fs grid.FilterState) []grid.ColumnFilter {
	var out []grid.ColumnFilter
	for _, f := range fs.Active() {
		if spec, ok := def.Spec(f.ColumnID); ok && !spec.DisableFilter {
			out = append(out, f)
		}
	}
	return out
}

// MemorySource keeps tables in memory. It backs tests, demos and
// deployments without a database.
type MemorySource struct {
	mu     sync.RWMutex
	tables map[string][]TableRow
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{tables: make(map[string][]TableRow)}
}

// Put replaces the rows of a table.
func (m *MemorySource) Put(tableKey string, rows []TableRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[tableKey] = slices.Clone(rows)
}

// Append adds rows to a table.
func (m *MemorySource) Append(tableKey string, rows []TableRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[tableKey] = append(m.tables[tableKey], rows...)
}

// Len returns the number of rows stored for a table.
func (m *MemorySource) Len(tableKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[tableKey])
}

func (m *MemorySource) rows(tableKey string) []TableRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tables[tableKey])
}

// LoadAll implements RowSource.
func (m *MemorySource) LoadAll(ctx context.Context, def TableDefinition, limit int) ([]TableRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := m.rows(def.Info.Key)
	if limit > 0 && len(rows) > limit {
		return nil, ErrRowLimitExceeded
	}
	return rows, nil
}

// LoadPage implements RowSource.
func (m *MemorySource) LoadPage(ctx context.Context, def TableDefinition, req PageRequest) (PageResult, error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}

	rows := m.rows(def.Info.Key)
	if filters := activeFilters(def, req.Filters); len(filters) > 0 {
		rows = slices.DeleteFunc(rows, func(row TableRow) bool {
			for _, f := range filters {
				if !grid.Passes(row[f.ColumnID], f.Values) {
					return true
				}
			}
			return false
		})
	}

	if spec, ok := sortColumn(def, req.Sort); ok {
		desc := req.Sort.Descending
		slices.SortStableFunc(rows, func(a, b TableRow) int {
			av, bv := a[spec.Name], b[spec.Name]
			// Nulls stay last whichever way the column is sorted.
			if grid.IsNull(av) || grid.IsNull(bv) {
				return grid.Compare(av, bv)
			}
			if desc {
				return grid.Compare(bv, av)
			}
			return grid.Compare(av, bv)
		})
	}

	size := req.PageSize
	if size <= 0 {
		size = grid.DefaultPageSize
	}
	total := int64(len(rows))
	pageCount, index, offset := pageWindow(total, size, req.PageIndex)

	return PageResult{
		Rows:      rows[offset:min(offset+size, len(rows))],
		TotalRows: total,
		PageIndex: index,
		PageCount: pageCount,
	}, nil
}

// Distinct implements RowSource. Values are ordered by the grid comparator
// and deduplicated by filter key.
func (m *MemorySource) Distinct(ctx context.Context, def TableDefinition, column string, limit int) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := def.Spec(column); !ok {
		return nil, nil
	}

	seen := make(map[string]bool)
	var values []any
	for _, row := range m.rows(def.Info.Key) {
		v := row[column]
		key := grid.FilterKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}

	slices.SortStableFunc(values, grid.Compare)
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}
