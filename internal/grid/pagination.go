package grid

// pagination.go implements the dual-mode pagination controller.
//
// In client mode the page count is derived from the filtered row count and
// the engine slices rows itself. In server mode the caller supplies the page
// count and the dataset already is the requested page; every page or size
// change is reported through OnPaginationChange so the caller can re-fetch.
//
// Navigation is a no-op at the boundaries. Changing the page size always
// returns to the first page.

// PageSizes are the page sizes offered by the stock page size selector.
var PageSizes = []int{5, 10, 20, 50, 100}

// DefaultPageSize is used when neither the caller nor options set one.
const DefaultPageSize = 10

// pager computes page bounds for the active mode.
type pager struct {
	serverSide bool
	pageCount  int // caller-supplied, server mode only
	rows       int // filtered row count, client mode only
}

// count returns the number of pages for the given page size.
func (p pager) count(pageSize int) int {
	if p.serverSide {
		return max(p.pageCount, 0)
	}
	if pageSize <= 0 || p.rows <= 0 {
		return 0
	}
	return (p.rows + pageSize - 1) / pageSize
}

// lastIndex is the highest valid page index. An empty table still has
// page 0.
func (p pager) lastIndex(pageSize int) int {
	return max(p.count(pageSize)-1, 0)
}

// clamp pulls an out-of-range page index back to the last valid page and
// repairs a non-positive page size.
func (p pager) clamp(pg Pagination) Pagination {
	if pg.PageSize <= 0 {
		pg.PageSize = DefaultPageSize
	}
	pg.PageIndex = min(max(pg.PageIndex, 0), p.lastIndex(pg.PageSize))
	return pg
}

func (p pager) canPrevious(pg Pagination) bool {
	return pg.PageIndex > 0
}

func (p pager) canNext(pg Pagination) bool {
	return pg.PageIndex < p.count(pg.PageSize)-1
}

func (p pager) first(pg Pagination) Pagination {
	pg.PageIndex = 0
	return pg
}

func (p pager) previous(pg Pagination) Pagination {
	if p.canPrevious(pg) {
		pg.PageIndex--
	}
	return pg
}

func (p pager) next(pg Pagination) Pagination {
	if p.canNext(pg) {
		pg.PageIndex++
	}
	return pg
}

func (p pager) last(pg Pagination) Pagination {
	pg.PageIndex = p.lastIndex(pg.PageSize)
	return pg
}

// goTo jumps to index, clamped to the valid range.
func (p pager) goTo(pg Pagination, index int) Pagination {
	pg.PageIndex = min(max(index, 0), p.lastIndex(pg.PageSize))
	return pg
}

// withPageSize sets the page size and returns to the first page.
// Non-positive sizes are ignored.
func (p pager) withPageSize(pg Pagination, size int) Pagination {
	if size <= 0 {
		return pg
	}
	return Pagination{PageIndex: 0, PageSize: size}
}

// slice returns the indices on the current page. Server mode returns all
// indices: the dataset already is the page.
func (p pager) slice(indices []int, pg Pagination) []int {
	if p.serverSide {
		return indices
	}
	start := pg.PageIndex * pg.PageSize
	if start >= len(indices) {
		return nil
	}
	end := min(start+pg.PageSize, len(indices))
	return indices[start:end]
}
