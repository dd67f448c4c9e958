package web

import (
	"fmt"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/grid"
)

// Helpers for the components in grid.templ.

func tableStyle(v grid.View[core.TableRow]) string {
	if v.ScrollX {
		return fmt.Sprintf("min-width:%dpx", v.TotalMinWidth)
	}
	return "width:100%"
}

func cellStyle(width int, flex bool, align grid.Align) string {
	s := fmt.Sprintf("width:%dpx", width)
	if flex {
		s += ";flex:1"
	}
	if align != "" && align != grid.AlignLeft {
		s += ";text-align:" + string(align)
	}
	return s
}

// selectionColumns returns the ids rendered as row checkboxes.
func selectionColumns(v grid.View[core.TableRow]) map[string]bool {
	cols := make(map[string]bool)
	for _, hg := range v.HeaderGroups {
		for _, h := range hg.Headers {
			if h.Selection {
				cols[h.ColumnID] = true
			}
		}
	}
	return cols
}

func headerCount(v grid.View[core.TableRow]) int {
	if len(v.HeaderGroups) == 0 {
		return 1
	}
	return max(len(v.HeaderGroups[0].Headers), 1)
}

func pageText(v grid.View[core.TableRow]) string {
	return fmt.Sprintf("Page %d of %d", v.Pagination.PageIndex+1, max(v.PageCount, 1))
}

func selectedText(res core.GridResult) string {
	return fmt.Sprintf("%d of %d row(s) selected.", res.View.SelectedCount, res.TotalRows)
}
