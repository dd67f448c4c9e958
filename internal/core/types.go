// Package core hosts grid engines for registered tables.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// FieldType represents the data type of a table column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

// Align returns the default cell alignment for the type.
func (t FieldType) Align() grid.Align {
	switch t {
	case FieldNumeric:
		return grid.AlignRight
	case FieldBool:
		return grid.AlignCenter
	default:
		return grid.AlignLeft
	}
}

// FieldSpec describes a single table column.
type FieldSpec struct {
	Name       string              // Column id and CSV header name
	Header     string              // Display header (derived from Name if empty)
	DBColumn   string              // Database column name (if different from Name, otherwise derived)
	Type       FieldType           // Data type
	Required   bool                // Column must exist in seed CSV headers
	EnumValues []string            // Valid values for FieldEnum type
	Normalizer func(string) string // Optional transformation applied to raw text

	// Layout
	Align      grid.Align // Overrides the type's default alignment
	MinWidth   int
	MaxWidth   int
	FixedWidth int

	DisableSort   bool
	DisableFilter bool
}

// TableInfo contains display information about a table.
type TableInfo struct {
	Key       string   // Unique identifier: "sfdc_customers"
	Group     string   // Data source: "SFDC", "NS", "Anrok"
	Label     string   // Display name: "Customers"
	Directory string   // Seed folder: "Customers"
	Columns   []string // Column ids in display order

	// ServerSide tables are paginated, sorted and filtered by the row
	// source instead of the engine.
	ServerSide bool
}

// TableDefinition contains everything needed to host a table in a grid.
type TableDefinition struct {
	Info       TableInfo
	FieldSpecs []FieldSpec

	// RowKey lists the column(s) that identify a row across reloads.
	// Selection survives dataset replacement only when it is set.
	RowKey []string
}

// Spec returns the FieldSpec for a column id.
func (t TableDefinition) Spec(name string) (FieldSpec, bool) {
	for _, spec := range t.FieldSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// TableRow represents a single row of data as key-value pairs.
type TableRow map[string]any

// PageRequest asks a row source for one page of a table.
type PageRequest struct {
	PageIndex int              `json:"pageIndex"`
	PageSize  int              `json:"pageSize"`
	Sort      grid.SortState   `json:"sort"`
	Filters   grid.FilterState `json:"filters,omitempty"`
}

// PageResult contains one page of table data.
type PageResult struct {
	Rows      []TableRow
	TotalRows int64
	PageIndex int // Clamped to the last valid page
	PageCount int
}

// GridOptions configures a new grid session.
type GridOptions struct {
	ShowSelection  bool                `json:"showSelection"`
	ViewOnly       bool                `json:"viewOnly"`
	PageSize       int                 `json:"pageSize,omitempty"`
	ContainerWidth int                 `json:"containerWidth,omitempty"`
	Visibility     grid.VisibilityMap  `json:"visibility,omitempty"`
	Filters        grid.FilterState    `json:"filters,omitempty"`
	Sort           grid.SortState      `json:"sort"`
	Selection      grid.SelectionState `json:"selection,omitempty"`
}

// PropsUpdate replaces the caller-controlled values of a grid session.
// Nil fields keep their previous value.
type PropsUpdate struct {
	Visibility    grid.VisibilityMap  `json:"visibility,omitempty"`
	Filters       grid.FilterState    `json:"filters,omitempty"`
	Selection     grid.SelectionState `json:"selection,omitempty"`
	Sort          *grid.SortState     `json:"sort,omitempty"`
	Pagination    *grid.Pagination    `json:"pagination,omitempty"`
	ShowSelection *bool               `json:"showSelection,omitempty"`
	ViewOnly      *bool               `json:"viewOnly,omitempty"`

	// Reload re-reads the table from the row source.
	Reload bool `json:"reload,omitempty"`
}

// ChangeKind names the engine callback that produced a Change.
type ChangeKind string

const (
	ChangeVisibility ChangeKind = "visibility"
	ChangeFilters    ChangeKind = "filters"
	ChangeSelection  ChangeKind = "selection"
	ChangeSort       ChangeKind = "sort"
	ChangePagination ChangeKind = "pagination"
	ChangeCellEdit   ChangeKind = "cell_edit"
)

// Change is one state-change notification reported by a grid engine.
type Change struct {
	Kind       ChangeKind          `json:"kind"`
	Visibility grid.VisibilityMap  `json:"visibility,omitempty"`
	Filters    grid.FilterState    `json:"filters,omitempty"`
	Selection  grid.SelectionState `json:"selection,omitempty"`
	Sort       *SortChange         `json:"sort,omitempty"`
	Pagination *grid.Pagination    `json:"pagination,omitempty"`
	Edit       *CellEdit           `json:"edit,omitempty"`
}

// SortChange is the payload of a sort notification.
type SortChange struct {
	ColumnID  string             `json:"columnId"`
	Direction grid.SortDirection `json:"direction"`
}

// CellEdit is the payload of a cell edit notification.
type CellEdit struct {
	Row      int    `json:"row"`
	ColumnID string `json:"columnId"`
	Value    any    `json:"value"`
}

// GridResult is the outcome of a session operation: the rendered view
// model plus the notifications the engine emitted while handling it.
type GridResult struct {
	ID      string              `json:"id"`
	Table   string              `json:"table"`
	View    grid.View[TableRow] `json:"view"`
	Changes []Change            `json:"changes,omitempty"`

	// ServerSide reports whether the view holds one page fetched from the
	// row source. TotalRows then counts the filtered table, not the page.
	ServerSide bool  `json:"serverSide"`
	TotalRows  int64 `json:"totalRows"`
}

// ActionResult is the outcome of running a row action.
type ActionResult struct {
	Table   string     `json:"table"`
	Label   string     `json:"label"`
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}
