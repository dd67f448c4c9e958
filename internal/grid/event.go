package grid

// EventType identifies a user interaction.
type EventType string

const (
	EventFirstPage    EventType = "first_page"
	EventPreviousPage EventType = "previous_page"
	EventNextPage     EventType = "next_page"
	EventLastPage     EventType = "last_page"
	EventGoToPage     EventType = "go_to_page"
	EventSetPageSize  EventType = "set_page_size"

	EventToggleColumn      EventType = "toggle_column"
	EventSetColumnVisible  EventType = "set_column_visible"
	EventSetVisibleColumns EventType = "set_visible_columns"

	EventToggleSort EventType = "toggle_sort"
	EventSetSort    EventType = "set_sort"
	EventClearSort  EventType = "clear_sort"

	EventSetFilter        EventType = "set_filter"
	EventSelectAllOptions EventType = "select_all_options"
	EventClearFilter      EventType = "clear_filter"
	EventClearFilters     EventType = "clear_filters"

	EventToggleRow      EventType = "toggle_row"
	EventSetRowSelected EventType = "set_row_selected"
	EventSelectAll      EventType = "select_all"
	EventToggleAll      EventType = "toggle_all"
	EventDeselectAll    EventType = "deselect_all"

	EventResizeColumn EventType = "resize_column"
)

var knownEvents = map[EventType]bool{
	EventFirstPage: true, EventPreviousPage: true, EventNextPage: true,
	EventLastPage: true, EventGoToPage: true, EventSetPageSize: true,

	EventToggleColumn: true, EventSetColumnVisible: true, EventSetVisibleColumns: true,

	EventToggleSort: true, EventSetSort: true, EventClearSort: true,

	EventSetFilter: true, EventSelectAllOptions: true, EventClearFilter: true,
	EventClearFilters: true,

	EventToggleRow: true, EventSetRowSelected: true, EventSelectAll: true,
	EventToggleAll: true, EventDeselectAll: true,

	EventResizeColumn: true,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return knownEvents[t]
}

// Event is one user interaction. Only the fields relevant to Type are read.
type Event struct {
	Type EventType `json:"type"`

	ColumnID  string   `json:"columnId,omitempty"`
	ColumnIDs []string `json:"columnIds,omitempty"`

	// Row is a dataset index, not a position on the current page.
	Row int `json:"row,omitempty"`

	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
	Width    int `json:"width,omitempty"`

	Values     []any `json:"values,omitempty"`
	Visible    bool  `json:"visible,omitempty"`
	Selected   bool  `json:"selected,omitempty"`
	Descending bool  `json:"descending,omitempty"`
}

// selectionEvent reports whether ev changes row selection.
func (ev Event) selectionEvent() bool {
	switch ev.Type {
	case EventToggleRow, EventSetRowSelected, EventSelectAll, EventToggleAll, EventDeselectAll:
		return true
	}
	return false
}
