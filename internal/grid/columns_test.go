package grid

import (
	"slices"
	"testing"
)

type person struct {
	ID    int
	Name  string
	Team  *string
	Tags  []string
	Score float64
}

func strPtr(s string) *string { return &s }

func personColumns() []Column[person] {
	return []Column[person]{
		{ID: "id", Header: "ID", Accessor: func(p person) any { return p.ID }},
		{ID: "name", Header: "Name", Accessor: func(p person) any { return p.Name }},
		{ID: "team", Header: "Team", Accessor: func(p person) any { return p.Team }},
		{ID: "tags", Header: "Tags", Accessor: func(p person) any { return p.Tags }},
		{ID: "score", Header: "Score", Accessor: func(p person) any { return p.Score },
			Meta: ColumnMeta{MinWidth: 80, MaxWidth: 300, Align: AlignRight}},
	}
}

func TestNewRegistry_IDs(t *testing.T) {
	reg := NewRegistry(personColumns(), DefaultReserved(), DefaultWidths())

	want := []string{"select", "id", "name", "team", "tags", "score"}
	if !slices.Equal(reg.IDs(), want) {
		t.Errorf("expected ids %v, got %v", want, reg.IDs())
	}

	wantToggle := []string{"id", "team", "tags", "score"}
	if !slices.Equal(reg.Toggleable(), wantToggle) {
		t.Errorf("expected toggleable %v, got %v", wantToggle, reg.Toggleable())
	}
}

func TestNewRegistry_NoSelectionColumn(t *testing.T) {
	reserved := DefaultReserved()
	reserved.SelectionColumn = ""
	reg := NewRegistry(personColumns(), reserved, DefaultWidths())

	if reg.Has("select") {
		t.Error("expected no selection column")
	}
}

func TestNewRegistry_InvalidColumns(t *testing.T) {
	cols := []Column[person]{
		{ID: "", Header: "Blank", Accessor: func(p person) any { return p.Name }},
		{ID: "noaccessor", Header: "No Accessor"},
		{ID: "name", Accessor: func(p person) any { return p.Name }},
		{ID: "name", Header: "Duplicate"},
	}
	reg := NewRegistry(cols, DefaultReserved(), DefaultWidths())

	want := []string{"select", "_column_0", "noaccessor", "name"}
	if !slices.Equal(reg.IDs(), want) {
		t.Fatalf("expected ids %v, got %v", want, reg.IDs())
	}
	for _, id := range []string{"_column_0", "noaccessor"} {
		if reg.Sortable(id) || reg.Filterable(id) {
			t.Errorf("expected %s to be non-functional", id)
		}
	}
	if !reg.Sortable("name") {
		t.Error("expected first name column to be kept")
	}
}

func TestRegistry_Sortable(t *testing.T) {
	cols := append(personColumns(),
		Column[person]{ID: "owner_id", Accessor: func(p person) any { return p.ID }},
		Column[person]{ID: "locked", Accessor: func(p person) any { return p.ID }, DisableSort: true},
	)
	reg := NewRegistry(cols, DefaultReserved(), DefaultWidths())

	tests := []struct {
		id   string
		want bool
	}{
		{"select", false},
		{"id", false},
		{"owner_id", false},
		{"locked", false},
		{"name", true},
		{"team", true},
		{"missing", false},
	}

	for _, tt := range tests {
		if got := reg.Sortable(tt.id); got != tt.want {
			t.Errorf("Sortable(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if reg.Filterable("select") {
		t.Error("expected selection column to be unfilterable")
	}
}

func TestRegistry_Widths(t *testing.T) {
	cols := append(personColumns(),
		Column[person]{ID: "fixed", Accessor: func(p person) any { return p.ID }, Meta: ColumnMeta{FixedWidth: 60, MinWidth: 10}},
	)
	reg := NewRegistry(cols, DefaultReserved(), DefaultWidths())

	tests := []struct {
		id            string
		initial, mini int
		maxi          int
		align         Align
	}{
		{"select", 40, 40, 40, AlignCenter},
		{"name", 150, 100, 0, AlignLeft},
		{"score", 80, 80, 300, AlignRight},
		{"fixed", 60, 60, 60, AlignLeft},
	}

	for _, tt := range tests {
		if got := reg.InitialWidth(tt.id); got != tt.initial {
			t.Errorf("InitialWidth(%q) = %d, want %d", tt.id, got, tt.initial)
		}
		if got := reg.MinWidth(tt.id); got != tt.mini {
			t.Errorf("MinWidth(%q) = %d, want %d", tt.id, got, tt.mini)
		}
		if got := reg.MaxWidth(tt.id); got != tt.maxi {
			t.Errorf("MaxWidth(%q) = %d, want %d", tt.id, got, tt.maxi)
		}
		if got := reg.Align(tt.id); got != tt.align {
			t.Errorf("Align(%q) = %s, want %s", tt.id, got, tt.align)
		}
	}
}

func TestRegistry_Update(t *testing.T) {
	reg := NewRegistry(personColumns(), DefaultReserved(), DefaultWidths())

	cols := personColumns()
	cols[1].Header = "Full Name"
	if reg.update(cols) {
		t.Error("expected unchanged ids to report no change")
	}
	if c, _ := reg.Column("name"); c.Header != "Full Name" {
		t.Errorf("expected refreshed header, got %q", c.Header)
	}

	if !reg.update(cols[:2]) {
		t.Error("expected changed ids to report a change")
	}
	if reg.Has("team") {
		t.Error("expected team to be gone after update")
	}
}
