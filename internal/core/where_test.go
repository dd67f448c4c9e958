package core

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// ============================================================================
// WhereBuilder Tests
// ============================================================================

func TestNewWhereBuilder(t *testing.T) {
	wb := NewWhereBuilder()

	if wb == nil {
		t.Fatal("NewWhereBuilder returned nil")
	}

	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}

	if len(wb.conditions) != 0 {
		t.Errorf("expected empty conditions, got %d", len(wb.conditions))
	}
}

func TestWhereBuilder_Build_Empty(t *testing.T) {
	whereClause, args := NewWhereBuilder().Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}

	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	tests := []struct {
		name        string
		values      []any
		includeNull bool
		wantClause  string
		wantArgs    int
	}{
		{
			name:       "values only",
			values:     []any{"a", "b"},
			wantClause: ` WHERE "col" IN ($1, $2)`,
			wantArgs:   2,
		},
		{
			name:        "null only",
			includeNull: true,
			wantClause:  ` WHERE "col" IS NULL`,
		},
		{
			name:        "values and null",
			values:      []any{1.5},
			includeNull: true,
			wantClause:  ` WHERE ("col" IN ($1) OR "col" IS NULL)`,
			wantArgs:    1,
		},
		{
			name:       "nothing",
			wantClause: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			wb.AddIn(`"col"`, tt.values, tt.includeNull)

			gotClause, gotArgs := wb.Build()
			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if len(gotArgs) != tt.wantArgs {
				t.Errorf("args count = %d, want %d", len(gotArgs), tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilder_NextArgIndex(t *testing.T) {
	wb := NewWhereBuilder()

	if wb.NextArgIndex() != 1 {
		t.Errorf("expected initial NextArgIndex to be 1, got %d", wb.NextArgIndex())
	}

	wb.AddIn("col1", []any{"a", "b", "c"}, true)
	if wb.NextArgIndex() != 4 {
		t.Errorf("expected NextArgIndex after IN list to be 4, got %d", wb.NextArgIndex())
	}

	wb.AddIn("col2", nil, true)
	if wb.NextArgIndex() != 4 {
		t.Errorf("expected IS NULL arm to take no argument, got %d", wb.NextArgIndex())
	}
}

// ============================================================================
// Grid Filter Translation Tests
// ============================================================================

func sqlTable() TableDefinition {
	return TableDefinition{
		Info: TableInfo{
			Key:     "ledger",
			Columns: []string{"account", "Close Date", "amount", "memo"},
		},
		FieldSpecs: []FieldSpec{
			{Name: "account", Type: FieldText},
			{Name: "Close Date", Type: FieldDate},
			{Name: "amount", DBColumn: "amount_cents", Type: FieldNumeric},
			{Name: "memo", Type: FieldText, DisableSort: true, DisableFilter: true},
		},
		RowKey: []string{"account"},
	}
}

func TestFilterWhere(t *testing.T) {
	def := sqlTable()

	tests := []struct {
		name       string
		filters    grid.FilterState
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "no filters",
			wantClause: "",
		},
		{
			name:       "cleared entry ignored",
			filters:    grid.FilterState{{ColumnID: "account"}},
			wantClause: "",
		},
		{
			name:       "value set",
			filters:    grid.FilterState{{ColumnID: "account", Values: []any{"acme", "globex"}}},
			wantClause: ` WHERE "account" IN ($1, $2)`,
			wantArgs:   []any{"acme", "globex"},
		},
		{
			name:       "empty value matches null",
			filters:    grid.FilterState{{ColumnID: "Close Date", Values: []any{nil, "2024-01-15"}}},
			wantClause: ` WHERE ("close_date" IN ($1) OR "close_date" IS NULL)`,
			wantArgs:   []any{"2024-01-15"},
		},
		{
			name: "mapped db column and AND",
			filters: grid.FilterState{
				{ColumnID: "account", Values: []any{"acme"}},
				{ColumnID: "amount", Values: []any{10.0}},
			},
			wantClause: ` WHERE "account" IN ($1) AND "amount_cents" IN ($2)`,
			wantArgs:   []any{"acme", 10.0},
		},
		{
			name: "unknown and unfilterable columns skipped",
			filters: grid.FilterState{
				{ColumnID: "missing", Values: []any{"x"}},
				{ColumnID: "memo", Values: []any{"x"}},
			},
			wantClause: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClause, gotArgs := filterWhere(def, tt.filters).Build()

			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if len(gotArgs) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
			for i, want := range tt.wantArgs {
				if gotArgs[i] != want {
					t.Errorf("arg[%d] = %v, want %v", i, gotArgs[i], want)
				}
			}
		})
	}
}

func TestOrderBy(t *testing.T) {
	def := sqlTable()

	tests := []struct {
		name string
		sort grid.SortState
		want string
	}{
		{"unsorted uses row key", grid.SortState{}, `"account"`},
		{"ascending", grid.SortState{ColumnID: "amount"}, `"amount_cents" ASC NULLS LAST`},
		{"descending keeps nulls last", grid.SortState{ColumnID: "Close Date", Descending: true}, `"close_date" DESC NULLS LAST`},
		{"unsortable column", grid.SortState{ColumnID: "memo"}, `"account"`},
		{"unknown column", grid.SortState{ColumnID: "nope"}, `"account"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderBy(def, tt.sort); got != tt.want {
				t.Errorf("orderBy(%+v) = %q, want %q", tt.sort, got, tt.want)
			}
		})
	}

	def.RowKey = nil
	if got := orderBy(def, grid.SortState{}); got != `"account"` {
		t.Errorf("expected first column fallback, got %q", got)
	}
}

func TestSelectColumns(t *testing.T) {
	got := strings.Join(selectColumns(sqlTable()), ", ")
	want := `"account", "close_date", "amount_cents", "memo"`
	if got != want {
		t.Errorf("selectColumns = %q, want %q", got, want)
	}
}

func TestPageWindowBounds(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		size, index int
		wantCount   int
		wantIndex   int
		wantOffset  int
	}{
		{"empty table", 0, 10, 3, 0, 0, 0},
		{"first page", 25, 10, 0, 3, 0, 0},
		{"last page", 25, 10, 2, 3, 2, 20},
		{"clamped past end", 25, 10, 9, 3, 2, 20},
		{"negative index", 25, 10, -1, 3, 0, 0},
		{"default size", 25, 0, 1, 3, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, index, offset := pageWindow(tt.total, tt.size, tt.index)
			if count != tt.wantCount || index != tt.wantIndex || offset != tt.wantOffset {
				t.Errorf("pageWindow(%d, %d, %d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.total, tt.size, tt.index, count, index, offset,
					tt.wantCount, tt.wantIndex, tt.wantOffset)
			}
		})
	}
}

// ============================================================================
// quoteIdentifier Tests
// ============================================================================

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "normal identifier", input: "users", want: `"users"`},
		{name: "mixed case preserved", input: "UserName", want: `"UserName"`},
		{name: "reserved word still quoted", input: "select", want: `"select"`},
		{name: "contains space", input: "user name", want: `"user name"`},
		{name: "contains double quote - escaped", input: `user"name`, want: `"user""name"`},
		{name: "sql injection attempt safely quoted", input: `users"; DROP TABLE users; --`, want: `"users""; DROP TABLE users; --"`},
		{name: "empty string", input: "", want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteIdentifier(tt.input)
			if got != tt.want {
				t.Errorf("quoteIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// toDBColumnName Tests
// ============================================================================

func TestToDBColumnName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user_name", "user_name"},
		{"NAME", "name"},
		{"User Name", "user_name"},
		{"First Name Last Name", "first_name_last_name"},
		{"Column 1", "column_1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := toDBColumnName(tt.input)
			if got != tt.want {
				t.Errorf("toDBColumnName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// resolveDBColumn Tests
// ============================================================================

func TestResolveDBColumn(t *testing.T) {
	specs := []FieldSpec{
		{Name: "Transaction ID", DBColumn: "txn_id", Type: FieldText},
		{Name: "User Name", DBColumn: "", Type: FieldText},
		{Name: "Amount", DBColumn: "amount_cents", Type: FieldNumeric},
	}

	tests := []struct {
		name string
		col  string
		want string
	}{
		{name: "exact match with DBColumn", col: "Transaction ID", want: "txn_id"},
		{name: "case insensitive match", col: "TRANSACTION ID", want: "txn_id"},
		{name: "derives from name when DBColumn empty", col: "User Name", want: "user_name"},
		{name: "not found - uses toDBColumnName", col: "Unknown Column", want: "unknown_column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveDBColumn(tt.col, specs)
			if got != tt.want {
				t.Errorf("resolveDBColumn(%q) = %q, want %q", tt.col, got, tt.want)
			}
		})
	}
}

func TestResolveDBColumns(t *testing.T) {
	specs := []FieldSpec{
		{Name: "Transaction ID", DBColumn: "txn_id", Type: FieldText},
		{Name: "Amount", DBColumn: "amount_cents", Type: FieldNumeric},
	}

	got := resolveDBColumns([]string{"Transaction ID", "Amount", "User Name"}, specs)
	expected := []string{"txn_id", "amount_cents", "user_name"}

	if len(got) != len(expected) {
		t.Fatalf("expected %d columns, got %d", len(expected), len(got))
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("resolveDBColumns[%d] = %q, want %q", i, got[i], want)
		}
	}
}

// ============================================================================
// quoteColumns Tests
// ============================================================================

func TestQuoteColumns(t *testing.T) {
	got := quoteColumns([]string{"user_id", `col"name`})
	want := []string{`"user_id"`, `"col""name"`}

	if len(got) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("quoteColumns[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
