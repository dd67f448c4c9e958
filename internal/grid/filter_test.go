package grid

import (
	"testing"
)

// ============================================================================
// Predicate Tests
// ============================================================================

func TestPasses(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		selected []any
		want     bool
	}{
		{"no selection passes", "anything", nil, true},
		{"empty selection passes", nil, []any{}, true},
		{"exact match", "x", []any{"x"}, true},
		{"trimmed match", " x ", []any{"x"}, true},
		{"not case folded", "X", []any{"x"}, false},
		{"miss", "y", []any{"x"}, false},
		{"null matches null", nil, []any{nil}, true},
		{"nil pointer matches null", (*string)(nil), []any{nil}, true},
		{"null does not match empty string", nil, []any{""}, false},
		{"same length arrays match", []int{1, 2, 3}, []any{[]int{9, 8, 7}}, true},
		{"different length arrays differ", []int{1, 2}, []any{[]int{1, 2, 3}}, false},
		{"objects by json", map[string]int{"b": 2, "a": 1}, []any{map[string]int{"a": 1, "b": 2}}, true},
		{"number against string", 42, []any{"42"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passes(tt.value, tt.selected); got != tt.want {
				t.Errorf("Passes(%v, %v) = %v, want %v", tt.value, tt.selected, got, tt.want)
			}
		})
	}
}

func TestFilterKey_Sentinels(t *testing.T) {
	if FilterKey(nil) == FilterKey("") {
		t.Error("expected null and empty string to have different keys")
	}
	if FilterKey([]int{1}) == FilterKey("1") {
		t.Error("expected array key not to collide with scalar key")
	}
	if FilterKey([]string{}) == FilterKey(nil) {
		t.Error("expected empty array not to collide with null")
	}
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "Empty"},
		{[]string{"a", "b"}, "2 items"},
		{map[string]int{"a": 1}, `{"a":1}`},
		{"plain", "plain"},
		{1.5, "1.5"},
	}

	for _, tt := range tests {
		if got := DisplayValue(tt.value); got != tt.want {
			t.Errorf("DisplayValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestCellText(t *testing.T) {
	if got := CellText(nil); got != "" {
		t.Errorf("expected empty text for null, got %q", got)
	}
	if got := CellText([]int{1, 2}); got != "2 items" {
		t.Errorf("expected %q, got %q", "2 items", got)
	}
	if got := CellText(7); got != "7" {
		t.Errorf("expected %q, got %q", "7", got)
	}
}

// ============================================================================
// Distinct Values Tests
// ============================================================================

func TestDistinctValues_DedupesByPredicateKey(t *testing.T) {
	values := []any{"x", nil, " x", "y", []int{1, 2}, []int{3, 4}, "X"}

	opts := DistinctValues(values, nil, "")

	wantLabels := []string{"x", "y", "2 items", "X", "Empty"}
	if len(opts) != len(wantLabels) {
		t.Fatalf("expected %d options, got %d: %+v", len(wantLabels), len(opts), opts)
	}
	for i, want := range wantLabels {
		if opts[i].Label != want {
			t.Errorf("option %d: expected label %q, got %q", i, want, opts[i].Label)
		}
	}
	if opts[0].Count != 2 {
		t.Errorf("expected x count 2, got %d", opts[0].Count)
	}
	if opts[2].Count != 2 {
		t.Errorf("expected array count 2, got %d", opts[2].Count)
	}

	for i, a := range opts {
		for j, b := range opts {
			if i != j && a.Key == b.Key {
				t.Errorf("options %d and %d share key %q", i, j, a.Key)
			}
		}
	}
}

func TestDistinctValues_Query(t *testing.T) {
	values := []any{"Alpha", "beta", "ALPHABET", nil}

	opts := DistinctValues(values, nil, "  alpha ")
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d: %+v", len(opts), opts)
	}
	if opts[0].Label != "Alpha" || opts[1].Label != "ALPHABET" {
		t.Errorf("unexpected options: %+v", opts)
	}

	opts = DistinctValues(values, nil, "empty")
	if len(opts) != 1 || opts[0].Key != emptyFilterKey {
		t.Errorf("expected only the empty option, got %+v", opts)
	}
}

func TestDistinctValues_Selected(t *testing.T) {
	opts := DistinctValues([]any{"a", "b", nil}, []any{" b", nil}, "")

	want := map[string]bool{"a": false, "b": true, "Empty": true}
	for _, o := range opts {
		if o.Selected != want[o.Label] {
			t.Errorf("option %q: expected selected=%v, got %v", o.Label, want[o.Label], o.Selected)
		}
	}
}

// ============================================================================
// Filter State Tests
// ============================================================================

func TestSetFilter_KeepsClearedEntry(t *testing.T) {
	fs := setFilter(nil, "team", []any{"x", " x", "y"})
	f, ok := fs.Get("team")
	if !ok {
		t.Fatal("expected team filter")
	}
	if len(f.Values) != 2 {
		t.Errorf("expected deduped values, got %v", f.Values)
	}

	fs = setFilter(fs, "team", nil)
	if _, ok := fs.Get("team"); !ok {
		t.Error("expected cleared entry to remain")
	}
	if len(fs.Active()) != 0 {
		t.Errorf("expected no active filters, got %v", fs.Active())
	}
}

func TestFilterKeys_OrderInsensitive(t *testing.T) {
	a := FilterState{{ColumnID: "c", Values: []any{"x", "y"}}, {ColumnID: "d"}}
	b := FilterState{{ColumnID: "c", Values: []any{"y", " x"}}}

	if !deepEqual(filterKeys(a), filterKeys(b)) {
		t.Errorf("expected equal keys, got %v and %v", filterKeys(a), filterKeys(b))
	}
}
