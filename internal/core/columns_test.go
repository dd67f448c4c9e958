package core

import (
	"testing"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

func TestGridColumns(t *testing.T) {
	def := ledgerTable()
	def.FieldSpecs[1].Align = grid.AlignCenter
	def.FieldSpecs[2].MinWidth = 90

	cols := GridColumns(def)
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}

	row := TableRow{"account": "A01", "amount": 3.5}
	if got := cols[0].Accessor(row); got != "A01" {
		t.Errorf("account accessor = %v, want A01", got)
	}
	if got := cols[2].Accessor(row); got != 3.5 {
		t.Errorf("amount accessor = %v, want 3.5", got)
	}

	if cols[1].Meta.Align != grid.AlignCenter {
		t.Errorf("expected declared alignment kept, got %q", cols[1].Meta.Align)
	}
	if cols[2].Meta.Align != grid.AlignRight || cols[2].Meta.MinWidth != 90 {
		t.Errorf("expected numeric right aligned with min 90, got %+v", cols[2].Meta)
	}
	if !cols[3].DisableSort {
		t.Error("expected memo sort disabled")
	}
}

func TestHeaderText(t *testing.T) {
	tests := []struct {
		spec FieldSpec
		want string
	}{
		{FieldSpec{Name: "account"}, "Account"},
		{FieldSpec{Name: "customer_id"}, "Customer ID"},
		{FieldSpec{Name: "Close Date"}, "Close Date"},
		{FieldSpec{Name: "amt", Header: "Amount"}, "Amount"},
	}
	for _, tt := range tests {
		if got := headerText(tt.spec); got != tt.want {
			t.Errorf("headerText(%q) = %q, want %q", tt.spec.Name, got, tt.want)
		}
	}
}

func TestRowKeyFunc(t *testing.T) {
	def := ledgerTable()
	if RowKeyFunc(TableDefinition{}) != nil {
		t.Error("expected nil key func without row key")
	}

	key := RowKeyFunc(def)
	if key(TableRow{"account": " A01 "}) != key(TableRow{"account": "A01"}) {
		t.Error("expected keys to ignore surrounding whitespace")
	}

	def.RowKey = []string{"account", "region"}
	key = RowKeyFunc(def)
	if key(TableRow{"account": "A", "region": "BC"}) == key(TableRow{"account": "AB", "region": "C"}) {
		t.Error("expected composite keys to keep column boundaries")
	}
}
