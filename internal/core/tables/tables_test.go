package tables

import (
	"testing"

	"github.com/JonMunkholm/datagrid/internal/core"
)

func TestNormalizeUsState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"California", "CA"},
		{"  new york ", "NY"},
		{"tx", "TX"},
		{"WA", "WA"},
		{"Ontario", "Ontario"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUsState(tt.in); got != tt.want {
			t.Errorf("NormalizeUsState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTablesRegistered(t *testing.T) {
	want := map[string]bool{
		"sfdc_customers":     false,
		"sfdc_price_book":    false,
		"sfdc_opp_detail":    true,
		"ns_customers":       false,
		"ns_so_detail":       false,
		"ns_invoice_detail":  true,
		"anrok_transactions": false,
	}

	for key, serverSide := range want {
		def, ok := core.Get(key)
		if !ok {
			t.Errorf("table %s not registered", key)
			continue
		}
		if def.Info.ServerSide != serverSide {
			t.Errorf("%s: ServerSide = %v, want %v", key, def.Info.ServerSide, serverSide)
		}
		if len(def.RowKey) == 0 {
			t.Errorf("%s: expected a row key", key)
		}
		if len(def.Info.Columns) != len(def.FieldSpecs) {
			t.Errorf("%s: columns not populated", key)
		}
	}
}
