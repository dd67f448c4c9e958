package tables

import "github.com/JonMunkholm/datagrid/internal/core"

func init() {
	registerAnrokTransactions()
}

// Anrok exports use display headers, so field names keep their spaces and
// DB columns are derived from them.
func registerAnrokTransactions() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "anrok_transactions",
			Group:     "Anrok",
			Label:     "Transactions",
			Directory: "Transactions",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Transaction ID", Type: core.FieldText, Required: true},
			{Name: "Customer ID", Type: core.FieldText},
			{Name: "Customer name", Type: core.FieldText, MinWidth: 200},
			{Name: "Overall VAT ID validation status", Header: "VAT Status", Type: core.FieldText},
			{Name: "Valid VAT IDs", Type: core.FieldText},
			{Name: "Other VAT IDs", Type: core.FieldText},
			{Name: "Invoice date", Type: core.FieldDate},
			{Name: "Tax date", Type: core.FieldDate},
			{Name: "Transaction currency", Header: "Currency", Type: core.FieldText, MaxWidth: 110},
			{Name: "Sales amount", Type: core.FieldNumeric},
			{Name: "Exempt reasons", Type: core.FieldText},
			{Name: "Tax amount", Type: core.FieldNumeric},
			{Name: "Invoice amount", Type: core.FieldNumeric},
			{Name: "Void", Type: core.FieldBool, FixedWidth: 80},
			{Name: "Customer address line 1", Header: "Address", Type: core.FieldText, MinWidth: 200},
			{Name: "Customer address city", Header: "City", Type: core.FieldText},
			{Name: "Customer address region", Header: "Region", Type: core.FieldText, Normalizer: NormalizeUsState},
			{Name: "Customer address postal code", Header: "Postal Code", Type: core.FieldText},
			{Name: "Customer address country", Header: "Country", Type: core.FieldText},
			{Name: "Customer country code", Header: "Country Code", Type: core.FieldText, MaxWidth: 120},
			{Name: "Jurisdictions", Type: core.FieldText, DisableSort: true},
			{Name: "Jurisdictions IDs", Type: core.FieldText, DisableSort: true, DisableFilter: true},
			{Name: "Return IDs", Type: core.FieldText, DisableSort: true, DisableFilter: true},
		},
		RowKey: []string{"Transaction ID"},
	})
}
