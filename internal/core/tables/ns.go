package tables

import "github.com/JonMunkholm/datagrid/internal/core"

func init() {
	registerNsCustomers()
	registerNsSoDetail()
	registerNsInvoiceDetail()
}

func registerNsCustomers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "ns_customers",
			Group:     "NS",
			Label:     "Customers",
			Directory: "Customers",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "salesforce_id_io", Header: "Salesforce ID", Type: core.FieldText},
			{Name: "internal_id", Type: core.FieldText, Required: true},
			{Name: "name", Type: core.FieldText, MinWidth: 200},
			{Name: "duplicate", Type: core.FieldText},
			{Name: "company_name", Type: core.FieldText, MinWidth: 200},
			{Name: "balance", Type: core.FieldNumeric},
			{Name: "unbilled_orders", Type: core.FieldNumeric},
			{Name: "overdue_balance", Type: core.FieldNumeric},
			{Name: "days_overdue", Type: core.FieldNumeric, MaxWidth: 140},
		},
		RowKey: []string{"internal_id"},
	})
}

func registerNsSoDetail() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "ns_so_detail",
			Group:     "NS",
			Label:     "SO Detail",
			Directory: "SoDetail",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "sfdc_opp_id", Header: "SFDC Opp ID", Type: core.FieldText, Required: true},
			{Name: "sfdc_opp_line_id", Header: "SFDC Opp Line ID", Type: core.FieldText, Required: true},
			{Name: "customer_internal_id", Type: core.FieldText},
			{Name: "product_internal_id", Type: core.FieldText},
			{Name: "customer_project", Type: core.FieldText, MinWidth: 200},
			{Name: "so_number", Header: "SO Number", Type: core.FieldText},
			{Name: "document_date", Type: core.FieldDate},
			{Name: "start_date", Type: core.FieldDate},
			{Name: "end_date", Type: core.FieldDate},
			{Name: "item_name", Type: core.FieldText},
			{Name: "item_display_name", Type: core.FieldText, MinWidth: 200},
			{Name: "line_start_date", Type: core.FieldDate},
			{Name: "line_end_date", Type: core.FieldDate},
			{Name: "quantity", Type: core.FieldNumeric},
			{Name: "unit_price", Type: core.FieldNumeric},
			{Name: "amount_gross", Type: core.FieldNumeric},
			{Name: "terms_days_till_net_due", Header: "Net Terms (Days)", Type: core.FieldNumeric},
		},
		RowKey: []string{"sfdc_opp_id", "sfdc_opp_line_id"},
	})
}

func registerNsInvoiceDetail() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        "ns_invoice_detail",
			Group:      "NS",
			Label:      "Invoice Detail",
			Directory:  "InvoiceDetail",
			ServerSide: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "sfdc_opp_id", Header: "SFDC Opp ID", Type: core.FieldText, Required: true},
			{Name: "sfdc_opp_line_id", Header: "SFDC Opp Line ID", Type: core.FieldText, Required: true},
			{Name: "sfdc_pricebook_id", Header: "SFDC Pricebook ID", Type: core.FieldText},
			{Name: "customer_internal_id", Type: core.FieldText},
			{Name: "product_internal_id", Type: core.FieldText},
			{Name: "type", Type: core.FieldText},
			{Name: "date", Type: core.FieldDate},
			{Name: "date_due", Type: core.FieldDate},
			{Name: "document_number", Type: core.FieldText},
			{Name: "name", Type: core.FieldText, MinWidth: 200},
			{Name: "memo", Type: core.FieldText, MinWidth: 240, DisableFilter: true},
			{Name: "item", Type: core.FieldText},
			{Name: "qty", Header: "Qty", Type: core.FieldNumeric},
			{Name: "contract_quantity", Type: core.FieldNumeric},
			{Name: "unit_price", Type: core.FieldNumeric},
			{Name: "amount", Type: core.FieldNumeric},
			{Name: "start_date_line", Header: "Line Start", Type: core.FieldDate},
			{Name: "end_date_line_level", Header: "Line End", Type: core.FieldDate},
			{Name: "account", Type: core.FieldText},
			{Name: "shipping_address_city", Header: "Ship City", Type: core.FieldText},
			{Name: "shipping_address_state", Header: "Ship State", Type: core.FieldText, Normalizer: NormalizeUsState, MaxWidth: 120},
			{Name: "shipping_address_country", Header: "Ship Country", Type: core.FieldText},
		},
		RowKey: []string{"sfdc_opp_id", "sfdc_opp_line_id"},
	})
}
