package tables

import "github.com/JonMunkholm/datagrid/internal/core"

func init() {
	registerSfdcCustomers()
	registerSfdcPriceBook()
	registerSfdcOppDetail()
}

func registerSfdcCustomers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "sfdc_customers",
			Group:     "SFDC",
			Label:     "Customers",
			Directory: "Customers",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "account_id_casesafe", Header: "Account ID", Type: core.FieldText, Required: true, MinWidth: 170},
			{Name: "account_name", Type: core.FieldText, MinWidth: 200},
			{Name: "last_activity", Type: core.FieldDate},
			{Name: "type", Type: core.FieldText},
		},
		RowKey: []string{"account_id_casesafe"},
	})
}

func registerSfdcPriceBook() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "sfdc_price_book",
			Group:     "SFDC",
			Label:     "Price Book",
			Directory: "PriceBook",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "price_book_name", Type: core.FieldText, MinWidth: 180},
			{Name: "list_price", Type: core.FieldNumeric},
			{Name: "product_name", Type: core.FieldText, MinWidth: 200},
			{Name: "product_code", Type: core.FieldText},
			{Name: "product_id_casesafe", Header: "Product ID", Type: core.FieldText, Required: true},
		},
		RowKey: []string{"price_book_name", "product_id_casesafe"},
	})
}

func registerSfdcOppDetail() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        "sfdc_opp_detail",
			Group:      "SFDC",
			Label:      "Opp Detail",
			Directory:  "OppDetail",
			ServerSide: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "opportunity_id", Type: core.FieldText},
			{Name: "opportunity_product_casesafe_id", Header: "Opp Product ID", Type: core.FieldText, Required: true},
			{Name: "opportunity_name", Type: core.FieldText, MinWidth: 220},
			{Name: "account_name", Type: core.FieldText, MinWidth: 200},
			{Name: "close_date", Type: core.FieldDate},
			{Name: "booked_date", Type: core.FieldDate},
			{Name: "fiscal_period", Type: core.FieldText},
			{Name: "payment_schedule", Type: core.FieldText},
			{Name: "payment_due", Type: core.FieldText},
			{Name: "contract_start_date", Type: core.FieldDate},
			{Name: "contract_end_date", Type: core.FieldDate},
			{Name: "term_in_months_deprecated", Header: "Term (Deprecated)", Type: core.FieldNumeric},
			{Name: "product_name", Type: core.FieldText, MinWidth: 200},
			{Name: "deployment_type", Type: core.FieldText},
			{Name: "amount", Type: core.FieldNumeric},
			{Name: "quantity", Type: core.FieldNumeric},
			{Name: "list_price", Type: core.FieldNumeric},
			{Name: "sales_price", Type: core.FieldNumeric},
			{Name: "total_price", Type: core.FieldNumeric},
			{Name: "start_date", Type: core.FieldDate},
			{Name: "end_date", Type: core.FieldDate},
			{Name: "term_in_months", Type: core.FieldNumeric},
			{Name: "product_code", Type: core.FieldText},
			{Name: "total_amount_due_customer", Header: "Due (Customer)", Type: core.FieldNumeric},
			{Name: "total_amount_due_partner", Header: "Due (Partner)", Type: core.FieldNumeric},
			{Name: "active_product", Type: core.FieldBool, FixedWidth: 110},
		},
		RowKey: []string{"opportunity_product_casesafe_id"},
	})
}
