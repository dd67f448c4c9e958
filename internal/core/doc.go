// Package core hosts grid sessions over registered finance tables.
//
// The package is independent of any transport. Web handlers, CLI tools
// and tests drive it through [Service].
//
// # Architecture
//
//   - Table Definitions: registered at init time, each table lists its
//     field specs, layout hints and the columns that identify a row.
//   - Row Sources: [RowSource] loads rows for a table. [PostgresSource]
//     queries the database and [MemorySource] serves seeded CSV data.
//   - Sessions: one grid engine per open grid, kept in a TTL cache.
//   - Limits: [FetchLimiter] bounds concurrent table loads.
//
// # Table Registry
//
//	core.Register(TableDefinition{
//	    Info: TableInfo{Key: "ns_customers", Group: "NS", Label: "Customers"},
//	    FieldSpecs: []FieldSpec{
//	        {Name: "internal_id", Type: FieldText, Required: true},
//	        {Name: "balance", Type: FieldNumeric},
//	    },
//	    RowKey: []string{"internal_id"},
//	})
//
// # Client and Server Mode
//
// Small tables are loaded whole and the engine filters, sorts and
// paginates them in memory. Tables marked ServerSide, and tables larger
// than [ServiceConfig].MaxClientRows, are served one page at a time:
// the session reacts to the engine's sort, filter and pagination
// notifications by fetching the matching page from the row source and
// handing it back to the engine as its dataset.
//
// Client mode orders every value by its case-folded text form. Server
// mode orders by the database column type, so numeric columns can sort
// differently between the two modes.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SES001-SES002: Session errors (expired, capacity)
//   - GRID001-GRID005: Grid interaction errors (events, edits, actions)
//   - TBL001-TBL002: Table errors (unknown, missing)
//   - REQ001-REQ002, DB001-DB003: Request and database errors
//   - RATE001-RATE002: Rate limiting
package core
