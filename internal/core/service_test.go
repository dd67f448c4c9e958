package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// =============================================================================
// Fixtures
// =============================================================================

func ledgerTable() TableDefinition {
	return TableDefinition{
		Info: TableInfo{Key: "ledger", Group: "Test", Label: "Ledger"},
		FieldSpecs: []FieldSpec{
			{Name: "account", Type: FieldText},
			{Name: "region", Type: FieldEnum, EnumValues: []string{"east", "west"}},
			{Name: "amount", Type: FieldNumeric},
			{Name: "memo", Type: FieldText, DisableSort: true},
		},
		RowKey: []string{"account"},
	}
}

// ledgerRows returns n rows: accounts A01.., regions cycling east, west
// and null.
func ledgerRows(n int) []TableRow {
	rows := make([]TableRow, n)
	for i := range rows {
		var region any
		switch i % 3 {
		case 0:
			region = "east"
		case 1:
			region = "west"
		}
		rows[i] = TableRow{
			"account": fmt.Sprintf("A%02d", i+1),
			"region":  region,
			"amount":  float64(100 - i),
			"memo":    nil,
		}
	}
	return rows
}

func newTestService(t *testing.T, rows int, mutate func(*ServiceConfig)) (*Service, *MemorySource) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)
	Register(ledgerTable())

	src := NewMemorySource()
	src.Put("ledger", ledgerRows(rows))

	cfg := DefaultServiceConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(src, cfg, NewFetchLimiter(2, DefaultMaxWaitTime), logger), src
}

func firstAccount(t *testing.T, res GridResult) string {
	t.Helper()
	if len(res.View.Rows) == 0 {
		t.Fatal("expected at least one row in view")
	}
	return fmt.Sprint(res.View.Rows[0].Row["account"])
}

func hasChange(res GridResult, kind ChangeKind) bool {
	for _, c := range res.Changes {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// =============================================================================
// Session lifecycle
// =============================================================================

func TestService_OpenGridUnknownTable(t *testing.T) {
	svc, _ := newTestService(t, 5, nil)

	_, err := svc.OpenGrid(context.Background(), "missing", GridOptions{})
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}

func TestService_OpenGridClientMode(t *testing.T) {
	svc, _ := newTestService(t, 25, nil)

	res, err := svc.OpenGrid(context.Background(), "ledger", GridOptions{ShowSelection: true})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}

	if res.ServerSide {
		t.Error("expected client mode for a small table")
	}
	if res.ID == "" || res.Table != "ledger" {
		t.Errorf("unexpected identity: id=%q table=%q", res.ID, res.Table)
	}
	if res.TotalRows != 25 || res.View.TotalRows != 25 {
		t.Errorf("expected 25 total rows, got %d/%d", res.TotalRows, res.View.TotalRows)
	}
	if len(res.View.Rows) != grid.DefaultPageSize {
		t.Errorf("expected %d rows on page, got %d", grid.DefaultPageSize, len(res.View.Rows))
	}
	if res.View.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", res.View.PageCount)
	}
	if len(res.Changes) != 0 {
		t.Errorf("expected no notifications on mount, got %+v", res.Changes)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", svc.SessionCount())
	}
}

func TestService_MaxSessions(t *testing.T) {
	svc, _ := newTestService(t, 3, func(c *ServiceConfig) { c.MaxSessions = 1 })
	ctx := context.Background()

	if _, err := svc.OpenGrid(ctx, "ledger", GridOptions{}); err != nil {
		t.Fatalf("first OpenGrid() error = %v", err)
	}
	if _, err := svc.OpenGrid(ctx, "ledger", GridOptions{}); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestService_MaxSessionsConcurrent(t *testing.T) {
	const limit = 3
	svc, _ := newTestService(t, 3, func(c *ServiceConfig) { c.MaxSessions = limit })

	var (
		wg       sync.WaitGroup
		opened   atomic.Int32
		rejected atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.OpenGrid(context.Background(), "ledger", GridOptions{})
			switch {
			case err == nil:
				opened.Add(1)
			case errors.Is(err, ErrTooManySessions):
				rejected.Add(1)
			default:
				t.Errorf("unexpected OpenGrid() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := opened.Load(); got != limit {
		t.Errorf("expected %d sessions opened, got %d", limit, got)
	}
	if got := svc.SessionCount(); got != limit {
		t.Errorf("expected %d sessions held, got %d", limit, got)
	}
	if got := rejected.Load(); got != 20-limit {
		t.Errorf("expected %d rejections, got %d", 20-limit, got)
	}
}

func TestService_FailedOpenReleasesSlot(t *testing.T) {
	svc, _ := newTestService(t, 3, func(c *ServiceConfig) { c.MaxSessions = 1 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.OpenGrid(ctx, "ledger", GridOptions{}); err == nil {
		t.Fatal("expected OpenGrid() to fail with a cancelled context")
	}
	if got := svc.SessionCount(); got != 0 {
		t.Fatalf("expected failed open to release its slot, got %d sessions", got)
	}
	if _, err := svc.OpenGrid(context.Background(), "ledger", GridOptions{}); err != nil {
		t.Errorf("OpenGrid() after failed open error = %v", err)
	}
}

func TestService_CloseGrid(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := context.Background()

	res, err := svc.OpenGrid(ctx, "ledger", GridOptions{})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}
	if err := svc.CloseGrid(res.ID); err != nil {
		t.Fatalf("CloseGrid() error = %v", err)
	}
	if _, err := svc.Grid(ctx, res.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after close, got %v", err)
	}
	if err := svc.CloseGrid(res.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected second close to fail, got %v", err)
	}
}

// =============================================================================
// Dispatch
// =============================================================================

func TestService_DispatchErrors(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := context.Background()
	res, err := svc.OpenGrid(ctx, "ledger", GridOptions{})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}

	tests := []struct {
		name    string
		id      string
		event   grid.Event
		wantErr error
	}{
		{"unknown event", res.ID, grid.Event{Type: "explode"}, ErrInvalidEvent},
		{"unknown session", "nope", grid.Event{Type: grid.EventNextPage}, ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Dispatch(ctx, tt.id, tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Dispatch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_DispatchClientMode(t *testing.T) {
	svc, _ := newTestService(t, 25, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{})

	res, err := svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventNextPage})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got := firstAccount(t, res); got != "A11" {
		t.Errorf("expected page 2 to start at A11, got %s", got)
	}
	if !hasChange(res, ChangePagination) {
		t.Errorf("expected pagination notification, got %+v", res.Changes)
	}

	// Notifications are drained once reported.
	res, _ = svc.Grid(ctx, res.ID)
	if len(res.Changes) != 0 {
		t.Errorf("expected drained notifications, got %+v", res.Changes)
	}
}

// =============================================================================
// Server mode
// =============================================================================

func TestService_ServerModeFallback(t *testing.T) {
	svc, _ := newTestService(t, 25, func(c *ServiceConfig) { c.MaxClientRows = 5 })
	ctx := context.Background()

	res, err := svc.OpenGrid(ctx, "ledger", GridOptions{})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}
	if !res.ServerSide {
		t.Fatal("expected server mode above MaxClientRows")
	}
	if res.TotalRows != 25 {
		t.Errorf("expected 25 total rows, got %d", res.TotalRows)
	}
	if len(res.View.Rows) != 10 || res.View.PageCount != 3 {
		t.Errorf("expected 10 rows of 3 pages, got %d rows of %d", len(res.View.Rows), res.View.PageCount)
	}

	res, err = svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventLastPage})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got := firstAccount(t, res); got != "A21" {
		t.Errorf("expected last page to start at A21, got %s", got)
	}
	if len(res.View.Rows) != 5 {
		t.Errorf("expected 5 rows on last page, got %d", len(res.View.Rows))
	}
	if res.View.CanNext {
		t.Error("expected no next page on the last page")
	}
}

func TestService_ServerModeSort(t *testing.T) {
	svc, _ := newTestService(t, 25, func(c *ServiceConfig) { c.MaxClientRows = 5 })
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{})

	sortBy := grid.Event{Type: grid.EventToggleSort, ColumnID: "account"}
	if _, err := svc.Dispatch(ctx, res.ID, sortBy); err != nil {
		t.Fatalf("Dispatch() ascending error = %v", err)
	}
	res, err := svc.Dispatch(ctx, res.ID, sortBy)
	if err != nil {
		t.Fatalf("Dispatch() descending error = %v", err)
	}

	if got := firstAccount(t, res); got != "A25" {
		t.Errorf("expected descending sort to start at A25, got %s", got)
	}
	if !hasChange(res, ChangeSort) {
		t.Errorf("expected sort notification, got %+v", res.Changes)
	}
}

func TestService_ServerModeFilter(t *testing.T) {
	svc, _ := newTestService(t, 25, func(c *ServiceConfig) { c.MaxClientRows = 5 })
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{})

	res, err := svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventSetFilter, ColumnID: "region", Values: []any{"east"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.TotalRows != 9 {
		t.Errorf("expected 9 east rows, got %d", res.TotalRows)
	}
	if res.View.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", res.View.PageCount)
	}
	for _, row := range res.View.Rows {
		if row.Row["region"] != "east" {
			t.Errorf("expected only east rows, got %v", row.Row["region"])
		}
	}

	// The empty option selects nulls.
	res, err = svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventSetFilter, ColumnID: "region", Values: []any{nil}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.TotalRows != 8 {
		t.Errorf("expected 8 null-region rows, got %d", res.TotalRows)
	}
}

func TestService_ServerSideTable(t *testing.T) {
	Clear()
	t.Cleanup(Clear)
	def := ledgerTable()
	def.Info.ServerSide = true
	Register(def)

	src := NewMemorySource()
	src.Put("ledger", ledgerRows(3))
	svc := NewService(src, DefaultServiceConfig(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := svc.OpenGrid(context.Background(), "ledger", GridOptions{})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}
	if !res.ServerSide || res.TotalRows != 3 {
		t.Errorf("expected server mode with 3 rows, got server=%v total=%d", res.ServerSide, res.TotalRows)
	}
}

func TestService_FilterOptions(t *testing.T) {
	tests := []struct {
		name      string
		maxClient int
	}{
		{"client mode", 0},
		{"server mode", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, 25, func(c *ServiceConfig) { c.MaxClientRows = tt.maxClient })
			ctx := context.Background()
			res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{
				Filters: grid.FilterState{{ColumnID: "region", Values: []any{"west"}}},
			})

			opts, err := svc.FilterOptions(ctx, res.ID, "region", "")
			if err != nil {
				t.Fatalf("FilterOptions() error = %v", err)
			}
			if len(opts) != 3 {
				t.Fatalf("expected east, west and empty options, got %+v", opts)
			}
			if opts[2].Key != grid.FilterKey(nil) {
				t.Errorf("expected empty option last, got %+v", opts[2])
			}
			for _, o := range opts {
				if o.Selected != (o.Key == "west") {
					t.Errorf("option %q: selected = %v", o.Key, o.Selected)
				}
			}

			opts, _ = svc.FilterOptions(ctx, res.ID, "memo", "")
			if len(opts) != 1 {
				t.Errorf("expected a single empty memo option, got %+v", opts)
			}
		})
	}
}

// =============================================================================
// Props, edits and actions
// =============================================================================

func TestService_UpdatePropsVisibility(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{})

	res, err := svc.UpdateProps(ctx, res.ID, PropsUpdate{Visibility: grid.VisibilityMap{"memo": false}})
	if err != nil {
		t.Fatalf("UpdateProps() error = %v", err)
	}
	for _, h := range res.View.HeaderGroups[0].Headers {
		if h.ColumnID == "memo" {
			t.Error("expected memo column hidden")
		}
	}

	// A later unrelated update keeps the column hidden.
	show := true
	res, _ = svc.UpdateProps(ctx, res.ID, PropsUpdate{ShowSelection: &show})
	for _, tg := range res.View.Toggles {
		if tg.ColumnID == "memo" && tg.Visible {
			t.Error("expected memo to stay hidden")
		}
	}
}

func TestService_ReloadKeepsSelectionByRowKey(t *testing.T) {
	svc, src := newTestService(t, 3, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{ShowSelection: true})

	if _, err := svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventToggleRow, Row: 0}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	rows := ledgerRows(3)
	src.Put("ledger", []TableRow{rows[2], rows[1], rows[0]})

	res, err := svc.UpdateProps(ctx, res.ID, PropsUpdate{Reload: true})
	if err != nil {
		t.Fatalf("UpdateProps() error = %v", err)
	}
	for _, row := range res.View.Rows {
		want := row.Row["account"] == "A01"
		if row.Selected != want {
			t.Errorf("row %v: selected = %v, want %v", row.Row["account"], row.Selected, want)
		}
	}
	if res.View.SelectedCount != 1 {
		t.Errorf("expected 1 selected row, got %d", res.View.SelectedCount)
	}
}

func TestService_UpdateCell(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{})

	res, err := svc.UpdateCell(ctx, res.ID, 1, "amount", "$1,250.50")
	if err != nil {
		t.Fatalf("UpdateCell() error = %v", err)
	}
	if got := res.View.Rows[1].Row["amount"]; got != 1250.5 {
		t.Errorf("expected parsed amount 1250.5, got %v", got)
	}
	if !hasChange(res, ChangeCellEdit) {
		t.Errorf("expected cell edit notification, got %+v", res.Changes)
	}

	tests := []struct {
		name   string
		row    int
		column string
		value  any
	}{
		{"unknown column", 0, "nope", "x"},
		{"row out of range", 9, "amount", 1.0},
		{"unparseable text", 0, "amount", "abc"},
		{"selection column", 0, "select", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateCell(ctx, res.ID, tt.row, tt.column, tt.value)
			if !errors.Is(err, ErrEditRejected) {
				t.Errorf("UpdateCell() error = %v, want ErrEditRejected", err)
			}
		})
	}
}

func TestService_UpdateCellViewOnly(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{ViewOnly: true})

	if _, err := svc.UpdateCell(ctx, res.ID, 0, "memo", "note"); !errors.Is(err, ErrEditRejected) {
		t.Errorf("expected ErrEditRejected in view-only mode, got %v", err)
	}
}

func TestService_RunAction(t *testing.T) {
	svc, _ := newTestService(t, 5, nil)
	ctx := context.Background()
	res, _ := svc.OpenGrid(ctx, "ledger", GridOptions{ShowSelection: true})

	if _, err := svc.RunAction(ctx, res.ID, ExportAction); !errors.Is(err, ErrActionDisabled) {
		t.Errorf("expected ErrActionDisabled without selection, got %v", err)
	}
	if _, err := svc.RunAction(ctx, res.ID, "Delete"); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}

	for _, row := range []int{3, 1} {
		if _, err := svc.Dispatch(ctx, res.ID, grid.Event{Type: grid.EventToggleRow, Row: row}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}

	out, err := svc.RunAction(ctx, res.ID, ExportAction)
	if err != nil {
		t.Fatalf("RunAction() error = %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 exported rows, got %d", len(out.Rows))
	}
	if out.Rows[0]["account"] != "A02" || out.Rows[1]["account"] != "A04" {
		t.Errorf("expected rows in dataset order, got %v, %v", out.Rows[0]["account"], out.Rows[1]["account"])
	}
	if len(out.Columns) != 4 {
		t.Errorf("expected 4 export columns, got %v", out.Columns)
	}
}

func TestService_SessionOwner(t *testing.T) {
	svc, _ := newTestService(t, 3, nil)
	ctx := ContextWithClient(context.Background(), ClientInfo{IPAddress: "10.0.0.7", UserAgent: "test"})

	res, err := svc.OpenGrid(ctx, "ledger", GridOptions{})
	if err != nil {
		t.Fatalf("OpenGrid() error = %v", err)
	}
	sess, err := svc.session(res.ID)
	if err != nil {
		t.Fatalf("session() error = %v", err)
	}
	if sess.owner != "10.0.0.7" {
		t.Errorf("expected owner 10.0.0.7, got %q", sess.owner)
	}
	if got := ClientFromContext(context.Background()); got != (ClientInfo{}) {
		t.Errorf("expected zero client info, got %+v", got)
	}
}
