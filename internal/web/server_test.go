package web

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/grid"
)

func accountsTable() core.TableDefinition {
	return core.TableDefinition{
		Info: core.TableInfo{
			Key:     "accounts",
			Group:   "Test",
			Label:   "Accounts",
			Columns: []string{"account", "region", "balance"},
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "account", Type: core.FieldText, Required: true},
			{Name: "region", Type: core.FieldEnum, EnumValues: []string{"east", "west"}},
			{Name: "balance", Type: core.FieldNumeric},
		},
		RowKey: []string{"account"},
	}
}

func accountRows(n int) []core.TableRow {
	rows := make([]core.TableRow, n)
	for i := range rows {
		region := "east"
		if i%2 == 1 {
			region = "west"
		}
		rows[i] = core.TableRow{
			"account": fmt.Sprintf("A%02d", i+1),
			"region":  region,
			"balance": float64(i * 10),
		}
	}
	return rows
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second},
		Rate:     config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, rows int, mutate func(*config.Config)) *Server {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)
	core.Register(accountsTable())

	src := core.NewMemorySource()
	src.Put("accounts", accountRows(rows))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := core.NewService(src, core.DefaultServiceConfig(), core.NewFetchLimiter(2, time.Second), logger)

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return NewServer(svc, cfg)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// gridResponse mirrors the JSON fields the tests inspect.
type gridResponse struct {
	ID         string `json:"id"`
	Table      string `json:"table"`
	ServerSide bool   `json:"serverSide"`
	TotalRows  int64  `json:"totalRows"`
	View       struct {
		Pagination    grid.Pagination `json:"pagination"`
		PageCount     int             `json:"pageCount"`
		SelectedCount int             `json:"selectedCount"`
		Rows          []struct {
			Index int `json:"index"`
			Cells []struct {
				ColumnID string `json:"columnId"`
				Text     string `json:"text"`
			} `json:"cells"`
		} `json:"rows"`
	} `json:"view"`
	Changes []core.Change `json:"changes"`
}

func openGrid(t *testing.T, s *Server, body map[string]any) gridResponse {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/grids", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open grid: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[gridResponse](t, rec)
}

// =============================================================================
// Routes
// =============================================================================

func TestHealth(t *testing.T) {
	s := newTestServer(t, 3, nil)
	openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	h := decodeBody[HealthResponse](t, rec)
	if h.Status != "ok" || h.Sessions != 1 {
		t.Errorf("expected ok with 1 session, got %+v", h)
	}
	if h.Fetches.MaxConcurrent != 2 {
		t.Errorf("expected 2 fetch slots, got %d", h.Fetches.MaxConcurrent)
	}
}

func TestListTables(t *testing.T) {
	s := newTestServer(t, 0, nil)

	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?group=test", 1},
		{"?group=SFDC", 0},
	}
	for _, tt := range tests {
		rec := doRequest(t, s, http.MethodGet, "/api/tables"+tt.query, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody[struct {
			Tables []TableSummary `json:"tables"`
		}](t, rec)
		if len(body.Tables) != tt.want {
			t.Errorf("GET /api/tables%s: expected %d tables, got %d", tt.query, tt.want, len(body.Tables))
		}
	}
}

func TestOpenGrid(t *testing.T) {
	s := newTestServer(t, 25, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts", "pageSize": 20})

	if res.ID == "" || res.Table != "accounts" {
		t.Fatalf("unexpected grid: %+v", res)
	}
	if len(res.View.Rows) != 20 || res.View.PageCount != 2 {
		t.Errorf("expected 20 rows on 2 pages, got %d rows, %d pages", len(res.View.Rows), res.View.PageCount)
	}
	if res.TotalRows != 25 {
		t.Errorf("expected 25 total rows, got %d", res.TotalRows)
	}
}

func TestOpenGrid_Errors(t *testing.T) {
	s := newTestServer(t, 1, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unknown table", `{"table":"nope"}`, http.StatusNotFound, "TBL001"},
		{"malformed json", `{"table":`, http.StatusBadRequest, "GRID005"},
		{"unknown field", `{"table":"accounts","bogus":1}`, http.StatusBadRequest, "GRID005"},
		{"empty body", ``, http.StatusBadRequest, "GRID005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/grids", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if er := decodeBody[ErrorResponse](t, rec); er.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, er.Code)
			}
		})
	}
}

func TestGridLifecycle(t *testing.T) {
	s := newTestServer(t, 15, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts", "showSelection": true})
	base := "/api/grids/" + res.ID

	rec := doRequest(t, s, http.MethodPost, base+"/events", grid.Event{Type: grid.EventNextPage})
	if rec.Code != http.StatusOK {
		t.Fatalf("next page: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := decodeBody[gridResponse](t, rec)
	if page.View.Pagination.PageIndex != 1 || len(page.View.Rows) != 5 {
		t.Errorf("expected page 1 with 5 rows, got page %d with %d rows",
			page.View.Pagination.PageIndex, len(page.View.Rows))
	}
	if len(page.Changes) == 0 || page.Changes[0].Kind != core.ChangePagination {
		t.Errorf("expected pagination change, got %+v", page.Changes)
	}

	rec = doRequest(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, base, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "SES001" {
		t.Errorf("expected SES001, got %s", er.Code)
	}
}

func TestDispatch_InvalidEvent(t *testing.T) {
	s := newTestServer(t, 3, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodPost, "/api/grids/"+res.ID+"/events", map[string]any{"type": "explode"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "GRID001" {
		t.Errorf("expected GRID001, got %s", er.Code)
	}
}

func TestUpdateProps(t *testing.T) {
	s := newTestServer(t, 12, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodPut, "/api/grids/"+res.ID+"/props", map[string]any{
		"sort": map[string]any{"columnId": "account", "descending": true},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody[gridResponse](t, rec)
	if got := out.View.Rows[0].Cells[0].Text; got != "A12" {
		t.Errorf("expected A12 first after descending sort, got %s", got)
	}
}

func TestSetWidth(t *testing.T) {
	s := newTestServer(t, 1, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodPut, "/api/grids/"+res.ID+"/width", WidthRequest{Width: 900})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		View struct {
			ContainerWidth int `json:"containerWidth"`
		} `json:"view"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.View.ContainerWidth != 900 {
		t.Errorf("expected container width 900, got %d", body.View.ContainerWidth)
	}
}

func TestUpdateCell(t *testing.T) {
	s := newTestServer(t, 2, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})
	path := "/api/grids/" + res.ID + "/cells"

	rec := doRequest(t, s, http.MethodPut, path, CellRequest{Row: 1, ColumnID: "balance", Value: "1,500"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody[gridResponse](t, rec)
	for _, c := range out.View.Rows[1].Cells {
		if c.ColumnID == "balance" && c.Text != "1500" {
			t.Errorf("expected balance 1500, got %s", c.Text)
		}
	}

	rec = doRequest(t, s, http.MethodPut, path, CellRequest{Row: 0, ColumnID: "region", Value: "north"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid enum value, got %d", rec.Code)
	}
}

func TestFilterOptions(t *testing.T) {
	s := newTestServer(t, 4, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodGet, "/api/grids/"+res.ID+"/options/region", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[struct {
		Options []grid.FilterOption `json:"options"`
	}](t, rec)
	if len(body.Options) != 2 {
		t.Fatalf("expected 2 options, got %+v", body.Options)
	}
	if body.Options[0].Label != "east" || body.Options[0].Count != 2 {
		t.Errorf("expected east x2 first, got %+v", body.Options[0])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/grids/"+res.ID+"/options/region?limit=1", nil)
	limited := decodeBody[struct {
		Options []grid.FilterOption `json:"options"`
	}](t, rec)
	if len(limited.Options) != 1 {
		t.Errorf("expected limit to trim options, got %d", len(limited.Options))
	}
}

func TestRunAction_Export(t *testing.T) {
	s := newTestServer(t, 5, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts", "showSelection": true})
	base := "/api/grids/" + res.ID

	rec := doRequest(t, s, http.MethodPost, base+"/actions/Export", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without selection, got %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodPost, base+"/actions/Archive", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}

	for _, row := range []int{0, 2} {
		doRequest(t, s, http.MethodPost, base+"/events", grid.Event{Type: grid.EventToggleRow, Row: row})
	}

	rec = doRequest(t, s, http.MethodPost, base+"/actions/Export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"account", "region", "balance"},
		{"A01", "east", "0"},
		{"A03", "east", "20"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), records)
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}

	rec = doRequest(t, s, http.MethodPost, base+"/actions/Export?format=json", nil)
	out := decodeBody[core.ActionResult](t, rec)
	if out.Table != "accounts" || len(out.Rows) != 2 {
		t.Errorf("expected 2 accounts rows as JSON, got %+v", out)
	}
}

func TestGridPage(t *testing.T) {
	s := newTestServer(t, 2, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	rec := doRequest(t, s, http.MethodGet, "/grids/"+res.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	html := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "<table", "A01", "A02", "Page 1 of 1"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}

	rec = doRequest(t, s, http.MethodGet, "/grids/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SES001") || !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected HTML error alert, got %q", rec.Body.String())
	}
}

func TestDispatch_HTMXRendersTable(t *testing.T) {
	s := newTestServer(t, 2, nil)
	res := openGrid(t, s, map[string]any{"table": "accounts"})

	req := httptest.NewRequest(http.MethodPost, "/api/grids/"+res.ID+"/events",
		strings.NewReader(`{"type":"toggle_sort","columnId":"account"}`))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `data-sort="asc"`) {
		t.Errorf("expected ascending sort marker, got %q", rec.Body.String())
	}
}

// =============================================================================
// Middleware wiring
// =============================================================================

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, 0, nil)
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected CSP header")
	}
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, 0, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"k1"}
	})

	if rec := doRequest(t, s, http.MethodGet, "/api/tables", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set("X-API-Key", "k1")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", rec.Code)
	}

	if rec := doRequest(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("expected health check outside auth, got %d", rec.Code)
	}
}

func TestOpenRateLimit(t *testing.T) {
	s := newTestServer(t, 1, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, OpenLimit: 1}
	})

	openGrid(t, s, map[string]any{"table": "accounts"})
	rec := doRequest(t, s, http.MethodPost, "/api/grids", map[string]any{"table": "accounts"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on second open, got %d", rec.Code)
	}
}
