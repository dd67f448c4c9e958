package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/grid"
	"github.com/JonMunkholm/datagrid/internal/logging"
)

// TableSummary describes a table that can be opened in a grid.
type TableSummary struct {
	Key        string   `json:"key"`
	Group      string   `json:"group"`
	Label      string   `json:"label"`
	Columns    []string `json:"columns"`
	ServerSide bool     `json:"serverSide"`
}

// OpenGridRequest is the body of POST /api/grids.
type OpenGridRequest struct {
	Table string `json:"table"`
	core.GridOptions
}

// WidthRequest is the body of PUT /api/grids/{id}/width.
type WidthRequest struct {
	Width int `json:"width"`
}

// CellRequest is the body of PUT /api/grids/{id}/cells. A string value is
// parsed with the column's type; other JSON values are stored as sent.
type CellRequest struct {
	Row      int    `json:"row"`
	ColumnID string `json:"columnId"`
	Value    any    `json:"value"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string                  `json:"status"`
	Sessions int                     `json:"sessions"`
	Fetches  core.FetchLimiterStatus `json:"fetches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Fetches:  s.service.FetchStatus(),
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables := s.service.ListTables()
	group := r.URL.Query().Get("group")

	out := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		if group != "" && !strings.EqualFold(t.Group, group) {
			continue
		}
		out = append(out, TableSummary{
			Key:        t.Key,
			Group:      t.Group,
			Label:      t.Label,
			Columns:    t.Columns,
			ServerSide: t.ServerSide,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": out})
}

func (s *Server) handleOpenGrid(w http.ResponseWriter, r *http.Request) {
	var req OpenGridRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.OpenGrid(r.Context(), req.Table, req.GridOptions)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "grid_id", res.ID, "table", res.Table).
		Info("grid opened", "server_side", res.ServerSide, "rows", res.TotalRows)
	w.Header().Set("Location", "/api/grids/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Grid(r.Context(), chi.URLParam(r, "gridID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCloseGrid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gridID")
	if err := s.service.CloseGrid(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("grid closed", "grid_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var ev grid.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Dispatch(r.Context(), chi.URLParam(r, "gridID"), ev)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeGrid(w, r, res)
}

func (s *Server) handleUpdateProps(w http.ResponseWriter, r *http.Request) {
	var u core.PropsUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.UpdateProps(r.Context(), chi.URLParam(r, "gridID"), u)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetWidth(w http.ResponseWriter, r *http.Request) {
	var req WidthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.SetContainerWidth(r.Context(), chi.URLParam(r, "gridID"), req.Width)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req CellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.UpdateCell(r.Context(), chi.URLParam(r, "gridID"), req.Row, req.ColumnID, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeGrid(w, r, res)
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.service.FilterOptions(r.Context(),
		chi.URLParam(r, "gridID"), chi.URLParam(r, "columnID"), r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if limit := parseIntParam(r, "limit", 0); limit > 0 && len(opts) > limit {
		opts = opts[:limit]
	}
	if opts == nil {
		opts = []grid.FilterOption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": opts})
}

// handleRunAction runs a row action. The built-in Export action is written
// as CSV unless the client asks for JSON.
func (s *Server) handleRunAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gridID")
	label := chi.URLParam(r, "label")

	res, err := s.service.RunAction(r.Context(), id, label)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if label == core.ExportAction && r.URL.Query().Get("format") != "json" {
		if err := writeCSV(w, res); err != nil {
			logging.FromContext(r.Context()).Error("csv export failed", "grid_id", id, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeGrid answers with JSON, or with the rendered table for HTMX requests.
func (s *Server) writeGrid(w http.ResponseWriter, r *http.Request, res core.GridResult) {
	if isHTMX(r) {
		s.renderGrid(w, r, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGridPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Grid(r.Context(), chi.URLParam(r, "gridID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := gridPage(res).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render grid page", "grid_id", res.ID, "error", err)
	}
}

func (s *Server) renderGrid(w http.ResponseWriter, r *http.Request, res core.GridResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := gridTable(res).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render grid", "grid_id", res.ID, "error", err)
	}
}
