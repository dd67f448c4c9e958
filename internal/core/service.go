package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/datagrid/internal/grid"
)

// ServiceConfig holds the session and loading limits of a Service.
type ServiceConfig struct {
	// MaxClientRows caps client-mode tables. Larger tables are served
	// page by page.
	MaxClientRows int

	// MaxFilterOptions caps distinct values fetched for a server-mode
	// filter menu. Zero means unlimited.
	MaxFilterOptions int

	PageSize  int
	PageSizes []int
	Widths    grid.Widths

	SessionTTL      time.Duration
	CleanupInterval time.Duration
	MaxSessions     int
}

// DefaultServiceConfig returns the limits used when none are configured.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxClientRows:    10000,
		MaxFilterOptions: 1000,
		PageSize:         grid.DefaultPageSize,
		Widths:           grid.DefaultWidths(),
		SessionTTL:       30 * time.Minute,
		CleanupInterval:  5 * time.Minute,
		MaxSessions:      1000,
	}
}

// Service hosts grid sessions over registered tables.
type Service struct {
	source  RowSource
	cfg     ServiceConfig
	limiter *FetchLimiter
	logger  *slog.Logger

	sessions *cache.Cache
	flight   singleflight.Group

	// opening serializes the session cap check with the slot reservation.
	opening sync.Mutex
}

// NewService creates a Service reading rows from source.
func NewService(source RowSource, cfg ServiceConfig, limiter *FetchLimiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = NewFetchLimiter(DefaultMaxConcurrentFetches, DefaultMaxWaitTime)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = grid.DefaultPageSize
	}

	s := &Service{
		source:   source,
		cfg:      cfg,
		limiter:  limiter,
		logger:   logger,
		sessions: cache.New(cfg.SessionTTL, cfg.CleanupInterval),
	}
	s.sessions.OnEvicted(func(id string, v any) {
		if sess, ok := v.(*gridSession); ok {
			s.logger.Debug("grid session closed", "session", id, "table", sess.def.Info.Key,
				"age", time.Since(sess.created).Round(time.Second))
		}
	})
	return s
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// SessionCount returns the number of open grid sessions.
func (s *Service) SessionCount() int {
	return s.sessions.ItemCount()
}

// FetchStatus returns the row loading limiter status.
func (s *Service) FetchStatus() FetchLimiterStatus {
	return s.limiter.Status()
}

// OpenGrid creates a grid session bound to a table and renders its
// first view.
func (s *Service) OpenGrid(ctx context.Context, tableKey string, opts GridOptions) (GridResult, error) {
	def, ok := Get(tableKey)
	if !ok {
		return GridResult{}, fmt.Errorf("%w: %s", ErrUnknownTable, tableKey)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	sess := newGridSession(uuid.NewString(), def, ClientFromContext(ctx).IPAddress, opts)
	if err := s.reserve(sess); err != nil {
		return GridResult{}, err
	}
	res, err := s.mount(ctx, sess, pageSize, opts)
	if err != nil {
		s.sessions.Delete(sess.id)
		return GridResult{}, err
	}
	s.logger.Debug("grid session opened", "session", sess.id, "table", def.Info.Key,
		"server_side", sess.server, "rows", len(sess.props.Data))
	return res, nil
}

// reserve claims a session slot for sess before its rows load. The id is
// not handed out until mount succeeds.
func (s *Service) reserve(sess *gridSession) error {
	s.opening.Lock()
	defer s.opening.Unlock()

	if s.cfg.MaxSessions > 0 && s.sessions.ItemCount() >= s.cfg.MaxSessions {
		return ErrTooManySessions
	}
	return s.sessions.Add(sess.id, sess, cache.DefaultExpiration)
}

// mount loads the session's rows and creates its engine.
func (s *Service) mount(ctx context.Context, sess *gridSession, pageSize int, opts GridOptions) (GridResult, error) {
	def := sess.def
	tableKey := def.Info.Key
	if !sess.server {
		rows, err := s.loadAll(ctx, def)
		switch {
		case errors.Is(err, ErrRowLimitExceeded):
			s.logger.Info("table too large for client mode, serving pages",
				"table", def.Info.Key, "max_rows", s.cfg.MaxClientRows)
			sess.useServerMode()
		case err != nil:
			return GridResult{}, fmt.Errorf("open grid %s: %w", tableKey, err)
		default:
			sess.props.Data = rows
		}
	} else {
		sess.useServerMode()
	}

	if sess.server {
		// The first page is loaded before mount so caller-supplied
		// selection indices refer to it.
		req := PageRequest{PageSize: pageSize, Sort: opts.Sort, Filters: opts.Filters.Active()}
		res, err := s.loadPage(ctx, def, req)
		if err != nil {
			return GridResult{}, fmt.Errorf("open grid %s: %w", tableKey, err)
		}
		req.PageIndex = res.PageIndex
		sess.loaded = &req
		sess.total = res.TotalRows
		sess.props.Data = res.Rows
		sess.props.PageCount = res.PageCount
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.engine = grid.New(sess.props,
		grid.WithPageSize(pageSize),
		grid.WithPageSizes(s.cfg.PageSizes),
		grid.WithWidths(s.cfg.Widths),
		grid.WithLogger(s.logger.With("session", sess.id)),
	)
	sess.engine.SetContainerWidth(opts.ContainerWidth)
	sess.stale = sess.server
	if err := s.refresh(ctx, sess); err != nil {
		return GridResult{}, err
	}
	return sess.result(), nil
}

// Grid renders an open session.
func (s *Service) Grid(ctx context.Context, id string) (GridResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return GridResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.refresh(ctx, sess); err != nil {
		return GridResult{}, err
	}
	return sess.result(), nil
}

// Dispatch applies one user interaction to a session.
func (s *Service) Dispatch(ctx context.Context, id string, ev grid.Event) (GridResult, error) {
	if !ev.Type.Valid() {
		return GridResult{}, fmt.Errorf("%w: %q", ErrInvalidEvent, ev.Type)
	}
	sess, err := s.session(id)
	if err != nil {
		return GridResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.engine.Dispatch(ev)
	if err := s.refresh(ctx, sess); err != nil {
		return GridResult{}, err
	}
	return sess.result(), nil
}

// UpdateProps replaces the caller-controlled values of a session.
func (s *Service) UpdateProps(ctx context.Context, id string, u PropsUpdate) (GridResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return GridResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p := &sess.props
	if u.Visibility != nil {
		p.Visibility = u.Visibility
	}
	if u.Filters != nil {
		p.Filters = u.Filters
	}
	if u.Selection != nil {
		p.Selection = u.Selection
	}
	if u.Sort != nil {
		p.Sort = *u.Sort
	}
	if u.Pagination != nil {
		pg := *u.Pagination
		p.Pagination = &pg
	}
	if u.ShowSelection != nil {
		p.ShowSelection = *u.ShowSelection
	}
	if u.ViewOnly != nil {
		p.ViewOnly = *u.ViewOnly
	}

	if u.Reload {
		if err := s.reload(ctx, sess); err != nil {
			return GridResult{}, err
		}
	}

	sess.engine.SetProps(sess.props)
	if err := s.refresh(ctx, sess); err != nil {
		return GridResult{}, err
	}
	return sess.result(), nil
}

// reload re-reads a session's table. Called with mu held.
func (s *Service) reload(ctx context.Context, sess *gridSession) error {
	if sess.server {
		sess.loaded = nil
		sess.stale = true
		return nil
	}
	rows, err := s.loadAll(ctx, sess.def)
	if errors.Is(err, ErrRowLimitExceeded) {
		s.logger.Info("table outgrew client mode, serving pages", "table", sess.def.Info.Key)
		sess.props.Data = nil
		sess.useServerMode()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload %s: %w", sess.def.Info.Key, err)
	}
	sess.props.Data = rows
	return nil
}

// SetContainerWidth records the observed container width of a session.
func (s *Service) SetContainerWidth(ctx context.Context, id string, width int) (GridResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return GridResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.engine.SetContainerWidth(width)
	return sess.result(), nil
}

// FilterOptions lists the filter menu entries of a column. Server-mode
// options come from the whole table rather than the loaded page, and
// their counts are not tallied.
func (s *Service) FilterOptions(ctx context.Context, id, columnID, query string) ([]grid.FilterOption, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if !sess.server {
		opts := sess.engine.FilterOptions(columnID, query)
		sess.mu.Unlock()
		return opts, nil
	}
	filterable := sess.engine.Registry().Filterable(columnID)
	var selected []any
	if f, ok := sess.engine.State().Filters.Get(columnID); ok {
		selected = f.Values
	}
	def := sess.def
	sess.mu.Unlock()

	if !filterable {
		return nil, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	values, err := s.source.Distinct(ctx, def, columnID, s.cfg.MaxFilterOptions)
	if err != nil {
		return nil, fmt.Errorf("filter options %s.%s: %w", def.Info.Key, columnID, err)
	}
	return grid.DistinctValues(values, selected, query), nil
}

// UpdateCell applies a cell edit to the session's dataset. Text values
// are parsed with the column's field type. Edits live in the session
// only; a server-mode page fetch replaces them.
func (s *Service) UpdateCell(ctx context.Context, id string, row int, columnID string, value any) (GridResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return GridResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	spec, ok := sess.def.Spec(columnID)
	if !ok {
		return GridResult{}, fmt.Errorf("%w: unknown column %q", ErrEditRejected, columnID)
	}
	if text, isText := value.(string); isText {
		value, err = CellFromText(text, spec)
		if err != nil {
			return GridResult{}, fmt.Errorf("%w: %v", ErrEditRejected, err)
		}
	}
	if !sess.engine.UpdateCell(row, columnID, value) {
		return GridResult{}, fmt.Errorf("%w: row %d", ErrEditRejected, row)
	}

	data := slices.Clone(sess.props.Data)
	edited := maps.Clone(data[row])
	edited[columnID] = value
	data[row] = edited
	sess.props.Data = data
	sess.engine.SetProps(sess.props)

	return sess.result(), nil
}

// RunAction runs a row action against the session's selected rows.
func (s *Service) RunAction(ctx context.Context, id, label string) (ActionResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return ActionResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.actionRows = nil
	if !sess.engine.RunAction(label) {
		for _, a := range sess.engine.Actions() {
			if a.Label == label {
				return ActionResult{}, fmt.Errorf("%w: %s", ErrActionDisabled, label)
			}
		}
		return ActionResult{}, fmt.Errorf("%w: %s", ErrActionNotFound, label)
	}

	s.logger.Info("grid action", "session", id, "table", sess.def.Info.Key,
		"action", label, "rows", len(sess.actionRows), "ip", ClientFromContext(ctx).IPAddress)
	return ActionResult{Table: sess.def.Info.Key, Label: label, Columns: sess.def.Info.Columns, Rows: sess.actionRows}, nil
}

// CloseGrid discards a session.
func (s *Service) CloseGrid(id string) error {
	if _, ok := s.sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.sessions.Delete(id)
	return nil
}

// session looks up a session and extends its lifetime.
func (s *Service) session(id string) (*gridSession, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess := v.(*gridSession)
	s.sessions.SetDefault(id, sess)
	return sess, nil
}

// refresh re-fetches a server-mode page until the engine's page request
// matches the loaded one. Called with mu held.
func (s *Service) refresh(ctx context.Context, sess *gridSession) error {
	if !sess.server {
		return nil
	}
	for range maxRefreshPasses {
		if !sess.stale {
			return nil
		}
		sess.stale = false
		req := sess.pageRequest()
		if !sess.needsFetch(req) {
			return nil
		}
		res, err := s.loadPage(ctx, sess.def, req)
		if err != nil {
			sess.stale = true
			return err
		}
		sess.applyPage(req, res)
	}
	return nil
}

// loadAll reads a whole table for client mode. Concurrent loads of the
// same table share one query.
func (s *Service) loadAll(ctx context.Context, def TableDefinition) ([]TableRow, error) {
	v, err, shared := s.flight.Do("all:"+def.Info.Key, func() (any, error) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
		return s.source.LoadAll(ctx, def, s.cfg.MaxClientRows)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared table load", "table", def.Info.Key)
	}
	return v.([]TableRow), nil
}

// loadPage fetches one server-mode page. Identical concurrent requests
// share one query.
func (s *Service) loadPage(ctx context.Context, def TableDefinition, req PageRequest) (PageResult, error) {
	key, err := json.Marshal(req)
	if err != nil {
		return PageResult{}, fmt.Errorf("encode page request: %w", err)
	}

	v, err, _ := s.flight.Do("page:"+def.Info.Key+":"+string(key), func() (any, error) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
		return s.source.LoadPage(ctx, def, req)
	})
	if err != nil {
		return PageResult{}, fmt.Errorf("load page %s: %w", def.Info.Key, err)
	}
	return v.(PageResult), nil
}
