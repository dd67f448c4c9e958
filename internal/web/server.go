// Package web provides the HTTP server and handlers for hosted grids.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/web/middleware"
)

// Server is the HTTP server for grid sessions.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).Middleware)
	}
	s.router.Use(middleware.ClientContext)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/grids/{gridID}", s.handleGridPage)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/tables", s.handleListTables)

		r.Route("/grids", func(r chi.Router) {
			open := http.HandlerFunc(s.handleOpenGrid)
			if s.cfg.Rate.Enabled {
				r.With(middleware.NewRateLimiter(s.cfg.Rate.OpenLimit, time.Minute).Middleware).Post("/", open)
			} else {
				r.Post("/", open)
			}

			r.Route("/{gridID}", func(r chi.Router) {
				r.Get("/", s.handleGetGrid)
				r.Delete("/", s.handleCloseGrid)
				r.Post("/events", s.handleDispatch)
				r.Put("/props", s.handleUpdateProps)
				r.Put("/width", s.handleSetWidth)
				r.Put("/cells", s.handleUpdateCell)
				r.Get("/options/{columnID}", s.handleFilterOptions)
				r.Post("/actions/{label}", s.handleRunAction)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")
			// Prevent clickjacking
			h.Set("X-Frame-Options", "DENY")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
