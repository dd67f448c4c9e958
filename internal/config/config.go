// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Grid     GridConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
// Without a URL the server serves tables seeded from CSV files.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// GridConfig holds table loading and layout settings.
type GridConfig struct {
	// SeedDir is the CSV folder used when no database is configured (default: data)
	SeedDir string `env:"GRID_SEED_DIR" default:"data"`

	// PageSize is the initial page size of new grids (default: 10)
	PageSize int `env:"GRID_PAGE_SIZE" default:"10"`

	// PageSizes are the choices offered by the page size menu
	PageSizes []int `env:"GRID_PAGE_SIZES" default:"5,10,20,50,100"`

	// MaxClientRows is the largest table loaded whole; larger tables
	// are paginated by the database (default: 10000)
	MaxClientRows int `env:"GRID_MAX_CLIENT_ROWS" default:"10000"`

	// MaxFilterOptions caps the distinct values listed in a server-side
	// filter menu (default: 1000)
	MaxFilterOptions int `env:"GRID_MAX_FILTER_OPTIONS" default:"1000"`

	// MaxConcurrentFetches is the maximum number of parallel table loads (default: 8)
	MaxConcurrentFetches int `env:"GRID_MAX_CONCURRENT_FETCHES" default:"8"`

	// FetchWaitTime is how long to wait for a load slot (default: 10s)
	FetchWaitTime time.Duration `env:"GRID_FETCH_WAIT_TIME" default:"10s"`

	// ColumnWidth, MinColumnWidth and SelectionWidth are pixel defaults
	// for columns that declare none.
	ColumnWidth    int `env:"GRID_COLUMN_WIDTH" default:"150"`
	MinColumnWidth int `env:"GRID_MIN_COLUMN_WIDTH" default:"100"`
	SelectionWidth int `env:"GRID_SELECTION_WIDTH" default:"40"`
}

// SessionConfig holds grid session lifetime settings.
type SessionConfig struct {
	// TTL is how long an idle grid session is kept (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// CleanupInterval is how often expired sessions are purged (default: 5m)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" default:"5m"`

	// MaxSessions is the maximum number of open grids (default: 1000)
	MaxSessions int `env:"SESSION_MAX" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// OpenLimit is requests per minute for opening grids (default: 30)
	OpenLimit int `env:"RATE_LIMIT_OPEN" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enables X-API-Key authentication on API routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
