package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct recursively populates struct fields from environment variables.
// Every bad or missing variable is reported, not only the first.
func loadStruct(v reflect.Value) error {
	var errs []error
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := lookupEnv(envName, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", envName))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", envName, value, err))
		}
	}

	return errors.Join(errs...)
}

// lookupEnv returns the first non-empty value of name or alt.
func lookupEnv(name, alt string) (string, bool) {
	if v := os.Getenv(name); v != "" {
		return v, true
	}
	if alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, true
		}
	}
	return "", false
}

// setField parses value into the field's type.
func setField(field reflect.Value, value string) error {
	switch ptr := field.Addr().Interface().(type) {
	case *string:
		*ptr = value
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		*ptr = d
	case *int:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		*ptr = i
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		*ptr = b
	case *[]string:
		*ptr = splitList(value)
	case *[]int:
		parts := splitList(value)
		out := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid integer list: %w", err)
			}
			out[i] = n
		}
		*ptr = out
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation (only when a database is configured)
	if c.Database.URL != "" {
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Grid validation
	if c.Grid.PageSize <= 0 {
		errs = append(errs, "GRID_PAGE_SIZE must be positive")
	}
	for _, n := range c.Grid.PageSizes {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("GRID_PAGE_SIZES entries must be positive, got %d", n))
			break
		}
	}
	if c.Grid.MaxClientRows < 0 {
		errs = append(errs, "GRID_MAX_CLIENT_ROWS must be non-negative")
	}
	if c.Grid.MaxConcurrentFetches <= 0 {
		errs = append(errs, "GRID_MAX_CONCURRENT_FETCHES must be positive")
	}
	if c.Grid.FetchWaitTime <= 0 {
		errs = append(errs, "GRID_FETCH_WAIT_TIME must be positive")
	}
	if c.Grid.MinColumnWidth <= 0 || c.Grid.ColumnWidth < c.Grid.MinColumnWidth {
		errs = append(errs, fmt.Sprintf("GRID_COLUMN_WIDTH (%d) must be >= GRID_MIN_COLUMN_WIDTH (%d) > 0",
			c.Grid.ColumnWidth, c.Grid.MinColumnWidth))
	}

	// Session validation
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		errs = append(errs, "SESSION_CLEANUP_INTERVAL must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, "SESSION_MAX must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.OpenLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_OPEN must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and API keys are masked.
func (c *Config) String() string {
	dbURL := "[NONE]"
	if c.Database.URL != "" {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		dbURL, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Grid: {PageSize: %d, MaxClientRows: %d, MaxConcurrentFetches: %d}, ",
		c.Grid.PageSize, c.Grid.MaxClientRows, c.Grid.MaxConcurrentFetches)
	fmt.Fprintf(&b, "Session: {TTL: %s, MaxSessions: %d}, ", c.Session.TTL, c.Session.MaxSessions)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
