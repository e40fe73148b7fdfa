package database

import (
	"fmt"
	"net/url"
	"time"
)

// AccessSQL and AccessORM select which repository implementation the scrapper
// uses on top of the shared connection pool.
const (
	AccessSQL = "sql"
	AccessORM = "orm"
)

// Config holds database connection configuration. Defaults follow the local
// compose stack (Postgres published on 6577 with the tbank credentials).
type Config struct {
	// Host and Port locate the Postgres server.
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// User, Password, and Name form the connection credentials.
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`

	// Access selects the repository implementation: "sql" or "orm".
	Access string `mapstructure:"access"`

	// PageSize is the page size used by listing queries.
	PageSize int `mapstructure:"page_size"`

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h").
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// AutoMigrate controls whether GORM auto-migration runs on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// SlowQueryThreshold is the duration above which queries log as slow.
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// LogLevel controls GORM query logging: silent, error, warn, info.
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6577
	}
	if c.User == "" {
		c.User = "tbank"
	}
	if c.Password == "" {
		c.Password = "tbank"
	}
	if c.Name == "" {
		c.Name = "tbank"
	}
	if c.Access == "" {
		c.Access = AccessSQL
	}
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Access != AccessSQL && c.Access != AccessORM {
		return fmt.Errorf("database.access must be %q or %q (got: %s)", AccessSQL, AccessORM, c.Access)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("database.conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.SlowQueryThreshold); err != nil {
		return fmt.Errorf("database.slow_query_threshold: %w", err)
	}
	return nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name)
}
