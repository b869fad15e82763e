// Package config loads datatable settings from environment variables. Values
// have defaults and are validated on startup; command-line flags override
// them.
package config

import (
	"strconv"
	"time"
)

// Config holds all settings.
type Config struct {
	Server  ServerConfig
	Source  SourceConfig
	Table   TableConfig
	Logging LoggingConfig
}

// ServerConfig holds the serve command's HTTP settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"DATATABLE_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"DATATABLE_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"DATATABLE_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"DATATABLE_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"DATATABLE_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"DATATABLE_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"DATATABLE_REQUEST_TIMEOUT" default:"30s"`

	// SessionTTL is how long an idle browser session keeps its table (default: 30m)
	SessionTTL time.Duration `env:"DATATABLE_SESSION_TTL" default:"30m"`

	// MaxSessions caps live sessions; the least recently seen is evicted (default: 1000)
	MaxSessions int `env:"DATATABLE_MAX_SESSIONS" default:"1000"`
}

// SourceConfig says where records come from.
type SourceConfig struct {
	// Path is a file path, "-" for stdin, or a postgres:// DSN.
	Path string `env:"DATATABLE_SOURCE" envAlt:"DATABASE_URL"`

	// Format overrides the record format inferred from Path (csv, json, yaml).
	Format string `env:"DATATABLE_SOURCE_FORMAT"`

	// Query is the SQL run against a postgres source.
	Query string `env:"DATATABLE_QUERY"`

	// Schema is an optional YAML or JSON column schema file.
	Schema string `env:"DATATABLE_SCHEMA"`

	// Timeout bounds loading the source (default: 30s)
	Timeout time.Duration `env:"DATATABLE_SOURCE_TIMEOUT" default:"30s"`
}

// TableConfig holds the render settings.
type TableConfig struct {
	Sort        string `env:"DATATABLE_SORT"`
	GroupBy     string `env:"DATATABLE_GROUP_BY"`
	Indexed     bool   `env:"DATATABLE_INDEXED" default:"false"`
	NoHeader    bool   `env:"DATATABLE_NO_HEADER" default:"false"`
	Placeholder string `env:"DATATABLE_PLACEHOLDER" default:"No rows"`
	Format      string `env:"DATATABLE_FORMAT" default:"table"`
	Border      string `env:"DATATABLE_BORDER" default:"rounded"`
	Title       string `env:"DATATABLE_TITLE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
