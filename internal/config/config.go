// Package config provides centralized configuration management for the application.
// It loads configuration from defaults, an optional YAML file and environment
// variables, and validates the result to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Convert  ConvertConfig  `yaml:"convert"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ConvertConfig holds CSV to PREMIS mapping settings.
type ConvertConfig struct {
	// PreserveObjectOrder writes objects in input order instead of reversed (default: false)
	PreserveObjectOrder bool `yaml:"preserve_object_order" env:"PREMIS_PRESERVE_OBJECT_ORDER" default:"false"`

	// Indent is the number of spaces per XML nesting level (default: 2)
	Indent int `yaml:"indent" env:"PREMIS_INDENT" default:"2"`

	// OutputName is the file written next to the objects table when no output is given
	OutputName string `yaml:"output_name" env:"PREMIS_OUTPUT_NAME" default:"premis.xml"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `yaml:"host" env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxConcurrent is the number of conversions allowed to run at once (default: 4)
	MaxConcurrent int `yaml:"max_concurrent" env:"SERVER_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a request waits for a conversion slot (default: 30s)
	MaxWait time.Duration `yaml:"max_wait" env:"SERVER_MAX_WAIT" default:"30s"`

	// MaxUploadSize caps the combined size of both uploaded tables in bytes (default: 32MB)
	MaxUploadSize int64 `yaml:"max_upload_size" env:"SERVER_MAX_UPLOAD_SIZE" default:"33554432"`
}

// DatabaseConfig holds run ledger settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty disables the run ledger
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `yaml:"min_conns" env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// LedgerEnabled reports whether conversions are recorded in PostgreSQL.
func (c *DatabaseConfig) LedgerEnabled() bool {
	return c.URL != ""
}
