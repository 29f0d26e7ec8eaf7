// Package config provides connection configuration for the database clients.
// Parameters are loaded from defaults, an optional YAML file and environment
// variables, then validated before any client is constructed.
package config

import (
	"fmt"
	"time"
)

// Default connection values applied when a source does not set them.
const (
	DefaultPort              = 5432
	DefaultMaxConns          = 10
	DefaultMaxIdleConns      = 5
	DefaultConnMaxLifetime   = time.Hour
	DefaultConnMaxIdleTime   = 30 * time.Minute
	DefaultConnectRetries    = 12
	DefaultConnectRetryDelay = 5 * time.Second
	DefaultConnectTimeout    = 10 * time.Second
)

// ConnectionParameters describes how to reach one PostgreSQL instance.
// Treat values as immutable once constructed: clients copy them at
// construction time and never write them back.
type ConnectionParameters struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"gt=0,lte=65535"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Database string `koanf:"database" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// Pool tuning. Only the blocking client uses idle settings; the pool
	// client maps MaxConns onto pgxpool's MaxConns.
	MaxConns        int           `koanf:"max_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// Dial behaviour.
	ConnectRetries    int           `koanf:"connect_retries" validate:"gte=0"`
	ConnectRetryDelay time.Duration `koanf:"connect_retry_delay"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout"`
}

// String renders the parameters for diagnostics with the password redacted.
func (p ConnectionParameters) String() string {
	return fmt.Sprintf("postgres://%s:[REDACTED]@%s:%d/%s", p.User, p.Host, p.Port, p.Database)
}

// LogFields returns the parameters as structured log fields.
// The password is intentionally absent.
func (p ConnectionParameters) LogFields() map[string]any {
	return map[string]any{
		"host":     p.Host,
		"port":     p.Port,
		"user":     p.User,
		"database": p.Database,
	}
}
