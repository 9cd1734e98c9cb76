package permflow

import (
	"errors"
	"time"

	"github.com/MrEthical07/permflow/catalog"
)

// Config defines a public type used by permflow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session SessionConfig
	Undo    UndoConfig
	Catalog CatalogConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by permflow APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	// IdleTTL is the sliding lifetime of an untouched edit session.
	IdleTTL time.Duration
	// SweepInterval bounds how often the in-memory store reaps orphaned
	// sessions. Ignored by the Redis store, which relies on key TTLs.
	SweepInterval time.Duration
}

/*
====================================
UNDO CONFIG
====================================
*/

// UndoConfig defines a public type used by permflow APIs.
//
// UndoConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UndoConfig struct {
	RedisPrefix string
	// TTL is the window during which an applied change can be reversed.
	TTL           time.Duration
	SweepInterval time.Duration
}

/*
====================================
CATALOG CONFIG
====================================
*/

// CatalogConfig defines a public type used by permflow APIs.
//
// CatalogConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CatalogConfig struct {
	// PageSize caps the entries per selectable page. The front end's
	// multi-select control allows at most catalog.DefaultPageSize options.
	PageSize int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by permflow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by permflow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix:   "pfs",
			IdleTTL:       15 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
		Undo: UndoConfig{
			RedisPrefix:   "pfu",
			TTL:           45 * time.Second,
			SweepInterval: 5 * time.Second,
		},
		Catalog: CatalogConfig{
			PageSize: catalog.DefaultPageSize,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Session.IdleTTL <= 0 {
		return errors.New("session idle ttl must be positive")
	}
	if cfg.Undo.TTL <= 0 {
		return errors.New("undo ttl must be positive")
	}
	if cfg.Catalog.PageSize < 1 || cfg.Catalog.PageSize > catalog.DefaultPageSize {
		return errors.New("catalog page size must be between 1 and 25")
	}
	if cfg.Session.RedisPrefix == "" || cfg.Undo.RedisPrefix == "" {
		return errors.New("redis prefixes must not be empty")
	}
	if cfg.Session.RedisPrefix == cfg.Undo.RedisPrefix {
		return errors.New("session and undo redis prefixes must differ")
	}
	return nil
}
