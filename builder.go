package permflow

import (
	"errors"

	"github.com/MrEthical07/permflow/internal/stores"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by permflow APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	gateway   Gateway
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis selects the Redis-backed session store and undo cache, for
// deployments where the workflow must survive a process restart or span
// multiple front-end instances. Without it, both stores are in-memory.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithGateway describes the withgateway operation and its observable behavior.
//
// WithGateway may return an error when input validation, dependency calls, or security checks fail.
// WithGateway does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithGateway(gw Gateway) *Builder {
	b.gateway = gw
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.gateway == nil {
		return nil, errors.New("entity gateway is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	var (
		sessionStore stores.SessionStore
		undoStore    stores.UndoStore
	)
	if b.redis != nil {
		sessionStore = stores.NewRedisSessionStore(b.redis, b.config.Session.RedisPrefix, b.config.Session.IdleTTL)
		undoStore = stores.NewRedisUndoStore(b.redis, b.config.Undo.RedisPrefix)
	} else {
		sessionStore = stores.NewMemorySessionStore(b.config.Session.IdleTTL, b.config.Session.SweepInterval)
		undoStore = stores.NewMemoryUndoStore(b.config.Undo.SweepInterval)
	}

	engine := &Engine{
		config:   b.config,
		gateway:  b.gateway,
		sessions: sessionStore,
		undo:     undoStore,
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:  NewMetrics(b.config.Metrics),
	}

	b.built = true
	return engine, nil
}
