package campusauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/stellarmin/campusauth/batch"
	"github.com/stellarmin/campusauth/gateway"
	"github.com/stellarmin/campusauth/jwt"
	"github.com/stellarmin/campusauth/password"
	"github.com/stellarmin/campusauth/session"
)

// Builder defines a public type used by campusauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	store     RecordStore
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. The value is cloned.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the Redis client backing the session store. Without
// one, the engine resolves identities but cannot create sessions.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithRecordStore replaces the built-in record gateway. The store must
// already enforce its own table allow-list.
func (b *Builder) WithRecordStore(store RecordStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the destination for audit events. Only consulted when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires every subsystem, and returns a
// ready Engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier := batch.NewClassifier(cfg.Intake.Prefix, cfg.Intake.Codes)
	router := batch.NewRouter(cfg.Tables.Batches)

	store := b.store
	if store == nil {
		if cfg.Store.BaseURL == "" {
			return nil, errors.New("record store base URL required")
		}
		client, err := gateway.New(gateway.Config{
			BaseURL: cfg.Store.BaseURL,
			APIKey:  cfg.Store.APIKey,
			Timeout: cfg.Store.Timeout,
		}, allowedTables(cfg.Tables))
		if err != nil {
			return nil, err
		}
		store = client
	}

	hasher, err := password.NewPBKDF2(password.Config{
		Iterations: cfg.Password.Iterations,
		SaltLength: cfg.Password.SaltLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		classifier: classifier,
		router:     router,
		store:      store,
		hasher:     hasher,
	}

	if b.redis != nil {
		engine.sessions = session.NewStore(
			b.redis,
			cfg.Session.RedisPrefix,
			cfg.Session.TTL,
			cfg.Session.SlidingExpiration,
		)
	}

	if cfg.JWT.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			AccessTTL:     cfg.JWT.AccessTTL,
			SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
			PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
			PublicKey:     cloneBytes(cfg.JWT.PublicKey),
			Issuer:        cfg.JWT.Issuer,
			Leeway:        cfg.JWT.Leeway,
		})
		if err != nil {
			return nil, err
		}
		engine.jwtManager = jm
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

// allowedTables collects every table the configuration names. The gateway
// refuses anything outside this set, so a routing bug cannot reach an
// unconfigured table.
func allowedTables(t TablesConfig) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range t.Batches.Students {
		add(name)
	}
	for _, name := range t.Batches.Marks {
		add(name)
	}
	for _, name := range t.Batches.Attendance {
		add(name)
	}
	add(t.Teachers)
	add(t.Admins)
	add(t.Grades)
	add(t.Events)
	add(t.Holidays)

	return out
}
