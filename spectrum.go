package spectrum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/spectrum/internal/config"
	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/internal/runtime"
	"github.com/aretw0/spectrum/pkg/adapters/file"
	loamAdapter "github.com/aretw0/spectrum/pkg/adapters/loam"
	"github.com/aretw0/spectrum/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/spectrum/pkg/adapters/redis"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/observability"
	"github.com/aretw0/spectrum/pkg/persistence/middleware"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/aretw0/spectrum/pkg/ports"
	"github.com/aretw0/spectrum/pkg/preferences"
	"github.com/aretw0/spectrum/pkg/session"
)

// Re-exported types for library consumers.
type (
	Snapshot     = domain.Snapshot
	Mutation     = domain.Mutation
	Preset       = domain.Preset
	Gradient     = domain.Gradient
	Notification = domain.Notification

	Synchronizer       = runtime.Synchronizer
	SynchronizerConfig = runtime.Config
	SynchronizerOption = runtime.Option
	Subscription       = runtime.Subscription
)

// NewSynchronizer creates a standalone synchronizer, for hosts that embed a
// single gradient editor without sessions.
func NewSynchronizer(cfg SynchronizerConfig, opts ...SynchronizerOption) (*Synchronizer, error) {
	return runtime.NewSynchronizer(cfg, opts...)
}

// Engine is the high-level entry point for the Spectrum library.
// It wires persistence, presets, the mutation pipeline and metrics around a
// session manager.
type Engine struct {
	manager *session.Manager
	store   ports.GradientStore
	catalog ports.PresetCatalog
	metrics *observability.Metrics
	prefs   *preferences.Context
	logger  *slog.Logger

	hooks        domain.LifecycleHooks
	middlewares  []middleware.Middleware
	interceptors []pipeline.Interceptor
	locker       ports.DistributedLocker
	lockTTL      time.Duration
	closers      []func() error
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the backing store (default: in-memory).
func WithStore(store ports.GradientStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithCatalog sets the preset catalog (default: built-in presets).
func WithCatalog(catalog ports.PresetCatalog) Option {
	return func(e *Engine) {
		e.catalog = catalog
	}
}

// WithStoreMiddleware wraps the store. The first middleware is the outermost.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) {
		e.middlewares = append(e.middlewares, mws...)
	}
}

// WithInterceptors appends mutation interceptors after the built-in ones.
func WithInterceptors(interceptors ...pipeline.Interceptor) Option {
	return func(e *Engine) {
		e.interceptors = append(e.interceptors, interceptors...)
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics records Prometheus metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithPreferences attaches a UI preferences context.
func WithPreferences(prefs *preferences.Context) Option {
	return func(e *Engine) {
		e.prefs = prefs
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// withCloser registers cleanup for resources the engine opened itself.
func withCloser(fn func() error) Option {
	return func(e *Engine) {
		e.closers = append(e.closers, fn)
	}
}

// New initializes a new Spectrum Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.catalog == nil {
		eng.catalog = memory.NewBuiltinCatalog()
	}
	if eng.prefs == nil {
		eng.prefs = preferences.New(preferences.WithLogger(eng.logger))
	}

	store := middleware.Chain(eng.store, eng.middlewares...)

	chain := pipeline.NewChain(pipeline.Sanitize(), pipeline.Logging(eng.logger))
	hooks := []domain.LifecycleHooks{eng.hooks}
	if eng.metrics != nil {
		chain.Use(eng.metrics.Interceptor())
		hooks = append(hooks, eng.metrics.Hooks())
	}
	chain.Use(eng.interceptors...)

	mgrOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithCatalog(eng.catalog),
		session.WithPipeline(chain),
		session.WithLifecycleHooks(domain.MergeHooks(hooks...)),
	}
	if eng.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(eng.locker))
		if eng.lockTTL > 0 {
			mgrOpts = append(mgrOpts, session.WithLockTTL(eng.lockTTL))
		}
	}
	eng.manager = session.NewManager(store, mgrOpts...)

	if eng.metrics != nil {
		eng.metrics.RegisterLiveSessions(eng.manager.Live)
	}
	return eng, nil
}

// FromConfig builds an Engine from resolved configuration. Explicit options
// are applied after the configured ones.
func FromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	var base []Option

	switch cfg.Store.Driver {
	case config.DriverFile:
		base = append(base, WithStore(file.New(cfg.Store.Path)))
	case config.DriverRedis:
		var storeOpts []redisAdapter.Option
		if cfg.Store.Prefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(cfg.Store.Prefix))
		}
		if cfg.Store.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Store.TTL))
		}
		store := redisAdapter.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, storeOpts...)
		base = append(base, WithStore(store), withCloser(store.Close))
		if cfg.Store.Lock {
			base = append(base, WithLocker(redisAdapter.NewLocker(store.Client(), cfg.Store.Prefix), cfg.Store.LockTTL))
		}
	}

	switch cfg.Presets.Source {
	case config.SourceFile:
		base = append(base, WithCatalog(file.NewCatalog(cfg.Presets.Path)))
	case config.SourceLoam:
		catalog, err := loamAdapter.Open(cfg.Presets.Path)
		if err != nil {
			return nil, err
		}
		base = append(base, WithCatalog(catalog))
	}

	active, fallbacks, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	// Redaction runs before encryption so masked values are what gets sealed.
	if len(cfg.Security.RedactKeys) > 0 {
		pii, err := middleware.ParsePIIMiddleware(cfg.Security.RedactKeys)
		if err != nil {
			return nil, err
		}
		base = append(base, WithStoreMiddleware(pii))
	}
	if active != nil {
		base = append(base, WithStoreMiddleware(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})))
	}

	var prefOpts []preferences.Option
	if lang, err := preferences.ParseLanguage(cfg.Language); err == nil {
		prefOpts = append(prefOpts, preferences.WithLanguage(lang))
	}
	if theme, err := preferences.ParseTheme(cfg.Theme); err == nil {
		prefOpts = append(prefOpts, preferences.WithTheme(theme))
	}
	base = append(base, WithPreferences(preferences.New(prefOpts...)))

	return New(append(base, opts...)...)
}

// Manager exposes the session manager for adapters.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}

// Catalog returns the configured preset catalog.
func (e *Engine) Catalog() ports.PresetCatalog {
	return e.catalog
}

// Metrics returns the metrics collectors, or nil when metrics are disabled.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Preferences returns the UI preferences context.
func (e *Engine) Preferences() *preferences.Context {
	return e.prefs
}

// Open starts or resumes a session.
func (e *Engine) Open(ctx context.Context, sessionID string, cfg session.OpenConfig) (*Snapshot, error) {
	return e.manager.Open(ctx, sessionID, cfg)
}

// Get returns the current snapshot of a session.
func (e *Engine) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	return e.manager.Get(ctx, sessionID)
}

// Apply runs a mutation through the pipeline and persists the result.
func (e *Engine) Apply(ctx context.Context, sessionID string, mut Mutation) (*session.Result, error) {
	return e.manager.Apply(ctx, sessionID, mut)
}

// Subscribe receives every session notification.
func (e *Engine) Subscribe(fn func(Notification)) Subscription {
	return e.manager.Subscribe(fn)
}

// Render serializes colors and direction without a session. Missing values take defaults.
func Render(colors []string, direction string) (string, error) {
	g := domain.NewGradient(colors, direction)
	if err := g.Validate(); err != nil {
		return "", err
	}
	return g.Expression(), nil
}

// Close disposes live sessions, preferences and any resources the engine opened.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if err := e.manager.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	e.prefs.Dispose()
	for _, fn := range e.closers {
		if err := fn(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	return errors.Join(errs...)
}
