package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/internal/runtime"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/aretw0/spectrum/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// liveSession is a hydrated synchronizer and the host data bound to it.
type liveSession struct {
	sync     *runtime.Synchronizer
	metadata map[string]string
}

// OpenConfig holds the initial inputs of a new session.
type OpenConfig struct {
	Colors    []string
	Direction string
	Compact   bool
	// Metadata binds the gradient to a host record (e.g. "record": "product/42").
	Metadata map[string]string
}

// Result is the outcome of Apply.
type Result struct {
	Snapshot *domain.Snapshot
	// Applied is false when the mutation left the committed state untouched
	// (guarded removal, invalid draft, unchanged reconfiguration).
	Applied bool
}

// Manager orchestrates gradient sessions, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.GradientStore
	catalog ports.PresetCatalog
	chain   *pipeline.Chain
	hooks   domain.LifecycleHooks

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	liveMu sync.Mutex
	live   map[string]*liveSession

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	notifications runtime.Channel[domain.Notification]
	now           func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking. With a locker configured the Manager
// reloads a session from the store on every access, since another replica may have changed it.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCatalog sets the preset source used by preset mutations.
func WithCatalog(catalog ports.PresetCatalog) Option {
	return func(m *Manager) {
		m.catalog = catalog
	}
}

// WithPipeline sets the interceptor chain applied to every mutation.
func WithPipeline(chain *pipeline.Chain) Option {
	return func(m *Manager) {
		m.chain = chain
	}
}

// WithLifecycleHooks registers hooks passed to every synchronizer the Manager hydrates.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithClock overrides the time source of snapshots.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.GradientStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*liveSession),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open loads a session, creating it from cfg when it does not exist yet.
// An empty sessionID gets a random UUID. Metadata in cfg is merged into an existing session.
func (m *Manager) Open(ctx context.Context, sessionID string, cfg OpenConfig) (*domain.Snapshot, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ls, err := m.hydrate(ctx, sessionID)
		switch {
		case err == nil:
			if len(cfg.Metadata) == 0 {
				snap = m.snapshot(sessionID, ls)
				return nil
			}
			if ls.metadata == nil {
				ls.metadata = make(map[string]string, len(cfg.Metadata))
			}
			maps.Copy(ls.metadata, cfg.Metadata)
		case errors.Is(err, domain.ErrSessionNotFound):
			ls, err = m.attach(sessionID, runtime.Config{
				Colors:    cfg.Colors,
				Direction: cfg.Direction,
				Compact:   cfg.Compact,
			}, cfg.Metadata)
			if err != nil {
				return err
			}
			m.logger.Info("session created", "session_id", sessionID)
		default:
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		snap = m.snapshot(sessionID, ls)
		if err := m.store.Save(ctx, sessionID, snap); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	return snap, err
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ls, err := m.hydrate(ctx, sessionID)
		if err != nil {
			return err
		}
		snap = m.snapshot(sessionID, ls)
		return nil
	})
	return snap, err
}

// Apply runs mutation through the pipeline, applies it to the session's synchronizer
// and persists the resulting snapshot.
func (m *Manager) Apply(ctx context.Context, sessionID string, mutation domain.Mutation) (*Result, error) {
	req := &pipeline.Request{SessionID: sessionID, Mutation: mutation}
	if err := m.chain.Transform(ctx, req); err != nil {
		return nil, m.chain.HandleError(ctx, req, err)
	}

	res := &Result{}
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ls, err := m.hydrate(ctx, sessionID)
		if err != nil {
			return err
		}

		res.Applied, err = m.dispatch(ctx, ls.sync, req.Mutation)
		if err != nil {
			return err
		}

		res.Snapshot = m.snapshot(sessionID, ls)
		if err := m.store.Save(ctx, sessionID, res.Snapshot); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, m.chain.HandleError(ctx, req, err)
	}
	return res, nil
}

func (m *Manager) dispatch(ctx context.Context, s *runtime.Synchronizer, mut domain.Mutation) (bool, error) {
	switch mut.Kind {
	case domain.MutationAdd:
		return true, s.AddColor(mut.Token)
	case domain.MutationRemove:
		return s.RemoveAt(mut.Index), nil
	case domain.MutationSet:
		return s.SetColor(mut.Index, mut.Token)
	case domain.MutationDirection:
		return true, s.SetDirection(mut.Direction)
	case domain.MutationReplace:
		return true, s.ReplaceColors(mut.Tokens)
	case domain.MutationPreset:
		if m.catalog == nil {
			return false, fmt.Errorf("%w: %s (no catalog configured)", domain.ErrPresetNotFound, mut.Preset)
		}
		p, err := m.catalog.Get(ctx, mut.Preset)
		if err != nil {
			return false, err
		}
		return true, s.ApplyPreset(p)
	case domain.MutationReconfigure:
		return s.Reconfigure(mut.Tokens, mut.Direction)
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownMutation, mut.Kind)
	}
}

// Close disposes the live synchronizer of a session. The stored snapshot is kept.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.evict(sessionID)
		return nil
	})
}

// Delete disposes the session and removes it from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.evict(sessionID)
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying gradient store.
func (m *Manager) Store() ports.GradientStore {
	return m.store
}

// Catalog returns the configured preset catalog, which may be nil.
func (m *Manager) Catalog() ports.PresetCatalog {
	return m.catalog
}

// Live returns the number of hydrated sessions.
func (m *Manager) Live() int {
	m.liveMu.Lock()
	defer m.liveMu.Unlock()
	return len(m.live)
}

// Subscribe registers fn for every channel emission of every live session.
// Handlers run on the mutating goroutine while the session lock is held and must not block.
func (m *Manager) Subscribe(fn func(domain.Notification)) runtime.Subscription {
	return m.notifications.Subscribe(fn)
}

// Shutdown disposes every live synchronizer and drops all subscribers.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.liveMu.Lock()
	ids := make([]string, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	m.liveMu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	m.notifications.Close()
	return errors.Join(errs...)
}

// hydrate returns the live session, loading it from the store when needed.
// The caller must hold the session lock.
func (m *Manager) hydrate(ctx context.Context, sessionID string) (*liveSession, error) {
	if m.locker == nil {
		m.liveMu.Lock()
		ls, ok := m.live[sessionID]
		m.liveMu.Unlock()
		if ok {
			return ls, nil
		}
	}

	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls, err := m.attach(sessionID, runtime.Config{
		Colors:    snap.Colors,
		Direction: snap.Direction,
		Compact:   snap.Compact,
		Drafts:    snap.Drafts,
	}, snap.Metadata)
	if err != nil {
		return nil, fmt.Errorf("stored session %s is corrupt: %w", sessionID, err)
	}
	return ls, nil
}

// attach builds, starts and registers a synchronizer. Emissions after start are broadcast.
func (m *Manager) attach(sessionID string, cfg runtime.Config, metadata map[string]string) (*liveSession, error) {
	s, err := runtime.NewSynchronizer(cfg,
		runtime.WithLogger(m.logger.With("session_id", sessionID)),
		runtime.WithLifecycleHooks(m.hooks),
		runtime.WithClock(m.now),
	)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}

	s.OnExpression(func(v string) { m.broadcast(sessionID, domain.ChannelExpression, v) })
	s.OnColors(func(v []string) { m.broadcast(sessionID, domain.ChannelColors, v) })
	s.OnDirection(func(v string) { m.broadcast(sessionID, domain.ChannelDirection, v) })

	ls := &liveSession{sync: s, metadata: maps.Clone(metadata)}

	m.liveMu.Lock()
	prev := m.live[sessionID]
	m.live[sessionID] = ls
	m.liveMu.Unlock()

	if prev != nil {
		prev.sync.Dispose()
	}
	return ls, nil
}

func (m *Manager) evict(sessionID string) {
	m.liveMu.Lock()
	ls, ok := m.live[sessionID]
	delete(m.live, sessionID)
	m.liveMu.Unlock()

	if ok {
		ls.sync.Dispose()
	}
}

func (m *Manager) broadcast(sessionID string, ch domain.Channel, value any) {
	m.notifications.Publish(domain.Notification{
		SessionID: sessionID,
		Channel:   ch,
		Value:     value,
	})
}

func (m *Manager) snapshot(sessionID string, ls *liveSession) *domain.Snapshot {
	snap := ls.sync.Snapshot()
	snap.SessionID = sessionID
	snap.Metadata = maps.Clone(ls.metadata)
	return snap
}
