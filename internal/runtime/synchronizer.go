package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/pkg/domain"
)

// Status is the lifecycle position of a Synchronizer.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusActive      Status = "active"
	StatusDisposed    Status = "disposed"
)

// Config holds the construction inputs of a Synchronizer.
type Config struct {
	Colors    []string
	Direction string
	// Compact is a presentation hint only; it never affects emissions.
	Compact bool
	// Drafts restores pending per-slot text. Ignored unless it matches Colors in length.
	Drafts []string
}

// Synchronizer keeps a color list and a direction consistent with the derived
// gradient expression, notifying observers on three change-detected channels.
//
// A Synchronizer is owned by a single surface and is not safe for concurrent use.
type Synchronizer struct {
	colors    []string
	drafts    []string
	direction string
	compact   bool
	status    Status

	memoKey   string
	memoExpr  string
	memoValid bool

	expression Channel[string]
	colorList  Channel[[]string]
	dir        Channel[string]
	last       emitted

	scheduler Scheduler
	pending   CancelFunc

	// flushing is set while observers run; re-entrant mutations mark the
	// notifier dirty and the outer flush delivers them after the current round.
	flushing   bool
	dirty      bool
	dirtyForce bool
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// emitted remembers the last value delivered on each channel.
type emitted struct {
	primed     bool
	expression string
	colors     string
	direction  string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Synchronizer) {
		s.hooks = hooks
	}
}

// WithScheduler sets how the first post-start emission is delivered (default: Immediate).
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Synchronizer) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSynchronizer creates a Synchronizer in the initialized state.
// Missing colors or direction fall back to the domain defaults.
func NewSynchronizer(cfg Config, opts ...Option) (*Synchronizer, error) {
	g := domain.NewGradient(cfg.Colors, cfg.Direction)
	if err := domain.ValidateColors(g.Colors); err != nil {
		return nil, fmt.Errorf("invalid initial colors: %w", err)
	}

	s := &Synchronizer{
		colors:    g.Colors,
		drafts:    slices.Clone(g.Colors),
		direction: g.Direction,
		compact:   cfg.Compact,
		status:    StatusInitialized,
		scheduler: Immediate{},
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	if len(cfg.Drafts) == len(g.Colors) {
		s.drafts = slices.Clone(cfg.Drafts)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start moves the synchronizer to active and schedules the first emission of all
// three channels. Calling Start again has no effect.
func (s *Synchronizer) Start() error {
	switch s.status {
	case StatusDisposed:
		return domain.ErrDisposed
	case StatusActive:
		return nil
	}

	s.status = StatusActive
	s.logger.Debug("synchronizer started", "expression", s.Expression())

	ran := false
	cancel := s.scheduler.Defer(func() {
		ran = true
		s.pending = nil
		s.flush(false)
	})
	if !ran {
		s.pending = cancel
	}
	return nil
}

// Dispose stops all further emissions, revokes a pending deferred emission and
// drops every subscription. It is idempotent.
func (s *Synchronizer) Dispose() {
	if s.status == StatusDisposed {
		return
	}
	s.status = StatusDisposed

	if s.pending != nil {
		s.pending()
		s.pending = nil
	}

	s.expression.Close()
	s.colorList.Close()
	s.dir.Close()

	s.logger.Debug("synchronizer disposed")
	if s.hooks.OnDispose != nil {
		s.hooks.OnDispose()
	}
}

// Status returns the lifecycle position.
func (s *Synchronizer) Status() Status {
	return s.status
}

// --- Subscriptions ---

// OnExpression subscribes to expression changes.
func (s *Synchronizer) OnExpression(fn func(string)) Subscription {
	return s.expression.Subscribe(fn)
}

// OnColors subscribes to color sequence changes. Handlers receive a private copy.
func (s *Synchronizer) OnColors(fn func([]string)) Subscription {
	return s.colorList.Subscribe(fn)
}

// OnDirection subscribes to direction changes.
func (s *Synchronizer) OnDirection(fn func(string)) Subscription {
	return s.dir.Subscribe(fn)
}

// --- Accessors ---

// Expression returns the derived gradient expression, memoized on the (colors, direction) snapshot.
func (s *Synchronizer) Expression() string {
	g := domain.Gradient{Colors: s.colors, Direction: s.direction}
	key := g.Key()
	if s.memoValid && s.memoKey == key {
		return s.memoExpr
	}
	s.memoKey = key
	s.memoExpr = g.Expression()
	s.memoValid = true
	return s.memoExpr
}

// Colors returns a copy of the committed color sequence.
func (s *Synchronizer) Colors() []string {
	return slices.Clone(s.colors)
}

// Drafts returns a copy of the per-slot pending text.
func (s *Synchronizer) Drafts() []string {
	return slices.Clone(s.drafts)
}

// Direction returns the current direction.
func (s *Synchronizer) Direction() string {
	return s.direction
}

// Compact returns the display hint supplied at construction.
func (s *Synchronizer) Compact() bool {
	return s.compact
}

// Gradient returns a copy of the committed state.
func (s *Synchronizer) Gradient() domain.Gradient {
	return domain.Gradient{Colors: s.Colors(), Direction: s.direction}
}

// Snapshot captures the current state. SessionID and Metadata are left to the host.
func (s *Synchronizer) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Colors:     s.Colors(),
		Drafts:     s.Drafts(),
		Direction:  s.direction,
		Expression: s.Expression(),
		Compact:    s.compact,
		UpdatedAt:  s.now(),
	}
}

// --- Color List Store ---

// AddColor appends token to the end of the list. An empty token appends DefaultNewColor.
func (s *Synchronizer) AddColor(token string) error {
	if s.status == StatusDisposed {
		return domain.ErrDisposed
	}
	if token == "" {
		token = domain.DefaultNewColor
	}
	if !domain.IsValidColor(token) {
		s.record(domain.MutationAdd, len(s.colors), false)
		return fmt.Errorf("%w: %q", domain.ErrInvalidColor, token)
	}

	s.colors = append(s.colors, token)
	s.drafts = append(s.drafts, token)
	s.record(domain.MutationAdd, len(s.colors)-1, true)
	s.flush(false)
	return nil
}

// RemoveAt removes the color at index when at least MinColors remain afterwards.
// Otherwise it is a silent no-op and reports false.
func (s *Synchronizer) RemoveAt(index int) bool {
	if s.status == StatusDisposed {
		return false
	}
	if index < 0 || index >= len(s.colors) || len(s.colors) <= domain.MinColors {
		s.record(domain.MutationRemove, index, false)
		return false
	}

	s.colors = slices.Delete(s.colors, index, index+1)
	s.drafts = slices.Delete(s.drafts, index, index+1)
	s.record(domain.MutationRemove, index, true)
	s.flush(false)
	return true
}

// SetColor stores token as the pending text of slot index and commits it only if
// it is a valid color. An invalid edit never reaches the derived expression.
func (s *Synchronizer) SetColor(index int, token string) (bool, error) {
	if s.status == StatusDisposed {
		return false, domain.ErrDisposed
	}
	if index < 0 || index >= len(s.colors) {
		return false, fmt.Errorf("%w: %d (len %d)", domain.ErrIndexOutOfRange, index, len(s.colors))
	}

	s.drafts[index] = token
	if !domain.IsValidColor(token) {
		s.logger.Debug("color draft held", "index", index, "token", token)
		s.record(domain.MutationSet, index, false)
		return false, nil
	}

	s.colors[index] = token
	s.record(domain.MutationSet, index, true)
	s.flush(false)
	return true, nil
}

// ReplaceColors swaps the entire sequence as one logical change, keeping the direction.
// Either every token is valid and the list is replaced, or nothing changes.
func (s *Synchronizer) ReplaceColors(tokens []string) error {
	return s.replace(domain.MutationReplace, tokens)
}

// ApplyPreset loads the preset colors, keeping the current direction.
func (s *Synchronizer) ApplyPreset(p domain.Preset) error {
	if err := s.replace(domain.MutationPreset, p.Colors); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return nil
}

func (s *Synchronizer) replace(kind domain.MutationKind, tokens []string) error {
	if s.status == StatusDisposed {
		return domain.ErrDisposed
	}
	if err := domain.ValidateColors(tokens); err != nil {
		s.record(kind, 0, false)
		return err
	}

	s.colors = slices.Clone(tokens)
	s.drafts = slices.Clone(tokens)
	s.record(kind, 0, true)
	s.flush(false)
	return nil
}

// --- Direction Selector ---

// SetDirection accepts any non-empty direction verbatim.
func (s *Synchronizer) SetDirection(direction string) error {
	if s.status == StatusDisposed {
		return domain.ErrDisposed
	}
	if direction == "" {
		s.record(domain.MutationDirection, 0, false)
		return domain.ErrEmptyDirection
	}

	s.direction = direction
	s.record(domain.MutationDirection, 0, true)
	s.flush(false)
	return nil
}

// --- Re-configuration ---

// Reconfigure pushes new initial inputs. If they differ structurally from the current
// state, the state is replaced atomically and all three channels are re-emitted.
func (s *Synchronizer) Reconfigure(colors []string, direction string) (bool, error) {
	if s.status == StatusDisposed {
		return false, domain.ErrDisposed
	}

	next := domain.NewGradient(colors, direction)
	if err := domain.ValidateColors(next.Colors); err != nil {
		s.record(domain.MutationReconfigure, 0, false)
		return false, err
	}
	if next.Equal(domain.Gradient{Colors: s.colors, Direction: s.direction}) {
		s.record(domain.MutationReconfigure, 0, false)
		return false, nil
	}

	s.colors = next.Colors
	s.drafts = slices.Clone(next.Colors)
	s.direction = next.Direction
	s.record(domain.MutationReconfigure, 0, true)
	s.flush(true)
	return true, nil
}

// --- Change Notifier ---

// flush emits every channel whose value differs from its last emission.
// force re-emits all three regardless. Until the deferred first emission has
// run, mutations only change state; that emission delivers the settled values.
func (s *Synchronizer) flush(force bool) {
	if s.status != StatusActive || s.pending != nil {
		return
	}
	if s.flushing {
		s.dirty = true
		s.dirtyForce = s.dirtyForce || force
		return
	}

	s.flushing = true
	defer func() { s.flushing = false }()
	for {
		s.dirty, s.dirtyForce = false, false
		s.notify(force)
		if !s.dirty || s.status != StatusActive {
			return
		}
		force = s.dirtyForce
	}
}

// notify runs one round of change detection over a snapshot of the current state.
func (s *Synchronizer) notify(force bool) {
	expr := s.Expression()
	colors := s.Colors()
	colorsKey := encodeColors(colors)
	direction := s.direction
	first := !s.last.primed
	s.last.primed = true

	if force || first || expr != s.last.expression {
		s.last.expression = expr
		s.emit(domain.ChannelExpression, expr, force)
		s.expression.Publish(expr)
	}
	if force || first || colorsKey != s.last.colors {
		s.last.colors = colorsKey
		s.emit(domain.ChannelColors, slices.Clone(colors), force)
		s.colorList.Publish(slices.Clone(colors))
	}
	if force || first || direction != s.last.direction {
		s.last.direction = direction
		s.emit(domain.ChannelDirection, direction, force)
		s.dir.Publish(direction)
	}
}

func (s *Synchronizer) emit(ch domain.Channel, value any, forced bool) {
	s.logger.Debug("emit", "channel", ch, "value", value, "forced", forced)
	if s.hooks.OnEmit != nil {
		s.hooks.OnEmit(&domain.EmitEvent{
			Timestamp: s.now(),
			Channel:   ch,
			Value:     value,
			Forced:    forced,
		})
	}
}

func (s *Synchronizer) record(kind domain.MutationKind, index int, applied bool) {
	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(&domain.MutationEvent{
			Timestamp: s.now(),
			Kind:      kind,
			Index:     index,
			Applied:   applied,
		})
	}
}

func encodeColors(colors []string) string {
	b, err := json.Marshal(colors)
	if err != nil {
		return fmt.Sprint(colors)
	}
	return string(b)
}
