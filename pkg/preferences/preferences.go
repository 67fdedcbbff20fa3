// Package preferences holds process-wide UI preferences (language, text direction,
// theme and a loading counter) behind an explicit context object with subscribe/dispose.
package preferences

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/spectrum/internal/logging"
	"github.com/aretw0/spectrum/internal/runtime"
)

// Language is a supported UI language.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// TextDirection is the reading direction implied by the language.
type TextDirection string

const (
	LTR TextDirection = "ltr"
	RTL TextDirection = "rtl"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedTheme    = errors.New("unsupported theme")
	ErrDisposed            = errors.New("preferences disposed")
)

// State is an immutable view of the preferences.
type State struct {
	Language  Language      `json:"language"`
	Direction TextDirection `json:"direction"`
	Theme     Theme         `json:"theme"`
	Loading   bool          `json:"loading"`
}

// DirectionOf returns the text direction of lang.
func DirectionOf(lang Language) TextDirection {
	if lang == Arabic {
		return RTL
	}
	return LTR
}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case English, Arabic:
		return Language(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTheme, s)
}

// Context is the single owner of UI preferences. It is safe for concurrent use.
// Subscribers are notified synchronously, outside the internal lock, whenever State changes.
type Context struct {
	mu       sync.Mutex
	language Language
	theme    Theme
	loading  int
	disposed bool

	changes runtime.Channel[State]
	logger  *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLanguage sets the initial language.
func WithLanguage(lang Language) Option {
	return func(c *Context) {
		c.language = lang
	}
}

// WithTheme sets the initial theme.
func WithTheme(theme Theme) Option {
	return func(c *Context) {
		c.theme = theme
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Context defaulting to English and the light theme.
func New(opts ...Option) *Context {
	c := &Context{
		language: English,
		theme:    ThemeLight,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current preferences.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Context) stateLocked() State {
	return State{
		Language:  c.language,
		Direction: DirectionOf(c.language),
		Theme:     c.theme,
		Loading:   c.loading > 0,
	}
}

// Subscribe registers fn for every state change.
func (c *Context) Subscribe(fn func(State)) runtime.Subscription {
	return c.changes.Subscribe(fn)
}

// SetLanguage switches the language, and with it the text direction.
func (c *Context) SetLanguage(lang Language) error {
	if _, err := ParseLanguage(string(lang)); err != nil {
		return err
	}
	return c.update(func() bool {
		if c.language == lang {
			return false
		}
		c.language = lang
		return true
	})
}

// SetTheme switches the theme.
func (c *Context) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return c.update(func() bool {
		if c.theme == theme {
			return false
		}
		c.theme = theme
		return true
	})
}

// BeginLoading marks one unit of work in progress. Loading stays true until every
// returned done func has been called. Calling done more than once has no effect.
func (c *Context) BeginLoading() (done func()) {
	if err := c.update(func() bool {
		c.loading++
		return c.loading == 1
	}); err != nil {
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = c.update(func() bool {
				c.loading--
				return c.loading == 0
			})
		})
	}
}

// Dispose drops every subscriber. Later writes return ErrDisposed.
func (c *Context) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.mu.Unlock()

	c.changes.Close()
}

// update applies fn under the lock and publishes the new state when fn reports a change.
func (c *Context) update(fn func() bool) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	changed := fn()
	state := c.stateLocked()
	c.mu.Unlock()

	if changed {
		c.logger.Debug("preferences changed",
			"language", state.Language,
			"theme", state.Theme,
			"loading", state.Loading,
		)
		c.changes.Publish(state)
	}
	return nil
}
