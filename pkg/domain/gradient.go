package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// MinColors is the smallest color list a gradient may hold.
const MinColors = 2

// TransparentExpression is the serialized form of an empty color list.
const TransparentExpression = "transparent"

// DefaultColors seeds a gradient created without colors.
var DefaultColors = []string{"#ff512f", "#dd2476"}

// Serialize renders colors and direction as a CSS linear-gradient expression.
// It is the single source of truth for the textual form.
func Serialize(colors []string, direction string) string {
	if len(colors) == 0 {
		return TransparentExpression
	}
	return "linear-gradient(" + direction + ", " + strings.Join(colors, ", ") + ")"
}

// Gradient is the authoritative pair from which the expression is derived.
type Gradient struct {
	Colors    []string `json:"colors" yaml:"colors"`
	Direction string   `json:"direction" yaml:"direction"`
}

// NewGradient applies defaults for a missing color list or direction.
func NewGradient(colors []string, direction string) Gradient {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	if direction == "" {
		direction = DefaultDirection
	}
	return Gradient{Colors: slices.Clone(colors), Direction: direction}
}

// Expression serializes the gradient.
func (g Gradient) Expression() string {
	return Serialize(g.Colors, g.Direction)
}

// Key is a snapshot key of (colors, direction) used for memoization.
func (g Gradient) Key() string {
	// NUL cannot appear in a valid token, so the key is unambiguous.
	return g.Direction + "\x00" + strings.Join(g.Colors, "\x00")
}

// Equal compares two gradients structurally.
func (g Gradient) Equal(other Gradient) bool {
	return g.Direction == other.Direction && slices.Equal(g.Colors, other.Colors)
}

// Validate checks the committed-state invariants: at least two colors, all valid, a direction.
func (g Gradient) Validate() error {
	if err := ValidateColors(g.Colors); err != nil {
		return err
	}
	if g.Direction == "" {
		return ErrEmptyDirection
	}
	return nil
}

// ValidateColors checks a full replacement color list.
func ValidateColors(colors []string) error {
	if len(colors) < MinColors {
		return fmt.Errorf("%w: got %d, need at least %d", ErrTooFewColors, len(colors), MinColors)
	}
	for i, c := range colors {
		if !IsValidColor(c) {
			return fmt.Errorf("%w: %q at index %d", ErrInvalidColor, c, i)
		}
	}
	return nil
}

// Snapshot is the persisted and transported view of a synchronizer.
type Snapshot struct {
	SessionID  string            `json:"session_id"`
	Colors     []string          `json:"colors"`
	Drafts     []string          `json:"drafts,omitempty"`
	Direction  string            `json:"direction"`
	Expression string            `json:"expression"`
	Compact    bool              `json:"compact,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Gradient extracts the committed gradient from the snapshot.
func (s *Snapshot) Gradient() Gradient {
	return Gradient{Colors: slices.Clone(s.Colors), Direction: s.Direction}
}

// Clone returns a deep copy so callers cannot alias stored slices or maps.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Colors = slices.Clone(s.Colors)
	c.Drafts = slices.Clone(s.Drafts)
	if s.Metadata != nil {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
