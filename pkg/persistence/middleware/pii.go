package middleware

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
)

// Mask replaces redacted metadata values.
const Mask = "***"

// ErrInvalidPattern is returned for a redaction pattern that is not a valid regexp.
var ErrInvalidPattern = errors.New("invalid redaction pattern")

type piiMiddleware struct {
	next     ports.GradientStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks snapshot metadata values
// whose keys match any of the patterns. Colors and direction are never touched.
// It panics on an invalid pattern; use ParsePIIMiddleware for untrusted input.
func NewPIIMiddleware(patternStrings []string) Middleware {
	mw, err := ParsePIIMiddleware(patternStrings)
	if err != nil {
		panic(err)
	}
	return mw
}

// ParsePIIMiddleware is NewPIIMiddleware returning an error for invalid patterns.
func ParsePIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		patterns[i] = re
	}
	return func(next ports.GradientStore) ports.GradientStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	// Clone so the live session keeps its original metadata.
	cloned := snap.Clone()
	for k := range cloned.Metadata {
		if m.matches(k) {
			cloned.Metadata[k] = Mask
		}
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
