package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/spectrum/pkg/domain"
)

var (
	// DefaultMaxInputSize is 256 bytes
	DefaultMaxInputSize = 256
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "SPECTRUM_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans a user-supplied token by enforcing size limits,
// validating UTF-8, stripping control characters and trimming surrounding space.
func SanitizeInput(input string) (string, error) {
	clean, err := sanitize(input)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(clean), nil
}

// SanitizeDraft is SanitizeInput without trimming. Draft text is kept as typed,
// so a padded token stays a held draft instead of being committed.
func SanitizeDraft(input string) (string, error) {
	return sanitize(input)
}

func sanitize(input string) (string, error) {
	limit := getMaxInputSize()
	if len(input) > limit {
		// Oversized input is rejected, never truncated.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Tokens are single-line, so every control character goes (ANSI ESC, NUL, BEL, newlines).
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

// Sanitize returns an interceptor that runs SanitizeInput over every text field of a mutation.
func Sanitize() Interceptor {
	return Interceptor{
		Name: "sanitize",
		TransformRequest: func(ctx context.Context, req *Request) error {
			m := &req.Mutation
			var err error
			clean := SanitizeInput
			if m.Kind == domain.MutationSet {
				clean = SanitizeDraft
			}
			if m.Token, err = clean(m.Token); err != nil {
				return fmt.Errorf("token: %w", err)
			}
			if m.Direction, err = SanitizeInput(m.Direction); err != nil {
				return fmt.Errorf("direction: %w", err)
			}
			if m.Preset, err = SanitizeInput(m.Preset); err != nil {
				return fmt.Errorf("preset: %w", err)
			}
			for i, t := range m.Tokens {
				if m.Tokens[i], err = SanitizeInput(t); err != nil {
					return fmt.Errorf("tokens[%d]: %w", i, err)
				}
			}
			return nil
		},
	}
}
