package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/lucasb-eyer/go-colorful"
)

// ResolveRGB converts a valid color token into an RGB color.
// Alpha in rgba() tokens is ignored; terminals cannot blend cells.
func ResolveRGB(token string) (colorful.Color, error) {
	switch domain.ClassifyColor(token) {
	case domain.FormatHex:
		return colorful.Hex(expandHex(token))
	case domain.FormatNamed:
		return colorful.Hex(domain.NamedColors[strings.ToLower(token)])
	case domain.FormatRGB, domain.FormatRGBA:
		parts, err := components(token)
		if err != nil {
			return colorful.Color{}, err
		}
		return colorful.Color{
			R: clamp(parts[0], 255) / 255,
			G: clamp(parts[1], 255) / 255,
			B: clamp(parts[2], 255) / 255,
		}, nil
	case domain.FormatHSL:
		parts, err := components(token)
		if err != nil {
			return colorful.Color{}, err
		}
		return colorful.Hsl(clamp(parts[0], 360), clamp(parts[1], 100)/100, clamp(parts[2], 100)/100).Clamped(), nil
	default:
		return colorful.Color{}, fmt.Errorf("%w: %q", domain.ErrInvalidColor, token)
	}
}

// Sample interpolates n evenly spaced colors across the stops, blending in Lab space.
func Sample(tokens []string, n int) ([]colorful.Color, error) {
	if n <= 0 {
		return nil, nil
	}
	stops := make([]colorful.Color, len(tokens))
	for i, t := range tokens {
		c, err := ResolveRGB(t)
		if err != nil {
			return nil, err
		}
		stops[i] = c
	}

	out := make([]colorful.Color, n)
	switch len(stops) {
	case 0:
		return nil, domain.ErrTooFewColors
	case 1:
		for i := range out {
			out[i] = stops[0]
		}
		return out, nil
	}

	segments := float64(len(stops) - 1)
	for i := range out {
		pos := 0.0
		if n > 1 {
			pos = float64(i) / float64(n-1) * segments
		}
		seg := int(pos)
		if seg >= len(stops)-1 {
			seg = len(stops) - 2
		}
		out[i] = stops[seg].BlendLab(stops[seg+1], pos-float64(seg)).Clamped()
	}
	return out, nil
}

func expandHex(token string) string {
	if len(token) != 4 {
		return token
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, r := range token[1:] {
		b.WriteRune(r)
		b.WriteRune(r)
	}
	return b.String()
}

// components extracts the numeric arguments of an rgb/rgba/hsl token.
func components(token string) ([]float64, error) {
	open := strings.IndexByte(token, '(')
	end := strings.LastIndexByte(token, ')')
	if open < 0 || end < open {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidColor, token)
	}

	fields := strings.Split(token[open+1:end], ",")
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidColor, token)
	}

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(f), "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidColor, token)
		}
		values = append(values, v)
	}
	return values, nil
}

func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
