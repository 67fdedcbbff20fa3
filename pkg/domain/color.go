package domain

import (
	"regexp"
	"strings"
)

// ColorFormat classifies a color token.
type ColorFormat string

const (
	FormatInvalid ColorFormat = "invalid"
	FormatHex     ColorFormat = "hex"
	FormatRGB     ColorFormat = "rgb"
	FormatRGBA    ColorFormat = "rgba"
	FormatHSL     ColorFormat = "hsl"
	FormatNamed   ColorFormat = "named"
)

// DefaultNewColor is appended when AddColor is called without a token.
const DefaultNewColor = "#ffffff"

// Component ranges are intentionally loose: up to three digits, no 0-255 clamping.
var (
	hexPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbPattern  = regexp.MustCompile(`^rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)$`)
	rgbaPattern = regexp.MustCompile(`^rgba\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*(?:0|1|1\.0+|0?\.\d+)\s*\)$`)
	hslPattern  = regexp.MustCompile(`^hsl\(\s*\d{1,3}\s*,\s*\d{1,3}%\s*,\s*\d{1,3}%\s*\)$`)
)

// NamedColors is the allowlist of color keywords accepted as tokens.
// Lookups are case-insensitive.
var NamedColors = map[string]string{
	"red":     "#ff0000",
	"blue":    "#0000ff",
	"green":   "#008000",
	"yellow":  "#ffff00",
	"black":   "#000000",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"purple":  "#800080",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"brown":   "#a52a2a",
	"navy":    "#000080",
	"teal":    "#008080",
}

// ClassifyColor reports which supported format a token matches.
// Tokens are not trimmed; surrounding whitespace makes a token invalid.
func ClassifyColor(token string) ColorFormat {
	switch {
	case token == "":
		return FormatInvalid
	case hexPattern.MatchString(token):
		return FormatHex
	case rgbPattern.MatchString(token):
		return FormatRGB
	case rgbaPattern.MatchString(token):
		return FormatRGBA
	case hslPattern.MatchString(token):
		return FormatHSL
	}
	if _, ok := NamedColors[strings.ToLower(token)]; ok {
		return FormatNamed
	}
	return FormatInvalid
}

// IsValidColor reports whether token can be committed into a color list.
func IsValidColor(token string) bool {
	return ClassifyColor(token) != FormatInvalid
}
