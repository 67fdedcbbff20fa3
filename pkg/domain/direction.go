package domain

import (
	"strconv"
	"strings"
)

// DefaultDirection is used when no direction is supplied.
const DefaultDirection = "to right"

// Keyword directions understood by CSS linear-gradient.
const (
	DirectionToRight       = "to right"
	DirectionToLeft        = "to left"
	DirectionToTop         = "to top"
	DirectionToBottom      = "to bottom"
	DirectionToTopRight    = "to top right"
	DirectionToTopLeft     = "to top left"
	DirectionToBottomRight = "to bottom right"
	DirectionToBottomLeft  = "to bottom left"
)

// KeywordDirections lists the keyword directions in display order.
var KeywordDirections = []string{
	DirectionToRight,
	DirectionToLeft,
	DirectionToTop,
	DirectionToBottom,
	DirectionToTopRight,
	DirectionToTopLeft,
	DirectionToBottomRight,
	DirectionToBottomLeft,
}

// keywordAngles maps keywords onto the equivalent CSS angle.
var keywordAngles = map[string]float64{
	DirectionToTop:         0,
	DirectionToTopRight:    45,
	DirectionToRight:       90,
	DirectionToBottomRight: 135,
	DirectionToBottom:      180,
	DirectionToBottomLeft:  225,
	DirectionToLeft:        270,
	DirectionToTopLeft:     315,
}

// IsKnownDirection reports whether d is a keyword or a "<n>deg" angle in [0, 360].
// The check is advisory: synchronizers accept any non-empty direction.
func IsKnownDirection(d string) bool {
	if _, ok := keywordAngles[d]; ok {
		return true
	}
	angle, ok := parseDegrees(d)
	return ok && angle >= 0 && angle <= 360
}

// DirectionAngle resolves d to degrees. Unknown directions report ok=false.
func DirectionAngle(d string) (float64, bool) {
	if angle, ok := keywordAngles[d]; ok {
		return angle, true
	}
	return parseDegrees(d)
}

func parseDegrees(d string) (float64, bool) {
	raw, found := strings.CutSuffix(strings.TrimSpace(d), "deg")
	if !found || raw == "" {
		return 0, false
	}
	angle, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return angle, true
}
