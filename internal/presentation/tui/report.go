package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/spectrum/pkg/domain"
)

// ReportMarkdown describes a gradient as a markdown document.
func ReportMarkdown(g domain.Gradient) (string, error) {
	var b strings.Builder

	b.WriteString("# Gradient\n\n")
	b.WriteString("```css\n")
	fmt.Fprintf(&b, "background: %s;\n", g.Expression())
	b.WriteString("```\n\n")

	fmt.Fprintf(&b, "**Direction:** `%s`", g.Direction)
	if angle, ok := domain.DirectionAngle(g.Direction); ok {
		fmt.Fprintf(&b, " (%gdeg)", angle)
	} else if !domain.IsKnownDirection(g.Direction) {
		b.WriteString(" (not a recognized direction)")
	}
	b.WriteString("\n\n")

	b.WriteString("| # | Token | Format | RGB |\n")
	b.WriteString("|---|-------|--------|-----|\n")
	for i, token := range g.Colors {
		c, err := ResolveRGB(token)
		if err != nil {
			return "", fmt.Errorf("stop %d: %w", i, err)
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", i, token, domain.ClassifyColor(token), c.Hex())
	}
	return b.String(), nil
}

// RenderReport renders the gradient report for a terminal using the given glamour style.
func RenderReport(g domain.Gradient, style string) (string, error) {
	md, err := ReportMarkdown(g)
	if err != nil {
		return "", err
	}
	render, err := NewRenderer(style)
	if err != nil {
		return "", err
	}
	return render(md)
}
