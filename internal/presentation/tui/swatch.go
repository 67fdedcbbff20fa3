package tui

import (
	"io"
	"slices"
	"strings"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DefaultSwatchWidth is the number of cells of a swatch preview.
const DefaultSwatchWidth = 48

// SwatchOptions controls how a gradient preview is drawn.
type SwatchOptions struct {
	Width   int
	Height  int
	Profile termenv.Profile
	// RTL mirrors the preview for right-to-left layouts.
	RTL bool
	// Framed draws a rounded border with the expression as a caption.
	Framed bool
}

// Swatch renders the colors as a row of background-colored cells.
// With the Ascii profile the cells carry no escape sequences.
func Swatch(g domain.Gradient, opts SwatchOptions) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = DefaultSwatchWidth
	}
	height := opts.Height
	if height <= 0 {
		height = 1
	}

	samples, err := Sample(g.Colors, width)
	if err != nil {
		return "", err
	}
	if opts.RTL {
		slices.Reverse(samples)
	}

	out := termenv.NewOutput(io.Discard, termenv.WithProfile(opts.Profile))

	var row strings.Builder
	for _, c := range samples {
		row.WriteString(out.String(" ").Background(out.Color(c.Hex())).String())
	}

	rows := make([]string, height)
	for i := range rows {
		rows[i] = row.String()
	}
	body := strings.Join(rows, "\n")

	if !opts.Framed {
		return body, nil
	}

	caption := lipgloss.NewStyle().Faint(true).Render(g.Expression())
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, caption)), nil
}
