package tui

import (
	"github.com/aretw0/spectrum/pkg/preferences"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects light/dark from the terminal background.
func NewRenderer(style string) (func(string) (string, error), error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(80))
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// StyleFor maps UI preferences onto a glamour style. Non-terminals get "notty".
func StyleFor(state preferences.State, isTerminal bool) string {
	if !isTerminal {
		return "notty"
	}
	if state.Theme == preferences.ThemeDark {
		return "dark"
	}
	return "light"
}
