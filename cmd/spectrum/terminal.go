package main

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/spectrum/internal/presentation/tui"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/preferences"
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// colorProfile is the profile of stdout, or Ascii when output is redirected.
func colorProfile() termenv.Profile {
	if !stdoutIsTerminal() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

func currentPreferences() preferences.State {
	var opts []preferences.Option
	if lang, err := preferences.ParseLanguage(appConfig.Language); err == nil {
		opts = append(opts, preferences.WithLanguage(lang))
	}
	if theme, err := preferences.ParseTheme(appConfig.Theme); err == nil {
		opts = append(opts, preferences.WithTheme(theme))
	}
	prefs := preferences.New(opts...)
	defer prefs.Dispose()
	return prefs.State()
}

func swatchRenderer(width int, framed bool) func(domain.Gradient) (string, error) {
	state := currentPreferences()
	return func(g domain.Gradient) (string, error) {
		return tui.Swatch(g, tui.SwatchOptions{
			Width:   width,
			Height:  1,
			Profile: colorProfile(),
			RTL:     state.Direction == preferences.RTL,
			Framed:  framed,
		})
	}
}
