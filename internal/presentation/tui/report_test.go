package tui

import (
	"testing"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarkdown(t *testing.T) {
	md, err := ReportMarkdown(domain.NewGradient([]string{"#ff512f", "blue"}, "to bottom"))
	require.NoError(t, err)

	assert.Contains(t, md, "background: linear-gradient(to bottom, #ff512f, blue);")
	assert.Contains(t, md, "(180deg)")
	assert.Contains(t, md, "| 1 | `blue` | named | #0000ff |")
}

func TestReportMarkdown_UnknownDirection(t *testing.T) {
	md, err := ReportMarkdown(domain.NewGradient(nil, "sideways"))
	require.NoError(t, err)
	assert.Contains(t, md, "not a recognized direction")
}

func TestRenderReport(t *testing.T) {
	out, err := RenderReport(domain.NewGradient(nil, ""), "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "#ff512f")
	assert.Contains(t, out, "Gradient")
}

func TestStyleFor(t *testing.T) {
	dark := preferences.State{Theme: preferences.ThemeDark}
	assert.Equal(t, "dark", StyleFor(dark, true))
	assert.Equal(t, "light", StyleFor(preferences.State{Theme: preferences.ThemeLight}, true))
	assert.Equal(t, "notty", StyleFor(dark, false))
}
