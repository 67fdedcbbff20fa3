package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewPretty_WritesMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPretty(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("preset loaded", "name", "sunset")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "preset loaded")
	assert.Contains(t, out, "sunset")
}

func TestReplaceAttr_RenamesError(t *testing.T) {
	a := replaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", a.Key)
}
