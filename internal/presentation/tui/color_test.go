package tui

import (
	"testing"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRGB(t *testing.T) {
	tests := []struct {
		token string
		hex   string
	}{
		{"#ff512f", "#ff512f"},
		{"#FFF", "#ffffff"},
		{"#0a0", "#00aa00"},
		{"red", "#ff0000"},
		{"Navy", "#000080"},
		{"rgb(255, 0, 0)", "#ff0000"},
		{"rgb(999,0,0)", "#ff0000"},
		{"rgba(0, 0, 255, 0.5)", "#0000ff"},
		{"hsl(120, 100%, 50%)", "#00ff00"},
		{"hsl(0,0%,100%)", "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			c, err := ResolveRGB(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.hex, c.Hex())
		})
	}

	_, err := ResolveRGB("nope")
	assert.ErrorIs(t, err, domain.ErrInvalidColor)
}

func TestSample(t *testing.T) {
	got, err := Sample([]string{"#000000", "#ffffff"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "#000000", got[0].Hex())
	assert.Equal(t, "#ffffff", got[4].Hex())

	got, err = Sample([]string{"red", "green", "blue"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got[0].Hex())
	assert.Equal(t, "#008000", got[1].Hex(), "the middle sample lands exactly on the middle stop")
	assert.Equal(t, "#0000ff", got[2].Hex())

	got, err = Sample([]string{"red", "blue"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", got[0].Hex())

	_, err = Sample([]string{"red", "bogus"}, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidColor)

	got, err = Sample([]string{"red"}, 0)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
