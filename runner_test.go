package spectrum_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spectrum"
	"github.com/aretw0/spectrum/pkg/domain"
)

func TestRunner_Session(t *testing.T) {
	ctx := context.Background()
	eng, err := spectrum.New()
	require.NoError(t, err)
	defer eng.Close(ctx)

	input := strings.Join([]string{
		"add teal",
		"set 0 #12",
		"rm 5",
		"dir to top",
		"bogus",
		"preset ocean",
		"rm 0",
		"quit",
		"add never",
	}, "\n") + "\n"

	var out bytes.Buffer
	r := spectrum.NewRunner("s1")
	r.Input = strings.NewReader(input)
	r.Output = &out
	r.Headless = true

	require.NoError(t, r.Run(ctx, eng))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"linear-gradient(to right, #ff512f, #dd2476)",
		"linear-gradient(to right, #ff512f, #dd2476, teal)",
		"draft 0 held: #12",
		"unchanged",
		"linear-gradient(to top, #ff512f, #dd2476, teal)",
		"error: unknown command: bogus",
		"linear-gradient(to top, #2193b0, #6dd5ed)",
		"unchanged",
	}, lines)

	snap, err := eng.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, snap.Colors, 2, "input after quit is ignored")
}

func TestRunner_RendererAndEOF(t *testing.T) {
	ctx := context.Background()
	eng, err := spectrum.New()
	require.NoError(t, err)
	defer eng.Close(ctx)

	var out bytes.Buffer
	r := spectrum.NewRunner("")
	r.Input = strings.NewReader("replace red rgb(0, 0, 255)")
	r.Output = &out
	r.Headless = true
	r.Renderer = func(g domain.Gradient) (string, error) {
		return "[" + strings.Join(g.Colors, "|") + "]", nil
	}

	require.NoError(t, r.Run(ctx, eng))
	assert.Contains(t, out.String(), "[red|rgb(0, 0, 255)]")
	assert.NotEmpty(t, r.SessionID, "an empty id is generated on open")
}

func TestRunner_RequiresIO(t *testing.T) {
	eng, err := spectrum.New()
	require.NoError(t, err)
	defer eng.Close(context.Background())

	assert.Error(t, spectrum.NewRunner("x").Run(context.Background(), eng))
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want domain.Mutation
	}{
		{"add", domain.Mutation{Kind: domain.MutationAdd}},
		{"add hsl(120, 50%, 50%)", domain.Mutation{Kind: domain.MutationAdd, Token: "hsl(120, 50%, 50%)"}},
		{"set 2 rgb(1, 2, 3)", domain.Mutation{Kind: domain.MutationSet, Index: 2, Token: "rgb(1, 2, 3)"}},
		{"rm 1", domain.Mutation{Kind: domain.MutationRemove, Index: 1}},
		{"dir to bottom right", domain.Mutation{Kind: domain.MutationDirection, Direction: "to bottom right"}},
		{"preset sunset", domain.Mutation{Kind: domain.MutationPreset, Preset: "sunset"}},
		{"replace red, rgba(0, 0, 0, 0.5) blue", domain.Mutation{Kind: domain.MutationReplace, Tokens: []string{"red", "rgba(0, 0, 0, 0.5)", "blue"}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := spectrum.ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := spectrum.ParseCommand("rm x")
	assert.Error(t, err)
	_, err = spectrum.ParseCommand("set 1")
	assert.Error(t, err)
	_, err = spectrum.ParseCommand("jump")
	assert.ErrorIs(t, err, spectrum.ErrUnknownCommand)
}
