/*
Package spectrum keeps a CSS linear-gradient expression synchronized with the
colors and direction it is derived from.

# Concept

A gradient is an authoritative pair: an ordered list of at least two color
tokens and a direction. The expression "linear-gradient(<direction>, <c1>, ...)"
is never stored as truth; it is derived from the pair and re-emitted on the
expression channel whenever the pair changes. Colors and direction have their
own channels, so a host can bind a preview, an editor and a record field
independently.

Edits to a single color are held as drafts until they form a valid token, so a
half-typed "#12" never reaches the committed state.

# Usage

A standalone synchronizer is enough to embed one editor:

	sync, err := spectrum.NewSynchronizer(spectrum.SynchronizerConfig{
		Colors:    []string{"#ff512f", "#dd2476"},
		Direction: "to right",
	})
	if err != nil {
		log.Fatal(err)
	}
	sync.OnExpression(func(expr string) { fmt.Println(expr) })
	sync.Start()
	sync.AddColor("teal")

Hosts that manage many gradients use the Engine, which adds persistence,
presets, a mutation pipeline and notifications across sessions:

	eng, err := spectrum.New(spectrum.WithStore(file.New(".spectrum/sessions")))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close(context.Background())

	eng.Open(ctx, "product-42", session.OpenConfig{})
	eng.Apply(ctx, "product-42", spectrum.Mutation{Kind: domain.MutationPreset, Preset: "ocean"})

# Adapters

Stores live under pkg/adapters (memory, file, redis), preset catalogs under
pkg/adapters (memory, file, loam), and the HTTP/SSE and MCP surfaces under
pkg/adapters/http and pkg/adapters/mcp. The spectrum command wires all of them
from configuration.
*/
package spectrum
