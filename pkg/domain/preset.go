package domain

import "slices"

// Preset is a named, predefined color sequence loadable as a unit.
// Applying a preset replaces the colors and keeps the current direction.
type Preset struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Label       string   `json:"label,omitempty" yaml:"label" mapstructure:"label"`
	Description string   `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	Colors      []string `json:"colors" yaml:"colors" mapstructure:"colors"`
}

// Validate checks that the preset can be applied to a synchronizer.
func (p Preset) Validate() error {
	return ValidateColors(p.Colors)
}

// BuiltinPresets returns the catalog shipped with the module.
func BuiltinPresets() []Preset {
	presets := []Preset{
		{Name: "sunset", Label: "Sunset", Colors: []string{"#ff512f", "#dd2476"}},
		{Name: "ocean", Label: "Ocean", Colors: []string{"#2193b0", "#6dd5ed"}},
		{Name: "forest", Label: "Forest", Colors: []string{"#134e5e", "#71b280"}},
		{Name: "royal", Label: "Royal", Colors: []string{"#141e30", "#243b55"}},
		{Name: "peach", Label: "Peach", Colors: []string{"#ed4264", "#ffedbc"}},
		{Name: "aurora", Label: "Aurora", Colors: []string{"#00c9ff", "#92fe9d", "#fc466b"}},
		{Name: "mono", Label: "Monochrome", Colors: []string{"black", "gray", "white"}},
	}
	for i := range presets {
		presets[i].Colors = slices.Clone(presets[i].Colors)
	}
	return presets
}

// Clone returns a copy that does not share the color slice.
func (p Preset) Clone() Preset {
	p.Colors = slices.Clone(p.Colors)
	return p
}
