package loam

// PresetMetadata is the frontmatter of a preset document.
// The document body, when present, becomes the preset description.
type PresetMetadata struct {
	Name        string   `json:"name" mapstructure:"name"`
	Label       string   `json:"label" mapstructure:"label"`
	Description string   `json:"description" mapstructure:"description"`
	Colors      []string `json:"colors" mapstructure:"colors"`
	// Draft documents are skipped by the catalog.
	Draft bool `json:"draft" mapstructure:"draft"`
}
