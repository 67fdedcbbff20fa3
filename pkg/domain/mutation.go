package domain

// MutationKind identifies the operation requested by a Mutation.
type MutationKind string

const (
	MutationAdd         MutationKind = "add"
	MutationRemove      MutationKind = "remove"
	MutationSet         MutationKind = "set"
	MutationDirection   MutationKind = "direction"
	MutationPreset      MutationKind = "preset"
	MutationReplace     MutationKind = "replace"
	MutationReconfigure MutationKind = "reconfigure"
)

// Mutation is a host-side request to change a gradient.
// Only the fields relevant to Kind are read.
type Mutation struct {
	Kind      MutationKind `json:"kind" mapstructure:"kind"`
	Index     int          `json:"index,omitempty" mapstructure:"index"`
	Token     string       `json:"token,omitempty" mapstructure:"token"`
	Tokens    []string     `json:"tokens,omitempty" mapstructure:"tokens"`
	Direction string       `json:"direction,omitempty" mapstructure:"direction"`
	Preset    string       `json:"preset,omitempty" mapstructure:"preset"`
}
