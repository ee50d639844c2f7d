package command

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Descriptor is the immutable definition of one scripted step.
type Descriptor struct {
	Kind   string `json:"command" yaml:"command"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// New builds a descriptor.
func New(kind string, params Params) Descriptor {
	return Descriptor{Kind: kind, Params: params}
}

// Clone returns a copy that shares nothing mutable with d.
func (d Descriptor) Clone() Descriptor {
	return Descriptor{Kind: d.Kind, Label: d.Label, Params: d.Params.Clone()}
}

// Name returns the label, or the kind when unlabeled.
func (d Descriptor) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Kind
}

// Validate ensures the descriptor is usable.
func (d Descriptor) Validate() error {
	if d.Kind == "" {
		return fmt.Errorf("command: kind is required")
	}
	return nil
}

// Params carries kind-specific parameters (opaque to the director).
type Params map[string]any

// Clone returns a deep copy of the parameter map.
func (p Params) Clone() Params {
	if len(p) == 0 {
		return nil
	}
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = cloneValue(value)
	}
	return clone
}

// Decode fills target (a pointer to a struct with yaml tags) from the
// parameters. Unknown keys are rejected so typos surface at build time.
func (p Params) Decode(target any) error {
	if len(p) == 0 {
		return nil
	}
	data, err := yaml.Marshal(map[string]any(p))
	if err != nil {
		return fmt.Errorf("command: encode params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("command: decode params: %w", err)
	}
	return nil
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		for key, inner := range v {
			clone[key] = cloneValue(inner)
		}
		return clone
	case []any:
		clone := make([]any, len(v))
		for i, inner := range v {
			clone[i] = cloneValue(inner)
		}
		return clone
	default:
		return v
	}
}
