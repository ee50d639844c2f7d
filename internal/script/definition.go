package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/director"
	"github.com/kingrea/sce/internal/sce"
)

// Definition declares a scene script: an ordered list of command steps plus
// the metadata shown by the player.
type Definition struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Scene       string               `json:"scene,omitempty" yaml:"scene,omitempty"`
	Commands    []command.Descriptor `json:"commands" yaml:"commands"`
	Metadata    map[string]string    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the definition.
func (def Definition) Clone() Definition {
	clone := Definition{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Scene:       def.Scene,
		Metadata:    cloneStringMap(def.Metadata),
	}
	if len(def.Commands) > 0 {
		clone.Commands = make([]command.Descriptor, len(def.Commands))
		for i, desc := range def.Commands {
			clone.Commands[i] = desc.Clone()
		}
	}
	return clone
}

// Validate ensures the definition is self-consistent.
func (def Definition) Validate() error {
	if def.ID == "" {
		return fmt.Errorf("script: id is required")
	}
	if len(def.Commands) == 0 {
		return fmt.Errorf("script %s: at least one command is required", def.ID)
	}
	for idx, desc := range def.Commands {
		if err := desc.Validate(); err != nil {
			return fmt.Errorf("script %s command[%d]: %w", def.ID, idx, err)
		}
	}
	return nil
}

// Title returns the display name.
func (def Definition) Title() string {
	if def.Name != "" {
		return def.Name
	}
	return def.ID
}

// CheckKinds reports every step whose kind reg does not know, followed by
// the kinds it does.
func (def Definition) CheckKinds(reg *command.Registry) error {
	var errs []error
	for idx, desc := range def.Commands {
		if !reg.Has(desc.Kind) {
			errs = append(errs, fmt.Errorf("command[%d]: unknown kind %q", idx, desc.Kind))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	errs = append(errs, fmt.Errorf("known kinds: %s", strings.Join(reg.Kinds(), ", ")))
	return errors.Join(errs...)
}

// Compile builds the director program for this script. Unknown command kinds
// and malformed parameters are reported here, before anything plays.
func (def Definition) Compile(reg *command.Registry) (*director.Program, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	prog, err := director.NewProgram(reg, def.Commands)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", def.ID, err)
	}
	return prog, nil
}

// Clips lists every (role, action) clip the script's role_show_action steps
// reference, in script order without duplicates.
func (def Definition) Clips() []ClipUse {
	seen := map[ClipUse]struct{}{}
	var out []ClipUse
	for _, desc := range def.Commands {
		if desc.Kind != sce.KindRoleShowAction {
			continue
		}
		role, okRole := intParam(desc.Params, "role")
		action, okAction := desc.Params["action"].(string)
		if !okRole || !okAction || action == "" {
			continue
		}
		use := ClipUse{Role: role, Action: action}
		if _, dup := seen[use]; dup {
			continue
		}
		seen[use] = struct{}{}
		out = append(out, use)
	}
	return out
}

// ClipUse names one clip referenced by a script.
type ClipUse struct {
	Role   int
	Action string
}

func intParam(params command.Params, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	clone := make(map[string]string, len(values))
	for key, value := range values {
		clone[key] = value
	}
	return clone
}
