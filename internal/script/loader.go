// Package script loads scene scripts from YAML and compiles them into
// director programs.
package script

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/sce/internal/command"
)

// DefaultScriptDir is where Loader.Named looks when Dir is empty.
const DefaultScriptDir = "scripts"

// Parse decodes a script definition from YAML/JSON bytes and checks its
// shape. Command kinds are not checked; see Loader.
func Parse(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("script: definition payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("script: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Loader reads scripts from the places the player accepts them: a file, a
// directory of named scripts, a bundled filesystem or a stream. With a
// Registry set, every step's kind must be registered, so a typo fails at load
// time with all offending steps listed.
type Loader struct {
	Registry *command.Registry
	// Dir resolves names passed to Named.
	Dir string
}

// File loads a script from an explicit path.
func (l Loader) File(path string) (Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("script: read %s: %w", path, err)
	}
	return l.decode(content, path)
}

// Named loads name from the loader's script directory.
func (l Loader) Named(name string) (Definition, error) {
	dir := l.Dir
	if dir == "" {
		dir = DefaultScriptDir
	}
	return l.File(filepath.Join(dir, name))
}

// FS loads a script from a filesystem, e.g. an embedded bundle.
func (l Loader) FS(fsys fs.FS, name string) (Definition, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Definition{}, fmt.Errorf("script: read %s: %w", name, err)
	}
	return l.decode(content, name)
}

// Read loads a script from r. source names the stream in errors.
func (l Loader) Read(r io.Reader, source string) (Definition, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Definition{}, fmt.Errorf("script: read %s: %w", source, err)
	}
	return l.decode(content, source)
}

func (l Loader) decode(content []byte, source string) (Definition, error) {
	def, err := Parse(content)
	if err != nil {
		return Definition{}, fmt.Errorf("script: %s: %w", source, err)
	}
	if l.Registry != nil {
		if err := def.CheckKinds(l.Registry); err != nil {
			return Definition{}, fmt.Errorf("script: %s: %w", source, err)
		}
	}
	return def, nil
}
