package director

import (
	"fmt"

	"github.com/kingrea/sce/internal/command"
)

// Program is an immutable, ordered list of compiled descriptors plus a
// cursor. Each descriptor is instantiated at most once, in list order.
type Program struct {
	descriptors []command.Descriptor
	prototypes  []command.Prototype
	cursor      int
}

// NewProgram compiles every descriptor against the registry. Any unknown
// kind or malformed parameter fails the whole program.
func NewProgram(reg *command.Registry, descriptors []command.Descriptor) (*Program, error) {
	if reg == nil {
		return nil, fmt.Errorf("director: program requires a command registry")
	}
	p := &Program{
		descriptors: make([]command.Descriptor, len(descriptors)),
		prototypes:  make([]command.Prototype, len(descriptors)),
	}
	for i, desc := range descriptors {
		proto, err := reg.Compile(desc)
		if err != nil {
			return nil, fmt.Errorf("director: program step %d: %w", i, err)
		}
		p.descriptors[i] = desc.Clone()
		p.prototypes[i] = proto
	}
	return p, nil
}

// Next instantiates the descriptor at the cursor and advances. Once the
// cursor reaches the end it returns nil, false for good.
func (p *Program) Next() (command.Command, bool) {
	if p.cursor >= len(p.prototypes) {
		return nil, false
	}
	cmd := p.prototypes[p.cursor]()
	p.cursor++
	return cmd, true
}

// Cursor is the index of the next descriptor to instantiate.
func (p *Program) Cursor() int {
	return p.cursor
}

// Len is the number of descriptors.
func (p *Program) Len() int {
	return len(p.descriptors)
}

// Exhausted reports whether every descriptor has been instantiated.
func (p *Program) Exhausted() bool {
	return p.cursor >= len(p.descriptors)
}

// Descriptor returns a copy of the descriptor at index i.
func (p *Program) Descriptor(i int) (command.Descriptor, bool) {
	if i < 0 || i >= len(p.descriptors) {
		return command.Descriptor{}, false
	}
	return p.descriptors[i].Clone(), true
}
