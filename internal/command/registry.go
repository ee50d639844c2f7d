package command

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maintains known command builders keyed by descriptor kind.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register installs a builder. Returns an error if the kind already exists.
func (r *Registry) Register(kind string, builder Builder) error {
	if kind == "" {
		return fmt.Errorf("command: kind is required")
	}
	if builder == nil {
		return fmt.Errorf("command: builder is required for %s", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("command: %s already registered", kind)
	}
	r.builders[kind] = builder
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(kind string, builder Builder) {
	if err := r.Register(kind, builder); err != nil {
		panic(err)
	}
}

// Compile turns a descriptor into its prototype.
func (r *Registry) Compile(desc Descriptor) (Prototype, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	builder, ok := r.builders[desc.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command: unknown kind %s", desc.Kind)
	}
	proto, err := builder(desc.Params.Clone())
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", desc.Name(), err)
	}
	if proto == nil {
		return nil, fmt.Errorf("command %s: builder returned no prototype", desc.Name())
	}
	return proto, nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[kind]
	return ok
}

// Kinds returns a sorted list of registered kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Stateless returns a builder whose every instance is the same stateless
// command. Only safe for commands that finish on their first call.
func Stateless(cmd Command) Builder {
	return func(Params) (Prototype, error) {
		return func() Command { return cmd }, nil
	}
}
