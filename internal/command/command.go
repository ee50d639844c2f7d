package command

import (
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// Command is implemented by every scripted operation.
//
// Update is called once per frame until it returns true, which it does on the
// frame it performs its last unit of work. It is never called again after
// that. env is only valid for the duration of the call.
type Command interface {
	Update(s scene.Scene, frame ui.Frame, e *env.Env, delta float64) bool
}

// Func adapts a function into a command that finishes on its first call.
type Func func(s scene.Scene, frame ui.Frame, e *env.Env)

// Update implements Command.
func (f Func) Update(s scene.Scene, frame ui.Frame, e *env.Env, _ float64) bool {
	f(s, frame, e)
	return true
}

// UpdateFunc adapts a function with its own completion signal.
type UpdateFunc func(s scene.Scene, frame ui.Frame, e *env.Env, delta float64) bool

// Update implements Command.
func (f UpdateFunc) Update(s scene.Scene, frame ui.Frame, e *env.Env, delta float64) bool {
	return f(s, frame, e, delta)
}

// Prototype manufactures a fresh, independently stateful instance of one
// compiled descriptor. It must not fail: everything that can go wrong is
// checked when the prototype is built.
type Prototype func() Command

// Builder validates a descriptor's parameters and returns its prototype.
type Builder func(params Params) (Prototype, error)
