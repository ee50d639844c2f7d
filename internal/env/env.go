// Package env is the shared environment commands read and write during a
// tick. The run mode is a typed field; everything else lives in open slots
// reached by name or through typed keys.
package env

import (
	"fmt"
	"sort"
)

// RunModeName is the well-known slot name of the continuation-mode flag. It
// is the only name the director interprets.
const RunModeName = "run_mode"

// RunMode decides whether the director yields after each drained command.
type RunMode int

const (
	// RunModeBatch keeps unrolling commands within the same tick. Any value
	// other than RunModePaced behaves the same way.
	RunModeBatch RunMode = 0
	// RunModePaced yields back to the host after every drained command.
	RunModePaced RunMode = 1
)

// Paced reports whether the director should stop draining for this tick.
func (m RunMode) Paced() bool {
	return m == RunModePaced
}

// Env is the mutable store shared by every command of a running program.
// The continuation-mode flag lives in a typed field; everything else is an
// open, name-keyed slot whose type is agreed between commands out of band.
type Env struct {
	runMode RunMode
	vars    map[string]any
}

// New returns an environment with the run mode preset to RunModePaced.
func New() *Env {
	return &Env{
		runMode: RunModePaced,
		vars:    map[string]any{},
	}
}

// RunMode returns the current continuation-mode flag.
func (e *Env) RunMode() RunMode {
	return e.runMode
}

// SetRunMode switches the continuation-mode flag.
func (e *Env) SetRunMode(mode RunMode) {
	e.runMode = mode
}

// Get returns the value stored under name. The run mode is reported as an int.
func (e *Env) Get(name string) (any, bool) {
	if name == RunModeName {
		return int(e.runMode), true
	}
	value, ok := e.vars[name]
	return value, ok
}

// Set stores value under name. Writing run_mode with anything that is not an
// integer panics with a *TypeMismatchError.
func (e *Env) Set(name string, value any) {
	if name == RunModeName {
		e.runMode = RunMode(mustInt(name, value))
		return
	}
	e.vars[name] = value
}

// Delete drops an open slot. The run mode cannot be deleted.
func (e *Env) Delete(name string) {
	if name == RunModeName {
		return
	}
	delete(e.vars, name)
}

// Names lists the open slot names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeMismatchError describes a read or write that assumed the wrong type for
// a slot. It signals a broken command, never bad input, so it is raised with
// panic rather than returned.
type TypeMismatchError struct {
	Name string
	Want string
	Got  any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("env: slot %s holds %T, want %s", e.Name, e.Got, e.Want)
}

func mustInt(name string, value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case RunMode:
		return int(v)
	default:
		panic(&TypeMismatchError{Name: name, Want: "int", Got: value})
	}
}
