package env

import "fmt"

// Key names a statically typed slot. Commands that talk to each other through
// the environment share a Key value instead of a bare string.
type Key[T any] struct {
	name string
}

// NewKey declares a typed slot. Declaring a key for run_mode is rejected
// because that slot is owned by the typed RunMode accessors.
func NewKey[T any](name string) Key[T] {
	if name == "" {
		panic("env: key name is required")
	}
	if name == RunModeName {
		panic(fmt.Sprintf("env: %s is reserved", RunModeName))
	}
	return Key[T]{name: name}
}

// Name returns the slot name.
func (k Key[T]) Name() string {
	return k.name
}

// Lookup reads a typed slot. A missing slot reports false; a slot holding a
// different type panics with *TypeMismatchError.
func Lookup[T any](e *Env, key Key[T]) (T, bool) {
	var zero T
	raw, ok := e.vars[key.name]
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		panic(&TypeMismatchError{Name: key.name, Want: fmt.Sprintf("%T", zero), Got: raw})
	}
	return value, true
}

// LookupOr reads a typed slot, falling back to def when it is unset.
func LookupOr[T any](e *Env, key Key[T], def T) T {
	if value, ok := Lookup(e, key); ok {
		return value
	}
	return def
}

// Store writes a typed slot.
func Store[T any](e *Env, key Key[T], value T) {
	e.vars[key.name] = value
}
