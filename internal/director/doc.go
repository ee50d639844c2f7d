// Package director runs a compiled Program of scripted commands, one tick per
// rendered frame.
//
// A tick does one of two things. While any command is in flight it polls
// every in-flight command once and drops those that report completion; the
// program is not consulted. Otherwise it drains: it instantiates the next
// command, invokes it once, parks it if it is not done, and keeps going only
// while the shared environment's run mode is batch. A paced run mode (the
// default) therefore starts one command per tick, while a batch section
// starts a group of commands in the same tick and waits for all of them
// before moving on.
//
// Each descriptor is instantiated at most once and in program order.
// Exhausting the program ends the tick regardless of the run mode; from
// then on ticks are no-ops.
package director
