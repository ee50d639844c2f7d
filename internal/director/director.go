package director

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/logging"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// Director runs a Program one tick per rendered frame.
type Director struct {
	program *Program
	env     *env.Env
	active  []inflight
	tick    uint64
	runID   string
	log     logrus.FieldLogger
	trace   func(Event)

	reportedEnd bool
}

type inflight struct {
	cmd   command.Command
	index int
}

// Option customizes the director instance.
type Option func(*Director)

// WithLogger routes scheduling logs to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Director) {
		if log != nil {
			d.log = log
		}
	}
}

// WithTrace installs a callback invoked for every scheduling event.
func WithTrace(trace func(Event)) Option {
	return func(d *Director) {
		d.trace = trace
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(d *Director) {
		if id != "" {
			d.runID = id
		}
	}
}

// WithEnv seeds the director with a pre-populated environment. Its run mode
// is reset to paced so the first tick starts from the documented default.
func WithEnv(e *env.Env) Option {
	return func(d *Director) {
		if e != nil {
			d.env = e
		}
	}
}

// New wires a director to a compiled program.
func New(program *Program, opts ...Option) (*Director, error) {
	if program == nil {
		return nil, fmt.Errorf("director: program is required")
	}
	d := &Director{
		program: program,
		env:     env.New(),
		runID:   uuid.NewString(),
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.env.SetRunMode(env.RunModePaced)
	d.log = d.log.WithField("run", d.runID)
	return d, nil
}

// Update performs one tick. While commands are in flight it only polls them;
// otherwise it drains the program until a command leaves the run mode paced
// or the program runs out.
func (d *Director) Update(s scene.Scene, frame ui.Frame, delta float64) {
	d.tick++
	if len(d.active) > 0 {
		d.poll(s, frame, delta)
		return
	}
	d.drain(s, frame, delta)
}

func (d *Director) drain(s scene.Scene, frame ui.Frame, delta float64) {
	for {
		index := d.program.Cursor()
		cmd, ok := d.program.Next()
		if !ok {
			if !d.reportedEnd {
				d.reportedEnd = true
				d.emit(EventExhausted, -1)
			}
			return
		}
		d.emit(EventInstantiated, index)
		if cmd.Update(s, frame, d.env, delta) {
			d.emit(EventCompleted, index)
		} else {
			d.active = append(d.active, inflight{cmd: cmd, index: index})
			d.emit(EventParked, index)
		}
		if d.env.RunMode().Paced() {
			return
		}
	}
}

func (d *Director) poll(s scene.Scene, frame ui.Frame, delta float64) {
	remaining := d.active[:0]
	for _, f := range d.active {
		if f.cmd.Update(s, frame, d.env, delta) {
			d.emit(EventCompleted, f.index)
			continue
		}
		remaining = append(remaining, f)
	}
	for i := len(remaining); i < len(d.active); i++ {
		d.active[i] = inflight{}
	}
	d.active = remaining
}

func (d *Director) emit(kind EventType, index int) {
	ev := Event{Type: kind, Tick: d.tick, Index: index}
	if index >= 0 && index < d.program.Len() {
		ev.Kind = d.program.descriptors[index].Kind
		ev.Label = d.program.descriptors[index].Label
	}
	d.log.WithFields(logrus.Fields{
		"tick":  ev.Tick,
		"index": ev.Index,
		"kind":  ev.Kind,
	}).Debugf("director: %s", kind)
	if d.trace != nil {
		d.trace(ev)
	}
}

// Env exposes the shared environment for host inspection.
func (d *Director) Env() *env.Env {
	return d.env
}

// Done reports the idle steady state: nothing in flight, nothing left.
func (d *Director) Done() bool {
	return len(d.active) == 0 && d.program.Exhausted()
}

// Snapshot summarizes the director between ticks.
func (d *Director) Snapshot() Snapshot {
	status := StatusDraining
	switch {
	case len(d.active) > 0:
		status = StatusPolling
	case d.program.Exhausted():
		status = StatusIdle
	}
	return Snapshot{
		RunID:   d.runID,
		Tick:    d.tick,
		Status:  status,
		Cursor:  d.program.Cursor(),
		Len:     d.program.Len(),
		Active:  len(d.active),
		RunMode: d.env.RunMode(),
	}
}
