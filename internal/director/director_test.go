package director

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// recorder collects "name" each time a stub command is invoked.
type recorder struct {
	calls []string
}

func (r *recorder) take() []string {
	out := r.calls
	r.calls = nil
	return out
}

type stubParams struct {
	Name  string `yaml:"name"`
	Mode  int    `yaml:"mode"`
	Calls int    `yaml:"calls"`
}

func stubRegistry(t *testing.T, rec *recorder) *command.Registry {
	t.Helper()
	reg := command.NewRegistry()
	reg.MustRegister("set", func(params command.Params) (command.Prototype, error) {
		var p stubParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		return func() command.Command {
			return command.Func(func(_ scene.Scene, _ ui.Frame, e *env.Env) {
				rec.calls = append(rec.calls, p.Name)
				e.Set(p.Name, true)
			})
		}, nil
	})
	reg.MustRegister("mode", func(params command.Params) (command.Prototype, error) {
		var p stubParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		return func() command.Command {
			return command.Func(func(_ scene.Scene, _ ui.Frame, e *env.Env) {
				rec.calls = append(rec.calls, fmt.Sprintf("mode%d", p.Mode))
				e.SetRunMode(env.RunMode(p.Mode))
			})
		}, nil
	})
	reg.MustRegister("wait", func(params command.Params) (command.Prototype, error) {
		var p stubParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		return func() command.Command {
			done := false
			calls := 0
			return command.UpdateFunc(func(scene.Scene, ui.Frame, *env.Env, float64) bool {
				if done {
					t.Fatalf("%s invoked after completion", p.Name)
				}
				calls++
				rec.calls = append(rec.calls, fmt.Sprintf("%s#%d", p.Name, calls))
				done = calls >= p.Calls
				return done
			})
		}, nil
	})
	return reg
}

func set(name string) command.Descriptor {
	return command.New("set", command.Params{"name": name})
}

func mode(m int) command.Descriptor {
	return command.New("mode", command.Params{"mode": m})
}

func wait(name string, calls int) command.Descriptor {
	return command.New("wait", command.Params{"name": name, "calls": calls})
}

func newTestDirector(t *testing.T, rec *recorder, descs ...command.Descriptor) *Director {
	t.Helper()
	prog, err := NewProgram(stubRegistry(t, rec), descs)
	if err != nil {
		t.Fatalf("new program: %v", err)
	}
	d, err := New(prog, WithRunID("test-run"))
	if err != nil {
		t.Fatalf("new director: %v", err)
	}
	return d
}

func tick(d *Director) {
	d.Update(scene.NewGraph("test"), ui.NewOverlay(), 1.0/30)
}

func TestPacedProgramRunsOneCommandPerTick(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec, set("a"), set("b"), set("c"))
	for i, want := range []string{"a", "b", "c"} {
		tick(d)
		if got := rec.take(); !reflect.DeepEqual(got, []string{want}) {
			t.Fatalf("tick %d: got %v, want [%s]", i+1, got, want)
		}
	}
	if !d.Done() {
		t.Fatalf("expected director idle after 3 ticks, got %+v", d.Snapshot())
	}
	if snap := d.Snapshot(); snap.Status != StatusIdle || snap.Active != 0 || snap.Cursor != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestBatchModeRunsWholeProgramInOneTick(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec, mode(0), set("a"), set("b"), set("c"))
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"mode0", "a", "b", "c"}) {
		t.Fatalf("unexpected batch trace %v", got)
	}
	if !d.Done() {
		t.Fatalf("expected program exhausted within one tick")
	}
	tick(d)
	if got := rec.take(); len(got) != 0 {
		t.Fatalf("idle tick must not run anything, got %v", got)
	}
}

func TestBlockingCommandHoldsProgramUntilDone(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec, wait("w", 3), set("after"))
	tick(d)
	if snap := d.Snapshot(); snap.Status != StatusPolling || snap.Cursor != 1 {
		t.Fatalf("expected polling after first call, got %+v", snap)
	}
	tick(d)
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"w#1", "w#2", "w#3"}) {
		t.Fatalf("unexpected wait trace %v", got)
	}
	if snap := d.Snapshot(); snap.Status != StatusDraining || snap.Cursor != 1 {
		t.Fatalf("program must not advance while waiting, got %+v", snap)
	}
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"after"}) {
		t.Fatalf("expected draining to resume, got %v", got)
	}
}

func TestEmptyProgramYieldsInBothModes(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec)
	tick(d)
	d.Env().SetRunMode(env.RunModeBatch)
	tick(d)
	if !d.Done() {
		t.Fatalf("empty program should be idle")
	}
}

func TestExhaustedProgramWithBatchFlagTerminates(t *testing.T) {
	rec := &recorder{}
	var events []Event
	prog, err := NewProgram(stubRegistry(t, rec), []command.Descriptor{mode(0), set("a")})
	if err != nil {
		t.Fatalf("new program: %v", err)
	}
	d, err := New(prog, WithTrace(func(ev Event) { events = append(events, ev) }))
	if err != nil {
		t.Fatalf("new director: %v", err)
	}
	for i := 0; i < 3; i++ {
		tick(d)
	}
	if d.Env().RunMode() != env.RunModeBatch {
		t.Fatalf("flag should still be batch")
	}
	exhausted := 0
	for _, ev := range events {
		if ev.Type == EventExhausted {
			exhausted++
		}
	}
	if exhausted != 1 {
		t.Fatalf("expected exactly one exhausted event, got %d in %+v", exhausted, events)
	}
}

func TestConcurrentCommandsFormBarrier(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec, mode(0), wait("x", 2), wait("y", 4), mode(1), set("after"))
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"mode0", "x#1", "y#1", "mode1"}) {
		t.Fatalf("unexpected first tick %v", got)
	}
	if snap := d.Snapshot(); snap.Active != 2 {
		t.Fatalf("expected both waits in flight, got %+v", snap)
	}
	tick(d)
	got := rec.take()
	if len(got) != 2 {
		t.Fatalf("expected both waits polled, got %v", got)
	}
	if snap := d.Snapshot(); snap.Active != 1 {
		t.Fatalf("expected x finished, got %+v", snap)
	}
	tick(d)
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"y#3", "y#4"}) {
		t.Fatalf("unexpected polling trace %v", got)
	}
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"after"}) {
		t.Fatalf("expected draining after barrier, got %v", got)
	}
}

func TestFlagChangeObservedWithinSameTick(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec, mode(0), set("a"), mode(1), set("b"))
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"mode0", "a", "mode1"}) {
		t.Fatalf("pacing flag flip must stop the drain right after it, got %v", got)
	}
	tick(d)
	if got := rec.take(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("unexpected second tick %v", got)
	}
}

func TestScriptedScenarioTrace(t *testing.T) {
	rec := &recorder{}
	d := newTestDirector(t, rec,
		set("A"), mode(0), set("B"), mode(1), wait("wait3", 3), set("C"))
	want := [][]string{
		{"A"},
		{"mode0", "B", "mode1"},
		{"wait3#1"},
		{"wait3#2"},
		{"wait3#3"},
		{"C"},
		nil,
	}
	for i, expected := range want {
		tick(d)
		if got := rec.take(); !reflect.DeepEqual(got, expected) {
			t.Fatalf("tick %d: got %v, want %v", i+1, got, expected)
		}
	}
	for _, name := range []string{"A", "B", "C"} {
		if v, ok := d.Env().Get(name); !ok || v != true {
			t.Fatalf("expected %s written to env", name)
		}
	}
}

func TestDuplicateDescriptorsInstantiateSeparately(t *testing.T) {
	rec := &recorder{}
	step := wait("act", 2)
	d := newTestDirector(t, rec, step, step)
	for i := 0; i < 4; i++ {
		tick(d)
	}
	if got := rec.take(); !reflect.DeepEqual(got, []string{"act#1", "act#2", "act#1", "act#2"}) {
		t.Fatalf("duplicates must get fresh instances, got %v", got)
	}
	if !d.Done() {
		t.Fatalf("expected idle")
	}
}

func TestTraceEvents(t *testing.T) {
	rec := &recorder{}
	var events []Event
	prog, err := NewProgram(stubRegistry(t, rec), []command.Descriptor{wait("w", 2)})
	if err != nil {
		t.Fatalf("new program: %v", err)
	}
	d, err := New(prog, WithTrace(func(ev Event) { events = append(events, ev) }))
	if err != nil {
		t.Fatalf("new director: %v", err)
	}
	tick(d)
	tick(d)
	tick(d)
	want := []EventType{EventInstantiated, EventParked, EventCompleted, EventExhausted}
	if len(events) != len(want) {
		t.Fatalf("unexpected events %+v", events)
	}
	for i, ev := range events {
		if ev.Type != want[i] {
			t.Fatalf("event %d: got %s, want %s", i, ev.Type, want[i])
		}
	}
	if events[0].Kind != "wait" || events[2].Tick != 2 || events[3].Index != -1 {
		t.Fatalf("unexpected event payloads %+v", events)
	}
}

func TestWithEnvResetsRunMode(t *testing.T) {
	rec := &recorder{}
	seed := env.New()
	seed.Set("chapter", 3)
	seed.SetRunMode(env.RunModeBatch)
	prog, err := NewProgram(stubRegistry(t, rec), []command.Descriptor{set("a"), set("b")})
	if err != nil {
		t.Fatalf("new program: %v", err)
	}
	d, err := New(prog, WithEnv(seed))
	if err != nil {
		t.Fatalf("new director: %v", err)
	}
	if d.Env() != seed || !d.Env().RunMode().Paced() {
		t.Fatalf("expected seeded env with paced run mode")
	}
	tick(d)
	if got := rec.take(); len(got) != 1 {
		t.Fatalf("expected paced drain, got %v", got)
	}
}

func TestNewRejectsNilProgram(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil program")
	}
	if _, err := NewProgram(nil, nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}
