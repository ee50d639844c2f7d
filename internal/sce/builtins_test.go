package sce

import (
	"math"
	"testing"
	"testing/fstest"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/resource"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

const dt = 0.1

func newRegistry(t *testing.T) *command.Registry {
	t.Helper()
	res, err := resource.NewManager(fstest.MapFS{
		"role/11/c01.yaml": {Data: []byte("frames: 10\nfps: 10\n")},
		"role/11/j04.yaml": {Data: []byte("frames: 3\nfps: 10\n")},
	})
	if err != nil {
		t.Fatalf("resource manager: %v", err)
	}
	reg := command.NewRegistry()
	if err := RegisterBuiltins(reg, Deps{Resources: res}); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return reg
}

func instance(t *testing.T, reg *command.Registry, kind string, params command.Params) command.Command {
	t.Helper()
	proto, err := reg.Compile(command.New(kind, params))
	if err != nil {
		t.Fatalf("compile %s: %v", kind, err)
	}
	return proto()
}

// runUntilDone drives cmd like the host would: update, then advance the scene.
func runUntilDone(t *testing.T, cmd command.Command, g *scene.Graph, o *ui.Overlay, e *env.Env, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		o.Begin(ui.Input{})
		if cmd.Update(g, o, e, dt) {
			return i
		}
		g.Advance(dt)
	}
	t.Fatalf("command did not finish within %d frames", limit)
	return 0
}

func TestRegisterBuiltinsInstallsCatalogue(t *testing.T) {
	reg := newRegistry(t)
	want := []string{
		KindCameraMove, KindCameraSet, KindDlg, KindIdle, KindRoleActive,
		KindRoleSetPos, KindRoleShowAction, KindRunScriptMode, KindSetVar, KindWaitFrames,
		KindCaption,
	}
	for _, kind := range want {
		if !reg.Has(kind) {
			t.Fatalf("missing builtin %s", kind)
		}
	}
	if err := RegisterBuiltins(reg, Deps{Resources: nil}); err == nil {
		t.Fatalf("expected missing resources to fail")
	}
}

func TestRoleActiveAddsAndHidesRole(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	if !instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, ui.NewOverlay(), e, dt) {
		t.Fatalf("role_active must finish immediately")
	}
	role, ok := g.Entity(RoleEntityName(11))
	if !ok || !role.Visible || role.Model != "ROLE/11" {
		t.Fatalf("expected visible role entity, got %+v", role)
	}
	if role.Animation == nil || role.Animation.Clip.Name != idleAction || !role.Animation.Loops() {
		t.Fatalf("expected looping idle clip, got %+v", role.Animation)
	}
	instance(t, reg, KindRoleActive, command.Params{"role": 11, "active": false}).Update(g, ui.NewOverlay(), e, dt)
	if role.Visible {
		t.Fatalf("expected role hidden")
	}
	instance(t, reg, KindRoleActive, command.Params{"role": 99}).Update(g, ui.NewOverlay(), e, dt)
	if _, ok := g.Entity(RoleEntityName(99)); ok {
		t.Fatalf("role without resources must not be added")
	}
}

func TestRoleShowActionWaitsForClip(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	o := ui.NewOverlay()
	instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, o, e, dt)

	cmd := instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "j04"})
	frames := runUntilDone(t, cmd, g, o, e, 10)
	// 3 frames at 10fps play in 0.3s; the command sees the finish on the
	// update after the third advance.
	if frames != 4 {
		t.Fatalf("expected completion on frame 4, got %d", frames)
	}
	role, _ := g.Entity(RoleEntityName(11))
	if role.Animation.Clip.Name != "j04" || role.Animation.Frame() != 2 {
		t.Fatalf("expected held last frame of j04, got %+v", role.Animation)
	}
}

func TestRoleShowActionLoopingFinishesImmediately(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, ui.NewOverlay(), e, dt)
	cmd := instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "j04", "repeat": scene.RepeatLoop})
	if !cmd.Update(g, ui.NewOverlay(), e, dt) {
		t.Fatalf("looping action should not block the script")
	}
}

func TestRoleShowActionYieldsWhenAnimationReplaced(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	o := ui.NewOverlay()
	instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, o, e, dt)

	first := instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "j04"})
	if first.Update(g, o, e, dt) {
		t.Fatalf("j04 should still be playing")
	}
	g.Advance(dt)
	role, _ := g.Entity(RoleEntityName(11))
	held := role.Animation

	second := instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "c01", "repeat": scene.RepeatLoop})
	if !second.Update(g, o, e, dt) {
		t.Fatalf("looping action should finish at once")
	}
	if !first.Update(g, o, e, dt) {
		t.Fatalf("first action should finish once its animation is replaced")
	}
	if held.Finished() {
		t.Fatalf("j04 was cut short and should not report finished")
	}
	if role.Animation.Clip.Name != "c01" {
		t.Fatalf("expected c01 to keep playing, got %s", role.Animation.Clip.Name)
	}
}

func TestRoleShowActionMissingRoleOrClipFinishes(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	if !instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "j04"}).Update(g, ui.NewOverlay(), e, dt) {
		t.Fatalf("missing role should finish")
	}
	instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, ui.NewOverlay(), e, dt)
	if !instance(t, reg, KindRoleShowAction, command.Params{"role": 11, "action": "zz"}).Update(g, ui.NewOverlay(), e, dt) {
		t.Fatalf("missing clip should finish")
	}
}

func TestCameraSetConvertsDegrees(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	cmd := instance(t, reg, KindCameraSet, command.Params{
		"yaw":      33.24,
		"pitch":    -19.48,
		"position": []any{308.31, 229.44, 468.61},
	})
	if !cmd.Update(g, ui.NewOverlay(), env.New(), dt) {
		t.Fatalf("camera_set must finish immediately")
	}
	cam := g.Camera()
	if math.Abs(cam.Yaw-33.24*math.Pi/180) > 1e-9 || math.Abs(cam.Pitch+19.48*math.Pi/180) > 1e-9 {
		t.Fatalf("unexpected angles %+v", cam)
	}
	if cam.Position != scene.NewVec3(308.31, 229.44, 468.61) {
		t.Fatalf("unexpected position %+v", cam.Position)
	}
}

func TestCameraMoveInterpolates(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	cmd := instance(t, reg, KindCameraMove, command.Params{"position": []any{10, 0, 0}, "duration": 0.4})
	if cmd.Update(g, ui.NewOverlay(), e, 0.2) {
		t.Fatalf("camera_move finished too early")
	}
	if math.Abs(g.Camera().Position.X-5) > 1e-9 {
		t.Fatalf("expected halfway, got %+v", g.Camera().Position)
	}
	if !cmd.Update(g, ui.NewOverlay(), e, 0.2) {
		t.Fatalf("camera_move should finish at its duration")
	}
	if g.Camera().Position != scene.NewVec3(10, 0, 0) {
		t.Fatalf("expected exact target, got %+v", g.Camera().Position)
	}
}

func TestIdleAndWaitFrames(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	o := ui.NewOverlay()
	e := env.New()
	if got := runUntilDone(t, instance(t, reg, KindIdle, command.Params{"seconds": 0.35}), g, o, e, 10); got != 4 {
		t.Fatalf("idle 0.35s at 0.1s frames should take 4 frames, got %d", got)
	}
	if got := runUntilDone(t, instance(t, reg, KindWaitFrames, command.Params{"frames": 3}), g, o, e, 10); got != 3 {
		t.Fatalf("wait_frames 3 should take 3 frames, got %d", got)
	}
}

func TestDialogWaitsForNext(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	o := ui.NewOverlay()
	e := env.New()
	cmd := instance(t, reg, KindDlg, command.Params{"speaker": "Jing Tian", "text": "..."})
	for i := 0; i < 3; i++ {
		o.Begin(ui.Input{})
		if cmd.Update(g, o, e, dt) {
			t.Fatalf("dialog must wait for the player")
		}
		if open, _ := env.Lookup(e, DialogOpen); !open {
			t.Fatalf("dlg_open should be set while showing")
		}
	}
	o.Begin(ui.Input{Confirm: true})
	if !cmd.Update(g, o, e, dt) {
		t.Fatalf("dialog should close on confirm")
	}
	if open, _ := env.Lookup(e, DialogOpen); open {
		t.Fatalf("dlg_open should be cleared")
	}
	if len(o.Widgets()) != 2 {
		t.Fatalf("expected dialog and button drawn, got %+v", o.Widgets())
	}
}

func TestCaptionShowsForItsDuration(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	o := ui.NewOverlay()
	e := env.New()
	cmd := instance(t, reg, KindCaption, command.Params{"text": "Chapter 1", "seconds": 0.25})
	want := ui.Widget{Kind: ui.WidgetCaption, Text: "Chapter 1"}
	for i := 1; i <= 3; i++ {
		o.Begin(ui.Input{})
		done := cmd.Update(g, o, e, dt)
		if got := o.Widgets(); len(got) != 1 || got[0] != want {
			t.Fatalf("frame %d: expected caption drawn, got %+v", i, got)
		}
		if done != (i == 3) {
			t.Fatalf("frame %d: done = %v", i, done)
		}
	}

	once := instance(t, reg, KindCaption, command.Params{"text": "Later that night"})
	o.Begin(ui.Input{})
	if !once.Update(g, o, e, dt) || len(o.Widgets()) != 1 {
		t.Fatalf("caption without seconds should draw one frame, got %+v", o.Widgets())
	}
}

func TestRunModeCommands(t *testing.T) {
	reg := newRegistry(t)
	e := env.New()
	instance(t, reg, KindRunScriptMode, command.Params{"mode": 0}).Update(nil, nil, e, dt)
	if e.RunMode() != env.RunModeBatch {
		t.Fatalf("expected batch mode")
	}
	instance(t, reg, KindSetVar, command.Params{"name": env.RunModeName, "value": 1}).Update(nil, nil, e, dt)
	if !e.RunMode().Paced() {
		t.Fatalf("expected paced mode via set_var")
	}
	instance(t, reg, KindSetVar, command.Params{"name": "chapter", "value": "q01"}).Update(nil, nil, e, dt)
	if v, _ := e.Get("chapter"); v != "q01" {
		t.Fatalf("expected chapter var, got %v", v)
	}
}

func TestBuildersRejectBadParams(t *testing.T) {
	reg := newRegistry(t)
	cases := []command.Descriptor{
		command.New(KindRunScriptMode, nil),
		command.New(KindSetVar, command.Params{"name": env.RunModeName, "value": "fast"}),
		command.New(KindSetVar, command.Params{"value": 1}),
		command.New(KindCameraSet, command.Params{"position": []any{1, 2}}),
		command.New(KindCameraMove, command.Params{"position": []any{1, 2, 3}, "duration": -1}),
		command.New(KindIdle, command.Params{"seconds": -2}),
		command.New(KindWaitFrames, command.Params{"frames": 0}),
		command.New(KindDlg, command.Params{"speaker": "x"}),
		command.New(KindCaption, command.Params{"seconds": 1}),
		command.New(KindCaption, command.Params{"text": "Chapter 1", "seconds": -1}),
		command.New(KindRoleActive, command.Params{"role": 0}),
		command.New(KindRoleShowAction, command.Params{"role": 11}),
		command.New(KindRoleSetPos, command.Params{"role": 11, "position": []any{1}}),
		command.New(KindIdle, command.Params{"secs": 1}),
	}
	for _, desc := range cases {
		if _, err := reg.Compile(desc); err == nil {
			t.Fatalf("expected %s %+v to be rejected", desc.Kind, desc.Params)
		}
	}
}

func TestRoleSetPos(t *testing.T) {
	reg := newRegistry(t)
	g := scene.NewGraph("q01")
	e := env.New()
	instance(t, reg, KindRoleActive, command.Params{"role": 11}).Update(g, ui.NewOverlay(), e, dt)
	instance(t, reg, KindRoleSetPos, command.Params{"role": 11, "position": []any{1, 2, 3}}).Update(g, ui.NewOverlay(), e, dt)
	role, _ := g.Entity(RoleEntityName(11))
	if role.Position != scene.NewVec3(1, 2, 3) {
		t.Fatalf("unexpected position %+v", role.Position)
	}
}
