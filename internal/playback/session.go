// Package playback assembles a playable scene (registry, program, director,
// scene graph and overlay) and drives it frame by frame, either headless or
// from a host loop such as the terminal UI.
package playback

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/director"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/logging"
	"github.com/kingrea/sce/internal/resource"
	"github.com/kingrea/sce/internal/sce"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/script"
	"github.com/kingrea/sce/internal/ui"
)

// Session owns everything one script playback touches.
type Session struct {
	Script   script.Definition
	Director *director.Director
	Scene    *scene.Graph
	Overlay  *ui.Overlay

	log logrus.FieldLogger
}

// SessionOption customizes NewSession.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	log   logrus.FieldLogger
	trace func(director.Event)
	runID string
	env   *env.Env
}

// WithLogger routes session, director and command logs to log.
func WithLogger(log logrus.FieldLogger) SessionOption {
	return func(c *sessionConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTrace forwards director scheduling events.
func WithTrace(trace func(director.Event)) SessionOption {
	return func(c *sessionConfig) {
		c.trace = trace
	}
}

// WithRunID pins the director run identifier.
func WithRunID(id string) SessionOption {
	return func(c *sessionConfig) {
		c.runID = id
	}
}

// WithEnv seeds the shared environment, e.g. with variables set on the
// command line.
func WithEnv(e *env.Env) SessionOption {
	return func(c *sessionConfig) {
		c.env = e
	}
}

// NewSession registers the built-in commands against res, compiles def and
// wires a director to a fresh scene graph named after the script.
func NewSession(def script.Definition, res resource.Accessor, opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{log: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log.WithField("script", def.ID)

	reg, err := NewRegistry(res, log)
	if err != nil {
		return nil, err
	}
	prog, err := def.Compile(reg)
	if err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}
	dirOpts := []director.Option{director.WithLogger(log)}
	if cfg.trace != nil {
		dirOpts = append(dirOpts, director.WithTrace(cfg.trace))
	}
	if cfg.runID != "" {
		dirOpts = append(dirOpts, director.WithRunID(cfg.runID))
	}
	if cfg.env != nil {
		dirOpts = append(dirOpts, director.WithEnv(cfg.env))
	}
	dir, err := director.New(prog, dirOpts...)
	if err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}
	sceneName := def.Scene
	if sceneName == "" {
		sceneName = def.ID
	}
	return &Session{
		Script:   def,
		Director: dir,
		Scene:    scene.NewGraph(sceneName),
		Overlay:  ui.NewOverlay(),
		log:      log,
	}, nil
}

// NewRegistry returns a registry holding the built-in commands bound to res.
// Loaders use it to reject unknown kinds before a session is built.
func NewRegistry(res resource.Accessor, log logrus.FieldLogger) (*command.Registry, error) {
	reg := command.NewRegistry()
	if err := sce.RegisterBuiltins(reg, sce.Deps{Resources: res, Log: log}); err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}
	return reg, nil
}

// Preload warms every clip the script references. Only managers that support
// preloading are warmed; other accessors are left alone.
func Preload(ctx context.Context, def script.Definition, res resource.Accessor) error {
	mgr, ok := res.(*resource.Manager)
	if !ok {
		return nil
	}
	uses := def.Clips()
	refs := make([]resource.ClipRef, 0, len(uses))
	for _, use := range uses {
		refs = append(refs, resource.ClipRef{Role: use.Role, Action: use.Action})
	}
	return mgr.Preload(ctx, refs)
}

// Step runs one frame: the overlay latches input, the director ticks, then
// scene animations advance by delta.
func (s *Session) Step(input ui.Input, delta float64) {
	s.Overlay.Begin(input)
	s.Director.Update(s.Scene, s.Overlay, delta)
	s.Scene.Advance(delta)
}

// Done reports whether the script has nothing left to run.
func (s *Session) Done() bool {
	return s.Director.Done()
}

// Snapshot returns the director snapshot.
func (s *Session) Snapshot() director.Snapshot {
	return s.Director.Snapshot()
}
