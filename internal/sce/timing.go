package sce

import (
	"fmt"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

type idleParams struct {
	Seconds float64 `yaml:"seconds"`
}

// idle waits until the accumulated frame time reaches the given seconds.
type idle struct {
	seconds float64
	elapsed float64
}

func idleBuilder(params command.Params) (command.Prototype, error) {
	var p idleParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Seconds < 0 {
		return nil, fmt.Errorf("seconds must be >= 0")
	}
	return func() command.Command { return &idle{seconds: p.Seconds} }, nil
}

func (c *idle) Update(_ scene.Scene, _ ui.Frame, _ *env.Env, delta float64) bool {
	c.elapsed += delta
	return c.elapsed >= c.seconds
}

type waitFramesParams struct {
	Frames int `yaml:"frames"`
}

// waitFrames finishes on its n-th invocation regardless of frame time.
type waitFrames struct {
	frames int
	calls  int
}

func waitFramesBuilder(params command.Params) (command.Prototype, error) {
	var p waitFramesParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Frames < 1 {
		return nil, fmt.Errorf("frames must be >= 1")
	}
	return func() command.Command { return &waitFrames{frames: p.Frames} }, nil
}

func (c *waitFrames) Update(scene.Scene, ui.Frame, *env.Env, float64) bool {
	c.calls++
	return c.calls >= c.frames
}
