package sce

import (
	"fmt"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// Angles in scripts are degrees.
type cameraSetParams struct {
	Yaw      float64   `yaml:"yaw"`
	Pitch    float64   `yaml:"pitch"`
	Position vec3Param `yaml:"position"`
}

func cameraSetBuilder(params command.Params) (command.Prototype, error) {
	var p cameraSetParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	pos, err := p.Position.vec("position")
	if err != nil {
		return nil, err
	}
	yaw, pitch := scene.Radians(p.Yaw), scene.Radians(p.Pitch)
	return func() command.Command {
		return command.Func(func(s scene.Scene, _ ui.Frame, _ *env.Env) {
			cam := s.Camera()
			cam.Position = pos
			cam.Yaw = yaw
			cam.Pitch = pitch
		})
	}, nil
}

type cameraMoveParams struct {
	Position vec3Param `yaml:"position"`
	Duration float64   `yaml:"duration"`
}

// cameraMove glides the camera to a position over a duration in seconds.
type cameraMove struct {
	to       scene.Vec3
	duration float64

	started bool
	from    scene.Vec3
	elapsed float64
}

func cameraMoveBuilder(params command.Params) (command.Prototype, error) {
	var p cameraMoveParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	to, err := p.Position.vec("position")
	if err != nil {
		return nil, err
	}
	if p.Duration < 0 {
		return nil, fmt.Errorf("duration must be >= 0")
	}
	return func() command.Command {
		return &cameraMove{to: to, duration: p.Duration}
	}, nil
}

func (c *cameraMove) Update(s scene.Scene, _ ui.Frame, _ *env.Env, delta float64) bool {
	cam := s.Camera()
	if !c.started {
		c.started = true
		c.from = cam.Position
	}
	c.elapsed += delta
	if c.duration <= 0 || c.elapsed >= c.duration {
		cam.Position = c.to
		return true
	}
	cam.Position = c.from.Lerp(c.to, c.elapsed/c.duration)
	return false
}
