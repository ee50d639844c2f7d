package sce

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// idleAction is the clip a role loops when it is not acting.
const idleAction = "c01"

type roleActiveParams struct {
	Role   int   `yaml:"role"`
	Active *bool `yaml:"active"`
}

// roleActive puts a role into the scene (or hides it).
type roleActive struct {
	deps   Deps
	role   int
	active bool
}

func roleActiveBuilder(deps Deps) command.Builder {
	return func(params command.Params) (command.Prototype, error) {
		var p roleActiveParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if p.Role <= 0 {
			return nil, fmt.Errorf("role must be positive")
		}
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		return func() command.Command {
			return &roleActive{deps: deps, role: p.Role, active: active}
		}, nil
	}
}

func (c *roleActive) Update(s scene.Scene, _ ui.Frame, _ *env.Env, _ float64) bool {
	name := RoleEntityName(c.role)
	log := c.deps.Log.WithField("role", c.role)
	if entity, ok := s.Entity(name); ok {
		entity.Visible = c.active
		return true
	}
	if !c.active {
		return true
	}
	model, err := c.deps.Resources.Model(c.role)
	if err != nil {
		log.WithError(err).Warn("role_active: model unavailable")
		return true
	}
	entity := scene.NewEntity(name, model)
	if clip, err := c.deps.Resources.Clip(c.role, idleAction); err == nil {
		entity.Play(clip, scene.RepeatLoop)
	} else {
		log.WithError(err).Debug("role_active: no idle clip")
	}
	if err := s.AddEntity(entity); err != nil {
		log.WithError(err).Warn("role_active: add entity")
	}
	return true
}

type roleShowActionParams struct {
	Role   int    `yaml:"role"`
	Action string `yaml:"action"`
	Repeat *int   `yaml:"repeat"`
}

// roleShowAction plays a clip on a role and waits for it to finish.
type roleShowAction struct {
	deps   Deps
	role   int
	action string
	repeat int

	anim *scene.Animation
}

func roleShowActionBuilder(deps Deps) command.Builder {
	return func(params command.Params) (command.Prototype, error) {
		var p roleShowActionParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if p.Role <= 0 {
			return nil, fmt.Errorf("role must be positive")
		}
		if p.Action == "" {
			return nil, fmt.Errorf("action is required")
		}
		repeat := scene.RepeatHold
		if p.Repeat != nil {
			repeat = *p.Repeat
		}
		return func() command.Command {
			return &roleShowAction{deps: deps, role: p.Role, action: p.Action, repeat: repeat}
		}, nil
	}
}

func (c *roleShowAction) Update(s scene.Scene, _ ui.Frame, _ *env.Env, _ float64) bool {
	entity, ok := s.Entity(RoleEntityName(c.role))
	if !ok {
		c.deps.Log.WithField("role", c.role).Warn("role_show_action: role not in scene")
		return true
	}
	if c.anim == nil {
		clip, err := c.deps.Resources.Clip(c.role, c.action)
		if err != nil {
			c.deps.Log.WithFields(logrus.Fields{"role": c.role, "action": c.action}).
				WithError(err).Warn("role_show_action: clip unavailable")
			return true
		}
		c.anim = entity.Play(clip, c.repeat)
		if c.anim.Loops() {
			return true
		}
	}
	// Another command took over the entity's animation.
	if entity.Animation != c.anim {
		return true
	}
	return c.anim.Finished()
}

type roleSetPosParams struct {
	Role     int       `yaml:"role"`
	Position vec3Param `yaml:"position"`
}

func roleSetPosBuilder(deps Deps) command.Builder {
	return func(params command.Params) (command.Prototype, error) {
		var p roleSetPosParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if p.Role <= 0 {
			return nil, fmt.Errorf("role must be positive")
		}
		pos, err := p.Position.vec("position")
		if err != nil {
			return nil, err
		}
		name := RoleEntityName(p.Role)
		return func() command.Command {
			return command.Func(func(s scene.Scene, _ ui.Frame, _ *env.Env) {
				entity, ok := s.Entity(name)
				if !ok {
					deps.Log.WithField("role", p.Role).Warn("role_set_pos: role not in scene")
					return
				}
				entity.Position = pos
			})
		}, nil
	}
}
