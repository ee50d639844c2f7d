package sce

import (
	"fmt"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

type runScriptModeParams struct {
	Mode *int `yaml:"mode"`
}

func runScriptModeBuilder(params command.Params) (command.Prototype, error) {
	var p runScriptModeParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Mode == nil {
		return nil, fmt.Errorf("mode is required")
	}
	mode := env.RunMode(*p.Mode)
	return func() command.Command {
		return command.Func(func(_ scene.Scene, _ ui.Frame, e *env.Env) {
			e.SetRunMode(mode)
		})
	}, nil
}

type setVarParams struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

func setVarBuilder(params command.Params) (command.Prototype, error) {
	var p setVarParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if p.Name == env.RunModeName {
		if _, ok := p.Value.(int); !ok {
			return nil, fmt.Errorf("%s must be an integer, got %T", env.RunModeName, p.Value)
		}
	}
	return func() command.Command {
		return command.Func(func(_ scene.Scene, _ ui.Frame, e *env.Env) {
			e.Set(p.Name, p.Value)
		})
	}, nil
}
