package sce

import (
	"fmt"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/scene"
	"github.com/kingrea/sce/internal/ui"
)

// NextButton is the id of the button that closes a dialog box.
const NextButton = "next"

type dlgParams struct {
	Speaker string `yaml:"speaker"`
	Text    string `yaml:"text"`
}

// dlg shows a dialog box every frame until the player presses next.
type dlg struct {
	speaker string
	text    string
}

func dlgBuilder(params command.Params) (command.Prototype, error) {
	var p dlgParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	return func() command.Command { return &dlg{speaker: p.Speaker, text: p.Text} }, nil
}

func (c *dlg) Update(_ scene.Scene, frame ui.Frame, e *env.Env, _ float64) bool {
	frame.Dialog(c.speaker, c.text)
	if frame.Button(NextButton) {
		env.Store(e, DialogOpen, false)
		return true
	}
	env.Store(e, DialogOpen, true)
	return false
}

type captionParams struct {
	Text    string  `yaml:"text"`
	Seconds float64 `yaml:"seconds"`
}

// caption shows a line of text above the scene until its seconds have
// elapsed. Without seconds it is drawn for a single frame.
type caption struct {
	text    string
	seconds float64
	elapsed float64
}

func captionBuilder(params command.Params) (command.Prototype, error) {
	var p captionParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if p.Seconds < 0 {
		return nil, fmt.Errorf("seconds must be >= 0")
	}
	return func() command.Command { return &caption{text: p.Text, seconds: p.Seconds} }, nil
}

func (c *caption) Update(_ scene.Scene, frame ui.Frame, _ *env.Env, delta float64) bool {
	frame.Caption(c.text)
	c.elapsed += delta
	return c.elapsed >= c.seconds
}
