// Package sce is the catalogue of scripted scene commands: role visibility
// and animation, camera placement and moves, timed waits, dialog boxes and
// environment writes. Every command implements command.Command and is
// installed into a registry by RegisterBuiltins.
package sce

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/command"
	"github.com/kingrea/sce/internal/env"
	"github.com/kingrea/sce/internal/logging"
	"github.com/kingrea/sce/internal/resource"
)

// Command kinds.
const (
	KindRoleActive     = "role_active"
	KindRunScriptMode  = "run_script_mode"
	KindCameraSet      = "camera_set"
	KindCameraMove     = "camera_move"
	KindIdle           = "idle"
	KindRoleShowAction = "role_show_action"
	KindRoleSetPos     = "role_set_pos"
	KindDlg            = "dlg"
	KindSetVar         = "set_var"
	KindWaitFrames     = "wait_frames"
	KindCaption        = "caption"
)

// DialogOpen is true while a dialog box waits for the player.
var DialogOpen = env.NewKey[bool]("dlg_open")

// Deps carries the collaborators commands may reach for.
type Deps struct {
	Resources resource.Accessor
	Log       logrus.FieldLogger
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	return logging.Discard()
}

// RegisterBuiltins installs every built-in command kind.
func RegisterBuiltins(reg *command.Registry, deps Deps) error {
	if reg == nil {
		return fmt.Errorf("sce: registry is required")
	}
	if deps.Resources == nil {
		return fmt.Errorf("sce: resource accessor is required")
	}
	deps.Log = deps.logger()
	builders := map[string]command.Builder{
		KindRoleActive:     roleActiveBuilder(deps),
		KindRunScriptMode:  runScriptModeBuilder,
		KindCameraSet:      cameraSetBuilder,
		KindCameraMove:     cameraMoveBuilder,
		KindIdle:           idleBuilder,
		KindRoleShowAction: roleShowActionBuilder(deps),
		KindRoleSetPos:     roleSetPosBuilder(deps),
		KindDlg:            dlgBuilder,
		KindSetVar:         setVarBuilder,
		KindWaitFrames:     waitFramesBuilder,
		KindCaption:        captionBuilder,
	}
	for kind, builder := range builders {
		if err := reg.Register(kind, builder); err != nil {
			return err
		}
	}
	return nil
}

// RoleEntityName is the scene name of a role entity.
func RoleEntityName(role int) string {
	return fmt.Sprintf("role:%d", role)
}
