package sce

import (
	"fmt"

	"github.com/kingrea/sce/internal/scene"
)

// vec3Param decodes a [x, y, z] list.
type vec3Param []float64

func (v vec3Param) vec(field string) (scene.Vec3, error) {
	if len(v) != 3 {
		return scene.Vec3{}, fmt.Errorf("%s must have 3 components, got %d", field, len(v))
	}
	return scene.NewVec3(v[0], v[1], v[2]), nil
}
