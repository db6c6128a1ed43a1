package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source. The numeric values match
// the type codes used by the intermediate document.
type LightType int32

const (
	LightDirectional LightType = 1
	LightPoint       LightType = 2
	LightSpot        LightType = 3
)

// String returns a human-readable light type name.
func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "Directional"
	case LightPoint:
		return "Point"
	case LightSpot:
		return "Spot"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// Valid reports whether t is one of the recognized light types.
func (t LightType) Valid() bool {
	return t == LightDirectional || t == LightPoint || t == LightSpot
}

// Light is a light source. The cone angles are meaningful only for spot
// lights and are zero when the source document omits them.
type Light struct {
	Name           string
	Type           LightType
	Color          mgl32.Vec3
	Intensity      float32
	InnerConeAngle float32
	OuterConeAngle float32
	Range          float32
	Falloff        float32
}
