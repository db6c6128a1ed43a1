package scene

import "github.com/go-gl/mathgl/mgl32"

// Defaults substituted when the source document lacks the corresponding
// material property.
var DefaultAlbedo = mgl32.Vec3{1, 1, 1}

const (
	DefaultMetallic  float32 = 0
	DefaultRoughness float32 = 0
)

// Material is a PBR-style surface description. Name is always the literal
// "Material": the source format's material name property is not
// propagated.
type Material struct {
	Name      string
	Albedo    mgl32.Vec3
	Metallic  float32
	Roughness float32
}
