package scene

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera. Rotation is derived by the importer
// from the source document's up and look-at vectors.
type Camera struct {
	Name          string
	NearClip      float32
	FarClip       float32
	HorizontalFOV float32
	Rotation      mgl32.Quat
}
