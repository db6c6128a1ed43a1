package scene

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a single mesh vertex. Color is always white; the per-vertex
// color channel of the source document is not read.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
}

// Mesh holds vertex data and a flat triangle index list. Indices preserve
// the source face order and the vertex order within each face.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}
