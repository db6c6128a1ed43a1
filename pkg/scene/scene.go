// Package scene defines the scene-graph object model produced by a
// conversion: a node hierarchy plus flat, index-addressable collections of
// meshes, materials, lights, cameras and animations. Collection order
// matches the order of the source document, since entities reference each
// other by integer index.
package scene

import "github.com/go-gl/mathgl/mgl32"

// Scene is the root value of a conversion. It is built exactly once and
// never mutated afterwards; ownership passes to the caller on return.
type Scene struct {
	RootNode   *Node
	Cameras    []Camera
	Lights     []Light
	Meshes     []Mesh
	Materials  []Material
	Animations []Animation
}

// MeshRef attaches a mesh to a node by index into Scene.Meshes, together
// with the material index the mesh resolves to.
type MeshRef struct {
	MeshIndex     int
	MaterialIndex int
}

// Node is one node of the scene graph. Transform is column-major and maps
// node-local space to parent space (translation in the last column).
// Children are exclusively owned by their parent; the graph is a tree.
type Node struct {
	Name      string
	Transform mgl32.Mat4
	Meshes    []MeshRef
	Children  []*Node
}
