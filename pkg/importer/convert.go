package importer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneimport/pkg/formats"
	"github.com/Faultbox/sceneimport/pkg/scene"
)

// buildScene walks a validated document and constructs every scene
// collection in document order. Single pass, no side effects.
func buildScene(doc *formats.Document) (*scene.Scene, error) {
	lights, err := buildLights(doc.Lights)
	if err != nil {
		return nil, err
	}

	return &scene.Scene{
		RootNode:   buildNode(doc.RootNode, doc.Meshes),
		Cameras:    buildCameras(doc.Cameras),
		Lights:     lights,
		Meshes:     buildMeshes(doc.Meshes),
		Materials:  buildMaterials(doc.Materials),
		Animations: buildAnimations(doc.Animations),
	}, nil
}

// buildNode converts one document node and its subtree. The per-mesh
// material index is not taken from the node entry: it is looked up
// through the referenced mesh's own material assignment.
func buildNode(src *formats.Node, meshes []formats.Mesh) *scene.Node {
	n := &scene.Node{
		Name:      src.Name,
		Transform: mat4FromRowMajor(src.Transformation),
	}
	for _, mi := range src.Meshes {
		n.Meshes = append(n.Meshes, scene.MeshRef{
			MeshIndex:     mi,
			MaterialIndex: meshes[mi].MaterialIndex,
		})
	}
	for i := range src.Children {
		n.Children = append(n.Children, buildNode(&src.Children[i], meshes))
	}
	return n
}

// mat4FromRowMajor transposes a flat row-major 16-element transform into
// the column-major layout of the scene model: dst[c*4+r] = src[r*4+c].
func mat4FromRowMajor(m []float32) mgl32.Mat4 {
	return mgl32.Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

func buildMeshes(src []formats.Mesh) []scene.Mesh {
	if len(src) == 0 {
		return nil
	}
	meshes := make([]scene.Mesh, len(src))
	for i := range src {
		meshes[i] = buildMesh(&src[i])
	}
	return meshes
}

// buildMesh flattens the per-face index lists into one triangle list,
// preserving face order and vertex order within each face. Faces are
// assumed to already be triangles; no triangulation happens here.
func buildMesh(src *formats.Mesh) scene.Mesh {
	count := len(src.Vertices) / 3
	vertices := make([]scene.Vertex, count)
	for i := 0; i < count; i++ {
		vertices[i] = scene.Vertex{
			Position: mgl32.Vec3{src.Vertices[i*3], src.Vertices[i*3+1], src.Vertices[i*3+2]},
			Normal:   mgl32.Vec3{src.Normals[i*3], src.Normals[i*3+1], src.Normals[i*3+2]},
			// The source color channel is not read; vertices come out white.
			Color: mgl32.Vec3{1, 1, 1},
		}
	}

	var indices []uint32
	if len(src.Faces) > 0 {
		indices = make([]uint32, 0, len(src.Faces)*3)
		for _, face := range src.Faces {
			indices = append(indices, face...)
		}
	}

	return scene.Mesh{Name: src.Name, Vertices: vertices, Indices: indices}
}

func buildMaterials(src []formats.Material) []scene.Material {
	if len(src) == 0 {
		return nil
	}
	materials := make([]scene.Material, len(src))
	for i := range src {
		m := scene.Material{
			// The source material name property is not propagated.
			Name:      "Material",
			Albedo:    scene.DefaultAlbedo,
			Metallic:  scene.DefaultMetallic,
			Roughness: scene.DefaultRoughness,
		}
		if v, ok := src[i].Vec3(formats.PropDiffuseColor); ok {
			m.Albedo = mgl32.Vec3(v)
		}
		if v, ok := src[i].Scalar(formats.PropMetallicFactor); ok {
			m.Metallic = v
		}
		if v, ok := src[i].Scalar(formats.PropRoughnessFactor); ok {
			m.Roughness = v
		}
		materials[i] = m
	}
	return materials
}

func buildLights(src []formats.Light) ([]scene.Light, error) {
	if len(src) == 0 {
		return nil, nil
	}
	lights := make([]scene.Light, len(src))
	for i := range src {
		typ := scene.LightType(src[i].Type)
		if !typ.Valid() {
			return nil, &UnknownLightTypeError{Code: src[i].Type}
		}
		lights[i] = scene.Light{
			Name:           src[i].Name,
			Type:           typ,
			Color:          mgl32.Vec3(src[i].ColorDiffuse),
			Intensity:      src[i].Intensity,
			InnerConeAngle: src[i].AngleInnerCone,
			OuterConeAngle: src[i].AngleOuterCone,
			Range:          src[i].Range,
			Falloff:        src[i].Falloff,
		}
	}
	return lights, nil
}

// buildCameras derives each camera's rotation from its up and look-at
// vectors: right = up x lookAt, basis columns [right, up, lookAt]. The
// source vectors are assumed orthogonal and unit length; no
// orthonormalization is performed.
func buildCameras(src []formats.Camera) []scene.Camera {
	if len(src) == 0 {
		return nil
	}
	cameras := make([]scene.Camera, len(src))
	for i := range src {
		up := mgl32.Vec3(src[i].Up)
		lookAt := mgl32.Vec3(src[i].LookAt)
		basis := mgl32.Mat3FromCols(up.Cross(lookAt), up, lookAt)
		cameras[i] = scene.Camera{
			Name:          src[i].Name,
			NearClip:      src[i].ClipPlaneNear,
			FarClip:       src[i].ClipPlaneFar,
			HorizontalFOV: src[i].HorizontalFOV,
			Rotation:      mgl32.Mat4ToQuat(basis.Mat4()),
		}
	}
	return cameras
}

func buildAnimations(src []formats.Animation) []scene.Animation {
	if len(src) == 0 {
		return nil
	}
	anims := make([]scene.Animation, len(src))
	for i := range src {
		channels := make([]scene.NodeAnimation, len(src[i].Channels))
		for j := range src[i].Channels {
			channels[j] = buildChannel(&src[i].Channels[j])
		}
		anims[i] = *scene.NewAnimation(src[i].Name, src[i].Duration, src[i].TicksPerSecond, channels)
	}
	return anims
}

// buildChannel reorders rotation key components: the document stores
// quaternions as [w,x,y,z], the scene model wants (x,y,z,w).
func buildChannel(src *formats.Channel) scene.NodeAnimation {
	ch := scene.NodeAnimation{Name: src.Name}
	for _, k := range src.PositionKeys {
		ch.PositionKeys = append(ch.PositionKeys, scene.Key[mgl32.Vec3]{Time: k.Time, Value: mgl32.Vec3(k.Value)})
	}
	for _, k := range src.ScalingKeys {
		ch.ScaleKeys = append(ch.ScaleKeys, scene.Key[mgl32.Vec3]{Time: k.Time, Value: mgl32.Vec3(k.Value)})
	}
	for _, k := range src.RotationKeys {
		ch.RotationKeys = append(ch.RotationKeys, scene.Key[mgl32.Quat]{
			Time:  k.Time,
			Value: mgl32.Quat{W: k.Value[0], V: mgl32.Vec3{k.Value[1], k.Value[2], k.Value[3]}},
		})
	}
	return ch
}
