package gltfparser

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspuntual"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/sceneimport/pkg/formats"
)

// Animation key times are converted from glTF seconds to ticks.
const ticksPerSecond = 1000

const lightsExtension = "KHR_lights_punctual"

// convertDocument projects a decoded glTF document into the assjson
// schema. Returns a nonzero parser error code on failure.
func convertDocument(doc *gltf.Document) (*formats.Document, int) {
	out := &formats.Document{}

	meshMap, code := convertMeshes(doc, out)
	if code != 0 {
		return nil, code
	}
	convertMaterials(doc, out)
	convertLights(doc, out)
	convertCameras(doc, out)
	if code := convertAnimations(doc, out); code != 0 {
		return nil, code
	}
	if code := convertNodes(doc, out, meshMap); code != 0 {
		return nil, code
	}
	return out, 0
}

// convertMeshes emits one assjson mesh per triangle primitive and returns
// the glTF-mesh-index to output-mesh-indices mapping used when wiring
// nodes.
func convertMeshes(doc *gltf.Document, out *formats.Document) ([][]int, int) {
	meshMap := make([][]int, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return nil, CodeBadGeometry
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, CodeBadGeometry
			}

			var normals [][3]float32
			if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
				if err != nil || len(normals) != len(positions) {
					return nil, CodeBadGeometry
				}
			} else {
				normals = make([][3]float32, len(positions))
			}

			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, CodeBadGeometry
				}
			} else {
				indices = make([]uint32, len(positions))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}

			name := m.Name
			if len(m.Primitives) > 1 {
				name = fmt.Sprintf("%s.%d", m.Name, pi)
			}
			matIdx := 0
			if prim.Material != nil {
				matIdx = int(*prim.Material)
			}

			mesh := formats.Mesh{
				Name:          name,
				MaterialIndex: matIdx,
				Vertices:      make([]float32, 0, len(positions)*3),
				Normals:       make([]float32, 0, len(normals)*3),
				Faces:         make([][]uint32, 0, len(indices)/3),
			}
			for i := range positions {
				mesh.Vertices = append(mesh.Vertices, positions[i][0], positions[i][1], positions[i][2])
				mesh.Normals = append(mesh.Normals, normals[i][0], normals[i][1], normals[i][2])
			}
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.Faces = append(mesh.Faces, []uint32{indices[i], indices[i+1], indices[i+2]})
			}

			meshMap[mi] = append(meshMap[mi], len(out.Meshes))
			out.Meshes = append(out.Meshes, mesh)
		}
	}
	return meshMap, 0
}

// convertMaterials emits one keyed property list per glTF material,
// skipping absent factors so the importer's documented defaults apply. A
// default material is synthesized when meshes exist but no material does.
func convertMaterials(doc *gltf.Document, out *formats.Document) {
	for _, m := range doc.Materials {
		var mat formats.Material
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				c := *pbr.BaseColorFactor
				mat.Properties = append(mat.Properties, formats.MaterialProperty{
					Key:   formats.PropDiffuseColor,
					Value: formats.PropertyValue{float32(c[0]), float32(c[1]), float32(c[2])},
				})
			}
			if pbr.MetallicFactor != nil {
				mat.Properties = append(mat.Properties, formats.MaterialProperty{
					Key:   formats.PropMetallicFactor,
					Value: formats.PropertyValue{float32(*pbr.MetallicFactor)},
				})
			}
			if pbr.RoughnessFactor != nil {
				mat.Properties = append(mat.Properties, formats.MaterialProperty{
					Key:   formats.PropRoughnessFactor,
					Value: formats.PropertyValue{float32(*pbr.RoughnessFactor)},
				})
			}
		}
		out.Materials = append(out.Materials, mat)
	}
	if len(out.Materials) == 0 && len(out.Meshes) > 0 {
		out.Materials = append(out.Materials, formats.Material{})
	}
}

// convertLights maps KHR_lights_punctual entries to numeric light type
// codes. Light kinds outside the directional/point/spot set are dropped.
func convertLights(doc *gltf.Document, out *formats.Document) {
	ext, ok := doc.Extensions[lightsExtension]
	if !ok {
		return
	}
	lights, ok := ext.(lightspuntual.Lights)
	if !ok {
		return
	}

	for i, l := range lights {
		var code int32
		switch l.Type {
		case lightspuntual.TypeDirectional:
			code = 1
		case lightspuntual.TypePoint:
			code = 2
		case lightspuntual.TypeSpot:
			code = 3
		default:
			continue
		}

		color := [3]float32{1, 1, 1}
		if l.Color != nil {
			color = *l.Color
		}
		intensity := float32(1)
		if l.Intensity != nil {
			intensity = float32(*l.Intensity)
		}
		var rng float32
		if l.Range != nil {
			rng = float32(*l.Range)
		}
		var inner, outer float32
		if l.Spot != nil {
			inner = float32(l.Spot.InnerConeAngle)
			outer = float32(math.Pi / 4)
			if l.Spot.OuterConeAngle != nil {
				outer = float32(*l.Spot.OuterConeAngle)
			}
		}

		name := l.Name
		if name == "" {
			name = fmt.Sprintf("light_%d", i)
		}
		out.Lights = append(out.Lights, formats.Light{
			Name:           name,
			Type:           code,
			ColorDiffuse:   color,
			Intensity:      intensity,
			AngleInnerCone: inner,
			AngleOuterCone: outer,
			Range:          rng,
		})
	}
}

// convertCameras emits perspective cameras with the default glTF view
// basis: up +Y, looking down -Z. Orthographic cameras are dropped.
func convertCameras(doc *gltf.Document, out *formats.Document) {
	for i, c := range doc.Cameras {
		p := c.Perspective
		if p == nil {
			continue
		}

		aspect := float32(1)
		if p.AspectRatio != nil && *p.AspectRatio > 0 {
			aspect = float32(*p.AspectRatio)
		}
		yfov := float32(p.Yfov)
		hfov := 2 * float32(math.Atan(math.Tan(float64(yfov)/2)*float64(aspect)))

		// glTF allows an absent far plane (infinite projection).
		far := float32(1000)
		if p.Zfar != nil {
			far = float32(*p.Zfar)
		}

		name := c.Name
		if name == "" {
			name = fmt.Sprintf("camera_%d", i)
		}
		out.Cameras = append(out.Cameras, formats.Camera{
			Name:          name,
			ClipPlaneNear: float32(p.Znear),
			ClipPlaneFar:  far,
			HorizontalFOV: hfov,
			Up:            [3]float32{0, 1, 0},
			LookAt:        [3]float32{0, 0, -1},
		})
	}
}

// convertAnimations merges TRS channels targeting the same node into one
// assjson channel, converting key times from seconds to ticks and
// rotation components from [x,y,z,w] to the stored [w,x,y,z] order.
func convertAnimations(doc *gltf.Document, out *formats.Document) int {
	for _, a := range doc.Animations {
		anim := formats.Animation{Name: a.Name, TicksPerSecond: ticksPerSecond}
		byNode := make(map[string]int)
		duration := 0.0

		channel := func(name string) *formats.Channel {
			idx, ok := byNode[name]
			if !ok {
				idx = len(anim.Channels)
				byNode[name] = idx
				anim.Channels = append(anim.Channels, formats.Channel{Name: name})
			}
			return &anim.Channels[idx]
		}

		for _, ch := range a.Channels {
			if ch.Sampler == nil || ch.Target.Node == nil {
				continue
			}
			sampler := a.Samplers[*ch.Sampler]
			nodeName := doc.Nodes[*ch.Target.Node].Name

			rawTimes, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)
			if err != nil {
				return CodeBadGeometry
			}
			times, ok := rawTimes.([]float32)
			if !ok {
				return CodeBadGeometry
			}
			rawValues, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)
			if err != nil {
				return CodeBadGeometry
			}

			for _, t := range times {
				if tick := float64(t) * ticksPerSecond; tick > duration {
					duration = tick
				}
			}

			switch ch.Target.Path {
			case gltf.TRSTranslation, gltf.TRSScale:
				values, ok := rawValues.([][3]float32)
				if !ok || len(values) < len(times) {
					return CodeBadGeometry
				}
				c := channel(nodeName)
				for i, t := range times {
					key := formats.VectorKey{Time: float64(t) * ticksPerSecond, Value: values[i]}
					if ch.Target.Path == gltf.TRSTranslation {
						c.PositionKeys = append(c.PositionKeys, key)
					} else {
						c.ScalingKeys = append(c.ScalingKeys, key)
					}
				}
			case gltf.TRSRotation:
				values, ok := rawValues.([][4]float32)
				if !ok || len(values) < len(times) {
					return CodeBadGeometry
				}
				c := channel(nodeName)
				for i, t := range times {
					v := values[i]
					c.RotationKeys = append(c.RotationKeys, formats.QuatKey{
						Time:  float64(t) * ticksPerSecond,
						Value: [4]float32{v[3], v[0], v[1], v[2]},
					})
				}
			}
		}

		anim.Duration = duration
		out.Animations = append(out.Animations, anim)
	}
	return 0
}

// convertNodes builds the assjson node hierarchy from the default scene.
// A single scene root becomes the document root directly; several roots
// are wrapped in a synthesized identity root.
func convertNodes(doc *gltf.Document, out *formats.Document, meshMap [][]int) int {
	if len(doc.Scenes) == 0 {
		return CodeNoScene
	}
	si := 0
	if doc.Scene != nil {
		si = int(*doc.Scene)
	}
	roots := doc.Scenes[si].Nodes
	if len(roots) == 0 {
		return CodeNoScene
	}

	if len(roots) == 1 {
		root := buildNode(doc, roots[0], meshMap)
		out.RootNode = &root
		return 0
	}
	root := formats.Node{Name: "RootNode", Transformation: identityRowMajor()}
	for _, r := range roots {
		root.Children = append(root.Children, buildNode(doc, r, meshMap))
	}
	out.RootNode = &root
	return 0
}

func buildNode(doc *gltf.Document, idx uint32, meshMap [][]int) formats.Node {
	src := doc.Nodes[idx]
	n := formats.Node{
		Name:           src.Name,
		Transformation: nodeTransform(src),
	}
	if src.Mesh != nil {
		n.Meshes = append(n.Meshes, meshMap[*src.Mesh]...)
	}
	for _, child := range src.Children {
		n.Children = append(n.Children, buildNode(doc, child, meshMap))
	}
	return n
}

// nodeTransform flattens the node's local transform row by row, as the
// assjson schema stores it. glTF matrices are column-major; TRS nodes
// compose translation * rotation * scale.
func nodeTransform(n *gltf.Node) []float32 {
	var local mgl32.Mat4
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		for i := range local {
			local[i] = float32(m[i])
		}
	} else {
		t := n.TranslationOrDefault()
		r := n.RotationOrDefault()
		s := n.ScaleOrDefault()
		rot := mgl32.Quat{
			W: float32(r[3]),
			V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		}
		local = mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
			Mul4(rot.Mat4()).
			Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
	}

	rowMajor := local.Transpose()
	flat := make([]float32, 16)
	copy(flat, rowMajor[:])
	return flat
}

func identityRowMajor() []float32 {
	return []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
