package importer

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneimport/pkg/formats"
	"github.com/Faultbox/sceneimport/pkg/scene"
)

// fakeParser implements Parser with a canned result. It records the last
// call so tests can verify what the importer submitted.
type fakeParser struct {
	result *Result
	err    error

	gotFiles  []InputFile
	gotFormat string
}

func (p *fakeParser) Convert(_ context.Context, files []InputFile, format string) (*Result, error) {
	p.gotFiles = files
	p.gotFormat = format
	return p.result, p.err
}

func identityTransform() []float32 {
	return []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// docResult wraps a document into a successful parser result.
func docResult(t *testing.T, doc *formats.Document) *Result {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling test document: %v", err)
	}
	return &Result{
		Success: true,
		Files:   []OutputFile{{Path: "scene.assjson", Data: data}},
	}
}

func convertDoc(t *testing.T, doc *formats.Document) (*scene.Scene, error) {
	t.Helper()
	im := New(&fakeParser{result: docResult(t, doc)})
	im.RegisterFile("model.bin", []byte("payload"))
	return im.Convert(context.Background())
}

func TestRegisterFileOrderAndOverwrite(t *testing.T) {
	parser := &fakeParser{result: docResult(t, &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: identityTransform()},
	})}
	im := New(parser)

	im.RegisterFile("a.gltf", []byte("one"))
	im.RegisterFile("b.bin", []byte("two"))
	im.RegisterFile("a.gltf", []byte("three"))

	if _, err := im.Convert(context.Background()); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if parser.gotFormat != FormatAssJSON {
		t.Errorf("expected format %q, got %q", FormatAssJSON, parser.gotFormat)
	}
	if len(parser.gotFiles) != 2 {
		t.Fatalf("expected 2 files, got %d", len(parser.gotFiles))
	}
	// Registration order is preserved; re-registering replaces the data.
	if parser.gotFiles[0].Path != "a.gltf" || string(parser.gotFiles[0].Data) != "three" {
		t.Errorf("unexpected first file: %s=%q", parser.gotFiles[0].Path, parser.gotFiles[0].Data)
	}
	if parser.gotFiles[1].Path != "b.bin" || string(parser.gotFiles[1].Data) != "two" {
		t.Errorf("unexpected second file: %s=%q", parser.gotFiles[1].Path, parser.gotFiles[1].Data)
	}
}

func TestConvertParserFailure(t *testing.T) {
	im := New(&fakeParser{result: &Result{Success: false, ErrorCode: 42}})
	_, err := im.Convert(context.Background())

	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if ce.Code != 42 {
		t.Errorf("expected code 42, got %d", ce.Code)
	}
}

func TestConvertNoOutputFiles(t *testing.T) {
	// Success without output files is still a conversion failure.
	im := New(&fakeParser{result: &Result{Success: true}})
	_, err := im.Convert(context.Background())

	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
}

func TestConvertParserError(t *testing.T) {
	sentinel := errors.New("boom")
	im := New(&fakeParser{err: sentinel})

	_, err := im.Convert(context.Background())
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped parser error, got %v", err)
	}
}

func TestConvertEmptyOutput(t *testing.T) {
	im := New(&fakeParser{result: &Result{
		Success: true,
		Files:   []OutputFile{{Path: "scene.assjson", Data: nil}},
	}})

	_, err := im.Convert(context.Background())
	if !errors.Is(err, formats.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestNodeTransformTranspose(t *testing.T) {
	rowMajor := []float32{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	}
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: rowMajor},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	// Element (r,c) must survive the row-major to column-major flip.
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			want := rowMajor[r*4+c]
			if got := sc.RootNode.Transform.At(r, c); got != want {
				t.Errorf("Transform.At(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestConvertBoxScene(t *testing.T) {
	// Unit cube: 8 corners, 12 triangles.
	var vertices, normals []float32
	for i := 0; i < 8; i++ {
		vertices = append(vertices, float32(i&1), float32(i>>1&1), float32(i>>2&1))
		normals = append(normals, 0, 0, 1)
	}
	faces := [][]uint32{
		{0, 1, 3}, {0, 3, 2},
		{4, 6, 7}, {4, 7, 5},
		{0, 4, 5}, {0, 5, 1},
		{2, 3, 7}, {2, 7, 6},
		{0, 2, 6}, {0, 6, 4},
		{1, 5, 7}, {1, 7, 3},
	}

	doc := &formats.Document{
		RootNode: &formats.Node{
			Name:           "RootNode",
			Transformation: identityTransform(),
			Meshes:         []int{0},
		},
		Meshes: []formats.Mesh{{
			Name:          "Box",
			MaterialIndex: 0,
			Vertices:      vertices,
			Normals:       normals,
			Faces:         faces,
		}},
		Materials: []formats.Material{{Properties: []formats.MaterialProperty{
			{Key: formats.PropDiffuseColor, Value: formats.PropertyValue{0.8, 0.1, 0.1}},
		}}},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(sc.Meshes) != 1 || len(sc.Materials) != 1 {
		t.Fatalf("expected 1 mesh and 1 material, got %d/%d", len(sc.Meshes), len(sc.Materials))
	}
	if len(sc.Lights) != 0 || len(sc.Cameras) != 0 || len(sc.Animations) != 0 {
		t.Errorf("expected no lights/cameras/animations, got %d/%d/%d",
			len(sc.Lights), len(sc.Cameras), len(sc.Animations))
	}

	mesh := sc.Meshes[0]
	if len(mesh.Vertices) != 8 {
		t.Errorf("expected 8 vertices, got %d", len(mesh.Vertices))
	}
	// One index per face corner, faces flattened in order.
	if len(mesh.Indices) != 36 {
		t.Fatalf("expected 36 indices, got %d", len(mesh.Indices))
	}
	for i, face := range faces {
		for j, want := range face {
			if got := mesh.Indices[i*3+j]; got != want {
				t.Errorf("index [%d][%d] = %d, want %d", i, j, got, want)
			}
		}
	}

	// Vertex positions land in declaration order; colors come out white.
	if mesh.Vertices[5].Position != (mgl32.Vec3{1, 0, 1}) {
		t.Errorf("vertex 5 position = %v", mesh.Vertices[5].Position)
	}
	for i := range mesh.Vertices {
		if mesh.Vertices[i].Color != (mgl32.Vec3{1, 1, 1}) {
			t.Fatalf("vertex %d color = %v, want white", i, mesh.Vertices[i].Color)
		}
	}

	if sc.RootNode == nil || len(sc.RootNode.Meshes) != 1 {
		t.Fatal("expected root node with one mesh reference")
	}
	ref := sc.RootNode.Meshes[0]
	if ref.MeshIndex != 0 || ref.MaterialIndex != 0 {
		t.Errorf("unexpected mesh reference: %+v", ref)
	}

	if sc.Materials[0].Albedo != (mgl32.Vec3{0.8, 0.1, 0.1}) {
		t.Errorf("unexpected albedo: %v", sc.Materials[0].Albedo)
	}
}

func TestMaterialDefaults(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: identityTransform()},
		Materials: []formats.Material{
			{}, // no properties at all
			{Properties: []formats.MaterialProperty{
				{Key: formats.PropMetallicFactor, Value: formats.PropertyValue{0.9}},
				{Key: formats.PropRoughnessFactor, Value: formats.PropertyValue{0.4}},
			}},
		},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	bare := sc.Materials[0]
	if bare.Albedo != scene.DefaultAlbedo {
		t.Errorf("expected default albedo, got %v", bare.Albedo)
	}
	if bare.Metallic != scene.DefaultMetallic || bare.Roughness != scene.DefaultRoughness {
		t.Errorf("expected default factors, got %v/%v", bare.Metallic, bare.Roughness)
	}
	if bare.Name != "Material" {
		t.Errorf("expected placeholder name, got %q", bare.Name)
	}

	pbr := sc.Materials[1]
	if pbr.Metallic != 0.9 || pbr.Roughness != 0.4 {
		t.Errorf("expected overridden factors, got %v/%v", pbr.Metallic, pbr.Roughness)
	}
	// Diffuse absent, so albedo stays white even with other keys present.
	if pbr.Albedo != scene.DefaultAlbedo {
		t.Errorf("expected default albedo, got %v", pbr.Albedo)
	}
}

func TestLightTypeMapping(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: identityTransform()},
		Lights: []formats.Light{
			{Name: "sun", Type: 1, ColorDiffuse: [3]float32{1, 1, 0.9}, Intensity: 3},
			{Name: "bulb", Type: 2, Range: 12},
			{Name: "torch", Type: 3, AngleInnerCone: 0.3, AngleOuterCone: 0.6, Falloff: 2},
		},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	want := []scene.LightType{scene.LightDirectional, scene.LightPoint, scene.LightSpot}
	for i, typ := range want {
		if sc.Lights[i].Type != typ {
			t.Errorf("light %d type = %v, want %v", i, sc.Lights[i].Type, typ)
		}
	}

	if sc.Lights[0].Intensity != 3 || sc.Lights[0].Color != (mgl32.Vec3{1, 1, 0.9}) {
		t.Errorf("unexpected directional light: %+v", sc.Lights[0])
	}
	if sc.Lights[1].Range != 12 {
		t.Errorf("unexpected point light range: %v", sc.Lights[1].Range)
	}
	spot := sc.Lights[2]
	if spot.InnerConeAngle != 0.3 || spot.OuterConeAngle != 0.6 || spot.Falloff != 2 {
		t.Errorf("unexpected spot light: %+v", spot)
	}
}

func TestUnknownLightType(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: identityTransform()},
		Lights:   []formats.Light{{Name: "weird", Type: 4}},
	}

	_, err := convertDoc(t, doc)

	var ue *UnknownLightTypeError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownLightTypeError, got %v", err)
	}
	if ue.Code != 4 {
		t.Errorf("expected code 4, got %d", ue.Code)
	}
}

func TestCameraRotation(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "r", Transformation: identityTransform()},
		Cameras: []formats.Camera{{
			Name:          "main",
			ClipPlaneNear: 0.1,
			ClipPlaneFar:  500,
			HorizontalFOV: 1.5,
			Up:            [3]float32{0, 1, 0},
			LookAt:        [3]float32{0, 0, -1},
		}},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	cam := sc.Cameras[0]
	if cam.NearClip != 0.1 || cam.FarClip != 500 || cam.HorizontalFOV != 1.5 {
		t.Errorf("unexpected camera params: %+v", cam)
	}

	// The rotation must carry the basis axes onto the source vectors:
	// X onto right (up x lookAt), Y onto up, Z onto lookAt.
	up := mgl32.Vec3{0, 1, 0}
	lookAt := mgl32.Vec3{0, 0, -1}
	checks := []struct {
		axis, want mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, up.Cross(lookAt)},
		{mgl32.Vec3{0, 1, 0}, up},
		{mgl32.Vec3{0, 0, 1}, lookAt},
	}
	for _, c := range checks {
		got := cam.Rotation.Rotate(c.axis)
		for i := 0; i < 3; i++ {
			if math.Abs(float64(got[i]-c.want[i])) > 1e-5 {
				t.Errorf("Rotate(%v) = %v, want %v", c.axis, got, c.want)
				break
			}
		}
	}
}

func TestAnimationConversion(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{Name: "Bone", Transformation: identityTransform()},
		Animations: []formats.Animation{{
			Name:           "Wave",
			Duration:       1500,
			TicksPerSecond: 1000,
			Channels: []formats.Channel{{
				Name: "Bone",
				PositionKeys: []formats.VectorKey{
					{Time: 0, Value: [3]float32{0, 0, 0}},
					{Time: 1500, Value: [3]float32{2, 0, 0}},
				},
				RotationKeys: []formats.QuatKey{
					{Time: 0, Value: [4]float32{0.5, 0.1, 0.2, 0.3}},
				},
				ScalingKeys: []formats.VectorKey{
					{Time: 0, Value: [3]float32{1, 1, 1}},
				},
			}},
		}},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(sc.Animations) != 1 {
		t.Fatalf("expected 1 animation, got %d", len(sc.Animations))
	}
	anim := sc.Animations[0]
	if anim.Name != "Wave" || anim.DurationTicks != 1500 || anim.TicksPerSecond != 1000 {
		t.Errorf("unexpected clip header: %+v", anim)
	}

	ch := anim.Channel("Bone")
	if ch == nil {
		t.Fatal("expected channel for Bone")
	}
	if len(ch.PositionKeys) != 2 || len(ch.ScaleKeys) != 1 || len(ch.RotationKeys) != 1 {
		t.Fatalf("unexpected key counts: %d/%d/%d",
			len(ch.PositionKeys), len(ch.ScaleKeys), len(ch.RotationKeys))
	}
	if ch.PositionKeys[1].Value != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("unexpected position key: %v", ch.PositionKeys[1].Value)
	}

	// Source order is [w,x,y,z]; the quaternion takes w separately.
	rot := ch.RotationKeys[0].Value
	if rot.W != 0.5 || rot.V != (mgl32.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("unexpected rotation key: W=%v V=%v", rot.W, rot.V)
	}
}

func TestNodeHierarchy(t *testing.T) {
	doc := &formats.Document{
		RootNode: &formats.Node{
			Name:           "RootNode",
			Transformation: identityTransform(),
			Children: []formats.Node{
				{
					Name:           "Body",
					Transformation: identityTransform(),
					Meshes:         []int{1},
					Children: []formats.Node{
						{Name: "Head", Transformation: identityTransform(), Meshes: []int{0}},
					},
				},
			},
		},
		Meshes: []formats.Mesh{
			{Name: "HeadMesh", MaterialIndex: 1},
			{Name: "BodyMesh", MaterialIndex: 0},
		},
		Materials: []formats.Material{{}, {}},
	}

	sc, err := convertDoc(t, doc)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	root := sc.RootNode
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	body := root.Children[0]
	if body.Name != "Body" || len(body.Children) != 1 {
		t.Fatalf("unexpected body node: %+v", body)
	}

	// Material indices come from the referenced mesh, not the node.
	if body.Meshes[0] != (scene.MeshRef{MeshIndex: 1, MaterialIndex: 0}) {
		t.Errorf("unexpected body mesh ref: %+v", body.Meshes[0])
	}
	head := body.Children[0]
	if head.Meshes[0] != (scene.MeshRef{MeshIndex: 0, MaterialIndex: 1}) {
		t.Errorf("unexpected head mesh ref: %+v", head.Meshes[0])
	}
}
