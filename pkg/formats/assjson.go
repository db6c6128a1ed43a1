// Package formats provides typed schemas for asset parser output formats.
// assjson is the generic structured-JSON variant the importer requests
// from its parser collaborator: a scene document with a node hierarchy,
// meshes, keyed material property lists, lights, cameras and keyframe
// animations.
package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Assjson document errors.
var (
	ErrEmptyDocument = errors.New("empty assjson document")
)

// SchemaError reports a document shape violation. Violations are detected
// once during ParseAssJSON rather than lazily at each access site, so the
// error can point at the offending field, e.g. "meshes[2].vertices".
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("assjson schema: %s: %s", e.Path, e.Reason)
}

func schemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Document is the root of an assjson scene document.
type Document struct {
	RootNode   *Node       `json:"rootnode"`
	Meshes     []Mesh      `json:"meshes,omitempty"`
	Materials  []Material  `json:"materials,omitempty"`
	Lights     []Light     `json:"lights,omitempty"`
	Cameras    []Camera    `json:"cameras,omitempty"`
	Animations []Animation `json:"animations,omitempty"`
}

// Node is one entry of the node hierarchy. Transformation is the 4x4
// local-to-parent transform flattened row by row (16 elements). Meshes
// holds indices into Document.Meshes.
type Node struct {
	Name           string    `json:"name"`
	Transformation []float32 `json:"transformation"`
	Meshes         []int     `json:"meshes,omitempty"`
	Children       []Node    `json:"children,omitempty"`
}

// Mesh is one mesh entry. Vertices and Normals are flat x,y,z triples of
// equal length; Faces holds one vertex index list per face, in face order.
type Mesh struct {
	Name          string     `json:"name"`
	MaterialIndex int        `json:"materialindex"`
	Vertices      []float32  `json:"vertices"`
	Normals       []float32  `json:"normals"`
	Faces         [][]uint32 `json:"faces,omitempty"`
}

// Material property keys understood by the converter. Entries with other
// keys are carried but ignored.
const (
	PropDiffuseColor    = "$clr.diffuse"
	PropMetallicFactor  = "$mat.metallicFactor"
	PropRoughnessFactor = "$mat.roughnessFactor"
)

// PropertyValue is a material property payload: a scalar or a vector of
// floats, depending on the key. A scalar decodes as a one-element value.
type PropertyValue []float32

// UnmarshalJSON accepts either a JSON number or an array of numbers.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]float32)(v))
	}
	var f float32
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = PropertyValue{f}
	return nil
}

// MarshalJSON emits a bare number for scalar values and an array
// otherwise, mirroring UnmarshalJSON.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]float32(v))
}

// MaterialProperty is one keyed entry of a material property list.
type MaterialProperty struct {
	Key   string        `json:"key"`
	Value PropertyValue `json:"value"`
}

// Material is a keyed property list. Absent keys fall back to documented
// defaults during conversion.
type Material struct {
	Properties []MaterialProperty `json:"properties"`
}

// Property returns the first property with the given key, or nil.
func (m *Material) Property(key string) *MaterialProperty {
	for i := range m.Properties {
		if m.Properties[i].Key == key {
			return &m.Properties[i]
		}
	}
	return nil
}

// Scalar returns the scalar property for key. ok is false when the list
// has no such entry or the payload is not a single value.
func (m *Material) Scalar(key string) (float32, bool) {
	p := m.Property(key)
	if p == nil || len(p.Value) != 1 {
		return 0, false
	}
	return p.Value[0], true
}

// Vec3 returns the three-component property for key. ok is false when the
// list has no such entry or the payload has fewer than three components.
func (m *Material) Vec3(key string) ([3]float32, bool) {
	p := m.Property(key)
	if p == nil || len(p.Value) < 3 {
		return [3]float32{}, false
	}
	return [3]float32{p.Value[0], p.Value[1], p.Value[2]}, true
}

// Light is one light entry. Type is a numeric code; the recognized codes
// are 1 (directional), 2 (point) and 3 (spot). Cone angles apply to spot
// lights only and decode as zero when absent.
type Light struct {
	Name           string     `json:"name"`
	Type           int32      `json:"type"`
	ColorDiffuse   [3]float32 `json:"colordiffuse"`
	Intensity      float32    `json:"intensity"`
	AngleInnerCone float32    `json:"angleinnercone,omitempty"`
	AngleOuterCone float32    `json:"angleoutercone,omitempty"`
	Range          float32    `json:"range"`
	Falloff        float32    `json:"falloff"`
}

// Camera is one camera entry. Up and LookAt are expected to be orthogonal
// unit vectors; the document is taken at its word.
type Camera struct {
	Name          string     `json:"name"`
	ClipPlaneNear float32    `json:"clipplanenear"`
	ClipPlaneFar  float32    `json:"clipplanefar"`
	HorizontalFOV float32    `json:"horizontalfov"`
	Up            [3]float32 `json:"up"`
	LookAt        [3]float32 `json:"lookat"`
}

// VectorKey is a keyframe stored as a [time, [x,y,z]] pair.
type VectorKey struct {
	Time  float64
	Value [3]float32
}

// UnmarshalJSON decodes the two-element [time, value] form.
func (k *VectorKey) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("vector key: want [time, value], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &k.Time); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &k.Value)
}

// MarshalJSON emits the [time, [x,y,z]] form.
func (k VectorKey) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{k.Time, k.Value})
}

// QuatKey is a rotation keyframe stored as a [time, [w,x,y,z]] pair, in
// the source component order (w first).
type QuatKey struct {
	Time  float64
	Value [4]float32
}

// UnmarshalJSON decodes the two-element [time, value] form.
func (k *QuatKey) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("rotation key: want [time, value], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &k.Time); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &k.Value)
}

// MarshalJSON emits the [time, [w,x,y,z]] form.
func (k QuatKey) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{k.Time, k.Value})
}

// Channel holds the keyframes animating the node with the matching name.
type Channel struct {
	Name         string      `json:"name"`
	PositionKeys []VectorKey `json:"positionkeys,omitempty"`
	RotationKeys []QuatKey   `json:"rotationkeys,omitempty"`
	ScalingKeys  []VectorKey `json:"scalingkeys,omitempty"`
}

// Animation is one animation clip entry.
type Animation struct {
	Name           string    `json:"name"`
	Duration       float64   `json:"duration"`
	TicksPerSecond float64   `json:"tickspersecond"`
	Channels       []Channel `json:"channels,omitempty"`
}

// ParseAssJSON decodes and validates an assjson document. Structural
// violations (missing root node, malformed transforms, index ranges,
// mismatched vertex arrays) surface as a *SchemaError; the caller never
// has to guard individual field accesses afterwards.
func ParseAssJSON(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding assjson: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if d.RootNode == nil {
		return schemaErrorf("rootnode", "missing")
	}
	if err := validateNode(d.RootNode, "rootnode", len(d.Meshes)); err != nil {
		return err
	}
	for i := range d.Meshes {
		if err := validateMesh(&d.Meshes[i], fmt.Sprintf("meshes[%d]", i), len(d.Materials)); err != nil {
			return err
		}
	}
	for i := range d.Cameras {
		// Zero-length up or look-at vectors cannot form a rotation basis.
		if d.Cameras[i].Up == ([3]float32{}) {
			return schemaErrorf(fmt.Sprintf("cameras[%d].up", i), "zero vector")
		}
		if d.Cameras[i].LookAt == ([3]float32{}) {
			return schemaErrorf(fmt.Sprintf("cameras[%d].lookat", i), "zero vector")
		}
	}
	return nil
}

func validateNode(n *Node, path string, meshCount int) error {
	if len(n.Transformation) != 16 {
		return schemaErrorf(path+".transformation", "want 16 elements, got %d", len(n.Transformation))
	}
	for i, mi := range n.Meshes {
		if mi < 0 || mi >= meshCount {
			return schemaErrorf(fmt.Sprintf("%s.meshes[%d]", path, i), "mesh index %d out of range [0,%d)", mi, meshCount)
		}
	}
	for i := range n.Children {
		if err := validateNode(&n.Children[i], fmt.Sprintf("%s.children[%d]", path, i), meshCount); err != nil {
			return err
		}
	}
	return nil
}

func validateMesh(m *Mesh, path string, materialCount int) error {
	if len(m.Vertices)%3 != 0 {
		return schemaErrorf(path+".vertices", "length %d not a multiple of 3", len(m.Vertices))
	}
	if len(m.Normals) != len(m.Vertices) {
		return schemaErrorf(path+".normals", "length %d does not match vertices length %d", len(m.Normals), len(m.Vertices))
	}
	if m.MaterialIndex < 0 || m.MaterialIndex >= materialCount {
		return schemaErrorf(path+".materialindex", "material index %d out of range [0,%d)", m.MaterialIndex, materialCount)
	}
	return nil
}
