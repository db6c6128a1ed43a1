// Package gltfparser implements the importer's Parser contract for glTF
// 2.0 assets. It decodes the first registered .gltf/.glb buffer, resolves
// external buffer URIs against the remaining registered files and emits
// the generic JSON intermediate document the importer consumes.
package gltfparser

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/sceneimport/pkg/importer"
)

// Parser error codes surfaced through importer.ConversionError.
const (
	CodeBadFormat    = 1 // requested output format is not assjson
	CodeNoInput      = 2 // no input buffers registered
	CodeDecodeFailed = 3 // buffer is not a readable glTF/GLB asset
	CodeNoScene      = 4 // document has no scene or no root nodes
	CodeBadGeometry  = 5 // accessor data could not be read
	CodeEncodeFailed = 6 // intermediate document could not be serialized
)

// Parser converts glTF asset buffers into assjson documents. The zero
// value is not usable; call New.
type Parser struct{}

// New returns a glTF-backed parser.
func New() *Parser {
	return &Parser{}
}

// Convert implements importer.Parser. Failures of the asset itself are
// reported through the Result error code; the error return is reserved
// for context cancellation.
func (p *Parser) Convert(ctx context.Context, files []importer.InputFile, format string) (*importer.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if format != importer.FormatAssJSON {
		return &importer.Result{ErrorCode: CodeBadFormat}, nil
	}

	main, side := splitInput(files)
	if main == nil {
		return &importer.Result{ErrorCode: CodeNoInput}, nil
	}

	doc := gltf.NewDocument()
	dec := gltf.NewDecoderFS(bytes.NewReader(main.Data), memFS{files: side})
	if err := dec.Decode(doc); err != nil {
		return &importer.Result{ErrorCode: CodeDecodeFailed}, nil
	}

	out, code := convertDocument(doc)
	if code != 0 {
		return &importer.Result{ErrorCode: code}, nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return &importer.Result{ErrorCode: CodeEncodeFailed}, nil
	}

	return &importer.Result{
		Success: true,
		Files:   []importer.OutputFile{{Path: "scene.assjson", Data: data}},
	}, nil
}

// splitInput picks the main asset buffer (first .gltf/.glb file, falling
// back to the first buffer) and maps the rest by path for URI resolution.
func splitInput(files []importer.InputFile) (*importer.InputFile, map[string][]byte) {
	main := -1
	for i := range files {
		ext := strings.ToLower(path.Ext(files[i].Path))
		if ext == ".gltf" || ext == ".glb" {
			main = i
			break
		}
	}
	if main < 0 {
		if len(files) == 0 {
			return nil, nil
		}
		main = 0
	}

	side := make(map[string][]byte, len(files)-1)
	for i := range files {
		if i != main {
			side[files[i].Path] = files[i].Data
		}
	}
	return &files[main], side
}

// memFS serves registered side-file buffers to the glTF decoder, which
// resolves external buffer and image URIs through fs.FS.
type memFS struct {
	files map[string][]byte
}

func (m memFS) Open(name string) (fs.File, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: name, r: bytes.NewReader(data)}, nil
}

type memFile struct {
	name string
	r    *bytes.Reader
}

func (f *memFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *memFile) Close() error               { return nil }

func (f *memFile) Stat() (fs.FileInfo, error) {
	return memFileInfo{name: f.name, size: f.r.Size()}, nil
}

type memFileInfo struct {
	name string
	size int64
}

func (i memFileInfo) Name() string       { return path.Base(i.name) }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }
