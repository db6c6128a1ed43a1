// Package importer converts asset files into the scene-graph model. It
// submits registered file buffers to a Parser collaborator, decodes the
// generic JSON intermediate document the parser returns and projects it
// field by field into scene values.
package importer

import (
	"context"
	"fmt"

	"github.com/Faultbox/sceneimport/pkg/formats"
	"github.com/Faultbox/sceneimport/pkg/scene"
)

// Importer accumulates named file buffers and converts them into a
// Scene. One importer performs one conversion at a time; it is not safe
// for concurrent use.
type Importer struct {
	parser Parser
	files  map[string][]byte
	order  []string
}

// New returns an importer that obtains the intermediate document from
// the given parser.
func New(parser Parser) *Importer {
	return &Importer{
		parser: parser,
		files:  make(map[string][]byte),
	}
}

// RegisterFile stores a named buffer for the next conversion. Registering
// the same path again overwrites the previous buffer. Content is not
// inspected here.
func (im *Importer) RegisterFile(path string, data []byte) {
	if _, ok := im.files[path]; !ok {
		im.order = append(im.order, path)
	}
	im.files[path] = data
}

// Convert submits the registered buffers to the parser, decodes the first
// output file as an assjson document and builds the scene. The scene is
// returned fully built or not at all: any failure aborts the whole call
// with no partial result.
func (im *Importer) Convert(ctx context.Context) (*scene.Scene, error) {
	files := make([]InputFile, 0, len(im.order))
	for _, path := range im.order {
		files = append(files, InputFile{Path: path, Data: im.files[path]})
	}

	result, err := im.parser.Convert(ctx, files, FormatAssJSON)
	if err != nil {
		return nil, fmt.Errorf("invoking asset parser: %w", err)
	}
	if !result.Success || len(result.Files) == 0 {
		return nil, &ConversionError{Code: result.ErrorCode}
	}

	doc, err := formats.ParseAssJSON(result.Files[0].Data)
	if err != nil {
		return nil, err
	}
	return buildScene(doc)
}
