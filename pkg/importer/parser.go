package importer

import "context"

// FormatAssJSON identifies the generic structured-JSON output format. The
// importer always requests this format and reads only the first output
// file.
const FormatAssJSON = "assjson"

// InputFile is a named in-memory buffer handed to the parser.
type InputFile struct {
	Path string
	Data []byte
}

// OutputFile is one file produced by the parser.
type OutputFile struct {
	Path string
	Data []byte
}

// Result is the parser's verdict: a success flag, an error code for the
// failure case, and zero or more output files.
type Result struct {
	Success   bool
	ErrorCode int
	Files     []OutputFile
}

// Parser converts a set of asset file buffers into the requested output
// format. The call may suspend on ctx; the importer imposes no timeout or
// retry of its own.
type Parser interface {
	Convert(ctx context.Context, files []InputFile, format string) (*Result, error)
}
