package importer

import "fmt"

// ConversionError reports that the asset parser signalled failure or
// produced no output files. Code carries the parser-supplied error code.
type ConversionError struct {
	Code int
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("asset parser conversion failed (code %d)", e.Code)
}

// UnknownLightTypeError reports a light type code outside the recognized
// set {1,2,3}. It aborts the whole conversion.
type UnknownLightTypeError struct {
	Code int32
}

func (e *UnknownLightTypeError) Error() string {
	return fmt.Sprintf("unknown light type code %d", e.Code)
}
