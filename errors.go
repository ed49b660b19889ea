package watermarkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for common watermarking failure conditions.
var (
	// ErrEmptyContent is returned when a watermark is finalized with
	// neither text nor an image.
	ErrEmptyContent = errors.New("watermarkit: watermark has no text and no image")

	// ErrInvalidDirectory is returned by ApplyToFile when the target
	// directory does not exist; it is reported before any rendering work.
	ErrInvalidDirectory = errors.New("watermarkit: directory does not exist or is not a directory")

	// ErrUndecodableImage is returned when watermark image bytes cannot be
	// decoded into a pixel buffer.
	ErrUndecodableImage = errors.New("watermarkit: image could not be decoded")

	// ErrMalformedDocument is returned when the input document cannot be
	// parsed.
	ErrMalformedDocument = errors.New("watermarkit: document could not be parsed")
)

// RenderError represents a failure during batch application. It wraps the
// underlying cause and names the pipeline stage that observed it.
type RenderError struct {
	Op  string // stage name, e.g. "render", "serialize"
	Err error  // underlying error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("watermarkit.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("watermarkit.%s: unknown error", e.Op)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// newRenderError creates a new RenderError wrapping the given cause.
func newRenderError(op string, err error) *RenderError {
	return &RenderError{Op: op, Err: err}
}
