package watermarkit

import (
	"fmt"
	"image"
	"os"

	"github.com/go-kit/log"

	"github.com/KonstantineVashalomidze/WaterMarkIt/images"
	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

// Service accumulates a batch of watermarks for one document and applies
// them in a single pass. It is the entry stage of the builder: calling
// WithText, WithImage or WithQRCode starts a new watermark and moves the
// chain into a content-bound stage.
//
// Builder stages are separate types so that out-of-phase calls do not
// compile: spacing and adjustment only exist on PositionStepBuilder, text
// color and the trademark suffix only on TextWatermarkBuilder.
//
// A Service is single-use: after Apply or ApplyToFile the batch is spent.
// It is not safe for concurrent use while the batch is being built.
type Service struct {
	document []byte
	batch    []Attributes
	current  Attributes

	logger  log.Logger
	pool    Pool
	fontTTF []byte

	// started reports whether a watermark is in progress, so Apply knows
	// whether an implicit And is owed.
	started bool

	// First deferred builder error; checked when the batch is finalized,
	// in the manner of gofpdf's internal error state.
	err error
}

// New creates a watermarking service for the given document bytes.
func New(document []byte, opts ...Option) *Service {
	s := &Service{
		document: document,
		current:  newAttributes(),
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a watermarking service for the document at path.
func Open(path string, opts ...Option) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("watermarkit: reading %s: %w", path, err)
	}
	return New(data, opts...), nil
}

// fail records the first builder error; it surfaces when the watermark is
// finalized so that fluent chains stay chainable.
func (s *Service) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// WithText starts a text watermark.
func (s *Service) WithText(text string) *TextWatermarkBuilder {
	s.current.Text = text
	s.current.Image = nil
	s.started = true
	return &TextWatermarkBuilder{WatermarkBuilder{s: s}}
}

// WithImage starts an image watermark from raw image bytes
// (PNG, JPEG, GIF, BMP, TIFF or WebP).
func (s *Service) WithImage(data []byte) *WatermarkBuilder {
	img, err := images.Decode(data)
	if err != nil {
		s.fail(fmt.Errorf("%w: %v", ErrUndecodableImage, err))
		s.started = true
		return &WatermarkBuilder{s: s}
	}
	return s.WithDecodedImage(img)
}

// WithImageFile starts an image watermark from the image at path.
func (s *Service) WithImageFile(path string) *WatermarkBuilder {
	img, err := images.DecodeFile(path)
	if err != nil {
		s.fail(fmt.Errorf("%w: %v", ErrUndecodableImage, err))
		s.started = true
		return &WatermarkBuilder{s: s}
	}
	return s.WithDecodedImage(img)
}

// WithDecodedImage starts an image watermark from an already decoded image.
func (s *Service) WithDecodedImage(img image.Image) *WatermarkBuilder {
	s.current.Image = img
	s.current.Text = ""
	s.started = true
	return &WatermarkBuilder{s: s}
}

// and validates the in-progress watermark, appends it to the batch and
// resets the builder for the next one. A validation failure is recorded and
// surfaces when the batch is applied.
func (s *Service) and() {
	if !s.current.hasContent() {
		s.fail(ErrEmptyContent)
	} else {
		s.batch = append(s.batch, s.current)
	}
	s.current = newAttributes()
	s.started = false
}

// WatermarkBuilder configures the watermark currently being built.
// Styling calls keep the chain in this stage; Position unlocks placement
// refinement; And finalizes the watermark and returns to the Service.
type WatermarkBuilder struct {
	s *Service
}

// Size sets the font size in points for text, or the target width in points
// for images.
func (b *WatermarkBuilder) Size(points float64) *WatermarkBuilder {
	b.s.current.Size = points
	return b
}

// Opacity sets the watermark opacity, from 0.0 (transparent) to 1.0 (opaque).
func (b *WatermarkBuilder) Opacity(opacity float64) *WatermarkBuilder {
	b.s.current.Opacity = opacity
	return b
}

// Rotation sets the rotation angle in degrees, counterclockwise about the
// content center.
func (b *WatermarkBuilder) Rotation(degrees float64) *WatermarkBuilder {
	b.s.current.Rotation = degrees
	return b
}

// Method selects the rendering method, Overlay (vector) or Draw (raster).
func (b *WatermarkBuilder) Method(m Method) *WatermarkBuilder {
	b.s.current.Method = m
	return b
}

// DPI sets the raster resolution used by the Draw method.
func (b *WatermarkBuilder) DPI(dpi float64) *WatermarkBuilder {
	b.s.current.DPI = dpi
	return b
}

// When enables or disables the watermark. A disabled watermark stays in the
// batch and is skipped at render time.
func (b *WatermarkBuilder) When(condition bool) *WatermarkBuilder {
	b.s.current.Enabled = condition
	return b
}

// Position anchors the watermark and unlocks placement refinement calls.
func (b *WatermarkBuilder) Position(anchor position.Anchor) *PositionStepBuilder {
	b.s.current.Anchor = anchor
	return &PositionStepBuilder{b: b}
}

// And finalizes the current watermark and returns to the batch stage so the
// next watermark can be built. Validation errors (such as empty content)
// surface when the batch is applied.
func (b *WatermarkBuilder) And() *Service {
	b.s.and()
	return b.s
}

// Apply finalizes the current watermark and applies the whole batch to
// every page of the document, returning the resulting document bytes.
func (b *WatermarkBuilder) Apply() ([]byte, error) {
	return b.s.apply()
}

// ApplyToFile is Apply followed by writing the bytes to dir/name. It fails
// with ErrInvalidDirectory before any rendering work if dir does not exist.
func (b *WatermarkBuilder) ApplyToFile(dir, name string) (string, error) {
	return b.s.applyToFile(dir, name)
}

// TextWatermarkBuilder is a WatermarkBuilder with text-only styling calls.
// Call Color and AddTrademark before general styling calls; the chain
// narrows to WatermarkBuilder afterwards.
type TextWatermarkBuilder struct {
	WatermarkBuilder
}

// Color sets the text color.
func (b *TextWatermarkBuilder) Color(c RGBColor) *TextWatermarkBuilder {
	b.s.current.Color = c
	return b
}

// AddTrademark appends a trademark suffix to the text at render time.
func (b *TextWatermarkBuilder) AddTrademark() *TextWatermarkBuilder {
	b.s.current.Trademark = true
	return b
}

// PositionStepBuilder refines the placement of an anchored watermark.
// It is only reachable through Position, so spacing and adjustment cannot
// be set before an anchor exists.
type PositionStepBuilder struct {
	b *WatermarkBuilder
}

// Adjust offsets the resolved coordinate by (dx, dy) points. The offset is
// applied unconditionally and may push the watermark off the page.
func (p *PositionStepBuilder) Adjust(dx, dy float64) *PositionStepBuilder {
	p.b.s.current.Adjustment = position.Adjustment{DX: dx, DY: dy}
	return p
}

// HorizontalSpacing sets the horizontal gap between tiles of a Tiled
// watermark, in points.
func (p *PositionStepBuilder) HorizontalSpacing(spacing float64) *PositionStepBuilder {
	p.b.s.current.HorizontalSpacing = spacing
	return p
}

// VerticalSpacing sets the vertical gap between tiles of a Tiled watermark,
// in points.
func (p *PositionStepBuilder) VerticalSpacing(spacing float64) *PositionStepBuilder {
	p.b.s.current.VerticalSpacing = spacing
	return p
}

// End returns to the general styling stage.
func (p *PositionStepBuilder) End() *WatermarkBuilder {
	return p.b
}

// And finalizes the current watermark and returns to the batch stage.
func (p *PositionStepBuilder) And() *Service {
	return p.b.And()
}

// Apply finalizes the current watermark and applies the whole batch.
func (p *PositionStepBuilder) Apply() ([]byte, error) {
	return p.b.Apply()
}

// ApplyToFile is Apply followed by writing the bytes to dir/name.
func (p *PositionStepBuilder) ApplyToFile(dir, name string) (string, error) {
	return p.b.ApplyToFile(dir, name)
}
