package watermarkit

import (
	"image"
	"strings"

	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

// Method selects how a watermark is rendered onto a page.
type Method int

const (
	// Overlay composes the watermark as vector content directly into the
	// page's content stream. Cheap, no rasterization.
	Overlay Method = iota

	// Draw rasterizes the watermark layer at the configured DPI and embeds
	// the raster above the page. Strictly more expensive, which is why a
	// worker pool pays off for multi-page documents.
	Draw
)

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// Attributes describes one finalized watermark: its content and styling.
// Values are filled in by the staged builder and are not modified after the
// watermark is admitted to the batch.
//
// Zero values select defaults at render time: size 60pt, opacity 0.3,
// light gray text, 150 DPI for the Draw method.
type Attributes struct {
	Text  string      // text content; empty when Image is set
	Image image.Image // image content; nil when Text is set

	Color    RGBColor // text color (default: light gray)
	Size     float64  // font size in points; for images, target width in points (0: intrinsic size)
	Opacity  float64  // 0.0 to 1.0 (default: 0.3)
	Rotation float64  // rotation angle in degrees, counterclockwise about the content center

	Anchor            position.Anchor     // placement anchor (default: center)
	Adjustment        position.Adjustment // pixel offset relative to the anchor
	HorizontalSpacing float64             // gap between tiles, Tiled anchor only
	VerticalSpacing   float64             // gap between tiles, Tiled anchor only

	Trademark bool   // append a trademark suffix to the text
	Enabled   bool   // disabled watermarks stay in the batch but are skipped
	Method    Method // rendering method (default: Overlay)
	DPI       float64 // raster resolution for Draw (default: 150)
}

const trademarkSuffix = "™"

// newAttributes returns the in-progress watermark a builder starts from.
func newAttributes() Attributes {
	return Attributes{Enabled: true}
}

// hasContent reports whether the watermark carries text or an image.
// A watermark without content is never admitted to a batch.
func (a Attributes) hasContent() bool {
	return strings.TrimSpace(a.Text) != "" || a.Image != nil
}

// renderText returns the text to draw, with the trademark suffix applied.
func (a Attributes) renderText() string {
	if a.Trademark {
		return a.Text + trademarkSuffix
	}
	return a.Text
}

func (a Attributes) textSize() float64 {
	if a.Size > 0 {
		return a.Size
	}
	return 60
}

func (a Attributes) opacity() float64 {
	if a.Opacity > 0 {
		return a.Opacity
	}
	return 0.3
}

func (a Attributes) color() RGBColor {
	if a.Color == (RGBColor{}) {
		return RGBColor{200, 200, 200}
	}
	return a.Color
}

func (a Attributes) dpi() float64 {
	if a.DPI > 0 {
		return a.DPI
	}
	return 150
}

// imageExtent returns the drawn size of the image content in points.
// Size sets the target width with the aspect ratio preserved; otherwise the
// intrinsic pixel size is used, scaled by the DPI hint when rasterizing.
func (a Attributes) imageExtent() (w, h float64) {
	bounds := a.Image.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw <= 0 || ih <= 0 {
		return 0, 0
	}
	if a.Size > 0 {
		return a.Size, a.Size * ih / iw
	}
	if a.Method == Draw {
		scale := 72 / a.dpi()
		return iw * scale, ih * scale
	}
	return iw, ih
}
