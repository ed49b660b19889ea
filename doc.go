// Package watermarkit applies text, image and QR-code watermarks to every
// page of a PDF document in one pass.
//
// Watermarks are described through a staged fluent builder. Each stage is a
// distinct type, so calls that need earlier state, such as tile spacing
// before an anchor exists, do not compile:
//
//	out, err := watermarkit.New(doc).
//		WithText("CONFIDENTIAL").
//		Color(watermarkit.RGBColor{R: 255}).
//		Rotation(45).
//		Opacity(0.3).
//		Position(position.Center).
//		And().
//		WithText("Internal use only").
//		Size(12).
//		Position(position.BottomCenter).
//		Adjust(0, -20).
//		Apply()
//
// Later watermarks draw on top of earlier ones. Rendering defaults to cheap
// vector overlays; Method(Draw) rasterizes the watermark layer at a
// configurable DPI instead, and a caller-owned worker pool (see
// WithWorkerPool) spreads that cost across pages without changing the
// output bytes.
package watermarkit
