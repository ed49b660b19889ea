package watermarkit

import (
	"fmt"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// qrPixels is the edge length the generated code is scaled to before it is
// placed like any other image watermark.
const qrPixels = 512

// WithQRCode starts an image watermark carrying a QR code with the given
// content. The code behaves like any other image watermark; use Size to set
// the stamped edge length in points.
func (s *Service) WithQRCode(content string) *WatermarkBuilder {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		s.fail(fmt.Errorf("watermarkit: encoding QR code: %w", err))
		s.started = true
		return &WatermarkBuilder{s: s}
	}
	scaled, err := barcode.Scale(code, qrPixels, qrPixels)
	if err != nil {
		s.fail(fmt.Errorf("watermarkit: scaling QR code: %w", err))
		s.started = true
		return &WatermarkBuilder{s: s}
	}
	return s.WithDecodedImage(scaled)
}
