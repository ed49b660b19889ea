package watermarkit

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	ggtext "github.com/gogpu/gg/text"
	gofpdf "github.com/phpdave11/gofpdf"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

type opKind int

const (
	opText opKind = iota
	opImage
	opRaster
)

// drawOp is one recorded drawing operation, replayed into the output
// document at serialization time. Raster ops carry a whole layer: every
// consecutive Draw-method operation at the same DPI shares one.
type drawOp struct {
	kind     opKind
	text     string
	img      image.Image
	style    Attributes
	at       position.Coordinates
	w, h     float64 // content extent in points
	baseline float64 // text ascent in points

	raster *image.RGBA
	dpi    float64
}

// pageCanvas implements Canvas for one page. Overlay operations are recorded
// and replayed with gofpdf primitives; Draw operations rasterize into layer
// buffers during the page phase, which is the part worth parallelizing.
type pageCanvas struct {
	doc          *pdfDocument
	page         int
	pageW, pageH float64
	ops          []*drawOp

	// Image registration names by pixel buffer, so a tiled image watermark
	// is encoded and embedded once per page rather than once per tile.
	imgNames map[image.Image]string
}

func (c *pageCanvas) MeasureText(txt string, size float64) (w, h float64) {
	face := c.doc.face(size)
	m := face.Metrics()
	return face.Advance(txt), m.Ascent + m.Descent
}

func (c *pageCanvas) DrawText(txt string, style Attributes, at position.Coordinates) error {
	size := style.textSize()
	face := c.doc.face(size)
	m := face.Metrics()
	w, h := face.Advance(txt), m.Ascent+m.Descent

	if style.Method == Draw {
		return c.rasterText(txt, style, at, w, h)
	}
	c.ops = append(c.ops, &drawOp{
		kind: opText, text: txt, style: style, at: at,
		w: w, h: h, baseline: m.Ascent,
	})
	return nil
}

func (c *pageCanvas) DrawImage(img image.Image, style Attributes, at position.Coordinates) error {
	w, h := style.imageExtent()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("watermarkit: image watermark has empty extent")
	}
	if style.Method == Draw {
		return c.rasterImage(img, style, at, w, h)
	}
	c.ops = append(c.ops, &drawOp{kind: opImage, img: img, style: style, at: at, w: w, h: h})
	return nil
}

// rasterLayer returns the raster layer the next Draw operation lands on. A
// new layer starts when the preceding operation used a different method or
// DPI, which keeps batch layering order intact across mixed batches.
func (c *pageCanvas) rasterLayer(dpi float64) *drawOp {
	if n := len(c.ops); n > 0 {
		if last := c.ops[n-1]; last.kind == opRaster && last.dpi == dpi {
			return last
		}
	}
	scale := dpi / 72
	rect := image.Rect(0, 0, int(math.Ceil(c.pageW*scale)), int(math.Ceil(c.pageH*scale)))
	op := &drawOp{kind: opRaster, raster: image.NewRGBA(rect), dpi: dpi}
	c.ops = append(c.ops, op)
	return op
}

// composite transforms src onto dst, scaled to w by h pixels and rotated by
// degrees about the content center, with the unrotated box's top-left at
// (x, y). The overlay method rotates counterclockwise in y-up page space;
// matrix rotation in y-down raster space runs clockwise, hence the sign
// flip on the angle.
func composite(dst *image.RGBA, src image.Image, x, y, w, h, degrees float64, opts *xdraw.Options) {
	b := src.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	if sw <= 0 || sh <= 0 {
		return
	}
	kx, ky := w/sw, h/sh
	sin, cos := math.Sincos(-degrees * math.Pi / 180)
	cx, cy := x+w/2, y+h/2
	m := f64.Aff3{
		cos * kx, -sin * ky, cx - cos*(kx*float64(b.Min.X)+w/2) + sin*(ky*float64(b.Min.Y)+h/2),
		sin * kx, cos * ky, cy - sin*(kx*float64(b.Min.X)+w/2) - cos*(ky*float64(b.Min.Y)+h/2),
	}
	xdraw.ApproxBiLinear.Transform(dst, m, src, b, xdraw.Over, opts)
}

func (c *pageCanvas) rasterText(txt string, style Attributes, at position.Coordinates, w, h float64) error {
	dpi := style.dpi()
	scale := dpi / 72
	layer := c.rasterLayer(dpi).raster
	face := c.doc.face(style.textSize() * scale)
	col := style.color()

	tw, th := int(math.Ceil(w*scale)), int(math.Ceil(h*scale))
	if tw < 1 || th < 1 {
		return nil
	}
	buf := image.NewRGBA(image.Rect(0, 0, tw, th))
	ggtext.Draw(buf, txt, face, 0, face.Metrics().Ascent, color.NRGBA{
		R: uint8(col.R), G: uint8(col.G), B: uint8(col.B),
		A: uint8(style.opacity()*255 + 0.5),
	})
	composite(layer, buf, at.X*scale, at.Y*scale, w*scale, h*scale, style.Rotation, nil)
	return nil
}

func (c *pageCanvas) rasterImage(img image.Image, style Attributes, at position.Coordinates, w, h float64) error {
	dpi := style.dpi()
	scale := dpi / 72
	layer := c.rasterLayer(dpi).raster

	opts := &xdraw.Options{
		SrcMask: image.NewUniform(color.Alpha{A: uint8(style.opacity()*255 + 0.5)}),
	}
	composite(layer, img, at.X*scale, at.Y*scale, w*scale, h*scale, style.Rotation, opts)
	return nil
}

// replay draws the recorded operations onto the current output page, in
// recording order. It runs on the serialization goroutine only.
func (c *pageCanvas) replay(pdf *gofpdf.Fpdf) error {
	for i, op := range c.ops {
		switch op.kind {
		case opText:
			c.replayText(pdf, op)
		case opImage:
			if err := c.replayImage(pdf, op, i); err != nil {
				return err
			}
		case opRaster:
			if err := c.replayRaster(pdf, op, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *pageCanvas) replayText(pdf *gofpdf.Fpdf, op *drawOp) {
	col := op.style.color()
	// The embedded document font is the face the extent was measured with;
	// a different replay font would shift every non-left-anchored placement.
	pdf.SetFont(overlayFontFamily, "", op.style.textSize())
	pdf.SetTextColor(col.R, col.G, col.B)
	pdf.SetAlpha(op.style.opacity(), "Normal")
	pdf.TransformBegin()
	pdf.TransformRotate(op.style.Rotation, op.at.X+op.w/2, op.at.Y+op.h/2)
	pdf.Text(op.at.X, op.at.Y+op.baseline, op.text)
	pdf.TransformEnd()
	pdf.SetAlpha(1.0, "Normal")
}

func (c *pageCanvas) replayImage(pdf *gofpdf.Fpdf, op *drawOp, idx int) error {
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	name, registered := c.imgNames[op.img]
	if !registered {
		var buf bytes.Buffer
		if err := png.Encode(&buf, op.img); err != nil {
			return fmt.Errorf("watermarkit: encoding watermark image: %w", err)
		}
		name = fmt.Sprintf("wm-%d-%d", c.page, idx)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		if c.imgNames == nil {
			c.imgNames = make(map[image.Image]string)
		}
		c.imgNames[op.img] = name
	}

	pdf.SetAlpha(op.style.opacity(), "Normal")
	pdf.TransformBegin()
	pdf.TransformRotate(op.style.Rotation, op.at.X+op.w/2, op.at.Y+op.h/2)
	pdf.ImageOptions(name, op.at.X, op.at.Y, op.w, op.h, false, opts, 0, "")
	pdf.TransformEnd()
	pdf.SetAlpha(1.0, "Normal")
	return nil
}

func (c *pageCanvas) replayRaster(pdf *gofpdf.Fpdf, op *drawOp, idx int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, op.raster); err != nil {
		return fmt.Errorf("watermarkit: encoding raster layer: %w", err)
	}
	name := fmt.Sprintf("wm-raster-%d-%d", c.page, idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	// Opacity is already baked into the raster layer.
	pdf.ImageOptions(name, 0, 0, c.pageW, c.pageH, false, opts, 0, "")
	return nil
}
