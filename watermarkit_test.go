package watermarkit_test

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	pdflib "github.com/digitorus/pdf"
	gofpdf "github.com/phpdave11/gofpdf"

	watermarkit "github.com/KonstantineVashalomidze/WaterMarkIt"
	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

// createTestPDF generates a simple in-memory PDF with the given number of pages.
func createTestPDF(t *testing.T, numPages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= numPages; i++ {
		pdf.AddPage()
		pdf.Text(40, 60, fmt.Sprintf("Page %d of %d", i, numPages))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
	return buf.Bytes()
}

// pageCount parses generated output and returns its page count.
func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	rdr, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading output PDF: %v", err)
	}
	return rdr.NumPage()
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

func TestApplyTextWatermarks(t *testing.T) {
	doc := createTestPDF(t, 3)

	out, err := watermarkit.New(doc).
		WithText("A").
		Position(position.TopLeft).
		And().
		WithText("B").
		Rotation(45).
		Opacity(0.5).
		Position(position.Center).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("output is empty")
	}
	if got := pageCount(t, out); got != 3 {
		t.Errorf("output has %d pages, want 3", got)
	}
	if len(out) <= len(doc) {
		t.Errorf("watermarked output should be larger: orig=%d, out=%d", len(doc), len(out))
	}
}

func TestApplyImageWatermark(t *testing.T) {
	doc := createTestPDF(t, 2)

	out, err := watermarkit.New(doc).
		WithImage(testPNG(t, 64, 32)).
		Opacity(0.4).
		Position(position.BottomRight).
		Adjust(-10, -10).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 2 {
		t.Errorf("output has %d pages, want 2", got)
	}
}

func TestApplyTiledWatermark(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithText("DRAFT").
		Size(18).
		Position(position.Tiled).
		HorizontalSpacing(40).
		VerticalSpacing(60).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("output has %d pages, want 1", got)
	}
}

func TestApplyDrawMethod(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithText("RASTER").
		Method(watermarkit.Draw).
		DPI(72).
		Rotation(30).
		Position(position.Center).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("output has %d pages, want 1", got)
	}
}

func TestApplyDrawImageWatermark(t *testing.T) {
	doc := createTestPDF(t, 2)

	out, err := watermarkit.New(doc).
		WithImage(testPNG(t, 80, 40)).
		Method(watermarkit.Draw).
		DPI(96).
		Rotation(30).
		Position(position.Center).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 2 {
		t.Errorf("output has %d pages, want 2", got)
	}
}

func TestApplyTiledImageWatermark(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithImage(testPNG(t, 50, 50)).
		Size(100).
		Opacity(0.2).
		Position(position.Tiled).
		HorizontalSpacing(30).
		VerticalSpacing(30).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("output has %d pages, want 1", got)
	}
	if len(out) <= len(doc) {
		t.Errorf("tiled output should be larger: orig=%d, out=%d", len(doc), len(out))
	}
}

func TestDrawRotationAffectsOutput(t *testing.T) {
	doc := createTestPDF(t, 1)

	render := func(degrees float64) []byte {
		out, err := watermarkit.New(doc).
			WithText("ROTATED").
			Method(watermarkit.Draw).
			DPI(96).
			Rotation(degrees).
			Position(position.Center).
			Apply()
		if err != nil {
			t.Fatalf("apply at %v degrees: %v", degrees, err)
		}
		return out
	}

	if bytes.Equal(normalize(render(0)), normalize(render(45))) {
		t.Error("rotated raster output should differ from the unrotated output")
	}
}

func TestOverlayTextEmbedsMeasuredFont(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithText("CONFIDENTIAL").
		Position(position.BottomRight).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// The replay font must be the measuring font, so the output carries an
	// embedded TrueType program rather than a core-font reference alone.
	if !bytes.Contains(out, []byte("/FontFile2")) {
		t.Error("output should embed the font the text extent was measured with")
	}
}

func TestApplyQRCode(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithQRCode("https://example.com/doc/42").
		Size(120).
		Position(position.TopRight).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("output is empty")
	}
}

// creationDate matches the volatile document metadata written by gofpdf.
var creationDate = regexp.MustCompile(`D:\d{14}`)

func normalize(data []byte) []byte {
	return creationDate.ReplaceAll(data, []byte("D:00000000000000"))
}

func TestParallelMatchesSequential(t *testing.T) {
	doc := createTestPDF(t, 4)

	build := func(opts ...watermarkit.Option) ([]byte, error) {
		return watermarkit.New(doc, opts...).
			WithText("CONFIDENTIAL").
			Rotation(45).
			Position(position.Center).
			And().
			WithText("per-page raster").
			Method(watermarkit.Draw).
			DPI(96).
			Position(position.BottomCenter).
			Apply()
	}

	sequential, err := build()
	if err != nil {
		t.Fatalf("sequential apply: %v", err)
	}

	pool := watermarkit.NewWorkerPool(4)
	defer pool.Close()
	parallel, err := build(watermarkit.WithWorkerPool(pool))
	if err != nil {
		t.Fatalf("parallel apply: %v", err)
	}

	if !bytes.Equal(normalize(sequential), normalize(parallel)) {
		t.Error("parallel output differs from sequential output")
	}
}

func TestApplyAfterAnd(t *testing.T) {
	doc := createTestPDF(t, 1)

	svc := watermarkit.New(doc).
		WithText("SEALED").
		Position(position.Center).
		And()
	out, err := svc.Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("output has %d pages, want 1", got)
	}
}

func TestApplyWithoutWatermarksFails(t *testing.T) {
	doc := createTestPDF(t, 1)
	if _, err := watermarkit.New(doc).Apply(); !errors.Is(err, watermarkit.ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestEmptyContentFails(t *testing.T) {
	doc := createTestPDF(t, 1)
	if _, err := watermarkit.New(doc).WithText("").Apply(); !errors.Is(err, watermarkit.ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestMalformedDocument(t *testing.T) {
	_, err := watermarkit.New([]byte("junk")).WithText("X").Apply()
	if !errors.Is(err, watermarkit.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestApplyToFile(t *testing.T) {
	doc := createTestPDF(t, 2)
	dir := t.TempDir()

	path, err := watermarkit.New(doc).
		WithText("FILED").
		Position(position.BottomLeft).
		ApplyToFile(dir, "out.pdf")
	if err != nil {
		t.Fatalf("apply to file: %v", err)
	}
	if path != filepath.Join(dir, "out.pdf") {
		t.Errorf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := pageCount(t, data); got != 2 {
		t.Errorf("output has %d pages, want 2", got)
	}
}

func TestApplyToFileInvalidDirectory(t *testing.T) {
	// The document bytes are junk: the directory check must fail first,
	// before any parsing or rendering happens.
	_, err := watermarkit.New([]byte("junk")).
		WithText("X").
		ApplyToFile(filepath.Join(t.TempDir(), "missing"), "out.pdf")
	if !errors.Is(err, watermarkit.ErrInvalidDirectory) {
		t.Errorf("expected ErrInvalidDirectory, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := watermarkit.Open(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestDisabledWatermarkStillApplies(t *testing.T) {
	doc := createTestPDF(t, 1)

	out, err := watermarkit.New(doc).
		WithText("shown").
		Position(position.TopCenter).
		And().
		WithText("hidden").
		When(false).
		Apply()
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := pageCount(t, out); got != 1 {
		t.Errorf("output has %d pages, want 1", got)
	}
}
