package watermarkit

import (
	"bytes"
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"
	"github.com/gogpu/gg/text"
	"github.com/mattetti/filebuffer"
	gofpdf "github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
	"golang.org/x/image/font/gofont/goregular"
)

type pageSize struct {
	w, h float64
}

// overlayFontFamily is the family name the document font is registered under
// in the output PDF. Overlay text replays with it so the drawn advances match
// the ones the extent was measured with.
const overlayFontFamily = "watermark"

// pdfDocument adapts a parsed PDF to the pipeline's Document contract.
// Page structure comes from digitorus/pdf; serialization re-imports every
// page as a gofpdi template into a fresh gofpdf document and layers the
// recorded draw operations on top.
type pdfDocument struct {
	data    []byte
	pages   []pageSize
	fontTTF []byte

	// Text faces for every size the batch can ask for, created before the
	// page fan-out so the concurrent phase only reads.
	source *text.FontSource
	faces  map[float64]text.Face
}

func (s *Service) openDocument() (Document, error) {
	return openPDF(s.document, s.fontTTF, s.batch)
}

func openPDF(data, fontTTF []byte, batch []Attributes) (*pdfDocument, error) {
	rdr, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	count := rdr.NumPage()
	if count < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrMalformedDocument)
	}

	pages := make([]pageSize, count)
	for i := 1; i <= count; i++ {
		pages[i-1] = pageExtent(rdr.Page(i))
	}

	if fontTTF == nil {
		fontTTF = goregular.TTF
	}
	source, err := text.NewFontSource(fontTTF)
	if err != nil {
		return nil, fmt.Errorf("watermarkit: parsing font: %w", err)
	}

	d := &pdfDocument{
		data:    data,
		pages:   pages,
		fontTTF: fontTTF,
		source:  source,
		faces:   make(map[float64]text.Face),
	}
	for _, wm := range batch {
		if wm.Image != nil {
			continue
		}
		size := wm.textSize()
		d.faces[size] = source.Face(size)
		if wm.Method == Draw {
			scaled := size * wm.dpi() / 72
			d.faces[scaled] = source.Face(scaled)
		}
	}
	return d, nil
}

// pageExtent reads a page's MediaBox, falling back to Letter when absent.
func pageExtent(page pdflib.Page) pageSize {
	size := pageSize{w: 612, h: 792}
	if page.V.IsNull() {
		return size
	}
	mb := page.V.Key("MediaBox")
	if mb.Kind() != pdflib.Array || mb.Len() < 4 {
		return size
	}
	var box [4]float64
	for i := 0; i < 4; i++ {
		box[i] = mb.Index(i).Float64()
	}
	if box[2] > box[0] && box[3] > box[1] {
		size = pageSize{w: box[2] - box[0], h: box[3] - box[1]}
	}
	return size
}

// face returns the prepared face for a size. All sizes the pipeline uses
// are registered up front in openPDF.
func (d *pdfDocument) face(size float64) text.Face {
	if f, ok := d.faces[size]; ok {
		return f
	}
	return d.source.Face(size)
}

func (d *pdfDocument) PageCount() int {
	return len(d.pages)
}

func (d *pdfDocument) PageSize(page int) (w, h float64) {
	p := d.pages[page]
	return p.w, p.h
}

func (d *pdfDocument) Canvas(page int) (Canvas, error) {
	p := d.pages[page]
	return &pageCanvas{doc: d, page: page, pageW: p.w, pageH: p.h}, nil
}

// Serialize rebuilds the document page by page, in the original order,
// replaying each canvas's recorded operations above the imported page.
func (d *pdfDocument) Serialize(canvases []Canvas) (out []byte, err error) {
	// gofpdi reports unsupported or corrupt input by panicking.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrMalformedDocument, r)
		}
	}()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	// The font parser writes into the slice it is given; the shared TTF
	// bytes also back the measuring faces, so it gets its own copy.
	pdf.AddUTF8FontFromBytes(overlayFontFamily, "", append([]byte(nil), d.fontTTF...))
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(filebuffer.New(d.data))

	for i, c := range canvases {
		pc, ok := c.(*pageCanvas)
		if !ok {
			return nil, fmt.Errorf("watermarkit: foreign canvas type %T", c)
		}
		size := d.pages[i]

		tpl := imp.ImportPageFromStream(pdf, &rs, i+1, "/MediaBox")
		orientation := "P"
		if size.w > size.h {
			orientation = "L"
		}
		pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: size.w, Ht: size.h})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, size.w, size.h)

		if err := pc.replay(pdf); err != nil {
			return nil, err
		}
	}

	if pdf.Err() {
		return nil, pdf.Error()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
