package watermarkit_test

import (
	"bytes"
	"fmt"

	gofpdf "github.com/phpdave11/gofpdf"

	watermarkit "github.com/KonstantineVashalomidze/WaterMarkIt"
	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

// Example watermarks a freshly generated two-page document with a rotated
// confidentiality notice and a small footer line.
func Example() {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= 2; i++ {
		pdf.AddPage()
		pdf.Text(40, 60, fmt.Sprintf("Quarterly report, page %d", i))
	}
	var doc bytes.Buffer
	if err := pdf.Output(&doc); err != nil {
		fmt.Println(err)
		return
	}

	out, err := watermarkit.New(doc.Bytes()).
		WithText("CONFIDENTIAL").
		Color(watermarkit.RGBColor{R: 220, G: 70, B: 70}).
		Rotation(45).
		Opacity(0.25).
		Position(position.Center).
		And().
		WithText("Acme Corp").
		AddTrademark().
		Size(10).
		Position(position.BottomCenter).
		Adjust(0, -15).
		Apply()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("watermarked:", len(out) > 0)
	// Output:
	// watermarked: true
}
