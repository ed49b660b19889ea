// Package position resolves abstract watermark placement intents into
// concrete page coordinates.
//
// Resolution is a pure function of its inputs: the same anchor, page extent,
// content extent, adjustment, and spacing always produce the same placement
// sequence, so it is safe to call concurrently for independent pages.
package position

import "fmt"

// Anchor names a reference position on a page from which a watermark's
// final coordinate is computed.
type Anchor int

const (
	Center Anchor = iota
	TopLeft
	TopCenter
	TopRight
	CenterLeft
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
	// Tiled repeats the watermark in a regular grid across the whole page.
	Tiled
)

var anchorNames = map[Anchor]string{
	Center:       "center",
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	CenterLeft:   "center-left",
	CenterRight:  "center-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
	Tiled:        "tiled",
}

func (a Anchor) String() string {
	if name, ok := anchorNames[a]; ok {
		return name
	}
	return fmt.Sprintf("anchor(%d)", int(a))
}

// ParseAnchor returns the Anchor named by s, e.g. "top-left" or "tiled".
func ParseAnchor(s string) (Anchor, error) {
	for a, name := range anchorNames {
		if name == s {
			return a, nil
		}
	}
	return Center, fmt.Errorf("position: unknown anchor %q", s)
}

// Coordinates is a single placement in page space. The origin is the top-left
// corner of the page; X grows right and Y grows down. A placement refers to
// the top-left corner of the content box.
type Coordinates struct {
	X, Y float64
}

// Adjustment shifts a resolved coordinate relative to its anchor.
type Adjustment struct {
	DX, DY float64
}

// Resolve maps an anchor to one or more concrete placements for content of
// size contentW x contentH on a page of size pageW x pageH.
//
// The adjustment is added unconditionally; placements may land partially or
// fully outside the page. That is not an error here, clipping is the drawing
// layer's concern. For Tiled the result is a row-major grid starting at the
// page origin, stepping by content size plus spacing, including tiles that
// overflow the page edge. Negative spacing is treated as zero.
func Resolve(anchor Anchor, pageW, pageH, contentW, contentH float64, adj Adjustment, hSpacing, vSpacing float64) []Coordinates {
	if anchor == Tiled {
		return resolveTiled(pageW, pageH, contentW, contentH, adj, hSpacing, vSpacing)
	}

	var x, y float64
	switch anchor {
	case TopLeft:
		x, y = 0, 0
	case TopCenter:
		x, y = (pageW-contentW)/2, 0
	case TopRight:
		x, y = pageW-contentW, 0
	case CenterLeft:
		x, y = 0, (pageH-contentH)/2
	case CenterRight:
		x, y = pageW-contentW, (pageH-contentH)/2
	case BottomLeft:
		x, y = 0, pageH-contentH
	case BottomCenter:
		x, y = (pageW-contentW)/2, pageH-contentH
	case BottomRight:
		x, y = pageW-contentW, pageH-contentH
	default: // Center
		x, y = (pageW-contentW)/2, (pageH-contentH)/2
	}
	return []Coordinates{{X: x + adj.DX, Y: y + adj.DY}}
}

func resolveTiled(pageW, pageH, contentW, contentH float64, adj Adjustment, hSpacing, vSpacing float64) []Coordinates {
	if hSpacing < 0 {
		hSpacing = 0
	}
	if vSpacing < 0 {
		vSpacing = 0
	}
	stepX := contentW + hSpacing
	stepY := contentH + vSpacing
	if stepX <= 0 || stepY <= 0 {
		// Degenerate content extent; a single tile keeps the result finite.
		return []Coordinates{{X: adj.DX, Y: adj.DY}}
	}

	var coords []Coordinates
	for y := 0.0; y < pageH; y += stepY {
		for x := 0.0; x < pageW; x += stepX {
			coords = append(coords, Coordinates{X: x + adj.DX, Y: y + adj.DY})
		}
	}
	return coords
}
