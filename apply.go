package watermarkit

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KonstantineVashalomidze/WaterMarkIt/position"
)

// Canvas is the drawing surface for a single page. A canvas is used by at
// most one rendering task at a time; implementations do not need to be safe
// for concurrent use themselves.
type Canvas interface {
	// MeasureText returns the bounding box of the text at the given font
	// size, in points.
	MeasureText(text string, size float64) (w, h float64)

	// DrawText draws styled text with its content box top-left at the
	// given coordinate.
	DrawText(text string, style Attributes, at position.Coordinates) error

	// DrawImage draws an image with its content box top-left at the given
	// coordinate.
	DrawImage(img image.Image, style Attributes, at position.Coordinates) error
}

// Document is the page model the application pipeline walks. Canvas must
// hand out independent per-page surfaces so pages can render concurrently;
// Serialize recombines them strictly in page order.
type Document interface {
	PageCount() int
	PageSize(page int) (w, h float64)
	Canvas(page int) (Canvas, error)
	Serialize(canvases []Canvas) ([]byte, error)
}

// Apply applies the accumulated batch to every page of the document,
// returning the resulting document bytes. It is also reachable from the
// builder stages, which finalize the in-progress watermark first.
func (s *Service) Apply() ([]byte, error) {
	return s.apply()
}

// ApplyToFile is Apply followed by writing the bytes to dir/name.
func (s *Service) ApplyToFile(dir, name string) (string, error) {
	return s.applyToFile(dir, name)
}

// apply finalizes any in-progress watermark and runs the whole batch over
// every page, returning the serialized document. An empty batch owes the
// implicit finalize too, so applying with no watermarks at all fails the
// same way an empty specification does.
func (s *Service) apply() ([]byte, error) {
	if s.started || len(s.batch) == 0 {
		s.and()
	}
	if s.err != nil {
		return nil, s.err
	}

	start := time.Now()
	doc, err := s.openDocument()
	if err != nil {
		s.logger.Log("msg", "opening document failed", "err", err)
		return nil, err
	}

	pages := doc.PageCount()
	s.logger.Log("msg", "applying watermarks", "pages", pages, "watermarks", len(s.batch), "parallel", s.pool != nil)

	canvases := make([]Canvas, pages)
	if err := s.renderPages(doc, canvases); err != nil {
		s.logger.Log("msg", "rendering failed", "err", err)
		return nil, err
	}

	out, err := doc.Serialize(canvases)
	if err != nil {
		err = newRenderError("serialize", err)
		s.logger.Log("msg", "serialization failed", "err", err)
		return nil, err
	}

	s.logger.Log("msg", "applied watermarks", "pages", pages, "bytes", len(out), "took", time.Since(start))
	return out, nil
}

// applyToFile runs apply and writes the result to dir/name. The directory
// check happens first so an invalid target fails before any rendering work.
func (s *Service) applyToFile(dir, name string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidDirectory, dir)
	}

	out, err := s.apply()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return "", fmt.Errorf("watermarkit: writing %s: %w", path, err)
	}
	return path, nil
}

// renderPages renders every page of the document, fanning out across the
// worker pool when one was supplied. Results land in canvases by page index
// so completion order never affects page order.
func (s *Service) renderPages(doc Document, canvases []Canvas) error {
	render := func(page int) error {
		c, err := doc.Canvas(page)
		if err != nil {
			return err
		}
		w, h := doc.PageSize(page)
		if err := s.renderPage(c, w, h); err != nil {
			return err
		}
		canvases[page] = c
		return nil
	}

	if s.pool == nil {
		for page := range canvases {
			if err := render(page); err != nil {
				return newRenderError("render", fmt.Errorf("page %d: %w", page+1, err))
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failPage = -1
		failErr  error
	)
	for page := range canvases {
		page := page
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			if err := render(page); err != nil {
				mu.Lock()
				// Keep the lowest failing page so the reported error does
				// not depend on scheduling.
				if failPage == -1 || page < failPage {
					failPage, failErr = page, err
				}
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if failErr != nil {
		return newRenderError("render", fmt.Errorf("page %d: %w", failPage+1, failErr))
	}
	return nil
}

// renderPage applies every enabled watermark of the batch to one page, in
// batch order. Tiled placements are drawn in the resolver's generation
// order, so layering is fully deterministic.
func (s *Service) renderPage(c Canvas, pageW, pageH float64) error {
	for _, wm := range s.batch {
		if !wm.Enabled {
			continue
		}

		var contentW, contentH float64
		if wm.Image != nil {
			contentW, contentH = wm.imageExtent()
		} else {
			contentW, contentH = c.MeasureText(wm.renderText(), wm.textSize())
		}

		coords := position.Resolve(wm.Anchor, pageW, pageH, contentW, contentH,
			wm.Adjustment, wm.HorizontalSpacing, wm.VerticalSpacing)

		for _, at := range coords {
			var err error
			if wm.Image != nil {
				err = c.DrawImage(wm.Image, wm, at)
			} else {
				err = c.DrawText(wm.renderText(), wm, at)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
