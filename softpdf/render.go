package softpdf

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"go_pdfium/fpdf"
)

// renderPage draws p into the device rectangle (x, y, w, h) of s, turned
// clockwise by rotate on top of the page's own /Rotate. Output outside that
// rectangle or the surface is never touched.
func renderPage(s *surface, p *page, x, y, w, h int, rotate fpdf.Orientation, flags fpdf.RenderFlags) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content: %v", r)
		}
	}()

	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.width), min(y+h, s.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	ras := newRasterizer(x0, y0, x1, y1)
	ras.aliased = flags.Has(fpdf.RenderNoSmoothPath)

	base := pageMatrix(p.box, (p.turn+int(rotate))%4, float64(x), float64(y), float64(w), float64(h))
	rd := &renderer{
		surf: s,
		ras:  ras,
		gray: flags.Has(fpdf.RenderGrayscale),
		swap: flags.Has(fpdf.RenderReverseByteOrder),
		gs:   defaultState(base),
		res:  p.resources(),
	}
	rd.run(p.v.Key("Contents"))

	if flags.Has(fpdf.RenderAnnotations) {
		rd.annotations(p.v.Key("Annots"), base)
	}
	return nil
}

// pageMatrix maps page space onto the device rectangle (x, y, w, h), y
// down, with box filling the rectangle after turn clockwise quarter turns.
func pageMatrix(box rect.Rect, turn int, x, y, w, h float64) matrix.Matrix {
	bw, bh := box.URx-box.LLx, box.URy-box.LLy
	switch turn {
	case 1:
		return matrix.Matrix{0, h / bw, w / bh, 0, x + w - w*box.URy/bh, y - h*box.LLx/bw}
	case 2:
		return matrix.Matrix{-w / bw, 0, 0, h / bh, x + w + w*box.LLx/bw, y + h - h*box.URy/bh}
	case 3:
		return matrix.Matrix{0, -h / bw, -w / bh, 0, x + w*box.URy/bh, y + h + h*box.LLx/bw}
	default:
		return matrix.Matrix{w / bw, 0, 0, -h / bh, x - w*box.LLx/bw, y + h*box.URy/bh}
	}
}
