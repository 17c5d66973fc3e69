package softpdf

import (
	"github.com/ledongthuc/pdf"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Annotation flag bits.
const (
	annotHidden = 1 << 1
	annotNoView = 1 << 5
)

// annotations draws each visible annotation: its normal appearance stream
// when it has one, otherwise a border in its /C color.
func (rd *renderer) annotations(annots pdf.Value, base matrix.Matrix) {
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Kind() != pdf.Dict || a.Key("Subtype").Name() == "Popup" {
			continue
		}
		if a.Key("F").Int64()&(annotHidden|annotNoView) != 0 {
			continue
		}
		r, ok := boxValue(a.Key("Rect"))
		if !ok {
			continue
		}

		rd.gs = defaultState(base)
		rd.saved = nil
		rd.resetPath()
		if ap := appearance(a); ap.Kind() == pdf.Stream {
			rd.drawAppearance(ap, r, base)
			continue
		}
		rd.drawBorder(a, r)
	}
}

func appearance(a pdf.Value) pdf.Value {
	n := a.Key("AP").Key("N")
	if n.Kind() == pdf.Dict {
		return n.Key(a.Key("AS").Name())
	}
	return n
}

// drawAppearance maps the form's transformed bounding box onto r.
func (rd *renderer) drawAppearance(ap pdf.Value, r rect.Rect, base matrix.Matrix) {
	bbox, ok := boxValue(ap.Key("BBox"))
	if !ok {
		return
	}
	m := matrix.Identity
	if mv := ap.Key("Matrix"); mv.Kind() == pdf.Array && mv.Len() == 6 {
		m = matrixFrom(arrayValues(mv))
	}

	tb := transformedBounds(bbox, m)
	tw, th := tb.URx-tb.LLx, tb.URy-tb.LLy
	if tw <= 0 || th <= 0 {
		return
	}
	sx, sy := (r.URx-r.LLx)/tw, (r.URy-r.LLy)/th
	fit := matrix.Matrix{sx, 0, 0, sy, r.LLx - sx*tb.LLx, r.LLy - sy*tb.LLy}

	rd.form(ap, concat(concat(m, fit), base), ap.Key("Resources"))
}

// drawBorder strokes a solid border inside r. Width comes from /BS /W,
// then the third /Border entry, then 1; no /C color means no border.
func (rd *renderer) drawBorder(a pdf.Value, r rect.Rect) {
	c, ok := colorFrom(arrayValues(a.Key("C")))
	if !ok {
		return
	}
	width := 1.0
	if bs := a.Key("BS"); bs.Kind() == pdf.Dict {
		if w := bs.Key("W"); !w.IsNull() {
			width = w.Float64()
		}
	} else if b := a.Key("Border"); b.Kind() == pdf.Array && b.Len() >= 3 {
		width = b.Index(2).Float64()
	}
	if width <= 0 {
		return
	}

	rd.gs.stroke = c
	rd.gs.line.width = width
	half := width / 2
	rd.moveTo(vec.Vec2{X: r.LLx + half, Y: r.LLy + half})
	rd.lineTo(vec.Vec2{X: r.URx - half, Y: r.LLy + half})
	rd.lineTo(vec.Vec2{X: r.URx - half, Y: r.URy - half})
	rd.lineTo(vec.Vec2{X: r.LLx + half, Y: r.URy - half})
	rd.closePath()
	rd.paint(false, true, false)
}

func transformedBounds(b rect.Rect, m matrix.Matrix) rect.Rect {
	corners := [4]vec.Vec2{{X: b.LLx, Y: b.LLy}, {X: b.URx, Y: b.LLy}, {X: b.URx, Y: b.URy}, {X: b.LLx, Y: b.URy}}
	var out rect.Rect
	for i, c := range corners {
		x := m[0]*c.X + m[2]*c.Y + m[4]
		y := m[1]*c.X + m[3]*c.Y + m[5]
		if i == 0 {
			out = rect.Rect{LLx: x, LLy: y, URx: x, URy: y}
			continue
		}
		out.LLx, out.LLy = min(out.LLx, x), min(out.LLy, y)
		out.URx, out.URy = max(out.URx, x), max(out.URy, y)
	}
	return out
}
