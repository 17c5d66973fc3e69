package softpdf

import (
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeStyle holds the line parameters of the graphics state, in user
// space units.
type strokeStyle struct {
	width      float64
	cap        graphics.LineCapStyle
	join       graphics.LineJoinStyle
	miterLimit float64
}

// segment is one flattened piece of a subpath. t is the unit tangent and n
// the unit normal, 90 degrees counter-clockwise from t.
type segment struct {
	a, b vec.Vec2
	t, n vec.Vec2
}

type subpath struct {
	segs   []segment
	closed bool
	start  vec.Vec2
}

// stroke outlines p with style and fills the outline. Every piece of the
// outline (segment bodies, joins, caps) is added as its own polygon with the
// same orientation, so the nonzero rule yields their union.
func (r *rasterizer) stroke(p *path.Data, style strokeStyle, emit func(y, x0 int, coverage []float32)) {
	r.edges = r.edges[:0]

	det := math.Abs(r.ctm[0]*r.ctm[3] - r.ctm[1]*r.ctm[2])
	if det == 0 {
		return
	}
	d := style.width / 2
	if devHalf := d * math.Sqrt(det); devHalf < 0.5 {
		// Zero and hairline widths draw one device pixel wide.
		d = 0.5 / math.Sqrt(det)
	}

	for _, sp := range r.subpaths(p) {
		if len(sp.segs) == 0 {
			if style.cap == graphics.LineCapRound {
				r.polygon(r.circle(sp.start, d))
			}
			continue
		}
		for _, s := range sp.segs {
			r.polygon([]vec.Vec2{s.a.Add(s.n.Mul(d)), s.b.Add(s.n.Mul(d)), s.b.Sub(s.n.Mul(d)), s.a.Sub(s.n.Mul(d))})
		}
		for i := 0; i+1 < len(sp.segs); i++ {
			r.join(sp.segs[i], sp.segs[i+1], d, style)
		}
		if sp.closed {
			r.join(sp.segs[len(sp.segs)-1], sp.segs[0], d, style)
			continue
		}
		first, last := sp.segs[0], sp.segs[len(sp.segs)-1]
		r.capEnd(first.a, first.t.Mul(-1), d, style.cap)
		r.capEnd(last.b, last.t, d, style.cap)
	}
	r.scan(false, emit)
}

// subpaths flattens p into straight segments, dropping zero-length ones.
func (r *rasterizer) subpaths(p *path.Data) []subpath {
	var out []subpath
	var cur vec.Vec2
	line := func(a, b vec.Vec2) {
		v := b.Sub(a)
		l := v.Length()
		if l < 1e-12 || len(out) == 0 {
			return
		}
		t := v.Mul(1 / l)
		sp := &out[len(out)-1]
		sp.segs = append(sp.segs, segment{a: a, b: b, t: t, n: vec.Vec2{X: -t.Y, Y: t.X}})
	}

	i := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			cur = p.Coords[i]
			out = append(out, subpath{start: cur})
			i++
		case path.CmdLineTo:
			line(cur, p.Coords[i])
			cur = p.Coords[i]
			i++
		case path.CmdQuadTo:
			r.flattenQuad(cur, p.Coords[i], p.Coords[i+1], line)
			cur = p.Coords[i+1]
			i += 2
		case path.CmdCubeTo:
			r.flattenCubic(cur, p.Coords[i], p.Coords[i+1], p.Coords[i+2], line)
			cur = p.Coords[i+2]
			i += 3
		case path.CmdClose:
			if len(out) == 0 {
				continue
			}
			sp := &out[len(out)-1]
			line(cur, sp.start)
			sp.closed = true
			cur = sp.start
		}
	}
	return out
}

func (r *rasterizer) join(s1, s2 segment, d float64, style strokeStyle) {
	p := s1.b
	cross := s1.t.X*s2.t.Y - s1.t.Y*s2.t.X
	dot := s1.t.X*s2.t.X + s1.t.Y*s2.t.Y
	if math.Abs(cross) < 1e-12 && dot > 0 {
		return
	}
	// The outer side of a left turn is the right-hand offset.
	side := 1.0
	if cross > 0 {
		side = -1
	}
	o1 := p.Add(s1.n.Mul(side * d))
	o2 := p.Add(s2.n.Mul(side * d))

	switch style.join {
	case graphics.LineJoinRound:
		r.polygon(r.circle(p, d))
	case graphics.LineJoinMiter:
		sum := s1.n.Add(s2.n)
		l2 := sum.X*sum.X + sum.Y*sum.Y
		if l2 > 1e-12 && 2/math.Sqrt(l2) <= style.miterLimit {
			m := p.Add(sum.Mul(side * 2 * d / l2))
			r.polygon([]vec.Vec2{p, o1, m, o2})
			return
		}
		r.polygon([]vec.Vec2{p, o1, o2})
	default:
		r.polygon([]vec.Vec2{p, o1, o2})
	}
}

// capEnd draws the cap at p, where t points away from the line.
func (r *rasterizer) capEnd(p, t vec.Vec2, d float64, style graphics.LineCapStyle) {
	n := vec.Vec2{X: -t.Y, Y: t.X}
	switch style {
	case graphics.LineCapRound:
		r.polygon(r.circle(p, d))
	case graphics.LineCapSquare:
		ext := t.Mul(d)
		r.polygon([]vec.Vec2{p.Add(n.Mul(d)), p.Add(n.Mul(d)).Add(ext), p.Sub(n.Mul(d)).Add(ext), p.Sub(n.Mul(d))})
	}
}

// circle approximates a disc of radius d around c, finely enough for the
// flatness in device space.
func (r *rasterizer) circle(c vec.Vec2, d float64) []vec.Vec2 {
	rdev := d * math.Sqrt(math.Abs(r.ctm[0]*r.ctm[3]-r.ctm[1]*r.ctm[2]))
	n := 16
	if rdev > r.flatness {
		n = max(n, int(math.Ceil(2*math.Pi/(2*math.Acos(1-r.flatness/rdev)))))
	}
	n = min(n, 256)
	pts := make([]vec.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec.Vec2{X: c.X + d*math.Cos(a), Y: c.Y + d*math.Sin(a)}
	}
	return pts
}

// polygon adds the closed polygon pts as edges, counter-clockwise in user
// space.
func (r *rasterizer) polygon(pts []vec.Vec2) {
	if len(pts) < 3 {
		return
	}
	var area float64
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		area += a.X*b.Y - b.X*a.Y
	}
	if area < 0 {
		pts = slices.Clone(pts)
		slices.Reverse(pts)
	}
	for i, a := range pts {
		r.addEdge(a, pts[(i+1)%len(pts)])
	}
}
