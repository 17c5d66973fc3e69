package softpdf

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

const (
	defaultFlatness   = 0.25
	defaultMiterLimit = 10.0
	horizontalEpsilon = 1e-10
)

// edge is a line segment in device space.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
}

func (e *edge) yMin() float64 { return min(e.y0, e.y1) }
func (e *edge) yMax() float64 { return max(e.y0, e.y1) }

// rasterizer turns paths in user space into per-pixel coverage.
//
// Coverage is accumulated per scanline as a signed cover (vertical extent
// of the edges crossing a pixel column) and an area (the part of that
// extent to the right of the crossing). Integrating left to right yields
// the signed area inside the path for each pixel.
type rasterizer struct {
	ctm      matrix.Matrix
	clip     [4]int // x0, y0, x1, y1 in device pixels
	flatness float64
	aliased  bool

	edges  []edge
	active []int
	cover  []float32
	area   []float32

	devMin, devMax vec.Vec2
}

func newRasterizer(x0, y0, x1, y1 int) *rasterizer {
	return &rasterizer{
		ctm:      matrix.Identity,
		clip:     [4]int{x0, y0, x1, y1},
		flatness: defaultFlatness,
	}
}

func (r *rasterizer) apply(p vec.Vec2) vec.Vec2 {
	m := r.ctm
	return vec.Vec2{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

func (r *rasterizer) applyLinear(p vec.Vec2) vec.Vec2 {
	m := r.ctm
	return vec.Vec2{X: m[0]*p.X + m[2]*p.Y, Y: m[1]*p.X + m[3]*p.Y}
}

func (r *rasterizer) flattenQuad(p0, p1, p2 vec.Vec2, emit func(a, b vec.Vec2)) {
	dev := r.applyLinear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		pt := p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCubic splits by Wang's formula.
func (r *rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(a, b vec.Vec2)) {
	d1 := r.applyLinear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.applyLinear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		pt := p0.Mul(u * u * u).Add(p1.Mul(3 * u * u * t)).Add(p2.Mul(3 * u * t * t)).Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

// walk flattens p into line segments in user space. Open subpaths are
// reported as is; fill callers close them.
func (r *rasterizer) walk(p *path.Data, line func(a, b vec.Vec2), closeSub func(cur, start vec.Vec2)) {
	var cur, start vec.Vec2
	open := false
	i := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if open {
				closeSub(cur, start)
			}
			cur, start = p.Coords[i], p.Coords[i]
			open = true
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
			closeSub(cur, start)
			cur = start
			open = false
		}
	}
	if open {
		closeSub(cur, start)
	}
}

func (r *rasterizer) addEdge(a, b vec.Vec2) {
	p0, p1 := r.apply(a), r.apply(b)
	dy := p1.Y - p0.Y
	if dy > -horizontalEpsilon && dy < horizontalEpsilon {
		return
	}
	if len(r.edges) == 0 {
		r.devMin = vec.Vec2{X: min(p0.X, p1.X), Y: min(p0.Y, p1.Y)}
		r.devMax = vec.Vec2{X: max(p0.X, p1.X), Y: max(p0.Y, p1.Y)}
	} else {
		r.devMin = vec.Vec2{X: min(r.devMin.X, p0.X, p1.X), Y: min(r.devMin.Y, p0.Y, p1.Y)}
		r.devMax = vec.Vec2{X: max(r.devMax.X, p0.X, p1.X), Y: max(r.devMax.Y, p0.Y, p1.Y)}
	}
	r.edges = append(r.edges, edge{x0: p0.X, y0: p0.Y, x1: p1.X, y1: p1.Y, dxdy: (p1.X - p0.X) / dy})
}

// fill rasterizes p, closing open subpaths, and calls emit once per
// scanline that has coverage. The coverage slice is only valid during the
// call.
func (r *rasterizer) fill(p *path.Data, evenOdd bool, emit func(y, x0 int, coverage []float32)) {
	r.edges = r.edges[:0]
	r.walk(p, r.addEdge, func(cur, start vec.Vec2) {
		if cur != start {
			r.addEdge(cur, start)
		}
	})
	r.scan(evenOdd, emit)
}

func (r *rasterizer) scan(evenOdd bool, emit func(y, x0 int, coverage []float32)) {
	if len(r.edges) == 0 {
		return
	}
	xMin := max(int(math.Floor(r.devMin.X)), r.clip[0])
	xMax := min(int(math.Floor(r.devMax.X))+1, r.clip[2])
	yMin := max(int(math.Floor(r.devMin.Y)), r.clip[1])
	yMax := min(int(math.Floor(r.devMax.Y))+1, r.clip[3])
	if xMin >= xMax || yMin >= yMax {
		return
	}

	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int { return cmp.Compare(a.yMin(), b.yMin()) })
	r.active = r.active[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		top, bot := float64(y), float64(y+1)
		for next < len(r.edges) && r.edges[next].yMin() < bot {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.yMax() <= top {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			accumulate(e, y, r.cover, r.area, xMin, xMax)
			i++
		}

		integrate(r.cover, r.area, evenOdd, r.aliased)
		lo, hi := 0, width
		for lo < hi && r.cover[lo] == 0 {
			lo++
		}
		for hi > lo && r.cover[hi-1] == 0 {
			hi--
		}
		if lo < hi {
			emit(y, xMin+lo, r.cover[lo:hi])
		}
	}
}

// accumulate adds the part of e inside scanline y to cover and area, which
// are indexed from xMin. Crossings left of xMin land in the first cell.
func accumulate(e *edge, y int, cover, area []float32, xMin, xMax int) {
	top := max(float64(y), e.yMin())
	bot := min(float64(y+1), e.yMax())
	if bot <= top {
		return
	}
	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xa := e.x0 + e.dxdy*(top-e.y0)
	xb := e.x0 + e.dxdy*(bot-e.y0)
	left, right := int(math.Floor(min(xa, xb))), int(math.Floor(max(xa, xb)))

	add := func(pix int, y0, y1 float64) {
		c := sign * float32(y1-y0)
		switch {
		case pix < xMin:
			cover[0] += c
			area[0] += c
		case pix < xMax:
			xm := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
			cover[pix-xMin] += c
			area[pix-xMin] += c * float32(1-(xm-float64(pix)))
		}
	}

	if right < xMin {
		add(right, top, bot)
		return
	}
	if left >= xMax {
		return
	}
	if left == right {
		add(left, top, bot)
		return
	}

	dydx := 1 / e.dxdy
	for pix := left; pix <= right; pix++ {
		ya := e.y0 + dydx*(float64(pix)-e.x0)
		yb := e.y0 + dydx*(float64(pix+1)-e.x0)
		y0, y1 := max(min(ya, yb), top), min(max(ya, yb), bot)
		if y1 > y0 {
			add(pix, y0, y1)
		}
	}
}

// integrate converts cover and area into coverage in place.
func integrate(cover, area []float32, evenOdd, aliased bool) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		if raw < 0 {
			raw = -raw
		}
		var c float32
		if evenOdd {
			m := raw - 2*float32(int(raw/2))
			c = 1 - abs32(1-m)
		} else {
			c = min(raw, 1)
		}
		if aliased {
			if c >= 0.5 {
				c = 1
			} else {
				c = 0
			}
		}
		cover[i] = c
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
