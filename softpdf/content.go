package softpdf

import (
	"github.com/ledongthuc/pdf"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// maxFormDepth bounds nested form XObjects, which may reference themselves.
const maxFormDepth = 8

type gstate struct {
	ctm         matrix.Matrix
	fill        rgb
	stroke      rgb
	fillAlpha   float32
	strokeAlpha float32
	line        strokeStyle
}

func defaultState(ctm matrix.Matrix) gstate {
	return gstate{
		ctm:         ctm,
		fillAlpha:   1,
		strokeAlpha: 1,
		line: strokeStyle{
			width:      1,
			cap:        graphics.LineCapButt,
			join:       graphics.LineJoinMiter,
			miterLimit: defaultMiterLimit,
		},
	}
}

// renderer executes content streams against a surface.
type renderer struct {
	surf *surface
	ras  *rasterizer
	gray bool
	swap bool

	gs    gstate
	saved []gstate
	res   pdf.Value
	depth int

	path       path.Data
	cur, start vec.Vec2
}

// run interprets a page's /Contents, a stream or an array of streams.
func (rd *renderer) run(contents pdf.Value) {
	switch contents.Kind() {
	case pdf.Stream:
		rd.interpret(contents)
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			if s := contents.Index(i); s.Kind() == pdf.Stream {
				rd.interpret(s)
			}
		}
	}
}

func (rd *renderer) interpret(strm pdf.Value) {
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		rd.do(op, args)
	})
}

func num(args []pdf.Value, i int) float64 {
	if i < len(args) {
		return args[i].Float64()
	}
	return 0
}

func point(args []pdf.Value, i int) vec.Vec2 {
	return vec.Vec2{X: num(args, i), Y: num(args, i+1)}
}

func (rd *renderer) do(op string, args []pdf.Value) {
	switch op {
	// graphics state
	case "q":
		rd.saved = append(rd.saved, rd.gs)
	case "Q":
		if n := len(rd.saved); n > 0 {
			rd.gs = rd.saved[n-1]
			rd.saved = rd.saved[:n-1]
		}
	case "cm":
		if len(args) == 6 {
			rd.gs.ctm = concat(matrixFrom(args), rd.gs.ctm)
		}
	case "w":
		rd.gs.line.width = num(args, 0)
	case "J":
		rd.gs.line.cap = capStyle(int(num(args, 0)))
	case "j":
		rd.gs.line.join = joinStyle(int(num(args, 0)))
	case "M":
		rd.gs.line.miterLimit = max(num(args, 0), 1)
	case "gs":
		if len(args) == 1 {
			rd.extGState(rd.res.Key("ExtGState").Key(args[0].Name()))
		}

	// path construction
	case "m":
		rd.moveTo(point(args, 0))
	case "l":
		rd.lineTo(point(args, 0))
	case "c":
		rd.curveTo(point(args, 0), point(args, 2), point(args, 4))
	case "v":
		rd.curveTo(rd.cur, point(args, 0), point(args, 2))
	case "y":
		p := point(args, 2)
		rd.curveTo(point(args, 0), p, p)
	case "h":
		rd.closePath()
	case "re":
		x, y, w, h := num(args, 0), num(args, 1), num(args, 2), num(args, 3)
		rd.moveTo(vec.Vec2{X: x, Y: y})
		rd.lineTo(vec.Vec2{X: x + w, Y: y})
		rd.lineTo(vec.Vec2{X: x + w, Y: y + h})
		rd.lineTo(vec.Vec2{X: x, Y: y + h})
		rd.closePath()

	// painting
	case "S":
		rd.paint(false, true, false)
	case "s":
		rd.closePath()
		rd.paint(false, true, false)
	case "f", "F":
		rd.paint(true, false, false)
	case "f*":
		rd.paint(true, false, true)
	case "B":
		rd.paint(true, true, false)
	case "B*":
		rd.paint(true, true, true)
	case "b":
		rd.closePath()
		rd.paint(true, true, false)
	case "b*":
		rd.closePath()
		rd.paint(true, true, true)
	case "n":
		rd.resetPath()

	// color
	case "g":
		rd.gs.fill = grayColor(num(args, 0))
	case "G":
		rd.gs.stroke = grayColor(num(args, 0))
	case "rg":
		rd.gs.fill = rgbColor(num(args, 0), num(args, 1), num(args, 2))
	case "RG":
		rd.gs.stroke = rgbColor(num(args, 0), num(args, 1), num(args, 2))
	case "k":
		rd.gs.fill = cmykColor(num(args, 0), num(args, 1), num(args, 2), num(args, 3))
	case "K":
		rd.gs.stroke = cmykColor(num(args, 0), num(args, 1), num(args, 2), num(args, 3))
	case "cs":
		rd.gs.fill = rgb{}
	case "CS":
		rd.gs.stroke = rgb{}
	case "sc", "scn":
		if c, ok := colorFrom(args); ok {
			rd.gs.fill = c
		}
	case "SC", "SCN":
		if c, ok := colorFrom(args); ok {
			rd.gs.stroke = c
		}

	case "Do":
		if len(args) == 1 {
			rd.xobject(rd.res.Key("XObject").Key(args[0].Name()))
		}
	}
}

func (rd *renderer) moveTo(p vec.Vec2) {
	rd.path.Cmds = append(rd.path.Cmds, path.CmdMoveTo)
	rd.path.Coords = append(rd.path.Coords, p)
	rd.cur, rd.start = p, p
}

func (rd *renderer) lineTo(p vec.Vec2) {
	if len(rd.path.Cmds) == 0 {
		return
	}
	rd.path.Cmds = append(rd.path.Cmds, path.CmdLineTo)
	rd.path.Coords = append(rd.path.Coords, p)
	rd.cur = p
}

func (rd *renderer) curveTo(c1, c2, p vec.Vec2) {
	if len(rd.path.Cmds) == 0 {
		return
	}
	rd.path.Cmds = append(rd.path.Cmds, path.CmdCubeTo)
	rd.path.Coords = append(rd.path.Coords, c1, c2, p)
	rd.cur = p
}

func (rd *renderer) closePath() {
	if len(rd.path.Cmds) == 0 {
		return
	}
	rd.path.Cmds = append(rd.path.Cmds, path.CmdClose)
	rd.cur = rd.start
}

func (rd *renderer) resetPath() {
	rd.path.Cmds = rd.path.Cmds[:0]
	rd.path.Coords = rd.path.Coords[:0]
}

// paint fills and then strokes the current path, and clears it.
func (rd *renderer) paint(fill, stroke, evenOdd bool) {
	defer rd.resetPath()
	if len(rd.path.Cmds) == 0 {
		return
	}
	rd.ras.ctm = rd.gs.ctm
	if fill {
		rd.ras.fill(&rd.path, evenOdd, rd.emitter(rd.gs.fill, rd.gs.fillAlpha))
	}
	if stroke {
		rd.ras.stroke(&rd.path, rd.gs.line, rd.emitter(rd.gs.stroke, rd.gs.strokeAlpha))
	}
}

func (rd *renderer) emitter(c rgb, alpha float32) func(y, x0 int, coverage []float32) {
	if rd.gray {
		c = c.gray()
	}
	return func(y, x0 int, coverage []float32) {
		for i, cov := range coverage {
			rd.surf.blend(x0+i, y, c, cov*alpha, rd.swap)
		}
	}
}

func (rd *renderer) extGState(d pdf.Value) {
	if d.Kind() != pdf.Dict {
		return
	}
	if v := d.Key("LW"); !v.IsNull() {
		rd.gs.line.width = v.Float64()
	}
	if v := d.Key("LC"); !v.IsNull() {
		rd.gs.line.cap = capStyle(int(v.Int64()))
	}
	if v := d.Key("LJ"); !v.IsNull() {
		rd.gs.line.join = joinStyle(int(v.Int64()))
	}
	if v := d.Key("ML"); !v.IsNull() {
		rd.gs.line.miterLimit = max(v.Float64(), 1)
	}
	if v := d.Key("CA"); !v.IsNull() {
		rd.gs.strokeAlpha = clamp01(float32(v.Float64()))
	}
	if v := d.Key("ca"); !v.IsNull() {
		rd.gs.fillAlpha = clamp01(float32(v.Float64()))
	}
}

// xobject draws a form XObject. Image XObjects are skipped.
func (rd *renderer) xobject(x pdf.Value) {
	if x.Kind() != pdf.Stream || x.Key("Subtype").Name() != "Form" {
		return
	}
	m := matrix.Identity
	if mv := x.Key("Matrix"); mv.Kind() == pdf.Array && mv.Len() == 6 {
		m = matrixFrom(arrayValues(mv))
	}
	rd.form(x, concat(m, rd.gs.ctm), x.Key("Resources"))
}

// form interprets strm with its own graphics state stack, starting from
// the current state with ctm.
func (rd *renderer) form(strm pdf.Value, ctm matrix.Matrix, res pdf.Value) {
	if rd.depth >= maxFormDepth {
		return
	}
	outerGS, outerSaved, outerRes := rd.gs, rd.saved, rd.res
	rd.depth++
	defer func() {
		rd.gs, rd.saved, rd.res = outerGS, outerSaved, outerRes
		rd.depth--
	}()

	rd.gs.ctm = ctm
	rd.saved = nil
	if res.Kind() == pdf.Dict {
		rd.res = res
	}
	rd.resetPath()
	rd.interpret(strm)
	rd.resetPath()
}

func arrayValues(v pdf.Value) []pdf.Value {
	out := make([]pdf.Value, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}

func matrixFrom(args []pdf.Value) matrix.Matrix {
	var m matrix.Matrix
	for i := range m {
		m[i] = num(args, i)
	}
	return m
}

// concat returns the transformation applying m first and then n.
func concat(m, n matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		n[0]*m[0] + n[2]*m[1],
		n[1]*m[0] + n[3]*m[1],
		n[0]*m[2] + n[2]*m[3],
		n[1]*m[2] + n[3]*m[3],
		n[0]*m[4] + n[2]*m[5] + n[4],
		n[1]*m[4] + n[3]*m[5] + n[5],
	}
}

func capStyle(v int) graphics.LineCapStyle {
	switch v {
	case 1:
		return graphics.LineCapRound
	case 2:
		return graphics.LineCapSquare
	default:
		return graphics.LineCapButt
	}
}

func joinStyle(v int) graphics.LineJoinStyle {
	switch v {
	case 1:
		return graphics.LineJoinRound
	case 2:
		return graphics.LineJoinBevel
	default:
		return graphics.LineJoinMiter
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

func grayColor(g float64) rgb {
	v := clamp01(float32(g))
	return rgb{v, v, v}
}

func rgbColor(r, g, b float64) rgb {
	return rgb{clamp01(float32(r)), clamp01(float32(g)), clamp01(float32(b))}
}

func cmykColor(c, m, y, k float64) rgb {
	return rgbColor((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// colorFrom reads sc/scn operands by count: gray, RGB or CMYK. Pattern
// names and other spaces are not supported.
func colorFrom(args []pdf.Value) (rgb, bool) {
	for _, a := range args {
		if k := a.Kind(); k != pdf.Integer && k != pdf.Real {
			return rgb{}, false
		}
	}
	switch len(args) {
	case 1:
		return grayColor(num(args, 0)), true
	case 3:
		return rgbColor(num(args, 0), num(args, 1), num(args, 2)), true
	case 4:
		return cmykColor(num(args, 0), num(args, 1), num(args, 2), num(args, 3)), true
	default:
		return rgb{}, false
	}
}
