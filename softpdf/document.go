package softpdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"seehuhn.de/go/geom/rect"

	"go_pdfium/fpdf"
)

// letter is the media box used when a page tree declares none.
var letter = rect.Rect{LLx: 0, LLy: 0, URx: 612, URy: 792}

type document struct {
	reader    *pdf.Reader
	data      []byte
	pageCount int
}

type page struct {
	doc  *document
	v    pdf.Value
	box  rect.Rect
	turn int // /Rotate in clockwise quarter turns
}

// openDocument parses data and classifies failures the way FPDF_GetLastError
// does. The parser panics on some malformed input; that is a format error.
func openDocument(data []byte, password string) (d *document, code fpdf.ErrorCode) {
	defer func() {
		if recover() != nil {
			d, code = nil, fpdf.ErrFormat
		}
	}()

	offered := false
	r, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	})
	if err != nil {
		return nil, classify(err)
	}

	pages := r.Trailer().Key("Root").Key("Pages")
	if pages.Kind() != pdf.Dict {
		return nil, fpdf.ErrFormat
	}
	n := r.NumPage()
	if n < 0 {
		return nil, fpdf.ErrFormat
	}
	return &document{reader: r, data: data, pageCount: n}, fpdf.ErrSuccess
}

func classify(err error) fpdf.ErrorCode {
	switch {
	case errors.Is(err, pdf.ErrInvalidPassword):
		return fpdf.ErrPassword
	case strings.HasPrefix(err.Error(), "unsupported PDF: encryption"):
		return fpdf.ErrSecurity
	default:
		return fpdf.ErrFormat
	}
}

func (d *document) loadPage(index int) (p *page, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("page %d: %v", index, r)
		}
	}()

	pg := d.reader.Page(index + 1)
	if pg.V.IsNull() {
		return nil, fmt.Errorf("page %d not in page tree", index)
	}

	media, ok := boxValue(inherited(pg.V, "MediaBox"))
	if !ok {
		media = letter
	}
	box := media
	if crop, ok := boxValue(inherited(pg.V, "CropBox")); ok {
		box = intersect(crop, media)
		if box == (rect.Rect{}) {
			box = media
		}
	}

	rot := int(inherited(pg.V, "Rotate").Int64())
	turn := 0
	if rot%90 == 0 {
		turn = ((rot/90)%4 + 4) % 4
	}
	return &page{doc: d, v: pg.V, box: box, turn: turn}, nil
}

// size is the page size in points as displayed, after /Rotate.
func (p *page) size() (w, h float64) {
	w, h = p.box.URx-p.box.LLx, p.box.URy-p.box.LLy
	if p.turn%2 == 1 {
		return h, w
	}
	return w, h
}

func (p *page) resources() pdf.Value {
	return inherited(p.v, "Resources")
}

// inherited looks key up on v and then up the /Parent chain.
func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; !v.IsNull() && depth < 64; depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// boxValue reads a PDF rectangle, normalizing reversed corners.
func boxValue(v pdf.Value) (rect.Rect, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return rect.Rect{}, false
	}
	x0, y0, x1, y1 := v.Index(0).Float64(), v.Index(1).Float64(), v.Index(2).Float64(), v.Index(3).Float64()
	r := rect.Rect{LLx: min(x0, x1), LLy: min(y0, y1), URx: max(x0, x1), URy: max(y0, y1)}
	if r.URx-r.LLx <= 0 || r.URy-r.LLy <= 0 {
		return rect.Rect{}, false
	}
	return r, true
}

func intersect(a, b rect.Rect) rect.Rect {
	r := rect.Rect{
		LLx: max(a.LLx, b.LLx),
		LLy: max(a.LLy, b.LLy),
		URx: min(a.URx, b.URx),
		URy: min(a.URy, b.URy),
	}
	if r.URx <= r.LLx || r.URy <= r.LLy {
		return rect.Rect{}
	}
	return r
}
