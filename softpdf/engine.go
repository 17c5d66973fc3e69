// Package softpdf is a pure-Go fpdf.Engine.
//
// It parses documents with github.com/ledongthuc/pdf and rasterizes page
// content itself: paths (fill and stroke, nonzero and even-odd), device
// gray, RGB and CMYK colors, constant alpha, form XObjects and annotation
// appearances. Text, images and dash patterns are not drawn. It exists so
// the module works, and its tests run, on machines without libpdfium.
//
// Like PDFium, an Engine is not safe for concurrent use. Callers serialize
// every call; the pdfium package does so through its gate.
package softpdf

import (
	"os"

	"go_pdfium/fpdf"
)

// Engine implements fpdf.Engine on top of an in-process PDF parser.
type Engine struct {
	initialized bool
	lastErr     fpdf.ErrorCode
	nextHandle  uintptr

	docs    map[fpdf.Document]*document
	pages   map[fpdf.Page]*page
	bitmaps map[fpdf.Bitmap]*surface
}

var _ fpdf.Engine = (*Engine)(nil)

// New returns an engine with no open handles.
func New() *Engine {
	return &Engine{
		docs:    make(map[fpdf.Document]*document),
		pages:   make(map[fpdf.Page]*page),
		bitmaps: make(map[fpdf.Bitmap]*surface),
	}
}

func (e *Engine) String() string { return "softpdf" }

func (e *Engine) handle() uintptr {
	e.nextHandle++
	return e.nextHandle
}

func (e *Engine) fail(code fpdf.ErrorCode) {
	e.lastErr = code
}

func (e *Engine) InitLibrary() {
	e.initialized = true
}

// DestroyLibrary drops every handle still open, as PDFium frees its
// allocations on FPDF_DestroyLibrary.
func (e *Engine) DestroyLibrary() {
	e.initialized = false
	clear(e.docs)
	clear(e.pages)
	clear(e.bitmaps)
}

func (e *Engine) GetLastError() fpdf.ErrorCode {
	return e.lastErr
}

func (e *Engine) LoadDocument(path, password string) fpdf.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		e.fail(fpdf.ErrFile)
		return 0
	}
	return e.open(data, password)
}

func (e *Engine) LoadMemDocument(data []byte, password string) fpdf.Document {
	return e.open(data, password)
}

func (e *Engine) open(data []byte, password string) fpdf.Document {
	d, code := openDocument(data, password)
	if code != fpdf.ErrSuccess {
		e.fail(code)
		return 0
	}
	h := fpdf.Document(e.handle())
	e.docs[h] = d
	e.fail(fpdf.ErrSuccess)
	return h
}

// CloseDocument also drops pages still open on the document, matching
// PDFium, which frees them with it.
func (e *Engine) CloseDocument(doc fpdf.Document) {
	d, ok := e.docs[doc]
	if !ok {
		return
	}
	for h, p := range e.pages {
		if p.doc == d {
			delete(e.pages, h)
		}
	}
	delete(e.docs, doc)
}

func (e *Engine) GetPageCount(doc fpdf.Document) int {
	d, ok := e.docs[doc]
	if !ok {
		e.fail(fpdf.ErrUnknown)
		return 0
	}
	return d.pageCount
}

func (e *Engine) LoadPage(doc fpdf.Document, index int) fpdf.Page {
	d, ok := e.docs[doc]
	if !ok || index < 0 || index >= d.pageCount {
		e.fail(fpdf.ErrPage)
		return 0
	}
	p, err := d.loadPage(index)
	if err != nil {
		e.fail(fpdf.ErrPage)
		return 0
	}
	h := fpdf.Page(e.handle())
	e.pages[h] = p
	return h
}

func (e *Engine) ClosePage(page fpdf.Page) {
	delete(e.pages, page)
}

func (e *Engine) GetPageWidth(page fpdf.Page) float32 {
	if p, ok := e.pages[page]; ok {
		w, _ := p.size()
		return float32(w)
	}
	return 0
}

func (e *Engine) GetPageHeight(page fpdf.Page) float32 {
	if p, ok := e.pages[page]; ok {
		_, h := p.size()
		return float32(h)
	}
	return 0
}

// BitmapCreateEx wraps buf, or allocates a buffer when buf is nil. A zero
// stride means tightly packed rows.
func (e *Engine) BitmapCreateEx(width, height int, format fpdf.BitmapFormat, buf []byte, stride int) fpdf.Bitmap {
	if !format.Valid() || width <= 0 || height <= 0 {
		e.fail(fpdf.ErrUnknown)
		return 0
	}
	if stride == 0 {
		stride = width * format.BytesPerPixel()
	}
	if buf == nil {
		buf = make([]byte, height*stride)
	}
	if stride < width*format.BytesPerPixel() || len(buf) < height*stride {
		e.fail(fpdf.ErrUnknown)
		return 0
	}
	h := fpdf.Bitmap(e.handle())
	e.bitmaps[h] = &surface{width: width, height: height, stride: stride, format: format, pix: buf}
	return h
}

func (e *Engine) BitmapDestroy(bmp fpdf.Bitmap) {
	delete(e.bitmaps, bmp)
}

func (e *Engine) BitmapGetWidth(bmp fpdf.Bitmap) int {
	if s, ok := e.bitmaps[bmp]; ok {
		return s.width
	}
	return 0
}

func (e *Engine) BitmapGetHeight(bmp fpdf.Bitmap) int {
	if s, ok := e.bitmaps[bmp]; ok {
		return s.height
	}
	return 0
}

func (e *Engine) BitmapFillRect(bmp fpdf.Bitmap, left, top, width, height int, color uint32) bool {
	s, ok := e.bitmaps[bmp]
	if !ok {
		return false
	}
	s.fillRect(left, top, width, height, color)
	return true
}

func (e *Engine) RenderPageBitmap(bmp fpdf.Bitmap, page fpdf.Page, startX, startY, sizeX, sizeY int, rotate fpdf.Orientation, flags fpdf.RenderFlags) bool {
	s, ok := e.bitmaps[bmp]
	p, ok2 := e.pages[page]
	if !ok || !ok2 || !rotate.Valid() {
		e.fail(fpdf.ErrUnknown)
		return false
	}
	if sizeX <= 0 || sizeY <= 0 {
		return true
	}
	if err := renderPage(s, p, startX, startY, sizeX, sizeY, rotate, flags); err != nil {
		e.fail(fpdf.ErrPage)
		return false
	}
	e.fail(fpdf.ErrSuccess)
	return true
}
