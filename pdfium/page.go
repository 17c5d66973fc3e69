package pdfium

import (
	"math"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"go_pdfium/fpdf"
)

// Page is a loaded page. It borrows its Document: the document cannot be
// closed until the page is unloaded.
type Page struct {
	doc   *Document
	index int

	// width and height are in PDF points, fixed at load time.
	width, height float64

	// handle is read and written only under engineGate. Zero once unloaded.
	handle fpdf.Page

	unloadMu sync.Mutex
	unloaded bool
}

func newPage(doc *Document, index int, handle fpdf.Page, width, height float64) *Page {
	p := &Page{
		doc:    doc,
		index:  index,
		width:  width,
		height: height,
		handle: handle,
	}
	runtime.SetFinalizer(p, (*Page).finalize)
	return p
}

// Index returns the zero-based page index.
func (p *Page) Index() int {
	return p.index
}

// Document returns the owning document.
func (p *Page) Document() *Document {
	return p.doc
}

// Dimensions returns the page size in points as reported at load time.
// No engine call is made.
func (p *Page) Dimensions() (width, height float64) {
	return p.width, p.height
}

// PixelSize returns the bitmap size that holds the page at scale, with
// width and height swapped for quarter-turn rotations. Each side saturates
// at MaxBitmapDimension.
func (p *Page) PixelSize(scale float64, rotation fpdf.Orientation) (width, height int) {
	width = pixels(p.width * scale)
	height = pixels(p.height * scale)
	if rotation.QuarterTurn() {
		width, height = height, width
	}
	return width, height
}

// pixels rounds a device length, clamping what would not fit an int.
func pixels(v float64) int {
	v = math.Round(v)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v > MaxBitmapDimension:
		return MaxBitmapDimension
	}
	return int(v)
}

// scaledSize is PixelSize for rendering: a page that does not fit a
// bitmap at scale is an invalid render target.
func (p *Page) scaledSize(scale float64, rotation fpdf.Orientation) (width, height int, err error) {
	w, h := math.Round(p.width*scale), math.Round(p.height*scale)
	if w > MaxBitmapDimension || h > MaxBitmapDimension {
		return 0, 0, targetError("page %d at scale %v is %.0fx%.0f pixels, above %d per side",
			p.index, scale, w, h, MaxBitmapDimension)
	}
	width, height = p.PixelSize(scale, rotation)
	return width, height, nil
}

// Unload releases the native page and the borrow on its document.
// Unloading twice is a no-op.
func (p *Page) Unload() error {
	p.unloadMu.Lock()
	defer p.unloadMu.Unlock()

	if p.unloaded {
		return nil
	}

	_ = engineGate.withLock(func() error {
		p.doc.lib.engine.ClosePage(p.handle)
		p.handle = 0
		return nil
	})
	p.unloaded = true
	p.doc.pages.release()
	runtime.SetFinalizer(p, nil)

	Logger().Debug("page unloaded", zap.String("doc_id", p.doc.id), zap.Int("page", p.index))
	return nil
}

func (p *Page) finalize() {
	Logger().Warn("page leaked, unloading", zap.String("doc_id", p.doc.id), zap.Int("page", p.index))
	_ = p.Unload()
}
