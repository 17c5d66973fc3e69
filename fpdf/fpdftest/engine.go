// Package fpdftest provides an instrumented in-memory fpdf.Engine.
//
// The fake detects overlapping entry: every method increments an in-flight
// counter on entry and decrements it on exit, and any entry that finds the
// counter already non-zero is recorded as a violation. Callers that
// serialize correctly always observe Violations() == 0. Each call can be
// stretched with Delay so that unsynchronized callers are caught reliably.
//
// Documents are scripted up front with AddDocument and AddFile.
package fpdftest

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go_pdfium/fpdf"
)

// Native entry point names, as recorded by Calls.
const (
	CallInitLibrary      = "FPDF_InitLibraryWithConfig"
	CallDestroyLibrary   = "FPDF_DestroyLibrary"
	CallGetLastError     = "FPDF_GetLastError"
	CallLoadDocument     = "FPDF_LoadDocument"
	CallLoadMemDocument  = "FPDF_LoadMemDocument"
	CallCloseDocument    = "FPDF_CloseDocument"
	CallGetPageCount     = "FPDF_GetPageCount"
	CallLoadPage         = "FPDF_LoadPage"
	CallClosePage        = "FPDF_ClosePage"
	CallGetPageWidth     = "FPDF_GetPageWidthF"
	CallGetPageHeight    = "FPDF_GetPageHeightF"
	CallBitmapCreateEx   = "FPDFBitmap_CreateEx"
	CallBitmapDestroy    = "FPDFBitmap_Destroy"
	CallBitmapGetWidth   = "FPDFBitmap_GetWidth"
	CallBitmapGetHeight  = "FPDFBitmap_GetHeight"
	CallBitmapFillRect   = "FPDFBitmap_FillRect"
	CallRenderPageBitmap = "FPDF_RenderPageBitmap"
)

// PageSpec scripts one page of a fake document.
type PageSpec struct {
	Width, Height float32
	// FailLoad makes FPDF_LoadPage fail with FPDF_ERR_PAGE.
	FailLoad bool
	// FailRender makes FPDF_RenderPageBitmap scribble over the target and
	// report failure.
	FailRender bool
	// Ink, when non-zero, is painted over the middle pixel of the render
	// region so tests can tell the draw call happened.
	Ink uint32
}

// DocumentSpec scripts a fake document.
type DocumentSpec struct {
	Password string
	// Unsupported makes every open fail with FPDF_ERR_SECURITY.
	Unsupported bool
	// BrokenPageCount makes FPDF_GetPageCount return -1.
	BrokenPageCount bool
	Pages           []PageSpec
}

// RenderCall captures the arguments of one FPDF_RenderPageBitmap call.
type RenderCall struct {
	StartX, StartY int
	SizeX, SizeY   int
	Rotate         fpdf.Orientation
	Flags          fpdf.RenderFlags
}

type fakeDoc struct {
	spec DocumentSpec
}

type fakePage struct {
	spec PageSpec
	doc  fpdf.Document
}

type fakeBitmap struct {
	width, height, stride int
	format                fpdf.BitmapFormat
	buf                   []byte
}

// Engine is an instrumented fake of the PDFium C API.
type Engine struct {
	// Delay is spent inside every call while the in-flight marker is held.
	// Zero yields the processor instead.
	Delay time.Duration

	// FailBitmapCreate makes FPDFBitmap_CreateEx return NULL.
	FailBitmapCreate bool

	inFlight   atomic.Int32
	violations atomic.Int64
	lastErr    atomic.Uint32
	nextHandle atomic.Uintptr

	mu          sync.Mutex
	calls       map[string]int
	byData      map[string]DocumentSpec
	byPath      map[string]DocumentSpec
	docs        map[fpdf.Document]*fakeDoc
	pages       map[fpdf.Page]*fakePage
	bitmaps     map[fpdf.Bitmap]*fakeBitmap
	initialized bool
	renders     []RenderCall
}

// New returns an empty fake engine.
func New() *Engine {
	return &Engine{
		calls:   make(map[string]int),
		byData:  make(map[string]DocumentSpec),
		byPath:  make(map[string]DocumentSpec),
		docs:    make(map[fpdf.Document]*fakeDoc),
		pages:   make(map[fpdf.Page]*fakePage),
		bitmaps: make(map[fpdf.Bitmap]*fakeBitmap),
	}
}

// AddDocument makes LoadMemDocument(data, ...) open a document described by spec.
func (e *Engine) AddDocument(data []byte, spec DocumentSpec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byData[string(data)] = spec
}

// AddFile makes LoadDocument(path, ...) open a document described by spec.
func (e *Engine) AddFile(path string, spec DocumentSpec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byPath[path] = spec
}

// Violations returns how many calls entered while another call was in flight.
func (e *Engine) Violations() int64 {
	return e.violations.Load()
}

// Calls returns how many times the named entry point was invoked.
func (e *Engine) Calls(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[name]
}

// TotalCalls returns the number of native calls of any kind.
func (e *Engine) TotalCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, n := range e.calls {
		total += n
	}
	return total
}

// Initialized reports whether InitLibrary was called without a matching DestroyLibrary.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// OpenDocuments returns the number of documents not yet closed.
func (e *Engine) OpenDocuments() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docs)
}

// OpenPages returns the number of pages not yet closed.
func (e *Engine) OpenPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// OpenBitmaps returns the number of bitmaps not yet destroyed.
func (e *Engine) OpenBitmaps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bitmaps)
}

// Renders returns the recorded FPDF_RenderPageBitmap calls.
func (e *Engine) Renders() []RenderCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RenderCall(nil), e.renders...)
}

// enter marks a native call in flight and returns the matching exit func.
func (e *Engine) enter(name string) func() {
	if e.inFlight.Add(1) != 1 {
		e.violations.Add(1)
	}

	e.mu.Lock()
	e.calls[name]++
	e.mu.Unlock()

	if e.Delay > 0 {
		time.Sleep(e.Delay)
	} else {
		runtime.Gosched()
	}
	return func() { e.inFlight.Add(-1) }
}

func (e *Engine) handle() uintptr {
	return e.nextHandle.Add(1)
}

func (e *Engine) fail(code fpdf.ErrorCode) {
	e.lastErr.Store(uint32(code))
}

func (e *Engine) InitLibrary() {
	defer e.enter(CallInitLibrary)()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialized = true
}

func (e *Engine) DestroyLibrary() {
	defer e.enter(CallDestroyLibrary)()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialized = false
}

func (e *Engine) GetLastError() fpdf.ErrorCode {
	defer e.enter(CallGetLastError)()
	return fpdf.ErrorCode(e.lastErr.Load())
}

func (e *Engine) LoadDocument(path, password string) fpdf.Document {
	defer e.enter(CallLoadDocument)()
	e.mu.Lock()
	spec, ok := e.byPath[path]
	e.mu.Unlock()
	if !ok {
		e.fail(fpdf.ErrFile)
		return 0
	}
	return e.open(spec, password)
}

func (e *Engine) LoadMemDocument(data []byte, password string) fpdf.Document {
	defer e.enter(CallLoadMemDocument)()
	e.mu.Lock()
	spec, ok := e.byData[string(data)]
	e.mu.Unlock()
	if !ok {
		e.fail(fpdf.ErrFormat)
		return 0
	}
	return e.open(spec, password)
}

func (e *Engine) open(spec DocumentSpec, password string) fpdf.Document {
	if spec.Unsupported {
		e.fail(fpdf.ErrSecurity)
		return 0
	}
	if spec.Password != "" && password != spec.Password {
		e.fail(fpdf.ErrPassword)
		return 0
	}

	doc := fpdf.Document(e.handle())
	e.mu.Lock()
	e.docs[doc] = &fakeDoc{spec: spec}
	e.mu.Unlock()
	e.fail(fpdf.ErrSuccess)
	return doc
}

func (e *Engine) CloseDocument(doc fpdf.Document) {
	defer e.enter(CallCloseDocument)()
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, doc)
}

func (e *Engine) GetPageCount(doc fpdf.Document) int {
	defer e.enter(CallGetPageCount)()
	e.mu.Lock()
	d, ok := e.docs[doc]
	e.mu.Unlock()
	if !ok || d.spec.BrokenPageCount {
		e.fail(fpdf.ErrUnknown)
		return -1
	}
	return len(d.spec.Pages)
}

func (e *Engine) LoadPage(doc fpdf.Document, index int) fpdf.Page {
	defer e.enter(CallLoadPage)()
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.docs[doc]
	if !ok || index < 0 || index >= len(d.spec.Pages) || d.spec.Pages[index].FailLoad {
		e.fail(fpdf.ErrPage)
		return 0
	}
	page := fpdf.Page(e.handle())
	e.pages[page] = &fakePage{spec: d.spec.Pages[index], doc: doc}
	return page
}

func (e *Engine) ClosePage(page fpdf.Page) {
	defer e.enter(CallClosePage)()
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pages, page)
}

func (e *Engine) GetPageWidth(page fpdf.Page) float32 {
	defer e.enter(CallGetPageWidth)()
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pages[page]; ok {
		return p.spec.Width
	}
	return 0
}

func (e *Engine) GetPageHeight(page fpdf.Page) float32 {
	defer e.enter(CallGetPageHeight)()
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pages[page]; ok {
		return p.spec.Height
	}
	return 0
}

func (e *Engine) BitmapCreateEx(width, height int, format fpdf.BitmapFormat, buf []byte, stride int) fpdf.Bitmap {
	defer e.enter(CallBitmapCreateEx)()
	if e.FailBitmapCreate || !format.Valid() || width <= 0 || height <= 0 ||
		stride < width*format.BytesPerPixel() || len(buf) < height*stride {
		e.fail(fpdf.ErrUnknown)
		return 0
	}

	bmp := fpdf.Bitmap(e.handle())
	e.mu.Lock()
	e.bitmaps[bmp] = &fakeBitmap{width: width, height: height, stride: stride, format: format, buf: buf}
	e.mu.Unlock()
	return bmp
}

func (e *Engine) BitmapDestroy(bmp fpdf.Bitmap) {
	defer e.enter(CallBitmapDestroy)()
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bitmaps, bmp)
}

func (e *Engine) BitmapGetWidth(bmp fpdf.Bitmap) int {
	defer e.enter(CallBitmapGetWidth)()
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bitmaps[bmp]; ok {
		return b.width
	}
	return 0
}

func (e *Engine) BitmapGetHeight(bmp fpdf.Bitmap) int {
	defer e.enter(CallBitmapGetHeight)()
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bitmaps[bmp]; ok {
		return b.height
	}
	return 0
}

func (e *Engine) BitmapFillRect(bmp fpdf.Bitmap, left, top, width, height int, color uint32) bool {
	defer e.enter(CallBitmapFillRect)()
	e.mu.Lock()
	b, ok := e.bitmaps[bmp]
	e.mu.Unlock()
	if !ok {
		return false
	}
	for y := max(top, 0); y < min(top+height, b.height); y++ {
		for x := max(left, 0); x < min(left+width, b.width); x++ {
			b.set(x, y, color)
		}
	}
	return true
}

func (e *Engine) RenderPageBitmap(bmp fpdf.Bitmap, page fpdf.Page, startX, startY, sizeX, sizeY int, rotate fpdf.Orientation, flags fpdf.RenderFlags) bool {
	defer e.enter(CallRenderPageBitmap)()
	e.mu.Lock()
	b, okB := e.bitmaps[bmp]
	p, okP := e.pages[page]
	e.renders = append(e.renders, RenderCall{
		StartX: startX, StartY: startY,
		SizeX: sizeX, SizeY: sizeY,
		Rotate: rotate, Flags: flags,
	})
	e.mu.Unlock()
	if !okB || !okP {
		e.fail(fpdf.ErrUnknown)
		return false
	}

	if p.spec.FailRender {
		// Leave a partial draw behind, like an engine bailing out midway.
		for i := 0; i < len(b.buf) && i < b.stride; i++ {
			b.buf[i] = 0x7F
		}
		e.fail(fpdf.ErrPage)
		return false
	}
	if p.spec.Ink != 0 {
		b.set(startX+sizeX/2, startY+sizeY/2, p.spec.Ink)
	}
	return true
}

// set writes an 0xAARRGGBB color in the bitmap's pixel format.
func (b *fakeBitmap) set(x, y int, color uint32) {
	off := y*b.stride + x*b.format.BytesPerPixel()
	cb, cg, cr, ca := byte(color), byte(color>>8), byte(color>>16), byte(color>>24)
	switch b.format {
	case fpdf.FormatGray:
		b.buf[off] = byte((299*int(cr) + 587*int(cg) + 114*int(cb)) / 1000)
	case fpdf.FormatBGR:
		b.buf[off], b.buf[off+1], b.buf[off+2] = cb, cg, cr
	case fpdf.FormatBGRx:
		b.buf[off], b.buf[off+1], b.buf[off+2], b.buf[off+3] = cb, cg, cr, 0xFF
	case fpdf.FormatBGRA:
		b.buf[off], b.buf[off+1], b.buf[off+2], b.buf[off+3] = cb, cg, cr, ca
	}
}

var _ fpdf.Engine = (*Engine)(nil)
