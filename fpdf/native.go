// This file binds the PDFium shared library at run time through purego.
//
// Runtime Requirements:
// - A PDFium build exporting the FPDF_* C API (libpdfium.so / libpdfium.dylib)
// - The library on PDFIUM_LIBRARY_PATH, next to the executable, or in a
//   system library directory (see SearchPaths)
//
// No CGo toolchain is needed at build time.
//
//go:build darwin || linux || freebsd

package fpdf

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// libraryConfig mirrors FPDF_LIBRARY_CONFIG (version 2).
type libraryConfig struct {
	version        int32
	userFontPaths  unsafe.Pointer
	isolate        unsafe.Pointer
	v8EmbedderSlot uint32
	platform       unsafe.Pointer
}

// nativeEngine calls into a dlopen'ed libpdfium.
//
// Buffers handed to LoadMemDocument and BitmapCreateEx are pinned until the
// matching CloseDocument or BitmapDestroy, because PDFium keeps raw
// pointers into them.
type nativeEngine struct {
	path string
	lib  uintptr

	initLibraryWithConfig func(cfg unsafe.Pointer)
	destroyLibrary        func()
	getLastError          func() uint32
	loadDocument          func(path string, password string) uintptr
	loadMemDocument       func(data unsafe.Pointer, size int32, password string) uintptr
	closeDocument         func(doc uintptr)
	getPageCount          func(doc uintptr) int32
	loadPage              func(doc uintptr, index int32) uintptr
	closePage             func(page uintptr)
	getPageWidthF         func(page uintptr) float32
	getPageHeightF        func(page uintptr) float32
	bitmapCreateEx        func(width, height, format int32, firstScan unsafe.Pointer, stride int32) uintptr
	bitmapDestroy         func(bmp uintptr)
	bitmapGetWidth        func(bmp uintptr) int32
	bitmapGetHeight       func(bmp uintptr) int32
	bitmapFillRect        func(bmp uintptr, left, top, width, height int32, color uint64) int32
	renderPageBitmap      func(bmp uintptr, page uintptr, startX, startY, sizeX, sizeY, rotate, flags int32)

	// rejected holds the error of a call refused before reaching PDFium,
	// reported by the next GetLastError in place of the native one.
	rejected ErrorCode

	docPins    map[Document]*runtime.Pinner
	bitmapPins map[Bitmap]*runtime.Pinner
}

// LoadNative dlopens the PDFium library at path (see FindLibrary) and
// resolves every entry point the Engine interface needs. The library stays
// mapped for the life of the process.
func LoadNative(path string) (Engine, error) {
	if path == "" {
		path = FindLibrary("")
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryUnavailable, path, err)
	}

	e := &nativeEngine{
		path:       path,
		lib:        lib,
		docPins:    make(map[Document]*runtime.Pinner),
		bitmapPins: make(map[Bitmap]*runtime.Pinner),
	}

	symbols := []struct {
		name string
		fn   any
	}{
		{"FPDF_InitLibraryWithConfig", &e.initLibraryWithConfig},
		{"FPDF_DestroyLibrary", &e.destroyLibrary},
		{"FPDF_GetLastError", &e.getLastError},
		{"FPDF_LoadDocument", &e.loadDocument},
		{"FPDF_LoadMemDocument", &e.loadMemDocument},
		{"FPDF_CloseDocument", &e.closeDocument},
		{"FPDF_GetPageCount", &e.getPageCount},
		{"FPDF_LoadPage", &e.loadPage},
		{"FPDF_ClosePage", &e.closePage},
		{"FPDF_GetPageWidthF", &e.getPageWidthF},
		{"FPDF_GetPageHeightF", &e.getPageHeightF},
		{"FPDFBitmap_CreateEx", &e.bitmapCreateEx},
		{"FPDFBitmap_Destroy", &e.bitmapDestroy},
		{"FPDFBitmap_GetWidth", &e.bitmapGetWidth},
		{"FPDFBitmap_GetHeight", &e.bitmapGetHeight},
		{"FPDFBitmap_FillRect", &e.bitmapFillRect},
		{"FPDF_RenderPageBitmap", &e.renderPageBitmap},
	}
	for _, sym := range symbols {
		addr, err := purego.Dlsym(lib, sym.name)
		if err != nil {
			purego.Dlclose(lib)
			return nil, fmt.Errorf("%w: %s in %s", ErrSymbolMissing, sym.name, path)
		}
		purego.RegisterFunc(sym.fn, addr)
	}

	return e, nil
}

func (e *nativeEngine) InitLibrary() {
	cfg := libraryConfig{version: 2}
	e.initLibraryWithConfig(unsafe.Pointer(&cfg))
	runtime.KeepAlive(&cfg)
}

func (e *nativeEngine) DestroyLibrary() {
	e.destroyLibrary()
}

func (e *nativeEngine) GetLastError() ErrorCode {
	if code := e.rejected; code != ErrSuccess {
		e.rejected = ErrSuccess
		return code
	}
	return ErrorCode(e.getLastError())
}

// fitsInt32 reports whether every value survives the conversion to the C
// int the PDFium API takes.
func fitsInt32(values ...int) bool {
	for _, v := range values {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return false
		}
	}
	return true
}

func (e *nativeEngine) LoadDocument(path, password string) Document {
	return Document(e.loadDocument(path, password))
}

func (e *nativeEngine) LoadMemDocument(data []byte, password string) Document {
	if len(data) == 0 {
		return Document(e.loadMemDocument(nil, 0, password))
	}
	if !fitsInt32(len(data)) {
		e.rejected = ErrFile
		return 0
	}

	pin := new(runtime.Pinner)
	pin.Pin(&data[0])
	doc := Document(e.loadMemDocument(unsafe.Pointer(&data[0]), int32(len(data)), password))
	if doc == 0 {
		pin.Unpin()
		return 0
	}
	e.docPins[doc] = pin
	return doc
}

func (e *nativeEngine) CloseDocument(doc Document) {
	e.closeDocument(uintptr(doc))
	if pin, ok := e.docPins[doc]; ok {
		pin.Unpin()
		delete(e.docPins, doc)
	}
}

func (e *nativeEngine) GetPageCount(doc Document) int {
	return int(e.getPageCount(uintptr(doc)))
}

func (e *nativeEngine) LoadPage(doc Document, index int) Page {
	if !fitsInt32(index) {
		e.rejected = ErrPage
		return 0
	}
	return Page(e.loadPage(uintptr(doc), int32(index)))
}

func (e *nativeEngine) ClosePage(page Page) {
	e.closePage(uintptr(page))
}

func (e *nativeEngine) GetPageWidth(page Page) float32 {
	return e.getPageWidthF(uintptr(page))
}

func (e *nativeEngine) GetPageHeight(page Page) float32 {
	return e.getPageHeightF(uintptr(page))
}

func (e *nativeEngine) BitmapCreateEx(width, height int, format BitmapFormat, buf []byte, stride int) Bitmap {
	if len(buf) == 0 || !fitsInt32(width, height, stride, len(buf)) || len(buf) < height*stride {
		e.rejected = ErrUnknown
		return 0
	}

	pin := new(runtime.Pinner)
	pin.Pin(&buf[0])
	bmp := Bitmap(e.bitmapCreateEx(int32(width), int32(height), int32(format), unsafe.Pointer(&buf[0]), int32(stride)))
	if bmp == 0 {
		pin.Unpin()
		return 0
	}
	e.bitmapPins[bmp] = pin
	return bmp
}

func (e *nativeEngine) BitmapDestroy(bmp Bitmap) {
	e.bitmapDestroy(uintptr(bmp))
	if pin, ok := e.bitmapPins[bmp]; ok {
		pin.Unpin()
		delete(e.bitmapPins, bmp)
	}
}

func (e *nativeEngine) BitmapGetWidth(bmp Bitmap) int {
	return int(e.bitmapGetWidth(uintptr(bmp)))
}

func (e *nativeEngine) BitmapGetHeight(bmp Bitmap) int {
	return int(e.bitmapGetHeight(uintptr(bmp)))
}

func (e *nativeEngine) BitmapFillRect(bmp Bitmap, left, top, width, height int, color uint32) bool {
	if !fitsInt32(left, top, width, height) {
		e.rejected = ErrUnknown
		return false
	}
	return e.bitmapFillRect(uintptr(bmp), int32(left), int32(top), int32(width), int32(height), uint64(color)) != 0
}

// RenderPageBitmap reports success for every call that reaches PDFium:
// FPDF_RenderPageBitmap has no failure channel.
func (e *nativeEngine) RenderPageBitmap(bmp Bitmap, page Page, startX, startY, sizeX, sizeY int, rotate Orientation, flags RenderFlags) bool {
	if !fitsInt32(startX, startY, sizeX, sizeY) {
		e.rejected = ErrUnknown
		return false
	}
	e.renderPageBitmap(uintptr(bmp), uintptr(page),
		int32(startX), int32(startY), int32(sizeX), int32(sizeY),
		int32(rotate), int32(flags))
	return true
}

// String identifies the loaded library in logs.
func (e *nativeEngine) String() string {
	return "pdfium(" + e.path + ")"
}
