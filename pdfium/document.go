package pdfium

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_pdfium/fpdf"
)

// Document is an open PDF. It borrows its Library and is borrowed by the
// Pages loaded from it.
//
// A Document may be shared between goroutines; every method that touches
// the engine goes through the engine gate.
type Document struct {
	lib    *Library
	id     string
	source Source

	// handle is read and written only under engineGate. Zero once closed.
	handle fpdf.Document

	pages borrows

	closeMu sync.Mutex
	closed  bool
}

func newDocument(lib *Library, handle fpdf.Document, src Source) *Document {
	d := &Document{
		lib:    lib,
		id:     uuid.NewString(),
		source: src,
		handle: handle,
	}
	runtime.SetFinalizer(d, (*Document).finalize)
	return d
}

// ID returns a random identifier used to correlate log entries.
func (d *Document) ID() string {
	return d.id
}

// Source returns what the document was opened from.
func (d *Document) Source() Source {
	return d.source
}

// PageCount returns the number of pages.
// It fails with ErrEngine when the engine reports a negative count and with
// ErrLifetimeViolation after Close.
func (d *Document) PageCount() (int, error) {
	var n int
	err := engineGate.withLock(func() error {
		if d.handle == 0 {
			return lifetimeError("pageCount", "document")
		}
		n = d.lib.engine.GetPageCount(d.handle)
		if n < 0 {
			return &Error{
				Op:      "pageCount",
				Code:    d.lib.engine.GetLastError(),
				Message: fmt.Sprintf("engine returned page count %d", n),
				Err:     ErrEngine,
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// LoadPage loads the page at the zero-based index and caches its size.
//
// Errors: ErrPageIndexOutOfRange for index < 0 or index >= PageCount,
// ErrLifetimeViolation after Close, ErrEngine when the engine cannot load
// an in-range page.
func (d *Document) LoadPage(index int) (*Page, error) {
	if !d.pages.acquire() {
		return nil, lifetimeError("loadPage", "document")
	}

	start := time.Now()
	var handle fpdf.Page
	var width, height float32
	err := engineGate.withLock(func() error {
		if d.handle == 0 {
			return lifetimeError("loadPage", "document")
		}
		engine := d.lib.engine

		count := engine.GetPageCount(d.handle)
		if count < 0 {
			return &Error{Op: "loadPage", Code: engine.GetLastError(), Message: "cannot count pages", Err: ErrEngine}
		}
		if index < 0 || index >= count {
			return &Error{
				Op:      "loadPage",
				Message: fmt.Sprintf("index %d not in [0, %d)", index, count),
				Err:     ErrPageIndexOutOfRange,
			}
		}

		handle = engine.LoadPage(d.handle, index)
		if handle == 0 {
			return &Error{
				Op:      "loadPage",
				Code:    engine.GetLastError(),
				Message: fmt.Sprintf("cannot load page %d", index),
				Err:     ErrEngine,
			}
		}
		width = engine.GetPageWidth(handle)
		height = engine.GetPageHeight(handle)
		return nil
	})
	if err != nil {
		d.pages.release()
		return nil, err
	}

	p := newPage(d, index, handle, float64(width), float64(height))
	Logger().Debug("page loaded",
		zap.String("doc_id", d.id),
		zap.Int("page", index),
		zap.Float64("width", p.width),
		zap.Float64("height", p.height),
		zap.Duration("duration", time.Since(start)))
	return p, nil
}

// PageCountLive returns the number of pages loaded and not yet unloaded.
func (d *Document) PageCountLive() int {
	return d.pages.live()
}

// Close releases the native document.
//
// Close fails with ErrHandleStillBorrowed (an ErrLifetimeViolation) while
// pages loaded from d are alive; the document stays usable. Closing a
// closed document is a no-op.
func (d *Document) Close() error {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()

	if d.closed {
		return nil
	}
	if live, ok := d.pages.retire(); !ok {
		Logger().Warn("document close refused",
			zap.String("doc_id", d.id),
			zap.Int("live_pages", live))
		return borrowedError("close", "document", live)
	}

	_ = engineGate.withLock(func() error {
		d.lib.engine.CloseDocument(d.handle)
		d.handle = 0
		return nil
	})
	d.closed = true
	d.lib.docs.release()
	runtime.SetFinalizer(d, nil)

	Logger().Debug("document closed", zap.String("doc_id", d.id))
	return nil
}

// finalize releases a document that became unreachable without Close.
// Pages hold their document, so their finalizers always run first.
func (d *Document) finalize() {
	Logger().Warn("document leaked, closing", zap.String("doc_id", d.id), zap.String("source", d.source.String()))
	_ = d.Close()
}
