// Package pdfium is a safe front end to the PDFium rendering engine.
//
// PDFium is handle based and not thread safe. This package keeps the
// engine usable from any number of goroutines by funnelling every native
// call through one process-wide gate, and turns ownership mistakes into
// errors instead of crashes:
//
//	lib, err := pdfium.InitWithConfig(pdfium.DefaultEngineConfig())
//	if err != nil { ... }
//	defer lib.Close()
//
//	doc, err := lib.OpenFile("report.pdf", "")
//	if err != nil { ... }
//	defer doc.Close()
//
//	page, err := doc.LoadPage(0)
//	if err != nil { ... }
//	defer page.Unload()
//
//	bmp, err := page.RenderNew(fpdf.FormatBGRA, pdfium.DefaultRenderConfig())
//
// Ownership runs Library, Document, Page. Closing a parent while a child is
// alive fails with ErrHandleStillBorrowed and leaves both usable. Bitmaps
// are plain Go memory and belong to nobody but the caller.
//
// Only one Library may be live per process; Init fails with
// ErrAlreadyInitialized until the current one is closed.
package pdfium
