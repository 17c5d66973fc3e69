package fpdf

import "errors"

var (
	// ErrLibraryUnavailable indicates the PDFium shared library could not be
	// located or loaded on this platform.
	ErrLibraryUnavailable = errors.New("fpdf: pdfium library unavailable")

	// ErrSymbolMissing indicates the loaded library lacks a required FPDF_*
	// entry point, usually because it is too old.
	ErrSymbolMissing = errors.New("fpdf: required symbol missing")
)
