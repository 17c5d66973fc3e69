// Package fpdf describes the native PDFium boundary.
//
// The Engine interface mirrors the FPDF_* C entry points one method per
// call. Implementations are NOT safe for concurrent use: PDFium keeps global
// mutable state, so callers must serialize every method call, including
// handle creation and destruction. The pdfium package does that; nothing
// else in this module calls an Engine directly.
//
// Handles are opaque. The zero value of each handle type is the native NULL
// and signals failure; the reason is then available from GetLastError.
package fpdf

// Document is an opaque FPDF_DOCUMENT.
type Document uintptr

// Page is an opaque FPDF_PAGE.
type Page uintptr

// Bitmap is an opaque FPDF_BITMAP.
type Bitmap uintptr

// ErrorCode is the value returned by FPDF_GetLastError.
type ErrorCode uint32

// PDFium error codes.
const (
	ErrSuccess  ErrorCode = 0 // no error
	ErrUnknown  ErrorCode = 1 // unknown error
	ErrFile     ErrorCode = 2 // file not found or could not be opened
	ErrFormat   ErrorCode = 3 // file not in PDF format or corrupted
	ErrPassword ErrorCode = 4 // password required or incorrect password
	ErrSecurity ErrorCode = 5 // unsupported security scheme
	ErrPage     ErrorCode = 6 // page not found or content error
)

// String returns the FPDF_ERR_* name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrSuccess:
		return "FPDF_ERR_SUCCESS"
	case ErrUnknown:
		return "FPDF_ERR_UNKNOWN"
	case ErrFile:
		return "FPDF_ERR_FILE"
	case ErrFormat:
		return "FPDF_ERR_FORMAT"
	case ErrPassword:
		return "FPDF_ERR_PASSWORD"
	case ErrSecurity:
		return "FPDF_ERR_SECURITY"
	case ErrPage:
		return "FPDF_ERR_PAGE"
	default:
		return "FPDF_ERR_UNKNOWN"
	}
}

// BitmapFormat is the pixel layout of a bitmap.
type BitmapFormat int

// Bitmap formats understood by FPDFBitmap_CreateEx.
const (
	// FormatGray is one byte per pixel.
	FormatGray BitmapFormat = 1
	// FormatBGR is 3 bytes per pixel, byte order blue, green, red.
	FormatBGR BitmapFormat = 2
	// FormatBGRx is 4 bytes per pixel, byte order blue, green, red, unused.
	FormatBGRx BitmapFormat = 3
	// FormatBGRA is 4 bytes per pixel, byte order blue, green, red, alpha.
	FormatBGRA BitmapFormat = 4
)

// BytesPerPixel returns the pixel size of the format, or 0 for an unknown format.
func (f BitmapFormat) BytesPerPixel() int {
	switch f {
	case FormatGray:
		return 1
	case FormatBGR:
		return 3
	case FormatBGRx, FormatBGRA:
		return 4
	default:
		return 0
	}
}

// Valid reports whether f is one of the known formats.
func (f BitmapFormat) Valid() bool {
	return f.BytesPerPixel() > 0
}

func (f BitmapFormat) String() string {
	switch f {
	case FormatGray:
		return "gray"
	case FormatBGR:
		return "bgr"
	case FormatBGRx:
		return "bgrx"
	case FormatBGRA:
		return "bgra"
	default:
		return "unknown"
	}
}

// Orientation is the rotate argument of FPDF_RenderPageBitmap.
type Orientation int

// Page orientations, in quarter turns clockwise.
const (
	Normal           Orientation = 0
	Clockwise        Orientation = 1
	Flip             Orientation = 2
	CounterClockwise Orientation = 3
)

// Valid reports whether o is one of the four quarter-turn orientations.
func (o Orientation) Valid() bool {
	return o >= Normal && o <= CounterClockwise
}

// QuarterTurn reports whether o swaps the page's width and height.
func (o Orientation) QuarterTurn() bool {
	return o == Clockwise || o == CounterClockwise
}

// Degrees returns the clockwise rotation in degrees.
func (o Orientation) Degrees() int {
	return int(o) * 90
}

// OrientationFromDegrees converts 0, 90, 180 or 270 degrees clockwise.
func OrientationFromDegrees(deg int) (Orientation, bool) {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	if deg%90 != 0 {
		return Normal, false
	}
	return Orientation(deg / 90), true
}

// RenderFlags is the flags argument of FPDF_RenderPageBitmap.
type RenderFlags int

// PDFium render flag bits.
const (
	RenderAnnotations       RenderFlags = 0x01
	RenderLCDText           RenderFlags = 0x02
	RenderNoNativeText      RenderFlags = 0x04
	RenderGrayscale         RenderFlags = 0x08
	RenderReverseByteOrder  RenderFlags = 0x10
	RenderLimitedImageCache RenderFlags = 0x200
	RenderForceHalftone     RenderFlags = 0x400
	RenderPrinting          RenderFlags = 0x800
	RenderNoSmoothText      RenderFlags = 0x1000
	RenderNoSmoothImage     RenderFlags = 0x2000
	RenderNoSmoothPath      RenderFlags = 0x4000
)

// Has reports whether every bit of flag is set.
func (f RenderFlags) Has(flag RenderFlags) bool {
	return f&flag == flag
}

// Engine is the FPDF_* C API surface used by this module.
//
// Every method corresponds to one native call and must be invoked with
// exclusive access to the engine.
type Engine interface {
	// InitLibrary wraps FPDF_InitLibraryWithConfig.
	InitLibrary()
	// DestroyLibrary wraps FPDF_DestroyLibrary.
	DestroyLibrary()
	// GetLastError wraps FPDF_GetLastError. Undefined after a successful call.
	GetLastError() ErrorCode

	LoadDocument(path, password string) Document
	// LoadMemDocument wraps FPDF_LoadMemDocument. The engine keeps
	// referencing data until CloseDocument.
	LoadMemDocument(data []byte, password string) Document
	CloseDocument(doc Document)
	GetPageCount(doc Document) int

	LoadPage(doc Document, index int) Page
	ClosePage(page Page)
	GetPageWidth(page Page) float32
	GetPageHeight(page Page) float32

	// BitmapCreateEx wraps FPDFBitmap_CreateEx over a caller-owned buffer.
	// The buffer must stay valid until BitmapDestroy.
	BitmapCreateEx(width, height int, format BitmapFormat, buf []byte, stride int) Bitmap
	BitmapDestroy(bmp Bitmap)
	BitmapGetWidth(bmp Bitmap) int
	BitmapGetHeight(bmp Bitmap) int
	// BitmapFillRect wraps FPDFBitmap_FillRect; color is 0xAARRGGBB.
	BitmapFillRect(bmp Bitmap, left, top, width, height int, color uint32) bool
	// RenderPageBitmap wraps FPDF_RenderPageBitmap. It reports false when
	// the engine could not draw the page.
	RenderPageBitmap(bmp Bitmap, page Page, startX, startY, sizeX, sizeY int, rotate Orientation, flags RenderFlags) bool
}
