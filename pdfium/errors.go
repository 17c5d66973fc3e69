package pdfium

import (
	"errors"
	"fmt"

	"go_pdfium/fpdf"
)

// Error describes a failed native operation.
// Op names the operation, Code carries FPDF_GetLastError when the engine
// reported one, and Err is the sentinel callers match with errors.Is.
type Error struct {
	Op      string         // Operation that failed (e.g., "open", "loadPage", "render")
	Code    fpdf.ErrorCode // FPDF_GetLastError value, FPDF_ERR_SUCCESS if none was read
	Message string         // Human-readable detail
	Err     error          // Sentinel from the list below
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdfium %s: %s (code: %s): %v", e.Op, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("pdfium %s: %s (code: %s)", e.Op, e.Message, e.Code)
}

// Unwrap returns the sentinel so errors.Is works through *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinel errors. Match them with errors.Is; the concrete value returned by
// an operation is usually an *Error wrapping one of these.
var (
	// ErrAlreadyInitialized indicates a Library is already live in this process.
	// Close it before calling Init again.
	ErrAlreadyInitialized = errors.New("pdfium: library already initialized")

	// ErrLifetimeViolation indicates handles were used or destroyed out of order:
	// a parent closed while children are alive, or a handle used after close.
	ErrLifetimeViolation = errors.New("pdfium: handle lifetime violation")

	// ErrHandleStillBorrowed indicates a Library or Document still has live
	// children. It matches ErrLifetimeViolation as well.
	ErrHandleStillBorrowed = fmt.Errorf("%w: handle still borrowed", ErrLifetimeViolation)

	// ErrInvalidFormat indicates the source is not a parseable PDF.
	ErrInvalidFormat = errors.New("pdfium: invalid PDF format")

	// ErrIncorrectPassword indicates the document is encrypted and the
	// password is missing or wrong.
	ErrIncorrectPassword = errors.New("pdfium: incorrect password")

	// ErrUnsupportedSecurity indicates the document uses a security handler
	// the engine does not implement.
	ErrUnsupportedSecurity = errors.New("pdfium: unsupported security scheme")

	// ErrIO indicates the source file could not be found or read.
	ErrIO = errors.New("pdfium: i/o error")

	// ErrPageIndexOutOfRange indicates a page index outside [0, PageCount).
	ErrPageIndexOutOfRange = errors.New("pdfium: page index out of range")

	// ErrInvalidRenderTarget indicates a bitmap or render region that cannot
	// receive the requested render. Nothing was drawn.
	ErrInvalidRenderTarget = errors.New("pdfium: invalid render target")

	// ErrRender indicates the engine failed to draw the page.
	// The target bitmap has been zero-filled.
	ErrRender = errors.New("pdfium: render failed")

	// ErrEngine indicates an unexpected native failure.
	ErrEngine = errors.New("pdfium: engine error")

	// ErrLibraryUnavailable indicates no native library could be loaded.
	ErrLibraryUnavailable = fpdf.ErrLibraryUnavailable
)

// openError translates the last error of a failed document open.
func openError(op string, code fpdf.ErrorCode, source string) error {
	var sentinel error
	var msg string
	switch code {
	case fpdf.ErrFile:
		sentinel, msg = ErrIO, "cannot read "+source
	case fpdf.ErrFormat:
		sentinel, msg = ErrInvalidFormat, source+" is not a valid PDF"
	case fpdf.ErrPassword:
		sentinel, msg = ErrIncorrectPassword, source+" needs a different password"
	case fpdf.ErrSecurity:
		sentinel, msg = ErrUnsupportedSecurity, source+" uses an unsupported security handler"
	default:
		sentinel, msg = ErrEngine, "cannot open "+source
	}
	return &Error{Op: op, Code: code, Message: msg, Err: sentinel}
}

// lifetimeError reports use of a closed handle.
func lifetimeError(op, what string) error {
	return &Error{Op: op, Message: what + " is closed", Err: ErrLifetimeViolation}
}

// borrowedError reports closing a parent with live children.
func borrowedError(op, what string, live int) error {
	return &Error{
		Op:      op,
		Message: fmt.Sprintf("%s still has %d live %s", what, live, childName(what, live)),
		Err:     ErrHandleStillBorrowed,
	}
}

func childName(parent string, n int) string {
	child := "page"
	if parent == "library" {
		child = "document"
	}
	if n != 1 {
		child += "s"
	}
	return child
}

// targetError reports a rejected render target.
func targetError(format string, args ...any) error {
	return &Error{Op: "render", Message: fmt.Sprintf(format, args...), Err: ErrInvalidRenderTarget}
}
