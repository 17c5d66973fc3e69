package pdfium

import (
	"errors"
	"strings"
	"testing"

	"go_pdfium/fpdf"
)

func TestError_Error(t *testing.T) {
	err := &Error{Op: "open", Code: fpdf.ErrFormat, Message: "x.pdf is not a valid PDF", Err: ErrInvalidFormat}

	msg := err.Error()
	for _, want := range []string{"open", "x.pdf is not a valid PDF", "FPDF_ERR_FORMAT", ErrInvalidFormat.Error()} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want to contain %q", msg, want)
		}
	}

	bare := &Error{Op: "render", Message: "no sentinel"}
	if got := bare.Error(); !strings.Contains(got, "no sentinel") || strings.Contains(got, "<nil>") {
		t.Errorf("Error() without sentinel = %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	var err error = &Error{Op: "render", Err: ErrRender}
	if !errors.Is(err, ErrRender) {
		t.Error("errors.Is(err, ErrRender) = false")
	}
	if errors.Is(err, ErrEngine) {
		t.Error("errors.Is(err, ErrEngine) = true")
	}

	var pe *Error
	if !errors.As(err, &pe) || pe.Op != "render" {
		t.Errorf("errors.As() did not find *Error with op render in %v", err)
	}
}

func TestHandleStillBorrowedIsLifetimeViolation(t *testing.T) {
	err := borrowedError("close", "document", 2)
	if !errors.Is(err, ErrHandleStillBorrowed) {
		t.Error("borrowedError does not match ErrHandleStillBorrowed")
	}
	if !errors.Is(err, ErrLifetimeViolation) {
		t.Error("borrowedError does not match ErrLifetimeViolation")
	}
	if !strings.Contains(err.Error(), "2 live pages") {
		t.Errorf("Error() = %q, want live page count", err.Error())
	}
}

func TestOpenError(t *testing.T) {
	tests := []struct {
		code fpdf.ErrorCode
		want error
	}{
		{fpdf.ErrFile, ErrIO},
		{fpdf.ErrFormat, ErrInvalidFormat},
		{fpdf.ErrPassword, ErrIncorrectPassword},
		{fpdf.ErrSecurity, ErrUnsupportedSecurity},
		{fpdf.ErrUnknown, ErrEngine},
		{fpdf.ErrPage, ErrEngine},
		{fpdf.ErrSuccess, ErrEngine},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := openError("open", tt.code, "doc.pdf")
			if !errors.Is(err, tt.want) {
				t.Errorf("openError(%s) = %v, want %v", tt.code, err, tt.want)
			}
			var pe *Error
			if errors.As(err, &pe) && pe.Code != tt.code {
				t.Errorf("Code = %s, want %s", pe.Code, tt.code)
			}
		})
	}
}

func TestChildName(t *testing.T) {
	tests := []struct {
		parent string
		n      int
		want   string
	}{
		{"library", 1, "document"},
		{"library", 3, "documents"},
		{"document", 1, "page"},
		{"document", 0, "pages"},
	}
	for _, tt := range tests {
		if got := childName(tt.parent, tt.n); got != tt.want {
			t.Errorf("childName(%q, %d) = %q, want %q", tt.parent, tt.n, got, tt.want)
		}
	}
}

func TestLibraryUnavailableAlias(t *testing.T) {
	if !errors.Is(ErrLibraryUnavailable, fpdf.ErrLibraryUnavailable) {
		t.Error("ErrLibraryUnavailable does not match fpdf.ErrLibraryUnavailable")
	}
}
