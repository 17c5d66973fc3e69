package pdfium

import (
	"testing"

	"go_pdfium/fpdf"
	"go_pdfium/fpdf/fpdftest"
)

var (
	letterData = []byte("%fake letter document")
	lockedData = []byte("%fake locked document")
)

func letterSpec(pages int) fpdftest.DocumentSpec {
	spec := fpdftest.DocumentSpec{}
	for i := 0; i < pages; i++ {
		spec.Pages = append(spec.Pages, fpdftest.PageSpec{Width: 612, Height: 792})
	}
	return spec
}

// newTestLibrary initializes engine and closes it when the test ends.
// A test that leaks handles fails, and the process flag is reset so the
// next test can initialize.
func newTestLibrary(t *testing.T, engine fpdf.Engine) *Library {
	t.Helper()
	lib, err := Init(engine)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		if err := lib.Close(); err != nil {
			t.Errorf("Library.Close() at cleanup: %v", err)
			initialized.Store(false)
		}
	})
	return lib
}

// newFakeLibrary returns a Library over a fake engine that knows a two-page
// letter document (letterData) and a password-protected one (lockedData).
func newFakeLibrary(t *testing.T) (*Library, *fpdftest.Engine) {
	t.Helper()
	engine := fpdftest.New()
	engine.AddDocument(letterData, letterSpec(2))
	locked := letterSpec(1)
	locked.Password = "s3cret"
	engine.AddDocument(lockedData, locked)
	return newTestLibrary(t, engine), engine
}

func openLetter(t *testing.T, lib *Library) *Document {
	t.Helper()
	doc, err := lib.OpenBytes(letterData, "")
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func loadPage(t *testing.T, doc *Document, index int) *Page {
	t.Helper()
	page, err := doc.LoadPage(index)
	if err != nil {
		t.Fatalf("LoadPage(%d) error = %v", index, err)
	}
	t.Cleanup(func() { _ = page.Unload() })
	return page
}

func orientation(quarterTurns int) fpdf.Orientation {
	return fpdf.Orientation(quarterTurns)
}
