package pdfium

import (
	"errors"
	"math"
	"testing"

	"go_pdfium/fpdf"
	"go_pdfium/fpdf/fpdftest"
)

func TestRender_InvalidTargetMakesNoNativeCall(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	good, _ := NewBitmap(100, 100, fpdf.FormatBGRA)
	zeroWidth, _ := NewBitmap(0, 100, fpdf.FormatBGRA)
	zeroHeight, _ := NewBitmap(100, 0, fpdf.FormatBGRA)

	tests := []struct {
		name string
		bmp  *Bitmap
		cfg  RenderConfig
	}{
		{"nil bitmap", nil, DefaultRenderConfig()},
		{"zero width", zeroWidth, DefaultRenderConfig()},
		{"zero height", zeroHeight, DefaultRenderConfig()},
		{"zero value bitmap", &Bitmap{}, DefaultRenderConfig()},
		{"region past right edge", good, DefaultRenderConfig().WithRegion(Region{X: 50, Width: 51, Height: 10})},
		{"region past bottom edge", good, DefaultRenderConfig().WithRegion(Region{Y: 90, Width: 10, Height: 11})},
		{"negative origin", good, DefaultRenderConfig().WithRegion(Region{X: -1, Width: 10, Height: 10})},
		{"region end overflows x", good, DefaultRenderConfig().WithRegion(Region{X: math.MaxInt, Width: 2, Height: 5})},
		{"region end overflows y", good, DefaultRenderConfig().WithRegion(Region{Y: math.MaxInt, Width: 5, Height: 2})},
		{"huge region", good, DefaultRenderConfig().WithRegion(Region{X: 1, Width: math.MaxInt, Height: 5})},
		{"scale beyond bitmap limit", good, RenderConfig{Scale: 1e12}},
		{"empty region", good, DefaultRenderConfig().WithRegion(Region{Width: 0, Height: 10})},
		{"scaled page larger than bitmap", good, RenderConfig{Scale: 1}},
		{"negative scale", good, RenderConfig{Scale: -1}},
		{"nan scale", good, RenderConfig{Scale: math.NaN()}},
		{"infinite scale", good, RenderConfig{Scale: math.Inf(1)}},
		{"bad rotation", good, RenderConfig{Rotation: fpdf.Orientation(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := engine.TotalCalls()
			gateBefore := engineGate.count()

			err := page.Render(tt.bmp, tt.cfg)
			if !errors.Is(err, ErrInvalidRenderTarget) {
				t.Fatalf("Render() error = %v, want ErrInvalidRenderTarget", err)
			}
			if got := engine.TotalCalls() - before; got != 0 {
				t.Errorf("%d native calls for an invalid target", got)
			}
			if engineGate.count() != gateBefore {
				t.Error("gate acquired for an invalid target")
			}
		})
	}
}

func TestRender_FullBitmap(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	bmp, err := NewBitmap(612, 792, fpdf.FormatBGRA)
	if err != nil {
		t.Fatal(err)
	}

	gateBefore := engineGate.count()
	if err := page.Render(bmp, DefaultRenderConfig()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := engineGate.count() - gateBefore; got != 1 {
		t.Errorf("gate acquisitions = %d, want 1", got)
	}

	renders := engine.Renders()
	if len(renders) != 1 {
		t.Fatalf("render calls = %d, want 1", len(renders))
	}
	want := fpdftest.RenderCall{SizeX: 612, SizeY: 792, Rotate: fpdf.Normal, Flags: fpdf.RenderAnnotations}
	if renders[0] != want {
		t.Errorf("render call = %+v, want %+v", renders[0], want)
	}

	for _, pt := range [][2]int{{0, 0}, {611, 0}, {0, 791}, {611, 791}, {306, 396}} {
		if got := bmp.ARGB(pt[0], pt[1]); got != ColorWhite {
			t.Errorf("pixel %v = %#08x, want white", pt, got)
		}
	}
	if engine.OpenBitmaps() != 0 {
		t.Errorf("%d native bitmaps leaked", engine.OpenBitmaps())
	}
}

func TestRender_RegionSelection(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	tests := []struct {
		name string
		w, h int
		cfg  RenderConfig
		want fpdftest.RenderCall
	}{
		{
			name: "scale sizes region",
			w:    400,
			h:    400,
			cfg:  RenderConfig{Scale: 0.5},
			want: fpdftest.RenderCall{SizeX: 306, SizeY: 396},
		},
		{
			name: "scale with quarter turn swaps",
			w:    400,
			h:    400,
			cfg:  RenderConfig{Scale: 0.5, Rotation: fpdf.Clockwise},
			want: fpdftest.RenderCall{SizeX: 396, SizeY: 306, Rotate: fpdf.Clockwise},
		},
		{
			name: "explicit region wins over scale",
			w:    400,
			h:    400,
			cfg:  RenderConfig{Scale: 3, Region: &Region{X: 10, Y: 20, Width: 30, Height: 40}, Flags: fpdf.RenderGrayscale},
			want: fpdftest.RenderCall{StartX: 10, StartY: 20, SizeX: 30, SizeY: 40, Flags: fpdf.RenderGrayscale},
		},
		{
			name: "no scale fills bitmap",
			w:    123,
			h:    45,
			cfg:  RenderConfig{Rotation: fpdf.Flip},
			want: fpdftest.RenderCall{SizeX: 123, SizeY: 45, Rotate: fpdf.Flip},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bmp, err := NewBitmap(tt.w, tt.h, fpdf.FormatBGRx)
			if err != nil {
				t.Fatal(err)
			}
			n := len(engine.Renders())
			if err := page.Render(bmp, tt.cfg); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			renders := engine.Renders()
			if len(renders) != n+1 {
				t.Fatalf("render calls = %d, want %d", len(renders), n+1)
			}
			if got := renders[n]; got != tt.want {
				t.Errorf("render call = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRender_BackgroundOnlyInsideRegion(t *testing.T) {
	lib, _ := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	bmp, _ := NewBitmap(20, 20, fpdf.FormatBGRA)
	cfg := DefaultRenderConfig().WithRegion(Region{X: 5, Y: 5, Width: 10, Height: 10})
	if err := page.Render(bmp, cfg); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := bmp.ARGB(7, 7); got != ColorWhite {
		t.Errorf("inside region = %#08x, want white", got)
	}
	if got := bmp.ARGB(2, 2); got != 0 {
		t.Errorf("outside region = %#08x, want untouched", got)
	}
}

func TestRender_NoFill(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	bmp, _ := NewBitmap(8, 8, fpdf.FormatBGRA)
	bmp.Fill(0xFF00FF00)
	before := engine.Calls(fpdftest.CallBitmapFillRect)

	if err := page.Render(bmp, RenderConfig{NoFill: true, Background: ColorWhite}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if engine.Calls(fpdftest.CallBitmapFillRect) != before {
		t.Error("FillRect called with NoFill")
	}
	if got := bmp.ARGB(0, 0); got != 0xFF00FF00 {
		t.Errorf("pixel = %#08x, want existing content kept", got)
	}
}

func TestRender_DrawCallReachesBitmap(t *testing.T) {
	engine := fpdftest.New()
	engine.AddDocument(letterData, fpdftest.DocumentSpec{
		Pages: []fpdftest.PageSpec{{Width: 612, Height: 792, Ink: 0xFF000000}},
	})
	lib := newTestLibrary(t, engine)
	page := loadPage(t, openLetter(t, lib), 0)

	bmp, err := page.RenderNew(fpdf.FormatBGRA, DefaultRenderConfig())
	if err != nil {
		t.Fatalf("RenderNew() error = %v", err)
	}
	if bmp.Width() != 612 || bmp.Height() != 792 {
		t.Errorf("RenderNew() size = %dx%d, want 612x792", bmp.Width(), bmp.Height())
	}
	if got := bmp.ARGB(306, 396); got != 0xFF000000 {
		t.Errorf("center pixel = %#08x, want ink", got)
	}
	if got := bmp.ARGB(0, 0); got != ColorWhite {
		t.Errorf("corner pixel = %#08x, want background", got)
	}
}

func TestRenderNew_Sizing(t *testing.T) {
	lib, _ := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	bmp, err := page.RenderNew(fpdf.FormatGray, RenderConfig{Scale: 2, Rotation: fpdf.CounterClockwise})
	if err != nil {
		t.Fatalf("RenderNew() error = %v", err)
	}
	if bmp.Width() != 1584 || bmp.Height() != 1224 {
		t.Errorf("size = %dx%d, want 1584x1224", bmp.Width(), bmp.Height())
	}

	if _, err := page.RenderNew(fpdf.FormatGray, RenderConfig{Scale: -2}); !errors.Is(err, ErrInvalidRenderTarget) {
		t.Errorf("RenderNew() negative scale error = %v, want ErrInvalidRenderTarget", err)
	}
	if _, err := page.RenderNew(fpdf.BitmapFormat(0), RenderConfig{}); !errors.Is(err, ErrInvalidRenderTarget) {
		t.Errorf("RenderNew() bad format error = %v, want ErrInvalidRenderTarget", err)
	}
}

// A failed render never leaves partial output: the whole buffer, padding
// included, is zero when Render returns ErrRender.
func TestRenderNew_HugeScaleIsInvalidTarget(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	page := loadPage(t, openLetter(t, lib), 0)

	for _, scale := range []float64{1e6, 1e12, math.MaxFloat64} {
		before := engine.TotalCalls()
		bmp, err := page.RenderNew(fpdf.FormatBGRA, RenderConfig{Scale: scale})
		if !errors.Is(err, ErrInvalidRenderTarget) || bmp != nil {
			t.Errorf("RenderNew(scale %g) = %v, %v; want ErrInvalidRenderTarget", scale, bmp, err)
		}
		if got := engine.TotalCalls() - before; got != 0 {
			t.Errorf("scale %g: %d native calls", scale, got)
		}
	}

	if w, h := page.PixelSize(1e12, fpdf.Normal); w != MaxBitmapDimension || h != MaxBitmapDimension {
		t.Errorf("PixelSize(1e12) = %dx%d, want saturated at %d", w, h, MaxBitmapDimension)
	}
}

func TestRender_FailureZeroFillsBitmap(t *testing.T) {
	tests := []struct {
		name   string
		engine func() *fpdftest.Engine
		code   fpdf.ErrorCode
	}{
		{
			name: "engine draw failure",
			engine: func() *fpdftest.Engine {
				e := fpdftest.New()
				e.AddDocument(letterData, fpdftest.DocumentSpec{
					Pages: []fpdftest.PageSpec{{Width: 612, Height: 792, FailRender: true}},
				})
				return e
			},
			code: fpdf.ErrPage,
		},
		{
			name: "native bitmap creation failure",
			engine: func() *fpdftest.Engine {
				e := fpdftest.New()
				e.AddDocument(letterData, letterSpec(1))
				e.FailBitmapCreate = true
				return e
			},
			code: fpdf.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := tt.engine()
			lib := newTestLibrary(t, engine)
			page := loadPage(t, openLetter(t, lib), 0)

			buf := make([]byte, 10*(10*4+8))
			for i := range buf {
				buf[i] = 0x55
			}
			bmp, err := NewBitmapFromBuffer(10, 10, 10*4+8, fpdf.FormatBGRA, buf)
			if err != nil {
				t.Fatal(err)
			}

			err = page.Render(bmp, DefaultRenderConfig())
			if !errors.Is(err, ErrRender) {
				t.Fatalf("Render() error = %v, want ErrRender", err)
			}
			var pe *Error
			if !errors.As(err, &pe) || pe.Code != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !bmp.IsZero() {
				t.Error("bitmap not zero-filled after failed render")
			}
			if engine.OpenBitmaps() != 0 {
				t.Errorf("%d native bitmaps leaked", engine.OpenBitmaps())
			}
		})
	}
}

func TestRender_AfterUnload(t *testing.T) {
	lib, engine := newFakeLibrary(t)
	doc := openLetter(t, lib)
	page, err := doc.LoadPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := page.Unload(); err != nil {
		t.Fatal(err)
	}

	bmp, _ := NewBitmap(10, 10, fpdf.FormatBGRA)
	bmp.Fill(0xFF123456)
	before := engine.TotalCalls()

	if err := page.Render(bmp, DefaultRenderConfig()); !errors.Is(err, ErrLifetimeViolation) {
		t.Errorf("Render() after Unload error = %v, want ErrLifetimeViolation", err)
	}
	if engine.TotalCalls() != before {
		t.Error("render of unloaded page reached the engine")
	}
	if got := bmp.ARGB(0, 0); got != 0xFF123456 {
		t.Errorf("bitmap modified by rejected render: %#08x", got)
	}
}
