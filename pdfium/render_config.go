package pdfium

import (
	"fmt"

	"go_pdfium/fpdf"
)

// ColorWhite is opaque white in 0xAARRGGBB.
const ColorWhite uint32 = 0xFFFFFFFF

// Region is a rectangle in bitmap pixels, origin at the top-left.
type Region struct {
	X, Y          int
	Width, Height int
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// RenderConfig describes one render. It is a plain value and may be reused.
//
// The page is drawn into a device region of the bitmap, chosen as:
//   - Region, when set;
//   - otherwise, when Scale > 0, a region at the origin sized to the page at
//     Scale pixels per point (width and height swapped for quarter turns);
//   - otherwise the whole bitmap.
type RenderConfig struct {
	Region   *Region
	Scale    float64
	Rotation fpdf.Orientation
	Flags    fpdf.RenderFlags

	// Background is painted over the region before drawing, 0xAARRGGBB.
	Background uint32
	// NoFill leaves the region untouched before drawing, so the page is
	// composited over whatever the bitmap holds.
	NoFill bool
}

// DefaultRenderConfig renders the whole bitmap on white with annotations.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Background: ColorWhite,
		Flags:      fpdf.RenderAnnotations,
	}
}

// WithRegion returns a copy of c drawing into r.
func (c RenderConfig) WithRegion(r Region) RenderConfig {
	c.Region = &r
	return c
}
