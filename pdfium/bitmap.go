package pdfium

import (
	"image"
	"image/color"
	"math"

	"go_pdfium/fpdf"
)

// Bitmap is a caller-owned pixel buffer the engine renders into.
//
// Rows are Stride bytes apart; the buffer holds exactly Height*Stride
// bytes and Stride is at least Width times the format's pixel size.
// A Bitmap is not itself synchronized: do not read Pix while a Render into
// the same bitmap is in flight.
type Bitmap struct {
	width, height int
	stride        int
	format        fpdf.BitmapFormat
	buf           []byte
}

// Bitmap size limits. PDFium takes widths, heights and strides as C ints
// and sizes the whole buffer with 32-bit arithmetic.
const (
	MaxBitmapDimension = math.MaxInt32
	MaxBitmapBytes     = math.MaxInt32
)

// checkGeometry rejects sizes PDFium cannot address, without overflowing.
func checkGeometry(width, height, stride int) error {
	if width > MaxBitmapDimension || height > MaxBitmapDimension || stride > MaxBitmapDimension {
		return targetError("bitmap %dx%d with stride %d exceeds %d", width, height, stride, MaxBitmapDimension)
	}
	if stride > 0 && height > MaxBitmapBytes/stride {
		return targetError("bitmap of %d rows of %d bytes exceeds %d bytes", height, stride, MaxBitmapBytes)
	}
	return nil
}

// NewBitmap allocates a zeroed bitmap with tightly packed rows.
// A zero width or height is allowed here; Render rejects it.
func NewBitmap(width, height int, format fpdf.BitmapFormat) (*Bitmap, error) {
	if !format.Valid() {
		return nil, targetError("unknown bitmap format %d", int(format))
	}
	if width < 0 || height < 0 {
		return nil, targetError("negative bitmap size %dx%d", width, height)
	}
	if width > MaxBitmapDimension/format.BytesPerPixel() {
		return nil, targetError("bitmap width %d exceeds %d bytes per row", width, MaxBitmapDimension)
	}
	stride := width * format.BytesPerPixel()
	if err := checkGeometry(width, height, stride); err != nil {
		return nil, err
	}
	return &Bitmap{
		width:  width,
		height: height,
		stride: stride,
		format: format,
		buf:    make([]byte, height*stride),
	}, nil
}

// NewBitmapFromBuffer wraps an existing buffer, for example a row-padded
// frame owned by another library. buf must be exactly height*stride bytes.
func NewBitmapFromBuffer(width, height, stride int, format fpdf.BitmapFormat, buf []byte) (*Bitmap, error) {
	if !format.Valid() {
		return nil, targetError("unknown bitmap format %d", int(format))
	}
	if width < 0 || height < 0 {
		return nil, targetError("negative bitmap size %dx%d", width, height)
	}
	if width > MaxBitmapDimension/format.BytesPerPixel() {
		return nil, targetError("bitmap width %d exceeds %d bytes per row", width, MaxBitmapDimension)
	}
	if err := checkGeometry(width, height, stride); err != nil {
		return nil, err
	}
	if minStride := width * format.BytesPerPixel(); stride < minStride {
		return nil, targetError("stride %d below minimum %d for %d %s pixels", stride, minStride, width, format)
	}
	if len(buf) != height*stride {
		return nil, targetError("buffer is %d bytes, want %d (%d rows of %d)", len(buf), height*stride, height, stride)
	}
	return &Bitmap{width: width, height: height, stride: stride, format: format, buf: buf}, nil
}

func (b *Bitmap) Width() int                { return b.width }
func (b *Bitmap) Height() int               { return b.height }
func (b *Bitmap) Stride() int               { return b.stride }
func (b *Bitmap) Format() fpdf.BitmapFormat { return b.format }

// Pix returns the underlying buffer. It aliases the bitmap's memory.
func (b *Bitmap) Pix() []byte { return b.buf }

// Fill paints every pixel with the 0xAARRGGBB color, converting it to the
// bitmap's format the way FPDFBitmap_FillRect does.
func (b *Bitmap) Fill(argb uint32) {
	px := encodePixel(argb, b.format)
	bpp := len(px)
	for y := 0; y < b.height; y++ {
		row := b.buf[y*b.stride : y*b.stride+b.width*bpp]
		for x := 0; x < len(row); x += bpp {
			copy(row[x:x+bpp], px)
		}
	}
}

// ARGB returns the pixel at (x, y) as 0xAARRGGBB. Formats without alpha
// report an opaque pixel; gray is expanded to all three channels.
func (b *Bitmap) ARGB(x, y int) uint32 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0
	}
	o := y*b.stride + x*b.format.BytesPerPixel()
	p := b.buf
	switch b.format {
	case fpdf.FormatGray:
		g := uint32(p[o])
		return 0xFF000000 | g<<16 | g<<8 | g
	case fpdf.FormatBGR, fpdf.FormatBGRx:
		return 0xFF000000 | uint32(p[o+2])<<16 | uint32(p[o+1])<<8 | uint32(p[o])
	default:
		return uint32(p[o+3])<<24 | uint32(p[o+2])<<16 | uint32(p[o+1])<<8 | uint32(p[o])
	}
}

// IsZero reports whether every byte of the buffer is zero.
func (b *Bitmap) IsZero() bool {
	for _, v := range b.buf {
		if v != 0 {
			return false
		}
	}
	return true
}

// ToImage copies the bitmap into an image.Image: *image.NRGBA for BGRA,
// *image.RGBA for BGR and BGRx, *image.Gray for gray.
func (b *Bitmap) ToImage() image.Image {
	r := image.Rect(0, 0, b.width, b.height)
	switch b.format {
	case fpdf.FormatGray:
		img := image.NewGray(r)
		for y := 0; y < b.height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.width], b.buf[y*b.stride:])
		}
		return img
	case fpdf.FormatBGRA:
		img := image.NewNRGBA(r)
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				c := b.ARGB(x, y)
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)})
			}
		}
		return img
	default:
		img := image.NewRGBA(r)
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				c := b.ARGB(x, y)
				img.SetRGBA(x, y, color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF})
			}
		}
		return img
	}
}

// encodePixel returns the in-memory bytes of argb in format.
func encodePixel(argb uint32, format fpdf.BitmapFormat) []byte {
	a, r, g, bl := byte(argb>>24), byte(argb>>16), byte(argb>>8), byte(argb)
	switch format {
	case fpdf.FormatGray:
		// Rec. 601 luma, as PDFium uses for gray bitmaps.
		return []byte{byte((uint32(r)*299 + uint32(g)*587 + uint32(bl)*114) / 1000)}
	case fpdf.FormatBGR:
		return []byte{bl, g, r}
	case fpdf.FormatBGRx:
		return []byte{bl, g, r, 0xFF}
	default:
		return []byte{bl, g, r, a}
	}
}
