package softpdf

import "go_pdfium/fpdf"

// surface is the pixel memory behind an FPDF_BITMAP handle. It aliases the
// caller's buffer.
type surface struct {
	width, height int
	stride        int
	format        fpdf.BitmapFormat
	pix           []byte
}

// rgb is a device color with components in [0, 1].
type rgb struct {
	r, g, b float32
}

func (c rgb) luma() float32 {
	return 0.299*c.r + 0.587*c.g + 0.114*c.b
}

func (c rgb) gray() rgb {
	l := c.luma()
	return rgb{l, l, l}
}

// fillRect stores the 0xAARRGGBB color verbatim, without blending, clipped
// to the surface.
func (s *surface) fillRect(left, top, width, height int, argb uint32) {
	a, r, g, b := byte(argb>>24), byte(argb>>16), byte(argb>>8), byte(argb)
	bpp := s.format.BytesPerPixel()
	for y := max(top, 0); y < min(top+height, s.height); y++ {
		row := s.pix[y*s.stride:]
		for x := max(left, 0); x < min(left+width, s.width); x++ {
			o := x * bpp
			switch s.format {
			case fpdf.FormatGray:
				row[o] = byte((uint32(r)*299 + uint32(g)*587 + uint32(b)*114) / 1000)
			case fpdf.FormatBGR:
				row[o], row[o+1], row[o+2] = b, g, r
			case fpdf.FormatBGRx:
				row[o], row[o+1], row[o+2], row[o+3] = b, g, r, 0xFF
			default:
				row[o], row[o+1], row[o+2], row[o+3] = b, g, r, a
			}
		}
	}
}

// blend composites c with the given coverage-scaled alpha over the pixel
// at (x, y) using source-over. With swap set the color bytes are stored in
// R, G, B order.
func (s *surface) blend(x, y int, c rgb, alpha float32, swap bool) {
	if alpha <= 0 || x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	o := y*s.stride + x*s.format.BytesPerPixel()
	p := s.pix

	if s.format == fpdf.FormatGray {
		p[o] = mix(c.luma(), p[o], alpha)
		return
	}

	lo, hi := c.b, c.r
	if swap {
		lo, hi = c.r, c.b
	}
	if s.format != fpdf.FormatBGRA {
		p[o] = mix(lo, p[o], alpha)
		p[o+1] = mix(c.g, p[o+1], alpha)
		p[o+2] = mix(hi, p[o+2], alpha)
		return
	}

	// Non-premultiplied source-over against a destination with its own alpha.
	da := float32(p[o+3]) / 255
	oa := alpha + da*(1-alpha)
	if oa <= 0 {
		return
	}
	over := func(src float32, dst byte) byte {
		v := (src*alpha + float32(dst)/255*da*(1-alpha)) / oa
		return toByte(v)
	}
	p[o] = over(lo, p[o])
	p[o+1] = over(c.g, p[o+1])
	p[o+2] = over(hi, p[o+2])
	p[o+3] = toByte(oa)
}

func mix(src float32, dst byte, alpha float32) byte {
	return toByte(src*alpha + float32(dst)/255*(1-alpha))
}

func toByte(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
