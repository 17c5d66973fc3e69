package pdfium

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"go_pdfium/fpdf"
)

// Render draws the page into bmp.
//
// The target is validated first; an empty bitmap, an invalid rotation or
// scale, or a region that is empty or reaches outside the bitmap fails with
// ErrInvalidRenderTarget before the engine is touched.
//
// The native work (wrapping the buffer, painting the background, drawing,
// releasing the native bitmap) then happens within a single acquisition of
// the engine gate, so concurrent renders never interleave.
//
// When the engine reports a failure, Render returns ErrRender and the whole
// bitmap buffer is zero-filled before the gate is released: a failed render
// never leaves partial output behind.
func (p *Page) Render(bmp *Bitmap, cfg RenderConfig) error {
	region, err := p.resolveRegion(bmp, cfg)
	if err != nil {
		Logger().Debug("render target rejected",
			zap.String("doc_id", p.doc.id),
			zap.Int("page", p.index),
			zap.Error(err))
		return err
	}

	start := time.Now()
	err = engineGate.withLock(func() error {
		if p.handle == 0 {
			return lifetimeError("render", "page")
		}
		return p.renderLocked(bmp, region, cfg)
	})
	if err != nil {
		if errors.Is(err, ErrRender) {
			Logger().Warn("render failed",
				zap.String("doc_id", p.doc.id),
				zap.Int("page", p.index),
				zap.Error(err))
		}
		return err
	}

	Logger().Debug("page rendered",
		zap.String("doc_id", p.doc.id),
		zap.Int("page", p.index),
		zap.Stringer("region", region),
		zap.Int("rotation", cfg.Rotation.Degrees()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// renderLocked runs with the engine gate held.
func (p *Page) renderLocked(bmp *Bitmap, region Region, cfg RenderConfig) error {
	engine := p.doc.lib.engine
	fail := func(msg string) error {
		code := engine.GetLastError()
		clear(bmp.buf)
		return &Error{Op: "render", Code: code, Message: msg, Err: ErrRender}
	}

	handle := engine.BitmapCreateEx(bmp.width, bmp.height, bmp.format, bmp.buf, bmp.stride)
	if handle == 0 {
		return fail("cannot create native bitmap")
	}
	defer engine.BitmapDestroy(handle)

	if w, h := engine.BitmapGetWidth(handle), engine.BitmapGetHeight(handle); w != bmp.width || h != bmp.height {
		return fail("native bitmap size does not match buffer")
	}
	if !cfg.NoFill {
		if !engine.BitmapFillRect(handle, region.X, region.Y, region.Width, region.Height, cfg.Background) {
			return fail("cannot paint background")
		}
	}
	if !engine.RenderPageBitmap(handle, p.handle, region.X, region.Y, region.Width, region.Height, cfg.Rotation, cfg.Flags) {
		return fail("engine could not draw the page")
	}
	return nil
}

// resolveRegion validates the target and picks the device region.
func (p *Page) resolveRegion(bmp *Bitmap, cfg RenderConfig) (Region, error) {
	if bmp == nil {
		return Region{}, targetError("nil bitmap")
	}
	if bmp.width <= 0 || bmp.height <= 0 {
		return Region{}, targetError("bitmap is %dx%d", bmp.width, bmp.height)
	}
	if !bmp.format.Valid() || len(bmp.buf) != bmp.height*bmp.stride {
		return Region{}, targetError("bitmap buffer does not match its geometry")
	}
	if !cfg.Rotation.Valid() {
		return Region{}, targetError("invalid rotation %d", int(cfg.Rotation))
	}
	if math.IsNaN(cfg.Scale) || math.IsInf(cfg.Scale, 0) || cfg.Scale < 0 {
		return Region{}, targetError("invalid scale %v", cfg.Scale)
	}

	var r Region
	switch {
	case cfg.Region != nil:
		r = *cfg.Region
	case cfg.Scale > 0:
		w, h, err := p.scaledSize(cfg.Scale, cfg.Rotation)
		if err != nil {
			return Region{}, err
		}
		r = Region{Width: w, Height: h}
	default:
		r = Region{Width: bmp.width, Height: bmp.height}
	}

	if r.Width <= 0 || r.Height <= 0 {
		return Region{}, targetError("empty region %s", r)
	}
	if r.X < 0 || r.Y < 0 || r.X > bmp.width-r.Width || r.Y > bmp.height-r.Height {
		return Region{}, targetError("region %s outside %dx%d bitmap", r, bmp.width, bmp.height)
	}
	return r, nil
}

// RenderNew allocates a bitmap sized for the page at cfg.Scale (1 when
// unset), rotated by cfg.Rotation, and renders into it. An explicit
// cfg.Region must fit that bitmap.
func (p *Page) RenderNew(format fpdf.BitmapFormat, cfg RenderConfig) (*Bitmap, error) {
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	if math.IsNaN(cfg.Scale) || math.IsInf(cfg.Scale, 0) || cfg.Scale < 0 {
		return nil, targetError("invalid scale %v", cfg.Scale)
	}
	w, h, err := p.scaledSize(cfg.Scale, cfg.Rotation)
	if err != nil {
		return nil, err
	}
	bmp, err := NewBitmap(w, h, format)
	if err != nil {
		return nil, err
	}
	if err := p.Render(bmp, cfg); err != nil {
		return nil, err
	}
	return bmp, nil
}
