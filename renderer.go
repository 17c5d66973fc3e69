package main

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"go_pdfium/core"
	"go_pdfium/logging"
	"go_pdfium/pdfium"
	"go_pdfium/shutdown"
)

// renderer writes the selected pages of one document to image files.
type renderer struct {
	doc     *pdfium.Document
	cfg     pdfium.RenderConfig
	profile Profile
	outDir  string
	base    string

	checksum bool
	logger   *logging.Logger
	metrics  *logging.MetricsLogger
	status   *statusPrinter

	mu      sync.Mutex
	current *pdfium.Page

	rendered int
	failed   int
}

// outputPath returns the final file name of the 0-based page index.
func (r *renderer) outputPath(index int) string {
	return filepath.Join(r.outDir, fmt.Sprintf("%s-p%03d.%s", r.base, index+1, r.profile.Format))
}

// renderPages renders pages in order. A failing page is reported and the
// rest still run; cancellation of ctx stops between pages.
func (r *renderer) renderPages(ctx context.Context, pages []int) error {
	for _, index := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.renderPage(index); err != nil {
			r.failed++
			r.status.pageFailed(index+1, err)
			r.logger.Warn("page failed",
				zap.String("doc_id", r.doc.ID()),
				zap.Int("page", index+1),
				zap.Error(err))
			continue
		}
		r.rendered++
	}
	if r.failed > 0 {
		return fmt.Errorf("%d of %d pages failed", r.failed, len(pages))
	}
	return nil
}

func (r *renderer) renderPage(index int) error {
	page, err := r.doc.LoadPage(index)
	if err != nil {
		return err
	}
	r.setCurrent(page)
	defer r.unloadCurrent(context.Background())

	timer := r.metrics.StartRender(r.doc.ID(), index+1)
	bitmap, err := page.RenderNew(r.profile.BitmapFormat(), r.cfg)
	if err != nil {
		return err
	}

	var sum string
	if r.checksum {
		rowBytes := bitmap.Width() * bitmap.Format().BytesPerPixel()
		if sum, err = core.PixelChecksum(bitmap.Pix(), rowBytes, bitmap.Stride(), bitmap.Height()); err != nil {
			return err
		}
	}

	path := r.outputPath(index)
	size, err := writeImage(path, r.profile.Format, bitmap.ToImage())
	if err != nil {
		return err
	}

	m := r.metrics.EndRender(timer, bitmap.Width(), bitmap.Height(), r.profile.Format, size, sum)
	r.status.page(m, path, size)
	return nil
}

func (r *renderer) setCurrent(p *pdfium.Page) {
	r.mu.Lock()
	r.current = p
	r.mu.Unlock()
}

// unloadCurrent releases the page being rendered, if any. It is also the
// pages step of the shutdown teardown.
func (r *renderer) unloadCurrent(context.Context) error {
	r.mu.Lock()
	p := r.current
	r.current = nil
	r.mu.Unlock()
	if p == nil {
		return nil
	}
	return p.Unload()
}

// writeImage encodes img to path through a ".part" file that is renamed
// into place only once fully written, and returns the file size.
func writeImage(path, format string, img image.Image) (int64, error) {
	part := path + shutdown.PartialSuffix
	f, err := os.Create(part)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(f)
	err = encodeImage(w, format, img)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(part)
		return 0, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	info, err := os.Stat(part)
	if err != nil {
		return 0, err
	}
	if err := os.Rename(part, path); err != nil {
		os.Remove(part)
		return 0, err
	}
	return info.Size(), nil
}

func encodeImage(w io.Writer, format string, img image.Image) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return core.ErrInvalidFormat(format)
	}
}

// outputBase derives output file names from the input file name.
func outputBase(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
