package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"go_pdfium/core"
	"go_pdfium/logging"
)

// statusPrinter writes the per-page progress lines of the render command.
type statusPrinter struct {
	out     io.Writer
	header  *color.Color
	ok      *color.Color
	fail    *color.Color
	dim     *color.Color
	summary *color.Color
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{
		out:     out,
		header:  color.New(color.FgCyan, color.Bold),
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		dim:     color.New(color.FgHiBlack),
		summary: color.New(color.Bold),
	}
}

func (s *statusPrinter) document(path string, pages, selected int, engine string) {
	s.header.Fprintf(s.out, "%s", path)
	s.dim.Fprintf(s.out, " (%d pages, rendering %d, %s engine)\n", pages, selected, engine)
}

func (s *statusPrinter) page(m logging.RenderMetrics, path string, size int64) {
	s.ok.Fprint(s.out, "  [OK]   ")
	fmt.Fprintf(s.out, "page %d  %dx%d  %s", m.Page, m.Width, m.Height, path)
	s.dim.Fprintf(s.out, "  %s, %v", core.FormatBytes(size), m.Duration.Round(time.Millisecond))
	if m.Checksum != "" {
		s.dim.Fprintf(s.out, "  blake2b:%s", m.Checksum)
	}
	fmt.Fprintln(s.out)
}

func (s *statusPrinter) pageFailed(page int, err error) {
	s.fail.Fprint(s.out, "  [FAIL] ")
	fmt.Fprintf(s.out, "page %d: %v\n", page, err)
}

func (s *statusPrinter) done(rendered, failed int, d time.Duration) {
	if failed == 0 {
		s.summary.Fprintf(s.out, "%d pages rendered", rendered)
	} else {
		s.fail.Fprintf(s.out, "%d pages rendered, %d failed", rendered, failed)
	}
	s.dim.Fprintf(s.out, " in %v\n", d.Round(time.Millisecond))
}

func (s *statusPrinter) interrupted(rendered int) {
	s.fail.Fprintf(s.out, "interrupted after %d pages\n", rendered)
}
