package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"go_pdfium/core"
	"go_pdfium/fpdf"
	"go_pdfium/pdfium"
)

// Output encodings.
const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

var outputFormats = []string{FormatPNG, FormatBMP, FormatTIFF}

// Options is the resolved command line.
type Options struct {
	Input    string
	Password string
	Pages    string
	OutDir   string
	Backend  string
	Checksum bool
	Version  bool

	Render Profile
}

// Profile holds the render settings a YAML profile may set. Explicit flags
// override the profile.
type Profile struct {
	Scale       float64 `yaml:"scale"`
	Rotate      int     `yaml:"rotate"`
	Format      string  `yaml:"format"`
	Annotations bool    `yaml:"annotations"`
	LCDText     bool    `yaml:"lcd"`
	Grayscale   bool    `yaml:"gray"`
	Background  string  `yaml:"background"`
}

func defaultProfile() Profile {
	return Profile{Format: FormatPNG, Annotations: true, Background: "ffffffff"}
}

// loadProfile reads a YAML render profile over the defaults.
func loadProfile(path string) (Profile, error) {
	p := defaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, core.ErrInvalidProfile(path, err.Error())
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, core.ErrInvalidProfile(path, err.Error())
	}
	return p, nil
}

// parseOptions parses args. Flag errors have already been reported to
// stderr when it returns.
func parseOptions(args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet("go_pdfium", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: go_pdfium -in file.pdf [flags]")
		fs.PrintDefaults()
	}

	var opts Options
	var profilePath string
	flagProfile := defaultProfile()

	fs.StringVar(&opts.Input, "in", "", "input PDF `file`")
	fs.StringVar(&opts.Password, "password", "", "document password")
	fs.StringVar(&opts.Pages, "pages", "", "1-based page `selection`, e.g. 1,3-5 (default all)")
	fs.StringVar(&opts.OutDir, "out", ".", "output `directory`")
	fs.StringVar(&opts.Backend, "backend", "", "engine: auto, native or soft (default $PDFIUM_BACKEND or auto)")
	fs.BoolVar(&opts.Checksum, "checksum", false, "print a BLAKE2b checksum of each page's pixels")
	fs.BoolVar(&opts.Version, "version", false, "print version and exit")
	fs.StringVar(&profilePath, "profile", "", "YAML render profile `file`")

	fs.Float64Var(&flagProfile.Scale, "scale", 0, "pixels per point (default $PDFIUM_RENDER_SCALE or 1)")
	fs.IntVar(&flagProfile.Rotate, "rotate", 0, "clockwise rotation: 0, 90, 180 or 270")
	fs.StringVar(&flagProfile.Format, "format", FormatPNG, "output format: png, bmp or tiff")
	fs.BoolVar(&flagProfile.Annotations, "annotations", true, "draw annotations")
	fs.BoolVar(&flagProfile.LCDText, "lcd", false, "LCD-optimized text")
	fs.BoolVar(&flagProfile.Grayscale, "gray", false, "render in grayscale")
	fs.StringVar(&flagProfile.Background, "background", "ffffffff", "background color as AARRGGBB hex")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Version {
		return opts, nil
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments")
	}
	if opts.Input == "" {
		fmt.Fprintln(stderr, "missing -in")
		fs.Usage()
		return opts, core.ErrMissingConfig("-in")
	}

	opts.Render = defaultProfile()
	if profilePath != "" {
		p, err := loadProfile(profilePath)
		if err != nil {
			return opts, err
		}
		opts.Render = p
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scale":
			opts.Render.Scale = flagProfile.Scale
		case "rotate":
			opts.Render.Rotate = flagProfile.Rotate
		case "format":
			opts.Render.Format = flagProfile.Format
		case "annotations":
			opts.Render.Annotations = flagProfile.Annotations
		case "lcd":
			opts.Render.LCDText = flagProfile.LCDText
		case "gray":
			opts.Render.Grayscale = flagProfile.Grayscale
		case "background":
			opts.Render.Background = flagProfile.Background
		}
	})
	opts.Render.Format = strings.ToLower(opts.Render.Format)

	if err := opts.Render.validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (p Profile) validate() error {
	if p.Scale < 0 {
		return core.ErrInvalidScale(fmt.Sprint(p.Scale))
	}
	if _, ok := fpdf.OrientationFromDegrees(p.Rotate); !ok {
		return core.ErrInvalidRotation(p.Rotate)
	}
	if !isOutputFormat(p.Format) {
		return core.ErrInvalidFormat(p.Format)
	}
	if _, err := parseARGB(p.Background); err != nil {
		return err
	}
	return nil
}

func isOutputFormat(f string) bool {
	for _, known := range outputFormats {
		if f == known {
			return true
		}
	}
	return false
}

// parseARGB parses "AARRGGBB" or "RRGGBB" hex, with an optional leading '#'.
func parseARGB(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return 0, fmt.Errorf("invalid background color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid background color %q", s)
	}
	if len(s) == 6 {
		v |= 0xFF000000
	}
	return uint32(v), nil
}

// RenderConfig builds the pdfium render configuration for the profile.
func (p Profile) RenderConfig(defaultScale float64) pdfium.RenderConfig {
	cfg := pdfium.DefaultRenderConfig()
	cfg.Flags = 0
	if p.Annotations {
		cfg.Flags |= fpdf.RenderAnnotations
	}
	if p.LCDText {
		cfg.Flags |= fpdf.RenderLCDText
	}
	if p.Grayscale {
		cfg.Flags |= fpdf.RenderGrayscale
	}
	cfg.Scale = p.Scale
	if cfg.Scale == 0 {
		cfg.Scale = defaultScale
	}
	cfg.Rotation, _ = fpdf.OrientationFromDegrees(p.Rotate)
	if bg, err := parseARGB(p.Background); err == nil {
		cfg.Background = bg
	}
	return cfg
}

// BitmapFormat is the pixel layout rendered for the profile.
func (p Profile) BitmapFormat() fpdf.BitmapFormat {
	if p.Grayscale {
		return fpdf.FormatGray
	}
	return fpdf.FormatBGRA
}
