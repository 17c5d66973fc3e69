// Command go_pdfium renders pages of a PDF document to PNG, BMP or TIFF
// files through the pdfium wrapper.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go_pdfium/core"
	"go_pdfium/core/validation"
	"go_pdfium/fpdf"
	"go_pdfium/logging"
	"go_pdfium/pdfium"
	"go_pdfium/shutdown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "Warning: could not load .env: %v\n", err)
	}

	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return core.ExitCodeSuccess
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeUsage
	}
	if opts.Version {
		printVersion(stdout, opts.Backend)
		return core.ExitCodeSuccess
	}

	logger, err := logging.NewLoggerWithConfig(logging.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	pdfium.SetLogger(logger.Zap())
	defer pdfium.SetLogger(nil)

	manager := shutdown.NewManager(logger.Zap())
	manager.Register("log-sync", shutdown.PriorityLogs, func(context.Context) error {
		logger.Sync()
		return nil
	})
	manager.Start()

	code := render(manager, opts, logger, stdout, stderr)
	if err := manager.Shutdown(); err != nil && code == core.ExitCodeSuccess {
		code = core.ExitCodeError
	}
	return code
}

// printVersion reports the build and the engine a render would use.
func printVersion(w io.Writer, backend string) {
	fmt.Fprintf(w, "go_pdfium %s\n", core.GetVersionInfo())

	cfg, err := pdfium.LoadEngineConfig()
	if err != nil {
		fmt.Fprintf(w, "engine: %v\n", err)
		return
	}
	if backend != "" {
		cfg.Backend = pdfium.Backend(backend)
	}
	if cfg.Backend == pdfium.BackendSoft {
		fmt.Fprintf(w, "engine: %s\n", cfg.Backend)
		return
	}
	path := fpdf.FindLibrary(cfg.LibraryPath)
	if _, err := os.Stat(path); err != nil {
		path += " (not found)"
	}
	fmt.Fprintf(w, "engine: %s, libpdfium %s\n", cfg.Backend, path)
}

// render opens the document and renders the selected pages. Every handle
// it acquires is registered with manager for release in ownership order.
func render(manager *shutdown.Manager, opts Options, logger *logging.Logger, stdout, stderr io.Writer) int {
	engineCfg, err := pdfium.LoadEngineConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	if opts.Backend != "" {
		engineCfg.Backend = pdfium.Backend(opts.Backend)
	}

	preflight := validation.NewValidationSuite("go_pdfium preflight").
		WithOutput(stdout).
		Add("Input file", validation.InputFileCheck(opts.Input)).
		Add("Output space", validation.OutputSpaceCheck(opts.OutDir, validation.MinFreeBytes())).
		Add("PDFium library", validation.EngineLibraryCheck(string(engineCfg.Backend), engineCfg.LibraryPath))
	result := preflight.Validate()
	if !result.Success {
		logger.Error("Preflight failed",
			zap.String("summary", result.Summary()),
			zap.Error(result.GetFirstError()))
		return core.ExitCodeError
	}
	logger.Debug("Preflight passed", zap.String("summary", result.Summary()))

	lib, err := pdfium.InitWithConfig(engineCfg)
	if err != nil {
		logger.Error("Failed to initialize engine", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	manager.Register("library", shutdown.PriorityLibrary, func(context.Context) error {
		return lib.Close()
	})

	doc, err := lib.OpenFile(opts.Input, opts.Password)
	if err != nil {
		logger.Error("Failed to open document",
			zap.String("path", opts.Input),
			zap.String("password", opts.Password),
			zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	manager.Register("document", shutdown.PriorityDocument, func(context.Context) error {
		return doc.Close()
	})

	count, err := doc.PageCount()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	pages, err := core.ParsePageRange(opts.Pages, count)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeUsage
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	manager.Register("partial-outputs", shutdown.PriorityOutputs,
		shutdown.CleanupPartialOutputs(logger.Zap(), opts.OutDir))

	r := &renderer{
		doc:      doc,
		cfg:      opts.Render.RenderConfig(engineCfg.RenderScale),
		profile:  opts.Render,
		outDir:   opts.OutDir,
		base:     outputBase(opts.Input),
		checksum: opts.Checksum,
		logger:   logger,
		metrics:  logging.NewMetricsLogger(logger),
		status:   newStatusPrinter(stdout),
	}
	manager.Register("pages", shutdown.PriorityPages, r.unloadCurrent)

	r.status.document(opts.Input, count, len(pages), lib.EngineName())
	start := time.Now()
	err = manager.WrapOperation(manager.Context(), "render", func(ctx context.Context) error {
		return r.renderPages(ctx, pages)
	})
	r.metrics.Summary(doc.ID())

	if errors.Is(err, context.Canceled) || errors.Is(err, shutdown.ErrTrackerClosed) {
		r.status.interrupted(r.rendered)
		return core.ExitCodeSIGINT
	}
	r.status.done(r.rendered, r.failed, time.Since(start))
	if err != nil {
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}
