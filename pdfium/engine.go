package pdfium

import (
	"fmt"

	"go.uber.org/zap"

	"go_pdfium/core"
	"go_pdfium/fpdf"
	"go_pdfium/softpdf"
)

// Backend selects which fpdf.Engine NewEngine builds.
type Backend string

const (
	// BackendAuto loads libpdfium and falls back to the pure-Go engine.
	BackendAuto Backend = "auto"
	// BackendNative requires libpdfium.
	BackendNative Backend = "native"
	// BackendSoft uses the pure-Go engine only.
	BackendSoft Backend = "soft"
)

// Environment variables read by LoadEngineConfig.
const (
	EnvBackend     = "PDFIUM_BACKEND"
	EnvRenderScale = "PDFIUM_RENDER_SCALE"
)

// EngineConfig chooses and locates the engine.
type EngineConfig struct {
	Backend Backend
	// LibraryPath overrides the libpdfium search; empty searches
	// PDFIUM_LIBRARY_PATH and the default locations.
	LibraryPath string
	// RenderScale is the default pixels-per-point for callers that do not
	// set one.
	RenderScale float64
}

// DefaultEngineConfig returns auto selection at 72 dpi.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Backend: BackendAuto, RenderScale: 1}
}

// LoadEngineConfig reads PDFIUM_BACKEND, PDFIUM_LIBRARY_PATH and
// PDFIUM_RENDER_SCALE.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	backend, ok := core.ParseEnumEnv(EnvBackend, string(BackendAuto),
		string(BackendAuto), string(BackendNative), string(BackendSoft))
	if !ok {
		return cfg, core.ErrInvalidBackend(backend, string(BackendAuto), string(BackendNative), string(BackendSoft))
	}
	cfg.Backend = Backend(backend)
	cfg.LibraryPath = core.GetEnvOrDefault(fpdf.LibraryPathEnv, "")

	scale := core.ParseFloat64Env(EnvRenderScale, cfg.RenderScale)
	if scale <= 0 {
		return cfg, core.ErrInvalidScale(core.GetEnvOrDefault(EnvRenderScale, ""))
	}
	cfg.RenderScale = scale
	return cfg, nil
}

// NewEngine builds the engine cfg selects. With BackendAuto a missing
// libpdfium is logged and the pure-Go engine is returned instead.
func NewEngine(cfg EngineConfig) (fpdf.Engine, error) {
	switch cfg.Backend {
	case BackendSoft:
		return softpdf.New(), nil
	case BackendNative, BackendAuto, "":
	default:
		return nil, core.ErrInvalidBackend(string(cfg.Backend), string(BackendAuto), string(BackendNative), string(BackendSoft))
	}

	path := fpdf.FindLibrary(cfg.LibraryPath)
	engine, err := fpdf.LoadNative(path)
	if err == nil {
		Logger().Debug("native engine loaded", zap.String("path", path))
		return engine, nil
	}
	if cfg.Backend == BackendNative {
		return nil, fmt.Errorf("%w: %w", ErrLibraryUnavailable, core.ErrLibraryUnavailable(path, err.Error()))
	}

	Logger().Warn("libpdfium not available, using pure-Go engine",
		zap.String("path", path),
		zap.Error(err))
	return softpdf.New(), nil
}

// InitWithConfig builds the engine cfg selects and initializes it.
func InitWithConfig(cfg EngineConfig) (*Library, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return Init(engine)
}
