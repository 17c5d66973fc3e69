package pdfium

import (
	"errors"
	"path/filepath"
	"testing"

	"go_pdfium/core"
	"go_pdfium/fpdf"
	"go_pdfium/softpdf"
)

func TestLoadEngineConfig(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		library  string
		scale    string
		want     EngineConfig
		wantCode string
	}{
		{"defaults", "", "", "", EngineConfig{Backend: BackendAuto, RenderScale: 1}, ""},
		{"soft", "soft", "", "", EngineConfig{Backend: BackendSoft, RenderScale: 1}, ""},
		{"native with path", "NATIVE", "/opt/pdfium/libpdfium.so", "2", EngineConfig{Backend: BackendNative, LibraryPath: "/opt/pdfium/libpdfium.so", RenderScale: 2}, ""},
		{"unknown backend", "gpu", "", "", EngineConfig{}, core.ErrCodeInvalidBackend},
		{"zero scale", "", "", "0", EngineConfig{}, core.ErrCodeInvalidScale},
		{"negative scale", "", "", "-1.5", EngineConfig{}, core.ErrCodeInvalidScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBackend, tt.backend)
			t.Setenv(fpdf.LibraryPathEnv, tt.library)
			t.Setenv(EnvRenderScale, tt.scale)

			got, err := LoadEngineConfig()
			if tt.wantCode != "" {
				if code := core.GetErrorCode(err); code != tt.wantCode {
					t.Fatalf("error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadEngineConfig() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LoadEngineConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewEngine(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "libpdfium-missing.so")

	t.Run("soft", func(t *testing.T) {
		engine, err := NewEngine(EngineConfig{Backend: BackendSoft})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := engine.(*softpdf.Engine); !ok {
			t.Errorf("engine = %T, want *softpdf.Engine", engine)
		}
	})

	t.Run("native missing library", func(t *testing.T) {
		_, err := NewEngine(EngineConfig{Backend: BackendNative, LibraryPath: missing})
		if !errors.Is(err, ErrLibraryUnavailable) {
			t.Fatalf("error = %v, want ErrLibraryUnavailable", err)
		}
		if code := core.GetErrorCode(err); code != core.ErrCodeLibraryUnavailable {
			t.Errorf("code = %q, want %q", code, core.ErrCodeLibraryUnavailable)
		}
	})

	t.Run("auto falls back", func(t *testing.T) {
		engine, err := NewEngine(EngineConfig{Backend: BackendAuto, LibraryPath: missing})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := engine.(*softpdf.Engine); !ok {
			t.Errorf("engine = %T, want *softpdf.Engine", engine)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewEngine(EngineConfig{Backend: "cuda"})
		if code := core.GetErrorCode(err); code != core.ErrCodeInvalidBackend {
			t.Errorf("error = %v, want code %s", err, core.ErrCodeInvalidBackend)
		}
	})
}

func TestInitWithConfig(t *testing.T) {
	lib, err := InitWithConfig(EngineConfig{Backend: BackendSoft})
	if err != nil {
		t.Fatalf("InitWithConfig() error = %v", err)
	}
	defer lib.Close()

	if _, ok := lib.engine.(*softpdf.Engine); !ok {
		t.Errorf("engine = %T, want *softpdf.Engine", lib.engine)
	}
	if got := lib.EngineName(); got != "softpdf" {
		t.Errorf("EngineName() = %q, want softpdf", got)
	}
	if _, err := InitWithConfig(EngineConfig{Backend: BackendSoft}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second InitWithConfig() error = %v, want ErrAlreadyInitialized", err)
	}
}
