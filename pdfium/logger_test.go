package pdfium

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go_pdfium/fpdf"
	"go_pdfium/fpdf/fpdftest"
)

func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestSetLogger_NilRestoresNop(t *testing.T) {
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() = nil")
	}
	if Logger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger is not silent")
	}
}

func TestLogging_Lifecycle(t *testing.T) {
	logs := observeLogs(t, zapcore.DebugLevel)

	engine := fpdftest.New()
	engine.AddDocument(letterData, letterSpec(1))
	lib := newTestLibrary(t, engine)
	doc := openLetter(t, lib)
	page := loadPage(t, doc, 0)

	if _, err := page.RenderNew(fpdf.FormatBGRA, DefaultRenderConfig()); err != nil {
		t.Fatal(err)
	}

	for _, msg := range []string{"library initialized", "document opened", "page loaded", "page rendered"} {
		entries := logs.FilterMessage(msg).All()
		if len(entries) != 1 {
			t.Errorf("%q logged %d times, want 1", msg, len(entries))
			continue
		}
		if entries[0].LoggerName != "pdfium" {
			t.Errorf("%q logger = %q, want pdfium", msg, entries[0].LoggerName)
		}
	}

	loaded := logs.FilterMessage("page loaded").All()
	if len(loaded) == 1 {
		fields := loaded[0].ContextMap()
		if fields["doc_id"] != doc.ID() {
			t.Errorf("doc_id = %v, want %s", fields["doc_id"], doc.ID())
		}
		if fields["width"] != 612.0 {
			t.Errorf("width = %v, want 612", fields["width"])
		}
	}
}

func TestLogging_Warnings(t *testing.T) {
	logs := observeLogs(t, zapcore.WarnLevel)

	engine := fpdftest.New()
	engine.AddDocument(letterData, fpdftest.DocumentSpec{
		Pages: []fpdftest.PageSpec{{Width: 100, Height: 100, FailRender: true}},
	})
	lib := newTestLibrary(t, engine)
	doc := openLetter(t, lib)
	page := loadPage(t, doc, 0)

	_, _ = lib.OpenBytes([]byte("junk"), "")
	_ = doc.Close()
	_, _ = page.RenderNew(fpdf.FormatBGRA, DefaultRenderConfig())

	for _, msg := range []string{"document open failed", "document close refused", "render failed"} {
		if n := logs.FilterMessage(msg).Len(); n != 1 {
			t.Errorf("%q logged %d times, want 1", msg, n)
		}
	}
	if n := logs.FilterLevelExact(zapcore.DebugLevel).Len(); n != 0 {
		t.Errorf("%d debug entries at warn level", n)
	}
}
