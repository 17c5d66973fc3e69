package logging

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	z := zap.New(core)
	return &Logger{zap: z, sugar: z.Sugar(), level: zap.NewAtomicLevel()}, logs
}

func TestPixelsPerSecond(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		d             time.Duration
		want          float64
	}{
		{"one second", 612, 792, time.Second, 612 * 792},
		{"half second", 100, 100, 500 * time.Millisecond, 20000},
		{"zero duration", 100, 100, 0, 0},
		{"negative duration", 100, 100, -time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelsPerSecond(tt.width, tt.height, tt.d); got != tt.want {
				t.Errorf("PixelsPerSecond() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetricsLogger_EndRender(t *testing.T) {
	logger, logs := observedLogger(t)
	ml := NewMetricsLogger(logger)

	timer := ml.StartRender("doc-1", 2)
	m := ml.EndRender(timer, 612, 792, "png", 12345, "abcd")

	if m.DocID != "doc-1" || m.Page != 2 || m.Width != 612 || m.Height != 792 || m.Checksum != "abcd" {
		t.Errorf("EndRender() = %+v", m)
	}
	if m.Duration < 0 {
		t.Errorf("Duration = %v", m.Duration)
	}

	entries := logs.FilterMessage("page rendered").All()
	if len(entries) != 1 {
		t.Fatalf("got %d page entries, want 1", len(entries))
	}
	render, ok := entries[0].ContextMap()["render"].(map[string]any)
	if !ok {
		t.Fatalf("render field = %#v", entries[0].ContextMap()["render"])
	}
	if render["doc_id"] != "doc-1" || render["format"] != "png" || render["checksum"] != "abcd" {
		t.Errorf("render object = %v", render)
	}
}

func TestMetricsLogger_Summary(t *testing.T) {
	logger, logs := observedLogger(t)
	ml := NewMetricsLogger(logger)
	for page := 1; page <= 3; page++ {
		ml.EndRender(ml.StartRender("doc-1", page), 10, 20, "bmp", 800, "")
	}
	ml.Summary("doc-1")

	if ml.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", ml.Pages())
	}
	entries := logs.FilterMessage("render summary").All()
	if len(entries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["pages"] != int64(3) || ctx["pixels"] != int64(600) {
		t.Errorf("summary = %v", ctx)
	}
}

func TestRenderMetrics_OmitsEmptyChecksum(t *testing.T) {
	logger, logs := observedLogger(t)
	logger.Info("x", RenderFields(RenderMetrics{DocID: "d"}))

	render := logs.All()[0].ContextMap()["render"].(map[string]any)
	if _, ok := render["checksum"]; ok {
		t.Errorf("empty checksum logged: %v", render)
	}
}
