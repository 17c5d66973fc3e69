package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RenderMetrics describes one rendered page.
// It implements zapcore.ObjectMarshaler so it logs as a nested object.
type RenderMetrics struct {
	DocID    string
	Page     int // 1-based, as shown to users
	Width    int
	Height   int
	Format   string
	Bytes    int64
	Duration time.Duration
	// PixelsPerSecond is Width*Height / Duration, 0 for a zero duration.
	PixelsPerSecond float64
	Checksum        string
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (m RenderMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("doc_id", m.DocID)
	enc.AddInt("page", m.Page)
	enc.AddInt("width", m.Width)
	enc.AddInt("height", m.Height)
	enc.AddString("format", m.Format)
	enc.AddInt64("bytes", m.Bytes)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	enc.AddFloat64("pixels_per_second", m.PixelsPerSecond)
	if m.Checksum != "" {
		enc.AddString("checksum", m.Checksum)
	}
	return nil
}

// RenderFields wraps m as a "render" field.
func RenderFields(m RenderMetrics) zap.Field {
	return zap.Object("render", m)
}

// PixelsPerSecond returns the fill rate of a width x height render, or 0
// when d is not positive.
func PixelsPerSecond(width, height int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(width) * float64(height) / d.Seconds()
}

// MetricsLogger logs per-page render metrics for one document run.
type MetricsLogger struct {
	logger *Logger
	pages  int
	pixels int64
	total  time.Duration
}

// NewMetricsLogger returns a MetricsLogger writing to logger.
func NewMetricsLogger(logger *Logger) *MetricsLogger {
	return &MetricsLogger{logger: logger}
}

// RenderTimer times one page render. Create it with StartRender.
type RenderTimer struct {
	DocID string
	Page  int
	Start time.Time
}

// StartRender begins timing page of document docID.
func (ml *MetricsLogger) StartRender(docID string, page int) *RenderTimer {
	return &RenderTimer{DocID: docID, Page: page, Start: time.Now()}
}

// EndRender completes timer, logs the page at Info and returns its metrics.
func (ml *MetricsLogger) EndRender(timer *RenderTimer, width, height int, format string, bytes int64, checksum string) RenderMetrics {
	d := time.Since(timer.Start)
	m := RenderMetrics{
		DocID:           timer.DocID,
		Page:            timer.Page,
		Width:           width,
		Height:          height,
		Format:          format,
		Bytes:           bytes,
		Duration:        d,
		PixelsPerSecond: PixelsPerSecond(width, height, d),
		Checksum:        checksum,
	}
	ml.pages++
	ml.pixels += int64(width) * int64(height)
	ml.total += d
	ml.logger.Info("page rendered", RenderFields(m))
	return m
}

// Summary logs the totals of every EndRender so far.
func (ml *MetricsLogger) Summary(docID string) {
	ml.logger.Info("render summary",
		zap.String("doc_id", docID),
		zap.Int("pages", ml.pages),
		zap.Int64("pixels", ml.pixels),
		zap.Duration("duration", ml.total),
	)
}

// Pages returns how many renders were recorded.
func (ml *MetricsLogger) Pages() int {
	return ml.pages
}
