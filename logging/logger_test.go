package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go_pdfium/core"
)

// syncLogger calls Sync and ignores the "invalid argument" Linux returns
// for syncing a terminal.
func syncLogger(t testing.TB, logger *Logger) {
	t.Helper()
	if err := logger.Sync(); err != nil && !strings.Contains(err.Error(), "invalid argument") {
		t.Logf("Sync() warning: %v", err)
	}
}

func bufferLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg.Console = zapcore.AddSync(&buf)
	logger, err := NewLoggerWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewLoggerWithConfig() error = %v", err)
	}
	return logger, &buf
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_WritesJSONFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "render.log")

	logger, err := NewLogger(false, logPath)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if logger.LogFilePath() != logPath {
		t.Errorf("LogFilePath() = %q, want %q", logger.LogFilePath(), logPath)
	}

	logger.Info("page rendered", zap.Int("page", 3))
	syncLogger(t, logger)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	entries := decodeLines(t, content)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	for _, key := range []string{FieldMessage, FieldLevel, FieldTimestamp, FieldCaller} {
		if _, ok := entries[0][key]; !ok {
			t.Errorf("entry missing %q: %v", key, entries[0])
		}
	}
	if entries[0]["page"] != float64(3) {
		t.Errorf("page = %v, want 3", entries[0]["page"])
	}
}

func TestNewLogger_MissingDirectory(t *testing.T) {
	_, err := NewLogger(true, filepath.Join(t.TempDir(), "missing", "render.log"))
	if err == nil {
		t.Fatal("NewLogger() with a missing directory succeeded")
	}
	if code := core.GetErrorCode(err); code != core.ErrCodeLogDirectory {
		t.Errorf("error code = %q, want %q", code, core.ErrCodeLogDirectory)
	}
}

func TestLogger_Levels(t *testing.T) {
	warn := zapcore.WarnLevel
	tests := []struct {
		name      string
		cfg       Config
		wantDebug bool
		wantInfo  bool
	}{
		{"production", Config{}, false, true},
		{"development", Config{Development: true}, true, true},
		{"explicit warn", Config{Development: true, Level: &warn}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := bufferLogger(t, tt.cfg)
			logger.Debug("debug entry")
			logger.Info("info entry")
			logger.Warn("warn entry")

			out := buf.String()
			if got := strings.Contains(out, "debug entry"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info entry"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "warn entry") {
				t.Error("warn entry missing")
			}
		})
	}
}

func TestLogger_SetLevelAffectsChildren(t *testing.T) {
	logger, buf := bufferLogger(t, Config{})
	child := logger.Named("cli").With(zap.String("doc_id", "d1"))

	child.Debug("hidden")
	logger.SetLevel(zapcore.DebugLevel)
	child.Debug("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug entry logged at info level")
	}
	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0][FieldLogger] != "cli" || entries[0]["doc_id"] != "d1" {
		t.Errorf("child context lost: %v", entries[0])
	}
	if logger.Level() != zapcore.DebugLevel {
		t.Errorf("Level() = %v, want debug", logger.Level())
	}
}

func TestLogger_RedactsPasswords(t *testing.T) {
	logger, buf := bufferLogger(t, Config{})

	logger.Info("opening",
		zap.String("password", "hunter2"),
		zap.String("user_password", "hunter2"),
		zap.String("source", "report.pdf"),
		zap.String("cmdline", "pdfrender -in a.pdf -password hunter2"))
	logger.Infow("opening", "pdf_password", "hunter2", "pages", 3)
	logger.With(zap.String("password", "hunter2")).Warn("retry")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked into log output:\n%s", out)
	}
	if !strings.Contains(out, "report.pdf") {
		t.Error("non-sensitive field was redacted")
	}
	if got := strings.Count(out, RedactedPlaceholder); got != 5 {
		t.Errorf("found %d redactions, want 5:\n%s", got, out)
	}
}

func TestLogger_ZapSharesCores(t *testing.T) {
	logger, buf := bufferLogger(t, Config{})
	logger.Zap().Named("pdfium").Info("library initialized")

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 1 || entries[0][FieldLogger] != "pdfium" {
		t.Fatalf("entries = %v", entries)
	}
	caller, _ := entries[0][FieldCaller].(string)
	if !strings.HasPrefix(caller, "logging/logger_test.go") {
		t.Errorf("caller = %q, want this test file", caller)
	}
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDev, "true")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFile, filepath.Join(dir, "x.log"))

	cfg := ConfigFromEnv()
	if !cfg.Development {
		t.Error("Development = false, want true")
	}
	if cfg.Level == nil || *cfg.Level != zapcore.WarnLevel {
		t.Errorf("Level = %v, want warn", cfg.Level)
	}
	if cfg.FilePath != filepath.Join(dir, "x.log") {
		t.Errorf("FilePath = %q", cfg.FilePath)
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvLogDev, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFile, "")

	cfg := ConfigFromEnv()
	if cfg.Development || cfg.Level != nil || cfg.FilePath != "" {
		t.Errorf("ConfigFromEnv() = %+v, want zero defaults", cfg)
	}
	if cfg.File != DefaultFileWriterConfig() {
		t.Errorf("File = %+v, want defaults", cfg.File)
	}
}

func TestSync_NilLogger(t *testing.T) {
	var logger *Logger
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync() on nil logger = %v", err)
	}
}
