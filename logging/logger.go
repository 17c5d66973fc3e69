package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go_pdfium/core"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel = "PDFIUM_LOG_LEVEL"
	EnvLogFile  = "PDFIUM_LOG_FILE"
	EnvLogDev   = "PDFIUM_LOG_DEV"
)

// Config describes where a Logger writes.
type Config struct {
	// Development selects the colored console format and defaults the
	// level to debug.
	Development bool
	// Level overrides the mode's default level when set.
	Level *zapcore.Level
	// FilePath, when non-empty, adds a rotating JSON file output.
	FilePath string
	File     FileWriterConfig
	// Console receives console output; nil means stderr so that stdout
	// stays free for command output.
	Console zapcore.WriteSyncer
}

// ConfigFromEnv reads PDFIUM_LOG_DEV, PDFIUM_LOG_LEVEL and PDFIUM_LOG_FILE.
func ConfigFromEnv() Config {
	cfg := Config{
		Development: core.ParseBoolEnv(EnvLogDev, false),
		FilePath:    core.GetEnvOrDefault(EnvLogFile, ""),
		File:        DefaultFileWriterConfig(),
	}
	if os.Getenv(EnvLogLevel) != "" {
		level := ParseLogLevel(EnvLogLevel, defaultLevel(cfg.Development))
		cfg.Level = &level
	}
	return cfg
}

func defaultLevel(isDev bool) zapcore.Level {
	if isDev {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Logger wraps zap.Logger and redacts password fields before they reach
// any output.
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
	cfg   Config
}

// NewLogger returns a logger in development or production mode that also
// writes to logFilePath when it is non-empty.
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	return NewLoggerWithConfig(Config{
		Development: isDevelopment,
		FilePath:    logFilePath,
		File:        DefaultFileWriterConfig(),
	})
}

// NewLoggerWithConfig builds a Logger from cfg.
//
// The log file's directory must exist; it is checked here because the
// rotating writer only opens the file on first write.
func NewLoggerWithConfig(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(defaultLevel(cfg.Development))
	if cfg.Level != nil {
		level.SetLevel(*cfg.Level)
	}

	console := cfg.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	var file zapcore.WriteSyncer
	if cfg.FilePath != "" {
		dir := filepath.Dir(cfg.FilePath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, core.ErrLogDirectory(dir)
		}
		file = NewFileWriterWithConfig(cfg.FilePath, cfg.File)
	}

	z := zap.New(NewMultiCore(level, console, file, cfg.Development),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)
	return &Logger{zap: z, sugar: z.Sugar(), level: level, cfg: cfg}, nil
}

// Sync flushes buffered entries. Call it before exit.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Infow logs loosely typed key-value pairs.
func (l *Logger) Infow(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, redactKeysAndValues(keysAndValues)...)
}

// Warnw logs loosely typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, redactKeysAndValues(keysAndValues)...)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return l.derive(l.zap.With(redactFields(fields)...))
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	return l.derive(l.zap.Named(name))
}

func (l *Logger) derive(z *zap.Logger) *Logger {
	return &Logger{zap: z, sugar: z.Sugar(), level: l.level, cfg: l.cfg}
}

// SetLevel changes the level of l and every logger derived from it.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Zap returns a plain zap.Logger over the same cores, for packages such as
// pdfium that accept one. It does not redact; those packages never log
// passwords.
func (l *Logger) Zap() *zap.Logger {
	return l.zap.WithOptions(zap.AddCallerSkip(-1))
}

func (l *Logger) IsDevelopment() bool { return l.cfg.Development }

func (l *Logger) LogFilePath() string { return l.cfg.FilePath }

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

func redactField(f zap.Field) zap.Field {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder)
	}
	if f.Type == zapcore.StringType {
		if r := RedactSensitiveData(f.String); r != f.String {
			return zap.String(f.Key, r)
		}
	}
	return f
}

func redactKeysAndValues(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			out[i+1] = RedactedPlaceholder
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = RedactSensitiveData(s)
		}
	}
	return out
}
