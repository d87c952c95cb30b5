package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls construction of the zap backed logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Component is attached to every entry as the "component" field.
	Component string

	// Development switches to the human readable console encoder.
	Development bool

	// OutputPaths are zap sink URLs or paths. Empty means stdout.
	OutputPaths []string
}

// StdoutLogger implements Logger on top of zap and writes JSON lines to stdout.
type StdoutLogger struct {
	z *zap.Logger
}

// NewStdoutLogger creates an info-level JSON logger. component is optional and
// is included as a persistent field.
func NewStdoutLogger(component string) *StdoutLogger {
	l, err := NewLogger(Options{Component: component})
	if err != nil {
		// Options above are always valid; keep the constructor infallible.
		return &StdoutLogger{z: zap.NewNop()}
	}
	return l
}

// NewLogger builds a StdoutLogger from opts.
func NewLogger(opts Options) (*StdoutLogger, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	if opts.Component != "" {
		z = z.With(zap.String("component", opts.Component))
	}
	return &StdoutLogger{z: z}, nil
}

// FromZap adapts an existing zap logger.
func FromZap(z *zap.Logger) *StdoutLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &StdoutLogger{z: z}
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.z.Debug(msg, toZap(fields)...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.z.Info(msg, toZap(fields)...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.z.Warn(msg, toZap(fields)...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.z.Error(msg, toZap(fields)...)
}

func (s *StdoutLogger) With(fields ...Field) Logger {
	return &StdoutLogger{z: s.z.With(toZap(fields)...)}
}

// Sync flushes buffered entries.
func (s *StdoutLogger) Sync() error {
	return s.z.Sync()
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
