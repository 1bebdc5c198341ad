// Package logging builds the zap logger used across gradaudit.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to stderr at level in format. An unknown
// level falls back to info; an unknown format falls back to console.
func New(level, format string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if format == FormatJSON {
		cfg = zap.NewProductionConfig()
	}

	switch format {
	case FormatJSON:
		cfg.Encoding = "json"
	default:
		cfg.Encoding = "console"
	}

	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// NewWriter returns a logger writing to w, for commands that redirect their
// diagnostics.
func NewWriter(w io.Writer, level, format string) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	if format == FormatJSON {
		encCfg = zap.NewProductionEncoderConfig()
	}
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), ParseLevel(level)))
}

// ParseLevel parses a zap level name, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if level == "" {
		return zapcore.InfoLevel
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
