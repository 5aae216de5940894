// Package logger is the zap-backed logging surface shared by the emitter, the
// pretty printer and the command line. Stdout carries build output, so logs
// default to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogManager is the logging surface used by the emitter, the pretty printer and the CLI.
type LogManager interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	DebugF(format string, args ...any)
	InfoF(format string, args ...any)
	WarnF(format string, args ...any)
	ErrorF(format string, args ...any)

	With(keyValues ...any) LogManager
	Named(name string) LogManager
	Desugar() *zap.Logger

	Sync() error
	SetLogLevel(level string) error
}

// LoggerOptions for custom configuration
type LoggerOptions struct {
	Level    string
	Encoding string // "json" or "console"
	// Writer receives log lines. When nil, OutputPaths are opened instead.
	Writer       io.Writer
	OutputPaths  []string
	EnableCaller bool
	// TimeFormat is a time layout; "none" drops timestamps.
	TimeFormat string
	NoColor    bool
}

func (o LoggerOptions) encoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if o.NoColor || o.Encoding == "json" {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	switch o.TimeFormat {
	case "":
	case "none":
		cfg.TimeKey = ""
	default:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(o.TimeFormat)
	}
	if o.EnableCaller {
		cfg.CallerKey = "caller"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
	}
	if o.Encoding == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func (o LoggerOptions) sink() (zapcore.WriteSyncer, error) {
	if o.Writer != nil {
		return zapcore.AddSync(o.Writer), nil
	}
	paths := o.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	ws, _, err := zap.Open(paths...)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}
	return ws, nil
}

// NewLogger creates a new logger with options. An unknown level falls back to info.
func NewLogger(opts LoggerOptions) (LogManager, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}
	}

	ws, err := opts.sink()
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(opts.encoder(), ws, level)

	zopts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel), zap.ErrorOutput(ws)}
	if opts.EnableCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	return &logger{Log: zap.New(core, zopts...).Sugar(), atomicLevel: level}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) LogManager {
	return &logger{
		Log:         z.Sugar(),
		atomicLevel: zap.NewAtomicLevelAt(z.Level()),
	}
}

// NewNop returns a logger that discards everything. Library types default to it.
func NewNop() LogManager {
	return FromZap(zap.NewNop())
}

// MustNewDefaultLogger creates a console logger on stderr quickly
func MustNewDefaultLogger() LogManager {
	logger, err := NewLogger(LoggerOptions{Level: "info", Writer: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to init logger:", err)
		os.Exit(1)
	}
	return logger
}
