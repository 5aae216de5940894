package logger

import (
	"go.uber.org/zap"
)

// logger adapts a sugared zap logger to LogManager.
type logger struct {
	Log         *zap.SugaredLogger
	atomicLevel zap.AtomicLevel
}

func (l *logger) Debug(args ...any) { l.Log.Debug(args...) }
func (l *logger) Info(args ...any)  { l.Log.Info(args...) }
func (l *logger) Warn(args ...any)  { l.Log.Warn(args...) }
func (l *logger) Error(args ...any) { l.Log.Error(args...) }

func (l *logger) DebugF(format string, args ...any) { l.Log.Debugf(format, args...) }
func (l *logger) InfoF(format string, args ...any)  { l.Log.Infof(format, args...) }
func (l *logger) WarnF(format string, args ...any)  { l.Log.Warnf(format, args...) }
func (l *logger) ErrorF(format string, args ...any) { l.Log.Errorf(format, args...) }

func (l *logger) With(fields ...any) LogManager {
	return &logger{Log: l.Log.With(fields...), atomicLevel: l.atomicLevel}
}

func (l *logger) Named(name string) LogManager {
	return &logger{Log: l.Log.Named(name), atomicLevel: l.atomicLevel}
}

func (l *logger) Desugar() *zap.Logger { return l.Log.Desugar() }

// Sync flushes buffered entries. Syncing a terminal or pipe fails on some
// platforms; those errors are not reported.
func (l *logger) Sync() error {
	err := l.Log.Sync()
	if err != nil && isUnsyncable(err) {
		return nil
	}
	return err
}

// SetLogLevel changes the level of loggers built by NewLogger. Wrapped zap
// loggers keep the level of their core.
func (l *logger) SetLogLevel(level string) error {
	return l.atomicLevel.UnmarshalText([]byte(level))
}
