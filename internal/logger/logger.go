// Package logger builds the structured logger used across twig. Output goes
// to a file because stdout carries the tree and the terminal belongs to the
// interactive session.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	CommandKey   = "command"
	RootKey      = "root"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

// Levels accepted by New. Debug maps to logr V(1).
const (
	LevelInfo  int8 = 0
	LevelDebug int8 = -1
)

var defaultNoopLogger = logr.Discard()

// Logger pairs the logr front end with the zap core it writes through, so
// callers can flush it on exit.
type Logger struct {
	logr.Logger
	zl   *zap.Logger
	file *os.File
}

// New opens (or creates) the log file at path and returns a JSON logger at
// the given level. An empty path yields a discard logger.
func New(path string, level int8) (*Logger, error) {
	if path == "" {
		return &Logger{Logger: defaultNoopLogger}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(f),
		zap.NewAtomicLevelAt(zapcore.Level(level)),
	)

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)

	return &Logger{Logger: zapr.NewLogger(zl), zl: zl, file: f}, nil
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.zl == nil {
		return nil
	}
	if err := l.zl.Sync(); err != nil && !isIgnorableSyncError(err) {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// WithLogger returns a context carrying log.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the logger stored in ctx, or a discard logger.
func FromContext(ctx context.Context) logr.Logger {
	if ctx == nil {
		return defaultNoopLogger
	}
	if log, err := logr.FromContext(ctx); err == nil {
		return log
	}
	return defaultNoopLogger
}
