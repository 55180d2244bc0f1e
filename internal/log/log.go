// Package log provides the application logger. Commands, errors and general
// information are written as JSON lines to separate files in the log folder.
package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured key/value pairs attached to a log entry
type Fields map[string]interface{}

// Config describes where log files live and the minimum level for the info log
type Config struct {
	Folder     string
	CommandLog string
	ErrorLog   string
	InfoLog    string
	Level      Level
}

// Logger writes command, error and info entries to their own files
type Logger struct {
	command *zap.Logger
	main    *zap.Logger
	level   zap.AtomicLevel
	files   []*os.File
}

type ctxFieldsKey struct{}

// WithFields returns a context whose fields are added to every entry logged with it
func WithFields(ctx context.Context, fields Fields) context.Context {
	merged := Fields{}
	if existing, ok := ctx.Value(ctxFieldsKey{}).(Fields); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

// NewLogger creates a new Logger instance with the given log folder and file names
func NewLogger(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	var files []*os.File
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(cfg.Folder, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}

	commandFile, err := open(cfg.CommandLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open command log file: %w", err)
	}
	errorFile, err := open(cfg.ErrorLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}
	infoFile, err := open(cfg.InfoLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open info log file: %w", err)
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	level := zap.NewAtomicLevelAt(cfg.Level.toZapLevel())

	commandCore := zapcore.NewCore(encoder, zapcore.AddSync(commandFile), zapcore.InfoLevel)
	errorCore := zapcore.NewCore(encoder.Clone(), zapcore.AddSync(errorFile), zapcore.ErrorLevel)
	infoCore := zapcore.NewCore(encoder.Clone(), zapcore.AddSync(infoFile), level)

	return &Logger{
		command: zap.New(commandCore),
		main:    zap.New(zapcore.NewTee(errorCore, infoCore)),
		level:   level,
		files:   files,
	}, nil
}

// NewNop returns a Logger that discards everything
func NewNop() *Logger {
	return &Logger{
		command: zap.NewNop(),
		main:    zap.NewNop(),
		level:   zap.NewAtomicLevel(),
	}
}

// NewWithCore builds a Logger on a caller-supplied core, used by tests to observe entries
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{
		command: zap.New(core),
		main:    zap.New(core),
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// Command records a user command in the command log
func (l *Logger) Command(ctx context.Context, msg string, fields Fields) {
	l.command.Info(msg, toZap(ctx, fields)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields Fields) {
	l.main.Debug(msg, toZap(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields Fields) {
	l.main.Info(msg, toZap(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields Fields) {
	l.main.Warn(msg, toZap(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields Fields) {
	l.main.Error(msg, toZap(ctx, fields)...)
}

// SetLevel changes the minimum level written to the info log
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.toZapLevel())
}

// Close flushes buffered entries and closes all log files
func (l *Logger) Close() error {
	_ = l.command.Sync()
	_ = l.main.Sync()
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close log file %s: %w", filepath.Base(f.Name()), err)
		}
	}
	return nil
}

// toZap merges context fields with entry fields. Keys are sorted so output is stable.
func toZap(ctx context.Context, fields Fields) []zap.Field {
	all := Fields{}
	if ctx != nil {
		if cf, ok := ctx.Value(ctxFieldsKey{}).(Fields); ok {
			for k, v := range cf {
				all[k] = v
			}
		}
	}
	for k, v := range fields {
		all[k] = v
	}
	if len(all) == 0 {
		return nil
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := all[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, all[k]))
	}
	return out
}
