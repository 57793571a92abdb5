// Package logger provides levelled structured logging for the examiner.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level represents the logging level.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO", "":
		return LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn, nil
	case "error", "ERROR":
		return LevelError, nil
	case "none", "NONE", "off", "OFF":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// levelNone sits above every slog level so nothing is emitted.
const levelNone = slog.Level(1 << 10)

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return levelNone
	}
}

// Format represents logger output format.
type Format string

const (
	// FormatText outputs human-readable key=value lines.
	FormatText Format = "text"
	// FormatJSON outputs one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q: must be %q or %q", s, FormatText, FormatJSON)
	}
}

// Option configures a Logger.
type Option func(*Logger)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(l *Logger) {
		l.format = f
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(l *Logger) {
		l.attrs = append(l.attrs, attrs...)
	}
}

// Logger provides logging functionality on top of log/slog.
type Logger struct {
	mu     sync.RWMutex
	level  *slog.LevelVar
	output io.Writer
	format Format
	attrs  []slog.Attr
	slog   *slog.Logger
}

var defaultLogger = New(os.Stderr, LevelInfo)

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// New creates a new logger.
func New(output io.Writer, level Level, opts ...Option) *Logger {
	l := &Logger{
		level:  new(slog.LevelVar),
		output: output,
		format: FormatText,
		attrs:  []slog.Attr{Component("examiner")},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.level.Set(level.slog())
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	hopts := &slog.HandlerOptions{Level: l.level}

	var h slog.Handler
	if l.format == FormatJSON {
		h = slog.NewJSONHandler(l.output, hopts)
	} else {
		h = slog.NewTextHandler(l.output, hopts)
	}
	if len(l.attrs) > 0 {
		h = h.WithAttrs(l.attrs)
	}
	l.slog = slog.New(h)
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slog())
}

// Enabled reports whether records at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return level != LevelNone && level.slog() >= l.level.Level()
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.slog
}

// With returns a logger that adds attrs to every record. The child shares
// the parent's level.
func (l *Logger) With(attrs ...slog.Attr) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &Logger{
		level:  l.level,
		output: l.output,
		format: l.format,
		attrs:  append(append([]slog.Attr{}, l.attrs...), attrs...),
	}
	child.rebuild()
	return child
}

func (l *Logger) log(level Level, msg string, attrs ...slog.Attr) {
	logger := l.Slog()
	logger.LogAttrs(context.Background(), level.slog(), msg, attrs...)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(LevelDebug, msg, attrs...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(LevelInfo, msg, attrs...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(LevelWarn, msg, attrs...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(LevelError, msg, attrs...)
}

// Package-level convenience functions.

// Debug logs a debug message using the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	defaultLogger.Debug(msg, attrs...)
}

// Info logs an info message using the default logger.
func Info(msg string, attrs ...slog.Attr) {
	defaultLogger.Info(msg, attrs...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	defaultLogger.Warn(msg, attrs...)
}

// Error logs an error message using the default logger.
func Error(msg string, attrs ...slog.Attr) {
	defaultLogger.Error(msg, attrs...)
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output of the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Disable disables all logging.
func Disable() {
	defaultLogger.SetLevel(LevelNone)
}
