// Package logging is the process-wide structured logger. The slog handler is
// built once by Init; every Logger derived from it carries a correlation id
// under the "uuid" key so the lines of one run can be grouped.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LevelCritical sits above slog.LevelError for failures that abort a run.
const LevelCritical = slog.Level(12)

// TimeLayout is the UTC timestamp layout of every record.
const TimeLayout = "2006-01-02 15:04:05"

// Config selects how records are rendered.
type Config struct {
	// Level is one of debug, info, warning, error, critical. Empty means debug.
	Level string
	// Format is "json" (default) or "text".
	Format string
}

// ParseLevel maps a level name to its slog level. "warn" is accepted as an
// alias of "warning".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical":
		return LevelCritical, nil
	}
	return 0, fmt.Errorf("logging: unknown level %q", s)
}

// LevelName renders a level the way it appears in output.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, LevelName(l))
		}
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			return slog.String(slog.TimeKey, t.UTC().Format(TimeLayout))
		}
	}
	return a
}

// NewHandler builds the handler described by cfg. An unknown level or format
// is an error.
func NewHandler(w io.Writer, cfg Config) (slog.Handler, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceAttr}
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	}
	return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
}

var (
	initOnce sync.Once
	root     *slog.Logger
	initErr  error
)

// Init configures the process logger on its first call and installs it as
// the slog default. Later calls return the same logger and ignore their
// arguments.
func Init(w io.Writer, cfg Config) (*slog.Logger, error) {
	initOnce.Do(func() {
		h, err := NewHandler(w, cfg)
		if err != nil {
			initErr = err
			return
		}
		root = slog.New(h)
		slog.SetDefault(root)
	})
	if initErr != nil {
		return nil, initErr
	}
	return root, nil
}

// Logger is a slog.Logger bound to one correlation id.
type Logger struct {
	base *slog.Logger
	id   string
}

// New binds base to correlationID, or to a fresh random UUID when it is
// empty. A nil base falls back to slog.Default.
func New(base *slog.Logger, correlationID string) *Logger {
	if base == nil {
		base = slog.Default()
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &Logger{base: base.With("uuid", correlationID), id: correlationID}
}

// ID returns the correlation id.
func (l *Logger) ID() string { return l.id }

// With returns a Logger with extra fields that keeps the same id.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...), id: l.id}
}

// Slog exposes the underlying logger for APIs that take a *slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.base }

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }

func (l *Logger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }

func (l *Logger) Warning(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }

func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) Critical(msg string, args ...any) { l.log(LevelCritical, msg, args) }

// log drops handler write errors; slog.Logger already discards them.
func (l *Logger) log(level slog.Level, msg string, args []any) {
	l.base.Log(context.Background(), level, msg, args...)
}
