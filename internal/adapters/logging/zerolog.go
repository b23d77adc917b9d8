package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// ZerologLogger adapts a zerolog.Logger to ports.Logger.
type ZerologLogger struct {
	zl    zerolog.Logger
	level ports.Level
}

// NewZerologLogger creates a zerolog-backed logger. When pretty is set the
// output goes through zerolog's ConsoleWriter.
func NewZerologLogger(w io.Writer, level ports.Level, pretty bool) *ZerologLogger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(zerologLevel(level))
	return &ZerologLogger{zl: zl, level: level}
}

// Debug logs a debug message.
func (l *ZerologLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	withFields(l.zl.Debug(), fields).Msg(msg)
}

// Info logs an informational message.
func (l *ZerologLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	withFields(l.zl.Info(), fields).Msg(msg)
}

// Warn logs a warning message.
func (l *ZerologLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	withFields(l.zl.Warn(), fields).Msg(msg)
}

// Error logs an error message.
func (l *ZerologLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	withFields(l.zl.Error(), fields).Msg(msg)
}

// With returns a child logger carrying the given fields.
func (l *ZerologLogger) With(fields ...ports.Field) ports.Logger {
	zctx := l.zl.With()
	for _, f := range fields {
		zctx = zctx.Interface(f.Key, jsonValue(f.Value))
	}
	return &ZerologLogger{zl: zctx.Logger(), level: l.level}
}

// Level returns the minimum log level.
func (l *ZerologLogger) Level() ports.Level {
	return l.level
}

// SetLevel sets the minimum log level.
func (l *ZerologLogger) SetLevel(level ports.Level) {
	l.level = level
	l.zl = l.zl.Level(zerologLevel(level))
}

func withFields(e *zerolog.Event, fields []ports.Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, jsonValue(f.Value))
	}
	return e
}

func zerologLevel(level ports.Level) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Format names accepted by New.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// New builds a logger for the given output format.
func New(format string, level ports.Level, w io.Writer) (ports.Logger, error) {
	switch format {
	case FormatText, "":
		return NewConsoleLogger(WithOutput(w), WithLevel(level)), nil
	case FormatJSON:
		return NewConsoleLogger(WithOutput(w), WithLevel(level), WithJSONFormat(true)), nil
	case FormatPretty:
		return NewZerologLogger(w, level, true), nil
	default:
		return nil, fmt.Errorf("unknown log format %q: must be one of text, json, pretty", format)
	}
}

var _ ports.Logger = (*ZerologLogger)(nil)
