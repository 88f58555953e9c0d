package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger shared by the resume services.
// - printf-style Debugf/Infof/Warnf/Errorf/Fatalf for free text
// - key/value Debugw/Infow/Warnw/Errorw for structured fields
// - Init(level) and SetFormat("json"|"text") at startup

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slog has no fatal level; fatal records are emitted one step above error.
const slogFatal = slog.LevelError + 4

var (
	mu     sync.RWMutex
	level            = LevelInfo
	out    io.Writer = os.Stdout
	format           = "text"
	logger           = build()
)

func build() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug, // filtering happens in shouldLog
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok && lv == slogFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
	case "warn", "warning":
		level = LevelWarn
	case "error":
		level = LevelError
	case "fatal":
		level = LevelFatal
	default:
		level = LevelInfo
	}
}

// SetFormat switches between "text" (default) and "json" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(strings.TrimSpace(f), "json") {
		format = "json"
	} else {
		format = "text"
	}
	logger = build()
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = build()
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func toSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelFatal:
		return slogFatal
	}
	return slog.LevelInfo
}

func logf(l Level, format string, v ...interface{}) {
	if !shouldLog(l) {
		return
	}
	current().Log(context.Background(), toSlog(l), fmt.Sprintf(format, v...))
}

func logw(l Level, msg string, kv ...interface{}) {
	if !shouldLog(l) {
		return
	}
	current().Log(context.Background(), toSlog(l), msg, kv...)
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }

func Fatalf(format string, v ...interface{}) {
	current().Log(context.Background(), slogFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Structured variants: msg followed by alternating keys and values.
func Debugw(msg string, kv ...interface{}) { logw(LevelDebug, msg, kv...) }
func Infow(msg string, kv ...interface{})  { logw(LevelInfo, msg, kv...) }
func Warnw(msg string, kv ...interface{})  { logw(LevelWarn, msg, kv...) }
func Errorw(msg string, kv ...interface{}) { logw(LevelError, msg, kv...) }

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
