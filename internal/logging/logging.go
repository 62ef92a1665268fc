// Package logging builds the structured logger every component in this
// engine logs through, satisfying interfaces.Logger.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a JSON slog.Logger rotated through lumberjack. dir empty
// means the current working directory; level is one of
// debug/info/warn/error.
func New(dir, level string) *slog.Logger {
	if dir == "" {
		dir = "."
	}

	w := &lumberjack.Logger{
		Filename: filepath.Join(dir, "airspace-cache.log"),
		MaxSize:  32, // MB
		MaxAge:   14,
		Compress: true,
	}

	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		os.Stderr.WriteString("invalid log level " + level + ", defaulting to info\n")
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

// Discard returns a logger that drops everything, for use in tests that
// don't care about log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
