package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the client logs.
type Options struct {
	Dir   string
	Level string
	JSON  bool
}

// New builds the application logger. Logs go to a rotating file when Dir is
// set and writable, otherwise to stderr. The returned closer flushes the file.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		writer io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			rotator := &lumberjack.Logger{
				Filename:   filepath.Join(dir, "lifecoo.log"),
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			}
			writer = rotator
			closer = rotator
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(writer, handlerOpts)), closer
	}
	return slog.New(slog.NewTextHandler(writer, handlerOpts)), closer
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
