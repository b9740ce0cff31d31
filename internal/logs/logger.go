// Package logs builds the slog logger used by the mcpcall command.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level, format and destination of log output.
type Options struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string
	// Format is "json" or "text".
	Format string
	// File, when set, sends output to a size-rotated file instead of Output.
	File string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Rotation settings for file output.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 28
)

// Setup returns a logger for o and a closer for its output.
// The closer is a no-op unless logging to a file.
func Setup(o Options) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if o.Level != "" {
		if err := level.UnmarshalText([]byte(o.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var (
		writer io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	switch {
	case o.File != "":
		file := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		writer, closer = file, file
	case o.Output != nil:
		writer = o.Output
	}

	var handler slog.Handler
	switch o.Format {
	case "", "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("log format: unknown format %q", o.Format)
	}

	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
