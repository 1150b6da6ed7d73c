// Package log configures the zerolog loggers shared by the GUI and the CLI.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config captures options for configuring the base logger.
type Config struct {
	Level    string    // optional level ("debug", "info", ...); falls back to LOG_LEVEL
	Output   io.Writer // optional writer; defaults to stderr
	FilePath string    // optional rotating log file written alongside Output
	Service  string    // attached to every entry
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Configure replaces the base logger. Later calls win.
func Configure(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	raw := strings.TrimSpace(cfg.Level)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = consoleWriter(os.Stderr)
	}
	if cfg.FilePath != "" {
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		})
	}

	service := cfg.Service
	if service == "" {
		service = "video-compressor"
	}

	logger := zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()

	mu.Lock()
	base = logger
	mu.Unlock()
	return logger
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// consoleWriter renders human-readable lines on terminals and JSON otherwise.
func consoleWriter(f *os.File) io.Writer {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return f
	}
	return zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
}
