package log

import (
	"bytes"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LineWriter turns streamed process output into one log event per line.
// A carriage return ends a line too, so progress meters that redraw in place
// produce one short line per update. It also remembers the last few lines so callers can attach them to errors.
type LineWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
	keep   int

	mu   sync.Mutex
	buf  []byte
	tail []string
}

// NewLineWriter creates a writer that logs each complete line at level and
// retains up to keep trailing lines.
func NewLineWriter(logger zerolog.Logger, level zerolog.Level, keep int) *LineWriter {
	return &LineWriter{logger: logger, level: level, keep: keep}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

// Tail returns the retained trailing lines joined by newlines.
func (w *LineWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.tail, "\n")
}

func (w *LineWriter) emit(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	w.logger.WithLevel(w.level).Msg(line)
	if w.keep <= 0 {
		return
	}
	w.tail = append(w.tail, line)
	if len(w.tail) > w.keep {
		w.tail = w.tail[len(w.tail)-w.keep:]
	}
}
