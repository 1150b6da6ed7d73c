// Package compressor runs ffmpeg over individual files and fans a batch out
// over a bounded worker pool.
package compressor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	applog "video-compressor/internal/log"
)

// DefaultFFmpeg is the ffmpeg binary resolved from PATH.
const DefaultFFmpeg = "ffmpeg"

// stderrTailLines is how much ffmpeg output is attached to a failure.
const stderrTailLines = 8

// Error reports one failed ffmpeg run together with its last stderr lines.
type Error struct {
	Input string
	Tail  string
	Err   error
}

func (e *Error) Error() string {
	if e.Tail == "" {
		return fmt.Sprintf("ffmpeg %s: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s: %v: %s", e.Input, e.Err, e.Tail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compressor encodes files with ffmpeg.
type Compressor struct {
	ffmpeg  string
	logger  zerolog.Logger
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New returns a compressor invoking ffmpegPath, or DefaultFFmpeg when empty.
func New(ffmpegPath string, logger zerolog.Logger) *Compressor {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpeg
	}
	return &Compressor{ffmpeg: ffmpegPath, logger: logger, command: exec.CommandContext}
}

// Args builds the ffmpeg argument list for one file.
func Args(input, output string, ffArgs []string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", input}
	args = append(args, ffArgs...)
	return append(args, output)
}

// Compress encodes input into output with the given codec arguments. The
// output directory is created when missing.
func (c *Compressor) Compress(ctx context.Context, input, output string, ffArgs []string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	logger := c.logger.With().Str("input", input).Str("output", output).Logger()
	stderr := applog.NewLineWriter(logger, zerolog.DebugLevel, stderrTailLines)

	cmd := c.command(ctx, c.ffmpeg, Args(input, output, ffArgs)...) //nolint:gosec
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr

	logger.Info().Msg("compressing")
	err := cmd.Run()
	stderr.Flush()
	if err != nil {
		return &Error{Input: input, Tail: stderr.Tail(), Err: err}
	}
	logger.Info().Msg("compressed")
	return nil
}
