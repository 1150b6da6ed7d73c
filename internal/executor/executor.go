// Package executor runs the video-compress CLI on behalf of the GUI.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"video-compressor/internal/presets"
)

// DefaultCommand is the executable name resolved from PATH.
const DefaultCommand = "video-compress"

// CommandLog captures one external command invocation result.
type CommandLog struct {
	Command  string        `json:"command"`
	Args     []string      `json:"args"`
	ExitCode int           `json:"exitCode"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

// ExecutionError reports a failed or unstartable CLI invocation.
type ExecutionError struct {
	CommandLog CommandLog `json:"commandLog"`
	Err        error      `json:"-"`
}

// Error returns the tool's stderr when it wrote any, otherwise the process error.
func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.CommandLog.Stderr); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s exited with code %d", e.CommandLog.Command, e.CommandLog.ExitCode)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, env []string, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code. env is
// appended to the parent environment.
func (r *execRunner) Run(ctx context.Context, env []string, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// CLI invokes the compression tool with a prepared argument list.
type CLI struct {
	path        string
	presetsFile string
	runner      commandRunner
	logger      zerolog.Logger
	now         func() time.Time
	onLog       func(CommandLog)
}

// New creates an executor for the given binary path; empty means DefaultCommand.
// presetsFile is handed to the tool through presets.FileEnv so it resolves
// the same catalog the caller loaded.
func New(path, presetsFile string, logger zerolog.Logger) *CLI {
	return NewForTests(path, presetsFile, &execRunner{}, logger)
}

// NewForTests creates an executor with an injected command runner.
func NewForTests(path, presetsFile string, runner commandRunner, logger zerolog.Logger) *CLI {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultCommand
	}
	return &CLI{path: path, presetsFile: presetsFile, runner: runner, logger: logger, now: time.Now}
}

// Path returns the executable this CLI spawns.
func (c *CLI) Path() string {
	return c.path
}

// OnCommandLog registers fn to receive every finished invocation.
func (c *CLI) OnCommandLog(fn func(CommandLog)) {
	c.onLog = fn
}

func (c *CLI) env() []string {
	if c.presetsFile == "" {
		return nil
	}
	return []string{presets.FileEnv + "=" + c.presetsFile}
}

// Run spawns the tool and blocks until it exits. It returns captured stdout on
// success and an *ExecutionError otherwise.
func (c *CLI) Run(ctx context.Context, args []string) (string, error) {
	start := c.now()
	c.logger.Info().Str("command", c.path).Strs("args", args).Msg("starting compression tool")

	res, err := c.runner.Run(ctx, c.env(), c.path, args...)
	log := CommandLog{
		Command:  c.path,
		Args:     append([]string(nil), args...),
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Duration: c.now().Sub(start),
	}
	if c.onLog != nil {
		c.onLog(log)
	}
	if err != nil {
		c.logger.Error().Err(err).
			Int("exit_code", log.ExitCode).
			Dur("duration", log.Duration).
			Str("stderr", strings.TrimSpace(log.Stderr)).
			Msg("compression tool failed")
		return "", &ExecutionError{CommandLog: log, Err: err}
	}

	c.logger.Info().Dur("duration", log.Duration).Msg("compression tool finished")
	return res.Stdout, nil
}
