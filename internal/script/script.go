// Package script executes the operator-supplied system scripts (health and
// usage probes) with a bounded timeout and parses their JSON output.
//
// Scripts come from the server configuration and run via sh -c, the same
// trust model as Makefiles or CI configuration: whoever can edit the config
// can already run arbitrary commands as this user.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	deckerrors "github.com/agentdeck/agentdeck/internal/errors"
)

// Default probe timeouts.
const (
	HealthTimeout = 10 * time.Second
	UsageTimeout  = 15 * time.Second
)

// Runner executes a shell command. The interface exists so tests can
// substitute a canned implementation.
type Runner interface {
	Run(ctx context.Context, command string) (stdout, stderr string, exitCode int, err error)
}

// ShellRunner implements Runner using sh -c.
type ShellRunner struct{}

// Run executes command through the shell, capturing both streams.
func (ShellRunner) Run(ctx context.Context, command string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}
	return stdout, stderr, exitCode, err
}

var _ Runner = ShellRunner{}

// Executor runs configured probe scripts and decodes their JSON stdout.
type Executor struct {
	runner Runner
	logger zerolog.Logger
}

// NewExecutor builds an Executor around the given runner.
func NewExecutor(runner Runner, logger zerolog.Logger) *Executor {
	return &Executor{runner: runner, logger: logger}
}

// RunJSON executes the script at path with the given timeout and decodes its
// stdout as a JSON object. Any failure (missing script, nonzero exit,
// timeout, unparseable output) returns ErrScriptFailed.
func (e *Executor) RunJSON(ctx context.Context, path string, timeout time.Duration) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, deckerrors.Wrap(deckerrors.ErrScriptFailed, "script not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, exitCode, err := e.runner.Run(runCtx, path)
	if runCtx.Err() != nil {
		e.logger.Warn().Str("script", path).Dur("timeout", timeout).Msg("script timed out")
		return nil, deckerrors.Wrapf(deckerrors.ErrScriptFailed, "script timed out after %s", timeout)
	}
	if err != nil {
		e.logger.Warn().Str("script", path).Int("exit_code", exitCode).Str("stderr", stderr).Msg("script failed")
		return nil, deckerrors.Wrapf(deckerrors.ErrScriptFailed, "exit code %d: %s", exitCode, strings.TrimSpace(stderr))
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		e.logger.Warn().Str("script", path).Err(err).Msg("script produced unparseable output")
		return nil, deckerrors.Wrap(deckerrors.ErrScriptFailed, "invalid JSON output")
	}
	return payload, nil
}
