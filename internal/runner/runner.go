// Package runner launches an executable as a child process, waits for it
// to terminate, and captures what it wrote to stdout and stderr.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/deixis/launcher/internal/log"
)

// DefaultWaitDelay bounds how long Launch keeps reading output pipes once
// the child has exited or been killed.
const DefaultWaitDelay = 5 * time.Second

// Launcher runs executables synchronously.
// The zero value applies no timeout and captures output without limit.
type Launcher struct {
	Timeout   time.Duration // 0 disables the timeout
	MaxOutput int           // bytes kept per stream, 0 keeps everything
	WaitDelay time.Duration // 0 uses DefaultWaitDelay
	Logger    log.Logger    // nil discards
}

// Launch runs the executable at path with no arguments and no stdin, using
// the current environment and working directory. It blocks until the child
// terminates.
//
// A non-zero exit status is not an error; inspect Result.ExitCode. The path
// is handed to the operating system as is, so a missing or non-executable
// file surfaces as an *Error of kind ErrLaunchFailure.
func (l *Launcher) Launch(ctx context.Context, path string) (*Result, error) {
	logger := l.logger()
	runID := uuid.New().String()

	runCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, path)
	cmd.WaitDelay = l.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	stdout := &limitWriter{limit: l.MaxOutput}
	stderr := &limitWriter{limit: l.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debug("spawning executable", "run_id", runID, "executable", path)

	started := time.Now()
	if err := cmd.Start(); err != nil {
		kind := ErrLaunchFailure
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The caller gave up before the child could start.
			kind = ctxErr
		}
		logger.Error("spawn failed", "run_id", runID, "executable", path, "error", err)
		return nil, &Error{RunID: runID, Executable: path, Kind: kind, Err: err}
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(started)

	if waitErr != nil && runCtx.Err() != nil {
		kind, cause := ErrLaunchTimeout, error(fmt.Errorf("killed after %s", l.Timeout))
		if ctx.Err() != nil {
			kind, cause = ctx.Err(), context.Cause(ctx)
		}
		logger.Error("executable killed", "run_id", runID, "executable", path, "reason", kind, "duration", elapsed)
		return nil, &Error{RunID: runID, Executable: path, Kind: kind, Err: cause}
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// The child exited but something it spawned kept the pipes open.
		logger.Warn("output pipes left open after exit", "run_id", runID, "executable", path)
	default:
		logger.Error("waiting for executable", "run_id", runID, "executable", path, "error", waitErr)
		return nil, &Error{RunID: runID, Executable: path, Kind: ErrLaunchFailure, Err: waitErr}
	}

	res := &Result{
		RunID:      runID,
		Executable: path,
		ExitCode:   cmd.ProcessState.ExitCode(),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Truncated:  stdout.truncated || stderr.truncated,
		StartedAt:  started,
		Duration:   elapsed,
	}
	logger.Info("executable exited",
		"run_id", runID,
		"executable", path,
		"exit_code", res.ExitCode,
		"duration", elapsed,
		"truncated", res.Truncated,
	)
	return res, nil
}

func (l *Launcher) logger() log.Logger {
	if l.Logger == nil {
		return log.Discard()
	}
	return l.Logger
}

// limitWriter buffers up to limit bytes and silently discards the rest.
// A limit of 0 or less buffers everything.
type limitWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			w.truncated = true
		}
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		w.truncated = true
		return len(p), nil
	}
	return w.buf.Write(p)
}

func (w *limitWriter) String() string {
	return w.buf.String()
}
