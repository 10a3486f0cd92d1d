package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/launcher/internal/log"
)

// writeScript writes a shell script to a temp dir and returns its path.
func writeScript(t *testing.T, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func TestLaunch_Success(t *testing.T) {
	path := writeScript(t, "echo hello", 0o755)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Contains(t, res.Stdout, "hello")
	assert.Empty(t, res.Stderr)
	assert.Equal(t, path, res.Executable)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Truncated)
}

func TestLaunch_NonZeroExit(t *testing.T) {
	path := writeScript(t, "exit 7", 0o755)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
	assert.False(t, res.Success())
}

func TestLaunch_CapturesStderr(t *testing.T) {
	path := writeScript(t, "echo out; echo oops >&2; exit 3", 0o755)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestLaunch_KilledBySignal(t *testing.T) {
	path := writeScript(t, "kill -9 $$", 0o755)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestLaunch_MissingExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrLaunchFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var launchErr *Error
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, path, launchErr.Executable)
	assert.NotEmpty(t, launchErr.RunID)
	assert.Contains(t, err.Error(), path)
}

func TestLaunch_NotExecutable(t *testing.T) {
	path := writeScript(t, "echo hello", 0o644)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrLaunchFailure)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestLaunch_EmptyPath(t *testing.T) {
	_, err := (&Launcher{}).Launch(context.Background(), "")
	assert.ErrorIs(t, err, ErrLaunchFailure)
}

func TestLaunch_SequentialRunsAreIndependent(t *testing.T) {
	path := writeScript(t, "echo hello", 0o755)
	l := &Launcher{}

	first, err := l.Launch(context.Background(), path)
	require.NoError(t, err)
	second, err := l.Launch(context.Background(), path)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, "hello\n", first.Stdout)
	assert.Equal(t, "hello\n", second.Stdout)
}

func TestLaunch_BlocksUntilExit(t *testing.T) {
	path := writeScript(t, "sleep 0.3; echo done", 0o755)

	start := time.Now()
	res, err := (&Launcher{}).Launch(context.Background(), path)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "done\n", res.Stdout)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.GreaterOrEqual(t, res.Duration, 300*time.Millisecond)
}

func TestLaunch_Timeout(t *testing.T) {
	path := writeScript(t, "exec sleep 10", 0o755)
	l := &Launcher{Timeout: 100 * time.Millisecond}

	start := time.Now()
	res, err := l.Launch(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrLaunchTimeout)
	assert.NotErrorIs(t, err, ErrLaunchFailure)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLaunch_TimeoutNotReached(t *testing.T) {
	path := writeScript(t, "echo quick", 0o755)
	l := &Launcher{Timeout: 10 * time.Second}

	res, err := l.Launch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "quick\n", res.Stdout)
}

func TestLaunch_Canceled(t *testing.T) {
	path := writeScript(t, "exec sleep 10", 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res, err := (&Launcher{}).Launch(ctx, path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLaunchTimeout)
}

func TestLaunch_CanceledBeforeStart(t *testing.T) {
	path := writeScript(t, "echo hello", 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := (&Launcher{}).Launch(ctx, path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLaunchFailure)
}

func TestLaunch_OutputTruncation(t *testing.T) {
	path := writeScript(t, "head -c 200 /dev/zero", 0o755)
	l := &Launcher{MaxOutput: 100}

	res, err := l.Launch(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Stdout, 100)
}

func TestLaunch_UnlimitedOutputByDefault(t *testing.T) {
	const size = 2 << 20
	path := writeScript(t, "head -c 2097152 /dev/zero", 0o755)

	res, err := (&Launcher{}).Launch(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	assert.Len(t, res.Stdout, size)
}

func TestLaunch_Logs(t *testing.T) {
	var buf bytes.Buffer
	path := writeScript(t, "exit 7", 0o755)
	l := &Launcher{Logger: log.NewSlogLogger(slog.LevelDebug, &buf)}

	res, err := l.Launch(context.Background(), path)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "spawning executable")
	assert.Contains(t, out, "executable exited")
	assert.Contains(t, out, "exit_code=7")
	assert.Contains(t, out, "run_id="+res.RunID)
}

func TestLimitWriter(t *testing.T) {
	w := &limitWriter{limit: 5}

	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, w.truncated)

	n, err = w.Write([]byte("defgh"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, w.truncated)
	assert.Equal(t, "abcde", w.String())

	n, err = w.Write([]byte("more"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcde", w.String())
}

func TestLimitWriter_ExactFit(t *testing.T) {
	w := &limitWriter{limit: 3}
	_, _ = w.Write([]byte("abc"))
	assert.False(t, w.truncated)
	assert.Equal(t, "abc", w.String())
}

func TestError_Message(t *testing.T) {
	err := &Error{Executable: "/opt/game", Kind: ErrLaunchTimeout, Err: errors.New("killed after 1s")}
	assert.Equal(t, "launching /opt/game: launch timeout: killed after 1s", err.Error())

	err = &Error{Executable: "/opt/game", Kind: context.Canceled, Err: context.Canceled}
	assert.Equal(t, "launching /opt/game: context canceled", err.Error())
	assert.True(t, strings.HasPrefix(err.Error(), "launching"))
}
