package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_Identical(t *testing.T) {
	a := &Report{ID: "a", Outcome: Completed, Stdout: "hello\n"}
	b := &Report{ID: "b", Outcome: Completed, Stdout: "hello\n"}

	out := Diff(a, b)
	assert.Contains(t, out, "--- a (completed, exit 0)")
	assert.Contains(t, out, "+++ b (completed, exit 0)")
	assert.Contains(t, out, "stdout: identical")
	assert.Contains(t, out, "stderr: identical")
	assert.True(t, Same(a, b))
}

func TestCompare(t *testing.T) {
	a := &Report{ID: "a", Outcome: Completed, Stdout: "hello\n"}
	b := &Report{ID: "b", Outcome: Completed, Stdout: "hello\n"}
	c := &Report{ID: "c", Outcome: Completed, Stdout: "bye\n"}

	out, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, "runs a and b are identical (exit 0)\n", out)

	out, err = Compare(a, c)
	require.NoError(t, err)
	assert.Contains(t, out, "- hello\n")
	assert.Contains(t, out, "+ bye\n")
}

func TestCompare_RejectsRunsWithoutOutput(t *testing.T) {
	ok := &Report{ID: "ok", Outcome: Completed}
	failed := &Report{ID: "bad", Outcome: Failed}
	timedOut := &Report{ID: "slow", Outcome: TimedOut}

	_, err := Compare(ok, failed)
	assert.EqualError(t, err, "run bad failed, not completed")

	_, err = Compare(timedOut, ok)
	assert.EqualError(t, err, "run slow timeout, not completed")
}

func TestDiff_ChangedLines(t *testing.T) {
	a := &Report{ID: "a", Outcome: Completed, Stdout: "boot\nlevel 1\nbye\n"}
	b := &Report{ID: "b", Outcome: Completed, ExitCode: 7, Stdout: "boot\nlevel 2\nbye\n", Stderr: "crash\n"}

	out := Diff(a, b)
	assert.Contains(t, out, "stdout:\n")
	assert.Contains(t, out, "  boot\n")
	assert.Contains(t, out, "- level 1\n")
	assert.Contains(t, out, "+ level 2\n")
	assert.Contains(t, out, "  bye\n")
	assert.Contains(t, out, "+ crash\n")
	assert.Contains(t, out, "exit 7")
	assert.False(t, Same(a, b))
}
