package runner

import "time"

// Result holds the outcome of one launch. It is only built once the child
// process has terminated.
type Result struct {
	RunID      string        // unique identifier for this launch
	Executable string        // path that was launched
	ExitCode   int           // process exit code, -1 if killed by a signal
	Stdout     string        // captured stdout
	Stderr     string        // captured stderr
	Truncated  bool          // true if a stream exceeded MaxOutput
	StartedAt  time.Time     // when the child was spawned
	Duration   time.Duration // wall-clock time until the child terminated
}

// Success reports whether the child exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}
