// Package report persists launch outcomes so they can be listed, inspected
// and compared after the launcher has returned.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deixis/launcher/internal/runner"
)

// Outcome classifies how a launch ended.
type Outcome string

const (
	// Completed means the child ran to termination; see ExitCode.
	Completed Outcome = "completed"
	// Failed means the executable could not be spawned.
	Failed Outcome = "failed"
	// TimedOut means the child was killed after the configured timeout.
	TimedOut Outcome = "timeout"
	// Canceled means the caller gave up and the child was killed.
	Canceled Outcome = "canceled"
)

// Store persists and retrieves launch reports.
type Store interface {
	Save(r *Report) error
	Load(id string) (*Report, error)
}

// Report is the stored form of one launch.
type Report struct {
	ID         string    `json:"id"`
	Executable string    `json:"executable"`
	Outcome    Outcome   `json:"outcome"`
	ExitCode   int       `json:"exit_code"`
	Stdout     string    `json:"stdout,omitempty"`
	Stderr     string    `json:"stderr,omitempty"`
	Truncated  bool      `json:"truncated,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Expect returns an error if the report's Outcome does not match want.
func (r *Report) Expect(want Outcome) error {
	if r.Outcome != want {
		return fmt.Errorf("run %s %s, not %s", r.ID, r.Outcome, want)
	}
	return nil
}

// Duration returns the recorded run time.
func (r *Report) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// FromResult builds a report for a launch that ran to termination.
func FromResult(res *runner.Result) *Report {
	return &Report{
		ID:         res.RunID,
		Executable: res.Executable,
		Outcome:    Completed,
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		Truncated:  res.Truncated,
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// FromError builds a report for a launch that produced no result.
// started is when the launch was attempted.
func FromError(executable string, started time.Time, err error) *Report {
	r := &Report{
		ID:         uuid.New().String(),
		Executable: executable,
		Outcome:    Failed,
		ExitCode:   -1,
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
		Error:      err.Error(),
	}

	var launchErr *runner.Error
	if errors.As(err, &launchErr) && launchErr.RunID != "" {
		r.ID = launchErr.RunID
	}

	switch {
	case errors.Is(err, runner.ErrLaunchTimeout):
		r.Outcome = TimedOut
	case errors.Is(err, runner.ErrLaunchFailure):
		r.Outcome = Failed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Outcome = Canceled
	}
	return r
}
