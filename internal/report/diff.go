package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders the stdout and stderr differences between two reports.
// Identical streams are reported as such instead of being repeated.
func Diff(a, b *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s (%s, exit %d)\n", a.ID, a.Outcome, a.ExitCode)
	fmt.Fprintf(&sb, "+++ %s (%s, exit %d)\n", b.ID, b.Outcome, b.ExitCode)

	writeStreamDiff(&sb, "stdout", a.Stdout, b.Stdout)
	writeStreamDiff(&sb, "stderr", a.Stderr, b.Stderr)
	return sb.String()
}

// Compare diffs two completed runs. Runs that never ran to termination
// have no output to compare and are rejected. Identical runs collapse to
// a single line.
func Compare(a, b *Report) (string, error) {
	for _, r := range []*Report{a, b} {
		if err := r.Expect(Completed); err != nil {
			return "", err
		}
	}
	if Same(a, b) {
		return fmt.Sprintf("runs %s and %s are identical (exit %d)\n", a.ID, b.ID, a.ExitCode), nil
	}
	return Diff(a, b), nil
}

// Same reports whether both runs exited the same way with identical output.
func Same(a, b *Report) bool {
	return a.Outcome == b.Outcome && a.ExitCode == b.ExitCode &&
		a.Stdout == b.Stdout && a.Stderr == b.Stderr
}

func writeStreamDiff(sb *strings.Builder, name, a, b string) {
	if a == b {
		fmt.Fprintf(sb, "%s: identical\n", name)
		return
	}
	dmp := diffmatchpatch.New()
	// Compare whole lines.
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	fmt.Fprintf(sb, "%s:\n", name)
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteString("\n")
		}
	}
}
