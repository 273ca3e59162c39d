// Package report renders deployment results for humans and derives the
// process exit code for automation.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mvantol/fabricpush/internal/core/domain"
)

// Write renders the per-device status table and summary line. The
// table is always rendered, under partial or total failure included.
// When showDiff is set, per-device diff sections follow the summary.
func Write(w io.Writer, results []domain.Result, showDiff bool) error {
	sorted := append([]domain.Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Hostname < sorted[j].Hostname })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tSTATUS\tDURATION\t+LINES\t-LINES\tDETAIL")
	for _, r := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Hostname,
			strings.ToUpper(string(r.Status)),
			r.Duration.Round(time.Millisecond),
			r.LinesAdded,
			r.LinesRemoved,
			r.Error,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := domain.Summarize(results)
	fmt.Fprintf(w, "\n%d deployed, %d failed, %d skipped (of %d)\n", s.Succeeded, s.Failed, s.Skipped, s.Total)

	if showDiff {
		for _, r := range sorted {
			if r.Diff == "" {
				continue
			}
			fmt.Fprintf(w, "\n--- %s ---\n%s", r.Hostname, r.Diff)
			if !strings.HasSuffix(r.Diff, "\n") {
				fmt.Fprintln(w)
			}
		}
	}
	return nil
}

// ExitCode derives the process exit code: non-zero iff at least one
// attempt failed.
func ExitCode(results []domain.Result) int {
	if domain.Summarize(results).AnyFailed() {
		return 1
	}
	return 0
}
