// Package domain holds the core types for fleet configuration
// deployment: targets, credentials, per-device results, and the status
// state machine. Everything here is pure data with no I/O.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Deployment Status
// =============================================================================

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Terminal reports whether a status is final for an attempt.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// =============================================================================
// Result
// =============================================================================

// Result records the outcome of one target's deployment attempt.
// Exactly one Result exists per Target; it is created when the attempt
// finishes and never mutated afterwards.
type Result struct {
	Hostname       string
	Status         Status
	Diff           string
	Error          string
	ChangesApplied bool
	Duration       time.Duration
	LinesAdded     int
	LinesRemoved   int
}

// SuccessResult builds a terminal success result.
func SuccessResult(hostname string, changesApplied bool, diff string, added, removed int, dur time.Duration) Result {
	return Result{
		Hostname:       hostname,
		Status:         StatusSuccess,
		Diff:           diff,
		ChangesApplied: changesApplied,
		Duration:       dur,
		LinesAdded:     added,
		LinesRemoved:   removed,
	}
}

// FailedResult builds a terminal failure result carrying a
// human-readable message.
func FailedResult(hostname, message string, dur time.Duration) Result {
	return Result{
		Hostname: hostname,
		Status:   StatusFailed,
		Error:    message,
		Duration: dur,
	}
}

// SkippedResult builds a terminal skipped result.
func SkippedResult(hostname, reason string) Result {
	return Result{
		Hostname: hostname,
		Status:   StatusSkipped,
		Error:    reason,
	}
}

// =============================================================================
// Summary
// =============================================================================

// Summary is the fleet-wide rollup of a deployment run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Summarize counts results by terminal status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// AnyFailed reports whether at least one attempt failed. Callers use
// this to derive a non-zero process exit code.
func (s Summary) AnyFailed() bool {
	return s.Failed > 0
}

// =============================================================================
// Identifiers
// =============================================================================

// NewRunID generates a unique identifier for one deployment run, used
// to correlate log lines across targets.
func NewRunID() string {
	return uuid.New().String()
}

// SessionName generates the device-side session name for one attempt.
// Session names are timestamp-derived so that a stale session left by a
// crashed run is distinguishable from the current one.
func SessionName(now time.Time) string {
	return fmt.Sprintf("fabricpush-%d", now.UnixNano())
}
