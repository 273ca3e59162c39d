package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Status Tests
// =============================================================================

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusSkipped.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

// =============================================================================
// Summary Tests
// =============================================================================

func TestSummarize(t *testing.T) {
	results := []Result{
		SuccessResult("leaf1", true, "", 3, 1, time.Second),
		FailedResult("leaf2", "connection failed", time.Second),
		SkippedResult("leaf3", "no configuration file found"),
		SuccessResult("spine1", true, "", 0, 0, time.Second),
	}

	s := Summarize(results)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.True(t, s.AnyFailed())
}

func TestSummarize_NoFailures(t *testing.T) {
	s := Summarize([]Result{SuccessResult("leaf1", true, "", 0, 0, 0)})

	assert.False(t, s.AnyFailed())
}

// =============================================================================
// Result Constructor Tests
// =============================================================================

func TestSkippedResult_ZeroCounts(t *testing.T) {
	r := SkippedResult("leaf1", "no configuration file found")

	assert.Equal(t, StatusSkipped, r.Status)
	assert.Equal(t, 0, r.LinesAdded)
	assert.Equal(t, 0, r.LinesRemoved)
	assert.False(t, r.ChangesApplied)
}

func TestFailedResult_ZeroCounts(t *testing.T) {
	r := FailedResult("leaf1", "boom", 2*time.Second)

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.Equal(t, 0, r.LinesAdded)
	assert.Equal(t, 0, r.LinesRemoved)
}

// =============================================================================
// Identifier Tests
// =============================================================================

func TestSessionName_TimestampDerived(t *testing.T) {
	now := time.Unix(1700000000, 42)

	name := SessionName(now)

	assert.True(t, strings.HasPrefix(name, "fabricpush-"))
	assert.Contains(t, name, "1700000000")
}

func TestSessionName_UniquePerInstant(t *testing.T) {
	a := SessionName(time.Unix(1, 0))
	b := SessionName(time.Unix(1, 1))

	assert.NotEqual(t, a, b)
}

// =============================================================================
// Credentials Tests
// =============================================================================

func TestCredentials_StringRedactsPassword(t *testing.T) {
	c := Credentials{Username: "admin", Password: "hunter2"}

	s := c.String()

	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "admin")
	assert.Contains(t, s, "7")
}

func TestCredentials_LogValueRedactsPassword(t *testing.T) {
	c := Credentials{Username: "admin", Password: "hunter2"}

	v := c.LogValue().String()

	assert.NotContains(t, v, "hunter2")
}
