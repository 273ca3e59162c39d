package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvantol/fabricpush/internal/core/domain"
)

func sampleResults() []domain.Result {
	return []domain.Result{
		domain.SuccessResult("spine1", true, "+ip routing\n", 1, 0, 1200*time.Millisecond),
		domain.FailedResult("leaf2", "leaf2: connection failed: dial tcp: timeout", 30*time.Second),
		domain.SkippedResult("leaf3", "no configuration file found"),
	}
}

func TestWrite_RendersTableAndSummary(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, sampleResults(), false))
	out := buf.String()

	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "spine1")
	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "SKIPPED")
	assert.Contains(t, out, "1 deployed, 1 failed, 1 skipped (of 3)")
	// Diff text suppressed without the flag.
	assert.NotContains(t, out, "+ip routing")
}

func TestWrite_ShowDiffAppendsSections(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, sampleResults(), true))
	out := buf.String()

	assert.Contains(t, out, "--- spine1 ---")
	assert.Contains(t, out, "+ip routing")
}

func TestWrite_RendersUnderTotalFailure(t *testing.T) {
	var buf bytes.Buffer
	results := []domain.Result{
		domain.FailedResult("leaf1", "boom", time.Second),
		domain.FailedResult("leaf2", "boom", time.Second),
	}

	require.NoError(t, Write(&buf, results, false))

	assert.Contains(t, buf.String(), "0 deployed, 2 failed, 0 skipped (of 2)")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(sampleResults()))
	assert.Equal(t, 0, ExitCode([]domain.Result{
		domain.SuccessResult("leaf1", true, "", 0, 0, 0),
		domain.SkippedResult("leaf2", "no configuration file found"),
	}))
	assert.Equal(t, 0, ExitCode(nil))
}
