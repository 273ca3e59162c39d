package eapi

import (
	"context"
	"strings"
	"time"

	"github.com/mvantol/fabricpush/internal/core/domain"
)

// =============================================================================
// Configuration Session Protocol
// =============================================================================

// ApplyResult is the outcome of one configuration session.
type ApplyResult struct {
	Accepted bool
	Diff     string
}

// ApplyConfig stages the full configuration text in a named session on
// the device and commits it, or aborts it when dryRun is set. The
// session clears existing configuration first, making the operation a
// full replace rather than an incremental merge.
//
// The protocol runs in three batched round trips that share one session
// name; the session must be re-entered on every round trip because the
// device loses session context between batches. Every opened session
// reaches exactly one terminal commit or abort before this returns,
// whatever path is taken.
func (c *Client) ApplyConfig(ctx context.Context, text string, dryRun, wantDiff bool) (ApplyResult, error) {
	session := domain.SessionName(time.Now())
	enter := "configure session " + session

	// Phase A: open, clear, populate.
	cmds := append([]string{enter, "rollback clean-config"}, ConfigLines(text)...)
	if _, err := c.runCmds(ctx, cmds); err != nil {
		c.bestEffortAbort(ctx, session)
		return ApplyResult{}, c.rejectError(session, err)
	}
	c.logger.Debug("session populated", "session", session, "lines", len(cmds)-2)

	// Phase B: fetch the pending diff. Failure here degrades to an
	// empty diff; it never aborts the deployment.
	var diffText string
	if wantDiff {
		outputs, err := c.runCmds(ctx, []string{enter, "show session-config diffs"})
		if err != nil {
			c.logger.Warn("could not retrieve session diff", "session", session, "error", err)
		} else {
			diffText = outputs[1]
		}
	}

	// Phase C: finalize. Dry runs always abort, never commit.
	final := "commit"
	if dryRun {
		final = "abort"
	}
	if _, err := c.runCmds(ctx, []string{enter, final}); err != nil {
		c.bestEffortAbort(ctx, session)
		return ApplyResult{}, c.commitError(session, err)
	}
	c.logger.Info("session finalized", "session", session, "action", final)

	return ApplyResult{Accepted: true, Diff: diffText}, nil
}

// bestEffortAbort tries to terminate a session that an earlier failure
// may have left open. Its own failure is logged and swallowed: it must
// never mask the primary error already in flight.
func (c *Client) bestEffortAbort(ctx context.Context, session string) {
	if _, err := c.runCmds(ctx, []string{"configure session " + session, "abort"}); err != nil {
		c.logger.Warn("best-effort session abort failed", "session", session, "error", err)
	}
}

// rejectError wraps a populate-phase failure, keeping connection-level
// failures distinguishable from device line rejections.
func (c *Client) rejectError(session string, err error) error {
	switch err.(type) {
	case *ConnectError, *AuthError, *ProtocolError:
		return err
	}
	return &ConfigRejectedError{Host: c.cfg.Host, Session: session, Err: err}
}

// commitError wraps a finalize-phase failure.
func (c *Client) commitError(session string, err error) error {
	switch err.(type) {
	case *ConnectError, *AuthError, *ProtocolError:
		return err
	}
	return &CommitError{Host: c.cfg.Host, Session: session, Err: err}
}

// =============================================================================
// Config Text Filtering
// =============================================================================

// bareKeywords are commands the device rejects when they appear with no
// argument. Generated fragments occasionally contain such stubs; they
// are dropped instead of failing the whole session.
var bareKeywords = map[string]bool{
	"interface":   true,
	"vlan":        true,
	"description": true,
	"hostname":    true,
	"username":    true,
	"route-map":   true,
	"router":      true,
	"ip":          true,
	"ipv6":        true,
}

// ConfigLines splits configuration text into the command lines streamed
// into a session. Blank lines and bare argument-less keywords are
// skipped.
func ConfigLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if bareKeywords[trimmed] {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
