// Package deploy runs a full-fleet configuration deployment: it fans
// out one protocol attempt per target under a concurrency bound and
// converges the per-device outcomes into a single result list.
package deploy

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mvantol/fabricpush/internal/core/diff"
	"github.com/mvantol/fabricpush/internal/core/domain"
	"github.com/mvantol/fabricpush/internal/shell/eapi"
)

// SkipReasonNoArtifact is the recorded reason for targets without a
// matched configuration file.
const SkipReasonNoArtifact = "no configuration file found"

// =============================================================================
// Protocol Seam
// =============================================================================

// Client is the per-attempt protocol surface the orchestrator needs.
// *eapi.Client satisfies it; tests substitute instrumented mocks.
type Client interface {
	Connect(ctx context.Context) error
	ApplyConfig(ctx context.Context, text string, dryRun, wantDiff bool) (eapi.ApplyResult, error)
	Close()
}

// ClientFactory builds one client per target attempt. Each attempt
// exclusively owns its client.
type ClientFactory func(target domain.Target) Client

// =============================================================================
// Orchestrator
// =============================================================================

// Options configures one deployment run.
type Options struct {
	// MaxConcurrent bounds simultaneously in-flight attempts.
	// Default 10.
	MaxConcurrent int

	// DryRun stages and diffs but always aborts instead of
	// committing.
	DryRun bool

	// ShowDiff retains per-device diff text on results. Line counts
	// are computed regardless.
	ShowDiff bool
}

// Orchestrator coordinates the fleet deployment. The concurrency
// limiter is the only state shared across attempts.
type Orchestrator struct {
	factory  ClientFactory
	opts     Options
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// New creates an orchestrator.
func New(factory ClientFactory, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		factory:  factory,
		opts:     opts,
		logger:   logger.With("component", "deploy", "run_id", domain.NewRunID()),
		readFile: os.ReadFile,
	}
}

// Deploy runs one attempt per target and returns exactly one result
// per target. Results arrive in completion order; per-target failures
// never affect sibling attempts.
func (o *Orchestrator) Deploy(ctx context.Context, targets []domain.Target) []domain.Result {
	o.logger.Info("starting deployment",
		"targets", len(targets),
		"max_concurrent", o.opts.MaxConcurrent,
		"dry_run", o.opts.DryRun,
	)

	resultCh := make(chan domain.Result, len(targets))
	sem := make(chan struct{}, o.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for _, target := range targets {
		if !target.HasArtifact() {
			o.logger.Warn("skipping target", "host", target.Hostname, "reason", SkipReasonNoArtifact)
			resultCh <- domain.SkippedResult(target.Hostname, SkipReasonNoArtifact)
			continue
		}

		wg.Add(1)
		go func(t domain.Target) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				resultCh <- domain.FailedResult(t.Hostname, ctx.Err().Error(), 0)
				return
			case sem <- struct{}{}:
				defer func() { <-sem }()
			}

			resultCh <- o.deployOne(ctx, t)
		}(target)
	}

	wg.Wait()
	close(resultCh)

	results := make([]domain.Result, 0, len(targets))
	for r := range resultCh {
		results = append(results, r)
	}

	summary := domain.Summarize(results)
	o.logger.Info("deployment finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return results
}

// deployOne runs the full protocol against a single target. The client
// is closed on every exit path.
func (o *Orchestrator) deployOne(ctx context.Context, target domain.Target) domain.Result {
	start := time.Now()
	logger := o.logger.With("host", target.Hostname)

	client := o.factory(target)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		logger.Error("connect failed", "error", err)
		return domain.FailedResult(target.Hostname, err.Error(), time.Since(start))
	}

	text, err := o.readFile(target.ArtifactPath)
	if err != nil {
		logger.Error("could not read configuration artifact", "path", target.ArtifactPath, "error", err)
		return domain.FailedResult(target.Hostname, "read configuration artifact: "+err.Error(), time.Since(start))
	}

	// The diff is always requested: line counts feed the summary even
	// when the diff text itself is suppressed.
	applied, err := client.ApplyConfig(ctx, string(text), o.opts.DryRun, true)
	if err != nil {
		logger.Error("apply failed", "error", err)
		return domain.FailedResult(target.Hostname, err.Error(), time.Since(start))
	}

	added, removed := diff.Stats(applied.Diff)
	diffText := ""
	if o.opts.ShowDiff {
		diffText = applied.Diff
	}
	changesApplied := applied.Accepted && !o.opts.DryRun

	logger.Info("deployed",
		"dry_run", o.opts.DryRun,
		"lines_added", added,
		"lines_removed", removed,
		"duration", time.Since(start),
	)
	return domain.SuccessResult(target.Hostname, changesApplied, diffText, added, removed, time.Since(start))
}
