package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mvantol/fabricpush/internal/core/domain"
	"github.com/mvantol/fabricpush/internal/core/inventory"
	"github.com/mvantol/fabricpush/internal/shell/deploy"
	"github.com/mvantol/fabricpush/internal/shell/eapi"
	"github.com/mvantol/fabricpush/internal/shell/report"
)

// stringsFlag collects repeated -limit values.
type stringsFlag []string

func (s *stringsFlag) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// runDeploy resolves targets from the inventory and pushes
// configurations to the fleet.
func runDeploy(cfg *Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("deploy", flag.ContinueOnError)
	inventoryPath := fs.String("inventory", cfg.Inventory, "Path to inventory file")
	configsDir := fs.String("configs", cfg.ConfigsDir, "Directory holding <hostname>.cfg artifacts")
	dryRun := fs.Bool("dry-run", cfg.Deploy.DryRun, "Stage and diff but abort instead of committing")
	showDiff := fs.Bool("diff", cfg.Deploy.ShowDiff, "Print per-device configuration diffs")
	maxConcurrent := fs.Int("max-concurrent", cfg.Deploy.MaxConcurrent, "Maximum simultaneous device sessions")
	timeout := fs.Duration("timeout", cfg.Deploy.Timeout, "Per-operation device timeout")
	verify := fs.Bool("verify-ssl", cfg.Deploy.VerifySSL, "Verify device TLS certificates")
	var limit stringsFlag
	limit = append(limit, cfg.Deploy.Limit...)
	fs.Var(&limit, "limit", "Restrict to an inventory group (repeatable)")
	if err := fs.Parse(args); err != nil {
		return ExitConfigError
	}

	data, err := os.ReadFile(*inventoryPath)
	if err != nil {
		logger.Error("could not read inventory", "path", *inventoryPath, "error", err)
		return ExitConfigError
	}
	tree, err := inventory.Parse(data)
	if err != nil {
		logger.Error("could not parse inventory", "path", *inventoryPath, "error", err)
		return ExitConfigError
	}

	resolver := inventory.NewResolver(os.DirFS(*configsDir), *configsDir, logger)
	targets, err := resolver.Resolve(tree, inventory.Options{Limit: []string(limit)})
	if err != nil {
		// Fatal before any device is contacted.
		logger.Error("target resolution failed", "error", err)
		return ExitConfigError
	}
	logger.Info("resolved targets", "count", len(targets), "limit", []string(limit))

	factory := func(t domain.Target) deploy.Client {
		return eapi.NewClient(eapi.Config{
			Host:        t.Hostname,
			Address:     t.Address,
			Credentials: t.Credentials,
			Timeout:     *timeout,
			VerifySSL:   *verify,
		}, logger)
	}

	orch := deploy.New(factory, deploy.Options{
		MaxConcurrent: *maxConcurrent,
		DryRun:        *dryRun,
		ShowDiff:      *showDiff,
	}, logger)

	start := time.Now()
	results := orch.Deploy(context.Background(), targets)
	logger.Info("run complete", "duration", time.Since(start).Round(time.Millisecond))

	if err := report.Write(os.Stdout, results, *showDiff); err != nil {
		logger.Error("could not render report", "error", err)
	}
	return report.ExitCode(results)
}
