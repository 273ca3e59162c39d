// Command fabricpush pushes rendered configuration files to a fleet of
// network devices and reports per-device outcomes.
package main

import (
	"flag"
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitDeployError = 1 // at least one device failed
	ExitConfigError = 2 // configuration or resolution problem
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("fabricpush", flag.ContinueOnError)
	configPath := global.String("config", "", "Path to config file")
	showVersion := global.Bool("version", false, "Print version and exit")
	if err := global.Parse(args); err != nil {
		return ExitConfigError
	}

	if *showVersion {
		fmt.Printf("fabricpush %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	logger := SetupLogger(cfg)

	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return ExitConfigError
	}

	switch rest[0] {
	case "deploy":
		return runDeploy(cfg, logger, rest[1:])
	case "mockdevice":
		return runMockDevice(cfg, logger, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		usage()
		return ExitConfigError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fabricpush [-config file] <command> [flags]

commands:
  deploy      push rendered configurations to the fleet
  mockdevice  run a simulated device for local testing`)
}
