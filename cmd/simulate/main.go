package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/simulate"
)

// Default configuration constants.
const (
	defaultApplicants  = 200
	defaultReplays     = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultSeed        = 42
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		applicants = flag.Int("applicants", defaultApplicants, "Number of applicants to generate and submit")
		replays    = flag.Int("replays", defaultReplays, "Accepted submissions re-sent to check idempotency")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		seed       = flag.Int64("seed", defaultSeed, "Generator seed")
		reset      = flag.Bool("reset", false, "Clear the history before submitting")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		drain      = flag.Duration("drain", simulate.DefaultDrainTimeout, "Maximum wait for queued submissions")
		outputFile = flag.String("output", "", "Output file for generated applicants")
		logFile    = flag.String("log", "", "Log file (default: simulation_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:      *baseURL,
		Applicants:   *applicants,
		Workers:      max(*workers, 1),
		Replays:      *replays,
		Timeout:      *timeout,
		DrainTimeout: *drain,
		PollInterval: simulate.DefaultPollInterval,
		Seed:         *seed,
		Reset:        *reset,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		stop()
		_ = closeLog()
		os.Exit(1)
	}
}
