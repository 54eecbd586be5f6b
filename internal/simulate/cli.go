package simulate

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file. If logFile is
// empty, a timestamped filename is generated. The returned func closes the
// file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.InitWithOptions(logger.Options{Level: level, Output: io.MultiWriter(os.Stdout, file)}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Credit Scoring Simulator
========================

Generates catalog-valid applicants, submits them to a running scoring
service through the async endpoint, replays some submissions to check
idempotency and verifies the stored history against the decision policy.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -applicants int
        Number of applicants to generate and submit (default 200)
  -replays int
        Accepted submissions re-sent to check idempotency (default 10)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -seed int
        Generator seed (default 42)
  -reset
        Clear the history before submitting
  -timeout duration
        HTTP request timeout (default 30s)
  -drain duration
        Maximum wait for queued submissions (default 2m)
  -output string
        Output file for generated applicants
  -log string
        Log file (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -applicants 1000 -workers 16
  go run ./cmd/simulate -reset -url http://localhost:8080 -output applicants.json
`)
}
