package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete simulation against the configured service and
// returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting scoring simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("applicants", cfg.Applicants),
		logger.Int("workers", cfg.Workers),
		logger.Int("replays", cfg.Replays),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("reset", cfg.Reset),
	)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Learn the questionnaire
	var cat catalogResponse
	if err := client.get(ctx, "/catalog", &cat); err != nil {
		return stats, fmt.Errorf("catalog retrieval failed: %w", err)
	}
	var questions []catalog.Question
	for _, c := range cat.Categories {
		questions = append(questions, c.Questions...)
	}

	if cfg.Reset {
		if _, err := client.do(ctx, http.MethodDelete, "/history", nil, nil); err != nil {
			return stats, fmt.Errorf("history reset failed: %w", err)
		}
	}

	// Step 3: Generate and submit applicants
	applicants := NewGenerator(questions, cfg.Seed).Generate(cfg.Applicants)
	stats.Generated = len(applicants)
	accepted := submitApplicants(ctx, client, cfg, applicants, stats)

	// Step 4: Idempotency
	if err := replay(ctx, client, accepted, cfg.Replays, stats); err != nil {
		return stats, err
	}

	// Step 5: Wait for processing
	if err := waitForDrain(ctx, client, cfg); err != nil {
		log.Warn(ctx, "queue did not settle", logger.Error(err))
	}

	// Step 6: Verify stored results
	if err := verifyHistory(ctx, client, accepted, cat.Threshold, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Save applicants to file
	if cfg.OutputFile != "" {
		if err := saveApplicants(cfg.OutputFile, applicants); err != nil {
			log.Warn(ctx, "failed to save applicants to file", logger.Error(err))
		} else {
			log.Info(ctx, "applicants saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var health struct {
		Status string `json:"status"`
	}
	if err := client.get(ctx, "/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "ok" {
		logger.Get().Warn(ctx, "service is degraded; expect fallback scoring", logger.String("status", health.Status))
		return nil
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForDrain polls until the queue is empty and the history stops growing.
func waitForDrain(ctx context.Context, client *HTTPClient, cfg *Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.DrainTimeout)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	prev := -1
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for queue drain: %w", ctx.Err())
		case <-ticker.C:
		}

		var svcStats map[string]any
		if err := client.get(ctx, "/stats", &svcStats); err != nil {
			return err
		}
		var hs history.Stats
		if err := client.get(ctx, "/history/stats", &hs); err != nil {
			return err
		}
		queued, _ := svcStats["queueLength"].(float64)
		if queued == 0 && hs.Total == prev {
			return nil
		}
		prev = hs.Total
	}
}

func saveApplicants(filename string, applicants []Applicant) error {
	if len(applicants) == 0 {
		return errors.New("no applicants to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(applicants, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal applicants: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("replayed", stats.Replayed),
		logger.Int("stored", stats.Stored),
		logger.Int("verified", stats.Verified),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
