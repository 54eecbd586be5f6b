package simulate

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeFailed
)

const progressInterval = time.Second

// submitApplicants posts applicants to /assessments/async with a pool of
// workers, tallies the acknowledgements and returns the accepted applicants.
func submitApplicants(ctx context.Context, client *HTTPClient, cfg *Config, applicants []Applicant, stats *Stats) []Applicant {
	logger.Get().Info(ctx, "submitting applicants",
		logger.Int("count", len(applicants)), logger.Int("workers", cfg.Workers))

	var accepted, duplicate, failed, submitted atomic.Int64
	var mu sync.Mutex
	acked := make([]Applicant, 0, len(applicants))
	var lastReport atomic.Int64
	lastReport.Store(time.Now().UnixNano())

	jobs := make(chan Applicant, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				switch submitOne(ctx, client, a) {
				case outcomeAccepted:
					accepted.Add(1)
					mu.Lock()
					acked = append(acked, a)
					mu.Unlock()
				case outcomeDuplicate:
					duplicate.Add(1)
				case outcomeFailed:
					failed.Add(1)
				}
				total := submitted.Add(1)

				last := lastReport.Load()
				if time.Since(time.Unix(0, last)) >= progressInterval && lastReport.CompareAndSwap(last, time.Now().UnixNano()) {
					if cfg.Verbose {
						logger.Get().Info(ctx, "progress",
							logger.Int("submitted", int(total)), logger.Int("total", len(applicants)))
					} else {
						fmt.Printf("\rSubmitted: %d/%d (accepted: %d, duplicate: %d, failed: %d)",
							total, len(applicants), accepted.Load(), duplicate.Load(), failed.Load())
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, a := range applicants {
			select {
			case <-ctx.Done():
				return
			case jobs <- a:
			}
		}
	}()
	wg.Wait()

	if !cfg.Verbose {
		fmt.Println()
	}

	stats.Submitted += int(submitted.Load())
	stats.Accepted += int(accepted.Load())
	stats.Duplicate += int(duplicate.Load())
	stats.Failed += int(failed.Load())
	return acked
}

func submitOne(ctx context.Context, client *HTTPClient, a Applicant) outcome {
	var ack AckResponse
	status, err := client.do(ctx, http.MethodPost, "/assessments/async", a, &ack)
	switch {
	case err != nil:
		logger.Get().Debug(ctx, "submission failed",
			logger.String("submission_id", a.SubmissionID), logger.Error(err))
		return outcomeFailed
	case status == StatusOK && ack.Duplicate:
		return outcomeDuplicate
	case status == StatusAccepted:
		return outcomeAccepted
	default:
		return outcomeFailed
	}
}

// replay re-sends the first n applicants; every one must come back as a
// duplicate.
func replay(ctx context.Context, client *HTTPClient, applicants []Applicant, n int, stats *Stats) error {
	n = min(n, len(applicants))
	var unexpected int
	for _, a := range applicants[:n] {
		stats.Replayed++
		if submitOne(ctx, client, a) != outcomeDuplicate {
			unexpected++
		}
	}
	if unexpected > 0 {
		return fmt.Errorf("%w: %d of %d replays were not reported as duplicates", ErrInconsistent, unexpected, n)
	}
	logger.Get().Info(ctx, "replays acknowledged as duplicates", logger.Int("count", n))
	return nil
}
