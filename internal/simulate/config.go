// Package simulate drives a running scoring service with generated
// applicants and checks the stored history for consistency.
package simulate

import (
	"time"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Applicants   int           // Number of applicants to generate
	Workers      int           // Number of concurrent submitters
	Replays      int           // Submissions re-sent to check idempotency
	Timeout      time.Duration // HTTP request timeout
	DrainTimeout time.Duration // Maximum wait for queued submissions
	PollInterval time.Duration // Interval between drain checks
	Seed         int64         // Generator seed
	Reset        bool          // Clear the history before submitting
	OutputFile   string        // Output file for generated applicants
	Verbose      bool          // Enable verbose logging
}

// Applicant is one generated submission.
type Applicant struct {
	SubmissionID string              `json:"submission_id"`
	Client       model.ClientProfile `json:"client"`
	Answers      model.Answers       `json:"answers"`
	Operator     string              `json:"operator"`
}

// AckResponse represents the response to an async submission.
type AckResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

type catalogResponse struct {
	Categories []struct {
		Name      string             `json:"name"`
		Questions []catalog.Question `json:"questions"`
	} `json:"categories"`
	Threshold float64 `json:"threshold"`
}

type historyResponse struct {
	Records []model.SimulationRecord `json:"records"`
	Count   int                      `json:"count"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicate  int
	Failed     int
	Replayed   int
	Stored     int
	Verified   int
	Violations int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
