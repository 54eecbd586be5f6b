package simulate

import (
	"context"
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/decision"
	"github.com/E1207/bank-transaction-ml/internal/domain/history"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
	"github.com/E1207/bank-transaction-ml/pkg/logger"
)

// verifyHistory reads the stored records and checks the ones produced by
// this run against the decision policy, then checks the server-side stats
// against a local recomputation.
func verifyHistory(ctx context.Context, client *HTTPClient, accepted []Applicant, threshold float64, stats *Stats) error {
	var hist historyResponse
	if err := client.get(ctx, "/history", &hist); err != nil {
		return err
	}
	var hs history.Stats
	if err := client.get(ctx, "/history/stats", &hs); err != nil {
		return err
	}

	ours := make(map[string]Applicant, len(accepted))
	for _, a := range accepted {
		ours[a.SubmissionID] = a
	}

	stats.Stored = len(hist.Records)
	var problems []string
	for _, rec := range hist.Records {
		a, ok := ours[rec.ID]
		if !ok {
			continue
		}
		stats.Verified++
		problems = append(problems, checkRecord(rec, a, threshold)...)
	}

	if local := history.Summarize(hist.Records); local != hs {
		problems = append(problems, fmt.Sprintf("history stats %+v differ from recomputed %+v", hs, local))
	}

	stats.Violations = len(problems)
	for _, p := range problems {
		logger.Get().Error(ctx, "consistency violation", logger.String("detail", p))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %d violations", ErrInconsistent, len(problems))
	}
	logger.Get().Info(ctx, "stored results verified",
		logger.Int("verified", stats.Verified), logger.Int("stored", stats.Stored))
	return nil
}

// checkRecord lists the rule violations of one stored record.
func checkRecord(rec model.SimulationRecord, a Applicant, threshold float64) []string {
	var out []string
	r := rec.Result
	if r.Score < 0 || r.Score > 100 {
		out = append(out, fmt.Sprintf("%s: score %d out of range", rec.ID, r.Score))
	}
	if want := decision.Decide(r.Score, threshold); r.Decision != want {
		out = append(out, fmt.Sprintf("%s: decision %s for score %d, want %s", rec.ID, r.Decision, r.Score, want))
	}
	if a.Answers.Get(catalog.MonthlyIncome) <= 0 && (r.Score != 0 || r.Decision != model.DecisionRefused) {
		out = append(out, fmt.Sprintf("%s: applicant without income scored %d (%s)", rec.ID, r.Score, r.Decision))
	}
	if rec.Client != a.Client {
		out = append(out, fmt.Sprintf("%s: stored client differs from submission", rec.ID))
	}
	return out
}
