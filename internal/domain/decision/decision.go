// Package decision maps a final score to a lending decision and assembles the
// rationale attached to it.
package decision

import (
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// DefaultThreshold is the acceptance threshold used when none is configured.
const DefaultThreshold = 75

const (
	reviewMargin     = 20
	reviewFloor      = 40
	modelRiskCutoff  = 30
	elevatedDebtLine = 40
)

// ReviewThreshold is the lowest score still sent to manual review.
func ReviewThreshold(threshold float64) float64 {
	return max(threshold-reviewMargin, reviewFloor)
}

// Decide maps score to a decision for the given acceptance threshold.
func Decide(score int, threshold float64) model.Decision {
	s := float64(score)
	switch {
	case s >= threshold:
		return model.DecisionAccepted
	case s >= ReviewThreshold(threshold):
		return model.DecisionUnderReview
	default:
		return model.DecisionRefused
	}
}

// Signals are the facts motifs are derived from.
type Signals struct {
	Metrics            model.FinancialMetrics
	HouseholdThreshold float64
	// Probability is the model probability in percent; nil off the model path.
	Probability *float64
}

// Annotate appends the decision motifs to motifs. A motif whose code is
// already present, e.g. from a scoring penalty, is not repeated.
func Annotate(motifs []model.Motif, s Signals) []model.Motif {
	out := make([]model.Motif, len(motifs), len(motifs)+3)
	copy(out, motifs)

	if s.Metrics.DebtRatio > elevatedDebtLine {
		out = model.AppendMotif(out, model.Motif{
			Code: model.MotifDebtRatio,
			Text: fmt.Sprintf("Debt ratio above 40%% (%.1f%%)", s.Metrics.DebtRatio),
		})
	}
	if s.Metrics.DisposableIncome < s.HouseholdThreshold {
		out = model.AppendMotif(out, model.Motif{
			Code: model.MotifDisposableIncome,
			Text: fmt.Sprintf("Disposable income below the household threshold (%.0f < %.0f)", s.Metrics.DisposableIncome, s.HouseholdThreshold),
		})
	}
	if s.Probability != nil && *s.Probability < modelRiskCutoff {
		out = model.AppendMotif(out, model.Motif{
			Code: model.MotifModelRisk,
			Text: fmt.Sprintf("Predictive model flags a high risk (%.0f%%)", *s.Probability),
		})
	}
	return out
}
