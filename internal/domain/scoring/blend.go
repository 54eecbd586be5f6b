package scoring

import (
	"math"

	"github.com/E1207/bank-transaction-ml/internal/domain/finance"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// Blend configuration constants.
const (
	mlMaxPoints      = 15                  // share of the final score the model can move
	mlWeightFraction = mlMaxPoints / 100.0 // mlMaxPoints as a fraction of 100
	baseMaxPoints    = 100 - mlMaxPoints   // affordability component ceiling

	coherenceHigh   = 20
	coherenceMedium = 40
)

// BlendInput carries everything the blend reads.
type BlendInput struct {
	Answers model.Answers
	Metrics model.FinancialMetrics
	// RuleScore is reported alongside the blend for audit; it does not move
	// the final score.
	RuleScore int
	// Probability is the model's approval probability in percent.
	Probability float64
}

// BlendResult is the model-path score.
type BlendResult struct {
	FinalScore       int
	MLContribution   int
	MetricsOnlyScore int
	Confidence       model.Confidence
	Motifs           []model.Motif
}

// Blend combines an affordability base computed from debt ratio and
// disposable income bands with a bounded model contribution, then applies
// the same severe-case penalties as Score.
func (e *Engine) Blend(in BlendInput) BlendResult {
	size := finance.HouseholdSize(in.Answers)
	threshold := finance.HouseholdThreshold(e.baseline, size)
	p := clamp(in.Probability, 0, 100)

	base := debtPoints(in.Metrics.DebtRatio) + disposablePoints(in.Metrics.DisposableIncome, threshold)
	score := base + p/100*mlMaxPoints
	score, motifs := e.applyPenalties(score, in.Answers, in.Metrics, size, threshold)

	metricsOnly := round(base * 100 / baseMaxPoints)
	return BlendResult{
		FinalScore:       round(clamp(score, 0, maxScoreValue)),
		MLContribution:   round(p * mlWeightFraction / mlMaxPoints * 100),
		MetricsOnlyScore: metricsOnly,
		Confidence:       confidence(p, float64(metricsOnly)),
		Motifs:           motifs,
	}
}

func debtPoints(ratio float64) float64 {
	switch {
	case ratio <= 25:
		return 50
	case ratio <= 33:
		return 42
	case ratio <= 40:
		return 28
	case ratio <= 50:
		return 12
	default:
		return 0
	}
}

func disposablePoints(disposable, threshold float64) float64 {
	switch {
	case disposable >= 3*threshold:
		return 35
	case disposable >= 2*threshold:
		return 30
	case disposable >= 1.5*threshold:
		return 24
	case disposable >= threshold:
		return 16
	default:
		return 0
	}
}

// confidence grades agreement between the model and the metrics-only view.
func confidence(probability, metricsOnly float64) model.Confidence {
	coherence := math.Abs(probability - metricsOnly)
	switch {
	case coherence < coherenceHigh:
		return model.ConfidenceHigh
	case coherence < coherenceMedium:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
