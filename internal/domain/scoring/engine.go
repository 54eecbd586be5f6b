package scoring

import (
	"github.com/E1207/bank-transaction-ml/internal/domain/finance"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// RuleResult is the outcome of the rule-based scoring.
type RuleResult struct {
	// Weighted is the amplified weighted percentage before adjustments.
	Weighted int
	// Score is Weighted after bonuses and penalties, in [0,100].
	Score     int
	Breakdown []model.CategoryScore
	Motifs    []model.Motif
}

// HouseholdThreshold is the disposable income expected for the household
// described by answers.
func (e *Engine) HouseholdThreshold(answers model.Answers) float64 {
	return finance.HouseholdThreshold(e.baseline, finance.HouseholdSize(answers))
}

// Score runs every answered question through its rule, then applies the
// affordability bonuses and penalties.
func (e *Engine) Score(answers model.Answers, m model.FinancialMetrics) RuleResult {
	size := finance.HouseholdSize(answers)
	threshold := finance.HouseholdThreshold(e.baseline, size)
	in := RuleInput{Answers: answers, Metrics: m, HouseholdThreshold: threshold}

	var earned, total float64
	breakdown := make([]model.CategoryScore, 0, len(e.catalog.Categories()))
	for _, cat := range e.catalog.Categories() {
		line := model.CategoryScore{Category: cat}
		for _, q := range e.catalog.ByCategory(cat) {
			v, ok := answers.Lookup(q.ID)
			if !ok {
				continue
			}
			line.PointsMax += q.Weight
			line.PointsEarned += e.rules[q.ID](v, in) * q.Weight
		}
		earned += line.PointsEarned
		total += line.PointsMax
		breakdown = append(breakdown, line)
	}

	var weighted float64
	if total > 0 {
		weighted = clamp(float64(round(100*earned/total*scoreAmplification)), 0, maxScoreValue)
	}

	score := applyBonuses(weighted, m, threshold)
	score, motifs := e.applyPenalties(score, answers, m, size, threshold)

	return RuleResult{
		Weighted:  int(weighted),
		Score:     round(clamp(score, 0, maxScoreValue)),
		Breakdown: breakdown,
		Motifs:    motifs,
	}
}
