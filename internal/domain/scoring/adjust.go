package scoring

import (
	"fmt"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// Affordability adjustment amounts.
const (
	bonusDebtExcellent   = 8 // debt ratio <= 25%
	bonusDebtGood        = 5 // debt ratio <= 30%
	bonusDisposableHigh  = 8 // disposable >= 3x household threshold
	bonusDisposableGood  = 4 // disposable >= 2x household threshold
	penaltyDebtSevere    = 15
	penaltyDebtElevated  = 8
	penaltyDisposableLow = 15
	penaltyIncidents     = 20

	incidentCutoff   = 20 // incidents answer at or below this is severe
	unstableContract = 40 // contract answer at or below this is annotated
)

// applyBonuses adds the affordability bonuses, clamping to 100 after each.
func applyBonuses(score float64, m model.FinancialMetrics, threshold float64) float64 {
	switch {
	case m.DebtRatio <= 25:
		score = clamp(score+bonusDebtExcellent, 0, maxScoreValue)
	case m.DebtRatio <= 30:
		score = clamp(score+bonusDebtGood, 0, maxScoreValue)
	}
	switch {
	case m.DisposableIncome >= 3*threshold:
		score = clamp(score+bonusDisposableHigh, 0, maxScoreValue)
	case m.DisposableIncome >= 2*threshold:
		score = clamp(score+bonusDisposableGood, 0, maxScoreValue)
	}
	return score
}

// applyPenalties deducts the severe-case penalties, clamping to 0 after each,
// and returns the motif of every trigger.
func (e *Engine) applyPenalties(score float64, answers model.Answers, m model.FinancialMetrics, size, threshold float64) (float64, []model.Motif) {
	var motifs []model.Motif

	switch {
	case m.DebtRatio > 50:
		score = clamp(score-penaltyDebtSevere, 0, maxScoreValue)
		motifs = append(motifs, model.Motif{
			Code: model.MotifDebtRatio,
			Text: fmt.Sprintf("Debt ratio too high (%.1f%% > 50%%)", m.DebtRatio),
		})
	case m.DebtRatio > 40:
		score = clamp(score-penaltyDebtElevated, 0, maxScoreValue)
		motifs = append(motifs, model.Motif{
			Code: model.MotifDebtRatio,
			Text: fmt.Sprintf("Elevated debt ratio (%.1f%% > 40%%)", m.DebtRatio),
		})
	}

	if floor := threshold * e.floor; m.DisposableIncome < floor {
		score = clamp(score-penaltyDisposableLow, 0, maxScoreValue)
		motifs = append(motifs, model.Motif{
			Code: model.MotifDisposableIncome,
			Text: fmt.Sprintf("Insufficient disposable income (%.0f < %.0f for %.0f person(s))", m.DisposableIncome, floor, size),
		})
	}

	if v, ok := answers.Lookup(catalog.PaymentIncidents); ok && v <= incidentCutoff {
		score = clamp(score-penaltyIncidents, 0, maxScoreValue)
		motifs = append(motifs, model.Motif{
			Code: model.MotifPaymentIncidents,
			Text: "Severe payment incident history",
		})
	}

	if v, ok := answers.Lookup(catalog.ContractType); ok && v <= unstableContract {
		motifs = append(motifs, model.Motif{
			Code: model.MotifEmployment,
			Text: "Employment situation to secure",
		})
	}

	return score, motifs
}
