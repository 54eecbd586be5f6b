package scoring

import (
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/decision"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

var (
	degradedMotif = model.Motif{Code: model.MotifDegraded, Text: "Fallback scoring (predictive service unavailable)"}
	noIncomeMotif = model.Motif{Code: model.MotifNoIncome, Text: "No income declared"}
)

// hasNoIncome reports a missing or non-positive declared income.
func hasNoIncome(answers model.Answers) bool {
	return answers.Get(catalog.MonthlyIncome) <= 0
}

// Assess builds the result of the model path from a probability in percent.
func (e *Engine) Assess(answers model.Answers, m model.FinancialMetrics, probability, threshold float64) model.ScoreResult {
	p := clamp(probability, 0, 100)
	pInt := round(p)

	if hasNoIncome(answers) {
		// The model answered, so its fields are reported even though the
		// score is forced to zero.
		blend := e.Blend(BlendInput{Answers: answers, Metrics: m, Probability: p})
		res := refusedForNoIncome(m, nil)
		res.MLProbability = &pInt
		res.MLContribution = &blend.MLContribution
		res.MLConfidence = &blend.Confidence
		return res
	}

	rule := e.Score(answers, m)
	blend := e.Blend(BlendInput{Answers: answers, Metrics: m, RuleScore: rule.Score, Probability: p})
	motifs := decision.Annotate(blend.Motifs, decision.Signals{
		Metrics:            m,
		HouseholdThreshold: e.HouseholdThreshold(answers),
		Probability:        &p,
	})

	conf := blend.Confidence
	contribution := blend.MLContribution
	return model.ScoreResult{
		Score:            blend.FinalScore,
		RuleScore:        rule.Score,
		Breakdown:        rule.Breakdown,
		Decision:         decision.Decide(blend.FinalScore, threshold),
		Motifs:           model.MotifTexts(motifs),
		DebtRatio:        m.DebtRatio,
		DisposableIncome: m.DisposableIncome,
		MonthlyPayment:   m.MonthlyPayment,
		MLProbability:    &pInt,
		MLContribution:   &contribution,
		MLConfidence:     &conf,
	}
}

// Fallback scores without the predictive model, reusing the rule engine and
// the decision policy so that only the model-derived fields differ from
// the primary path.
type Fallback struct {
	engine *Engine
}

// NewFallback wraps e.
func NewFallback(e *Engine) *Fallback {
	return &Fallback{engine: e}
}

// Score returns a degraded-mode result. It always leads with the degraded
// motif and never carries model fields.
func (f *Fallback) Score(answers model.Answers, m model.FinancialMetrics, threshold float64) model.ScoreResult {
	lead := []model.Motif{degradedMotif}
	if hasNoIncome(answers) {
		res := refusedForNoIncome(m, lead)
		res.Degraded = true
		return res
	}

	rule := f.engine.Score(answers, m)
	motifs := decision.Annotate(append(lead, rule.Motifs...), decision.Signals{
		Metrics:            m,
		HouseholdThreshold: f.engine.HouseholdThreshold(answers),
	})
	return model.ScoreResult{
		Score:            rule.Score,
		RuleScore:        rule.Score,
		Breakdown:        rule.Breakdown,
		Decision:         decision.Decide(rule.Score, threshold),
		Motifs:           model.MotifTexts(motifs),
		DebtRatio:        m.DebtRatio,
		DisposableIncome: m.DisposableIncome,
		MonthlyPayment:   m.MonthlyPayment,
		Degraded:         true,
	}
}

func refusedForNoIncome(m model.FinancialMetrics, lead []model.Motif) model.ScoreResult {
	motifs := model.AppendMotif(lead, noIncomeMotif)
	return model.ScoreResult{
		Score:            0,
		Decision:         model.DecisionRefused,
		Motifs:           model.MotifTexts(motifs),
		Breakdown:        []model.CategoryScore{},
		DebtRatio:        m.DebtRatio,
		DisposableIncome: m.DisposableIncome,
		MonthlyPayment:   m.MonthlyPayment,
	}
}
