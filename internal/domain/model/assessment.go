// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Answers maps a question id to its numeric value. Numeric questions carry the
// raw magnitude, choice questions carry the pre-scored 0-100 value.
type Answers map[string]float64

// Get returns the answer for id, or 0 when the question was not answered.
func (a Answers) Get(id string) float64 {
	return a[id]
}

// Lookup returns the answer for id and whether it was present.
func (a Answers) Lookup(id string) (float64, bool) {
	v, ok := a[id]
	return v, ok
}

// Clone returns a copy that can be stored without aliasing the caller's map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// FinancialMetrics is the affordability profile derived from Answers.
type FinancialMetrics struct {
	DebtRatio        float64 `json:"debt_ratio"`        // percent, one decimal
	DisposableIncome float64 `json:"disposable_income"` // whole currency units, may be negative
	MonthlyPayment   float64 `json:"monthly_payment"`   // whole currency units
}

// Decision is the three-way lending outcome.
type Decision string

const (
	DecisionAccepted    Decision = "accepted"
	DecisionRefused     Decision = "refused"
	DecisionUnderReview Decision = "under_review"
)

// Confidence measures agreement between the model and the metrics-only view.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// MotifCode identifies the trigger behind a motif so it is reported once.
type MotifCode string

const (
	MotifDebtRatio        MotifCode = "debt_ratio"
	MotifDisposableIncome MotifCode = "disposable_income"
	MotifPaymentIncidents MotifCode = "payment_incidents"
	MotifEmployment       MotifCode = "employment"
	MotifModelRisk        MotifCode = "model_risk"
	MotifDegraded         MotifCode = "degraded_mode"
	MotifNoIncome         MotifCode = "no_income"
)

// Motif is a human-readable rationale attached to a decision.
type Motif struct {
	Code MotifCode `json:"code"`
	Text string    `json:"text"`
}

// AppendMotif appends m unless a motif with the same code is already present.
func AppendMotif(motifs []Motif, m Motif) []Motif {
	for _, existing := range motifs {
		if existing.Code == m.Code {
			return motifs
		}
	}
	return append(motifs, m)
}

// MotifTexts flattens motifs into their display strings, preserving order.
func MotifTexts(motifs []Motif) []string {
	out := make([]string, 0, len(motifs))
	for _, m := range motifs {
		out = append(out, m.Text)
	}
	return out
}

// CategoryScore is the per-category audit line of a rule score.
type CategoryScore struct {
	Category     string  `json:"category"`
	PointsEarned float64 `json:"points_earned"`
	PointsMax    float64 `json:"points_max"`
}

// ScoreResult is the outcome of one scoring session.
type ScoreResult struct {
	Score     int             `json:"score"`
	RuleScore int             `json:"rule_score"`
	Breakdown []CategoryScore `json:"breakdown"`
	Decision  Decision        `json:"decision"`
	Motifs    []string        `json:"motifs"`

	DebtRatio        float64 `json:"debt_ratio"`
	DisposableIncome float64 `json:"disposable_income"`
	MonthlyPayment   float64 `json:"monthly_payment"`

	// Present only when the predictive service answered.
	MLProbability  *int        `json:"ml_probability,omitempty"`
	MLContribution *int        `json:"ml_contribution,omitempty"`
	MLConfidence   *Confidence `json:"ml_confidence,omitempty"`

	Degraded bool `json:"degraded"`
}

// ClientProfile identifies the applicant of a simulation.
type ClientProfile struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// RecordResult is the subset of a ScoreResult kept in history.
type RecordResult struct {
	Score            int      `json:"score"`
	Decision         Decision `json:"decision"`
	DebtRatio        float64  `json:"debt_ratio"`
	DisposableIncome float64  `json:"disposable_income"`
	Motifs           []string `json:"motifs"`
	MLProbability    *int     `json:"ml_probability,omitempty"`
}

// SimulationRecord is an immutable history entry for one completed session.
type SimulationRecord struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Client    ClientProfile `json:"client"`
	Result    RecordResult  `json:"result"`
	Answers   Answers       `json:"answers"`
	Operator  string        `json:"operator"`
}

// NewRecord snapshots a finished session into a SimulationRecord.
func NewRecord(id string, createdAt time.Time, client ClientProfile, res ScoreResult, answers Answers, operator string) SimulationRecord {
	motifs := make([]string, len(res.Motifs))
	copy(motifs, res.Motifs)
	return SimulationRecord{
		ID:        id,
		CreatedAt: createdAt,
		Client:    client,
		Result: RecordResult{
			Score:            res.Score,
			Decision:         res.Decision,
			DebtRatio:        res.DebtRatio,
			DisposableIncome: res.DisposableIncome,
			Motifs:           motifs,
			MLProbability:    res.MLProbability,
		},
		Answers:  answers.Clone(),
		Operator: operator,
	}
}

// Valid reports whether a decoded record carries the fields every reader relies on.
func (r SimulationRecord) Valid() bool {
	switch r.Result.Decision {
	case DecisionAccepted, DecisionRefused, DecisionUnderReview:
	default:
		return false
	}
	return r.ID != "" && !r.CreatedAt.IsZero() && r.Result.Score >= 0 && r.Result.Score <= 100
}
