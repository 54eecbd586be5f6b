package simulate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// noIncomeRate is the share of applicants generated without income.
const noIncomeRate = 0.05

var (
	lastNames  = []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau"}
	firstNames = []string{"Claire", "Jean", "Sophie", "Lucas", "Emma", "Hugo", "Chloe", "Louis", "Lea", "Paul"}
	operators  = []string{"agent-1", "agent-2", "agent-3"}
)

// Generator builds random but catalog-valid applicants.
type Generator struct {
	questions []catalog.Question
	rng       *rand.Rand
}

// NewGenerator creates a generator for questions. The same seed yields the
// same answers and clients; submission ids are always fresh.
func NewGenerator(questions []catalog.Question, seed int64) *Generator {
	return &Generator{
		questions: questions,
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible test data
	}
}

// Generate returns n applicants.
func (g *Generator) Generate(n int) []Applicant {
	out := make([]Applicant, n)
	for i := range out {
		out[i] = g.applicant(i)
	}
	return out
}

func (g *Generator) applicant(i int) Applicant {
	answers := make(model.Answers, len(g.questions))
	for _, q := range g.questions {
		answers[q.ID] = g.answer(q)
	}
	if g.rng.Float64() < noIncomeRate {
		answers[catalog.MonthlyIncome] = 0
	}

	last := lastNames[g.rng.Intn(len(lastNames))]
	first := firstNames[g.rng.Intn(len(firstNames))]
	return Applicant{
		SubmissionID: uuid.NewString(),
		Client: model.ClientProfile{
			Name:      last,
			FirstName: first,
			Email:     fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Phone:     fmt.Sprintf("06%08d", g.rng.Intn(100_000_000)),
		},
		Answers:  answers,
		Operator: operators[g.rng.Intn(len(operators))],
	}
}

// answer draws a choice value or a numeric value within bounds, snapped to
// the question's step.
func (g *Generator) answer(q catalog.Question) float64 {
	if q.Type == catalog.TypeChoice {
		if len(q.Choices) == 0 {
			return 0
		}
		return q.Choices[g.rng.Intn(len(q.Choices))].Value
	}
	if q.Max <= q.Min {
		return q.Min
	}
	v := q.Min + g.rng.Float64()*(q.Max-q.Min)
	if q.Step > 0 {
		v = q.Min + math.Round((v-q.Min)/q.Step)*q.Step
	}
	return math.Min(v, q.Max)
}
