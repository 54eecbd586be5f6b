package scoring

import (
	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// RuleInput is what a rule may look at besides the answer it scores.
type RuleInput struct {
	Answers            model.Answers
	Metrics            model.FinancialMetrics
	HouseholdThreshold float64
}

// Rule returns the fraction of a question's weight earned by value.
type Rule func(value float64, in RuleInput) float64

// ChoiceRule scores pre-scored choice values linearly.
func ChoiceRule(value float64, _ RuleInput) float64 {
	return clamp(value/100, 0, 1)
}

// DebtRatioRule ignores the answer and scores the resulting debt ratio. Charges
// and the requested amount only matter through it.
func DebtRatioRule(_ float64, in RuleInput) float64 {
	r := in.Metrics.DebtRatio
	switch {
	case r <= 33:
		return 1
	case r <= 40:
		return 0.7
	case r <= 50:
		return 0.4
	default:
		return 0.1
	}
}

// HouseholdRule scores disposable income against the household threshold.
func HouseholdRule(_ float64, in RuleInput) float64 {
	d, t := in.Metrics.DisposableIncome, in.HouseholdThreshold
	switch {
	case d >= 2*t:
		return 1
	case d >= 1.5*t:
		return 0.9
	case d >= t:
		return 0.7
	default:
		return 0.3
	}
}

func incomeRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 4000:
		return 1
	case v >= 3000:
		return 0.95
	case v >= 2500:
		return 0.85
	case v >= 2000:
		return 0.75
	case v >= 1500:
		return 0.6
	default:
		return 0.4
	}
}

func employmentRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 5:
		return 1
	case v >= 3:
		return 0.9
	case v >= 2:
		return 0.8
	case v >= 1:
		return 0.6
	default:
		return 0.3
	}
}

func savingsRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 20000:
		return 1
	case v >= 10000:
		return 0.9
	case v >= 5000:
		return 0.8
	case v >= 2000:
		return 0.6
	case v > 0:
		return 0.4
	default:
		return 0.2
	}
}

func realEstateRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 200000:
		return 1
	case v >= 100000:
		return 0.9
	case v >= 50000:
		return 0.7
	case v > 0:
		return 0.5
	default:
		return 0.3
	}
}

func investmentsRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 30000:
		return 1
	case v >= 10000:
		return 0.8
	case v > 0:
		return 0.6
	default:
		return 0.4
	}
}

// downPaymentRule scores the contribution as a share of the requested amount.
func downPaymentRule(v float64, in RuleInput) float64 {
	amount, ok := in.Answers.Lookup(catalog.RequestedAmount)
	if !ok {
		amount = catalog.DefaultRequestedAmount
	}
	var pct float64
	if amount > 0 {
		pct = v / amount * 100
	}
	switch {
	case pct >= 30:
		return 1
	case pct >= 20:
		return 0.9
	case pct >= 10:
		return 0.7
	case pct > 0:
		return 0.5
	default:
		return 0.3
	}
}

func bankSeniorityRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 10:
		return 1
	case v >= 5:
		return 0.9
	case v >= 2:
		return 0.7
	default:
		return 0.5
	}
}

func repaidCreditsRule(v float64, _ RuleInput) float64 {
	switch {
	case v >= 3:
		return 1
	case v >= 2:
		return 0.9
	case v >= 1:
		return 0.7
	default:
		return 0.5
	}
}

// durationRule treats the duration as a preference, not a risk signal.
func durationRule(float64, RuleInput) float64 {
	return 0.8
}

// DefaultRules is the strategy table of the built-in catalog. Choice questions
// not listed use ChoiceRule.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		catalog.MonthlyIncome:   incomeRule,
		catalog.EmploymentYears: employmentRule,
		catalog.HousingPayment:  DebtRatioRule,
		catalog.ExistingCredits: DebtRatioRule,
		catalog.OtherCharges:    DebtRatioRule,
		catalog.RequestedAmount: DebtRatioRule,
		catalog.Dependents:      HouseholdRule,
		catalog.Savings:         savingsRule,
		catalog.RealEstate:      realEstateRule,
		catalog.Investments:     investmentsRule,
		catalog.DownPayment:     downPaymentRule,
		catalog.BankSeniority:   bankSeniorityRule,
		catalog.RepaidCredits:   repaidCreditsRule,
		catalog.DurationMonths:  durationRule,
	}
}
