// Package finance derives the affordability profile of an applicant: the new
// loan's monthly payment, the debt ratio and the disposable income.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/E1207/bank-transaction-ml/internal/domain/catalog"
	"github.com/E1207/bank-transaction-ml/internal/domain/model"
)

// DefaultHouseholdBaseline is the disposable income expected per household member.
const DefaultHouseholdBaseline = 600

// noIncomeDebtRatio is reported when income is not positive.
const noIncomeDebtRatio = 100

// Compute derives FinancialMetrics from answers. It never fails: missing
// charges count as zero, a missing loan description falls back to the catalog
// defaults, and a non-positive duration makes the whole amount due at once.
func Compute(answers model.Answers) model.FinancialMetrics {
	income := answers.Get(catalog.MonthlyIncome)

	amount, ok := answers.Lookup(catalog.RequestedAmount)
	if !ok {
		amount = catalog.DefaultRequestedAmount
	}
	duration, ok := answers.Lookup(catalog.DurationMonths)
	if !ok {
		duration = catalog.DefaultDurationMonths
	}

	payment := roundUnits(MonthlyPayment(amount, duration))

	totalCharges := decimal.NewFromFloat(answers.Get(catalog.HousingPayment)).
		Add(decimal.NewFromFloat(answers.Get(catalog.ExistingCredits))).
		Add(decimal.NewFromFloat(answers.Get(catalog.OtherCharges))).
		Add(payment)

	debtRatio := decimal.NewFromInt(noIncomeDebtRatio)
	if income > 0 {
		debtRatio = totalCharges.Div(decimal.NewFromFloat(income)).Mul(decimal.NewFromInt(100))
	}
	disposable := decimal.NewFromFloat(income).Sub(totalCharges)

	return model.FinancialMetrics{
		DebtRatio:        debtRatio.Round(1).InexactFloat64(),
		DisposableIncome: roundUnits(disposable).InexactFloat64(),
		MonthlyPayment:   payment.InexactFloat64(),
	}
}

// MonthlyPayment is amount spread over duration months, unrounded.
func MonthlyPayment(amount, duration float64) decimal.Decimal {
	a := decimal.NewFromFloat(amount)
	if duration <= 0 {
		return a
	}
	return a.Div(decimal.NewFromFloat(duration))
}

// HouseholdSize counts the applicant plus declared dependents.
func HouseholdSize(answers model.Answers) float64 {
	d := answers.Get(catalog.Dependents)
	if d < 0 {
		d = 0
	}
	return d + 1
}

// HouseholdThreshold is the minimum comfortable disposable income for a
// household of the given size.
func HouseholdThreshold(baseline, size float64) float64 {
	return baseline * size
}

// roundUnits rounds half towards positive infinity to whole currency units.
func roundUnits(d decimal.Decimal) decimal.Decimal {
	return d.Add(decimal.NewFromFloat(0.5)).Floor()
}
