package catalog

// Question ids of the built-in catalog. Scoring rules and the feature mapping
// are keyed by these ids.
const (
	MonthlyIncome     = "monthly_income"
	ContractType      = "contract_type"
	EmploymentYears   = "employment_years"
	HousingPayment    = "housing_payment"
	ExistingCredits   = "existing_credit_payments"
	OtherCharges      = "other_fixed_charges"
	Dependents        = "dependents"
	HousingStatus     = "housing_status"
	Savings           = "savings"
	RealEstate        = "real_estate_assets"
	Investments       = "financial_investments"
	DownPayment       = "down_payment"
	BankSeniority     = "bank_seniority"
	PaymentIncidents  = "payment_incidents"
	RepaidCredits     = "repaid_credits"
	OverdraftUsage    = "overdraft_usage"
	RequestedAmount   = "requested_amount"
	DurationMonths    = "duration_months"
	LoanPurpose       = "loan_purpose"
	BorrowerInsurance = "borrower_insurance"
)

// Category names, in wizard order.
const (
	CategoryIncome  = "Income"
	CategoryCharges = "Charges"
	CategorySavings = "Savings"
	CategoryHistory = "History"
	CategoryProject = "Project"
)

// Fallbacks used by the affordability computation when the loan itself was
// not described.
const (
	DefaultRequestedAmount = 10000
	DefaultDurationMonths  = 48
)

// Builtin returns the default 20-question catalog. Weights sum to 100.
func Builtin() *Catalog {
	c, err := New(builtinQuestions())
	if err != nil {
		panic(err)
	}
	return c
}

func builtinQuestions() []Question { //nolint:funlen // static data
	return []Question{
		{
			ID: MonthlyIncome, Category: CategoryIncome, Type: TypeNumeric, Weight: 12,
			Label: "Household net monthly income",
			Help:  "Salaries, pensions, allowances and rental income, net per month.",
			Min:   800, Max: 15000, Step: 100, Unit: "EUR/month",
		},
		{
			ID: ContractType, Category: CategoryIncome, Type: TypeChoice, Weight: 8,
			Label: "Employment contract",
			Help:  "Permanent contracts and civil servants offer the most stable income.",
			Choices: []Choice{
				{Label: "Permanent contract (over 1 year)", Value: 100},
				{Label: "Tenured civil servant", Value: 100},
				{Label: "Permanent contract, probation period", Value: 80},
				{Label: "Liberal profession (over 3 years)", Value: 85},
				{Label: "Long fixed-term contract (over 12 months)", Value: 65},
				{Label: "Short fixed-term contract (under 12 months)", Value: 45},
				{Label: "Regular temporary work", Value: 40},
				{Label: "Self-employed", Value: 55},
				{Label: "Unemployed", Value: 10},
			},
		},
		{
			ID: EmploymentYears, Category: CategoryIncome, Type: TypeNumeric, Weight: 5,
			Label: "Years in current job",
			Help:  "Longer tenure means steadier income.",
			Min:   0, Max: 40, Step: 1, Unit: "years",
		},
		{
			ID: HousingPayment, Category: CategoryCharges, Type: TypeNumeric, Weight: 6,
			Label: "Rent or mortgage payment",
			Help:  "Monthly housing cost.",
			Min:   0, Max: 2500, Step: 50, Unit: "EUR/month",
		},
		{
			ID: ExistingCredits, Category: CategoryCharges, Type: TypeNumeric, Weight: 8,
			Label: "Current credit repayments",
			Help:  "Monthly total of running loans (car, consumer, revolving).",
			Min:   0, Max: 1500, Step: 50, Unit: "EUR/month",
		},
		{
			ID: OtherCharges, Category: CategoryCharges, Type: TypeNumeric, Weight: 4,
			Label: "Other fixed monthly charges",
			Help:  "Alimony, childcare, dedicated insurance.",
			Min:   0, Max: 1000, Step: 50, Unit: "EUR/month",
		},
		{
			ID: Dependents, Category: CategoryCharges, Type: TypeNumeric, Weight: 4,
			Label: "Number of dependents",
			Help:  "Children or other financially dependent persons.",
			Min:   0, Max: 8, Step: 1, Unit: "persons",
		},
		{
			ID: HousingStatus, Category: CategoryCharges, Type: TypeChoice, Weight: 3,
			Label: "Housing status",
			Help:  "Home ownership signals stability.",
			Choices: []Choice{
				{Label: "Owner, no mortgage", Value: 100},
				{Label: "Owner with mortgage", Value: 85},
				{Label: "Tenant for over 2 years", Value: 70},
				{Label: "Recent tenant", Value: 60},
				{Label: "Housed free of charge", Value: 50},
			},
		},
		{
			ID: Savings, Category: CategorySavings, Type: TypeNumeric, Weight: 8,
			Label: "Available savings",
			Help:  "Savings accounts available as a precautionary buffer.",
			Min:   0, Max: 100000, Step: 500, Unit: "EUR",
		},
		{
			ID: RealEstate, Category: CategorySavings, Type: TypeNumeric, Weight: 6,
			Label: "Real estate assets",
			Help:  "Value of owned property.",
			Min:   0, Max: 1000000, Step: 10000, Unit: "EUR",
		},
		{
			ID: Investments, Category: CategorySavings, Type: TypeNumeric, Weight: 4,
			Label: "Financial investments",
			Help:  "Life insurance, equity savings plans, stocks, bonds.",
			Min:   0, Max: 200000, Step: 1000, Unit: "EUR",
		},
		{
			ID: DownPayment, Category: CategorySavings, Type: TypeNumeric, Weight: 2,
			Label: "Personal contribution to this loan",
			Help:  "Amount paid upfront; lowers the risk.",
			Min:   0, Max: 50000, Step: 500, Unit: "EUR",
		},
		{
			ID: BankSeniority, Category: CategoryHistory, Type: TypeNumeric, Weight: 4,
			Label: "Years as a customer of the bank",
			Min:   0, Max: 30, Step: 1, Unit: "years",
		},
		{
			ID: PaymentIncidents, Category: CategoryHistory, Type: TypeChoice, Weight: 6,
			Label: "Payment incidents (last 24 months)",
			Help:  "Rejections, unpaid items and late payments.",
			Choices: []Choice{
				{Label: "No incident", Value: 100},
				{Label: "1-2 settled incidents", Value: 75},
				{Label: "3-5 settled incidents", Value: 45},
				{Label: "More than 5 incidents", Value: 20},
				{Label: "Listed in the central bank register", Value: 5},
			},
		},
		{
			ID: RepaidCredits, Category: CategoryHistory, Type: TypeNumeric, Weight: 3,
			Label: "Loans fully repaid",
			Help:  "Number of loans repaid without incident.",
			Min:   0, Max: 10, Step: 1, Unit: "loans",
		},
		{
			ID: OverdraftUsage, Category: CategoryHistory, Type: TypeChoice, Weight: 2,
			Label: "Overdraft usage",
			Help:  "Regular overdraft usage can indicate difficulties.",
			Choices: []Choice{
				{Label: "Never or rarely", Value: 100},
				{Label: "Occasionally", Value: 80},
				{Label: "Regularly", Value: 45},
				{Label: "Permanently", Value: 20},
			},
		},
		{
			ID: RequestedAmount, Category: CategoryProject, Type: TypeNumeric, Weight: 5,
			Label: "Requested loan amount",
			Min:   1000, Max: 75000, Step: 500, Unit: "EUR",
		},
		{
			ID: DurationMonths, Category: CategoryProject, Type: TypeChoice, Weight: 3,
			Label: "Repayment duration",
			Help:  "Longer durations lower the instalment but raise the total cost.",
			Choices: []Choice{
				{Label: "12 months", Value: 12},
				{Label: "24 months", Value: 24},
				{Label: "36 months", Value: 36},
				{Label: "48 months", Value: 48},
				{Label: "60 months", Value: 60},
				{Label: "72 months", Value: 72},
				{Label: "84 months", Value: 84},
			},
		},
		{
			ID: LoanPurpose, Category: CategoryProject, Type: TypeChoice, Weight: 4,
			Label: "Loan purpose",
			Choices: []Choice{
				{Label: "Energy renovation works", Value: 100},
				{Label: "New vehicle", Value: 95},
				{Label: "Home improvement works", Value: 90},
				{Label: "Used vehicle", Value: 85},
				{Label: "Children's studies", Value: 85},
				{Label: "Home equipment", Value: 75},
				{Label: "Family event", Value: 65},
				{Label: "Debt consolidation", Value: 60},
				{Label: "Travel / leisure", Value: 50},
				{Label: "Cash needs", Value: 40},
			},
		},
		{
			ID: BorrowerInsurance, Category: CategoryProject, Type: TypeChoice, Weight: 3,
			Label: "Borrower insurance",
			Help:  "Cover for death, disability or job loss.",
			Choices: []Choice{
				{Label: "Full cover", Value: 100},
				{Label: "Basic cover", Value: 85},
				{Label: "Declines insurance", Value: 60},
			},
		},
	}
}
