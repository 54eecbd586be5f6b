package features

import "github.com/E1207/bank-transaction-ml/internal/domain/catalog"

// defaultMeans are the per-index training-set means of the predictive model.
var defaultMeans = [Size]float64{
	8.50, 4.48, 10.72, 6.54, 11.12, 10.68, 5.41, 2.01, 11.64, 8.48,
	2.33, 8.71, 14.02, 8.53, 8.06, 10.43, 7.62, 9.19, 11.53, 7.36,
	8.38, 17.26, 4.31, 9.25, 9.93, 9.12, -4.06, 8.68, 8.83, 7.57,
	7.50, 7.79, 9.55, 8.01, 11.43, 9.56, 9.81, 6.42, 9.26, 7.72,
	6.80, 9.96, 7.72, 9.33, 7.74, 8.31, 11.55, 7.82, 8.07, 9.54,
	8.47, 9.19, 8.24, 6.01, 8.26, 11.29, 9.39, 8.93, 5.94, 8.40,
	8.65, 8.92, 9.48, 7.87, 10.73, 10.84, 8.39, 9.07, 10.13, 8.96,
	11.61, 10.34, 8.44, 9.35, 8.28, 8.89, 6.05, 7.20, 10.25, 7.93,
	5.80, 14.72, 7.36, 8.76, 8.23, 6.57, 9.20, 9.73, 5.54, 9.66,
	9.32, 9.76, 10.67, 8.84, 6.44, 8.86, 9.13, 8.41, 9.06, -0.75,
	10.09, 8.93, 8.03, 10.22, 10.98, 8.97, 8.42, 8.98, 8.22, 8.99,
	5.51, 9.18, 7.98, 7.67, 8.71, 9.18, 9.23, 8.30, 6.25, 9.21,
	9.66, 7.37, 7.95, 6.79, 8.24, 8.45, 10.88, 12.35, 9.45, 7.70,
	9.03, 9.11, 9.66, 6.81, 10.04, 7.26, 10.00, 8.43, 9.51, 7.76,
	10.46, 10.01, 10.79, 8.29, 9.58, 9.31, 10.34, 9.49, 10.40, 5.72,
	10.29, 9.14, 8.73, 9.43, 8.86, 8.93, 8.91, 7.91, 10.34, 8.12,
	9.37, 10.23, 9.14, 9.53, 8.38, 8.63, 2.96, 10.51, 8.27, 8.74,
	10.10, 7.76, 8.69, 7.82, 20.21, 9.37, 8.50, 8.95, 7.79, 8.83,
	8.32, 10.16, 9.43, 10.84, 8.86, 8.60, 9.57, 8.43, 10.52, 9.65,
	3.23, 10.64, 8.93, 8.61, 9.72, 10.59, 9.90, 9.14, 11.22, 9.22,
}

// importance of the most influential model inputs; other indices weigh
// defaultImportance.
var importance = map[int]float64{
	174: 287, 6: 285, 166: 282, 53: 279, 26: 275,
	110: 272, 12: 268, 146: 265, 76: 262, 80: 258,
	99: 255, 21: 252, 198: 248, 44: 245, 109: 242,
	165: 238, 81: 235, 139: 232, 164: 228, 94: 225,
}

// Mapping ties one question to the model inputs it drives.
type Mapping struct {
	Indices  []int
	SrcMin   float64
	SrcMax   float64
	DstMin   float64
	DstMax   float64
	Inverted bool
}

// Transform rescales value with the mapping's bounds.
func (m Mapping) Transform(value float64) float64 {
	return Normalize(value, m.SrcMin, m.SrcMax, m.DstMin, m.DstMax, m.Inverted)
}

// mappings covers every built-in question. Questions of an external catalog
// that are not listed here do not move the vector.
var mappings = map[string]Mapping{
	catalog.MonthlyIncome:   {Indices: []int{6, 21, 44, 80}, SrcMin: 800, SrcMax: 15000, DstMin: 2, DstMax: 8},
	catalog.ContractType:    {Indices: []int{110, 146, 165}, SrcMin: 0, SrcMax: 100, DstMin: 1, DstMax: 6},
	catalog.EmploymentYears: {Indices: []int{139, 94}, SrcMin: 0, SrcMax: 40, DstMin: 2, DstMax: 7},

	catalog.HousingPayment:  {Indices: []int{174, 53, 26}, SrcMin: 0, SrcMax: 2500, DstMin: 30, DstMax: 10, Inverted: true},
	catalog.ExistingCredits: {Indices: []int{166, 12, 76}, SrcMin: 0, SrcMax: 1500, DstMin: 4, DstMax: 2, Inverted: true},
	catalog.OtherCharges:    {Indices: []int{99, 109, 81}, SrcMin: 0, SrcMax: 1000, DstMin: 15, DstMax: 5, Inverted: true},
	catalog.Dependents:      {Indices: []int{198, 164}, SrcMin: 0, SrcMax: 8, DstMin: 3, DstMax: 1, Inverted: true},
	catalog.HousingStatus:   {Indices: []int{80, 146}, SrcMin: 0, SrcMax: 100, DstMin: 3, DstMax: 7},

	catalog.Savings:     {Indices: []int{6, 110, 21}, SrcMin: 0, SrcMax: 100000, DstMin: 4, DstMax: 8},
	catalog.RealEstate:  {Indices: []int{44, 165, 139}, SrcMin: 0, SrcMax: 1000000, DstMin: 3, DstMax: 7},
	catalog.Investments: {Indices: []int{94, 80}, SrcMin: 0, SrcMax: 200000, DstMin: 4, DstMax: 7},
	catalog.DownPayment: {Indices: []int{146, 110}, SrcMin: 0, SrcMax: 50000, DstMin: 3, DstMax: 6},

	catalog.BankSeniority:    {Indices: []int{21, 139}, SrcMin: 0, SrcMax: 30, DstMin: 4, DstMax: 7},
	catalog.PaymentIncidents: {Indices: []int{174, 166, 53, 26}, SrcMin: 0, SrcMax: 100, DstMin: 30, DstMax: 15},
	catalog.RepaidCredits:    {Indices: []int{6, 110}, SrcMin: 0, SrcMax: 10, DstMin: 4, DstMax: 6},
	catalog.OverdraftUsage:   {Indices: []int{12, 76, 99}, SrcMin: 0, SrcMax: 100, DstMin: 4, DstMax: 2},

	catalog.RequestedAmount:   {Indices: []int{53, 26, 12}, SrcMin: 1000, SrcMax: 75000, DstMin: 25, DstMax: 15, Inverted: true},
	catalog.DurationMonths:    {Indices: []int{76, 81}, SrcMin: 12, SrcMax: 84, DstMin: 2, DstMax: 4},
	catalog.LoanPurpose:       {Indices: []int{165, 44}, SrcMin: 0, SrcMax: 100, DstMin: 3, DstMax: 7},
	catalog.BorrowerInsurance: {Indices: []int{139, 94}, SrcMin: 0, SrcMax: 100, DstMin: 4, DstMax: 6},
}
