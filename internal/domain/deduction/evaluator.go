package deduction

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// EvaluateAmount computes what one deduction type charges against a salary
// base. Pure and deterministic: identical inputs always yield the same
// amount, so archived instances can be re-derived after a rate change.
//
// A percentage-based type with no salary base evaluates to zero. An
// employee without a salary profile cannot owe a percentage of it; this is
// a defined fallback, not an error.
func EvaluateAmount(def DeductionType, salaryBase *decimal.Decimal) decimal.Decimal {
	switch def.CalculationType {
	case CalculationTypePercentage:
		if salaryBase == nil {
			return decimal.Zero
		}
		return salaryBase.Mul(def.PercentageValue).Div(oneHundred)
	default:
		return def.Amount
	}
}
