package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Amortization is the output of the calculator for one loan.
type Amortization struct {
	EMIAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	TotalInterest decimal.Decimal
	DueDates      []time.Time
}

// CalculateAmortization computes a fixed-installment repayment plan.
//
//	monthlyRate = annualRate / 12 / 100
//	emi         = P * i * (1+i)^n / ((1+i)^n - 1)
//
// With a zero rate the principal is split evenly. The installment is rounded
// up to the cent so that n installments always retire the debt, and
// TotalAmount is exactly EMIAmount * n. Inputs and the total payable must fit
// the stored column ranges (MaxAmount, MaxInterestRate, MaxTenureMonths).
func CalculateAmortization(
	principal decimal.Decimal,
	annualRate decimal.Decimal,
	tenureMonths int,
	disbursement time.Time,
	cadence Cadence,
) (Amortization, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return Amortization{}, NewValidationError("", 0, "principal must be positive")
	}
	if ExceedsMaxAmount(principal) {
		return Amortization{}, NewValidationError("", 0, "principal exceeds "+MaxAmount.StringFixed(CurrencyPlaces))
	}
	if tenureMonths <= 0 {
		return Amortization{}, NewValidationError("", 0, "tenure must be at least one month")
	}
	if tenureMonths > MaxTenureMonths {
		return Amortization{}, NewValidationError("", 0, fmt.Sprintf("tenure must not exceed %d months", MaxTenureMonths))
	}
	if annualRate.IsNegative() {
		return Amortization{}, NewValidationError("", 0, "interest rate must not be negative")
	}
	if annualRate.GreaterThan(MaxInterestRate) {
		return Amortization{}, NewValidationError("", 0, "interest rate must not exceed "+MaxInterestRate.StringFixed(2))
	}

	n := decimal.NewFromInt(int64(tenureMonths))

	var emi decimal.Decimal
	if annualRate.IsZero() {
		emi = principal.Div(n).RoundCeil(CurrencyPlaces)
	} else {
		// float64 for the power term, decimal for money.
		monthlyRate := annualRate.InexactFloat64() / 12.0 / 100.0
		factor := math.Pow(1+monthlyRate, float64(tenureMonths))
		payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
		if math.IsInf(factor, 0) || math.IsNaN(payment) || math.IsInf(payment, 0) {
			return Amortization{}, NewValidationError("", 0, "interest rate and tenure produce an unrepresentable installment")
		}
		// Round away float noise before taking the ceiling.
		emi = decimal.NewFromFloat(payment).Round(6).RoundCeil(CurrencyPlaces)
	}

	total := emi.Mul(n)
	if ExceedsMaxAmount(total) {
		return Amortization{}, NewValidationError("", 0, "total payable exceeds "+MaxAmount.StringFixed(CurrencyPlaces))
	}

	dueDates := make([]time.Time, tenureMonths)
	for period := 1; period <= tenureMonths; period++ {
		dueDates[period-1] = cadence.DueDate(disbursement, period)
	}

	return Amortization{
		EMIAmount:     emi,
		TotalAmount:   total,
		TotalInterest: total.Sub(principal),
		DueDates:      dueDates,
	}, nil
}
