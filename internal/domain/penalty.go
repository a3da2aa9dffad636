package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPenaltyPerDay is the late fee charged per whole day past due.
var DefaultPenaltyPerDay = decimal.NewFromInt(75)

type PenaltyPolicy struct {
	PerDay decimal.Decimal
}

func NewPenaltyPolicy(perDay string) (PenaltyPolicy, error) {
	rate, err := decimal.NewFromString(perDay)
	if err != nil {
		return PenaltyPolicy{}, err
	}
	if rate.IsNegative() {
		return PenaltyPolicy{}, NewValidationError("", 0, "penalty rate must not be negative")
	}
	return PenaltyPolicy{PerDay: rate}, nil
}

// DaysLate counts whole calendar days from due to at, each truncated to
// midnight in its own location. It is never negative.
func DaysLate(due, at time.Time) int {
	dy, dm, dd := due.Date()
	ay, am, ad := at.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	atDay := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	if !atDay.After(dueDay) {
		return 0
	}
	return int(atDay.Sub(dueDay).Hours() / 24)
}

// Compute returns the default penalty for paying at `at` an installment due on `due`.
func (p PenaltyPolicy) Compute(due, at time.Time) decimal.Decimal {
	return p.PerDay.Mul(decimal.NewFromInt(int64(DaysLate(due, at))))
}

// Resolve applies the override policy to a caller-submitted penalty.
// A nil submission means the computed default. A penalty above the default
// requires an explicit override; a negative penalty is always rejected.
func (p PenaltyPolicy) Resolve(computed decimal.Decimal, submitted *decimal.Decimal, override bool) (decimal.Decimal, error) {
	if submitted == nil {
		return computed, nil
	}
	if submitted.IsNegative() {
		return decimal.Zero, NewValidationError("", 0, "penalty amount must not be negative")
	}
	if HasSubCentPrecision(*submitted) {
		return decimal.Zero, NewValidationError("", 0, "penalty amount has sub-cent precision")
	}
	if submitted.GreaterThan(computed) && !override {
		return decimal.Zero, NewValidationError("", 0,
			"penalty "+submitted.StringFixed(CurrencyPlaces)+" exceeds computed default "+
				computed.StringFixed(CurrencyPlaces)+" without override confirmation")
	}
	return *submitted, nil
}
