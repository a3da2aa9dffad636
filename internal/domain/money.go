package domain

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places of the smallest currency unit.
const CurrencyPlaces = 2

// MaxTenureMonths is the longest repayment plan a loan may carry.
const MaxTenureMonths = 600

var (
	// MaxAmount is the largest currency amount the ledger stores (decimal(15,2)).
	MaxAmount = decimal.RequireFromString("9999999999999.99")
	// MaxInterestRate is the largest annual percentage rate the ledger stores (decimal(5,2)).
	MaxInterestRate = decimal.RequireFromString("999.99")
)

// HasSubCentPrecision reports whether d carries more precision than the
// currency supports.
func HasSubCentPrecision(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(CurrencyPlaces))
}

// ExceedsMaxAmount reports whether d is too large to be stored as money.
func ExceedsMaxAmount(d decimal.Decimal) bool {
	return d.GreaterThan(MaxAmount)
}
