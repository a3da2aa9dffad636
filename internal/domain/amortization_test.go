package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cent = decimal.NewFromFloat(0.01)

func TestCalculateAmortization_TwelvePercentOneYear(t *testing.T) {
	disbursed := time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC)

	plan, err := CalculateAmortization(decimal.NewFromInt(100000), decimal.NewFromInt(12), 12, disbursed, DefaultCadence())

	require.NoError(t, err)
	assert.Equal(t, "8884.88", plan.EMIAmount.StringFixed(2))
	assert.Equal(t, "106618.56", plan.TotalAmount.StringFixed(2))
	assert.Equal(t, "6618.56", plan.TotalInterest.StringFixed(2))
	require.Len(t, plan.DueDates, 12)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), plan.DueDates[0])
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), plan.DueDates[1])
}

func TestCalculateAmortization_ZeroRate(t *testing.T) {
	plan, err := CalculateAmortization(decimal.NewFromInt(12000), decimal.Zero, 12, time.Now(), DefaultCadence())

	require.NoError(t, err)
	assert.True(t, plan.EMIAmount.Equal(decimal.NewFromInt(1000)), "got %s", plan.EMIAmount)
	assert.True(t, plan.TotalInterest.IsZero())
}

func TestCalculateAmortization_ZeroRateUnevenSplitNeverUnderCollects(t *testing.T) {
	plan, err := CalculateAmortization(decimal.NewFromInt(100), decimal.Zero, 3, time.Now(), DefaultCadence())

	require.NoError(t, err)
	assert.Equal(t, "33.34", plan.EMIAmount.StringFixed(2))
	assert.True(t, plan.TotalAmount.GreaterThanOrEqual(decimal.NewFromInt(100)))
}

func TestCalculateAmortization_Invariants(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		tenure    int
	}{
		{"100000", "12", 12},
		{"1", "0.01", 1},
		{"250000.50", "9.75", 36},
		{"850000", "14.5", 60},
		{"5000", "0", 7},
		{"1200000", "24", 84},
	}

	for _, tc := range cases {
		t.Run(tc.principal+"@"+tc.rate, func(t *testing.T) {
			p := decimal.RequireFromString(tc.principal)
			r := decimal.RequireFromString(tc.rate)

			plan, err := CalculateAmortization(p, r, tc.tenure, time.Now(), DefaultCadence())

			require.NoError(t, err)
			n := decimal.NewFromInt(int64(tc.tenure))
			assert.True(t, plan.EMIAmount.Mul(n).Sub(plan.TotalAmount).Abs().LessThanOrEqual(cent))
			assert.True(t, plan.TotalAmount.GreaterThanOrEqual(p))
			assert.True(t, plan.TotalAmount.Equal(p.Add(plan.TotalInterest)))
			assert.Len(t, plan.DueDates, tc.tenure)
		})
	}
}

func TestCalculateAmortization_InvalidInputs(t *testing.T) {
	now := time.Now()

	t.Run("zero principal", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.Zero, decimal.NewFromInt(10), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("negative principal", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.NewFromInt(-5), decimal.NewFromInt(10), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("zero tenure", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.NewFromInt(1000), decimal.NewFromInt(10), 0, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("negative rate", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("rate above limit", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.NewFromInt(1000), decimal.RequireFromString("1000.00"), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("tenure above limit", func(t *testing.T) {
		_, err := CalculateAmortization(decimal.NewFromInt(1000), decimal.NewFromInt(10), MaxTenureMonths+1, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("principal above limit", func(t *testing.T) {
		_, err := CalculateAmortization(MaxAmount.Add(cent), decimal.NewFromInt(10), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("total above limit", func(t *testing.T) {
		_, err := CalculateAmortization(MaxAmount, decimal.NewFromInt(10), 12, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestCalculateAmortization_ExtremeRateDoesNotPanic(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NotPanics(t, func() {
		_, err := CalculateAmortization(decimal.NewFromInt(1000), decimal.NewFromInt(10000), 600, now, DefaultCadence())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	// The steepest storable rate over the longest tenure stays finite.
	plan, err := CalculateAmortization(decimal.NewFromInt(1000), MaxInterestRate, MaxTenureMonths, now, DefaultCadence())
	require.NoError(t, err)
	assert.True(t, plan.EMIAmount.GreaterThan(decimal.NewFromInt(833)))
	assert.Len(t, plan.DueDates, MaxTenureMonths)
}
