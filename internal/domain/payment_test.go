package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInstallmentAmount(t *testing.T) {
	cases := map[string]struct {
		amount decimal.Decimal
		ok     bool
	}{
		"positive":       {decimal.RequireFromString("8884.88"), true},
		"column maximum": {MaxAmount, true},
		"zero":           {decimal.Zero, false},
		"negative":       {decimal.NewFromInt(-1), false},
		"sub-cent":       {decimal.RequireFromString("1.005"), false},
		"over column":    {MaxAmount.Add(decimal.RequireFromString("0.01")), false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateInstallmentAmount("LN00001", 1, tc.amount)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNewPayment_RejectsTotalOverColumn(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	method := PaymentMethod{Kind: PaymentMethodCash}

	_, err := NewPayment("PY-0001", "LN00001", 1, MaxAmount, decimal.NewFromInt(75), method, due.AddDate(0, 0, 1), due)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	payment, err := NewPayment("PY-0001", "LN00001", 1, MaxAmount.Sub(decimal.NewFromInt(75)), decimal.NewFromInt(75), method, due.AddDate(0, 0, 1), due)
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(MaxAmount))
}
