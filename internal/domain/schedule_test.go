package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchedule(t *testing.T) {
	loan := newTestLoan(t, 3)
	policy := PenaltyPolicy{PerDay: decimal.NewFromInt(75)}
	method, err := NewPaymentMethod("upi", "")
	require.NoError(t, err)

	p, err := NewPayment("PY-0042", loan.LoanID, 1, loan.EMIAmount, decimal.Zero, method, loan.DueDate(1), loan.DueDate(1))
	require.NoError(t, err)

	// five days after installment 2 fell due
	now := loan.DueDate(2).AddDate(0, 0, 5)
	schedule := BuildSchedule(loan, []*Payment{p}, policy, now)

	require.Len(t, schedule, 3)
	assert.Equal(t, InstallmentStatusPaid, schedule[0].Status)
	assert.Equal(t, "PY-0042", schedule[0].PaymentID)
	assert.True(t, schedule[0].PaidAmount.Equal(loan.EMIAmount))

	assert.Equal(t, InstallmentStatusOverdue, schedule[1].Status)
	assert.Equal(t, "375", schedule[1].LateFee.String())

	assert.Equal(t, InstallmentStatusPending, schedule[2].Status)
	assert.True(t, schedule[2].LateFee.IsZero())

	paidCount := 0
	for _, inst := range schedule {
		if inst.Status == InstallmentStatusPaid {
			paidCount++
		}
	}
	assert.Equal(t, len(PaidInstallments([]*Payment{p})), paidCount)
}

func TestIDFormat(t *testing.T) {
	assert.Equal(t, "GU001", GuarantorIDFormat.Format(1))
	assert.Equal(t, "GU1000", GuarantorIDFormat.Format(1000))
	assert.Equal(t, "PY-0042", PaymentIDFormat.Format(42))
	assert.Equal(t, "LN00007", LoanIDFormat.Format(7))

	n, ok := GuarantorIDFormat.Parse("GU012")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, ok = GuarantorIDFormat.Parse("GX012")
	assert.False(t, ok)
	_, ok = GuarantorIDFormat.Parse("GU1")
	assert.False(t, ok)

	assert.Equal(t, int64(1000), GuarantorIDFormat.MaxSuffix([]string{"GU999", "GU1000", "GU002", "junk"}))
	assert.Equal(t, int64(0), GuarantorIDFormat.MaxSuffix(nil))
}

func TestPaymentMethod(t *testing.T) {
	m, err := NewPaymentMethod("bank_transfer", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "bank_transfer", m.String())
	assert.Empty(t, m.Detail)

	m, err = NewPaymentMethod("other", "  mobile wallet ")
	require.NoError(t, err)
	assert.Equal(t, "other:mobile wallet", m.String())

	_, err = NewPaymentMethod("other", "   ")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewPaymentMethod("barter", "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestLedgerError(t *testing.T) {
	err := NewConflictError("LN00001", 2, "installment already paid", ErrInstallmentTaken)

	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrInstallmentTaken))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "conflict: installment already paid (loan_id=LN00001, installment=2): installment already has a payment", err.Error())

	wrapped := errors.Join(errors.New("outer"), err)
	le, ok := AsLedgerError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 2, le.InstallmentNumber)
}

func TestNewPayment(t *testing.T) {
	method := PaymentMethod{Kind: PaymentMethodCash}
	now := time.Now()

	p, err := NewPayment("PY-0001", "LN00001", 1, decimal.RequireFromString("100.50"), decimal.NewFromInt(75), method, now, now)
	require.NoError(t, err)
	assert.Equal(t, "175.50", p.Amount.StringFixed(2))
	assert.Equal(t, PaymentStatusPaid, p.Status)

	_, err = NewPayment("PY-0001", "LN00001", 1, decimal.Zero, decimal.Zero, method, now, now)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewPayment("PY-0001", "LN00001", 1, decimal.RequireFromString("1.005"), decimal.Zero, method, now, now)
	assert.True(t, errors.Is(err, ErrValidation))
}
