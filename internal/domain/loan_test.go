package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan(t *testing.T, tenure int) *Loan {
	t.Helper()
	loan, err := NewLoan("LN00001", NewLoanParams{
		CustomerID:       "CUST-1",
		VehicleID:        "VEH-1",
		Principal:        decimal.NewFromInt(100000),
		InterestRate:     decimal.NewFromInt(12),
		TenureMonths:     tenure,
		ProcessingFee:    decimal.NewFromInt(500),
		DisbursementDate: time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC),
		Cadence:          DefaultCadence(),
	})
	require.NoError(t, err)
	return loan
}

func TestNewLoan(t *testing.T) {
	loan := newTestLoan(t, 12)

	assert.Equal(t, LoanStatusActive, loan.Status)
	assert.Equal(t, "8884.88", loan.EMIAmount.StringFixed(2))
	require.NotNil(t, loan.NextPaymentDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *loan.NextPaymentDate)
	assert.Equal(t, loan.DueDate(12), loan.EndDate)
	assert.Empty(t, loan.PaymentIDs)
	assert.Equal(t, int64(1), loan.Version)
}

func TestNewLoan_Validation(t *testing.T) {
	base := NewLoanParams{
		CustomerID:       "CUST-1",
		VehicleID:        "VEH-1",
		Principal:        decimal.NewFromInt(1000),
		InterestRate:     decimal.NewFromInt(10),
		TenureMonths:     6,
		DisbursementDate: time.Now(),
		Cadence:          DefaultCadence(),
	}

	cases := map[string]func(p *NewLoanParams){
		"missing customer":   func(p *NewLoanParams) { p.CustomerID = "" },
		"missing vehicle":    func(p *NewLoanParams) { p.VehicleID = "" },
		"sub-cent principal": func(p *NewLoanParams) { p.Principal = decimal.RequireFromString("10.001") },
		"negative fee":       func(p *NewLoanParams) { p.ProcessingFee = decimal.NewFromInt(-1) },
		"three decimal rate": func(p *NewLoanParams) { p.InterestRate = decimal.RequireFromString("9.125") },
		"zero tenure":        func(p *NewLoanParams) { p.TenureMonths = 0 },
		"tenure over limit":  func(p *NewLoanParams) { p.TenureMonths = MaxTenureMonths + 1 },
		"rate over column":   func(p *NewLoanParams) { p.InterestRate = decimal.NewFromInt(1000) },
		"huge rate":          func(p *NewLoanParams) { p.InterestRate = decimal.NewFromInt(10000) },
		"principal overflow": func(p *NewLoanParams) { p.Principal = decimal.RequireFromString("10000000000000") },
		"fee overflow":       func(p *NewLoanParams) { p.ProcessingFee = decimal.RequireFromString("10000000000000") },
		"total overflow":     func(p *NewLoanParams) { p.Principal = MaxAmount },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			_, err := NewLoan("LN00009", p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			le, ok := AsLedgerError(err)
			require.True(t, ok)
			assert.Equal(t, "LN00009", le.LoanID)
		})
	}
}

func TestNewLoan_AcceptsColumnLimits(t *testing.T) {
	loan, err := NewLoan("LN00010", NewLoanParams{
		CustomerID:       "CUST-1",
		VehicleID:        "VEH-1",
		Principal:        decimal.NewFromInt(1000),
		InterestRate:     MaxInterestRate,
		TenureMonths:     MaxTenureMonths,
		ProcessingFee:    MaxAmount,
		DisbursementDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Cadence:          DefaultCadence(),
	})

	require.NoError(t, err)
	assert.True(t, loan.EMIAmount.IsPositive())
	assert.False(t, ExceedsMaxAmount(loan.TotalAmount))
}

func TestLoan_ReconcileRollsOverAndCloses(t *testing.T) {
	loan := newTestLoan(t, 3)

	loan.Reconcile(map[int]bool{1: true})
	assert.Equal(t, loan.DueDate(2), *loan.NextPaymentDate)
	assert.Equal(t, LoanStatusActive, loan.Status)

	// out of order payment does not move the next due date past a gap
	loan.Reconcile(map[int]bool{1: true, 3: true})
	assert.Equal(t, loan.DueDate(2), *loan.NextPaymentDate)

	loan.Reconcile(map[int]bool{1: true, 2: true, 3: true})
	assert.Nil(t, loan.NextPaymentDate)
	assert.Equal(t, LoanStatusClosed, loan.Status)

	loan.Reconcile(map[int]bool{1: true, 3: true})
	assert.Equal(t, LoanStatusActive, loan.Status)
	assert.Equal(t, loan.DueDate(2), *loan.NextPaymentDate)
}

func TestLoan_ReconcileKeepsDefaulted(t *testing.T) {
	loan := newTestLoan(t, 2)
	loan.Status = LoanStatusDefaulted

	loan.Reconcile(map[int]bool{1: true, 2: true})

	assert.Equal(t, LoanStatusDefaulted, loan.Status)
	assert.Nil(t, loan.NextPaymentDate)
}

func TestLoan_AttachDetachPayment(t *testing.T) {
	loan := newTestLoan(t, 3)
	loan.AttachPayment("PY-0001")
	loan.AttachPayment("PY-0002")
	loan.AttachPayment("PY-0003")

	assert.True(t, loan.DetachPayment("PY-0002"))
	assert.False(t, loan.DetachPayment("PY-9999"))
	assert.Equal(t, []string{"PY-0001", "PY-0003"}, loan.PaymentIDs)
	assert.Equal(t, 2, loan.OutstandingInstallments(map[int]bool{1: true}))
}
