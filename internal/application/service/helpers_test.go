package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/config"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	sqlrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var disbursedOn = time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC)

// newTestStore opens a private in-memory SQLite database with the full schema.
func newTestStore(t *testing.T) *sqlrepository.GormStore {
	t.Helper()

	db, err := persistence.Open(context.Background(), config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return sqlrepository.NewStore(db, nil, zap.NewNop())
}

// scriptedSource makes the generator draw the given numerals in order, then
// repeat the last one.
type scriptedSource struct {
	values []int64
	next   int
}

func (s *scriptedSource) Int63() int64 {
	v := s.values[len(s.values)-1]
	if s.next < len(s.values) {
		v = s.values[s.next]
		s.next++
	}
	return v << 32
}

func (s *scriptedSource) Seed(int64) {}

var _ rand.Source = (*scriptedSource)(nil)

type ledgerFixture struct {
	store      *sqlrepository.GormStore
	ids        *idgen.Generator
	loans      *LoanService
	ledger     *LedgerService
	guarantors *GuarantorService
	audit      *AuditService
	now        time.Time
}

func newLedgerFixture(t *testing.T, src rand.Source) *ledgerFixture {
	t.Helper()

	if src == nil {
		src = rand.NewSource(1)
	}

	f := &ledgerFixture{
		store: newTestStore(t),
		ids:   idgen.NewGeneratorWithSource(src, 8, zap.NewNop()),
		now:   time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	opts := LedgerOptions{Now: clock}

	f.loans = NewLoanService(f.store, f.ids, domain.DefaultCadence(), opts, nil, zap.NewNop())
	f.ledger = NewLedgerService(f.store, f.ids, opts, nil, nil, zap.NewNop())
	f.guarantors = NewGuarantorService(f.store, f.ids, opts, nil, zap.NewNop())
	f.audit = NewAuditService(f.store, zap.NewNop())
	return f
}

// createLoan books a 100000 @ 12% loan disbursed on 2023-12-02, so its first
// installment falls due on 2024-01-01.
func (f *ledgerFixture) createLoan(t *testing.T, tenure int) *domain.Loan {
	t.Helper()

	loan, err := f.loans.CreateLoan(context.Background(), CreateLoanRequest{
		CustomerID:       "CUST-1",
		VehicleID:        "VEH-1",
		Principal:        decimal.NewFromInt(100000),
		InterestRate:     decimal.NewFromInt(12),
		TenureMonths:     tenure,
		ProcessingFee:    decimal.NewFromInt(500),
		DisbursementDate: disbursedOn,
	})
	require.NoError(t, err)
	return loan
}

func (f *ledgerFixture) pay(loan *domain.Loan, installment int, paidDate time.Time) RecordPaymentRequest {
	return RecordPaymentRequest{
		LoanID:            loan.LoanID,
		InstallmentNumber: installment,
		Amount:            loan.EMIAmount,
		Method:            domain.PaymentMethod{Kind: domain.PaymentMethodCash},
		PaidDate:          paidDate,
	}
}

func (f *ledgerFixture) reload(t *testing.T, loanID string) *domain.Loan {
	t.Helper()
	loan, err := f.store.Loans().FindByLoanID(context.Background(), loanID)
	require.NoError(t, err)
	return loan
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
