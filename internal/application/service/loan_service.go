package service

import (
	"context"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoanService originates loans and serves their derived schedule.
type LoanService struct {
	uow     domain.UnitOfWork
	ids     *idgen.Generator
	cadence domain.Cadence
	penalty domain.PenaltyPolicy
	now     func() time.Time
	audit   *auditWriter
	logger  *zap.Logger
}

func NewLoanService(
	uow domain.UnitOfWork,
	ids *idgen.Generator,
	cadence domain.Cadence,
	opts LedgerOptions,
	outbox domain.AuditOutbox,
	logger *zap.Logger,
) *LoanService {
	penalty := domain.PenaltyPolicy{PerDay: domain.DefaultPenaltyPerDay}
	if opts.Penalty != nil {
		penalty = *opts.Penalty
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &LoanService{
		uow:     uow,
		ids:     ids,
		cadence: cadence,
		penalty: penalty,
		now:     now,
		audit:   &auditWriter{audit: uow.Audit(), outbox: outbox, logger: logger},
		logger:  logger,
	}
}

type CreateLoanRequest struct {
	CustomerID       string
	VehicleID        string
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal
	TenureMonths     int
	ProcessingFee    decimal.Decimal
	DisbursementDate time.Time // zero means today
}

// CreateLoan amortizes the request, assigns the next LN##### id and stores
// the loan as active. The cadence in force is frozen on the loan.
func (s *LoanService) CreateLoan(ctx context.Context, req CreateLoanRequest) (*domain.Loan, error) {
	disbursement := req.DisbursementDate.UTC()
	if req.DisbursementDate.IsZero() {
		disbursement = s.now()
	}
	y, m, d := disbursement.Date()
	disbursement = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	loan, err := domain.NewLoan("", domain.NewLoanParams{
		CustomerID:       req.CustomerID,
		VehicleID:        req.VehicleID,
		Principal:        req.Principal,
		InterestRate:     req.InterestRate,
		TenureMonths:     req.TenureMonths,
		ProcessingFee:    req.ProcessingFee,
		DisbursementDate: disbursement,
		Cadence:          s.cadence,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.Atomic(ctx, func(tx domain.Store) error {
		loanID, err := s.ids.NextLoanID(ctx, tx)
		if err != nil {
			return err
		}
		loan.LoanID = loanID
		return tx.Loans().Create(ctx, loan)
	})
	if err != nil {
		err = translate(err, loan.LoanID, 0)
		s.logger.Error("failed to create loan", zap.Error(err), zap.String("customer_id", req.CustomerID))
		return nil, err
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.LoanID),
		zap.String("customer_id", loan.CustomerID),
		zap.String("emi_amount", loan.EMIAmount.StringFixed(domain.CurrencyPlaces)),
		zap.Int("tenure_months", loan.TenureMonths),
	)

	entry := domain.NewAuditLog(
		domain.AuditActionLoanCreated,
		domain.EntityTypeLoan,
		loan.LoanID,
		loan.LoanID,
		loanSnapshot(loan),
		domain.ActorFromContext(ctx),
		s.now(),
	)

	return loan, s.audit.write(ctx, entry, 0)
}

func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.uow.Loans().FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err, loanID, 0)
	}
	return loan, nil
}

type LoanSchedule struct {
	Loan         *domain.Loan
	Installments []domain.Installment
	AsOf         time.Time
}

// GetSchedule derives every installment of the loan from its recorded
// payments, classifying overdue installments as of now.
func (s *LoanService) GetSchedule(ctx context.Context, loanID string) (*LoanSchedule, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.uow.Payments().FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err, loanID, 0)
	}

	now := s.now()
	return &LoanSchedule{
		Loan:         loan,
		Installments: domain.BuildSchedule(loan, payments, s.penalty, now),
		AsOf:         now,
	}, nil
}

// Quote previews the amortization of a prospective loan under the
// configured cadence. Nothing is stored.
func (s *LoanService) Quote(principal, annualRate decimal.Decimal, tenure int, disbursement time.Time) (domain.Amortization, error) {
	if disbursement.IsZero() {
		disbursement = s.now()
	}
	return domain.CalculateAmortization(principal, annualRate, tenure, disbursement, s.cadence)
}

func loanSnapshot(loan *domain.Loan) map[string]any {
	return map[string]any{
		"loan_id":           loan.LoanID,
		"customer_id":       loan.CustomerID,
		"vehicle_id":        loan.VehicleID,
		"principal":         loan.Principal.StringFixed(domain.CurrencyPlaces),
		"interest_rate":     loan.InterestRate.String(),
		"tenure_months":     loan.TenureMonths,
		"emi_amount":        loan.EMIAmount.StringFixed(domain.CurrencyPlaces),
		"total_amount":      loan.TotalAmount.StringFixed(domain.CurrencyPlaces),
		"total_interest":    loan.TotalInterest.StringFixed(domain.CurrencyPlaces),
		"processing_fee":    loan.ProcessingFee.StringFixed(domain.CurrencyPlaces),
		"disbursement_date": loan.DisbursementDate.Format(time.DateOnly),
		"billing_cadence":   string(loan.Cadence.Kind),
	}
}
